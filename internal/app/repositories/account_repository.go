package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/roster/internal/app/models"
	"github.com/yigit/roster/internal/pkg/apperrors"
	"github.com/yigit/roster/internal/pkg/dberrors"
	"github.com/yigit/roster/internal/pkg/logger"
)

const accountsUsernameKey = "accounts_username_key"

// AccountRepository handles account database operations
type AccountRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByUsername retrieves an account by exact username match
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	sql, args, err := r.sb.Select("id::text", "username", "password_hash", "created_at").
		From("accounts").
		Where(squirrel.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get account query: %w", err)
	}

	var account models.Account
	err = r.db.QueryRow(ctx, sql, args...).Scan(&account.ID, &account.Username, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Msg("Error scanning account row")
		return nil, apperrors.Persistence("get account", err)
	}

	return &account, nil
}

// Create inserts a new account. A taken username yields apperrors.ErrAlreadyExists.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	sql, args, err := r.sb.Insert("accounts").
		Columns("id", "username", "password_hash").
		Values(account.ID, account.Username, account.PasswordHash).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create account query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&account.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, accountsUsernameKey) {
			return fmt.Errorf("account %q: %w", account.Username, apperrors.ErrAlreadyExists)
		}
		return apperrors.Persistence("create account", err)
	}

	logger.Info().Str("username", account.Username).Msg("Account created")
	return nil
}
