package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/roster/internal/app/models"
	appRepos "github.com/yigit/roster/internal/app/repositories"
	"github.com/yigit/roster/internal/pkg/apperrors"
	"github.com/yigit/roster/internal/pkg/auth"
)

// AdminAccount describes the operator account provisioned at startup
type AdminAccount struct {
	Username string
	Password string
}

// CreateDefaultData provisions the operator account if it does not exist yet.
// An empty username skips seeding; a username without a password is rejected.
func CreateDefaultData(ctx context.Context, accountRepo appRepos.IAccountRepository, admin AdminAccount, lgr zerolog.Logger) error {
	if admin.Username == "" {
		lgr.Info().Msg("No seed account configured, skipping default data")
		return nil
	}
	if admin.Password == "" {
		return fmt.Errorf("operator account %q has no password", admin.Username)
	}

	lgr.Info().Str("username", admin.Username).Msg("Checking/Creating operator account...")

	if _, err := accountRepo.GetByUsername(ctx, admin.Username); err == nil {
		lgr.Info().Str("username", admin.Username).Msg("Operator account already exists")
		return nil
	} else if !errors.Is(err, apperrors.ErrAccountNotFound) {
		return fmt.Errorf("failed to look up operator account: %w", err)
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash operator password: %w", err)
	}

	err = accountRepo.Create(ctx, &appModels.Account{Username: admin.Username, PasswordHash: hash})
	if err != nil && !errors.Is(err, apperrors.ErrAlreadyExists) {
		lgr.Error().Err(err).Msg("Error creating operator account")
		return err
	}

	lgr.Info().Str("username", admin.Username).Msg("Operator account ready")
	return nil
}
