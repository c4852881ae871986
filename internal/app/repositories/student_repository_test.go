package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/roster/internal/app/models"
	"github.com/yigit/roster/internal/pkg/apperrors"
)

func TestBuildSelectStudents(t *testing.T) {
	sql, args, err := buildSelectStudents(nil)
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM students")
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY created_at ASC, id ASC")
	assert.Empty(t, args)

	year := 2026
	sql, args, err = buildSelectStudents(&year)
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE year = $1")
	assert.Equal(t, []interface{}{2026}, args)
}

func TestBuildUpdateStudentBumpsVersion(t *testing.T) {
	s := &models.Student{ID: uuid.NewString(), Name: "Aru", ServicePayed: 999}

	sql, args, err := buildUpdateStudent(s)
	require.NoError(t, err)
	assert.Contains(t, sql, "version = version + 1")
	assert.Contains(t, sql, "updated_at = NOW()")
	assert.Contains(t, sql, "RETURNING version, updated_at")
	assert.Contains(t, args, 999.0)
	assert.Equal(t, s.ID, args[len(args)-1])
}

func TestBuildInsertStudent(t *testing.T) {
	ref := "uploads/1-a-passport.pdf"
	s := &models.Student{ID: uuid.NewString(), Name: "Aru", Passport: &ref}

	sql, args, err := buildInsertStudent(s)
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO students")
	assert.Contains(t, sql, "RETURNING version, created_at, updated_at")
	assert.Len(t, args, 19)
	assert.Equal(t, s.ID, args[0])
}

func TestBuildResetAnnualPayments(t *testing.T) {
	sql, args, err := buildResetAnnualPayments("abc")
	require.NoError(t, err)
	assert.Contains(t, sql, "service_payed = $1")
	assert.Contains(t, sql, "annual_payed = $2")
	assert.Contains(t, sql, "is_session_open = $3")
	assert.Equal(t, []interface{}{0, 0, true, "abc"}, args)
}

func TestStudentRepository_GetByIDRejectsNonUUID(t *testing.T) {
	db := &stubDB{}
	repo := NewStudentRepository(db)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Zero(t, db.calls)
}

func TestStudentRepository_GetByIDNoRows(t *testing.T) {
	repo := NewStudentRepository(&stubDB{err: pgx.ErrNoRows})

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestStudentRepository_PersistenceFailures(t *testing.T) {
	cause := errors.New("connection refused")
	repo := NewStudentRepository(&stubDB{err: cause})
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.ErrorIs(t, err, cause)

	err = repo.Create(ctx, &models.Student{Name: "Aru"})
	assert.ErrorIs(t, err, apperrors.ErrPersistence)

	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)

	err = repo.ResetAnnualPayments(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestStudentRepository_CreateAssignsID(t *testing.T) {
	db := &stubDB{err: errors.New("boom")}
	repo := NewStudentRepository(db)

	s := &models.Student{Name: "Aru"}
	_ = repo.Create(context.Background(), s)
	_, err := uuid.Parse(s.ID)
	assert.NoError(t, err)
	assert.Equal(t, s.ID, db.lastArgs[0])
}

func TestStudentRepository_ResetUnknownID(t *testing.T) {
	repo := NewStudentRepository(&stubDB{tag: pgconn.NewCommandTag("UPDATE 0")})

	err := repo.ResetAnnualPayments(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestAccountRepository_GetByUsername(t *testing.T) {
	repo := NewAccountRepository(&stubDB{err: pgx.ErrNoRows})
	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	db := &stubDB{err: errors.New("down")}
	repo = NewAccountRepository(db)
	_, err = repo.GetByUsername(context.Background(), "admin")
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Equal(t, []any{"admin"}, db.lastArgs)
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: accountsUsernameKey}
	repo := NewAccountRepository(&stubDB{err: dup})

	err := repo.Create(context.Background(), &models.Account{Username: "admin", PasswordHash: "x"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}
