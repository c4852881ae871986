package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/yigit/roster/internal/app/models"
)

// DBTX is the subset of pgxpool.Pool the repositories use
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IAccountRepository defines account lookups used by the credential verifier
type IAccountRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
}

// IStudentRepository defines the student record store
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	List(ctx context.Context) ([]models.Student, error)
	ListByYear(ctx context.Context, year int) ([]models.Student, error)
	// ResetAnnualPayments applies the yearly rollover to one record
	ResetAnnualPayments(ctx context.Context, id string) error
}

// Repositories holds all the repository instances
type Repositories struct {
	AccountRepository IAccountRepository
	StudentRepository IStudentRepository
}

// NewRepositories initializes all repositories on top of one pool
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		AccountRepository: NewAccountRepository(db),
		StudentRepository: NewStudentRepository(db),
	}
}

// WithStudentCache puts a Redis read-through cache in front of the student store
func (r *Repositories) WithStudentCache(client redis.Cmdable, ttl time.Duration) *Repositories {
	r.StudentRepository = NewCachedStudentRepository(r.StudentRepository, client, ttl)
	return r
}
