package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yigit/roster/internal/app/models"
	"github.com/yigit/roster/internal/pkg/logger"
)

const (
	studentCachePrefix = "roster:student:"
	studentDirtyPrefix = "roster:student:dirty:"

	// writeFence is how long a write blocks cache fills for the record.
	// It must outlast the gap between a reader's store read and its fill.
	writeFence = 30 * time.Second
)

// fillStudent caches ARGV[1] under KEYS[1] unless KEYS[2] marks a write
// that happened after the value was read.
var fillStudent = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// CachedStudentRepository serves GetByID from Redis and invalidates
// the entry on every write. Cache failures fall through to the store.
type CachedStudentRepository struct {
	next   IStudentRepository
	client redis.Cmdable
	ttl    time.Duration
}

// NewCachedStudentRepository wraps next with a read-through cache
func NewCachedStudentRepository(next IStudentRepository, client redis.Cmdable, ttl time.Duration) *CachedStudentRepository {
	return &CachedStudentRepository{next: next, client: client, ttl: ttl}
}

func studentCacheKey(id string) string {
	return studentCachePrefix + id
}

func studentDirtyKey(id string) string {
	return studentDirtyPrefix + id
}

// invalidate drops the cached copy and fences off fills that read the
// record before this write
func (r *CachedStudentRepository) invalidate(ctx context.Context, id string) {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, studentDirtyKey(id), 1, writeFence)
		pipe.Del(ctx, studentCacheKey(id))
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("studentID", id).Msg("Failed to invalidate cached student")
	}
}

func (r *CachedStudentRepository) fill(ctx context.Context, student *models.Student) {
	encoded, err := json.Marshal(student)
	if err != nil {
		return
	}
	keys := []string{studentCacheKey(student.ID), studentDirtyKey(student.ID)}
	if err := fillStudent.Run(ctx, r.client, keys, encoded, r.ttl.Milliseconds()).Err(); err != nil {
		logger.Warn().Err(err).Str("studentID", student.ID).Msg("Student cache write failed")
	}
}

// Create stores the record; new records are not cached until first read
func (r *CachedStudentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.next.Create(ctx, student)
}

// GetByID returns the cached copy when present
func (r *CachedStudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	key := studentCacheKey(id)

	payload, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var student models.Student
		if jsonErr := json.Unmarshal(payload, &student); jsonErr == nil {
			return &student, nil
		}
		logger.Warn().Str("key", key).Msg("Dropping undecodable cached student")
		r.invalidate(ctx, id)
	case !errors.Is(err, redis.Nil):
		logger.Warn().Err(err).Str("key", key).Msg("Student cache read failed")
	}

	student, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.fill(ctx, student)
	return student, nil
}

// Update writes through and drops the cached copy
func (r *CachedStudentRepository) Update(ctx context.Context, student *models.Student) error {
	err := r.next.Update(ctx, student)
	r.invalidate(ctx, student.ID)
	return err
}

// List always reads the store
func (r *CachedStudentRepository) List(ctx context.Context) ([]models.Student, error) {
	return r.next.List(ctx)
}

// ListByYear always reads the store
func (r *CachedStudentRepository) ListByYear(ctx context.Context, year int) ([]models.Student, error) {
	return r.next.ListByYear(ctx, year)
}

// ResetAnnualPayments writes through and drops the cached copy
func (r *CachedStudentRepository) ResetAnnualPayments(ctx context.Context, id string) error {
	err := r.next.ResetAnnualPayments(ctx, id)
	r.invalidate(ctx, id)
	return err
}
