package repositories

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/roster/internal/app/models"
	"github.com/yigit/roster/internal/pkg/apperrors"
)

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// stubDB records the last statement and answers every call with err
type stubDB struct {
	err      error
	tag      pgconn.CommandTag
	lastSQL  string
	lastArgs []any
	calls    int
}

func (d *stubDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.calls++
	d.lastSQL, d.lastArgs = sql, args
	return d.tag, d.err
}

func (d *stubDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	d.calls++
	d.lastSQL, d.lastArgs = sql, args
	if d.err == nil {
		return nil, errors.New("stubDB: rows not supported")
	}
	return nil, d.err
}

func (d *stubDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	d.calls++
	d.lastSQL, d.lastArgs = sql, args
	return errRow{err: d.err}
}

// memoryStudents is an in-memory IStudentRepository that counts reads
type memoryStudents struct {
	mu    sync.Mutex
	rows  map[string]models.Student
	reads int
	// afterRead runs once a GetByID has copied the row, outside the lock
	afterRead func()
}

func newMemoryStudents() *memoryStudents {
	return &memoryStudents{rows: make(map[string]models.Student)}
}

func (m *memoryStudents) Create(_ context.Context, s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Version = 1
	m.rows[s.ID] = *s
	return nil
}

func (m *memoryStudents) GetByID(_ context.Context, id string) (*models.Student, error) {
	m.mu.Lock()
	m.reads++
	s, ok := m.rows[id]
	hook := m.afterRead
	m.afterRead = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return &s, nil
}

func (m *memoryStudents) Update(_ context.Context, s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[s.ID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	s.Version++
	m.rows[s.ID] = *s
	return nil
}

func (m *memoryStudents) List(context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Student, 0, len(m.rows))
	for _, s := range m.rows {
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryStudents) ListByYear(_ context.Context, year int) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Student, 0)
	for _, s := range m.rows {
		if s.Year == year {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryStudents) ResetAnnualPayments(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.ResetForNewYear()
	s.Version++
	m.rows[id] = s
	return nil
}
