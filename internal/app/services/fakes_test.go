package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/roster/internal/app/models"
	"github.com/yigit/roster/internal/pkg/apperrors"
)

type fakeAccounts struct {
	accounts map[string]*models.Account
	err      error
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.accounts[username]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) error {
	f.accounts[a.Username] = a
	return nil
}

type fakeStudents struct {
	mu        sync.Mutex
	rows      map[string]models.Student
	order     []string
	createErr error
	updateErr error
	listErr   error
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{rows: make(map[string]models.Student)}
}

func (f *fakeStudents) Create(_ context.Context, s *models.Student) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.NewString()
	s.Version = 1
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	f.rows[s.ID] = *s
	f.order = append(f.order, s.ID)
	return nil
}

func (f *fakeStudents) GetByID(_ context.Context, id string) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return &s, nil
}

func (f *fakeStudents) Update(_ context.Context, s *models.Student) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[s.ID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	s.Version++
	f.rows[s.ID] = *s
	return nil
}

func (f *fakeStudents) List(context.Context) ([]models.Student, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Student, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.rows[id])
	}
	return out, nil
}

func (f *fakeStudents) ListByYear(ctx context.Context, year int) ([]models.Student, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Student, 0)
	for _, s := range all {
		if s.Year == year {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStudents) ResetAnnualPayments(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.ResetForNewYear()
	f.rows[id] = s
	return nil
}

// fakeStorage keeps saved files in memory and can fail on a given upload name
type fakeStorage struct {
	mu      sync.Mutex
	saved   map[string]string
	deleted []string
	failOn  string
	seq     int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string]string)}
}

func (f *fakeStorage) SaveFile(h *multipart.FileHeader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h.Filename == f.failOn {
		return "", errors.New("disk full")
	}
	f.seq++
	ref := fmt.Sprintf("uploads/%d-%s", f.seq, h.Filename)
	f.saved[ref] = h.Filename
	return ref, nil
}

func (f *fakeStorage) DeleteFile(ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, ref)
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeStorage) GetFullPath(ref string) string { return ref }
