package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/roster/internal/app/models"
	"github.com/yigit/roster/internal/app/models/dto"
	"github.com/yigit/roster/internal/pkg/apperrors"
)

func newStudentService() (*StudentService, *fakeStudents, *fakeStorage) {
	repo := newFakeStudents()
	storage := newFakeStorage()
	attachments := NewAttachmentService(storage, zerolog.Nop())
	return NewStudentService(repo, attachments, zerolog.Nop()), repo, storage
}

func createCommand(t *testing.T, fields dto.StudentFields) *dto.CreateStudentCommand {
	t.Helper()
	cmd, err := dto.ParseCreateStudent(fields)
	require.NoError(t, err)
	return cmd
}

func baseFields() dto.StudentFields {
	return dto.StudentFields{
		"name": "A", "surname": "B", "parentName": "C", "study": "CS", "prof": "eng",
		"serviceCost": "1000", "servicePayed": "200", "annualCost": "500",
	}
}

func TestStudentService_CreateAndGet(t *testing.T) {
	svc, _, _ := newStudentService()
	ctx := context.Background()

	created, err := svc.Create(ctx, createCommand(t, baseFields()), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1000.0, created.ServiceCost)
	assert.Equal(t, 200.0, created.ServicePayed)
	assert.Equal(t, 500.0, created.AnnualCost)
	assert.Zero(t, created.AnnualPayed)
	assert.Nil(t, created.Passport)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "A", got.Name)
}

func TestStudentService_CreateNonNumericCoercesToZero(t *testing.T) {
	svc, _, _ := newStudentService()

	fields := baseFields()
	fields["serviceCost"] = "abc"
	fields["servicePayed"] = ""
	created, err := svc.Create(context.Background(), createCommand(t, fields), nil)
	require.NoError(t, err)
	assert.Zero(t, created.ServiceCost)
	assert.Zero(t, created.ServicePayed)
}

func TestStudentService_CreateBindsUploads(t *testing.T) {
	svc, _, storage := newStudentService()

	uploads := UploadSet{
		models.AttachmentPassport: {Filename: "passport.pdf"},
		models.AttachmentImage:    {Filename: "me.png"},
	}
	created, err := svc.Create(context.Background(), createCommand(t, baseFields()), uploads)
	require.NoError(t, err)
	require.NotNil(t, created.Passport)
	require.NotNil(t, created.Image)
	assert.Nil(t, created.Diplom)
	assert.Contains(t, storage.saved, *created.Passport)
}

func TestStudentService_CreatePersistenceFailureDiscardsFiles(t *testing.T) {
	svc, repo, storage := newStudentService()
	repo.createErr = apperrors.Persistence("create student", errors.New("down"))

	uploads := UploadSet{models.AttachmentDiplom: {Filename: "d.jpg"}}
	_, err := svc.Create(context.Background(), createCommand(t, baseFields()), uploads)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Empty(t, storage.saved)
	assert.Len(t, storage.deleted, 1)
}

func TestStudentService_UpdatePartialAndMoney(t *testing.T) {
	svc, _, _ := newStudentService()
	ctx := context.Background()

	fields := baseFields()
	fields["annualPayed"] = "300"
	fields["mobile"] = "+7701"
	created, err := svc.Create(ctx, createCommand(t, fields), nil)
	require.NoError(t, err)

	cmd, err := dto.ParseUpdateStudent(dto.StudentFields{"servicePayed": "999", "name": "Z"})
	require.NoError(t, err)
	updated, err := svc.Update(ctx, created.ID, cmd, nil)
	require.NoError(t, err)

	assert.Equal(t, "Z", updated.Name)
	assert.Equal(t, "B", updated.Surname)
	assert.Equal(t, "+7701", updated.Mobile)
	assert.Equal(t, 999.0, updated.ServicePayed)
	// absent monetary fields are written as zero on update
	assert.Zero(t, updated.ServiceCost)
	assert.Zero(t, updated.AnnualPayed)
	assert.Equal(t, created.Version+1, updated.Version)
}

func TestStudentService_UpdateMergesAttachments(t *testing.T) {
	svc, _, _ := newStudentService()
	ctx := context.Background()

	created, err := svc.Create(ctx, createCommand(t, baseFields()), UploadSet{
		models.AttachmentPassport: {Filename: "p1.pdf"},
		models.AttachmentDiplom:   {Filename: "d1.pdf"},
	})
	require.NoError(t, err)
	oldPassport, oldDiplom := *created.Passport, *created.Diplom

	cmd, err := dto.ParseUpdateStudent(dto.StudentFields{})
	require.NoError(t, err)
	updated, err := svc.Update(ctx, created.ID, cmd, UploadSet{
		models.AttachmentPassport: {Filename: "p1.pdf"},
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Passport)
	assert.NotEqual(t, oldPassport, *updated.Passport)
	assert.Equal(t, oldDiplom, *updated.Diplom)
	assert.Nil(t, updated.Image)

	updated, err = svc.Update(ctx, created.ID, cmd, nil)
	require.NoError(t, err)
	assert.NotNil(t, updated.Passport)
	assert.NotNil(t, updated.Diplom)
}

func TestStudentService_UpdateNotFound(t *testing.T) {
	svc, _, storage := newStudentService()

	cmd, err := dto.ParseUpdateStudent(dto.StudentFields{"name": "Z"})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), "missing", cmd, UploadSet{models.AttachmentImage: {Filename: "x.png"}})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Empty(t, storage.saved)
}

func TestStudentService_ListByYear(t *testing.T) {
	svc, _, _ := newStudentService()
	ctx := context.Background()

	for _, year := range []string{"2025", "2026", "2026"} {
		fields := baseFields()
		fields["year"] = year
		_, err := svc.Create(ctx, createCommand(t, fields), nil)
		require.NoError(t, err)
	}

	students, err := svc.ListByYear(ctx, 2026)
	require.NoError(t, err)
	assert.Len(t, students, 2)
	for _, s := range students {
		assert.Equal(t, 2026, s.Year)
	}

	_, err = svc.ListByYear(ctx, 1999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.ErrorIs(t, err, ErrNoStudentsForYear)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUploadsFromForm_FirstFileWins(t *testing.T) {
	first := &multipart.FileHeader{Filename: "first.pdf"}
	form := &multipart.Form{File: map[string][]*multipart.FileHeader{
		"passport": {first, {Filename: "second.pdf"}},
		"other":    {{Filename: "ignored.txt"}},
	}}

	uploads := UploadsFromForm(form)
	assert.Len(t, uploads, 1)
	assert.Same(t, first, uploads[models.AttachmentPassport])
	assert.Empty(t, UploadsFromForm(nil))
}

func TestAttachmentService_BindUploadsFailureCleansUp(t *testing.T) {
	storage := newFakeStorage()
	storage.failOn = "bad.png"
	svc := NewAttachmentService(storage, zerolog.Nop())

	_, err := svc.BindUploads(context.Background(), UploadSet{
		models.AttachmentPassport: {Filename: "ok.pdf"},
		models.AttachmentImage:    {Filename: "bad.png"},
	})
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Empty(t, storage.saved)
}
