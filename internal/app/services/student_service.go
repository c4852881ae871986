package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/roster/internal/app/models"
	"github.com/yigit/roster/internal/app/models/dto"
	"github.com/yigit/roster/internal/app/repositories"
	"github.com/yigit/roster/internal/pkg/apperrors"
)

// ErrNoStudentsForYear is returned when a cohort year has no records
var ErrNoStudentsForYear = apperrors.NewNotFoundError("No students found for the selected year")

// StudentService manages student records
type StudentService struct {
	studentRepo repositories.IStudentRepository
	attachments *AttachmentService
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(studentRepo repositories.IStudentRepository, attachments *AttachmentService, logger zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		attachments: attachments,
		logger:      logger,
	}
}

// Create stores a new student with its initial financials and attachments
func (s *StudentService) Create(ctx context.Context, cmd *dto.CreateStudentCommand, uploads UploadSet) (*models.Student, error) {
	student := &models.Student{
		Name:                 cmd.Name,
		Surname:              cmd.Surname,
		ParentName:           cmd.ParentName,
		Mobile:               cmd.Mobile,
		ParentMobile:         cmd.ParentMobile,
		Study:                cmd.Study,
		Prof:                 cmd.Prof,
		Year:                 cmd.Year,
		ServiceCost:          cmd.ServiceCost,
		ServicePayed:         cmd.ServicePayed,
		AnnualCost:           cmd.AnnualCost,
		AnnualPayed:          cmd.AnnualPayed,
		IsSessionOpen:        cmd.IsSessionOpen,
		IsNastrfication:      cmd.IsNastrfication,
		IsNastrficationPayed: cmd.IsNastrficationPayed,
	}

	update, err := s.attachments.BindUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}
	update.ApplyTo(student)

	if err := s.studentRepo.Create(ctx, student); err != nil {
		s.attachments.Discard(update)
		return nil, err
	}

	s.logger.Info().Str("studentID", student.ID).Int("year", student.Year).Int("attachments", len(update)).Msg("Student created")
	return student, nil
}

// Update applies the provided fields and merges new attachments onto an existing record
func (s *StudentService) Update(ctx context.Context, id string, cmd *dto.UpdateStudentCommand, uploads UploadSet) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(student, cmd)

	update, err := s.attachments.BindUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}
	update.ApplyTo(student)

	if err := s.studentRepo.Update(ctx, student); err != nil {
		s.attachments.Discard(update)
		return nil, err
	}

	s.logger.Info().Str("studentID", student.ID).Int64("version", student.Version).Int("attachments", len(update)).Msg("Student updated")
	return student, nil
}

func applyUpdate(student *models.Student, cmd *dto.UpdateStudentCommand) {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}

	setString(&student.Name, cmd.Name)
	setString(&student.Surname, cmd.Surname)
	setString(&student.ParentName, cmd.ParentName)
	setString(&student.Mobile, cmd.Mobile)
	setString(&student.ParentMobile, cmd.ParentMobile)
	setString(&student.Study, cmd.Study)
	setString(&student.Prof, cmd.Prof)
	if cmd.Year != nil {
		student.Year = *cmd.Year
	}

	student.ServiceCost = cmd.ServiceCost
	student.ServicePayed = cmd.ServicePayed
	student.AnnualCost = cmd.AnnualCost
	student.AnnualPayed = cmd.AnnualPayed

	setBool(&student.IsSessionOpen, cmd.IsSessionOpen)
	setBool(&student.IsNastrfication, cmd.IsNastrfication)
	setBool(&student.IsNastrficationPayed, cmd.IsNastrficationPayed)
}

// List returns all students
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	return s.studentRepo.List(ctx)
}

// ListByYear returns the cohort of the given year; an empty cohort is not found
func (s *StudentService) ListByYear(ctx context.Context, year int) ([]models.Student, error) {
	students, err := s.studentRepo.ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, fmt.Errorf("year %d: %w", year, ErrNoStudentsForYear)
	}
	return students, nil
}

// GetByID returns a single student
func (s *StudentService) GetByID(ctx context.Context, id string) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}
