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
	"github.com/yigit/roster/internal/pkg/logger"
)

const studentsTable = "students"

// studentColumns is the projection scanned by scanStudent, in order
var studentColumns = []string{
	"id::text", "name", "surname", "parent_name", "mobile", "parent_mobile",
	"study", "prof", "year",
	"service_cost", "service_payed", "annual_cost", "annual_payed",
	"is_session_open", "is_nastrfication", "is_nastrfication_payed",
	"passport", "diplom", "image",
	"version", "created_at", "updated_at",
}

var studentsBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// StudentRepository handles student database operations
type StudentRepository struct {
	db DBTX
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.Name, &s.Surname, &s.ParentName, &s.Mobile, &s.ParentMobile,
		&s.Study, &s.Prof, &s.Year,
		&s.ServiceCost, &s.ServicePayed, &s.AnnualCost, &s.AnnualPayed,
		&s.IsSessionOpen, &s.IsNastrfication, &s.IsNastrficationPayed,
		&s.Passport, &s.Diplom, &s.Image,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// buildInsertStudent renders the INSERT for a new record. The store
// sets version, created_at and updated_at.
func buildInsertStudent(s *models.Student) (string, []interface{}, error) {
	return studentsBuilder.Insert(studentsTable).
		Columns(
			"id", "name", "surname", "parent_name", "mobile", "parent_mobile",
			"study", "prof", "year",
			"service_cost", "service_payed", "annual_cost", "annual_payed",
			"is_session_open", "is_nastrfication", "is_nastrfication_payed",
			"passport", "diplom", "image",
		).
		Values(
			s.ID, s.Name, s.Surname, s.ParentName, s.Mobile, s.ParentMobile,
			s.Study, s.Prof, s.Year,
			s.ServiceCost, s.ServicePayed, s.AnnualCost, s.AnnualPayed,
			s.IsSessionOpen, s.IsNastrfication, s.IsNastrficationPayed,
			s.Passport, s.Diplom, s.Image,
		).
		Suffix("RETURNING version, created_at, updated_at").
		ToSql()
}

// buildUpdateStudent renders a whole-record write that bumps version
func buildUpdateStudent(s *models.Student) (string, []interface{}, error) {
	return studentsBuilder.Update(studentsTable).
		SetMap(map[string]interface{}{
			"name":                   s.Name,
			"surname":                s.Surname,
			"parent_name":            s.ParentName,
			"mobile":                 s.Mobile,
			"parent_mobile":          s.ParentMobile,
			"study":                  s.Study,
			"prof":                   s.Prof,
			"year":                   s.Year,
			"service_cost":           s.ServiceCost,
			"service_payed":          s.ServicePayed,
			"annual_cost":            s.AnnualCost,
			"annual_payed":           s.AnnualPayed,
			"is_session_open":        s.IsSessionOpen,
			"is_nastrfication":       s.IsNastrfication,
			"is_nastrfication_payed": s.IsNastrficationPayed,
			"passport":               s.Passport,
			"diplom":                 s.Diplom,
			"image":                  s.Image,
			"version":                squirrel.Expr("version + 1"),
			"updated_at":             squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING version, updated_at").
		ToSql()
}

// buildSelectStudents renders the list query, optionally filtered by year
func buildSelectStudents(year *int) (string, []interface{}, error) {
	q := studentsBuilder.Select(studentColumns...).From(studentsTable)
	if year != nil {
		q = q.Where(squirrel.Eq{"year": *year})
	}
	return q.OrderBy("created_at ASC", "id ASC").ToSql()
}

// buildResetAnnualPayments renders the rollover write for one record
func buildResetAnnualPayments(id string) (string, []interface{}, error) {
	return studentsBuilder.Update(studentsTable).
		Set("service_payed", 0).
		Set("annual_payed", 0).
		Set("is_session_open", true).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
}

// Create inserts a new student and fills in its identifier and store-managed fields
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.New().String()
	}

	sql, args, err := buildInsertStudent(student)
	if err != nil {
		return fmt.Errorf("failed to build insert student query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&student.Version, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Str("studentID", student.ID).Msg("Error inserting student")
		return apperrors.Persistence("create student", err)
	}
	return nil
}

// GetByID retrieves a student by identifier. Identifiers that are not
// UUIDs cannot exist and report not found.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrStudentNotFound
	}

	sql, args, err := studentsBuilder.Select(studentColumns...).
		From(studentsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("studentID", id).Msg("Error scanning student row")
		return nil, apperrors.Persistence("get student", err)
	}
	return student, nil
}

// Update writes every mutable column of the record
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	if _, err := uuid.Parse(student.ID); err != nil {
		return apperrors.ErrStudentNotFound
	}

	sql, args, err := buildUpdateStudent(student)
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&student.Version, &student.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("studentID", student.ID).Msg("Error updating student")
		return apperrors.Persistence("update student", err)
	}
	return nil
}

// List returns every student in creation order
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	return r.queryStudents(ctx, nil, "list students")
}

// ListByYear returns the students of the given cohort year. An empty
// cohort is an empty slice, not an error.
func (r *StudentRepository) ListByYear(ctx context.Context, year int) ([]models.Student, error) {
	return r.queryStudents(ctx, &year, "list students by year")
}

func (r *StudentRepository) queryStudents(ctx context.Context, year *int, op string) ([]models.Student, error) {
	sql, args, err := buildSelectStudents(year)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error querying students")
		return nil, apperrors.Persistence(op, err)
	}
	defer rows.Close()

	students := make([]models.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, apperrors.Persistence(op, err)
		}
		students = append(students, *student)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(op, err)
	}
	return students, nil
}

// ResetAnnualPayments zeroes the paid amounts and reopens the session of one record
func (r *StudentRepository) ResetAnnualPayments(ctx context.Context, id string) error {
	sql, args, err := buildResetAnnualPayments(id)
	if err != nil {
		return fmt.Errorf("failed to build reset payments query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return apperrors.Persistence("reset annual payments", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}
