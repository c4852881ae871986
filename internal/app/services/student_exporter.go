package services

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/roster/internal/app/models"
	"github.com/yigit/roster/internal/app/repositories"
)

const exportSheet = "Students"

var exportHeaders = []string{
	"ID", "Name", "Surname", "Parent name", "Mobile", "Parent mobile", "Study", "Prof", "Year",
	"Service cost", "Service payed", "Annual cost", "Annual payed", "Session open",
}

// StudentExporter renders student records as an xlsx workbook
type StudentExporter struct {
	studentRepo repositories.IStudentRepository
	logger      zerolog.Logger
}

// NewStudentExporter creates a new StudentExporter
func NewStudentExporter(studentRepo repositories.IStudentRepository, logger zerolog.Logger) *StudentExporter {
	return &StudentExporter{studentRepo: studentRepo, logger: logger}
}

// Export writes all students, or only the given year when year is set.
// An empty selection still produces the header row.
func (e *StudentExporter) Export(ctx context.Context, year *int, w io.Writer) error {
	var (
		students []models.Student
		err      error
	)
	if year != nil {
		students, err = e.studentRepo.ListByYear(ctx, *year)
	} else {
		students, err = e.studentRepo.List(ctx)
	}
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn().Err(cerr).Msg("Failed to close export workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name export sheet: %w", err)
	}

	if err := e.writeRow(f, 1, toAnyRow(exportHeaders)); err != nil {
		return err
	}
	for i, s := range students {
		row := []interface{}{
			s.ID, s.Name, s.Surname, s.ParentName, s.Mobile, s.ParentMobile, s.Study, s.Prof, s.Year,
			s.ServiceCost, s.ServicePayed, s.AnnualCost, s.AnnualPayed, s.IsSessionOpen,
		}
		if err := e.writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write export workbook: %w", err)
	}

	e.logger.Info().Int("rows", len(students)).Msg("Student roster exported")
	return nil
}

func (e *StudentExporter) writeRow(f *excelize.File, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write export row %d: %w", rowNum, err)
	}
	return nil
}

func toAnyRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
