package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/roster/internal/app/models/dto"
	"github.com/yigit/roster/internal/app/services"
	"github.com/yigit/roster/internal/middleware"
	"github.com/yigit/roster/internal/pkg/apperrors"
	"github.com/yigit/roster/internal/pkg/helpers"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StudentController handles student record endpoints
type StudentController struct {
	studentService *services.StudentService
	exporter       *services.StudentExporter
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService, exporter *services.StudentExporter, maxUploadBytes int64, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		exporter:       exporter,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// CreateStudent handles student creation
// @Summary Create a student
// @Description Creates a student record. Accepts multipart form data with optional passport, diplom and image files, or a JSON body without files.
// @Tags students
// @Accept multipart/form-data,json
// @Produce json
// @Param name formData string true "First name"
// @Param surname formData string true "Last name"
// @Param parentName formData string true "Parent name"
// @Param study formData string true "Study program"
// @Param prof formData string true "Profession"
// @Param serviceCost formData string true "Service cost"
// @Param servicePayed formData string true "Service payed"
// @Param annualCost formData string true "Annual cost"
// @Param annualPayed formData string false "Annual payed"
// @Param year formData int false "Cohort year"
// @Param passport formData file false "Passport scan"
// @Param diplom formData file false "Diploma scan"
// @Param image formData file false "Photo"
// @Security BearerAuth
// @Success 201 {object} dto.StudentResponse "Student added successfully"
// @Failure 400 {object} dto.ErrorResponse "Missing required fields"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	fields, uploads, err := readStudentRequest(ctx, c.maxUploadBytes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	cmd, err := dto.ParseCreateStudent(fields)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Invalid create student request")
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), cmd, uploads)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.StudentResponse{
		Message: "Student added successfully",
		Student: student,
	})
}

// UpdateStudent handles student updates
// @Summary Update a student
// @Description Replaces the provided fields of a student record. Attachments are only replaced when a new file of that kind is sent.
// @Tags students
// @Accept multipart/form-data,json
// @Produce json
// @Param id path string true "Student ID"
// @Param passport formData file false "Passport scan"
// @Param diplom formData file false "Diploma scan"
// @Param image formData file false "Photo"
// @Security BearerAuth
// @Success 200 {object} dto.StudentResponse "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid field value"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id := ctx.Param("id")

	fields, uploads, err := readStudentRequest(ctx, c.maxUploadBytes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	cmd, err := dto.ParseUpdateStudent(fields)
	if err != nil {
		c.logger.Warn().Err(err).Str("studentID", id).Msg("Invalid update student request")
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), id, cmd, uploads)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.StudentResponse{
		Message: "Student updated successfully",
		Student: student,
	})
}

// ListStudents returns every student
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Student
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	students, err := c.studentService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, students)
}

// ListStudentsByYear returns the cohort of one year
// @Summary List students by year
// @Tags students
// @Produce json
// @Param year path int true "Cohort year"
// @Security BearerAuth
// @Success 200 {array} models.Student
// @Failure 400 {object} dto.ErrorResponse "Year is not an integer"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "No students found for the selected year"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/year/{year} [get]
func (c *StudentController) ListStudentsByYear(ctx *gin.Context) {
	year, err := helpers.ParseYear(ctx.Param("year"))
	if err != nil || ctx.Param("year") == "" {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("year must be an integer").
			WithDetails(map[string]interface{}{"field": dto.FieldYear}))
		return
	}

	students, err := c.studentService.ListByYear(ctx.Request.Context(), year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, students)
}

// GetStudent returns one student
// @Summary Get a student
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Security BearerAuth
// @Success 200 {object} models.Student
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.studentService.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, student)
}

// ExportStudents streams the roster as an xlsx workbook
// @Summary Export students
// @Tags students
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int false "Only export this cohort year"
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse "Year is not an integer"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/export [get]
func (c *StudentController) ExportStudents(ctx *gin.Context) {
	var year *int
	if raw, ok := ctx.GetQuery("year"); ok && raw != "" {
		y, err := helpers.ParseYear(raw)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("year must be an integer").
				WithDetails(map[string]interface{}{"field": dto.FieldYear}))
			return
		}
		year = &y
	}

	var buf bytes.Buffer
	if err := c.exporter.Export(ctx.Request.Context(), year, &buf); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filename := fmt.Sprintf("students-%s.xlsx", time.Now().Format("20060102"))
	if year != nil {
		filename = fmt.Sprintf("students-%d.xlsx", *year)
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
