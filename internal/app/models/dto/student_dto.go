package dto

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/roster/internal/pkg/apperrors"
	"github.com/yigit/roster/internal/pkg/helpers"
)

// Request field names, shared by JSON bodies and multipart forms
const (
	FieldName                 = "name"
	FieldSurname              = "surname"
	FieldParentName           = "parentName"
	FieldMobile               = "mobile"
	FieldParentMobile         = "parentMobile"
	FieldStudy                = "study"
	FieldProf                 = "prof"
	FieldYear                 = "year"
	FieldServiceCost          = "serviceCost"
	FieldServicePayed         = "servicePayed"
	FieldAnnualCost           = "annualCost"
	FieldAnnualPayed          = "annualPayed"
	FieldIsSessionOpen        = "isSessionOpen"
	FieldIsNastrfication      = "isNastrfication"
	FieldIsNastrficationPayed = "isNastrficationPayed"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("field")
	})
	return v
}

// StudentFields holds the raw scalar values of a student request keyed by field name.
// A key that is present with an empty value is different from an absent key.
type StudentFields map[string]string

// Lookup returns a pointer to the value for key, or nil when the key is absent
func (f StudentFields) Lookup(key string) *string {
	v, ok := f[key]
	if !ok {
		return nil
	}
	return &v
}

// CreateStudentCommand is the validated, coerced input of the create operation
type CreateStudentCommand struct {
	Name         string
	Surname      string
	ParentName   string
	Mobile       string
	ParentMobile string
	Study        string
	Prof         string
	Year         int

	ServiceCost  float64
	ServicePayed float64
	AnnualCost   float64
	AnnualPayed  float64

	IsSessionOpen        bool
	IsNastrfication      bool
	IsNastrficationPayed bool
}

// UpdateStudentCommand is the validated, coerced input of the update operation.
// Nil pointers mean "field not sent"; the monetary fields are always written.
type UpdateStudentCommand struct {
	Name         *string
	Surname      *string
	ParentName   *string
	Mobile       *string
	ParentMobile *string
	Study        *string
	Prof         *string
	Year         *int

	ServiceCost  float64
	ServicePayed float64
	AnnualCost   float64
	AnnualPayed  float64

	IsSessionOpen        *bool
	IsNastrfication      *bool
	IsNastrficationPayed *bool
}

// createStudentSchema lists what must be present on creation. Identity and program
// strings must be non-empty; the three monetary inputs only have to be sent.
type createStudentSchema struct {
	Name         *string `field:"name" validate:"required,min=1"`
	Surname      *string `field:"surname" validate:"required,min=1"`
	ParentName   *string `field:"parentName" validate:"required,min=1"`
	Study        *string `field:"study" validate:"required,min=1"`
	Prof         *string `field:"prof" validate:"required,min=1"`
	ServiceCost  *string `field:"serviceCost" validate:"required"`
	ServicePayed *string `field:"servicePayed" validate:"required"`
	AnnualCost   *string `field:"annualCost" validate:"required"`
}

// ParseCreateStudent validates and coerces a create request
func ParseCreateStudent(fields StudentFields) (*CreateStudentCommand, error) {
	schema := createStudentSchema{
		Name:         fields.Lookup(FieldName),
		Surname:      fields.Lookup(FieldSurname),
		ParentName:   fields.Lookup(FieldParentName),
		Study:        fields.Lookup(FieldStudy),
		Prof:         fields.Lookup(FieldProf),
		ServiceCost:  fields.Lookup(FieldServiceCost),
		ServicePayed: fields.Lookup(FieldServicePayed),
		AnnualCost:   fields.Lookup(FieldAnnualCost),
	}
	if err := validate.Struct(schema); err != nil {
		return nil, missingFieldsError(err)
	}

	cmd := &CreateStudentCommand{
		Name:         fields[FieldName],
		Surname:      fields[FieldSurname],
		ParentName:   fields[FieldParentName],
		Mobile:       fields[FieldMobile],
		ParentMobile: fields[FieldParentMobile],
		Study:        fields[FieldStudy],
		Prof:         fields[FieldProf],
		ServiceCost:  helpers.ParseAmountOrZero(fields[FieldServiceCost]),
		ServicePayed: helpers.ParseAmountOrZero(fields[FieldServicePayed]),
		AnnualCost:   helpers.ParseAmountOrZero(fields[FieldAnnualCost]),
	}

	// annualPayed is parsed strictly on creation: a bad value is rejected, not zeroed
	if raw := fields.Lookup(FieldAnnualPayed); raw != nil {
		amount, err := helpers.ParseAmount(*raw)
		if err != nil {
			return nil, fieldError(FieldAnnualPayed, "annualPayed must be a non-negative number", err)
		}
		cmd.AnnualPayed = amount
	}

	var err error
	if cmd.Year, err = parseYear(fields); err != nil {
		return nil, err
	}
	if cmd.IsSessionOpen, err = parseFlag(fields, FieldIsSessionOpen); err != nil {
		return nil, err
	}
	if cmd.IsNastrfication, err = parseFlag(fields, FieldIsNastrfication); err != nil {
		return nil, err
	}
	if cmd.IsNastrficationPayed, err = parseFlag(fields, FieldIsNastrficationPayed); err != nil {
		return nil, err
	}

	return cmd, nil
}

// ParseUpdateStudent validates and coerces an update request
func ParseUpdateStudent(fields StudentFields) (*UpdateStudentCommand, error) {
	cmd := &UpdateStudentCommand{
		Name:         fields.Lookup(FieldName),
		Surname:      fields.Lookup(FieldSurname),
		ParentName:   fields.Lookup(FieldParentName),
		Mobile:       fields.Lookup(FieldMobile),
		ParentMobile: fields.Lookup(FieldParentMobile),
		Study:        fields.Lookup(FieldStudy),
		Prof:         fields.Lookup(FieldProf),
		ServiceCost:  helpers.ParseAmountOrZero(fields[FieldServiceCost]),
		ServicePayed: helpers.ParseAmountOrZero(fields[FieldServicePayed]),
		AnnualCost:   helpers.ParseAmountOrZero(fields[FieldAnnualCost]),
		AnnualPayed:  helpers.ParseAmountOrZero(fields[FieldAnnualPayed]),
	}

	for _, required := range []struct {
		key   string
		value *string
	}{
		{FieldName, cmd.Name},
		{FieldSurname, cmd.Surname},
		{FieldParentName, cmd.ParentName},
		{FieldStudy, cmd.Study},
		{FieldProf, cmd.Prof},
	} {
		if required.value != nil && *required.value == "" {
			return nil, fieldError(required.key, required.key+" must not be empty", nil)
		}
	}

	if _, ok := fields[FieldYear]; ok {
		year, err := parseYear(fields)
		if err != nil {
			return nil, err
		}
		cmd.Year = &year
	}

	flags := []struct {
		key    string
		target **bool
	}{
		{FieldIsSessionOpen, &cmd.IsSessionOpen},
		{FieldIsNastrfication, &cmd.IsNastrfication},
		{FieldIsNastrficationPayed, &cmd.IsNastrficationPayed},
	}
	for _, flag := range flags {
		if _, ok := fields[flag.key]; !ok {
			continue
		}
		v, err := parseFlag(fields, flag.key)
		if err != nil {
			return nil, err
		}
		*flag.target = &v
	}

	return cmd, nil
}

func parseYear(fields StudentFields) (int, error) {
	year, err := helpers.ParseYear(fields[FieldYear])
	if err != nil {
		return 0, fieldError(FieldYear, "year must be an integer", err)
	}
	return year, nil
}

func parseFlag(fields StudentFields, key string) (bool, error) {
	v, err := helpers.ParseFlag(fields[key])
	if err != nil {
		return false, fieldError(key, key+" must be a boolean", err)
	}
	return v, nil
}

func missingFieldsError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("All required fields must be provided")
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return apperrors.NewValidationError("All required fields must be provided").
		WithDetails(map[string]interface{}{"missing": missing})
}

func fieldError(field, message string, cause error) error {
	details := map[string]interface{}{"field": field}
	if cause != nil {
		details["reason"] = cause.Error()
	}
	return apperrors.NewValidationError(message).WithDetails(details)
}
