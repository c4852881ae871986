package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yigit/roster/internal/app/models/dto"
	"github.com/yigit/roster/internal/app/services"
	"github.com/yigit/roster/internal/pkg/apperrors"
)

func invalidBody(cause error) error {
	return apperrors.NewValidationError("Invalid request format").
		WithDetails(map[string]interface{}{"reason": cause.Error()})
}

// readStudentRequest collects the scalar fields and attachment files of a
// create or update request. JSON bodies carry no files.
func readStudentRequest(ctx *gin.Context, maxMemory int64) (dto.StudentFields, services.UploadSet, error) {
	switch ctx.ContentType() {
	case binding.MIMEJSON:
		fields, err := jsonFields(ctx.Request.Body)
		return fields, services.UploadSet{}, err
	case binding.MIMEMultipartPOSTForm:
		if err := ctx.Request.ParseMultipartForm(maxMemory); err != nil {
			return nil, nil, invalidBody(err)
		}
		form := ctx.Request.MultipartForm
		return firstValues(form.Value), services.UploadsFromForm(form), nil
	default:
		if err := ctx.Request.ParseForm(); err != nil {
			return nil, nil, invalidBody(err)
		}
		return firstValues(ctx.Request.PostForm), services.UploadSet{}, nil
	}
}

func firstValues(values map[string][]string) dto.StudentFields {
	fields := make(dto.StudentFields, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			fields[key] = vs[0]
		}
	}
	return fields
}

// jsonFields flattens a JSON object into string fields. Numbers keep their
// literal text, booleans become "true"/"false" and null counts as present but empty.
func jsonFields(body io.Reader) (dto.StudentFields, error) {
	fields := make(dto.StudentFields)
	if body == nil {
		return fields, nil
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, invalidBody(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return fields, nil
		}
		return nil, invalidBody(err)
	}

	for key, value := range payload {
		switch v := value.(type) {
		case nil:
			fields[key] = ""
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		case bool:
			fields[key] = strconv.FormatBool(v)
		default:
			fields[key] = fmt.Sprint(v)
		}
	}
	return fields, nil
}
