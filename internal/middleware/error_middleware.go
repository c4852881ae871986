package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/roster/internal/app/models/dto"
	"github.com/yigit/roster/internal/pkg/apperrors"
	"github.com/yigit/roster/internal/pkg/logger"
)

// HandleAPIError converts a service error into a status code and the standard error body
func HandleAPIError(c *gin.Context, err error) {
	status, errorDetail := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	c.JSON(status, dto.NewErrorResponse(errorDetail))
}

func classify(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, apperrors.MessageOf(err, "Validation failed")).
			WithSeverity(dto.ErrorSeverityWarning)
		if details := apperrors.DetailsOf(err); details != nil {
			if field, ok := details["field"].(string); ok {
				detail.WithField(field)
			}
			detail.WithDetails(details)
		}
		return http.StatusBadRequest, detail
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid username or password").
			WithSeverity(dto.ErrorSeverityWarning)
	case errors.Is(err, apperrors.ErrTokenMissing), errors.Is(err, apperrors.ErrTokenMalformed),
		errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenExpired):
		return tokenErrorDetail(err)
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, apperrors.MessageOf(err, "Resource not found")).
			WithSeverity(dto.ErrorSeverityInfo)
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Resource already exists")
	case errors.Is(err, apperrors.ErrPersistence):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Storage operation failed").
			WithSeverity(dto.ErrorSeverityCritical)
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
