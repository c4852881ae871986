package dto

import "github.com/yigit/roster/internal/app/models"

// MessageResponse is a bare informational response
type MessageResponse struct {
	Message string `json:"message"`
}

// StudentResponse wraps a student returned by a write operation
type StudentResponse struct {
	Message string          `json:"message" example:"Student added successfully"`
	Student *models.Student `json:"student"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
