package api

import "time"

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// CreateTaskRequest defines the payload for task creation.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateTaskRequest defines the payload for a partial task update. Absent
// fields are left unchanged; an empty object is accepted.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	Completed   *bool   `json:"completed"`
}

// AttachmentURLResponse is a time-limited download link.
type AttachmentURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
