package dto

import "time"

// LoginRequest payload for all portal login screens.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OTPVerifyRequest payload for the facility second-factor step.
type OTPVerifyRequest struct {
	PendingToken string `json:"pending_token"`
	Code         string `json:"code"`
}

// OTPResendRequest payload for regenerating the facility code.
type OTPResendRequest struct {
	PendingToken string `json:"pending_token"`
}

// PendingResponse is the facility primary-step response.
type PendingResponse struct {
	PendingToken string    `json:"pending_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// UserResponse is the issued-session user payload.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
