package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// UserSummary describes a minimal view of an account returned by the API.
type UserSummary struct {
	ID           string            `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Status       domain.UserStatus `json:"status"`
	RegisteredAt time.Time         `json:"registered_at"`
	LastLogin    *time.Time        `json:"last_login,omitempty"`
}

func newUserSummary(user *domain.User) UserSummary {
	if user == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Status:       user.Status,
		RegisteredAt: user.RegisteredAt,
		LastLogin:    user.LastLogin,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email            string `json:"email" binding:"required"`
	Password         string `json:"password" binding:"required"`
	CaptchaResponse  string `json:"captcha_response"`
	SecondFactorCode string `json:"second_factor_code"`
}

// LoginResponse returns the authenticated identity.
type LoginResponse struct {
	User UserSummary `json:"user"`
}

// AccountNotActiveResponse carries the inactivity reason and, for unverified
// accounts, the token the client can use to request a new confirmation email.
type AccountNotActiveResponse struct {
	Error       string `json:"error"`
	Reason      string `json:"reason"`
	ResendToken string `json:"resend_token,omitempty"`
	TraceID     string `json:"trace_id,omitempty"`
}

// RegistrationRequest defines the payload for account creation.
type RegistrationRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	CaptchaResponse string `json:"captcha_response"`
	Language        string `json:"language"`
}

// RegistrationResponse describes a newly created pending account.
type RegistrationResponse struct {
	User    UserSummary `json:"user"`
	Message string      `json:"message"`
}

// EmailValidationRequest checks whether an email can be registered.
type EmailValidationRequest struct {
	Email string `json:"email" binding:"required"`
}

// UsernameValidationRequest checks a candidate against recently used names.
type UsernameValidationRequest struct {
	Username string `json:"username" binding:"required"`
}

// ResendConfirmationRequest asks for a fresh verification email.
type ResendConfirmationRequest struct {
	Token    string `json:"token" binding:"required"`
	Language string `json:"language"`
}

// ConfirmEmailRequest carries the confirmation key from the verification email.
type ConfirmEmailRequest struct {
	Key string `json:"key" binding:"required"`
}

// ConfirmEmailResponse returns the activated account.
type ConfirmEmailResponse struct {
	User    UserSummary `json:"user"`
	Message string      `json:"message"`
}

// PasswordResetRequest starts the reset flow for an email address.
type PasswordResetRequest struct {
	Email           string `json:"email" binding:"required"`
	CaptchaResponse string `json:"captcha_response"`
}

// PasswordResetConfirmRequest completes the reset flow.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}
