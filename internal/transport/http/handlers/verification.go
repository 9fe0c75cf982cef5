package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// VerificationHandler exposes email confirmation endpoints.
type VerificationHandler struct {
	verification *usecase.VerificationService
}

// NewVerificationHandler constructs VerificationHandler.
func NewVerificationHandler(verification *usecase.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

// RegisterRoutes binds verification routes.
func (h *VerificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/resend", h.resend)
	r.POST("/confirm", h.confirm)
}

// Resend godoc
// @Summary Request a fresh confirmation email
// @Description Re-sends the verification email for the account tied to the resend token.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body ResendConfirmationRequest true "Resend request payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/verification/resend [post]
func (h *VerificationHandler) resend(c *gin.Context) {
	if h.verification == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "verification service unavailable"))
		return
	}

	var req ResendConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "token is required"))
		return
	}

	err := h.verification.RequestResend(c.Request.Context(), strings.TrimSpace(req.Token), strings.TrimSpace(req.Language))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTokenNotFound, Status: http.StatusNotFound, Message: "token not found"},
			{Err: usecase.ErrConfirmationInProgress, Status: http.StatusConflict, Message: "confirmation already in progress"},
			{Err: usecase.ErrUnsupportedLanguage, Status: http.StatusBadRequest, Message: "unsupported language"},
			{Err: usecase.ErrAlreadyVerified, Status: http.StatusConflict, Message: "email already verified"},
		}, http.StatusInternalServerError, "failed to resend confirmation")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "confirmation email sent"})
}

// Confirm godoc
// @Summary Confirm an email address
// @Description Activates the pending account tied to the confirmation key.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body ConfirmEmailRequest true "Confirmation payload"
// @Success 200 {object} ConfirmEmailResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/verification/confirm [post]
func (h *VerificationHandler) confirm(c *gin.Context) {
	if h.verification == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "verification service unavailable"))
		return
	}

	var req ConfirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "key is required"))
		return
	}

	user, err := h.verification.ConfirmEmail(c.Request.Context(), strings.TrimSpace(req.Key))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTokenNotFound, Status: http.StatusNotFound, Message: "confirmation key not found"},
			{Err: usecase.ErrAlreadyVerified, Status: http.StatusConflict, Message: "email already verified"},
		}, http.StatusInternalServerError, "failed to confirm email")
		return
	}

	c.JSON(http.StatusOK, ConfirmEmailResponse{
		User:    newUserSummary(user),
		Message: "email confirmed",
	})
}
