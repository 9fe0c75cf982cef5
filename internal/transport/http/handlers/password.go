package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// PasswordHandler exposes the password reset endpoints.
type PasswordHandler struct {
	reset *usecase.PasswordResetService
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(reset *usecase.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{reset: reset}
}

// RegisterRoutes binds reset routes, applying optional middleware ahead of handlers.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup, resetMiddlewares ...gin.HandlerFunc) {
	requestChain := append([]gin.HandlerFunc{}, resetMiddlewares...)
	requestChain = append(requestChain, h.requestReset)
	r.POST("/request", requestChain...)

	confirmChain := append([]gin.HandlerFunc{}, resetMiddlewares...)
	confirmChain = append(confirmChain, h.confirmReset)
	r.POST("/confirm", confirmChain...)
}

// RequestReset godoc
// @Summary Request a password reset
// @Description Issues a reset token and enqueues the reset email. Responds identically for unknown addresses.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "Reset request payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/password/reset/request [post]
func (h *PasswordHandler) requestReset(c *gin.Context) {
	if h.reset == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "password reset service unavailable"))
		return
	}

	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	err := h.reset.RequestReset(c.Request.Context(), strings.TrimSpace(req.Email), req.CaptchaResponse, c.ClientIP())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCaptchaRequired, Status: http.StatusBadRequest, Message: "captcha response required"},
			{Err: usecase.ErrBadCaptcha, Status: http.StatusBadRequest, Message: "captcha verification failed"},
		}, http.StatusInternalServerError, "failed to request password reset")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "reset email sent if the account exists"})
}

// ConfirmReset godoc
// @Summary Complete a password reset
// @Description Validates the reset token and new password, updates the credential, and consumes the token.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordResetConfirmRequest true "Reset confirmation payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/password/reset/confirm [post]
func (h *PasswordHandler) confirmReset(c *gin.Context) {
	if h.reset == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "password reset service unavailable"))
		return
	}

	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "token and new_password are required"))
		return
	}

	err := h.reset.ConfirmReset(c.Request.Context(), strings.TrimSpace(req.Token), req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetTokenInvalid, Status: http.StatusBadRequest, Message: "reset token invalid"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
