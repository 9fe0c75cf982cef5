package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// RegistrationHandler exposes account creation and pre-registration validation endpoints.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterRoutes binds registration routes, applying optional middleware ahead of the register handler.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup, registerMiddlewares ...gin.HandlerFunc) {
	if len(registerMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, registerMiddlewares...)
		chain = append(chain, h.register)
		r.POST("/register", chain...)
	} else {
		r.POST("/register", h.register)
	}

	r.POST("/register/validate-email", h.validateEmail)
	r.POST("/register/validate-username", h.validateUsername)
}

// Register godoc
// @Summary Register a new account
// @Description Creates a pending account with a system-assigned username and sends a verification email.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration request payload"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *RegistrationHandler) register(c *gin.Context) {
	if h.registration == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "registration service unavailable"))
		return
	}

	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	user, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		Email:           strings.TrimSpace(req.Email),
		Password:        req.Password,
		CaptchaResponse: req.CaptchaResponse,
		Language:        strings.TrimSpace(req.Language),
		IP:              c.ClientIP(),
		UserAgent:       c.Request.UserAgent(),
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRegistrationDisabled, Status: http.StatusForbidden, Message: "registration is disabled"},
			{Err: usecase.ErrCaptchaRequired, Status: http.StatusBadRequest, Message: "captcha response required"},
			{Err: usecase.ErrBadCaptcha, Status: http.StatusBadRequest, Message: "captcha verification failed"},
			{Err: usecase.ErrRegistrationFailed, Status: http.StatusBadRequest, Message: "registration failed"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrSimilarUsernameRecentlyUsed, Status: http.StatusBadRequest, Message: "registration failed"},
			{Err: usecase.ErrRegistrationUnavailable, Status: http.StatusServiceUnavailable, Message: "registration unavailable"},
		}, http.StatusInternalServerError, "failed to register account")
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		User:    newUserSummary(user),
		Message: "verification required",
	})
}

// ValidateEmail godoc
// @Summary Check whether an email address can be registered
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body EmailValidationRequest true "Email validation payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/register/validate-email [post]
func (h *RegistrationHandler) validateEmail(c *gin.Context) {
	if h.registration == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "registration service unavailable"))
		return
	}

	var req EmailValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	err := h.registration.ValidateEmail(c.Request.Context(), strings.TrimSpace(req.Email), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRegistrationFailed, Status: http.StatusBadRequest, Message: "registration failed"},
		}, http.StatusInternalServerError, "failed to validate email")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "email available"})
}

// ValidateUsername godoc
// @Summary Check a username candidate against recently registered names
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body UsernameValidationRequest true "Username validation payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/register/validate-username [post]
func (h *RegistrationHandler) validateUsername(c *gin.Context) {
	if h.registration == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "registration service unavailable"))
		return
	}

	var req UsernameValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username is required"))
		return
	}

	err := h.registration.ValidateUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSimilarUsernameRecentlyUsed, Status: http.StatusBadRequest, Message: "similar username recently used"},
		}, http.StatusInternalServerError, "failed to validate username")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "username available"})
}
