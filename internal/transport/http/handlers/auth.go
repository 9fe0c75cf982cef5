package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	if len(loginMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
		chain = append(chain, h.login)
		r.POST("/login", chain...)
	} else {
		r.POST("/login", h.login)
	}
}

// Login godoc
// @Summary Authenticate an account
// @Description Validates credentials, captcha state, and second factor, then returns the account identity.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request payload"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} AccountNotActiveResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	if h.auth == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "authentication service unavailable"))
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	user, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:            strings.TrimSpace(req.Email),
		Password:         req.Password,
		CaptchaResponse:  req.CaptchaResponse,
		SecondFactorCode: req.SecondFactorCode,
		IP:               c.ClientIP(),
		UserAgent:        c.Request.UserAgent(),
	})
	if err != nil {
		var notActive *usecase.AccountNotActiveError
		if errors.As(err, &notActive) {
			traceID, _ := c.Get("trace_id")
			traceIDStr, _ := traceID.(string)
			c.JSON(http.StatusForbidden, AccountNotActiveResponse{
				Error:       "account is not active",
				Reason:      notActive.Reason,
				ResendToken: notActive.Token,
				TraceID:     traceIDStr,
			})
			return
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCaptchaRequired, Status: http.StatusBadRequest, Message: "captcha response required"},
			{Err: usecase.ErrBadCaptcha, Status: http.StatusBadRequest, Message: "captcha verification failed"},
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrPasswordResetRequired, Status: http.StatusForbidden, Message: "password reset required"},
			{Err: usecase.ErrTooManyTwoFactorFailures, Status: http.StatusForbidden, Message: "too many second factor failures"},
		}, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{User: newUserSummary(user)})
}
