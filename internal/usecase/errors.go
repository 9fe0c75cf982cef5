package usecase

import "errors"

var (
	// ErrCaptchaRequired indicates a captcha response was expected but missing.
	ErrCaptchaRequired = errors.New("captcha response required")
	// ErrBadCaptcha indicates the external verifier rejected the response.
	ErrBadCaptcha = errors.New("captcha verification failed")
	// ErrInvalidCredentials indicates an unknown email or wrong password; the
	// two cases are intentionally merged.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordResetRequired indicates the account has no usable password.
	ErrPasswordResetRequired = errors.New("password reset required")
	// ErrAccountNotActive indicates the account is disabled or unverified.
	ErrAccountNotActive = errors.New("account is not active")
	// ErrTooManyTwoFactorFailures indicates the attempt budget for the current
	// captcha-pass window is exhausted; the caller must restart the whole flow.
	ErrTooManyTwoFactorFailures = errors.New("too many second factor failures")
	// ErrRegistrationFailed indicates registration was refused without
	// disclosing why.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrSimilarUsernameRecentlyUsed indicates the candidate username is too
	// close to a recently registered one.
	ErrSimilarUsernameRecentlyUsed = errors.New("similar username recently used")
	// ErrRegistrationDisabled indicates registration is switched off.
	ErrRegistrationDisabled = errors.New("registration is disabled")
	// ErrRegistrationUnavailable indicates site configuration or the
	// registration transaction failed.
	ErrRegistrationUnavailable = errors.New("registration unavailable")
	// ErrTokenNotFound indicates an unknown or expired resend token.
	ErrTokenNotFound = errors.New("token not found")
	// ErrConfirmationInProgress indicates a confirmation email was sent
	// recently and the cooldown has not elapsed.
	ErrConfirmationInProgress = errors.New("confirmation already in progress")
	// ErrUnsupportedLanguage indicates the requested language is not served.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrAlreadyVerified indicates the email was verified before the request.
	ErrAlreadyVerified = errors.New("email already verified")
	// ErrResetTokenInvalid indicates an unknown or expired password reset token.
	ErrResetTokenInvalid = errors.New("reset token invalid")
	// ErrWeakPassword indicates the new password failed the strength policy.
	ErrWeakPassword = errors.New("password too weak")
)

// Account inactivity reasons carried by AccountNotActiveError.
const (
	ReasonAccountDisabled  = "account_disabled"
	ReasonEmailNotVerified = "email_not_verified"
)

// AccountNotActiveError carries the inactivity reason and, for unverified
// accounts, the resend-confirmation token. It unwraps to ErrAccountNotActive.
type AccountNotActiveError struct {
	Reason string
	Token  string
}

// Error implements error.
func (e *AccountNotActiveError) Error() string {
	return "account is not active: " + e.Reason
}

// Unwrap allows errors.Is(err, ErrAccountNotActive).
func (e *AccountNotActiveError) Unwrap() error {
	return ErrAccountNotActive
}
