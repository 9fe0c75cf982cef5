package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/config"
)

// Verifier validates captcha responses against a reCAPTCHA-compatible
// siteverify endpoint.
type Verifier struct {
	cfg    config.CaptchaSettings
	client *http.Client
	logger *zap.Logger
}

// NewVerifier constructs a Verifier with a bounded request timeout.
func NewVerifier(cfg config.CaptchaSettings, logger *zap.Logger) *Verifier {
	return &Verifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.VerifyTimeout},
		logger: logger,
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// Verify posts the challenge response to the provider and reports whether it
// was accepted. An empty response is rejected without a network call.
func (v *Verifier) Verify(ctx context.Context, response string) (bool, error) {
	if response == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.cfg.Secret)
	form.Set("response", response)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify captcha: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha provider returned status %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode captcha response: %w", err)
	}

	if !body.Success && len(body.ErrorCodes) > 0 {
		v.logger.Debug("captcha rejected", zap.Strings("error_codes", body.ErrorCodes))
	}

	return body.Success, nil
}

var _ port.CaptchaVerifier = (*Verifier)(nil)
