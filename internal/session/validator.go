package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/httpclient"
)

// signInMarker appears in the response when the storefront bounced the
// request to its login flow, meaning the session is not usable.
const signInMarker = "ap/signin"

// Fetcher is the slice of the HTTP client the validator needs.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error)
}

// Validator establishes that a worker's client carries a usable session
// before the worker starts issuing stock checks.
type Validator struct {
	baseURL string
	path    string
	logger  *zap.Logger
}

// New creates a session validator.
func New(baseURL, path string, logger *zap.Logger) (*Validator, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url cannot be empty")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Validator{
		baseURL: baseURL,
		path:    path,
		logger:  logger,
	}, nil
}

// Validate issues the session probe through the given client. It returns an
// error when the session is unusable; callers retry until their attempt cap.
func (v *Validator) Validate(ctx context.Context, client Fetcher) error {
	resp, err := client.Get(ctx, v.baseURL+v.path, httpclient.BrowserHeaders())
	if err != nil {
		return fmt.Errorf("session probe: %w", err)
	}

	if resp.StatusCode != 200 {
		return fmt.Errorf("session probe returned status %d", resp.StatusCode)
	}

	if strings.Contains(string(resp.Body), signInMarker) {
		return fmt.Errorf("session redirected to sign-in")
	}

	v.logger.Debug("session-validated")

	return nil
}
