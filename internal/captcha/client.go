package captcha

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Client is an HTTP client for a remote CAPTCHA solving service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new solver client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type solveResponse struct {
	Text   string `json:"text"`
	Solved bool   `json:"solved"`
}

// Solve submits the challenge image link and returns the solved text. An
// unsolved challenge returns NotSolved without an error; transport and
// decode problems return errors.
func (c *Client) Solve(ctx context.Context, imageLink string) (string, error) {
	start := time.Now()
	defer func() {
		SolveDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	endpoint := fmt.Sprintf("%s/solve?%s", c.baseURL, url.Values{"image": {imageLink}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		SolveErrorsTotal.Inc()
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		SolveErrorsTotal.Inc()
		return "", fmt.Errorf("solver returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	var solved solveResponse
	err = json.Unmarshal(body, &solved)
	if err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if !solved.Solved || solved.Text == "" {
		SolvesUnsolvedTotal.Inc()
		c.logger.Debug("captcha-not-solved", zap.String("image", imageLink))
		return NotSolved, nil
	}

	SolvesTotal.Inc()
	c.logger.Debug("captcha-solved",
		zap.String("image", imageLink),
		zap.Duration("elapsed", time.Since(start)))

	return solved.Text, nil
}
