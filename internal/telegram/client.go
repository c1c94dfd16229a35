package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dripfeed/internal/logging"
)

// ClientConfig contains configuration for the Telegram client.
type ClientConfig struct {
	// Token is the Bot API token.
	Token string

	// BaseURL is the Bot API base URL.
	BaseURL string

	// Timeout is the HTTP request timeout. It must exceed the long-poll
	// timeout passed to GetUpdates.
	Timeout time.Duration

	// RetryAttempts is the number of retries for transient failures.
	RetryAttempts int

	// RetryDelay is the delay between retries.
	RetryDelay time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults for the given token.
func DefaultClientConfig(token string) ClientConfig {
	return ClientConfig{
		Token:         token,
		BaseURL:       "https://api.telegram.org",
		Timeout:       60 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// APIError is a terminal Bot API rejection (4xx class).
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

// Client talks to the Telegram Bot API over plain HTTP.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *slog.Logger
}

// NewClient constructs a Bot API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logging.NewComponentLogger(cfg.Logger, "telegram"),
	}
}

// GetMe verifies the token by fetching the bot's own identity.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	raw, err := c.call(ctx, "getMe", url.Values{})
	if err != nil {
		return nil, err
	}
	var me User
	if err := json.Unmarshal(raw, &me); err != nil {
		return nil, fmt.Errorf("decode getMe result: %w", err)
	}
	return &me, nil
}

// SendMessage sends a plain-text message.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	params := url.Values{}
	params.Set("chat_id", chatID)
	params.Set("text", text)
	_, err := c.call(ctx, "sendMessage", params)
	return err
}

// GetUpdates long-polls for updates past the given offset. timeout is the
// server-side hold time in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeout))
	params.Set("allowed_updates", `["message"]`)

	raw, err := c.call(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.cfg.BaseURL, c.cfg.Token, method)
}

// call posts a form-encoded Bot API request and unwraps the response
// envelope, retrying transient failures.
func (c *Client) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	body := params.Encode()
	request := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader([]byte(body)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}
	return c.do(ctx, method, request)
}

type requestFactory func() (*http.Request, error)

func (c *Client) do(ctx context.Context, method string, build requestFactory) (json.RawMessage, error) {
	attempts := c.cfg.RetryAttempts + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying telegram request",
				logging.String("method", method),
				logging.Int("attempt", attempt),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("build %s request: %w", method, err)
		}

		result, retryable, err := c.roundTrip(req, method)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", method, attempts, lastErr)
}

func (c *Client) roundTrip(req *http.Request, method string) (json.RawMessage, bool, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		if resp.StatusCode >= 500 {
			return nil, true, fmt.Errorf("%s: http %d", method, resp.StatusCode)
		}
		return nil, false, fmt.Errorf("decode %s response: %w", method, err)
	}

	if envelope.OK {
		return envelope.Result, false, nil
	}

	apiErr := &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
	// 429 and server-side errors are worth retrying; other API rejections
	// are terminal.
	if envelope.ErrorCode == http.StatusTooManyRequests || envelope.ErrorCode >= 500 {
		return nil, true, apiErr
	}
	return nil, false, apiErr
}
