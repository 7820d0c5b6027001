package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"post-wizard-bot/internal/domain"
	"post-wizard-bot/internal/infra/metrics"
)

const maxResponseBytes = 1 << 20

var (
	// ErrUnexpectedStatus — вебхук ответил не 2xx.
	ErrUnexpectedStatus = errors.New("webhook: unexpected status")
	// ErrInvalidBody — тело ответа не JSON-объект.
	ErrInvalidBody = errors.New("webhook: invalid response body")
)

// Client отправляет JSON во внешний вебхук автоматизации или в релей.
type Client struct {
	http     *http.Client
	endpoint string
	target   string
}

// Option настраивает клиента.
type Option func(*Client)

// WithHTTPClient подменяет http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout задаёт таймаут одного запроса.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// NewClient создаёт клиента. Адрес обязателен.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("webhook: endpoint is required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("webhook: parse endpoint: %w", err)
	}
	c := &Client{
		http:     &http.Client{Timeout: 60 * time.Second},
		endpoint: parsed.String(),
		target:   parsed.Host,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Submit делает одну попытку POST и разбирает ответ как JSON-объект.
func (c *Client) Submit(ctx context.Context, payload any) (domain.SubmitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("webhook: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("webhook", "submit", c.target, start, err)
		return nil, fmt.Errorf("webhook: do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.ObserveNetworkRequest("webhook", "submit", c.target, start, err)
		return nil, fmt.Errorf("webhook: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		metrics.ObserveNetworkRequest("webhook", "submit", c.target, start, err)
		return nil, err
	}
	var result domain.SubmitResult
	if err := json.Unmarshal(respBody, &result); err != nil || result == nil {
		if err == nil {
			err = errors.New("null body")
		}
		err = fmt.Errorf("%w: %v", ErrInvalidBody, err)
		metrics.ObserveNetworkRequest("webhook", "submit", c.target, start, err)
		return nil, err
	}
	metrics.ObserveNetworkRequest("webhook", "submit", c.target, start, nil)
	return result, nil
}
