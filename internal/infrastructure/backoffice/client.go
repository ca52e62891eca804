// Package backoffice talks to the back-office REST API that owns products,
// clients, orders and invoices.
package backoffice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sangkips/velo-register/internal/config"
	domainRepo "github.com/sangkips/velo-register/internal/domain/repository"
	"github.com/sangkips/velo-register/pkg/apperror"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Client implements domainRepo.BackOfficeGateway over HTTP
type Client struct {
	baseURL      string
	http         *http.Client
	breaker      *gobreaker.CircuitBreaker[[]byte]
	maxListPages int
	maxDownload  int64
	logger       *zap.Logger
}

var _ domainRepo.BackOfficeGateway = (*Client)(nil)

// NewClient creates a back-office client. httpClient may be nil.
func NewClient(cfg config.BackOfficeConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	maxPages := cfg.MaxListPages
	if maxPages <= 0 {
		maxPages = 50
	}
	maxDownload := cfg.DownloadMaxBytes
	if maxDownload <= 0 {
		maxDownload = 20 << 20
	}

	logger = logger.Named("backoffice")
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "backoffice",
		MaxRequests: cfg.BreakerHalfOpen,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Only transport failures say anything about the back office's health.
		IsSuccessful: func(err error) bool {
			return err == nil || apperror.KindOf(err) != apperror.KindTransport
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         httpClient,
		breaker:      breaker,
		maxListPages: maxPages,
		maxDownload:  maxDownload,
		logger:       logger,
	}
}

// BreakerState reports the circuit breaker state: closed, half-open or open
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends one request through the circuit breaker and returns the body of
// a 2xx response. Every other outcome is an *apperror.AppError.
func (c *Client) do(ctx context.Context, token *oauth2.Token, method, rawURL string, payload any) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, token, method, rawURL, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, apperror.NewTransportError("Back office temporarily unavailable", err)
	}
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, token *oauth2.Token, method, rawURL string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, rawURL, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, apperror.NewTransportError("Invalid back-office request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		token.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return nil, apperror.NewTransportError("Back office unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
	if err != nil {
		return nil, apperror.NewTransportError("Failed to read back-office response", err)
	}
	if int64(len(data)) > c.maxDownload {
		return nil, apperror.NewTransportError("Back-office response too large", fmt.Errorf("more than %d bytes", c.maxDownload))
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}
	return nil, statusError(resp.StatusCode, data)
}

// statusError maps a non-2xx back-office response onto the register's error kinds
func statusError(status int, body []byte) error {
	cause := fmt.Errorf("back office answered %d", status)
	switch status {
	case http.StatusNotFound:
		appErr := apperror.NewNotFoundError("Resource")
		if msg := errorMessage(body); msg != "" {
			appErr.Message = msg
		}
		appErr.Err = cause
		return appErr
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperror.NewAuthExpiredError(cause)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		appErr := apperror.NewValidationError(fieldErrors(body))
		if msg := errorMessage(body); msg != "" {
			appErr.Message = msg
		}
		appErr.Err = cause
		return appErr
	default:
		return apperror.NewTransportError("Back office error", cause)
	}
}

// errorMessage reads the "error" or "detail" key the back office uses for
// non-field errors.
func errorMessage(body []byte) string {
	var envelope struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Detail
}

// fieldErrors reads a {"field": ["message", ...]} validation body
func fieldErrors(body []byte) []apperror.FieldError {
	var raw map[string]json.RawMessage
	if json.Unmarshal(body, &raw) != nil {
		return nil
	}

	var out []apperror.FieldError
	for field, value := range raw {
		if field == "error" || field == "detail" {
			continue
		}
		var messages []string
		if json.Unmarshal(value, &messages) == nil {
			for _, m := range messages {
				out = append(out, apperror.FieldError{Field: field, Message: m})
			}
			continue
		}
		var message string
		if json.Unmarshal(value, &message) == nil {
			out = append(out, apperror.FieldError{Field: field, Message: message})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func decodeJSON[T any](data []byte, what string) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, apperror.NewTransportError("Unexpected "+what+" response", err)
	}
	return &v, nil
}
