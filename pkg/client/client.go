// Package client talks to the tree API. It is what treectl and any other Go
// front end use to load the tree, push it back and log in.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/stoat/Mewton-family-tree/application/ports"
	"github.com/stoat/Mewton-family-tree/domain/tree"
	apperrors "github.com/stoat/Mewton-family-tree/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

// Client is an HTTP client for the tree API. Calls go through a circuit
// breaker so that a dead server fails fast instead of stalling every edit.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

var _ ports.TreeRemote = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tree-api",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Only transport failures and server errors count against the
		// server; a wrong password or a bad document is the caller's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || !apperrors.IsNetwork(err)
		},
	})
	return c
}

// Token returns the bearer token in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the password for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Password: password})
	if err != nil {
		return "", err
	}
	raw, err := c.do(ctx, http.MethodPost, "/api/auth", body)
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", apperrors.NewNetworkError("malformed login response", err)
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// GetTree returns the document exactly as the server sent it.
func (c *Client) GetTree(ctx context.Context) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/tree", nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// PutTree replaces the server's document with doc.
func (c *Client) PutTree(ctx context.Context, doc []byte) error {
	_, err := c.do(ctx, http.MethodPut, "/api/tree", doc)
	return err
}

// LoadTree implements ports.TreeLoader.
func (c *Client) LoadTree(ctx context.Context) (tree.Tree, error) {
	raw, err := c.GetTree(ctx)
	if err != nil {
		return tree.Tree{}, err
	}
	return tree.Decode(raw)
}

// SaveTree implements ports.TreeSaver.
func (c *Client) SaveTree(ctx context.Context, t tree.Tree) error {
	doc, err := tree.Encode(t)
	if err != nil {
		return err
	}
	return c.PutTree(ctx, doc)
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.roundTrip(ctx, method, path, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, apperrors.NewNetworkError("tree API is unavailable", err)
	}
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("Request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, apperrors.NewNetworkError(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to read response", err)
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, statusError(resp.StatusCode, raw)
}

type errorBody struct {
	Error string `json:"error"`
	Type  string `json:"type"`
	Code  string `json:"code"`
}

// statusError turns a non-2xx response into the matching AppError.
func statusError(status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		return apperrors.NewUnauthorizedError(msg)
	case status == http.StatusBadRequest:
		return apperrors.NewInvalidShapeError(msg).WithCode(body.Code)
	case status == http.StatusNotFound:
		err := apperrors.NewNotFoundError("resource")
		err.Message = msg
		return err
	case status == http.StatusTooManyRequests:
		err := apperrors.NewRateLimitError(0, "")
		err.Message = msg
		return err
	case status >= 500:
		return apperrors.NewNetworkError(fmt.Sprintf("server returned %d: %s", status, msg), nil)
	default:
		return apperrors.NewValidationError(msg)
	}
}
