// internal/transport/client.go
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	xerrors "admin-console/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultTimeout = 10 * time.Second

// TokenSource yields the current session token, if any.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// UnauthorizedHandler is told which token the API rejected with 401.
type UnauthorizedHandler func(ctx context.Context, token string)

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
	UserAgent string
}

// Request mirrors request(method, path, body?, headers?).
type Request struct {
	Method string
	// Path is relative to the base URL and already escaped; callers escape
	// each segment with url.PathEscape.
	Path   string
	Query  url.Values
	Body   any
	Header http.Header

	// Anonymous requests carry no session token, so a 401 never
	// invalidates the session.
	Anonymous bool
}

// Envelope is the upstream API response shape.
type Envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}

// Client is the console's only path to the admin API.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	limiter        *rate.Limiter
	userAgent      string
	logger         *zap.Logger
}

func New(cfg Config, tokens TokenSource, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: cfg.Timeout},
		tokens:    tokens,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// OnUnauthorized registers the 401 hook.
func (c *Client) OnUnauthorized(h UnauthorizedHandler) {
	c.onUnauthorized = h
}

// Do sends the request and decodes the envelope's data into out (if non-nil).
// The returned envelope is non-nil whenever a response body was decoded.
func (c *Client) Do(ctx context.Context, req Request, out any) (*Envelope, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &xerrors.APIError{Kind: xerrors.ErrNetwork, Cause: err}
		}
	}

	httpReq, token, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}
	requestID := httpReq.Header.Get("X-Request-ID")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("api request failed",
			zap.String("request_id", requestID),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, &xerrors.APIError{Kind: xerrors.ErrNetwork, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &xerrors.APIError{Kind: xerrors.ErrNetwork, Status: resp.StatusCode, Cause: err}
	}

	c.logger.Debug("api request",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	env := decodeEnvelope(body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := classify(resp.StatusCode, env)
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil && token != "" {
			c.onUnauthorized(ctx, token)
		}
		return env, apiErr
	}

	if env == nil {
		if len(bytes.TrimSpace(body)) == 0 && out == nil {
			return &Envelope{Status: true}, nil
		}
		return nil, &xerrors.APIError{
			Kind:    xerrors.ErrServer,
			Status:  resp.StatusCode,
			Message: "malformed response from server",
		}
	}
	if !env.Status {
		return env, classify(http.StatusBadRequest, env)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env, &xerrors.APIError{
				Kind:    xerrors.ErrServer,
				Status:  resp.StatusCode,
				Message: "unexpected response shape",
				Cause:   err,
			}
		}
	}
	return env, nil
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, string, error) {
	u := *c.baseURL
	raw := c.baseURL.EscapedPath() + "/" + strings.TrimLeft(req.Path, "/")
	path, err := url.PathUnescape(raw)
	if err != nil {
		return nil, "", fmt.Errorf("invalid request path %q: %w", req.Path, err)
	}
	u.Path, u.RawPath = path, raw
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	httpReq.Header.Set("X-Request-ID", ulid.Make().String())

	var token string
	if c.tokens != nil && !req.Anonymous {
		if t, ok := c.tokens.Token(ctx); ok && t != "" {
			token = t
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, token, nil
}

func decodeEnvelope(body []byte) *Envelope {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	return &env
}

func classify(status int, env *Envelope) *xerrors.APIError {
	var (
		message string
		fields  []xerrors.FieldError
	)
	if env != nil {
		message = env.Message
		fields = parseFieldErrors(env.Errors)
	}
	return &xerrors.APIError{
		Kind:    xerrors.FromStatus(status, len(fields) > 0),
		Status:  status,
		Message: message,
		Fields:  fields,
	}
}

// parseFieldErrors accepts the shapes the API uses for validation failures:
// [{field, message}], ["message"], {"field": "message"} and {"field": ["message"]}.
func parseFieldErrors(raw json.RawMessage) []xerrors.FieldError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []xerrors.FieldError
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var messages []string
	if err := json.Unmarshal(raw, &messages); err == nil {
		out := make([]xerrors.FieldError, 0, len(messages))
		for _, m := range messages {
			out = append(out, xerrors.FieldError{Message: m})
		}
		return out
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil
	}
	out := make([]xerrors.FieldError, 0, len(asMap))
	for _, field := range slices.Sorted(maps.Keys(asMap)) {
		var one string
		if err := json.Unmarshal(asMap[field], &one); err == nil {
			out = append(out, xerrors.FieldError{Field: field, Message: one})
			continue
		}
		var many []string
		if err := json.Unmarshal(asMap[field], &many); err == nil {
			for _, m := range many {
				out = append(out, xerrors.FieldError{Field: field, Message: m})
			}
		}
	}
	return out
}

// IsTimeout reports whether err came from the client deadline.
func IsTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
