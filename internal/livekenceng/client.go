package livekenceng

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/metrics"
)

const (
	// DefaultBaseURL is the production member API host.
	DefaultBaseURL = "https://livekenceng.com"

	defaultTimeout     = 15 * time.Second
	defaultRequestRate = 5 // requests per second against the member API
)

// Client talks to the livekenceng.com member API. Member credentials
// accompany every request; the API has no session tokens of its own.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRequestRate overrides the client-side request rate limit.
func WithRequestRate(perSecond float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

// NewClient creates a member API client for the given credentials.
func NewClient(baseURL, email, password string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		email:      email,
		password:   password,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestRate), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common {success, message} wrapper around every member API
// response. Endpoint payloads embed it.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// do executes one member API call and decodes the response into out, which
// must embed envelope. The member API accepts JSON bodies on GET requests,
// matching how the upstream server expects credentials on read endpoints.
func (c *Client) do(ctx context.Context, method, path string, body any, out interface{ ok() (bool, string) }) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.GatewayError{Kind: domain.GatewayTimeout, Message: "rate limiter wait cancelled", Cause: err}
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.MemberAPIRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		kind := domain.GatewayNetwork
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			kind = domain.GatewayTimeout
		}
		metrics.MemberAPIRequestsTotal.WithLabelValues(path, string(kind)).Inc()
		return &domain.GatewayError{Kind: kind, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.MemberAPIRequestsTotal.WithLabelValues(path, string(domain.GatewayNetwork)).Inc()
		return &domain.GatewayError{Kind: domain.GatewayNetwork, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := statusError(resp.StatusCode, raw)
		metrics.MemberAPIRequestsTotal.WithLabelValues(path, string(gwErr.Kind)).Inc()
		return gwErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		metrics.MemberAPIRequestsTotal.WithLabelValues(path, string(domain.GatewayUnknown)).Inc()
		return &domain.GatewayError{Kind: domain.GatewayUnknown, Status: resp.StatusCode, Message: "unparseable response", Cause: err}
	}

	if ok, message := out.ok(); !ok {
		metrics.MemberAPIRequestsTotal.WithLabelValues(path, string(domain.GatewayUnknown)).Inc()
		if message == "" {
			message = "request rejected"
		}
		return &domain.GatewayError{Kind: domain.GatewayUnknown, Status: resp.StatusCode, Message: message}
	}

	metrics.MemberAPIRequestsTotal.WithLabelValues(path, "ok").Inc()
	return nil
}

// statusError maps an HTTP failure status to a gateway error kind: 400/422
// mean the gateway refused the request, 401/403 mean the member credential no
// longer matches the registered device.
func statusError(status int, raw []byte) *domain.GatewayError {
	var env envelope
	_ = json.Unmarshal(raw, &env)
	message := env.Message
	if message == "" {
		message = "http " + strconv.Itoa(status)
	}

	kind := domain.GatewayUnknown
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = domain.GatewayValidationRejected
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = domain.GatewayAuthMismatch
	}
	return &domain.GatewayError{Kind: kind, Status: status, Message: message}
}

func (e envelope) ok() (bool, string) { return e.Success, e.Message }

// credentials is the body fragment repeated on every member API call.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) credentials() credentials {
	return credentials{Email: c.email, Password: c.password}
}
