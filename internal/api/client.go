package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"mindscape/internal/logging"
)

// headerTokenRefreshed is set by the backend on a 401 when it has already
// rotated the access token cookie; the request may then be replayed once.
const headerTokenRefreshed = "X-Token-Refreshed"

const headerRequestID = "X-Request-ID"

// Client handles communication with the MindScape API
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	token      string
	logger     zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithToken sends the token as a bearer Authorization header on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is added
// when the supplied client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			hc.Jar = newJar()
		}
		c.httpClient = hc
	}
}

// NewClient creates a new API client
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     newJar(),
		},
		timeout: timeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func newJar() http.CookieJar {
	// cookiejar.New only fails on a nil PublicSuffixList
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

// envelope is the response wrapper used by every endpoint
type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Msg        string          `json:"msg"`
}

// do executes a request and decodes the envelope data into out. It returns
// the envelope message so callers can surface server confirmations.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (string, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	resp, respBody, err := c.send(ctx, method, fullURL, payload)
	if err != nil {
		return "", err
	}

	// Retry exactly once after the backend refreshed the token
	if resp.StatusCode == http.StatusUnauthorized && resp.Header.Get(headerTokenRefreshed) == "true" {
		c.logger.Debug().Str(logging.FieldPath, path).Msg("token refreshed by server, retrying once")
		resp, respBody, err = c.send(ctx, method, fullURL, payload)
		if err != nil {
			return "", err
		}
	}

	var env envelope
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode, Body: string(respBody)}
		if decodeErr == nil {
			apiErr.Message = env.Msg
		}
		c.logger.Warn().
			Str(logging.FieldMethod, method).
			Str(logging.FieldPath, path).
			Int(logging.FieldStatus, resp.StatusCode).
			Str("msg", apiErr.Message).
			Msg("request rejected")
		return "", apiErr
	}

	if decodeErr != nil {
		return "", fmt.Errorf("failed to parse response: %w", decodeErr)
	}
	if !env.Success {
		return "", &Error{StatusCode: resp.StatusCode, Message: env.Msg, Body: string(respBody)}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("failed to parse response data: %w", err)
		}
	}

	return env.Msg, nil
}

// send performs one HTTP round trip and reads the whole body
func (c *Client) send(ctx context.Context, method, fullURL string, payload []byte) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	reqID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set(headerRequestID, reqID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).
			Str(logging.FieldRequestID, reqID).
			Str(logging.FieldMethod, method).
			Str(logging.FieldPath, req.URL.Path).
			Msg("request failed")
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().
		Str(logging.FieldRequestID, reqID).
		Str(logging.FieldMethod, method).
		Str(logging.FieldPath, req.URL.Path).
		Int(logging.FieldStatus, resp.StatusCode).
		Float64(logging.FieldLatency, float64(time.Since(start).Milliseconds())).
		Msg("request completed")

	return resp, body, nil
}

// Cookies returns the session cookies held for the API host.
func (c *Client) Cookies() []*http.Cookie {
	u, err := url.Parse(c.baseURL + "/")
	if err != nil || c.httpClient.Jar == nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(u)
}

// SetCookies restores previously saved session cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	u, err := url.Parse(c.baseURL + "/")
	if err != nil || c.httpClient.Jar == nil || len(cookies) == 0 {
		return
	}
	restored := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		cp := *ck
		if cp.Path == "" {
			cp.Path = "/"
		}
		restored = append(restored, &cp)
	}
	c.httpClient.Jar.SetCookies(u, restored)
}

// ClearCookies drops every stored cookie.
func (c *Client) ClearCookies() {
	c.httpClient.Jar = newJar()
}
