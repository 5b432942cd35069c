package blitz

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	lhttp "github.com/wesleyorama2/blitz/internal/http"
)

// Defaults for the remote service.
const (
	DefaultHost    = "blitz.io"
	DefaultPort    = 80
	DefaultScheme  = "http"
	DefaultTimeout = 30 * time.Second

	// ClientTag is sent in X-API-Client on every request.
	ClientTag = "go"
)

const (
	loginPath   = "/login/api"
	executePath = "/api/1/curl/execute"
	statusPath  = "/api/1/jobs/%s/status"
	abortPath   = "/api/1/jobs/%s/abort"
)

// Client holds the connection identity and credentials for the remote
// service and performs the four API calls. The private key obtained from
// login replaces the API key on every later request.
type Client struct {
	username string
	apiKey   string
	host     string
	port     int
	scheme   string
	timeout  time.Duration
	hc       *http.Client
	logger   *zap.Logger

	mu         sync.RWMutex
	privateKey string

	transport *lhttp.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHost overrides the remote host.
func WithHost(host string) ClientOption {
	return func(c *Client) {
		if host != "" {
			c.host = host
		}
	}
}

// WithPort overrides the remote port.
func WithPort(port int) ClientOption {
	return func(c *Client) {
		if port > 0 {
			c.port = port
		}
	}
}

// WithScheme switches between http and https.
func WithScheme(scheme string) ClientOption {
	return func(c *Client) {
		if scheme != "" {
			c.scheme = scheme
		}
	}
}

// WithTimeout sets the per request timeout of the underlying transport.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient supplies the net/http client used for every call.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithClientLogger sets the logger used for request tracing.
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for user authenticated by apiKey.
func NewClient(user, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		username: user,
		apiKey:   apiKey,
		host:     DefaultHost,
		port:     DefaultPort,
		scheme:   DefaultScheme,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	transportOpts := []lhttp.ClientOption{lhttp.WithBaseURL(c.BaseURL())}
	if c.hc != nil {
		transportOpts = append(transportOpts, lhttp.WithHTTPClient(c.hc))
	} else {
		transportOpts = append(transportOpts, lhttp.WithTimeout(c.timeout))
	}
	c.transport = lhttp.NewClient(transportOpts...)

	return c
}

// BaseURL returns the root URL of the remote service.
func (c *Client) BaseURL() string {
	return fmt.Sprintf("%s://%s", c.scheme, net.JoinHostPort(c.host, strconv.Itoa(c.port)))
}

// Username returns the user the client authenticates as.
func (c *Client) Username() string {
	return c.username
}

// PrivateKey returns the session key from login, or "" before login.
func (c *Client) PrivateKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.privateKey
}

// SetPrivateKey stores the session key used instead of the API key.
func (c *Client) SetPrivateKey(key string) {
	c.mu.Lock()
	c.privateKey = key
	c.mu.Unlock()
}

// Headers returns the headers attached to every request. X-API-Key carries
// the private key once logged in, the API key before.
func (c *Client) Headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"X-API-User":   c.username,
		"X-API-Key":    c.authKey(),
		"X-API-Client": ClientTag,
	}
}

func (c *Client) authKey() string {
	if key := c.PrivateKey(); key != "" {
		return key
	}
	return c.apiKey
}

// Login exchanges the API key for a session key. A successful response
// carries api_key.
func (c *Client) Login(ctx context.Context) (gjson.Result, error) {
	return c.call(ctx, lhttp.NewRequest(http.MethodGet, loginPath))
}

// Authenticate logs in and stores the returned private key. It fails with
// a ServerError when the service refuses the login.
func (c *Client) Authenticate(ctx context.Context) error {
	resp, err := c.Login(ctx)
	if err != nil {
		return err
	}
	if !resp.Exists() {
		return newClientError("No response", nil)
	}
	if err := ServerErrorFrom(resp); err != nil {
		return err
	}
	key := resp.Get("api_key").String()
	if key == "" {
		return newClientError("Wrong response format", nil)
	}
	c.SetPrivateKey(key)
	return nil
}

// Execute queues a job described by options. options may be any value that
// encodes to a JSON object, or the already encoded bytes. A successful
// response carries job_id.
func (c *Client) Execute(ctx context.Context, options interface{}) (gjson.Result, error) {
	return c.call(ctx, lhttp.NewRequest(http.MethodPost, executePath).WithBody(options))
}

// JobStatus fetches the current status of a job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (gjson.Result, error) {
	return c.call(ctx, lhttp.NewRequest(http.MethodGet, fmt.Sprintf(statusPath, jobID)))
}

// AbortJob asks the service to stop a job.
func (c *Client) AbortJob(ctx context.Context, jobID string) (gjson.Result, error) {
	return c.call(ctx, lhttp.NewRequest(http.MethodPut, fmt.Sprintf(abortPath, jobID)).WithBody(""))
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// call performs one round trip. An empty or null body is returned as a
// non-existent gjson.Result; a body that is not a JSON object is a
// ClientError. HTTP status codes are not interpreted: the service reports
// failures in the body.
func (c *Client) call(ctx context.Context, req *lhttp.Request) (gjson.Result, error) {
	req.WithHeaders(c.Headers())

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return gjson.Result{}, newClientError("request failed", err)
	}

	c.logger.Debug("blitz api call",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status_code", resp.StatusCode),
		zap.Int64("response_ms", resp.GetResponseTimeMillis()),
	)

	if resp.IsEmpty() {
		return gjson.Result{}, nil
	}
	if !resp.IsJSON() {
		c.logger.Debug("blitz api returned non JSON body", zap.String("body", resp.GetBodyAsString()))
		return gjson.Result{}, newClientError(fmt.Sprintf("Invalid response (HTTP %d)", resp.StatusCode), nil)
	}

	doc := resp.GetBodyAsGJSON()
	if !doc.IsObject() {
		return gjson.Result{}, newClientError("Wrong response format", nil)
	}
	return doc, nil
}
