package fdp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/fdp-http-api/pkg/httpclient"
)

const (
	DefaultHost   = "localhost"
	DefaultPort   = 8080
	DefaultSource = "python"

	// EmailDomain is appended to the user name to form the identity header.
	EmailDomain = "uber.com"

	HeaderSource = "X-Uber-Source"
	HeaderEmail  = "X-Auth-Params-Email"
)

// Client issues FDP API calls on behalf of a single user.
type Client struct {
	email   string
	baseURL string
	source  string
	http    httpclient.Client
	log     Logger
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithHTTPClient replaces the default resty transport.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger for per-call debug output.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// WithSource overrides the X-Uber-Source header value.
func WithSource(source string) Option {
	return func(c *Client) {
		if s := strings.TrimSpace(source); s != "" {
			c.source = s
		}
	}
}

// New builds a client for http://host:port. An empty host or a non-positive
// port fall back to DefaultHost and DefaultPort. No I/O happens here.
func New(userName, host string, port int, opts ...Option) *Client {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	if port <= 0 {
		port = DefaultPort
	}

	c := &Client{
		email:   userName + "@" + EmailDomain,
		baseURL: fmt.Sprintf("http://%s:%d", host, port),
		source:  DefaultSource,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(0)
	}
	return c
}

// BaseURL returns the scheme, host and port every path is appended to.
func (c *Client) BaseURL() string { return c.baseURL }

// Email returns the identity attached to every call.
func (c *Client) Email() string { return c.email }

// headers returns the fixed header set for one call.
func (c *Client) headers() map[string]string {
	return map[string]string{
		HeaderSource: c.source,
		HeaderEmail:  c.email,
	}
}

// newRequest is the single place outbound requests are assembled.
func (c *Client) newRequest(method, path string, query Params, body any) httpclient.Request {
	return httpclient.Request{
		Method:  method,
		URL:     c.baseURL + path,
		Headers: c.headers(),
		Query:   query.Values(),
		Body:    body,
	}
}

// send performs the round trip. Transport errors are returned untouched.
func (c *Client) send(ctx context.Context, req httpclient.Request) (httpclient.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.log.WarnObj("fdp request failed", "fdp_request_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
		return nil, err
	}
	c.log.DebugObj("fdp request completed", "fdp_request", map[string]any{
		"method":     req.Method,
		"url":        req.URL,
		"status":     resp.StatusCode(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return resp, nil
}

func (c *Client) call(ctx context.Context, method, path string, query Params, body any) (httpclient.Response, error) {
	return c.send(ctx, c.newRequest(method, path, query, body))
}

// callText returns the status code and raw body text.
func (c *Client) callText(ctx context.Context, method, path string, query Params, body any) (int, string, error) {
	resp, err := c.call(ctx, method, path, query, body)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode(), resp.String(), nil
}

// callBody returns the status code and the normalized body.
func (c *Client) callBody(ctx context.Context, method, path string, query Params, body any) (int, Body, error) {
	resp, err := c.call(ctx, method, path, query, body)
	if err != nil {
		return 0, Body{}, err
	}
	b, err := Normalize(resp)
	if err != nil {
		return resp.StatusCode(), Body{}, err
	}
	return resp.StatusCode(), b, nil
}
