package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"
)

// HTTPClient interface for mockable HTTP operations
type HTTPClient interface {
	Get(ctx context.Context, url string) (*Response, error)
	Head(ctx context.Context, url string) (*Response, error)
}

// Response wraps HTTP response data
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RealHTTPClient implements HTTPClient using net/http
type RealHTTPClient struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
}

// NewRealHTTPClient creates a new real HTTP client.
// Extra headers are sent with every request.
func NewRealHTTPClient(transport http.RoundTripper, userAgent string, headers map[string]string) *RealHTTPClient {
	return &RealHTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		userAgent: userAgent,
		headers:   headers,
	}
}

// Get performs an HTTP GET request
func (c *RealHTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url)
}

// Head performs an HTTP HEAD request. The returned body is empty.
func (c *RealHTTPClient) Head(ctx context.Context, url string) (*Response, error) {
	return c.do(ctx, http.MethodHead, url)
}

func (c *RealHTTPClient) do(ctx context.Context, method string, url string) (*Response, error) {
	ctx = c.withTrace(ctx, url)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch '%s': %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	headers := make(map[string]string)
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    headers,
	}, nil
}

// withTrace adds HTTP connection tracing to context
func (c *RealHTTPClient) withTrace(ctx context.Context, url string) context.Context {
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			slog.Debug("got connection", "url", url, "reused", info.Reused)
		},
	})
}

// MockHTTPClient implements HTTPClient for testing
type MockHTTPClient struct {
	mu            sync.Mutex
	responses     map[string]*Response
	headResponses map[string]*Response
	errors        map[string]error
	calls         []string
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		responses:     make(map[string]*Response),
		headResponses: make(map[string]*Response),
		errors:        make(map[string]error),
		calls:         make([]string, 0),
	}
}

// SetResponse sets a mock response for a URL
func (m *MockHTTPClient) SetResponse(url string, response *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[url] = response
}

// SetHeadResponse sets a mock HEAD response for a URL.
// HEAD falls back to the GET response when unset.
func (m *MockHTTPClient) SetHeadResponse(url string, response *Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headResponses[url] = response
}

// SetError sets a mock error for a URL
func (m *MockHTTPClient) SetError(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[url] = err
}

// GetCalls returns all URLs that were called
func (m *MockHTTPClient) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times a URL was requested
func (m *MockHTTPClient) CallCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, call := range m.calls {
		if call == url {
			count++
		}
	}
	return count
}

// Get returns a mock response or error
func (m *MockHTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)

	if err, exists := m.errors[url]; exists {
		return nil, err
	}

	if resp, exists := m.responses[url]; exists {
		return resp, nil
	}

	return nil, fmt.Errorf("no mock response configured for URL: %s", url)
}

// Head returns a mock HEAD response, a 404 when nothing is configured
func (m *MockHTTPClient) Head(ctx context.Context, url string) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)

	if err, exists := m.errors[url]; exists {
		return nil, err
	}

	if resp, exists := m.headResponses[url]; exists {
		return resp, nil
	}

	if resp, exists := m.responses[url]; exists {
		return &Response{StatusCode: resp.StatusCode, Headers: resp.Headers}, nil
	}

	return &Response{StatusCode: http.StatusNotFound}, nil
}
