package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogri-la/gear-journey-go/src/http"
)

var fastConfig = Config{
	MaxAttempts:  3,
	InitialDelay: 10 * time.Millisecond,
	MaxDelay:     100 * time.Millisecond,
}

// scriptedClient returns the scripted responses in order, then repeats the last one
type scriptedClient struct {
	calls     atomic.Int32
	responses []*http.Response
}

func (c *scriptedClient) next() *http.Response {
	n := int(c.calls.Add(1))
	if n > len(c.responses) {
		n = len(c.responses)
	}
	return c.responses[n-1]
}

func (c *scriptedClient) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.next(), nil
}

func (c *scriptedClient) Head(ctx context.Context, url string) (*http.Response, error) {
	return c.next(), nil
}

func TestWithRetry_Success(t *testing.T) {
	client := http.NewMockHTTPClient()
	client.SetResponse("http://example.com/items.json", &http.Response{StatusCode: 200, Body: []byte("[]")})

	resp, err := WithRetry(context.Background(), client, "http://example.com/items.json", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Len(t, client.GetCalls(), 1)
}

func TestWithRetry_ServerErrorThenSuccess(t *testing.T) {
	client := &scriptedClient{responses: []*http.Response{
		{StatusCode: 500},
		{StatusCode: 200, Body: []byte("ok")},
	}}

	resp, err := WithRetry(context.Background(), client, "http://example.com", fastConfig)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 2, client.calls.Load())
}

func TestWithRetry_RateLimit(t *testing.T) {
	client := &scriptedClient{responses: []*http.Response{
		{StatusCode: 429, Headers: map[string]string{"Retry-After": "1"}},
		{StatusCode: 200},
	}}

	resp, err := WithRetry(context.Background(), client, "http://example.com", fastConfig)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 2, client.calls.Load())
}

func TestWithRetry_PermanentClientError(t *testing.T) {
	client := http.NewMockHTTPClient()
	client.SetResponse("http://example.com", &http.Response{StatusCode: 404, Body: []byte("not found")})

	resp, err := WithRetry(context.Background(), client, "http://example.com", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Len(t, client.GetCalls(), 1, "no retry on 404")
}

func TestWithRetry_NetworkErrorExhaustsRetries(t *testing.T) {
	client := http.NewMockHTTPClient()
	client.SetError("http://example.com", errors.New("network error"))

	_, err := WithRetry(context.Background(), client, "http://example.com", fastConfig)
	require.Error(t, err)
	assert.Len(t, client.GetCalls(), 3)
}

func TestWithRetry_ServerErrorExhaustsRetries(t *testing.T) {
	client := &scriptedClient{responses: []*http.Response{{StatusCode: 503}}}

	resp, err := WithRetry(context.Background(), client, "http://example.com", fastConfig)
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode, "last response is returned")
	assert.EqualValues(t, 3, client.calls.Load())
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	client := &scriptedClient{responses: []*http.Response{{StatusCode: 500}}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	config := Config{
		MaxAttempts:  10,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
	}

	_, err := WithRetry(ctx, client, "http://example.com", config)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Head(t *testing.T) {
	inner := &scriptedClient{responses: []*http.Response{
		{StatusCode: 502},
		{StatusCode: 200},
	}}

	resp, err := NewClient(inner, fastConfig).Head(context.Background(), "http://cdn.example.com/5/1.json")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 2, inner.calls.Load())
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		err        error
		want       bool
	}{
		{"Success 200", 200, nil, false},
		{"Redirect 301", 301, nil, false},
		{"Not found 404", 404, nil, false},
		{"Rate limit 429", 429, nil, true},
		{"Server error 500", 500, nil, true},
		{"Service unavailable 503", 503, nil, true},
		{"Network error", 0, errors.New("network error"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.err == nil {
				resp = &http.Response{StatusCode: tt.statusCode}
			}
			assert.Equal(t, tt.want, shouldRetry(resp, tt.err))
		})
	}
}

func TestGetRetryDelay(t *testing.T) {
	config := Config{InitialDelay: 1 * time.Second, MaxDelay: 8 * time.Second}

	assert.Equal(t, 1*time.Second, getRetryDelay(nil, 1, config))
	assert.Equal(t, 2*time.Second, getRetryDelay(nil, 2, config))
	assert.Equal(t, 4*time.Second, getRetryDelay(nil, 3, config))
	assert.Equal(t, 8*time.Second, getRetryDelay(nil, 4, config), "capped")
	assert.Equal(t, 8*time.Second, getRetryDelay(nil, 5, config), "capped")

	rateLimited := &http.Response{StatusCode: 429, Headers: map[string]string{"Retry-After": "5"}}
	assert.Equal(t, 5*time.Second, getRetryDelay(rateLimited, 1, config))

	rateLimited.Headers["Retry-After"] = "100"
	assert.Equal(t, 8*time.Second, getRetryDelay(rateLimited, 1, config), "Retry-After capped at max delay")
}

func TestBackoff(t *testing.T) {
	config := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, Backoff(1, config))
	assert.Equal(t, 200*time.Millisecond, Backoff(2, config))
	assert.Equal(t, 300*time.Millisecond, Backoff(3, config), "capped")
	assert.Equal(t, 300*time.Millisecond, Backoff(10, config), "capped")
}
