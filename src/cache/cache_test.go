package cache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte("<wowhead><item id=\"19019\"/></wowhead>"))
	}))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestFileCachingTransport_CachesSuccessfulResponses(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)

	transport := NewFileCachingTransport(CacheConfig{Directory: t.TempDir(), DefaultTTLHours: 24}, http.DefaultTransport)
	client := &http.Client{Transport: transport}

	status, body := get(t, client, server.URL+"/classic/item=19019&xml")
	assert.Equal(t, 200, status)
	assert.Contains(t, body, "19019")

	status, body = get(t, client, server.URL+"/classic/item=19019&xml")
	assert.Equal(t, 200, status)
	assert.Contains(t, body, "19019")
	assert.EqualValues(t, 1, hits.Load(), "second request served from cache")
}

func TestFileCachingTransport_SkipsErrorsAndHead(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)

	transport := NewFileCachingTransport(CacheConfig{Directory: t.TempDir(), DefaultTTLHours: 24}, http.DefaultTransport)
	client := &http.Client{Transport: transport}

	status, _ := get(t, client, server.URL+"/missing")
	assert.Equal(t, 404, status)
	get(t, client, server.URL+"/missing")
	assert.EqualValues(t, 2, hits.Load(), "non-2xx responses are not cached")

	for range 2 {
		resp, err := client.Head(server.URL + "/modelviewer/classic/meta/armor/5/1234.json")
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.EqualValues(t, 4, hits.Load(), "HEAD requests bypass the cache")
}

func TestFileCachingTransport_Expiry(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)

	dir := t.TempDir()
	transport := NewFileCachingTransport(CacheConfig{Directory: dir, DefaultTTLHours: 1, ItemTTLHours: 48}, http.DefaultTransport)
	client := &http.Client{Transport: transport}

	get(t, client, server.URL+"/other.json")
	get(t, client, server.URL+"/classic/item=1&xml")
	assert.EqualValues(t, 2, hits.Load())

	transport.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	get(t, client, server.URL+"/other.json")
	assert.EqualValues(t, 3, hits.Load(), "default ttl elapsed")

	get(t, client, server.URL+"/classic/item=1&xml")
	assert.EqualValues(t, 3, hits.Load(), "item xml ttl still fresh")
}

func TestMakeCacheKey(t *testing.T) {
	transport := NewFileCachingTransport(CacheConfig{Directory: t.TempDir()}, http.DefaultTransport)

	tests := []struct {
		url    string
		suffix string
	}{
		{"https://www.wowhead.com/classic/item=19019&xml", itemXMLSuffix},
		{"https://wow.zamimg.com/modelviewer/classic/meta/armor/5/1234.json", metaSuffix},
		{"https://wow.zamimg.com/modelviewer/classic/textures/1.webp", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, tt.url, nil)
			require.NoError(t, err)
			key := transport.makeCacheKey(req)
			assert.Len(t, key, 32+len(tt.suffix))
			assert.Equal(t, tt.suffix, key[32:])
		})
	}
}
