package cache

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	itemXMLSuffix = "-item-xml"
	metaSuffix    = "-meta"
)

// CacheConfig holds cache configuration
type CacheConfig struct {
	Directory       string `yaml:"directory"`
	DefaultTTLHours int    `yaml:"default_ttl_hours"`
	ItemTTLHours    int    `yaml:"item_ttl_hours"`
}

// FileCachingTransport implements http.RoundTripper with file-based caching.
// Only GET responses in the 2xx range are stored.
type FileCachingTransport struct {
	config    CacheConfig
	transport http.RoundTripper
	now       func() time.Time
}

// NewFileCachingTransport creates a new caching transport
func NewFileCachingTransport(config CacheConfig, transport http.RoundTripper) *FileCachingTransport {
	return &FileCachingTransport{
		config:    config,
		transport: transport,
		now:       time.Now,
	}
}

// RoundTrip implements http.RoundTripper with caching
func (t *FileCachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.transport.RoundTrip(req)
	}

	cacheKey := t.makeCacheKey(req)

	if !t.cacheExpired(cacheKey) {
		if cachedResp, err := t.readCacheEntry(cacheKey, req); err == nil {
			slog.Debug("cache hit", "url", req.URL.String())
			return cachedResp, nil
		}
	}

	slog.Info("fetching", "url", req.URL.String())
	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := t.writeCacheEntry(cacheKey, resp); err != nil {
		slog.Warn("failed to cache response", "url", req.URL.String(), "error", err)
		return resp, nil
	}

	// DumpResponse consumed the body, serve the stored copy
	return t.readCacheEntry(cacheKey, req)
}

// makeCacheKey creates a cache key from the request
func (t *FileCachingTransport) makeCacheKey(req *http.Request) string {
	key := req.URL.String()
	md5sum := md5.Sum([]byte(key))
	cacheKey := hex.EncodeToString(md5sum[:])

	if strings.HasSuffix(req.URL.Path, "&xml") || req.URL.Query().Has("xml") {
		return cacheKey + itemXMLSuffix
	}
	if strings.Contains(req.URL.Path, "/meta/") {
		return cacheKey + metaSuffix
	}

	return cacheKey
}

// cachePath returns the file path for a cache key
func (t *FileCachingTransport) cachePath(cacheKey string) string {
	return filepath.Join(t.config.Directory, cacheKey)
}

// ttl returns how long an entry with the given key stays fresh
func (t *FileCachingTransport) ttl(cacheKey string) time.Duration {
	ttlHours := t.config.DefaultTTLHours
	if strings.HasSuffix(cacheKey, itemXMLSuffix) && t.config.ItemTTLHours > 0 {
		ttlHours = t.config.ItemTTLHours
	}
	return time.Duration(ttlHours) * time.Hour
}

// cacheExpired checks if a cache file is missing or has expired
func (t *FileCachingTransport) cacheExpired(cacheKey string) bool {
	stat, err := os.Stat(t.cachePath(cacheKey))
	if err != nil {
		return true
	}

	age := t.now().Sub(stat.ModTime())
	return age >= t.ttl(cacheKey)
}

// readCacheEntry reads a cached HTTP response
func (t *FileCachingTransport) readCacheEntry(cacheKey string, req *http.Request) (*http.Response, error) {
	data, err := os.ReadFile(t.cachePath(cacheKey))
	if err != nil {
		return nil, err
	}

	return http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), req)
}

// writeCacheEntry writes an HTTP response to cache
func (t *FileCachingTransport) writeCacheEntry(cacheKey string, resp *http.Response) error {
	path := t.cachePath(cacheKey)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	dumpedBytes, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return fmt.Errorf("failed to dump response: %w", err)
	}

	if err := os.WriteFile(path, dumpedBytes, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}
