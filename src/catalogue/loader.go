package catalogue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ogri-la/gear-journey-go/src/http"
	"github.com/ogri-la/gear-journey-go/src/retry"
	"github.com/ogri-la/gear-journey-go/src/types"
)

// Loader fetches the raw item dataset
type Loader interface {
	LoadItems(ctx context.Context) ([]types.Item, error)
}

// HTTPLoader fetches items.json over HTTP with retries
type HTTPLoader struct {
	client http.HTTPClient
	url    string
	retry  retry.Config
}

// NewHTTPLoader creates a loader for the dataset at url
func NewHTTPLoader(client http.HTTPClient, url string, config retry.Config) *HTTPLoader {
	return &HTTPLoader{client: client, url: url, retry: config}
}

// LoadItems implements Loader
func (l *HTTPLoader) LoadItems(ctx context.Context) ([]types.Item, error) {
	resp, err := retry.WithRetry(ctx, l.client, l.url, l.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	if !resp.OK() {
		return nil, fmt.Errorf("failed to load items: %d", resp.StatusCode)
	}

	return decodeItems(resp.Body)
}

// FileLoader reads items.json from disk
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the dataset at path
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// LoadItems implements Loader
func (l *FileLoader) LoadItems(ctx context.Context) ([]types.Item, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items file: %w", err)
	}

	return decodeItems(data)
}

func decodeItems(data []byte) ([]types.Item, error) {
	var items []types.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse items: %w", err)
	}
	return items, nil
}
