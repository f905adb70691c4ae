package wowhead

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ogri-la/gear-journey-go/src/http"
	"github.com/ogri-la/gear-journey-go/src/types"
)

// Client looks up model display info on the game-data site
type Client struct {
	http    http.HTTPClient
	baseURL string
	slots   *SlotResolver
	group   singleflight.Group

	mu   sync.RWMutex
	memo map[int]types.DisplayInfo
}

// NewClient creates a client for baseURL, e.g. https://www.wowhead.com/classic.
// A nil slot resolver skips CDN probing.
func NewClient(client http.HTTPClient, baseURL string, slotResolver *SlotResolver) *Client {
	return &Client{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		slots:   slotResolver,
		memo:    make(map[int]types.DisplayInfo),
	}
}

// ItemURL returns the item XML url
func (c *Client) ItemURL(itemID int) string {
	return fmt.Sprintf("%s/item=%d&xml", c.baseURL, itemID)
}

// ItemDisplayInfo returns the display id and CDN slot of an item.
// An upstream error status gives 0/0, transport failures are returned.
// Only resolved items are remembered.
func (c *Client) ItemDisplayInfo(ctx context.Context, itemID int) (types.DisplayInfo, error) {
	c.mu.RLock()
	info, ok := c.memo[itemID]
	c.mu.RUnlock()
	if ok {
		return info, nil
	}

	val, err, _ := c.group.Do(strconv.Itoa(itemID), func() (any, error) {
		return c.fetch(ctx, itemID)
	})
	if err != nil {
		return types.DisplayInfo{}, err
	}
	return val.(types.DisplayInfo), nil
}

func (c *Client) fetch(ctx context.Context, itemID int) (types.DisplayInfo, error) {
	url := c.ItemURL(itemID)

	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return types.DisplayInfo{}, fmt.Errorf("failed to fetch item %d: %w", itemID, err)
	}

	if !resp.OK() {
		slog.Warn("upstream item lookup failed", "item-id", itemID, "status", resp.StatusCode)
		return types.DisplayInfo{}, nil
	}

	item, err := ParseItemXML(resp.Body)
	if err != nil {
		return types.DisplayInfo{}, fmt.Errorf("failed to read item %d: %w", itemID, err)
	}
	if item.Error != "" {
		slog.Debug("upstream has no such item", "item-id", itemID, "error", item.Error)
	}

	info := types.DisplayInfo{DisplayID: item.DisplayID, SlotID: item.SlotID}
	if !info.Resolved() {
		return info, nil
	}

	if c.slots != nil {
		info.SlotID = c.slots.Resolve(ctx, info.DisplayID, info.SlotID)
	}

	c.mu.Lock()
	c.memo[itemID] = info
	c.mu.Unlock()

	slog.Info("resolved display id", "item-id", itemID, "name", item.Name, "display-id", info.DisplayID, "slot-id", info.SlotID)
	return info, nil
}
