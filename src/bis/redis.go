package bis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/ogri-la/gear-journey-go/src/types"
)

// RedisConfig holds configuration for the redis repository
type RedisConfig struct {
	Client redis.Cmdable
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c.Client == nil {
		return errors.New("redis client is required")
	}
	return nil
}

type redisRepository struct {
	client redis.Cmdable
}

// NewRedis creates a repository that keeps each list as a hash of entries
// plus a list holding their order
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &redisRepository{client: cfg.Client}, nil
}

func entriesKey(listName string) string {
	return fmt.Sprintf("bis:list:%s:entries", listName)
}

func orderKey(listName string) string {
	return fmt.Sprintf("bis:list:%s:order", listName)
}

func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}

	order, err := r.client.LRange(ctx, orderKey(input.ListName), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read list order: %w", err)
	}
	if len(order) == 0 {
		return &ListOutput{Entries: []types.BisEntry{}}, nil
	}

	raw, err := r.client.HGetAll(ctx, entriesKey(input.ListName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read list entries: %w", err)
	}

	entries := make([]types.BisEntry, 0, len(order))
	for _, field := range order {
		data, ok := raw[field]
		if !ok {
			// order and entries disagree, the entry wins
			continue
		}
		var entry types.BisEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry %s: %w", field, err)
		}
		entries = append(entries, entry)
	}
	return &ListOutput{Entries: entries}, nil
}

func (r *redisRepository) Exists(ctx context.Context, input ExistsInput) (*ExistsOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	exists, err := r.client.HExists(ctx, entriesKey(input.ListName), strconv.Itoa(input.ItemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check entry: %w", err)
	}
	return &ExistsOutput{Exists: exists}, nil
}

func (r *redisRepository) Add(ctx context.Context, input AddInput) (*AddOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	if input.Entry.ItemID <= 0 {
		return nil, ErrInvalidItemID
	}

	data, err := json.Marshal(input.Entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}

	field := strconv.Itoa(input.Entry.ItemID)
	added, err := r.client.HSetNX(ctx, entriesKey(input.ListName), field, data).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}
	if !added {
		return &AddOutput{Added: false}, nil
	}

	if err := r.client.RPush(ctx, orderKey(input.ListName), field).Err(); err != nil {
		// undo so the hash never holds an entry the order doesn't know
		if undoErr := r.client.HDel(ctx, entriesKey(input.ListName), field).Err(); undoErr != nil {
			slog.Error("failed to undo entry after order write failed",
				"list", input.ListName, "item-id", input.Entry.ItemID, "error", undoErr)
		}
		return nil, fmt.Errorf("failed to save entry order: %w", err)
	}
	return &AddOutput{Added: true}, nil
}

func (r *redisRepository) Remove(ctx context.Context, input RemoveInput) (*RemoveOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}

	field := strconv.Itoa(input.ItemID)
	pipe := r.client.TxPipeline()
	deleted := pipe.HDel(ctx, entriesKey(input.ListName), field)
	pipe.LRem(ctx, orderKey(input.ListName), 0, field)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to remove entry: %w", err)
	}

	if deleted.Val() == 0 {
		return nil, ErrNotFound
	}
	return &RemoveOutput{}, nil
}

func (r *redisRepository) Clear(ctx context.Context, input ClearInput) (*ClearOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}

	pipe := r.client.TxPipeline()
	count := pipe.HLen(ctx, entriesKey(input.ListName))
	pipe.Del(ctx, entriesKey(input.ListName), orderKey(input.ListName))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear list: %w", err)
	}
	return &ClearOutput{Removed: int(count.Val())}, nil
}

func (r *redisRepository) Replace(ctx context.Context, input ReplaceInput) (*ReplaceOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	entries, err := dedupe(input.Entries)
	if err != nil {
		return nil, err
	}

	fields := make([]any, 0, len(entries)*2)
	order := make([]any, 0, len(entries))
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal entry: %w", err)
		}
		field := strconv.Itoa(entry.ItemID)
		fields = append(fields, field, data)
		order = append(order, field)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, entriesKey(input.ListName), orderKey(input.ListName))
	if len(entries) > 0 {
		pipe.HSet(ctx, entriesKey(input.ListName), fields...)
		pipe.RPush(ctx, orderKey(input.ListName), order...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to replace list: %w", err)
	}
	return &ReplaceOutput{Entries: entries}, nil
}
