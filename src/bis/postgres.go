package bis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/ogri-la/gear-journey-go/src/bis/migrations"
	"github.com/ogri-la/gear-journey-go/src/types"
)

// RunMigrations applies the embedded schema to the database at dsn
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a repository backed by the bis_items table
func NewPostgres(pool *pgxpool.Pool) (Repository, error) {
	if pool == nil {
		return nil, errors.New("postgres pool is required")
	}
	return &postgresRepository{pool: pool}, nil
}

func (r *postgresRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}

	rows, err := r.pool.Query(ctx,
		`SELECT item_id, added_at, slot FROM bis_items WHERE list_name = $1 ORDER BY position`,
		input.ListName)
	if err != nil {
		return nil, fmt.Errorf("failed to query list %q: %w", input.ListName, err)
	}
	defer rows.Close()

	entries := []types.BisEntry{}
	for rows.Next() {
		var entry types.BisEntry
		if err := rows.Scan(&entry.ItemID, &entry.AddedAt, &entry.Slot); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate list %q: %w", input.ListName, err)
	}
	return &ListOutput{Entries: entries}, nil
}

func (r *postgresRepository) Exists(ctx context.Context, input ExistsInput) (*ExistsOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bis_items WHERE list_name = $1 AND item_id = $2)`,
		input.ListName, input.ItemID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check entry: %w", err)
	}
	return &ExistsOutput{Exists: exists}, nil
}

const insertEntry = `
INSERT INTO bis_items (list_name, item_id, added_at, slot, position)
SELECT $1, $2, $3, $4, COALESCE(MAX(position), 0) + 1 FROM bis_items WHERE list_name = $1
ON CONFLICT (list_name, item_id) DO NOTHING`

func (r *postgresRepository) Add(ctx context.Context, input AddInput) (*AddOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	if input.Entry.ItemID <= 0 {
		return nil, ErrInvalidItemID
	}

	tag, err := r.pool.Exec(ctx, insertEntry,
		input.ListName, input.Entry.ItemID, input.Entry.AddedAt, input.Entry.Slot)
	if err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	return &AddOutput{Added: tag.RowsAffected() == 1}, nil
}

func (r *postgresRepository) Remove(ctx context.Context, input RemoveInput) (*RemoveOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM bis_items WHERE list_name = $1 AND item_id = $2`,
		input.ListName, input.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return &RemoveOutput{}, nil
}

func (r *postgresRepository) Clear(ctx context.Context, input ClearInput) (*ClearOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM bis_items WHERE list_name = $1`, input.ListName)
	if err != nil {
		return nil, fmt.Errorf("failed to clear list: %w", err)
	}
	return &ClearOutput{Removed: int(tag.RowsAffected())}, nil
}

func (r *postgresRepository) Replace(ctx context.Context, input ReplaceInput) (*ReplaceOutput, error) {
	if input.ListName == "" {
		return nil, errListNameEmpty
	}
	entries, err := dedupe(input.Entries)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM bis_items WHERE list_name = $1`, input.ListName)
	for i, entry := range entries {
		batch.Queue(
			`INSERT INTO bis_items (list_name, item_id, added_at, slot, position) VALUES ($1, $2, $3, $4, $5)`,
			input.ListName, entry.ItemID, entry.AddedAt, entry.Slot, i+1)
	}

	results := tx.SendBatch(ctx, batch)
	for range batch.Len() {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return nil, fmt.Errorf("failed to replace list: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &ReplaceOutput{Entries: entries}, nil
}
