package wardroberepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ai-wardrobe/internal/domain/garment"
)

const schema = `
CREATE TABLE IF NOT EXISTS clothes (
	id               BIGSERIAL PRIMARY KEY,
	category         TEXT NOT NULL,
	item             TEXT NOT NULL,
	style_semantics  TEXT[] NOT NULL DEFAULT '{}',
	season_semantics TEXT[] NOT NULL DEFAULT '{}',
	usage_semantics  TEXT[] NOT NULL DEFAULT '{}',
	color_semantics  TEXT NOT NULL,
	description      TEXT NOT NULL,
	image_key        TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS clothes_category_idx ON clothes (category, created_at DESC);
`

const selectColumns = `id, category, item, style_semantics, season_semantics, usage_semantics,
	color_semantics, description, image_key, created_at`

// PostgresRepository implements garment.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the clothes table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// Create inserts a new item.
func (r *PostgresRepository) Create(ctx context.Context, item garment.Item) (garment.Item, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clothes (category, item, style_semantics, season_semantics, usage_semantics,
			color_semantics, description, image_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+selectColumns,
		string(item.Category), item.Item, item.StyleSemantics, item.SeasonSemantics, item.UsageSemantics,
		item.ColorSemantics, item.Description, item.ImageKey, item.CreatedAt,
	)
	return scanItem(row)
}

// List returns all items, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]garment.Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM clothes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListByCategory returns one category, newest first.
func (r *PostgresRepository) ListByCategory(ctx context.Context, category garment.Category) ([]garment.Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM clothes WHERE category = $1 ORDER BY created_at DESC, id DESC`, string(category))
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// Get fetches one item.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (garment.Item, bool, error) {
	return optional(scanItem(r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM clothes WHERE id = $1`, id)))
}

// Update replaces the semantics of an item.
func (r *PostgresRepository) Update(ctx context.Context, id int64, sem garment.Semantics) (garment.Item, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE clothes
		SET category = $2, item = $3, style_semantics = $4, season_semantics = $5,
			usage_semantics = $6, color_semantics = $7, description = $8
		WHERE id = $1
		RETURNING `+selectColumns,
		id, string(sem.Category), sem.Item, sem.StyleSemantics, sem.SeasonSemantics, sem.UsageSemantics,
		sem.ColorSemantics, sem.Description,
	)
	return optional(scanItem(row))
}

// Delete removes an item and returns the deleted row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (garment.Item, bool, error) {
	return optional(scanItem(r.pool.QueryRow(ctx, `DELETE FROM clothes WHERE id = $1 RETURNING `+selectColumns, id)))
}

func collect(rows pgx.Rows) ([]garment.Item, error) {
	defer rows.Close()
	var out []garment.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanItem(row pgx.Row) (garment.Item, error) {
	var (
		item     garment.Item
		category string
	)
	if err := row.Scan(
		&item.ID,
		&category,
		&item.Item,
		&item.StyleSemantics,
		&item.SeasonSemantics,
		&item.UsageSemantics,
		&item.ColorSemantics,
		&item.Description,
		&item.ImageKey,
		&item.CreatedAt,
	); err != nil {
		return garment.Item{}, err
	}
	item.Category = garment.Category(category)
	return item, nil
}

func optional(item garment.Item, err error) (garment.Item, bool, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return garment.Item{}, false, nil
	}
	if err != nil {
		return garment.Item{}, false, err
	}
	return item, true, nil
}

var _ garment.Repository = (*PostgresRepository)(nil)
