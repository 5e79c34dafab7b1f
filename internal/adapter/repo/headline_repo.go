package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"headlinewall/internal/domain"
)

// HeadlineRepositoryPG implements domain.HeadlineRepository.
type HeadlineRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewHeadlineRepository creates a new headline repository backed by PostgreSQL.
func NewHeadlineRepository(pool *pgxpool.Pool) *HeadlineRepositoryPG {
	return &HeadlineRepositoryPG{pool: pool}
}

// EnsureSchema creates the headlines table when it does not exist yet. The
// exhibit is deployed on a fresh database per venue, so a single idempotent
// statement replaces a migration tool.
func (r *HeadlineRepositoryPG) EnsureSchema(ctx context.Context) error {
	query := `
CREATE TABLE IF NOT EXISTS headlines (
    id            UUID PRIMARY KEY,
    headline      TEXT NOT NULL,
    team_name     TEXT NOT NULL DEFAULT '',
    image_url     TEXT NOT NULL DEFAULT '',
    image_data    TEXT NOT NULL DEFAULT '',
    animation_url TEXT NOT NULL DEFAULT '',
    is_animating  BOOLEAN NOT NULL DEFAULT FALSE,
    country       TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS headlines_created_at_idx ON headlines (created_at DESC);
`
	_, err := r.pool.Exec(ctx, query)
	return err
}

// Create inserts a new gallery record.
func (r *HeadlineRepositoryPG) Create(ctx context.Context, h *domain.Headline) error {
	query := `
INSERT INTO headlines (id, headline, team_name, image_url, image_data, animation_url, is_animating, country)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := r.pool.Exec(ctx, query,
		h.ID,
		h.Headline,
		h.TeamName,
		h.ImageURL,
		h.ImageData,
		h.AnimationURL,
		h.IsAnimating,
		h.Country,
	)
	return err
}

// GetByID fetches a record by its identifier.
func (r *HeadlineRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Headline, error) {
	query := `
SELECT id, headline, team_name, image_url, image_data, animation_url, is_animating, country, created_at
FROM headlines
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var h domain.Headline
	if err := scanHeadline(row, &h); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// ListRecent returns the newest records first, for the gallery wall. A
// non-zero Before cursor pages past records the display already holds.
func (r *HeadlineRepositoryPG) ListRecent(ctx context.Context, q domain.ListQuery) ([]domain.Headline, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	var before *time.Time
	if !q.Before.IsZero() {
		before = &q.Before
	}
	query := `
SELECT id, headline, team_name, image_url, image_data, animation_url, is_animating, country, created_at
FROM headlines
WHERE $2::timestamptz IS NULL OR created_at < $2
ORDER BY created_at DESC
LIMIT $1;
`
	rows, err := r.pool.Query(ctx, query, limit, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Headline
	for rows.Next() {
		var h domain.Headline
		if err := scanHeadline(rows, &h); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

// UpdateAnimation applies a partial animation-state update.
func (r *HeadlineRepositoryPG) UpdateAnimation(ctx context.Context, id string, update domain.AnimationUpdate) error {
	query := `
UPDATE headlines
SET animation_url = COALESCE($2, animation_url),
    is_animating = COALESCE($3, is_animating)
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, id, update.AnimationURL, update.IsAnimating)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHeadline(row scanner, h *domain.Headline) error {
	return row.Scan(
		&h.ID,
		&h.Headline,
		&h.TeamName,
		&h.ImageURL,
		&h.ImageData,
		&h.AnimationURL,
		&h.IsAnimating,
		&h.Country,
		&h.CreatedAt,
	)
}

var _ domain.HeadlineRepository = (*HeadlineRepositoryPG)(nil)
