package shortlink

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed short link repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Insert(ctx context.Context, link Link) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO short_links (namespace, slug, target, created_at)
		VALUES ($1, $2, $3, $4)`,
		link.Namespace, link.Slug, link.Target, link.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlugTaken
		}
		return fmt.Errorf("insert short link: %w", err)
	}
	return nil
}

func (r *repository) Find(ctx context.Context, namespace, slug string) (*Link, error) {
	var link Link
	err := r.pool.QueryRow(ctx, `
		SELECT namespace, slug, target, created_at
		FROM short_links
		WHERE namespace = $1 AND slug = $2`,
		namespace, slug,
	).Scan(&link.Namespace, &link.Slug, &link.Target, &link.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find short link: %w", err)
	}
	return &link, nil
}
