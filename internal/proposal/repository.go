package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborwell/harborwell/internal/platform/db"
)

// Repository provides persistence for proposal snapshots.
type Repository interface {
	Create(ctx context.Context, p *Proposal) error
	Get(ctx context.Context, id uuid.UUID) (*Proposal, error)
	List(ctx context.Context, req ListProposalsRequest) ([]*Proposal, int, error)
	// Update persists the snapshot when the stored version still equals
	// expectedVersion, bumping the version; otherwise ErrVersionConflict.
	Update(ctx context.Context, p *Proposal, expectedVersion int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) Create(ctx context.Context, p *Proposal) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO proposals (id, client_name, client_email, status, doc, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.ClientName, p.ClientEmail, p.Status, doc, p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("proposal %s already exists: %w", p.ID, err)
		}
		return err
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	var (
		doc     []byte
		version int64
	)
	err := r.db.QueryRow(ctx,
		`SELECT doc, version FROM proposals WHERE id = $1`, id,
	).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var p Proposal
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("unmarshal proposal %s: %w", id, err)
	}
	// The row's version is authoritative over the document copy.
	p.Version = version
	return &p, nil
}

func (r *repository) List(ctx context.Context, req ListProposalsRequest) ([]*Proposal, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Client != "" {
		conditions = append(conditions, fmt.Sprintf("client_name ILIKE $%d", argPos))
		args = append(args, "%"+req.Client+"%")
		argPos++
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM proposals " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT doc, version FROM proposals %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, argPos, argPos+1,
	)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var proposals []*Proposal
	for rows.Next() {
		var (
			doc     []byte
			version int64
		)
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, 0, err
		}
		var p Proposal
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, 0, fmt.Errorf("unmarshal proposal: %w", err)
		}
		p.Version = version
		proposals = append(proposals, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (r *repository) Update(ctx context.Context, p *Proposal, expectedVersion int64) error {
	p.Version = expectedVersion + 1
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE proposals
			SET client_name = $2, client_email = $3, status = $4, doc = $5,
			    version = $6, updated_at = $7
			WHERE id = $1 AND version = $8`,
			p.ID, p.ClientName, p.ClientEmail, p.Status, doc, p.Version, p.UpdatedAt, expectedVersion,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			// Distinguish a missing row from a concurrent writer.
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM proposals WHERE id = $1)`, p.ID,
			).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return fmt.Errorf("%w: proposal %s", ErrVersionConflict, p.ID)
		}
		return nil
	})
}
