package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/profpocket/pocket-api/internal/models"
)

// ChangeRepository manages the per-user append-only change ledger.
// Rows are only ever inserted and queried by watermark, never updated.
type ChangeRepository struct {
	db *sqlx.DB
}

// NewChangeRepository constructs a ChangeRepository.
func NewChangeRepository(db *sqlx.DB) *ChangeRepository {
	return &ChangeRepository{db: db}
}

// Append writes the rows inside one transaction, preserving input order.
func (r *ChangeRepository) Append(ctx context.Context, rows []models.ChangeRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO changes (id, user_id, entity, entity_id, op, payload, updated_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, query,
			row.ID, row.UserID, row.Entity, row.EntityID, row.Op, row.Payload, row.UpdatedAt, row.CreatedAt,
		); err != nil {
			return fmt.Errorf("append change %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// ListSince returns the user's ledger rows strictly newer than the
// watermark, ascending by updated_at. The result is never truncated:
// clients advance their watermark after one pull, so a capped result
// would silently drop the rows past the cap.
func (r *ChangeRepository) ListSince(ctx context.Context, userID string, since int64) ([]models.ChangeRow, error) {
	query := `SELECT id, user_id, entity, entity_id, op, payload, updated_at, created_at
        FROM changes WHERE user_id = $1 AND updated_at > $2 ORDER BY updated_at ASC`
	var rows []models.ChangeRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, since); err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	return rows, nil
}

// ListAll returns the user's entire ledger, ascending by updated_at.
// Used to materialize entity snapshots for server-side reports.
func (r *ChangeRepository) ListAll(ctx context.Context, userID string) ([]models.ChangeRow, error) {
	query := `SELECT id, user_id, entity, entity_id, op, payload, updated_at, created_at
        FROM changes WHERE user_id = $1 ORDER BY updated_at ASC`
	var rows []models.ChangeRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list all changes: %w", err)
	}
	return rows, nil
}
