package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"txguard/internal/model"
)

// OutcomeRepo is the append-only journal of validation decisions. It stores
// decisions only, never account balances.
type OutcomeRepo struct {
	dbPool *pgxpool.Pool
}

func NewOutcomeRepo(db *pgxpool.Pool) *OutcomeRepo {
	return &OutcomeRepo{dbPool: db}
}

// Save inserts the event. Redelivered events with a known ID are ignored.
func (r *OutcomeRepo) Save(ctx context.Context, event model.OutcomeEvent) error {
	query := `
		INSERT INTO validation_outcomes
			(id, operation, audit_id, record_index, accepted, rejection_kind, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	var auditID *string
	if event.AuditID != "" {
		auditID = &event.AuditID
	}

	_, err := r.dbPool.Exec(ctx, query,
		event.ID,
		string(event.Operation),
		auditID,
		event.RecordIndex,
		event.Accepted,
		string(event.RejectionKind),
		event.Message,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outcome %s: %w", event.ID, err)
	}
	return nil
}

// Recent returns the newest limit events, newest first.
func (r *OutcomeRepo) Recent(ctx context.Context, limit int) ([]model.OutcomeEvent, error) {
	query := `
		SELECT id::text, operation, COALESCE(audit_id::text, ''), record_index,
		       accepted, rejection_kind, message, created_at
		FROM validation_outcomes
		ORDER BY created_at DESC, id
		LIMIT $1`

	rows, err := r.dbPool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []model.OutcomeEvent
	for rows.Next() {
		var (
			ev        model.OutcomeEvent
			operation string
			kind      string
		)
		if err := rows.Scan(&ev.ID, &operation, &ev.AuditID, &ev.RecordIndex,
			&ev.Accepted, &kind, &ev.Message, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		ev.Operation = model.OperationKind(operation)
		ev.RejectionKind = model.RejectionKind(kind)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return out, nil
}
