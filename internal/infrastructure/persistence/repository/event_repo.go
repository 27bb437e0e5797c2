package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/insurdesk/claims-desk/internal/application/port"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// EventRepository implements port.EventRepository
type EventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEventRepository creates a new claim event repository
func NewEventRepository(db *sql.DB, logger *zap.Logger) port.EventRepository {
	return &EventRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an event to a claim's history
func (r *EventRepository) Create(ctx context.Context, event *entity.ClaimEvent) error {
	query := `
		INSERT INTO claim_events (
			event_id, claim_ref, event_type, previous_status, new_status,
			actor, detail, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		event.EventID,
		event.ClaimRef,
		event.Type,
		event.PreviousStatus,
		event.NewStatus,
		event.Actor,
		event.Detail,
		event.CreatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create claim event",
			zap.Int64("claim_ref", event.ClaimRef),
			zap.String("type", event.Type),
			zap.Error(err))
		return fmt.Errorf("failed to create claim event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	return nil
}

// GetByClaimRef retrieves the history of a claim, oldest first
func (r *EventRepository) GetByClaimRef(ctx context.Context, claimRef int64) ([]*entity.ClaimEvent, error) {
	query := `
		SELECT id, event_id, claim_ref, event_type, previous_status, new_status,
			actor, detail, created_at
		FROM claim_events
		WHERE claim_ref = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, claimRef)
	if err != nil {
		r.logger.Error("Failed to get claim events", zap.Int64("claim_ref", claimRef), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim events: %w", err)
	}
	defer rows.Close()

	var events []*entity.ClaimEvent
	for rows.Next() {
		var e entity.ClaimEvent
		err := rows.Scan(
			&e.ID,
			&e.EventID,
			&e.ClaimRef,
			&e.Type,
			&e.PreviousStatus,
			&e.NewStatus,
			&e.Actor,
			&e.Detail,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim event: %w", err)
		}
		events = append(events, &e)
	}

	return events, rows.Err()
}

func (r *EventRepository) getExecutor(ctx context.Context) sqlite.Querier {
	return sqlite.Executor(ctx, r.db)
}

// Verify interface compliance
var _ port.EventRepository = (*EventRepository)(nil)
