package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/insurdesk/claims-desk/internal/application/port"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// EvidenceRepository implements port.EvidenceRepository
type EvidenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEvidenceRepository creates a new evidence repository
func NewEvidenceRepository(db *sql.DB, logger *zap.Logger) port.EvidenceRepository {
	return &EvidenceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an evidence record
func (r *EvidenceRepository) Create(ctx context.Context, evidence *entity.Evidence) error {
	query := `
		INSERT INTO evidence (
			claim_ref, file_name, storage_key, mime_type, size, page_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		evidence.ClaimRef,
		evidence.DisplayName,
		evidence.StorageKey,
		evidence.MimeType,
		evidence.Size,
		evidence.PageCount,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create evidence",
			zap.Int64("claim_ref", evidence.ClaimRef),
			zap.String("file_name", evidence.DisplayName),
			zap.Error(err))
		return fmt.Errorf("failed to create evidence: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	evidence.ID = id
	evidence.CreatedAt = now
	return nil
}

// GetByID retrieves an evidence record by ID
func (r *EvidenceRepository) GetByID(ctx context.Context, id int64) (*entity.Evidence, error) {
	query := `
		SELECT id, claim_ref, file_name, storage_key, mime_type, size, page_count, created_at
		FROM evidence
		WHERE id = ?
	`

	var e entity.Evidence
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&e.ID,
		&e.ClaimRef,
		&e.DisplayName,
		&e.StorageKey,
		&e.MimeType,
		&e.Size,
		&e.PageCount,
		&e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evidence %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get evidence by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get evidence: %w", err)
	}

	return &e, nil
}

// GetByClaimRef retrieves all evidence for a claim in upload order
func (r *EvidenceRepository) GetByClaimRef(ctx context.Context, claimRef int64) ([]entity.Evidence, error) {
	query := `
		SELECT id, claim_ref, file_name, storage_key, mime_type, size, page_count, created_at
		FROM evidence
		WHERE claim_ref = ?
		ORDER BY id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, claimRef)
	if err != nil {
		r.logger.Error("Failed to get evidence by claim", zap.Int64("claim_ref", claimRef), zap.Error(err))
		return nil, fmt.Errorf("failed to get evidence: %w", err)
	}
	defer rows.Close()

	evidence := []entity.Evidence{}
	for rows.Next() {
		var e entity.Evidence
		err := rows.Scan(
			&e.ID,
			&e.ClaimRef,
			&e.DisplayName,
			&e.StorageKey,
			&e.MimeType,
			&e.Size,
			&e.PageCount,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evidence: %w", err)
		}
		evidence = append(evidence, e)
	}

	return evidence, rows.Err()
}

// Delete removes an evidence record
func (r *EvidenceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.getExecutor(ctx).ExecContext(ctx, `DELETE FROM evidence WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete evidence", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete evidence: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("evidence %d: %w", id, port.ErrNotFound)
	}
	return nil
}

func (r *EvidenceRepository) getExecutor(ctx context.Context) sqlite.Querier {
	return sqlite.Executor(ctx, r.db)
}

// Verify interface compliance
var _ port.EvidenceRepository = (*EvidenceRepository)(nil)
