package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/insurdesk/claims-desk/internal/application/port"
	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
	"github.com/insurdesk/claims-desk/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const claimColumns = `id, claim_id, customer_name, policy, claim_amount, claim_date,
	notes, claim_type, status, version, created_at, updated_at`

// ClaimRepository implements port.ClaimRepository
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new claim at version 1
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	query := `
		INSERT INTO claims (
			claim_id, customer_name, policy, claim_amount, claim_date,
			notes, claim_type, status, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		claim.ClaimID,
		claim.CustomerName,
		claim.Policy,
		claim.Amount,
		claim.ClaimDate.UTC(),
		claim.Notes,
		string(claim.ClaimType),
		string(claim.Status),
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("claim %s: %w", claim.ClaimID, port.ErrDuplicate)
		}
		r.logger.Error("Failed to create claim", zap.String("claim_id", claim.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	claim.ID = id
	claim.Version = 1
	claim.CreatedAt = now
	claim.UpdatedAt = now
	return nil
}

// GetByID retrieves a claim by its row ID
func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ?`

	claim, err := scanClaim(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get claim by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return claim, nil
}

// GetByClaimID retrieves a claim by its business identifier
func (r *ClaimRepository) GetByClaimID(ctx context.Context, claimID string) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE claim_id = ?`

	claim, err := scanClaim(r.getExecutor(ctx).QueryRowContext(ctx, query, claimID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim %s: %w", claimID, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get claim by claim ID", zap.String("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return claim, nil
}

// List retrieves claims matching filter, newest first
func (r *ClaimRepository) List(ctx context.Context, filter port.ClaimFilter) ([]*entity.Claim, error) {
	where, args := buildClaimWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + claimColumns + ` FROM claims` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list claims", zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []*entity.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}

	return claims, rows.Err()
}

// Count returns the number of claims matching filter, ignoring paging
func (r *ClaimRepository) Count(ctx context.Context, filter port.ClaimFilter) (int, error) {
	where, args := buildClaimWhere(filter)

	var n int
	err := r.getExecutor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM claims`+where, args...).Scan(&n)
	if err != nil {
		r.logger.Error("Failed to count claims", zap.Error(err))
		return 0, fmt.Errorf("failed to count claims: %w", err)
	}
	return n, nil
}

// UpdateStatus writes a new status guarded by the expected version
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id int64, status workflow.State, expectedVersion int64) error {
	query := `
		UPDATE claims SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, string(status), time.Now().UTC(), id, expectedVersion)
	if err != nil {
		r.logger.Error("Failed to update status", zap.Int64("id", id), zap.String("status", string(status)), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	return r.checkWritten(ctx, result, id)
}

// BumpVersion increments the claim version guarded by the expected version
func (r *ClaimRepository) BumpVersion(ctx context.Context, id int64, expectedVersion int64) error {
	query := `UPDATE claims SET version = version + 1, updated_at = ? WHERE id = ? AND version = ?`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, time.Now().UTC(), id, expectedVersion)
	if err != nil {
		r.logger.Error("Failed to bump version", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to bump version: %w", err)
	}

	return r.checkWritten(ctx, result, id)
}

// checkWritten distinguishes a missing claim from a stale version when an
// update touched no rows
func (r *ClaimRepository) checkWritten(ctx context.Context, result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = r.getExecutor(ctx).QueryRowContext(ctx, `SELECT 1 FROM claims WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("claim %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check claim: %w", err)
	}
	return fmt.Errorf("claim %d: %w", id, port.ErrVersionConflict)
}

func (r *ClaimRepository) getExecutor(ctx context.Context) sqlite.Querier {
	return sqlite.Executor(ctx, r.db)
}

func buildClaimWhere(filter port.ClaimFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.ClaimID != "" {
		conds = append(conds, `claim_id LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.ClaimID))
	}
	if filter.CustomerName != "" {
		conds = append(conds, `customer_name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.CustomerName))
	}
	if filter.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(filter.Status))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// likePattern builds a substring pattern with LIKE metacharacters escaped
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*entity.Claim, error) {
	var claim entity.Claim
	var claimType, status string

	err := row.Scan(
		&claim.ID,
		&claim.ClaimID,
		&claim.CustomerName,
		&claim.Policy,
		&claim.Amount,
		&claim.ClaimDate,
		&claim.Notes,
		&claimType,
		&status,
		&claim.Version,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	claim.ClaimType = entity.ClaimType(claimType)
	claim.Status = workflow.State(status)
	return &claim, nil
}

// Verify interface compliance
var _ port.ClaimRepository = (*ClaimRepository)(nil)
