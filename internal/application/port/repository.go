package port

import (
	"context"
	"errors"

	"github.com/insurdesk/claims-desk/internal/domain/entity"
	"github.com/insurdesk/claims-desk/internal/domain/workflow"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a claim changed since it was read
	ErrVersionConflict = errors.New("claim was modified concurrently")
	// ErrDuplicate is returned when a unique key already exists
	ErrDuplicate = errors.New("duplicate record")
)

// ClaimFilter narrows a claim listing. Empty fields do not filter.
type ClaimFilter struct {
	// ClaimID and CustomerName match as case-insensitive substrings.
	ClaimID      string
	CustomerName string
	Status       workflow.State
	Limit        int
	Offset       int
}

// ClaimRepository defines persistence operations for Claim.
// Claims are returned without evidence; use EvidenceRepository to load it.
type ClaimRepository interface {
	// Create inserts the claim and sets its ID, Version and timestamps
	Create(ctx context.Context, claim *entity.Claim) error

	GetByID(ctx context.Context, id int64) (*entity.Claim, error)
	GetByClaimID(ctx context.Context, claimID string) (*entity.Claim, error)

	// List returns claims newest first
	List(ctx context.Context, filter ClaimFilter) ([]*entity.Claim, error)
	Count(ctx context.Context, filter ClaimFilter) (int, error)

	// UpdateStatus writes the status only if the stored version still equals
	// expectedVersion, and increments the version.
	UpdateStatus(ctx context.Context, id int64, status workflow.State, expectedVersion int64) error

	// BumpVersion increments the version after an evidence change. It
	// returns ErrVersionConflict when the claim moved past expectedVersion.
	BumpVersion(ctx context.Context, id int64, expectedVersion int64) error
}

// EvidenceRepository defines persistence operations for Evidence
type EvidenceRepository interface {
	Create(ctx context.Context, evidence *entity.Evidence) error
	GetByID(ctx context.Context, id int64) (*entity.Evidence, error)
	// GetByClaimRef returns evidence in upload order
	GetByClaimRef(ctx context.Context, claimRef int64) ([]entity.Evidence, error)
	Delete(ctx context.Context, id int64) error
}

// EventRepository defines persistence operations for ClaimEvent
type EventRepository interface {
	Create(ctx context.Context, event *entity.ClaimEvent) error
	// GetByClaimRef returns events oldest first
	GetByClaimRef(ctx context.Context, claimRef int64) ([]*entity.ClaimEvent, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
