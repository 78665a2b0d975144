package property

import (
	"context"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OwnerRepository persists owners
type OwnerRepository interface {
	shared.OrgRepository[Owner]
	FindByEmail(ctx context.Context, orgID uuid.UUID, email string) (*Owner, error)
	// FindExistingIDs returns the subset of the given IDs that belong to
	// live (not soft-deleted) owners in the org.
	FindExistingIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
}

// OwnershipShareRepository persists ownership share sets
type OwnershipShareRepository interface {
	FindByParent(ctx context.Context, orgID uuid.UUID, kind ParentKind, parentID uuid.UUID) ([]OwnershipShare, error)
	FindByOwner(ctx context.Context, orgID uuid.UUID, ownerID uuid.UUID) ([]OwnershipShare, error)
	// ReplaceForParent atomically swaps the parent's share set for the
	// given one. The previous set is removed in the same transaction so
	// readers never observe a partial set.
	ReplaceForParent(ctx context.Context, orgID uuid.UUID, kind ParentKind, parentID uuid.UUID, shares []OwnershipShare) error
}
