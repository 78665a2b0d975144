package property

import (
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Owner is a person or company holding a share of a building or unit.
// Owners are soft-deleted; a deleted owner can no longer be assigned shares
// but stays resolvable for historical records.
type Owner struct {
	shared.OrgAggregateRoot
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// NewOwner creates a new owner
func NewOwner(orgID uuid.UUID, name, email, phone string) (*Owner, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Owner name cannot be empty")
	}
	return &Owner{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Email:            email,
		Phone:            phone,
	}, nil
}

// IsDeleted returns true if the owner has been soft-deleted
func (o *Owner) IsDeleted() bool {
	return o.DeletedAt != nil
}

// MarkDeleted soft-deletes the owner
func (o *Owner) MarkDeleted(at time.Time) error {
	if o.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Owner is already deleted")
	}
	deletedAt := at.UTC()
	o.DeletedAt = &deletedAt
	o.UpdatedAt = deletedAt
	o.IncrementVersion()
	return nil
}
