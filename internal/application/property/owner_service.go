package property

import (
	"context"
	"time"

	"github.com/propely/backend/internal/domain/property"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OwnerService manages the owner registry
type OwnerService struct {
	ownerRepo property.OwnerRepository
	logger    *zap.Logger
}

// NewOwnerService creates a new OwnerService
func NewOwnerService(ownerRepo property.OwnerRepository, logger *zap.Logger) *OwnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OwnerService{
		ownerRepo: ownerRepo,
		logger:    logger,
	}
}

// OwnerResponse represents an owner in API responses
type OwnerResponse struct {
	ID        uuid.UUID  `json:"id"`
	OrgID     uuid.UUID  `json:"org_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

func toOwnerResponse(o *property.Owner) *OwnerResponse {
	return &OwnerResponse{
		ID:        o.ID,
		OrgID:     o.OrgID,
		Name:      o.Name,
		Email:     o.Email,
		Phone:     o.Phone,
		DeletedAt: o.DeletedAt,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Version:   o.Version,
	}
}

// CreateOwnerRequest carries the input for registering an owner
type CreateOwnerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

// CreateOwner registers a new owner
func (s *OwnerService) CreateOwner(ctx context.Context, orgID uuid.UUID, req CreateOwnerRequest) (*OwnerResponse, error) {
	if req.Email != "" {
		existing, err := s.ownerRepo.FindByEmail(ctx, orgID, req.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && !existing.IsDeleted() {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "An owner with this email already exists")
		}
	}

	owner, err := property.NewOwner(orgID, req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		return nil, err
	}

	s.logger.Info("Owner created",
		zap.String("owner_id", owner.ID.String()),
		zap.String("name", owner.Name))

	return toOwnerResponse(owner), nil
}

// GetOwner returns a single owner
func (s *OwnerService) GetOwner(ctx context.Context, orgID, ownerID uuid.UUID) (*OwnerResponse, error) {
	owner, err := s.findOwner(ctx, orgID, ownerID)
	if err != nil {
		return nil, err
	}
	return toOwnerResponse(owner), nil
}

// ListOwners lists owners with pagination
func (s *OwnerService) ListOwners(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]OwnerResponse, error) {
	owners, err := s.ownerRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]OwnerResponse, len(owners))
	for i := range owners {
		responses[i] = *toOwnerResponse(&owners[i])
	}
	return responses, nil
}

// DeleteOwner soft-deletes an owner. The owner stays resolvable for
// historical share records but can no longer be assigned new shares.
func (s *OwnerService) DeleteOwner(ctx context.Context, orgID, ownerID uuid.UUID) error {
	owner, err := s.findOwner(ctx, orgID, ownerID)
	if err != nil {
		return err
	}
	if err := owner.MarkDeleted(time.Now()); err != nil {
		return err
	}
	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		return err
	}

	s.logger.Info("Owner deleted", zap.String("owner_id", ownerID.String()))
	return nil
}

func (s *OwnerService) findOwner(ctx context.Context, orgID, ownerID uuid.UUID) (*property.Owner, error) {
	owner, err := s.ownerRepo.FindByIDForOrg(ctx, orgID, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Owner not found")
	}
	return owner, nil
}
