package persistence

import (
	"context"

	"github.com/propely/backend/internal/domain/property"
	"github.com/propely/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOwnershipShareRepository implements OwnershipShareRepository using GORM
type GormOwnershipShareRepository struct {
	db *gorm.DB
}

// NewGormOwnershipShareRepository creates a new GormOwnershipShareRepository
func NewGormOwnershipShareRepository(db *gorm.DB) *GormOwnershipShareRepository {
	return &GormOwnershipShareRepository{db: db}
}

// FindByParent finds the current share set for a building or unit
func (r *GormOwnershipShareRepository) FindByParent(ctx context.Context, orgID uuid.UUID, kind property.ParentKind, parentID uuid.UUID) ([]property.OwnershipShare, error) {
	var shareModels []models.OwnershipShareModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND parent_kind = ? AND parent_id = ?", orgID, kind, parentID).
		Order("percent DESC, owner_id ASC").
		Find(&shareModels).Error; err != nil {
		return nil, err
	}
	return r.toDomainShares(shareModels)
}

// FindByOwner finds every share an owner holds across parents
func (r *GormOwnershipShareRepository) FindByOwner(ctx context.Context, orgID uuid.UUID, ownerID uuid.UUID) ([]property.OwnershipShare, error) {
	var shareModels []models.OwnershipShareModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND owner_id = ?", orgID, ownerID).
		Order("parent_kind ASC, parent_id ASC").
		Find(&shareModels).Error; err != nil {
		return nil, err
	}
	return r.toDomainShares(shareModels)
}

// ReplaceForParent atomically swaps the parent's share set for the given
// one. The previous set is removed in the same transaction so readers never
// observe a partial set.
func (r *GormOwnershipShareRepository) ReplaceForParent(ctx context.Context, orgID uuid.UUID, kind property.ParentKind, parentID uuid.UUID, shares []property.OwnershipShare) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("org_id = ? AND parent_kind = ? AND parent_id = ?", orgID, kind, parentID).
			Delete(&models.OwnershipShareModel{}).Error; err != nil {
			return err
		}
		if len(shares) == 0 {
			return nil
		}
		shareModels := make([]models.OwnershipShareModel, len(shares))
		for i, share := range shares {
			shareModels[i].FromDomain(share)
		}
		return tx.Create(&shareModels).Error
	})
}

// toDomainShares converts share rows, surfacing any corrupted percentage
func (r *GormOwnershipShareRepository) toDomainShares(shareModels []models.OwnershipShareModel) ([]property.OwnershipShare, error) {
	shares := make([]property.OwnershipShare, len(shareModels))
	for i, model := range shareModels {
		share, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		shares[i] = share
	}
	return shares, nil
}

// Ensure GormOwnershipShareRepository implements OwnershipShareRepository
var _ property.OwnershipShareRepository = (*GormOwnershipShareRepository)(nil)
