package persistence

import (
	"context"
	"errors"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRatePlanRepository implements RatePlanRepository using GORM
type GormRatePlanRepository struct {
	db *gorm.DB
}

// NewGormRatePlanRepository creates a new GormRatePlanRepository
func NewGormRatePlanRepository(db *gorm.DB) *GormRatePlanRepository {
	return &GormRatePlanRepository{db: db}
}

// FindByID finds a rate plan by its ID
func (r *GormRatePlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RatePlan, error) {
	var model models.RatePlanModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a rate plan by ID scoped to an org
func (r *GormRatePlanRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.RatePlan, error) {
	var model models.RatePlanModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByUtilityType finds the active rate plans for a utility type
func (r *GormRatePlanRepository) FindActiveByUtilityType(ctx context.Context, orgID uuid.UUID, utilityType billing.UtilityType) ([]billing.RatePlan, error) {
	var planModels []models.RatePlanModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND utility_type = ? AND is_active = ?", orgID, utilityType, true).
		Order("name ASC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}
	plans := make([]billing.RatePlan, len(planModels))
	for i, model := range planModels {
		plans[i] = *model.ToDomain()
	}
	return plans, nil
}

// Save creates or updates a rate plan
func (r *GormRatePlanRepository) Save(ctx context.Context, plan *billing.RatePlan) error {
	var model models.RatePlanModel
	model.FromDomain(plan)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormRatePlanRepository) SaveWithLock(ctx context.Context, plan *billing.RatePlan) error {
	var model models.RatePlanModel
	model.FromDomain(plan)
	result := r.db.WithContext(ctx).
		Model(&model).
		Where("id = ? AND version = ?", plan.ID, plan.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(&model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormRatePlanRepository implements RatePlanRepository
var _ billing.RatePlanRepository = (*GormRatePlanRepository)(nil)
