package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecurringChargeRepository implements RecurringChargeRepository using GORM
type GormRecurringChargeRepository struct {
	db *gorm.DB
}

// NewGormRecurringChargeRepository creates a new GormRecurringChargeRepository
func NewGormRecurringChargeRepository(db *gorm.DB) *GormRecurringChargeRepository {
	return &GormRecurringChargeRepository{db: db}
}

// FindByID finds a recurring charge by its ID
func (r *GormRecurringChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RecurringCharge, error) {
	var model models.RecurringChargeModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a recurring charge by ID scoped to an org
func (r *GormRecurringChargeRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.RecurringCharge, error) {
	var model models.RecurringChargeModel
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

// FindByLease finds all recurring charges for a lease
func (r *GormRecurringChargeRepository) FindByLease(ctx context.Context, orgID, leaseID uuid.UUID) ([]billing.RecurringCharge, error) {
	var chargeModels []models.RecurringChargeModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND lease_id = ?", orgID, leaseID).
		Order("start_date ASC").
		Find(&chargeModels).Error; err != nil {
		return nil, err
	}
	charges := make([]billing.RecurringCharge, len(chargeModels))
	for i, model := range chargeModels {
		charges[i] = *model.ToDomain()
	}
	return charges, nil
}

// FindActiveByLease finds the active recurring charges for a lease
func (r *GormRecurringChargeRepository) FindActiveByLease(ctx context.Context, orgID, leaseID uuid.UUID) ([]billing.RecurringCharge, error) {
	var chargeModels []models.RecurringChargeModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND lease_id = ? AND is_active = ?", orgID, leaseID, true).
		Order("start_date ASC").
		Find(&chargeModels).Error; err != nil {
		return nil, err
	}
	charges := make([]billing.RecurringCharge, len(chargeModels))
	for i, model := range chargeModels {
		charges[i] = *model.ToDomain()
	}
	return charges, nil
}

// Save creates or updates a recurring charge
func (r *GormRecurringChargeRepository) Save(ctx context.Context, charge *billing.RecurringCharge) error {
	var model models.RecurringChargeModel
	model.FromDomain(charge)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormRecurringChargeRepository) SaveWithLock(ctx context.Context, charge *billing.RecurringCharge) error {
	var model models.RecurringChargeModel
	model.FromDomain(charge)
	result := r.db.WithContext(ctx).
		Model(&model).
		Where("id = ? AND version = ?", charge.ID, charge.Version-1).
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

// FindExpiredActive finds active charges whose end date has passed.
// The scheduler sweep uses it to deactivate ended charges.
func (r *GormRecurringChargeRepository) FindExpiredActive(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]billing.RecurringCharge, error) {
	var chargeModels []models.RecurringChargeModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ? AND end_date IS NOT NULL AND end_date < ?", orgID, true, asOf).
		Find(&chargeModels).Error; err != nil {
		return nil, err
	}
	charges := make([]billing.RecurringCharge, len(chargeModels))
	for i, model := range chargeModels {
		charges[i] = *model.ToDomain()
	}
	return charges, nil
}

// ListLeasesWithActiveCharges returns the distinct lease IDs that have at
// least one active charge covering asOf. The monthly invoice generation job
// uses it to decide which leases to bill.
func (r *GormRecurringChargeRepository) ListLeasesWithActiveCharges(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]uuid.UUID, error) {
	var leaseIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.RecurringChargeModel{}).
		Distinct("lease_id").
		Where("org_id = ? AND is_active = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)",
			orgID, true, asOf, asOf).
		Pluck("lease_id", &leaseIDs).Error; err != nil {
		return nil, err
	}
	return leaseIDs, nil
}

// Ensure GormRecurringChargeRepository implements RecurringChargeRepository
var _ billing.RecurringChargeRepository = (*GormRecurringChargeRepository)(nil)
