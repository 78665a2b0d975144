package persistence

import (
	"context"
	"errors"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/propely/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUtilityStatementRepository implements UtilityStatementRepository using GORM
type GormUtilityStatementRepository struct {
	db *gorm.DB
}

// NewGormUtilityStatementRepository creates a new GormUtilityStatementRepository
func NewGormUtilityStatementRepository(db *gorm.DB) *GormUtilityStatementRepository {
	return &GormUtilityStatementRepository{db: db}
}

// FindByID finds a utility statement by its ID
func (r *GormUtilityStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.UtilityStatement, error) {
	var model models.UtilityStatementModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a utility statement by ID scoped to an org
func (r *GormUtilityStatementRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.UtilityStatement, error) {
	var model models.UtilityStatementModel
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

// FindByLeaseAndPeriod finds all statements for a lease and billing period
func (r *GormUtilityStatementRepository) FindByLeaseAndPeriod(ctx context.Context, orgID, leaseID uuid.UUID, period valueobject.BillingPeriod) ([]billing.UtilityStatement, error) {
	var statementModels []models.UtilityStatementModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND lease_id = ? AND period_start = ? AND period_end = ?",
			orgID, leaseID, period.Start(), period.End()).
		Order("utility_type ASC, revision ASC").
		Find(&statementModels).Error; err != nil {
		return nil, err
	}
	statements := make([]billing.UtilityStatement, len(statementModels))
	for i, model := range statementModels {
		statements[i] = *model.ToDomain()
	}
	return statements, nil
}

// FindFinal returns the final statement for the lease, utility type and
// period, or shared.ErrNotFound when none is finalized yet.
func (r *GormUtilityStatementRepository) FindFinal(ctx context.Context, orgID, leaseID uuid.UUID, utilityType billing.UtilityType, period valueobject.BillingPeriod) (*billing.UtilityStatement, error) {
	var model models.UtilityStatementModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND lease_id = ? AND utility_type = ? AND period_start = ? AND period_end = ? AND is_final = ?",
			orgID, leaseID, utilityType, period.Start(), period.End(), true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindFinalForPeriod returns all final statements for a lease and period,
// one per utility type.
func (r *GormUtilityStatementRepository) FindFinalForPeriod(ctx context.Context, orgID, leaseID uuid.UUID, period valueobject.BillingPeriod) ([]billing.UtilityStatement, error) {
	var statementModels []models.UtilityStatementModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND lease_id = ? AND period_start = ? AND period_end = ? AND is_final = ?",
			orgID, leaseID, period.Start(), period.End(), true).
		Order("utility_type ASC").
		Find(&statementModels).Error; err != nil {
		return nil, err
	}
	statements := make([]billing.UtilityStatement, len(statementModels))
	for i, model := range statementModels {
		statements[i] = *model.ToDomain()
	}
	return statements, nil
}

// Save creates or updates a utility statement
func (r *GormUtilityStatementRepository) Save(ctx context.Context, statement *billing.UtilityStatement) error {
	var model models.UtilityStatementModel
	model.FromDomain(statement)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormUtilityStatementRepository) SaveWithLock(ctx context.Context, statement *billing.UtilityStatement) error {
	var model models.UtilityStatementModel
	model.FromDomain(statement)
	result := r.db.WithContext(ctx).
		Model(&model).
		Where("id = ? AND version = ?", statement.ID, statement.Version-1).
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

// Ensure GormUtilityStatementRepository implements UtilityStatementRepository
var _ billing.UtilityStatementRepository = (*GormUtilityStatementRepository)(nil)
