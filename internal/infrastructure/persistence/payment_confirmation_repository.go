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

// GormPaymentConfirmationRepository implements PaymentConfirmationRepository using GORM
type GormPaymentConfirmationRepository struct {
	db *gorm.DB
}

// NewGormPaymentConfirmationRepository creates a new GormPaymentConfirmationRepository
func NewGormPaymentConfirmationRepository(db *gorm.DB) *GormPaymentConfirmationRepository {
	return &GormPaymentConfirmationRepository{db: db}
}

// FindByID finds a confirmation request by its ID
func (r *GormPaymentConfirmationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentConfirmationRequest, error) {
	var model models.PaymentConfirmationModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a confirmation request by ID scoped to an org
func (r *GormPaymentConfirmationRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.PaymentConfirmationRequest, error) {
	var model models.PaymentConfirmationModel
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

// FindByInvoice finds all confirmation requests submitted against an invoice
func (r *GormPaymentConfirmationRepository) FindByInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]billing.PaymentConfirmationRequest, error) {
	var requestModels []models.PaymentConfirmationModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND invoice_id = ?", orgID, invoiceID).
		Order("created_at DESC").
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	requests := make([]billing.PaymentConfirmationRequest, len(requestModels))
	for i, model := range requestModels {
		requests[i] = *model.ToDomain()
	}
	return requests, nil
}

// FindPendingForOrg finds the org's open review queue, oldest first
func (r *GormPaymentConfirmationRepository) FindPendingForOrg(ctx context.Context, orgID uuid.UUID) ([]billing.PaymentConfirmationRequest, error) {
	var requestModels []models.PaymentConfirmationModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND status = ?", orgID, billing.ConfirmationStatusPending).
		Order("created_at ASC").
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	requests := make([]billing.PaymentConfirmationRequest, len(requestModels))
	for i, model := range requestModels {
		requests[i] = *model.ToDomain()
	}
	return requests, nil
}

// Save creates or updates a confirmation request
func (r *GormPaymentConfirmationRepository) Save(ctx context.Context, request *billing.PaymentConfirmationRequest) error {
	var model models.PaymentConfirmationModel
	model.FromDomain(request)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with optimistic locking. Two reviewers racing on the
// same request resolve here: the loser's version predicate matches no row.
func (r *GormPaymentConfirmationRepository) SaveWithLock(ctx context.Context, request *billing.PaymentConfirmationRequest) error {
	var model models.PaymentConfirmationModel
	model.FromDomain(request)
	result := r.db.WithContext(ctx).
		Model(&model).
		Where("id = ? AND version = ?", request.ID, request.Version-1).
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

// Ensure GormPaymentConfirmationRepository implements PaymentConfirmationRepository
var _ billing.PaymentConfirmationRepository = (*GormPaymentConfirmationRepository)(nil)
