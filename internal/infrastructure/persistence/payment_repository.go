package persistence

import (
	"context"
	"errors"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements PaymentRepository using GORM.
// Status history rows are written in the same transaction as the payment;
// existing rows are never updated, matching the append-only audit contract.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID, history included
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomainWithHistory(ctx, &model)
}

// FindByIDForOrg finds a payment by ID scoped to an org, history included
func (r *GormPaymentRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomainWithHistory(ctx, &model)
}

// FindByInvoice finds all payments recorded against an invoice
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND invoice_id = ?", orgID, invoiceID).
		Order("payment_date ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// FindByGatewayTxnID finds the payment carrying a gateway transaction ID
func (r *GormPaymentRepository) FindByGatewayTxnID(ctx context.Context, orgID uuid.UUID, gatewayTxnID string) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND gateway_txn_id = ?", orgID, gatewayTxnID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomainWithHistory(ctx, &model)
}

// SumCompletedByInvoice returns the sum of completed payment amounts for an
// invoice. Invoice balances are always recomputed from this sum.
func (r *GormPaymentRepository) SumCompletedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("invoice_id = ? AND status = ?", invoiceID, billing.PaymentStatusCompleted).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// FindHistory returns the full audit trail for a payment in sequence order
func (r *GormPaymentRepository) FindHistory(ctx context.Context, paymentID uuid.UUID) ([]billing.PaymentStatusHistory, error) {
	var historyModels []models.PaymentStatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("sequence ASC").
		Find(&historyModels).Error; err != nil {
		return nil, err
	}
	history := make([]billing.PaymentStatusHistory, len(historyModels))
	for i, model := range historyModels {
		history[i] = model.ToDomain()
	}
	return history, nil
}

// Save creates or updates a payment and appends any new history rows
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		return r.appendHistory(tx, payment)
	})
}

// SaveWithLock saves with optimistic locking and appends any new history rows
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *billing.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model).
			Where("id = ? AND version = ?", payment.ID, payment.Version-1).
			Select("*").Omit("id", "created_at").
			Updates(&model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.appendHistory(tx, payment)
	})
}

// appendHistory inserts the payment's history entries, skipping rows that
// already exist. The (payment_id, sequence) unique index makes the insert
// idempotent without ever rewriting an existing audit row.
func (r *GormPaymentRepository) appendHistory(tx *gorm.DB, payment *billing.Payment) error {
	if len(payment.History) == 0 {
		return nil
	}
	historyModels := make([]models.PaymentStatusHistoryModel, len(payment.History))
	for i, entry := range payment.History {
		historyModels[i].FromDomain(entry)
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}, {Name: "sequence"}},
		DoNothing: true,
	}).Create(&historyModels).Error
}

// toDomainWithHistory converts a model and attaches its audit trail
func (r *GormPaymentRepository) toDomainWithHistory(ctx context.Context, model *models.PaymentModel) (*billing.Payment, error) {
	payment := model.ToDomain()
	history, err := r.FindHistory(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	payment.History = history
	return payment, nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
