package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrgProvider enumerates the organizations with billing activity. The
// scheduler uses it to fan out sweep and generation jobs; orgs themselves
// live in an external system, so "active" here means having either an active
// recurring charge or an open invoice.
type GormOrgProvider struct {
	db *gorm.DB
}

// NewGormOrgProvider creates a new org provider
func NewGormOrgProvider(db *gorm.DB) *GormOrgProvider {
	return &GormOrgProvider{db: db}
}

// GetAllActiveOrgIDs returns the distinct org IDs with billing activity
func (p *GormOrgProvider) GetAllActiveOrgIDs(ctx context.Context) ([]uuid.UUID, error) {
	var orgIDs []uuid.UUID
	err := p.db.WithContext(ctx).Raw(`
		SELECT DISTINCT org_id FROM recurring_charges WHERE is_active = true
		UNION
		SELECT DISTINCT org_id FROM invoices WHERE status IN ('ISSUED', 'PARTIALLY_PAID', 'OVERDUE')
	`).Scan(&orgIDs).Error
	if err != nil {
		return nil, err
	}
	return orgIDs, nil
}
