package models

import (
	"fmt"
	"time"

	"github.com/propely/backend/internal/domain/property"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerModel is the persistence model for the Owner aggregate root.
// Owners are soft-deleted so historical share sets keep a valid reference.
type OwnerModel struct {
	OrgAggregateModel
	Name      string     `gorm:"type:varchar(200);not null"`
	Email     string     `gorm:"type:varchar(200);index"`
	Phone     string     `gorm:"type:varchar(50)"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (OwnerModel) TableName() string {
	return "owners"
}

// ToDomain converts the persistence model to a domain Owner entity.
func (m *OwnerModel) ToDomain() *property.Owner {
	return &property.Owner{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		DeletedAt:        m.DeletedAt,
	}
}

// FromDomain populates the persistence model from a domain Owner entity.
func (m *OwnerModel) FromDomain(o *property.Owner) {
	m.FromDomainOrgAggregateRoot(o.OrgAggregateRoot)
	m.Name = o.Name
	m.Email = o.Email
	m.Phone = o.Phone
	m.DeletedAt = o.DeletedAt
}

// OwnershipShareModel is the persistence model for one ownership share row.
// A parent's full set is always replaced atomically, never edited row by row.
type OwnershipShareModel struct {
	BaseModel
	OrgID         uuid.UUID           `gorm:"type:uuid;not null;index:idx_share_org_parent,priority:1;index:idx_share_org_owner,priority:1"`
	ParentKind    property.ParentKind `gorm:"type:varchar(20);not null;index:idx_share_org_parent,priority:2"`
	ParentID      uuid.UUID           `gorm:"type:uuid;not null;index:idx_share_org_parent,priority:3"`
	OwnerID       uuid.UUID           `gorm:"type:uuid;not null;index:idx_share_org_owner,priority:2"`
	Percent       decimal.Decimal     `gorm:"type:decimal(7,4);not null"`
	EffectiveFrom time.Time           `gorm:"not null"`
	AssignedBy    string              `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (OwnershipShareModel) TableName() string {
	return "ownership_shares"
}

// ToDomain converts the persistence model to a domain OwnershipShare.
// A stored percentage outside (0, 100] means the row was corrupted
// outside the application, so the conversion reports it.
func (m *OwnershipShareModel) ToDomain() (property.OwnershipShare, error) {
	pct, err := valueobject.NewPercent(m.Percent)
	if err != nil {
		return property.OwnershipShare{}, fmt.Errorf("share %s has invalid stored percent: %w", m.ID, err)
	}
	return property.OwnershipShare{
		BaseEntity:    m.BaseModel.ToDomain(),
		OrgID:         m.OrgID,
		ParentKind:    m.ParentKind,
		ParentID:      m.ParentID,
		OwnerID:       m.OwnerID,
		Percent:       pct,
		EffectiveFrom: m.EffectiveFrom,
		AssignedBy:    m.AssignedBy,
	}, nil
}

// FromDomain populates the persistence model from a domain OwnershipShare.
func (m *OwnershipShareModel) FromDomain(s property.OwnershipShare) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.OrgID = s.OrgID
	m.ParentKind = s.ParentKind
	m.ParentID = s.ParentID
	m.OwnerID = s.OwnerID
	m.Percent = s.Percent.Value()
	m.EffectiveFrom = s.EffectiveFrom
	m.AssignedBy = s.AssignedBy
}
