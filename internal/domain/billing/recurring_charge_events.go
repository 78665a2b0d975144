package billing

import (
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringChargeCreatedEvent is raised when a new recurring charge is created
type RecurringChargeCreatedEvent struct {
	shared.BaseDomainEvent
	ChargeID  uuid.UUID       `json:"charge_id"`
	LeaseID   uuid.UUID       `json:"lease_id"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency ChargeFrequency `json:"frequency"`
	StartDate time.Time       `json:"start_date"`
}

// EventType returns the event type name
func (e *RecurringChargeCreatedEvent) EventType() string {
	return "RecurringChargeCreated"
}

// NewRecurringChargeCreatedEvent creates a new RecurringChargeCreatedEvent
func NewRecurringChargeCreatedEvent(rc *RecurringCharge) *RecurringChargeCreatedEvent {
	return &RecurringChargeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RecurringChargeCreated", "RecurringCharge", rc.ID, rc.OrgID),
		ChargeID:        rc.ID,
		LeaseID:         rc.LeaseID,
		Amount:          rc.Amount,
		Frequency:       rc.Frequency,
		StartDate:       rc.StartDate,
	}
}

// RecurringChargeUpdatedEvent is raised when a charge's amount or window changes
type RecurringChargeUpdatedEvent struct {
	shared.BaseDomainEvent
	ChargeID  uuid.UUID       `json:"charge_id"`
	LeaseID   uuid.UUID       `json:"lease_id"`
	Amount    decimal.Decimal `json:"amount"`
	StartDate time.Time       `json:"start_date"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
}

// EventType returns the event type name
func (e *RecurringChargeUpdatedEvent) EventType() string {
	return "RecurringChargeUpdated"
}

// NewRecurringChargeUpdatedEvent creates a new RecurringChargeUpdatedEvent
func NewRecurringChargeUpdatedEvent(rc *RecurringCharge) *RecurringChargeUpdatedEvent {
	return &RecurringChargeUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RecurringChargeUpdated", "RecurringCharge", rc.ID, rc.OrgID),
		ChargeID:        rc.ID,
		LeaseID:         rc.LeaseID,
		Amount:          rc.Amount,
		StartDate:       rc.StartDate,
		EndDate:         rc.EndDate,
	}
}

// RecurringChargeDeactivatedEvent is raised when a charge is deactivated
type RecurringChargeDeactivatedEvent struct {
	shared.BaseDomainEvent
	ChargeID uuid.UUID `json:"charge_id"`
	LeaseID  uuid.UUID `json:"lease_id"`
}

// EventType returns the event type name
func (e *RecurringChargeDeactivatedEvent) EventType() string {
	return "RecurringChargeDeactivated"
}

// NewRecurringChargeDeactivatedEvent creates a new RecurringChargeDeactivatedEvent
func NewRecurringChargeDeactivatedEvent(rc *RecurringCharge) *RecurringChargeDeactivatedEvent {
	return &RecurringChargeDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("RecurringChargeDeactivated", "RecurringCharge", rc.ID, rc.OrgID),
		ChargeID:        rc.ID,
		LeaseID:         rc.LeaseID,
	}
}
