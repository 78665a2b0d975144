package billing

import (
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UtilityStatementFinalizedEvent is raised when a statement becomes final
type UtilityStatementFinalizedEvent struct {
	shared.BaseDomainEvent
	StatementID uuid.UUID       `json:"statement_id"`
	LeaseID     uuid.UUID       `json:"lease_id"`
	UtilityType UtilityType     `json:"utility_type"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Revision    int             `json:"revision"`
}

// EventType returns the event type name
func (e *UtilityStatementFinalizedEvent) EventType() string {
	return "UtilityStatementFinalized"
}

// NewUtilityStatementFinalizedEvent creates a new UtilityStatementFinalizedEvent
func NewUtilityStatementFinalizedEvent(us *UtilityStatement) *UtilityStatementFinalizedEvent {
	return &UtilityStatementFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("UtilityStatementFinalized", "UtilityStatement", us.ID, us.OrgID),
		StatementID:     us.ID,
		LeaseID:         us.LeaseID,
		UtilityType:     us.UtilityType,
		PeriodStart:     us.PeriodStart,
		PeriodEnd:       us.PeriodEnd,
		TotalAmount:     us.TotalAmount,
		Revision:        us.Revision,
	}
}

// UtilityStatementSupersededEvent is raised when a final statement is demoted
// in favour of a finalized revision
type UtilityStatementSupersededEvent struct {
	shared.BaseDomainEvent
	StatementID uuid.UUID   `json:"statement_id"`
	LeaseID     uuid.UUID   `json:"lease_id"`
	UtilityType UtilityType `json:"utility_type"`
	PeriodStart time.Time   `json:"period_start"`
	PeriodEnd   time.Time   `json:"period_end"`
	Revision    int         `json:"revision"`
}

// EventType returns the event type name
func (e *UtilityStatementSupersededEvent) EventType() string {
	return "UtilityStatementSuperseded"
}

// NewUtilityStatementSupersededEvent creates a new UtilityStatementSupersededEvent
func NewUtilityStatementSupersededEvent(us *UtilityStatement) *UtilityStatementSupersededEvent {
	return &UtilityStatementSupersededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("UtilityStatementSuperseded", "UtilityStatement", us.ID, us.OrgID),
		StatementID:     us.ID,
		LeaseID:         us.LeaseID,
		UtilityType:     us.UtilityType,
		PeriodStart:     us.PeriodStart,
		PeriodEnd:       us.PeriodEnd,
		Revision:        us.Revision,
	}
}
