package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingapp "github.com/propely/backend/internal/application/billing"
	"github.com/propely/backend/internal/domain/billing"
)

// TestOrgIsolation_Integration verifies that no billing data leaks between
// organizations: every read and mutation is scoped by the caller's org.
func TestOrgIsolation_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	svc := newBillingServices(t, testDB)
	ctx := context.Background()

	orgA := uuid.New()
	orgB := uuid.New()

	periodStart := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC)

	// Same lease ID in both orgs: org scoping, not lease identity, must
	// separate the data.
	leaseID := uuid.New()

	setupOrg := func(t *testing.T, orgID uuid.UUID, amount string) *billingapp.InvoiceResponse {
		t.Helper()
		_, err := svc.charges.CreateCharge(ctx, orgID, billingapp.CreateChargeRequest{
			LeaseID:      leaseID,
			ChargeTypeID: uuid.New(),
			Description:  "Monthly rent",
			Amount:       amount,
			Frequency:    string(billing.FrequencyMonthly),
			StartDate:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		inv, err := svc.invoices.GenerateForLease(ctx, orgID, billingapp.GenerateInvoiceRequest{
			LeaseID:     leaseID,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
		})
		require.NoError(t, err)
		issued, err := svc.invoices.IssueInvoice(ctx, orgID, inv.ID, billingapp.IssueInvoiceRequest{
			IssueDate: time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC),
			DueDate:   time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		return issued
	}

	invA := setupOrg(t, orgA, "10000.00")
	invB := setupOrg(t, orgB, "20000.00")

	t.Run("invoice listings are scoped", func(t *testing.T) {
		listA, totalA, err := svc.invoices.ListInvoices(ctx, orgA, billingapp.InvoiceListFilter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), totalA)
		require.Len(t, listA, 1)
		assert.Equal(t, invA.ID, listA[0].ID)
		assert.Equal(t, orgA, listA[0].OrgID)

		listB, totalB, err := svc.invoices.ListInvoices(ctx, orgB, billingapp.InvoiceListFilter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), totalB)
		require.Len(t, listB, 1)
		assert.Equal(t, invB.ID, listB[0].ID)
	})

	t.Run("cross-org invoice reads fail", func(t *testing.T) {
		_, err := svc.invoices.GetInvoice(ctx, orgB, invA.ID)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
	})

	t.Run("cross-org payment recording fails", func(t *testing.T) {
		_, err := svc.payments.RecordPayment(ctx, orgB, "ops@test", billingapp.RecordPaymentRequest{
			InvoiceID:   invA.ID,
			Mode:        string(billing.PaymentModeCash),
			Amount:      "10000.00",
			PaymentDate: time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC),
			PayerName:   "Intruder",
		})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
	})

	t.Run("payments stay inside their org", func(t *testing.T) {
		payment, err := svc.payments.RecordPayment(ctx, orgA, "ops@test", billingapp.RecordPaymentRequest{
			InvoiceID:   invA.ID,
			Mode:        string(billing.PaymentModeCash),
			Amount:      "4000.00",
			PaymentDate: time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC),
			PayerName:   "A Kumar",
		})
		require.NoError(t, err)

		_, err = svc.payments.GetPayment(ctx, orgB, payment.ID)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))

		// Org A's partial payment must not move org B's invoice
		untouched, err := svc.invoices.GetInvoice(ctx, orgB, invB.ID)
		require.NoError(t, err)
		assert.Equal(t, string(billing.InvoiceStatusIssued), untouched.Status)
		assert.True(t, untouched.PaidAmount.IsZero())
	})

	t.Run("pending confirmations are scoped", func(t *testing.T) {
		claim, err := svc.confirmations.SubmitRequest(ctx, orgA, "tenant@test", billingapp.SubmitConfirmationRequest{
			InvoiceID:          invA.ID,
			PayerName:          "R Sharma",
			Mode:               string(billing.PaymentModeUPI),
			Amount:             "1000.00",
			ClaimedPaymentDate: time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		pendingA, err := svc.confirmations.ListPendingRequests(ctx, orgA)
		require.NoError(t, err)
		require.Len(t, pendingA, 1)

		pendingB, err := svc.confirmations.ListPendingRequests(ctx, orgB)
		require.NoError(t, err)
		assert.Empty(t, pendingB)

		// Org B cannot review org A's claim
		_, err = svc.confirmations.ConfirmRequest(ctx, orgB, claim.ID, "owner@test", "looks fine")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
	})

	t.Run("gateway callbacks are scoped by org", func(t *testing.T) {
		_, err := svc.payments.RecordPayment(ctx, orgB, "tenant@test", billingapp.RecordPaymentRequest{
			InvoiceID:    invB.ID,
			Mode:         string(billing.PaymentModeOnline),
			Amount:       "20000.00",
			PaymentDate:  time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC),
			GatewayTxnID: "GW-ISO-001",
			PayerName:    "B Tenant",
		})
		require.NoError(t, err)

		// A callback carrying org A must not settle org B's payment
		_, err = svc.payments.CompleteGatewayPayment(ctx, orgA, "GW-ISO-001", "SETTLE-X")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
	})
}
