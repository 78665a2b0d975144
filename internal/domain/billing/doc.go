// Package billing contains the billing and payment engine for leases:
// recurring-charge expansion with proration, utility statement calculation,
// the invoice lifecycle, and the payment state machine with its audit trail.
//
// Monetary amounts are decimal throughout; every status transition is
// recorded and every mutable aggregate carries an optimistic-concurrency
// version token.
package billing
