package models

// Settlement represents a recorded payment that reduces outstanding debt
// between two users. Settlements are created once and only deleted.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// Amount is the positive payment amount.
	Amount float64

	// Note is an optional description for the settlement.
	Note string

	// Date is the Unix timestamp (milliseconds) the payment is dated to.
	Date int64

	// PaidByUserID is the user who paid (debtor settling up).
	PaidByUserID string

	// ReceivedByUserID is the user who received payment. Always distinct
	// from PaidByUserID.
	ReceivedByUserID string

	// GroupID scopes the settlement to a group; empty for 1-to-1 payments.
	GroupID string

	// RelatedExpenseIDs optionally links the expenses this payment covers.
	RelatedExpenseIDs []string

	// CreatedBy is the user who recorded the settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}
