package models

// SplitType determines how an expense's amount is divided among participants.
type SplitType string

const (
	// SplitEqual divides the amount evenly among all participants.
	SplitEqual SplitType = "equal"

	// SplitPercentage divides the amount by caller-supplied percentages.
	SplitPercentage SplitType = "percentage"

	// SplitExact uses caller-supplied absolute amounts per participant.
	SplitExact SplitType = "exact"
)

// Split is one participant's assigned share of an expense.
type Split struct {
	// UserID references the participant. Unique within an expense.
	UserID string

	// Amount is this participant's share of the expense total.
	Amount float64

	// Paid marks a share as already settled. The payer's own share is
	// always Paid; other shares flip to true only through settlement
	// application, never by direct edit. Paid shares contribute nothing
	// to ledger or balance computation.
	Paid bool
}

// Expense represents a shared expense split among participants.
//
// Invariant: the split amounts sum to Amount within a 0.01 tolerance (a
// larger deviation is a recognized, surfaced state, not a hard error), and
// each UserID appears at most once in Splits. Expenses are created once and
// only deleted, never mutated.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is the human-readable label (e.g., "Dinner at Ramen-ya").
	Description string

	// Amount is the positive total of the expense.
	Amount float64

	// Category is an optional category label.
	Category string

	// Date is the Unix timestamp (milliseconds) the expense is dated to.
	Date int64

	// PaidByUserID is the user who fronted the money.
	PaidByUserID string

	// SplitType records how Splits were derived.
	SplitType SplitType

	// Splits is the per-participant share list.
	Splits []Split

	// GroupID scopes the expense to a group; empty for 1-to-1 expenses.
	GroupID string

	// CreatedBy is the user who recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}

// SplitFor returns the split entry for the given user, or nil.
func (e *Expense) SplitFor(userID string) *Split {
	for i := range e.Splits {
		if e.Splits[i].UserID == userID {
			return &e.Splits[i]
		}
	}
	return nil
}

// Involves reports whether the user paid for or participates in the expense.
func (e *Expense) Involves(userID string) bool {
	return e.PaidByUserID == userID || e.SplitFor(userID) != nil
}
