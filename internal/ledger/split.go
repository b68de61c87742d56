// Package ledger implements the balance engine: split calculation,
// pairwise debt netting, and per-user aggregate balances. Everything in
// this package is a pure function of the records passed in; callers fetch
// a snapshot from storage and hand it over.
package ledger

import (
	"fmt"
	"math"

	"github.com/splitr/splitr/internal/models"
)

// Tolerance is the epsilon under which two currency amounts are considered
// equal. Net balances smaller than this are treated as settled so that
// floating-point noise never produces phantom debts.
const Tolerance = 0.01

// Share is one participant's computed share of an expense, including the
// derived percentage for display.
type Share struct {
	UserID     string
	Amount     float64
	Percentage float64
	Paid       bool
}

// SplitResult is the outcome of a split computation. A non-zero Mismatch
// beyond Tolerance is a recognized, surfaced state, never silently
// corrected: the caller decides whether to warn or block.
type SplitResult struct {
	Shares []Share

	// ShareTotal is the sum of all share amounts.
	ShareTotal float64

	// Mismatch is ShareTotal minus the expense amount.
	Mismatch float64
}

// Balanced reports whether the shares sum to the expense amount within
// Tolerance.
func (r *SplitResult) Balanced() bool {
	return math.Abs(r.Mismatch) <= Tolerance
}

// Splits converts the result to storable split records.
func (r *SplitResult) Splits() []models.Split {
	splits := make([]models.Split, len(r.Shares))
	for i, s := range r.Shares {
		splits[i] = models.Split{UserID: s.UserID, Amount: s.Amount, Paid: s.Paid}
	}
	return splits
}

// SplitInput describes one split computation.
type SplitInput struct {
	// Amount is the positive expense total.
	Amount float64

	// Type selects the split mode.
	Type models.SplitType

	// PaidByUserID is the payer; must be one of Participants. The payer's
	// own share is created with Paid set (implicitly settled at creation).
	PaidByUserID string

	// Participants is the ordered, duplicate-free participant list.
	Participants []string

	// Percentages supplies per-participant percentages for
	// SplitPercentage. Nil means uniform 100/N; a participant missing
	// from a non-nil map gets 0, which surfaces in Mismatch.
	Percentages map[string]float64

	// Amounts supplies per-participant absolute amounts for SplitExact.
	Amounts map[string]float64
}

// ComputeSplits produces per-participant shares for an expense.
//
// Equal splits are computed in integer cents: every participant gets
// floor(cents/N) and the first cents%N participants get one extra cent, so
// the shares always sum exactly to the amount. Percentage and exact splits
// use the caller's values as given; any deviation from the total lands in
// SplitResult.Mismatch rather than being redistributed.
func ComputeSplits(in SplitInput) (*SplitResult, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %v", in.Amount)
	}
	if len(in.Participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	seen := make(map[string]bool, len(in.Participants))
	for _, p := range in.Participants {
		if seen[p] {
			return nil, fmt.Errorf("duplicate participant %q", p)
		}
		seen[p] = true
	}
	if in.PaidByUserID != "" && !seen[in.PaidByUserID] {
		return nil, fmt.Errorf("payer %q must be one of the participants", in.PaidByUserID)
	}

	var shares []Share
	switch in.Type {
	case models.SplitEqual:
		shares = equalShares(in)
	case models.SplitPercentage:
		shares = percentageShares(in)
	case models.SplitExact:
		if in.Amounts == nil {
			return nil, fmt.Errorf("exact split requires per-participant amounts")
		}
		shares = exactShares(in)
	default:
		return nil, fmt.Errorf("unknown split type %q", in.Type)
	}

	result := &SplitResult{Shares: shares}
	for _, s := range shares {
		result.ShareTotal += s.Amount
	}
	result.Mismatch = result.ShareTotal - in.Amount
	return result, nil
}

func equalShares(in SplitInput) []Share {
	n := int64(len(in.Participants))
	cents := int64(math.Round(in.Amount * 100))
	base, extra := cents/n, cents%n

	shares := make([]Share, len(in.Participants))
	for i, p := range in.Participants {
		c := base
		if int64(i) < extra {
			c++
		}
		shares[i] = Share{
			UserID:     p,
			Amount:     float64(c) / 100,
			Percentage: 100 / float64(n),
			Paid:       p == in.PaidByUserID,
		}
	}
	return shares
}

func percentageShares(in SplitInput) []Share {
	uniform := 100 / float64(len(in.Participants))
	shares := make([]Share, len(in.Participants))
	for i, p := range in.Participants {
		pct := uniform
		if in.Percentages != nil {
			pct = in.Percentages[p]
		}
		shares[i] = Share{
			UserID:     p,
			Amount:     in.Amount * pct / 100,
			Percentage: pct,
			Paid:       p == in.PaidByUserID,
		}
	}
	return shares
}

func exactShares(in SplitInput) []Share {
	shares := make([]Share, len(in.Participants))
	for i, p := range in.Participants {
		amt := in.Amounts[p]
		shares[i] = Share{
			UserID:     p,
			Amount:     amt,
			Percentage: amt / in.Amount * 100,
			Paid:       p == in.PaidByUserID,
		}
	}
	return shares
}
