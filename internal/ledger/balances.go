package ledger

import (
	"math"
	"sort"

	"github.com/splitr/splitr/internal/models"
)

// CounterpartyBalance is an outstanding balance against one counterparty.
// Amount is always positive; the list it appears in carries the direction.
type CounterpartyBalance struct {
	UserID string
	Amount float64
}

// UserBalances is a single user's aggregate view across the records passed
// in: global totals plus per-counterparty breakdowns sorted largest first.
type UserBalances struct {
	YouOwe       float64
	YouAreOwed   float64
	TotalBalance float64
	YouOweList   []CounterpartyBalance
	YouAreOwedBy []CounterpartyBalance
}

// netByCounterparty accumulates the user's signed balance per counterparty.
// Positive means the counterparty owes the user. Records the user is not
// involved in contribute nothing; paid splits are excluded entirely.
//
// This accumulator is the one netting core behind the dashboard totals,
// the per-group figures, and the 1-to-1 person view; the callers differ
// only in how they filter the records.
func netByCounterparty(userID string, expenses []*models.Expense, settlements []*models.Settlement) map[string]float64 {
	net := make(map[string]float64)

	for _, e := range expenses {
		if e.PaidByUserID == userID {
			for _, s := range e.Splits {
				if s.UserID == userID || s.Paid {
					continue
				}
				net[s.UserID] += s.Amount
			}
			continue
		}
		if s := e.SplitFor(userID); s != nil && !s.Paid {
			net[e.PaidByUserID] -= s.Amount
		}
	}

	for _, s := range settlements {
		switch userID {
		case s.PaidByUserID:
			// The user paid them back: they owe the user more (or the
			// user owes them less).
			net[s.ReceivedByUserID] += s.Amount
		case s.ReceivedByUserID:
			net[s.PaidByUserID] -= s.Amount
		}
	}

	return net
}

// ComputeUserBalances computes the user's aggregate balances across the
// given records. Counterparties whose net is within Tolerance of zero are
// dropped as settled; the remaining entries are sorted descending by
// amount (ties broken by user ID) for display priority.
func ComputeUserBalances(userID string, expenses []*models.Expense, settlements []*models.Settlement) *UserBalances {
	b := &UserBalances{}
	for uid, net := range netByCounterparty(userID, expenses, settlements) {
		if math.Abs(net) < Tolerance {
			continue
		}
		entry := CounterpartyBalance{UserID: uid, Amount: math.Abs(net)}
		if net > 0 {
			b.YouAreOwed += net
			b.YouAreOwedBy = append(b.YouAreOwedBy, entry)
		} else {
			b.YouOwe -= net
			b.YouOweList = append(b.YouOweList, entry)
		}
	}
	b.TotalBalance = b.YouAreOwed - b.YouOwe

	sortByAmount(b.YouOweList)
	sortByAmount(b.YouAreOwedBy)
	return b
}

// NetBalance is the user's signed net across all counterparties in the
// given records. Used for the per-group balance on the dashboard.
func NetBalance(userID string, expenses []*models.Expense, settlements []*models.Settlement) float64 {
	var total float64
	for _, net := range netByCounterparty(userID, expenses, settlements) {
		total += net
	}
	return total
}

// PairBalance is the user's signed balance against one counterparty.
// Positive means the counterparty owes the user.
func PairBalance(userID, otherID string, expenses []*models.Expense, settlements []*models.Settlement) float64 {
	return netByCounterparty(userID, expenses, settlements)[otherID]
}

func sortByAmount(list []CounterpartyBalance) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Amount != list[j].Amount {
			return list[i].Amount > list[j].Amount
		}
		return list[i].UserID < list[j].UserID
	})
}
