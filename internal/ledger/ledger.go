package ledger

import (
	"sort"

	"github.com/splitr/splitr/internal/models"
)

// Pair keys one directed debt edge.
type Pair struct {
	Debtor   string
	Creditor string
}

// Debt is an outstanding amount owed to a creditor.
type Debt struct {
	To     string
	Amount float64
}

// Credit is an outstanding amount owed by a debtor.
type Credit struct {
	From   string
	Amount float64
}

// MemberBalance is one member's view of a netted ledger.
type MemberBalance struct {
	ID           string
	TotalBalance float64
	Owes         []Debt
	OwedBy       []Credit
}

// Ledger is the netted pairwise debt graph for a set of members. Edges are
// stored sparsely by (debtor, creditor) pair; after netting, at most one
// direction per unordered pair is non-zero.
type Ledger struct {
	members []string
	edges   map[Pair]float64
	totals  map[string]float64
}

// BuildLedger constructs and nets the debt graph for the given members
// from a snapshot of expenses and settlements.
//
// Each unpaid split adds an edge from the split's participant to the
// expense's payer. The payer's own share and any split marked paid are
// skipped: those represent amounts already settled at creation or
// out-of-band. Each settlement subtracts from what the payer owed the
// receiver. Records referencing users outside the member set are skipped
// rather than aborting the build; one bad record must not blank the view.
func BuildLedger(expenses []*models.Expense, settlements []*models.Settlement, memberIDs []string) *Ledger {
	l := &Ledger{
		members: memberIDs,
		edges:   make(map[Pair]float64),
		totals:  make(map[string]float64, len(memberIDs)),
	}
	isMember := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		isMember[id] = true
		l.totals[id] = 0
	}

	for _, exp := range expenses {
		payer := exp.PaidByUserID
		if !isMember[payer] {
			continue
		}
		for _, split := range exp.Splits {
			if split.UserID == payer || split.Paid || !isMember[split.UserID] {
				continue
			}
			l.totals[payer] += split.Amount
			l.totals[split.UserID] -= split.Amount
			l.edges[Pair{Debtor: split.UserID, Creditor: payer}] += split.Amount
		}
	}

	for _, s := range settlements {
		if !isMember[s.PaidByUserID] || !isMember[s.ReceivedByUserID] {
			continue
		}
		l.totals[s.PaidByUserID] += s.Amount
		l.totals[s.ReceivedByUserID] -= s.Amount
		// A payment reduces what the payer owed the receiver.
		l.edges[Pair{Debtor: s.PaidByUserID, Creditor: s.ReceivedByUserID}] -= s.Amount
	}

	l.net()
	return l
}

// net collapses opposing edges so each unordered pair keeps at most one
// non-zero direction. Pairs are visited in a stable sorted order.
func (l *Ledger) net() {
	sorted := append([]string(nil), l.members...)
	sort.Strings(sorted)

	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			ab, ba := Pair{a, b}, Pair{b, a}
			diff := l.edges[ab] - l.edges[ba]
			switch {
			case diff > 0:
				l.edges[ab] = diff
				delete(l.edges, ba)
			case diff < 0:
				l.edges[ba] = -diff
				delete(l.edges, ab)
			default:
				delete(l.edges, ab)
				delete(l.edges, ba)
			}
		}
	}
}

// Amount returns the netted amount the debtor owes the creditor.
func (l *Ledger) Amount(debtor, creditor string) float64 {
	return l.edges[Pair{Debtor: debtor, Creditor: creditor}]
}

// TotalBalance returns a member's signed net across all counterparties.
func (l *Ledger) TotalBalance(id string) float64 {
	return l.totals[id]
}

// MemberBalances shapes the ledger into one entry per member, in the
// member-list order the ledger was built with. Edges within Tolerance of
// zero are dropped as settled.
func (l *Ledger) MemberBalances() []MemberBalance {
	balances := make([]MemberBalance, len(l.members))
	for i, id := range l.members {
		mb := MemberBalance{ID: id, TotalBalance: l.totals[id]}
		for _, other := range l.members {
			if other == id {
				continue
			}
			if amt := l.edges[Pair{Debtor: id, Creditor: other}]; amt > Tolerance {
				mb.Owes = append(mb.Owes, Debt{To: other, Amount: amt})
			}
			if amt := l.edges[Pair{Debtor: other, Creditor: id}]; amt > Tolerance {
				mb.OwedBy = append(mb.OwedBy, Credit{From: other, Amount: amt})
			}
		}
		balances[i] = mb
	}
	return balances
}
