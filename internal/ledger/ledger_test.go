package ledger

import (
	"math"
	"testing"

	"github.com/splitr/splitr/internal/models"
)

func expense(payer string, splits ...models.Split) *models.Expense {
	return &models.Expense{PaidByUserID: payer, Splits: splits}
}

func settlement(payer, receiver string, amount float64) *models.Settlement {
	return &models.Settlement{PaidByUserID: payer, ReceivedByUserID: receiver, Amount: amount}
}

func TestBuildLedger(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	tests := []struct {
		name        string
		expenses    []*models.Expense
		settlements []*models.Settlement
		validate    func(t *testing.T, l *Ledger)
	}{
		{
			name: "equal three-way expense",
			expenses: []*models.Expense{
				expense("alice",
					models.Split{UserID: "alice", Amount: 300, Paid: true},
					models.Split{UserID: "bob", Amount: 300},
					models.Split{UserID: "carol", Amount: 300},
				),
			},
			validate: func(t *testing.T, l *Ledger) {
				if got := l.Amount("bob", "alice"); math.Abs(got-300) > 0.01 {
					t.Errorf("bob owes alice %v, want 300", got)
				}
				if got := l.Amount("carol", "alice"); math.Abs(got-300) > 0.01 {
					t.Errorf("carol owes alice %v, want 300", got)
				}
				if got := l.TotalBalance("alice"); math.Abs(got-600) > 0.01 {
					t.Errorf("alice total = %v, want 600", got)
				}
			},
		},
		{
			name: "opposing debts net to one direction",
			expenses: []*models.Expense{
				expense("bob", models.Split{UserID: "alice", Amount: 500}),
				expense("alice", models.Split{UserID: "bob", Amount: 200}),
			},
			validate: func(t *testing.T, l *Ledger) {
				if got := l.Amount("alice", "bob"); math.Abs(got-300) > 0.01 {
					t.Errorf("alice owes bob %v, want 300", got)
				}
				if got := l.Amount("bob", "alice"); got != 0 {
					t.Errorf("bob owes alice %v, want 0", got)
				}
			},
		},
		{
			name: "paid splits contribute nothing",
			expenses: []*models.Expense{
				expense("alice",
					models.Split{UserID: "bob", Amount: 100, Paid: true},
					models.Split{UserID: "carol", Amount: 100},
				),
			},
			validate: func(t *testing.T, l *Ledger) {
				if got := l.Amount("bob", "alice"); got != 0 {
					t.Errorf("bob owes alice %v, want 0", got)
				}
				if got := l.Amount("carol", "alice"); math.Abs(got-100) > 0.01 {
					t.Errorf("carol owes alice %v, want 100", got)
				}
			},
		},
		{
			name: "settlement reduces the debt edge",
			expenses: []*models.Expense{
				expense("alice", models.Split{UserID: "bob", Amount: 250}),
			},
			settlements: []*models.Settlement{
				settlement("bob", "alice", 100),
			},
			validate: func(t *testing.T, l *Ledger) {
				if got := l.Amount("bob", "alice"); math.Abs(got-150) > 0.01 {
					t.Errorf("bob owes alice %v, want 150", got)
				}
				if got := l.TotalBalance("bob"); math.Abs(got-(-150)) > 0.01 {
					t.Errorf("bob total = %v, want -150", got)
				}
			},
		},
		{
			name: "overpayment flips the edge direction",
			expenses: []*models.Expense{
				expense("alice", models.Split{UserID: "bob", Amount: 50}),
			},
			settlements: []*models.Settlement{
				settlement("bob", "alice", 80),
			},
			validate: func(t *testing.T, l *Ledger) {
				if got := l.Amount("bob", "alice"); got != 0 {
					t.Errorf("bob owes alice %v, want 0", got)
				}
				if got := l.Amount("alice", "bob"); math.Abs(got-30) > 0.01 {
					t.Errorf("alice owes bob %v, want 30", got)
				}
			},
		},
		{
			name: "records from non-members are skipped",
			expenses: []*models.Expense{
				expense("stranger", models.Split{UserID: "bob", Amount: 40}),
				expense("alice", models.Split{UserID: "stranger", Amount: 40}),
			},
			settlements: []*models.Settlement{
				settlement("stranger", "alice", 10),
			},
			validate: func(t *testing.T, l *Ledger) {
				for _, id := range members {
					if got := l.TotalBalance(id); got != 0 {
						t.Errorf("%s total = %v, want 0", id, got)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := BuildLedger(tt.expenses, tt.settlements, members)
			tt.validate(t, l)
		})
	}
}

// After netting, no unordered pair may carry debt in both directions.
func TestBuildLedgerSingleDirection(t *testing.T) {
	members := []string{"alice", "bob", "carol", "dave"}
	expenses := []*models.Expense{
		expense("alice",
			models.Split{UserID: "bob", Amount: 120.50},
			models.Split{UserID: "carol", Amount: 75.25},
		),
		expense("bob",
			models.Split{UserID: "alice", Amount: 200},
			models.Split{UserID: "dave", Amount: 33.33},
		),
		expense("carol",
			models.Split{UserID: "alice", Amount: 10},
			models.Split{UserID: "bob", Amount: 10},
		),
	}
	settlements := []*models.Settlement{
		settlement("dave", "bob", 20),
		settlement("alice", "bob", 50),
	}

	l := BuildLedger(expenses, settlements, members)

	for i, a := range members {
		for _, b := range members[i+1:] {
			ab, ba := l.Amount(a, b), l.Amount(b, a)
			if ab > 0 && ba > 0 {
				t.Errorf("both directions non-zero for (%s, %s): %v and %v", a, b, ab, ba)
			}
			if ab < 0 || ba < 0 {
				t.Errorf("negative edge for (%s, %s): %v and %v", a, b, ab, ba)
			}
		}
	}
}

func TestMemberBalances(t *testing.T) {
	members := []string{"alice", "bob", "carol"}
	expenses := []*models.Expense{
		expense("alice",
			models.Split{UserID: "bob", Amount: 300},
			models.Split{UserID: "carol", Amount: 300},
		),
	}

	balances := BuildLedger(expenses, nil, members).MemberBalances()
	if len(balances) != 3 {
		t.Fatalf("got %d balances, want 3", len(balances))
	}

	alice := balances[0]
	if alice.ID != "alice" {
		t.Fatalf("balances not in member order: first is %s", alice.ID)
	}
	if math.Abs(alice.TotalBalance-600) > 0.01 {
		t.Errorf("alice total = %v, want 600", alice.TotalBalance)
	}
	if len(alice.OwedBy) != 2 || len(alice.Owes) != 0 {
		t.Errorf("alice owed by %d, owes %d; want 2 and 0", len(alice.OwedBy), len(alice.Owes))
	}

	bob := balances[1]
	if len(bob.Owes) != 1 || bob.Owes[0].To != "alice" {
		t.Fatalf("bob owes = %+v, want one debt to alice", bob.Owes)
	}
	if math.Abs(bob.Owes[0].Amount-300) > 0.01 {
		t.Errorf("bob debt = %v, want 300", bob.Owes[0].Amount)
	}
}

func TestMemberBalancesDropsSettledEdges(t *testing.T) {
	members := []string{"alice", "bob"}
	expenses := []*models.Expense{
		expense("alice", models.Split{UserID: "bob", Amount: 100}),
	}
	settlements := []*models.Settlement{
		settlement("bob", "alice", 99.995),
	}

	balances := BuildLedger(expenses, settlements, members).MemberBalances()
	for _, b := range balances {
		if len(b.Owes) != 0 || len(b.OwedBy) != 0 {
			t.Errorf("%s still carries edges within tolerance: %+v", b.ID, b)
		}
	}
}
