package service

import (
	"context"
	"time"

	"github.com/splitr/splitr/internal/ledger"
	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

// DashboardService computes the caller-centric cross-group views: 1-to-1
// balances, yearly/monthly spending, and per-group net balances.
type DashboardService struct {
	store storage.Store
}

// NewDashboardService creates a new DashboardService with the given
// storage backend.
func NewDashboardService(store storage.Store) *DashboardService {
	return &DashboardService{store: store}
}

// CounterpartyDetail is one outstanding balance with user details resolved.
type CounterpartyDetail struct {
	UserID   string  `json:"userId"`
	Name     string  `json:"name"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Amount   float64 `json:"amount"`
}

// OweDetails is the two direction lists of the dashboard balance view.
type OweDetails struct {
	YouOwe       []CounterpartyDetail `json:"youOwe"`
	YouAreOwedBy []CounterpartyDetail `json:"youAreOwedBy"`
}

// UserBalancesView is the dashboard's 1-to-1 balance summary: only
// non-group expenses and settlements contribute.
type UserBalancesView struct {
	YouOwe       float64    `json:"youOwe"`
	YouAreOwed   float64    `json:"youAreOwed"`
	TotalBalance float64    `json:"totalBalance"`
	OweDetails   OweDetails `json:"oweDetails"`
}

// GetUserBalances computes the caller's 1-to-1 balances across all direct
// (non-group) records.
func (s *DashboardService) GetUserBalances(ctx context.Context, userID string) (*UserBalancesView, error) {
	expenses, err := s.store.ListDirectExpensesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListDirectSettlementsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	balances := ledger.ComputeUserBalances(userID, expenses, settlements)

	ids := make([]string, 0, len(balances.YouOweList)+len(balances.YouAreOwedBy))
	for _, b := range balances.YouOweList {
		ids = append(ids, b.UserID)
	}
	for _, b := range balances.YouAreOwedBy {
		ids = append(ids, b.UserID)
	}
	lookup, err := userSummaries(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	detail := func(list []ledger.CounterpartyBalance) []CounterpartyDetail {
		details := make([]CounterpartyDetail, len(list))
		for i, b := range list {
			u := lookup[b.UserID]
			details[i] = CounterpartyDetail{
				UserID:   b.UserID,
				Name:     u.Name,
				ImageURL: u.ImageURL,
				Amount:   b.Amount,
			}
		}
		return details
	}

	return &UserBalancesView{
		YouOwe:       balances.YouOwe,
		YouAreOwed:   balances.YouAreOwed,
		TotalBalance: balances.TotalBalance,
		OweDetails: OweDetails{
			YouOwe:       detail(balances.YouOweList),
			YouAreOwedBy: detail(balances.YouAreOwedBy),
		},
	}, nil
}

// GetTotalSpent sums the caller's own split share across all expenses in
// the given year. The payer's share counts too; what they fronted for
// others does not.
func (s *DashboardService) GetTotalSpent(ctx context.Context, userID string, year int) (float64, error) {
	expenses, err := s.expensesForYear(ctx, userID, year)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, e := range expenses {
		if split := e.SplitFor(userID); split != nil {
			total += split.Amount
		}
	}
	return total, nil
}

// MonthlySpend is one month's personal spending total. Month is the Unix
// millisecond timestamp of the first of the month.
type MonthlySpend struct {
	Month int64   `json:"month"`
	Total float64 `json:"total"`
}

// GetMonthlySpending buckets the caller's own split share by month for the
// given year. All twelve months are present, zero-filled.
func (s *DashboardService) GetMonthlySpending(ctx context.Context, userID string, year int) ([]MonthlySpend, error) {
	expenses, err := s.expensesForYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	totals := make([]MonthlySpend, 12)
	for i := range totals {
		totals[i].Month = time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	}

	for _, e := range expenses {
		split := e.SplitFor(userID)
		if split == nil {
			continue
		}
		month := time.UnixMilli(e.Date).UTC().Month()
		totals[int(month)-1].Total += split.Amount
	}
	return totals, nil
}

func (s *DashboardService) expensesForYear(ctx context.Context, userID string, year int) ([]*models.Expense, error) {
	startOfYear := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	endOfYear := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	expenses, err := s.store.ListExpensesForUserSince(ctx, userID, startOfYear)
	if err != nil {
		return nil, err
	}
	inYear := expenses[:0]
	for _, e := range expenses {
		if e.Date < endOfYear {
			inYear = append(inYear, e)
		}
	}
	return inYear, nil
}

// GroupWithBalance is a group summary annotated with the caller's net
// balance inside that group.
type GroupWithBalance struct {
	GroupSummary
	Balance float64 `json:"balance"`
}

// GetUserGroups lists the caller's groups, each with the caller's signed
// net balance computed from that group's records.
func (s *DashboardService) GetUserGroups(ctx context.Context, userID string) ([]GroupWithBalance, error) {
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]GroupWithBalance, 0, len(groups))
	for _, g := range groups {
		expenses, err := s.store.ListExpensesByGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		settlements, err := s.store.ListSettlementsByGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}

		result = append(result, GroupWithBalance{
			GroupSummary: GroupSummary{
				ID:          g.ID,
				Name:        g.Name,
				Description: g.Description,
				MemberCount: len(g.Members),
			},
			Balance: ledger.NetBalance(userID, expenses, settlements),
		})
	}
	return result, nil
}
