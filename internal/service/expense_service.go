package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/splitr/splitr/internal/ledger"
	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

// ExpenseService handles expense and 1-to-1 view operations.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// CreateExpenseInput describes a new expense. Participants includes the
// payer; Percentages/Amounts are the per-participant overrides for the
// percentage and exact split modes.
type CreateExpenseInput struct {
	Description  string
	Amount       float64
	Category     string
	Date         int64
	PaidByUserID string
	SplitType    models.SplitType
	Participants []string
	Percentages  map[string]float64
	Amounts      map[string]float64
	GroupID      string
}

// ExpenseResult is a created expense plus its surfaced split state.
type ExpenseResult struct {
	Expense *models.Expense

	// Mismatch is the signed difference between the split total and the
	// expense amount. A value beyond the engine tolerance is a warning
	// state for the caller to display, not a failure.
	Mismatch float64
}

// CreateExpense computes splits, validates participants, and persists the
// expense. For group expenses every participant must be a group member at
// creation time (not re-validated retroactively). A split-total mismatch
// is stored and surfaced, never silently corrected.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID string, in CreateExpenseInput) (*ExpenseResult, error) {
	if in.GroupID != "" {
		group, err := requireGroupMember(ctx, s.store, in.GroupID, userID)
		if err != nil {
			return nil, err
		}
		for _, p := range in.Participants {
			if !group.HasMember(p) {
				return nil, fmt.Errorf("participant %s is not a group member: %w", p, ErrForbidden)
			}
		}
	}

	result, err := ledger.ComputeSplits(ledger.SplitInput{
		Amount:       in.Amount,
		Type:         in.SplitType,
		PaidByUserID: in.PaidByUserID,
		Participants: in.Participants,
		Percentages:  in.Percentages,
		Amounts:      in.Amounts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	expense := &models.Expense{
		Description:  in.Description,
		Amount:       in.Amount,
		Category:     in.Category,
		Date:         in.Date,
		PaidByUserID: in.PaidByUserID,
		SplitType:    in.SplitType,
		Splits:       result.Splits(),
		GroupID:      in.GroupID,
		CreatedBy:    userID,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	if !result.Balanced() {
		slog.Warn("expense splits do not sum to amount",
			"expense_id", expense.ID,
			"amount", in.Amount,
			"share_total", result.ShareTotal,
			"mismatch", result.Mismatch,
		)
	}
	slog.Info("Expense created",
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"split_type", expense.SplitType,
		"group_id", expense.GroupID,
	)

	return &ExpenseResult{Expense: expense, Mismatch: result.Mismatch}, nil
}

// DeleteExpense removes an expense. Only the payer or the creator may
// delete it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID, userID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return mapNotFound(err)
	}
	if expense.PaidByUserID != userID && expense.CreatedBy != userID {
		return ErrForbidden
	}
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return mapNotFound(err)
	}
	slog.Info("Expense deleted", "expense_id", expenseID, "user_id", userID)
	return nil
}

// PersonView is the 1-to-1 page: all direct expenses and settlements
// between two users plus their signed pair balance (positive means the
// other user owes the caller).
type PersonView struct {
	OtherUser   UserSummary          `json:"otherUser"`
	Expenses    []*models.Expense    `json:"expenses"`
	Settlements []*models.Settlement `json:"settlements"`
	Balance     float64              `json:"balance"`
}

// GetExpensesBetweenUsers builds the 1-to-1 view between the caller and
// one counterparty.
func (s *ExpenseService) GetExpensesBetweenUsers(ctx context.Context, userID, otherID string) (*PersonView, error) {
	if otherID == userID {
		return nil, fmt.Errorf("cannot view balances against yourself: %w", ErrForbidden)
	}

	lookup, err := userSummaries(ctx, s.store, []string{otherID})
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesBetweenUsers(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsBetweenUsers(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	balance := ledger.PairBalance(userID, otherID, expenses, settlements)
	if math.Abs(balance) < ledger.Tolerance {
		balance = 0
	}

	return &PersonView{
		OtherUser:   lookup[otherID],
		Expenses:    expenses,
		Settlements: settlements,
		Balance:     balance,
	}, nil
}
