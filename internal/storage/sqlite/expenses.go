package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

const expenseColumns = "id, description, amount, category, date, paid_by_user_id, split_type, group_id, created_by, created_at"

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = time.Now().UnixMilli()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.Description, expense.Amount, nullableString(expense.Category),
		expense.Date, expense.PaidByUserID, string(expense.SplitType),
		nullableString(expense.GroupID), expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, paid, position) VALUES (?, ?, ?, ?, ?)",
			expense.ID, split.UserID, split.Amount, split.Paid, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)

	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.attachSplits(ctx, []*models.Expense{expense}); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses of a group, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx, "WHERE group_id = ?", groupID)
}

// ListDirectExpensesForUser retrieves non-group expenses the user paid for
// or participates in.
func (s *SQLiteStore) ListDirectExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`WHERE group_id IS NULL
		 AND (paid_by_user_id = ? OR id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?))`,
		userID, userID)
}

// ListExpensesBetweenUsers retrieves non-group expenses involving both users.
func (s *SQLiteStore) ListExpensesBetweenUsers(ctx context.Context, userID, otherID string) ([]*models.Expense, error) {
	involved := "(paid_by_user_id = ? OR id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?))"
	return s.listExpenses(ctx,
		"WHERE group_id IS NULL AND "+involved+" AND "+involved,
		userID, userID, otherID, otherID)
}

// ListExpensesForUserSince retrieves all expenses involving the user dated
// at or after since (Unix milliseconds).
func (s *SQLiteStore) ListExpensesForUserSince(ctx context.Context, userID string, since int64) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`WHERE date >= ?
		 AND (paid_by_user_id = ? OR id IN (SELECT expense_id FROM expense_splits WHERE user_id = ?))`,
		since, userID, userID)
}

// DeleteExpense removes an expense; splits cascade via foreign key.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) listExpenses(ctx context.Context, where string, args ...interface{}) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses "+where+" ORDER BY date DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := s.attachSplits(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var category, groupID sql.NullString
	var splitType string

	err := row.Scan(&expense.ID, &expense.Description, &expense.Amount, &category,
		&expense.Date, &expense.PaidByUserID, &splitType, &groupID,
		&expense.CreatedBy, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}

	expense.Category = category.String
	expense.GroupID = groupID.String
	expense.SplitType = models.SplitType(splitType)
	return expense, nil
}

// attachSplits loads split rows for the given expenses.
func (s *SQLiteStore) attachSplits(ctx context.Context, expenses []*models.Expense) error {
	for _, expense := range expenses {
		rows, err := s.db.QueryContext(ctx,
			"SELECT user_id, amount, paid FROM expense_splits WHERE expense_id = ? ORDER BY position",
			expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get expense splits: %w", err)
		}

		var splits []models.Split
		for rows.Next() {
			var split models.Split
			if err := rows.Scan(&split.UserID, &split.Amount, &split.Paid); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan expense split: %w", err)
			}
			splits = append(splits, split)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate expense splits: %w", err)
		}
		expense.Splits = splits
	}
	return nil
}
