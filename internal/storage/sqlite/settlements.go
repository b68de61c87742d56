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

const settlementColumns = "id, amount, note, date, paid_by_user_id, received_by_user_id, group_id, created_by, created_at"

// CreateSettlement persists a new settlement and its related-expense links.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Date == 0 {
		settlement.Date = time.Now().UnixMilli()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO settlements ("+settlementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		settlement.ID, settlement.Amount, nullableString(settlement.Note), settlement.Date,
		settlement.PaidByUserID, settlement.ReceivedByUserID,
		nullableString(settlement.GroupID), settlement.CreatedBy, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for _, expenseID := range settlement.RelatedExpenseIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO settlement_expenses (settlement_id, expense_id) VALUES (?, ?)",
			settlement.ID, expenseID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement expense link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?", settlementID)

	settlement, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if err := s.attachRelatedExpenses(ctx, settlement); err != nil {
		return nil, err
	}
	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx, "WHERE group_id = ?", groupID)
}

// ListDirectSettlementsForUser retrieves non-group settlements where the
// user paid or received.
func (s *SQLiteStore) ListDirectSettlementsForUser(ctx context.Context, userID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		"WHERE group_id IS NULL AND (paid_by_user_id = ? OR received_by_user_id = ?)",
		userID, userID)
}

// ListSettlementsBetweenUsers retrieves non-group settlements between the
// two users, in either direction.
func (s *SQLiteStore) ListSettlementsBetweenUsers(ctx context.Context, userID, otherID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`WHERE group_id IS NULL
		 AND ((paid_by_user_id = ? AND received_by_user_id = ?)
		   OR (paid_by_user_id = ? AND received_by_user_id = ?))`,
		userID, otherID, otherID, userID)
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) listSettlements(ctx context.Context, where string, args ...interface{}) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements "+where+" ORDER BY date DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var note, groupID sql.NullString

	err := row.Scan(&settlement.ID, &settlement.Amount, &note, &settlement.Date,
		&settlement.PaidByUserID, &settlement.ReceivedByUserID, &groupID,
		&settlement.CreatedBy, &settlement.CreatedAt)
	if err != nil {
		return nil, err
	}

	settlement.Note = note.String
	settlement.GroupID = groupID.String
	return settlement, nil
}

func (s *SQLiteStore) attachRelatedExpenses(ctx context.Context, settlement *models.Settlement) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id FROM settlement_expenses WHERE settlement_id = ?", settlement.ID)
	if err != nil {
		return fmt.Errorf("failed to get related expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan related expense: %w", err)
		}
		settlement.RelatedExpenseIDs = append(settlement.RelatedExpenseIDs, id)
	}
	return rows.Err()
}
