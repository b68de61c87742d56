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

const inviteColumns = "id, token, code, type, target_id, created_by, expires_at, max_uses, usage_count, status, created_at"

// CreateInvite persists a new invite. A token or code collision surfaces
// as ErrConflict so the caller can regenerate and retry.
func (s *SQLiteStore) CreateInvite(ctx context.Context, inv *models.Invite) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO invites ("+inviteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		inv.ID, inv.Token, inv.Code, inv.Type, inv.TargetID, inv.CreatedBy,
		nullableInt64(inv.ExpiresAt), nullableInt64(int64(inv.MaxUses)),
		inv.UsageCount, string(inv.Status), inv.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("invite token or code: %w", storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// GetInviteByToken retrieves an invite by its token.
func (s *SQLiteStore) GetInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	return s.getInvite(ctx, "token = ?", token)
}

// GetInviteByCode retrieves an invite by its human-readable code.
func (s *SQLiteStore) GetInviteByCode(ctx context.Context, code string) (*models.Invite, error) {
	return s.getInvite(ctx, "code = ?", code)
}

func (s *SQLiteStore) getInvite(ctx context.Context, where string, arg interface{}) (*models.Invite, error) {
	inv := &models.Invite{}
	var expiresAt, maxUses sql.NullInt64
	var status string

	err := s.db.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM invites WHERE "+where, arg,
	).Scan(&inv.ID, &inv.Token, &inv.Code, &inv.Type, &inv.TargetID, &inv.CreatedBy,
		&expiresAt, &maxUses, &inv.UsageCount, &status, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invite: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	inv.ExpiresAt = expiresAt.Int64
	inv.MaxUses = int(maxUses.Int64)
	inv.Status = models.InviteStatus(status)
	return inv, nil
}

// RedeemInviteUsage performs the compare-and-increment on the invite's
// usage counter. The write only lands if the invite is still active and
// the counter has not moved since the caller read it; a false return means
// a concurrent redemption won and the caller should re-read and retry.
func (s *SQLiteStore) RedeemInviteUsage(ctx context.Context, inviteID string, expectedCount int, newStatus models.InviteStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invites SET usage_count = usage_count + 1, status = ?
		 WHERE id = ? AND usage_count = ? AND status = ?`,
		string(newStatus), inviteID, expectedCount, string(models.InviteActive),
	)
	if err != nil {
		return false, fmt.Errorf("failed to redeem invite usage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check redeem result: %w", err)
	}
	return n == 1, nil
}

// UpdateInviteStatus moves an invite to the given status.
func (s *SQLiteStore) UpdateInviteStatus(ctx context.Context, inviteID string, status models.InviteStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE invites SET status = ? WHERE id = ?", string(status), inviteID)
	if err != nil {
		return fmt.Errorf("failed to update invite status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("invite %s: %w", inviteID, storage.ErrNotFound)
	}
	return nil
}
