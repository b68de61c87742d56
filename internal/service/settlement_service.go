package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

// SettlementService handles settlement recording and deletion.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService with the given
// storage backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// CreateSettlementInput describes a new settlement payment.
type CreateSettlementInput struct {
	Amount            float64
	Note              string
	Date              int64
	PaidByUserID      string
	ReceivedByUserID  string
	GroupID           string
	RelatedExpenseIDs []string
}

// CreateSettlement validates and persists a settlement. Payer and receiver
// must be distinct, the caller must be one of them, and for group
// settlements both must be group members.
func (s *SettlementService) CreateSettlement(ctx context.Context, userID string, in CreateSettlementInput) (*models.Settlement, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: settlement amount must be positive, got %v", ErrInvalidInput, in.Amount)
	}
	if in.PaidByUserID == in.ReceivedByUserID {
		return nil, fmt.Errorf("%w: payer and receiver must be distinct users", ErrInvalidInput)
	}
	if userID != in.PaidByUserID && userID != in.ReceivedByUserID {
		return nil, ErrForbidden
	}

	if in.GroupID != "" {
		group, err := requireGroupMember(ctx, s.store, in.GroupID, userID)
		if err != nil {
			return nil, err
		}
		if !group.HasMember(in.PaidByUserID) || !group.HasMember(in.ReceivedByUserID) {
			return nil, fmt.Errorf("settlement parties must be group members: %w", ErrForbidden)
		}
	}

	settlement := &models.Settlement{
		Amount:            in.Amount,
		Note:              in.Note,
		Date:              in.Date,
		PaidByUserID:      in.PaidByUserID,
		ReceivedByUserID:  in.ReceivedByUserID,
		GroupID:           in.GroupID,
		RelatedExpenseIDs: in.RelatedExpenseIDs,
		CreatedBy:         userID,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, err
	}

	slog.Info("Settlement created",
		"settlement_id", settlement.ID,
		"amount", settlement.Amount,
		"paid_by", settlement.PaidByUserID,
		"received_by", settlement.ReceivedByUserID,
		"group_id", settlement.GroupID,
	)
	return settlement, nil
}

// DeleteSettlement removes a settlement. Only the payer or the creator may
// delete it.
func (s *SettlementService) DeleteSettlement(ctx context.Context, settlementID, userID string) error {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return mapNotFound(err)
	}
	if settlement.PaidByUserID != userID && settlement.CreatedBy != userID {
		return ErrForbidden
	}
	if err := s.store.DeleteSettlement(ctx, settlementID); err != nil {
		return mapNotFound(err)
	}
	slog.Info("Settlement deleted", "settlement_id", settlementID, "user_id", userID)
	return nil
}
