package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitr/splitr/internal/invite"
	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

// createRetries bounds regenerate-on-conflict attempts for token/code
// collisions; redeemRetries bounds optimistic retries when redemptions
// race on the usage counter.
const (
	createRetries = 3
	redeemRetries = 3
)

// InviteService handles invite creation, preview, redemption and
// revocation.
type InviteService struct {
	store storage.Store

	// now is swappable for tests.
	now func() time.Time
}

// NewInviteService creates a new InviteService with the given storage
// backend.
func NewInviteService(store storage.Store) *InviteService {
	return &InviteService{store: store, now: time.Now}
}

// CreateInviteInput describes a new invite. Zero MaxUses means unlimited;
// zero ExpiresInHours means no time limit.
type CreateInviteInput struct {
	TargetID       string
	MaxUses        int
	ExpiresInHours int
}

// CreatedInvite is the caller-facing result of invite creation.
type CreatedInvite struct {
	InviteID string `json:"inviteId"`
	Token    string `json:"token"`
	Code     string `json:"code"`
}

// CreateInvite creates an active invite for a group. The caller must be a
// current member. Token/code collisions regenerate and retry.
func (s *InviteService) CreateInvite(ctx context.Context, userID string, in CreateInviteInput) (*CreatedInvite, error) {
	if _, err := requireGroupMember(ctx, s.store, in.TargetID, userID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		inv := invite.New(in.TargetID, userID, in.MaxUses, time.Duration(in.ExpiresInHours)*time.Hour)
		err := s.store.CreateInvite(ctx, inv)
		if errors.Is(err, storage.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		slog.Info("Invite created",
			"invite_id", inv.ID,
			"target_id", inv.TargetID,
			"max_uses", inv.MaxUses,
		)
		return &CreatedInvite{InviteID: inv.ID, Token: inv.Token, Code: inv.Code}, nil
	}
	return nil, fmt.Errorf("could not generate a unique invite after %d attempts", createRetries)
}

// InvitePreview is the read-only, side-effect-free view of an invite.
// Invalid invites produce {Valid: false, Error} rather than an error: the
// preview page is publicly viewable and never throws.
type InvitePreview struct {
	Valid             bool   `json:"valid"`
	Error             string `json:"error,omitempty"`
	Type              string `json:"type,omitempty"`
	TargetName        string `json:"targetName,omitempty"`
	TargetDescription string `json:"targetDescription,omitempty"`
	InviterName       string `json:"inviterName,omitempty"`
}

// GetInvite previews an invite by token or code without membership checks
// or side effects.
func (s *InviteService) GetInvite(ctx context.Context, token, code string) (*InvitePreview, error) {
	inv, err := s.lookup(ctx, token, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &InvitePreview{Valid: false, Error: "Invite not found or expired"}, nil
		}
		return nil, err
	}
	if err := invite.Validate(inv, s.now()); err != nil {
		return &InvitePreview{Valid: false, Error: err.Error()}, nil
	}

	preview := &InvitePreview{Valid: true, Type: inv.Type, InviterName: "Someone"}

	if group, err := s.store.GetGroup(ctx, inv.TargetID); err == nil {
		preview.TargetName = group.Name
		preview.TargetDescription = group.Description
	}
	if inviter, err := s.store.GetUserByID(ctx, inv.CreatedBy); err == nil {
		preview.InviterName = inviter.Name
	}
	return preview, nil
}

// RedeemResult is the outcome of a successful redemption.
type RedeemResult struct {
	GroupID string `json:"groupId"`
	Message string `json:"message,omitempty"`
}

// RedeemInvite redeems an invite by token or code for the calling user.
//
// Redeeming while already a member of the target group succeeds without
// touching the usage counter or the member list: re-join is idempotent,
// not an error. Otherwise the usage counter is advanced with a
// compare-and-increment so two racing redemptions can never overshoot
// MaxUses; losing the race re-reads and retries. Reaching MaxUses moves
// the invite to expired.
func (s *InviteService) RedeemInvite(ctx context.Context, userID, token, code string) (*RedeemResult, error) {
	for attempt := 0; attempt < redeemRetries; attempt++ {
		inv, err := s.lookup(ctx, token, code)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: not found", invite.ErrInvalid)
			}
			return nil, err
		}
		if err := invite.Validate(inv, s.now()); err != nil {
			return nil, err
		}

		group, err := s.store.GetGroup(ctx, inv.TargetID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: group no longer exists", invite.ErrInvalid)
			}
			return nil, err
		}

		if group.HasMember(userID) {
			return &RedeemResult{
				GroupID: group.ID,
				Message: "You are already a member of this group",
			}, nil
		}

		newStatus := invite.StatusAfterUse(inv, inv.UsageCount+1)
		ok, err := s.store.RedeemInviteUsage(ctx, inv.ID, inv.UsageCount, newStatus)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Lost the race to another redemption; re-validate.
			continue
		}

		member := models.GroupMember{
			UserID:   userID,
			Role:     models.RoleMember,
			JoinedAt: s.now().UnixMilli(),
		}
		if err := s.store.AddGroupMember(ctx, group.ID, member); err != nil {
			return nil, err
		}

		slog.Info("Invite redeemed",
			"invite_id", inv.ID,
			"group_id", group.ID,
			"user_id", userID,
			"usage_count", inv.UsageCount+1,
		)
		return &RedeemResult{GroupID: group.ID}, nil
	}
	return nil, fmt.Errorf("%w: too many concurrent redemptions, try again", invite.ErrInvalid)
}

// RevokeInvite moves an active invite to revoked, a terminal state. Only
// the invite's creator or the target group's admin may revoke it.
func (s *InviteService) RevokeInvite(ctx context.Context, userID, token string) error {
	inv, err := s.store.GetInviteByToken(ctx, token)
	if err != nil {
		return mapNotFound(err)
	}
	if inv.Status != models.InviteActive {
		return fmt.Errorf("%w: not active", invite.ErrInvalid)
	}

	if inv.CreatedBy != userID {
		group, err := s.store.GetGroup(ctx, inv.TargetID)
		if err != nil || group.CreatedBy != userID {
			return ErrForbidden
		}
	}

	if err := s.store.UpdateInviteStatus(ctx, inv.ID, models.InviteRevoked); err != nil {
		return mapNotFound(err)
	}
	slog.Info("Invite revoked", "invite_id", inv.ID, "user_id", userID)
	return nil
}

func (s *InviteService) lookup(ctx context.Context, token, code string) (*models.Invite, error) {
	switch {
	case token != "":
		return s.store.GetInviteByToken(ctx, token)
	case code != "":
		return s.store.GetInviteByCode(ctx, invite.NormalizeCode(code))
	default:
		return nil, fmt.Errorf("token or code: %w", storage.ErrNotFound)
	}
}
