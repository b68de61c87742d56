// Package service implements the query/mutation layer over the storage
// backend and the ledger engine. Services fetch record snapshots, hand
// them to the pure engine, and enrich the results with user details.
//
// Error contract: ErrNotFound, ErrForbidden and ErrInvalidInput are hard
// caller errors and propagate untouched. invite.ErrInvalid is a hard failure on redemption
// but a soft {valid: false} result on read-only preview. Split mismatches
// are surfaced in results, never raised as errors.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

var (
	// ErrNotFound signals an absent group, invite, user or record.
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals a caller lacking membership, or lacking the
	// admin role for an admin-only action.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput signals a request that fails validation before it
	// reaches storage (bad amounts, malformed split inputs).
	ErrInvalidInput = errors.New("invalid input")
)

// UserSummary is the public slice of a user record attached to balance
// and group views.
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Role     string `json:"role,omitempty"`
}

// userSummaries resolves user IDs to summaries. A missing user record
// degrades to a placeholder name instead of failing the whole view.
func userSummaries(ctx context.Context, store storage.Store, ids []string) (map[string]UserSummary, error) {
	users, err := store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			lookup[id] = UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, ImageURL: u.ImageURL}
			continue
		}
		slog.Warn("user record missing, using placeholder", "user_id", id)
		lookup[id] = UserSummary{ID: id, Name: "Unknown"}
	}
	return lookup, nil
}

// mapNotFound converts a storage not-found error into the service-level
// sentinel, leaving other errors untouched.
func mapNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// requireGroupMember fetches the group and verifies membership.
func requireGroupMember(ctx context.Context, store storage.Store, groupID, userID string) (*models.Group, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !group.HasMember(userID) {
		return nil, ErrForbidden
	}
	return group, nil
}
