// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitr/splitr/internal/models"
)

var (
	// ErrNotFound is wrapped by store methods when a record is absent.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is wrapped when a unique constraint is violated
	// (duplicate email, invite token, or invite code).
	ErrConflict = errors.New("record already exists")
)

// Store defines the persistence operations the service layer needs. The
// abstraction allows swapping storage backends (SQLite, PostgreSQL, ...)
// without changing the services.
//
// The store guarantees per-record atomicity only; cross-record invariants
// (membership checks, cascades) are the service layer's job, except where
// a method is documented as atomic.
type Store interface {
	// Users.

	// CreateUser persists a new user. Fails with ErrConflict if the email
	// is already registered.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail retrieves a user by email, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID retrieves a user by ID, or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs retrieves multiple users keyed by ID. IDs with no
	// matching record are omitted from the result, not an error.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// Groups.

	// CreateGroup persists a group and its member list. Missing ID and
	// CreatedAt are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error
	// GetGroup retrieves a group with its member list, or ErrNotFound.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	// ListGroupsForUser retrieves all groups the user is a member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	// AddGroupMember appends a member to the group's member list. Adding
	// an existing member is a no-op.
	AddGroupMember(ctx context.Context, groupID string, member models.GroupMember) error
	// RemoveGroupMember removes a member from the group's member list.
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
	// DeleteGroup removes the group and cascades to its expenses,
	// settlements and invites, atomically.
	DeleteGroup(ctx context.Context, groupID string) error

	// Expenses.

	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	// ListExpensesByGroup retrieves all expenses of a group, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	// ListDirectExpensesForUser retrieves non-group expenses the user
	// paid for or participates in.
	ListDirectExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error)
	// ListExpensesBetweenUsers retrieves non-group expenses involving
	// both users.
	ListExpensesBetweenUsers(ctx context.Context, userID, otherID string) ([]*models.Expense, error)
	// ListExpensesForUserSince retrieves all expenses (group or not)
	// involving the user dated at or after since (Unix milliseconds).
	ListExpensesForUserSince(ctx context.Context, userID string, since int64) ([]*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error

	// Settlements.

	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	// ListDirectSettlementsForUser retrieves non-group settlements where
	// the user paid or received.
	ListDirectSettlementsForUser(ctx context.Context, userID string) ([]*models.Settlement, error)
	ListSettlementsBetweenUsers(ctx context.Context, userID, otherID string) ([]*models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Invites.

	// CreateInvite persists an invite. Fails with ErrConflict if the
	// token or code collides with an existing invite; callers regenerate
	// and retry.
	CreateInvite(ctx context.Context, inv *models.Invite) error
	GetInviteByToken(ctx context.Context, token string) (*models.Invite, error)
	GetInviteByCode(ctx context.Context, code string) (*models.Invite, error)
	// RedeemInviteUsage atomically increments the invite's usage count
	// and sets its status, but only if the invite is still active and its
	// usage count equals expectedCount (compare-and-increment). Returns
	// false when the precondition no longer holds, in which case the
	// caller re-reads and retries. This is what keeps two racing
	// redemptions from overshooting MaxUses.
	RedeemInviteUsage(ctx context.Context, inviteID string, expectedCount int, newStatus models.InviteStatus) (bool, error)
	// UpdateInviteStatus moves the invite to the given status.
	UpdateInviteStatus(ctx context.Context, inviteID string, status models.InviteStatus) error

	// Close releases any resources held by the store.
	Close() error
}
