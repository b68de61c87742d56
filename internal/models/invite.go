package models

// InviteStatus is the lifecycle state of an invite. Transitions only move
// forward: active -> expired (time or exhaustion) or active -> revoked.
type InviteStatus string

const (
	InviteActive  InviteStatus = "active"
	InviteExpired InviteStatus = "expired"
	InviteRevoked InviteStatus = "revoked"
)

// InviteTypeGroup is the only invite target type currently supported. The
// field exists so friend invites can be added without a schema change.
const InviteTypeGroup = "group"

// Invite is a redeemable token/code granting membership in a target
// (currently always a group). Token and Code are two unique indexes over
// the same entity, not two entity types.
type Invite struct {
	// ID is the unique identifier for the invite (UUID format).
	ID string

	// Token is a long opaque random string for link-based redemption.
	Token string

	// Code is a short human-readable string for manual entry. The alphabet
	// excludes visually ambiguous characters (I, O, 1, 0).
	Code string

	// Type is the target kind; see InviteTypeGroup.
	Type string

	// TargetID is the ID of the group being joined.
	TargetID string

	// CreatedBy is the user who created the invite.
	CreatedBy string

	// ExpiresAt is the Unix timestamp (milliseconds) after which the
	// invite is invalid; zero means no time limit.
	ExpiresAt int64

	// MaxUses caps successful redemptions; zero means unlimited.
	MaxUses int

	// UsageCount is the number of successful redemptions so far.
	UsageCount int

	// Status is the current lifecycle state.
	Status InviteStatus

	// CreatedAt is the Unix timestamp when the invite was created.
	CreatedAt int64
}
