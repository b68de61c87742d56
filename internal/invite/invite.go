// Package invite implements the invite lifecycle: token/code generation
// and the active -> expired/revoked state machine. Expiry is checked
// lazily at validation time; nothing here runs on a timer.
package invite

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/splitr/splitr/internal/models"
)

// ErrInvalid is returned when an invite is missing, expired, exhausted, or
// revoked. Redemption surfaces it as a hard failure; read-only preview
// converts it to a soft {valid: false} result.
var ErrInvalid = errors.New("invalid invite")

// codeAlphabet excludes visually ambiguous characters (I, O, 1, 0) so
// codes survive being read out over the phone. 32 characters, so indexing
// by a random byte modulo the length is unbiased.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	// CodeLength is the length of generated human-readable codes.
	CodeLength = 6

	tokenBytes = 20
)

// NewToken returns a long opaque random token for link-based redemption.
func NewToken() string {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(b)
}

// NewCode returns a short human-readable code from the unambiguous
// alphabet. Uniqueness is enforced by the store's unique index; callers
// regenerate on conflict.
func NewCode() string {
	b := make([]byte, CodeLength)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}

// NormalizeCode maps user input to the stored code form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// New creates an active invite for a group. expiresIn <= 0 means no time
// limit; maxUses <= 0 means unlimited uses.
func New(targetID, createdBy string, maxUses int, expiresIn time.Duration) *models.Invite {
	now := time.Now()
	inv := &models.Invite{
		Token:      NewToken(),
		Code:       NewCode(),
		Type:       models.InviteTypeGroup,
		TargetID:   targetID,
		CreatedBy:  createdBy,
		Status:     models.InviteActive,
		UsageCount: 0,
		CreatedAt:  now.Unix(),
	}
	if maxUses > 0 {
		inv.MaxUses = maxUses
	}
	if expiresIn > 0 {
		inv.ExpiresAt = now.Add(expiresIn).UnixMilli()
	}
	return inv
}

// Validate checks whether the invite can be redeemed at the given time.
// It returns nil for a redeemable invite and an error wrapping ErrInvalid
// otherwise. Validate never mutates the invite.
func Validate(inv *models.Invite, now time.Time) error {
	if inv == nil || inv.Status != models.InviteActive {
		return fmt.Errorf("%w: not found or no longer active", ErrInvalid)
	}
	if inv.ExpiresAt != 0 && now.UnixMilli() > inv.ExpiresAt {
		return fmt.Errorf("%w: expired", ErrInvalid)
	}
	if inv.MaxUses > 0 && inv.UsageCount >= inv.MaxUses {
		return fmt.Errorf("%w: usage limit reached", ErrInvalid)
	}
	return nil
}

// StatusAfterUse returns the status the invite should hold once its usage
// count has reached newCount: reaching MaxUses moves it to expired, a
// terminal state.
func StatusAfterUse(inv *models.Invite, newCount int) models.InviteStatus {
	if inv.MaxUses > 0 && newCount >= inv.MaxUses {
		return models.InviteExpired
	}
	return models.InviteActive
}
