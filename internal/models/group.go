package models

// Member roles within a group.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMember is one entry in a group's ordered member list.
type GroupMember struct {
	// UserID references the member's user record.
	UserID string

	// Role is either RoleAdmin or RoleMember.
	Role string

	// JoinedAt is the Unix timestamp (milliseconds) when the member joined.
	JoinedAt int64
}

// Group represents a named set of users who share expenses.
//
// Invariant: CreatedBy is always present in Members with RoleAdmin, and a
// group never has an empty member list (the admin-leave path deletes the
// group instead).
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates").
	Name string

	// Description is an optional free-form description.
	Description string

	// CreatedBy is the user ID of the group admin.
	CreatedBy string

	// Members is the ordered member list.
	Members []GroupMember

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether the user is in the member list.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the user IDs of all members, in member-list order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}
