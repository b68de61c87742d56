package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/splitr/splitr/internal/ledger"
	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

// GroupService handles group lifecycle and the group balance view.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group with the caller as admin. Any extra member
// IDs join with the member role.
func (s *GroupService) CreateGroup(ctx context.Context, userID, name, description string, memberIDs []string) (*models.Group, error) {
	now := time.Now().UnixMilli()
	group := &models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   userID,
		Members: []models.GroupMember{
			{UserID: userID, Role: models.RoleAdmin, JoinedAt: now},
		},
	}
	for _, id := range memberIDs {
		if id == userID || group.HasMember(id) {
			continue
		}
		group.Members = append(group.Members, models.GroupMember{
			UserID: id, Role: models.RoleMember, JoinedAt: now,
		})
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	slog.Info("Group created", "group_id", group.ID, "members_count", len(group.Members))
	return group, nil
}

// GroupSummary is the list-view shape of a group.
type GroupSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"memberCount"`
}

// GroupDetail is a group with resolved member details.
type GroupDetail struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	CreatedBy   string        `json:"createdBy"`
	Members     []UserSummary `json:"members"`
}

// GroupList pairs a caller's group list with an optionally selected group.
type GroupList struct {
	SelectedGroup *GroupDetail   `json:"selectedGroup,omitempty"`
	Groups        []GroupSummary `json:"groups"`
}

// ListGroups returns all groups the caller belongs to, plus member details
// for the selected group when groupID is non-empty. Selecting a group the
// caller is not a member of is ErrNotFound, same as a missing group.
func (s *GroupService) ListGroups(ctx context.Context, userID, groupID string) (*GroupList, error) {
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := &GroupList{Groups: make([]GroupSummary, len(groups))}
	for i, g := range groups {
		list.Groups[i] = GroupSummary{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			MemberCount: len(g.Members),
		}
	}

	if groupID == "" {
		return list, nil
	}

	for _, g := range groups {
		if g.ID != groupID {
			continue
		}
		detail, err := s.groupDetail(ctx, g)
		if err != nil {
			return nil, err
		}
		list.SelectedGroup = detail
		return list, nil
	}
	return nil, ErrNotFound
}

func (s *GroupService) groupDetail(ctx context.Context, g *models.Group) (*GroupDetail, error) {
	lookup, err := userSummaries(ctx, s.store, g.MemberIDs())
	if err != nil {
		return nil, err
	}

	detail := &GroupDetail{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Members:     make([]UserSummary, len(g.Members)),
	}
	for i, m := range g.Members {
		summary := lookup[m.UserID]
		summary.Role = m.Role
		detail.Members[i] = summary
	}
	return detail, nil
}

// GroupExpensesView is the full group page: records plus the netted
// pairwise balances for every member.
type GroupExpensesView struct {
	Group         *GroupDetail           `json:"group"`
	Expenses      []*models.Expense      `json:"expenses"`
	Settlements   []*models.Settlement   `json:"settlements"`
	Balances      []ledger.MemberBalance `json:"balances"`
	UserLookupMap map[string]UserSummary `json:"userLookupMap"`
}

// GetGroupExpenses builds the group view. The caller must be a member;
// non-members get ErrForbidden and absent groups ErrNotFound.
func (s *GroupService) GetGroupExpenses(ctx context.Context, groupID, userID string) (*GroupExpensesView, error) {
	group, err := requireGroupMember(ctx, s.store, groupID, userID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	detail, err := s.groupDetail(ctx, group)
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]UserSummary, len(detail.Members))
	for _, m := range detail.Members {
		lookup[m.ID] = m
	}

	l := ledger.BuildLedger(expenses, settlements, group.MemberIDs())

	return &GroupExpensesView{
		Group:         detail,
		Expenses:      expenses,
		Settlements:   settlements,
		Balances:      l.MemberBalances(),
		UserLookupMap: lookup,
	}, nil
}

// DeleteGroup removes a group and cascades to its expenses, settlements
// and invites. Admin only.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, userID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return mapNotFound(err)
	}
	if group.CreatedBy != userID {
		return ErrForbidden
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return mapNotFound(err)
	}
	slog.Info("Group deleted", "group_id", groupID, "user_id", userID)
	return nil
}

// RemoveMember removes a member from the group. Admin only; the admin
// cannot be removed.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, adminID, memberID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return mapNotFound(err)
	}
	if group.CreatedBy != adminID {
		return ErrForbidden
	}
	if memberID == group.CreatedBy {
		return ErrForbidden
	}
	if err := s.store.RemoveGroupMember(ctx, groupID, memberID); err != nil {
		return mapNotFound(err)
	}
	slog.Info("Member removed", "group_id", groupID, "member_id", memberID)
	return nil
}

// LeaveGroup removes the caller from the group. The admin may only leave
// as the last remaining member, which deletes the group; otherwise admins
// must delete the group instead.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return mapNotFound(err)
	}
	if !group.HasMember(userID) {
		return ErrForbidden
	}
	if group.CreatedBy == userID {
		if len(group.Members) == 1 {
			if err := s.store.DeleteGroup(ctx, groupID); err != nil {
				return mapNotFound(err)
			}
			slog.Info("Group deleted by last member leaving", "group_id", groupID)
			return nil
		}
		return ErrForbidden
	}
	if err := s.store.RemoveGroupMember(ctx, groupID, userID); err != nil {
		return mapNotFound(err)
	}
	slog.Info("Member left group", "group_id", groupID, "user_id", userID)
	return nil
}
