package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/splitr/splitr/internal/models"
	"github.com/splitr/splitr/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "splitr-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return user
}

func createTestGroup(t *testing.T, store *SQLiteStore, admin *models.User, others ...*models.User) *models.Group {
	t.Helper()
	group := &models.Group{
		Name:      "Test Group",
		CreatedBy: admin.ID,
		Members:   []models.GroupMember{{UserID: admin.ID, Role: models.RoleAdmin, JoinedAt: 1000}},
	}
	for _, u := range others {
		group.Members = append(group.Members, models.GroupMember{UserID: u.ID, Role: models.RoleMember, JoinedAt: 2000})
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestSQLiteStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create and retrieve", func(t *testing.T) {
		user := createTestUser(t, store, "alice@example.com", "Alice")

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID.Email != "alice@example.com" || byID.Name != "Alice" {
			t.Errorf("got %+v, want alice@example.com / Alice", byID)
		}

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != user.ID {
			t.Errorf("GetUserByEmail ID = %s, want %s", byEmail.ID, user.ID)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		createTestUser(t, store, "dup@example.com", "First")
		err := store.CreateUser(ctx, models.NewUser("dup@example.com", "Second", "hash"))
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("CreateUser duplicate = %v, want ErrConflict", err)
		}
	})

	t.Run("missing user returns not found", func(t *testing.T) {
		if _, err := store.GetUserByID(ctx, "no-such-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("GetUserByID = %v, want ErrNotFound", err)
		}
	})

	t.Run("batch lookup omits missing IDs", func(t *testing.T) {
		bob := createTestUser(t, store, "bob@example.com", "Bob")
		users, err := store.GetUsersByIDs(ctx, []string{bob.ID, "ghost"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("got %d users, want 1", len(users))
		}
		if users[bob.ID].Name != "Bob" {
			t.Errorf("users[bob] = %+v", users[bob.ID])
		}
	})
}

func TestSQLiteStoreGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")
	carol := createTestUser(t, store, "carol@example.com", "Carol")

	t.Run("create preserves member order", func(t *testing.T) {
		group := createTestGroup(t, store, alice, bob, carol)

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		wantOrder := []string{alice.ID, bob.ID, carol.ID}
		if len(got.Members) != len(wantOrder) {
			t.Fatalf("got %d members, want %d", len(got.Members), len(wantOrder))
		}
		for i, id := range wantOrder {
			if got.Members[i].UserID != id {
				t.Errorf("member %d = %s, want %s", i, got.Members[i].UserID, id)
			}
		}
		if got.Members[0].Role != models.RoleAdmin {
			t.Errorf("first member role = %s, want admin", got.Members[0].Role)
		}
	})

	t.Run("list groups for user", func(t *testing.T) {
		g1 := createTestGroup(t, store, alice, bob)
		createTestGroup(t, store, carol)

		groups, err := store.ListGroupsForUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		found := false
		for _, g := range groups {
			if g.ID == g1.ID {
				found = true
			}
			if !g.HasMember(bob.ID) {
				t.Errorf("group %s listed for bob but he is not a member", g.ID)
			}
		}
		if !found {
			t.Error("expected group missing from bob's list")
		}
	})

	t.Run("add member is idempotent", func(t *testing.T) {
		group := createTestGroup(t, store, alice)
		member := models.GroupMember{UserID: bob.ID, Role: models.RoleMember, JoinedAt: 3000}

		if err := store.AddGroupMember(ctx, group.ID, member); err != nil {
			t.Fatalf("AddGroupMember failed: %v", err)
		}
		if err := store.AddGroupMember(ctx, group.ID, member); err != nil {
			t.Fatalf("AddGroupMember repeat failed: %v", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 2 {
			t.Errorf("got %d members, want 2", len(got.Members))
		}
	})

	t.Run("remove member", func(t *testing.T) {
		group := createTestGroup(t, store, alice, bob)
		if err := store.RemoveGroupMember(ctx, group.ID, bob.ID); err != nil {
			t.Fatalf("RemoveGroupMember failed: %v", err)
		}
		got, _ := store.GetGroup(ctx, group.ID)
		if got.HasMember(bob.ID) {
			t.Error("bob still a member after removal")
		}
	})

	t.Run("delete group cascades", func(t *testing.T) {
		group := createTestGroup(t, store, alice, bob)

		expense := &models.Expense{
			Description:  "Dinner",
			Amount:       60,
			Date:         5000,
			PaidByUserID: alice.ID,
			SplitType:    models.SplitEqual,
			GroupID:      group.ID,
			CreatedBy:    alice.ID,
			Splits: []models.Split{
				{UserID: alice.ID, Amount: 30, Paid: true},
				{UserID: bob.ID, Amount: 30},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		settlement := &models.Settlement{
			Amount: 30, Date: 6000,
			PaidByUserID: bob.ID, ReceivedByUserID: alice.ID,
			GroupID: group.ID, CreatedBy: bob.ID,
		}
		if err := store.CreateSettlement(ctx, settlement); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}

		if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroup after delete = %v, want ErrNotFound", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetExpense after delete = %v, want ErrNotFound", err)
		}
		if _, err := store.GetSettlement(ctx, settlement.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetSettlement after delete = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStoreExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")
	carol := createTestUser(t, store, "carol@example.com", "Carol")
	group := createTestGroup(t, store, alice, bob)

	t.Run("create and retrieve with splits", func(t *testing.T) {
		expense := &models.Expense{
			Description:  "Groceries",
			Amount:       45.50,
			Category:     "food",
			Date:         1000,
			PaidByUserID: alice.ID,
			SplitType:    models.SplitEqual,
			GroupID:      group.ID,
			CreatedBy:    alice.ID,
			Splits: []models.Split{
				{UserID: alice.ID, Amount: 22.75, Paid: true},
				{UserID: bob.ID, Amount: 22.75},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" || expense.CreatedAt == 0 {
			t.Error("expected ID and CreatedAt to be populated")
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Description != "Groceries" || got.SplitType != models.SplitEqual {
			t.Errorf("got %+v", got)
		}
		if len(got.Splits) != 2 {
			t.Fatalf("got %d splits, want 2", len(got.Splits))
		}
		if got.Splits[0].UserID != alice.ID || !got.Splits[0].Paid {
			t.Errorf("splits[0] = %+v, want alice marked paid", got.Splits[0])
		}
	})

	t.Run("list by group newest first", func(t *testing.T) {
		old := &models.Expense{
			Description: "Old", Amount: 10, Date: 100,
			PaidByUserID: alice.ID, SplitType: models.SplitEqual,
			GroupID: group.ID, CreatedBy: alice.ID,
			Splits: []models.Split{{UserID: bob.ID, Amount: 10}},
		}
		recent := &models.Expense{
			Description: "Recent", Amount: 20, Date: 9999999,
			PaidByUserID: alice.ID, SplitType: models.SplitEqual,
			GroupID: group.ID, CreatedBy: alice.ID,
			Splits: []models.Split{{UserID: bob.ID, Amount: 20}},
		}
		for _, e := range []*models.Expense{old, recent} {
			if err := store.CreateExpense(ctx, e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
		}

		list, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(list) < 2 {
			t.Fatalf("got %d expenses, want at least 2", len(list))
		}
		if list[0].Date < list[1].Date {
			t.Errorf("expenses not newest first: %d before %d", list[0].Date, list[1].Date)
		}
	})

	t.Run("direct expenses exclude group expenses", func(t *testing.T) {
		direct := &models.Expense{
			Description: "Taxi", Amount: 15, Date: 2000,
			PaidByUserID: carol.ID, SplitType: models.SplitEqual,
			CreatedBy: carol.ID,
			Splits: []models.Split{
				{UserID: carol.ID, Amount: 7.5, Paid: true},
				{UserID: bob.ID, Amount: 7.5},
			},
		}
		if err := store.CreateExpense(ctx, direct); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		list, err := store.ListDirectExpensesForUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListDirectExpensesForUser failed: %v", err)
		}
		for _, e := range list {
			if e.GroupID != "" {
				t.Errorf("direct list contains group expense %s", e.ID)
			}
			if !e.Involves(bob.ID) {
				t.Errorf("direct list contains expense %s not involving bob", e.ID)
			}
		}
		found := false
		for _, e := range list {
			if e.ID == direct.ID {
				found = true
			}
		}
		if !found {
			t.Error("direct expense missing from bob's list")
		}
	})

	t.Run("expenses between users", func(t *testing.T) {
		list, err := store.ListExpensesBetweenUsers(ctx, bob.ID, carol.ID)
		if err != nil {
			t.Fatalf("ListExpensesBetweenUsers failed: %v", err)
		}
		for _, e := range list {
			if !e.Involves(bob.ID) || !e.Involves(carol.ID) {
				t.Errorf("expense %s does not involve both users", e.ID)
			}
		}
		if len(list) == 0 {
			t.Error("expected the taxi expense between bob and carol")
		}
	})

	t.Run("expenses for user since", func(t *testing.T) {
		list, err := store.ListExpensesForUserSince(ctx, bob.ID, 1500)
		if err != nil {
			t.Fatalf("ListExpensesForUserSince failed: %v", err)
		}
		for _, e := range list {
			if e.Date < 1500 {
				t.Errorf("expense %s dated %d, want >= 1500", e.ID, e.Date)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		expense := &models.Expense{
			Description: "Doomed", Amount: 5, Date: 1,
			PaidByUserID: alice.ID, SplitType: models.SplitEqual,
			CreatedBy: alice.ID,
			Splits:    []models.Split{{UserID: bob.ID, Amount: 5}},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetExpense after delete = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStoreSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")
	group := createTestGroup(t, store, alice, bob)

	expense := &models.Expense{
		Description: "Dinner", Amount: 60, Date: 1000,
		PaidByUserID: alice.ID, SplitType: models.SplitEqual,
		GroupID: group.ID, CreatedBy: alice.ID,
		Splits: []models.Split{{UserID: bob.ID, Amount: 30}},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("roundtrip with related expenses", func(t *testing.T) {
		settlement := &models.Settlement{
			Amount: 30, Note: "dinner repayment", Date: 2000,
			PaidByUserID: bob.ID, ReceivedByUserID: alice.ID,
			GroupID: group.ID, RelatedExpenseIDs: []string{expense.ID},
			CreatedBy: bob.ID,
		}
		if err := store.CreateSettlement(ctx, settlement); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		got, err := store.GetSettlement(ctx, settlement.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if got.Note != "dinner repayment" || got.PaidByUserID != bob.ID {
			t.Errorf("got %+v", got)
		}
		if len(got.RelatedExpenseIDs) != 1 || got.RelatedExpenseIDs[0] != expense.ID {
			t.Errorf("related expenses = %v, want [%s]", got.RelatedExpenseIDs, expense.ID)
		}
	})

	t.Run("list by group", func(t *testing.T) {
		list, err := store.ListSettlementsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGroup failed: %v", err)
		}
		if len(list) == 0 {
			t.Fatal("expected at least one settlement")
		}
	})

	t.Run("direct settlements exclude group", func(t *testing.T) {
		direct := &models.Settlement{
			Amount: 10, Date: 3000,
			PaidByUserID: alice.ID, ReceivedByUserID: bob.ID,
			CreatedBy: alice.ID,
		}
		if err := store.CreateSettlement(ctx, direct); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		list, err := store.ListDirectSettlementsForUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListDirectSettlementsForUser failed: %v", err)
		}
		for _, s := range list {
			if s.GroupID != "" {
				t.Errorf("direct list contains group settlement %s", s.ID)
			}
		}
		found := false
		for _, s := range list {
			if s.ID == direct.ID {
				found = true
			}
		}
		if !found {
			t.Error("direct settlement missing")
		}
	})

	t.Run("between users", func(t *testing.T) {
		list, err := store.ListSettlementsBetweenUsers(ctx, alice.ID, bob.ID)
		if err != nil {
			t.Fatalf("ListSettlementsBetweenUsers failed: %v", err)
		}
		for _, s := range list {
			pair := map[string]bool{s.PaidByUserID: true, s.ReceivedByUserID: true}
			if !pair[alice.ID] || !pair[bob.ID] {
				t.Errorf("settlement %s not between alice and bob", s.ID)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		settlement := &models.Settlement{
			Amount: 1, Date: 1,
			PaidByUserID: alice.ID, ReceivedByUserID: bob.ID,
			CreatedBy: alice.ID,
		}
		if err := store.CreateSettlement(ctx, settlement); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		if err := store.DeleteSettlement(ctx, settlement.ID); err != nil {
			t.Fatalf("DeleteSettlement failed: %v", err)
		}
		if _, err := store.GetSettlement(ctx, settlement.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetSettlement after delete = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStoreInvites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	newInvite := func(token, code string) *models.Invite {
		return &models.Invite{
			Token: token, Code: code,
			Type: models.InviteTypeGroup, TargetID: "group-1",
			CreatedBy: "user-1", Status: models.InviteActive,
			CreatedAt: 1000,
		}
	}

	t.Run("create and lookup", func(t *testing.T) {
		inv := newInvite("token-abc", "CODE01")
		if err := store.CreateInvite(ctx, inv); err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}
		if inv.ID == "" {
			t.Error("expected invite ID to be generated")
		}

		byToken, err := store.GetInviteByToken(ctx, "token-abc")
		if err != nil {
			t.Fatalf("GetInviteByToken failed: %v", err)
		}
		if byToken.Code != "CODE01" {
			t.Errorf("code = %s, want CODE01", byToken.Code)
		}

		byCode, err := store.GetInviteByCode(ctx, "CODE01")
		if err != nil {
			t.Fatalf("GetInviteByCode failed: %v", err)
		}
		if byCode.ID != inv.ID {
			t.Errorf("byCode ID = %s, want %s", byCode.ID, inv.ID)
		}
	})

	t.Run("token collision conflicts", func(t *testing.T) {
		if err := store.CreateInvite(ctx, newInvite("dup-token", "AAAAAA")); err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}
		err := store.CreateInvite(ctx, newInvite("dup-token", "BBBBBB"))
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("CreateInvite duplicate token = %v, want ErrConflict", err)
		}
	})

	t.Run("redeem usage compare-and-increment", func(t *testing.T) {
		inv := newInvite("cas-token", "CCCCCC")
		inv.MaxUses = 2
		if err := store.CreateInvite(ctx, inv); err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}

		ok, err := store.RedeemInviteUsage(ctx, inv.ID, 0, models.InviteActive)
		if err != nil || !ok {
			t.Fatalf("RedeemInviteUsage = %v, %v; want true, nil", ok, err)
		}

		// Stale expected count loses the race.
		ok, err = store.RedeemInviteUsage(ctx, inv.ID, 0, models.InviteActive)
		if err != nil {
			t.Fatalf("RedeemInviteUsage failed: %v", err)
		}
		if ok {
			t.Error("stale compare-and-increment succeeded, want false")
		}

		// Second real use exhausts the invite.
		ok, err = store.RedeemInviteUsage(ctx, inv.ID, 1, models.InviteExpired)
		if err != nil || !ok {
			t.Fatalf("RedeemInviteUsage = %v, %v; want true, nil", ok, err)
		}

		got, err := store.GetInviteByToken(ctx, "cas-token")
		if err != nil {
			t.Fatalf("GetInviteByToken failed: %v", err)
		}
		if got.UsageCount != 2 || got.Status != models.InviteExpired {
			t.Errorf("usage = %d, status = %s; want 2 and expired", got.UsageCount, got.Status)
		}

		// Non-active invites never redeem.
		ok, err = store.RedeemInviteUsage(ctx, inv.ID, 2, models.InviteActive)
		if err != nil {
			t.Fatalf("RedeemInviteUsage failed: %v", err)
		}
		if ok {
			t.Error("redeem succeeded on expired invite, want false")
		}
	})

	t.Run("update status", func(t *testing.T) {
		inv := newInvite("revoke-token", "DDDDDD")
		if err := store.CreateInvite(ctx, inv); err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}
		if err := store.UpdateInviteStatus(ctx, inv.ID, models.InviteRevoked); err != nil {
			t.Fatalf("UpdateInviteStatus failed: %v", err)
		}
		got, _ := store.GetInviteByToken(ctx, "revoke-token")
		if got.Status != models.InviteRevoked {
			t.Errorf("status = %s, want revoked", got.Status)
		}
	})

	t.Run("missing invite returns not found", func(t *testing.T) {
		if _, err := store.GetInviteByToken(ctx, "ghost"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("GetInviteByToken = %v, want ErrNotFound", err)
		}
		if _, err := store.GetInviteByCode(ctx, "GHOST1"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("GetInviteByCode = %v, want ErrNotFound", err)
		}
	})
}
