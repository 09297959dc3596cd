package services

import (
	"testing"

	"pharmaledger/internal/access"
	"pharmaledger/internal/models"
	"pharmaledger/internal/testutil"
)

func TestExpenseHeadService(t *testing.T) {
	t.Run("create_and_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db, models.RoleAccountant)
		svc := NewExpenseHeadService(db)

		_, err := svc.CreateExpenseHead(access.ActorOf(user), "Utilities", "power and water")
		testutil.AssertNoError(t, err)
		rent, err := svc.CreateExpenseHead(access.ActorOf(user), "Rent", "")
		testutil.AssertNoError(t, err)

		heads, err := svc.ListExpenseHeads(false)
		testutil.AssertNoError(t, err)
		if len(heads) != 2 || heads[0].ID != rent.ID {
			t.Errorf("expected heads ordered by name, got %+v", heads)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db, models.RoleOwner)
		svc := NewExpenseHeadService(db)

		_, err := svc.CreateExpenseHead(access.ActorOf(user), "Rent", "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateExpenseHead(access.ActorOf(user), "Rent", "again")
		testutil.AssertAppError(t, err, "DUPLICATE_EXPENSE_HEAD")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db, models.RoleOwner)

		_, err := NewExpenseHeadService(db).CreateExpenseHead(access.ActorOf(user), "   ", "")
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("shift_user_denied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db, models.RoleEveningUser)

		_, err := NewExpenseHeadService(db).CreateExpenseHead(access.ActorOf(user), "Rent", "")
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")
	})

	t.Run("update_and_disable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db, models.RoleSuperUser)
		head := testutil.CreateTestExpenseHead(t, db, user.ID)
		svc := NewExpenseHeadService(db)

		updated, err := svc.UpdateExpenseHead(access.ActorOf(user), head.ID, "Cleaning", "weekly")
		testutil.AssertNoError(t, err)
		if updated.Name != "Cleaning" {
			t.Errorf("expected name Cleaning, got %s", updated.Name)
		}

		_, err = svc.SetExpenseHeadActive(access.ActorOf(user), head.ID, false)
		testutil.AssertNoError(t, err)

		active, err := svc.ListExpenseHeads(false)
		testutil.AssertNoError(t, err)
		if len(active) != 0 {
			t.Errorf("expected no active heads, got %d", len(active))
		}
		all, err := svc.ListExpenseHeads(true)
		testutil.AssertNoError(t, err)
		if len(all) != 1 || all[0].IsActive {
			t.Error("expected the disabled head in the full list")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)

		_, err := NewExpenseHeadService(db).GetExpenseHead("0190f000-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "EXPENSE_HEAD_NOT_FOUND")
	})
}
