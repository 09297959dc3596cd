package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pharmaledger/internal/access"
	"pharmaledger/internal/models"
	"pharmaledger/internal/testutil"
)

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

// storeFixture is a database with an owner, an open morning shift, an
// expense head and a vendor.
type storeFixture struct {
	db     *gorm.DB
	owner  *models.User
	shift  *models.ShiftInstance
	head   *models.ExpenseHead
	vendor *models.Vendor
}

func newStoreFixture(t *testing.T) storeFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, models.RoleOwner)
	return storeFixture{
		db:     db,
		owner:  owner,
		shift:  testutil.OpenTestShift(t, db, models.ShiftMorning, owner.ID),
		head:   testutil.CreateTestExpenseHead(t, db, owner.ID),
		vendor: testutil.CreateTestVendor(t, db, owner.ID, decimal.Zero),
	}
}

func TestAddRejectsNonPositiveAmounts(t *testing.T) {
	for _, amount := range []string{"0", "0.004", "-0.01", "-500"} {
		t.Run("amount_"+amount, func(t *testing.T) {
			f := newStoreFixture(t)
			actor := access.ActorOf(f.owner)
			in := EntryInput{ShiftID: f.shift.ID, Amount: testutil.Dec(amount)}

			_, err := NewSaleService(f.db, nil).AddSale(actor, SaleInput{EntryInput: in})
			testutil.AssertAppError(t, err, "VALIDATION_ERROR")

			_, err = NewExpenseService(f.db, nil).AddExpense(actor, ExpenseInput{EntryInput: in, ExpenseHeadID: f.head.ID})
			testutil.AssertAppError(t, err, "VALIDATION_ERROR")

			vt := NewVendorTransactionService(f.db, nil)
			_, err = vt.AddPurchase(actor, f.vendor.ID, PurchaseInput{EntryInput: in})
			testutil.AssertAppError(t, err, "VALIDATION_ERROR")
			_, err = vt.AddPayment(actor, f.vendor.ID, PaymentInput{EntryInput: in})
			testutil.AssertAppError(t, err, "VALIDATION_ERROR")
			_, err = vt.AddReturn(actor, f.vendor.ID, ReturnInput{EntryInput: in})
			testutil.AssertAppError(t, err, "VALIDATION_ERROR")

			_, err = NewPersonalService(f.db, nil).AddPersonal(actor, PersonalInput{EntryInput: in, Type: models.PersonalInvestment})
			testutil.AssertAppError(t, err, "VALIDATION_ERROR")

			for _, model := range []any{
				&models.Sale{}, &models.Expense{}, &models.VendorPurchase{},
				&models.VendorPayment{}, &models.VendorReturn{}, &models.PersonalTransaction{},
			} {
				if n := countRows(t, f.db, model); n != 0 {
					t.Errorf("expected no rows in %T, got %d", model, n)
				}
			}
		})
	}
}

func TestDeleteRequiresOwnerTier(t *testing.T) {
	f := newStoreFixture(t)
	ownerActor := access.ActorOf(f.owner)
	in := EntryInput{ShiftID: f.shift.ID, Amount: testutil.Dec("100")}

	sales := NewSaleService(f.db, nil)
	expenses := NewExpenseService(f.db, nil)
	vt := NewVendorTransactionService(f.db, nil)
	personal := NewPersonalService(f.db, nil)

	sale, err := sales.AddSale(ownerActor, SaleInput{EntryInput: in})
	testutil.AssertNoError(t, err)
	expense, err := expenses.AddExpense(ownerActor, ExpenseInput{EntryInput: in, ExpenseHeadID: f.head.ID})
	testutil.AssertNoError(t, err)
	purchase, err := vt.AddPurchase(ownerActor, f.vendor.ID, PurchaseInput{EntryInput: in})
	testutil.AssertNoError(t, err)
	payment, err := vt.AddPayment(ownerActor, f.vendor.ID, PaymentInput{EntryInput: in})
	testutil.AssertNoError(t, err)
	ret, err := vt.AddReturn(ownerActor, f.vendor.ID, ReturnInput{EntryInput: in})
	testutil.AssertNoError(t, err)
	draw, err := personal.AddPersonal(ownerActor, PersonalInput{EntryInput: in, Type: models.PersonalWithdrawal})
	testutil.AssertNoError(t, err)

	deletes := map[string]func(actor access.Actor) error{
		"sale":     func(a access.Actor) error { return sales.DeleteSale(a, sale.ID) },
		"expense":  func(a access.Actor) error { return expenses.DeleteExpense(a, expense.ID) },
		"purchase": func(a access.Actor) error { return vt.DeletePurchase(a, purchase.ID) },
		"payment":  func(a access.Actor) error { return vt.DeletePayment(a, payment.ID) },
		"return":   func(a access.Actor) error { return vt.DeleteReturn(a, ret.ID) },
		"personal": func(a access.Actor) error { return personal.DeletePersonal(a, draw.ID) },
	}

	for _, role := range []models.Role{models.RoleMorningUser, models.RoleEveningUser, models.RoleNightUser, models.RoleAccountant} {
		user := testutil.CreateTestUser(t, f.db, role)
		for kind, del := range deletes {
			t.Run(string(role)+"_"+kind, func(t *testing.T) {
				testutil.AssertAppError(t, del(access.ActorOf(user)), "PERMISSION_DENIED")
			})
		}
	}

	for _, model := range []any{
		&models.Sale{}, &models.Expense{}, &models.VendorPurchase{},
		&models.VendorPayment{}, &models.VendorReturn{}, &models.PersonalTransaction{},
	} {
		if n := countRows(t, f.db, model); n != 1 {
			t.Errorf("expected %T to be untouched, got %d rows", model, n)
		}
	}

	su := testutil.CreateTestUser(t, f.db, models.RoleSuperUser)
	for kind, del := range deletes {
		t.Run("super_user_"+kind, func(t *testing.T) {
			testutil.AssertNoError(t, del(access.ActorOf(su)))
			testutil.AssertAppError(t, del(access.ActorOf(su)), "TRANSACTION_NOT_FOUND")
		})
	}
}

func TestAddSale(t *testing.T) {
	t.Run("defaults_to_own_open_shift", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		su := testutil.CreateTestUser(t, db, models.RoleSuperUser)
		user := testutil.CreateTestUser(t, db, models.RoleEveningUser)
		testutil.OpenTestShift(t, db, models.ShiftMorning, su.ID)
		evening := testutil.OpenTestShift(t, db, models.ShiftEvening, su.ID)

		sale, err := NewSaleService(db, nil).AddSale(access.ActorOf(user), SaleInput{
			EntryInput:  EntryInput{Amount: testutil.Dec("250.555")},
			Description: "counter",
		})
		testutil.AssertNoError(t, err)

		if sale.ShiftID != evening.ID {
			t.Errorf("expected sale on evening shift %s, got %s", evening.ID, sale.ShiftID)
		}
		assertDecimal(t, "amount", sale.Amount, "250.56")
		if !sale.Date.Equal(models.Today()) {
			t.Errorf("expected today's date, got %v", sale.Date)
		}
		if sale.CreatedBy != user.ID {
			t.Errorf("expected created_by %s, got %s", user.ID, sale.CreatedBy)
		}
	})

	t.Run("no_open_shift", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db, models.RoleNightUser)

		_, err := NewSaleService(db, nil).AddSale(access.ActorOf(user), SaleInput{
			EntryInput: EntryInput{Amount: testutil.Dec("10")},
		})
		testutil.AssertAppError(t, err, "NO_OPEN_SHIFT")
	})

	t.Run("shift_user_on_other_shift", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		su := testutil.CreateTestUser(t, db, models.RoleSuperUser)
		user := testutil.CreateTestUser(t, db, models.RoleMorningUser)
		night := testutil.OpenTestShift(t, db, models.ShiftNight, su.ID)

		_, err := NewSaleService(db, nil).AddSale(access.ActorOf(user), SaleInput{
			EntryInput: EntryInput{ShiftID: night.ID, Amount: testutil.Dec("10")},
		})
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")
	})

	t.Run("office_role_must_pick_shift", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db, models.RoleAccountant)
		testutil.OpenTestShift(t, db, models.ShiftMorning, user.ID)

		_, err := NewSaleService(db, nil).AddSale(access.ActorOf(user), SaleInput{
			EntryInput: EntryInput{Amount: testutil.Dec("10")},
		})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("back_dated_entry", func(t *testing.T) {
		f := newStoreFixture(t)
		day := testutil.Date(2024, time.March, 3)

		sale, err := NewSaleService(f.db, nil).AddSale(access.ActorOf(f.owner), SaleInput{
			EntryInput: EntryInput{ShiftID: f.shift.ID, Amount: testutil.Dec("10"), Date: day.Add(15 * time.Hour)},
		})
		testutil.AssertNoError(t, err)
		if !sale.Date.Equal(day) {
			t.Errorf("expected date %v, got %v", day, sale.Date)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("edit_rule", func(t *testing.T) {
		f := newStoreFixture(t)
		sales := NewSaleService(f.db, nil)
		sale := testutil.CreateTestSale(t, f.db, f.shift, testutil.Dec("100"), time.Now())

		cases := []struct {
			role models.Role
			code string
		}{
			{models.RoleSuperUser, ""},
			{models.RoleAccountant, ""},
			{models.RoleMorningUser, ""},
			{models.RoleEveningUser, "PERMISSION_DENIED"},
			{models.RoleNightUser, "PERMISSION_DENIED"},
			{models.RoleOwner, "PERMISSION_DENIED"},
		}
		for _, tc := range cases {
			t.Run(string(tc.role), func(t *testing.T) {
				user := testutil.CreateTestUser(t, f.db, tc.role)
				updated, err := sales.UpdateSale(access.ActorOf(user), sale.ID, SaleInput{
					EntryInput:  EntryInput{Amount: testutil.Dec("150")},
					Description: "corrected",
				})
				if tc.code != "" {
					testutil.AssertAppError(t, err, tc.code)
					return
				}
				testutil.AssertNoError(t, err)
				assertDecimal(t, "amount", updated.Amount, "150")
				if updated.UpdatedBy == nil || *updated.UpdatedBy != user.ID {
					t.Error("expected updated_by to be set")
				}
				if updated.ShiftID != f.shift.ID {
					t.Error("expected the shift tag to be unchanged")
				}
			})
		}
	})

	t.Run("closed_shift_stays_editable", func(t *testing.T) {
		f := newStoreFixture(t)
		sale := testutil.CreateTestSale(t, f.db, f.shift, testutil.Dec("100"), time.Now())
		testutil.CloseTestShift(t, f.db, f.shift)
		accountant := testutil.CreateTestUser(t, f.db, models.RoleAccountant)

		_, err := NewSaleService(f.db, nil).UpdateSale(access.ActorOf(accountant), sale.ID, SaleInput{
			EntryInput: EntryInput{Amount: testutil.Dec("90")},
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("amount_revalidated", func(t *testing.T) {
		f := newStoreFixture(t)
		sale := testutil.CreateTestSale(t, f.db, f.shift, testutil.Dec("100"), time.Now())
		su := testutil.CreateTestUser(t, f.db, models.RoleSuperUser)

		for _, amount := range []decimal.Decimal{decimal.Zero, testutil.Dec("0.004")} {
			_, err := NewSaleService(f.db, nil).UpdateSale(access.ActorOf(su), sale.ID, SaleInput{
				EntryInput: EntryInput{Amount: amount},
			})
			testutil.AssertAppError(t, err, "VALIDATION_ERROR")
		}

		var stored models.Sale
		testutil.AssertNoError(t, f.db.First(&stored, "id = ?", sale.ID).Error)
		testutil.AssertDecimal(t, stored.Amount, "100")
	})

	t.Run("not_found", func(t *testing.T) {
		f := newStoreFixture(t)
		su := testutil.CreateTestUser(t, f.db, models.RoleSuperUser)

		_, err := NewSaleService(f.db, nil).UpdateSale(access.ActorOf(su), "0190f000-0000-7000-8000-000000000000", SaleInput{
			EntryInput: EntryInput{Amount: testutil.Dec("1")},
		})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestListTransactions(t *testing.T) {
	t.Run("newest_first_with_range", func(t *testing.T) {
		f := newStoreFixture(t)
		for _, d := range []int{1, 5, 3, 9} {
			testutil.CreateTestSale(t, f.db, f.shift, testutil.Dec("10"), testutil.Date(2024, time.May, d))
		}
		from, to := testutil.Date(2024, time.May, 2), testutil.Date(2024, time.May, 8)

		sales, err := NewSaleService(f.db, nil).ListSales(access.ActorOf(f.owner), TransactionFilter{From: &from, To: &to})
		testutil.AssertNoError(t, err)
		if len(sales) != 2 {
			t.Fatalf("expected 2 sales, got %d", len(sales))
		}
		if sales[0].Date.Day() != 5 || sales[1].Date.Day() != 3 {
			t.Errorf("expected days [5 3], got [%d %d]", sales[0].Date.Day(), sales[1].Date.Day())
		}
	})

	t.Run("inverted_range", func(t *testing.T) {
		f := newStoreFixture(t)
		from, to := testutil.Date(2024, time.May, 9), testutil.Date(2024, time.May, 1)

		_, err := NewSaleService(f.db, nil).ListSales(access.ActorOf(f.owner), TransactionFilter{From: &from, To: &to})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("shift_user_sees_own_type", func(t *testing.T) {
		f := newStoreFixture(t)
		night := testutil.OpenTestShift(t, f.db, models.ShiftNight, f.owner.ID)
		testutil.CreateTestSale(t, f.db, f.shift, testutil.Dec("10"), time.Now())
		testutil.CreateTestSale(t, f.db, night, testutil.Dec("20"), time.Now())
		user := testutil.CreateTestUser(t, f.db, models.RoleNightUser)

		sales, err := NewSaleService(f.db, nil).ListSales(access.ActorOf(user), TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(sales) != 1 || sales[0].ShiftID != night.ID {
			t.Errorf("expected only the night sale, got %d sales", len(sales))
		}
	})

	t.Run("limit", func(t *testing.T) {
		f := newStoreFixture(t)
		for i := 0; i < 5; i++ {
			testutil.CreateTestSale(t, f.db, f.shift, testutil.Dec("10"), time.Now())
		}
		sales, err := NewSaleService(f.db, nil).ListSales(access.ActorOf(f.owner), TransactionFilter{Limit: 3})
		testutil.AssertNoError(t, err)
		if len(sales) != 3 {
			t.Errorf("expected 3 sales, got %d", len(sales))
		}
	})
}

func TestExpenseHeadRules(t *testing.T) {
	t.Run("disabled_head_rejects_new_expense", func(t *testing.T) {
		f := newStoreFixture(t)
		actor := access.ActorOf(f.owner)
		heads := NewExpenseHeadService(f.db)
		_, err := heads.SetExpenseHeadActive(actor, f.head.ID, false)
		testutil.AssertNoError(t, err)

		_, err = NewExpenseService(f.db, nil).AddExpense(actor, ExpenseInput{
			EntryInput:    EntryInput{ShiftID: f.shift.ID, Amount: testutil.Dec("10")},
			ExpenseHeadID: f.head.ID,
		})
		testutil.AssertAppError(t, err, "EXPENSE_HEAD_INACTIVE")
	})

	t.Run("history_keeps_disabled_head", func(t *testing.T) {
		f := newStoreFixture(t)
		actor := access.ActorOf(f.owner)
		expenses := NewExpenseService(f.db, nil)
		expense, err := expenses.AddExpense(actor, ExpenseInput{
			EntryInput:    EntryInput{ShiftID: f.shift.ID, Amount: testutil.Dec("10")},
			ExpenseHeadID: f.head.ID,
		})
		testutil.AssertNoError(t, err)
		_, err = NewExpenseHeadService(f.db).SetExpenseHeadActive(actor, f.head.ID, false)
		testutil.AssertNoError(t, err)

		listed, err := expenses.ListExpenses(actor, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(listed) != 1 || listed[0].ExpenseHead == nil || listed[0].ExpenseHead.ID != f.head.ID {
			t.Fatal("expected the expense to keep resolving its head")
		}

		accountant := testutil.CreateTestUser(t, f.db, models.RoleAccountant)
		_, err = expenses.UpdateExpense(access.ActorOf(accountant), expense.ID, ExpenseInput{
			EntryInput: EntryInput{Amount: testutil.Dec("12")},
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("missing_head", func(t *testing.T) {
		f := newStoreFixture(t)
		_, err := NewExpenseService(f.db, nil).AddExpense(access.ActorOf(f.owner), ExpenseInput{
			EntryInput: EntryInput{ShiftID: f.shift.ID, Amount: testutil.Dec("10")},
		})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}
