package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pharmaledger/internal/access"
	"pharmaledger/internal/export"
	"pharmaledger/internal/models"
	"pharmaledger/internal/testutil"
)

func newReportService(db *gorm.DB) ReportServicer {
	return NewReportService(db, NewVendorService(db), newShiftService(db))
}

// reportFixture books a small week of activity on one morning and one night
// shift.
type reportFixture struct {
	db      *gorm.DB
	owner   *models.User
	morning *models.ShiftInstance
	night   *models.ShiftInstance
	rent    *models.ExpenseHead
	power   *models.ExpenseHead
	vendor  *models.Vendor
}

func newReportFixture(t *testing.T) reportFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, models.RoleOwner)
	actor := access.ActorOf(owner)
	f := reportFixture{
		db:      db,
		owner:   owner,
		morning: testutil.OpenTestShift(t, db, models.ShiftMorning, owner.ID),
		night:   testutil.OpenTestShift(t, db, models.ShiftNight, owner.ID),
		vendor:  testutil.CreateTestVendor(t, db, owner.ID, testutil.Dec("1000")),
	}

	heads := NewExpenseHeadService(db)
	var err error
	f.rent, err = heads.CreateExpenseHead(actor, "Rent", "")
	testutil.AssertNoError(t, err)
	f.power, err = heads.CreateExpenseHead(actor, "Power", "")
	testutil.AssertNoError(t, err)

	on := func(shift *models.ShiftInstance, amount string, day int) EntryInput {
		return EntryInput{ShiftID: shift.ID, Amount: testutil.Dec(amount), Date: testutil.Date(2024, time.April, day)}
	}
	sales := NewSaleService(db, nil)
	expenses := NewExpenseService(db, nil)
	vt := NewVendorTransactionService(db, nil)
	personal := NewPersonalService(db, nil)

	must := func(_ any, err error) {
		t.Helper()
		testutil.AssertNoError(t, err)
	}
	must(sales.AddSale(actor, SaleInput{EntryInput: on(f.morning, "3000", 1)}))
	must(sales.AddSale(actor, SaleInput{EntryInput: on(f.night, "2000", 1)}))
	must(sales.AddSale(actor, SaleInput{EntryInput: on(f.morning, "1500", 2)}))
	must(expenses.AddExpense(actor, ExpenseInput{EntryInput: on(f.morning, "400", 1), ExpenseHeadID: f.rent.ID}))
	must(expenses.AddExpense(actor, ExpenseInput{EntryInput: on(f.night, "100", 2), ExpenseHeadID: f.power.ID}))
	must(vt.AddPurchase(actor, f.vendor.ID, PurchaseInput{EntryInput: on(f.morning, "2500", 1)}))
	must(vt.AddReturn(actor, f.vendor.ID, ReturnInput{EntryInput: on(f.morning, "300", 2)}))
	must(vt.AddPayment(actor, f.vendor.ID, PaymentInput{EntryInput: on(f.morning, "700", 1)}))
	must(personal.AddPersonal(actor, PersonalInput{EntryInput: on(f.night, "250", 1), Type: models.PersonalWithdrawal}))
	must(personal.AddPersonal(actor, PersonalInput{EntryInput: on(f.morning, "50", 1), Type: models.PersonalInvestment}))
	return f
}

func TestDailySummary(t *testing.T) {
	t.Run("owner_view", func(t *testing.T) {
		f := newReportFixture(t)
		svc := newReportService(f.db)

		summary, err := svc.DailySummary(access.ActorOf(f.owner), testutil.Date(2024, time.April, 1))
		testutil.AssertNoError(t, err)

		assertDecimal(t, "sales", summary.Sales, "5000")
		assertDecimal(t, "expenses", summary.Expenses, "400")
		assertDecimal(t, "vendor payments", summary.VendorPayments, "700")
		assertDecimal(t, "withdrawals", summary.Withdrawals, "250")
		assertDecimal(t, "investments", summary.Investments, "50")
		// 5000 - 400 - 700 - 250 + 50
		assertDecimal(t, "net cash", summary.NetCash, "3700")
		// 1000 + 2500 - 700 - 300
		assertDecimal(t, "vendor payable", summary.VendorPayable, "2500")
		if summary.PersonalBalance == nil {
			t.Fatal("expected personal balance for the owner")
		}
		assertDecimal(t, "personal balance", *summary.PersonalBalance, "-200")
		if len(summary.OpenShifts) != 2 {
			t.Errorf("expected 2 open shifts, got %d", len(summary.OpenShifts))
		}
	})

	t.Run("accountant_view_hides_personal", func(t *testing.T) {
		f := newReportFixture(t)
		accountant := testutil.CreateTestUser(t, f.db, models.RoleAccountant)

		summary, err := newReportService(f.db).DailySummary(access.ActorOf(accountant), testutil.Date(2024, time.April, 1))
		testutil.AssertNoError(t, err)
		if summary.PersonalBalance != nil {
			t.Error("expected no personal balance for an accountant")
		}
	})

	t.Run("vendor_in_credit_not_netted", func(t *testing.T) {
		f := newReportFixture(t)
		testutil.CreateTestVendor(t, f.db, f.owner.ID, testutil.Dec("-500"))

		summary, err := newReportService(f.db).DailySummary(access.ActorOf(f.owner), testutil.Date(2024, time.April, 1))
		testutil.AssertNoError(t, err)
		assertDecimal(t, "vendor payable", summary.VendorPayable, "2500")
	})

	t.Run("shift_user_denied", func(t *testing.T) {
		f := newReportFixture(t)
		user := testutil.CreateTestUser(t, f.db, models.RoleMorningUser)

		_, err := newReportService(f.db).DailySummary(access.ActorOf(user), time.Time{})
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")
	})
}

func TestSalesReport(t *testing.T) {
	rng := DateRange{From: testutil.Date(2024, time.April, 1), To: testutil.Date(2024, time.April, 30)}

	t.Run("all_shifts", func(t *testing.T) {
		f := newReportFixture(t)

		report, err := newReportService(f.db).SalesReport(access.ActorOf(f.owner), rng)
		testutil.AssertNoError(t, err)
		if len(report.Table.Rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(report.Table.Rows))
		}
		assertDecimal(t, "total", report.Totals["sales"], "6500")

		var buf bytes.Buffer
		testutil.AssertNoError(t, export.WriteCSV(&buf, report.Table))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if lines[0] != "Date,Shift,Description,Amount" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if !strings.HasPrefix(lines[1], "2024-04-01,") {
			t.Errorf("expected oldest row first, got %q", lines[1])
		}
	})

	t.Run("shift_user_filtered", func(t *testing.T) {
		f := newReportFixture(t)
		user := testutil.CreateTestUser(t, f.db, models.RoleNightUser)

		report, err := newReportService(f.db).SalesReport(access.ActorOf(user), rng)
		testutil.AssertNoError(t, err)
		if len(report.Table.Rows) != 1 {
			t.Fatalf("expected 1 night row, got %d", len(report.Table.Rows))
		}
		assertDecimal(t, "total", report.Totals["sales"], "2000")
	})

	t.Run("single_day", func(t *testing.T) {
		f := newReportFixture(t)
		day := testutil.Date(2024, time.April, 2)

		report, err := newReportService(f.db).SalesReport(access.ActorOf(f.owner), DateRange{From: day, To: day})
		testutil.AssertNoError(t, err)
		assertDecimal(t, "total", report.Totals["sales"], "1500")
	})

	t.Run("inverted_range", func(t *testing.T) {
		f := newReportFixture(t)

		_, err := newReportService(f.db).SalesReport(access.ActorOf(f.owner), DateRange{From: rng.To, To: rng.From})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestExpensesReport(t *testing.T) {
	f := newReportFixture(t)
	rng := DateRange{From: testutil.Date(2024, time.April, 1), To: testutil.Date(2024, time.April, 30)}

	report, err := newReportService(f.db).ExpensesReport(access.ActorOf(f.owner), rng)
	testutil.AssertNoError(t, err)
	if len(report.Table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report.Table.Rows))
	}
	if report.Table.Rows[0][2] != "Rent" {
		t.Errorf("expected head name Rent, got %v", report.Table.Rows[0][2])
	}
	assertDecimal(t, "total", report.Totals["expenses"], "500")
}

func TestVendorLedgerReport(t *testing.T) {
	f := newReportFixture(t)
	day := testutil.Date(2024, time.April, 2)

	report, err := newReportService(f.db).VendorLedgerReport(access.ActorOf(f.owner), f.vendor.ID, DateRange{From: day, To: day})
	testutil.AssertNoError(t, err)
	if len(report.Table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report.Table.Rows))
	}
	// 1000 + 2500 - 700 before the window, then the 300 return.
	assertDecimal(t, "opening", report.Totals["opening_balance"], "2800")
	assertDecimal(t, "closing", report.Totals["closing_balance"], "2500")
}

func TestPersonalLedgerReport(t *testing.T) {
	f := newReportFixture(t)
	rng := DateRange{From: testutil.Date(2024, time.April, 1), To: testutil.Date(2024, time.April, 30)}
	svc := newReportService(f.db)

	report, err := svc.PersonalLedgerReport(access.ActorOf(f.owner), rng, "")
	testutil.AssertNoError(t, err)
	if len(report.Table.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(report.Table.Rows))
	}
	assertDecimal(t, "withdrawals", report.Totals["withdrawals"], "250")
	assertDecimal(t, "balance", report.Totals["balance"], "-200")

	onlyInvestments, err := svc.PersonalLedgerReport(access.ActorOf(f.owner), rng, models.PersonalInvestment)
	testutil.AssertNoError(t, err)
	if len(onlyInvestments.Table.Rows) != 1 {
		t.Errorf("expected 1 investment row, got %d", len(onlyInvestments.Table.Rows))
	}

	accountant := testutil.CreateTestUser(t, f.db, models.RoleAccountant)
	_, err = svc.PersonalLedgerReport(access.ActorOf(accountant), rng, "")
	testutil.AssertAppError(t, err, "PERMISSION_DENIED")
}

func TestShiftReport(t *testing.T) {
	f := newReportFixture(t)
	today := DateRange{From: models.Today(), To: models.Today()}
	svc := newReportService(f.db)

	report, err := svc.ShiftReport(access.ActorOf(f.owner), today)
	testutil.AssertNoError(t, err)
	if len(report.Table.Rows) != 2 {
		t.Fatalf("expected 2 shifts, got %d", len(report.Table.Rows))
	}

	user := testutil.CreateTestUser(t, f.db, models.RoleMorningUser)
	report, err = svc.ShiftReport(access.ActorOf(user), today)
	testutil.AssertNoError(t, err)
	if len(report.Table.Rows) != 1 {
		t.Fatalf("expected 1 shift, got %d", len(report.Table.Rows))
	}
	// 10000 + 4500 - 400 - 700 + 50
	expected, ok := report.Table.Rows[0][6].(*decimal.Decimal)
	if !ok || expected == nil {
		t.Fatalf("expected a running expected cash, got %v", report.Table.Rows[0][6])
	}
	assertDecimal(t, "expected cash", *expected, "13450")
}

func TestProfitAndLoss(t *testing.T) {
	rng := DateRange{From: testutil.Date(2024, time.April, 1), To: testutil.Date(2024, time.April, 30)}

	t.Run("derived_cogs", func(t *testing.T) {
		f := newReportFixture(t)

		pl, err := newReportService(f.db).ProfitAndLoss(access.ActorOf(f.owner), rng, nil)
		testutil.AssertNoError(t, err)
		assertDecimal(t, "sales", pl.Sales, "6500")
		assertDecimal(t, "cogs", pl.COGS, "2200")
		assertDecimal(t, "gross", pl.GrossProfit, "4300")
		assertDecimal(t, "expenses", pl.Expenses, "500")
		assertDecimal(t, "net", pl.NetProfit, "3800")
		if pl.COGSEntered {
			t.Error("expected derived COGS")
		}
		if len(pl.ByHead) != 2 || pl.ByHead[0].Name != "Power" {
			t.Errorf("expected per-head totals ordered by name, got %+v", pl.ByHead)
		}
		if len(pl.Table().Rows) != 7 {
			t.Errorf("expected 7 statement rows, got %d", len(pl.Table().Rows))
		}
	})

	t.Run("entered_cogs", func(t *testing.T) {
		f := newReportFixture(t)
		cogs := testutil.Dec("4000")

		pl, err := newReportService(f.db).ProfitAndLoss(access.ActorOf(f.owner), rng, &cogs)
		testutil.AssertNoError(t, err)
		assertDecimal(t, "gross", pl.GrossProfit, "2500")
		assertDecimal(t, "net", pl.NetProfit, "2000")
	})

	t.Run("shift_user_denied", func(t *testing.T) {
		f := newReportFixture(t)
		user := testutil.CreateTestUser(t, f.db, models.RoleEveningUser)

		_, err := newReportService(f.db).ProfitAndLoss(access.ActorOf(user), rng, nil)
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")
	})
}
