package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pharmaledger/internal/access"
	apperrors "pharmaledger/internal/errors"
	"pharmaledger/internal/export"
	"pharmaledger/internal/ledger"
	"pharmaledger/internal/models"
	"pharmaledger/internal/money"
)

// DailySummary is the dashboard roll-up for one calendar date.
//
// NetCash has the shape of a shift's expected cash but is scoped by date, so
// it does not reconcile with shift variances when a shift spans midnight. It
// is a display figure only.
type DailySummary struct {
	Date           time.Time       `json:"date"`
	Sales          decimal.Decimal `json:"sales"`
	Expenses       decimal.Decimal `json:"expenses"`
	VendorPayments decimal.Decimal `json:"vendor_payments"`
	Withdrawals    decimal.Decimal `json:"withdrawals"`
	Investments    decimal.Decimal `json:"investments"`
	NetCash        decimal.Decimal `json:"net_cash"`
	VendorPayable  decimal.Decimal `json:"vendor_payable"`

	// Only set for actors who may see the personal ledger.
	PersonalBalance *decimal.Decimal `json:"personal_balance,omitempty"`

	OpenShifts []models.ShiftInstance `json:"open_shifts"`
}

// Report is a tabular range report plus its on-screen totals.
type Report struct {
	Title  string                     `json:"title"`
	From   time.Time                  `json:"from"`
	To     time.Time                  `json:"to"`
	Table  *export.Table              `json:"table"`
	Totals map[string]decimal.Decimal `json:"totals"`
}

// HeadTotal is the expense total of one expense head.
type HeadTotal struct {
	ExpenseHeadID string          `json:"expense_head_id"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
}

// ProfitAndLoss is the P&L statement for a date range.
type ProfitAndLoss struct {
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Sales       decimal.Decimal `json:"sales"`
	Purchases   decimal.Decimal `json:"purchases"`
	Returns     decimal.Decimal `json:"returns"`
	COGS        decimal.Decimal `json:"cogs"`
	COGSEntered bool            `json:"cogs_entered"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	Expenses    decimal.Decimal `json:"expenses"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	ByHead      []HeadTotal     `json:"expenses_by_head"`
}

// Table lays the statement out as label/amount rows.
func (p *ProfitAndLoss) Table() *export.Table {
	t := export.NewTable("Profit & Loss", "Item", "Amount")
	t.AddRow("Sales", p.Sales)
	t.AddRow("Cost of goods sold", p.COGS)
	t.AddRow("Gross profit", p.GrossProfit)
	for _, h := range p.ByHead {
		t.AddRow("Expense: "+h.Name, h.Amount)
	}
	t.AddRow("Total expenses", p.Expenses)
	t.AddRow("Net profit", p.NetProfit)
	return t
}

// reportService builds read-only roll-ups. Nothing here writes.
type reportService struct {
	db      *gorm.DB
	vendors VendorServicer
	shifts  ShiftServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, vendors VendorServicer, shifts ShiftServicer) ReportServicer {
	return &reportService{db: db, vendors: vendors, shifts: shifts}
}

// normalizeRange truncates both ends to dates. A zero To means today and a
// zero From means the same day as To.
func normalizeRange(r DateRange) (DateRange, error) {
	out := DateRange{From: r.From, To: r.To}
	if out.To.IsZero() {
		out.To = models.Today()
	}
	if out.From.IsZero() {
		out.From = out.To
	}
	out.From = models.DateOf(out.From)
	out.To = models.DateOf(out.To)
	if err := validateRange(&out.From, &out.To); err != nil {
		return DateRange{}, err
	}
	return out, nil
}

func (s *reportService) DailySummary(actor access.Actor, date time.Time) (*DailySummary, error) {
	if err := access.Require(actor, access.ViewReports); err != nil {
		return nil, denied(actor, "view daily summary", err)
	}

	day := dateOrToday(date)
	summary := &DailySummary{Date: day}
	streams := []struct {
		model any
		query string
		args  []any
		into  *decimal.Decimal
	}{
		{&models.Sale{}, "date = ?", []any{day}, &summary.Sales},
		{&models.Expense{}, "date = ?", []any{day}, &summary.Expenses},
		{&models.VendorPayment{}, "date = ?", []any{day}, &summary.VendorPayments},
		{&models.PersonalTransaction{}, "date = ? AND type = ?", []any{day, models.PersonalWithdrawal}, &summary.Withdrawals},
		{&models.PersonalTransaction{}, "date = ? AND type = ?", []any{day, models.PersonalInvestment}, &summary.Investments},
	}
	for _, st := range streams {
		sum, err := sumAmounts(s.db, st.model, st.query, st.args...)
		if err != nil {
			return nil, apperrors.Store(apperrors.OpRead, "daily summary", err)
		}
		*st.into = sum
	}
	summary.NetCash = ledger.CashFlows{
		Sales:          summary.Sales,
		Expenses:       summary.Expenses,
		VendorPayments: summary.VendorPayments,
		Withdrawals:    summary.Withdrawals,
		Investments:    summary.Investments,
	}.Net()

	vendors, err := s.vendors.ListVendors(false)
	if err != nil {
		return nil, err
	}
	summary.VendorPayable = vendorPayable(vendors)

	if access.Can(actor, access.ManagePersonal) {
		balance, err := personalBalance(s.db)
		if err != nil {
			return nil, err
		}
		summary.PersonalBalance = &balance
	}

	open, err := s.shifts.ListOpenShifts(actor)
	if err != nil {
		return nil, err
	}
	summary.OpenShifts = open
	return summary, nil
}

// vendorPayable sums the positive balances. Vendors in credit are not netted
// against vendors owed.
func vendorPayable(vendors []models.Vendor) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vendors {
		if v.CurrentBalance.IsPositive() {
			total = total.Add(v.CurrentBalance)
		}
	}
	return total
}

func (s *reportService) SalesReport(actor access.Actor, r DateRange) (*Report, error) {
	if err := access.Require(actor, access.ViewShiftReports); err != nil {
		return nil, denied(actor, "view sales report", err)
	}
	r, err := normalizeRange(r)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Date        time.Time
		ShiftType   models.ShiftType
		Description string
		Amount      decimal.Decimal
	}
	q := s.db.Model(&models.Sale{}).
		Select("sales.date, shift_instances.shift_type, sales.description, sales.amount").
		Joins("JOIN shift_instances ON shift_instances.id = sales.shift_id").
		Where("sales.date BETWEEN ? AND ?", r.From, r.To)
	q = visibleShifts(s.db, q, actor)
	if err := q.Order("sales.date ASC").Order("sales.id ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "sales report", err)
	}

	table := export.NewTable("Sales", "Date", "Shift", "Description", "Amount")
	total := decimal.Zero
	for _, row := range rows {
		table.AddRow(models.DateOf(row.Date), row.ShiftType, row.Description, row.Amount)
		total = total.Add(row.Amount)
	}
	return &Report{
		Title:  table.Title,
		From:   r.From,
		To:     r.To,
		Table:  table,
		Totals: map[string]decimal.Decimal{"sales": total},
	}, nil
}

func (s *reportService) ExpensesReport(actor access.Actor, r DateRange) (*Report, error) {
	if err := access.Require(actor, access.ViewShiftReports); err != nil {
		return nil, denied(actor, "view expenses report", err)
	}
	r, err := normalizeRange(r)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Date        time.Time
		ShiftType   models.ShiftType
		HeadName    string
		Description string
		Amount      decimal.Decimal
	}
	q := s.db.Model(&models.Expense{}).
		Select("expenses.date, shift_instances.shift_type, expense_heads.name AS head_name, expenses.description, expenses.amount").
		Joins("JOIN shift_instances ON shift_instances.id = expenses.shift_id").
		Joins("LEFT JOIN expense_heads ON expense_heads.id = expenses.expense_head_id").
		Where("expenses.date BETWEEN ? AND ?", r.From, r.To)
	q = visibleShifts(s.db, q, actor)
	if err := q.Order("expenses.date ASC").Order("expenses.id ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "expenses report", err)
	}

	table := export.NewTable("Expenses", "Date", "Shift", "Expense Head", "Description", "Amount")
	total := decimal.Zero
	for _, row := range rows {
		table.AddRow(models.DateOf(row.Date), row.ShiftType, row.HeadName, row.Description, row.Amount)
		total = total.Add(row.Amount)
	}
	return &Report{
		Title:  table.Title,
		From:   r.From,
		To:     r.To,
		Table:  table,
		Totals: map[string]decimal.Decimal{"expenses": total},
	}, nil
}

func (s *reportService) VendorLedgerReport(actor access.Actor, vendorID string, r DateRange) (*Report, error) {
	r, err := normalizeRange(r)
	if err != nil {
		return nil, err
	}
	l, err := s.vendors.Ledger(actor, vendorID, &r.From, &r.To)
	if err != nil {
		return nil, err
	}

	table := export.NewTable("Vendor Ledger: "+l.Vendor.Name, "Date", "Type", "Shift", "Reference", "Debit", "Credit", "Balance")
	for _, e := range l.Entries {
		table.AddRow(e.Date, e.Kind, e.ShiftType, e.Reference, e.Debit, e.Credit, e.Balance)
	}
	return &Report{
		Title: table.Title,
		From:  r.From,
		To:    r.To,
		Table: table,
		Totals: map[string]decimal.Decimal{
			"opening_balance": l.OpeningBalance,
			"debit":           l.TotalDebit,
			"credit":          l.TotalCredit,
			"closing_balance": l.ClosingBalance,
			"current_balance": l.Vendor.CurrentBalance,
		},
	}, nil
}

func (s *reportService) PersonalLedgerReport(actor access.Actor, r DateRange, personalType models.PersonalType) (*Report, error) {
	if err := access.Require(actor, access.ManagePersonal); err != nil {
		return nil, denied(actor, "view personal ledger", err)
	}
	if personalType != "" && !personalType.Valid() {
		return nil, apperrors.Validation("Type must be withdrawal or investment")
	}
	r, err := normalizeRange(r)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Date        time.Time
		Type        models.PersonalType
		ShiftType   models.ShiftType
		Description string
		Amount      decimal.Decimal
	}
	q := s.db.Model(&models.PersonalTransaction{}).
		Select("personal_transactions.date, personal_transactions.type, shift_instances.shift_type, personal_transactions.description, personal_transactions.amount").
		Joins("JOIN shift_instances ON shift_instances.id = personal_transactions.shift_id").
		Where("personal_transactions.date BETWEEN ? AND ?", r.From, r.To)
	if personalType != "" {
		q = q.Where("personal_transactions.type = ?", personalType)
	}
	if err := q.Order("personal_transactions.date DESC").Order("personal_transactions.id DESC").Find(&rows).Error; err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "personal ledger", err)
	}

	table := export.NewTable("Personal Ledger", "Date", "Type", "Shift", "Description", "Amount")
	withdrawals, investments := decimal.Zero, decimal.Zero
	for _, row := range rows {
		table.AddRow(models.DateOf(row.Date), string(row.Type), row.ShiftType, row.Description, row.Amount)
		if row.Type == models.PersonalInvestment {
			investments = investments.Add(row.Amount)
		} else {
			withdrawals = withdrawals.Add(row.Amount)
		}
	}

	balance, err := personalBalance(s.db)
	if err != nil {
		return nil, err
	}
	return &Report{
		Title: table.Title,
		From:  r.From,
		To:    r.To,
		Table: table,
		Totals: map[string]decimal.Decimal{
			"withdrawals": withdrawals,
			"investments": investments,
			"balance":     balance,
		},
	}, nil
}

// ShiftReport lists shifts by opening date, each with its reconciliation
// figures. Open shifts show their running expected cash.
func (s *reportService) ShiftReport(actor access.Actor, r DateRange) (*Report, error) {
	if err := access.Require(actor, access.ViewShiftReports); err != nil {
		return nil, denied(actor, "view shift report", err)
	}
	r, err := normalizeRange(r)
	if err != nil {
		return nil, err
	}

	shifts, err := s.shifts.ListShifts(ShiftFilter{
		ShiftTypes: access.VisibleShiftTypes(actor),
		From:       &r.From,
		To:         &r.To,
	})
	if err != nil {
		return nil, err
	}

	table := export.NewTable("Shifts",
		"Opening Date", "Shift", "Status", "Opened At", "Opening Cash",
		"Closed At", "Expected Cash", "Closing Cash", "Variance")
	totalVariance := decimal.Zero
	for i := len(shifts) - 1; i >= 0; i-- {
		sh := shifts[i]
		expected := sh.ExpectedCash
		if sh.IsOpen() {
			running, err := s.shifts.ExpectedCash(sh.ID)
			if err != nil {
				return nil, err
			}
			expected = &running
		}
		if sh.Variance != nil {
			totalVariance = totalVariance.Add(*sh.Variance)
		}
		table.AddRow(sh.OpeningDate, sh.ShiftType, string(sh.Status), sh.OpenedAt, sh.OpeningCash,
			sh.ClosedAt, expected, sh.ClosingCash, sh.Variance)
	}
	return &Report{
		Title:  table.Title,
		From:   r.From,
		To:     r.To,
		Table:  table,
		Totals: map[string]decimal.Decimal{"variance": totalVariance},
	}, nil
}

// ProfitAndLoss composes sales, COGS and expenses over the range. When cogs
// is nil it defaults to purchases minus returns in the same range.
func (s *reportService) ProfitAndLoss(actor access.Actor, r DateRange, cogs *decimal.Decimal) (*ProfitAndLoss, error) {
	if err := access.Require(actor, access.ViewReports); err != nil {
		return nil, denied(actor, "view profit and loss", err)
	}
	if cogs != nil && cogs.IsNegative() {
		return nil, apperrors.Validation("Cost of goods sold cannot be negative")
	}
	r, err := normalizeRange(r)
	if err != nil {
		return nil, err
	}

	pl := &ProfitAndLoss{From: r.From, To: r.To}
	inRange := "date BETWEEN ? AND ?"
	sums := []struct {
		model any
		into  *decimal.Decimal
	}{
		{&models.Sale{}, &pl.Sales},
		{&models.VendorPurchase{}, &pl.Purchases},
		{&models.VendorReturn{}, &pl.Returns},
		{&models.Expense{}, &pl.Expenses},
	}
	for _, st := range sums {
		sum, err := sumAmounts(s.db, st.model, inRange, r.From, r.To)
		if err != nil {
			return nil, apperrors.Store(apperrors.OpRead, "profit and loss", err)
		}
		*st.into = sum
	}

	if cogs != nil {
		pl.COGS = money.Round(*cogs)
		pl.COGSEntered = true
	} else {
		pl.COGS = pl.Purchases.Sub(pl.Returns)
	}
	pl.GrossProfit = pl.Sales.Sub(pl.COGS)
	pl.NetProfit = pl.GrossProfit.Sub(pl.Expenses)

	byHead, err := expensesByHead(s.db, r)
	if err != nil {
		return nil, err
	}
	pl.ByHead = byHead
	return pl, nil
}

// expensesByHead totals expenses per head, in head name order.
func expensesByHead(db *gorm.DB, r DateRange) ([]HeadTotal, error) {
	var rows []struct {
		ExpenseHeadID string
		Name          string
		Amount        decimal.Decimal
	}
	err := db.Model(&models.Expense{}).
		Select("expenses.expense_head_id, expense_heads.name, expenses.amount").
		Joins("LEFT JOIN expense_heads ON expense_heads.id = expenses.expense_head_id").
		Where("expenses.date BETWEEN ? AND ?", r.From, r.To).
		Order("expense_heads.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Store(apperrors.OpRead, "expenses by head", err)
	}

	totals := []HeadTotal{}
	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.ExpenseHeadID]
		if !ok {
			i = len(totals)
			index[row.ExpenseHeadID] = i
			totals = append(totals, HeadTotal{ExpenseHeadID: row.ExpenseHeadID, Name: row.Name, Amount: decimal.Zero})
		}
		totals[i].Amount = totals[i].Amount.Add(row.Amount)
	}
	return totals, nil
}
