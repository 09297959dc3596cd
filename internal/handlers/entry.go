package handlers

import (
	"github.com/shopspring/decimal"

	"pharmaledger/internal/services"
)

// EntryRequest holds the fields every ledger transaction request shares.
// ShiftID is only read on create; shift users may leave it empty to post to
// their own open shift.
type EntryRequest struct {
	ShiftID string          `json:"shift_id" binding:"omitempty,uuid"`
	Amount  decimal.Decimal `json:"amount" swaggertype:"string" example:"1500.00" binding:"money_gt0"`
	Date    string          `json:"date" example:"2026-10-19" binding:"omitempty,datetime=2006-01-02"`
}

func (r EntryRequest) entry() (services.EntryInput, error) {
	date, err := parseDate(r.Date, "date")
	if err != nil {
		return services.EntryInput{}, err
	}
	return services.EntryInput{ShiftID: r.ShiftID, Amount: r.Amount, Date: date}, nil
}

func entryChanges(in services.EntryInput, extra map[string]any) map[string]any {
	changes := map[string]any{"amount": in.Amount.String()}
	if !in.Date.IsZero() {
		changes["date"] = in.Date.Format(dateLayout)
	}
	for k, v := range extra {
		changes[k] = v
	}
	return changes
}
