// Package ledger contains the pure arithmetic behind shift reconciliation and
// running ledger balances. Nothing in here touches storage.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CashFlows are the per-shift sums that move the cash drawer.
// Vendor purchases are on account and vendor returns reduce the payable, so
// neither appears here.
type CashFlows struct {
	Sales          decimal.Decimal
	Expenses       decimal.Decimal
	VendorPayments decimal.Decimal
	Withdrawals    decimal.Decimal
	Investments    decimal.Decimal
}

// Net is sales − expenses − vendor payments − withdrawals + investments.
func (f CashFlows) Net() decimal.Decimal {
	return f.Sales.
		Sub(f.Expenses).
		Sub(f.VendorPayments).
		Sub(f.Withdrawals).
		Add(f.Investments)
}

// ExpectedCash is the cash that should be in the drawer at close.
func ExpectedCash(openingCash decimal.Decimal, flows CashFlows) decimal.Decimal {
	return openingCash.Add(flows.Net())
}

// Variance is the counted closing cash minus the expected cash. Negative
// means the drawer is short.
func Variance(closingCash, expected decimal.Decimal) decimal.Decimal {
	return closingCash.Sub(expected)
}

// Posting is anything that can be placed on a ledger.
//
// PostingKey breaks ties between postings on the same date and must reflect
// creation order (the store uses time-ordered ids for this).
type Posting interface {
	PostingDate() time.Time
	PostingKey() string
	PostingAmounts() (debit, credit decimal.Decimal)
}

// Entry is the minimal Posting.
type Entry struct {
	Date   time.Time
	Key    string
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (e Entry) PostingDate() time.Time { return e.Date }

func (e Entry) PostingKey() string { return e.Key }

func (e Entry) PostingAmounts() (decimal.Decimal, decimal.Decimal) { return e.Debit, e.Credit }

// Line is a posting together with the balance after it was applied.
type Line[P Posting] struct {
	Posting P
	Balance decimal.Decimal
}

// Chronological returns a copy of postings ordered by (date, key). The sort
// is stable, so postings with equal date and key keep their input order.
func Chronological[P Posting](postings []P) []P {
	out := make([]P, len(postings))
	copy(out, postings)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].PostingDate(), out[j].PostingDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].PostingKey() < out[j].PostingKey()
	})
	return out
}

// RunningBalance applies balance[i] = balance[i-1] + debit[i] − credit[i]
// over the postings in chronological order, seeded with opening. The input
// slice is not modified.
func RunningBalance[P Posting](opening decimal.Decimal, postings []P) []Line[P] {
	ordered := Chronological(postings)
	lines := make([]Line[P], len(ordered))

	balance := opening
	for i, p := range ordered {
		debit, credit := p.PostingAmounts()
		balance = balance.Add(debit).Sub(credit)
		lines[i] = Line[P]{Posting: p, Balance: balance}
	}
	return lines
}

// Closing returns the balance after every posting, without building lines.
func Closing[P Posting](opening decimal.Decimal, postings []P) decimal.Decimal {
	balance := opening
	for _, p := range postings {
		debit, credit := p.PostingAmounts()
		balance = balance.Add(debit).Sub(credit)
	}
	return balance
}

// Reverse returns lines newest first, for display.
func Reverse[P Posting](lines []Line[P]) []Line[P] {
	out := make([]Line[P], len(lines))
	for i, l := range lines {
		out[len(lines)-1-i] = l
	}
	return out
}

// SeedBefore returns the balance as of the start of a window: opening plus
// every posting dated strictly before start. Postings on or after start are
// ignored, so callers may pass the full history.
func SeedBefore[P Posting](opening decimal.Decimal, start time.Time, postings []P) decimal.Decimal {
	balance := opening
	for _, p := range postings {
		if !p.PostingDate().Before(start) {
			continue
		}
		debit, credit := p.PostingAmounts()
		balance = balance.Add(debit).Sub(credit)
	}
	return balance
}

// Last returns the final balance of a non-empty series.
func Last[P Posting](lines []Line[P]) decimal.Decimal {
	if len(lines) == 0 {
		panic("ledger: Last called on an empty series")
	}
	return lines[len(lines)-1].Balance
}
