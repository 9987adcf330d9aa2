// Package ledger stores the per-period income and expense entries.
package ledger

import (
	"time"
)

// Collections used by the ledger.
const (
	IncomeCollection  = "income_entries"
	ExpenseCollection = "expense_entries"
)

// DateLayout is the wire format of entry dates.
const DateLayout = "2006-01-02"

// Expense categories of period expenses.
const (
	CategoryTransport   = "Transport"
	CategoryMakan       = "Makan"
	CategoryAkomodasi   = "Akomodasi"
	CategoryOperasional = "Operasional"
	CategoryLainnya     = "Lainnya"
)

// Categories lists the valid expense categories in display order.
var Categories = []string{
	CategoryTransport,
	CategoryMakan,
	CategoryAkomodasi,
	CategoryOperasional,
	CategoryLainnya,
}

// ValidCategory reports whether c is a known expense category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IncomeEntry is money received in a period, already in Rupiah.
type IncomeEntry struct {
	ID            string    `json:"id"`
	PeriodID      string    `json:"periodId"`
	Date          time.Time `json:"date"`
	CustomerName  string    `json:"customerName"`
	IncomeAmount  float64   `json:"incomeAmount"`
	Notes         string    `json:"notes"`
	CreatedBy     string    `json:"createdBy"`
	CreatedByName string    `json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ExpenseEntry is money spent in a period. ExpensePrice is in the buyer
// currency; TotalInIDR is derived from it and the exchange rate.
type ExpenseEntry struct {
	ID            string    `json:"id"`
	PeriodID      string    `json:"periodId"`
	Date          time.Time `json:"date"`
	ItemName      string    `json:"itemName"`
	ExpensePrice  float64   `json:"expensePrice"`
	ExchangeRate  float64   `json:"exchangeRate"`
	TotalInIDR    float64   `json:"totalInIDR"`
	Category      string    `json:"category"`
	Notes         string    `json:"notes"`
	CreatedBy     string    `json:"createdBy"`
	CreatedByName string    `json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TotalInIDR converts an expense to Rupiah.
func TotalInIDR(expensePrice, exchangeRate float64) float64 {
	return expensePrice * exchangeRate
}

// IncomeInput carries a new income entry.
type IncomeInput struct {
	PeriodID     string
	Date         time.Time
	CustomerName string
	IncomeAmount float64
	Notes        string
}

// ExpenseInput carries a new expense entry.
type ExpenseInput struct {
	PeriodID     string
	Date         time.Time
	ItemName     string
	ExpensePrice float64
	ExchangeRate float64
	Category     string
	Notes        string
}

// IncomePatch is a partial update of an income entry.
type IncomePatch struct {
	Date         *time.Time
	CustomerName *string
	IncomeAmount *float64
	Notes        *string
}

func (p IncomePatch) fields() map[string]any {
	fields := make(map[string]any)
	if p.Date != nil {
		fields["date"] = *p.Date
	}
	if p.CustomerName != nil {
		fields["customerName"] = *p.CustomerName
	}
	if p.IncomeAmount != nil {
		fields["incomeAmount"] = *p.IncomeAmount
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	return fields
}

// ExpensePatch is a partial update of an expense entry.
type ExpensePatch struct {
	Date         *time.Time
	ItemName     *string
	ExpensePrice *float64
	ExchangeRate *float64
	Category     *string
	Notes        *string
}

// TouchesTotal reports whether the Rupiah total must be re-derived.
func (p ExpensePatch) TouchesTotal() bool {
	return p.ExpensePrice != nil || p.ExchangeRate != nil
}

// fields returns the document changes. current is only consulted when the
// patch touches price or rate.
func (p ExpensePatch) fields(current ExpenseEntry) map[string]any {
	fields := make(map[string]any)
	if p.Date != nil {
		fields["date"] = *p.Date
	}
	if p.ItemName != nil {
		fields["itemName"] = *p.ItemName
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	if !p.TouchesTotal() {
		return fields
	}
	price, rate := current.ExpensePrice, current.ExchangeRate
	if p.ExpensePrice != nil {
		price = *p.ExpensePrice
		fields["expensePrice"] = price
	}
	if p.ExchangeRate != nil {
		rate = *p.ExchangeRate
		fields["exchangeRate"] = rate
	}
	fields["totalInIDR"] = TotalInIDR(price, rate)
	return fields
}

// CustomerTotal is one row of the top customers ranking.
type CustomerTotal struct {
	CustomerName string  `json:"customerName"`
	TotalIncome  float64 `json:"totalIncome"`
	Entries      int     `json:"entries"`
}

// Summary totals the ledger of one period.
type Summary struct {
	PeriodID     string             `json:"periodId"`
	TotalIncome  float64            `json:"totalIncome"`
	TotalExpense float64            `json:"totalExpense"`
	Net          float64            `json:"net"`
	IncomeCount  int                `json:"incomeCount"`
	ExpenseCount int                `json:"expenseCount"`
	ByCategory   map[string]float64 `json:"byCategory"`
}
