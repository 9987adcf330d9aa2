// Package monthly keeps the calendar-month operating expenses of the
// business. It is unrelated to periods and their expense entries.
package monthly

import (
	"fmt"
	"time"
)

// Collection holds monthly expense documents.
const Collection = "monthly_expenses"

// Category is one entry of the fixed monthly category list.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Categories lists the monthly expense categories.
var Categories = []Category{
	{ID: "operasional", Label: "Operasional"},
	{ID: "pengiriman", Label: "Pengiriman"},
	{ID: "packaging", Label: "Packaging"},
	{ID: "marketing", Label: "Marketing"},
	{ID: "gaji", Label: "Gaji"},
	{ID: "lainnya", Label: "Lainnya"},
}

// LookupCategory finds a category by id.
func LookupCategory(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Expense is one monthly operating cost.
type Expense struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date"`
	Month     string    `json:"month"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MonthKey is the stored month bucket of a date, e.g. "2025-03".
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// Input carries a new monthly expense.
type Input struct {
	Name     string
	Amount   float64
	Category string
	Date     time.Time
}

// Patch is a partial update of a monthly expense.
type Patch struct {
	Name     *string
	Amount   *float64
	Category *string
	Date     *time.Time
}

func (p Patch) fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Amount != nil {
		fields["amount"] = *p.Amount
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Date != nil {
		fields["date"] = *p.Date
		fields["month"] = MonthKey(*p.Date)
	}
	return fields
}

// CategoryTotal is the spend of one category in a month.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    float64  `json:"total"`
	Count    int      `json:"count"`
}

// Summary totals one month.
type Summary struct {
	Month      string          `json:"month"`
	Total      float64         `json:"total"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"byCategory"`
}

// Summarize totals the expenses of a month. Every known category appears in
// list order; unknown ids are folded into "lainnya".
func Summarize(month string, expenses []Expense) Summary {
	summary := Summary{Month: month, ByCategory: make([]CategoryTotal, len(Categories))}
	pos := make(map[string]int, len(Categories))
	for i, c := range Categories {
		summary.ByCategory[i] = CategoryTotal{Category: c}
		pos[c.ID] = i
	}
	for _, e := range expenses {
		i, ok := pos[e.Category]
		if !ok {
			i = pos["lainnya"]
		}
		summary.ByCategory[i].Total += e.Amount
		summary.ByCategory[i].Count++
		summary.Total += e.Amount
		summary.Count++
	}
	return summary
}
