// Package periods owns purchasing periods and keeps their rollup statistics
// in line with the order items they contain.
package periods

import (
	"time"

	"github.com/jastipku/jastipku/internal/orders"
)

// Collection holds period documents.
const Collection = "periods"

// DateLayout is the wire format of period dates.
const DateLayout = "2006-01-02"

// Period is one purchasing and shipping cycle.
type Period struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	StartDate     time.Time     `json:"startDate"`
	EndDate       time.Time     `json:"endDate"`
	IsActive      bool          `json:"isActive"`
	TotalProducts int           `json:"totalProducts"`
	TotalRevenue  float64       `json:"totalRevenue"`
	TotalProfit   float64       `json:"totalProfit"`
	TotalUnpaid   float64       `json:"totalUnpaid"`
	AverageMargin float64       `json:"averageMargin"`
	CreatedBy     string        `json:"createdBy,omitempty"`
	Items         []orders.Item `json:"items,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Statistics is the rollup of a period's items.
type Statistics struct {
	TotalProducts int     `json:"totalProducts"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalProfit   float64 `json:"totalProfit"`
	TotalUnpaid   float64 `json:"totalUnpaid"`
	AverageMargin float64 `json:"averageMargin"`
}

// Summarize folds items into statistics. Revenue counts every item, profit
// only paid items and the unpaid total only unpaid items.
func Summarize(items []orders.Item) Statistics {
	var stats Statistics
	for _, item := range items {
		stats.TotalProducts++
		stats.TotalRevenue += item.SellingPrice
		if item.IsPaymentReceived {
			stats.TotalProfit += item.Profit
		} else {
			stats.TotalUnpaid += item.SellingPrice
		}
	}
	if stats.TotalRevenue > 0 {
		stats.AverageMargin = stats.TotalProfit / stats.TotalRevenue * 100
	}
	return stats
}

func (s Statistics) fields() map[string]any {
	return map[string]any{
		"totalProducts": s.TotalProducts,
		"totalRevenue":  s.TotalRevenue,
		"totalProfit":   s.TotalProfit,
		"totalUnpaid":   s.TotalUnpaid,
		"averageMargin": s.AverageMargin,
	}
}

// Statistics returns the stored rollup of the period.
func (p Period) Statistics() Statistics {
	return Statistics{
		TotalProducts: p.TotalProducts,
		TotalRevenue:  p.TotalRevenue,
		TotalProfit:   p.TotalProfit,
		TotalUnpaid:   p.TotalUnpaid,
		AverageMargin: p.AverageMargin,
	}
}

// CreateInput carries the fields of a new period. Rollups start empty.
type CreateInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
}

// Patch is a partial update of the user-editable period fields.
type Patch struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.StartDate == nil && p.EndDate == nil
}

func (p Patch) fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.StartDate != nil {
		fields["startDate"] = normalizeDate(*p.StartDate)
	}
	if p.EndDate != nil {
		fields["endDate"] = normalizeDate(*p.EndDate)
	}
	return fields
}

// normalizeDate truncates to a UTC calendar day so stored dates order
// lexically.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
