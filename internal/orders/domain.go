package orders

import (
	"sort"
	"strings"
	"time"
)

// Collection holds order lines ("period items").
const Collection = "period_items"

// Item is one line of merchandise bought for one customer within a period.
// Prices are in the buyer currency (ItemPrice) and in Rupiah (SellingPrice);
// CostInIDR, Profit and Margin are derived at write time.
type Item struct {
	ID                string    `json:"id"`
	PeriodID          string    `json:"periodId"`
	CustomerName      string    `json:"customerName"`
	ItemName          string    `json:"itemName"`
	ItemPrice         float64   `json:"itemPrice"`
	ExchangeRate      float64   `json:"exchangeRate"`
	SellingPrice      float64   `json:"sellingPrice"`
	CostInIDR         float64   `json:"costInIDR"`
	Profit            float64   `json:"profit"`
	Margin            float64   `json:"margin"`
	IsPaymentReceived bool      `json:"isPaymentReceived"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Pricing is the derived part of an item.
type Pricing struct {
	CostInIDR float64
	Profit    float64
	Margin    float64
}

// Compute derives cost, profit and margin (percent of selling price). The
// margin is 0 when the selling price is not positive.
func Compute(itemPrice, exchangeRate, sellingPrice float64) Pricing {
	cost := itemPrice * exchangeRate
	profit := sellingPrice - cost
	margin := 0.0
	if sellingPrice > 0 {
		margin = profit / sellingPrice * 100
	}
	return Pricing{CostInIDR: cost, Profit: profit, Margin: margin}
}

func (i *Item) applyPricing() {
	p := Compute(i.ItemPrice, i.ExchangeRate, i.SellingPrice)
	i.CostInIDR = p.CostInIDR
	i.Profit = p.Profit
	i.Margin = p.Margin
}

// ItemInput carries the fields of a new item.
type ItemInput struct {
	CustomerName      string
	ItemName          string
	ItemPrice         float64
	ExchangeRate      float64
	SellingPrice      float64
	IsPaymentReceived bool
}

// LineInput is one item of a multi-item customer order.
type LineInput struct {
	ItemName          string
	ItemPrice         float64
	ExchangeRate      float64
	SellingPrice      float64
	IsPaymentReceived bool
}

// CustomerOrder groups several new items under one customer name.
type CustomerOrder struct {
	CustomerName string
	Items        []LineInput
}

// ItemPatch is a partial update. Nil fields keep the stored value.
type ItemPatch struct {
	CustomerName      *string
	ItemName          *string
	ItemPrice         *float64
	ExchangeRate      *float64
	SellingPrice      *float64
	IsPaymentReceived *bool
}

// TouchesPrice reports whether any pricing input is part of the patch.
func (p ItemPatch) TouchesPrice() bool {
	return p.ItemPrice != nil || p.ExchangeRate != nil || p.SellingPrice != nil
}

// IsEmpty reports whether the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return !p.TouchesPrice() && p.CustomerName == nil && p.ItemName == nil && p.IsPaymentReceived == nil
}

// apply merges the patch into current and returns the fields to persist.
// Derived fields are recomputed from the merged values whenever a price
// input is present.
func (p ItemPatch) apply(current Item) (Item, map[string]any) {
	merged := current
	fields := make(map[string]any)
	if p.CustomerName != nil {
		merged.CustomerName = strings.TrimSpace(*p.CustomerName)
		fields["customerName"] = merged.CustomerName
	}
	if p.ItemName != nil {
		merged.ItemName = strings.TrimSpace(*p.ItemName)
		fields["itemName"] = merged.ItemName
	}
	if p.IsPaymentReceived != nil {
		merged.IsPaymentReceived = *p.IsPaymentReceived
		fields["isPaymentReceived"] = merged.IsPaymentReceived
	}
	if !p.TouchesPrice() {
		return merged, fields
	}
	if p.ItemPrice != nil {
		merged.ItemPrice = *p.ItemPrice
	}
	if p.ExchangeRate != nil {
		merged.ExchangeRate = *p.ExchangeRate
	}
	if p.SellingPrice != nil {
		merged.SellingPrice = *p.SellingPrice
	}
	merged.applyPricing()
	fields["itemPrice"] = merged.ItemPrice
	fields["exchangeRate"] = merged.ExchangeRate
	fields["sellingPrice"] = merged.SellingPrice
	fields["costInIDR"] = merged.CostInIDR
	fields["profit"] = merged.Profit
	fields["margin"] = merged.Margin
	return merged, fields
}

// CustomerGroup is the nested view of one customer's items in a period.
type CustomerGroup struct {
	CustomerName string  `json:"customerName"`
	Items        []Item  `json:"items"`
	TotalSelling float64 `json:"totalSelling"`
	TotalCost    float64 `json:"totalCost"`
	TotalProfit  float64 `json:"totalProfit"`
	UnpaidAmount float64 `json:"unpaidAmount"`
	IsFullyPaid  bool    `json:"isFullyPaid"`
}

// GroupByCustomer groups a flat item list by trimmed customer name. Groups are
// sorted by name, case-insensitively; items keep their input order.
func GroupByCustomer(items []Item) []CustomerGroup {
	index := make(map[string]int)
	groups := make([]CustomerGroup, 0)
	for _, item := range items {
		name := strings.TrimSpace(item.CustomerName)
		pos, ok := index[name]
		if !ok {
			pos = len(groups)
			index[name] = pos
			groups = append(groups, CustomerGroup{CustomerName: name, IsFullyPaid: true})
		}
		g := &groups[pos]
		g.Items = append(g.Items, item)
		g.TotalSelling += item.SellingPrice
		g.TotalCost += item.CostInIDR
		g.TotalProfit += item.Profit
		if !item.IsPaymentReceived {
			g.UnpaidAmount += item.SellingPrice
			g.IsFullyPaid = false
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].CustomerName) < strings.ToLower(groups[j].CustomerName)
	})
	return groups
}
