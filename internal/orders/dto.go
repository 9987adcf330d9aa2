package orders

import "github.com/jastipku/jastipku/internal/shared"

// CreateItemRequest is the JSON body for a single item. Amounts arrive as
// numeric strings from the dashboard form.
type CreateItemRequest struct {
	CustomerName      string `json:"customerName" validate:"required,max=120"`
	ItemName          string `json:"itemName" validate:"required,max=200"`
	ItemPrice         string `json:"itemPrice" validate:"required,numeric"`
	ExchangeRate      string `json:"exchangeRate" validate:"required,numeric"`
	SellingPrice      string `json:"sellingPrice" validate:"required,numeric"`
	IsPaymentReceived bool   `json:"isPaymentReceived"`
}

// LineRequest is one item of a customer order.
type LineRequest struct {
	ItemName          string `json:"itemName" validate:"required,max=200"`
	ItemPrice         string `json:"itemPrice" validate:"required,numeric"`
	ExchangeRate      string `json:"exchangeRate" validate:"required,numeric"`
	SellingPrice      string `json:"sellingPrice" validate:"required,numeric"`
	IsPaymentReceived bool   `json:"isPaymentReceived"`
}

// CreateCustomerRequest adds a customer with several items at once.
type CreateCustomerRequest struct {
	CustomerName string        `json:"customerName" validate:"required,max=120"`
	Items        []LineRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateItemRequest is a partial update; omitted fields are kept.
type UpdateItemRequest struct {
	CustomerName      *string `json:"customerName,omitempty" validate:"omitempty,min=1,max=120"`
	ItemName          *string `json:"itemName,omitempty" validate:"omitempty,min=1,max=200"`
	ItemPrice         *string `json:"itemPrice,omitempty" validate:"omitempty,numeric"`
	ExchangeRate      *string `json:"exchangeRate,omitempty" validate:"omitempty,numeric"`
	SellingPrice      *string `json:"sellingPrice,omitempty" validate:"omitempty,numeric"`
	IsPaymentReceived *bool   `json:"isPaymentReceived,omitempty"`
}

func (r CreateItemRequest) toInput() (ItemInput, error) {
	line, err := LineRequest{
		ItemName:          r.ItemName,
		ItemPrice:         r.ItemPrice,
		ExchangeRate:      r.ExchangeRate,
		SellingPrice:      r.SellingPrice,
		IsPaymentReceived: r.IsPaymentReceived,
	}.toLine()
	if err != nil {
		return ItemInput{}, err
	}
	return ItemInput{
		CustomerName:      r.CustomerName,
		ItemName:          line.ItemName,
		ItemPrice:         line.ItemPrice,
		ExchangeRate:      line.ExchangeRate,
		SellingPrice:      line.SellingPrice,
		IsPaymentReceived: line.IsPaymentReceived,
	}, nil
}

func (r LineRequest) toLine() (LineInput, error) {
	price, err := shared.ParseAmount(r.ItemPrice)
	if err != nil {
		return LineInput{}, err
	}
	rate, err := shared.ParseAmount(r.ExchangeRate)
	if err != nil {
		return LineInput{}, err
	}
	selling, err := shared.ParseAmount(r.SellingPrice)
	if err != nil {
		return LineInput{}, err
	}
	return LineInput{
		ItemName:          r.ItemName,
		ItemPrice:         price,
		ExchangeRate:      rate,
		SellingPrice:      selling,
		IsPaymentReceived: r.IsPaymentReceived,
	}, nil
}

func (r CreateCustomerRequest) toOrder() (CustomerOrder, error) {
	order := CustomerOrder{CustomerName: r.CustomerName, Items: make([]LineInput, 0, len(r.Items))}
	for _, line := range r.Items {
		in, err := line.toLine()
		if err != nil {
			return CustomerOrder{}, err
		}
		order.Items = append(order.Items, in)
	}
	return order, nil
}

func (r UpdateItemRequest) toPatch() (ItemPatch, error) {
	patch := ItemPatch{
		CustomerName:      r.CustomerName,
		ItemName:          r.ItemName,
		IsPaymentReceived: r.IsPaymentReceived,
	}
	var err error
	if patch.ItemPrice, err = shared.ParseOptionalAmount(r.ItemPrice); err != nil {
		return ItemPatch{}, err
	}
	if patch.ExchangeRate, err = shared.ParseOptionalAmount(r.ExchangeRate); err != nil {
		return ItemPatch{}, err
	}
	if patch.SellingPrice, err = shared.ParseOptionalAmount(r.SellingPrice); err != nil {
		return ItemPatch{}, err
	}
	return patch, nil
}

// ItemView is an item with its formatted price strings.
type ItemView struct {
	Item
	Display map[string]string `json:"display"`
}

// NewItemView formats the prices of item for display.
func NewItemView(item Item) ItemView {
	return ItemView{Item: item, Display: map[string]string{
		"itemPrice":    shared.FormatYen(item.ItemPrice),
		"costInIDR":    shared.FormatRupiah(item.CostInIDR),
		"sellingPrice": shared.FormatRupiah(item.SellingPrice),
		"profit":       shared.FormatRupiah(item.Profit),
		"margin":       shared.FormatPercent(item.Margin),
	}}
}

func newItemViews(items []Item) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, NewItemView(item))
	}
	return views
}
