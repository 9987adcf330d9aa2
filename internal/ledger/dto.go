package ledger

import (
	"fmt"
	"time"

	"github.com/jastipku/jastipku/internal/shared"
)

// IncomeRequest is the JSON body of a new income entry.
type IncomeRequest struct {
	PeriodID     string `json:"periodId" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	CustomerName string `json:"customerName" validate:"required,max=120"`
	IncomeAmount string `json:"incomeAmount" validate:"required,numeric"`
	Notes        string `json:"notes" validate:"max=500"`
}

// IncomeUpdateRequest is a partial update of an income entry.
type IncomeUpdateRequest struct {
	Date         *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CustomerName *string `json:"customerName,omitempty" validate:"omitempty,min=1,max=120"`
	IncomeAmount *string `json:"incomeAmount,omitempty" validate:"omitempty,numeric"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ExpenseRequest is the JSON body of a new expense entry.
type ExpenseRequest struct {
	PeriodID     string `json:"periodId" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	ItemName     string `json:"itemName" validate:"required,max=200"`
	ExpensePrice string `json:"expensePrice" validate:"required,numeric"`
	ExchangeRate string `json:"exchangeRate" validate:"required,numeric"`
	Category     string `json:"category" validate:"required,oneof=Transport Makan Akomodasi Operasional Lainnya"`
	Notes        string `json:"notes" validate:"max=500"`
}

// ExpenseUpdateRequest is a partial update of an expense entry.
type ExpenseUpdateRequest struct {
	Date         *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ItemName     *string `json:"itemName,omitempty" validate:"omitempty,min=1,max=200"`
	ExpensePrice *string `json:"expensePrice,omitempty" validate:"omitempty,numeric"`
	ExchangeRate *string `json:"exchangeRate,omitempty" validate:"omitempty,numeric"`
	Category     *string `json:"category,omitempty" validate:"omitempty,oneof=Transport Makan Akomodasi Operasional Lainnya"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r IncomeRequest) toInput() (IncomeInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return IncomeInput{}, err
	}
	amount, err := shared.ParseAmount(r.IncomeAmount)
	if err != nil {
		return IncomeInput{}, err
	}
	return IncomeInput{
		PeriodID:     r.PeriodID,
		Date:         date,
		CustomerName: r.CustomerName,
		IncomeAmount: amount,
		Notes:        r.Notes,
	}, nil
}

func (r IncomeUpdateRequest) toPatch() (IncomePatch, error) {
	patch := IncomePatch{CustomerName: r.CustomerName, Notes: r.Notes}
	var err error
	if patch.Date, err = parseOptionalDate(r.Date); err != nil {
		return IncomePatch{}, err
	}
	if patch.IncomeAmount, err = shared.ParseOptionalAmount(r.IncomeAmount); err != nil {
		return IncomePatch{}, err
	}
	return patch, nil
}

func (r ExpenseRequest) toInput() (ExpenseInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return ExpenseInput{}, err
	}
	price, err := shared.ParseAmount(r.ExpensePrice)
	if err != nil {
		return ExpenseInput{}, err
	}
	rate, err := shared.ParseAmount(r.ExchangeRate)
	if err != nil {
		return ExpenseInput{}, err
	}
	return ExpenseInput{
		PeriodID:     r.PeriodID,
		Date:         date,
		ItemName:     r.ItemName,
		ExpensePrice: price,
		ExchangeRate: rate,
		Category:     r.Category,
		Notes:        r.Notes,
	}, nil
}

func (r ExpenseUpdateRequest) toPatch() (ExpensePatch, error) {
	patch := ExpensePatch{ItemName: r.ItemName, Category: r.Category, Notes: r.Notes}
	var err error
	if patch.Date, err = parseOptionalDate(r.Date); err != nil {
		return ExpensePatch{}, err
	}
	if patch.ExpensePrice, err = shared.ParseOptionalAmount(r.ExpensePrice); err != nil {
		return ExpensePatch{}, err
	}
	if patch.ExchangeRate, err = shared.ParseOptionalAmount(r.ExchangeRate); err != nil {
		return ExpensePatch{}, err
	}
	return patch, nil
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: tanggal %q tidak valid", shared.ErrValidation, raw)
	}
	return t, nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
