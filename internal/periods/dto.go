package periods

import (
	"fmt"
	"time"

	"github.com/jastipku/jastipku/internal/shared"
)

// CreatePeriodRequest is the JSON body for a new period.
type CreatePeriodRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	IsActive  bool   `json:"isActive"`
}

// UpdatePeriodRequest is a partial update of name or dates.
type UpdatePeriodRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	StartDate *string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ToggleActiveRequest switches the active flag.
type ToggleActiveRequest struct {
	IsActive bool `json:"isActive"`
}

// PaymentStatusRequest marks a customer's whole order as paid or unpaid.
type PaymentStatusRequest struct {
	CustomerName string `json:"customerName" validate:"required"`
	IsPaid       bool   `json:"isPaid"`
}

func (r CreatePeriodRequest) toInput() (CreateInput, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return CreateInput{}, err
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return CreateInput{}, err
	}
	return CreateInput{Name: r.Name, StartDate: start, EndDate: end, IsActive: r.IsActive}, nil
}

func (r UpdatePeriodRequest) toPatch() (Patch, error) {
	patch := Patch{Name: r.Name}
	if r.StartDate != nil {
		start, err := parseDate(*r.StartDate)
		if err != nil {
			return Patch{}, err
		}
		patch.StartDate = &start
	}
	if r.EndDate != nil {
		end, err := parseDate(*r.EndDate)
		if err != nil {
			return Patch{}, err
		}
		patch.EndDate = &end
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
