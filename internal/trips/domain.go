// Package trips schedules departure trips shown on the public home page.
package trips

import (
	"strings"
	"time"
)

// Collection holds departure trip documents.
const Collection = "departure_trips"

// Status of a trip.
type Status string

// Trip statuses.
const (
	StatusUpcoming  Status = "upcoming"
	StatusPlanning  Status = "planning"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusPlanning, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// HomePageLimit is the number of trips shown on the home page.
const HomePageLimit = 3

// homePageTiers is the fallback order of the home page.
var homePageTiers = []Status{StatusUpcoming, StatusPlanning, StatusCompleted}

// Trip is a scheduled departure. Dates are free-form display strings.
type Trip struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Route         string    `json:"route"`
	DepartureDate string    `json:"departureDate"`
	ReturnDate    string    `json:"returnDate"`
	Status        Status    `json:"status"`
	OrderDeadline string    `json:"orderDeadline,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Input carries a new trip.
type Input struct {
	Title         string
	Route         string
	DepartureDate string
	ReturnDate    string
	Status        Status
	OrderDeadline string
	Notes         string
}

// Patch is a partial update of a trip.
type Patch struct {
	Title         *string
	Route         *string
	DepartureDate *string
	ReturnDate    *string
	Status        *Status
	OrderDeadline *string
	Notes         *string
}

func (p Patch) fields() map[string]any {
	fields := make(map[string]any)
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = strings.TrimSpace(*v)
		}
	}
	set("title", p.Title)
	set("route", p.Route)
	set("departureDate", p.DepartureDate)
	set("returnDate", p.ReturnDate)
	set("orderDeadline", p.OrderDeadline)
	set("notes", p.Notes)
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	return fields
}
