package trips

import (
	"context"
	"fmt"
	"strings"

	"github.com/jastipku/jastipku/internal/shared"
)

// Service implements the trip store.
type Service struct {
	repo Repository
}

// NewService constructs the service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a trip. An empty status defaults to planning.
func (s *Service) Create(ctx context.Context, in Input) (string, error) {
	if in.Status == "" {
		in.Status = StatusPlanning
	}
	if !in.Status.Valid() {
		return "", fmt.Errorf("%w: status %q tidak dikenal", shared.ErrValidation, in.Status)
	}
	trip := Trip{
		Title:         strings.TrimSpace(in.Title),
		Route:         strings.TrimSpace(in.Route),
		DepartureDate: strings.TrimSpace(in.DepartureDate),
		ReturnDate:    strings.TrimSpace(in.ReturnDate),
		Status:        in.Status,
		OrderDeadline: strings.TrimSpace(in.OrderDeadline),
		Notes:         strings.TrimSpace(in.Notes),
	}
	if trip.Title == "" {
		return "", fmt.Errorf("%w: judul trip wajib diisi", shared.ErrValidation)
	}
	id, err := s.repo.Create(ctx, trip)
	if err != nil {
		return "", shared.StoreError("Gagal menambahkan trip", err)
	}
	return id, nil
}

// Get loads one trip.
func (s *Service) Get(ctx context.Context, id string) (Trip, error) {
	trip, err := s.repo.Get(ctx, id)
	if err != nil {
		return Trip{}, shared.StoreError("Gagal memuat trip", err)
	}
	return trip, nil
}

// Update merges the supplied fields.
func (s *Service) Update(ctx context.Context, id string, patch Patch) error {
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: status %q tidak dikenal", shared.ErrValidation, *patch.Status)
	}
	fields := patch.fields()
	if len(fields) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return shared.StoreError("Gagal memperbarui trip", err)
	}
	return nil
}

// Delete removes a trip.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return shared.StoreError("Gagal menghapus trip", err)
	}
	return nil
}

// List returns every trip, newest first. A non-empty status filters.
func (s *Service) List(ctx context.Context, status Status) ([]Trip, error) {
	list, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, shared.StoreError("Gagal memuat trip", err)
	}
	return list, nil
}

// HomePageTrips fills up to HomePageLimit trips from upcoming, then
// planning, then completed trips. Each tier is its own query.
func (s *Service) HomePageTrips(ctx context.Context) ([]Trip, error) {
	out := make([]Trip, 0, HomePageLimit)
	for _, status := range homePageTiers {
		remaining := HomePageLimit - len(out)
		if remaining <= 0 {
			break
		}
		tier, err := s.repo.ListByStatus(ctx, status, remaining)
		if err != nil {
			return nil, shared.StoreError("Gagal memuat trip", err)
		}
		out = append(out, tier...)
	}
	return out, nil
}
