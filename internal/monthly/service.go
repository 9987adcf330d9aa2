package monthly

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jastipku/jastipku/internal/shared"
)

// Service implements the monthly expense ledger.
type Service struct {
	repo Repository
}

// NewService constructs the service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add stores a new monthly expense.
func (s *Service) Add(ctx context.Context, in Input) (string, error) {
	if _, ok := LookupCategory(in.Category); !ok {
		return "", fmt.Errorf("%w: kategori %q tidak dikenal", shared.ErrValidation, in.Category)
	}
	expense := Expense{
		Name:     strings.TrimSpace(in.Name),
		Amount:   in.Amount,
		Category: in.Category,
		Date:     in.Date,
		Month:    MonthKey(in.Date),
	}
	id, err := s.repo.Create(ctx, expense)
	if err != nil {
		return "", shared.StoreError("Gagal menambahkan pengeluaran bulanan", err)
	}
	return id, nil
}

// Get loads one monthly expense.
func (s *Service) Get(ctx context.Context, id string) (Expense, error) {
	expense, err := s.repo.Get(ctx, id)
	if err != nil {
		return Expense{}, shared.StoreError("Gagal memuat pengeluaran bulanan", err)
	}
	return expense, nil
}

// Update merges the supplied fields.
func (s *Service) Update(ctx context.Context, id string, patch Patch) error {
	if patch.Category != nil {
		if _, ok := LookupCategory(*patch.Category); !ok {
			return fmt.Errorf("%w: kategori %q tidak dikenal", shared.ErrValidation, *patch.Category)
		}
	}
	fields := patch.fields()
	if len(fields) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return shared.StoreError("Gagal memperbarui pengeluaran bulanan", err)
	}
	return nil
}

// Delete removes a monthly expense.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return shared.StoreError("Gagal menghapus pengeluaran bulanan", err)
	}
	return nil
}

// ListByMonth returns the expenses of a calendar month, newest date first.
func (s *Service) ListByMonth(ctx context.Context, year int, month time.Month) ([]Expense, error) {
	key := MonthKey(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	expenses, err := s.repo.ListByMonth(ctx, key)
	if err != nil {
		return nil, shared.StoreError("Gagal memuat pengeluaran bulanan", err)
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
	return expenses, nil
}

// Summary totals a calendar month per category.
func (s *Service) Summary(ctx context.Context, year int, month time.Month) (Summary, error) {
	expenses, err := s.ListByMonth(ctx, year, month)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(MonthKey(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)), expenses), nil
}
