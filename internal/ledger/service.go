package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jastipku/jastipku/internal/shared"
)

// Invalidator is notified after ledger writes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service implements the income and expense stores.
type Service struct {
	repo        Repository
	actors      shared.ActorProvider
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService constructs the service. invalidator may be nil.
func NewService(repo Repository, actors shared.ActorProvider, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, actors: actors, invalidator: invalidator, logger: logger}
}

func (s *Service) actor(ctx context.Context) (shared.Actor, error) {
	if s.actors == nil {
		return shared.Actor{}, shared.NotAuthenticated()
	}
	actor, ok := s.actors.CurrentActor(ctx)
	if !ok {
		return shared.Actor{}, shared.NotAuthenticated()
	}
	return actor, nil
}

// AddIncome records income for a period on behalf of the current actor.
func (s *Service) AddIncome(ctx context.Context, in IncomeInput) (string, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return "", err
	}
	entry := IncomeEntry{
		PeriodID:      in.PeriodID,
		Date:          in.Date,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		IncomeAmount:  in.IncomeAmount,
		Notes:         in.Notes,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
	}
	id, err := s.repo.CreateIncome(ctx, entry)
	if err != nil {
		return "", shared.StoreError("Gagal menambahkan pemasukan", err)
	}
	s.invalidate(ctx)
	return id, nil
}

// UpdateIncome merges the supplied fields.
func (s *Service) UpdateIncome(ctx context.Context, id string, patch IncomePatch) error {
	fields := patch.fields()
	if len(fields) == 0 {
		return nil
	}
	if err := s.repo.UpdateIncome(ctx, id, fields); err != nil {
		return shared.StoreError("Gagal memperbarui pemasukan", err)
	}
	s.invalidate(ctx)
	return nil
}

// DeleteIncome removes an income entry.
func (s *Service) DeleteIncome(ctx context.Context, id string) error {
	if err := s.repo.DeleteIncome(ctx, id); err != nil {
		return shared.StoreError("Gagal menghapus pemasukan", err)
	}
	s.invalidate(ctx)
	return nil
}

// IncomeByPeriod returns the period's income, newest date first.
func (s *Service) IncomeByPeriod(ctx context.Context, periodID string) ([]IncomeEntry, error) {
	entries, err := s.repo.IncomeByPeriod(ctx, periodID)
	if err != nil {
		return nil, shared.StoreError("Gagal memuat pemasukan", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

// AddExpense records an expense and derives its Rupiah total.
func (s *Service) AddExpense(ctx context.Context, in ExpenseInput) (string, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return "", err
	}
	if !ValidCategory(in.Category) {
		return "", fmt.Errorf("%w: kategori %q tidak dikenal", shared.ErrValidation, in.Category)
	}
	entry := ExpenseEntry{
		PeriodID:      in.PeriodID,
		Date:          in.Date,
		ItemName:      strings.TrimSpace(in.ItemName),
		ExpensePrice:  in.ExpensePrice,
		ExchangeRate:  in.ExchangeRate,
		TotalInIDR:    TotalInIDR(in.ExpensePrice, in.ExchangeRate),
		Category:      in.Category,
		Notes:         in.Notes,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
	}
	id, err := s.repo.CreateExpense(ctx, entry)
	if err != nil {
		return "", shared.StoreError("Gagal menambahkan pengeluaran", err)
	}
	s.invalidate(ctx)
	return id, nil
}

// UpdateExpense merges the supplied fields. The Rupiah total is re-derived
// from the merged price and rate only when either is supplied.
func (s *Service) UpdateExpense(ctx context.Context, id string, patch ExpensePatch) error {
	if patch.Category != nil && !ValidCategory(*patch.Category) {
		return fmt.Errorf("%w: kategori %q tidak dikenal", shared.ErrValidation, *patch.Category)
	}
	var current ExpenseEntry
	if patch.TouchesTotal() {
		var err error
		current, err = s.repo.GetExpense(ctx, id)
		if err != nil {
			return shared.StoreError("Gagal memperbarui pengeluaran", err)
		}
	}
	fields := patch.fields(current)
	if len(fields) == 0 {
		return nil
	}
	if err := s.repo.UpdateExpense(ctx, id, fields); err != nil {
		return shared.StoreError("Gagal memperbarui pengeluaran", err)
	}
	s.invalidate(ctx)
	return nil
}

// DeleteExpense removes an expense entry.
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return shared.StoreError("Gagal menghapus pengeluaran", err)
	}
	s.invalidate(ctx)
	return nil
}

// ExpensesByPeriod returns the period's expenses, newest date first.
func (s *Service) ExpensesByPeriod(ctx context.Context, periodID string) ([]ExpenseEntry, error) {
	entries, err := s.repo.ExpensesByPeriod(ctx, periodID)
	if err != nil {
		return nil, shared.StoreError("Gagal memuat pengeluaran", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

// GetExpense loads one expense entry.
func (s *Service) GetExpense(ctx context.Context, id string) (ExpenseEntry, error) {
	entry, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return ExpenseEntry{}, shared.StoreError("Gagal memuat pengeluaran", err)
	}
	return entry, nil
}

// GetIncome loads one income entry.
func (s *Service) GetIncome(ctx context.Context, id string) (IncomeEntry, error) {
	entry, err := s.repo.GetIncome(ctx, id)
	if err != nil {
		return IncomeEntry{}, shared.StoreError("Gagal memuat pemasukan", err)
	}
	return entry, nil
}

// TopCustomers ranks customers by income across every period. limit <= 0
// returns the full ranking.
func (s *Service) TopCustomers(ctx context.Context, limit int) ([]CustomerTotal, error) {
	entries, err := s.repo.AllIncome(ctx)
	if err != nil {
		return nil, shared.StoreError("Gagal memuat pemasukan", err)
	}
	return RankCustomers(entries, limit), nil
}

// RankCustomers groups income by customer name, highest total first.
func RankCustomers(entries []IncomeEntry, limit int) []CustomerTotal {
	index := make(map[string]int)
	totals := make([]CustomerTotal, 0)
	for _, entry := range entries {
		name := strings.TrimSpace(entry.CustomerName)
		if name == "" {
			continue
		}
		pos, ok := index[name]
		if !ok {
			pos = len(totals)
			index[name] = pos
			totals = append(totals, CustomerTotal{CustomerName: name})
		}
		totals[pos].TotalIncome += entry.IncomeAmount
		totals[pos].Entries++
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].TotalIncome != totals[j].TotalIncome {
			return totals[i].TotalIncome > totals[j].TotalIncome
		}
		return totals[i].CustomerName < totals[j].CustomerName
	})
	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals
}

// Totals sums income and expenses across every period.
func (s *Service) Totals(ctx context.Context) (Summary, error) {
	var (
		incomes  []IncomeEntry
		expenses []ExpenseEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = s.repo.AllIncome(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.repo.AllExpenses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, shared.StoreError("Gagal memuat ringkasan keuangan", err)
	}
	return Summarize("", incomes, expenses), nil
}

// PeriodSummary totals income and expenses of a period.
func (s *Service) PeriodSummary(ctx context.Context, periodID string) (Summary, error) {
	var (
		incomes  []IncomeEntry
		expenses []ExpenseEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = s.repo.IncomeByPeriod(gctx, periodID)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.repo.ExpensesByPeriod(gctx, periodID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, shared.StoreError("Gagal memuat ringkasan periode", err)
	}
	return Summarize(periodID, incomes, expenses), nil
}

// Summarize totals already loaded entries.
func Summarize(periodID string, incomes []IncomeEntry, expenses []ExpenseEntry) Summary {
	summary := Summary{PeriodID: periodID, ByCategory: make(map[string]float64, len(Categories))}
	for _, entry := range incomes {
		summary.TotalIncome += entry.IncomeAmount
		summary.IncomeCount++
	}
	for _, entry := range expenses {
		summary.TotalExpense += entry.TotalInIDR
		summary.ByCategory[entry.Category] += entry.TotalInIDR
		summary.ExpenseCount++
	}
	summary.Net = summary.TotalIncome - summary.TotalExpense
	return summary
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("dashboard cache invalidate", slog.Any("error", err))
	}
}
