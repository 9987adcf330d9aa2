package periods

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jastipku/jastipku/internal/orders"
	"github.com/jastipku/jastipku/internal/shared"
)

// Invalidator is notified after rollups or the active period change.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Aggregator recomputes period rollups from the stored items and performs the
// multi-record period writes.
type Aggregator struct {
	periods     Repository
	items       orders.Repository
	invalidator Invalidator
	logger      *slog.Logger
}

// NewAggregator constructs the aggregator. invalidator may be nil.
func NewAggregator(periods Repository, items orders.Repository, invalidator Invalidator, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{periods: periods, items: items, invalidator: invalidator, logger: logger}
}

// UpdatePeriodStatistics rescans every item of the period and persists the
// five rollup fields. It satisfies orders.StatisticsUpdater.
func (a *Aggregator) UpdatePeriodStatistics(ctx context.Context, periodID string) error {
	_, err := a.recompute(ctx, periodID)
	return err
}

// PeriodExists reports whether the period record is stored. It satisfies
// orders.StatisticsUpdater.
func (a *Aggregator) PeriodExists(ctx context.Context, periodID string) (bool, error) {
	if periodID == "" {
		return false, nil
	}
	_, err := a.periods.Get(ctx, periodID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// RefreshPeriodStatistics is the operator-triggered resync. It returns the
// values that were persisted.
func (a *Aggregator) RefreshPeriodStatistics(ctx context.Context, periodID string) (Statistics, error) {
	stats, err := a.recompute(ctx, periodID)
	if err != nil {
		return Statistics{}, shared.StoreError("Gagal memperbarui statistik periode", err)
	}
	return stats, nil
}

// RefreshAll resyncs every period and reports how many succeeded. Failures
// do not stop the pass; they are joined into the returned error.
func (a *Aggregator) RefreshAll(ctx context.Context) (int, error) {
	list, err := a.periods.List(ctx)
	if err != nil {
		return 0, shared.StoreError("Gagal memuat periode", err)
	}
	var errs []error
	refreshed := 0
	for _, period := range list {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := a.recompute(ctx, period.ID); err != nil {
			errs = append(errs, fmt.Errorf("period %s: %w", period.ID, err))
			continue
		}
		refreshed++
	}
	return refreshed, errors.Join(errs...)
}

func (a *Aggregator) recompute(ctx context.Context, periodID string) (Statistics, error) {
	items, err := a.items.ListByPeriod(ctx, periodID)
	if err != nil {
		return Statistics{}, err
	}
	stats := Summarize(items)
	if err := a.periods.Update(ctx, periodID, stats.fields()); err != nil {
		return Statistics{}, err
	}
	a.logger.Debug("period statistics updated",
		slog.String("period", periodID),
		slog.Int("items", stats.TotalProducts),
		slog.Float64("revenue", stats.TotalRevenue))
	a.invalidate(ctx)
	return stats, nil
}

// TogglePeriodActive activates or deactivates a period. Activation clears
// the flag on every other period in the same transaction, so at most one
// period is active afterwards.
func (a *Aggregator) TogglePeriodActive(ctx context.Context, periodID string, isActive bool) error {
	err := a.periods.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := repo.Get(ctx, periodID); err != nil {
			return err
		}
		if isActive {
			active, err := repo.ListActive(ctx)
			if err != nil {
				return err
			}
			for _, other := range active {
				if other.ID == periodID {
					continue
				}
				if err := repo.Update(ctx, other.ID, map[string]any{"isActive": false}); err != nil {
					return err
				}
			}
		}
		return repo.Update(ctx, periodID, map[string]any{"isActive": isActive})
	})
	if err != nil {
		return shared.StoreError("Gagal mengubah status periode", err)
	}
	a.logger.Info("period active toggled", slog.String("period", periodID), slog.Bool("active", isActive))
	a.invalidate(ctx)
	return nil
}

// SetCustomerPaymentStatus marks every item of the customer in the period as
// paid or unpaid in one transaction, then refreshes the rollup once. It
// returns the number of items touched. Names are compared after trimming.
func (a *Aggregator) SetCustomerPaymentStatus(ctx context.Context, periodID, customerName string, isPaid bool) (int, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return 0, fmt.Errorf("%w: nama customer wajib diisi", shared.ErrValidation)
	}
	updated := 0
	err := a.items.WithTx(ctx, func(ctx context.Context, repo orders.Repository) error {
		items, err := repo.ListByPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if strings.TrimSpace(item.CustomerName) != customerName {
				continue
			}
			if err := repo.Update(ctx, item.ID, map[string]any{"isPaymentReceived": isPaid}); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, shared.StoreError("Gagal memperbarui status pembayaran", err)
	}
	if _, err := a.recompute(ctx, periodID); err != nil {
		return updated, shared.StoreError("Gagal memperbarui statistik periode", err)
	}
	return updated, nil
}

func (a *Aggregator) invalidate(ctx context.Context) {
	if a.invalidator == nil {
		return
	}
	if err := a.invalidator.Invalidate(ctx); err != nil {
		a.logger.Warn("dashboard cache invalidate", slog.Any("error", err))
	}
}
