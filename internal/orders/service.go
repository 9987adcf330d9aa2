package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jastipku/jastipku/internal/shared"
)

// MsgPeriodNotFound is returned when items target an unknown period.
const MsgPeriodNotFound = "Periode tidak ditemukan"

// StatisticsUpdater recomputes the rollup of a period after its items change.
// PeriodExists is consulted before any item is written.
type StatisticsUpdater interface {
	PeriodExists(ctx context.Context, periodID string) (bool, error)
	UpdatePeriodStatistics(ctx context.Context, periodID string) error
}

// Service implements the order item store.
type Service struct {
	repo  Repository
	stats StatisticsUpdater
}

// NewService constructs the service. stats may be nil in tools that only read.
func NewService(repo Repository, stats StatisticsUpdater) *Service {
	return &Service{repo: repo, stats: stats}
}

// AddItem stores a new item and refreshes the period rollup.
func (s *Service) AddItem(ctx context.Context, periodID string, in ItemInput) (string, error) {
	if err := s.ensurePeriod(ctx, periodID, "Gagal menambahkan item"); err != nil {
		return "", err
	}
	item := newItem(periodID, in.CustomerName, LineInput{
		ItemName:          in.ItemName,
		ItemPrice:         in.ItemPrice,
		ExchangeRate:      in.ExchangeRate,
		SellingPrice:      in.SellingPrice,
		IsPaymentReceived: in.IsPaymentReceived,
	})
	id, err := s.repo.Create(ctx, item)
	if err != nil {
		return "", shared.StoreError("Gagal menambahkan item", err)
	}
	if err := s.refresh(ctx, periodID); err != nil {
		return id, err
	}
	return id, nil
}

// AddCustomerWithItems stores every line of the order under one customer
// name and refreshes the rollup once after all writes.
func (s *Service) AddCustomerWithItems(ctx context.Context, periodID string, order CustomerOrder) ([]string, error) {
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("%w: minimal satu item", shared.ErrValidation)
	}
	if err := s.ensurePeriod(ctx, periodID, "Gagal menambahkan customer"); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(order.Items))
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, line := range order.Items {
			id, err := repo.Create(ctx, newItem(periodID, order.CustomerName, line))
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, shared.StoreError("Gagal menambahkan customer", err)
	}
	if err := s.refresh(ctx, periodID); err != nil {
		return ids, err
	}
	return ids, nil
}

// UpdateItem merges the patch with the freshly loaded item. Cost, profit and
// margin are recomputed from the merged prices when any price is patched.
func (s *Service) UpdateItem(ctx context.Context, itemID string, patch ItemPatch) (Item, error) {
	current, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return Item{}, shared.StoreError("Gagal memperbarui item", err)
	}
	if patch.IsEmpty() {
		return current, nil
	}
	if patch.CustomerName != nil && strings.TrimSpace(*patch.CustomerName) == "" {
		return Item{}, fmt.Errorf("%w: nama customer wajib diisi", shared.ErrValidation)
	}
	_, fields := patch.apply(current)
	if err := s.repo.Update(ctx, itemID, fields); err != nil {
		return Item{}, shared.StoreError("Gagal memperbarui item", err)
	}
	updated, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return Item{}, shared.StoreError("Gagal memperbarui item", err)
	}
	if err := s.refresh(ctx, updated.PeriodID); err != nil {
		return updated, err
	}
	return updated, nil
}

// DeleteItem removes an item. The rollup is refreshed only when the item
// still existed, since its period is unknown otherwise.
func (s *Service) DeleteItem(ctx context.Context, itemID string) error {
	item, err := s.repo.Get(ctx, itemID)
	found := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return shared.StoreError("Gagal menghapus item", err)
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return shared.StoreError("Gagal menghapus item", err)
	}
	if !found {
		return nil
	}
	return s.refresh(ctx, item.PeriodID)
}

// Get loads a single item.
func (s *Service) Get(ctx context.Context, itemID string) (Item, error) {
	item, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return Item{}, shared.StoreError("Gagal memuat item", err)
	}
	return item, nil
}

// ListByPeriod loads all items of a period.
func (s *Service) ListByPeriod(ctx context.Context, periodID string) ([]Item, error) {
	items, err := s.repo.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, shared.StoreError("Gagal memuat item", err)
	}
	return items, nil
}

// CustomersByPeriod returns the period items grouped by customer.
func (s *Service) CustomersByPeriod(ctx context.Context, periodID string) ([]CustomerGroup, error) {
	items, err := s.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	return GroupByCustomer(items), nil
}

func (s *Service) ensurePeriod(ctx context.Context, periodID, prefix string) error {
	if s.stats == nil {
		return nil
	}
	ok, err := s.stats.PeriodExists(ctx, periodID)
	if err != nil {
		return shared.StoreError(prefix, err)
	}
	if !ok {
		return &shared.UserError{Message: MsgPeriodNotFound, Err: ErrNotFound}
	}
	return nil
}

func (s *Service) refresh(ctx context.Context, periodID string) error {
	if s.stats == nil || periodID == "" {
		return nil
	}
	if err := s.stats.UpdatePeriodStatistics(ctx, periodID); err != nil {
		return shared.StoreError("Gagal memperbarui statistik periode", err)
	}
	return nil
}

func newItem(periodID, customerName string, line LineInput) Item {
	item := Item{
		PeriodID:          periodID,
		CustomerName:      strings.TrimSpace(customerName),
		ItemName:          strings.TrimSpace(line.ItemName),
		ItemPrice:         line.ItemPrice,
		ExchangeRate:      line.ExchangeRate,
		SellingPrice:      line.SellingPrice,
		IsPaymentReceived: line.IsPaymentReceived,
	}
	item.applyPricing()
	return item
}
