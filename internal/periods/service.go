package periods

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jastipku/jastipku/internal/orders"
	"github.com/jastipku/jastipku/internal/shared"
)

// maxParallelLoads bounds the per-period item loads of ListWithItems.
const maxParallelLoads = 8

// Service implements period use cases.
type Service struct {
	repo       Repository
	items      orders.Repository
	aggregator *Aggregator
	actors     shared.ActorProvider
	logger     *slog.Logger
}

// NewService constructs the service.
func NewService(repo Repository, items orders.Repository, aggregator *Aggregator, actors shared.ActorProvider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, items: items, aggregator: aggregator, actors: actors, logger: logger}
}

// Create stores a new period with empty rollups. A period created active
// goes through the activation toggle.
func (s *Service) Create(ctx context.Context, in CreateInput) (Period, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Period{}, fmt.Errorf("%w: nama periode wajib diisi", shared.ErrValidation)
	}
	period := Period{
		Name:      name,
		StartDate: normalizeDate(in.StartDate),
		EndDate:   normalizeDate(in.EndDate),
	}
	if s.actors != nil {
		if actor, ok := s.actors.CurrentActor(ctx); ok {
			period.CreatedBy = actor.ID
		}
	}
	id, err := s.repo.Create(ctx, period)
	if err != nil {
		return Period{}, shared.StoreError("Gagal membuat periode", err)
	}
	if in.IsActive {
		if err := s.aggregator.TogglePeriodActive(ctx, id, true); err != nil {
			return Period{}, err
		}
	}
	return s.Get(ctx, id)
}

// Get loads a period without its items.
func (s *Service) Get(ctx context.Context, id string) (Period, error) {
	period, err := s.repo.Get(ctx, id)
	if err != nil {
		return Period{}, shared.StoreError("Gagal memuat periode", err)
	}
	return period, nil
}

// List returns every period, newest start date first.
func (s *Service) List(ctx context.Context) ([]Period, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, shared.StoreError("Gagal memuat periode", err)
	}
	return list, nil
}

// Active returns the active period or ErrNotFound.
func (s *Service) Active(ctx context.Context) (Period, error) {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return Period{}, shared.StoreError("Gagal memuat periode", err)
	}
	if len(active) == 0 {
		return Period{}, &shared.UserError{Message: "Belum ada periode aktif", Err: ErrNotFound}
	}
	return active[0], nil
}

// Update applies a name or date change.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Period, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Period{}, fmt.Errorf("%w: nama periode wajib diisi", shared.ErrValidation)
		}
		patch.Name = &name
	}
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}
	if err := s.repo.Update(ctx, id, patch.fields()); err != nil {
		return Period{}, shared.StoreError("Gagal memperbarui periode", err)
	}
	return s.Get(ctx, id)
}

// Delete removes the period record only. Its items and ledger entries stay
// in place under the old period id.
func (s *Service) Delete(ctx context.Context, id string) error {
	items, err := s.items.ListByPeriod(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return shared.StoreError("Gagal menghapus periode", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return shared.StoreError("Gagal menghapus periode", err)
	}
	if len(items) > 0 {
		s.logger.Warn("period deleted with items", slog.String("period", id), slog.Int("items", len(items)))
	}
	s.aggregator.invalidate(ctx)
	return nil
}

// ListWithItems returns every period with its items loaded in parallel.
func (s *Service) ListWithItems(ctx context.Context) ([]Period, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i := range list {
		i := i
		g.Go(func() error {
			items, err := s.items.ListByPeriod(gctx, list[i].ID)
			if err != nil {
				return err
			}
			list[i].Items = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, shared.StoreError("Gagal memuat item periode", err)
	}
	return list, nil
}
