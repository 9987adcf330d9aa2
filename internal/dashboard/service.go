// Package dashboard builds the summary cards of the admin home page.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jastipku/jastipku/internal/jastipers"
	"github.com/jastipku/jastipku/internal/ledger"
	"github.com/jastipku/jastipku/internal/periods"
	"github.com/jastipku/jastipku/internal/shared"
)

const topCustomerLimit = 5

// PeriodSource lists periods with their stored rollups.
type PeriodSource interface {
	List(ctx context.Context) ([]periods.Period, error)
}

// LedgerSource provides income and expense totals.
type LedgerSource interface {
	Totals(ctx context.Context) (ledger.Summary, error)
	TopCustomers(ctx context.Context, limit int) ([]ledger.CustomerTotal, error)
}

// DirectorySource counts directory records.
type DirectorySource interface {
	Stats(ctx context.Context) (jastipers.Stats, error)
}

// PeriodCard summarises one period.
type PeriodCard struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	StartDate  time.Time          `json:"startDate"`
	EndDate    time.Time          `json:"endDate"`
	Statistics periods.Statistics `json:"statistics"`
}

// Overview is the dashboard payload.
type Overview struct {
	PeriodCount   int                    `json:"periodCount"`
	ActivePeriod  *PeriodCard            `json:"activePeriod,omitempty"`
	TotalProducts int                    `json:"totalProducts"`
	TotalRevenue  float64                `json:"totalRevenue"`
	TotalProfit   float64                `json:"totalProfit"`
	TotalUnpaid   float64                `json:"totalUnpaid"`
	AverageMargin float64                `json:"averageMargin"`
	TotalIncome   float64                `json:"totalIncome"`
	TotalExpense  float64                `json:"totalExpense"`
	Net           float64                `json:"net"`
	TopCustomers  []ledger.CustomerTotal `json:"topCustomers"`
	Jastipers     jastipers.Stats        `json:"jastipers"`
	Display       map[string]string      `json:"display"`
	GeneratedAt   time.Time              `json:"generatedAt"`
}

// Service assembles the overview.
type Service struct {
	periods   PeriodSource
	ledger    LedgerSource
	directory DirectorySource
	cache     *Cache
	logger    *slog.Logger
	group     singleflight.Group
	now       func() time.Time
}

// NewService constructs the service. cache may be nil.
func NewService(periods PeriodSource, ledger LedgerSource, directory DirectorySource, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		periods:   periods,
		ledger:    ledger,
		directory: directory,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

// Overview returns the cached overview, building it once per cache version
// even under concurrent requests. The shared build outlives a cancelled
// caller so the other waiters still get a result.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "overview")
	if err != nil {
		s.logger.Warn("dashboard cache version", slog.Any("error", err))
		return s.build(ctx)
	}
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		var ov Overview
		err := s.cache.FetchJSON(detached, key, &ov, func(ctx context.Context) (any, error) {
			return s.build(ctx)
		})
		return ov, err
	})
	select {
	case <-ctx.Done():
		return Overview{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Overview{}, res.Err
		}
		return res.Val.(Overview), nil
	}
}

func (s *Service) build(ctx context.Context) (Overview, error) {
	var (
		list   []periods.Period
		totals ledger.Summary
		top    []ledger.CustomerTotal
		stats  jastipers.Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.periods.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.ledger.Totals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		top, err = s.ledger.TopCustomers(gctx, topCustomerLimit)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.directory.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	ov := Summarize(list, totals)
	ov.TopCustomers = top
	ov.Jastipers = stats
	ov.GeneratedAt = s.now().UTC()
	return ov, nil
}

// Summarize folds stored period rollups and ledger totals into an overview.
func Summarize(list []periods.Period, totals ledger.Summary) Overview {
	ov := Overview{PeriodCount: len(list), TopCustomers: []ledger.CustomerTotal{}}
	for _, p := range list {
		ov.TotalProducts += p.TotalProducts
		ov.TotalRevenue += p.TotalRevenue
		ov.TotalProfit += p.TotalProfit
		ov.TotalUnpaid += p.TotalUnpaid
		if p.IsActive && ov.ActivePeriod == nil {
			ov.ActivePeriod = &PeriodCard{
				ID:         p.ID,
				Name:       p.Name,
				StartDate:  p.StartDate,
				EndDate:    p.EndDate,
				Statistics: p.Statistics(),
			}
		}
	}
	if ov.TotalRevenue > 0 {
		ov.AverageMargin = ov.TotalProfit / ov.TotalRevenue * 100
	}
	ov.TotalIncome = totals.TotalIncome
	ov.TotalExpense = totals.TotalExpense
	ov.Net = totals.TotalIncome - totals.TotalExpense
	ov.Display = map[string]string{
		"totalRevenue":  shared.FormatRupiah(ov.TotalRevenue),
		"totalProfit":   shared.FormatRupiah(ov.TotalProfit),
		"totalUnpaid":   shared.FormatRupiah(ov.TotalUnpaid),
		"totalIncome":   shared.FormatRupiah(ov.TotalIncome),
		"totalExpense":  shared.FormatRupiah(ov.TotalExpense),
		"net":           shared.FormatRupiah(ov.Net),
		"averageMargin": shared.FormatPercent(ov.AverageMargin),
	}
	return ov
}
