package perf

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/jastipku/jastipku/internal/dashboard"
	"github.com/jastipku/jastipku/internal/jastipers"
	"github.com/jastipku/jastipku/internal/ledger"
	"github.com/jastipku/jastipku/internal/orders"
	"github.com/jastipku/jastipku/internal/periods"
	"github.com/jastipku/jastipku/internal/platform/docstore"
	"github.com/jastipku/jastipku/internal/rbac"
	"github.com/jastipku/jastipku/internal/shared"
)

type stack struct {
	store      *docstore.Memory
	aggregator *periods.Aggregator
	periods    *periods.Service
	items      *orders.Service
	dashboard  *dashboard.Service
	cache      *dashboard.Cache
}

func newStack(tb testing.TB) stack {
	tb.Helper()
	mr := miniredis.RunT(tb)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tb.Cleanup(func() { _ = client.Close() })

	store := docstore.NewMemory()
	cache := dashboard.NewCache(client, time.Minute)
	itemRepo := orders.NewRepository(store)
	periodRepo := periods.NewRepository(store)
	aggregator := periods.NewAggregator(periodRepo, itemRepo, cache, nil)
	periodService := periods.NewService(periodRepo, itemRepo, aggregator, nil, nil)
	actors := fixedActor{shared.Actor{ID: "admin", Name: "Admin", Role: shared.RoleAdmin}}
	ledgerService := ledger.NewService(ledger.NewRepository(store), actors, cache, nil)
	return stack{
		store:      store,
		aggregator: aggregator,
		periods:    periodService,
		items:      orders.NewService(itemRepo, aggregator),
		dashboard:  dashboard.NewService(periodService, ledgerService, jastipers.NewService(jastipers.NewRepository(store)), cache, nil),
		cache:      cache,
	}
}

type fixedActor struct{ actor shared.Actor }

func (f fixedActor) CurrentActor(context.Context) (shared.Actor, bool) { return f.actor, true }

// seed creates periodCount periods with itemsPerPeriod items each.
func (s stack) seed(tb testing.TB, periodCount, itemsPerPeriod int) []string {
	tb.Helper()
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]string, 0, periodCount)
	for p := 0; p < periodCount; p++ {
		period, err := s.periods.Create(ctx, periods.CreateInput{
			Name:      fmt.Sprintf("Trip %d", p+1),
			StartDate: start.AddDate(0, p, 0),
			EndDate:   start.AddDate(0, p, 14),
		})
		if err != nil {
			tb.Fatalf("create period: %v", err)
		}
		lines := make([]orders.LineInput, 0, itemsPerPeriod)
		for i := 0; i < itemsPerPeriod; i++ {
			lines = append(lines, orders.LineInput{
				ItemName:          fmt.Sprintf("Item %d", i),
				ItemPrice:         float64(1000 + i*10),
				ExchangeRate:      105,
				SellingPrice:      float64(130000 + i*1000),
				IsPaymentReceived: i%3 != 0,
			})
		}
		if _, err := s.items.AddCustomerWithItems(ctx, period.ID, orders.CustomerOrder{CustomerName: "Budi", Items: lines}); err != nil {
			tb.Fatalf("add items: %v", err)
		}
		ids = append(ids, period.ID)
	}
	return ids
}

func (s stack) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithActor(req.Context(), shared.Actor{ID: "admin", Role: shared.RoleAdmin})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	dashboard.NewHandler(nil, s.dashboard, rbac.Middleware{}).MountRoutes(r)
	return r
}

func TestDashboardLatencyTargets(t *testing.T) {
	s := newStack(t)
	s.seed(t, 6, 25)
	h := s.router()

	sample := func() time.Duration {
		rec := httptest.NewRecorder()
		start := time.Now()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/", nil))
		elapsed := time.Since(start)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		return elapsed
	}

	scenarios := []struct {
		name      string
		prepare   func()
		threshold time.Duration
	}{
		{name: "cached", prepare: func() {}, threshold: 250 * time.Millisecond},
		{name: "cold", prepare: func() {
			if err := s.cache.Bump(context.Background()); err != nil {
				t.Fatalf("bump: %v", err)
			}
		}, threshold: time.Second},
	}

	for _, scenario := range scenarios {
		samples := make([]time.Duration, 0, 20)
		for i := 0; i < 20; i++ {
			scenario.prepare()
			samples = append(samples, sample())
		}
		p95 := percentile95(samples)
		if p95 > scenario.threshold {
			t.Fatalf("%s latency regression: p95=%s threshold=%s", scenario.name, p95, scenario.threshold)
		}
	}
}

func BenchmarkDashboardOverviewCached(b *testing.B) {
	s := newStack(b)
	s.seed(b, 6, 25)
	ctx := context.Background()
	if _, err := s.dashboard.Overview(ctx); err != nil {
		b.Fatalf("warm: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.dashboard.Overview(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDashboardOverviewCold(b *testing.B) {
	s := newStack(b)
	s.seed(b, 6, 25)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.cache.Bump(ctx); err != nil {
			b.Fatal(err)
		}
		if _, err := s.dashboard.Overview(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
