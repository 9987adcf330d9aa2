package periods

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jastipku/jastipku/internal/orders"
	"github.com/jastipku/jastipku/internal/platform/docstore"
	"github.com/jastipku/jastipku/internal/shared"
)

type fixture struct {
	store      docstore.Store
	repo       Repository
	items      orders.Repository
	aggregator *Aggregator
	orders     *orders.Service
	service    *Service
	bumps      *countingInvalidator
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.n++
	return nil
}

func newFixture(t *testing.T, store docstore.Store) fixture {
	t.Helper()
	if store == nil {
		store = docstore.NewMemory()
	}
	repo := NewRepository(store)
	items := orders.NewRepository(store)
	bumps := &countingInvalidator{}
	agg := NewAggregator(repo, items, bumps, nil)
	return fixture{
		store:      store,
		repo:       repo,
		items:      items,
		aggregator: agg,
		orders:     orders.NewService(items, agg),
		service:    NewService(repo, items, agg, shared.ContextActors{}, nil),
		bumps:      bumps,
	}
}

func (f fixture) period(t *testing.T, name string, start time.Time) Period {
	t.Helper()
	p, err := f.service.Create(context.Background(), CreateInput{Name: name, StartDate: start, EndDate: start.AddDate(0, 0, 14)})
	require.NoError(t, err)
	return p
}

func TestSummarize(t *testing.T) {
	items := []orders.Item{
		{SellingPrice: 150000, Profit: 40000, IsPaymentReceived: true},
		{SellingPrice: 100000, Profit: 30000},
		{SellingPrice: 50000, Profit: -5000, IsPaymentReceived: true},
	}
	stats := Summarize(items)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 300000.0, stats.TotalRevenue)
	assert.Equal(t, 35000.0, stats.TotalProfit)
	assert.Equal(t, 100000.0, stats.TotalUnpaid)
	assert.InDelta(t, 35000.0/300000*100, stats.AverageMargin, 1e-9)

	assert.Equal(t, Statistics{}, Summarize(nil))
}

func TestUpdatePeriodStatisticsPersistsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p := f.period(t, "Tokyo Maret", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	_, err := f.orders.AddItem(ctx, p.ID, orders.ItemInput{CustomerName: "Budi", ItemName: "Tas", ItemPrice: 1000, ExchangeRate: 110, SellingPrice: 150000, IsPaymentReceived: true})
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, p.ID, orders.ItemInput{CustomerName: "Ani", ItemName: "Kitkat", ItemPrice: 500, ExchangeRate: 110, SellingPrice: 80000})
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, "other", orders.ItemInput{CustomerName: "Ani", ItemName: "Royce", SellingPrice: 999})
	require.Error(t, err, "refreshing an unknown period fails")

	first, err := f.aggregator.RefreshPeriodStatistics(ctx, p.ID)
	require.NoError(t, err)
	second, err := f.aggregator.RefreshPeriodStatistics(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 2, first.TotalProducts)
	assert.Equal(t, 230000.0, first.TotalRevenue)
	assert.Equal(t, 40000.0, first.TotalProfit)
	assert.Equal(t, 80000.0, first.TotalUnpaid)
	assert.InDelta(t, 40000.0/230000*100, first.AverageMargin, 1e-9)

	stored, err := f.service.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first, stored.Statistics())
	assert.Positive(t, f.bumps.n)
}

func TestItemLifecycleMovesRollups(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p := f.period(t, "Osaka", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	id, err := f.orders.AddItem(ctx, p.ID, orders.ItemInput{CustomerName: "Budi", ItemName: "Tas", ItemPrice: 1000, ExchangeRate: 110, SellingPrice: 150000})
	require.NoError(t, err)
	item, err := f.orders.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 110000.0, item.CostInIDR)
	assert.Equal(t, 40000.0, item.Profit)
	assert.InDelta(t, 26.7, item.Margin, 0.05)

	before, err := f.service.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, before.TotalProfit)
	assert.Equal(t, 150000.0, before.TotalUnpaid)

	paid := true
	_, err = f.orders.UpdateItem(ctx, id, orders.ItemPatch{IsPaymentReceived: &paid})
	require.NoError(t, err)
	afterPaid, err := f.service.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before.TotalProfit+40000, afterPaid.TotalProfit)
	assert.Equal(t, before.TotalRevenue, afterPaid.TotalRevenue)
	assert.Equal(t, 0.0, afterPaid.TotalUnpaid)

	require.NoError(t, f.orders.DeleteItem(ctx, id))
	afterDelete, err := f.service.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, afterPaid.TotalProducts-1, afterDelete.TotalProducts)
	assert.Equal(t, afterPaid.TotalRevenue-150000, afterDelete.TotalRevenue)
	assert.Equal(t, afterPaid.TotalProfit-40000, afterDelete.TotalProfit)
	assert.Equal(t, 0.0, afterDelete.AverageMargin)
}

func TestTogglePeriodActiveLeavesOneActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := f.period(t, "A", base)
	b := f.period(t, "B", base.AddDate(0, 1, 0))
	c, err := f.service.Create(ctx, CreateInput{Name: "C", StartDate: base.AddDate(0, 2, 0), EndDate: base.AddDate(0, 3, 0), IsActive: true})
	require.NoError(t, err)
	require.True(t, c.IsActive)

	// Force a second active period to prove activation repairs the state.
	require.NoError(t, f.repo.Update(ctx, a.ID, map[string]any{"isActive": true}))

	require.NoError(t, f.aggregator.TogglePeriodActive(ctx, b.ID, true))
	active, err := f.repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)

	got, err := f.service.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	require.NoError(t, f.aggregator.TogglePeriodActive(ctx, b.ID, false))
	_, err = f.service.Active(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	err = f.aggregator.TogglePeriodActive(ctx, "missing", true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetCustomerPaymentStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p := f.period(t, "Tokyo", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	_, err := f.orders.AddCustomerWithItems(ctx, p.ID, orders.CustomerOrder{
		CustomerName: "Budi",
		Items: []orders.LineInput{
			{ItemName: "Tas", ItemPrice: 1000, ExchangeRate: 110, SellingPrice: 150000},
			{ItemName: "Dompet", ItemPrice: 300, ExchangeRate: 110, SellingPrice: 50000},
		},
	})
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, p.ID, orders.ItemInput{CustomerName: "budi", ItemName: "Topi", ItemPrice: 100, ExchangeRate: 110, SellingPrice: 20000})
	require.NoError(t, err)

	updated, err := f.aggregator.SetCustomerPaymentStatus(ctx, p.ID, "Budi", true)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	items, err := f.items.ListByPeriod(ctx, p.ID)
	require.NoError(t, err)
	for _, item := range items {
		assert.Equal(t, item.CustomerName == "Budi", item.IsPaymentReceived, item.ItemName)
	}

	stored, err := f.service.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 40000.0+17000.0, stored.TotalProfit)
	assert.Equal(t, 20000.0, stored.TotalUnpaid)
}

func TestSetCustomerPaymentStatusMatchesTrimmedNames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p := f.period(t, "Nagoya", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	first, err := f.orders.AddItem(ctx, p.ID, orders.ItemInput{CustomerName: "Budi", ItemName: "Tas", ItemPrice: 1000, ExchangeRate: 110, SellingPrice: 150000})
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, p.ID, orders.ItemInput{CustomerName: "Budi", ItemName: "Topi", ItemPrice: 100, ExchangeRate: 110, SellingPrice: 20000})
	require.NoError(t, err)

	padded := " Budi "
	_, err = f.orders.UpdateItem(ctx, first, orders.ItemPatch{CustomerName: &padded})
	require.NoError(t, err)

	// A legacy record written before names were normalised.
	_, err = f.items.Create(ctx, orders.Item{PeriodID: p.ID, CustomerName: "Budi  ", ItemName: "Syal", SellingPrice: 30000})
	require.NoError(t, err)

	groups, err := f.orders.CustomersByPeriod(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Budi", groups[0].CustomerName)
	assert.Len(t, groups[0].Items, 3)

	updated, err := f.aggregator.SetCustomerPaymentStatus(ctx, p.ID, "  Budi", true)
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	stored, err := f.service.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.TotalUnpaid)

	_, err = f.aggregator.SetCustomerPaymentStatus(ctx, p.ID, "   ", true)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAddItemToMissingPeriodLeavesNoItems(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	f := newFixture(t, mem)
	p := f.period(t, "Kyoto", time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	_, err := f.orders.AddItem(ctx, p.ID, orders.ItemInput{CustomerName: "Budi", ItemName: "Tas", SellingPrice: 10})
	require.NoError(t, err)

	_, err = f.orders.AddItem(ctx, "missing", orders.ItemInput{CustomerName: "Budi", ItemName: "Tas", SellingPrice: 10})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.orders.AddCustomerWithItems(ctx, "missing", orders.CustomerOrder{
		CustomerName: "Sari",
		Items:        []orders.LineInput{{ItemName: "Kitkat"}},
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, mem.Count(orders.Collection))

	ok, err := f.aggregator.PeriodExists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

type flakyStore struct {
	docstore.Store
	failAfter int
	updates   *int
}

func (f flakyStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	*f.updates++
	if *f.updates > f.failAfter {
		return errors.New("write failed")
	}
	return f.Store.Update(ctx, collection, id, fields)
}

func (f flakyStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx docstore.Store) error) error {
	return f.Store.RunInTx(ctx, func(ctx context.Context, tx docstore.Store) error {
		return fn(ctx, flakyStore{Store: tx, failAfter: f.failAfter, updates: f.updates})
	})
}

func TestSetCustomerPaymentStatusIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	seed := newFixture(t, mem)
	p := seed.period(t, "Tokyo", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	_, err := seed.orders.AddCustomerWithItems(ctx, p.ID, orders.CustomerOrder{
		CustomerName: "Budi",
		Items: []orders.LineInput{
			{ItemName: "Tas", SellingPrice: 100},
			{ItemName: "Dompet", SellingPrice: 50},
		},
	})
	require.NoError(t, err)

	updates := 0
	f := newFixture(t, flakyStore{Store: mem, failAfter: 1, updates: &updates})
	_, err = f.aggregator.SetCustomerPaymentStatus(ctx, p.ID, "Budi", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gagal memperbarui status pembayaran")

	items, err := seed.items.ListByPeriod(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.False(t, item.IsPaymentReceived)
	}
}

func TestRefreshAllCountsPeriods(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p1 := f.period(t, "A", base)
	f.period(t, "B", base.AddDate(0, 1, 0))
	_, err := f.items.Create(ctx, orders.Item{PeriodID: p1.ID, CustomerName: "X", SellingPrice: 10})
	require.NoError(t, err)

	n, err := f.aggregator.RefreshAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := f.service.Get(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalProducts)
	assert.Equal(t, 10.0, got.TotalUnpaid)
}
