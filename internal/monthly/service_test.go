package monthly

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jastipku/jastipku/internal/platform/docstore"
	"github.com/jastipku/jastipku/internal/rbac"
	"github.com/jastipku/jastipku/internal/shared"
)

func TestMonthlyLedger(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewRepository(docstore.NewMemory()))

	add := func(name string, amount float64, category string, date time.Time) string {
		t.Helper()
		id, err := svc.Add(ctx, Input{Name: name, Amount: amount, Category: category, Date: date})
		require.NoError(t, err)
		return id
	}
	add("Sewa gudang", 1500000, "operasional", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	add("JNE", 250000, "pengiriman", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	lakban := add("Lakban", 50000, "packaging", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	add("Iklan", 300000, "marketing", time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC))

	march, err := svc.ListByMonth(ctx, 2025, time.March)
	require.NoError(t, err)
	require.Len(t, march, 3)
	assert.Equal(t, "JNE", march[0].Name)
	assert.Equal(t, "Sewa gudang", march[2].Name)

	summary, err := svc.Summary(ctx, 2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, "2025-03", summary.Month)
	assert.Equal(t, 1800000.0, summary.Total)
	assert.Equal(t, 3, summary.Count)
	require.Len(t, summary.ByCategory, len(Categories))
	assert.Equal(t, "operasional", summary.ByCategory[0].Category.ID)
	assert.Equal(t, 1500000.0, summary.ByCategory[0].Total)
	assert.Equal(t, 0.0, summary.ByCategory[3].Total)

	april := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Update(ctx, lakban, Patch{Date: &april}))
	april25, err := svc.ListByMonth(ctx, 2025, time.April)
	require.NoError(t, err)
	assert.Len(t, april25, 2)

	bad := "Transport"
	require.ErrorIs(t, svc.Update(ctx, lakban, Patch{Category: &bad}), shared.ErrValidation)
	_, err = svc.Add(ctx, Input{Name: "x", Category: "Makan"})
	require.ErrorIs(t, err, shared.ErrValidation)

	require.NoError(t, svc.Delete(ctx, lakban))
	_, err = svc.Get(ctx, lakban)
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestMonthlyHandlerDefaultsToCurrentMonth(t *testing.T) {
	svc := NewService(NewRepository(docstore.NewMemory()))
	_, err := svc.Add(context.Background(), Input{Name: "Gaji admin", Amount: 2000000, Category: "gaji", Date: time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	h := NewHandler(nil, svc, rbac.Middleware{})
	h.now = func() time.Time { return time.Date(2025, 7, 30, 12, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	h.MountRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/monthly-expenses/summary", nil)
	req = req.WithContext(shared.ContextWithActor(req.Context(), shared.Actor{ID: "u1", Role: shared.RoleAdmin}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.Contains(rec.Body.String(), `"month":"2025-07"`))
	assert.True(t, strings.Contains(rec.Body.String(), `"total":2000000`))

	req = httptest.NewRequest(http.MethodGet, "/monthly-expenses/?month=13", nil)
	req = req.WithContext(shared.ContextWithActor(req.Context(), shared.Actor{ID: "u1", Role: shared.RoleAdmin}))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
