package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jastipku/jastipku/internal/app"
	"github.com/jastipku/jastipku/internal/auth"
	"github.com/jastipku/jastipku/internal/dashboard"
	"github.com/jastipku/jastipku/internal/jastipers"
	"github.com/jastipku/jastipku/internal/ledger"
	"github.com/jastipku/jastipku/internal/monthly"
	"github.com/jastipku/jastipku/internal/observability"
	"github.com/jastipku/jastipku/internal/orders"
	"github.com/jastipku/jastipku/internal/periods"
	"github.com/jastipku/jastipku/internal/platform/docstore"
	"github.com/jastipku/jastipku/internal/rbac"
	"github.com/jastipku/jastipku/internal/shared"
	"github.com/jastipku/jastipku/internal/trips"
	"github.com/jastipku/jastipku/jobs"
	_ "github.com/jastipku/jastipku/testing"
)

type tokenTable map[string]auth.Identity

func (t tokenTable) Verify(_ context.Context, idToken string) (auth.Identity, error) {
	if identity, ok := t[idToken]; ok {
		return identity, nil
	}
	return auth.Identity{}, errors.New("unknown token")
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := &app.Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second}
	store := docstore.NewMemory()
	metrics := observability.NewMetrics()
	sessions := shared.NewSessionManager(redisClient, "jastip_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	guard := rbac.Middleware{Logger: logger}
	actors := shared.ContextActors{}
	cache := dashboard.NewCache(redisClient, time.Minute).WithRecorder(metrics)

	verifier := tokenTable{
		"owner":  {Subject: "g-owner", Email: "owner@jastipku.id", Name: "Owner"},
		"member": {Subject: "g-member", Email: "member@jastipku.id", Name: "Member"},
	}
	itemRepo := orders.NewRepository(store)
	periodRepo := periods.NewRepository(store)
	aggregator := periods.NewAggregator(periodRepo, itemRepo, cache, logger)
	periodService := periods.NewService(periodRepo, itemRepo, aggregator, actors, logger)
	ledgerService := ledger.NewService(ledger.NewRepository(store), actors, cache, logger)
	jastiperService := jastipers.NewService(jastipers.NewRepository(store))

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessions,
		CSRFManager:      csrf,
		Metrics:          metrics,
		AuthHandler:      auth.NewHandler(logger, auth.NewService(store, verifier, []string{"owner@jastipku.id"}), sessions, csrf),
		PeriodsHandler:   periods.NewHandler(logger, periodService, aggregator, nil, guard),
		OrdersHandler:    orders.NewHandler(logger, orders.NewService(itemRepo, aggregator), guard),
		LedgerHandler:    ledger.NewHandler(logger, ledgerService, guard),
		MonthlyHandler:   monthly.NewHandler(logger, monthly.NewService(monthly.NewRepository(store)), guard),
		JastipersHandler: jastipers.NewHandler(logger, jastiperService, guard),
		TripsHandler:     trips.NewHandler(logger, trips.NewService(trips.NewRepository(store)), guard),
		DashboardHandler: dashboard.NewHandler(logger, dashboard.NewService(periodService, ledgerService, jastiperService, cache, logger), guard),
		JobHandler:       jobs.NewHandler(nil, logger, guard),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
	csrf string
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (int, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.csrf != "" {
		req.Header.Set(shared.CSRFHeader, c.csrf)
	}
	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	return res.StatusCode, data
}

func (c *client) login(token string) shared.Actor {
	c.t.Helper()
	code, body := c.do(http.MethodPost, "/auth/google", map[string]string{"idToken": token})
	require.Equal(c.t, http.StatusOK, code, string(body))
	var out struct {
		User      shared.Actor `json:"user"`
		CSRFToken string       `json:"csrfToken"`
	}
	require.NoError(c.t, json.Unmarshal(body, &out))
	c.csrf = out.CSRFToken
	return out.User
}

func TestDashboardFlow(t *testing.T) {
	srv := newServer(t)
	admin := newClient(t, srv)

	code, _ := admin.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = admin.do(http.MethodGet, "/periods", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = admin.do(http.MethodPost, "/periods", map[string]any{"name": "Tokyo"})
	assert.Equal(t, http.StatusForbidden, code, "unsafe request without csrf token")

	actor := admin.login("owner")
	assert.Equal(t, shared.RoleAdmin, actor.Role)

	code, body := admin.do(http.MethodPost, "/periods", map[string]any{
		"name": "Tokyo Juni", "startDate": "2025-06-01", "endDate": "2025-06-20", "isActive": true,
	})
	require.Equal(t, http.StatusCreated, code, string(body))
	var period periods.Period
	require.NoError(t, json.Unmarshal(body, &period))
	assert.Equal(t, actor.ID, period.CreatedBy)

	code, body = admin.do(http.MethodPost, "/periods/"+period.ID+"/customers", map[string]any{
		"customerName": "Budi",
		"items": []map[string]any{
			{"itemName": "Kit Kat Matcha", "itemPrice": "1000", "exchangeRate": "105", "sellingPrice": "150000", "isPaymentReceived": true},
			{"itemName": "Tokyo Banana", "itemPrice": "1200", "exchangeRate": "105", "sellingPrice": "160000"},
		},
	})
	require.Equal(t, http.StatusCreated, code, string(body))

	code, body = admin.do(http.MethodPost, "/ledger/incomes", map[string]any{
		"periodId": period.ID, "date": "2025-06-10", "customerName": "Budi", "incomeAmount": "150000",
	})
	require.Equal(t, http.StatusCreated, code, string(body))

	code, body = admin.do(http.MethodGet, "/dashboard/", nil)
	require.Equal(t, http.StatusOK, code, string(body))
	var ov dashboard.Overview
	require.NoError(t, json.Unmarshal(body, &ov))
	assert.Equal(t, 1, ov.PeriodCount)
	assert.Equal(t, 2, ov.TotalProducts)
	assert.Equal(t, 310000.0, ov.TotalRevenue)
	assert.Equal(t, 45000.0, ov.TotalProfit)
	assert.Equal(t, 160000.0, ov.TotalUnpaid)
	assert.Equal(t, 150000.0, ov.TotalIncome)
	require.NotNil(t, ov.ActivePeriod)
	assert.Equal(t, period.ID, ov.ActivePeriod.ID)

	code, _ = admin.do(http.MethodPost, "/periods/"+period.ID+"/payments", map[string]any{"customerName": "Budi", "isPaid": true})
	require.Equal(t, http.StatusOK, code)

	code, body = admin.do(http.MethodGet, "/dashboard/", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &ov))
	assert.Zero(t, ov.TotalUnpaid, "payment update invalidates the cached overview")
	assert.Equal(t, 79000.0, ov.TotalProfit)

	code, _ = admin.do(http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = admin.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMemberCannotReachAdminRoutes(t *testing.T) {
	srv := newServer(t)
	member := newClient(t, srv)
	actor := member.login("member")
	assert.Equal(t, shared.RoleMember, actor.Role)

	code, _ := member.do(http.MethodGet, "/dashboard/", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = member.do(http.MethodGet, "/jobs/health", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := member.do(http.MethodGet, "/trips/home", nil)
	assert.Equal(t, http.StatusOK, code, string(body))
	code, _ = member.do(http.MethodGet, "/jastipers/", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = member.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRejectedLoginKeepsSessionAnonymous(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv)

	code, _ := c.do(http.MethodPost, "/auth/google", map[string]string{"idToken": "forged"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = c.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
