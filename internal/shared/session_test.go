package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "jastip_session", "secret", time.Hour, false)
}

func TestSessionRoundTripKeepsActor(t *testing.T) {
	ctx := context.Background()
	sm := newTestSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SignIn(Actor{ID: "u-1", Name: "Sari", Email: "sari@example.com", Role: RoleAdmin})

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)

	actor, ok := ActorFromSession(loaded)
	require.True(t, ok)
	assert.Equal(t, "u-1", actor.ID)
	assert.Equal(t, "Sari", actor.Name)
	assert.True(t, actor.IsAdmin())
}

func TestSessionDestroyClearsCookie(t *testing.T) {
	ctx := context.Background()
	sm := newTestSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("u-1")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), req, sess))

	sm.Destroy(sess)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestCSRFVerify(t *testing.T) {
	ctx := context.Background()
	sm := newTestSessionManager(t)
	csrf := NewCSRFManager("csrf")

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	token, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)

	again, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	require.NoError(t, csrf.VerifyToken(ctx, sess, token))
	require.ErrorIs(t, csrf.VerifyToken(ctx, sess, ""), ErrCSRFTokenMissing)
	require.ErrorIs(t, csrf.VerifyToken(ctx, sess, "forged"), ErrCSRFTokenMismatch)
}

func TestStoreErrorTranslatesPermissionFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{name: "sqlstate", err: &pgconn.PgError{Code: "42501", Message: "denied for table documents"}},
		{name: "message", err: errors.New("Missing or insufficient permissions.")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := StoreError("Gagal menambahkan item", tc.err)
			require.ErrorIs(t, err, ErrPermissionDenied)
			assert.Equal(t, MsgPermissionDenied, err.Error())
		})
	}
}

func TestStoreErrorKeepsOriginalMessage(t *testing.T) {
	cause := errors.New("connection reset")
	err := StoreError("Gagal menambahkan item", fmt.Errorf("insert: %w", cause))
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "Gagal menambahkan item: insert: connection reset", err.Error())
	assert.False(t, errors.Is(err, ErrPermissionDenied))

	// Already translated errors pass through untouched.
	assert.Same(t, err, StoreError("Gagal lagi", err))
	assert.Nil(t, StoreError("Gagal", nil))
}
