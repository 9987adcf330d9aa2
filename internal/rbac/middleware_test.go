package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jastipku/jastipku/internal/shared"
)

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mw := Middleware{}

	cases := []struct {
		name   string
		actor  *shared.Actor
		roles  []string
		status int
	}{
		{name: "anonymous", roles: []string{shared.RoleAdmin}, status: http.StatusUnauthorized},
		{name: "member on admin route", actor: &shared.Actor{ID: "u1", Role: shared.RoleMember}, roles: []string{shared.RoleAdmin}, status: http.StatusForbidden},
		{name: "admin", actor: &shared.Actor{ID: "u2", Role: "Admin"}, roles: []string{shared.RoleAdmin}, status: http.StatusNoContent},
		{name: "any actor", actor: &shared.Actor{ID: "u3", Role: shared.RoleMember}, status: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/periods", nil)
			if tc.actor != nil {
				req = req.WithContext(shared.ContextWithActor(req.Context(), *tc.actor))
			}
			rec := httptest.NewRecorder()
			mw.RequireRole(tc.roles...)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
