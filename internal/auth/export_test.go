package auth

import "net/http"

// HandleGoogleForTest exposes the Google login handler to tests.
func (h *Handler) HandleGoogleForTest(w http.ResponseWriter, r *http.Request) {
	h.handleGoogle(w, r)
}

// HandleLogoutForTest exposes the logout handler to tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}

// HandleMeForTest exposes the profile handler to tests.
func (h *Handler) HandleMeForTest(w http.ResponseWriter, r *http.Request) {
	h.handleMe(w, r)
}
