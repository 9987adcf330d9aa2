package jastipers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jastipku/jastipku/internal/platform/httpx"
	"github.com/jastipku/jastipku/internal/rbac"
	"github.com/jastipku/jastipku/internal/shared"
)

// CreateRequest is the JSON body of a new directory record.
type CreateRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	ImageURL     string `json:"imageUrl" validate:"omitempty,url"`
	FacebookLink string `json:"facebookLink" validate:"omitempty,url"`
	PhoneNumber  string `json:"phoneNumber" validate:"max=30"`
	Description  string `json:"description" validate:"max=1000"`
}

// UpdateRequest is a partial update of a directory record.
type UpdateRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	ImageURL        *string  `json:"imageUrl,omitempty" validate:"omitempty,url"`
	FacebookLink    *string  `json:"facebookLink,omitempty" validate:"omitempty,url"`
	PhoneNumber     *string  `json:"phoneNumber,omitempty" validate:"omitempty,max=30"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Rating          *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	TotalOrders     *int     `json:"totalOrders,omitempty" validate:"omitempty,min=0"`
	CompletedOrders *int     `json:"completedOrders,omitempty" validate:"omitempty,min=0"`
}

// VerifyRequest toggles verification.
type VerifyRequest struct {
	IsVerified             bool   `json:"isVerified"`
	VerifiedByFacebookLink string `json:"verifiedByFacebookLink" validate:"omitempty,url"`
}

// Handler exposes directory endpoints. Reads are public.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers directory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/jastipers", func(r chi.Router) {
		r.Get("/", h.search)
		r.Get("/{id}", h.show)
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireRole(shared.RoleAdmin))
			r.Get("/stats", h.stats)
			r.Post("/", h.create)
			r.Patch("/{id}", h.update)
			r.Delete("/{id}", h.delete)
			r.Post("/{id}/verify", h.verify)
		})
	})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := SearchParams{SearchTerm: query.Get("q"), SortBy: query.Get("sort")}
	if raw := query.Get("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: verified harus true atau false", shared.ErrValidation))
			return
		}
		params.IsVerified = &v
	}
	list, err := h.service.Search(r.Context(), params)
	if err != nil {
		h.fail(w, "search jastipers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"jastipers": list})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, "jastiper stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	j, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get jastiper", err)
		return
	}
	httpx.JSON(w, http.StatusOK, j)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := h.service.Create(r.Context(), Input(req))
	if err != nil {
		h.fail(w, "create jastiper", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Update(r.Context(), chi.URLParam(r, "id"), Patch(req)); err != nil {
		h.fail(w, "update jastiper", err)
		return
	}
	h.show(w, r)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.SetVerified(r.Context(), chi.URLParam(r, "id"), req.IsVerified, req.VerifiedByFacebookLink); err != nil {
		h.fail(w, "verify jastiper", err)
		return
	}
	h.show(w, r)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete jastiper", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
