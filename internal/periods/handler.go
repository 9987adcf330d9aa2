package periods

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jastipku/jastipku/internal/platform/httpx"
	"github.com/jastipku/jastipku/internal/rbac"
	"github.com/jastipku/jastipku/internal/shared"
)

// RefreshQueue schedules background statistic resyncs. An empty period id
// means every period.
type RefreshQueue interface {
	EnqueueRefreshStats(ctx context.Context, periodID string) error
}

// Handler exposes period endpoints.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	aggregator *Aggregator
	queue      RefreshQueue
	rbac       rbac.Middleware
	validator  *validator.Validate
}

// NewHandler constructs the handler. queue may be nil, in which case a full
// resync runs inline.
func NewHandler(logger *slog.Logger, service *Service, aggregator *Aggregator, queue RefreshQueue, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		aggregator: aggregator,
		queue:      queue,
		rbac:       rbac,
		validator:  validator.New(),
	}
}

// MountRoutes registers period routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(shared.RoleAdmin))
		r.Get("/periods", h.list)
		r.Post("/periods", h.create)
		r.Get("/periods/active", h.active)
		r.Get("/periods/with-items", h.listWithItems)
		r.Post("/periods/refresh", h.refreshAll)
		r.Get("/periods/{id}", h.show)
		r.Patch("/periods/{id}", h.update)
		r.Delete("/periods/{id}", h.delete)
		r.Post("/periods/{id}/active", h.toggleActive)
		r.Post("/periods/{id}/refresh", h.refresh)
		r.Post("/periods/{id}/payments", h.paymentStatus)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "list periods", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": list})
}

func (h *Handler) listWithItems(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListWithItems(r.Context())
	if err != nil {
		h.fail(w, "list periods with items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": list})
}

func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	period, err := h.service.Active(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	period, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get period", err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreatePeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	period, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, "create period", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, period)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	period, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, "update period", err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete period", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleActive(w http.ResponseWriter, r *http.Request) {
	var req ToggleActiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.aggregator.TogglePeriodActive(r.Context(), id, req.IsActive); err != nil {
		h.fail(w, "toggle period", err)
		return
	}
	h.show(w, r)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	stats, err := h.aggregator.RefreshPeriodStatistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "refresh period", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) refreshAll(w http.ResponseWriter, r *http.Request) {
	if h.queue != nil {
		if err := h.queue.EnqueueRefreshStats(r.Context(), ""); err != nil {
			h.fail(w, "enqueue refresh", err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"status": "queued"})
		return
	}
	refreshed, err := h.aggregator.RefreshAll(r.Context())
	if err != nil {
		h.fail(w, "refresh periods", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"refreshed": refreshed})
}

func (h *Handler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	var req PaymentStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.aggregator.SetCustomerPaymentStatus(r.Context(), chi.URLParam(r, "id"), req.CustomerName, req.IsPaid)
	if err != nil {
		h.fail(w, "set payment status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": updated})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
