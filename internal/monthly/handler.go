package monthly

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jastipku/jastipku/internal/platform/httpx"
	"github.com/jastipku/jastipku/internal/rbac"
	"github.com/jastipku/jastipku/internal/shared"
)

const dateLayout = "2006-01-02"

// ExpenseRequest is the JSON body of a new monthly expense.
type ExpenseRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Amount   string `json:"amount" validate:"required,numeric"`
	Category string `json:"category" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
}

// UpdateRequest is a partial update of a monthly expense.
type UpdateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Amount   *string `json:"amount,omitempty" validate:"omitempty,numeric"`
	Category *string `json:"category,omitempty"`
	Date     *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Handler exposes monthly expense endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New(), now: time.Now}
}

// MountRoutes registers monthly expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/monthly-expenses", func(r chi.Router) {
		r.Use(h.rbac.RequireRole(shared.RoleAdmin))
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/summary", h.summary)
		r.Get("/categories", h.categories)
		r.Get("/{id}", h.show)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

// monthParams reads ?year=&month=, defaulting to the current month.
func (h *Handler) monthParams(r *http.Request) (int, time.Month, error) {
	now := h.now()
	year, month := now.Year(), now.Month()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: tahun tidak valid", shared.ErrValidation)
		}
		year = y
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("%w: bulan tidak valid", shared.ErrValidation)
		}
		month = time.Month(m)
	}
	return year, month, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.monthParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	expenses, err := h.service.ListByMonth(r.Context(), year, month)
	if err != nil {
		h.fail(w, "list monthly expenses", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.monthParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.Summary(r.Context(), year, month)
	if err != nil {
		h.fail(w, "monthly summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) categories(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": Categories})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	expense, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get monthly expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	amount, err := shared.ParseAmount(req.Amount)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: tanggal tidak valid", shared.ErrValidation))
		return
	}
	id, err := h.service.Add(r.Context(), Input{Name: req.Name, Amount: amount, Category: req.Category, Date: date})
	if err != nil {
		h.fail(w, "add monthly expense", err)
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
	patch := Patch{Name: req.Name, Category: req.Category}
	var err error
	if patch.Amount, err = shared.ParseOptionalAmount(req.Amount); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: tanggal tidak valid", shared.ErrValidation))
			return
		}
		patch.Date = &date
	}
	id := chi.URLParam(r, "id")
	if err := h.service.Update(r.Context(), id, patch); err != nil {
		h.fail(w, "update monthly expense", err)
		return
	}
	h.show(w, r)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete monthly expense", err)
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
