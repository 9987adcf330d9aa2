package ledger

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

// Handler exposes ledger endpoints.
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

// MountRoutes registers ledger routes under /ledger.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/ledger", func(r chi.Router) {
		r.Use(h.rbac.RequireRole(shared.RoleAdmin))
		r.Get("/incomes", h.listIncome)
		r.Post("/incomes", h.createIncome)
		r.Get("/incomes/{id}", h.showIncome)
		r.Patch("/incomes/{id}", h.updateIncome)
		r.Delete("/incomes/{id}", h.deleteIncome)
		r.Get("/expenses", h.listExpenses)
		r.Post("/expenses", h.createExpense)
		r.Get("/expenses/{id}", h.showExpense)
		r.Patch("/expenses/{id}", h.updateExpense)
		r.Delete("/expenses/{id}", h.deleteExpense)
		r.Get("/summary", h.summary)
		r.Get("/top-customers", h.topCustomers)
		r.Get("/categories", h.categories)
	})
}

func periodParam(r *http.Request) (string, error) {
	id := r.URL.Query().Get("periodId")
	if id == "" {
		return "", fmt.Errorf("%w: periodId wajib diisi", shared.ErrValidation)
	}
	return id, nil
}

func (h *Handler) listIncome(w http.ResponseWriter, r *http.Request) {
	periodID, err := periodParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.IncomeByPeriod(r.Context(), periodID)
	if err != nil {
		h.fail(w, "list income", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"incomes": entries})
}

func (h *Handler) showIncome(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetIncome(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get income", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) createIncome(w http.ResponseWriter, r *http.Request) {
	var req IncomeRequest
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
	id, err := h.service.AddIncome(r.Context(), in)
	if err != nil {
		h.fail(w, "add income", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) updateIncome(w http.ResponseWriter, r *http.Request) {
	var req IncomeUpdateRequest
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
	if err := h.service.UpdateIncome(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		h.fail(w, "update income", err)
		return
	}
	h.showIncome(w, r)
}

func (h *Handler) deleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteIncome(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete income", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	periodID, err := periodParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.ExpensesByPeriod(r.Context(), periodID)
	if err != nil {
		h.fail(w, "list expenses", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"expenses": entries})
}

func (h *Handler) showExpense(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
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
	id, err := h.service.AddExpense(r.Context(), in)
	if err != nil {
		h.fail(w, "add expense", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseUpdateRequest
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
	if err := h.service.UpdateExpense(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		h.fail(w, "update expense", err)
		return
	}
	h.showExpense(w, r)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete expense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	periodID, err := periodParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.PeriodSummary(r.Context(), periodID)
	if err != nil {
		h.fail(w, "ledger summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) topCustomers(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.RespondError(w, fmt.Errorf("%w: limit tidak valid", shared.ErrValidation))
			return
		}
		limit = n
	}
	ranking, err := h.service.TopCustomers(r.Context(), limit)
	if err != nil {
		h.fail(w, "top customers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": ranking})
}

func (h *Handler) categories(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": Categories})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
