package trips

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jastipku/jastipku/internal/platform/httpx"
	"github.com/jastipku/jastipku/internal/rbac"
	"github.com/jastipku/jastipku/internal/shared"
)

// TripRequest is the JSON body of a new trip.
type TripRequest struct {
	Title         string `json:"title" validate:"required,max=160"`
	Route         string `json:"route" validate:"max=200"`
	DepartureDate string `json:"departureDate" validate:"required,max=40"`
	ReturnDate    string `json:"returnDate" validate:"max=40"`
	Status        string `json:"status" validate:"omitempty,oneof=upcoming planning completed cancelled"`
	OrderDeadline string `json:"orderDeadline" validate:"max=40"`
	Notes         string `json:"notes" validate:"max=1000"`
}

// TripUpdateRequest is a partial update of a trip.
type TripUpdateRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=160"`
	Route         *string `json:"route,omitempty" validate:"omitempty,max=200"`
	DepartureDate *string `json:"departureDate,omitempty" validate:"omitempty,max=40"`
	ReturnDate    *string `json:"returnDate,omitempty" validate:"omitempty,max=40"`
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=upcoming planning completed cancelled"`
	OrderDeadline *string `json:"orderDeadline,omitempty" validate:"omitempty,max=40"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// Handler exposes trip endpoints. The home page feed is public.
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

// MountRoutes registers trip routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/trips", func(r chi.Router) {
		r.Get("/home", h.home)
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireRole(shared.RoleAdmin))
			r.Get("/", h.list)
			r.Post("/", h.create)
			r.Get("/{id}", h.show)
			r.Patch("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	})
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	trips, err := h.service.HomePageTrips(r.Context())
	if err != nil {
		h.fail(w, "home trips", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"trips": trips})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	trips, err := h.service.List(r.Context(), Status(r.URL.Query().Get("status")))
	if err != nil {
		h.fail(w, "list trips", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"trips": trips})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	trip, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get trip", err)
		return
	}
	httpx.JSON(w, http.StatusOK, trip)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req TripRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := h.service.Create(r.Context(), Input{
		Title:         req.Title,
		Route:         req.Route,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Status:        Status(req.Status),
		OrderDeadline: req.OrderDeadline,
		Notes:         req.Notes,
	})
	if err != nil {
		h.fail(w, "create trip", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req TripUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	patch := Patch{
		Title:         req.Title,
		Route:         req.Route,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		OrderDeadline: req.OrderDeadline,
		Notes:         req.Notes,
	}
	if req.Status != nil {
		status := Status(*req.Status)
		patch.Status = &status
	}
	if err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		h.fail(w, "update trip", err)
		return
	}
	h.show(w, r)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete trip", err)
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
