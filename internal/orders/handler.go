package orders

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/toybazaar/toybazaar/internal/customers"
	"github.com/toybazaar/toybazaar/internal/platform/httpx"
	"github.com/toybazaar/toybazaar/internal/shared"
)

// Handler wires the order endpoints. Buyer routes assume the auth middleware
// has placed the customer id in context.
type Handler struct {
	logger  *slog.Logger
	service *Service

	// OnPlaced, when set, is invoked after each successful checkout.
	OnPlaced func()
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers buyer routes, expected under /orders.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.place)
	r.Get("/", h.list)
	r.Get("/{number}", h.show)
	r.Post("/{number}/cancel", h.cancel)
}

// MountAdminRoutes registers back-office routes, expected under /admin/orders.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Patch("/{number}/status", h.updateStatus)
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx := r.Context()
	order, err := h.service.Place(ctx,
		shared.CustomerIDFromContext(ctx),
		shared.DeviceKeyFromContext(ctx),
		r.Header.Get("Idempotency-Key"),
		req)
	if err != nil {
		h.respondError(w, err, "place order")
		return
	}
	if h.OnPlaced != nil {
		h.OnPlaced()
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	orders, pagination, err := h.service.List(r.Context(), shared.CustomerIDFromContext(r.Context()), page, perPage)
	if err != nil {
		h.respondError(w, err, "list orders")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"orders":     orders,
		"pagination": pagination,
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), shared.CustomerIDFromContext(r.Context()), chi.URLParam(r, "number"))
	if err != nil {
		h.respondError(w, err, "load order")
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if err := h.service.Cancel(r.Context(), shared.CustomerIDFromContext(r.Context()), number); err != nil {
		h.respondError(w, err, "cancel order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "number"), req.Status); err != nil {
		h.respondError(w, err, "update order status")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "order not found")
	case errors.Is(err, customers.ErrNotFound):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown address")
	case errors.Is(err, ErrProductUnavailable), errors.Is(err, ErrBelowMinimum):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrPriceChanged), errors.Is(err, ErrTotalsMismatch),
		errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidTransition),
		errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
