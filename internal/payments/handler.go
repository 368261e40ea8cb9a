package payments

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toybazaar/toybazaar/internal/orders"
	"github.com/toybazaar/toybazaar/internal/platform/httpx"
	"github.com/toybazaar/toybazaar/internal/shared"
)

// maxWebhookBody caps the webhook payload we are willing to read.
const maxWebhookBody = 1 << 20

// Handler wires the payment endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountOrderRoutes registers the pay-initiation route, expected under /orders.
func (h *Handler) MountOrderRoutes(r chi.Router) {
	r.Post("/{number}/pay", h.initiate)
}

// MountWebhook registers the gateway callback, expected under /payments.
// The route is unauthenticated; the payload signature is the credential.
func (h *Handler) MountWebhook(r chi.Router) {
	r.Post("/webhook", h.webhook)
}

// MountHealth registers the gateway readiness probe, expected under /payments.
func (h *Handler) MountHealth(r chi.Router) {
	r.Get("/health", h.health)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warn("payment gateway unreachable", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Upstream Unavailable", "payment gateway unreachable")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) initiate(w http.ResponseWriter, r *http.Request) {
	intent, err := h.service.Initiate(r.Context(), shared.CustomerIDFromContext(r.Context()), chi.URLParam(r, "number"))
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "order not found")
		case errors.Is(err, ErrNotPayable):
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
		default:
			h.logger.Error("initiate payment", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, intent)
}

func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unreadable payload")
		return
	}

	err = h.service.HandleWebhook(r.Context(), payload, r.Header.Get("X-Signature"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrBadSignature):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "signature mismatch")
	case errors.Is(err, orders.ErrNotFound):
		// Acknowledge unknown orders so the gateway stops retrying.
		h.logger.Warn("webhook for unknown order")
		w.WriteHeader(http.StatusNoContent)
	default:
		h.logger.Error("process webhook", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
