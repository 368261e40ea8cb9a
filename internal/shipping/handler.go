package shipping

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toybazaar/toybazaar/internal/platform/httpx"
	"github.com/toybazaar/toybazaar/internal/pricing"
)

// Handler wires the shipping rule endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the public read endpoint, expected under /shipping-rules.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
}

// MountAdminRoutes registers the token-gated update endpoint.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Put("/", h.update)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.CurrentRule(r.Context()))
}

type updateRuleRequest struct {
	ShippingCharge        pricing.Money `json:"shippingCharge" validate:"gte=0"`
	FreeShippingThreshold pricing.Money `json:"freeShippingThreshold" validate:"gte=0"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateRuleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	rule := pricing.ShippingRule{
		ShippingCharge:        req.ShippingCharge,
		FreeShippingThreshold: req.FreeShippingThreshold,
	}
	if err := h.service.Update(r.Context(), rule); err != nil {
		h.logger.Error("update shipping rule", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}
