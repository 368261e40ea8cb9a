package promo

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/toybazaar/toybazaar/internal/catalog"
	"github.com/toybazaar/toybazaar/internal/platform/httpx"
	"github.com/toybazaar/toybazaar/internal/pricing"
)

// Handler wires the promotional endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the public home-config endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/home-config", h.homeConfig)
}

// MountAdminRoutes registers token-gated deal management, expected under /deals.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/", h.createDeal)
	r.Delete("/{id}", h.deactivateDeal)
}

func (h *Handler) homeConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.HomeConfig(r.Context())
	if err != nil {
		h.logger.Error("build home config", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

type createDealRequest struct {
	ProductID     string     `json:"product_id" validate:"required,uuid4"`
	DiscountType  string     `json:"discount_type" validate:"required,oneof=NONE PERCENT FLAT"`
	DiscountValue float64    `json:"discount_value" validate:"gte=0"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	Position      int        `json:"position" validate:"gte=0"`
}

func (h *Handler) createDeal(w http.ResponseWriter, r *http.Request) {
	var req createDealRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	id, err := h.service.CreateDeal(r.Context(), HotDeal{
		ProductID:     req.ProductID,
		DiscountType:  pricing.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		EndsAt:        req.EndsAt,
		Position:      req.Position,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown product")
			return
		}
		h.logger.Error("create deal", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) deactivateDeal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid deal id")
		return
	}
	if err := h.service.DeactivateDeal(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "deal not found")
			return
		}
		h.logger.Error("deactivate deal", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
