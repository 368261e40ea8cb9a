package cart

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toybazaar/toybazaar/internal/platform/httpx"
	"github.com/toybazaar/toybazaar/internal/shared"
)

// Handler wires the cart and wishlist HTTP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountCartRoutes registers cart routes, expected under /cart.
func (h *Handler) MountCartRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Delete("/", h.clear)
	r.Put("/items/{productID}", h.setQuantity)
	r.Post("/items/{productID}/increment", h.increment)
	r.Post("/items/{productID}/decrement", h.decrement)
	r.Delete("/items/{productID}", h.remove)
}

// MountWishlistRoutes registers wishlist routes, expected under /wishlist.
func (h *Handler) MountWishlistRoutes(r chi.Router) {
	r.Get("/", h.wishlist)
	r.Put("/{productID}", h.wishlistAdd)
	r.Delete("/{productID}", h.wishlistRemove)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (h *Handler) deviceKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := shared.DeviceKeyFromContext(r.Context())
	if key == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "X-Device-Key header required")
		return "", false
	}
	return key, true
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	key, ok := h.deviceKey(w, r)
	if !ok {
		return
	}
	view, err := h.service.View(r.Context(), key)
	if err != nil {
		h.logger.Error("load cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	key, ok := h.deviceKey(w, r)
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	view, err := h.service.SetQuantity(r.Context(), key, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		h.logger.Error("set quantity", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) increment(w http.ResponseWriter, r *http.Request) {
	key, ok := h.deviceKey(w, r)
	if !ok {
		return
	}
	view, err := h.service.Increment(r.Context(), key, chi.URLParam(r, "productID"))
	if err != nil {
		h.logger.Error("increment line", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) decrement(w http.ResponseWriter, r *http.Request) {
	key, ok := h.deviceKey(w, r)
	if !ok {
		return
	}
	view, err := h.service.Decrement(r.Context(), key, chi.URLParam(r, "productID"))
	if err != nil {
		h.logger.Error("decrement line", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	key, ok := h.deviceKey(w, r)
	if !ok {
		return
	}
	view, err := h.service.Remove(r.Context(), key, chi.URLParam(r, "productID"))
	if err != nil {
		h.logger.Error("remove line", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	key, ok := h.deviceKey(w, r)
	if !ok {
		return
	}
	view, err := h.service.Clear(r.Context(), key)
	if err != nil {
		h.logger.Error("clear cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) wishlist(w http.ResponseWriter, r *http.Request) {
	key, ok := h.deviceKey(w, r)
	if !ok {
		return
	}
	items, err := h.service.Wishlist(r.Context(), key)
	if err != nil {
		h.logger.Error("load wishlist", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) wishlistAdd(w http.ResponseWriter, r *http.Request) {
	key, ok := h.deviceKey(w, r)
	if !ok {
		return
	}
	items, err := h.service.AddToWishlist(r.Context(), key, chi.URLParam(r, "productID"))
	if err != nil {
		h.logger.Error("add wishlist item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) wishlistRemove(w http.ResponseWriter, r *http.Request) {
	key, ok := h.deviceKey(w, r)
	if !ok {
		return
	}
	items, err := h.service.RemoveFromWishlist(r.Context(), key, chi.URLParam(r, "productID"))
	if err != nil {
		h.logger.Error("remove wishlist item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}
