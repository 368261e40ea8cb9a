package customers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/toybazaar/toybazaar/internal/platform/httpx"
	"github.com/toybazaar/toybazaar/internal/shared"
)

// Handler wires the profile and address book endpoints. All routes assume the
// auth middleware has already placed the customer id in context.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes, expected under /me.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.profile)
	r.Patch("/", h.updateProfile)
	r.Get("/addresses", h.listAddresses)
	r.Post("/addresses", h.createAddress)
	r.Put("/addresses/{id}", h.updateAddress)
	r.Delete("/addresses/{id}", h.deleteAddress)
}

type updateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type addressRequest struct {
	Label     string  `json:"label" validate:"required,max=40"`
	Line1     string  `json:"line1" validate:"required,max=200"`
	Line2     *string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City      string  `json:"city" validate:"required,max=80"`
	State     string  `json:"state" validate:"required,max=80"`
	Pincode   string  `json:"pincode" validate:"required,len=6,numeric"`
	IsDefault bool    `json:"is_default"`
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.Get(r.Context(), shared.CustomerIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err, "load profile")
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	customer, err := h.service.UpdateProfile(r.Context(), shared.CustomerIDFromContext(r.Context()), req.Name, req.Email)
	if err != nil {
		h.respondError(w, err, "update profile")
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.service.Addresses(r.Context(), shared.CustomerIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err, "list addresses")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"addresses": addresses})
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAddress(w, r)
	if !ok {
		return
	}
	addr, err := h.service.CreateAddress(r.Context(), req.toAddress(shared.CustomerIDFromContext(r.Context()), 0))
	if err != nil {
		h.respondError(w, err, "create address")
		return
	}
	httpx.JSON(w, http.StatusCreated, addr)
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	addressID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid address id")
		return
	}
	req, ok := h.decodeAddress(w, r)
	if !ok {
		return
	}
	addr, err := h.service.UpdateAddress(r.Context(), req.toAddress(shared.CustomerIDFromContext(r.Context()), addressID))
	if err != nil {
		h.respondError(w, err, "update address")
		return
	}
	httpx.JSON(w, http.StatusOK, addr)
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	addressID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid address id")
		return
	}
	if err := h.service.DeleteAddress(r.Context(), shared.CustomerIDFromContext(r.Context()), addressID); err != nil {
		h.respondError(w, err, "delete address")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeAddress(w http.ResponseWriter, r *http.Request) (addressRequest, bool) {
	var req addressRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return req, false
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return req, false
	}
	return req, true
}

func (req addressRequest) toAddress(customerID, addressID int64) Address {
	return Address{
		ID:         addressID,
		CustomerID: customerID,
		Label:      req.Label,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		Pincode:    req.Pincode,
		IsDefault:  req.IsDefault,
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
