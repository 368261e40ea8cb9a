package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/toybazaar/toybazaar/internal/platform/httpx"
	"github.com/toybazaar/toybazaar/internal/shared"
)

// OTPDeliverer dispatches a one-time password to its owner, typically by
// enqueueing an asynq task. Delivery is asynchronous by contract.
type OTPDeliverer interface {
	DeliverOTP(ctx context.Context, phone, code string) error
}

// Handler wires the OTP authentication endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	deliverer OTPDeliverer
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, deliverer OTPDeliverer) *Handler {
	return &Handler{logger: logger, service: service, deliverer: deliverer}
}

// MountRoutes registers auth routes, expected under /auth. The OTP request
// endpoint carries its own tighter rate limit on top of the global one.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(5, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/otp/request", h.requestOTP)
	})
	r.Post("/otp/verify", h.verifyOTP)
	r.Post("/logout", h.logout)
}

type requestOTPRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (h *Handler) requestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	code, err := h.service.RequestOTP(r.Context(), req.Phone)
	if err != nil {
		h.logger.Error("request otp", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := h.deliverer.DeliverOTP(r.Context(), req.Phone, code); err != nil {
		h.logger.Error("deliver otp", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"status": "sent"})
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	token, customerID, err := h.service.VerifyOTP(r.Context(), req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidOTP):
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid code")
		case errors.Is(err, shared.ErrOTPExpired):
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "code expired, request a new one")
		case errors.Is(err, shared.ErrTooManyAttempts):
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Attempts", "request a new code")
		default:
			h.logger.Error("verify otp", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"customerId": customerID,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			h.logger.Warn("logout", slog.Any("error", err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
