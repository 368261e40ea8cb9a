package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/toybazaar/toybazaar/internal/orders"
)

// ErrBadSignature indicates a webhook whose signature does not match the payload.
var ErrBadSignature = errors.New("webhook signature mismatch")

// ErrNotPayable indicates the order is not awaiting payment.
var ErrNotPayable = errors.New("order not awaiting payment")

// OrderStore is the slice of the order service payments needs.
type OrderStore interface {
	Get(ctx context.Context, customerID int64, number string) (*orders.Order, error)
	MarkPaid(ctx context.Context, number string) error
}

// Service initiates payments and settles webhook events against orders.
type Service struct {
	gateway       *Gateway
	orders        OrderStore
	webhookSecret string
	logger        *slog.Logger
}

// NewService constructs a Service.
func NewService(gateway *Gateway, orderStore OrderStore, webhookSecret string, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, orders: orderStore, webhookSecret: webhookSecret, logger: logger}
}

// Ping reports whether the payment gateway is reachable. Backs the readiness
// endpoint so operators notice a dead gateway before buyers do.
func (s *Service) Ping(ctx context.Context) error {
	return s.gateway.Ping(ctx)
}

// Initiate creates a payment intent for a placed order owned by the caller.
func (s *Service) Initiate(ctx context.Context, customerID int64, number string) (*Intent, error) {
	order, err := s.orders.Get(ctx, customerID, number)
	if err != nil {
		return nil, err
	}
	if order.Status != orders.StatusPlaced {
		return nil, fmt.Errorf("%w: status %s", ErrNotPayable, order.Status)
	}
	return s.gateway.CreateIntent(ctx, order.Number, order.GrandTotal)
}

// webhookEvent is the subset of the gateway's event payload we act on.
type webhookEvent struct {
	Type        string `json:"type"`
	OrderNumber string `json:"order_number"`
}

// HandleWebhook verifies the payload signature and applies the event.
// Unrecognised event types are acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.verify(payload, signature) {
		return ErrBadSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode webhook: %w", err)
	}

	switch event.Type {
	case "payment.captured":
		return s.orders.MarkPaid(ctx, event.OrderNumber)
	case "payment.failed":
		s.logger.Warn("payment failed", slog.String("order", event.OrderNumber))
		return nil
	default:
		s.logger.Debug("ignoring webhook event", slog.String("type", event.Type))
		return nil
	}
}

// verify checks the hex-encoded HMAC-SHA256 of the raw payload.
func (s *Service) verify(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the signature the gateway would attach to payload. Exposed for
// local testing against a stub gateway.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
