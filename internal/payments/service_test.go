package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/toybazaar/toybazaar/internal/orders"
	"github.com/toybazaar/toybazaar/internal/pricing"
)

type stubOrders struct {
	order *orders.Order
	paid  []string
}

func (s *stubOrders) Get(_ context.Context, customerID int64, number string) (*orders.Order, error) {
	if s.order == nil || s.order.Number != number || s.order.CustomerID != customerID {
		return nil, orders.ErrNotFound
	}
	return s.order, nil
}

func (s *stubOrders) MarkPaid(_ context.Context, number string) error {
	if s.order == nil || s.order.Number != number {
		return orders.ErrNotFound
	}
	s.paid = append(s.paid, number)
	return nil
}

func TestInitiateCreatesIntentForPlacedOrder(t *testing.T) {
	var got createIntentRequest
	gatewaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/intents", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Intent{ID: "pi_123", RedirectURL: "https://pay.example/pi_123"})
	}))
	defer gatewaySrv.Close()

	store := &stubOrders{order: &orders.Order{Number: "TB-20260831-ABCD1234", CustomerID: 1, Status: orders.StatusPlaced, GrandTotal: 440}}
	svc := NewService(NewGateway(gatewaySrv.URL, "test-key"), store, "whsec", slog.Default())

	intent, err := svc.Initiate(context.Background(), 1, "TB-20260831-ABCD1234")
	require.NoError(t, err)
	require.Equal(t, "pi_123", intent.ID)
	require.Equal(t, pricing.Money(440), got.Amount)
	require.Equal(t, "INR", got.Currency)
}

func TestInitiateRejectsNonPlacedOrder(t *testing.T) {
	store := &stubOrders{order: &orders.Order{Number: "TB-1", CustomerID: 1, Status: orders.StatusPaid}}
	svc := NewService(NewGateway("http://unused", "k"), store, "whsec", slog.Default())

	_, err := svc.Initiate(context.Background(), 1, "TB-1")
	require.ErrorIs(t, err, ErrNotPayable)
}

func TestInitiateScopedToOwner(t *testing.T) {
	store := &stubOrders{order: &orders.Order{Number: "TB-1", CustomerID: 1, Status: orders.StatusPlaced}}
	svc := NewService(NewGateway("http://unused", "k"), store, "whsec", slog.Default())

	_, err := svc.Initiate(context.Background(), 2, "TB-1")
	require.ErrorIs(t, err, orders.ErrNotFound)
}

func TestHealthReflectsGatewayReachability(t *testing.T) {
	gatewaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer gatewaySrv.Close()

	svc := NewService(NewGateway(gatewaySrv.URL, "k"), &stubOrders{}, "whsec", slog.Default())
	h := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	h.MountHealth(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// a gateway answering with errors is reported as not ready
	downSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer downSrv.Close()

	svc = NewService(NewGateway(downSrv.URL, "k"), &stubOrders{}, "whsec", slog.Default())
	h = NewHandler(slog.Default(), svc)
	r = chi.NewRouter()
	h.MountHealth(r)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWebhookCapturedMarksPaid(t *testing.T) {
	store := &stubOrders{order: &orders.Order{Number: "TB-1", CustomerID: 1, Status: orders.StatusPlaced}}
	svc := NewService(nil, store, "whsec", slog.Default())

	payload := []byte(`{"type":"payment.captured","order_number":"TB-1"}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, Sign("whsec", payload)))
	require.Equal(t, []string{"TB-1"}, store.paid)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	store := &stubOrders{}
	svc := NewService(nil, store, "whsec", slog.Default())

	payload := []byte(`{"type":"payment.captured","order_number":"TB-1"}`)
	err := svc.HandleWebhook(context.Background(), payload, Sign("wrong-secret", payload))
	require.ErrorIs(t, err, ErrBadSignature)
	require.Empty(t, store.paid)
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	store := &stubOrders{order: &orders.Order{Number: "TB-1"}}
	svc := NewService(nil, store, "whsec", slog.Default())

	payload := []byte(`{"type":"payment.refund_requested","order_number":"TB-1"}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, Sign("whsec", payload)))
	require.Empty(t, store.paid)
}
