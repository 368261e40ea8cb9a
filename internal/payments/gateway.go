// Package payments integrates the external payment gateway: it initiates
// payment intents for placed orders and consumes the gateway's signed
// webhook to confirm capture.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/toybazaar/toybazaar/internal/platform/httpx"
	"github.com/toybazaar/toybazaar/internal/pricing"
)

// Intent is the gateway's handle for a pending payment.
type Intent struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// Gateway wraps interactions with the payment provider's API.
type Gateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGateway constructs a new gateway client.
func NewGateway(baseURL, apiKey string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks if the remote gateway is available.
func (g *Gateway) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", g.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}

type createIntentRequest struct {
	OrderNumber string        `json:"order_number"`
	Amount      pricing.Money `json:"amount"`
	Currency    string        `json:"currency"`
}

// CreateIntent registers a pending payment for the order's grand total.
func (g *Gateway) CreateIntent(ctx context.Context, orderNumber string, amount pricing.Money) (*Intent, error) {
	payload, err := json.Marshal(createIntentRequest{
		OrderNumber: orderNumber,
		Amount:      amount,
		Currency:    "INR",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/v1/intents", g.baseURL), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: gateway returned status %d", httpx.ErrUpstream, resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("%w: decode intent: %v", httpx.ErrUpstream, err)
	}
	return &intent, nil
}
