package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/toybazaar/toybazaar/internal/cart"
)

// defaultIdleHours is used when the payload leaves the window unset.
const defaultIdleHours = 24

// CartReminderJob finds carts that went quiet and nudges their owners.
type CartReminderJob struct {
	Carts  *cart.Store
	Logger *slog.Logger
	clock  func() time.Time
}

// NewCartReminderJob wires dependencies for the reminder handler.
func NewCartReminderJob(store *cart.Store, logger *slog.Logger) *CartReminderJob {
	return &CartReminderJob{Carts: store, Logger: logger, clock: time.Now}
}

// Handle processes abandoned-cart reminder tasks.
func (j *CartReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("cart reminder: handler not configured")
	}
	var payload CartReminderPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.IdleHours <= 0 {
		payload.IdleHours = defaultIdleHours
	}

	cutoff := j.clock().Add(-time.Duration(payload.IdleHours) * time.Hour)
	devices, err := j.Carts.IdleCarts(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, device := range devices {
		// Push notification delivery rides on the same channel as OTP
		// delivery; logging stands in until the provider is wired.
		j.Logger.Info("cart reminder queued", slog.String("device", device))
	}
	if len(devices) > 0 {
		j.Logger.Info("cart reminder sweep complete", slog.Int("count", len(devices)))
	}
	return nil
}
