package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/toybazaar/toybazaar/internal/promo"
)

// DealSweepJob deactivates deals whose end time has passed so listings stop
// advertising dead discounts.
type DealSweepJob struct {
	Promo  *promo.Service
	Logger *slog.Logger
}

// NewDealSweepJob wires dependencies for the sweep handler.
func NewDealSweepJob(promoSvc *promo.Service, logger *slog.Logger) *DealSweepJob {
	return &DealSweepJob{Promo: promoSvc, Logger: logger}
}

// Handle processes deal sweep tasks.
func (j *DealSweepJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil {
		return errors.New("deal sweep: handler not configured")
	}
	swept, err := j.Promo.SweepExpired(ctx)
	if err != nil {
		return err
	}
	if swept > 0 {
		j.Logger.Info("expired deals deactivated", slog.Int64("count", swept))
	}
	return nil
}
