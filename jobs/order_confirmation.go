package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/toybazaar/toybazaar/internal/pricing"
)

// OrderConfirmationJob sends the buyer a confirmation after checkout.
type OrderConfirmationJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	printer *message.Printer
}

// NewOrderConfirmationJob wires dependencies for the confirmation handler.
func NewOrderConfirmationJob(pool *pgxpool.Pool, logger *slog.Logger) *OrderConfirmationJob {
	return &OrderConfirmationJob{
		Pool:    pool,
		Logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// Handle processes order confirmation tasks.
func (j *OrderConfirmationJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("order confirmation: handler not configured")
	}
	var payload OrderConfirmationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	var (
		phone string
		email *string
		total pricing.Money
	)
	err := j.Pool.QueryRow(ctx,
		`SELECT c.phone, c.email, o.grand_total
		 FROM orders o JOIN customers c ON c.id = o.customer_id
		 WHERE o.number = $1`, payload.OrderNumber,
	).Scan(&phone, &email, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The order is gone; retrying will not bring it back.
			return asynq.SkipRetry
		}
		return err
	}

	// Delivery goes through the SMS/email provider once one is contracted;
	// until then the formatted message is logged.
	amount := j.printer.Sprintf("Rs. %d", total)
	j.Logger.Info("order confirmation dispatched",
		slog.String("order", payload.OrderNumber),
		slog.String("phone", phone),
		slog.String("amount", amount))
	return nil
}
