// Package jobs defines the background task types and the Asynq worker,
// scheduler and client wrappers that run them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskOrderConfirmation sends the post-checkout confirmation message.
	TaskOrderConfirmation = "orders:confirmation"
	// TaskSendOTP delivers a login one-time password.
	TaskSendOTP = "auth:send_otp"
	// TaskDealSweep deactivates promotional deals past their end time.
	TaskDealSweep = "promo:deal_sweep"
	// TaskCartReminder nudges devices whose carts went quiet.
	TaskCartReminder = "cart:abandoned_reminder"
	// TaskIdempotencyCleanup prunes aged idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// OrderConfirmationPayload identifies the order to confirm.
type OrderConfirmationPayload struct {
	OrderNumber string `json:"order_number"`
}

// NewOrderConfirmationTask constructs an Asynq task.
func NewOrderConfirmationTask(payload OrderConfirmationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirmation, data), nil
}

// SendOTPPayload carries a one-time password to the delivery channel.
type SendOTPPayload struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// NewSendOTPTask constructs an Asynq task.
func NewSendOTPTask(payload SendOTPPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSendOTP, data), nil
}

// NewDealSweepTask constructs an Asynq task; the sweep takes no parameters.
func NewDealSweepTask() *asynq.Task {
	return asynq.NewTask(TaskDealSweep, nil)
}

// CartReminderPayload bounds how far back the reminder scan looks.
type CartReminderPayload struct {
	IdleHours int `json:"idle_hours"`
}

// NewCartReminderTask constructs an Asynq task.
func NewCartReminderTask(payload CartReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartReminder, data), nil
}

// IdempotencyCleanupPayload sets the retention window in hours.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask constructs an Asynq task.
func NewIdempotencyCleanupTask(payload IdempotencyCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
