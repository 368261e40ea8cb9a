package pricing

import (
	"context"
	"fmt"
	"time"
)

// FormatTimeRemaining renders the time left until end as a countdown label.
// The second return value is false once end <= now (timer expired). Days are
// included only when nonzero; hours, minutes and seconds are zero padded.
func FormatTimeRemaining(end, now time.Time) (string, bool) {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return "", false
	}

	ms := remaining.Milliseconds()
	days := ms / (24 * 60 * 60 * 1000)
	hours := ms / (60 * 60 * 1000) % 24
	minutes := ms / (60 * 1000) % 60
	seconds := ms / 1000 % 60

	if days > 0 {
		return fmt.Sprintf("%dD %02d:%02d:%02d", days, hours, minutes, seconds), true
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds), true
}

// Countdown drives FormatTimeRemaining at one-second granularity. On expiry it
// emits the terminal signal exactly once and stops, so dependent callers can
// react a single time (hide the badge, revert the price).
type Countdown struct {
	End time.Time
	// Interval defaults to one second; Now defaults to time.Now.
	Interval time.Duration
	Now      func() time.Time
	// OnTick fires while the deal window is open, OnExpire exactly once after.
	OnTick   func(label string)
	OnExpire func()
}

// Run ticks until the countdown expires or ctx is cancelled.
func (c *Countdown) Run(ctx context.Context) {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Second
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		label, active := FormatTimeRemaining(c.End, now())
		if !active {
			if c.OnExpire != nil {
				c.OnExpire()
			}
			return
		}
		if c.OnTick != nil {
			c.OnTick(label)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
