package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/lunchbot/internal/workday"
)

// Dispatcher sends per-user lunch reminders. Reminders are computed purely
// from scheduled times, so the workday check is centralized here: on a
// non-workday the send is suppressed. Delivery failures are logged and
// swallowed so one blocked user never aborts the batch for a tick.
type Dispatcher struct {
	messenger   Messenger
	workdays    *workday.Checker
	logger      *slog.Logger
	sendTimeout time.Duration
	now         func() time.Time
}

// NewDispatcher creates a reminder dispatcher. sendTimeout bounds each
// outbound call so a slow or blocked send cannot stall the scheduler loop.
func NewDispatcher(messenger Messenger, workdays *workday.Checker, logger *slog.Logger, sendTimeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		messenger:   messenger,
		workdays:    workdays,
		logger:      logger.With("component", "dispatcher"),
		sendTimeout: sendTimeout,
		now:         time.Now,
	}
}

// SendReminder delivers one reminder to a user's private chat, best effort.
func (d *Dispatcher) SendReminder(ctx context.Context, userID int64, text string) {
	today := d.now()
	if !d.workdays.IsWorkday(today) {
		if name, ok := d.workdays.HolidayName(today); ok {
			d.logger.InfoContext(ctx, "Reminder suppressed: public holiday",
				"user_id", userID, "holiday", name)
		} else {
			d.logger.InfoContext(ctx, "Reminder suppressed: weekend", "user_id", userID)
		}
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if _, err := d.messenger.SendMessage(sendCtx, userID, 0, text, false); err != nil {
		// Blocked bots, deleted accounts, and rate limits land here; the
		// reminder is best effort and is not retried.
		d.logger.ErrorContext(ctx, "Failed to deliver reminder", "user_id", userID, "error", err)
		return
	}

	d.logger.InfoContext(ctx, "Reminder delivered", "user_id", userID)
}
