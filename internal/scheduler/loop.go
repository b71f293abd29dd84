package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgard/lunchbot/internal/config"
	"github.com/edgard/lunchbot/internal/database"
	"github.com/edgard/lunchbot/internal/timeofday"
	"github.com/edgard/lunchbot/internal/workday"
)

// errorBackoff is how long the loop waits after a failed tick before
// trying again, instead of hammering a broken dependency every minute.
const errorBackoff = 60 * time.Second

// Loop drives the minute-resolution reminder cycle. Each tick runs at most
// once per wall-clock minute: it rotates the pinned schedule at the daily
// refresh hour, refreshes the pinned message when the schedule changed, and
// dispatches reminders for users whose lunch time is now or exactly
// leadMinutes away.
type Loop struct {
	store       database.Store
	dispatcher  *Dispatcher
	pinned      *PinnedManager
	workdays    *workday.Checker
	logger      *slog.Logger
	msgs        *config.Messages
	refreshHour int
	leadMinutes int
	now         func() time.Time
}

// NewLoop creates the scheduler loop. refreshHour is the local hour at
// which the pinned schedule message is rotated on workdays; leadMinutes is
// the advance-warning offset for the early reminder.
func NewLoop(
	store database.Store,
	dispatcher *Dispatcher,
	pinned *PinnedManager,
	workdays *workday.Checker,
	logger *slog.Logger,
	msgs *config.Messages,
	refreshHour int,
	leadMinutes int,
) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		store:       store,
		dispatcher:  dispatcher,
		pinned:      pinned,
		workdays:    workdays,
		logger:      logger.With("component", "scheduler_loop"),
		msgs:        msgs,
		refreshHour: refreshHour,
		leadMinutes: leadMinutes,
		now:         time.Now,
	}
}

// Run executes the loop until ctx is canceled. The pinned schedule is
// ensured once up front so a restart mid-day reattaches to the existing
// message instead of waiting for the next refresh hour.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.pinned.EnsureDailySchedule(ctx); err != nil {
		l.logger.ErrorContext(ctx, "Failed to ensure daily schedule at startup", "error", err)
	}

	l.logger.InfoContext(ctx, "Scheduler loop started",
		"refresh_hour", l.refreshHour, "lead_minutes", l.leadMinutes)

	for {
		if err := l.tick(ctx); err != nil {
			if ctx.Err() != nil {
				l.logger.InfoContext(ctx, "Scheduler loop stopped")
				return nil
			}
			l.logger.ErrorContext(ctx, "Scheduler tick failed", "error", err)
			if !sleepCtx(ctx, errorBackoff) {
				l.logger.InfoContext(ctx, "Scheduler loop stopped")
				return nil
			}
			continue
		}

		if !sleepCtx(ctx, timeofday.UntilNextMinute(l.now())) {
			l.logger.InfoContext(ctx, "Scheduler loop stopped")
			return nil
		}
	}
}

// tick performs one minute's worth of work. A panic in any step is
// converted to an error so a bad entry degrades into a backoff instead of
// taking the process down.
func (l *Loop) tick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduler tick panicked: %v", r)
		}
	}()

	now := l.now().Truncate(time.Minute)
	current := timeofday.FromTime(now)
	upcoming := timeofday.AddMinutes(current, l.leadMinutes)

	if now.Hour() == l.refreshHour && now.Minute() == 0 && l.workdays.IsWorkday(now) {
		if rerr := l.pinned.RotateDailySchedule(ctx); rerr != nil {
			return fmt.Errorf("daily schedule rotation failed: %w", rerr)
		}
	}

	if rerr := l.pinned.RefreshIfChanged(ctx); rerr != nil {
		return fmt.Errorf("pinned schedule refresh failed: %w", rerr)
	}

	if derr := l.dispatchAt(ctx, current, func(entry database.LunchEntry) string {
		return fmt.Sprintf(l.msgs.ReminderNow, current, DisplayName(entry, l.msgs.FallbackName))
	}); derr != nil {
		return derr
	}

	return l.dispatchAt(ctx, upcoming, func(entry database.LunchEntry) string {
		return fmt.Sprintf(l.msgs.ReminderSoon, l.leadMinutes, upcoming)
	})
}

// dispatchAt sends reminders to every notifying user scheduled at the given
// time. Individual delivery failures are handled inside the dispatcher and
// never surface here.
func (l *Loop) dispatchAt(ctx context.Context, at string, render func(database.LunchEntry) string) error {
	entries, err := l.store.UsersAtTimeNotifying(ctx, at)
	if err != nil {
		return fmt.Errorf("failed to load users scheduled at %s: %w", at, err)
	}

	for _, entry := range entries {
		l.dispatcher.SendReminder(ctx, entry.UserID, render(entry))
	}
	return nil
}

// sleepCtx waits for d or until ctx is canceled, reporting false on cancel.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
