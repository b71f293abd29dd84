package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/edgard/lunchbot/internal/workday"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDispatcherDeliversOnWorkday(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	d := NewDispatcher(messenger, workday.New(), testLogger(), time.Second)
	d.now = fixedClock(time.Date(2026, 3, 11, 12, 30, 0, 0, time.UTC)) // Wednesday

	d.SendReminder(context.Background(), 42, "lunch!")

	if len(messenger.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(messenger.sent))
	}
	got := messenger.sent[0]
	if got.chatID != 42 || got.threadID != 0 || got.text != "lunch!" || got.html {
		t.Errorf("unexpected send: %+v", got)
	}
}

func TestDispatcherSuppressesOnWeekend(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	d := NewDispatcher(messenger, workday.New(), testLogger(), time.Second)
	d.now = fixedClock(time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)) // Saturday

	d.SendReminder(context.Background(), 42, "lunch!")

	if len(messenger.sent) != 0 {
		t.Fatalf("sent %d messages on a weekend, want 0", len(messenger.sent))
	}
}

func TestDispatcherSuppressesOnHoliday(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	d := NewDispatcher(messenger, workday.New(), testLogger(), time.Second)
	d.now = fixedClock(time.Date(2026, 1, 7, 12, 30, 0, 0, time.UTC)) // Orthodox Christmas

	d.SendReminder(context.Background(), 42, "lunch!")

	if len(messenger.sent) != 0 {
		t.Fatalf("sent %d messages on a holiday, want 0", len(messenger.sent))
	}
}

func TestDispatcherSwallowsSendErrors(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{sendErr: errScripted}
	d := NewDispatcher(messenger, workday.New(), testLogger(), time.Second)
	d.now = fixedClock(time.Date(2026, 3, 11, 12, 30, 0, 0, time.UTC))

	// Must not panic or propagate; failure is logged only.
	d.SendReminder(context.Background(), 42, "lunch!")
}
