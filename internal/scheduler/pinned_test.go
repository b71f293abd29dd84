package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/edgard/lunchbot/internal/database"
	"github.com/edgard/lunchbot/internal/workday"
)

const testChatID = int64(-100500)

func newTestPinned(store *fakeStore, messenger *fakeMessenger, chatID int64, now time.Time) *PinnedManager {
	m := NewPinnedManager(store, messenger, workday.New(), testLogger(), testMessages(), chatID, 0)
	m.now = fixedClock(now)
	return m
}

func workdayNoon() time.Time {
	return time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC) // Wednesday
}

func TestPinnedNoGroupConfigured(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	messenger := &fakeMessenger{}
	m := newTestPinned(store, messenger, 0, workdayNoon())

	ctx := context.Background()
	for name, op := range map[string]func(context.Context) error{
		"ensure":   m.EnsureDailySchedule,
		"create":   m.CreateDailySchedule,
		"rotate":   m.RotateDailySchedule,
		"refresh":  m.RefreshIfChanged,
		"teardown": m.Teardown,
	} {
		if err := op(ctx); err != nil {
			t.Errorf("%s returned error without group configured: %v", name, err)
		}
	}
	if len(messenger.sent)+len(messenger.edits)+len(messenger.pinned) != 0 {
		t.Error("messenger was called without a group configured")
	}
}

func TestEnsureCreatesOnWorkday(t *testing.T) {
	t.Parallel()

	store := &fakeStore{entries: []database.LunchEntry{
		{UserID: 1, FirstName: "Anna", LunchTime: "12:30", NotificationsEnabled: true},
	}}
	messenger := &fakeMessenger{}
	m := newTestPinned(store, messenger, testChatID, workdayNoon())

	if err := m.EnsureDailySchedule(context.Background()); err != nil {
		t.Fatalf("EnsureDailySchedule: %v", err)
	}

	if len(messenger.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(messenger.sent))
	}
	if !messenger.sent[0].html {
		t.Error("schedule message not sent as HTML")
	}
	if len(messenger.pinned) != 1 {
		t.Fatalf("pinned %d messages, want 1", len(messenger.pinned))
	}
	if store.record == nil || store.record.Date != "2026-03-11" {
		t.Fatalf("pinned record = %+v, want date 2026-03-11", store.record)
	}
	if store.record.MessageID != messenger.pinned[0] {
		t.Error("persisted message id does not match pinned message")
	}
}

func TestEnsureIsIdempotentSameDay(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	messenger := &fakeMessenger{}
	m := newTestPinned(store, messenger, testChatID, workdayNoon())

	ctx := context.Background()
	if err := m.EnsureDailySchedule(ctx); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := m.EnsureDailySchedule(ctx); err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	if len(messenger.sent) != 1 {
		t.Errorf("sent %d messages across two ensures, want 1", len(messenger.sent))
	}
}

func TestEnsureRotatesStaleRecord(t *testing.T) {
	t.Parallel()

	store := &fakeStore{record: &database.PinnedMessage{ID: 1, MessageID: 77, Date: "2026-03-10"}}
	messenger := &fakeMessenger{}
	m := newTestPinned(store, messenger, testChatID, workdayNoon())

	if err := m.EnsureDailySchedule(context.Background()); err != nil {
		t.Fatalf("EnsureDailySchedule: %v", err)
	}

	if len(messenger.unpinned) != 1 || messenger.unpinned[0] != 77 {
		t.Errorf("unpinned %v, want [77]", messenger.unpinned)
	}
	if len(messenger.deleted) != 1 || messenger.deleted[0] != 77 {
		t.Errorf("deleted %v, want [77]", messenger.deleted)
	}
	if store.record == nil || store.record.Date != "2026-03-11" || store.record.MessageID == 77 {
		t.Errorf("record after rotation = %+v, want fresh message dated 2026-03-11", store.record)
	}
}

func TestEnsureSkipsNonWorkday(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	messenger := &fakeMessenger{}
	saturday := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	m := newTestPinned(store, messenger, testChatID, saturday)

	if err := m.EnsureDailySchedule(context.Background()); err != nil {
		t.Fatalf("EnsureDailySchedule: %v", err)
	}
	if len(messenger.sent) != 0 || store.record != nil {
		t.Error("schedule created on a non-workday")
	}
}

func TestCreateFailurePersistsNothing(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	messenger := &fakeMessenger{sendErr: errScripted}
	m := newTestPinned(store, messenger, testChatID, workdayNoon())

	if err := m.CreateDailySchedule(context.Background()); err == nil {
		t.Fatal("CreateDailySchedule succeeded despite send failure")
	}
	if store.record != nil {
		t.Errorf("record persisted after failed send: %+v", store.record)
	}
}

func TestRefreshEditsOnlyOnChange(t *testing.T) {
	t.Parallel()

	store := &fakeStore{entries: []database.LunchEntry{
		{UserID: 1, FirstName: "Anna", LunchTime: "12:30", NotificationsEnabled: true},
	}}
	messenger := &fakeMessenger{}
	m := newTestPinned(store, messenger, testChatID, workdayNoon())

	ctx := context.Background()
	if err := m.CreateDailySchedule(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Unchanged schedule: no edit.
	if err := m.RefreshIfChanged(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(messenger.edits) != 0 {
		t.Fatalf("edited %d times with unchanged schedule, want 0", len(messenger.edits))
	}

	store.entries = append(store.entries, database.LunchEntry{
		UserID: 2, Username: "boris", LunchTime: "13:00", NotificationsEnabled: true,
	})
	if err := m.RefreshIfChanged(ctx); err != nil {
		t.Fatalf("refresh after change: %v", err)
	}
	if len(messenger.edits) != 1 {
		t.Fatalf("edited %d times after change, want 1", len(messenger.edits))
	}
	if messenger.edits[0].messageID != store.record.MessageID {
		t.Error("edit targeted the wrong message")
	}

	// Same content again: still one edit.
	if err := m.RefreshIfChanged(ctx); err != nil {
		t.Fatalf("refresh repeat: %v", err)
	}
	if len(messenger.edits) != 1 {
		t.Errorf("edited %d times without further change, want 1", len(messenger.edits))
	}
}

func TestRefreshRetriesAfterEditFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{entries: []database.LunchEntry{
		{UserID: 1, FirstName: "Anna", LunchTime: "12:30", NotificationsEnabled: true},
	}}
	messenger := &fakeMessenger{}
	m := newTestPinned(store, messenger, testChatID, workdayNoon())

	ctx := context.Background()
	if err := m.CreateDailySchedule(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}

	store.entries[0].LunchTime = "12:45"
	messenger.editErr = errScripted
	if err := m.RefreshIfChanged(ctx); err != nil {
		t.Fatalf("refresh with failing edit should not error: %v", err)
	}
	if len(messenger.edits) != 1 {
		t.Fatalf("edit attempts = %d, want 1", len(messenger.edits))
	}

	// Failure must not advance the fingerprint: next tick retries.
	messenger.editErr = nil
	if err := m.RefreshIfChanged(ctx); err != nil {
		t.Fatalf("refresh retry: %v", err)
	}
	if len(messenger.edits) != 2 {
		t.Errorf("edit attempts = %d, want 2 (retry after failure)", len(messenger.edits))
	}
}

func TestRefreshWithoutRecordIsNoop(t *testing.T) {
	t.Parallel()

	store := &fakeStore{entries: []database.LunchEntry{
		{UserID: 1, FirstName: "Anna", LunchTime: "12:30", NotificationsEnabled: true},
	}}
	messenger := &fakeMessenger{}
	m := newTestPinned(store, messenger, testChatID, workdayNoon())

	if err := m.RefreshIfChanged(context.Background()); err != nil {
		t.Fatalf("refresh without record: %v", err)
	}
	if len(messenger.edits) != 0 {
		t.Error("edit attempted without a live schedule message")
	}
}

func TestTeardownClearsRecord(t *testing.T) {
	t.Parallel()

	store := &fakeStore{record: &database.PinnedMessage{ID: 1, MessageID: 9, Date: "2026-03-11"}}
	messenger := &fakeMessenger{}
	m := newTestPinned(store, messenger, testChatID, workdayNoon())

	if err := m.Teardown(context.Background()); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if store.record != nil {
		t.Errorf("record survived teardown: %+v", store.record)
	}
	if len(messenger.unpinned) != 1 || len(messenger.deleted) != 1 {
		t.Errorf("unpinned=%v deleted=%v, want one of each", messenger.unpinned, messenger.deleted)
	}
}

func TestTeardownContinuesPastMessengerErrors(t *testing.T) {
	t.Parallel()

	store := &fakeStore{record: &database.PinnedMessage{ID: 1, MessageID: 9, Date: "2026-03-11"}}
	messenger := &fakeMessenger{unpinErr: errScripted, deleteErr: errScripted}
	m := newTestPinned(store, messenger, testChatID, workdayNoon())

	if err := m.Teardown(context.Background()); err != nil {
		t.Fatalf("Teardown with messenger errors: %v", err)
	}
	if store.record != nil {
		t.Error("record kept alive after teardown despite messenger errors")
	}
}
