package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/edgard/lunchbot/internal/config"
	"github.com/edgard/lunchbot/internal/database"
)

// sentMessage records one outbound SendMessage call.
type sentMessage struct {
	chatID   int64
	threadID int
	text     string
	html     bool
}

// editCall records one EditMessageText call.
type editCall struct {
	chatID    int64
	messageID int
	text      string
}

// fakeMessenger implements Messenger with scripted failures and call
// recording.
type fakeMessenger struct {
	mu sync.Mutex

	sendErr   error
	editErr   error
	pinErr    error
	unpinErr  error
	deleteErr error

	nextMessageID int
	sent          []sentMessage
	edits         []editCall
	pinned        []int
	unpinned      []int
	deleted       []int
}

func (f *fakeMessenger) SendMessage(_ context.Context, chatID int64, threadID int, text string, html bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextMessageID++
	f.sent = append(f.sent, sentMessage{chatID: chatID, threadID: threadID, text: text, html: html})
	return f.nextMessageID, nil
}

func (f *fakeMessenger) EditMessageText(_ context.Context, chatID int64, messageID int, text string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, editCall{chatID: chatID, messageID: messageID, text: text})
	return f.editErr
}

func (f *fakeMessenger) PinMessage(_ context.Context, _ int64, messageID int, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pinErr != nil {
		return f.pinErr
	}
	f.pinned = append(f.pinned, messageID)
	return nil
}

func (f *fakeMessenger) UnpinMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unpinErr != nil {
		return f.unpinErr
	}
	f.unpinned = append(f.unpinned, messageID)
	return nil
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

// fakeStore implements database.Store in memory with scripted failures for
// the read paths the scheduler exercises.
type fakeStore struct {
	entries []database.LunchEntry
	record  *database.PinnedMessage

	schedulesErr error
	usersErr     error
	recordErr    error
	setRecordErr error
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) SetLunchTime(_ context.Context, entry *database.LunchEntry) error {
	for i := range f.entries {
		if f.entries[i].UserID == entry.UserID {
			entry.NotificationsEnabled = f.entries[i].NotificationsEnabled
			f.entries[i] = *entry
			return nil
		}
	}
	entry.NotificationsEnabled = true
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeStore) GetLunchTime(_ context.Context, userID int64) (string, error) {
	for _, e := range f.entries {
		if e.UserID == userID {
			return e.LunchTime, nil
		}
	}
	return "", nil
}

func (f *fakeStore) GetLunchAndNotifications(_ context.Context, userID int64) (string, bool, error) {
	for _, e := range f.entries {
		if e.UserID == userID {
			return e.LunchTime, e.NotificationsEnabled, nil
		}
	}
	return "", true, nil
}

func (f *fakeStore) ToggleNotifications(_ context.Context, userID int64) (bool, error) {
	for i := range f.entries {
		if f.entries[i].UserID == userID {
			f.entries[i].NotificationsEnabled = !f.entries[i].NotificationsEnabled
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) RemoveUser(_ context.Context, userID int64) (bool, error) {
	for i := range f.entries {
		if f.entries[i].UserID == userID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UsersAtTime(_ context.Context, lunchTime string) ([]database.LunchEntry, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	var out []database.LunchEntry
	for _, e := range f.entries {
		if e.LunchTime == lunchTime {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) UsersAtTimeNotifying(_ context.Context, lunchTime string) ([]database.LunchEntry, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	var out []database.LunchEntry
	for _, e := range f.entries {
		if e.LunchTime == lunchTime && e.NotificationsEnabled {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) AllSchedulesOrdered(context.Context) ([]database.LunchEntry, error) {
	if f.schedulesErr != nil {
		return nil, f.schedulesErr
	}
	return append([]database.LunchEntry(nil), f.entries...), nil
}

func (f *fakeStore) GetPinnedMessage(context.Context) (*database.PinnedMessage, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	if f.record == nil {
		return nil, nil
	}
	copied := *f.record
	return &copied, nil
}

func (f *fakeStore) SetPinnedMessage(_ context.Context, messageID int, date string) error {
	if f.setRecordErr != nil {
		return f.setRecordErr
	}
	f.record = &database.PinnedMessage{ID: 1, MessageID: messageID, Date: date}
	return nil
}

func (f *fakeStore) ClearPinnedMessage(context.Context) error {
	f.record = nil
	return nil
}

func (f *fakeStore) RunSQLMaintenance(context.Context) error { return nil }

var errScripted = fmt.Errorf("scripted failure")

// testMessages returns a message set with the templates the scheduler
// formats, kept minimal so assertions stay readable.
func testMessages() *config.Messages {
	return &config.Messages{
		ReminderNow:       "Lunch time! (%s) Enjoy, %s!",
		ReminderSoon:      "%d minutes until lunch! Lunch time: %s",
		ScheduleHeader:    "<b>Today's lunch schedule</b>",
		ScheduleEmpty:     "Nobody has signed up yet",
		ScheduleFooter:    "Last updated: %s",
		ScheduleMutedMark: " (muted)",
		FallbackName:      "Colleague",
	}
}
