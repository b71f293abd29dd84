package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgard/lunchbot/internal/config"
	"github.com/edgard/lunchbot/internal/database"
	"github.com/edgard/lunchbot/internal/workday"
)

const dateFormat = "2006-01-02"

// PinnedManager owns the lifecycle of the single pinned "today's schedule"
// message in the group chat: creation, content refresh on change, daily
// rotation, and teardown. It carries the last rendered content fingerprint
// between ticks for change detection; the message identity itself is
// persisted through the store so it survives restarts.
//
// When no group chat is configured every operation is a logged no-op; group
// broadcast is an optional feature.
type PinnedManager struct {
	store     database.Store
	messenger Messenger
	workdays  *workday.Checker
	logger    *slog.Logger
	msgs      *config.Messages
	chatID    int64
	topicID   int
	now       func() time.Time

	fingerprint    uint64
	hasFingerprint bool
}

// NewPinnedManager creates a pinned schedule manager. A zero chatID
// disables all group-broadcast operations.
func NewPinnedManager(
	store database.Store,
	messenger Messenger,
	workdays *workday.Checker,
	logger *slog.Logger,
	msgs *config.Messages,
	chatID int64,
	topicID int,
) *PinnedManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &PinnedManager{
		store:     store,
		messenger: messenger,
		workdays:  workdays,
		logger:    logger.With("component", "pinned_schedule"),
		msgs:      msgs,
		chatID:    chatID,
		topicID:   topicID,
		now:       time.Now,
	}
}

func (m *PinnedManager) groupConfigured() bool {
	return m.chatID != 0
}

// EnsureDailySchedule makes sure a pinned schedule message exists for the
// current day. Called at process start and on the first tick of a new day.
// A record dated for an earlier day is stale and is rotated out; a missing
// record on a workday triggers creation. Calling it twice in the same day
// is a no-op the second time.
func (m *PinnedManager) EnsureDailySchedule(ctx context.Context) error {
	if !m.groupConfigured() {
		m.logger.DebugContext(ctx, "Group chat not configured, skipping daily schedule")
		return nil
	}

	today := m.now().Format(dateFormat)

	record, err := m.store.GetPinnedMessage(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pinned schedule: %w", err)
	}

	if record != nil && record.Date == today {
		return nil
	}

	if !m.workdays.IsWorkday(m.now()) {
		m.logger.DebugContext(ctx, "Not a workday, skipping daily schedule creation")
		return nil
	}

	if record != nil {
		// Stale message from a previous day.
		return m.RotateDailySchedule(ctx)
	}
	return m.CreateDailySchedule(ctx)
}

// CreateDailySchedule renders the schedule, posts it to the group topic,
// pins it silently, and persists the message identity for today. On any
// failure nothing is persisted, so a half-created message never becomes the
// tracked one.
func (m *PinnedManager) CreateDailySchedule(ctx context.Context) error {
	if !m.groupConfigured() {
		m.logger.DebugContext(ctx, "Group chat not configured, skipping schedule creation")
		return nil
	}

	entries, err := m.store.AllSchedulesOrdered(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedules for daily message: %w", err)
	}

	text := RenderSchedule(entries, m.msgs, m.now())
	today := m.now().Format(dateFormat)

	messageID, err := m.messenger.SendMessage(ctx, m.chatID, m.topicID, text, true)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to post daily schedule", "error", err)
		return fmt.Errorf("failed to post daily schedule: %w", err)
	}

	if err := m.messenger.PinMessage(ctx, m.chatID, messageID, true); err != nil {
		// The message is posted but unpinned; keep tracking it anyway so
		// refresh and teardown still work.
		m.logger.ErrorContext(ctx, "Failed to pin daily schedule", "message_id", messageID, "error", err)
	}

	if err := m.store.SetPinnedMessage(ctx, messageID, today); err != nil {
		return fmt.Errorf("failed to persist pinned schedule record: %w", err)
	}

	m.fingerprint = Fingerprint(entries)
	m.hasFingerprint = true

	m.logger.InfoContext(ctx, "Daily schedule created and pinned",
		"message_id", messageID, "date", today, "entries", len(entries))
	return nil
}

// RotateDailySchedule rebuilds the schedule message fresh: the previous
// message is unpinned and deleted, then a new one is created. Invoked at
// the daily refresh hour on workdays so the message is recreated each
// business day instead of being edited forever.
func (m *PinnedManager) RotateDailySchedule(ctx context.Context) error {
	if !m.groupConfigured() {
		return nil
	}

	m.logger.InfoContext(ctx, "Rotating daily schedule message")

	if err := m.Teardown(ctx); err != nil {
		return err
	}
	return m.CreateDailySchedule(ctx)
}

// RefreshIfChanged recomputes the schedule fingerprint and, when it differs
// from the last rendered one, edits the pinned message text in place. On an
// edit failure the stored fingerprint is left untouched so the next tick
// retries the edit.
func (m *PinnedManager) RefreshIfChanged(ctx context.Context) error {
	if !m.groupConfigured() {
		return nil
	}

	entries, err := m.store.AllSchedulesOrdered(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schedules for change check: %w", err)
	}

	current := Fingerprint(entries)
	if m.hasFingerprint && current == m.fingerprint {
		return nil
	}

	record, err := m.store.GetPinnedMessage(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pinned schedule record: %w", err)
	}
	if record == nil {
		return nil
	}

	text := RenderSchedule(entries, m.msgs, m.now())
	if err := m.messenger.EditMessageText(ctx, m.chatID, record.MessageID, text, true); err != nil {
		m.logger.ErrorContext(ctx, "Failed to refresh pinned schedule, will retry next tick",
			"message_id", record.MessageID, "error", err)
		return nil
	}

	m.fingerprint = current
	m.hasFingerprint = true

	m.logger.InfoContext(ctx, "Pinned schedule refreshed", "message_id", record.MessageID, "entries", len(entries))
	return nil
}

// Teardown unpins and deletes the current schedule message, if any, and
// clears the persisted record. Invoked on graceful shutdown and as the
// delete-old half of rotation. Unpin and delete failures are logged but do
// not keep the record alive: a dangling record pointing at a dead message
// would block every future creation.
func (m *PinnedManager) Teardown(ctx context.Context) error {
	if !m.groupConfigured() {
		return nil
	}

	record, err := m.store.GetPinnedMessage(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pinned schedule record: %w", err)
	}
	if record == nil {
		return nil
	}

	if err := m.messenger.UnpinMessage(ctx, m.chatID, record.MessageID); err != nil {
		m.logger.WarnContext(ctx, "Failed to unpin old schedule message",
			"message_id", record.MessageID, "error", err)
	}
	if err := m.messenger.DeleteMessage(ctx, m.chatID, record.MessageID); err != nil {
		m.logger.WarnContext(ctx, "Failed to delete old schedule message",
			"message_id", record.MessageID, "error", err)
	}

	if err := m.store.ClearPinnedMessage(ctx); err != nil {
		return fmt.Errorf("failed to clear pinned schedule record: %w", err)
	}

	m.hasFingerprint = false

	m.logger.InfoContext(ctx, "Old schedule message removed", "message_id", record.MessageID)
	return nil
}
