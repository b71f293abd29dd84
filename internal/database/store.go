package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for lunch schedule persistence. Every method
// is independently atomic; no caller-side transactions are required.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SetLunchTime upserts a user's lunch entry. An existing user keeps
	// their notifications_enabled flag; a new user defaults to enabled.
	SetLunchTime(ctx context.Context, entry *LunchEntry) error

	// GetLunchTime returns the user's lunch time, or "" if the user has none.
	GetLunchTime(ctx context.Context, userID int64) (string, error)

	// GetLunchAndNotifications returns the user's lunch time ("" when
	// absent) and notification flag (true when absent).
	GetLunchAndNotifications(ctx context.Context, userID int64) (string, bool, error)

	// ToggleNotifications flips the user's notification flag. Returns false
	// without changes when the user does not exist.
	ToggleNotifications(ctx context.Context, userID int64) (bool, error)

	// RemoveUser deletes the user's entry. Returns true iff a row existed.
	RemoveUser(ctx context.Context, userID int64) (bool, error)

	// UsersAtTime returns all users scheduled at exactly lunchTime,
	// regardless of their notification flag.
	UsersAtTime(ctx context.Context, lunchTime string) ([]LunchEntry, error)

	// UsersAtTimeNotifying returns users scheduled at exactly lunchTime
	// with notifications enabled. Used by the dispatch path.
	UsersAtTimeNotifying(ctx context.Context, lunchTime string) ([]LunchEntry, error)

	// AllSchedulesOrdered returns every entry ascending by lunch time.
	AllSchedulesOrdered(ctx context.Context) ([]LunchEntry, error)

	// GetPinnedMessage returns the pinned message record, or nil, nil when
	// no schedule message is live.
	GetPinnedMessage(ctx context.Context) (*PinnedMessage, error)

	// SetPinnedMessage stores the pinned message record for the given day.
	SetPinnedMessage(ctx context.Context, messageID int, date string) error

	// ClearPinnedMessage removes the pinned message record.
	ClearPinnedMessage(ctx context.Context) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SetLunchTime upserts a lunch entry, preserving an existing user's
// notification flag via read-then-merge inside a transaction.
func (s *sqlxStore) SetLunchTime(ctx context.Context, entry *LunchEntry) error {
	if entry == nil {
		return fmt.Errorf("cannot save nil lunch entry")
	}
	if entry.UserID == 0 {
		return fmt.Errorf("lunch entry must have a non-zero user_id")
	}
	if entry.LunchTime == "" {
		return fmt.Errorf("lunch entry must have a lunch time")
	}

	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving lunch entry",
			"user_id", entry.UserID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	// Preserve the flag for existing users; default to enabled otherwise.
	notifications := true
	err = tx.GetContext(ctx, &notifications,
		`SELECT notifications_enabled FROM lunch_schedule WHERE user_id = ?`, entry.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.ErrorContext(ctx, "Error reading notification flag before upsert",
			"user_id", entry.UserID, "error", err)
		return fmt.Errorf("failed to read notification flag for user %d: %w", entry.UserID, err)
	}
	entry.NotificationsEnabled = notifications

	query := `
        INSERT INTO lunch_schedule
            (user_id, username, first_name, last_name, lunch_time, notifications_enabled, created_at, updated_at)
        VALUES
            (:user_id, :username, :first_name, :last_name, :lunch_time, :notifications_enabled, :created_at, :updated_at)
        ON CONFLICT (user_id) DO UPDATE SET
            username = excluded.username,
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            lunch_time = excluded.lunch_time,
            notifications_enabled = excluded.notifications_enabled,
            updated_at = excluded.updated_at;
    `
	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		s.logger.ErrorContext(ctx, "Error saving lunch entry", "user_id", entry.UserID, "error", err)
		return fmt.Errorf("failed to save lunch entry for user %d: %w", entry.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "user_id", entry.UserID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Lunch entry saved successfully",
		"user_id", entry.UserID, "lunch_time", entry.LunchTime)
	return nil
}

// GetLunchTime returns the user's lunch time, or "" if the user has none.
func (s *sqlxStore) GetLunchTime(ctx context.Context, userID int64) (string, error) {
	var lunchTime string
	err := s.db.GetContext(ctx, &lunchTime,
		`SELECT lunch_time FROM lunch_schedule WHERE user_id = ?`, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting lunch time", "user_id", userID, "error", err)
		return "", fmt.Errorf("failed to get lunch time for user %d: %w", userID, err)
	}

	return lunchTime, nil
}

// GetLunchAndNotifications returns the user's lunch time and notification
// flag. The flag defaults to true when the user is absent.
func (s *sqlxStore) GetLunchAndNotifications(ctx context.Context, userID int64) (string, bool, error) {
	var row struct {
		LunchTime            string `db:"lunch_time"`
		NotificationsEnabled bool   `db:"notifications_enabled"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT lunch_time, notifications_enabled FROM lunch_schedule WHERE user_id = ?`, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", true, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting lunch entry", "user_id", userID, "error", err)
		return "", true, fmt.Errorf("failed to get lunch entry for user %d: %w", userID, err)
	}

	return row.LunchTime, row.NotificationsEnabled, nil
}

// ToggleNotifications flips the notification flag inside a transaction.
func (s *sqlxStore) ToggleNotifications(ctx context.Context, userID int64) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for toggling notifications",
			"user_id", userID, "error", err)
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	var enabled bool
	err = tx.GetContext(ctx, &enabled,
		`SELECT notifications_enabled FROM lunch_schedule WHERE user_id = ?`, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error reading notification flag", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to read notification flag for user %d: %w", userID, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE lunch_schedule SET notifications_enabled = ?, updated_at = ? WHERE user_id = ?`,
		!enabled, time.Now().UTC(), userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error toggling notifications", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to toggle notifications for user %d: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Notification flag toggled", "user_id", userID, "enabled", !enabled)
	return true, nil
}

// RemoveUser deletes the user's lunch entry.
func (s *sqlxStore) RemoveUser(ctx context.Context, userID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM lunch_schedule WHERE user_id = ?`, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error removing user from schedule", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to remove user %d from schedule: %w", userID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get affected row count", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to check removal of user %d: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "User removal processed", "user_id", userID, "removed", affected > 0)
	return affected > 0, nil
}

const entryColumns = `user_id, username, first_name, last_name, lunch_time, notifications_enabled, created_at, updated_at`

// UsersAtTime returns all users scheduled at exactly lunchTime.
func (s *sqlxStore) UsersAtTime(ctx context.Context, lunchTime string) ([]LunchEntry, error) {
	var entries []LunchEntry
	query := `SELECT ` + entryColumns + ` FROM lunch_schedule WHERE lunch_time = ?`

	if err := s.db.SelectContext(ctx, &entries, query, lunchTime); err != nil {
		s.logger.ErrorContext(ctx, "Error getting users at time", "lunch_time", lunchTime, "error", err)
		return nil, fmt.Errorf("failed to get users at %s: %w", lunchTime, err)
	}
	return entries, nil
}

// UsersAtTimeNotifying returns users at lunchTime with notifications enabled.
func (s *sqlxStore) UsersAtTimeNotifying(ctx context.Context, lunchTime string) ([]LunchEntry, error) {
	var entries []LunchEntry
	query := `SELECT ` + entryColumns + ` FROM lunch_schedule
	          WHERE lunch_time = ? AND notifications_enabled = 1`

	if err := s.db.SelectContext(ctx, &entries, query, lunchTime); err != nil {
		s.logger.ErrorContext(ctx, "Error getting notifying users at time", "lunch_time", lunchTime, "error", err)
		return nil, fmt.Errorf("failed to get notifying users at %s: %w", lunchTime, err)
	}
	return entries, nil
}

// AllSchedulesOrdered returns every entry ascending by lunch time. Times are
// stored zero-padded, so lexicographic order matches time-of-day order.
func (s *sqlxStore) AllSchedulesOrdered(ctx context.Context) ([]LunchEntry, error) {
	var entries []LunchEntry
	query := `SELECT ` + entryColumns + ` FROM lunch_schedule ORDER BY lunch_time, user_id`

	if err := s.db.SelectContext(ctx, &entries, query); err != nil {
		s.logger.ErrorContext(ctx, "Error getting all schedules", "error", err)
		return nil, fmt.Errorf("failed to get all schedules: %w", err)
	}
	return entries, nil
}

// GetPinnedMessage returns the pinned message record, or nil, nil when none.
func (s *sqlxStore) GetPinnedMessage(ctx context.Context) (*PinnedMessage, error) {
	var record PinnedMessage
	err := s.db.GetContext(ctx, &record,
		`SELECT id, message_id, date, updated_at FROM pinned_messages WHERE id = 1`)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting pinned message record", "error", err)
		return nil, fmt.Errorf("failed to get pinned message record: %w", err)
	}

	return &record, nil
}

// SetPinnedMessage stores the singleton pinned message record.
func (s *sqlxStore) SetPinnedMessage(ctx context.Context, messageID int, date string) error {
	query := `
        INSERT INTO pinned_messages (id, message_id, date, updated_at)
        VALUES (1, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            message_id = excluded.message_id,
            date = excluded.date,
            updated_at = excluded.updated_at;
    `
	if _, err := s.db.ExecContext(ctx, query, messageID, date, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Error saving pinned message record",
			"message_id", messageID, "date", date, "error", err)
		return fmt.Errorf("failed to save pinned message record: %w", err)
	}

	s.logger.DebugContext(ctx, "Pinned message record saved", "message_id", messageID, "date", date)
	return nil
}

// ClearPinnedMessage removes the singleton pinned message record.
func (s *sqlxStore) ClearPinnedMessage(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pinned_messages WHERE id = 1`); err != nil {
		s.logger.ErrorContext(ctx, "Error clearing pinned message record", "error", err)
		return fmt.Errorf("failed to clear pinned message record: %w", err)
	}

	s.logger.DebugContext(ctx, "Pinned message record cleared")
	return nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
