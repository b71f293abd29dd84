package database

import (
	"time"
)

// LunchEntry represents one user's lunch registration. There is at most one
// entry per user; the display name fields are optional and used only for
// rendering.
type LunchEntry struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	LunchTime string    `db:"lunch_time"` // zero-padded "HH:MM"
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	NotificationsEnabled bool `db:"notifications_enabled"`
}

// PinnedMessage is the singleton record describing the currently pinned
// "today's schedule" message in the group chat. It exists iff such a
// message is live; Date is the calendar day ("2006-01-02") it was posted for.
type PinnedMessage struct {
	ID        int       `db:"id"` // always 1
	MessageID int       `db:"message_id"`
	Date      string    `db:"date"`
	UpdatedAt time.Time `db:"updated_at"`
}
