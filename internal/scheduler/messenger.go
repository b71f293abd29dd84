// Package scheduler implements the lunch reminder core: the minute-aligned
// scheduler loop, per-user reminder dispatch with workday suppression, and
// the lifecycle of the pinned daily schedule message.
package scheduler

import "context"

// Messenger is the outbound messaging surface the scheduler needs from the
// chat platform. All operations are fallible and individually catchable; a
// threadID of zero targets the chat's main thread.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, threadID int, text string, html bool) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, html bool) error
	PinMessage(ctx context.Context, chatID int64, messageID int, disableNotification bool) error
	UnpinMessage(ctx context.Context, chatID int64, messageID int) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}
