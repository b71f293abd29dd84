package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lunchbot/internal/database"
	"github.com/edgard/lunchbot/internal/timeofday"
)

// NewLunchHandler returns a handler for the /lunch command. Without an
// argument it reports the caller's current lunch time; with an "HH:MM"
// argument it sets a new one, preserving the notification flag for
// returning users.
func NewLunchHandler(deps HandlerDeps) bot.HandlerFunc {
	return lunchHandler{deps}.Handle
}

// lunchHandler processes the /lunch command using injected dependencies.
type lunchHandler struct {
	deps HandlerDeps
}

func (h lunchHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "lunch")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Lunch handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	user := update.Message.From
	msgs := &h.deps.Config.Messages

	fields := strings.Fields(update.Message.Text)
	if len(fields) < 2 {
		h.showCurrent(ctx, b, log, chatID, user.ID)
		return
	}

	lunchTime, err := timeofday.Parse(fields[1])
	if err != nil {
		log.InfoContext(ctx, "Rejected invalid lunch time", "user_id", user.ID, "input", fields[1])
		h.reply(ctx, b, log, chatID, msgs.LunchInvalidTime)
		return
	}

	entry := &database.LunchEntry{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		LunchTime: lunchTime,
	}
	if err := h.deps.Store.SetLunchTime(ctx, entry); err != nil {
		log.ErrorContext(ctx, "Failed to save lunch time", "user_id", user.ID, "error", err)
		h.reply(ctx, b, log, chatID, msgs.LunchSaveError)
		return
	}

	log.InfoContext(ctx, "Lunch time set", "user_id", user.ID, "lunch_time", lunchTime)
	h.reply(ctx, b, log, chatID, h.confirmation(lunchTime))
}

// showCurrent answers a bare /lunch with the stored time, if any.
func (h lunchHandler) showCurrent(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID, userID int64) {
	msgs := &h.deps.Config.Messages

	lunchTime, err := h.deps.Store.GetLunchTime(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read lunch time", "user_id", userID, "error", err)
		h.reply(ctx, b, log, chatID, msgs.LunchSaveError)
		return
	}

	if lunchTime == "" {
		h.reply(ctx, b, log, chatID, msgs.LunchUnset)
		return
	}
	h.reply(ctx, b, log, chatID, fmt.Sprintf(msgs.LunchCurrent, lunchTime))
}

// confirmation builds the set-time reply based on how far away the new
// lunch moment is: already passed today, within the reminder lead window,
// or later today.
func (h lunchHandler) confirmation(lunchTime string) string {
	msgs := &h.deps.Config.Messages
	now := time.Now()

	remaining, upcoming := timeofday.UntilToday(now, lunchTime)
	if !upcoming {
		next := h.deps.Workdays.NextWorkday(now)
		return fmt.Sprintf(msgs.LunchSetTomorrow, lunchTime, next.Format("Monday, 02 Jan"))
	}

	lead := time.Duration(h.deps.Config.Scheduler.ReminderLeadMinutes) * time.Minute
	if remaining <= lead {
		return fmt.Sprintf(msgs.LunchSetImminent, lunchTime, formatDuration(remaining))
	}
	return fmt.Sprintf(msgs.LunchSetToday, lunchTime, formatDuration(remaining))
}

func (h lunchHandler) reply(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send lunch reply", "error", err, "chat_id", chatID)
	}
}

// formatDuration renders a countdown as "2h 5m" or "5m", rounded up to
// whole minutes so "4m59s" reads as 5 minutes, never 4.
func formatDuration(d time.Duration) string {
	minutes := int((d + time.Minute - 1) / time.Minute)
	if minutes >= 60 {
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}
