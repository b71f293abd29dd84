package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/lunchbot/internal/scheduler"
)

// NewScheduleHandler returns a handler for the admin-only /schedule
// command. Unlike the pinned group message it includes users with muted
// notifications, marking them so the admin sees the full picture.
func NewScheduleHandler(deps HandlerDeps) bot.HandlerFunc {
	return scheduleHandler{deps}.Handle
}

// scheduleHandler processes the /schedule command.
type scheduleHandler struct {
	deps HandlerDeps
}

func (h scheduleHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "schedule")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Schedule handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	msgs := &h.deps.Config.Messages

	entries, err := h.deps.Store.AllSchedulesOrdered(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load schedules", "error", err)
		return
	}

	var sb strings.Builder
	sb.WriteString(msgs.ScheduleHeader)
	sb.WriteString("\n\n")

	if len(entries) == 0 {
		sb.WriteString(msgs.ScheduleEmpty)
	} else {
		for _, entry := range entries {
			fmt.Fprintf(&sb, "🕐 <b>%s</b> - %s", entry.LunchTime, scheduler.DisplayName(entry, msgs.FallbackName))
			if !entry.NotificationsEnabled {
				sb.WriteString(msgs.ScheduleMutedMark)
			}
			sb.WriteString("\n")
		}
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send schedule overview", "error", err, "chat_id", chatID)
	}
}
