package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewNotificationsHandler returns a handler for the /notifications command,
// which toggles reminder delivery for the caller without touching their
// lunch time.
func NewNotificationsHandler(deps HandlerDeps) bot.HandlerFunc {
	return notificationsHandler{deps}.Handle
}

// notificationsHandler processes the /notifications command.
type notificationsHandler struct {
	deps HandlerDeps
}

func (h notificationsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "notifications")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Notifications handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	msgs := &h.deps.Config.Messages

	reply := func(text string) {
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
			log.ErrorContext(ctx, "Failed to send notifications reply", "error", err, "chat_id", chatID)
		}
	}

	toggled, err := h.deps.Store.ToggleNotifications(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to toggle notifications", "user_id", userID, "error", err)
		reply(msgs.NotifyToggleError)
		return
	}
	if !toggled {
		reply(msgs.NotifyNotSignedUp)
		return
	}

	_, enabled, err := h.deps.Store.GetLunchAndNotifications(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read notification state after toggle", "user_id", userID, "error", err)
		reply(msgs.NotifyToggleError)
		return
	}

	log.InfoContext(ctx, "Notifications toggled", "user_id", userID, "enabled", enabled)
	if enabled {
		reply(msgs.NotifyEnabled)
	} else {
		reply(msgs.NotifyDisabled)
	}
}
