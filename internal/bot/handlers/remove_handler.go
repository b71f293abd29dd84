package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewRemoveHandler returns a handler for the /remove command, which takes
// the caller off the lunch schedule entirely.
func NewRemoveHandler(deps HandlerDeps) bot.HandlerFunc {
	return removeHandler{deps}.Handle
}

// removeHandler processes the /remove command.
type removeHandler struct {
	deps HandlerDeps
}

func (h removeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "remove")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Remove handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	msgs := &h.deps.Config.Messages

	reply := func(text string) {
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
			log.ErrorContext(ctx, "Failed to send remove reply", "error", err, "chat_id", chatID)
		}
	}

	removed, err := h.deps.Store.RemoveUser(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to remove user from schedule", "user_id", userID, "error", err)
		reply(msgs.RemoveError)
		return
	}
	if !removed {
		reply(msgs.RemoveNotSignedUp)
		return
	}

	log.InfoContext(ctx, "User removed from schedule", "user_id", userID)
	reply(msgs.RemoveDone)
}
