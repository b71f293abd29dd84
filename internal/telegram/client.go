package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Client wraps the go-telegram/bot client with the small messaging surface
// the scheduler needs. A threadID of zero targets the chat's main thread.
type Client struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewClient creates a messaging client on top of an existing bot instance.
func NewClient(b *bot.Bot, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		bot:    b,
		logger: logger.With("component", "telegram_client"),
	}
}

// SendMessage sends a text message and returns the platform message ID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, threadID int, text string, html bool) (int, error) {
	params := &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: threadID,
		Text:            text,
	}
	if html {
		params.ParseMode = models.ParseModeHTML
	}

	msg, err := c.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}

	c.logger.DebugContext(ctx, "Message sent", "chat_id", chatID, "message_id", msg.ID)
	return msg.ID, nil
}

// EditMessageText replaces the text of an existing message in place.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, html bool) error {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}
	if html {
		params.ParseMode = models.ParseModeHTML
	}

	if _, err := c.bot.EditMessageText(ctx, params); err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}

	c.logger.DebugContext(ctx, "Message edited", "chat_id", chatID, "message_id", messageID)
	return nil
}

// PinMessage pins a message in the chat.
func (c *Client) PinMessage(ctx context.Context, chatID int64, messageID int, disableNotification bool) error {
	_, err := c.bot.PinChatMessage(ctx, &bot.PinChatMessageParams{
		ChatID:              chatID,
		MessageID:           messageID,
		DisableNotification: disableNotification,
	})
	if err != nil {
		return fmt.Errorf("failed to pin message %d in chat %d: %w", messageID, chatID, err)
	}

	c.logger.DebugContext(ctx, "Message pinned", "chat_id", chatID, "message_id", messageID)
	return nil
}

// UnpinMessage unpins a message in the chat.
func (c *Client) UnpinMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := c.bot.UnpinChatMessage(ctx, &bot.UnpinChatMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to unpin message %d in chat %d: %w", messageID, chatID, err)
	}

	c.logger.DebugContext(ctx, "Message unpinned", "chat_id", chatID, "message_id", messageID)
	return nil
}

// DeleteMessage deletes a message from the chat.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := c.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message %d in chat %d: %w", messageID, chatID, err)
	}

	c.logger.DebugContext(ctx, "Message deleted", "chat_id", chatID, "message_id", messageID)
	return nil
}
