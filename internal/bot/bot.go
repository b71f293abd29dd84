// Package bot implements the core bot lifecycle management and component
// orchestration for the lunch bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/lunchbot/internal/config"
	"github.com/edgard/lunchbot/internal/database"
	"github.com/edgard/lunchbot/internal/scheduler"
)

// teardownTimeout bounds the pinned schedule cleanup that runs after the
// parent context is already canceled.
const teardownTimeout = 10 * time.Second

// Bot represents the main bot application and manages its components'
// lifecycle: the Telegram update listener, the minute-resolution lunch
// loop, and the background task scheduler.
type Bot struct {
	logger        *slog.Logger
	cfg           *config.Config
	db            *sqlx.DB
	store         database.Store
	tgBot         *tgbot.Bot
	loop          *scheduler.Loop
	pinned        *scheduler.PinnedManager
	taskScheduler *Scheduler
}

// NewBot creates a new instance of the bot with all required dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store database.Store,
	tgBot *tgbot.Bot,
	loop *scheduler.Loop,
	pinned *scheduler.PinnedManager,
	taskScheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:        logger.With("component", "bot_orchestrator"),
		cfg:           cfg,
		db:            db,
		store:         store,
		tgBot:         tgBot,
		loop:          loop,
		pinned:        pinned,
		taskScheduler: taskScheduler,
	}
}

// Run starts the bot and all its components, handling graceful shutdown on
// context cancellation. It returns an error if any component fails during
// startup or execution.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")

		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")

			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting lunch scheduler loop...")
		err := b.loop.Run(gCtx)

		// The parent context is gone by now, so the cleanup gets its own
		// bounded context to remove the pinned message before exit.
		teardownCtx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		if terr := b.pinned.Teardown(teardownCtx); terr != nil {
			b.logger.Error("Failed to tear down pinned schedule on shutdown", "error", terr)
		}

		return err
	})

	g.Go(func() error {
		b.logger.Info("Starting task scheduler...")
		if err := b.taskScheduler.Start(); err != nil {
			b.logger.Error("Failed to start task scheduler", "error", err)
			return fmt.Errorf("failed to start task scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping task scheduler...")

		if err := b.taskScheduler.Stop(); err != nil {
			b.logger.Error("Error stopping task scheduler", "error", err)
		}

		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
