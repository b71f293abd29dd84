// Package main contains the entrypoint for the lunch bot application.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/lunchbot/internal/bot"
	"github.com/edgard/lunchbot/internal/bot/handlers"
	"github.com/edgard/lunchbot/internal/bot/tasks"
	"github.com/edgard/lunchbot/internal/config"
	"github.com/edgard/lunchbot/internal/database"
	"github.com/edgard/lunchbot/internal/logger"
	"github.com/edgard/lunchbot/internal/scheduler"
	"github.com/edgard/lunchbot/internal/telegram"
	"github.com/edgard/lunchbot/internal/workday"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// database, Telegram client, lunch loop, task scheduler), handles graceful
// shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	workdays := workday.New()

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Workdays: workdays,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	client := telegram.NewClient(tg, log)
	dispatcher := scheduler.NewDispatcher(client, workdays, log, cfg.Telegram.SendTimeout)
	pinned := scheduler.NewPinnedManager(store, client, workdays, log, &cfg.Messages,
		cfg.Telegram.GroupChatID, cfg.Telegram.TopicID)
	loop := scheduler.NewLoop(store, dispatcher, pinned, workdays, log, &cfg.Messages,
		cfg.Scheduler.RefreshHour, cfg.Scheduler.ReminderLeadMinutes)

	taskSched := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	app := bot.NewBot(log, cfg, db, store, tg, loop, pinned, taskSched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
