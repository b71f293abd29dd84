package handlers

import (
	"log/slog"

	"github.com/edgard/lunchbot/internal/config"
	"github.com/edgard/lunchbot/internal/database"
	"github.com/edgard/lunchbot/internal/workday"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Workdays *workday.Checker
}
