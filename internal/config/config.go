// Package config provides configuration loading, validation, and management
// for the lunch bot. It reads defaults, an optional config.yaml, and
// BOT_-prefixed environment variables, then validates the result.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration parameters for all
// components of the lunch bot: logging, Telegram access, database,
// scheduling, and user-facing message templates.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  Messages        `mapstructure:"messages"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds bot credentials and chat targeting. GroupChatID and
// TopicID are optional: when GroupChatID is zero all group-broadcast
// features degrade to no-ops and only per-user reminders are sent.
type TelegramConfig struct {
	Token       string        `mapstructure:"token"         validate:"required"`
	AdminUserID int64         `mapstructure:"admin_user_id" validate:"required,gt=0"`
	GroupChatID int64         `mapstructure:"group_chat_id"`
	TopicID     int           `mapstructure:"topic_id"`
	SendTimeout time.Duration `mapstructure:"send_timeout"  validate:"min=1s,max=1m"`
}

// DatabaseConfig holds the SQLite storage location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig controls the lunch loop and the background task runner.
type SchedulerConfig struct {
	RefreshHour         int                   `mapstructure:"refresh_hour"          validate:"min=0,max=23"`
	ReminderLeadMinutes int                   `mapstructure:"reminder_lead_minutes" validate:"min=1,max=60"`
	Tasks               map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig describes one gocron-managed background task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Messages holds every user-facing text. Formatting verbs are documented
// next to each default in setDefaults; templates are passed to fmt.Sprintf
// with the arguments in that order.
type Messages struct {
	Welcome       string `mapstructure:"welcome"        validate:"required"`
	Help          string `mapstructure:"help"           validate:"required"`
	NotAuthorized string `mapstructure:"not_authorized" validate:"required"`

	LunchCurrent       string `mapstructure:"lunch_current"         validate:"required"`
	LunchUnset         string `mapstructure:"lunch_unset"           validate:"required"`
	LunchInvalidTime   string `mapstructure:"lunch_invalid_time"    validate:"required"`
	LunchSaveError     string `mapstructure:"lunch_save_error"      validate:"required"`
	LunchSetTomorrow   string `mapstructure:"lunch_set_tomorrow"    validate:"required"`
	LunchSetImminent   string `mapstructure:"lunch_set_imminent"    validate:"required"`
	LunchSetToday      string `mapstructure:"lunch_set_today"       validate:"required"`
	NotifyEnabled      string `mapstructure:"notify_enabled"        validate:"required"`
	NotifyDisabled     string `mapstructure:"notify_disabled"       validate:"required"`
	NotifyNotSignedUp  string `mapstructure:"notify_not_signed_up"  validate:"required"`
	NotifyToggleError  string `mapstructure:"notify_toggle_error"   validate:"required"`
	RemoveDone         string `mapstructure:"remove_done"           validate:"required"`
	RemoveNotSignedUp  string `mapstructure:"remove_not_signed_up"  validate:"required"`
	RemoveError        string `mapstructure:"remove_error"          validate:"required"`
	ReminderNow        string `mapstructure:"reminder_now"          validate:"required"`
	ReminderSoon       string `mapstructure:"reminder_soon"         validate:"required"`
	ScheduleHeader     string `mapstructure:"schedule_header"       validate:"required"`
	ScheduleEmpty      string `mapstructure:"schedule_empty"        validate:"required"`
	ScheduleFooter     string `mapstructure:"schedule_footer"       validate:"required"`
	ScheduleMutedMark  string `mapstructure:"schedule_muted_mark"`
	FallbackName       string `mapstructure:"fallback_name"         validate:"required"`
}

// Load reads configuration from defaults, config.yaml (optional), and
// BOT_-prefixed environment variables, then validates it.
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay, defaults + env apply.
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	slog.Info("configuration loaded",
		"log_level", cfg.Log.Level,
		"token_prefix", redactToken(cfg.Telegram.Token),
		"group_chat_id", cfg.Telegram.GroupChatID,
		"topic_id", cfg.Telegram.TopicID,
		"db_path", cfg.Database.Path,
		"refresh_hour", cfg.Scheduler.RefreshHour)

	return cfg, nil
}

// GroupConfigured reports whether a group-broadcast target is set.
func (c *TelegramConfig) GroupConfigured() bool {
	return c.GroupChatID != 0
}

func redactToken(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", false)

	// Empty defaults register the credential keys so AutomaticEnv can bind
	// them even when no config file is present.
	viper.SetDefault("telegram.token", "")
	viper.SetDefault("telegram.admin_user_id", 0)
	viper.SetDefault("telegram.group_chat_id", 0)
	viper.SetDefault("telegram.topic_id", 0)
	viper.SetDefault("telegram.send_timeout", 10*time.Second)

	viper.SetDefault("database.path", "lunch_bot.db")

	viper.SetDefault("scheduler.refresh_hour", 8)
	viper.SetDefault("scheduler.reminder_lead_minutes", 5)
	viper.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	viper.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 4 * * *")

	viper.SetDefault("messages.welcome",
		"Hi! I manage the lunch schedule. Use /help for the list of commands.")
	viper.SetDefault("messages.help",
		"🍽 Available commands:\n\n"+
			"/start - Start talking to the bot\n"+
			"/help - Show this list\n"+
			"/lunch - Show your current lunch time\n"+
			"/lunch HH:MM - Set your lunch time (e.g. /lunch 13:30)\n"+
			"/notifications - Toggle reminders on or off\n"+
			"/remove - Remove yourself from the schedule\n\n"+
			"📅 Reminders are sent on workdays only, 5 minutes before lunch and at lunch time.")
	viper.SetDefault("messages.not_authorized", "You are not authorized to use this command.")

	viper.SetDefault("messages.lunch_current", "Your lunch time is set to %s.")                                    // time
	viper.SetDefault("messages.lunch_unset", "You have no lunch time yet. Use /lunch HH:MM to set one.")
	viper.SetDefault("messages.lunch_invalid_time", "Invalid time format. Use HH:MM, for example: /lunch 13:30.")
	viper.SetDefault("messages.lunch_save_error", "❌ Could not save your lunch time. Please try again.")
	viper.SetDefault("messages.lunch_set_tomorrow",
		"✅ Lunch time set to %s\nReminders resume on the next workday (%s).") // time, date
	viper.SetDefault("messages.lunch_set_imminent",
		"✅ Lunch time set to %s\n\n⏰ Only %s left until lunch!") // time, remaining
	viper.SetDefault("messages.lunch_set_today",
		"✅ Lunch time set to %s\n\n⏰ Time until lunch today: %s\n🔄 The schedule updates automatically.") // time, remaining

	viper.SetDefault("messages.notify_enabled", "🔔 Notifications enabled ✅")
	viper.SetDefault("messages.notify_disabled", "🔔 Notifications disabled ❌")
	viper.SetDefault("messages.notify_not_signed_up",
		"❌ You are not on the schedule. Use /lunch HH:MM to set a lunch time first.")
	viper.SetDefault("messages.notify_toggle_error", "❌ Could not update your notification settings.")

	viper.SetDefault("messages.remove_done",
		"✅ You have been removed from the lunch schedule.\nUse /lunch HH:MM to come back.")
	viper.SetDefault("messages.remove_not_signed_up", "❌ You are not on the lunch schedule.")
	viper.SetDefault("messages.remove_error", "❌ Could not remove you from the schedule.")

	viper.SetDefault("messages.reminder_now", "🍽️ Lunch time! (%s)\n\nEnjoy your meal, %s! 😊")  // time, name
	viper.SetDefault("messages.reminder_soon", "⏰ %d minutes until lunch!\n\nLunch time: %s 🍽️") // lead, time

	viper.SetDefault("messages.schedule_header", "📅 <b>Today's lunch schedule</b>")
	viper.SetDefault("messages.schedule_empty", "❌ Nobody has signed up for lunch yet")
	viper.SetDefault("messages.schedule_footer", "<i>Last updated: %s</i>") // time
	viper.SetDefault("messages.schedule_muted_mark", " 🔕")
	viper.SetDefault("messages.fallback_name", "Colleague")
}
