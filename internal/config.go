package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App           ApplicationConfig   `yaml:"app"`
	SQLite        SQLiteConfig        `yaml:"sqlite"`
	Storage       StorageConfig       `yaml:"storage"`
	Inbox         InboxConfig         `yaml:"inbox"`
	Session       SessionConfig       `yaml:"session"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Reminders     RemindersConfig     `yaml:"reminders"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.SQLite, &c.Storage, &c.Inbox, &c.Session, &c.Notifications, &c.Reminders,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// StorageConfig holds the directory uploaded documents are kept in.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// InboxConfig controls the watched drop directory.
type InboxConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	// OwnerID owns imported documents; zero means the session user.
	OwnerID int64 `yaml:"owner_id"`
}

// Validate validates the inbox configuration.
func (c *InboxConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.OwnerID, validation.Min(int64(0))),
	)
}

// SessionConfig names the user every request acts as. Sign-in happens in
// front of docdesk.
type SessionConfig struct {
	UserID int64 `yaml:"user_id"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.UserID, validation.Required, validation.Min(int64(1))),
	)
}

// NotificationsConfig holds notification delivery settings.
type NotificationsConfig struct {
	// PollInterval is how often clients refresh the badge.
	PollInterval time.Duration `yaml:"poll_interval"`
	// DashboardThrottle spaces dashboard.updated events.
	DashboardThrottle time.Duration `yaml:"dashboard_throttle"`
}

// Validate validates the notification configuration.
func (c *NotificationsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PollInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.DashboardThrottle, validation.Min(time.Duration(0))),
	)
}

// RemindersConfig controls the due date reminder job.
type RemindersConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Interval   time.Duration `yaml:"interval"`
	NotifyDays int           `yaml:"notify_days"`
}

// Validate validates the reminder configuration.
func (c *RemindersConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Interval, validation.When(c.Enabled, validation.Required, validation.Min(time.Minute))),
		validation.Field(&c.NotifyDays, validation.Min(1), validation.Max(30)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./docdesk.db",
		},
		Storage: StorageConfig{
			Path: "./documents",
		},
		Inbox: InboxConfig{
			Path: "./inbox",
		},
		Session: SessionConfig{
			UserID: 1,
		},
		Notifications: NotificationsConfig{
			PollInterval:      time.Minute,
			DashboardThrottle: 2 * time.Second,
		},
		Reminders: RemindersConfig{
			Enabled:    true,
			Interval:   time.Hour,
			NotifyDays: 3,
		},
	}
}
