// Package config provides configuration management for flowboard.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/xvierd/flowboard/internal/domain"
)

// EnvPrefix prefixes environment overrides, e.g. FLOWBOARD_BACKEND_CREDENTIALS.
const EnvPrefix = "FLOWBOARD"

// Config holds all configuration for the flowboard application.
type Config struct {
	Backend       BackendConfig      `mapstructure:"backend"`
	Timer         TimerConfig        `mapstructure:"timer"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	MCP           MCPConfig          `mapstructure:"mcp"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Log           LogConfig          `mapstructure:"log"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// BackendConfig selects the task store and the user identity.
// Empty credentials are valid and leave the board read-only.
type BackendConfig struct {
	// Credentials is a SQLite path or a postgres:// URL.
	Credentials string `mapstructure:"credentials"`
	AuthToken   string `mapstructure:"auth_token"`
	ScopeID     string `mapstructure:"scope_id"`
	// GitIdentity derives the auth token from git's user.email when AuthToken is empty.
	GitIdentity bool `mapstructure:"git_identity"`
}

// TimerConfig holds focus timer settings.
type TimerConfig struct {
	DefaultSession Duration `mapstructure:"default_session"`
	BreakDuration  Duration `mapstructure:"break_duration"`
	AutoStart      bool     `mapstructure:"auto_start"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File is relative to the data directory unless absolute.
	File string `mapstructure:"file"`
}

// ThemeConfig holds theme customization settings (colors and icons).
type ThemeConfig struct {
	ColorTodo          string `mapstructure:"color_todo"`
	ColorInProgress    string `mapstructure:"color_in_progress"`
	ColorComplete      string `mapstructure:"color_complete"`
	ColorFocus         string `mapstructure:"color_focus"`
	ColorTitle         string `mapstructure:"color_title"`
	ColorHelp          string `mapstructure:"color_help"`
	ColorError         string `mapstructure:"color_error"`
	FocusGradientStart string `mapstructure:"focus_gradient_start"`
	FocusGradientEnd   string `mapstructure:"focus_gradient_end"`
	BreakGradientStart string `mapstructure:"break_gradient_start"`
	BreakGradientEnd   string `mapstructure:"break_gradient_end"`
	IconApp            string `mapstructure:"icon_app"`
	IconFocus          string `mapstructure:"icon_focus"`
	IconBreak          string `mapstructure:"icon_break"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorTodo:          "#A0AEC0",
		ColorInProgress:    "#7C6FE0",
		ColorComplete:      "#2ECC71",
		ColorFocus:         "#F6AD55",
		ColorTitle:         "#6B7280",
		ColorHelp:          "#95A5A6",
		ColorError:         "#E53E3E",
		FocusGradientStart: "#7C6FE0",
		FocusGradientEnd:   "#A78BFA",
		BreakGradientStart: "#4ECDC4",
		BreakGradientEnd:   "#2ECC71",
		IconApp:            "🍅",
		IconFocus:          "▶",
		IconBreak:          "☕",
	}
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns the default configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Credentials: "~/.flowboard/flowboard.db",
			ScopeID:     domain.DefaultScopeID,
		},
		Timer: TimerConfig{
			DefaultSession: Duration(25 * time.Minute),
			BreakDuration:  Duration(5 * time.Minute),
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			DataDir: "~/.flowboard",
		},
		Log: LogConfig{
			Level: "info",
			File:  "flowboard.log",
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the default config file, creating it on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	return LoadFrom(configPath)
}

// LoadFrom reads the config file at path. A missing file yields the defaults.
// Environment variables override file values.
func LoadFrom(path string) (*Config, error) {
	v := newViper()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandPaths resolves ~ in paths and defaults the scope.
func (c *Config) expandPaths() error {
	var err error
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "~/.flowboard"
	}
	if c.Storage.DataDir, err = expandHome(c.Storage.DataDir); err != nil {
		return err
	}
	if c.Backend.Credentials, err = expandHome(c.Backend.Credentials); err != nil {
		return err
	}
	if c.Backend.ScopeID == "" {
		c.Backend.ScopeID = domain.DefaultScopeID
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes the configuration to path as TOML.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	for key, value := range cfg.values() {
		v.Set(key, value)
	}

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// values flattens the config into viper keys.
func (c *Config) values() map[string]any {
	return map[string]any{
		"backend.credentials":        c.Backend.Credentials,
		"backend.auth_token":         c.Backend.AuthToken,
		"backend.scope_id":           c.Backend.ScopeID,
		"backend.git_identity":       c.Backend.GitIdentity,
		"timer.default_session":      c.Timer.DefaultSession.String(),
		"timer.break_duration":       c.Timer.BreakDuration.String(),
		"timer.auto_start":           c.Timer.AutoStart,
		"notifications.enabled":      c.Notifications.Enabled,
		"notifications.sound":        c.Notifications.Sound,
		"mcp.enabled":                c.MCP.Enabled,
		"storage.data_dir":           c.Storage.DataDir,
		"log.level":                  c.Log.Level,
		"log.file":                   c.Log.File,
		"theme.color_todo":           c.Theme.ColorTodo,
		"theme.color_in_progress":    c.Theme.ColorInProgress,
		"theme.color_complete":       c.Theme.ColorComplete,
		"theme.color_focus":          c.Theme.ColorFocus,
		"theme.color_title":          c.Theme.ColorTitle,
		"theme.color_help":           c.Theme.ColorHelp,
		"theme.color_error":          c.Theme.ColorError,
		"theme.focus_gradient_start": c.Theme.FocusGradientStart,
		"theme.focus_gradient_end":   c.Theme.FocusGradientEnd,
		"theme.break_gradient_start": c.Theme.BreakGradientStart,
		"theme.break_gradient_end":   c.Theme.BreakGradientEnd,
		"theme.icon_app":             c.Theme.IconApp,
		"theme.icon_focus":           c.Theme.IconFocus,
		"theme.icon_break":           c.Theme.IconBreak,
	}
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".flowboard", "config.toml"), nil
}

// GetDBPath returns the default SQLite database path.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "flowboard.db")
}

// GetAnonymousIDPath returns the file holding this machine's anonymous user id.
func GetAnonymousIDPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "anonymous_id")
}

// GetLogPath returns the log file path.
func GetLogPath(cfg *Config) string {
	if cfg.Log.File == "" || filepath.IsAbs(cfg.Log.File) {
		return cfg.Log.File
	}
	return filepath.Join(cfg.Storage.DataDir, cfg.Log.File)
}

// newViper returns a viper instance with defaults and env overrides registered.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults sets default values for viper. Every key needs a default so
// AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.credentials", "")
	v.SetDefault("backend.auth_token", "")
	v.SetDefault("backend.scope_id", domain.DefaultScopeID)
	v.SetDefault("backend.git_identity", false)
	v.SetDefault("timer.default_session", "25m0s")
	v.SetDefault("timer.break_duration", "5m0s")
	v.SetDefault("timer.auto_start", false)
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.sound", true)
	v.SetDefault("mcp.enabled", true)
	v.SetDefault("storage.data_dir", "~/.flowboard")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "flowboard.log")

	// Theme defaults
	defaults := DefaultConfig()
	for key, value := range defaults.values() {
		if strings.HasPrefix(key, "theme.") {
			v.SetDefault(key, value)
		}
	}
}

// ToTimerConfig converts the config to the domain TimerConfig.
// Non-positive durations fall back to 25/5.
func (c *Config) ToTimerConfig() domain.TimerConfig {
	tc := domain.DefaultTimerConfig()
	if d := time.Duration(c.Timer.DefaultSession); d > 0 {
		tc.DefaultSession = d
	}
	if d := time.Duration(c.Timer.BreakDuration); d > 0 {
		tc.Break = d
	}
	return tc
}

// LogLevel parses Log.Level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
