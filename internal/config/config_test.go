package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xvierd/flowboard/internal/domain"
)

func TestDefaultConfig_Timer(t *testing.T) {
	cfg := DefaultConfig()
	tc := cfg.ToTimerConfig()
	if tc.DefaultSession != 25*time.Minute {
		t.Errorf("expected default session 25m, got %v", tc.DefaultSession)
	}
	if tc.Break != 5*time.Minute {
		t.Errorf("expected break 5m, got %v", tc.Break)
	}
	if cfg.Timer.AutoStart {
		t.Error("expected auto_start to default to false")
	}
}

func TestToTimerConfig_NonPositiveFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timer.DefaultSession = 0
	cfg.Timer.BreakDuration = Duration(-time.Minute)

	if got := cfg.ToTimerConfig(); got != domain.DefaultTimerConfig() {
		t.Errorf("ToTimerConfig() = %+v, want defaults", got)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Backend.Credentials != "" {
		t.Errorf("expected no credentials, got %q", cfg.Backend.Credentials)
	}
	if cfg.Backend.ScopeID != domain.DefaultScopeID {
		t.Errorf("expected scope %q, got %q", domain.DefaultScopeID, cfg.Backend.ScopeID)
	}
	if time.Duration(cfg.Timer.DefaultSession) != 25*time.Minute {
		t.Errorf("expected 25m session, got %v", cfg.Timer.DefaultSession)
	}
	if cfg.Theme.ColorFocus != DefaultThemeConfig().ColorFocus {
		t.Errorf("expected default theme, got %q", cfg.Theme.ColorFocus)
	}
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
credentials = "/tmp/board.db"
auth_token = "secret-token"
scope_id = "team"

[timer]
default_session = "50m"
break_duration = "10m"
auto_start = true

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Backend.Credentials != "/tmp/board.db" || cfg.Backend.AuthToken != "secret-token" || cfg.Backend.ScopeID != "team" {
		t.Errorf("backend = %+v", cfg.Backend)
	}
	tc := cfg.ToTimerConfig()
	if tc.DefaultSession != 50*time.Minute || tc.Break != 10*time.Minute {
		t.Errorf("timer = %+v", tc)
	}
	if !cfg.Timer.AutoStart {
		t.Error("expected auto_start = true")
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("FLOWBOARD_BACKEND_CREDENTIALS", "postgres://localhost/flowboard")
	t.Setenv("FLOWBOARD_TIMER_AUTO_START", "true")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Backend.Credentials != "postgres://localhost/flowboard" {
		t.Errorf("credentials = %q", cfg.Backend.Credentials)
	}
	if !cfg.Timer.AutoStart {
		t.Error("expected env to enable auto_start")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := DefaultConfig()
	want.Backend.Credentials = "/data/board.db"
	want.Timer.BreakDuration = Duration(15 * time.Minute)

	if err := SaveTo(path, want); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if got.Backend.Credentials != "/data/board.db" {
		t.Errorf("credentials = %q", got.Backend.Credentials)
	}
	if got.Timer.BreakDuration != want.Timer.BreakDuration {
		t.Errorf("break = %v, want %v", got.Timer.BreakDuration, want.Timer.BreakDuration)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/.flowboard", filepath.Join(home, ".flowboard")},
		{"/abs/path", "/abs/path"},
		{"relative.db", "relative.db"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := expandHome(tt.in)
		if err != nil {
			t.Fatalf("expandHome(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetLogPath(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataDir: "/data"}, Log: LogConfig{File: "board.log"}}
	if got := GetLogPath(cfg); got != filepath.Join("/data", "board.log") {
		t.Errorf("GetLogPath() = %q", got)
	}
	cfg.Log.File = "/var/log/flowboard.log"
	if got := GetLogPath(cfg); got != "/var/log/flowboard.log" {
		t.Errorf("GetLogPath() = %q", got)
	}
}
