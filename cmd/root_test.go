package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/flowboard/internal/config"
	"github.com/xvierd/flowboard/internal/domain"
)

// executeCmd is a helper to execute a cobra command in tests
func executeCmd(cmd *cobra.Command, args ...string) (stdout string, stderr string, err error) {
	bufOut := new(bytes.Buffer)
	bufErr := new(bytes.Buffer)

	cmd.SetOut(bufOut)
	cmd.SetErr(bufErr)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return bufOut.String(), bufErr.String(), err
}

// testEnv isolates a CLI run: a fresh home directory, a stable auth token
// and a SQLite board inside the temp dir.
type testEnv struct {
	t    *testing.T
	home string
	db   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FLOWBOARD_BACKEND_AUTH_TOKEN", "test-token-1234")
	return &testEnv{t: t, home: home, db: filepath.Join(home, "board.db")}
}

// writeConfig replaces the config file the next run will load.
func (e *testEnv) writeConfig(mutate func(cfg *config.Config)) {
	e.t.Helper()
	cfg := config.DefaultConfig()
	mutate(cfg)
	if err := config.SaveTo(filepath.Join(e.home, ".flowboard", "config.toml"), cfg); err != nil {
		e.t.Fatalf("SaveTo() error = %v", err)
	}
}

// run executes the root command against the env's database.
func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	resetFlags()
	rootCmd.SetIn(strings.NewReader(stdin))
	stdout, _, err := executeCmd(rootCmd, append([]string{"--db", e.db}, args...)...)
	_ = cleanupServices()
	return stdout, err
}

// runNoDB executes the root command with whatever credentials the config holds.
func (e *testEnv) runNoDB(args ...string) (string, error) {
	e.t.Helper()
	resetFlags()
	rootCmd.SetIn(strings.NewReader(""))
	stdout, _, err := executeCmd(rootCmd, args...)
	_ = cleanupServices()
	return stdout, err
}

// resetFlags restores flag variables between runs of the shared root command.
func resetFlags() {
	dbPath = ""
	jsonOutput = false
	verbose = false
	addFocus = 30
	addEnergy = string(domain.EnergyMedium)
	addType = string(domain.TypeProject)
	listStatus = ""
	listType = ""
	deleteYes = false
}

func TestRootCmd_Structure(t *testing.T) {
	if rootCmd.Use != "flowboard" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "flowboard")
	}

	for _, name := range []string{"add", "list", "advance", "delete", "search", "focus", "mcp", "config"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q is not registered", name)
		}
	}
}

// TestRootCmd_Help tests the --help flag
func TestRootCmd_Help(t *testing.T) {
	resetFlags()
	stdout, _, err := executeCmd(rootCmd, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}
	if !strings.Contains(stdout, "flowboard") {
		t.Error("help output should contain 'flowboard'")
	}
}

// TestRootCmd_Flags tests that global flags are registered
func TestRootCmd_Flags(t *testing.T) {
	for _, name := range []string{"db", "json", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag should be registered", name)
		}
	}
	if f := rootCmd.PersistentFlags().Lookup("verbose"); f != nil && f.Shorthand != "v" {
		t.Errorf("verbose shorthand = %q, want %q", f.Shorthand, "v")
	}
}

// TestFormatMinutes tests the formatMinutes helper function
func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		name     string
		duration int64 // minutes
		want     string
	}{
		{"25 minutes", 25, "25m"},
		{"60 minutes", 60, "1h"},
		{"90 minutes", 90, "1h30m"},
		{"120 minutes", 120, "2h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := time.Duration(tt.duration) * time.Minute
			got := formatMinutes(d)
			if got != tt.want {
				t.Errorf("formatMinutes(%d min) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

// TestGetStatusIcon tests the status icon helper
func TestGetStatusIcon(t *testing.T) {
	tests := []struct {
		status   domain.TaskStatus
		expected string
	}{
		{domain.StatusTodo, "⏳"},
		{domain.StatusInProgress, "▶️"},
		{domain.StatusComplete, "✅"},
		{domain.TaskStatus("unknown"), "❓"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := getStatusIcon(tt.status)
			if got != tt.expected {
				t.Errorf("getStatusIcon(%q) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID() = %q, want 01234567", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %q, want abc", got)
	}
}

func TestResolveToken(t *testing.T) {
	cfg := config.DefaultConfig()

	token, err := resolveToken(cfg, t.TempDir())
	if err != nil || token != "" {
		t.Errorf("no token and git identity off: got %q, %v", token, err)
	}

	cfg.Backend.AuthToken = "explicit-token"
	cfg.Backend.GitIdentity = true
	token, err = resolveToken(cfg, t.TempDir())
	if err != nil || token != "explicit-token" {
		t.Errorf("auth token should win over git identity: got %q, %v", token, err)
	}
}

func TestConfigPathCmd(t *testing.T) {
	env := newTestEnv(t)

	stdout, err := env.run("", "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	want := filepath.Join(env.home, ".flowboard", "config.toml")
	if strings.TrimSpace(stdout) != want {
		t.Errorf("config path = %q, want %q", strings.TrimSpace(stdout), want)
	}
}

func TestConfigCmd_ToggleAutoStart(t *testing.T) {
	env := newTestEnv(t)

	stdout, err := env.run("a\n", "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if !strings.Contains(stdout, "Saved: auto-start on") {
		t.Errorf("output = %q", stdout)
	}

	cfg, err := config.LoadFrom(filepath.Join(env.home, ".flowboard", "config.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !cfg.Timer.AutoStart {
		t.Error("auto-start should be saved")
	}
}
