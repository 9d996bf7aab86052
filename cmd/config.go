package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/flowboard/internal/adapters/storage"
	"github.com/xvierd/flowboard/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and edit timer, backend and notification settings",
	Long:  `Show the current configuration and interactively change the most common settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		reader := bufio.NewReader(cmd.InOrStdin())
		cfg := app.config

		showConfig(out, cfg)

		fmt.Fprintln(out)
		fmt.Fprintln(out, "  What would you like to change?")
		fmt.Fprintln(out, "    [t] Edit timer durations")
		fmt.Fprintln(out, "    [a] Toggle auto-start")
		fmt.Fprintln(out, "    [c] Set backend credentials")
		fmt.Fprintln(out, "    [n] Toggle notifications")
		fmt.Fprintln(out, "    [q] Quit without saving")
		fmt.Fprint(out, "  Choose: ")

		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(strings.ToLower(choice))

		switch choice {
		case "t":
			return editTimer(out, reader, cfg)
		case "a":
			cfg.Timer.AutoStart = !cfg.Timer.AutoStart
			return saveConfig(out, cfg, fmt.Sprintf("auto-start %s", onOff(cfg.Timer.AutoStart)))
		case "c":
			return editCredentials(out, reader, cfg)
		case "n":
			cfg.Notifications.Enabled = !cfg.Notifications.Enabled
			return saveConfig(out, cfg, fmt.Sprintf("notifications %s", onOff(cfg.Notifications.Enabled)))
		default:
			fmt.Fprintln(out, "  No changes.")
			return nil
		}
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
}

func showConfig(out io.Writer, cfg *config.Config) {
	credentials := cfg.Backend.Credentials
	if credentials == "" {
		credentials = "(none, board is read-only)"
	}
	identity := "anonymous"
	switch {
	case cfg.Backend.AuthToken != "":
		identity = "auth token"
	case cfg.Backend.GitIdentity:
		identity = "git user.email"
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Current configuration:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "    Backend:         %s (%s)\n", credentials, storage.BackendFor(cfg.Backend.Credentials))
	fmt.Fprintf(out, "    Identity:        %s\n", identity)
	fmt.Fprintf(out, "    Scope:           %s\n", cfg.Backend.ScopeID)
	fmt.Fprintf(out, "    Default session: %s\n", formatMinutes(time.Duration(cfg.Timer.DefaultSession)))
	fmt.Fprintf(out, "    Break:           %s\n", formatMinutes(time.Duration(cfg.Timer.BreakDuration)))
	fmt.Fprintf(out, "    Auto-start:      %s\n", onOff(cfg.Timer.AutoStart))

	notifStatus := "off"
	if cfg.Notifications.Enabled {
		notifStatus = "on"
		if cfg.Notifications.Sound {
			notifStatus = "on (with sound)"
		}
	}
	fmt.Fprintf(out, "    Notifications:   %s\n", notifStatus)
	fmt.Fprintf(out, "    MCP server:      %s\n", onOff(cfg.MCP.Enabled))
}

func editTimer(out io.Writer, reader *bufio.Reader, cfg *config.Config) error {
	session, err := promptMinutes(out, reader, "Default session", time.Duration(cfg.Timer.DefaultSession))
	if err != nil {
		return err
	}
	brk, err := promptMinutes(out, reader, "Break", time.Duration(cfg.Timer.BreakDuration))
	if err != nil {
		return err
	}

	cfg.Timer.DefaultSession = config.Duration(session)
	cfg.Timer.BreakDuration = config.Duration(brk)
	return saveConfig(out, cfg, fmt.Sprintf("session %s, break %s", formatMinutes(session), formatMinutes(brk)))
}

func editCredentials(out io.Writer, reader *bufio.Reader, cfg *config.Config) error {
	fmt.Fprintf(out, "  Credentials (SQLite path or postgres:// URL, empty for none) [%s]: ", cfg.Backend.Credentials)
	line, _ := reader.ReadString('\n')
	cfg.Backend.Credentials = strings.TrimSpace(line)
	return saveConfig(out, cfg, fmt.Sprintf("backend %s", storage.BackendFor(cfg.Backend.Credentials)))
}

// promptMinutes reads a whole number of minutes; an empty answer keeps current.
func promptMinutes(out io.Writer, reader *bufio.Reader, label string, current time.Duration) (time.Duration, error) {
	fmt.Fprintf(out, "  %s in minutes [%d]: ", label, int(current.Minutes()))
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid minutes %q", line)
	}
	return time.Duration(n) * time.Minute, nil
}

func saveConfig(out io.Writer, cfg *config.Config, summary string) error {
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(out, "\n  Saved: %s\n", summary)
	return nil
}

// formatMinutes formats a duration as 25m, 1h or 1h30m.
func formatMinutes(d time.Duration) string {
	total := int(d.Minutes())
	h, m := total/60, total%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
