// Package main provides the CLI entrypoint for puzzlescore.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/puzzlescore/internal/aggregate"
	"github.com/verte-zerg/puzzlescore/internal/api"
	"github.com/verte-zerg/puzzlescore/internal/calendar"
	"github.com/verte-zerg/puzzlescore/internal/config"
	"github.com/verte-zerg/puzzlescore/internal/store"
)

const (
	defaultAddr      = "127.0.0.1:8080"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

var (
	configPath     string
	dbPath         string
	timezone       string
	unknownPlayer  string
	editWindowDays int
	storeTimeout   time.Duration
	storeRetries   int
	logLevel       string
	logFormat      string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "puzzlescore",
		Short:         "Daily Wordle, Connections and Strands scoreboard",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	flags.StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database path")
	flags.StringVar(&timezone, "timezone", calendar.DefaultTimezone, "reference timezone for day and month boundaries")
	flags.StringVar(&unknownPlayer, "unknown-player", aggregate.Abort.String(), "rows for players outside the roster: abort or skip")
	flags.IntVar(&editWindowDays, "edit-window-days", 0, "extra days beyond yesterday that stay editable")
	flags.DurationVar(&storeTimeout, "store-timeout", store.DefaultTimeout, "timeout per database attempt")
	flags.IntVar(&storeRetries, "store-retries", store.DefaultRetries, "retries for transient database errors")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", defaultLogFormat, "log format (console or json)")

	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newFinalizeCmd())
	rootCmd.AddCommand(newEnterCmd())
	rootCmd.AddCommand(newBoardCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newArchivesCmd())
	rootCmd.AddCommand(newChartCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadFileConfig reads the config file and folds it into the shared flags
// the user did not set.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Store.Path)
	applyDurationConfig(cmd, "store-timeout", &storeTimeout, fileCfg.Store.Timeout)
	applyIntConfig(cmd, "store-retries", &storeRetries, fileCfg.Store.Retries)
	applyStringConfig(cmd, "timezone", &timezone, fileCfg.Board.Timezone)
	applyStringConfig(cmd, "unknown-player", &unknownPlayer, fileCfg.Board.UnknownPlayer)
	applyIntConfig(cmd, "edit-window-days", &editWindowDays, fileCfg.Board.EditWindowDays)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)

	if editWindowDays < 0 {
		return config.FileConfig{}, fmt.Errorf("--edit-window-days must be >= 0")
	}
	if storeRetries < 0 {
		return config.FileConfig{}, fmt.Errorf("--store-retries must be >= 0")
	}
	return fileCfg, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# puzzlescore configuration
# Uncomment a value to enable it. CLI flags override config values.

[board]
# timezone = %q   # Reference timezone for "today" and month boundaries
# unknown-player = %q             # Rows for players outside the roster: abort or skip
# edit-window-days = 0                # Extra days beyond yesterday that stay editable
#
# Display names map to stable seats; renaming a player keeps their history.
# [[board.players]]
# name = "Keith"
# seat = "player1"

[store]
# path = %q
# timeout = %q                      # Per attempt
# retries = %d                        # Retries for busy or locked database errors

[server]
# addr = %q
# admin-key = ""                      # X-API-Key value that grants admin access
# rate = %.1f                          # Write requests per second per client IP
# burst = %d

[log]
# level = %q
# format = %q                  # console or json
`,
		calendar.DefaultTimezone,
		aggregate.Abort.String(),
		config.DefaultDBPath(),
		store.DefaultTimeout.String(),
		store.DefaultRetries,
		defaultAddr,
		api.DefaultRate,
		api.DefaultBurst,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
