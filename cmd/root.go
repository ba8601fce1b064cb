package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	cfgpkg "github.com/KaramelBytes/markboard-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	debug       bool
	flagLogLvl  string
	flagCourse  string
	flagPassMrk float64

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "markboard",
	Short: "Markboard CLI: student marks dashboard for CSV/XLSX exports",
	Long: `Markboard loads a student marks export (CSV or Excel), derives total marks,
pass/fail results and mark ranges for one course, and summarizes any subject
as KPIs, a mark-range histogram and pass/fail counts by gender. Use "serve"
to expose the same pipeline over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.markboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLvl, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagCourse, "course", "", "course whose records are kept (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flagPassMrk, "pass-mark", 0, "minimum total for a Pass (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && flagLogLvl != "" {
		cfg.LogLevel = flagLogLvl
	}
	if f.Changed("course") && flagCourse != "" {
		cfg.Course = flagCourse
	}
	if f.Changed("pass-mark") && flagPassMrk > 0 {
		cfg.PassMark = flagPassMrk
	}
}

// effectiveConfig returns the loaded config, or defaults when loading failed.
func effectiveConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// newLogger builds the process logger. Logs go to stderr so command output
// on stdout stays machine-readable.
func newLogger(c *cfgpkg.Global) *slog.Logger {
	level := slog.LevelWarn
	if c != nil {
		level = parseLevel(c.LogLevel)
	}
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
