package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/markboard-cli/internal/config"
	"github.com/KaramelBytes/markboard-cli/internal/grades"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Markboard configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(w, "No config loaded")
			return nil
		}
		fmt.Fprintf(w, "course: %s\n", cfg.Course)
		fmt.Fprintf(w, "pass_mark: %g\n", cfg.PassMark)
		fmt.Fprintf(w, "range_policy: %s\n", cfg.RangePolicy)
		if cfg.Delimiter != "" {
			fmt.Fprintf(w, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.SheetName != "" {
			fmt.Fprintf(w, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(w, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(w, "max_upload_bytes: %d\n", cfg.MaxUploadBytes)
		fmt.Fprintf(w, "log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "course":
			if val == "" {
				return fmt.Errorf("course must not be empty")
			}
			cfg.Course = val
		case "pass_mark":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 || f > 100 {
				return fmt.Errorf("invalid pass_mark: %s (use a number in (0,100])", val)
			}
			cfg.PassMark = f
		case "range_policy":
			p, err := grades.ParseRangePolicy(val)
			if err != nil {
				return err
			}
			cfg.RangePolicy = string(p)
		case "delimiter":
			switch val {
			case ",", ";", "tab", "":
			case "\t":
				val = "tab"
			default:
				return fmt.Errorf("invalid delimiter: %q (use ',' | ';' | 'tab')", val)
			}
			cfg.Delimiter = val
		case "sheet_name":
			cfg.SheetName = val
		case "listen_addr":
			cfg.ListenAddr = val
		case "max_upload_bytes":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for max_upload_bytes: %v", val)
			}
			cfg.MaxUploadBytes = i
		case "log_level":
			switch val {
			case "debug", "info", "warn", "error":
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
			cfg.LogLevel = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
