package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/markboard-cli/internal/grades"
	"github.com/KaramelBytes/markboard-cli/internal/parser"
)

// Global configuration structure.
type Global struct {
	Course      string  `mapstructure:"course" yaml:"course"`
	PassMark    float64 `mapstructure:"pass_mark" yaml:"pass_mark"`
	RangePolicy string  `mapstructure:"range_policy" yaml:"range_policy"`

	// Input parsing
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	SheetName string `mapstructure:"sheet_name" yaml:"sheet_name"`

	// HTTP server
	ListenAddr     string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// GradeOptions converts the configuration into derivation constants.
func (c *Global) GradeOptions() (grades.Options, error) {
	opt := grades.DefaultOptions()
	if c.Course != "" {
		opt.Course = c.Course
	}
	if c.PassMark > 0 {
		opt.PassMark = c.PassMark
	}
	p, err := grades.ParseRangePolicy(c.RangePolicy)
	if err != nil {
		return opt, err
	}
	opt.RangePolicy = p
	return opt, nil
}

// ParserOptions converts the configuration into parser settings.
func (c *Global) ParserOptions() (parser.Options, error) {
	opt := parser.Options{SheetName: c.SheetName}
	switch c.Delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported delimiter: %s", c.Delimiter)
	}
	return opt, nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.markboard/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".markboard")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is loaded first and never overrides variables already set.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MARKBOARD")
	v.AutomaticEnv()

	def := grades.DefaultOptions()
	v.SetDefault("course", def.Course)
	v.SetDefault("pass_mark", def.PassMark)
	v.SetDefault("range_policy", string(def.RangePolicy))
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("listen_addr", "127.0.0.1:8050")
	v.SetDefault("max_upload_bytes", 10<<20)
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".markboard"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := grades.ParseRangePolicy(c.RangePolicy); err != nil {
		return nil, err
	}
	return &c, nil
}
