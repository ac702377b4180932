package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabloom-cli/internal/prep"
)

// Global configuration structure.
type Global struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Pipeline defaults used when --clean/--scale are omitted.
	DefaultCleaning []string `mapstructure:"default_cleaning" yaml:"default_cleaning"`
	DefaultScaling  string   `mapstructure:"default_scaling" yaml:"default_scaling"`

	// Loader options. Empty separators are auto-detected.
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows"`

	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	// Importance forest
	ForestTrees    int   `mapstructure:"forest_trees" yaml:"forest_trees"`
	ForestSeed     int64 `mapstructure:"forest_seed" yaml:"forest_seed"`
	ForestMaxDepth int   `mapstructure:"forest_max_depth" yaml:"forest_max_depth"`

	SampleRows int `mapstructure:"sample_rows" yaml:"sample_rows"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"log_level", "log_format", "default_cleaning", "default_scaling",
	"delimiter", "decimal_separator", "thousands_separator", "max_rows",
	"output_dir", "metrics_file", "forest_trees", "forest_seed",
	"forest_max_depth", "sample_rows",
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
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
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABLOOM")
	v.AutomaticEnv()

	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
	v.SetDefault("default_cleaning", []string{})
	v.SetDefault("default_scaling", "none")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("output_dir", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("forest_trees", 100)
	v.SetDefault("forest_seed", 0)
	v.SetDefault("forest_max_depth", 0)
	v.SetDefault("sample_rows", 5)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set validates val and assigns it to key.
func (c *Global) Set(key, val string) error {
	switch key {
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "log_format":
		switch val {
		case "console", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	case "default_cleaning":
		methods, err := prep.ParseCleaningConfig(val)
		if err != nil {
			return err
		}
		c.DefaultCleaning = c.DefaultCleaning[:0]
		for _, m := range methods {
			c.DefaultCleaning = append(c.DefaultCleaning, m.String())
		}
	case "default_scaling":
		s, err := prep.ParseStrategy(val)
		if err != nil {
			return err
		}
		c.DefaultScaling = s.String()
	case "delimiter":
		switch val {
		case ",", ";", "tab", "\t", "":
			c.Delimiter = val
		default:
			return fmt.Errorf("invalid delimiter: %q (use ',', ';' or 'tab')", val)
		}
	case "decimal_separator":
		c.DecimalSeparator = val
	case "thousands_separator":
		c.ThousandsSeparator = val
	case "max_rows", "forest_trees", "forest_max_depth", "sample_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid non-negative int for %s: %v", key, val)
		}
		switch key {
		case "max_rows":
			c.MaxRows = i
		case "forest_trees":
			c.ForestTrees = i
		case "forest_max_depth":
			c.ForestMaxDepth = i
		case "sample_rows":
			c.SampleRows = i
		}
	case "forest_seed":
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for forest_seed: %w", err)
		}
		c.ForestSeed = i
	case "output_dir":
		c.OutputDir = val
	case "metrics_file":
		c.MetricsFile = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get renders the value of key for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "default_cleaning":
		return strings.Join(c.DefaultCleaning, ","), nil
	case "default_scaling":
		return c.DefaultScaling, nil
	case "delimiter":
		return c.Delimiter, nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "thousands_separator":
		return c.ThousandsSeparator, nil
	case "max_rows":
		return strconv.Itoa(c.MaxRows), nil
	case "output_dir":
		return c.OutputDir, nil
	case "metrics_file":
		return c.MetricsFile, nil
	case "forest_trees":
		return strconv.Itoa(c.ForestTrees), nil
	case "forest_seed":
		return strconv.FormatInt(c.ForestSeed, 10), nil
	case "forest_max_depth":
		return strconv.Itoa(c.ForestMaxDepth), nil
	case "sample_rows":
		return strconv.Itoa(c.SampleRows), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}
