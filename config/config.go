// Package config loads the renderer configuration from defaults, an
// optional config file, XFARENDER_ environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wudi/xfalayout/xfa/layout"
)

const (
	OutputHTML = "html"
	OutputSVG  = "svg"
	OutputJSON = "json"

	DefaultLogLevel = "info"
	DefaultMeasurer = "sfnt"
	DefaultOutput   = OutputHTML
	DefaultOutDir   = "."

	envPrefix = "XFARENDER"
)

// Config holds the settings of one render run.
type Config struct {
	LogLevel string
	// Measurer names the text measurer: sfnt, shaping or fixed.
	Measurer          string
	MaxLayoutAttempts int
	MaxEmptyPages     int
	Output            string
	OutDir            string
	// Page size used for page areas without a medium, in points.
	DefaultPageWidth  float64
	DefaultPageHeight float64
	// ConfigFile is an optional file read before env and flags.
	ConfigFile string

	// Inputs are the positional arguments.
	Inputs []string
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		Measurer:          DefaultMeasurer,
		MaxLayoutAttempts: layout.DefaultMaxAttempts,
		MaxEmptyPages:     layout.DefaultMaxEmptyPages,
		Output:            DefaultOutput,
		OutDir:            DefaultOutDir,
		DefaultPageWidth:  612,
		DefaultPageHeight: 792,
	}
}

// Load parses args with a fresh flag set and merges them over the config
// file, the environment and the defaults.
func Load(args []string) (*Config, error) {
	def := Default()
	fs := pflag.NewFlagSet("xfarender", pflag.ContinueOnError)
	fs.String("config", "", "Config file (yaml, json or toml)")
	fs.String("log-level", def.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("measurer", def.Measurer, "Text measurer (sfnt, shaping, fixed)")
	fs.Int("max-layout-attempts", def.MaxLayoutAttempts, "Layout attempts of flowed containers")
	fs.Int("max-empty-pages", def.MaxEmptyPages, "Consecutive empty pages that stop pagination")
	fs.StringP("output", "o", def.Output, "Output format (html, svg, json)")
	fs.String("out-dir", def.OutDir, "Directory receiving the output files")
	fs.Float64("page-width", def.DefaultPageWidth, "Page width without a medium, in points")
	fs.Float64("page-height", def.DefaultPageHeight, "Page height without a medium, in points")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		LogLevel:          strings.ToLower(v.GetString("log-level")),
		Measurer:          strings.ToLower(v.GetString("measurer")),
		MaxLayoutAttempts: v.GetInt("max-layout-attempts"),
		MaxEmptyPages:     v.GetInt("max-empty-pages"),
		Output:            strings.ToLower(v.GetString("output")),
		OutDir:            v.GetString("out-dir"),
		DefaultPageWidth:  v.GetFloat64("page-width"),
		DefaultPageHeight: v.GetFloat64("page-height"),
		ConfigFile:        v.GetString("config"),
		Inputs:            fs.Args(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	switch c.Measurer {
	case "sfnt", "shaping", "fixed":
	default:
		return fmt.Errorf("invalid measurer: %s (must be one of: sfnt, shaping, fixed)", c.Measurer)
	}
	switch c.Output {
	case OutputHTML, OutputSVG, OutputJSON:
	default:
		return fmt.Errorf("invalid output: %s (must be one of: html, svg, json)", c.Output)
	}
	if c.MaxLayoutAttempts < 1 {
		return errors.New("max layout attempts must be at least 1")
	}
	if c.MaxEmptyPages < 1 {
		return errors.New("max empty pages must be at least 1")
	}
	if c.DefaultPageWidth <= 0 || c.DefaultPageHeight <= 0 {
		return errors.New("default page size must be positive")
	}
	if c.OutDir == "" {
		return errors.New("output directory cannot be empty")
	}
	return nil
}

// LayoutOptions translates the layout settings into engine options.
func (c *Config) LayoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithMaxAttempts(c.MaxLayoutAttempts),
		layout.WithMaxEmptyPages(c.MaxEmptyPages),
		layout.WithDefaultPageSize(c.DefaultPageWidth, c.DefaultPageHeight),
	}
}

// IsDebug reports whether debug logging is enabled.
func (c *Config) IsDebug() bool { return c.LogLevel == "debug" }
