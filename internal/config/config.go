package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yildizm/loglens/internal/session"
)

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Progress ProgressConfig `yaml:"progress" json:"progress"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Watch    WatchConfig    `yaml:"watch" json:"watch"`
}

// ServerConfig locates the analysis backend
type ServerConfig struct {
	URL     string        `yaml:"url" json:"url"`         // base URL of /upload, /summary, /query
	Timeout time.Duration `yaml:"timeout" json:"timeout"` // per-request timeout, 0 disables
}

// ProgressConfig configures the simulated progress trace
type ProgressConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval"` // delay between revealed steps
	Steps    []string      `yaml:"steps" json:"steps"`       // revealed in order while uploading
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Emoji         bool   `yaml:"emoji" json:"emoji"`                   // emoji in text reports
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // debug logging
	Theme         string `yaml:"theme" json:"theme"`                   // default|high-contrast|minimal
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce"` // quiet period before re-analyzing
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			URL:     "http://localhost:8000",
			Timeout: 5 * time.Minute,
		},
		Progress: ProgressConfig{
			Interval: session.DefaultInterval,
			Steps:    append([]string(nil), session.DefaultSteps...),
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Emoji:         true,
			Verbose:       false,
			Theme:         "default",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if err := c.validateProgressConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be non-negative")
	}
	return nil
}

func (c *Config) validateServerConfig() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url must not be empty")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("invalid server.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server.url scheme: %q (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server.url has no host: %s", c.Server.URL)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must be non-negative")
	}
	return nil
}

func (c *Config) validateProgressConfig() error {
	if c.Progress.Interval <= 0 {
		return fmt.Errorf("progress.interval must be greater than 0")
	}
	if len(c.Progress.Steps) == 0 {
		return fmt.Errorf("progress.steps must not be empty")
	}
	return nil
}

func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.Output.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.Output.Theme)
		}
	}
	return nil
}

// UseColor resolves the color mode against whether the output is a terminal
func (c *Config) UseColor(isTerminal bool) bool {
	switch c.Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isTerminal
	}
}
