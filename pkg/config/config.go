// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"

	"gopkg.in/yaml.v3"

	"github.com/user/heiftile/pkg/orchestrator"
	"github.com/user/heiftile/pkg/pipeline"
	"github.com/user/heiftile/pkg/ports"
)

// Backend names accepted in configuration.
const (
	BackendAuto   = "auto"
	BackendNVDEC  = "nvdec"
	BackendFFmpeg = "ffmpeg"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid value")

// Config represents the full configuration for heiftile.
type Config struct {
	// Decoding
	Backend         string `yaml:"backend"`
	Strict          bool   `yaml:"strict"`
	Device          int    `yaml:"device"`
	OperatingPoint  int    `yaml:"operating_point"`
	OutputAllLayers bool   `yaml:"output_all_layers"`
	FFmpegPath      string `yaml:"ffmpeg_path"`

	// Output
	OutputFormat string `yaml:"output_format"`
	OutputDir    string `yaml:"output_dir"`
	Report       bool   `yaml:"report"`

	// Preview
	Preview       bool        `yaml:"preview"`
	MaxPlaneWidth int         `yaml:"max_plane_width"`
	Theme         ThemeConfig `yaml:"theme"`

	// Execution
	Workers  int    `yaml:"workers"`
	LogLevel string `yaml:"log_level"`
}

// ThemeConfig represents preview styling options.
type ThemeConfig struct {
	BackgroundColor string  `yaml:"background_color"`
	BorderColor     string  `yaml:"border_color"`
	TextColor       string  `yaml:"text_color"`
	FontPath        string  `yaml:"font_path"`
	FontSize        float64 `yaml:"font_size"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Backend:      BackendAuto,
		OutputFormat: "png",
		OutputDir:    ".",
		Report:       true,

		MaxPlaneWidth: 256,
		Theme: ThemeConfig{
			BackgroundColor: "#1e1e1e",
			BorderColor:     "#505050",
			TextColor:       "#ffffff",
			FontSize:        12,
		},

		Workers:  4,
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file over Defaults.
func LoadFromFile(fs ports.FileSystem, path string) (Config, error) {
	cfg := Defaults()

	data, err := fs.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendNVDEC, BackendFFmpeg:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	if _, ok := ports.ParseImageFormat(c.OutputFormat); !ok {
		return fmt.Errorf("%w: unknown output format %q", ErrInvalid, c.OutputFormat)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, c.Workers)
	}
	if c.Device < 0 {
		return fmt.Errorf("%w: device must not be negative, got %d", ErrInvalid, c.Device)
	}
	if c.MaxPlaneWidth < 0 {
		return fmt.Errorf("%w: max_plane_width must not be negative, got %d", ErrInvalid, c.MaxPlaneWidth)
	}
	return nil
}

// ImageFormat returns the parsed output format.
func (c Config) ImageFormat() ports.ImageFormat {
	f, _ := ports.ParseImageFormat(c.OutputFormat)
	return f
}

// Level returns the parsed log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}

// ParseColor parses a hex color string to color.Color.
func ParseColor(hex string) color.Color {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return color.Black
	}
	return color.RGBA{
		R: hexByte(hex[0], hex[1]),
		G: hexByte(hex[2], hex[3]),
		B: hexByte(hex[4], hex[5]),
		A: 255,
	}
}

func hexByte(hi, lo byte) uint8 {
	return hexValue(hi)<<4 | hexValue(lo)
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// PreviewTheme converts the theme settings.
func (c Config) PreviewTheme() pipeline.PreviewTheme {
	theme := pipeline.DefaultPreviewTheme()
	if c.Theme.BackgroundColor != "" {
		theme.BackgroundColor = ParseColor(c.Theme.BackgroundColor)
	}
	if c.Theme.BorderColor != "" {
		theme.BorderColor = ParseColor(c.Theme.BorderColor)
	}
	if c.Theme.TextColor != "" {
		theme.TextColor = ParseColor(c.Theme.TextColor)
	}
	if c.Theme.FontSize > 0 {
		theme.FontSize = c.Theme.FontSize
	}
	theme.FontPath = c.Theme.FontPath
	return theme
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		Backend:       c.Backend,
		Strict:        c.Strict,
		Preview:       c.Preview,
		MaxPlaneWidth: c.MaxPlaneWidth,
		Theme:         c.PreviewTheme(),
		Workers:       c.Workers,
		OutputFormat:  c.ImageFormat().String(),
		Report:        c.Report,
	}
}
