package config

import (
	"errors"
	"image/color"
	"testing"

	"github.com/user/heiftile/pkg/mocks"
	"github.com/user/heiftile/pkg/ports"
)

func TestDefaults_Valid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("/etc/heiftile.yaml", []byte(`
backend: nvdec
strict: true
device: 1
output_format: tiff
workers: 8
preview: true
theme:
  background_color: "#102030"
`))

	cfg, err := LoadFromFile(fs, "/etc/heiftile.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Backend != BackendNVDEC || !cfg.Strict || cfg.Device != 1 {
		t.Errorf("decode settings not loaded: %+v", cfg)
	}
	if cfg.ImageFormat() != ports.ImageTIFF {
		t.Errorf("expected tiff, got %v", cfg.ImageFormat())
	}
	if cfg.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Workers)
	}
	if cfg.MaxPlaneWidth != 256 {
		t.Errorf("unset keys should keep defaults, got max_plane_width %d", cfg.MaxPlaneWidth)
	}
	if cfg.Theme.TextColor != "#ffffff" {
		t.Errorf("unset theme keys should keep defaults, got %q", cfg.Theme.TextColor)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("/bad.yaml", []byte("workers: [1"))

	if _, err := LoadFromFile(fs, "/missing.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFromFile(fs, "/bad.yaml"); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "vaapi" }},
		{"unknown format", func(c *Config) { c.OutputFormat = "bmp" }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"negative device", func(c *Config) { c.Device = -1 }},
		{"negative plane width", func(c *Config) { c.MaxPlaneWidth = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#dcdcdc", color.RGBA{R: 220, G: 220, B: 220, A: 255}},
		{"FF8000", color.RGBA{R: 255, G: 128, B: 0, A: 255}},
		{"", color.Black},
		{"#abc", color.Black},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseColor(tt.in); got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToOrchestratorConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Strict = true
	cfg.OutputFormat = "tif"
	cfg.Theme.FontSize = 0

	oc := cfg.ToOrchestratorConfig()
	if !oc.Strict || oc.Workers != cfg.Workers {
		t.Errorf("settings not carried over: %+v", oc)
	}
	if oc.OutputFormat != "tiff" {
		t.Errorf("expected normalized format tiff, got %q", oc.OutputFormat)
	}
	if oc.Theme.FontSize != 12 {
		t.Errorf("zero font size should keep the default, got %v", oc.Theme.FontSize)
	}
	if oc.Theme.BackgroundColor != (color.RGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 255}) {
		t.Errorf("unexpected background %v", oc.Theme.BackgroundColor)
	}
}
