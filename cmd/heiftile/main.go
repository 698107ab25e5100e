// Package main provides the CLI entry point for heiftile.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/heiftile/pkg/adapters/cuvid"
	"github.com/user/heiftile/pkg/adapters/ffmpegdecoder"
	"github.com/user/heiftile/pkg/adapters/logger"
	"github.com/user/heiftile/pkg/adapters/nvdecoder"
	"github.com/user/heiftile/pkg/adapters/osfilesystem"
	"github.com/user/heiftile/pkg/adapters/smartdecoder"
	"github.com/user/heiftile/pkg/config"
	"github.com/user/heiftile/pkg/ports"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "heiftile",
		Usage:   l10n.T("Decode HEIF/HEIC compressed image tiles"),
		Version: version,
		Commands: []*cli.Command{
			decodeCommand(),
			probeCommand(),
			backendsCommand(),
			versionCommand(),
		},
	}
}

// commonFlags are shared by every command that decodes or selects backends.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Configuration")},
		&cli.StringFlag{Name: "backend", Aliases: []string{"b"}, Usage: l10n.T("Decoder backend (auto, nvdec, ffmpeg)"), Category: l10n.T("Decoding")},
		&cli.BoolFlag{Name: "strict", Usage: l10n.T("Fail on recoverable bitstream errors"), Category: l10n.T("Decoding")},
		&cli.IntFlag{Name: "device", Usage: l10n.T("CUDA device ordinal"), Category: l10n.T("Decoding")},
		&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to the ffmpeg binary"), Category: l10n.T("Decoding")},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
	}
}

// loadConfig reads the optional config file and applies flag overrides.
func loadConfig(c *cli.Context, fs ports.FileSystem) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(fs, path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("strict") {
		cfg.Strict = c.Bool("strict")
	}
	if c.IsSet("device") {
		cfg.Device = c.Int("device")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = ports.LevelQuiet.String()
	}
	if c.IsSet("output") {
		cfg.OutputDir = c.String("output")
	}
	if c.IsSet("format") {
		cfg.OutputFormat = c.String("format")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("preview") {
		cfg.Preview = c.Bool("preview")
	}
	if c.IsSet("no-report") {
		cfg.Report = !c.Bool("no-report")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newBackends creates every decoder backend, hardware first.
func newBackends(cfg config.Config, log ports.Logger) []ports.DecoderBackend {
	return []ports.DecoderBackend{
		nvdecoder.New(cuvid.New(), nvdecoder.Options{
			Device:          cfg.Device,
			OperatingPoint:  cfg.OperatingPoint,
			OutputAllLayers: cfg.OutputAllLayers,
			Strict:          cfg.Strict,
		}, log),
		ffmpegdecoder.New(ffmpegdecoder.Options{
			FFmpegPath: cfg.FFmpegPath,
			Strict:     cfg.Strict,
		}, log),
	}
}

// setup builds the shared runtime objects of a command.
func setup(c *cli.Context) (config.Config, ports.Logger, *smartdecoder.Selector, *osfilesystem.FileSystem, error) {
	fs := osfilesystem.New()
	cfg, err := loadConfig(c, fs)
	if err != nil {
		return cfg, nil, nil, nil, err
	}
	log := logger.New(cfg.Level())
	selector := smartdecoder.New(newBackends(cfg, log), smartdecoder.Options{Backend: cfg.Backend}, log)
	return cfg, log, selector, fs, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
