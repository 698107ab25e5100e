package main

import (
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/heiftile/pkg/adapters/filesink"
	"github.com/user/heiftile/pkg/adapters/ggrenderer"
	"github.com/user/heiftile/pkg/adapters/nullsink"
	"github.com/user/heiftile/pkg/adapters/tilesource"
	"github.com/user/heiftile/pkg/orchestrator"
	"github.com/user/heiftile/pkg/ports"
	"github.com/user/heiftile/pkg/stages/decode"
	"github.com/user/heiftile/pkg/stages/load"
	"github.com/user/heiftile/pkg/stages/preview"
	"github.com/user/heiftile/pkg/stages/save"
	"github.com/user/heiftile/pkg/summarizer"
)

func decodeCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output directory"), Category: l10n.T("Output")},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: l10n.T("Output image format (png, tiff)"), Category: l10n.T("Output")},
		&cli.BoolFlag{Name: "preview", Aliases: []string{"p"}, Usage: l10n.T("Write a plane preview sheet for each tile"), Category: l10n.T("Output")},
		&cli.BoolFlag{Name: "dry-run", Usage: l10n.T("Decode without writing any file"), Category: l10n.T("Output")},
		&cli.BoolFlag{Name: "no-report", Usage: l10n.T("Do not write report.json"), Category: l10n.T("Output")},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T("Output")},
		&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: l10n.T("Number of tiles decoded in parallel"), Category: l10n.T("Decoding")},
	)

	return &cli.Command{
		Name:      "decode",
		Usage:     l10n.T("Decode tiles to PNG or TIFF images"),
		ArgsUsage: "TILE...",
		Flags:     flags,
		Action:    runDecode,
	}
}

func runDecode(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New(l10n.T("At least one tile is required"))
	}

	cfg, log, selector, fs, err := setup(c)
	if err != nil {
		return err
	}

	var paths []string
	for _, pattern := range c.Args().Slice() {
		matches, err := fs.Glob(pattern)
		if err != nil {
			return fmt.Errorf("expand %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}

	var sink ports.ImageSink
	if c.Bool("dry-run") {
		sink = nullsink.New()
	} else {
		if err := fs.MkdirAll(cfg.OutputDir); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		sink = filesink.New(cfg.OutputDir, cfg.ImageFormat(), fs)
	}

	orch := orchestrator.New(
		load.NewStage(tilesource.New(fs), log),
		decode.NewStage(selector, log),
		preview.NewStage(ggrenderer.New(), log),
		save.NewStage(sink, log),
		sink,
		log,
	)

	ctx, cancel := signalContext(log)
	defer cancel()

	batch, runErr := orch.RunBatch(ctx, paths, cfg.ToOrchestratorConfig())
	if batch.ReportPath != "" {
		log.Info("Report saved to %s", batch.ReportPath)
	}

	if path := c.String("summary"); path != "" && batch.Summary != nil {
		formatter := summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		)
		if err := summarizer.NewWriter(formatter, fs).Write(path, batch.Summary); err != nil {
			log.Error("Failed to write summary: %s", err)
		} else {
			log.Info("Summary saved to %s", path)
		}
	}

	return runErr
}
