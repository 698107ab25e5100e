// Package orchestrator coordinates the tile decode stages.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/heiftile/pkg/pipeline"
	"github.com/user/heiftile/pkg/ports"
	"github.com/user/heiftile/pkg/summarizer"
)

// Config contains the run configuration.
type Config struct {
	// Backend is recorded in the report; selection happens in the decode stage.
	Backend string
	Strict  bool

	// Preview renders a plane preview sheet next to each output.
	Preview       bool
	MaxPlaneWidth int
	Theme         pipeline.PreviewTheme

	// Workers bounds the number of tiles decoded at once (default: GOMAXPROCS).
	Workers int
	// OutputFormat is recorded in the report.
	OutputFormat string
	// Report writes a JSON summary through the sink after RunBatch.
	Report bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Backend:       "auto",
		MaxPlaneWidth: 256,
		Theme:         pipeline.DefaultPreviewTheme(),
		Workers:       runtime.GOMAXPROCS(0),
		OutputFormat:  "png",
		Report:        true,
	}
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	loadStage    pipeline.Stage[pipeline.LoadInput, pipeline.LoadResult]
	decodeStage  pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult]
	previewStage pipeline.Stage[pipeline.PreviewInput, pipeline.PreviewResult]
	saveStage    pipeline.Stage[pipeline.SaveInput, pipeline.SaveResult]
	sink         ports.ImageSink
	logger       ports.Logger
}

// New creates a new Orchestrator.
func New(
	loadStage pipeline.Stage[pipeline.LoadInput, pipeline.LoadResult],
	decodeStage pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult],
	previewStage pipeline.Stage[pipeline.PreviewInput, pipeline.PreviewResult],
	saveStage pipeline.Stage[pipeline.SaveInput, pipeline.SaveResult],
	sink ports.ImageSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		loadStage:    loadStage,
		decodeStage:  decodeStage,
		previewStage: previewStage,
		saveStage:    saveStage,
		sink:         sink,
		logger:       logger,
	}
}

// TileResult is the outcome of one tile.
type TileResult struct {
	Name     string
	Path     string
	Backend  string
	Width    int
	Height   int
	Chroma   string
	BitDepth int
	Elapsed  time.Duration
	Output   string
	Preview  string
	Err      error
}

// Info converts the result to a report entry.
func (r TileResult) Info() summarizer.TileInfo {
	info := summarizer.TileInfo{
		Name:      r.Name,
		Path:      r.Path,
		Backend:   r.Backend,
		Width:     r.Width,
		Height:    r.Height,
		Chroma:    r.Chroma,
		BitDepth:  r.BitDepth,
		ElapsedMs: r.Elapsed.Milliseconds(),
		Output:    r.Output,
		Preview:   r.Preview,
	}
	if r.Err != nil {
		info.Error = r.Err.Error()
	}
	return info
}

// Run loads, decodes and saves the tile at path.
func (o *Orchestrator) Run(ctx context.Context, path string, config Config) (TileResult, error) {
	result := TileResult{Path: path}

	// 1. Load tile
	loaded, err := o.loadStage.Execute(ctx, pipeline.LoadInput{Path: path})
	if err != nil {
		o.logger.Error("Failed to load tile: %s", err)
		return result, fmt.Errorf("load stage: %w", err)
	}
	tile := loaded.Tile
	result.Name = tile.Name
	o.logger.Info("Decoding %s (%s, %d bytes)", tile.Name, tile.Format, len(tile.Data))

	// 2. Decode
	decoded, err := o.decodeStage.Execute(ctx, pipeline.DecodeInput{Tile: tile, Strict: config.Strict})
	result.Backend = decoded.Backend
	if err != nil {
		o.logger.Error("Failed to decode %s: %s", tile.Name, err)
		return result, fmt.Errorf("decode stage: %w", err)
	}
	img := decoded.Image
	result.Width = img.Width
	result.Height = img.Height
	result.Chroma = img.Chroma.String()
	result.BitDepth = img.BitDepth()
	result.Elapsed = decoded.Elapsed
	o.logger.Info("Decoded %s: %dx%d %s %d-bit with %s in %d ms",
		tile.Name, img.Width, img.Height, img.Chroma, img.BitDepth(), decoded.Backend, decoded.Elapsed.Milliseconds())

	// 3. Preview (optional)
	var preview pipeline.PreviewResult
	if config.Preview {
		preview, err = o.previewStage.Execute(ctx, pipeline.PreviewInput{
			Title:         tile.Name,
			Image:         img,
			MaxPlaneWidth: config.MaxPlaneWidth,
			Theme:         config.Theme,
		})
		if err != nil {
			o.logger.Error("Failed to render preview: %s", err)
			return result, fmt.Errorf("preview stage: %w", err)
		}
	}

	// 4. Save
	saved, err := o.saveStage.Execute(ctx, pipeline.SaveInput{
		Name:    tile.Name,
		Image:   img,
		Preview: preview.Image,
	})
	if err != nil {
		o.logger.Error("Failed to save output: %s", err)
		return result, fmt.Errorf("save stage: %w", err)
	}
	result.Output = saved.ImagePath
	result.Preview = saved.PreviewPath
	o.logger.Info("Output saved to %s", saved.ImagePath)

	return result, nil
}

// BatchResult contains the outcome of every tile, in input order.
type BatchResult struct {
	Tiles      []TileResult
	Summary    *summarizer.Summary
	ReportPath string
}

// ErrTilesFailed is returned by RunBatch when at least one tile failed.
var ErrTilesFailed = errors.New("orchestrator: some tiles failed")

// RunBatch decodes paths with at most config.Workers tiles in flight.
// A failing tile does not stop the others. The returned error wraps
// ErrTilesFailed when any tile failed, or is the context error on
// cancellation.
func (o *Orchestrator) RunBatch(ctx context.Context, paths []string, config Config) (BatchResult, error) {
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	o.logger.Info("Decoding %d tiles with %d workers", len(paths), workers)

	results := make([]TileResult, len(paths))
	var mu sync.Mutex
	failed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			res, err := o.Run(gctx, path, config)
			res.Err = err
			results[i] = res
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
			// Per-tile errors are reported, not propagated.
			return nil
		})
	}
	_ = g.Wait()

	batch := BatchResult{Tiles: results}
	builder := summarizer.NewBuilder().WithSettings(summarizer.Settings{
		Backend:      config.Backend,
		Strict:       config.Strict,
		OutputFormat: config.OutputFormat,
		Workers:      workers,
	})
	for i, r := range results {
		if r.Path == "" {
			r.Path = paths[i]
			if r.Err == nil {
				r.Err = ctx.Err()
			}
			results[i] = r
		}
		builder.AddTile(r.Info())
	}
	batch.Summary = builder.Build()

	if config.Report {
		data := []byte(summarizer.JSONFormatter.Format(batch.Summary))
		path, err := o.sink.SaveReport(data)
		if err != nil {
			o.logger.Error("Failed to write report: %s", err)
			return batch, fmt.Errorf("write report: %w", err)
		}
		batch.ReportPath = path
	}

	if err := ctx.Err(); err != nil {
		return batch, err
	}
	if failed > 0 {
		o.logger.Warn("%d of %d tiles failed", failed, len(paths))
		return batch, fmt.Errorf("%w: %d of %d", ErrTilesFailed, failed, len(paths))
	}
	o.logger.Info("All %d tiles decoded", len(paths))
	return batch, nil
}
