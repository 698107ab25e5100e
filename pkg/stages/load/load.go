// Package load implements the tile loading stage.
package load

import (
	"context"
	"fmt"

	"github.com/user/heiftile/pkg/pipeline"
	"github.com/user/heiftile/pkg/ports"
)

// Stage reads a tile from a file.
type Stage struct {
	source ports.TileSource
	logger ports.Logger
}

// NewStage creates a new load stage.
func NewStage(source ports.TileSource, logger ports.Logger) *Stage {
	return &Stage{
		source: source,
		logger: logger.WithComponent("load"),
	}
}

// Execute loads the tile at input.Path.
func (s *Stage) Execute(ctx context.Context, input pipeline.LoadInput) (pipeline.LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.LoadResult{}, err
	}

	tile, err := s.source.Load(input.Path)
	if err != nil {
		return pipeline.LoadResult{}, fmt.Errorf("load %s: %w", input.Path, err)
	}
	if tile.Format == ports.FormatUnknown {
		return pipeline.LoadResult{}, fmt.Errorf("load %s: unknown compression format", input.Path)
	}

	s.logger.Debug("Loaded %s tile %s: %d bytes", tile.Format, tile.Name, len(tile.Data))
	return pipeline.LoadResult{Tile: tile}, nil
}
