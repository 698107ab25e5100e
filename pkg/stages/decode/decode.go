// Package decode implements the tile decoding stage.
package decode

import (
	"context"
	"fmt"
	"time"

	"github.com/user/heiftile/pkg/pipeline"
	"github.com/user/heiftile/pkg/ports"
)

// Selector chooses the backend for a compression format.
type Selector interface {
	Select(format ports.CompressionFormat) (ports.DecoderBackend, error)
}

// Stage decodes a tile on a fresh session of the selected backend.
type Stage struct {
	selector Selector
	logger   ports.Logger
}

// NewStage creates a new decode stage.
func NewStage(selector Selector, logger ports.Logger) *Stage {
	return &Stage{
		selector: selector,
		logger:   logger.WithComponent("decode"),
	}
}

// Execute decodes input.Tile. The session is closed before returning.
func (s *Stage) Execute(ctx context.Context, input pipeline.DecodeInput) (result pipeline.DecodeResult, err error) {
	if err := ctx.Err(); err != nil {
		return result, err
	}

	backend, err := s.selector.Select(input.Tile.Format)
	if err != nil {
		return result, err
	}
	result.Backend = backend.ID()

	session, err := backend.NewSession()
	if err != nil {
		return result, fmt.Errorf("new %s session: %w", backend.ID(), err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s session: %w", backend.ID(), cerr)
		}
	}()

	session.SetStrict(input.Strict)
	if err := session.PushData(input.Tile.Data); err != nil {
		return result, fmt.Errorf("push data: %w", err)
	}

	start := time.Now()
	img, err := session.DecodeImage()
	if err != nil {
		return result, err
	}
	result.Elapsed = time.Since(start)
	result.Image = img

	s.logger.Debug("Decoded %s with %s in %s", input.Tile.Name, backend.Name(), result.Elapsed)
	return result, nil
}
