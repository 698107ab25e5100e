// Package save implements the output stage.
package save

import (
	"context"
	"fmt"

	"github.com/user/heiftile/pkg/pipeline"
	"github.com/user/heiftile/pkg/ports"
)

// Stage writes a decoded image and its optional preview to the sink.
type Stage struct {
	sink   ports.ImageSink
	logger ports.Logger
}

// NewStage creates a new save stage.
func NewStage(sink ports.ImageSink, logger ports.Logger) *Stage {
	return &Stage{
		sink:   sink,
		logger: logger.WithComponent("save"),
	}
}

// Execute converts the image and writes it under input.Name.
func (s *Stage) Execute(ctx context.Context, input pipeline.SaveInput) (pipeline.SaveResult, error) {
	result := pipeline.SaveResult{}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	img, err := input.Image.ToImage()
	if err != nil {
		return result, fmt.Errorf("convert image: %w", err)
	}
	path, err := s.sink.SaveImage(input.Name, img)
	if err != nil {
		return result, fmt.Errorf("save image: %w", err)
	}
	result.ImagePath = path

	if input.Preview != nil {
		path, err := s.sink.SavePreview(input.Name, input.Preview)
		if err != nil {
			return result, fmt.Errorf("save preview: %w", err)
		}
		result.PreviewPath = path
	}

	s.logger.Debug("Saved %s", result.ImagePath)
	return result, nil
}
