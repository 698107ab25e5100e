// Package preview implements the plane preview stage.
package preview

import (
	"context"
	"fmt"
	"image"

	"github.com/user/heiftile/pkg/heifimage"
	"github.com/user/heiftile/pkg/pipeline"
	"github.com/user/heiftile/pkg/ports"
)

const defaultMaxPlaneWidth = 256

// Stage lays out the planes of a decoded image side by side with labels.
type Stage struct {
	renderer ports.Renderer
	logger   ports.Logger
}

// NewStage creates a new preview stage.
func NewStage(renderer ports.Renderer, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		logger:   logger.WithComponent("preview"),
	}
}

// Execute renders the preview sheet. Every plane is scaled by the factor
// that fits the luma plane into MaxPlaneWidth, so subsampled chroma keeps
// its relative size.
func (s *Stage) Execute(ctx context.Context, input pipeline.PreviewInput) (pipeline.PreviewResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.PreviewResult{}, err
	}
	img := input.Image
	if img == nil || len(img.Planes()) == 0 {
		return pipeline.PreviewResult{}, fmt.Errorf("no planes to preview")
	}

	maxWidth := input.MaxPlaneWidth
	if maxWidth <= 0 {
		maxWidth = defaultMaxPlaneWidth
	}
	scale := 1.0
	if img.Width > maxWidth {
		scale = float64(maxWidth) / float64(img.Width)
	}

	theme := input.Theme
	type cell struct {
		plane *heifimage.Plane
		w, h  int
	}
	var cells []cell
	width := theme.Padding * 2
	tallest := 0
	for i, p := range img.Planes() {
		c := cell{plane: p, w: max(int(float64(p.Width)*scale), 1), h: max(int(float64(p.Height)*scale), 1)}
		cells = append(cells, c)
		if i > 0 {
			width += theme.Gap
		}
		width += c.w
		tallest = max(tallest, c.h)
	}
	height := theme.Padding*2 + theme.LabelHeight*2 + tallest

	canvas := s.renderer.CreateCanvas(width, height, theme.BackgroundColor)
	text := ports.TextStyle{
		FontSize: theme.FontSize,
		FontPath: theme.FontPath,
		Color:    theme.TextColor,
	}

	title := fmt.Sprintf("%s %dx%d %s", input.Title, img.Width, img.Height, img.Chroma)
	canvas.DrawText(title, theme.Padding, theme.Padding+theme.LabelHeight/2, text)

	x := theme.Padding
	top := theme.Padding + theme.LabelHeight*2
	for _, c := range cells {
		label := fmt.Sprintf("%s %dx%d %d-bit", c.plane.Channel, c.plane.Width, c.plane.Height, c.plane.BitDepth)
		canvas.DrawText(label, x, theme.Padding+theme.LabelHeight+theme.LabelHeight/2, text)

		var gray image.Image = c.plane.Gray()
		if c.w != c.plane.Width || c.h != c.plane.Height {
			gray = s.renderer.ResizeImage(gray, c.w, c.h)
		}
		canvas.DrawImage(gray, x, top)
		canvas.DrawRectStroke(x, top, c.w, c.h, theme.BorderColor, 1)
		x += c.w + theme.Gap
	}

	s.logger.Debug("Preview rendered: %dx%d", width, height)
	return pipeline.PreviewResult{Image: canvas.ToImage()}, nil
}
