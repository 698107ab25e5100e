package pipeline

import (
	"image"
	"image/color"
	"time"

	"github.com/user/heiftile/pkg/heifimage"
	"github.com/user/heiftile/pkg/ports"
)

// =============================================================================
// Load Stage Types
// =============================================================================

// LoadInput names the file a tile is read from.
type LoadInput struct {
	Path string
}

// LoadResult contains the loaded tile.
type LoadResult struct {
	Tile *ports.Tile
}

// =============================================================================
// Decode Stage Types
// =============================================================================

// DecodeInput contains the tile to decode.
type DecodeInput struct {
	Tile   *ports.Tile
	Strict bool
}

// DecodeResult contains the decoded image.
type DecodeResult struct {
	Image *heifimage.Image
	// Backend is the ID of the backend that decoded the tile.
	Backend string
	Elapsed time.Duration
}

// =============================================================================
// Preview Stage Types
// =============================================================================

// PreviewInput contains the image whose planes are laid out side by side.
type PreviewInput struct {
	Title string
	Image *heifimage.Image
	// MaxPlaneWidth bounds the width each plane is drawn at (default: 256).
	MaxPlaneWidth int
	Theme         PreviewTheme
}

// PreviewTheme defines preview styling.
type PreviewTheme struct {
	BackgroundColor color.Color
	BorderColor     color.Color
	TextColor       color.Color
	FontSize        float64
	FontPath        string
	Gap             int
	Padding         int
	LabelHeight     int
}

// DefaultPreviewTheme returns a default preview theme.
func DefaultPreviewTheme() PreviewTheme {
	return PreviewTheme{
		BackgroundColor: color.RGBA{R: 30, G: 30, B: 30, A: 255},
		BorderColor:     color.RGBA{R: 80, G: 80, B: 80, A: 255},
		TextColor:       color.White,
		FontSize:        12,
		Gap:             16,
		Padding:         16,
		LabelHeight:     20,
	}
}

// PreviewResult contains the preview sheet.
type PreviewResult struct {
	Image image.Image
}

// =============================================================================
// Save Stage Types
// =============================================================================

// SaveInput contains what is written for one tile.
type SaveInput struct {
	Name  string
	Image *heifimage.Image
	// Preview is optional.
	Preview image.Image
}

// SaveResult contains the written paths.
type SaveResult struct {
	ImagePath   string
	PreviewPath string
}
