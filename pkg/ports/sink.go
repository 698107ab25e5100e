package ports

import (
	"image"
)

// ImageFormat is the file format decoded tiles are written in.
type ImageFormat int

const (
	ImagePNG ImageFormat = iota
	ImageTIFF
)

// String returns the string representation of the image format.
func (f ImageFormat) String() string {
	switch f {
	case ImagePNG:
		return "png"
	case ImageTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// Ext returns the file extension including the dot.
func (f ImageFormat) Ext() string {
	switch f {
	case ImageTIFF:
		return ".tiff"
	default:
		return ".png"
	}
}

// ParseImageFormat parses a format name. ok is false for unknown names.
func ParseImageFormat(s string) (ImageFormat, bool) {
	switch s {
	case "png":
		return ImagePNG, true
	case "tiff", "tif":
		return ImageTIFF, true
	default:
		return ImagePNG, false
	}
}

// ImageSink stores decode results.
type ImageSink interface {
	// SaveImage encodes img under name and returns the written path.
	SaveImage(name string, img image.Image) (string, error)

	// SavePreview stores a plane preview sheet for name and returns the written path.
	SavePreview(name string, img image.Image) (string, error)

	// SaveReport stores a JSON report and returns the written path.
	SaveReport(data []byte) (string, error)
}
