// Package filesink writes decoded tiles, previews and reports to files.
package filesink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"golang.org/x/image/tiff"

	"github.com/user/heiftile/pkg/ports"
)

// Sink saves output under a base directory.
type Sink struct {
	baseDir string
	format  ports.ImageFormat
	fs      ports.FileSystem
}

// New creates a sink writing images in format under baseDir.
func New(baseDir string, format ports.ImageFormat, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		format:  format,
		fs:      fs,
	}
}

// SaveImage encodes img as <name><ext>.
func (s *Sink) SaveImage(name string, img image.Image) (string, error) {
	data, err := encode(img, s.format)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(s.baseDir, name+s.format.Ext())
	if err := s.fs.WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// SavePreview saves a preview sheet as previews/<name>.png.
func (s *Sink) SavePreview(name string, img image.Image) (string, error) {
	data, err := encode(img, ports.ImagePNG)
	if err != nil {
		return "", fmt.Errorf("encode preview %s: %w", name, err)
	}
	path := filepath.Join(s.baseDir, "previews", name+".png")
	if err := s.fs.WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// SaveReport saves the batch report as report.json.
func (s *Sink) SaveReport(data []byte) (string, error) {
	path := filepath.Join(s.baseDir, "report.json")
	if err := s.fs.WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func encode(img image.Image, format ports.ImageFormat) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case ports.ImagePNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case ports.ImageTIFF:
		if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return buf.Bytes(), nil
}

var _ ports.ImageSink = (*Sink)(nil)
