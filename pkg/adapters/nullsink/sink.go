// Package nullsink provides an image sink that discards everything.
// It backs dry runs that only check whether tiles decode.
package nullsink

import (
	"image"

	"github.com/user/heiftile/pkg/ports"
)

// Sink is a no-op implementation of ports.ImageSink.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// SaveImage discards img and returns an empty path.
func (s *Sink) SaveImage(name string, img image.Image) (string, error) {
	return "", nil
}

// SavePreview discards img and returns an empty path.
func (s *Sink) SavePreview(name string, img image.Image) (string, error) {
	return "", nil
}

// SaveReport discards data and returns an empty path.
func (s *Sink) SaveReport(data []byte) (string, error) {
	return "", nil
}

// Ensure Sink implements ports.ImageSink
var _ ports.ImageSink = (*Sink)(nil)
