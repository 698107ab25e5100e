package mocks

import (
	"image"
	"sync"

	"github.com/user/heiftile/pkg/ports"
)

// ImageSink is a mock implementation of ports.ImageSink.
type ImageSink struct {
	mu sync.RWMutex

	Images   map[string]image.Image
	Previews map[string]image.Image
	Report   []byte

	SaveImageErr error
}

// NewImageSink creates a new mock ImageSink.
func NewImageSink() *ImageSink {
	return &ImageSink{
		Images:   make(map[string]image.Image),
		Previews: make(map[string]image.Image),
	}
}

func (m *ImageSink) SaveImage(name string, img image.Image) (string, error) {
	if m.SaveImageErr != nil {
		return "", m.SaveImageErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Images[name] = img
	return name + ".png", nil
}

func (m *ImageSink) SavePreview(name string, img image.Image) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Previews[name] = img
	return name + ".preview.png", nil
}

func (m *ImageSink) SaveReport(data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Report = data
	return "report.json", nil
}

// Image returns the image saved under name.
func (m *ImageSink) Image(name string) (image.Image, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.Images[name]
	return img, ok
}

var _ ports.ImageSink = (*ImageSink)(nil)
