package mocks

import (
	"fmt"
	"sync"

	"github.com/user/heiftile/pkg/heifimage"
	"github.com/user/heiftile/pkg/ports"
)

// Backend is a mock implementation of ports.DecoderBackend.
type Backend struct {
	IDValue    string
	Priorities map[ports.CompressionFormat]int

	NewSessionFunc  func() (ports.DecoderSession, error)
	DecodeImageFunc func(data []byte) (*heifimage.Image, error)

	mu       sync.Mutex
	Sessions []*DecoderSession
}

// NewBackend creates a backend reporting the given priorities.
// Its sessions decode every access unit into a 16x16 gray image.
func NewBackend(id string, priorities map[ports.CompressionFormat]int) *Backend {
	return &Backend{IDValue: id, Priorities: priorities}
}

func (m *Backend) ID() string   { return m.IDValue }
func (m *Backend) Name() string { return "mock " + m.IDValue }

func (m *Backend) SupportsFormat(format ports.CompressionFormat) int {
	return m.Priorities[format]
}

func (m *Backend) NewSession() (ports.DecoderSession, error) {
	if m.NewSessionFunc != nil {
		return m.NewSessionFunc()
	}
	s := &DecoderSession{decode: m.DecodeImageFunc}
	m.mu.Lock()
	m.Sessions = append(m.Sessions, s)
	m.mu.Unlock()
	return s, nil
}

// DecoderSession is a mock implementation of ports.DecoderSession.
type DecoderSession struct {
	decode func(data []byte) (*heifimage.Image, error)

	Pushed  [][]byte
	Decoded int
	Strict  bool
	Closed  bool
}

func (m *DecoderSession) PushData(data []byte) error {
	if m.Closed {
		return fmt.Errorf("push after close")
	}
	m.Pushed = append(m.Pushed, append([]byte(nil), data...))
	return nil
}

func (m *DecoderSession) DecodeImage() (*heifimage.Image, error) {
	var data []byte
	for _, p := range m.Pushed {
		data = append(data, p...)
	}
	m.Pushed = nil
	m.Decoded++
	if m.decode != nil {
		return m.decode(data)
	}
	return GrayImage(16, 16, 8), nil
}

func (m *DecoderSession) SetStrict(strict bool) { m.Strict = strict }

func (m *DecoderSession) Close() error {
	m.Closed = true
	return nil
}

// GrayImage returns a monochrome image with a horizontal ramp.
func GrayImage(width, height, bitDepth int) *heifimage.Image {
	img := heifimage.New(width, height, heifimage.ChromaMonochrome)
	p, err := img.AddPlane(heifimage.ChannelY, width, height, bitDepth)
	if err != nil {
		panic(err)
	}
	for y := 0; y < height; y++ {
		row := p.Row(y)
		for i := range row {
			row[i] = byte(i)
		}
	}
	return img
}

var (
	_ ports.DecoderBackend = (*Backend)(nil)
	_ ports.DecoderSession = (*DecoderSession)(nil)
)
