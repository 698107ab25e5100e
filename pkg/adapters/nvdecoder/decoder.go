// Package nvdecoder implements ports.DecoderBackend on top of a hardware
// decode session. Tiles are validated and reassembled into Annex-B before
// any driver call is made.
package nvdecoder

import (
	"github.com/user/heiftile/pkg/decodeerr"
	"github.com/user/heiftile/pkg/heifimage"
	"github.com/user/heiftile/pkg/hwsession"
	"github.com/user/heiftile/pkg/nalu"
	"github.com/user/heiftile/pkg/planes"
	"github.com/user/heiftile/pkg/ports"
)

const (
	// ID is the backend identifier used in configuration.
	ID = "nvdec"
	// Name is the human-readable backend name.
	Name = "NVIDIA Video Decoder SDK (Hardware)"
	// Priority is returned by SupportsFormat for formats the device accepts.
	Priority = 120
)

// Options configures the backend.
type Options struct {
	// Device is the CUDA device ordinal.
	Device int
	// OperatingPoint and OutputAllLayers select the layers of scalable AV1.
	OperatingPoint  int
	OutputAllLayers bool
	// Strict is the initial strict mode of new sessions.
	Strict bool
}

// Backend is a hardware decoder backend.
type Backend struct {
	drv    hwsession.Driver
	opts   Options
	logger ports.Logger
}

// New creates a backend that opens devices through drv.
func New(drv hwsession.Driver, opts Options, logger ports.Logger) *Backend {
	return &Backend{
		drv:    drv,
		opts:   opts,
		logger: logger.WithComponent(ID),
	}
}

// ID returns the backend identifier.
func (b *Backend) ID() string { return ID }

// Name returns the backend display name.
func (b *Backend) Name() string { return Name }

// SupportsFormat probes the device for 4:2:0 8-bit decoding of format.
// Only HEVC tiles can be decoded, since the session reassembles HEVC
// parameter sets; other formats report 0 without touching the driver.
func (b *Backend) SupportsFormat(format ports.CompressionFormat) int {
	if format != ports.FormatHEVC {
		return 0
	}

	dev, err := b.drv.Open(b.opts.Device)
	if err != nil {
		b.logger.Debug("Hardware probe failed: %v", err)
		return 0
	}
	defer dev.Close()

	caps, err := dev.Caps(hwsession.CapsQuery{
		Codec:        hwsession.CodecHEVC,
		ChromaFormat: hwsession.Chroma420,
		BitDepth:     8,
	})
	if err != nil {
		b.logger.Debug("Hardware probe failed: %v", err)
		return 0
	}
	if !caps.Supported {
		return 0
	}
	return Priority
}

// NewSession creates a decoding session. The device is opened on the first
// DecodeImage.
func (b *Backend) NewSession() (ports.DecoderSession, error) {
	return &Session{
		backend: b,
		strict:  b.opts.Strict,
	}, nil
}

// Session accumulates one access unit at a time and decodes it on a
// hardware session kept across calls.
type Session struct {
	backend *Backend
	data    []byte
	strict  bool
	hw      *hwsession.Session
	closed  bool
}

// PushData appends compressed bytes to the pending access unit.
func (s *Session) PushData(data []byte) error {
	if s.closed {
		return decodeerr.New(decodeerr.DecoderNotInitialized, "session closed")
	}
	s.data = append(s.data, data...)
	return nil
}

// SetStrict toggles whether picture decode errors fail the decode.
func (s *Session) SetStrict(strict bool) {
	s.strict = strict
	if s.hw != nil {
		s.hw.SetStrict(strict)
	}
}

// DecodeImage decodes the pending access unit into a new image.
// The pending data is consumed whether or not decoding succeeds.
func (s *Session) DecodeImage() (*heifimage.Image, error) {
	if s.closed {
		return nil, decodeerr.New(decodeerr.DecoderNotInitialized, "session closed")
	}

	data := s.data
	s.data = nil

	m, err := nalu.Parse(data)
	if err != nil {
		return nil, err
	}
	annexB, err := m.ReassembleWithStartCodes()
	if err != nil {
		return nil, err
	}

	hw, err := s.session()
	if err != nil {
		return nil, err
	}

	n, err := hw.Decode(annexB)
	if err != nil {
		if hw.State() == hwsession.StateFaulted {
			s.discard()
		}
		return nil, err
	}
	if n == 0 {
		return nil, decodeerr.New(decodeerr.DecodeFailed, "no picture decoded from %d bytes", len(annexB))
	}

	frame, _ := hw.Frame()
	params, ok := hw.Params()
	if !ok {
		return nil, decodeerr.New(decodeerr.InternalConsistency, "frame produced without negotiated parameters")
	}
	layout := params.Layout()

	img, err := planes.NewImage(layout)
	if err != nil {
		return nil, err
	}
	if err := planes.Extract(frame, layout, img); err != nil {
		return nil, err
	}

	s.backend.logger.Debug("Decoded %dx%d %s tile", img.Width, img.Height, params.OutputFormat)
	return img, nil
}

// session returns the hardware session, opening the device if needed.
func (s *Session) session() (*hwsession.Session, error) {
	if s.hw != nil {
		return s.hw, nil
	}
	b := s.backend
	hw, err := hwsession.Open(b.drv, b.opts.Device, hwsession.Options{
		Codec:           hwsession.CodecHEVC,
		Strict:          s.strict,
		OperatingPoint:  b.opts.OperatingPoint,
		OutputAllLayers: b.opts.OutputAllLayers,
	}, b.logger)
	if err != nil {
		return nil, err
	}
	s.hw = hw
	return hw, nil
}

// discard closes a faulted hardware session so the next tile starts fresh.
func (s *Session) discard() {
	if err := s.hw.Close(); err != nil {
		s.backend.logger.Warn("Failed to close hardware session: %v", err)
	}
	s.hw = nil
}

// Close releases the hardware session. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	s.data = nil
	if s.hw == nil {
		return nil
	}
	err := s.hw.Close()
	s.hw = nil
	return err
}

var (
	_ ports.DecoderBackend = (*Backend)(nil)
	_ ports.DecoderSession = (*Session)(nil)
)
