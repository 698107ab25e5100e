// Package ffmpegdecoder provides a software HEVC tile decoder backed by an
// ffmpeg external process. The reassembled Annex-B stream is piped to
// ffmpeg and one rawvideo picture is read back in the stream's native
// sample format.
package ffmpegdecoder

import (
	"bytes"
	"errors"
	"os/exec"

	"github.com/user/heiftile/pkg/decodeerr"
	"github.com/user/heiftile/pkg/heifimage"
	"github.com/user/heiftile/pkg/nalu"
	"github.com/user/heiftile/pkg/ports"
)

const (
	// ID is the backend identifier used in configuration.
	ID = "ffmpeg"
	// Name is the human-readable backend name.
	Name = "FFmpeg (Software)"
	// Priority ranks below hardware backends.
	Priority = 50
)

// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
var ErrFFmpegNotFound = errors.New("ffmpegdecoder: ffmpeg not found")

// Options configures the backend.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// Strict is the initial strict mode of new sessions.
	Strict bool
}

// Backend decodes HEVC tiles with ffmpeg.
type Backend struct {
	opts   Options
	logger ports.Logger
}

// New creates an ffmpeg backend.
func New(opts Options, logger ports.Logger) *Backend {
	return &Backend{
		opts:   opts,
		logger: logger.WithComponent(ID),
	}
}

// IsAvailable checks if ffmpeg can be found.
func (b *Backend) IsAvailable() bool {
	_, err := FindFFmpeg(b.opts.FFmpegPath)
	return err == nil
}

// ID returns the backend identifier.
func (b *Backend) ID() string { return ID }

// Name returns the backend display name.
func (b *Backend) Name() string { return Name }

// SupportsFormat returns Priority for HEVC when ffmpeg is installed.
func (b *Backend) SupportsFormat(format ports.CompressionFormat) int {
	if format != ports.FormatHEVC {
		return 0
	}
	if _, err := FindFFmpeg(b.opts.FFmpegPath); err != nil {
		b.logger.Debug("FFmpeg unavailable: %v", err)
		return 0
	}
	return Priority
}

// NewSession locates ffmpeg and returns a session that runs it per tile.
func (b *Backend) NewSession() (ports.DecoderSession, error) {
	path, err := FindFFmpeg(b.opts.FFmpegPath)
	if err != nil {
		return nil, decodeerr.Wrap(decodeerr.PluginLoadingError, err, "locate ffmpeg")
	}
	return &Session{
		ffmpegPath: path,
		strict:     b.opts.Strict,
		logger:     b.logger,
	}, nil
}

// Session decodes one access unit per ffmpeg invocation.
type Session struct {
	ffmpegPath string
	strict     bool
	logger     ports.Logger
	data       []byte
	closed     bool
}

// PushData appends compressed bytes to the pending access unit.
func (s *Session) PushData(data []byte) error {
	if s.closed {
		return decodeerr.New(decodeerr.DecoderNotInitialized, "session closed")
	}
	s.data = append(s.data, data...)
	return nil
}

// SetStrict makes ffmpeg abort on the first bitstream error.
func (s *Session) SetStrict(strict bool) {
	s.strict = strict
}

// DecodeImage decodes the pending access unit. The pending data is consumed
// whether or not decoding succeeds.
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
	info, err := m.StreamInfo()
	if err != nil {
		return nil, err
	}
	pixFmt, err := pixelFormat(info.ChromaFormat, info.BitDepth)
	if err != nil {
		return nil, decodeerr.Wrap(decodeerr.UnsupportedCodecOrFormat, err, "no rawvideo format")
	}

	raw, err := s.run(annexB, pixFmt)
	if err != nil {
		return nil, err
	}

	img, err := toImage(raw, info)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Decoded %dx%d %s tile", img.Width, img.Height, pixFmt)
	return img, nil
}

// run pipes the stream through ffmpeg and returns the raw picture bytes.
func (s *Session) run(annexB []byte, pixFmt string) ([]byte, error) {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if s.strict {
		args = append(args, "-err_detect", "explode", "-xerror")
	}
	args = append(args,
		"-f", "hevc",
		"-i", "pipe:0",
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", pixFmt,
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(s.ffmpegPath, args...)
	cmd.Stdin = bytes.NewReader(annexB)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, decodeerr.Wrap(decodeerr.DecodeFailed, err, "ffmpeg: %s", stderr.String())
	}
	if stderr.Len() > 0 {
		s.logger.Warn("FFmpeg reported: %s", stderr.String())
	}
	return stdout.Bytes(), nil
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closed = true
	s.data = nil
	return nil
}

var (
	_ ports.DecoderBackend = (*Backend)(nil)
	_ ports.DecoderSession = (*Session)(nil)
)
