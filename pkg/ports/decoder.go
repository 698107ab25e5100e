package ports

import (
	"github.com/user/heiftile/pkg/heifimage"
)

// CompressionFormat identifies the coding of a tile bitstream.
type CompressionFormat int

const (
	FormatUnknown CompressionFormat = iota
	FormatHEVC
	FormatAVC
	FormatAV1
	FormatJPEG
	FormatVVC
)

// String returns the string representation of the compression format.
func (f CompressionFormat) String() string {
	switch f {
	case FormatHEVC:
		return "hevc"
	case FormatAVC:
		return "avc"
	case FormatAV1:
		return "av1"
	case FormatJPEG:
		return "jpeg"
	case FormatVVC:
		return "vvc"
	default:
		return "unknown"
	}
}

// ParseCompressionFormat parses a format name such as "hevc" or "hvc1".
func ParseCompressionFormat(s string) CompressionFormat {
	switch s {
	case "hevc", "h265", "hvc1", "hev1":
		return FormatHEVC
	case "avc", "h264", "avc1", "avc3":
		return FormatAVC
	case "av1", "av01":
		return FormatAV1
	case "jpeg", "jpg":
		return FormatJPEG
	case "vvc", "h266", "vvc1":
		return FormatVVC
	default:
		return FormatUnknown
	}
}

// DecoderBackend is a pluggable tile decoder.
// Backends compete through SupportsFormat; the highest priority wins.
type DecoderBackend interface {
	// ID returns a short identifier used in configuration.
	ID() string

	// Name returns a human-readable backend name.
	Name() string

	// SupportsFormat returns a priority for format, 0 meaning unsupported.
	// It may probe the system and must be safe to call before any session exists.
	SupportsFormat(format CompressionFormat) int

	// NewSession allocates backend state for decoding tiles.
	NewSession() (DecoderSession, error)
}

// DecoderSession decodes one tile at a time.
type DecoderSession interface {
	// PushData appends compressed bytes of one access unit. It does not decode.
	PushData(data []byte) error

	// DecodeImage decodes the accumulated access unit and consumes it.
	DecodeImage() (*heifimage.Image, error)

	// SetStrict toggles whether recoverable bitstream errors are fatal.
	SetStrict(strict bool)

	// Close releases all session resources. It is safe to call more than once.
	Close() error
}
