// Package decodeerr defines the error kinds surfaced by the tile decode path.
// Every backend reports failures through *Error so callers can inspect the
// kind and fall back to another backend without parsing messages.
package decodeerr

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors that are not *Error.
	KindUnknown Kind = iota
	// EndOfData means the bitstream is truncated.
	EndOfData
	// StructuralIncomplete means a mandatory parameter set or the IDR picture is missing.
	StructuralIncomplete
	// PluginLoadingError means the device, context, lock or stream could not be created.
	PluginLoadingError
	// UnsupportedCodecOrFormat means the hardware rejected the codec/chroma/bit depth
	// or no output surface format is available.
	UnsupportedCodecOrFormat
	// ResolutionExceeded means the coded size is beyond the hardware maxima.
	ResolutionExceeded
	// DecoderNotInitialized means a decode or display step ran before a decoder existed.
	DecoderNotInitialized
	// InternalConsistency means plane geometry disagrees with the destination image.
	InternalConsistency
	// DecodeFailed means a driver call failed after setup, or no picture was produced.
	DecodeFailed
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case EndOfData:
		return "end of data"
	case StructuralIncomplete:
		return "structural units incomplete"
	case PluginLoadingError:
		return "plugin loading error"
	case UnsupportedCodecOrFormat:
		return "unsupported codec or format"
	case ResolutionExceeded:
		return "resolution exceeded"
	case DecoderNotInitialized:
		return "decoder not initialized"
	case InternalConsistency:
		return "internal consistency error"
	case DecodeFailed:
		return "decode failed"
	default:
		return "unknown"
	}
}

// Error is a classified decode failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is comparisons. They match any *Error of the same kind.
var (
	ErrEndOfData                = &Error{Kind: EndOfData}
	ErrStructuralIncomplete     = &Error{Kind: StructuralIncomplete}
	ErrPluginLoading            = &Error{Kind: PluginLoadingError}
	ErrUnsupportedCodecOrFormat = &Error{Kind: UnsupportedCodecOrFormat}
	ErrResolutionExceeded       = &Error{Kind: ResolutionExceeded}
	ErrDecoderNotInitialized    = &Error{Kind: DecoderNotInitialized}
	ErrInternalConsistency      = &Error{Kind: InternalConsistency}
	ErrDecodeFailed             = &Error{Kind: DecodeFailed}
)

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind that wraps err.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
