package hwsession

import (
	"github.com/user/heiftile/pkg/decodeerr"
)

// Codec identifies a video codec. Values match the NVDEC codec enumeration.
type Codec int

const (
	CodecMPEG1 Codec = iota
	CodecMPEG2
	CodecMPEG4
	CodecVC1
	CodecH264
	CodecJPEG
	CodecH264SVC
	CodecH264MVC
	CodecHEVC
	CodecVP8
	CodecVP9
	CodecAV1
)

// String returns the string representation of the codec.
func (c Codec) String() string {
	switch c {
	case CodecMPEG1:
		return "MPEG-1"
	case CodecMPEG2:
		return "MPEG-2"
	case CodecMPEG4:
		return "MPEG-4 (ASP)"
	case CodecVC1:
		return "VC-1/WMV"
	case CodecH264:
		return "AVC/H.264"
	case CodecJPEG:
		return "M-JPEG"
	case CodecH264SVC:
		return "H.264/SVC"
	case CodecH264MVC:
		return "H.264/MVC"
	case CodecHEVC:
		return "H.265/HEVC"
	case CodecVP8:
		return "VP8"
	case CodecVP9:
		return "VP9"
	case CodecAV1:
		return "AV1"
	default:
		return "Unknown"
	}
}

// ChromaFormat is the chroma subsampling of the coded stream.
type ChromaFormat int

const (
	ChromaMonochrome ChromaFormat = iota
	Chroma420
	Chroma422
	Chroma444
)

// String returns the string representation of the chroma format.
func (c ChromaFormat) String() string {
	switch c {
	case ChromaMonochrome:
		return "YUV 400 (Monochrome)"
	case Chroma420:
		return "YUV 420"
	case Chroma422:
		return "YUV 422"
	case Chroma444:
		return "YUV 444"
	default:
		return "Unknown"
	}
}

// SurfaceFormat is the layout the hardware writes decoded pictures in.
type SurfaceFormat int

const (
	// SurfaceNV12 is 8-bit luma followed by interleaved CbCr.
	SurfaceNV12 SurfaceFormat = iota
	// SurfaceP016 is NV12 with 16-bit samples.
	SurfaceP016
	// SurfaceYUV444 is 8-bit planar 4:4:4.
	SurfaceYUV444
	// SurfaceYUV444_16Bit is 16-bit planar 4:4:4.
	SurfaceYUV444_16Bit
)

// String returns the string representation of the surface format.
func (f SurfaceFormat) String() string {
	switch f {
	case SurfaceNV12:
		return "NV12"
	case SurfaceP016:
		return "P016"
	case SurfaceYUV444:
		return "YUV444"
	case SurfaceYUV444_16Bit:
		return "YUV444P16"
	default:
		return "Unknown"
	}
}

// Is444 reports whether the format carries full-resolution planar chroma.
func (f SurfaceFormat) Is444() bool {
	switch f {
	case SurfaceYUV444, SurfaceYUV444_16Bit:
		return true
	default:
		return false
	}
}

// Interleaved reports whether chroma is stored as one plane of Cb/Cr pairs.
func (f SurfaceFormat) Interleaved() bool {
	switch f {
	case SurfaceNV12, SurfaceP016:
		return true
	default:
		return false
	}
}

// Is16Bit reports whether samples occupy two bytes.
func (f SurfaceFormat) Is16Bit() bool {
	switch f {
	case SurfaceP016, SurfaceYUV444_16Bit:
		return true
	default:
		return false
	}
}

// ChromaHeightFactor returns the ratio of chroma to luma height.
func (f SurfaceFormat) ChromaHeightFactor() float64 {
	if f.Is444() {
		return 1.0
	}
	return 0.5
}

// ChromaPlaneCount returns the number of chroma planes in a surface.
func (f SurfaceFormat) ChromaPlaneCount() int {
	if f.Is444() {
		return 2
	}
	return 1
}

// FormatMask is a bitmask of supported surface formats, bit n for format n.
type FormatMask uint16

// MaskOf builds a mask from formats.
func MaskOf(formats ...SurfaceFormat) FormatMask {
	var m FormatMask
	for _, f := range formats {
		m |= 1 << uint(f)
	}
	return m
}

// Has reports whether f is in the mask.
func (m FormatMask) Has(f SurfaceFormat) bool {
	return m&(1<<uint(f)) != 0
}

// fallbackOrder is tried when the preferred format is not supported.
var fallbackOrder = [...]SurfaceFormat{SurfaceNV12, SurfaceP016, SurfaceYUV444, SurfaceYUV444_16Bit}

// PreferredSurfaceFormat returns the surface format matching the stream.
// 4:2:2 has no native output and decodes to NV12.
func PreferredSurfaceFormat(chroma ChromaFormat, bitDepth int) SurfaceFormat {
	deep := bitDepth > 8
	switch chroma {
	case Chroma420, ChromaMonochrome:
		if deep {
			return SurfaceP016
		}
		return SurfaceNV12
	case Chroma444:
		if deep {
			return SurfaceYUV444_16Bit
		}
		return SurfaceYUV444
	default:
		return SurfaceNV12
	}
}

// SelectSurfaceFormat returns the preferred format if the mask has it,
// otherwise the first supported format in fallback order.
func SelectSurfaceFormat(chroma ChromaFormat, bitDepth int, mask FormatMask) (SurfaceFormat, error) {
	preferred := PreferredSurfaceFormat(chroma, bitDepth)
	if mask.Has(preferred) {
		return preferred, nil
	}
	for _, f := range fallbackOrder {
		if mask.Has(f) {
			return f, nil
		}
	}
	return 0, decodeerr.New(decodeerr.UnsupportedCodecOrFormat,
		"no supported output format for %s %d-bit (mask %#x)", chroma, bitDepth, uint16(mask))
}

// DecodeStatus is the hardware-reported outcome of one picture.
type DecodeStatus int

const (
	StatusInvalid        DecodeStatus = 0
	StatusInProgress     DecodeStatus = 1
	StatusSuccess        DecodeStatus = 2
	StatusError          DecodeStatus = 8
	StatusErrorConcealed DecodeStatus = 9
)

// String returns the string representation of the status.
func (s DecodeStatus) String() string {
	switch s {
	case StatusInvalid:
		return "invalid"
	case StatusInProgress:
		return "in progress"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusErrorConcealed:
		return "error concealed"
	default:
		return "unknown"
	}
}

// Failed reports whether the picture was decoded with errors.
func (s DecodeStatus) Failed() bool {
	return s == StatusError || s == StatusErrorConcealed
}

// DeinterlaceMode selects how interlaced sequences are output.
type DeinterlaceMode int

const (
	DeinterlaceWeave DeinterlaceMode = iota
	DeinterlaceBob
	DeinterlaceAdaptive
)

// String returns the string representation of the deinterlace mode.
func (m DeinterlaceMode) String() string {
	switch m {
	case DeinterlaceWeave:
		return "Weave"
	case DeinterlaceBob:
		return "Bob"
	case DeinterlaceAdaptive:
		return "Adaptive"
	default:
		return "Unknown"
	}
}
