// Package heifimage provides the generic multi-channel image that decoder
// backends fill in. Channels are stored with a row stride that may exceed
// the visible row size, so writers must copy row by row.
package heifimage

import (
	"errors"
	"fmt"
	"image"
)

// strideAlignment is the row alignment, in bytes, of every allocated plane.
const strideAlignment = 16

var (
	// ErrPlaneExists is returned when a channel is added twice.
	ErrPlaneExists = errors.New("heifimage: plane already exists")

	// ErrInvalidPlane is returned for non-positive dimensions or unsupported bit depths.
	ErrInvalidPlane = errors.New("heifimage: invalid plane parameters")

	// ErrMissingPlane is returned when a conversion needs a channel that was never added.
	ErrMissingPlane = errors.New("heifimage: missing plane")
)

// Chroma is the chroma layout of an image.
type Chroma int

const (
	ChromaMonochrome Chroma = iota
	Chroma420
	Chroma422
	Chroma444
)

// String returns the string representation of the chroma layout.
func (c Chroma) String() string {
	switch c {
	case ChromaMonochrome:
		return "monochrome"
	case Chroma420:
		return "4:2:0"
	case Chroma422:
		return "4:2:2"
	case Chroma444:
		return "4:4:4"
	default:
		return "unknown"
	}
}

// Channel identifies a plane within an image.
type Channel int

const (
	ChannelY Channel = iota
	ChannelCb
	ChannelCr
)

// String returns the string representation of the channel.
func (c Channel) String() string {
	switch c {
	case ChannelY:
		return "Y"
	case ChannelCb:
		return "Cb"
	case ChannelCr:
		return "Cr"
	default:
		return "unknown"
	}
}

// Plane holds the samples of one channel.
// Samples wider than 8 bits are stored little-endian in two bytes.
type Plane struct {
	Channel  Channel
	Width    int
	Height   int
	BitDepth int
	Stride   int
	Data     []byte
}

// BytesPerSample returns 1 for 8-bit planes and 2 otherwise.
func (p *Plane) BytesPerSample() int {
	if p.BitDepth <= 8 {
		return 1
	}
	return 2
}

// RowBytes returns the number of meaningful bytes in a row.
func (p *Plane) RowBytes() int {
	return p.Width * p.BytesPerSample()
}

// Row returns the meaningful bytes of row y.
func (p *Plane) Row(y int) []byte {
	start := y * p.Stride
	return p.Data[start : start+p.RowBytes()]
}

// MaxValue returns the largest sample value representable at the plane's bit depth.
func (p *Plane) MaxValue() int {
	return 1<<p.BitDepth - 1
}

// At returns the sample at (x, y).
func (p *Plane) At(x, y int) uint16 {
	off := y*p.Stride + x*p.BytesPerSample()
	if p.BitDepth <= 8 {
		return uint16(p.Data[off])
	}
	return uint16(p.Data[off]) | uint16(p.Data[off+1])<<8
}

// Image is a caller-owned container of channels.
type Image struct {
	Width  int
	Height int
	Chroma Chroma
	planes []*Plane
}

// New creates an image with no planes.
func New(width, height int, chroma Chroma) *Image {
	return &Image{Width: width, Height: height, Chroma: chroma}
}

// AddPlane allocates a zeroed plane for ch.
func (img *Image) AddPlane(ch Channel, width, height, bitDepth int) (*Plane, error) {
	if width <= 0 || height <= 0 || bitDepth < 1 || bitDepth > 16 {
		return nil, fmt.Errorf("%w: %s %dx%d at %d bits", ErrInvalidPlane, ch, width, height, bitDepth)
	}
	if img.Plane(ch) != nil {
		return nil, fmt.Errorf("%w: %s", ErrPlaneExists, ch)
	}

	p := &Plane{
		Channel:  ch,
		Width:    width,
		Height:   height,
		BitDepth: bitDepth,
	}
	p.Stride = alignUp(p.RowBytes(), strideAlignment)
	p.Data = make([]byte, p.Stride*height)

	img.planes = append(img.planes, p)
	return p, nil
}

// Plane returns the plane for ch, or nil if it was never added.
func (img *Image) Plane(ch Channel) *Plane {
	for _, p := range img.planes {
		if p.Channel == ch {
			return p
		}
	}
	return nil
}

// Planes returns the planes in the order they were added.
func (img *Image) Planes() []*Plane {
	return img.planes
}

// BitDepth returns the luma bit depth, or 0 if no luma plane exists.
func (img *Image) BitDepth() int {
	if p := img.Plane(ChannelY); p != nil {
		return p.BitDepth
	}
	return 0
}

// ChromaSize returns the chroma plane dimensions for the given luma size.
func ChromaSize(chroma Chroma, width, height int) (int, int) {
	switch chroma {
	case Chroma420:
		return (width + 1) / 2, (height + 1) / 2
	case Chroma422:
		return (width + 1) / 2, height
	case Chroma444:
		return width, height
	default:
		return 0, 0
	}
}

// ToImage converts the planes to a standard library image. Monochrome images
// become image.Gray or image.Gray16; colour images become image.YCbCr with
// samples above 8 bits reduced to 8.
func (img *Image) ToImage() (image.Image, error) {
	y := img.Plane(ChannelY)
	if y == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPlane, ChannelY)
	}
	rect := image.Rect(0, 0, img.Width, img.Height)

	if img.Chroma == ChromaMonochrome {
		if y.BitDepth <= 8 {
			out := image.NewGray(rect)
			for row := 0; row < img.Height; row++ {
				copy(out.Pix[row*out.Stride:row*out.Stride+img.Width], y.Row(row))
			}
			return out, nil
		}
		out := image.NewGray16(rect)
		shift := 16 - y.BitDepth
		for row := 0; row < img.Height; row++ {
			for x := 0; x < img.Width; x++ {
				v := y.At(x, row) << shift
				i := row*out.Stride + x*2
				out.Pix[i] = byte(v >> 8)
				out.Pix[i+1] = byte(v)
			}
		}
		return out, nil
	}

	cb := img.Plane(ChannelCb)
	cr := img.Plane(ChannelCr)
	if cb == nil || cr == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrMissingPlane, ChannelCb, ChannelCr)
	}

	ratio := image.YCbCrSubsampleRatio444
	switch img.Chroma {
	case Chroma420:
		ratio = image.YCbCrSubsampleRatio420
	case Chroma422:
		ratio = image.YCbCrSubsampleRatio422
	}

	out := image.NewYCbCr(rect, ratio)
	copyTo8(out.Y, out.YStride, y)
	copyTo8(out.Cb, out.CStride, cb)
	copyTo8(out.Cr, out.CStride, cr)
	return out, nil
}

// Gray returns the plane as an 8-bit grayscale image.
func (p *Plane) Gray() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	copyTo8(out.Pix, out.Stride, p)
	return out
}

// copyTo8 writes p into an 8-bit destination, reducing deeper samples.
func copyTo8(dst []byte, stride int, p *Plane) {
	rows := min(p.Height, len(dst)/max(stride, 1))
	cols := min(p.Width, stride)
	shift := p.BitDepth - 8
	for y := 0; y < rows; y++ {
		d := dst[y*stride : y*stride+cols]
		if shift <= 0 {
			copy(d, p.Row(y)[:cols])
			continue
		}
		for x := range d {
			d[x] = byte(p.At(x, y) >> shift)
		}
	}
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}
