// Package planes copies a decoded host frame into the channels of a
// heifimage.Image.
//
// A host frame holds the luma block followed by one interleaved chroma block
// (NV12/P016) or two planar chroma blocks (4:4:4). Every row in the frame is
// Width*BytesPerSample bytes; destination planes may use a wider stride.
// MSB-aligned 16-bit samples are shifted down to BitDepth, and 8-bit content
// on a 16-bit surface is narrowed into 8-bit planes.
package planes

import (
	"github.com/user/heiftile/pkg/decodeerr"
	"github.com/user/heiftile/pkg/heifimage"
)

// Layout describes how a host frame is packed.
type Layout struct {
	// Width is the stored row width in samples. For interleaved chroma it is
	// rounded up to even and may exceed DisplayWidth by one.
	Width int
	// DisplayWidth is the visible luma width.
	DisplayWidth   int
	LumaHeight     int
	ChromaHeight   int
	ChromaPlanes   int
	BytesPerSample int
	// BitDepth is the significant bits per sample.
	BitDepth int
	// Interleaved means one chroma block of alternating Cb/Cr samples.
	Interleaved bool
	// MSBAligned means 16-bit samples carry their value in the high bits.
	MSBAligned bool
	// Chroma is the layout of the image the frame is extracted into.
	Chroma heifimage.Chroma
}

// RowBytes returns the size of one stored row.
func (l Layout) RowBytes() int {
	return l.Width * l.BytesPerSample
}

// FrameSize returns the number of bytes a host frame occupies.
func (l Layout) FrameSize() int {
	return l.Width * (l.LumaHeight + l.ChromaHeight*l.ChromaPlanes) * l.BytesPerSample
}

// ChromaWidth returns the width in samples of each extracted chroma channel.
func (l Layout) ChromaWidth() int {
	if l.Interleaved {
		return (l.DisplayWidth + 1) / 2
	}
	return l.DisplayWidth
}

// NewImage allocates an image whose planes match the layout.
func NewImage(l Layout) (*heifimage.Image, error) {
	img := heifimage.New(l.DisplayWidth, l.LumaHeight, l.Chroma)
	if _, err := img.AddPlane(heifimage.ChannelY, l.DisplayWidth, l.LumaHeight, l.BitDepth); err != nil {
		return nil, decodeerr.Wrap(decodeerr.InternalConsistency, err, "allocate luma plane")
	}
	if l.Chroma == heifimage.ChromaMonochrome {
		return img, nil
	}
	for _, ch := range []heifimage.Channel{heifimage.ChannelCb, heifimage.ChannelCr} {
		if _, err := img.AddPlane(ch, l.ChromaWidth(), l.ChromaHeight, l.BitDepth); err != nil {
			return nil, decodeerr.Wrap(decodeerr.InternalConsistency, err, "allocate %s plane", ch)
		}
	}
	return img, nil
}

// Extract copies frame into img row by row. The destination planes must
// already exist with the dimensions the layout implies.
func Extract(frame []byte, l Layout, img *heifimage.Image) error {
	if len(frame) < l.FrameSize() {
		return decodeerr.New(decodeerr.InternalConsistency,
			"frame holds %d bytes, layout needs %d", len(frame), l.FrameSize())
	}

	y := img.Plane(heifimage.ChannelY)
	if err := checkPlane(y, heifimage.ChannelY, l.DisplayWidth, l.LumaHeight, l); err != nil {
		return err
	}
	lumaBlock := l.RowBytes() * l.LumaHeight
	copyPlane(y, frame[:lumaBlock], l)

	if l.Chroma == heifimage.ChromaMonochrome {
		return nil
	}

	cb := img.Plane(heifimage.ChannelCb)
	cr := img.Plane(heifimage.ChannelCr)
	if err := checkPlane(cb, heifimage.ChannelCb, l.ChromaWidth(), l.ChromaHeight, l); err != nil {
		return err
	}
	if err := checkPlane(cr, heifimage.ChannelCr, l.ChromaWidth(), l.ChromaHeight, l); err != nil {
		return err
	}

	chromaBlock := l.RowBytes() * l.ChromaHeight
	first := frame[lumaBlock : lumaBlock+chromaBlock]

	if l.Interleaved {
		deinterleave(cb, cr, first, l)
		return nil
	}

	if l.ChromaPlanes < 2 {
		return decodeerr.New(decodeerr.InternalConsistency, "planar layout with %d chroma planes", l.ChromaPlanes)
	}
	second := frame[lumaBlock+chromaBlock : lumaBlock+2*chromaBlock]
	copyPlane(cb, first, l)
	copyPlane(cr, second, l)
	return nil
}

func checkPlane(p *heifimage.Plane, ch heifimage.Channel, width, height int, l Layout) error {
	if p == nil {
		return decodeerr.New(decodeerr.InternalConsistency, "image has no %s plane", ch)
	}
	if p.Width != width || p.Height != height {
		return decodeerr.New(decodeerr.InternalConsistency,
			"%s plane is %dx%d, decoded plane is %dx%d", ch, p.Width, p.Height, width, height)
	}
	if p.BytesPerSample() != l.sampleBytes() || l.sampleBytes() > l.BytesPerSample {
		return decodeerr.New(decodeerr.InternalConsistency,
			"%s plane stores %d bytes per sample, decoded plane has %d-bit samples in %d bytes",
			ch, p.BytesPerSample(), l.BitDepth, l.BytesPerSample)
	}
	return nil
}

// copyPlane copies a planar block whose rows are l.RowBytes() apart.
func copyPlane(dst *heifimage.Plane, src []byte, l Layout) {
	sb, db := l.BytesPerSample, dst.BytesPerSample()
	shift := l.shift()
	for row := 0; row < dst.Height; row++ {
		s := src[row*l.RowBytes():]
		d := dst.Data[row*dst.Stride:]
		if sb == db && shift == 0 {
			n := dst.RowBytes()
			copy(d[:n], s[:n])
			continue
		}
		for x := 0; x < dst.Width; x++ {
			store(d, x*db, db, load(s, x*sb, sb, shift))
		}
	}
}

// deinterleave splits alternating Cb/Cr samples into two planes.
func deinterleave(cb, cr *heifimage.Plane, src []byte, l Layout) {
	sb, db := l.BytesPerSample, cb.BytesPerSample()
	shift := l.shift()
	for row := 0; row < cb.Height; row++ {
		s := src[row*l.RowBytes():]
		dcb := cb.Data[row*cb.Stride:]
		dcr := cr.Data[row*cr.Stride:]
		for x := 0; x < cb.Width; x++ {
			store(dcb, x*db, db, load(s, 2*x*sb, sb, shift))
			store(dcr, x*db, db, load(s, (2*x+1)*sb, sb, shift))
		}
	}
}

// load reads one little-endian sample and drops the alignment padding.
func load(s []byte, i, size int, shift uint) uint16 {
	if size == 1 {
		return uint16(s[i])
	}
	return (uint16(s[i]) | uint16(s[i+1])<<8) >> shift
}

func store(d []byte, i, size int, v uint16) {
	d[i] = byte(v)
	if size == 2 {
		d[i+1] = byte(v >> 8)
	}
}

// sampleBytes is the size of one extracted sample. It is smaller than
// BytesPerSample when 8-bit content sits on a 16-bit surface.
func (l Layout) sampleBytes() int {
	if l.BitDepth <= 8 {
		return 1
	}
	return 2
}

func (l Layout) shift() uint {
	if !l.MSBAligned || l.BytesPerSample != 2 || l.BitDepth >= 16 {
		return 0
	}
	return uint(16 - l.BitDepth)
}
