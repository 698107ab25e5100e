package planes

import (
	"errors"
	"testing"

	"github.com/user/heiftile/pkg/decodeerr"
	"github.com/user/heiftile/pkg/heifimage"
)

func nv12Layout(width, height int) Layout {
	stored := width + width%2
	return Layout{
		Width:          stored,
		DisplayWidth:   width,
		LumaHeight:     height,
		ChromaHeight:   (height + 1) / 2,
		ChromaPlanes:   1,
		BytesPerSample: 1,
		BitDepth:       8,
		Interleaved:    true,
		Chroma:         heifimage.Chroma420,
	}
}

func TestExtract_NV12(t *testing.T) {
	l := nv12Layout(4, 2)
	frame := []byte{
		// luma 4x2
		1, 2, 3, 4,
		5, 6, 7, 8,
		// interleaved chroma 1 row: Cb0 Cr0 Cb1 Cr1
		10, 20, 11, 21,
	}

	img, err := NewImage(l)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	if err := Extract(frame, l, img); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	y := img.Plane(heifimage.ChannelY)
	if got := y.Row(1); got[0] != 5 || got[3] != 8 {
		t.Errorf("unexpected luma row 1: %v", got)
	}
	cb := img.Plane(heifimage.ChannelCb)
	cr := img.Plane(heifimage.ChannelCr)
	if cb.Width != 2 || cb.Height != 1 {
		t.Errorf("expected 2x1 Cb plane, got %dx%d", cb.Width, cb.Height)
	}
	if cb.At(0, 0) != 10 || cb.At(1, 0) != 11 {
		t.Errorf("unexpected Cb samples %d %d", cb.At(0, 0), cb.At(1, 0))
	}
	if cr.At(0, 0) != 20 || cr.At(1, 0) != 21 {
		t.Errorf("unexpected Cr samples %d %d", cr.At(0, 0), cr.At(1, 0))
	}
}

func TestExtract_NV12OddWidth(t *testing.T) {
	l := nv12Layout(3, 2)
	if l.Width != 4 || l.FrameSize() != 4*(2+1) {
		t.Fatalf("unexpected layout %+v", l)
	}
	frame := []byte{
		1, 2, 3, 99,
		4, 5, 6, 99,
		30, 40, 31, 41,
	}

	img, err := NewImage(l)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	if err := Extract(frame, l, img); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	y := img.Plane(heifimage.ChannelY)
	if y.Width != 3 || y.At(2, 1) != 6 {
		t.Errorf("unexpected luma plane width=%d sample=%d", y.Width, y.At(2, 1))
	}
	if img.Plane(heifimage.ChannelCr).At(1, 0) != 41 {
		t.Error("expected Cr sample 41")
	}
}

func TestExtract_P016Shift(t *testing.T) {
	l := Layout{
		Width:          2,
		DisplayWidth:   2,
		LumaHeight:     2,
		ChromaHeight:   1,
		ChromaPlanes:   1,
		BytesPerSample: 2,
		BitDepth:       10,
		Interleaved:    true,
		MSBAligned:     true,
		Chroma:         heifimage.Chroma420,
	}
	le := func(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

	var frame []byte
	for _, v := range []uint16{1023 << 6, 512 << 6, 1 << 6, 0} {
		frame = append(frame, le(v)...)
	}
	frame = append(frame, le(300<<6)...)
	frame = append(frame, le(700<<6)...)

	img, err := NewImage(l)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	if err := Extract(frame, l, img); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	y := img.Plane(heifimage.ChannelY)
	if y.At(0, 0) != 1023 || y.At(1, 0) != 512 || y.At(0, 1) != 1 {
		t.Errorf("unexpected luma samples %d %d %d", y.At(0, 0), y.At(1, 0), y.At(0, 1))
	}
	if got := img.Plane(heifimage.ChannelCb).At(0, 0); got != 300 {
		t.Errorf("expected Cb 300, got %d", got)
	}
	if got := img.Plane(heifimage.ChannelCr).At(0, 0); got != 700 {
		t.Errorf("expected Cr 700, got %d", got)
	}
}

func TestExtract_8BitOn16BitSurface(t *testing.T) {
	le := func(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

	tests := []struct {
		name        string
		interleaved bool
		chroma      heifimage.Chroma
		planes      int
		// samples are 8-bit values stored MSB-aligned as Y0 Y1 Y2 Y3 then chroma.
		samples []uint16
		cb, cr  []uint16
	}{
		{
			name:        "p016",
			interleaved: true,
			chroma:      heifimage.Chroma420,
			planes:      1,
			samples:     []uint16{255, 128, 1, 0, 60, 200},
			cb:          []uint16{60},
			cr:          []uint16{200},
		},
		{
			name:    "yuv444 16bit",
			chroma:  heifimage.Chroma444,
			planes:  2,
			samples: []uint16{255, 128, 1, 0, 10, 11, 12, 13, 20, 21, 22, 23},
			cb:      []uint16{10, 11, 12, 13},
			cr:      []uint16{20, 21, 22, 23},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chromaHeight := 2
			if tt.interleaved {
				chromaHeight = 1
			}
			l := Layout{
				Width:          2,
				DisplayWidth:   2,
				LumaHeight:     2,
				ChromaHeight:   chromaHeight,
				ChromaPlanes:   tt.planes,
				BytesPerSample: 2,
				BitDepth:       8,
				Interleaved:    tt.interleaved,
				MSBAligned:     true,
				Chroma:         tt.chroma,
			}
			var frame []byte
			for _, v := range tt.samples {
				// Low byte carries noise that must not leak into the plane.
				frame = append(frame, le(v<<8|0x5a)...)
			}
			if len(frame) != l.FrameSize() {
				t.Fatalf("frame is %d bytes, layout needs %d", len(frame), l.FrameSize())
			}

			img, err := NewImage(l)
			if err != nil {
				t.Fatalf("NewImage failed: %v", err)
			}
			if err := Extract(frame, l, img); err != nil {
				t.Fatalf("Extract failed: %v", err)
			}

			y := img.Plane(heifimage.ChannelY)
			if y.BytesPerSample() != 1 || y.RowBytes() != 2 {
				t.Fatalf("expected an 8-bit luma plane, got %d bytes per sample", y.BytesPerSample())
			}
			if y.At(0, 0) != 255 || y.At(1, 0) != 128 || y.At(0, 1) != 1 || y.At(1, 1) != 0 {
				t.Errorf("unexpected luma samples %d %d %d %d", y.At(0, 0), y.At(1, 0), y.At(0, 1), y.At(1, 1))
			}
			cb := img.Plane(heifimage.ChannelCb)
			cr := img.Plane(heifimage.ChannelCr)
			for i := range tt.cb {
				x, row := i%cb.Width, i/cb.Width
				if got := cb.At(x, row); got != tt.cb[i] {
					t.Errorf("Cb(%d,%d) = %d, want %d", x, row, got, tt.cb[i])
				}
				if got := cr.At(x, row); got != tt.cr[i] {
					t.Errorf("Cr(%d,%d) = %d, want %d", x, row, got, tt.cr[i])
				}
			}
		})
	}
}

func TestExtract_YUV444(t *testing.T) {
	l := Layout{
		Width:          2,
		DisplayWidth:   2,
		LumaHeight:     2,
		ChromaHeight:   2,
		ChromaPlanes:   2,
		BytesPerSample: 1,
		BitDepth:       8,
		Chroma:         heifimage.Chroma444,
	}
	frame := []byte{
		1, 2, 3, 4, // Y
		10, 11, 12, 13, // Cb
		20, 21, 22, 23, // Cr
	}
	if l.FrameSize() != len(frame) {
		t.Fatalf("expected frame size %d, got %d", len(frame), l.FrameSize())
	}

	img, err := NewImage(l)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	if err := Extract(frame, l, img); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if got := img.Plane(heifimage.ChannelCb).At(1, 1); got != 13 {
		t.Errorf("expected Cb 13, got %d", got)
	}
	if got := img.Plane(heifimage.ChannelCr).At(0, 1); got != 22 {
		t.Errorf("expected Cr 22, got %d", got)
	}
}

func TestExtract_Monochrome(t *testing.T) {
	l := nv12Layout(2, 2)
	l.Chroma = heifimage.ChromaMonochrome
	frame := []byte{1, 2, 3, 4, 128, 128}

	img, err := NewImage(l)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	if err := Extract(frame, l, img); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(img.Planes()) != 1 {
		t.Errorf("expected only the luma plane, got %d planes", len(img.Planes()))
	}
}

func TestExtract_DimensionMismatch(t *testing.T) {
	l := nv12Layout(4, 2)
	frame := make([]byte, l.FrameSize())

	tests := []struct {
		name  string
		build func() *heifimage.Image
	}{
		{"luma too small", func() *heifimage.Image {
			img := heifimage.New(3, 2, heifimage.Chroma420)
			img.AddPlane(heifimage.ChannelY, 3, 2, 8)
			return img
		}},
		{"missing chroma", func() *heifimage.Image {
			img := heifimage.New(4, 2, heifimage.Chroma420)
			img.AddPlane(heifimage.ChannelY, 4, 2, 8)
			return img
		}},
		{"chroma full width", func() *heifimage.Image {
			img := heifimage.New(4, 2, heifimage.Chroma420)
			img.AddPlane(heifimage.ChannelY, 4, 2, 8)
			img.AddPlane(heifimage.ChannelCb, 4, 1, 8)
			img.AddPlane(heifimage.ChannelCr, 4, 1, 8)
			return img
		}},
		{"wrong sample size", func() *heifimage.Image {
			img := heifimage.New(4, 2, heifimage.Chroma420)
			img.AddPlane(heifimage.ChannelY, 4, 2, 10)
			return img
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Extract(frame, l, tt.build())
			if !errors.Is(err, decodeerr.ErrInternalConsistency) {
				t.Errorf("expected InternalConsistency, got %v", err)
			}
		})
	}
}

func TestExtract_ShortFrame(t *testing.T) {
	l := nv12Layout(4, 2)
	img, _ := NewImage(l)
	if err := Extract(make([]byte, 5), l, img); !errors.Is(err, decodeerr.ErrInternalConsistency) {
		t.Errorf("expected InternalConsistency, got %v", err)
	}
}
