package heifimage

import (
	"errors"
	"image"
	"testing"
)

func TestImage_AddPlane(t *testing.T) {
	img := New(33, 17, Chroma420)

	p, err := img.AddPlane(ChannelY, 33, 17, 8)
	if err != nil {
		t.Fatalf("AddPlane failed: %v", err)
	}
	if p.Stride != 48 {
		t.Errorf("expected stride 48, got %d", p.Stride)
	}
	if len(p.Data) != 48*17 {
		t.Errorf("expected %d bytes, got %d", 48*17, len(p.Data))
	}

	p10, err := img.AddPlane(ChannelCb, 17, 9, 10)
	if err != nil {
		t.Fatalf("AddPlane failed: %v", err)
	}
	if p10.BytesPerSample() != 2 || p10.RowBytes() != 34 || p10.Stride != 48 {
		t.Errorf("unexpected 10-bit plane geometry: bps=%d row=%d stride=%d",
			p10.BytesPerSample(), p10.RowBytes(), p10.Stride)
	}
	if p10.MaxValue() != 1023 {
		t.Errorf("expected max value 1023, got %d", p10.MaxValue())
	}

	if _, err := img.AddPlane(ChannelY, 33, 17, 8); !errors.Is(err, ErrPlaneExists) {
		t.Errorf("expected ErrPlaneExists, got %v", err)
	}
	if _, err := img.AddPlane(ChannelCr, 0, 9, 8); !errors.Is(err, ErrInvalidPlane) {
		t.Errorf("expected ErrInvalidPlane, got %v", err)
	}

	if img.BitDepth() != 8 {
		t.Errorf("expected bit depth 8, got %d", img.BitDepth())
	}
	if len(img.Planes()) != 2 {
		t.Errorf("expected 2 planes, got %d", len(img.Planes()))
	}
}

func TestPlane_At(t *testing.T) {
	img := New(4, 2, ChromaMonochrome)
	p, _ := img.AddPlane(ChannelY, 4, 2, 10)

	// 0x03FF little-endian at (2, 1)
	off := 1*p.Stride + 2*2
	p.Data[off] = 0xFF
	p.Data[off+1] = 0x03

	if got := p.At(2, 1); got != 0x3FF {
		t.Errorf("At(2,1) = %#x, want 0x3ff", got)
	}
}

func TestChromaSize(t *testing.T) {
	tests := []struct {
		chroma Chroma
		w, h   int
		wantW  int
		wantH  int
	}{
		{Chroma420, 1920, 1080, 960, 540},
		{Chroma420, 33, 17, 17, 9},
		{Chroma422, 33, 17, 17, 17},
		{Chroma444, 33, 17, 33, 17},
		{ChromaMonochrome, 33, 17, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.chroma.String(), func(t *testing.T) {
			w, h := ChromaSize(tt.chroma, tt.w, tt.h)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ChromaSize() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestImage_ToImageYCbCr(t *testing.T) {
	img := New(4, 4, Chroma420)
	y, _ := img.AddPlane(ChannelY, 4, 4, 8)
	cb, _ := img.AddPlane(ChannelCb, 2, 2, 8)
	cr, _ := img.AddPlane(ChannelCr, 2, 2, 8)
	for row := 0; row < 4; row++ {
		for x := 0; x < 4; x++ {
			y.Data[row*y.Stride+x] = byte(row*4 + x)
		}
	}
	cb.Data[0] = 100
	cr.Data[cr.Stride+1] = 200

	out, err := img.ToImage()
	if err != nil {
		t.Fatalf("ToImage failed: %v", err)
	}
	ycc, ok := out.(*image.YCbCr)
	if !ok {
		t.Fatalf("expected *image.YCbCr, got %T", out)
	}
	if ycc.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		t.Errorf("unexpected subsample ratio %v", ycc.SubsampleRatio)
	}
	if ycc.Y[ycc.YOffset(3, 2)] != 11 {
		t.Errorf("expected luma 11, got %d", ycc.Y[ycc.YOffset(3, 2)])
	}
	if ycc.Cb[ycc.COffset(0, 0)] != 100 {
		t.Errorf("expected Cb 100, got %d", ycc.Cb[ycc.COffset(0, 0)])
	}
	if ycc.Cr[ycc.COffset(3, 3)] != 200 {
		t.Errorf("expected Cr 200, got %d", ycc.Cr[ycc.COffset(3, 3)])
	}
}

func TestImage_ToImageGray16(t *testing.T) {
	img := New(2, 1, ChromaMonochrome)
	y, _ := img.AddPlane(ChannelY, 2, 1, 10)
	y.Data[0], y.Data[1] = 0xFF, 0x03 // 1023

	out, err := img.ToImage()
	if err != nil {
		t.Fatalf("ToImage failed: %v", err)
	}
	g, ok := out.(*image.Gray16)
	if !ok {
		t.Fatalf("expected *image.Gray16, got %T", out)
	}
	if v := g.Gray16At(0, 0).Y; v != 1023<<6 {
		t.Errorf("expected %d, got %d", 1023<<6, v)
	}
}

func TestImage_ToImageMissingPlane(t *testing.T) {
	img := New(2, 2, Chroma444)
	img.AddPlane(ChannelY, 2, 2, 8)

	if _, err := img.ToImage(); !errors.Is(err, ErrMissingPlane) {
		t.Errorf("expected ErrMissingPlane, got %v", err)
	}
}

func TestPlane_Gray(t *testing.T) {
	img := New(2, 1, ChromaMonochrome)
	y, _ := img.AddPlane(ChannelY, 2, 1, 10)
	y.Data[0], y.Data[1] = 0xFF, 0x03 // 1023
	y.Data[2], y.Data[3] = 0x00, 0x02 // 512

	g := y.Gray()
	if g.Bounds().Dx() != 2 || g.Bounds().Dy() != 1 {
		t.Fatalf("unexpected bounds %v", g.Bounds())
	}
	if g.Pix[0] != 255 || g.Pix[1] != 128 {
		t.Errorf("expected [255 128], got %v", g.Pix[:2])
	}
}
