package ggrenderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/user/heiftile/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 100, color.White)
	if canvas == nil {
		t.Fatal("expected canvas to be created")
	}

	img := canvas.ToImage()
	bounds := img.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("expected 100x100, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	r32, g32, b32, _ := img.At(50, 50).RGBA()
	if r32 != 0xFFFF || g32 != 0xFFFF || b32 != 0xFFFF {
		t.Errorf("expected white background, got %v", img.At(50, 50))
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()

	src := image.NewGray(image.Rect(0, 0, 64, 32))
	resized := r.ResizeImage(src, 16, 8)

	bounds := resized.Bounds()
	if bounds.Dx() != 16 || bounds.Dy() != 8 {
		t.Errorf("expected 16x8, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestCanvas_DrawRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(20, 20, color.Black)

	red := color.RGBA{R: 255, A: 255}
	canvas.DrawRect(5, 5, 10, 10, red)

	img := canvas.ToImage()
	if r32, _, _, _ := img.At(10, 10).RGBA(); r32 != 0xFFFF {
		t.Errorf("expected red inside rect, got %v", img.At(10, 10))
	}
	if r32, _, _, _ := img.At(1, 1).RGBA(); r32 != 0 {
		t.Errorf("expected black outside rect, got %v", img.At(1, 1))
	}
}

func TestCanvas_MeasureText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 40, color.Black)

	style := ports.TextStyle{FontSize: 12, Color: color.White}
	short, _ := canvas.MeasureText("Y", style)
	long, h := canvas.MeasureText("Y 4:2:0 8-bit", style)
	if long <= short {
		t.Errorf("expected longer text to measure wider: %v <= %v", long, short)
	}
	if h <= 0 {
		t.Errorf("expected positive height, got %v", h)
	}

	// A missing font keeps the built-in face.
	style.FontPath = "/nonexistent/font.ttf"
	canvas.DrawText("Cb", 10, 20, style)
}
