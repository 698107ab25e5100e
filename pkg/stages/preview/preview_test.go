package preview

import (
	"context"
	"testing"

	"github.com/user/heiftile/pkg/adapters/ggrenderer"
	"github.com/user/heiftile/pkg/heifimage"
	"github.com/user/heiftile/pkg/mocks"
	"github.com/user/heiftile/pkg/pipeline"
)

func image420(t *testing.T, w, h int) *heifimage.Image {
	t.Helper()
	img := heifimage.New(w, h, heifimage.Chroma420)
	cw, ch := heifimage.ChromaSize(heifimage.Chroma420, w, h)
	if _, err := img.AddPlane(heifimage.ChannelY, w, h, 8); err != nil {
		t.Fatal(err)
	}
	for _, c := range []heifimage.Channel{heifimage.ChannelCb, heifimage.ChannelCr} {
		if _, err := img.AddPlane(c, cw, ch, 8); err != nil {
			t.Fatal(err)
		}
	}
	return img
}

func TestStage_Execute(t *testing.T) {
	renderer := &mocks.Renderer{}
	stage := NewStage(renderer, mocks.NewLogger())

	theme := pipeline.DefaultPreviewTheme()
	result, err := stage.Execute(context.Background(), pipeline.PreviewInput{
		Title: "tile",
		Image: image420(t, 64, 32),
		Theme: theme,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 64 + 32 + 32 wide planes, two gaps, padding on both sides.
	wantW := 64 + 32 + 32 + 2*theme.Gap + 2*theme.Padding
	wantH := 32 + 2*theme.LabelHeight + 2*theme.Padding
	b := result.Image.Bounds()
	if b.Dx() != wantW || b.Dy() != wantH {
		t.Errorf("preview %dx%d, want %dx%d", b.Dx(), b.Dy(), wantW, wantH)
	}

	canvas := renderer.Canvases[0]
	if canvas.Images != 3 {
		t.Errorf("drew %d planes, want 3", canvas.Images)
	}
	want := []string{"tile 64x32 4:2:0", "Y 64x32 8-bit", "Cb 32x16 8-bit", "Cr 32x16 8-bit"}
	if len(canvas.Texts) != len(want) {
		t.Fatalf("texts %q, want %q", canvas.Texts, want)
	}
	for i := range want {
		if canvas.Texts[i] != want[i] {
			t.Errorf("text %d = %q, want %q", i, canvas.Texts[i], want[i])
		}
	}
}

func TestStage_ScalesWidePlanes(t *testing.T) {
	stage := NewStage(ggrenderer.New(), mocks.NewLogger())
	theme := pipeline.DefaultPreviewTheme()

	result, err := stage.Execute(context.Background(), pipeline.PreviewInput{
		Image:         image420(t, 512, 256),
		MaxPlaneWidth: 128,
		Theme:         theme,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantW := 128 + 64 + 64 + 2*theme.Gap + 2*theme.Padding
	if got := result.Image.Bounds().Dx(); got != wantW {
		t.Errorf("width %d, want %d", got, wantW)
	}
}

func TestStage_NoPlanes(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, mocks.NewLogger())
	if _, err := stage.Execute(context.Background(), pipeline.PreviewInput{Image: heifimage.New(4, 4, heifimage.Chroma420)}); err == nil {
		t.Error("expected error for an image without planes")
	}
}
