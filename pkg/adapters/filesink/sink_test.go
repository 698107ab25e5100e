package filesink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/user/heiftile/pkg/mocks"
	"github.com/user/heiftile/pkg/ports"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("out")

func testImage() image.Image {
	img := image.NewGray16(image.Rect(0, 0, 4, 2))
	img.SetGray16(1, 1, color.Gray16{Y: 0xABCD})
	return img
}

func TestSink_SaveImagePNG(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, ports.ImagePNG, fs)

	path, err := sink.SaveImage("tile-0", testImage())
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if want := filepath.Join(testBaseDir, "tile-0.png"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	data, ok := fs.GetFile(path)
	if !ok {
		t.Fatalf("expected file at %s", path)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if v := color.Gray16Model.Convert(decoded.At(1, 1)).(color.Gray16).Y; v != 0xABCD {
		t.Errorf("sample = %#x, want 0xabcd", v)
	}
}

func TestSink_SaveImageTIFF(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, ports.ImageTIFF, fs)

	path, err := sink.SaveImage("tile-0", testImage())
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if filepath.Ext(path) != ".tiff" {
		t.Errorf("unexpected extension in %s", path)
	}

	data, _ := fs.GetFile(path)
	decoded, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("tiff.Decode failed: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("decoded %dx%d, want 4x2", b.Dx(), b.Dy())
	}
}

func TestSink_SavePreviewAndReport(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, ports.ImageTIFF, fs)

	path, err := sink.SavePreview("tile-0", image.NewRGBA(image.Rect(0, 0, 3, 3)))
	if err != nil {
		t.Fatalf("SavePreview failed: %v", err)
	}
	if want := filepath.Join(testBaseDir, "previews", "tile-0.png"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	report := []byte(`{"tiles":[]}`)
	path, err = sink.SaveReport(report)
	if err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	saved, _ := fs.GetFile(path)
	if !bytes.Equal(saved, report) {
		t.Errorf("report = %q, want %q", saved, report)
	}
}
