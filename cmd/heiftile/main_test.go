package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"heiftile"}, args...))
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runApp(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("expected version in output, got %q", out)
	}
}

func TestBackendsCommand(t *testing.T) {
	out, err := runApp(t, "backends", "--quiet", "--ffmpeg-path", "/nonexistent/ffmpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"nvdec", "ffmpeg", "hevc", "av1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestBackendsCommand_InvalidBackend(t *testing.T) {
	if _, err := runApp(t, "backends", "--quiet", "--backend", "vaapi"); err == nil {
		t.Error("expected validation error for unknown backend")
	}
}

func TestProbeCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tile.265")
	stream := []byte{
		0, 0, 0, 1, 0x40, 0x01, 0x0C,
		0, 0, 0, 1, 0x26, 0x01, 0xAF,
	}
	if err := os.WriteFile(path, stream, 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "probe", "--quiet", "--backend", "ffmpeg", "--ffmpeg-path", "/nonexistent/ffmpeg", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"hevc", "VPS", "IDR_W_RADL", "Incomplete access unit", "SPS:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDecodeCommand_RequiresTiles(t *testing.T) {
	if _, err := runApp(t, "decode", "--quiet"); err == nil {
		t.Error("expected error without tiles")
	}
}
