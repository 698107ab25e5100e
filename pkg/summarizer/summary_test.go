package summarizer

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithSettings(t *testing.T) {
	summary := NewBuilder().
		WithSettings(Settings{
			Backend:      "nvdec",
			Strict:       true,
			OutputFormat: "tiff",
			Workers:      4,
		}).
		Build()

	if summary.Settings.Backend != "nvdec" {
		t.Errorf("expected Backend 'nvdec', got '%s'", summary.Settings.Backend)
	}
	if !summary.Settings.Strict {
		t.Error("expected Strict to be true")
	}
	if summary.Settings.Workers != 4 {
		t.Errorf("expected Workers 4, got %d", summary.Settings.Workers)
	}
}

func TestBuilder_AddTile(t *testing.T) {
	summary := NewBuilder().
		AddTile(TileInfo{Name: "a", Width: 512, Height: 512}).
		AddTile(TileInfo{Name: "b", Error: "DecodeFailed: no picture"}).
		AddTile(TileInfo{Name: "c"}).
		Build()

	if len(summary.Tiles) != 3 {
		t.Fatalf("expected 3 tiles, got %d", len(summary.Tiles))
	}
	if summary.Tiles[1].Name != "b" {
		t.Errorf("tiles should keep insertion order, got %q", summary.Tiles[1].Name)
	}
	if summary.Failures() != 1 {
		t.Errorf("expected 1 failure, got %d", summary.Failures())
	}
}

func TestJSONFormatter(t *testing.T) {
	summary := NewBuilder().
		WithSettings(Settings{Backend: "auto", Workers: 2}).
		AddTile(TileInfo{Name: "tile0", Backend: "ffmpeg", Width: 64, Height: 32, Chroma: "4:2:0", BitDepth: 10, ElapsedMs: 12}).
		Build()

	var decoded map[string]any
	if err := json.Unmarshal([]byte(JSONFormatter.Format(summary)), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	tiles, ok := decoded["tiles"].([]any)
	if !ok || len(tiles) != 1 {
		t.Fatalf("expected one tile, got %v", decoded["tiles"])
	}
	tile := tiles[0].(map[string]any)
	if tile["chroma"] != "4:2:0" {
		t.Errorf("expected chroma 4:2:0, got %v", tile["chroma"])
	}
	if _, present := tile["error"]; present {
		t.Error("error should be omitted for successful tiles")
	}
}
