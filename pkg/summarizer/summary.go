// Package summarizer builds reports of batch tile decodes.
package summarizer

import "time"

// Summary contains the results of one batch run.
type Summary struct {
	GeneratedAt time.Time  `json:"generatedAt"`
	Settings    Settings   `json:"settings"`
	Tiles       []TileInfo `json:"tiles"`
}

// Settings contains the decode configuration of the run.
type Settings struct {
	Backend      string `json:"backend"`
	Strict       bool   `json:"strict"`
	OutputFormat string `json:"outputFormat"`
	Workers      int    `json:"workers"`
}

// TileInfo is the outcome of decoding one tile.
type TileInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Backend   string `json:"backend,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Chroma    string `json:"chroma,omitempty"`
	BitDepth  int    `json:"bitDepth,omitempty"`
	ElapsedMs int64  `json:"elapsedMs"`
	Output    string `json:"output,omitempty"`
	Preview   string `json:"preview,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Failed reports whether the tile did not decode.
func (t TileInfo) Failed() bool {
	return t.Error != ""
}

// Failures counts the tiles that did not decode.
func (s *Summary) Failures() int {
	n := 0
	for _, t := range s.Tiles {
		if t.Failed() {
			n++
		}
	}
	return n
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSettings sets the run settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// AddTile appends a tile result.
func (b *Builder) AddTile(tile TileInfo) *Builder {
	b.summary.Tiles = append(b.summary.Tiles, tile)
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
