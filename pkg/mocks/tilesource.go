package mocks

import (
	"fmt"
	"sync"

	"github.com/user/heiftile/pkg/ports"
)

// TileSource is a mock implementation of ports.TileSource serving tiles by path.
type TileSource struct {
	mu    sync.Mutex
	tiles map[string]*ports.Tile

	Loaded []string
}

// NewTileSource creates a source holding the given tiles, keyed by path.
func NewTileSource(tiles map[string]*ports.Tile) *TileSource {
	return &TileSource{tiles: tiles}
}

func (m *TileSource) Load(path string) (*ports.Tile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loaded = append(m.Loaded, path)
	t, ok := m.tiles[path]
	if !ok {
		return nil, fmt.Errorf("tile not found: %s", path)
	}
	return t, nil
}

var _ ports.TileSource = (*TileSource)(nil)
