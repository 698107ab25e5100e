package ports

// Tile is one coded image item ready for a decoder session.
type Tile struct {
	// Name identifies the tile in logs and output file names.
	Name   string
	Format CompressionFormat
	// Data is the access unit with 4-byte big-endian length prefixes,
	// parameter sets first.
	Data []byte
	// Width and Height are the coded dimensions when the container declares them.
	Width  int
	Height int
}

// TileSource loads tiles from files.
type TileSource interface {
	// Load reads the tile stored at path.
	Load(path string) (*Tile, error)
}
