// Package tilesource loads coded tiles from files: the first sync sample of
// an MP4 video track, an Annex-B elementary stream, or a raw
// length-prefixed access unit.
package tilesource

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/heiftile/pkg/nalu"
	"github.com/user/heiftile/pkg/ports"
)

// Kind is the file layout a tile is stored in.
type Kind int

const (
	KindLengthPrefixed Kind = iota
	KindAnnexB
	KindMP4
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindAnnexB:
		return "annexb"
	case KindMP4:
		return "mp4"
	default:
		return "length-prefixed"
	}
}

// Source reads tiles through a FileSystem.
type Source struct {
	fs ports.FileSystem
}

// New creates a tile source.
func New(fs ports.FileSystem) *Source {
	return &Source{fs: fs}
}

// Load reads the tile at path.
func (s *Source) Load(path string) (*ports.Tile, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tile: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch Detect(path, data) {
	case KindMP4:
		tile, err := fromMP4(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		tile.Name = name
		return tile, nil
	case KindAnnexB:
		return &ports.Tile{Name: name, Format: ports.FormatHEVC, Data: nalu.FromAnnexB(data)}, nil
	default:
		return &ports.Tile{Name: name, Format: ports.FormatHEVC, Data: data}, nil
	}
}

// Detect classifies a tile file by extension, then by content.
func Detect(path string, data []byte) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return KindMP4
	case ".265", ".h265", ".hevc":
		return KindAnnexB
	case ".hvc", ".bin":
		return KindLengthPrefixed
	}

	if len(data) >= 8 && bytes.Equal(data[4:8], []byte("ftyp")) {
		return KindMP4
	}
	if nalu.IsAnnexB(data) {
		return KindAnnexB
	}
	return KindLengthPrefixed
}

// prefixed length-prefixes each unit and appends them to dst.
func prefixed(dst []byte, units ...[]byte) []byte {
	for _, u := range units {
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(u)))
		dst = append(dst, u...)
	}
	return dst
}

var _ ports.TileSource = (*Source)(nil)
