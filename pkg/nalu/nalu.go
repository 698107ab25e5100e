// Package nalu indexes the HEVC NAL units of a length-prefixed access unit
// and rebuilds them into an Annex-B elementary stream.
//
// The container layer delivers one access unit per tile, each NAL unit
// preceded by a 4-byte big-endian length. Parse records a borrowed view of
// every unit keyed by type; the last unit of a type wins. A Map never copies
// payload bytes and is only valid while the source buffer is unchanged.
package nalu

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/Eyevinn/mp4ff/hevc"

	"github.com/user/heiftile/pkg/decodeerr"
)

// prefixSize is the size of the big-endian length before every unit.
const prefixSize = 4

// startCode delimits units in an Annex-B stream.
var startCode = []byte{0x00, 0x00, 0x00, 0x01}

// Unit is a typed view into the parsed buffer.
type Unit struct {
	Type   hevc.NaluType
	Offset int // offset of the first payload byte (after the length prefix)
	Length int
}

// End returns the offset just past the unit payload.
func (u Unit) End() int {
	return u.Offset + u.Length
}

// Map holds the most recent unit of each type found in one access unit.
type Map struct {
	buf   []byte
	units map[hevc.NaluType]Unit
}

// Parse walks buf as a sequence of length-prefixed units.
// It returns an EndOfData error if a prefix is cut short or a declared
// length runs past the end of buf; no map is returned in that case.
func Parse(buf []byte) (*Map, error) {
	m := &Map{
		buf:   buf,
		units: make(map[hevc.NaluType]Unit),
	}

	pos := 0
	for pos < len(buf) {
		if len(buf)-pos < prefixSize {
			return nil, decodeerr.New(decodeerr.EndOfData,
				"%d trailing bytes at offset %d cannot hold a length prefix", len(buf)-pos, pos)
		}
		length := int(binary.BigEndian.Uint32(buf[pos:]))
		pos += prefixSize

		if length > len(buf)-pos {
			return nil, decodeerr.New(decodeerr.EndOfData,
				"unit at offset %d declares %d bytes, %d remain", pos-prefixSize, length, len(buf)-pos)
		}

		// An empty unit has no header byte to classify.
		if length > 0 {
			t := hevc.GetNaluType(buf[pos])
			m.units[t] = Unit{Type: t, Offset: pos, Length: length}
		}
		pos += length
	}

	return m, nil
}

// Get returns the unit recorded for t.
func (m *Map) Get(t hevc.NaluType) (Unit, bool) {
	u, ok := m.units[t]
	return u, ok
}

// Has reports whether a unit of type t was found.
func (m *Map) Has(t hevc.NaluType) bool {
	_, ok := m.units[t]
	return ok
}

// Payload returns the bytes of u within the parsed buffer.
func (m *Map) Payload(u Unit) []byte {
	return m.buf[u.Offset:u.End()]
}

// Len returns the number of distinct unit types found.
func (m *Map) Len() int {
	return len(m.units)
}

// Units returns the recorded units ordered by their position in the buffer.
func (m *Map) Units() []Unit {
	units := make([]Unit, 0, len(m.units))
	for _, u := range m.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].Offset < units[j].Offset
	})
	return units
}

// HasValidStructuralUnits reports whether VPS, SPS and PPS are all present.
func (m *Map) HasValidStructuralUnits() bool {
	return m.Has(hevc.NALU_VPS) && m.Has(hevc.NALU_SPS) && m.Has(hevc.NALU_PPS)
}

// HasValidPicture reports whether an IDR picture is present.
func (m *Map) HasValidPicture() bool {
	_, ok := m.picture()
	return ok
}

// picture returns the IDR unit, preferring IDR_W_RADL over IDR_N_LP.
func (m *Map) picture() (Unit, bool) {
	if u, ok := m.units[hevc.NALU_IDR_W_RADL]; ok {
		return u, true
	}
	u, ok := m.units[hevc.NALU_IDR_N_LP]
	return u, ok
}

// ReassembleWithStartCodes writes VPS, SPS, PPS and the IDR picture, in that
// order, each preceded by an Annex-B start code, into a new buffer.
func (m *Map) ReassembleWithStartCodes() ([]byte, error) {
	if !m.HasValidStructuralUnits() {
		return nil, decodeerr.New(decodeerr.StructuralIncomplete, "missing %s", m.missing())
	}
	pic, ok := m.picture()
	if !ok {
		return nil, decodeerr.New(decodeerr.StructuralIncomplete, "missing IDR picture")
	}

	order := []Unit{m.units[hevc.NALU_VPS], m.units[hevc.NALU_SPS], m.units[hevc.NALU_PPS], pic}

	size := 0
	for _, u := range order {
		size += len(startCode) + u.Length
	}

	out := make([]byte, 0, size)
	for _, u := range order {
		out = append(out, startCode...)
		out = append(out, m.Payload(u)...)
	}
	return out, nil
}

// missing names the absent parameter sets for error messages.
func (m *Map) missing() string {
	var names []string
	for _, t := range []hevc.NaluType{hevc.NALU_VPS, hevc.NALU_SPS, hevc.NALU_PPS} {
		if !m.Has(t) {
			names = append(names, TypeName(t))
		}
	}
	return strings.Join(names, ", ")
}

// TypeName returns a short name for the unit types this package reports on.
func TypeName(t hevc.NaluType) string {
	switch t {
	case hevc.NALU_VPS:
		return "VPS"
	case hevc.NALU_SPS:
		return "SPS"
	case hevc.NALU_PPS:
		return "PPS"
	case hevc.NALU_IDR_W_RADL:
		return "IDR_W_RADL"
	case hevc.NALU_IDR_N_LP:
		return "IDR_N_LP"
	default:
		return fmt.Sprintf("type %d", int(t))
	}
}
