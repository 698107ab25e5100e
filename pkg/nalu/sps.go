package nalu

import (
	"encoding/binary"

	"github.com/Eyevinn/mp4ff/avc"
	"github.com/Eyevinn/mp4ff/hevc"

	"github.com/user/heiftile/pkg/decodeerr"
)

// StreamInfo is the picture geometry declared by the SPS.
type StreamInfo struct {
	// Width and Height are the cropped picture size.
	Width  int
	Height int
	// ChromaFormat is chroma_format_idc: 0 monochrome, 1 4:2:0, 2 4:2:2, 3 4:4:4.
	ChromaFormat int
	BitDepth     int
}

// StreamInfo parses the recorded SPS.
func (m *Map) StreamInfo() (StreamInfo, error) {
	u, ok := m.Get(hevc.NALU_SPS)
	if !ok {
		return StreamInfo{}, decodeerr.New(decodeerr.StructuralIncomplete, "missing SPS")
	}
	sps, err := hevc.ParseSPSNALUnit(m.Payload(u))
	if err != nil {
		return StreamInfo{}, decodeerr.Wrap(decodeerr.DecodeFailed, err, "parse SPS")
	}
	w, h := sps.ImageSize()
	return StreamInfo{
		Width:        int(w),
		Height:       int(h),
		ChromaFormat: int(sps.ChromaFormatIDC),
		BitDepth:     int(sps.BitDepthLumaMinus8) + 8,
	}, nil
}

// FromAnnexB converts an Annex-B stream into length-prefixed units.
func FromAnnexB(stream []byte) []byte {
	var out []byte
	for _, n := range avc.ExtractNalusFromByteStream(stream) {
		out = binary.BigEndian.AppendUint32(out, uint32(len(n)))
		out = append(out, n...)
	}
	return out
}

// IsAnnexB reports whether buf starts with a three or four byte start code.
func IsAnnexB(buf []byte) bool {
	switch {
	case len(buf) >= 4 && buf[0] == 0 && buf[1] == 0 && buf[2] == 0 && buf[3] == 1:
		return true
	case len(buf) >= 3 && buf[0] == 0 && buf[1] == 0 && buf[2] == 1:
		return true
	}
	return false
}
