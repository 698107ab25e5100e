package nalu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Eyevinn/mp4ff/hevc"

	"github.com/user/heiftile/pkg/decodeerr"
)

func TestFromAnnexB(t *testing.T) {
	vps := unit(hevc.NALU_VPS, 12, 0xB1)
	sps := unit(hevc.NALU_SPS, 9, 0xB2)
	pps := unit(hevc.NALU_PPS, 5, 0xB3)
	idr := unit(hevc.NALU_IDR_N_LP, 40, 0xB4)
	want := frame(vps, sps, pps, idr)

	m, err := Parse(want)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	annexB, err := m.ReassembleWithStartCodes()
	if err != nil {
		t.Fatalf("ReassembleWithStartCodes failed: %v", err)
	}
	if !IsAnnexB(annexB) {
		t.Error("reassembled stream not recognised as Annex-B")
	}

	if got := FromAnnexB(annexB); !bytes.Equal(got, want) {
		t.Errorf("FromAnnexB = %x, want %x", got, want)
	}
}

func TestIsAnnexB(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want bool
	}{
		{"four byte start code", []byte{0, 0, 0, 1, 0x40}, true},
		{"three byte start code", []byte{0, 0, 1, 0x40}, true},
		{"length prefix", []byte{0, 0, 0, 24, 0x40}, false},
		{"short", []byte{0, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAnnexB(tt.buf); got != tt.want {
				t.Errorf("IsAnnexB(%x) = %v, want %v", tt.buf, got, tt.want)
			}
		})
	}
}

func TestStreamInfo_MissingSPS(t *testing.T) {
	m, err := Parse(frame(unit(hevc.NALU_VPS, 4, 0xC1)))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := m.StreamInfo(); !errors.Is(err, decodeerr.ErrStructuralIncomplete) {
		t.Errorf("expected StructuralIncomplete, got %v", err)
	}
}
