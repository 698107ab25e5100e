package smartdecoder

import (
	"errors"
	"testing"

	"github.com/user/heiftile/pkg/mocks"
	"github.com/user/heiftile/pkg/ports"
)

func backends() (*mocks.Backend, *mocks.Backend) {
	hw := mocks.NewBackend("nvdec", map[ports.CompressionFormat]int{ports.FormatHEVC: 120})
	sw := mocks.NewBackend("ffmpeg", map[ports.CompressionFormat]int{ports.FormatHEVC: 50, ports.FormatAVC: 50})
	return hw, sw
}

func TestSelect_Auto(t *testing.T) {
	hw, sw := backends()
	s := New([]ports.DecoderBackend{sw, hw}, Options{}, mocks.NewLogger())

	tests := []struct {
		format ports.CompressionFormat
		want   string
	}{
		{ports.FormatHEVC, "nvdec"},
		{ports.FormatAVC, "ffmpeg"},
	}
	for _, tt := range tests {
		b, err := s.Select(tt.format)
		if err != nil {
			t.Fatalf("Select(%s) failed: %v", tt.format, err)
		}
		if b.ID() != tt.want {
			t.Errorf("Select(%s) = %s, want %s", tt.format, b.ID(), tt.want)
		}
	}

	if _, err := s.Select(ports.FormatAV1); !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got %v", err)
	}
}

func TestSelect_Named(t *testing.T) {
	hw, sw := backends()
	s := New([]ports.DecoderBackend{hw, sw}, Options{Backend: "ffmpeg"}, mocks.NewLogger())

	b, err := s.Select(ports.FormatHEVC)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if b.ID() != "ffmpeg" {
		t.Errorf("Select = %s, want ffmpeg", b.ID())
	}

	s = New([]ports.DecoderBackend{hw, sw}, Options{Backend: "nvdec"}, mocks.NewLogger())
	if _, err := s.Select(ports.FormatAVC); !errors.Is(err, ErrNoDecoderAvailable) {
		t.Errorf("expected ErrNoDecoderAvailable, got %v", err)
	}

	s = New([]ports.DecoderBackend{hw, sw}, Options{Backend: "vaapi"}, mocks.NewLogger())
	if _, err := s.Select(ports.FormatHEVC); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestCandidates_Order(t *testing.T) {
	hw, sw := backends()
	other := mocks.NewBackend("other", map[ports.CompressionFormat]int{ports.FormatHEVC: 50})
	s := New([]ports.DecoderBackend{sw, other, hw}, Options{}, mocks.NewLogger())

	got := s.Candidates(ports.FormatHEVC)
	want := []string{"nvdec", "ffmpeg", "other"}
	for i, c := range got {
		if c.Backend.ID() != want[i] {
			t.Errorf("candidate %d = %s, want %s", i, c.Backend.ID(), want[i])
		}
	}
	if got[0].Priority != 120 {
		t.Errorf("top priority = %d, want 120", got[0].Priority)
	}
}
