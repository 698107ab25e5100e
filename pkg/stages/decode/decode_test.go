package decode

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/user/heiftile/pkg/adapters/smartdecoder"
	"github.com/user/heiftile/pkg/decodeerr"
	"github.com/user/heiftile/pkg/heifimage"
	"github.com/user/heiftile/pkg/mocks"
	"github.com/user/heiftile/pkg/pipeline"
	"github.com/user/heiftile/pkg/ports"
)

func newSelector(backends ...ports.DecoderBackend) *smartdecoder.Selector {
	return smartdecoder.New(backends, smartdecoder.Options{}, mocks.NewLogger())
}

func TestStage_Execute(t *testing.T) {
	backend := mocks.NewBackend("hw", map[ports.CompressionFormat]int{ports.FormatHEVC: 100})
	stage := NewStage(newSelector(backend), mocks.NewLogger())

	tile := &ports.Tile{Name: "t", Format: ports.FormatHEVC, Data: []byte{1, 2, 3}}
	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{Tile: tile, Strict: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Backend != "hw" {
		t.Errorf("backend = %s, want hw", result.Backend)
	}
	if result.Image == nil || result.Image.Width != 16 {
		t.Fatalf("unexpected image %+v", result.Image)
	}

	s := backend.Sessions[0]
	if !s.Strict || !s.Closed || s.Decoded != 1 {
		t.Errorf("session strict=%v closed=%v decoded=%d", s.Strict, s.Closed, s.Decoded)
	}
}

func TestStage_PushesTileData(t *testing.T) {
	var got []byte
	backend := mocks.NewBackend("hw", map[ports.CompressionFormat]int{ports.FormatHEVC: 100})
	backend.DecodeImageFunc = func(data []byte) (*heifimage.Image, error) {
		got = data
		return mocks.GrayImage(4, 4, 8), nil
	}
	stage := NewStage(newSelector(backend), mocks.NewLogger())

	tile := &ports.Tile{Name: "t", Format: ports.FormatHEVC, Data: []byte{9, 8, 7}}
	if _, err := stage.Execute(context.Background(), pipeline.DecodeInput{Tile: tile}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, tile.Data) {
		t.Errorf("decoded %v, want %v", got, tile.Data)
	}
}

func TestStage_DecodeErrorClosesSession(t *testing.T) {
	backend := mocks.NewBackend("hw", map[ports.CompressionFormat]int{ports.FormatHEVC: 100})
	backend.DecodeImageFunc = func(data []byte) (*heifimage.Image, error) {
		return nil, decodeerr.New(decodeerr.StructuralIncomplete, "missing PPS")
	}
	stage := NewStage(newSelector(backend), mocks.NewLogger())

	tile := &ports.Tile{Name: "t", Format: ports.FormatHEVC}
	_, err := stage.Execute(context.Background(), pipeline.DecodeInput{Tile: tile})
	if !errors.Is(err, decodeerr.ErrStructuralIncomplete) {
		t.Fatalf("expected StructuralIncomplete, got %v", err)
	}
	if !backend.Sessions[0].Closed {
		t.Error("session not closed after failure")
	}
}

func TestStage_NoBackend(t *testing.T) {
	backend := mocks.NewBackend("hw", map[ports.CompressionFormat]int{ports.FormatHEVC: 100})
	stage := NewStage(newSelector(backend), mocks.NewLogger())

	tile := &ports.Tile{Name: "t", Format: ports.FormatAV1}
	if _, err := stage.Execute(context.Background(), pipeline.DecodeInput{Tile: tile}); !errors.Is(err, smartdecoder.ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got %v", err)
	}
}
