package save

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/user/heiftile/pkg/mocks"
	"github.com/user/heiftile/pkg/pipeline"
)

func TestStage_Execute(t *testing.T) {
	sink := mocks.NewImageSink()
	stage := NewStage(sink, mocks.NewLogger())

	result, err := stage.Execute(context.Background(), pipeline.SaveInput{
		Name:    "tile",
		Image:   mocks.GrayImage(8, 4, 8),
		Preview: image.NewRGBA(image.Rect(0, 0, 10, 10)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ImagePath != "tile.png" || result.PreviewPath != "tile.preview.png" {
		t.Errorf("unexpected paths %+v", result)
	}

	img, ok := sink.Image("tile")
	if !ok {
		t.Fatal("image not saved")
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", img)
	}
	if gray.GrayAt(3, 1).Y != 3 {
		t.Errorf("pixel (3,1) = %d, want 3", gray.GrayAt(3, 1).Y)
	}
}

func TestStage_NoPreview(t *testing.T) {
	sink := mocks.NewImageSink()
	stage := NewStage(sink, mocks.NewLogger())

	result, err := stage.Execute(context.Background(), pipeline.SaveInput{Name: "t", Image: mocks.GrayImage(2, 2, 8)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PreviewPath != "" || len(sink.Previews) != 0 {
		t.Error("preview written without input")
	}
}

func TestStage_SinkError(t *testing.T) {
	sink := mocks.NewImageSink()
	sink.SaveImageErr = errors.New("disk full")
	stage := NewStage(sink, mocks.NewLogger())

	if _, err := stage.Execute(context.Background(), pipeline.SaveInput{Name: "t", Image: mocks.GrayImage(2, 2, 8)}); !errors.Is(err, sink.SaveImageErr) {
		t.Errorf("expected wrapped sink error, got %v", err)
	}
}
