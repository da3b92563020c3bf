package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/user/heif/pkg/mocks"
	"github.com/user/heif/pkg/pipeline"
)

func testPixels() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: byte(x * 32), G: byte(y * 42), B: 0x80, A: 0xFF})
		}
	}
	return img
}

func TestStageFormats(t *testing.T) {
	tests := []struct {
		format pipeline.OutputFormat
		magic  []byte
	}{
		{pipeline.FormatPNG, []byte("\x89PNG")},
		{pipeline.FormatJPEG, []byte{0xFF, 0xD8}},
		{pipeline.FormatBMP, []byte("BM")},
		{pipeline.FormatTIFF, []byte("II")},
	}

	stage := NewStage(mocks.NewLogger())
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			input := pipeline.DefaultExportInput()
			input.Image = testPixels()
			input.Format = tt.format

			result, err := stage.Execute(context.Background(), input)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if !bytes.HasPrefix(result.Data, tt.magic) {
				t.Errorf("output starts with % x, want % x", result.Data[:4], tt.magic)
			}
		})
	}
}

func TestStagePNGRoundTrip(t *testing.T) {
	input := pipeline.DefaultExportInput()
	input.Image = testPixels()

	result, err := NewStage(mocks.NewLogger()).Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if decoded.Bounds().Dx() != 8 || decoded.Bounds().Dy() != 6 {
		t.Errorf("decoded bounds = %v, want 8x6", decoded.Bounds())
	}
	wr, wg, wb, _ := testPixels().At(3, 2).RGBA()
	gr, gg, gb, _ := decoded.At(3, 2).RGBA()
	if wr != gr || wg != gg || wb != gb {
		t.Errorf("pixel (3,2) = %d/%d/%d, want %d/%d/%d", gr, gg, gb, wr, wg, wb)
	}
}

func TestStageNilImage(t *testing.T) {
	input := pipeline.DefaultExportInput()
	if _, err := NewStage(mocks.NewLogger()).Execute(context.Background(), input); err == nil {
		t.Fatal("expected an error for a nil image")
	}
}

func TestStageUnknownFormat(t *testing.T) {
	input := pipeline.ExportInput{Image: testPixels(), Format: pipeline.OutputFormat(99), Quality: 90}
	if _, err := NewStage(mocks.NewLogger()).Execute(context.Background(), input); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
