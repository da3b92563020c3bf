// Package export implements the image file encoding stage.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/ideamans/go-l10n"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/user/heif/pkg/pipeline"
	"github.com/user/heif/pkg/ports"
)

// Stage encodes a rendered image into an output file format.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new export stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{
		logger: logger.WithComponent("export"),
	}
}

// Execute encodes the image in the requested format.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExportInput) (pipeline.ExportResult, error) {
	result := pipeline.ExportResult{}

	if input.Image == nil {
		return result, fmt.Errorf("no image to export")
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	var buf bytes.Buffer
	switch input.Format {
	case pipeline.FormatPNG:
		if err := png.Encode(&buf, input.Image); err != nil {
			return result, fmt.Errorf("encode PNG: %w", err)
		}
	case pipeline.FormatJPEG:
		opts := &jpeg.Options{Quality: input.Quality}
		if err := jpeg.Encode(&buf, input.Image, opts); err != nil {
			return result, fmt.Errorf("encode JPEG: %w", err)
		}
	case pipeline.FormatBMP:
		if err := bmp.Encode(&buf, toRGBA(input.Image)); err != nil {
			return result, fmt.Errorf("encode BMP: %w", err)
		}
	case pipeline.FormatTIFF:
		opts := &tiff.Options{Compression: tiff.Deflate}
		if err := tiff.Encode(&buf, toRGBA(input.Image), opts); err != nil {
			return result, fmt.Errorf("encode TIFF: %w", err)
		}
	default:
		return result, fmt.Errorf("unsupported format: %d", input.Format)
	}

	s.logger.Debug(l10n.F("Encoded %s: %d bytes", input.Format.String(), buf.Len()))
	result.Data = buf.Bytes()
	return result, nil
}

// toRGBA normalizes the pixel layout for encoders that only handle a few
// concrete image types.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}
