// Package render implements the stage turning decoded planar samples
// into a drawable image, applying the container's display transforms.
package render

import (
	"context"
	"fmt"
	"image"

	"github.com/ideamans/go-l10n"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/user/heif/pkg/heif"
	"github.com/user/heif/pkg/pipeline"
	"github.com/user/heif/pkg/ports"
)

// Stage renders a planar image to an image.Image.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new render stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{
		logger: logger.WithComponent("render"),
	}
}

// Execute converts the planes to pixels, applies rotation and mirror
// unless raw output was requested, and scales to the target width.
func (s *Stage) Execute(ctx context.Context, input pipeline.RenderInput) (pipeline.RenderResult, error) {
	result := pipeline.RenderResult{}
	if input.Image == nil {
		return result, fmt.Errorf("no image to render")
	}

	ycc, err := input.Image.YCbCr8()
	if err != nil {
		return result, fmt.Errorf("convert planes: %w", err)
	}
	var img image.Image = ycc

	if !input.RawRotation {
		rotation := input.Image.Rotation()
		mirror := input.Image.Mirror()
		if rotation != 0 || mirror != heif.MirrorNone {
			s.logger.Debug(l10n.F("Applying display transform: rotate %d, mirror %d",
				rotation, int(mirror)))
			img = applyOrientation(img, rotation, mirror)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if input.TargetWidth > 0 && input.TargetWidth != img.Bounds().Dx() {
		img = scaleToWidth(img, input.TargetWidth)
		s.logger.Debug(l10n.F("Scaled to %dx%d", img.Bounds().Dx(), img.Bounds().Dy()))
	}

	result.Image = img
	return result, nil
}

// applyOrientation rotates counter-clockwise first, then mirrors, the
// order HEIF transform properties are conventionally applied in.
func applyOrientation(img image.Image, degrees int, mirror heif.MirrorAxis) image.Image {
	if degrees != 0 {
		img = rotate(img, degrees)
	}
	switch mirror {
	case heif.MirrorVertical:
		img = transform(img, img.Bounds().Dx(), img.Bounds().Dy(), f64.Aff3{
			-1, 0, float64(img.Bounds().Dx()),
			0, 1, 0,
		})
	case heif.MirrorHorizontal:
		img = transform(img, img.Bounds().Dx(), img.Bounds().Dy(), f64.Aff3{
			1, 0, 0,
			0, -1, float64(img.Bounds().Dy()),
		})
	}
	return img
}

// rotate turns the image by the given counter-clockwise angle. Angles are
// multiples of 90 degrees; anything else is left untouched.
func rotate(img image.Image, degrees int) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return transform(img, h, w, f64.Aff3{
			0, 1, 0,
			-1, 0, float64(w),
		})
	case 180:
		return transform(img, w, h, f64.Aff3{
			-1, 0, float64(w),
			0, -1, float64(h),
		})
	case 270:
		return transform(img, h, w, f64.Aff3{
			0, -1, float64(h),
			1, 0, 0,
		})
	}
	return img
}

// transform draws img through an affine map into a fresh dstW x dstH
// canvas. The maps used here move whole pixels, so nearest neighbor is
// exact.
func transform(img image.Image, dstW, dstH int, m f64.Aff3) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.NearestNeighbor.Transform(dst, m, img, img.Bounds(), draw.Src, nil)
	return dst
}

// scaleToWidth resizes preserving the aspect ratio.
func scaleToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
