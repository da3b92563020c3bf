package heif

import (
	"encoding/binary"
	"image"
)

// Colorspace identifies the color model of an Image.
type Colorspace int

const (
	ColorspaceUndefined Colorspace = iota
	ColorspaceYCbCr
	ColorspaceRGB
	ColorspaceMonochrome
)

// Chroma identifies the chroma subsampling layout of an Image.
type Chroma int

const (
	ChromaUndefined Chroma = iota
	ChromaMonochrome
	Chroma420
	Chroma422
	Chroma444
)

// Channel identifies one plane of an Image.
type Channel int

const (
	ChannelY Channel = iota
	ChannelCb
	ChannelCr
	ChannelR
	ChannelG
	ChannelB
	ChannelAlpha
)

// MirrorAxis is the axis of an imir mirror transform.
type MirrorAxis int

const (
	MirrorNone MirrorAxis = iota
	// MirrorVertical flips left and right (mirror about the vertical axis).
	MirrorVertical
	// MirrorHorizontal flips top and bottom.
	MirrorHorizontal
)

// Plane is one channel of a planar image. Data holds Height rows of
// Width*bytes-per-sample bytes each, Stride bytes apart. Samples wider than
// 8 bits are stored little-endian in 16-bit slots.
type Plane struct {
	Width    int
	Height   int
	BitDepth int
	Stride   int
	Data     []byte
}

func (p *Plane) bytesPerSample() int {
	return (p.BitDepth + 7) / 8
}

// Row returns the byte slice of one row, Width*bytes-per-sample long.
func (p *Plane) Row(y int) []byte {
	off := y * p.Stride
	return p.Data[off : off+p.Width*p.bytesPerSample()]
}

// Image is a codec-independent planar image. Planes are added individually
// and may differ in size and bit depth; a 4:2:0 image carries a full-size
// luma plane and two half-size chroma planes. Decoder plugins fill an Image
// and hand it to the caller, which owns it from then on.
type Image struct {
	width      int
	height     int
	colorspace Colorspace
	chroma     Chroma
	planes     map[Channel]*Plane

	nclx     *NCLXProfile
	rotation int
	mirror   MirrorAxis
}

// NewImage allocates an image shell with no planes yet.
func NewImage(width, height int, colorspace Colorspace, chroma Chroma) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, Errorf(ErrorDecoderPlugin, SuberrorInvalidImageSize, "%dx%d", width, height)
	}
	return &Image{
		width:      width,
		height:     height,
		colorspace: colorspace,
		chroma:     chroma,
		planes:     make(map[Channel]*Plane),
	}, nil
}

// AddPlane allocates one plane. The stride is width in samples times the
// sample byte width; callers must not assume it matches any source stride.
func (img *Image) AddPlane(ch Channel, width, height, bitDepth int) (*Plane, error) {
	if width <= 0 || height <= 0 {
		return nil, Errorf(ErrorDecoderPlugin, SuberrorInvalidImageSize, "channel %d: %dx%d", int(ch), width, height)
	}
	if bitDepth <= 0 || bitDepth > 16 {
		return nil, Errorf(ErrorUsage, SuberrorUnspecified, "bit depth %d", bitDepth)
	}
	if _, ok := img.planes[ch]; ok {
		return nil, Errorf(ErrorUsage, SuberrorUnspecified, "channel %d already has a plane", int(ch))
	}
	p := &Plane{
		Width:    width,
		Height:   height,
		BitDepth: bitDepth,
	}
	p.Stride = width * p.bytesPerSample()
	p.Data = make([]byte, p.Stride*height)
	img.planes[ch] = p
	return p, nil
}

// Plane returns the plane of a channel, or false if it was never added.
func (img *Image) Plane(ch Channel) (*Plane, bool) {
	p, ok := img.planes[ch]
	return p, ok
}

// Width returns the nominal image width (the luma width for YCbCr).
func (img *Image) Width() int { return img.width }

// Height returns the nominal image height.
func (img *Image) Height() int { return img.height }

// Colorspace returns the color model tag.
func (img *Image) Colorspace() Colorspace { return img.colorspace }

// ChromaFormat returns the chroma subsampling tag.
func (img *Image) ChromaFormat() Chroma { return img.chroma }

// BitDepth returns the bit depth of a channel, or 0 if the plane is absent.
func (img *Image) BitDepth(ch Channel) int {
	p, ok := img.planes[ch]
	if !ok {
		return 0
	}
	return p.BitDepth
}

// SetNCLX attaches a colorimetry descriptor. The image owns it afterwards.
func (img *Image) SetNCLX(profile *NCLXProfile) { img.nclx = profile }

// NCLX returns the attached colorimetry descriptor, or nil.
func (img *Image) NCLX() *NCLXProfile { return img.nclx }

// SetRotation records the container-level rotation in degrees
// counter-clockwise (0, 90, 180 or 270). The pixel data stays untouched.
func (img *Image) SetRotation(degrees int) { img.rotation = degrees }

// Rotation returns the recorded rotation in degrees counter-clockwise.
func (img *Image) Rotation() int { return img.rotation }

// SetMirror records the container-level mirror transform.
func (img *Image) SetMirror(axis MirrorAxis) { img.mirror = axis }

// Mirror returns the recorded mirror transform.
func (img *Image) Mirror() MirrorAxis { return img.mirror }

// YCbCr returns a standard-library view of an 8-bit 4:2:0 image with even
// dimensions. The view shares the plane memory, it does not copy. Other
// layouts return an unsupported-color-conversion error; YCbCr8 handles
// them by copying.
func (img *Image) YCbCr() (*image.YCbCr, error) {
	if img.colorspace != ColorspaceYCbCr || img.chroma != Chroma420 {
		return nil, Errorf(ErrorUnsupportedFeature, SuberrorUnsupportedColorConversion,
			"colorspace %d chroma %d", int(img.colorspace), int(img.chroma))
	}
	y, okY := img.planes[ChannelY]
	cb, okCb := img.planes[ChannelCb]
	cr, okCr := img.planes[ChannelCr]
	if !okY || !okCb || !okCr {
		return nil, NewError(ErrorUsage, SuberrorUnspecified, "image is missing planes")
	}
	if y.BitDepth != 8 || cb.BitDepth != 8 || cr.BitDepth != 8 {
		return nil, Errorf(ErrorUnsupportedFeature, SuberrorUnsupportedColorConversion,
			"bit depth %d", y.BitDepth)
	}
	// The standard library sizes chroma as ceil(dim/2); the planes here
	// are floor-sized, so a zero-copy view only lines up when even.
	if y.Width%2 != 0 || y.Height%2 != 0 {
		return nil, Errorf(ErrorUnsupportedFeature, SuberrorUnsupportedColorConversion,
			"odd dimensions %dx%d need a copy", y.Width, y.Height)
	}
	if cb.Stride != cr.Stride {
		return nil, NewError(ErrorUsage, SuberrorUnspecified, "chroma strides differ")
	}
	return &image.YCbCr{
		Y:              y.Data,
		Cb:             cb.Data,
		Cr:             cr.Data,
		YStride:        y.Stride,
		CStride:        cb.Stride,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, y.Width, y.Height),
	}, nil
}

// YCbCr8 returns an 8-bit standard-library rendition of a 4:2:0 image.
// It shares plane memory when YCbCr can; otherwise it copies, narrowing
// deeper samples to their top 8 bits.
func (img *Image) YCbCr8() (*image.YCbCr, error) {
	if view, err := img.YCbCr(); err == nil {
		return view, nil
	}
	if img.colorspace != ColorspaceYCbCr || img.chroma != Chroma420 {
		return nil, Errorf(ErrorUnsupportedFeature, SuberrorUnsupportedColorConversion,
			"colorspace %d chroma %d", int(img.colorspace), int(img.chroma))
	}
	y, okY := img.planes[ChannelY]
	cb, okCb := img.planes[ChannelCb]
	cr, okCr := img.planes[ChannelCr]
	if !okY || !okCb || !okCr {
		return nil, NewError(ErrorUsage, SuberrorUnspecified, "image is missing planes")
	}
	out := image.NewYCbCr(image.Rect(0, 0, y.Width, y.Height), image.YCbCrSubsampleRatio420)
	narrowPlane(out.Y, out.YStride, y)
	narrowPlane(out.Cb, out.CStride, cb)
	narrowPlane(out.Cr, out.CStride, cr)
	return out, nil
}

// narrowPlane copies a plane into an 8-bit buffer, dropping the low bits
// of deeper samples.
func narrowPlane(dst []byte, dstStride int, p *Plane) {
	if p.BitDepth <= 8 {
		for y := 0; y < p.Height; y++ {
			copy(dst[y*dstStride:y*dstStride+p.Width], p.Row(y))
		}
		return
	}
	shift := uint(p.BitDepth - 8)
	for y := 0; y < p.Height; y++ {
		row := p.Row(y)
		for x := 0; x < p.Width; x++ {
			v := binary.LittleEndian.Uint16(row[2*x:])
			dst[y*dstStride+x] = byte(v >> shift)
		}
	}
}
