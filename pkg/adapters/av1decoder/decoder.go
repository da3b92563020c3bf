//go:build aom

// Package av1decoder provides an AV1 still-image decoder plugin using
// libaom. It is compiled in with the aom build tag.
package av1decoder

/*
#cgo pkg-config: aom
#include <aom/aom_decoder.h>
#include <aom/aomdx.h>
#include <stdlib.h>
#include <string.h>

static aom_codec_iface_t* get_av1_decoder_interface() {
    return aom_codec_av1_dx();
}

// Wrapper for aom_codec_dec_init
static aom_codec_err_t init_decoder(aom_codec_ctx_t *ctx, aom_codec_iface_t *iface) {
    return aom_codec_dec_init(ctx, iface, NULL, 0);
}

// Get image plane data
static unsigned char* get_plane(aom_image_t *img, int plane) {
    return img->planes[plane];
}

static int get_stride(aom_image_t *img, int plane) {
    return img->stride[plane];
}

static unsigned int get_width(aom_image_t *img) {
    return img->d_w;
}

static unsigned int get_height(aom_image_t *img) {
    return img->d_h;
}

static int get_format(aom_image_t *img) {
    return img->fmt;
}

static unsigned int get_bit_depth(aom_image_t *img) {
    return img->bit_depth;
}

static int get_range(aom_image_t *img) {
    return img->range;
}

static int get_cp(aom_image_t *img) {
    return img->cp;
}

static int get_tc(aom_image_t *img) {
    return img->tc;
}

static int get_mc(aom_image_t *img) {
    return img->mc;
}
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/user/heif/pkg/heif"
)

// av1Priority ranks this plugin among registered AV1 decoders.
const av1Priority = 100

// Available reports whether the libaom backend is compiled in.
func Available() bool { return true }

// Plugin is the libaom AV1 decoder plugin.
type Plugin struct {
	name func() string
}

var _ heif.DecoderPlugin = (*Plugin)(nil)

// New creates the plugin.
func New() *Plugin {
	p := &Plugin{}
	p.name = sync.OnceValue(func() string {
		return "AOM AV1 decoder " + C.GoString(C.aom_codec_version_str())
	})
	return p
}

func (p *Plugin) Name() string { return p.name() }

func (p *Plugin) SupportsFormat(format heif.CompressionFormat) int {
	if format == heif.CompressionAV1 {
		return av1Priority
	}
	return 0
}

func (p *Plugin) NewDecoder() (heif.Decoder, error) {
	return &Decoder{}, nil
}

// Decoder is a single-image decode session. Pushed bytes are raw OBUs;
// they accumulate until DecodeImage feeds them to libaom in one call.
type Decoder struct {
	data   []byte
	closed bool
}

var _ heif.Decoder = (*Decoder)(nil)

func (d *Decoder) PushData(data []byte) error {
	if d.closed {
		return heif.NewError(heif.ErrorUsage, heif.SuberrorUnspecified, "decoder is closed")
	}
	d.data = append(d.data, data...)
	return nil
}

func (d *Decoder) DecodeImage() (*heif.Image, error) {
	if d.closed {
		return nil, heif.NewError(heif.ErrorUsage, heif.SuberrorUnspecified, "decoder is closed")
	}
	if len(d.data) == 0 {
		return nil, heif.NewError(heif.ErrorDecoderPlugin, heif.SuberrorEndOfData, "no OBUs pushed")
	}

	codec := (*C.aom_codec_ctx_t)(C.malloc(C.sizeof_aom_codec_ctx_t))
	if codec == nil {
		return nil, heif.NewError(heif.ErrorMemoryAllocation, heif.SuberrorUnspecified,
			"allocate decoder context")
	}
	defer C.free(unsafe.Pointer(codec))
	C.memset(unsafe.Pointer(codec), 0, C.sizeof_aom_codec_ctx_t)

	iface := C.get_av1_decoder_interface()
	if res := C.init_decoder(codec, iface); res != C.AOM_CODEC_OK {
		return nil, heif.Errorf(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
			"initialize decoder: %d", int(res))
	}
	defer C.aom_codec_destroy(codec)

	res := C.aom_codec_decode(codec,
		(*C.uint8_t)(unsafe.Pointer(&d.data[0])), C.size_t(len(d.data)), nil)
	if res != C.AOM_CODEC_OK {
		return nil, heif.Errorf(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
			"decode failed: %d", int(res))
	}

	var iter C.aom_codec_iter_t
	cimg := C.aom_codec_get_frame(codec, &iter)
	if cimg == nil {
		return nil, heif.NewError(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
			"no frame available")
	}

	img, err := mapImage(cimg)
	if err != nil {
		return nil, err
	}
	d.data = nil
	return img, nil
}

// SetStrictDecoding is accepted for interface symmetry; libaom has no
// lenient mode to relax.
func (d *Decoder) SetStrictDecoding(bool) {}

func (d *Decoder) Close() error {
	d.data = nil
	d.closed = true
	return nil
}

// mapImage copies the libaom image into a planar heif image. AV1 rounds
// chroma dimensions up for odd sizes.
func mapImage(cimg *C.aom_image_t) (*heif.Image, error) {
	var bitDepth int
	switch int(C.get_format(cimg)) {
	case int(C.AOM_IMG_FMT_I420):
		bitDepth = 8
	case int(C.AOM_IMG_FMT_I42016):
		bitDepth = int(C.get_bit_depth(cimg))
	default:
		return nil, heif.Errorf(heif.ErrorUnsupportedFeature, heif.SuberrorUnsupportedColorConversion,
			"aom image format %d", int(C.get_format(cimg)))
	}

	width := int(C.get_width(cimg))
	height := int(C.get_height(cimg))
	img, err := heif.NewImage(width, height, heif.ColorspaceYCbCr, heif.Chroma420)
	if err != nil {
		return nil, err
	}

	bytesPerSample := (bitDepth + 7) / 8
	channels := [3]heif.Channel{heif.ChannelY, heif.ChannelCb, heif.ChannelCr}
	for i, ch := range channels {
		w, h := width, height
		if ch != heif.ChannelY {
			w, h = (width+1)/2, (height+1)/2
		}
		plane, err := img.AddPlane(ch, w, h, bitDepth)
		if err != nil {
			return nil, err
		}
		stride := int(C.get_stride(cimg, C.int(i)))
		src := unsafe.Slice((*byte)(unsafe.Pointer(C.get_plane(cimg, C.int(i)))), stride*h)
		rowBytes := w * bytesPerSample
		for y := 0; y < h; y++ {
			copy(plane.Row(y)[:rowBytes], src[y*stride:y*stride+rowBytes])
		}
	}

	nclx := heif.NewNCLXProfile()
	nclx.FullRange = int(C.get_range(cimg)) == int(C.AOM_CR_FULL_RANGE)
	nclx.ColorPrimaries = uint16(C.get_cp(cimg))
	nclx.TransferCharacteristics = uint16(C.get_tc(cimg))
	nclx.MatrixCoefficients = uint16(C.get_mc(cimg))
	img.SetNCLX(nclx)
	return img, nil
}

func init() {
	heif.RegisterDecoderPlugin(New())
}
