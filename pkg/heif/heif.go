// Package heif reads HEIF and AVIF still images. Parse and plane access
// live here; the actual bitstream decoding is delegated to decoder
// plugins registered by adapter packages, typically via blank imports:
//
//	import (
//	    _ "github.com/user/heif/pkg/adapters/hevcdecoder"
//	)
//
// The package also registers itself with image.RegisterFormat, so
// image.Decode handles .heic and .avif files once a plugin is linked in.
package heif

import (
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/user/heif/pkg/bmff"
)

// decodeOptions collects per-call decode settings.
type decodeOptions struct {
	strict bool
	plugin DecoderPlugin
}

// DecodeOption adjusts one decode call.
type DecodeOption func(*decodeOptions)

// WithStrictDecoding makes the decoder reject streams that a lenient
// decode would still accept.
func WithStrictDecoding(strict bool) DecodeOption {
	return func(o *decodeOptions) {
		o.strict = strict
	}
}

// WithPlugin decodes with the given plugin instead of consulting the
// registry.
func WithPlugin(p DecoderPlugin) DecodeOption {
	return func(o *decodeOptions) {
		o.plugin = p
	}
}

func applyOptions(opts []DecodeOption) decodeOptions {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DecodeImage decodes the primary image of a HEIF or AVIF file into its
// raw planes. Container-level rotation and mirror are recorded on the
// image but not applied to the pixels.
func DecodeImage(data []byte, opts ...DecodeOption) (*Image, error) {
	o := applyOptions(opts)
	f, err := bmff.Parse(data)
	if err != nil {
		return nil, mapContainerErr(err)
	}
	it, err := f.PrimaryItem()
	if err != nil {
		return nil, mapContainerErr(err)
	}
	return decodeItem(f, it, o)
}

// DecodeThumbnail decodes the thumbnail of the primary image, or the
// primary image itself when the file carries no thumbnail.
func DecodeThumbnail(data []byte, opts ...DecodeOption) (*Image, error) {
	o := applyOptions(opts)
	f, err := bmff.Parse(data)
	if err != nil {
		return nil, mapContainerErr(err)
	}
	it, err := f.PrimaryItem()
	if err != nil {
		return nil, mapContainerErr(err)
	}
	if thumb, ok := f.ThumbnailOf(it.ID); ok {
		it = thumb
	}
	return decodeItem(f, it, o)
}

// Decode reads a HEIF or AVIF image from r in the standard library
// convention. Deep images are narrowed to 8 bits; rotation and mirror
// are not applied.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return img.YCbCr8()
}

// DecodeConfig returns the dimensions of the primary image from the
// container metadata without decoding any bitstream.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	f, err := bmff.Parse(data)
	if err != nil {
		return image.Config{}, mapContainerErr(err)
	}
	it, err := f.PrimaryItem()
	if err != nil {
		return image.Config{}, mapContainerErr(err)
	}
	ext, ok := it.SpatialExtents()
	if !ok {
		return image.Config{}, NewError(ErrorInvalidInput, SuberrorInvalidBox,
			"primary item has no spatial extents")
	}
	return image.Config{
		ColorModel: color.YCbCrModel,
		Width:      int(ext.Width),
		Height:     int(ext.Height),
	}, nil
}

// ExtractExif returns the raw Exif blob attached to the file, with the
// HEIF TIFF-offset header already stripped.
func ExtractExif(data []byte) ([]byte, error) {
	f, err := bmff.Parse(data)
	if err != nil {
		return nil, mapContainerErr(err)
	}
	exif, err := f.ExifData()
	if err != nil {
		return nil, mapContainerErr(err)
	}
	return exif, nil
}

// decodeItem runs one item through its decoder plugin: codec
// configuration first, then the item payload, then one decode.
func decodeItem(f *bmff.File, it *bmff.Item, o decodeOptions) (*Image, error) {
	format := formatForItemType(it.Type)
	if format == CompressionUndefined {
		return nil, Errorf(ErrorUnsupportedFeature, SuberrorUnsupportedCodec,
			"item type %q", it.Type)
	}
	plugin := o.plugin
	if plugin == nil {
		var err error
		plugin, err = DecoderPluginForFormat(format)
		if err != nil {
			return nil, err
		}
	}

	dec, err := plugin.NewDecoder()
	if err != nil {
		return nil, Errorf(ErrorDecoderPlugin, SuberrorUnspecified, "open decoder: %v", err)
	}
	defer dec.Close()
	dec.SetStrictDecoding(o.strict)

	switch format {
	case CompressionHEVC:
		cfg, ok := it.HEVCConfig()
		if !ok {
			return nil, NewError(ErrorInvalidInput, SuberrorNoItemData,
				"image item has no hvcC property")
		}
		// The decoder walks 4-byte length prefixes; other widths would
		// be silently misread.
		if cfg.LengthSize != 4 {
			return nil, Errorf(ErrorUnsupportedFeature, SuberrorUnspecified,
				"hvcC declares %d-byte NAL length prefixes", cfg.LengthSize)
		}
		if err := dec.PushData(cfg.LengthPrefixedHeader()); err != nil {
			return nil, err
		}
	case CompressionAV1:
		if cfg, ok := it.AV1Config(); ok && len(cfg.ConfigOBUs) > 0 {
			if err := dec.PushData(cfg.ConfigOBUs); err != nil {
				return nil, err
			}
		}
	}

	data, err := f.ItemData(it)
	if err != nil {
		return nil, mapContainerErr(err)
	}
	if err := dec.PushData(data); err != nil {
		return nil, err
	}

	img, err := dec.DecodeImage()
	if err != nil {
		return nil, err
	}

	// Container-level color info wins over the bitstream's.
	if ci, ok := it.NCLXColor(); ok {
		img.SetNCLX(&NCLXProfile{
			ColorPrimaries:          ci.Primaries,
			TransferCharacteristics: ci.Transfer,
			MatrixCoefficients:      ci.Matrix,
			FullRange:               ci.FullRange,
		})
	}
	img.SetRotation(it.RotationDegrees())
	if m, ok := it.MirrorAxis(); ok {
		axis := MirrorVertical
		if m.Axis == 1 {
			axis = MirrorHorizontal
		}
		img.SetMirror(axis)
	}
	return img, nil
}

// formatForItemType maps infe item types to compression formats.
func formatForItemType(itemType string) CompressionFormat {
	switch itemType {
	case "hvc1":
		return CompressionHEVC
	case "av01":
		return CompressionAV1
	case "avc1":
		return CompressionAVC
	case "jpeg":
		return CompressionJPEG
	}
	return CompressionUndefined
}

// mapContainerErr lifts bmff sentinel errors into the error taxonomy.
func mapContainerErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bmff.ErrNotHEIF):
		return Errorf(ErrorUnsupportedFiletype, SuberrorUnspecified, "%v", err)
	case errors.Is(err, bmff.ErrItemNotFound):
		return Errorf(ErrorInvalidInput, SuberrorItemNotFound, "%v", err)
	case errors.Is(err, bmff.ErrNoItemData):
		return Errorf(ErrorInvalidInput, SuberrorNoItemData, "%v", err)
	case errors.Is(err, bmff.ErrNoMeta), errors.Is(err, bmff.ErrInvalidBox):
		return Errorf(ErrorInvalidInput, SuberrorInvalidBox, "%v", err)
	default:
		return Errorf(ErrorInvalidInput, SuberrorUnspecified, "%v", err)
	}
}

func init() {
	for _, brand := range []string{"heic", "heix", "heif", "mif1"} {
		image.RegisterFormat("heif", "????ftyp"+brand, Decode, DecodeConfig)
	}
	image.RegisterFormat("avif", "????ftypavif", Decode, DecodeConfig)
}
