package hevcdecoder

import (
	"errors"

	"github.com/user/heif/pkg/heif"
	"github.com/user/heif/pkg/ports"
)

var planeChannels = [3]heif.Channel{heif.ChannelY, heif.ChannelCb, heif.ChannelCr}

// decodeBitstream feeds an Annex-B stream through the codec's parser and
// frame decoder and maps the decoded frame into an image. Every packet
// the parser emits must produce a frame; a still-image stream has no
// delayed output.
func decodeBitstream(codec ports.VideoCodec, bitstream []byte) (*heif.Image, error) {
	parser, err := codec.NewParser()
	if err != nil {
		return nil, wrapCodecErr("open parser", err)
	}
	defer parser.Close()

	dec, err := codec.NewFrameDecoder()
	if err != nil {
		return nil, wrapCodecErr("open decoder", err)
	}
	defer dec.Close()

	var img *heif.Image
	remaining := bitstream
	for len(remaining) > 0 {
		consumed, packet, err := parser.Parse(remaining)
		if err != nil {
			return nil, wrapCodecErr("parse bitstream", err)
		}
		if consumed <= 0 && len(packet) == 0 {
			return nil, heif.NewError(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
				"parser made no progress")
		}
		if consumed > len(remaining) {
			return nil, heif.NewError(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
				"parser overran its input")
		}
		remaining = remaining[consumed:]
		if len(packet) == 0 {
			continue
		}
		frame, err := decodePacket(dec, packet)
		if err != nil {
			return nil, err
		}
		img, err = mapFrame(frame)
		if err != nil {
			return nil, err
		}
	}
	if img == nil {
		return nil, heif.NewError(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
			"no picture decoded from stream")
	}

	params, err := dec.Parameters()
	if err != nil {
		return nil, wrapCodecErr("read stream parameters", err)
	}
	img.SetNCLX(extractNCLX(params))
	return img, nil
}

// decodePacket sends one packet and expects one frame back. A codec that
// wants more input or reports end of stream failed to produce the
// picture.
func decodePacket(dec ports.FrameDecoder, packet []byte) (*ports.VideoFrame, error) {
	if err := dec.SendPacket(packet); err != nil {
		return nil, wrapCodecErr("send packet", err)
	}
	frame, err := dec.ReceiveFrame()
	if err != nil {
		if errors.Is(err, ports.ErrFrameNotReady) || errors.Is(err, ports.ErrEndOfStream) {
			return nil, heif.Errorf(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
				"no frame for packet: %v", err)
		}
		return nil, wrapCodecErr("receive frame", err)
	}
	return frame, nil
}

// mapFrame copies the codec-owned frame planes into a new image. Chroma
// planes are half the luma size, rounded down. Samples wider than 8 bits
// occupy two bytes each.
func mapFrame(frame *ports.VideoFrame) (*heif.Image, error) {
	var bitDepth int
	switch frame.Format {
	case ports.PixelFormatYUV420P, ports.PixelFormatYUVJ420P:
		bitDepth = 8
	case ports.PixelFormatYUV420P10LE:
		bitDepth = 10
	default:
		return nil, heif.Errorf(heif.ErrorUnsupportedFeature, heif.SuberrorUnsupportedColorConversion,
			"unsupported pixel format %s", frame.Format)
	}
	if len(frame.Planes) < len(planeChannels) || len(frame.Strides) < len(planeChannels) {
		return nil, heif.NewError(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
			"decoded frame is missing planes")
	}

	img, err := heif.NewImage(frame.Width, frame.Height, heif.ColorspaceYCbCr, heif.Chroma420)
	if err != nil {
		return nil, err
	}
	bytesPerSample := (bitDepth + 7) / 8
	for i, ch := range planeChannels {
		w, h := frame.Width, frame.Height
		if ch != heif.ChannelY {
			w, h = w/2, h/2
		}
		plane, err := img.AddPlane(ch, w, h, bitDepth)
		if err != nil {
			return nil, err
		}
		src := frame.Planes[i]
		srcStride := frame.Strides[i]
		rowBytes := w * bytesPerSample
		if h > 0 && len(src) < (h-1)*srcStride+rowBytes {
			return nil, heif.Errorf(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
				"decoded plane %d is truncated", i)
		}
		for y := 0; y < h; y++ {
			copy(plane.Row(y)[:rowBytes], src[y*srcStride:y*srcStride+rowBytes])
		}
	}
	return img, nil
}

// extractNCLX carries the codec's color description over to the image.
// Full range maps from the JPEG range enumerator; primaries, transfer and
// matrix pass through as CICP code points.
func extractNCLX(params *ports.CodecParameters) *heif.NCLXProfile {
	nclx := heif.NewNCLXProfile()
	nclx.FullRange = params.ColorRange == ports.ColorRangeJPEG
	nclx.ColorPrimaries = uint16(params.ColorPrimaries)
	nclx.TransferCharacteristics = uint16(params.Transfer)
	nclx.MatrixCoefficients = uint16(params.Matrix)
	return nclx
}

// wrapCodecErr turns a backend error into a decode error, keeping
// allocation failures distinguishable.
func wrapCodecErr(op string, err error) *heif.Error {
	if errors.Is(err, ports.ErrAllocation) {
		return heif.Errorf(heif.ErrorMemoryAllocation, heif.SuberrorUnspecified, "%s: %v", op, err)
	}
	return heif.Errorf(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified, "%s: %v", op, err)
}
