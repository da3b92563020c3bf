//go:build ffmpeg

package hevcdecoder

/*
#cgo pkg-config: libavcodec libavutil
#include <libavcodec/avcodec.h>
#include <libavutil/avutil.h>
#include <libavutil/error.h>
#include <stdlib.h>

static const int64_t no_pts = AV_NOPTS_VALUE;
static const int err_eagain = AVERROR(EAGAIN);
static const int err_eof = AVERROR_EOF;

// The container layer delivers complete NAL units, so the parser only
// splits access units and never buffers partial input.
static void set_complete_frames(AVCodecParserContext *p) {
    p->flags |= PARSER_FLAG_COMPLETE_FRAMES;
}

// Get frame plane data
static uint8_t* frame_plane(AVFrame *f, int plane) {
    return f->data[plane];
}

static int frame_stride(AVFrame *f, int plane) {
    return f->linesize[plane];
}
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/user/heif/pkg/ports"
)

// nativeCodec is the in-process libavcodec backend, selected when the
// module is built with the ffmpeg tag.
type nativeCodec struct{}

var _ ports.VideoCodec = (*nativeCodec)(nil)

func newNativeCodec() ports.VideoCodec {
	return &nativeCodec{}
}

func (nativeCodec) Name() string {
	return "libavcodec " + C.GoString(C.av_version_info())
}

func (nativeCodec) NewParser() (ports.PacketParser, error) {
	pctx := C.av_parser_init(C.int(C.AV_CODEC_ID_HEVC))
	if pctx == nil {
		return nil, fmt.Errorf("HEVC parser not available")
	}
	codec := C.avcodec_find_decoder(C.AV_CODEC_ID_HEVC)
	if codec == nil {
		C.av_parser_close(pctx)
		return nil, fmt.Errorf("HEVC decoder not available")
	}
	avctx := C.avcodec_alloc_context3(codec)
	if avctx == nil {
		C.av_parser_close(pctx)
		return nil, fmt.Errorf("allocate codec context: %w", ports.ErrAllocation)
	}
	C.set_complete_frames(pctx)
	return &nativeParser{pctx: pctx, avctx: avctx}, nil
}

func (nativeCodec) NewFrameDecoder() (ports.FrameDecoder, error) {
	codec := C.avcodec_find_decoder(C.AV_CODEC_ID_HEVC)
	if codec == nil {
		return nil, fmt.Errorf("HEVC decoder not available")
	}
	avctx := C.avcodec_alloc_context3(codec)
	if avctx == nil {
		return nil, fmt.Errorf("allocate codec context: %w", ports.ErrAllocation)
	}
	if ret := C.avcodec_open2(avctx, codec, nil); ret < 0 {
		C.avcodec_free_context(&avctx)
		return nil, fmt.Errorf("open codec: %w", averror(ret))
	}
	frame := C.av_frame_alloc()
	if frame == nil {
		C.avcodec_free_context(&avctx)
		return nil, fmt.Errorf("allocate frame: %w", ports.ErrAllocation)
	}
	pkt := C.av_packet_alloc()
	if pkt == nil {
		C.av_frame_free(&frame)
		C.avcodec_free_context(&avctx)
		return nil, fmt.Errorf("allocate packet: %w", ports.ErrAllocation)
	}
	return &nativeFrameDecoder{avctx: avctx, frame: frame, pkt: pkt}, nil
}

// nativeParser wraps AVCodecParserContext. Input is copied into C memory
// per call because emitted packets may alias the input buffer.
type nativeParser struct {
	pctx  *C.AVCodecParserContext
	avctx *C.AVCodecContext
}

func (p *nativeParser) Parse(data []byte) (int, []byte, error) {
	if len(data) == 0 {
		return 0, nil, nil
	}
	cbuf := C.CBytes(data)
	defer C.free(cbuf)

	var outData *C.uint8_t
	var outSize C.int
	ret := C.av_parser_parse2(p.pctx, p.avctx,
		&outData, &outSize,
		(*C.uint8_t)(cbuf), C.int(len(data)),
		C.no_pts, C.no_pts, 0)
	if ret < 0 {
		return 0, nil, fmt.Errorf("av_parser_parse2: %w", averror(ret))
	}
	var packet []byte
	if outSize > 0 {
		packet = C.GoBytes(unsafe.Pointer(outData), outSize)
	}
	return int(ret), packet, nil
}

func (p *nativeParser) Close() error {
	C.av_parser_close(p.pctx)
	C.avcodec_free_context(&p.avctx)
	return nil
}

// nativeFrameDecoder wraps an opened AVCodecContext. Frame views handed
// out by ReceiveFrame stay valid until the next call.
type nativeFrameDecoder struct {
	avctx *C.AVCodecContext
	frame *C.AVFrame
	pkt   *C.AVPacket
}

func (d *nativeFrameDecoder) SendPacket(packet []byte) error {
	if len(packet) == 0 {
		return fmt.Errorf("empty packet")
	}
	cdata := C.CBytes(packet)
	defer C.free(cdata)

	d.pkt.data = (*C.uint8_t)(cdata)
	d.pkt.size = C.int(len(packet))
	ret := C.avcodec_send_packet(d.avctx, d.pkt)
	d.pkt.data = nil
	d.pkt.size = 0
	if ret < 0 {
		return fmt.Errorf("avcodec_send_packet: %w", averror(ret))
	}
	return nil
}

func (d *nativeFrameDecoder) ReceiveFrame() (*ports.VideoFrame, error) {
	ret := C.avcodec_receive_frame(d.avctx, d.frame)
	switch {
	case ret == 0:
	case ret == C.err_eagain:
		return nil, ports.ErrFrameNotReady
	case ret == C.err_eof:
		return nil, ports.ErrEndOfStream
	default:
		return nil, fmt.Errorf("avcodec_receive_frame: %w", averror(ret))
	}

	height := int(d.frame.height)
	planes := make([][]byte, 3)
	strides := make([]int, 3)
	for i := 0; i < 3; i++ {
		h := height
		if i > 0 {
			h = height / 2
		}
		stride := int(C.frame_stride(d.frame, C.int(i)))
		ptr := C.frame_plane(d.frame, C.int(i))
		if ptr != nil && stride > 0 && h > 0 {
			planes[i] = unsafe.Slice((*byte)(unsafe.Pointer(ptr)), stride*h)
		}
		strides[i] = stride
	}

	var format ports.PixelFormat
	switch int(d.frame.format) {
	case int(C.AV_PIX_FMT_YUV420P):
		format = ports.PixelFormatYUV420P
	case int(C.AV_PIX_FMT_YUVJ420P):
		format = ports.PixelFormatYUVJ420P
	case int(C.AV_PIX_FMT_YUV420P10LE):
		format = ports.PixelFormatYUV420P10LE
	default:
		format = ports.PixelFormatUnknown
	}

	return &ports.VideoFrame{
		Width:   int(d.frame.width),
		Height:  height,
		Format:  format,
		Planes:  planes,
		Strides: strides,
	}, nil
}

func (d *nativeFrameDecoder) Parameters() (*ports.CodecParameters, error) {
	params := &ports.CodecParameters{
		ColorPrimaries: int(d.avctx.color_primaries),
		Transfer:       int(d.avctx.color_trc),
		Matrix:         int(d.avctx.colorspace),
	}
	switch int(d.avctx.color_range) {
	case int(C.AVCOL_RANGE_JPEG):
		params.ColorRange = ports.ColorRangeJPEG
	case int(C.AVCOL_RANGE_MPEG):
		params.ColorRange = ports.ColorRangeMPEG
	default:
		params.ColorRange = ports.ColorRangeUnspecified
	}
	return params, nil
}

func (d *nativeFrameDecoder) Close() error {
	C.av_packet_free(&d.pkt)
	C.av_frame_free(&d.frame)
	C.avcodec_free_context(&d.avctx)
	return nil
}

// averror renders a libav error code through av_strerror.
func averror(code C.int) error {
	buf := make([]byte, C.AV_ERROR_MAX_STRING_SIZE)
	C.av_strerror(code, (*C.char)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)))
	return errors.New(C.GoString((*C.char)(unsafe.Pointer(&buf[0]))))
}
