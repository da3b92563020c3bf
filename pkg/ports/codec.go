package ports

import "errors"

// Codec retrieval signals. ReceiveFrame returns ErrFrameNotReady when the
// decoder needs more input before a frame comes out, and ErrEndOfStream
// when the stream is finished. For a single-still decode both mean the
// expected frame never appeared.
var (
	ErrFrameNotReady = errors.New("ports: frame not ready")
	ErrEndOfStream   = errors.New("ports: end of stream")
)

// ErrAllocation marks a codec-side allocation failure (context, frame or
// packet), so callers can report it as a memory condition rather than a
// generic decode failure.
var ErrAllocation = errors.New("ports: allocation failed")

// PixelFormat is the native layout of a decoded frame.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	// PixelFormatYUV420P is 8-bit planar 4:2:0, limited range unless the
	// stream parameters say otherwise.
	PixelFormatYUV420P
	// PixelFormatYUVJ420P is the legacy full-range tag for 8-bit 4:2:0.
	PixelFormatYUVJ420P
	// PixelFormatYUV420P10LE is 10-bit planar 4:2:0, each sample
	// little-endian in a 16-bit slot.
	PixelFormatYUV420P10LE
)

// String returns the conventional format name.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatYUV420P:
		return "yuv420p"
	case PixelFormatYUVJ420P:
		return "yuvj420p"
	case PixelFormatYUV420P10LE:
		return "yuv420p10le"
	default:
		return "unknown"
	}
}

// ColorRange is the sample value range signaled by the stream.
type ColorRange int

const (
	ColorRangeUnspecified ColorRange = iota
	// ColorRangeMPEG is the limited (broadcast) range.
	ColorRangeMPEG
	// ColorRangeJPEG is the full range.
	ColorRangeJPEG
)

// VideoFrame is a decoded picture as the codec produced it. Plane data is
// owned by the codec and stays valid only until the next call on the same
// FrameDecoder; consumers copy rows out before continuing.
type VideoFrame struct {
	Width  int
	Height int
	Format PixelFormat

	// Planes and Strides are indexed together; planar YCbCr carries
	// Y, Cb, Cr in that order. Rows are Strides[i] bytes apart.
	Planes  [][]byte
	Strides []int
}

// CodecParameters are the resolved stream-level parameters after decoding.
// The three color codes share the CICP numeric space used by NCLX
// descriptors and are carried verbatim.
type CodecParameters struct {
	ColorRange     ColorRange
	ColorPrimaries int
	Transfer       int
	Matrix         int
}

// PacketParser splits an elementary byte stream into decodable packets.
// Parse consumes some prefix of data and, when a complete access unit has
// been recognized, returns it as packet (nil otherwise). A parse failure
// is reported through err; consumed is then meaningless.
type PacketParser interface {
	Parse(data []byte) (consumed int, packet []byte, err error)
	Close() error
}

// FrameDecoder turns packets into frames. The send/receive split follows
// the incremental decode model: a packet goes in, zero or more frames
// come out.
type FrameDecoder interface {
	SendPacket(packet []byte) error

	// ReceiveFrame returns the next decoded frame, ErrFrameNotReady, or
	// ErrEndOfStream. Any other error is a decode failure.
	ReceiveFrame() (*VideoFrame, error)

	// Parameters returns the resolved stream parameters. Valid once a
	// frame has been received.
	Parameters() (*CodecParameters, error)

	Close() error
}

// VideoCodec is one decoding backend: it names itself and opens parser and
// decoder sessions. Implementations wrap an in-process codec library or an
// external decoder process.
type VideoCodec interface {
	Name() string
	NewParser() (PacketParser, error)
	NewFrameDecoder() (FrameDecoder, error)
}
