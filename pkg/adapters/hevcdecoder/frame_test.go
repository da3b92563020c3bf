package hevcdecoder

import (
	"errors"
	"testing"

	"github.com/user/heif/pkg/heif"
	"github.com/user/heif/pkg/mocks"
	"github.com/user/heif/pkg/ports"
)

func TestMapFrameOddDimensions(t *testing.T) {
	// Chroma planes round down: 1921x1081 luma carries 960x540 chroma.
	img, err := mapFrame(testFrame(1921, 1081, 8))
	if err != nil {
		t.Fatalf("mapFrame: %v", err)
	}
	if img.Width() != 1921 || img.Height() != 1081 {
		t.Errorf("image is %dx%d, want 1921x1081", img.Width(), img.Height())
	}
	for _, ch := range []heif.Channel{heif.ChannelCb, heif.ChannelCr} {
		p, ok := img.Plane(ch)
		if !ok {
			t.Fatalf("channel %d has no plane", int(ch))
		}
		if p.Width != 960 || p.Height != 540 {
			t.Errorf("chroma plane is %dx%d, want 960x540", p.Width, p.Height)
		}
	}
}

func TestMapFramePixelFormats(t *testing.T) {
	tests := []struct {
		name     string
		format   ports.PixelFormat
		bitDepth int
	}{
		{"yuv420p", ports.PixelFormatYUV420P, 8},
		{"yuvj420p", ports.PixelFormatYUVJ420P, 8},
		{"yuv420p10le", ports.PixelFormatYUV420P10LE, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := testFrame(64, 48, tt.bitDepth)
			frame.Format = tt.format

			img, err := mapFrame(frame)
			if err != nil {
				t.Fatalf("mapFrame: %v", err)
			}
			for _, ch := range []heif.Channel{heif.ChannelY, heif.ChannelCb, heif.ChannelCr} {
				if got := img.BitDepth(ch); got != tt.bitDepth {
					t.Errorf("channel %d bit depth = %d, want %d", int(ch), got, tt.bitDepth)
				}
			}
			y, _ := img.Plane(heif.ChannelY)
			wantStride := 64 * ((tt.bitDepth + 7) / 8)
			if y.Stride != wantStride {
				t.Errorf("luma stride = %d, want %d", y.Stride, wantStride)
			}
		})
	}
}

func TestMapFrameRejectsUnknownFormat(t *testing.T) {
	frame := testFrame(64, 48, 8)
	frame.Format = ports.PixelFormatUnknown

	_, err := mapFrame(frame)
	if !errors.Is(err, heif.ErrUnsupportedColorConversion) {
		t.Errorf("mapFrame = %v, want unsupported color conversion", err)
	}
}

func TestMapFrameHonorsSourceStride(t *testing.T) {
	// Source rows are 24 bytes apart although only 16 carry samples.
	frame := testFrame(16, 8, 8)
	frame.Strides[0] = 24
	frame.Planes[0] = make([]byte, 24*8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			frame.Planes[0][y*24+x] = byte(y)
		}
	}

	img, err := mapFrame(frame)
	if err != nil {
		t.Fatalf("mapFrame: %v", err)
	}
	y, _ := img.Plane(heif.ChannelY)
	if y.Stride != 16 {
		t.Fatalf("destination stride = %d, want tight 16", y.Stride)
	}
	for row := 0; row < 8; row++ {
		for _, b := range y.Row(row) {
			if b != byte(row) {
				t.Fatalf("row %d holds %d, want %d", row, b, row)
			}
		}
	}
}

func TestMapFrameInvalidSize(t *testing.T) {
	frame := testFrame(64, 48, 8)
	frame.Width = 0

	_, err := mapFrame(frame)
	if !errors.Is(err, heif.ErrInvalidImageSize) {
		t.Errorf("mapFrame = %v, want invalid image size", err)
	}
}

func TestMapFrameChromaCollapse(t *testing.T) {
	// A one-pixel-wide image has no chroma columns left after
	// subsampling; the decode must fail rather than build a 0-wide plane.
	frame := &ports.VideoFrame{
		Width:   1,
		Height:  8,
		Format:  ports.PixelFormatYUV420P,
		Planes:  [][]byte{make([]byte, 8), {}, {}},
		Strides: []int{1, 0, 0},
	}

	_, err := mapFrame(frame)
	if !errors.Is(err, heif.ErrInvalidImageSize) {
		t.Errorf("mapFrame = %v, want invalid image size", err)
	}
}

func TestMapFrameTruncatedPlane(t *testing.T) {
	frame := testFrame(64, 48, 8)
	frame.Planes[0] = frame.Planes[0][:100]

	_, err := mapFrame(frame)
	if err == nil {
		t.Error("mapFrame accepted a truncated plane")
	}
}

func TestExtractNCLX(t *testing.T) {
	tests := []struct {
		name      string
		rng       ports.ColorRange
		fullRange bool
	}{
		{"jpeg range", ports.ColorRangeJPEG, true},
		{"mpeg range", ports.ColorRangeMPEG, false},
		{"unspecified range", ports.ColorRangeUnspecified, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nclx := extractNCLX(&ports.CodecParameters{
				ColorRange:     tt.rng,
				ColorPrimaries: 9,
				Transfer:       16,
				Matrix:         9,
			})
			if nclx.FullRange != tt.fullRange {
				t.Errorf("FullRange = %v, want %v", nclx.FullRange, tt.fullRange)
			}
			if nclx.ColorPrimaries != 9 || nclx.TransferCharacteristics != 16 || nclx.MatrixCoefficients != 9 {
				t.Errorf("code points = %d/%d/%d, want 9/16/9",
					nclx.ColorPrimaries, nclx.TransferCharacteristics, nclx.MatrixCoefficients)
			}
		})
	}
}

func TestDecodeBitstreamAttachesColorimetry(t *testing.T) {
	codec := &mocks.VideoCodec{
		Frame: testFrame(64, 48, 8),
		Params: &ports.CodecParameters{
			ColorRange:     ports.ColorRangeJPEG,
			ColorPrimaries: 1,
			Transfer:       13,
			Matrix:         6,
		},
	}
	d := newTestDecoder(codec)
	if err := d.PushData(lengthPrefixed(testVPS, testSPS, testPPS, testIDRW)); err != nil {
		t.Fatalf("PushData: %v", err)
	}
	img, err := d.DecodeImage()
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}

	nclx := img.NCLX()
	if nclx == nil {
		t.Fatal("image has no colorimetry")
	}
	if !nclx.FullRange {
		t.Errorf("FullRange = false, want true for the JPEG range")
	}
	if nclx.ColorPrimaries != 1 || nclx.TransferCharacteristics != 13 || nclx.MatrixCoefficients != 6 {
		t.Errorf("code points = %d/%d/%d, want 1/13/6",
			nclx.ColorPrimaries, nclx.TransferCharacteristics, nclx.MatrixCoefficients)
	}
}

func TestDecodeBitstreamNoFrame(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"frame not ready", ports.ErrFrameNotReady},
		{"end of stream", ports.ErrEndOfStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := &mocks.VideoCodec{
				NewFrameDecoderFunc: func() (ports.FrameDecoder, error) {
					return &mocks.FrameDecoder{
						ReceiveFrameFunc: func() (*ports.VideoFrame, error) {
							return nil, tt.err
						},
					}, nil
				},
			}
			d := newTestDecoder(codec)
			if err := d.PushData(lengthPrefixed(testVPS, testSPS, testPPS, testIDRW)); err != nil {
				t.Fatalf("PushData: %v", err)
			}

			_, err := d.DecodeImage()
			var he *heif.Error
			if !errors.As(err, &he) || he.Code != heif.ErrorDecoderPlugin {
				t.Errorf("DecodeImage = %v, want decoder plugin error", err)
			}
		})
	}
}

func TestDecodeBitstreamEmptyPacketStream(t *testing.T) {
	// A parser that consumes everything without emitting a packet leaves
	// no picture; the decode must fail rather than return nil.
	codec := &mocks.VideoCodec{
		NewParserFunc: func() (ports.PacketParser, error) {
			return &mocks.PacketParser{
				ParseFunc: func(data []byte) (int, []byte, error) {
					return len(data), nil, nil
				},
			}, nil
		},
	}
	d := newTestDecoder(codec)
	if err := d.PushData(lengthPrefixed(testVPS, testSPS, testPPS, testIDRW)); err != nil {
		t.Fatalf("PushData: %v", err)
	}

	_, err := d.DecodeImage()
	var he *heif.Error
	if !errors.As(err, &he) || he.Code != heif.ErrorDecoderPlugin {
		t.Errorf("DecodeImage = %v, want decoder plugin error", err)
	}
}

func TestDecodeBitstreamAllocationFailure(t *testing.T) {
	codec := &mocks.VideoCodec{
		NewFrameDecoderFunc: func() (ports.FrameDecoder, error) {
			return nil, ports.ErrAllocation
		},
	}
	d := newTestDecoder(codec)
	if err := d.PushData(lengthPrefixed(testVPS, testSPS, testPPS, testIDRW)); err != nil {
		t.Fatalf("PushData: %v", err)
	}

	_, err := d.DecodeImage()
	var he *heif.Error
	if !errors.As(err, &he) || he.Code != heif.ErrorMemoryAllocation {
		t.Errorf("DecodeImage = %v, want memory allocation error", err)
	}
}
