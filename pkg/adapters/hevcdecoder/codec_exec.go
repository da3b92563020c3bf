package hevcdecoder

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Eyevinn/mp4ff/hevc"

	"github.com/user/heif/pkg/ports"
)

// execCodec decodes by running an ffmpeg process. It trades libavcodec's
// incremental API for a one-shot pipe: the parser hands the whole stream
// over as a single packet and the decoder runs ffmpeg once, reading raw
// planes from stdout.
type execCodec struct {
	path string
}

var _ ports.VideoCodec = (*execCodec)(nil)

func newExecCodec(path string) *execCodec {
	return &execCodec{path: path}
}

func (c *execCodec) Name() string {
	out, err := exec.Command(c.path, "-version").Output()
	if err == nil {
		// First line: "ffmpeg version 6.1.1 Copyright ..."
		fields := strings.Fields(strings.SplitN(string(out), "\n", 2)[0])
		if len(fields) >= 3 && fields[0] == "ffmpeg" {
			return "external ffmpeg " + fields[2]
		}
	}
	return "external ffmpeg"
}

func (c *execCodec) NewParser() (ports.PacketParser, error) {
	return &execParser{}, nil
}

func (c *execCodec) NewFrameDecoder() (ports.FrameDecoder, error) {
	return &execFrameDecoder{path: c.path}, nil
}

// execParser consumes its whole input and emits it as one packet. A
// still image never spans process invocations, so there is nothing to
// split.
type execParser struct{}

func (p *execParser) Parse(data []byte) (int, []byte, error) {
	return len(data), data, nil
}

func (p *execParser) Close() error { return nil }

// execFrameDecoder runs ffmpeg over one Annex-B packet. The output
// geometry comes from the stream's own SPS; ffmpeg is told to emit
// exactly one rawvideo frame in the matching pixel format.
type execFrameDecoder struct {
	path      string
	frame     *ports.VideoFrame
	delivered bool
}

func (d *execFrameDecoder) SendPacket(packet []byte) error {
	nal, err := findSPS(packet)
	if err != nil {
		return err
	}
	sps, err := hevc.ParseSPSNALUnit(nal)
	if err != nil {
		return fmt.Errorf("parse SPS: %w", err)
	}
	w32, h32 := sps.ImageSize()
	width, height := int(w32), int(h32)
	bitDepth := int(sps.BitDepthLumaMinus8) + 8

	format := ports.PixelFormatYUV420P
	bytesPerSample := 1
	if bitDepth > 8 {
		format = ports.PixelFormatYUV420P10LE
		bytesPerSample = 2
	}

	cmd := exec.Command(d.path,
		"-hide_banner", "-loglevel", "error",
		"-f", "hevc", "-i", "pipe:0",
		"-frames:v", "1",
		"-f", "rawvideo", "-pix_fmt", format.String(),
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(packet)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg decode failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	frame, err := sliceRawFrame(stdout.Bytes(), width, height, bytesPerSample, format)
	if err != nil {
		return err
	}
	d.frame = frame
	d.delivered = false
	return nil
}

// sliceRawFrame splits one rawvideo 4:2:0 frame into planes. Chroma
// planes are ceil(w/2) x ceil(h/2); odd dimensions round up.
func sliceRawFrame(raw []byte, width, height, bytesPerSample int, format ports.PixelFormat) (*ports.VideoFrame, error) {
	lumaSize := width * height * bytesPerSample
	chromaW, chromaH := (width+1)/2, (height+1)/2
	chromaSize := chromaW * chromaH * bytesPerSample
	if len(raw) != lumaSize+2*chromaSize {
		return nil, fmt.Errorf("ffmpeg produced %d bytes of raw output, want %d", len(raw), lumaSize+2*chromaSize)
	}

	return &ports.VideoFrame{
		Width:  width,
		Height: height,
		Format: format,
		Planes: [][]byte{
			raw[:lumaSize],
			raw[lumaSize : lumaSize+chromaSize],
			raw[lumaSize+chromaSize : lumaSize+2*chromaSize],
		},
		Strides: []int{width * bytesPerSample, chromaW * bytesPerSample, chromaW * bytesPerSample},
	}, nil
}

func (d *execFrameDecoder) ReceiveFrame() (*ports.VideoFrame, error) {
	if d.frame == nil {
		return nil, ports.ErrFrameNotReady
	}
	if d.delivered {
		return nil, ports.ErrEndOfStream
	}
	d.delivered = true
	return d.frame, nil
}

// Parameters is limited for the external backend: the rawvideo pipe
// strips the color description, so everything reports unspecified.
func (d *execFrameDecoder) Parameters() (*ports.CodecParameters, error) {
	return &ports.CodecParameters{
		ColorRange:     ports.ColorRangeUnspecified,
		ColorPrimaries: 2,
		Transfer:       2,
		Matrix:         2,
	}, nil
}

func (d *execFrameDecoder) Close() error {
	d.frame = nil
	return nil
}
