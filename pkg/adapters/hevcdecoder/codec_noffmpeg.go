//go:build !ffmpeg

package hevcdecoder

import "github.com/user/heif/pkg/ports"

// newNativeCodec reports no in-process codec. Builds without the ffmpeg
// tag fall back to an external ffmpeg binary.
func newNativeCodec() ports.VideoCodec {
	return nil
}
