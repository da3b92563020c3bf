package hevcdecoder

import "github.com/user/heif/pkg/ports"

// selectCodec picks the best available backend. The in-process libavcodec
// backend wins when compiled in; otherwise decoding shells out to an
// ffmpeg binary.
func selectCodec() (ports.VideoCodec, error) {
	if c := newNativeCodec(); c != nil {
		return c, nil
	}
	path, err := FindFFmpeg()
	if err != nil {
		return nil, ErrNoBackend
	}
	return newExecCodec(path), nil
}

// IsAvailable reports whether any HEVC decoding backend can run on this
// system.
func IsAvailable() bool {
	_, err := selectCodec()
	return err == nil
}
