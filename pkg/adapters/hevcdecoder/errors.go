package hevcdecoder

import "errors"

var (
	// ErrNoBackend is returned when neither the in-process codec nor an
	// external ffmpeg binary is available.
	ErrNoBackend = errors.New("hevcdecoder: no decoding backend available")

	// ErrFFmpegNotFound is returned when no ffmpeg executable can be located.
	ErrFFmpegNotFound = errors.New("hevcdecoder: ffmpeg executable not found")

	// ErrNoSPS is returned when an Annex-B stream carries no sequence
	// parameter set.
	ErrNoSPS = errors.New("hevcdecoder: no SPS in stream")
)
