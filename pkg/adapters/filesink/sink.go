// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/user/heif/pkg/ports"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveContainerJSON saves the parsed container structure as JSON.
func (s *Sink) SaveContainerJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "container.json")
	return s.fs.WriteFile(path, data)
}

// SaveBitstream saves the Annex-B elementary stream handed to the codec.
func (s *Sink) SaveBitstream(data []byte) error {
	path := filepath.Join(s.baseDir, "bitstream.hevc")
	return s.fs.WriteFile(path, data)
}

// SaveRawPlanes saves the decoded planar samples, planes concatenated.
func (s *Sink) SaveRawPlanes(data []byte) error {
	path := filepath.Join(s.baseDir, "planes.yuv")
	return s.fs.WriteFile(path, data)
}

// SaveRenderedImage saves the rendered image before export encoding.
func (s *Sink) SaveRenderedImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode rendered image: %w", err)
	}
	path := filepath.Join(s.baseDir, "rendered.png")
	return s.fs.WriteFile(path, buf.Bytes())
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
