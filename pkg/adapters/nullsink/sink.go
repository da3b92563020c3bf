// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/heif/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveContainerJSON does nothing.
func (s *Sink) SaveContainerJSON(data []byte) error {
	return nil
}

// SaveBitstream does nothing.
func (s *Sink) SaveBitstream(data []byte) error {
	return nil
}

// SaveRawPlanes does nothing.
func (s *Sink) SaveRawPlanes(data []byte) error {
	return nil
}

// SaveRenderedImage does nothing.
func (s *Sink) SaveRenderedImage(img image.Image) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
