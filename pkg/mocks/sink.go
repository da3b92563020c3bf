package mocks

import (
	"image"
	"sync"

	"github.com/user/heif/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	ContainerJSON []byte
	Bitstream     []byte
	RawPlanes     []byte
	RenderedImage image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveContainerJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContainerJSON = data
	return nil
}

func (m *DebugSink) SaveBitstream(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Bitstream = data
	return nil
}

func (m *DebugSink) SaveRawPlanes(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RawPlanes = data
	return nil
}

func (m *DebugSink) SaveRenderedImage(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RenderedImage = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
