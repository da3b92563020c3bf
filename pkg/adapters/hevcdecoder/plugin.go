package hevcdecoder

import (
	"fmt"
	"sync"

	"github.com/user/heif/pkg/heif"
	"github.com/user/heif/pkg/ports"
)

// hevcPriority ranks this plugin among registered HEVC decoders.
const hevcPriority = 90

// Option configures a Plugin.
type Option func(*Plugin)

// WithCodec pins the decoding backend instead of selecting one, mainly
// for tests. A nil codec makes every decode report the missing backend.
func WithCodec(codec ports.VideoCodec) Option {
	return func(p *Plugin) {
		p.codec = codec
		p.codecPinned = true
	}
}

// WithStrictPolicy installs the validation run before reassembly when a
// session has strict decoding enabled.
func WithStrictPolicy(policy StrictPolicy) Option {
	return func(p *Plugin) {
		p.policy = policy
	}
}

// WithBitstreamTap registers a hook receiving each reassembled Annex-B
// stream before it reaches the codec. Used by debug sinks.
func WithBitstreamTap(tap func([]byte)) Option {
	return func(p *Plugin) {
		p.tap = tap
	}
}

// Plugin is the FFmpeg-backed HEVC decoder plugin.
type Plugin struct {
	codec       ports.VideoCodec
	codecPinned bool
	policy      StrictPolicy
	tap         func([]byte)
	name        func() string
}

var _ heif.DecoderPlugin = (*Plugin)(nil)

// New creates the plugin. Without WithCodec the backend is selected per
// session, so a later SetFFmpegPath still takes effect.
func New(opts ...Option) *Plugin {
	p := &Plugin{}
	for _, opt := range opts {
		opt(p)
	}
	p.name = sync.OnceValue(p.describe)
	return p
}

// Name identifies the plugin and its backend. The value is computed once
// and cached; concurrent callers share the same immutable string.
func (p *Plugin) Name() string {
	return p.name()
}

func (p *Plugin) describe() string {
	c := p.currentCodec()
	if c == nil {
		return "FFmpeg HEVC decoder (no backend)"
	}
	return fmt.Sprintf("FFmpeg HEVC decoder (%s)", c.Name())
}

// SupportsFormat reports a non-zero priority for HEVC only.
func (p *Plugin) SupportsFormat(format heif.CompressionFormat) int {
	if format == heif.CompressionHEVC {
		return hevcPriority
	}
	return 0
}

// NewDecoder opens a fresh single-image session. Construction always
// succeeds; a missing backend surfaces when the session decodes.
func (p *Plugin) NewDecoder() (heif.Decoder, error) {
	return &Decoder{
		store:  make(unitStore),
		codec:  p.currentCodec(),
		policy: p.policy,
		tap:    p.tap,
	}, nil
}

func (p *Plugin) currentCodec() ports.VideoCodec {
	if p.codecPinned {
		return p.codec
	}
	c, err := selectCodec()
	if err != nil {
		return nil
	}
	return c
}

func init() {
	heif.RegisterDecoderPlugin(New())
}
