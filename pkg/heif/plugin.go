package heif

import (
	"sort"
	"sync"
)

// CompressionFormat identifies the codec family of an encoded item.
type CompressionFormat int

const (
	CompressionUndefined CompressionFormat = iota
	CompressionHEVC
	CompressionAVC
	CompressionJPEG
	CompressionAV1
)

// String returns the conventional name of the format.
func (f CompressionFormat) String() string {
	switch f {
	case CompressionHEVC:
		return "HEVC"
	case CompressionAVC:
		return "AVC"
	case CompressionJPEG:
		return "JPEG"
	case CompressionAV1:
		return "AV1"
	default:
		return "undefined"
	}
}

// DecoderPlugin is the fixed contract between the library and one codec
// family's decoder. SupportsFormat must be pure: same input, same answer,
// no decode state touched. Ranking across plugins happens in the registry,
// not in any plugin.
type DecoderPlugin interface {
	// Name describes the plugin and its backing codec, freshly built or
	// immutably cached; implementations must not format into shared
	// mutable storage.
	Name() string

	// SupportsFormat returns a priority from 0 to 100 for the format,
	// 0 meaning unsupported.
	SupportsFormat(format CompressionFormat) int

	// NewDecoder creates one single-image decode session.
	NewDecoder() (Decoder, error)
}

// Decoder is one decode session: any number of PushData calls followed by
// DecodeImage. A session is not safe for concurrent use; callers serialize
// or use one session per goroutine. Close releases the session; a closed
// session rejects every other call.
type Decoder interface {
	// PushData ingests length-prefixed units: each a 4-byte big-endian
	// byte count followed by that many payload bytes. The buffer may be
	// reused by the caller once PushData returns.
	PushData(data []byte) error

	// DecodeImage turns everything pushed so far into exactly one image,
	// consuming it. When required units are still missing it fails
	// without consuming anything, so the caller may push the rest and
	// retry.
	DecodeImage() (*Image, error)

	// SetStrictDecoding toggles strict validation of the pushed stream.
	SetStrictDecoding(strict bool)

	Close() error
}

var (
	pluginMu sync.RWMutex
	plugins  []DecoderPlugin
)

// RegisterDecoderPlugin adds a plugin to the process-wide registry.
// Decoder packages call this from init; applications select a plugin
// per format through DecoderPluginForFormat.
func RegisterDecoderPlugin(p DecoderPlugin) {
	pluginMu.Lock()
	defer pluginMu.Unlock()
	plugins = append(plugins, p)
}

// DecoderPluginForFormat returns the registered plugin with the highest
// non-zero priority for the format.
func DecoderPluginForFormat(format CompressionFormat) (DecoderPlugin, error) {
	pluginMu.RLock()
	defer pluginMu.RUnlock()
	var best DecoderPlugin
	bestPriority := 0
	for _, p := range plugins {
		if priority := p.SupportsFormat(format); priority > bestPriority {
			best = p
			bestPriority = priority
		}
	}
	if best == nil {
		return nil, Errorf(ErrorUnsupportedFeature, SuberrorUnsupportedCodec,
			"no decoder plugin for %s", format)
	}
	return best, nil
}

// DecoderPlugins returns the registered plugins sorted by name, for
// diagnostics and version listings.
func DecoderPlugins() []DecoderPlugin {
	pluginMu.RLock()
	defer pluginMu.RUnlock()
	out := make([]DecoderPlugin, len(plugins))
	copy(out, plugins)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
