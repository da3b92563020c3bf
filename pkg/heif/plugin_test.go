package heif

import (
	"errors"
	"sort"
	"testing"
)

// stubPlugin answers for one format with a fixed priority.
type stubPlugin struct {
	name     string
	format   CompressionFormat
	priority int
}

func (p *stubPlugin) Name() string { return p.name }

func (p *stubPlugin) SupportsFormat(f CompressionFormat) int {
	if f == p.format {
		return p.priority
	}
	return 0
}

func (p *stubPlugin) NewDecoder() (Decoder, error) { return &fakeDecoder{}, nil }

func TestDecoderPluginForFormatPicksHighestPriority(t *testing.T) {
	low := &stubPlugin{name: "low", format: CompressionJPEG, priority: 10}
	high := &stubPlugin{name: "high", format: CompressionJPEG, priority: 80}
	RegisterDecoderPlugin(low)
	RegisterDecoderPlugin(high)

	got, err := DecoderPluginForFormat(CompressionJPEG)
	if err != nil {
		t.Fatalf("DecoderPluginForFormat: %v", err)
	}
	if got != DecoderPlugin(high) {
		t.Errorf("picked %q, want %q", got.Name(), high.Name())
	}
}

func TestDecoderPluginForFormatNoneRegistered(t *testing.T) {
	_, err := DecoderPluginForFormat(CompressionAVC)
	if !errors.Is(err, ErrNoCompatibleDecoder) {
		t.Errorf("DecoderPluginForFormat = %v, want no compatible decoder", err)
	}
}

func TestDecoderPluginsSortedByName(t *testing.T) {
	RegisterDecoderPlugin(&stubPlugin{name: "zeta", format: CompressionJPEG, priority: 1})
	RegisterDecoderPlugin(&stubPlugin{name: "alpha", format: CompressionJPEG, priority: 1})

	names := make([]string, 0)
	for _, p := range DecoderPlugins() {
		names = append(names, p.Name())
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("plugins not sorted by name: %v", names)
	}
	if len(names) < 2 {
		t.Fatalf("expected at least the two registered plugins, got %v", names)
	}
}

func TestCompressionFormatString(t *testing.T) {
	tests := []struct {
		format CompressionFormat
		want   string
	}{
		{CompressionHEVC, "HEVC"},
		{CompressionAV1, "AV1"},
		{CompressionAVC, "AVC"},
		{CompressionJPEG, "JPEG"},
		{CompressionUndefined, "undefined"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}
