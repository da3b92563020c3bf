// Package decode implements the container parsing and bitstream
// decoding stage.
package decode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/user/heif/pkg/adapters/hevcdecoder"
	"github.com/user/heif/pkg/bmff"
	"github.com/user/heif/pkg/heif"
	"github.com/user/heif/pkg/pipeline"
	"github.com/user/heif/pkg/ports"
)

// Option configures a Stage.
type Option func(*Stage)

// WithPlugin decodes with a fixed plugin instead of consulting the
// registry, mainly for tests.
func WithPlugin(p heif.DecoderPlugin) Option {
	return func(s *Stage) {
		s.plugin = p
	}
}

// Stage decodes a HEIF/AVIF file into a planar image.
type Stage struct {
	sink   ports.DebugSink
	logger ports.Logger
	plugin heif.DecoderPlugin
}

// NewStage creates a new decode stage.
func NewStage(sink ports.DebugSink, logger ports.Logger, opts ...Option) *Stage {
	s := &Stage{
		sink:   sink,
		logger: logger.WithComponent("decode"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute parses the container and decodes the selected item.
func (s *Stage) Execute(ctx context.Context, input pipeline.DecodeInput) (pipeline.DecodeResult, error) {
	result := pipeline.DecodeResult{}

	f, err := bmff.Parse(input.Data)
	if err != nil {
		return result, fmt.Errorf("parse container: %w", err)
	}
	result.Container = containerInfo(f)
	s.logger.Debug(l10n.F("Parsed container: brand %s, %d items",
		result.Container.MajorBrand, result.Container.ItemCount))

	if s.sink.Enabled() {
		if data, err := json.MarshalIndent(result.Container, "", "  "); err == nil {
			s.sink.SaveContainerJSON(data)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	opts := []heif.DecodeOption{heif.WithStrictDecoding(input.Strict)}
	switch {
	case s.plugin != nil:
		opts = append(opts, heif.WithPlugin(s.plugin))
	case s.sink.Enabled() && result.Container.PrimaryItemType == "hvc1":
		// Tap the reassembled elementary stream for HEVC items so the
		// sink can save what actually reaches the codec.
		plugin := hevcdecoder.New(hevcdecoder.WithBitstreamTap(func(stream []byte) {
			s.sink.SaveBitstream(stream)
		}))
		opts = append(opts, heif.WithPlugin(plugin))
	}

	var img *heif.Image
	if input.Thumbnail {
		img, err = heif.DecodeThumbnail(input.Data, opts...)
	} else {
		img, err = heif.DecodeImage(input.Data, opts...)
	}
	if err != nil {
		return result, err
	}
	result.Image = img
	s.logger.Debug(l10n.F("Decoded image: %dx%d, %d-bit",
		img.Width(), img.Height(), img.BitDepth(heif.ChannelY)))

	if s.sink.Enabled() {
		s.sink.SaveRawPlanes(concatPlanes(img))
	}

	return result, nil
}

// containerInfo collects the container facts worth reporting.
func containerInfo(f *bmff.File) pipeline.ContainerInfo {
	info := pipeline.ContainerInfo{
		MajorBrand:       f.MajorBrand,
		CompatibleBrands: f.CompatibleBrands,
		ItemCount:        len(f.Items()),
		PrimaryItemID:    f.PrimaryItemID,
	}
	if it, err := f.PrimaryItem(); err == nil {
		info.PrimaryItemType = it.Type
	}
	return info
}

// concatPlanes lays the image planes out back to back, rows packed,
// for raw-plane debug output.
func concatPlanes(img *heif.Image) []byte {
	var out []byte
	for _, ch := range []heif.Channel{heif.ChannelY, heif.ChannelCb, heif.ChannelCr} {
		p, ok := img.Plane(ch)
		if !ok {
			continue
		}
		for y := 0; y < p.Height; y++ {
			out = append(out, p.Row(y)...)
		}
	}
	return out
}
