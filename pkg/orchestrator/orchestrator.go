// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/user/heif/pkg/heif"
	"github.com/user/heif/pkg/pipeline"
	"github.com/user/heif/pkg/ports"
)

// Config contains all configuration for one conversion run.
type Config struct {
	// Input/Output
	InputPath  string
	OutputPath string

	// Decoding
	Thumbnail bool
	Strict    bool

	// Rendering
	TargetWidth int
	RawRotation bool

	// Export
	Format  pipeline.OutputFormat
	Quality int

	// Exif extraction (empty = skip)
	ExifPath string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Format:  pipeline.FormatPNG,
		Quality: 90,
	}
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	decodeStage pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult]
	renderStage pipeline.Stage[pipeline.RenderInput, pipeline.RenderResult]
	exportStage pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult]
	fs          ports.FileSystem
	sink        ports.DebugSink
	logger      ports.Logger
}

// New creates a new Orchestrator.
func New(
	decodeStage pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult],
	renderStage pipeline.Stage[pipeline.RenderInput, pipeline.RenderResult],
	exportStage pipeline.Stage[pipeline.ExportInput, pipeline.ExportResult],
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		decodeStage: decodeStage,
		renderStage: renderStage,
		exportStage: exportStage,
		fs:          fs,
		sink:        sink,
		logger:      logger,
	}
}

// Run executes the complete pipeline.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	o.logger.Info(l10n.F("Converting %s", config.InputPath))

	// 1. Read input file
	data, err := o.fs.ReadFile(config.InputPath)
	if err != nil {
		o.logger.Error(l10n.F("Failed to read input: %s", err))
		return RunResult{}, fmt.Errorf("read input: %w", err)
	}

	// 2. Decode
	o.logger.Info(l10n.T("Decoding image"))
	decodeInput := pipeline.DecodeInput{
		Data:      data,
		Thumbnail: config.Thumbnail,
		Strict:    config.Strict,
	}
	decoded, err := o.decodeStage.Execute(ctx, decodeInput)
	if err != nil {
		o.logger.Error(l10n.F("Failed to decode image: %s", err))
		return RunResult{}, fmt.Errorf("decode stage: %w", err)
	}
	o.logger.Info(l10n.F("Decoded %dx%d image (%d-bit)",
		decoded.Image.Width(), decoded.Image.Height(),
		decoded.Image.BitDepth(heif.ChannelY)))

	// 3. Extract Exif (optional)
	if config.ExifPath != "" {
		if exif, err := heif.ExtractExif(data); err == nil {
			if err := o.fs.WriteFile(config.ExifPath, exif); err != nil {
				o.logger.Error(l10n.F("Failed to write output: %s", err))
				return RunResult{}, fmt.Errorf("write exif: %w", err)
			}
			o.logger.Info(l10n.F("Exif saved to %s", config.ExifPath))
		} else {
			o.logger.Warn(l10n.F("No Exif metadata: %s", err))
		}
	}

	// 4. Render
	renderInput := pipeline.RenderInput{
		Image:       decoded.Image,
		TargetWidth: config.TargetWidth,
		RawRotation: config.RawRotation,
	}
	rendered, err := o.renderStage.Execute(ctx, renderInput)
	if err != nil {
		o.logger.Error(l10n.F("Failed to render image: %s", err))
		return RunResult{}, fmt.Errorf("render stage: %w", err)
	}

	// Save render debug output
	if o.sink.Enabled() {
		o.sink.SaveRenderedImage(rendered.Image)
	}

	// 5. Export
	o.logger.Info(l10n.F("Encoding %s output", config.Format.String()))
	exportInput := pipeline.ExportInput{
		Image:   rendered.Image,
		Format:  config.Format,
		Quality: config.Quality,
	}
	exported, err := o.exportStage.Execute(ctx, exportInput)
	if err != nil {
		o.logger.Error(l10n.F("Failed to encode output: %s", err))
		return RunResult{}, fmt.Errorf("export stage: %w", err)
	}

	// 6. Write output file
	if err := o.fs.WriteFile(config.OutputPath, exported.Data); err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return RunResult{}, fmt.Errorf("write output: %w", err)
	}

	o.logger.Info(l10n.F("Output saved to %s", config.OutputPath))

	// Build result for summary
	result := RunResult{
		InputPath:  config.InputPath,
		InputSize:  int64(len(data)),
		MajorBrand: decoded.Container.MajorBrand,
		ItemCount:  decoded.Container.ItemCount,

		Width:    decoded.Image.Width(),
		Height:   decoded.Image.Height(),
		BitDepth: decoded.Image.BitDepth(heif.ChannelY),
		Rotation: decoded.Image.Rotation(),
		Mirror:   decoded.Image.Mirror(),
		NCLX:     decoded.Image.NCLX(),

		OutputPath:     config.OutputPath,
		OutputFormat:   config.Format,
		OutputSize:     int64(len(exported.Data)),
		RenderedWidth:  rendered.Image.Bounds().Dx(),
		RenderedHeight: rendered.Image.Bounds().Dy(),
	}

	return result, nil
}

// RunResult contains the results of one conversion for summary generation.
type RunResult struct {
	// Source information
	InputPath  string
	InputSize  int64
	MajorBrand string
	ItemCount  int

	// Decoded image information
	Width    int
	Height   int
	BitDepth int
	Rotation int
	Mirror   heif.MirrorAxis
	NCLX     *heif.NCLXProfile

	// Output information
	OutputPath     string
	OutputFormat   pipeline.OutputFormat
	OutputSize     int64
	RenderedWidth  int
	RenderedHeight int
}
