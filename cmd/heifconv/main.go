// Package main provides the CLI entry point for heifconv.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	_ "github.com/user/heif/pkg/adapters/av1decoder"
	"github.com/user/heif/pkg/adapters/filesink"
	"github.com/user/heif/pkg/adapters/hevcdecoder"
	"github.com/user/heif/pkg/adapters/logger"
	"github.com/user/heif/pkg/adapters/nullsink"
	"github.com/user/heif/pkg/adapters/osfilesystem"
	"github.com/user/heif/pkg/bmff"
	"github.com/user/heif/pkg/config"
	"github.com/user/heif/pkg/heif"
	"github.com/user/heif/pkg/orchestrator"
	"github.com/user/heif/pkg/ports"
	"github.com/user/heif/pkg/stages/decode"
	"github.com/user/heif/pkg/stages/export"
	"github.com/user/heif/pkg/stages/render"
	"github.com/user/heif/pkg/summarizer"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:      "heifconv",
		Usage:     l10n.T("Convert HEIF/AVIF still images to PNG, JPEG, BMP or TIFF"),
		ArgsUsage: "INPUT",
		Version:   version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output file path (default: input with new extension)")},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: l10n.T("Output format: png, jpeg, bmp, tiff (default: from output extension)")},
			&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Value: 90, Usage: l10n.T("JPEG quality (1-100)")},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Scale output to this width, preserving aspect ratio")},
			&cli.BoolFlag{Name: "thumbnail", Usage: l10n.T("Decode the thumbnail instead of the primary image")},
			&cli.BoolFlag{Name: "strict", Usage: l10n.T("Enable strict bitstream validation")},
			&cli.BoolFlag{Name: "raw-rotation", Usage: l10n.T("Skip the container's rotation and mirror transforms")},
			&cli.StringFlag{Name: "exif", Usage: l10n.T("Write the Exif metadata to this file")},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Write a Markdown conversion summary to this file")},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("Load settings from a YAML file")},
			&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to the FFmpeg executable")},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Save intermediate decode results")},
			&cli.StringFlag{Name: "debug-dir", Value: "./debug", Usage: l10n.T("Directory for debug output")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
		},
		Action: runConvert,
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     l10n.T("Print the container structure without decoding"),
				ArgsUsage: "INPUT",
				Action:    runInfo,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runConvert executes the default convert action.
func runConvert(c *cli.Context) error {
	input := c.Args().First()
	if input == "" {
		return cli.Exit(l10n.T("input file required"), 2)
	}

	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	output := c.String("output")
	if output == "" {
		output = defaultOutputPath(input, cfg.Format)
	}

	// Create logger
	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	if cfg.FFmpegPath != "" {
		hevcdecoder.SetFFmpegPath(cfg.FFmpegPath)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	// Create adapters
	fs := osfilesystem.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs)
	} else {
		sink = nullsink.New()
	}

	// Create stages and orchestrator
	orch := orchestrator.New(
		decode.NewStage(sink, log),
		render.NewStage(log),
		export.NewStage(log),
		fs,
		sink,
		log,
	)

	orchConfig, err := cfg.ToOrchestratorConfig(input, output)
	if err != nil {
		return err
	}

	result, err := orch.Run(ctx, orchConfig)
	if err != nil {
		return err
	}

	summary := buildSummary(result)
	if !c.Bool("quiet") {
		fmt.Print(summarizer.NewTextFormatter().Format(summary))
	}
	if cfg.SummaryPath != "" {
		writer := summarizer.NewWriter(summarizer.NewMarkdownFormatter())
		if err := writer.Write(cfg.SummaryPath, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}

// buildConfig merges the config file with CLI flag overrides.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}

	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("quality") {
		cfg.Quality = c.Int("quality")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("thumbnail") {
		cfg.Thumbnail = c.Bool("thumbnail")
	}
	if c.IsSet("strict") {
		cfg.Strict = c.Bool("strict")
	}
	if c.IsSet("raw-rotation") {
		cfg.RawRotation = c.Bool("raw-rotation")
	}
	if c.IsSet("exif") {
		cfg.ExifPath = c.String("exif")
	}
	if c.IsSet("summary") {
		cfg.SummaryPath = c.String("summary")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg, nil
}

// defaultOutputPath swaps the input extension for the output format's.
func defaultOutputPath(input, format string) string {
	ext := ".png"
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		ext = ".jpg"
	case "bmp":
		ext = ".bmp"
	case "tiff", "tif":
		ext = ".tiff"
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ext
}

// buildSummary converts a pipeline run result to a summarizer summary.
func buildSummary(result orchestrator.RunResult) *summarizer.Summary {
	builder := summarizer.NewBuilder().
		WithSource(summarizer.SourceInfo{
			Path:       result.InputPath,
			Size:       result.InputSize,
			MajorBrand: result.MajorBrand,
			ItemCount:  result.ItemCount,
		}).
		WithImage(summarizer.ImageInfo{
			Width:    result.Width,
			Height:   result.Height,
			BitDepth: result.BitDepth,
			Chroma:   "4:2:0",
			Rotation: result.Rotation,
			Mirror:   mirrorName(result.Mirror),
		}).
		WithOutput(summarizer.OutputInfo{
			Path:   result.OutputPath,
			Format: result.OutputFormat.String(),
			Size:   result.OutputSize,
			Width:  result.RenderedWidth,
			Height: result.RenderedHeight,
		})
	if result.NCLX != nil {
		builder.WithColor(summarizer.ColorInfo{
			Present:   true,
			Primaries: int(result.NCLX.ColorPrimaries),
			Transfer:  int(result.NCLX.TransferCharacteristics),
			Matrix:    int(result.NCLX.MatrixCoefficients),
			FullRange: result.NCLX.FullRange,
		})
	}
	return builder.Build()
}

func mirrorName(axis heif.MirrorAxis) string {
	switch axis {
	case heif.MirrorVertical:
		return "vertical"
	case heif.MirrorHorizontal:
		return "horizontal"
	}
	return ""
}

// runInfo prints the container structure of a file without decoding.
func runInfo(c *cli.Context) error {
	input := c.Args().First()
	if input == "" {
		return cli.Exit(l10n.T("input file required"), 2)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	f, err := bmff.Parse(data)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s", input, f.MajorBrand)
	if len(f.CompatibleBrands) > 0 {
		fmt.Printf(" (%s)", strings.Join(f.CompatibleBrands, ", "))
	}
	fmt.Println()

	for _, it := range f.Items() {
		marker := " "
		if it.ID == f.PrimaryItemID {
			marker = "*"
		}
		fmt.Printf("%s item %d: %s", marker, it.ID, it.Type)
		if it.Name != "" {
			fmt.Printf(" %q", it.Name)
		}
		if data, err := f.ItemData(it); err == nil {
			fmt.Printf(", %d bytes", len(data))
		}
		fmt.Println()
		for _, p := range it.Properties {
			fmt.Printf("    %s\n", describeProperty(p))
		}
	}
	return nil
}

// describeProperty renders one item property for the info listing.
func describeProperty(p bmff.Property) string {
	switch v := p.(type) {
	case bmff.ImageSpatialExtents:
		return fmt.Sprintf("ispe %dx%d", v.Width, v.Height)
	case bmff.Rotation:
		return fmt.Sprintf("irot %d deg CCW", v.Degrees())
	case bmff.Mirror:
		axis := "vertical"
		if v.Axis == 1 {
			axis = "horizontal"
		}
		return fmt.Sprintf("imir %s axis", axis)
	case bmff.ColorInfo:
		if v.ColorType == "nclx" {
			return fmt.Sprintf("colr nclx %d/%d/%d full=%t", v.Primaries, v.Transfer, v.Matrix, v.FullRange)
		}
		return fmt.Sprintf("colr %s, %d bytes", v.ColorType, len(v.ICC))
	case bmff.PixelInformation:
		return fmt.Sprintf("pixi %v bits", v.BitsPerChannel)
	case *bmff.HEVCConfig:
		return fmt.Sprintf("hvcC profile %d level %d, %d-bit", v.GeneralProfileIDC, v.GeneralLevelIDC, v.BitDepthLuma)
	case *bmff.AV1Config:
		return fmt.Sprintf("av1C profile %d level %d", v.SeqProfile, v.SeqLevelIdx)
	case bmff.UnknownProperty:
		return fmt.Sprintf("%s, %d bytes", v.BoxType, len(v.Data))
	}
	return p.PropertyType()
}
