// Package config provides configuration loading and management.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/heif/pkg/orchestrator"
	"github.com/user/heif/pkg/pipeline"
)

// Config represents the full configuration for heifconv.
type Config struct {
	// Export
	Format  string `yaml:"format"` // "" = derive from the output extension
	Quality int    `yaml:"quality"`

	// Rendering
	Width       int  `yaml:"width"` // 0 = keep decoded size
	RawRotation bool `yaml:"raw_rotation"`

	// Decoding
	Thumbnail bool `yaml:"thumbnail"`
	Strict    bool `yaml:"strict"`

	// Decoder backend
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Reporting
	SummaryPath string `yaml:"summary"`
	ExifPath    string `yaml:"exif"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Quality:  90,
		LogLevel: "info",
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file on top of the
// defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ToOrchestratorConfig converts Config to orchestrator.Config for one
// input/output pair.
func (c Config) ToOrchestratorConfig(inputPath, outputPath string) (orchestrator.Config, error) {
	format := pipeline.FormatForPath(outputPath)
	if c.Format != "" {
		var err error
		format, err = pipeline.ParseOutputFormat(c.Format)
		if err != nil {
			return orchestrator.Config{}, err
		}
	}

	return orchestrator.Config{
		InputPath:  inputPath,
		OutputPath: outputPath,

		Thumbnail: c.Thumbnail,
		Strict:    c.Strict,

		TargetWidth: c.Width,
		RawRotation: c.RawRotation,

		Format:  format,
		Quality: c.Quality,

		ExifPath: c.ExifPath,
	}, nil
}
