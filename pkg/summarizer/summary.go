// Package summarizer provides summary generation for conversion results.
package summarizer

import "time"

// Summary contains all data collected during one conversion.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Source file information
	Source SourceInfo

	// Decoded image information
	Image ImageInfo

	// Colorimetry of the decoded image
	Color ColorInfo

	// Output file details
	Output OutputInfo
}

// SourceInfo describes the input container.
type SourceInfo struct {
	Path       string
	Size       int64
	MajorBrand string
	ItemCount  int
}

// ImageInfo describes the decoded picture.
type ImageInfo struct {
	Width    int
	Height   int
	BitDepth int
	Chroma   string
	Rotation int    // degrees counter-clockwise
	Mirror   string // "", "vertical" or "horizontal"
}

// ColorInfo carries the nclx colorimetry codes.
type ColorInfo struct {
	Present   bool
	Primaries int
	Transfer  int
	Matrix    int
	FullRange bool
}

// OutputInfo describes the exported file.
type OutputInfo struct {
	Path   string
	Format string
	Size   int64
	Width  int
	Height int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets source file information.
func (b *Builder) WithSource(source SourceInfo) *Builder {
	b.summary.Source = source
	return b
}

// WithImage sets decoded image information.
func (b *Builder) WithImage(image ImageInfo) *Builder {
	b.summary.Image = image
	return b
}

// WithColor sets colorimetry information.
func (b *Builder) WithColor(color ColorInfo) *Builder {
	b.summary.Color = color
	return b
}

// WithOutput sets output file information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
