package pipeline

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/user/heif/pkg/heif"
)

// =============================================================================
// Decode Stage Types
// =============================================================================

// DecodeInput contains parameters for container parsing and decoding.
type DecodeInput struct {
	Data      []byte // Complete HEIF/AVIF file contents
	Thumbnail bool   // Decode the thumbnail instead of the primary item
	Strict    bool   // Enable strict bitstream validation
}

// DecodeResult contains the decoded image and container metadata.
type DecodeResult struct {
	Image     *heif.Image
	Container ContainerInfo
}

// ContainerInfo summarizes the parsed container for logs and summaries.
type ContainerInfo struct {
	MajorBrand       string   `json:"major_brand"`
	CompatibleBrands []string `json:"compatible_brands"`
	ItemCount        int      `json:"item_count"`
	PrimaryItemID    uint32   `json:"primary_item_id"`
	PrimaryItemType  string   `json:"primary_item_type"`
}

// =============================================================================
// Render Stage Types
// =============================================================================

// RenderInput contains parameters for rendering planar samples to pixels.
type RenderInput struct {
	Image       *heif.Image
	TargetWidth int  // Scale the result to this width (0 keeps the decoded size)
	RawRotation bool // Skip the container's irot/imir transforms
}

// RenderResult contains the rendered image.
type RenderResult struct {
	Image image.Image
}

// =============================================================================
// Export Stage Types
// =============================================================================

// OutputFormat identifies the encoding of the exported file.
type OutputFormat int

const (
	FormatPNG OutputFormat = iota
	FormatJPEG
	FormatBMP
	FormatTIFF
)

// String returns the conventional format name.
func (f OutputFormat) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// ParseOutputFormat parses a format name as given on the command line.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	}
	return FormatPNG, fmt.Errorf("unknown output format %q", s)
}

// FormatForPath derives the output format from a file extension,
// defaulting to PNG when the extension is not recognized.
func FormatForPath(path string) OutputFormat {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if f, err := ParseOutputFormat(ext); err == nil {
		return f
	}
	return FormatPNG
}

// ExportInput contains parameters for image file encoding.
type ExportInput struct {
	Image   image.Image
	Format  OutputFormat
	Quality int // JPEG quality (1-100)
}

// DefaultExportInput returns ExportInput with default values.
func DefaultExportInput() ExportInput {
	return ExportInput{
		Format:  FormatPNG,
		Quality: 90,
	}
}

// ExportResult contains the encoded file contents.
type ExportResult struct {
	Data []byte
}
