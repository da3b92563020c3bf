package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter formats a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format converts the summary to Markdown.
func (f *MarkdownFormatter) Format(summary *Summary) string {
	var b strings.Builder

	b.WriteString("# Conversion Summary\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Source\n\n")
	fmt.Fprintf(&b, "- File: %s\n", summary.Source.Path)
	fmt.Fprintf(&b, "- Size: %s\n", formatBytes(summary.Source.Size))
	fmt.Fprintf(&b, "- Brand: %s\n", summary.Source.MajorBrand)
	fmt.Fprintf(&b, "- Items: %d\n\n", summary.Source.ItemCount)

	b.WriteString("## Image\n\n")
	fmt.Fprintf(&b, "- Dimensions: %dx%d\n", summary.Image.Width, summary.Image.Height)
	fmt.Fprintf(&b, "- Bit depth: %d\n", summary.Image.BitDepth)
	if summary.Image.Chroma != "" {
		fmt.Fprintf(&b, "- Chroma: %s\n", summary.Image.Chroma)
	}
	if summary.Image.Rotation != 0 {
		fmt.Fprintf(&b, "- Rotation: %d deg CCW\n", summary.Image.Rotation)
	}
	if summary.Image.Mirror != "" {
		fmt.Fprintf(&b, "- Mirror: %s\n", summary.Image.Mirror)
	}
	b.WriteString("\n")

	if summary.Color.Present {
		b.WriteString("## Colorimetry\n\n")
		fmt.Fprintf(&b, "- Primaries: %d\n", summary.Color.Primaries)
		fmt.Fprintf(&b, "- Transfer: %d\n", summary.Color.Transfer)
		fmt.Fprintf(&b, "- Matrix: %d\n", summary.Color.Matrix)
		fmt.Fprintf(&b, "- Range: %s\n\n", rangeName(summary.Color.FullRange))
	}

	b.WriteString("## Output\n\n")
	fmt.Fprintf(&b, "- File: %s\n", summary.Output.Path)
	fmt.Fprintf(&b, "- Format: %s\n", summary.Output.Format)
	fmt.Fprintf(&b, "- Dimensions: %dx%d\n", summary.Output.Width, summary.Output.Height)
	fmt.Fprintf(&b, "- Size: %s\n", formatBytes(summary.Output.Size))

	return b.String()
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func rangeName(full bool) string {
	if full {
		return "full"
	}
	return "limited"
}
