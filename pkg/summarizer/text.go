package summarizer

import (
	"fmt"
	"strings"
)

// TextFormatter formats a Summary as aligned plain text for terminals.
type TextFormatter struct{}

// NewTextFormatter creates a new TextFormatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format converts the summary to plain text.
func (f *TextFormatter) Format(summary *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-12s %s (%s, %s, %d items)\n", "Source:",
		summary.Source.Path, formatBytes(summary.Source.Size),
		summary.Source.MajorBrand, summary.Source.ItemCount)

	image := fmt.Sprintf("%dx%d, %d-bit", summary.Image.Width, summary.Image.Height, summary.Image.BitDepth)
	if summary.Image.Chroma != "" {
		image += ", " + summary.Image.Chroma
	}
	if summary.Image.Rotation != 0 {
		image += fmt.Sprintf(", rotated %d deg", summary.Image.Rotation)
	}
	if summary.Image.Mirror != "" {
		image += ", mirrored " + summary.Image.Mirror
	}
	fmt.Fprintf(&b, "%-12s %s\n", "Image:", image)

	if summary.Color.Present {
		fmt.Fprintf(&b, "%-12s primaries %d, transfer %d, matrix %d, %s range\n", "Color:",
			summary.Color.Primaries, summary.Color.Transfer, summary.Color.Matrix,
			rangeName(summary.Color.FullRange))
	}

	fmt.Fprintf(&b, "%-12s %s (%s, %dx%d, %s)\n", "Output:",
		summary.Output.Path, summary.Output.Format,
		summary.Output.Width, summary.Output.Height,
		formatBytes(summary.Output.Size))

	return b.String()
}
