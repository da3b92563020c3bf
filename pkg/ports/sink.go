package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate decode results.
// It allows saving what the pipeline produced between stages for
// troubleshooting purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveContainerJSON saves the parsed container structure as JSON.
	SaveContainerJSON(data []byte) error

	// SaveBitstream saves the Annex-B elementary stream handed to the codec.
	SaveBitstream(data []byte) error

	// SaveRawPlanes saves the decoded planar samples, planes concatenated.
	SaveRawPlanes(data []byte) error

	// SaveRenderedImage saves the rendered image before export encoding.
	SaveRenderedImage(img image.Image) error
}
