package heif

// NCLXProfile describes how decoded sample values map to color: the CICP
// (ITU-T H.273) primaries, transfer characteristics and matrix coefficients
// codes, plus the video-range flag. Codecs and the container colr box use
// the same numeric space, so codes are carried verbatim.
type NCLXProfile struct {
	ColorPrimaries          uint16
	TransferCharacteristics uint16
	MatrixCoefficients      uint16
	FullRange               bool
}

// Frequently seen CICP code points. The full registries live in H.273;
// unknown codes are passed through untouched.
const (
	ColorPrimariesBT709       = 1
	ColorPrimariesUnspecified = 2
	ColorPrimariesBT601525    = 6
	ColorPrimariesBT601625    = 5
	ColorPrimariesBT2020      = 9

	TransferBT709       = 1
	TransferUnspecified = 2
	TransferSRGB        = 13
	TransferPQ          = 16

	MatrixIdentity    = 0
	MatrixBT709       = 1
	MatrixUnspecified = 2
	MatrixBT601       = 6
	MatrixBT2020NCL   = 9
)

// NewNCLXProfile returns a descriptor with every code unspecified and
// limited range, the neutral starting point before extraction fills it in.
func NewNCLXProfile() *NCLXProfile {
	return &NCLXProfile{
		ColorPrimaries:          ColorPrimariesUnspecified,
		TransferCharacteristics: TransferUnspecified,
		MatrixCoefficients:      MatrixUnspecified,
	}
}
