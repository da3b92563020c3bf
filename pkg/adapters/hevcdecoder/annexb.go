package hevcdecoder

import (
	"bytes"

	"github.com/Eyevinn/mp4ff/hevc"

	"github.com/user/heif/pkg/heif"
)

// annexBStartCode delimits NAL units in the byte-stream format the codec
// parses.
var annexBStartCode = []byte{0x00, 0x00, 0x00, 0x01}

// reassemble builds the Annex-B stream {VPS, SPS, PPS, IDR} from the
// stored units. VPS, SPS, PPS and one IDR slice must all be present or no
// allocation takes place. When both IDR variants were pushed, IDR_W_RADL
// wins. On success the store is cleared, so a decode consumes its units
// even if a later stage fails; on failure the store is left untouched and
// the host can push the missing units and retry.
func reassemble(store unitStore) ([]byte, error) {
	vps, haveVPS := store[hevc.NALU_VPS]
	sps, haveSPS := store[hevc.NALU_SPS]
	pps, havePPS := store[hevc.NALU_PPS]
	if !haveVPS || !haveSPS || !havePPS {
		return nil, heif.NewError(heif.ErrorDecoderPlugin, heif.SuberrorEndOfData,
			"VPS, SPS or PPS not pushed")
	}
	idr, haveIDR := store[hevc.NALU_IDR_W_RADL]
	if !haveIDR {
		idr, haveIDR = store[hevc.NALU_IDR_N_LP]
	}
	if !haveIDR {
		return nil, heif.NewError(heif.ErrorDecoderPlugin, heif.SuberrorEndOfData,
			"no IDR slice pushed")
	}

	buf := make([]byte, 0, len(vps)+len(sps)+len(pps)+len(idr)+4*len(annexBStartCode))
	for _, unit := range [][]byte{vps, sps, pps, idr} {
		buf = append(buf, annexBStartCode...)
		buf = append(buf, unit...)
	}
	store.clear()
	return buf, nil
}

// splitAnnexB splits a stream produced by reassemble back into NAL units.
// Emulation prevention guarantees the start code cannot occur inside a
// unit payload.
func splitAnnexB(stream []byte) [][]byte {
	var units [][]byte
	pos := 0
	for {
		idx := bytes.Index(stream[pos:], annexBStartCode)
		if idx < 0 {
			break
		}
		start := pos + idx + len(annexBStartCode)
		next := bytes.Index(stream[start:], annexBStartCode)
		if next < 0 {
			if start < len(stream) {
				units = append(units, stream[start:])
			}
			break
		}
		units = append(units, stream[start:start+next])
		pos = start + next
	}
	return units
}

// findSPS returns the first sequence parameter set in an Annex-B stream.
func findSPS(stream []byte) ([]byte, error) {
	for _, unit := range splitAnnexB(stream) {
		if len(unit) > 0 && classify(unit) == hevc.NALU_SPS {
			return unit, nil
		}
	}
	return nil, ErrNoSPS
}
