// Package hevcdecoder decodes HEVC still images with FFmpeg. It collects
// length-prefixed NAL units pushed by the container layer, reassembles
// them into an Annex-B stream and drives an HEVC codec over it. The codec
// is libavcodec when built with the ffmpeg tag, otherwise an external
// ffmpeg process.
package hevcdecoder

import (
	"encoding/binary"
	"fmt"

	"github.com/Eyevinn/mp4ff/hevc"

	"github.com/user/heif/pkg/heif"
	"github.com/user/heif/pkg/ports"
)

// StrictPolicy validates the collected units before reassembly when
// strict decoding is enabled. The map must be treated as read-only. A
// non-nil error rejects the decode and leaves the units in place.
type StrictPolicy func(units map[hevc.NaluType][]byte) error

// SPSMustParse is a strict policy that requires a stored SPS to parse as
// a valid sequence parameter set. A missing SPS passes; reassembly
// reports it.
func SPSMustParse(units map[hevc.NaluType][]byte) error {
	sps, ok := units[hevc.NALU_SPS]
	if !ok {
		return nil
	}
	if _, err := hevc.ParseSPSNALUnit(sps); err != nil {
		return fmt.Errorf("invalid SPS: %w", err)
	}
	return nil
}

// Decoder is a single-image decode session.
type Decoder struct {
	store  unitStore
	codec  ports.VideoCodec
	policy StrictPolicy
	tap    func([]byte)
	strict bool
	closed bool
}

var _ heif.Decoder = (*Decoder)(nil)

// PushData ingests a buffer of NAL units, each preceded by a 4-byte
// big-endian length. A truncated length prefix or a unit running past the
// buffer end stops ingestion; units read before that point stay stored.
func (d *Decoder) PushData(data []byte) error {
	if d.closed {
		return errClosed()
	}
	off := 0
	for off < len(data) {
		if len(data)-off < 4 {
			return heif.Errorf(heif.ErrorDecoderPlugin, heif.SuberrorEndOfData,
				"truncated NAL length prefix (%d bytes left)", len(data)-off)
		}
		n := int(binary.BigEndian.Uint32(data[off:]))
		off += 4
		if n > len(data)-off {
			return heif.Errorf(heif.ErrorDecoderPlugin, heif.SuberrorEndOfData,
				"NAL unit of %d bytes exceeds remaining %d", n, len(data)-off)
		}
		// A zero-length unit has no header byte to classify.
		if n > 0 {
			d.store.insert(data[off : off+n])
		}
		off += n
	}
	return nil
}

// DecodeImage reassembles the pushed units and decodes them into an
// image. A successful reassembly clears the stored units even when the
// codec fails afterwards.
func (d *Decoder) DecodeImage() (*heif.Image, error) {
	if d.closed {
		return nil, errClosed()
	}
	if d.strict && d.policy != nil {
		if err := d.policy(d.store); err != nil {
			return nil, heif.Errorf(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
				"strict validation: %v", err)
		}
	}
	bitstream, err := reassemble(d.store)
	if err != nil {
		return nil, err
	}
	if d.tap != nil {
		d.tap(bitstream)
	}
	if d.codec == nil {
		return nil, heif.Errorf(heif.ErrorDecoderPlugin, heif.SuberrorUnspecified,
			"%v (install ffmpeg or build with the ffmpeg tag)", ErrNoBackend)
	}
	return decodeBitstream(d.codec, bitstream)
}

// SetStrictDecoding toggles strict validation for subsequent decodes.
func (d *Decoder) SetStrictDecoding(strict bool) {
	d.strict = strict
}

// Close releases the session. It is idempotent; any other use of a
// closed session is an error.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.store.clear()
	d.closed = true
	return nil
}

func errClosed() *heif.Error {
	return heif.NewError(heif.ErrorUsage, heif.SuberrorUnspecified, "decoder is closed")
}
