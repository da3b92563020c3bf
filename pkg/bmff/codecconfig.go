package bmff

import (
	"encoding/binary"
	"fmt"

	"github.com/Eyevinn/mp4ff/hevc"
)

// HEVCNALArray is one parameter-set array of an hvcC record.
type HEVCNALArray struct {
	Completeness bool
	NaluType     hevc.NaluType
	Units        [][]byte
}

// HEVCConfig is the hvcC property: the HEVC decoder configuration record
// carrying the parameter-set NAL units an item's encoded data depends on.
type HEVCConfig struct {
	GeneralProfileIDC uint8
	GeneralLevelIDC   uint8
	ChromaFormatIDC   uint8
	BitDepthLuma      uint8
	BitDepthChroma    uint8

	// LengthSize is the byte width of the length prefixes in the item's
	// encoded data (normally 4).
	LengthSize int

	Arrays []HEVCNALArray
}

func (*HEVCConfig) PropertyType() string { return "hvcC" }

func parseHEVCConfig(payload []byte) (*HEVCConfig, error) {
	if len(payload) < 23 {
		return nil, fmt.Errorf("%w: hvcC record of %d bytes", ErrInvalidBox, len(payload))
	}
	c := &HEVCConfig{
		GeneralProfileIDC: payload[1] & 0x1F,
		GeneralLevelIDC:   payload[12],
		ChromaFormatIDC:   payload[16] & 0x3,
		BitDepthLuma:      payload[17]&0x7 + 8,
		BitDepthChroma:    payload[18]&0x7 + 8,
		LengthSize:        int(payload[21]&0x3) + 1,
	}
	numArrays := int(payload[22])
	off := 23
	for i := 0; i < numArrays; i++ {
		first, err := readU8(payload, &off)
		if err != nil {
			return nil, err
		}
		arr := HEVCNALArray{
			Completeness: first&0x80 != 0,
			NaluType:     hevc.NaluType(first & 0x3F),
		}
		numUnits, err := readU16(payload, &off)
		if err != nil {
			return nil, err
		}
		for u := uint16(0); u < numUnits; u++ {
			unitLen, err := readU16(payload, &off)
			if err != nil {
				return nil, err
			}
			if off+int(unitLen) > len(payload) {
				return nil, fmt.Errorf("%w: hvcC unit of %d bytes overruns record", ErrInvalidBox, unitLen)
			}
			arr.Units = append(arr.Units, payload[off:off+int(unitLen)])
			off += int(unitLen)
		}
		c.Arrays = append(c.Arrays, arr)
	}
	return c, nil
}

// LengthPrefixedHeader re-serializes every parameter-set unit with a 4-byte
// big-endian length prefix, the wire format decoder plugins ingest ahead of
// the item's picture data.
func (c *HEVCConfig) LengthPrefixedHeader() []byte {
	total := 0
	for _, arr := range c.Arrays {
		for _, unit := range arr.Units {
			total += 4 + len(unit)
		}
	}
	out := make([]byte, 0, total)
	var lenBuf [4]byte
	for _, arr := range c.Arrays {
		for _, unit := range arr.Units {
			binary.BigEndian.PutUint32(lenBuf[:], uint32(len(unit)))
			out = append(out, lenBuf[:]...)
			out = append(out, unit...)
		}
	}
	return out
}

// AV1Config is the av1C property: sequence parameters plus the config OBUs
// prepended to an AV1 item's data.
type AV1Config struct {
	SeqProfile   uint8
	SeqLevelIdx  uint8
	HighBitdepth bool
	TwelveBit    bool
	Monochrome   bool
	ConfigOBUs   []byte
}

func (*AV1Config) PropertyType() string { return "av1C" }

func parseAV1Config(payload []byte) (*AV1Config, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("%w: av1C record of %d bytes", ErrInvalidBox, len(payload))
	}
	if payload[0]&0x80 == 0 || payload[0]&0x7F != 1 {
		return nil, fmt.Errorf("%w: av1C marker/version byte 0x%02x", ErrInvalidBox, payload[0])
	}
	return &AV1Config{
		SeqProfile:   payload[1] >> 5,
		SeqLevelIdx:  payload[1] & 0x1F,
		HighBitdepth: payload[2]&0x40 != 0,
		TwelveBit:    payload[2]&0x20 != 0,
		Monochrome:   payload[2]&0x10 != 0,
		ConfigOBUs:   payload[4:],
	}, nil
}
