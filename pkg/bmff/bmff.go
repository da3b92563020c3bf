// Package bmff reads the ISOBMFF box structure of HEIF still-image files:
// enough of the meta/item machinery (iinf, iloc, iprp, iref) to locate the
// primary picture, its codec configuration and its encoded bytes, without
// touching any codec.
package bmff

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrInvalidBox indicates a box whose declared size or layout does
	// not fit the data that carries it.
	ErrInvalidBox = errors.New("bmff: invalid box structure")

	// ErrNoMeta indicates a file without the meta box HEIF requires.
	ErrNoMeta = errors.New("bmff: no meta box")

	// ErrNotHEIF indicates a file whose brand or handler is not a HEIF
	// still image.
	ErrNotHEIF = errors.New("bmff: not a HEIF still image")

	// ErrItemNotFound indicates a lookup of an item id the file does not
	// declare.
	ErrItemNotFound = errors.New("bmff: item not found")

	// ErrNoItemData indicates an item without a resolvable data location.
	ErrNoItemData = errors.New("bmff: item has no data")
)

// box is one parsed box header with its payload slice. The payload aliases
// the file buffer; nothing is copied while walking.
type box struct {
	boxType string
	payload []byte
}

// walkBoxes scans consecutive boxes in data and calls fn for each. A size
// of 0 means "to the end of the enclosing box"; a size of 1 switches to the
// 64-bit largesize field.
func walkBoxes(data []byte, fn func(b box) error) error {
	off := 0
	for off < len(data) {
		if off+8 > len(data) {
			return fmt.Errorf("%w: %d trailing bytes", ErrInvalidBox, len(data)-off)
		}
		size := uint64(binary.BigEndian.Uint32(data[off:]))
		boxType := string(data[off+4 : off+8])
		headerLen := uint64(8)
		switch size {
		case 0:
			size = uint64(len(data) - off)
		case 1:
			if off+16 > len(data) {
				return fmt.Errorf("%w: truncated largesize in %q", ErrInvalidBox, boxType)
			}
			size = binary.BigEndian.Uint64(data[off+8:])
			headerLen = 16
		}
		if size < headerLen || uint64(off)+size > uint64(len(data)) {
			return fmt.Errorf("%w: box %q size %d at offset %d", ErrInvalidBox, boxType, size, off)
		}
		if err := fn(box{boxType: boxType, payload: data[uint64(off)+headerLen : uint64(off)+size]}); err != nil {
			return err
		}
		off += int(size)
	}
	return nil
}

// fullBox splits the version/flags prefix of a full box from its body.
func fullBox(payload []byte) (version uint8, flags uint32, body []byte, err error) {
	if len(payload) < 4 {
		return 0, 0, nil, fmt.Errorf("%w: short full box", ErrInvalidBox)
	}
	vf := binary.BigEndian.Uint32(payload)
	return uint8(vf >> 24), vf & 0x00FFFFFF, payload[4:], nil
}

// readUintN reads an unsigned big-endian integer of width 0, 1, 2, 4 or 8
// bytes, advancing *off. Width 0 reads nothing and yields 0, which iloc
// uses for absent offset fields.
func readUintN(data []byte, off *int, width int) (uint64, error) {
	if width == 0 {
		return 0, nil
	}
	if *off+width > len(data) {
		return 0, fmt.Errorf("%w: truncated %d-byte field", ErrInvalidBox, width)
	}
	var v uint64
	for i := 0; i < width; i++ {
		v = v<<8 | uint64(data[*off+i])
	}
	*off += width
	return v, nil
}

func readU8(data []byte, off *int) (uint8, error) {
	v, err := readUintN(data, off, 1)
	return uint8(v), err
}

func readU16(data []byte, off *int) (uint16, error) {
	v, err := readUintN(data, off, 2)
	return uint16(v), err
}

func readU32(data []byte, off *int) (uint32, error) {
	v, err := readUintN(data, off, 4)
	return uint32(v), err
}

// readFourCC reads a 4-byte type code as a string.
func readFourCC(data []byte, off *int) (string, error) {
	if *off+4 > len(data) {
		return "", fmt.Errorf("%w: truncated type code", ErrInvalidBox)
	}
	s := string(data[*off : *off+4])
	*off += 4
	return s, nil
}

// readCString reads a NUL-terminated string; a missing terminator takes the
// rest of the buffer, which some writers emit for the final field.
func readCString(data []byte, off *int) string {
	start := *off
	for *off < len(data) && data[*off] != 0 {
		*off++
	}
	s := string(data[start:*off])
	if *off < len(data) {
		*off++
	}
	return s
}
