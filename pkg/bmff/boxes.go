package bmff

import (
	"fmt"
)

// Property is one entry of the item property container (ipco). Concrete
// types cover the properties the decode path needs; everything else is kept
// as an UnknownProperty so association indices stay aligned.
type Property interface {
	PropertyType() string
}

// ImageSpatialExtents is the ispe property: the displayed item size.
type ImageSpatialExtents struct {
	Width  uint32
	Height uint32
}

func (ImageSpatialExtents) PropertyType() string { return "ispe" }

// Rotation is the irot property, counter-clockwise quarter turns.
type Rotation struct {
	Angle uint8 // 0..3
}

func (Rotation) PropertyType() string { return "irot" }

// Degrees returns the rotation in degrees counter-clockwise.
func (r Rotation) Degrees() int { return int(r.Angle) * 90 }

// Mirror is the imir property. Axis 0 mirrors about the vertical axis
// (left-right flip), axis 1 about the horizontal axis.
type Mirror struct {
	Axis uint8
}

func (Mirror) PropertyType() string { return "imir" }

// ColorInfo is the colr property: either an nclx code tuple or an embedded
// ICC profile.
type ColorInfo struct {
	ColorType string // "nclx", "rICC" or "prof"

	// nclx fields
	Primaries uint16
	Transfer  uint16
	Matrix    uint16
	FullRange bool

	// ICC payload for rICC/prof
	ICC []byte
}

func (ColorInfo) PropertyType() string { return "colr" }

// PixelInformation is the pixi property: bits per channel.
type PixelInformation struct {
	BitsPerChannel []uint8
}

func (PixelInformation) PropertyType() string { return "pixi" }

// UnknownProperty preserves a property this package does not interpret.
type UnknownProperty struct {
	BoxType string
	Data    []byte
}

func (p UnknownProperty) PropertyType() string { return p.BoxType }

// ItemReference is one edge of the iref box, e.g. a thumbnail ("thmb")
// pointing at its master image.
type ItemReference struct {
	ReferenceType string
	FromID        uint32
	ToIDs         []uint32
}

type itemExtent struct {
	offset uint64
	length uint64
}

type itemLocation struct {
	constructionMethod uint8
	dataReferenceIndex uint16
	baseOffset         uint64
	extents            []itemExtent
}

func parseFtyp(f *File, payload []byte) error {
	off := 0
	major, err := readFourCC(payload, &off)
	if err != nil {
		return err
	}
	f.MajorBrand = major
	if _, err := readU32(payload, &off); err != nil { // minor version
		return err
	}
	for off+4 <= len(payload) {
		brand, err := readFourCC(payload, &off)
		if err != nil {
			return err
		}
		f.CompatibleBrands = append(f.CompatibleBrands, brand)
	}
	return nil
}

func parseMeta(f *File, payload []byte) error {
	_, _, body, err := fullBox(payload)
	if err != nil {
		return err
	}
	return walkBoxes(body, func(b box) error {
		switch b.boxType {
		case "hdlr":
			return parseHdlr(f, b.payload)
		case "pitm":
			return parsePitm(f, b.payload)
		case "iinf":
			return parseIinf(f, b.payload)
		case "iloc":
			return parseIloc(f, b.payload)
		case "iprp":
			return parseIprp(f, b.payload)
		case "iref":
			return parseIref(f, b.payload)
		case "idat":
			f.idat = b.payload
		}
		return nil
	})
}

func parseHdlr(f *File, payload []byte) error {
	_, _, body, err := fullBox(payload)
	if err != nil {
		return err
	}
	off := 4 // pre_defined
	handler, err := readFourCC(body, &off)
	if err != nil {
		return err
	}
	f.HandlerType = handler
	return nil
}

func parsePitm(f *File, payload []byte) error {
	version, _, body, err := fullBox(payload)
	if err != nil {
		return err
	}
	off := 0
	if version == 0 {
		id, err := readU16(body, &off)
		if err != nil {
			return err
		}
		f.PrimaryItemID = uint32(id)
		return nil
	}
	id, err := readU32(body, &off)
	if err != nil {
		return err
	}
	f.PrimaryItemID = id
	return nil
}

func parseIinf(f *File, payload []byte) error {
	version, _, body, err := fullBox(payload)
	if err != nil {
		return err
	}
	off := 0
	if version == 0 {
		if _, err := readU16(body, &off); err != nil {
			return err
		}
	} else {
		if _, err := readU32(body, &off); err != nil {
			return err
		}
	}
	return walkBoxes(body[off:], func(b box) error {
		if b.boxType != "infe" {
			return nil
		}
		return parseInfe(f, b.payload)
	})
}

func parseInfe(f *File, payload []byte) error {
	version, _, body, err := fullBox(payload)
	if err != nil {
		return err
	}
	off := 0
	it := &Item{}
	switch {
	case version >= 3:
		id, err := readU32(body, &off)
		if err != nil {
			return err
		}
		it.ID = id
	default:
		id, err := readU16(body, &off)
		if err != nil {
			return err
		}
		it.ID = uint32(id)
	}
	if _, err := readU16(body, &off); err != nil { // protection index
		return err
	}
	if version >= 2 {
		itemType, err := readFourCC(body, &off)
		if err != nil {
			return err
		}
		it.Type = itemType
	}
	it.Name = readCString(body, &off)
	f.addItem(it)
	return nil
}

func parseIloc(f *File, payload []byte) error {
	version, _, body, err := fullBox(payload)
	if err != nil {
		return err
	}
	off := 0
	sizes, err := readU16(body, &off)
	if err != nil {
		return err
	}
	offsetSize := int(sizes >> 12 & 0xF)
	lengthSize := int(sizes >> 8 & 0xF)
	baseOffsetSize := int(sizes >> 4 & 0xF)
	indexSize := 0
	if version >= 1 {
		indexSize = int(sizes & 0xF)
	}

	var itemCount uint32
	if version < 2 {
		n, err := readU16(body, &off)
		if err != nil {
			return err
		}
		itemCount = uint32(n)
	} else {
		n, err := readU32(body, &off)
		if err != nil {
			return err
		}
		itemCount = n
	}

	for i := uint32(0); i < itemCount; i++ {
		var itemID uint32
		if version < 2 {
			id, err := readU16(body, &off)
			if err != nil {
				return err
			}
			itemID = uint32(id)
		} else {
			id, err := readU32(body, &off)
			if err != nil {
				return err
			}
			itemID = id
		}
		loc := &itemLocation{}
		if version >= 1 {
			cm, err := readU16(body, &off)
			if err != nil {
				return err
			}
			loc.constructionMethod = uint8(cm & 0xF)
		}
		dri, err := readU16(body, &off)
		if err != nil {
			return err
		}
		loc.dataReferenceIndex = dri
		loc.baseOffset, err = readUintN(body, &off, baseOffsetSize)
		if err != nil {
			return err
		}
		extentCount, err := readU16(body, &off)
		if err != nil {
			return err
		}
		for e := uint16(0); e < extentCount; e++ {
			if version >= 1 && indexSize > 0 {
				if _, err := readUintN(body, &off, indexSize); err != nil {
					return err
				}
			}
			extOffset, err := readUintN(body, &off, offsetSize)
			if err != nil {
				return err
			}
			extLength, err := readUintN(body, &off, lengthSize)
			if err != nil {
				return err
			}
			loc.extents = append(loc.extents, itemExtent{offset: extOffset, length: extLength})
		}
		f.setLocation(itemID, loc)
	}
	return nil
}

func parseIprp(f *File, payload []byte) error {
	return walkBoxes(payload, func(b box) error {
		switch b.boxType {
		case "ipco":
			return parseIpco(f, b.payload)
		case "ipma":
			return parseIpma(f, b.payload)
		}
		return nil
	})
}

func parseIpco(f *File, payload []byte) error {
	return walkBoxes(payload, func(b box) error {
		prop, err := parseProperty(b)
		if err != nil {
			return err
		}
		f.properties = append(f.properties, prop)
		return nil
	})
}

func parseProperty(b box) (Property, error) {
	switch b.boxType {
	case "ispe":
		_, _, body, err := fullBox(b.payload)
		if err != nil {
			return nil, err
		}
		off := 0
		w, err := readU32(body, &off)
		if err != nil {
			return nil, err
		}
		h, err := readU32(body, &off)
		if err != nil {
			return nil, err
		}
		return ImageSpatialExtents{Width: w, Height: h}, nil
	case "irot":
		if len(b.payload) < 1 {
			return nil, fmt.Errorf("%w: empty irot", ErrInvalidBox)
		}
		return Rotation{Angle: b.payload[0] & 0x3}, nil
	case "imir":
		if len(b.payload) < 1 {
			return nil, fmt.Errorf("%w: empty imir", ErrInvalidBox)
		}
		return Mirror{Axis: b.payload[0] & 0x1}, nil
	case "colr":
		return parseColr(b.payload)
	case "pixi":
		_, _, body, err := fullBox(b.payload)
		if err != nil {
			return nil, err
		}
		off := 0
		n, err := readU8(body, &off)
		if err != nil {
			return nil, err
		}
		p := PixelInformation{}
		for i := uint8(0); i < n; i++ {
			bits, err := readU8(body, &off)
			if err != nil {
				return nil, err
			}
			p.BitsPerChannel = append(p.BitsPerChannel, bits)
		}
		return p, nil
	case "hvcC":
		return parseHEVCConfig(b.payload)
	case "av1C":
		return parseAV1Config(b.payload)
	default:
		return UnknownProperty{BoxType: b.boxType, Data: b.payload}, nil
	}
}

func parseColr(payload []byte) (Property, error) {
	off := 0
	colorType, err := readFourCC(payload, &off)
	if err != nil {
		return nil, err
	}
	ci := ColorInfo{ColorType: colorType}
	switch colorType {
	case "nclx":
		if ci.Primaries, err = readU16(payload, &off); err != nil {
			return nil, err
		}
		if ci.Transfer, err = readU16(payload, &off); err != nil {
			return nil, err
		}
		if ci.Matrix, err = readU16(payload, &off); err != nil {
			return nil, err
		}
		rangeFlag, err := readU8(payload, &off)
		if err != nil {
			return nil, err
		}
		ci.FullRange = rangeFlag&0x80 != 0
	case "rICC", "prof":
		ci.ICC = payload[off:]
	}
	return ci, nil
}

func parseIpma(f *File, payload []byte) error {
	version, flags, body, err := fullBox(payload)
	if err != nil {
		return err
	}
	off := 0
	entryCount, err := readU32(body, &off)
	if err != nil {
		return err
	}
	wideIndex := flags&0x1 != 0
	for i := uint32(0); i < entryCount; i++ {
		var itemID uint32
		if version == 0 {
			id, err := readU16(body, &off)
			if err != nil {
				return err
			}
			itemID = uint32(id)
		} else {
			id, err := readU32(body, &off)
			if err != nil {
				return err
			}
			itemID = id
		}
		assocCount, err := readU8(body, &off)
		if err != nil {
			return err
		}
		for a := uint8(0); a < assocCount; a++ {
			var index uint16
			if wideIndex {
				v, err := readU16(body, &off)
				if err != nil {
					return err
				}
				index = v & 0x7FFF
			} else {
				v, err := readU8(body, &off)
				if err != nil {
					return err
				}
				index = uint16(v) & 0x7F
			}
			f.associations[itemID] = append(f.associations[itemID], index)
		}
	}
	return nil
}

func parseIref(f *File, payload []byte) error {
	version, _, body, err := fullBox(payload)
	if err != nil {
		return err
	}
	return walkBoxes(body, func(b box) error {
		off := 0
		ref := ItemReference{ReferenceType: b.boxType}
		if version == 0 {
			from, err := readU16(b.payload, &off)
			if err != nil {
				return err
			}
			ref.FromID = uint32(from)
		} else {
			from, err := readU32(b.payload, &off)
			if err != nil {
				return err
			}
			ref.FromID = from
		}
		count, err := readU16(b.payload, &off)
		if err != nil {
			return err
		}
		for i := uint16(0); i < count; i++ {
			if version == 0 {
				to, err := readU16(b.payload, &off)
				if err != nil {
					return err
				}
				ref.ToIDs = append(ref.ToIDs, uint32(to))
			} else {
				to, err := readU32(b.payload, &off)
				if err != nil {
					return err
				}
				ref.ToIDs = append(ref.ToIDs, to)
			}
		}
		f.references = append(f.references, ref)
		return nil
	})
}
