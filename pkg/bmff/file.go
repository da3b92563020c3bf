package bmff

import (
	"encoding/binary"
	"fmt"
)

// Item is one entry of the item information box, with the properties the
// ipma box associates to it.
type Item struct {
	ID         uint32
	Type       string // "hvc1", "av01", "Exif", "mime", ...
	Name       string
	Properties []Property
}

// SpatialExtents returns the item's ispe property.
func (it *Item) SpatialExtents() (ImageSpatialExtents, bool) {
	for _, p := range it.Properties {
		if ispe, ok := p.(ImageSpatialExtents); ok {
			return ispe, true
		}
	}
	return ImageSpatialExtents{}, false
}

// RotationDegrees returns the irot rotation in degrees counter-clockwise,
// 0 when the item carries none.
func (it *Item) RotationDegrees() int {
	for _, p := range it.Properties {
		if rot, ok := p.(Rotation); ok {
			return rot.Degrees()
		}
	}
	return 0
}

// MirrorAxis returns the imir property.
func (it *Item) MirrorAxis() (Mirror, bool) {
	for _, p := range it.Properties {
		if m, ok := p.(Mirror); ok {
			return m, true
		}
	}
	return Mirror{}, false
}

// HEVCConfig returns the item's hvcC property.
func (it *Item) HEVCConfig() (*HEVCConfig, bool) {
	for _, p := range it.Properties {
		if c, ok := p.(*HEVCConfig); ok {
			return c, true
		}
	}
	return nil, false
}

// AV1Config returns the item's av1C property.
func (it *Item) AV1Config() (*AV1Config, bool) {
	for _, p := range it.Properties {
		if c, ok := p.(*AV1Config); ok {
			return c, true
		}
	}
	return nil, false
}

// NCLXColor returns the item's colr property of type nclx, skipping ICC
// variants.
func (it *Item) NCLXColor() (ColorInfo, bool) {
	for _, p := range it.Properties {
		if ci, ok := p.(ColorInfo); ok && ci.ColorType == "nclx" {
			return ci, true
		}
	}
	return ColorInfo{}, false
}

// File is one parsed HEIF file. Item payload slices returned from it alias
// the buffer given to Parse.
type File struct {
	MajorBrand       string
	CompatibleBrands []string
	HandlerType      string
	PrimaryItemID    uint32

	data         []byte
	items        map[uint32]*Item
	order        []uint32
	properties   []Property
	associations map[uint32][]uint16
	locations    map[uint32]*itemLocation
	references   []ItemReference
	idat         []byte
}

// Parse reads the box structure of a complete file held in memory.
func Parse(data []byte) (*File, error) {
	f := &File{
		data:         data,
		items:        make(map[uint32]*Item),
		associations: make(map[uint32][]uint16),
		locations:    make(map[uint32]*itemLocation),
	}
	ftypSeen := false
	metaSeen := false
	err := walkBoxes(data, func(b box) error {
		switch b.boxType {
		case "ftyp":
			ftypSeen = true
			return parseFtyp(f, b.payload)
		case "meta":
			metaSeen = true
			return parseMeta(f, b.payload)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !ftypSeen {
		return nil, ErrNotHEIF
	}
	if !metaSeen {
		return nil, ErrNoMeta
	}
	if f.HandlerType != "" && f.HandlerType != "pict" {
		return nil, fmt.Errorf("%w: handler %q", ErrNotHEIF, f.HandlerType)
	}
	f.bindProperties()
	return f, nil
}

func (f *File) addItem(it *Item) {
	if _, exists := f.items[it.ID]; !exists {
		f.order = append(f.order, it.ID)
	}
	f.items[it.ID] = it
}

func (f *File) setLocation(id uint32, loc *itemLocation) {
	f.locations[id] = loc
}

func (f *File) bindProperties() {
	for id, indices := range f.associations {
		it, ok := f.items[id]
		if !ok {
			continue
		}
		for _, idx := range indices {
			if idx >= 1 && int(idx) <= len(f.properties) {
				it.Properties = append(it.Properties, f.properties[idx-1])
			}
		}
	}
}

// HasBrand reports whether the major or any compatible brand matches.
func (f *File) HasBrand(brand string) bool {
	if f.MajorBrand == brand {
		return true
	}
	for _, b := range f.CompatibleBrands {
		if b == brand {
			return true
		}
	}
	return false
}

// Items returns all declared items in file order.
func (f *File) Items() []*Item {
	out := make([]*Item, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.items[id])
	}
	return out
}

// Item returns one item by id.
func (f *File) Item(id uint32) (*Item, bool) {
	it, ok := f.items[id]
	return it, ok
}

// PrimaryItem returns the item the pitm box designates.
func (f *File) PrimaryItem() (*Item, error) {
	it, ok := f.items[f.PrimaryItemID]
	if !ok {
		return nil, fmt.Errorf("%w: primary item %d", ErrItemNotFound, f.PrimaryItemID)
	}
	return it, nil
}

// References returns the iref edges of one reference type.
func (f *File) References(referenceType string) []ItemReference {
	var out []ItemReference
	for _, ref := range f.references {
		if ref.ReferenceType == referenceType {
			out = append(out, ref)
		}
	}
	return out
}

// ThumbnailOf returns the thumbnail item of a master image, following the
// thmb reference pointing at it.
func (f *File) ThumbnailOf(masterID uint32) (*Item, bool) {
	for _, ref := range f.references {
		if ref.ReferenceType != "thmb" {
			continue
		}
		for _, to := range ref.ToIDs {
			if to == masterID {
				it, ok := f.items[ref.FromID]
				return it, ok
			}
		}
	}
	return nil, false
}

// ItemData assembles the encoded bytes of an item from its iloc extents.
// Single-extent items return a slice aliasing the file buffer.
func (f *File) ItemData(it *Item) ([]byte, error) {
	loc, ok := f.locations[it.ID]
	if !ok || len(loc.extents) == 0 {
		return nil, fmt.Errorf("%w: item %d", ErrNoItemData, it.ID)
	}
	var src []byte
	switch loc.constructionMethod {
	case 0:
		src = f.data
	case 1:
		src = f.idat
	default:
		return nil, fmt.Errorf("%w: item %d uses construction method %d",
			ErrNoItemData, it.ID, loc.constructionMethod)
	}

	segments := make([][]byte, 0, len(loc.extents))
	total := 0
	for _, ext := range loc.extents {
		start := loc.baseOffset + ext.offset
		end := start + ext.length
		if ext.length == 0 {
			end = uint64(len(src))
		}
		if start > end || end > uint64(len(src)) {
			return nil, fmt.Errorf("%w: item %d extent [%d:%d] outside %d bytes",
				ErrInvalidBox, it.ID, start, end, len(src))
		}
		segments = append(segments, src[start:end])
		total += int(end - start)
	}
	if len(segments) == 1 {
		return segments[0], nil
	}
	out := make([]byte, 0, total)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	return out, nil
}

// ExifItem returns the first Exif metadata item, if any.
func (f *File) ExifItem() (*Item, bool) {
	for _, id := range f.order {
		if f.items[id].Type == "Exif" {
			return f.items[id], true
		}
	}
	return nil, false
}

// ExifData returns the raw Exif/TIFF payload of the first Exif item,
// stripping the exif_tiff_header_offset prefix HEIF wraps it in.
func (f *File) ExifData() ([]byte, error) {
	it, ok := f.ExifItem()
	if !ok {
		return nil, fmt.Errorf("%w: no Exif item", ErrItemNotFound)
	}
	data, err := f.ItemData(it)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: Exif item of %d bytes", ErrInvalidBox, len(data))
	}
	skip := 4 + int(binary.BigEndian.Uint32(data))
	if skip > len(data) {
		return nil, fmt.Errorf("%w: Exif header offset %d outside item", ErrInvalidBox, skip)
	}
	return data[skip:], nil
}
