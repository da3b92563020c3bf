package bmff

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestParseIlocVariants(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		id      uint32
		want    itemLocation
	}{
		{
			name: "version 0",
			payload: cat([]byte{0, 0, 0, 0},
				u16be(0x4400), u16be(1),
				u16be(7), u16be(0), u16be(1),
				u32be(100), u32be(20),
			),
			id:   7,
			want: itemLocation{extents: []itemExtent{{offset: 100, length: 20}}},
		},
		{
			name: "version 0 with base offset",
			payload: cat([]byte{0, 0, 0, 0},
				u16be(0x4440), u16be(1),
				u16be(7), u16be(0), u32be(1000), u16be(1),
				u32be(4), u32be(8),
			),
			id:   7,
			want: itemLocation{baseOffset: 1000, extents: []itemExtent{{offset: 4, length: 8}}},
		},
		{
			name: "version 1 construction method",
			payload: cat([]byte{1, 0, 0, 0},
				u16be(0x4400), u16be(1),
				u16be(7), u16be(1), u16be(0), u16be(1),
				u32be(0), u32be(12),
			),
			id:   7,
			want: itemLocation{constructionMethod: 1, extents: []itemExtent{{length: 12}}},
		},
		{
			name: "version 1 extent index skipped",
			payload: cat([]byte{1, 0, 0, 0},
				u16be(0x4404), u16be(1),
				u16be(7), u16be(0), u16be(0), u16be(1),
				u32be(0xDEAD), u32be(100), u32be(20),
			),
			id:   7,
			want: itemLocation{extents: []itemExtent{{offset: 100, length: 20}}},
		},
		{
			name: "version 2 wide item id",
			payload: cat([]byte{2, 0, 0, 0},
				u16be(0x4400), u32be(1),
				u32be(70000), u16be(0), u16be(0), u16be(1),
				u32be(100), u32be(20),
			),
			id:   70000,
			want: itemLocation{extents: []itemExtent{{offset: 100, length: 20}}},
		},
		{
			name: "multiple extents",
			payload: cat([]byte{0, 0, 0, 0},
				u16be(0x4400), u16be(1),
				u16be(7), u16be(0), u16be(2),
				u32be(10), u32be(4),
				u32be(30), u32be(6),
			),
			id: 7,
			want: itemLocation{extents: []itemExtent{
				{offset: 10, length: 4},
				{offset: 30, length: 6},
			}},
		},
		{
			name: "64-bit offsets",
			payload: cat([]byte{0, 0, 0, 0},
				u16be(0x8800), u16be(1),
				u16be(7), u16be(0), u16be(1),
				u64be(100), u64be(20),
			),
			id:   7,
			want: itemLocation{extents: []itemExtent{{offset: 100, length: 20}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{locations: make(map[uint32]*itemLocation)}
			if err := parseIloc(f, tt.payload); err != nil {
				t.Fatalf("parseIloc: %v", err)
			}
			loc, ok := f.locations[tt.id]
			if !ok {
				t.Fatalf("no location for item %d", tt.id)
			}
			if !reflect.DeepEqual(*loc, tt.want) {
				t.Errorf("location = %+v, want %+v", *loc, tt.want)
			}
		})
	}
}

func TestParseIlocTruncated(t *testing.T) {
	payload := cat([]byte{0, 0, 0, 0}, u16be(0x4400), u16be(1), u16be(7))
	f := &File{locations: make(map[uint32]*itemLocation)}
	if err := parseIloc(f, payload); !errors.Is(err, ErrInvalidBox) {
		t.Errorf("parseIloc = %v, want invalid box", err)
	}
}

func TestParseIpma(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		id      uint32
		want    []uint16
	}{
		{
			name: "narrow indices",
			payload: cat([]byte{0, 0, 0, 0}, u32be(1),
				u16be(1), []byte{2, 0x81, 0x02},
			),
			id:   1,
			want: []uint16{1, 2},
		},
		{
			name: "wide indices",
			payload: cat([]byte{0, 0, 0, 1}, u32be(1),
				u16be(1), []byte{2}, u16be(0x8003), u16be(0x0104),
			),
			id:   1,
			want: []uint16{3, 0x104},
		},
		{
			name: "version 1 wide item id",
			payload: cat([]byte{1, 0, 0, 0}, u32be(1),
				u32be(70000), []byte{1, 0x01},
			),
			id:   70000,
			want: []uint16{1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{associations: make(map[uint32][]uint16)}
			if err := parseIpma(f, tt.payload); err != nil {
				t.Fatalf("parseIpma: %v", err)
			}
			if !reflect.DeepEqual(f.associations[tt.id], tt.want) {
				t.Errorf("associations = %v, want %v", f.associations[tt.id], tt.want)
			}
		})
	}
}

func TestParseInfe(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		wantID   uint32
		wantType string
		wantName string
	}{
		{
			name:     "version 2",
			payload:  cat([]byte{2, 0, 0, 0}, u16be(1), u16be(0), []byte("hvc1"), []byte("main\x00")),
			wantID:   1,
			wantType: "hvc1",
			wantName: "main",
		},
		{
			name:     "version 3 wide id",
			payload:  cat([]byte{3, 0, 0, 0}, u32be(70000), u16be(0), []byte("av01"), []byte{0}),
			wantID:   70000,
			wantType: "av01",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{items: make(map[uint32]*Item)}
			if err := parseInfe(f, tt.payload); err != nil {
				t.Fatalf("parseInfe: %v", err)
			}
			it, ok := f.items[tt.wantID]
			if !ok {
				t.Fatalf("item %d not declared", tt.wantID)
			}
			if it.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", it.Type, tt.wantType)
			}
			if it.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", it.Name, tt.wantName)
			}
		})
	}
}

func TestParseColr(t *testing.T) {
	t.Run("nclx", func(t *testing.T) {
		got, err := parseColr(cat([]byte("nclx"), u16be(9), u16be(16), u16be(9), []byte{0x80}))
		if err != nil {
			t.Fatalf("parseColr: %v", err)
		}
		ci := got.(ColorInfo)
		if ci.ColorType != "nclx" || ci.Primaries != 9 || ci.Transfer != 16 || ci.Matrix != 9 {
			t.Errorf("ColorInfo = %+v", ci)
		}
		if !ci.FullRange {
			t.Error("FullRange = false, want true")
		}
	})

	t.Run("limited range", func(t *testing.T) {
		got, err := parseColr(cat([]byte("nclx"), u16be(1), u16be(1), u16be(1), []byte{0x00}))
		if err != nil {
			t.Fatalf("parseColr: %v", err)
		}
		if got.(ColorInfo).FullRange {
			t.Error("FullRange = true, want false")
		}
	})

	t.Run("icc profile", func(t *testing.T) {
		icc := []byte{0xDE, 0xAD, 0xBE, 0xEF}
		got, err := parseColr(cat([]byte("prof"), icc))
		if err != nil {
			t.Fatalf("parseColr: %v", err)
		}
		ci := got.(ColorInfo)
		if ci.ColorType != "prof" || !bytes.Equal(ci.ICC, icc) {
			t.Errorf("ColorInfo = %+v", ci)
		}
	})

	t.Run("truncated nclx", func(t *testing.T) {
		if _, err := parseColr(cat([]byte("nclx"), u16be(9))); !errors.Is(err, ErrInvalidBox) {
			t.Errorf("parseColr = %v, want invalid box", err)
		}
	})
}

func TestParseProperty(t *testing.T) {
	t.Run("ispe", func(t *testing.T) {
		p, err := parseProperty(box{boxType: "ispe", payload: cat([]byte{0, 0, 0, 0}, u32be(1920), u32be(1080))})
		if err != nil {
			t.Fatalf("parseProperty: %v", err)
		}
		ext := p.(ImageSpatialExtents)
		if ext.Width != 1920 || ext.Height != 1080 {
			t.Errorf("extents = %+v", ext)
		}
	})

	t.Run("irot", func(t *testing.T) {
		p, err := parseProperty(box{boxType: "irot", payload: []byte{3}})
		if err != nil {
			t.Fatalf("parseProperty: %v", err)
		}
		if deg := p.(Rotation).Degrees(); deg != 270 {
			t.Errorf("Degrees = %d, want 270", deg)
		}
	})

	t.Run("imir", func(t *testing.T) {
		p, err := parseProperty(box{boxType: "imir", payload: []byte{1}})
		if err != nil {
			t.Fatalf("parseProperty: %v", err)
		}
		if p.(Mirror).Axis != 1 {
			t.Errorf("Axis = %d, want 1", p.(Mirror).Axis)
		}
	})

	t.Run("pixi", func(t *testing.T) {
		p, err := parseProperty(box{boxType: "pixi", payload: cat([]byte{0, 0, 0, 0}, []byte{3, 10, 10, 10})})
		if err != nil {
			t.Fatalf("parseProperty: %v", err)
		}
		bits := p.(PixelInformation).BitsPerChannel
		if !bytes.Equal(bits, []byte{10, 10, 10}) {
			t.Errorf("BitsPerChannel = %v", bits)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		p, err := parseProperty(box{boxType: "udes", payload: []byte{1, 2}})
		if err != nil {
			t.Fatalf("parseProperty: %v", err)
		}
		u := p.(UnknownProperty)
		if u.PropertyType() != "udes" || !bytes.Equal(u.Data, []byte{1, 2}) {
			t.Errorf("UnknownProperty = %+v", u)
		}
	})
}

func TestParseIref(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    ItemReference
	}{
		{
			name:    "version 0",
			payload: cat([]byte{0, 0, 0, 0}, bx("thmb", u16be(2), u16be(2), u16be(1), u16be(3))),
			want:    ItemReference{ReferenceType: "thmb", FromID: 2, ToIDs: []uint32{1, 3}},
		},
		{
			name:    "version 1 wide ids",
			payload: cat([]byte{1, 0, 0, 0}, bx("cdsc", u32be(70000), u16be(1), u32be(1))),
			want:    ItemReference{ReferenceType: "cdsc", FromID: 70000, ToIDs: []uint32{1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{}
			if err := parseIref(f, tt.payload); err != nil {
				t.Fatalf("parseIref: %v", err)
			}
			if len(f.references) != 1 {
				t.Fatalf("references = %v", f.references)
			}
			if !reflect.DeepEqual(f.references[0], tt.want) {
				t.Errorf("reference = %+v, want %+v", f.references[0], tt.want)
			}
		})
	}
}
