package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/user/heif/pkg/adapters/hevcdecoder"
	"github.com/user/heif/pkg/mocks"
	"github.com/user/heif/pkg/pipeline"
	"github.com/user/heif/pkg/ports"
)

// --- synthetic file construction ---

func u16be(v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b[:]
}

func u32be(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func bx(typ string, parts ...[]byte) []byte {
	body := cat(parts...)
	out := make([]byte, 8, 8+len(body))
	binary.BigEndian.PutUint32(out, uint32(8+len(body)))
	copy(out[4:], typ)
	return append(out, body...)
}

func fbx(typ string, version byte, flags uint32, parts ...[]byte) []byte {
	vf := []byte{version, byte(flags >> 16), byte(flags >> 8), byte(flags)}
	return bx(typ, cat(vf, cat(parts...)))
}

// testHVCC builds a decoder configuration carrying one VPS, SPS and PPS.
func testHVCC() []byte {
	hdr := make([]byte, 23)
	hdr[0] = 1    // configurationVersion
	hdr[1] = 0x01 // main profile
	hdr[12] = 120 // level 4.0
	hdr[13] = 0xF0
	hdr[15] = 0xFC
	hdr[16] = 0xFD // chroma 4:2:0
	hdr[17] = 0xF8 // 8-bit luma
	hdr[18] = 0xF8
	hdr[21] = 0x03 // 4-byte NAL lengths
	hdr[22] = 3
	return bx("hvcC", hdr,
		hvccArray(32, []byte{0x40, 0x01}),
		hvccArray(33, []byte{0x42, 0x01}),
		hvccArray(34, []byte{0x44, 0x01}),
	)
}

func hvccArray(naluType byte, units ...[]byte) []byte {
	out := []byte{0x80 | naluType}
	out = append(out, u16be(uint16(len(units)))...)
	for _, u := range units {
		out = append(out, u16be(uint16(len(u)))...)
		out = append(out, u...)
	}
	return out
}

func ispe(w, h uint32) []byte {
	return fbx("ispe", 0, 0, u32be(w), u32be(h))
}

// buildHEIF assembles a one-item hvc1 file whose payload lands in the
// mdat right after ftyp.
func buildHEIF(payload []byte) []byte {
	ftyp := bx("ftyp", []byte("heic"), u32be(0), []byte("mif1"))
	offset := uint32(len(ftyp) + 8)
	mdat := bx("mdat", payload)

	hdlr := fbx("hdlr", 0, 0, u32be(0), []byte("pict"), u32be(0), u32be(0), u32be(0), []byte{0})
	pitm := fbx("pitm", 0, 0, u16be(1))
	iinf := fbx("iinf", 0, 0, u16be(1),
		fbx("infe", 2, 0, u16be(1), u16be(0), []byte("hvc1"), []byte{0}))
	iprp := bx("iprp",
		bx("ipco", ispe(64, 48), testHVCC()),
		fbx("ipma", 0, 0, u32be(1), u16be(1), []byte{2, 0x01, 0x82}))
	iloc := fbx("iloc", 0, 0, []byte{0x44, 0x00}, u16be(1),
		u16be(1), u16be(0), u16be(1), u32be(offset), u32be(uint32(len(payload))))
	meta := fbx("meta", 0, 0, cat(hdlr, pitm, iinf, iprp, iloc))

	return cat(ftyp, mdat, meta)
}

// idrPayload is one length-prefixed IDR slice.
func idrPayload() []byte {
	return cat(u32be(2), []byte{0x26, 0x01})
}

// testCodec returns a mock backend producing one 64x48 8-bit frame with
// full-range BT.709 colorimetry.
func testCodec() *mocks.VideoCodec {
	return &mocks.VideoCodec{
		Frame: &ports.VideoFrame{
			Width:   64,
			Height:  48,
			Format:  ports.PixelFormatYUV420P,
			Planes:  [][]byte{make([]byte, 64*48), make([]byte, 32*24), make([]byte, 32*24)},
			Strides: []int{64, 32, 32},
		},
		Params: &ports.CodecParameters{
			ColorRange:     ports.ColorRangeJPEG,
			ColorPrimaries: 1,
			Transfer:       1,
			Matrix:         1,
		},
	}
}

// --- tests ---

func TestStageDecodesPrimaryItem(t *testing.T) {
	plugin := hevcdecoder.New(hevcdecoder.WithCodec(testCodec()))
	stage := NewStage(mocks.NewDebugSink(false), mocks.NewLogger(), WithPlugin(plugin))

	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{Data: buildHEIF(idrPayload())})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Image == nil {
		t.Fatal("no image decoded")
	}
	if result.Image.Width() != 64 || result.Image.Height() != 48 {
		t.Errorf("image = %dx%d, want 64x48", result.Image.Width(), result.Image.Height())
	}
	if result.Container.MajorBrand != "heic" {
		t.Errorf("MajorBrand = %q, want heic", result.Container.MajorBrand)
	}
	if result.Container.ItemCount != 1 {
		t.Errorf("ItemCount = %d, want 1", result.Container.ItemCount)
	}
	if result.Container.PrimaryItemType != "hvc1" {
		t.Errorf("PrimaryItemType = %q, want hvc1", result.Container.PrimaryItemType)
	}
	nclx := result.Image.NCLX()
	if nclx == nil || !nclx.FullRange {
		t.Errorf("NCLX = %+v, want the codec's full-range colorimetry", nclx)
	}
}

func TestStageSavesDebugArtifacts(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	plugin := hevcdecoder.New(
		hevcdecoder.WithCodec(testCodec()),
		hevcdecoder.WithBitstreamTap(func(stream []byte) { sink.SaveBitstream(stream) }),
	)
	stage := NewStage(sink, mocks.NewLogger(), WithPlugin(plugin))

	if _, err := stage.Execute(context.Background(), pipeline.DecodeInput{Data: buildHEIF(idrPayload())}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !bytes.Contains(sink.ContainerJSON, []byte(`"heic"`)) {
		t.Errorf("container JSON %s does not carry the brand", sink.ContainerJSON)
	}
	if !bytes.HasPrefix(sink.Bitstream, []byte{0x00, 0x00, 0x00, 0x01}) {
		t.Errorf("bitstream does not start with a start code: % x", sink.Bitstream)
	}
	wantPlanes := 64*48 + 2*32*24
	if len(sink.RawPlanes) != wantPlanes {
		t.Errorf("raw planes = %d bytes, want %d", len(sink.RawPlanes), wantPlanes)
	}
}

func TestStageInvalidContainer(t *testing.T) {
	stage := NewStage(mocks.NewDebugSink(false), mocks.NewLogger())

	_, err := stage.Execute(context.Background(), pipeline.DecodeInput{Data: []byte("not a container")})
	if err == nil {
		t.Fatal("expected an error for a malformed container")
	}
}

func TestStageCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plugin := hevcdecoder.New(hevcdecoder.WithCodec(testCodec()))
	stage := NewStage(mocks.NewDebugSink(false), mocks.NewLogger(), WithPlugin(plugin))

	if _, err := stage.Execute(ctx, pipeline.DecodeInput{Data: buildHEIF(idrPayload())}); err == nil {
		t.Fatal("expected a context error")
	}
}
