package mocks

import "github.com/user/heif/pkg/ports"

// VideoCodec is a mock implementation of ports.VideoCodec. By default it
// hands out a PacketParser that emits its whole input as one packet and a
// FrameDecoder that returns Frame once per sent packet.
type VideoCodec struct {
	NameFunc            func() string
	NewParserFunc       func() (ports.PacketParser, error)
	NewFrameDecoderFunc func() (ports.FrameDecoder, error)

	// Frame and Params seed the default FrameDecoder.
	Frame  *ports.VideoFrame
	Params *ports.CodecParameters

	// Recorded calls for verification
	NewParserCalls       int
	NewFrameDecoderCalls int
}

func (m *VideoCodec) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock codec"
}

func (m *VideoCodec) NewParser() (ports.PacketParser, error) {
	m.NewParserCalls++
	if m.NewParserFunc != nil {
		return m.NewParserFunc()
	}
	return &PacketParser{}, nil
}

func (m *VideoCodec) NewFrameDecoder() (ports.FrameDecoder, error) {
	m.NewFrameDecoderCalls++
	if m.NewFrameDecoderFunc != nil {
		return m.NewFrameDecoderFunc()
	}
	return &FrameDecoder{Frame: m.Frame, Params: m.Params}, nil
}

// PacketParser is a mock implementation of ports.PacketParser. The
// default behavior consumes the whole buffer and emits it as one packet.
type PacketParser struct {
	ParseFunc func(data []byte) (int, []byte, error)
	CloseFunc func() error

	ParseCalls  int
	CloseCalled bool
}

func (m *PacketParser) Parse(data []byte) (int, []byte, error) {
	m.ParseCalls++
	if m.ParseFunc != nil {
		return m.ParseFunc(data)
	}
	return len(data), data, nil
}

func (m *PacketParser) Close() error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// FrameDecoder is a mock implementation of ports.FrameDecoder. Each sent
// packet arms one ReceiveFrame returning Frame; further receives report
// ports.ErrFrameNotReady.
type FrameDecoder struct {
	SendPacketFunc   func(packet []byte) error
	ReceiveFrameFunc func() (*ports.VideoFrame, error)
	ParametersFunc   func() (*ports.CodecParameters, error)
	CloseFunc        func() error

	Frame  *ports.VideoFrame
	Params *ports.CodecParameters

	SentPackets [][]byte
	CloseCalled bool

	pending int
}

func (m *FrameDecoder) SendPacket(packet []byte) error {
	m.SentPackets = append(m.SentPackets, append([]byte(nil), packet...))
	if m.SendPacketFunc != nil {
		return m.SendPacketFunc(packet)
	}
	m.pending++
	return nil
}

func (m *FrameDecoder) ReceiveFrame() (*ports.VideoFrame, error) {
	if m.ReceiveFrameFunc != nil {
		return m.ReceiveFrameFunc()
	}
	if m.pending == 0 || m.Frame == nil {
		return nil, ports.ErrFrameNotReady
	}
	m.pending--
	return m.Frame, nil
}

func (m *FrameDecoder) Parameters() (*ports.CodecParameters, error) {
	if m.ParametersFunc != nil {
		return m.ParametersFunc()
	}
	if m.Params != nil {
		return m.Params, nil
	}
	return &ports.CodecParameters{
		ColorRange:     ports.ColorRangeUnspecified,
		ColorPrimaries: 2,
		Transfer:       2,
		Matrix:         2,
	}, nil
}

func (m *FrameDecoder) Close() error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.VideoCodec = (*VideoCodec)(nil)
var _ ports.PacketParser = (*PacketParser)(nil)
var _ ports.FrameDecoder = (*FrameDecoder)(nil)
