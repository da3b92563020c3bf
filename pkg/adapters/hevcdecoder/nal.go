package hevcdecoder

import "github.com/Eyevinn/mp4ff/hevc"

// unitStore holds the most recent NAL unit of each type pushed into a
// decode session. A later unit of the same type replaces the earlier one.
// Payloads are copied at insert time; the host may reuse its buffer as
// soon as the push returns.
type unitStore map[hevc.NaluType][]byte

// classify derives the NAL unit type from the first byte of the unit
// header. The payload must be at least one byte long.
func classify(payload []byte) hevc.NaluType {
	return hevc.GetNaluType(payload[0])
}

func (s unitStore) insert(payload []byte) {
	s[classify(payload)] = append([]byte(nil), payload...)
}

func (s unitStore) clear() {
	for t := range s {
		delete(s, t)
	}
}
