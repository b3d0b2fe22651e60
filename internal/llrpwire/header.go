// Package llrpwire implements the 10-byte LLRP message frame header and
// TCP stream framing (Spec 4.3, 4.6, 6): `Rsvd(3)=0 | Ver(3)=1 |
// Type(10) | Length(u32) | MessageID(u32)`. It plays the role the
// teacher's message.MessageHeader/StreamReader/StreamWriter play for
// Matter frames, adapted to LLRP's fixed 10-byte header and 4-byte
// whole-frame Length instead of Matter's variable header.
package llrpwire

import (
	"encoding/binary"
	"errors"

	"github.com/openllrp/llrp/pkg/bitstream"
)

// HeaderSize is the fixed size in octets of the LLRP message header.
const HeaderSize = 10

// Version is the only LLRP version this module speaks (Spec 6).
const Version = 1

// ErrUnsupportedVersion is returned when a frame declares a version
// this module does not implement.
var ErrUnsupportedVersion = errors.New("llrpwire: unsupported version")

// ErrTruncatedHeader is returned when fewer than HeaderSize bytes are
// available.
var ErrTruncatedHeader = errors.New("llrpwire: truncated header")

// Header is the fixed LLRP message frame header.
type Header struct {
	Version   uint8
	Type      uint16 // 0..1023
	Length    uint32 // whole frame, in octets, including this header
	MessageID uint32
}

// Encode writes the header to a new 10-byte buffer.
func (h *Header) Encode() []byte {
	w := bitstream.NewWriter()
	w.WriteUint(3, 0) //nolint:errcheck // reserved, always 0
	w.WriteUint(3, uint64(h.Version))
	w.WriteUint(10, uint64(h.Type))
	w.AlignToOctet()
	buf := w.Bytes()
	var rest [8]byte
	binary.BigEndian.PutUint32(rest[0:4], h.Length)
	binary.BigEndian.PutUint32(rest[4:8], h.MessageID)
	return append(buf, rest[:]...)
}

// DecodeHeader parses the fixed 10-byte header from the front of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, ErrTruncatedHeader
	}
	r := bitstream.NewReader(data[:2])
	r.ReadUint(3) //nolint:errcheck // reserved bits, ignored
	ver, _ := r.ReadUint(3)
	typ, _ := r.ReadUint(10)

	h := Header{
		Version: uint8(ver),
		Type:    uint16(typ),
		Length:  binary.BigEndian.Uint32(data[2:6]),
		MessageID: binary.BigEndian.Uint32(data[6:10]),
	}
	return h, nil
}
