package llrpwire

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrFraming is returned when a frame's declared Length is smaller than
// the header itself or exceeds the configured maximum (Spec 4.6).
var ErrFraming = errors.New("llrpwire: framing error")

// DefaultMaxFrameSize bounds a single frame to 64 KiB, comfortably above
// any LLRP message this module's SpecModel fixture can produce, while
// still rejecting a runaway Length field from a misbehaving peer.
const DefaultMaxFrameSize = 64 * 1024

// StreamReader reads length-framed LLRP messages off a byte stream
// (Spec 4.6): it reads the fixed 10-byte header, then the
// `Length - 10` body bytes the header's Length field promises.
type StreamReader struct {
	r          io.Reader
	maxFrame   uint32
}

// NewStreamReader wraps r for LLRP frame reading, bounding frames to
// maxFrame octets (DefaultMaxFrameSize if 0).
func NewStreamReader(r io.Reader, maxFrame uint32) *StreamReader {
	if maxFrame == 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &StreamReader{r: r, maxFrame: maxFrame}
}

// ReadFrame reads one complete LLRP frame (header + body) and returns
// the header and the full frame bytes (header included, for Codec
// decode).
func (sr *StreamReader) ReadFrame() (Header, []byte, error) {
	var hdrBuf [HeaderSize]byte
	if _, err := io.ReadFull(sr.r, hdrBuf[:]); err != nil {
		return Header{}, nil, err
	}
	h, err := DecodeHeader(hdrBuf[:])
	if err != nil {
		return Header{}, nil, err
	}
	if h.Length < HeaderSize || h.Length > sr.maxFrame {
		return Header{}, nil, ErrFraming
	}

	bodyLen := h.Length - HeaderSize
	frame := make([]byte, h.Length)
	copy(frame, hdrBuf[:])
	if bodyLen > 0 {
		if _, err := io.ReadFull(sr.r, frame[HeaderSize:]); err != nil {
			return Header{}, nil, err
		}
	}
	return h, frame, nil
}

// StreamWriter writes complete LLRP frames to a byte stream.
type StreamWriter struct {
	w io.Writer
}

// NewStreamWriter wraps w for LLRP frame writing.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// WriteFrame writes a fully encoded frame (header + body) as produced by
// the Codec.
func (sw *StreamWriter) WriteFrame(frame []byte) error {
	_, err := sw.w.Write(frame)
	return err
}

// PatchLength back-patches the 4-byte Length field of an encoded frame
// once the total size is known, matching the Codec's "two-pass or
// back-patch" framing note (Spec 4.3).
func PatchLength(frame []byte) {
	binary.BigEndian.PutUint32(frame[2:6], uint32(len(frame)))
}
