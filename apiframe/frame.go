// Package apiframe implements the XBee 802.15.4 API frame format: framing,
// the typed frame grammar, and lazy encoders for outbound requests.
//
// Frame layout:
//
//	+-------+--------+--------+-----------------+----------+
//	| Start | Len Hi | Len Lo |     Payload     | Checksum |
//	+-------+--------+--------+-----------------+----------+
//	| 0x7E  | 1 byte | 1 byte | 1-65535 bytes   |  1 byte  |
//	+-------+--------+--------+-----------------+----------+
//
// The checksum is 0xFF minus the wrapped sum of the payload bytes.
package apiframe

import (
	"encoding/binary"
	"io"
)

const (
	Start  = 0x7E
	Escape = 0x7D
	XON    = 0x11
	XOFF   = 0x13
)

const (
	// HeaderSize is the start delimiter plus the 16-bit length.
	HeaderSize = 3
	// Overhead is every framing byte around the payload.
	Overhead      = HeaderSize + 1
	MaxPayloadLen = 0xFFFF
)

type packState uint8

const (
	packStart packState = iota
	packLengthHigh
	packLengthLow
	packData
	packDone
)

// Packer lazily frames a payload. Bytes are produced one at a time by Next, so
// a frame never has to be materialised in memory. A Packer is single use.
type Packer struct {
	state     packState
	escaped   bool
	encrypted bool
	data      ByteSource
	length    uint16
	checksum  byte
}

// NewPacker returns a Packer framing the bytes of data. The payload must hold
// between 1 and 65535 bytes.
func NewPacker(data ByteSource) (*Packer, error) {
	return newPacker(data, false, false)
}

// TODO: escaped mode (stuff Start/Escape/XON/XOFF as Escape, b^0x20) once a
// receiver for AP=2 framing exists.
func newPacker(data ByteSource, escaped, encrypted bool) (*Packer, error) {
	n := data.Len()
	if n == 0 {
		return nil, ErrTooShort
	}
	if n > MaxPayloadLen {
		return nil, ErrTooLong
	}

	return &Packer{
		state:     packStart,
		escaped:   escaped,
		encrypted: encrypted,
		data:      data,
		length:    uint16(n),
	}, nil
}

// Next returns the next frame byte, or false once the checksum has been
// produced.
func (p *Packer) Next() (byte, bool) {
	switch p.state {
	case packStart:
		p.state = packLengthHigh
		return Start, true
	case packLengthHigh:
		p.state = packLengthLow
		return byte(p.length >> 8), true
	case packLengthLow:
		p.state = packData
		return byte(p.length), true
	case packData:
		if c, ok := p.data.Next(); ok {
			p.checksum += c
			return c, true
		}
		p.state = packDone
		return 0xFF - p.checksum, true
	default:
		return 0, false
	}
}

// Len returns the number of frame bytes not yet produced.
func (p *Packer) Len() int {
	switch p.state {
	case packStart:
		return Overhead + p.data.Len()
	case packLengthHigh:
		return 2 + p.data.Len() + 1
	case packLengthLow:
		return 1 + p.data.Len() + 1
	case packData:
		return p.data.Len() + 1
	default:
		return 0
	}
}

// Read fills b with the next frame bytes. It returns io.EOF once the frame is
// exhausted.
func (p *Packer) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		c, ok := p.Next()
		if !ok {
			break
		}
		b[n] = c
		n++
	}
	if n == 0 && len(b) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// WriteTo streams the remaining frame bytes to w through a small stack buffer.
func (p *Packer) WriteTo(w io.Writer) (int64, error) {
	var chunk [64]byte
	var total int64
	for {
		n, _ := p.Read(chunk[:])
		if n == 0 {
			return total, nil
		}
		written, err := w.Write(chunk[:n])
		total += int64(written)
		if err != nil {
			return total, err
		}
		if written != n {
			return total, io.ErrShortWrite
		}
	}
}

// Sum returns the wrapped sum of p.
func Sum(p []byte) byte {
	var sum byte
	for _, c := range p {
		sum += c
	}
	return sum
}

// Checksum returns the checksum byte that closes a frame carrying payload.
func Checksum(payload []byte) byte {
	return 0xFF - Sum(payload)
}

// Unpack validates the frame at the start of buf and returns its payload and
// whatever follows the frame. Both results alias buf. Only the leading frame is
// examined, so Unpack can be applied repeatedly to rest.
func Unpack(buf []byte) (payload, rest []byte, err error) {
	return unpack(buf, false, false)
}

func unpack(buf []byte, escaped, _ bool) (payload, rest []byte, err error) {
	if len(buf) == 0 {
		return nil, nil, ErrNoStart
	}
	if escaped {
		return nil, nil, ErrEscapingUnsupported
	}
	if buf[0] != Start {
		return nil, nil, ErrNoStart
	}
	if len(buf) < HeaderSize {
		return nil, nil, &LengthError{Need: Overhead, Have: len(buf)}
	}

	n := int(binary.BigEndian.Uint16(buf[1:HeaderSize]))
	body := buf[HeaderSize:]
	if n+1 > len(body) {
		return nil, nil, &LengthError{Need: Overhead + n, Have: len(buf)}
	}

	payload, checksum, rest := body[:n], body[n], body[n+1:]
	sum := Sum(payload)
	if checksum+sum != 0xFF {
		return nil, nil, &ChecksumError{Sum: sum, Checksum: checksum}
	}
	return payload, rest, nil
}

// FrameLen returns the total size of the frame starting at buf[0] as declared
// by its length field, or false if buf does not begin with a full header.
func FrameLen(buf []byte) (int, bool) {
	if len(buf) < HeaderSize || buf[0] != Start {
		return 0, false
	}
	return Overhead + int(binary.BigEndian.Uint16(buf[1:HeaderSize])), true
}
