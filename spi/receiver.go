package spi

import "github.com/MasandeM/xbee/apiframe"

// Receiver reads frames out of the receive buffer. Content returned by Decode
// and Next aliases the buffer and is valid until Consume or the next Poll.
type Receiver struct {
	t        *Transport
	released bool
}

func (r *Receiver) Len() int {
	if r.released {
		return 0
	}
	return r.t.rx.Len()
}

// Bytes returns the buffered bytes without removing them.
func (r *Receiver) Bytes() []byte {
	if r.released {
		return nil
	}
	return r.t.rx.Bytes()
}

// DiscardToStart drops everything ahead of the first start delimiter.
func (r *Receiver) DiscardToStart() error {
	if r.released {
		return ErrReleased
	}
	r.t.scan.DiscardToStart()
	return nil
}

// AdvancePastFrame skips the candidate frame at the front of the buffer.
func (r *Receiver) AdvancePastFrame() error {
	if r.released {
		return ErrReleased
	}
	r.t.scan.AdvancePastFrame()
	return nil
}

// Decode parses the frame at the front of the buffer without removing it.
func (r *Receiver) Decode() (apiframe.Content, error) {
	if r.released {
		return nil, ErrReleased
	}
	return r.t.scan.Decode()
}

// Next returns the first valid frame in the buffer, dropping noise and
// corrupt frames ahead of it. It returns ErrIncomplete if more bytes are
// needed.
func (r *Receiver) Next() (apiframe.Content, error) {
	if r.released {
		return nil, ErrReleased
	}
	return r.t.scan.Next()
}

// Consume removes the frame at the front of the buffer.
func (r *Receiver) Consume() error {
	if r.released {
		return ErrReleased
	}
	r.t.scan.Consume()
	return nil
}

func (r *Receiver) Release() {
	if !r.released {
		r.released = true
		r.t.release()
	}
}
