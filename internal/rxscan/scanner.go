// Package rxscan finds and decodes API frames in a receive buffer that may hold
// partial frames, line noise or corrupt frames ahead of good ones.
package rxscan

import (
	"errors"

	"go.uber.org/zap"

	"github.com/MasandeM/xbee/apiframe"
	"github.com/MasandeM/xbee/internal/queue"
)

// ErrIncomplete means the buffer holds no complete frame yet.
var ErrIncomplete = errors.New("rxscan: no complete frame buffered")

// Scanner works on the front of a queue.Buffer. Decoded content aliases the
// buffer, so a frame stays buffered until Consume.
type Scanner struct {
	buf *queue.Buffer
	log *zap.Logger

	// OnReject, if set, is called with the reason for every candidate frame
	// skipped by Next.
	OnReject func(err error)
}

func New(buf *queue.Buffer, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{buf: buf, log: log}
}

// DiscardToStart drops bytes ahead of the first start delimiter. Without a
// delimiter the buffer is emptied.
func (s *Scanner) DiscardToStart() {
	b := s.buf.Bytes()
	i := apiframe.IndexStart(b)
	if i < 0 {
		i = len(b)
	}
	if i > 0 {
		s.log.Debug("discarding bytes ahead of start delimiter", zap.Int("count", i))
		s.buf.Discard(i)
	}
}

// AdvancePastFrame drops the delimiter at the front and moves on to the next
// one. It is how a corrupt candidate is skipped.
func (s *Scanner) AdvancePastFrame() {
	s.buf.Discard(1)
	s.DiscardToStart()
}

// Decode parses the frame at the front of the buffer without removing it.
func (s *Scanner) Decode() (apiframe.Content, error) {
	payload, _, err := apiframe.Unpack(s.buf.Bytes())
	if err != nil {
		return nil, err
	}
	return apiframe.Parse(payload)
}

// Consume removes the frame at the front of the buffer. It removes a single
// byte if the front does not hold a frame header.
func (s *Scanner) Consume() {
	n, ok := apiframe.FrameLen(s.buf.Bytes())
	if !ok {
		n = 1
	}
	s.buf.Discard(n)
}

// Next returns the first decodable frame, skipping corrupt candidates. The
// frame stays at the front of the buffer until Consume. It returns
// ErrIncomplete when more bytes are needed.
//
// A candidate whose declared length runs past the buffered bytes is normally
// waited for. It is abandoned when a complete frame with a valid checksum is
// already buffered behind it, so a stray delimiter cannot hold back good
// frames.
func (s *Scanner) Next() (apiframe.Content, error) {
	for {
		s.DiscardToStart()
		if s.buf.Empty() {
			return nil, ErrIncomplete
		}

		c, err := s.Decode()
		if err == nil {
			return c, nil
		}

		if errors.Is(err, apiframe.ErrBadLength) {
			if n, ok := apiframe.FrameLen(s.buf.Bytes()); ok && n > s.buf.Cap() {
				// can never fit, treat the delimiter as noise
				s.log.Warn("frame exceeds receive buffer", zap.Error(err), zap.Int("capacity", s.buf.Cap()))
				s.reject(err)
				s.AdvancePastFrame()
				continue
			}
			i := s.nextValidStart()
			if i < 0 {
				return nil, ErrIncomplete
			}
			s.log.Debug("abandoning incomplete frame ahead of a complete one", zap.Int("count", i))
			s.reject(err)
			s.buf.Discard(i)
			continue
		}

		s.log.Debug("skipping corrupt frame", zap.Error(err))
		s.reject(err)
		s.AdvancePastFrame()
	}
}

func (s *Scanner) reject(err error) {
	if s.OnReject != nil {
		s.OnReject(err)
	}
}

// nextValidStart returns the offset of the first delimiter after the front
// that starts a complete frame with a valid checksum, or -1.
func (s *Scanner) nextValidStart() int {
	b := s.buf.Bytes()
	for i := 1; i < len(b); i++ {
		j := apiframe.IndexStart(b[i:])
		if j < 0 {
			return -1
		}
		i += j
		if _, _, err := apiframe.Unpack(b[i:]); err == nil {
			return i
		}
	}
	return -1
}

// Reason classifies a rejection error for metrics labels.
func Reason(err error) string {
	switch {
	case errors.Is(err, apiframe.ErrBadChecksum):
		return "checksum"
	case errors.Is(err, apiframe.ErrInvalidContent):
		return "content"
	case errors.Is(err, apiframe.ErrBadLength):
		return "length"
	default:
		return "other"
	}
}
