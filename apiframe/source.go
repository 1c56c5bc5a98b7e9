package apiframe

// ByteSource produces a finite byte sequence one byte at a time. Len reports
// exactly how many bytes Next will still return.
type ByteSource interface {
	Next() (byte, bool)
	Len() int
}

type sliceSource struct {
	b []byte
}

// Bytes adapts p to a ByteSource. p is read in place, not copied.
func Bytes(p []byte) ByteSource {
	return &sliceSource{b: p}
}

func (s *sliceSource) Next() (byte, bool) {
	if len(s.b) == 0 {
		return 0, false
	}
	c := s.b[0]
	s.b = s.b[1:]
	return c, true
}

func (s *sliceSource) Len() int { return len(s.b) }

// AppendSource drains src onto dst.
func AppendSource(dst []byte, src ByteSource) []byte {
	for {
		c, ok := src.Next()
		if !ok {
			return dst
		}
		dst = append(dst, c)
	}
}
