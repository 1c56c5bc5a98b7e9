package apiframe

import (
	"errors"
	"fmt"
)

var (
	ErrTooShort            = errors.New("apiframe: payload is empty")
	ErrTooLong             = errors.New("apiframe: payload longer than 65535 bytes")
	ErrNoStart             = errors.New("apiframe: missing start delimiter")
	ErrBadLength           = errors.New("apiframe: declared length exceeds buffer")
	ErrBadChecksum         = errors.New("apiframe: checksum mismatch")
	ErrInvalidContent      = errors.New("apiframe: invalid frame content")
	ErrEscapingUnsupported = errors.New("apiframe: escaped mode not supported")
	ErrNotOutbound         = errors.New("apiframe: frame type cannot be sent to the module")
)

// LengthError reports a frame whose declared length runs past the end of the
// buffer. Need is the total number of bytes the frame occupies, header and
// checksum included.
type LengthError struct {
	Need int
	Have int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("apiframe: frame needs %d bytes, buffer has %d", e.Need, e.Have)
}

func (e *LengthError) Is(target error) bool { return target == ErrBadLength }

// ChecksumError reports a frame whose checksum byte does not complement the
// wrapped sum of its payload.
type ChecksumError struct {
	Sum      byte
	Checksum byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("apiframe: checksum mismatch (payload sum 0x%02X, checksum 0x%02X)", e.Sum, e.Checksum)
}

func (e *ChecksumError) Is(target error) bool { return target == ErrBadChecksum }

func invalidContent(frameType byte, n int) error {
	return fmt.Errorf("%w: type 0x%02X, %d bytes", ErrInvalidContent, frameType, n)
}
