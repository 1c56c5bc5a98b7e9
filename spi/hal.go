package spi

import "errors"

// ErrWouldBlock is returned by a FullDuplex that cannot complete the call yet.
// The transport retries such calls a bounded number of times.
var ErrWouldBlock = errors.New("spi: operation would block")

// FullDuplex exchanges single bytes with the module. Every Send clocks one byte
// out and one byte in; Read returns the byte clocked in by the last Send.
type FullDuplex interface {
	Send(b byte) error
	Read() (byte, error)
}

// InputPin is the module's attention line.
type InputPin interface {
	IsHigh() bool
}
