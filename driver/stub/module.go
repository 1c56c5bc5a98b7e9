//go:build !tinygo && !baremetal

// Package stub provides host-side fakes of the hardware an XBee driver talks
// to, for tests and for running the driver without a module attached.
package stub

import (
	"sync"

	"github.com/MasandeM/xbee/spi"
)

// Module mimics an XBee in SPI mode. Its attention line is low while it has
// bytes queued for the host; each exchange shifts one of them out, or the
// 0xFF filler when it has none.
type Module struct {
	mu   sync.Mutex
	out  []byte
	mosi []byte
	last byte

	blockSend int
	blockRead int
	sendErr   error
}

var (
	_ spi.FullDuplex = (*Module)(nil)
	_ spi.InputPin   = (*Module)(nil)
)

func NewModule() *Module { return &Module{last: spi.Filler} }

// Inject queues bytes for the module to send to the host.
func (m *Module) Inject(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.out = append(m.out, data...)
}

func (m *Module) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.out)
}

// Received returns a copy of every byte the host has sent.
func (m *Module) Received() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.mosi...)
}

// BlockSend makes the next n Send calls report spi.ErrWouldBlock.
func (m *Module) BlockSend(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockSend = n
}

// BlockRead makes the next n Read calls report spi.ErrWouldBlock.
func (m *Module) BlockRead(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockRead = n
}

// FailSend makes every later Send return err. A nil err clears it.
func (m *Module) FailSend(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

func (m *Module) Send(b byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	if m.blockSend > 0 {
		m.blockSend--
		return spi.ErrWouldBlock
	}
	m.mosi = append(m.mosi, b)
	if len(m.out) > 0 {
		m.last = m.out[0]
		m.out = m.out[1:]
	} else {
		m.last = spi.Filler
	}
	return nil
}

func (m *Module) Read() (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blockRead > 0 {
		m.blockRead--
		return 0, spi.ErrWouldBlock
	}
	return m.last, nil
}

// IsHigh reports the active-low attention line.
func (m *Module) IsHigh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.out) == 0
}

// Pin is an input pin whose level comes from a function.
type Pin func() bool

func (p Pin) IsHigh() bool { return p() }

// Level returns a pin fixed at high.
func Level(high bool) Pin { return func() bool { return high } }
