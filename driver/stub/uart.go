//go:build !tinygo && !baremetal

package stub

import (
	"sync"
	"time"
)

// UART is an in-memory serial port. Reads with no data return 0, nil, like a
// port opened with a read timeout.
type UART struct {
	mu      sync.Mutex
	rx      []byte
	tx      []byte
	chunk   int
	drains  int
	resets  int
	onWrite func(p []byte)
}

func NewUART() *UART { return &UART{} }

// Inject makes data available to Read.
func (u *UART) Inject(data []byte) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rx = append(u.rx, data...)
}

// LimitRead caps how many bytes a single Read returns. Zero removes the cap.
func (u *UART) LimitRead(n int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.chunk = n
}

// OnWrite registers a hook run after every Write, outside the lock, so it may
// call Inject to script replies.
func (u *UART) OnWrite(fn func(p []byte)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.onWrite = fn
}

func (u *UART) Read(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.chunk > 0 && len(p) > u.chunk {
		p = p[:u.chunk]
	}
	n := copy(p, u.rx)
	u.rx = u.rx[n:]
	return n, nil
}

func (u *UART) Write(p []byte) (int, error) {
	u.mu.Lock()
	u.tx = append(u.tx, p...)
	hook := u.onWrite
	u.mu.Unlock()
	if hook != nil {
		hook(append([]byte(nil), p...))
	}
	return len(p), nil
}

func (u *UART) Drain() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.drains++
	return nil
}

func (u *UART) ResetInputBuffer() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rx = nil
	u.resets++
	return nil
}

// Written returns a copy of everything written so far.
func (u *UART) Written() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]byte(nil), u.tx...)
}

func (u *UART) Drains() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.drains
}

func (u *UART) Resets() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.resets
}

// Delay records requested delays instead of sleeping.
type Delay struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (d *Delay) DelayMs(ms uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, time.Duration(ms)*time.Millisecond)
}

func (d *Delay) Calls() []time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Duration(nil), d.calls...)
}
