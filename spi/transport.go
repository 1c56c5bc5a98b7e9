// Package spi drives an XBee module in SPI mode. Outbound frames wait in a
// transmit queue and inbound bytes collect in a receive buffer; Poll moves
// bytes between the two and the link whenever the module signals attention or
// there is something to send.
//
// Access to the queues goes through a Sender and a Receiver obtained from
// Split. Only one pair exists at a time, and Poll refuses to run while it is
// out.
//
//	t := spi.New(link, attn)
//	tx, rx, _ := t.Split()
//	tx.SendData(1, apiframe.ShortAddr(0x1234), []byte("hi"))
//	tx.Release()
//	rx.Release()
//	t.Poll()
package spi

import (
	"errors"

	"go.uber.org/zap"

	"github.com/MasandeM/xbee/internal/queue"
	"github.com/MasandeM/xbee/internal/rxscan"
)

const (
	DefaultCapacity = queue.DefaultCapacity
	// Filler is clocked out when the transmit queue is empty.
	Filler = 0xFF
	// DefaultWouldBlockRetries bounds how often a blocked link call is retried
	// before Poll gives up with ErrWouldBlock.
	DefaultWouldBlockRetries = 64
)

var (
	ErrBusy     = errors.New("spi: sender/receiver pair already in use")
	ErrReleased = errors.New("spi: view has been released")
	ErrTxFull   = errors.New("spi: transmit queue full")
	ErrRxFull   = errors.New("spi: receive buffer full")
	// ErrIncomplete is returned by Receiver.Next while no whole frame is
	// buffered.
	ErrIncomplete = rxscan.ErrIncomplete
)

type Option func(*Transport)

func WithTxCapacity(n int) Option { return func(t *Transport) { t.txCap = n } }

func WithRxCapacity(n int) Option { return func(t *Transport) { t.rxCap = n } }

func WithLogger(log *zap.Logger) Option { return func(t *Transport) { t.log = log } }

// WithActiveHigh treats a high attention line as asserted. The default
// matches the module's active-low ATTN output.
func WithActiveHigh() Option { return func(t *Transport) { t.activeHigh = true } }

func WithWouldBlockRetries(n int) Option { return func(t *Transport) { t.retries = n } }

// Transport owns the link, the attention pin and both queues.
type Transport struct {
	link       FullDuplex
	attn       InputPin
	activeHigh bool
	retries    int
	txCap      int
	rxCap      int
	log        *zap.Logger

	tx   *queue.Buffer
	rx   *queue.Buffer
	scan *rxscan.Scanner

	live int // views handed out by Split and not yet released
}

func New(link FullDuplex, attn InputPin, opts ...Option) *Transport {
	t := &Transport{
		link:    link,
		attn:    attn,
		retries: DefaultWouldBlockRetries,
		txCap:   DefaultCapacity,
		rxCap:   DefaultCapacity,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = zap.NewNop()
	}
	if t.retries < 0 {
		t.retries = 0
	}
	t.tx = queue.New(t.txCap)
	t.rx = queue.New(t.rxCap)
	t.scan = rxscan.New(t.rx, t.log)
	return t
}

// Split hands out the Sender and Receiver. Both must be released before Split
// or Poll succeed again.
func (t *Transport) Split() (*Sender, *Receiver, error) {
	if t.live > 0 {
		return nil, nil, ErrBusy
	}
	t.live = 2
	return &Sender{t: t}, &Receiver{t: t}, nil
}

func (t *Transport) release() {
	t.live--
}

func (t *Transport) attention() bool {
	return t.attn.IsHigh() == t.activeHigh
}

// Poll exchanges bytes with the module while attention is asserted or the
// transmit queue holds data. It reports whether any byte was stored.
//
// Attention is sampled before each exchange, and the byte clocked in by that
// exchange is stored only if attention was asserted at that point. Bytes read
// while attention is deasserted are padding and are dropped. The line is
// active-low unless the Transport was built WithActiveHigh.
//
// Poll returns ErrRxFull when the module still has data but the receive
// buffer is full; drain it through a Receiver and poll again. Link errors
// other than exhausted would-block retries are returned as is.
func (t *Transport) Poll() (bool, error) {
	if t.live > 0 {
		return false, ErrBusy
	}

	stored := false
	for {
		asserted := t.attention()
		if !asserted && t.tx.Empty() {
			return stored, nil
		}
		if asserted && t.rx.Full() {
			t.log.Warn("receive buffer full while module has data", zap.Int("capacity", t.rx.Cap()))
			return stored, ErrRxFull
		}

		out, queued := t.tx.Peek()
		if !queued {
			out = Filler
		}
		if err := t.retry(func() error { return t.link.Send(out) }); err != nil {
			return stored, err
		}
		if queued {
			t.tx.Pop()
		}

		var in byte
		err := t.retry(func() (err error) {
			in, err = t.link.Read()
			return err
		})
		if err != nil {
			return stored, err
		}
		if asserted {
			t.rx.Push(in)
			stored = true
		}
	}
}

func (t *Transport) retry(op func() error) error {
	var err error
	for i := 0; i <= t.retries; i++ {
		if err = op(); !errors.Is(err, ErrWouldBlock) {
			return err
		}
	}
	return err
}

// TxLen returns the number of bytes waiting to be sent.
func (t *Transport) TxLen() int { return t.tx.Len() }
