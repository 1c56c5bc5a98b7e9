// Package xbee drives an XBee 802.15.4 radio module over a UART in API mode,
// and over the same port in transparent mode when the module still needs to
// be configured by AT commands.
//
// Frames are built and parsed by package apiframe. For modules wired over SPI
// see package spi.
package xbee

import (
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/MasandeM/xbee/apiframe"
	"github.com/MasandeM/xbee/internal/queue"
	"github.com/MasandeM/xbee/internal/rxscan"
)

// ErrNoFrame is returned by ReadFrame when no complete frame has arrived yet.
var ErrNoFrame = errors.New("xbee: no complete frame received")

// UART is the part of a serial port the driver needs.
type UART interface {
	io.Reader
	io.Writer
	Drain() error
	ResetInputBuffer() error
}

var _ UART = serial.Port(nil)

// Observer is told about traffic through a Device.
type Observer interface {
	BytesRead(n int)
	FrameDecoded(frameType byte)
	FrameRejected(err error)
	FrameSent(frameType byte)
}

type nopObserver struct{}

func (nopObserver) BytesRead(int)       {}
func (nopObserver) FrameDecoded(byte)   {}
func (nopObserver) FrameRejected(error) {}
func (nopObserver) FrameSent(byte)      {}

type Option func(*Device)

func WithLogger(log *zap.Logger) Option { return func(d *Device) { d.log = log } }

// WithRxCapacity sets the size of the receive buffer. Frames longer than it
// are dropped.
func WithRxCapacity(n int) Option { return func(d *Device) { d.rxCap = n } }

func WithObserver(o Observer) Option { return func(d *Device) { d.obs = o } }

// Device represents an XBee module in API mode
type Device struct {
	uart  UART
	log   *zap.Logger
	obs   Observer
	rxCap int

	rx      *queue.Buffer
	scan    *rxscan.Scanner
	pending bool // a frame returned by ReadFrame is still at the front of rx
}

// New creates and initialises a new Device on a port that is already in API
// mode (AP=1).
func New(uart UART, opts ...Option) *Device {
	d := &Device{
		uart:  uart,
		obs:   nopObserver{},
		rxCap: queue.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	d.rx = queue.New(d.rxCap)
	d.scan = rxscan.New(d.rx, d.log)
	d.scan.OnReject = d.obs.FrameRejected
	return d
}

// Send encodes c, frames it and writes it to the module.
func (d *Device) Send(c apiframe.Content) error {
	payload, err := apiframe.Encode(c)
	if err != nil {
		return err
	}
	return d.send(c.FrameType(), payload)
}

func (d *Device) send(frameType byte, payload apiframe.ByteSource) error {
	p, err := apiframe.NewPacker(payload)
	if err != nil {
		return fmt.Errorf("could not frame %s request: %w", apiframe.TypeName(frameType), err)
	}
	if _, err := p.WriteTo(d.uart); err != nil {
		return fmt.Errorf("unable to send frame to module: %w", err)
	}
	if err := d.uart.Drain(); err != nil {
		return fmt.Errorf("unable to send frame to module: %w", err)
	}
	d.obs.FrameSent(frameType)
	d.log.Debug("frame sent", zap.String("type", apiframe.TypeName(frameType)))
	return nil
}

// SendData transmits data to dest. Unless frameID is zero the module reports
// the outcome in a TxStatus frame carrying the same id.
func (d *Device) SendData(frameID uint8, dest apiframe.Addr, data []byte) error {
	return d.Send(apiframe.TxRequest{FrameID: frameID, Dest: dest, Data: data})
}

// SendDataNoAck transmits data to dest without requesting a MAC acknowledgement.
func (d *Device) SendDataNoAck(frameID uint8, dest apiframe.Addr, data []byte) error {
	return d.Send(apiframe.TxRequest{FrameID: frameID, Dest: dest, Options: apiframe.TxDisableAck, Data: data})
}

// ATCommand sets or queries a parameter of the local module.
func (d *Device) ATCommand(frameID uint8, cmd [2]byte, params []byte) error {
	return d.Send(apiframe.ATCommand{FrameID: frameID, Command: cmd, Params: params})
}

// ATQueueParam sets a parameter of the local module without applying it.
func (d *Device) ATQueueParam(frameID uint8, cmd [2]byte, params []byte) error {
	return d.Send(apiframe.ATCommandQueueParam{FrameID: frameID, Command: cmd, Params: params})
}

// RemoteATCommand sets or queries a parameter of the module at dest.
func (d *Device) RemoteATCommand(frameID uint8, dest apiframe.Addr, cmd [2]byte, params []byte) error {
	return d.send(apiframe.FrameTypeRemoteATCommand,
		apiframe.NewRemoteATRequestTo(frameID, dest, cmd, apiframe.Bytes(params)))
}

// ReadFrame returns the next frame from the module, reading whatever bytes
// the port has available. It returns ErrNoFrame when no complete frame has
// arrived. Noise and corrupt frames are skipped.
//
// The returned content refers to the receive buffer and is valid until the
// next call to ReadFrame or Consume.
func (d *Device) ReadFrame() (apiframe.Content, error) {
	d.Consume()

	c, err := d.scan.Next()
	if errors.Is(err, rxscan.ErrIncomplete) {
		if err := d.fill(); err != nil {
			return nil, err
		}
		c, err = d.scan.Next()
	}
	if errors.Is(err, rxscan.ErrIncomplete) {
		return nil, ErrNoFrame
	}
	if err != nil {
		return nil, err
	}

	d.pending = true
	d.obs.FrameDecoded(c.FrameType())
	return c, nil
}

func (d *Device) fill() error {
	n, err := d.rx.Fill(d.uart)
	if n > 0 {
		d.obs.BytesRead(n)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read data from module: %w", err)
	}
	return nil
}

// Consume releases the frame returned by the last ReadFrame.
func (d *Device) Consume() {
	if d.pending {
		d.scan.Consume()
		d.pending = false
	}
}

// Skip drops the candidate frame at the front of the receive buffer and
// moves on to the next start delimiter. Use it to stop waiting on a frame
// that ReadFrame keeps reporting as incomplete.
func (d *Device) Skip() {
	d.pending = false
	d.scan.AdvancePastFrame()
}

// Buffered returns the number of received bytes not yet consumed.
func (d *Device) Buffered() int { return d.rx.Len() }

// Reset discards everything buffered, on the host and in the port.
func (d *Device) Reset() error {
	d.rx.Reset()
	d.pending = false
	return d.uart.ResetInputBuffer()
}

// ToTransparent hands the port over to a transparent-mode bridge. The module
// itself must be switched with AP=0 before.
func (d *Device) ToTransparent(delay Delayer, cmdChar byte, guardTime uint16) *Transparent {
	t := NewTransparent(d.uart, delay, cmdChar, guardTime)
	t.log = d.log
	return t
}
