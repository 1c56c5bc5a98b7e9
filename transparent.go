package xbee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Defaults of the module's CC and GT parameters.
const (
	DefaultCommandChar = '+'
	DefaultGuardTime   = 1000 // ms
)

// ErrUnexpectedResponse is returned when the module answers a command with
// something other than OK.
var ErrUnexpectedResponse = errors.New("xbee: unexpected response from module")

// Delayer blocks for a number of milliseconds.
type Delayer interface {
	DelayMs(ms uint16)
}

// SleepDelay is a Delayer backed by time.Sleep.
type SleepDelay struct{}

func (SleepDelay) DelayMs(ms uint16) { time.Sleep(time.Duration(ms) * time.Millisecond) }

// Transparent passes bytes straight through to the module, which forwards them
// over the air. It can switch the module into command mode to run AT commands.
type Transparent struct {
	uart      UART
	delay     Delayer
	cmdChar   byte
	guardTime uint16
	log       *zap.Logger
}

// NewTransparent creates a bridge for a module in transparent mode. cmdChar and
// guardTime (ms) must match the module's CC and GT settings.
func NewTransparent(uart UART, delay Delayer, cmdChar byte, guardTime uint16) *Transparent {
	return &Transparent{
		uart:      uart,
		delay:     delay,
		cmdChar:   cmdChar,
		guardTime: guardTime,
		log:       zap.NewNop(),
	}
}

func (t *Transparent) Read(p []byte) (int, error)  { return t.uart.Read(p) }
func (t *Transparent) Write(p []byte) (int, error) { return t.uart.Write(p) }

// EnterCommandMode sends the command sequence framed by guard times and waits
// for the module to acknowledge it. The wait ends with ctx.
func (t *Transparent) EnterCommandMode(ctx context.Context) error {
	t.delay.DelayMs(t.guardTime)
	seq := []byte{t.cmdChar, t.cmdChar, t.cmdChar}
	if _, err := t.uart.Write(seq); err != nil {
		return fmt.Errorf("unable to send command sequence: %w", err)
	}
	t.delay.DelayMs(t.guardTime)

	if err := t.expectOK(ctx); err != nil {
		return fmt.Errorf("could not enter command mode: %w", err)
	}
	t.log.Debug("entered command mode")
	return nil
}

// SendCommand runs one AT command in command mode, e.g. "AP1" or "CN", and
// waits for OK. Commands that answer with a value are not supported.
func (t *Transparent) SendCommand(ctx context.Context, cmd string) error {
	if _, err := t.uart.Write([]byte("AT" + cmd + "\r")); err != nil {
		return fmt.Errorf("unable to send AT%s: %w", cmd, err)
	}
	if err := t.expectOK(ctx); err != nil {
		return fmt.Errorf("AT%s failed: %w", cmd, err)
	}
	return nil
}

// ExitCommandMode leaves command mode without waiting for the timeout.
func (t *Transparent) ExitCommandMode(ctx context.Context) error {
	return t.SendCommand(ctx, "CN")
}

func (t *Transparent) expectOK(ctx context.Context) error {
	var b [1]byte
	for _, want := range []byte("OK\r") {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := t.uart.Read(b[:])
			if err != nil {
				return err
			}
			if n == 1 {
				break
			}
		}
		if b[0] != want {
			return fmt.Errorf("%w: got %q, want %q", ErrUnexpectedResponse, b[0], want)
		}
	}
	return nil
}

// ToAPI hands the port over to an API-mode Device. The module itself must be
// switched with AP=1 before.
func (t *Transparent) ToAPI(opts ...Option) *Device {
	return New(t.uart, append([]Option{WithLogger(t.log)}, opts...)...)
}
