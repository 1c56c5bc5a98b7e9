package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MasandeM/xbee"
	"github.com/MasandeM/xbee/apiframe"
	"github.com/MasandeM/xbee/internal/metrics"
)

// frame ids used for the startup queries
const (
	frameIDSerialHigh = 0x01
	frameIDSerialLow  = 0x02
	frameIDNodeID     = 0x03
)

type monitor struct {
	dev     *xbee.Device
	metrics *metrics.DriverMetrics
	log     *zap.Logger

	mu         sync.Mutex
	frames     uint64
	modem      apiframe.ModemStatus
	seenModem  bool
	nodeID     string
	serialHigh []byte
	serialLow  []byte
	lastFrame  time.Time
}

func newMonitor(dev *xbee.Device, m *metrics.DriverMetrics, log *zap.Logger) *monitor {
	return &monitor{dev: dev, metrics: m, log: log, modem: apiframe.ModemStatusUnknown}
}

// identify asks the module for its serial number and node identifier. The
// answers arrive as AT responses and are picked up by handle.
func (mon *monitor) identify() error {
	for _, q := range []struct {
		id  uint8
		cmd string
	}{
		{frameIDSerialHigh, "SH"},
		{frameIDSerialLow, "SL"},
		{frameIDNodeID, "NI"},
	} {
		if err := mon.dev.ATCommand(q.id, apiframe.Command(q.cmd), nil); err != nil {
			return err
		}
	}
	return nil
}

// run drains the device every interval until ctx is done.
func (mon *monitor) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := mon.drain(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drain handles every complete frame the device has buffered or can read.
func (mon *monitor) drain() error {
	for {
		c, err := mon.dev.ReadFrame()
		if errors.Is(err, xbee.ErrNoFrame) {
			return nil
		}
		if err != nil {
			return err
		}
		mon.handle(c)
	}
}

func (mon *monitor) handle(c apiframe.Content) {
	mon.metrics.Observe(c)

	mon.mu.Lock()
	defer mon.mu.Unlock()
	mon.frames++
	mon.lastFrame = time.Now()

	fields := []zap.Field{zap.String("type", apiframe.TypeName(c.FrameType()))}
	switch f := c.(type) {
	case apiframe.RxPacket:
		fields = append(fields,
			zap.Stringer("source", f.Source),
			zap.Uint8("rssi", f.RSSI),
			zap.Stringer("options", f.Options),
			zap.Binary("data", f.Data))
	case apiframe.RxIOSample:
		fields = append(fields,
			zap.Stringer("source", f.Source),
			zap.Uint8("rssi", f.RSSI),
			zap.Stringer("channels", f.Indicator))
		if f.Digital.Present {
			fields = append(fields, zap.Uint16("digital", f.Digital.Value))
		}
		for i, s := range f.Analog {
			if s.Present {
				fields = append(fields, zap.Uint16(apiframe.AnalogOrder[i].String(), s.Value))
			}
		}
	case apiframe.TxStatusReport:
		fields = append(fields, zap.Uint8("frame_id", f.FrameID), zap.Stringer("status", f.Status))
	case apiframe.ModemStatusReport:
		mon.modem, mon.seenModem = f.Status, true
		fields = append(fields, zap.Stringer("status", f.Status))
	case apiframe.ATCommandResponse:
		mon.recordIdentity(f)
		fields = append(fields,
			zap.Uint8("frame_id", f.FrameID),
			zap.ByteString("command", f.Command[:]),
			zap.Stringer("status", f.Status),
			zap.Binary("data", f.Data))
	case apiframe.RemoteATCommandResponse:
		fields = append(fields,
			zap.Uint8("frame_id", f.FrameID),
			zap.String("source", apiframe.LongAddr(f.Source64).String()),
			zap.ByteString("command", f.Command[:]),
			zap.Stringer("status", f.Status),
			zap.Binary("data", f.Data))
	}
	mon.log.Info("frame received", fields...)
}

// recordIdentity keeps answers to the identify queries. Data aliases the
// device buffer, so it is copied.
func (mon *monitor) recordIdentity(r apiframe.ATCommandResponse) {
	if r.Status != apiframe.ATStatusOK {
		return
	}
	switch r.FrameID {
	case frameIDSerialHigh:
		mon.serialHigh = append([]byte(nil), r.Data...)
	case frameIDSerialLow:
		mon.serialLow = append([]byte(nil), r.Data...)
	case frameIDNodeID:
		mon.nodeID = string(r.Data)
	}
}

// ready reports whether the module has answered anything yet.
func (mon *monitor) ready() bool {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	return mon.frames > 0
}

func (mon *monitor) status() map[string]any {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	st := map[string]any{
		"frames":  mon.frames,
		"node_id": mon.nodeID,
	}
	if len(mon.serialHigh) > 0 || len(mon.serialLow) > 0 {
		st["serial"] = serialString(mon.serialHigh, mon.serialLow)
	}
	if mon.seenModem {
		st["modem_status"] = mon.modem.String()
	}
	if !mon.lastFrame.IsZero() {
		st["last_frame"] = mon.lastFrame.UTC().Format(time.RFC3339)
	}
	return st
}

// serialString joins the SH and SL answers into the module's 64-bit address.
func serialString(high, low []byte) string {
	var v uint64
	for _, part := range [][]byte{high, low} {
		var w uint32
		for _, b := range part {
			w = w<<8 | uint32(b)
		}
		v = v<<32 | uint64(w)
	}
	return apiframe.LongAddr(v).String()
}
