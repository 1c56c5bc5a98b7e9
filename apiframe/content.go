package apiframe

import "fmt"

// Frame type codes.
const (
	FrameTypeTx64             = 0x00
	FrameTypeTx16             = 0x01
	FrameTypeATCommand        = 0x08
	FrameTypeATQueueParam     = 0x09
	FrameTypeRemoteATCommand  = 0x17
	FrameTypeRx64             = 0x80
	FrameTypeRx16             = 0x81
	FrameTypeRxIO64           = 0x82
	FrameTypeRxIO16           = 0x83
	FrameTypeATResponse       = 0x88
	FrameTypeTxStatus         = 0x89
	FrameTypeModemStatus      = 0x8A
	FrameTypeRemoteATResponse = 0x97
)

// Well known 16-bit destinations.
const (
	BroadcastAddr   uint16 = 0xFFFF
	CoordinatorAddr uint16 = 0xFFFE
)

// Addr is either a 16-bit network address or a 64-bit hardware address.
type Addr struct {
	value uint64
	long  bool
}

func ShortAddr(a uint16) Addr { return Addr{value: uint64(a)} }

func LongAddr(a uint64) Addr { return Addr{value: a, long: true} }

// IsLong reports whether a is a 64-bit address.
func (a Addr) IsLong() bool { return a.long }

func (a Addr) Value() uint64 { return a.value }

// Width returns the number of bytes a occupies on the wire.
func (a Addr) Width() int {
	if a.long {
		return 8
	}
	return 2
}

func (a Addr) String() string {
	if a.long {
		return fmt.Sprintf("%016X", a.value)
	}
	return fmt.Sprintf("%04X", a.value)
}

// Content is the decoded payload of one API frame.
//
// Slice fields of the concrete types alias the buffer passed to Parse. The
// caller must keep that buffer unchanged for as long as the content is used.
type Content interface {
	FrameType() byte
}

// TxRequest asks the module to transmit Data to Dest.
type TxRequest struct {
	FrameID uint8
	Dest    Addr
	Options TxOptions
	Data    []byte
}

func (r TxRequest) FrameType() byte {
	if r.Dest.IsLong() {
		return FrameTypeTx64
	}
	return FrameTypeTx16
}

// ATCommand reads or sets a module parameter and applies it immediately.
type ATCommand struct {
	FrameID uint8
	Command [2]byte
	Params  []byte
}

func (ATCommand) FrameType() byte { return FrameTypeATCommand }

// ATCommandQueueParam sets a module parameter without applying it until an
// AC command or a regular AT command arrives.
type ATCommandQueueParam struct {
	FrameID uint8
	Command [2]byte
	Params  []byte
}

func (ATCommandQueueParam) FrameType() byte { return FrameTypeATQueueParam }

// RemoteATCommand runs an AT command on another module.
type RemoteATCommand struct {
	FrameID uint8
	Dest64  uint64
	Dest16  uint16
	Command [2]byte
	Params  []byte
}

func (RemoteATCommand) FrameType() byte { return FrameTypeRemoteATCommand }

// RxPacket is data received from another module.
type RxPacket struct {
	Source  Addr
	RSSI    uint8 // -dBm
	Options RxOptions
	Data    []byte
}

func (p RxPacket) FrameType() byte {
	if p.Source.IsLong() {
		return FrameTypeRx64
	}
	return FrameTypeRx16
}

// Sample is an optional IO sample word. Present is false when the channel
// indicator did not enable the channel.
type Sample struct {
	Value   uint16
	Present bool
}

// RxIOSample is an IO line sample sent by another module.
type RxIOSample struct {
	Source    Addr
	RSSI      uint8 // -dBm
	Options   RxOptions
	Samples   uint8
	Indicator ChannelIndicator
	Digital   Sample
	Analog    [4]Sample // A0..A3
}

func (p RxIOSample) FrameType() byte {
	if p.Source.IsLong() {
		return FrameTypeRxIO64
	}
	return FrameTypeRxIO16
}

// ATCommandResponse answers an ATCommand or ATCommandQueueParam.
type ATCommandResponse struct {
	FrameID uint8
	Command [2]byte
	Status  ATStatus
	Data    []byte
}

func (ATCommandResponse) FrameType() byte { return FrameTypeATResponse }

// TxStatusReport reports the outcome of a TxRequest.
type TxStatusReport struct {
	FrameID uint8
	Status  TxStatus
}

func (TxStatusReport) FrameType() byte { return FrameTypeTxStatus }

type ModemStatusReport struct {
	Status ModemStatus
}

func (ModemStatusReport) FrameType() byte { return FrameTypeModemStatus }

// RemoteATCommandResponse answers a RemoteATCommand.
type RemoteATCommandResponse struct {
	FrameID  uint8
	Source64 uint64
	Source16 uint16
	Command  [2]byte
	Status   ATStatus
	Data     []byte
}

func (RemoteATCommandResponse) FrameType() byte { return FrameTypeRemoteATResponse }

// reader walks a payload front to back. Reads past the end yield zero and set
// short instead of failing, so a parse checks once at the end.
type reader struct {
	b     []byte
	short bool
}

func (r *reader) u8() byte {
	if len(r.b) < 1 {
		r.short = true
		return 0
	}
	c := r.b[0]
	r.b = r.b[1:]
	return c
}

func (r *reader) u16() uint16 {
	if len(r.b) < 2 {
		r.short = true
		r.b = r.b[len(r.b):]
		return 0
	}
	v := uint16(r.b[0])<<8 | uint16(r.b[1])
	r.b = r.b[2:]
	return v
}

func (r *reader) u64() uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(r.u8())
	}
	return v
}

func (r *reader) cmd() [2]byte {
	return [2]byte{r.u8(), r.u8()}
}

func (r *reader) rest() []byte {
	return r.b
}

// Parse decodes an unpacked payload. Unknown frame types and payloads too short
// for their type both fail with ErrInvalidContent.
func Parse(payload []byte) (Content, error) {
	if len(payload) == 0 {
		return nil, invalidContent(0, 0)
	}
	n := len(payload)
	frameType := payload[0]
	r := &reader{b: payload[1:]}

	var c Content
	switch {
	case frameType == FrameTypeTx64 && n > 10:
		c = TxRequest{
			FrameID: r.u8(),
			Dest:    LongAddr(r.u64()),
			Options: TxOptionsFromBits(r.u8()),
			Data:    r.rest(),
		}
	case frameType == FrameTypeTx16 && n > 4:
		c = TxRequest{
			FrameID: r.u8(),
			Dest:    ShortAddr(r.u16()),
			Options: TxOptionsFromBits(r.u8()),
			Data:    r.rest(),
		}
	case frameType == FrameTypeATCommand && n > 3:
		c = ATCommand{FrameID: r.u8(), Command: r.cmd(), Params: r.rest()}
	case frameType == FrameTypeATQueueParam && n > 3:
		c = ATCommandQueueParam{FrameID: r.u8(), Command: r.cmd(), Params: r.rest()}
	case frameType == FrameTypeRemoteATCommand && n > 13:
		c = RemoteATCommand{
			FrameID: r.u8(),
			Dest64:  r.u64(),
			Dest16:  r.u16(),
			Command: r.cmd(),
			Params:  r.rest(),
		}
	case frameType == FrameTypeRx64 && n > 10:
		c = RxPacket{
			Source:  LongAddr(r.u64()),
			RSSI:    r.u8(),
			Options: RxOptionsFromBits(r.u8()),
			Data:    r.rest(),
		}
	case frameType == FrameTypeRx16 && n > 4:
		c = RxPacket{
			Source:  ShortAddr(r.u16()),
			RSSI:    r.u8(),
			Options: RxOptionsFromBits(r.u8()),
			Data:    r.rest(),
		}
	case frameType == FrameTypeRxIO64 && n > 13:
		c = parseIOSample(r, LongAddr(r.u64()))
	case frameType == FrameTypeRxIO16 && n > 7:
		c = parseIOSample(r, ShortAddr(r.u16()))
	case frameType == FrameTypeATResponse && n > 4:
		c = ATCommandResponse{
			FrameID: r.u8(),
			Command: r.cmd(),
			Status:  atStatusFrom(r.u8(), false),
			Data:    r.rest(),
		}
	case frameType == FrameTypeTxStatus && n == 3:
		c = TxStatusReport{FrameID: r.u8(), Status: TxStatusFrom(r.u8())}
	case frameType == FrameTypeModemStatus && n == 2:
		c = ModemStatusReport{Status: ModemStatusFrom(r.u8())}
	case frameType == FrameTypeRemoteATResponse && n > 14:
		c = RemoteATCommandResponse{
			FrameID:  r.u8(),
			Source64: r.u64(),
			Source16: r.u16(),
			Command:  r.cmd(),
			Status:   atStatusFrom(r.u8(), true),
			Data:     r.rest(),
		}
	default:
		return nil, invalidContent(frameType, n)
	}

	if r.short {
		return nil, invalidContent(frameType, n)
	}
	return c, nil
}

func parseIOSample(r *reader, source Addr) RxIOSample {
	s := RxIOSample{
		Source:    source,
		RSSI:      r.u8(),
		Options:   RxOptionsFromBits(r.u8()),
		Samples:   r.u8(),
		Indicator: ChannelIndicatorFromBits(r.u16()),
	}
	if s.Indicator.HasDigital() {
		s.Digital = Sample{Value: r.u16(), Present: true}
	}
	for i, ch := range AnalogOrder {
		if s.Indicator.Contains(ch) {
			s.Analog[i] = Sample{Value: r.u16(), Present: true}
		}
	}
	return s
}
