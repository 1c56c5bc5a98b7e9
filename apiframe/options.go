package apiframe

import "strings"

// TxOptions is the option byte of a transmit request.
type TxOptions uint8

const (
	TxDisableAck   TxOptions = 0x01
	TxPANBroadcast TxOptions = 0x04

	txOptionsAll = TxDisableAck | TxPANBroadcast
)

// TxOptionsFromBits keeps the known bits of b and drops the rest.
func TxOptionsFromBits(b uint8) TxOptions { return TxOptions(b) & txOptionsAll }

func (o TxOptions) Bits() uint8                            { return uint8(o) }
func (o TxOptions) Contains(other TxOptions) bool          { return o&other == other }
func (o TxOptions) Intersects(other TxOptions) bool        { return o&other != 0 }
func (o TxOptions) Union(other TxOptions) TxOptions        { return o | other }
func (o TxOptions) Intersection(other TxOptions) TxOptions { return o & other }
func (o TxOptions) Difference(other TxOptions) TxOptions   { return o &^ other }
func (o TxOptions) IsEmpty() bool                          { return o == 0 }
func (o TxOptions) String() string {
	return flagString(uint16(o), []flagName{
		{uint16(TxDisableAck), "DisableAck"},
		{uint16(TxPANBroadcast), "PANBroadcast"},
	})
}

// RxOptions is the option byte of a received packet.
type RxOptions uint8

const (
	RxAddrBroadcast RxOptions = 0x02
	RxPANBroadcast  RxOptions = 0x04

	rxOptionsAll = RxAddrBroadcast | RxPANBroadcast
)

// RxOptionsFromBits keeps the known bits of b and drops the rest.
func RxOptionsFromBits(b uint8) RxOptions { return RxOptions(b) & rxOptionsAll }

func (o RxOptions) Bits() uint8                            { return uint8(o) }
func (o RxOptions) Contains(other RxOptions) bool          { return o&other == other }
func (o RxOptions) Intersects(other RxOptions) bool        { return o&other != 0 }
func (o RxOptions) Union(other RxOptions) RxOptions        { return o | other }
func (o RxOptions) Intersection(other RxOptions) RxOptions { return o & other }
func (o RxOptions) Difference(other RxOptions) RxOptions   { return o &^ other }
func (o RxOptions) IsEmpty() bool                          { return o == 0 }
func (o RxOptions) String() string {
	return flagString(uint16(o), []flagName{
		{uint16(RxAddrBroadcast), "AddrBroadcast"},
		{uint16(RxPANBroadcast), "PANBroadcast"},
	})
}

// ChannelIndicator selects which sample words follow it in an IO sample frame.
//
//	bit 15..13  reserved
//	bit 12..9   A3..A0
//	bit  8..0   D8..D0
type ChannelIndicator uint16

const (
	D0 ChannelIndicator = 1 << iota
	D1
	D2
	D3
	D4
	D5
	D6
	D7
	D8
	A0
	A1
	A2
	A3

	DigitalChannels = D0 | D1 | D2 | D3 | D4 | D5 | D6 | D7 | D8
	AnalogChannels  = A0 | A1 | A2 | A3
)

// AnalogOrder lists the analog channels in the order their sample words
// appear on the wire.
var AnalogOrder = [4]ChannelIndicator{A0, A1, A2, A3}

// ChannelIndicatorFromBits drops the reserved bits of b.
func ChannelIndicatorFromBits(b uint16) ChannelIndicator {
	return ChannelIndicator(b) & (DigitalChannels | AnalogChannels)
}

func (c ChannelIndicator) Bits() uint16                                  { return uint16(c) }
func (c ChannelIndicator) Contains(other ChannelIndicator) bool          { return c&other == other }
func (c ChannelIndicator) Intersects(other ChannelIndicator) bool        { return c&other != 0 }
func (c ChannelIndicator) Union(other ChannelIndicator) ChannelIndicator { return c | other }
func (c ChannelIndicator) Intersection(other ChannelIndicator) ChannelIndicator {
	return c & other
}

// HasDigital reports whether any digital channel is enabled, in which case a
// digital sample word is present.
func (c ChannelIndicator) HasDigital() bool { return c.Intersects(DigitalChannels) }

// SampleWords returns how many 16-bit sample words the indicator promises.
func (c ChannelIndicator) SampleWords() int {
	n := 0
	if c.HasDigital() {
		n++
	}
	for _, a := range AnalogOrder {
		if c.Contains(a) {
			n++
		}
	}
	return n
}

func (c ChannelIndicator) String() string {
	names := []flagName{
		{uint16(D0), "D0"}, {uint16(D1), "D1"}, {uint16(D2), "D2"},
		{uint16(D3), "D3"}, {uint16(D4), "D4"}, {uint16(D5), "D5"},
		{uint16(D6), "D6"}, {uint16(D7), "D7"}, {uint16(D8), "D8"},
		{uint16(A0), "A0"}, {uint16(A1), "A1"}, {uint16(A2), "A2"}, {uint16(A3), "A3"},
	}
	return flagString(uint16(c), names)
}

type flagName struct {
	bit  uint16
	name string
}

func flagString(v uint16, names []flagName) string {
	if v == 0 {
		return "0"
	}
	var sb strings.Builder
	for _, f := range names {
		if v&f.bit == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(f.name)
	}
	return sb.String()
}
