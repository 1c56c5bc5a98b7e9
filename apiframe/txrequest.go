package apiframe

type txState uint8

const (
	txType txState = iota
	txFrameID
	txAddr
	txOptions
	txData
)

// TxRequestEncoder lazily produces the payload of a transmit request. The type
// code follows the width of the destination address.
type TxRequestEncoder struct {
	state   txState
	frameID uint8
	addr    uint64
	shift   uint8 // bit offset of the next address byte, most significant first
	options TxOptions
	data    ByteSource
}

func NewTxRequest(frameID uint8, dest Addr, options TxOptions, data ByteSource) *TxRequestEncoder {
	return &TxRequestEncoder{
		state:   txType,
		frameID: frameID,
		addr:    dest.Value(),
		shift:   uint8(dest.Width()-1) * 8,
		options: options,
		data:    data,
	}
}

func (e *TxRequestEncoder) Next() (byte, bool) {
	switch e.state {
	case txType:
		e.state = txFrameID
		if e.shift == 56 {
			return FrameTypeTx64, true
		}
		return FrameTypeTx16, true
	case txFrameID:
		e.state = txAddr
		return e.frameID, true
	case txAddr:
		c := byte(e.addr >> e.shift)
		if e.shift == 0 {
			e.state = txOptions
		} else {
			e.shift -= 8
		}
		return c, true
	case txOptions:
		e.state = txData
		return e.options.Bits(), true
	default:
		return e.data.Next()
	}
}

// Len returns the exact number of payload bytes still to come.
func (e *TxRequestEncoder) Len() int {
	addrLeft := int(e.shift)/8 + 1
	switch e.state {
	case txType:
		return 2 + addrLeft + 1 + e.data.Len()
	case txFrameID:
		return 1 + addrLeft + 1 + e.data.Len()
	case txAddr:
		return addrLeft + 1 + e.data.Len()
	case txOptions:
		return 1 + e.data.Len()
	default:
		return e.data.Len()
	}
}
