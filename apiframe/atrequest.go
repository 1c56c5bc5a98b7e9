package apiframe

// ATRequestEncoder lazily produces the payload of a local or remote AT command.
//
//	local:  type | frame id | cmd(2) | params
//	remote: type | frame id | addr64(8) | addr16(2) | cmd(2) | params
type ATRequestEncoder struct {
	header [14]byte
	size   int
	pos    int
	params ByteSource
}

// NewATRequest encodes an AT command that is applied immediately.
func NewATRequest(frameID uint8, cmd [2]byte, params ByteSource) *ATRequestEncoder {
	return newLocalAT(FrameTypeATCommand, frameID, cmd, params)
}

// NewATQueueParamRequest encodes an AT command whose parameter is queued until
// changes are applied.
func NewATQueueParamRequest(frameID uint8, cmd [2]byte, params ByteSource) *ATRequestEncoder {
	return newLocalAT(FrameTypeATQueueParam, frameID, cmd, params)
}

func newLocalAT(frameType byte, frameID uint8, cmd [2]byte, params ByteSource) *ATRequestEncoder {
	e := &ATRequestEncoder{size: 4, params: params}
	e.header[0] = frameType
	e.header[1] = frameID
	e.header[2], e.header[3] = cmd[0], cmd[1]
	return e
}

// NewRemoteATRequest encodes an AT command addressed to another module. Set
// dest16 to 0xFFFE to address the module by dest64 alone.
func NewRemoteATRequest(frameID uint8, dest64 uint64, dest16 uint16, cmd [2]byte, params ByteSource) *ATRequestEncoder {
	e := &ATRequestEncoder{size: 14, params: params}
	e.header[0] = FrameTypeRemoteATCommand
	e.header[1] = frameID
	for i := 0; i < 8; i++ {
		e.header[2+i] = byte(dest64 >> (56 - 8*i))
	}
	e.header[10] = byte(dest16 >> 8)
	e.header[11] = byte(dest16)
	e.header[12], e.header[13] = cmd[0], cmd[1]
	return e
}

// NewRemoteATRequestTo addresses a remote AT command by either address width.
// A short address leaves the 64-bit field zero, a long one sets the 16-bit
// field to CoordinatorAddr (0xFFFE), which the module reads as "use 64-bit".
func NewRemoteATRequestTo(frameID uint8, dest Addr, cmd [2]byte, params ByteSource) *ATRequestEncoder {
	if dest.IsLong() {
		return NewRemoteATRequest(frameID, dest.Value(), CoordinatorAddr, cmd, params)
	}
	return NewRemoteATRequest(frameID, 0, uint16(dest.Value()), cmd, params)
}

func (e *ATRequestEncoder) Next() (byte, bool) {
	if e.pos < e.size {
		c := e.header[e.pos]
		e.pos++
		return c, true
	}
	return e.params.Next()
}

func (e *ATRequestEncoder) Len() int {
	return e.size - e.pos + e.params.Len()
}

// Encode returns a lazy encoder for an outbound frame. Inbound kinds fail with
// ErrNotOutbound.
func Encode(c Content) (ByteSource, error) {
	switch v := c.(type) {
	case TxRequest:
		return NewTxRequest(v.FrameID, v.Dest, v.Options, Bytes(v.Data)), nil
	case ATCommand:
		return NewATRequest(v.FrameID, v.Command, Bytes(v.Params)), nil
	case ATCommandQueueParam:
		return NewATQueueParamRequest(v.FrameID, v.Command, Bytes(v.Params)), nil
	case RemoteATCommand:
		return NewRemoteATRequest(v.FrameID, v.Dest64, v.Dest16, v.Command, Bytes(v.Params)), nil
	default:
		return nil, ErrNotOutbound
	}
}

// Command converts a two letter mnemonic such as "NI" to its wire form.
func Command(mnemonic string) [2]byte {
	var cmd [2]byte
	copy(cmd[:], mnemonic)
	return cmd
}
