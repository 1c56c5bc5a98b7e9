package spi

import "github.com/MasandeM/xbee/apiframe"

// Sender appends frames to the transmit queue.
type Sender struct {
	t        *Transport
	released bool
}

// Enqueue appends every byte of src, or nothing when the transmit queue lacks
// room for all of them.
func (s *Sender) Enqueue(src apiframe.ByteSource) error {
	if s.released {
		return ErrReleased
	}
	if src.Len() > s.t.tx.Free() {
		s.t.log.Debug("transmit queue full")
		return ErrTxFull
	}
	for {
		c, ok := src.Next()
		if !ok {
			return nil
		}
		s.t.tx.Push(c)
	}
}

func (s *Sender) enqueueFrame(payload apiframe.ByteSource) error {
	p, err := apiframe.NewPacker(payload)
	if err != nil {
		return err
	}
	return s.Enqueue(p)
}

// SendData queues a transmit request. The module answers with a TxStatus
// frame carrying frameID unless frameID is zero.
func (s *Sender) SendData(frameID uint8, dest apiframe.Addr, data []byte) error {
	return s.enqueueFrame(apiframe.NewTxRequest(frameID, dest, 0, apiframe.Bytes(data)))
}

// SendDataNoAck queues a transmit request with MAC acknowledgement disabled.
func (s *Sender) SendDataNoAck(frameID uint8, dest apiframe.Addr, data []byte) error {
	return s.enqueueFrame(apiframe.NewTxRequest(frameID, dest, apiframe.TxDisableAck, apiframe.Bytes(data)))
}

func (s *Sender) ATCommand(frameID uint8, cmd [2]byte, params []byte) error {
	return s.enqueueFrame(apiframe.NewATRequest(frameID, cmd, apiframe.Bytes(params)))
}

func (s *Sender) ATQueueParam(frameID uint8, cmd [2]byte, params []byte) error {
	return s.enqueueFrame(apiframe.NewATQueueParamRequest(frameID, cmd, apiframe.Bytes(params)))
}

func (s *Sender) RemoteATCommand(frameID uint8, dest apiframe.Addr, cmd [2]byte, params []byte) error {
	return s.enqueueFrame(apiframe.NewRemoteATRequestTo(frameID, dest, cmd, apiframe.Bytes(params)))
}

// Free returns the room left in the transmit queue.
func (s *Sender) Free() int { return s.t.tx.Free() }

// Release returns the view to the transport. Further calls fail with
// ErrReleased.
func (s *Sender) Release() {
	if !s.released {
		s.released = true
		s.t.release()
	}
}
