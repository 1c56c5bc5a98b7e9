package rxscan_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MasandeM/xbee/apiframe"
	"github.com/MasandeM/xbee/internal/queue"
	"github.com/MasandeM/xbee/internal/rxscan"
)

var (
	txStatus    = []byte{0x7E, 0x00, 0x03, 0x89, 0x01, 0x00, 0x75}
	modemStatus = []byte{0x7E, 0x00, 0x02, 0x8A, 0x02, 0x73}
)

func load(t *testing.T, capacity int, chunks ...[]byte) *queue.Buffer {
	t.Helper()
	b := queue.New(capacity)
	for _, chunk := range chunks {
		for _, c := range chunk {
			require.True(t, b.Push(c))
		}
	}
	return b
}

func TestNextSkipsNoise(t *testing.T) {
	buf := load(t, 64, []byte{0x00, 0x13, 0x42}, txStatus, modemStatus)
	s := rxscan.New(buf, nil)

	c, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, apiframe.TxStatusReport{FrameID: 1, Status: apiframe.TxStatusStandard}, c)
	s.Consume()

	c, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, apiframe.ModemStatusReport{Status: apiframe.ModemAssociated}, c)
	s.Consume()

	_, err = s.Next()
	assert.ErrorIs(t, err, rxscan.ErrIncomplete)
	assert.Equal(t, 0, buf.Len())
}

func TestNextResyncsAfterCorruptFrame(t *testing.T) {
	bad := append([]byte(nil), txStatus...)
	bad[len(bad)-1] ^= 0x01
	unknown := []byte{0x7E, 0x00, 0x01, 0x42, 0xBD}
	buf := load(t, 64, bad, unknown, modemStatus)

	var reasons []string
	s := rxscan.New(buf, nil)
	s.OnReject = func(err error) { reasons = append(reasons, rxscan.Reason(err)) }

	c, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, apiframe.ModemStatusReport{Status: apiframe.ModemAssociated}, c)
	assert.Equal(t, []string{"checksum", "content"}, reasons)
}

func TestNextWaitsForPartialFrame(t *testing.T) {
	buf := load(t, 64, txStatus[:4])
	s := rxscan.New(buf, nil)

	_, err := s.Next()
	require.ErrorIs(t, err, rxscan.ErrIncomplete)
	assert.Equal(t, txStatus[:4], buf.Bytes(), "a partial frame must be kept")

	for _, c := range txStatus[4:] {
		buf.Push(c)
	}
	c, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, byte(apiframe.FrameTypeTxStatus), c.FrameType())
}

func TestNextAbandonsStalledFrame(t *testing.T) {
	// a stray delimiter declaring 0x100 bytes, which would fit the buffer
	buf := load(t, 512, []byte{0x7E, 0x01, 0x00}, txStatus, modemStatus)
	s := rxscan.New(buf, nil)

	var reasons []string
	s.OnReject = func(err error) { reasons = append(reasons, rxscan.Reason(err)) }

	c, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, apiframe.TxStatusReport{FrameID: 1, Status: apiframe.TxStatusStandard}, c)
	assert.Equal(t, []string{"length"}, reasons)
	s.Consume()

	c, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, apiframe.ModemStatusReport{Status: apiframe.ModemAssociated}, c)
}

func TestNextKeepsPartialFrameWithoutValidSuccessor(t *testing.T) {
	bad := append([]byte(nil), modemStatus...)
	bad[len(bad)-1] ^= 0xFF
	buf := load(t, 512, []byte{0x7E, 0x01, 0x00}, bad)
	s := rxscan.New(buf, nil)

	_, err := s.Next()
	require.ErrorIs(t, err, rxscan.ErrIncomplete)
	assert.Equal(t, 3+len(bad), buf.Len(), "nothing is dropped without a complete frame behind it")
}

func TestNextDropsOversizedFrame(t *testing.T) {
	// declares 0x100 bytes, more than the buffer can ever hold
	buf := load(t, 16, []byte{0x7E, 0x01, 0x00, 0x80}, modemStatus)
	s := rxscan.New(buf, nil)

	var rejected []error
	s.OnReject = func(err error) { rejected = append(rejected, err) }

	c, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, byte(apiframe.FrameTypeModemStatus), c.FrameType())
	require.Len(t, rejected, 1)
	assert.Equal(t, "length", rxscan.Reason(rejected[0]))
}

func TestDecodeDoesNotMutate(t *testing.T) {
	buf := load(t, 16, txStatus)
	s := rxscan.New(buf, nil)

	_, err := s.Decode()
	require.NoError(t, err)
	_, err = s.Decode()
	require.NoError(t, err)
	assert.Equal(t, txStatus, buf.Bytes())
}

func TestDiscardToStart(t *testing.T) {
	buf := load(t, 16, []byte{1, 2, 3})
	s := rxscan.New(buf, nil)
	s.DiscardToStart()
	assert.True(t, buf.Empty(), "no delimiter empties the buffer")

	buf = load(t, 16, []byte{1, 2, 0x7E, 3})
	s = rxscan.New(buf, nil)
	s.DiscardToStart()
	assert.Equal(t, []byte{0x7E, 3}, buf.Bytes())

	s.AdvancePastFrame()
	assert.True(t, buf.Empty())
}

func TestReason(t *testing.T) {
	assert.Equal(t, "other", rxscan.Reason(errors.New("x")))
	assert.Equal(t, "checksum", rxscan.Reason(&apiframe.ChecksumError{}))
}
