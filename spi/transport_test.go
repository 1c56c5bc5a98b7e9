package spi_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MasandeM/xbee/apiframe"
	"github.com/MasandeM/xbee/driver/stub"
	"github.com/MasandeM/xbee/spi"
)

var (
	txStatus    = []byte{0x7E, 0x00, 0x03, 0x89, 0x01, 0x00, 0x75}
	modemStatus = []byte{0x7E, 0x00, 0x02, 0x8A, 0x02, 0x73}
)

func split(t *testing.T, tr *spi.Transport) (*spi.Sender, *spi.Receiver) {
	t.Helper()
	tx, rx, err := tr.Split()
	require.NoError(t, err)
	return tx, rx
}

func TestPollSendsQueuedFrame(t *testing.T) {
	m := stub.NewModule()
	tr := spi.New(m, m)

	tx, rx := split(t, tr)
	require.NoError(t, tx.SendData(0x01, apiframe.LongAddr(0x0013A200415D1DBB), []byte("Testing")))
	tx.Release()
	rx.Release()

	stored, err := tr.Poll()
	require.NoError(t, err)
	assert.False(t, stored, "nothing arrives while attention is idle")
	assert.Equal(t, 0, tr.TxLen())

	sent := m.Received()
	require.Len(t, sent, 22)
	assert.Equal(t, []byte{0x7E, 0x00, 0x12}, sent[:3])
	assert.Equal(t, byte(0xF5), sent[21])
}

func TestPollReceivesWhileAttentionAsserted(t *testing.T) {
	m := stub.NewModule()
	m.Inject(append(append([]byte{}, txStatus...), modemStatus...))
	tr := spi.New(m, m)

	stored, err := tr.Poll()
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, 0, m.Pending())
	assert.Equal(t, len(txStatus)+len(modemStatus), len(m.Received()))
	for _, c := range m.Received() {
		assert.Equal(t, byte(spi.Filler), c, "idle transmit queue clocks out filler")
	}

	_, rx := split(t, tr)
	c, err := rx.Next()
	require.NoError(t, err)
	assert.Equal(t, apiframe.TxStatusReport{FrameID: 1, Status: apiframe.TxStatusStandard}, c)
	require.NoError(t, rx.Consume())

	c, err = rx.Next()
	require.NoError(t, err)
	assert.Equal(t, apiframe.ModemStatusReport{Status: apiframe.ModemAssociated}, c)
	require.NoError(t, rx.Consume())

	_, err = rx.Next()
	assert.ErrorIs(t, err, spi.ErrIncomplete)
}

func TestPollRxFull(t *testing.T) {
	m := stub.NewModule()
	m.Inject(make([]byte, 10))
	tr := spi.New(m, m, spi.WithRxCapacity(4))

	stored, err := tr.Poll()
	assert.True(t, stored)
	require.ErrorIs(t, err, spi.ErrRxFull)
	assert.Equal(t, 6, m.Pending())

	tx, rx := split(t, tr)
	assert.Equal(t, 4, rx.Len())
	require.NoError(t, rx.DiscardToStart())
	assert.Equal(t, 0, rx.Len())
	tx.Release()
	rx.Release()

	_, err = tr.Poll()
	require.ErrorIs(t, err, spi.ErrRxFull)
	assert.Equal(t, 2, m.Pending())
}

func TestPollWouldBlock(t *testing.T) {
	m := stub.NewModule()
	tr := spi.New(m, m, spi.WithWouldBlockRetries(3))
	tx, rx := split(t, tr)
	require.NoError(t, tx.Enqueue(apiframe.Bytes([]byte{0xAA, 0xBB})))
	tx.Release()
	rx.Release()

	m.BlockSend(3)
	m.BlockRead(2)
	_, err := tr.Poll()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, m.Received())

	tx, rx = split(t, tr)
	require.NoError(t, tx.Enqueue(apiframe.Bytes([]byte{0xCC})))
	tx.Release()
	rx.Release()

	m.BlockSend(4)
	_, err = tr.Poll()
	require.ErrorIs(t, err, spi.ErrWouldBlock)
	assert.Equal(t, 1, tr.TxLen(), "a byte is only dequeued once it was sent")

	_, err = tr.Poll()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, m.Received())
}

func TestPollLinkError(t *testing.T) {
	m := stub.NewModule()
	m.Inject([]byte{0x7E})
	boom := errors.New("bus fault")
	m.FailSend(boom)

	_, err := spi.New(m, m).Poll()
	assert.ErrorIs(t, err, boom)
}

func TestPollActiveHigh(t *testing.T) {
	m := stub.NewModule()
	tr := spi.New(m, stub.Level(false), spi.WithActiveHigh())
	stored, err := tr.Poll()
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Empty(t, m.Received())
}

func TestPollLiveness(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		m := stub.NewModule()
		m.Inject(make([]byte, rng.Intn(64)))
		attn := stub.Pin(func() bool {
			// drop the line at random while the module still has data
			return m.IsHigh() || rng.Intn(4) == 0
		})
		tr := spi.New(m, attn, spi.WithRxCapacity(1024))

		tx, rx := split(t, tr)
		require.NoError(t, tx.Enqueue(apiframe.Bytes(make([]byte, rng.Intn(32)))))
		tx.Release()
		rx.Release()

		for polls := 0; m.Pending() > 0 || tr.TxLen() > 0; polls++ {
			require.Less(t, polls, 1000, "poll loop made no progress")
			_, err := tr.Poll()
			require.NoError(t, err)
		}
	}
}

func TestSplitExclusive(t *testing.T) {
	m := stub.NewModule()
	tr := spi.New(m, m)

	tx, rx := split(t, tr)
	_, _, err := tr.Split()
	assert.ErrorIs(t, err, spi.ErrBusy)
	_, err = tr.Poll()
	assert.ErrorIs(t, err, spi.ErrBusy)

	tx.Release()
	tx.Release()
	_, _, err = tr.Split()
	assert.ErrorIs(t, err, spi.ErrBusy, "both views must be released")

	rx.Release()
	assert.ErrorIs(t, tx.Enqueue(apiframe.Bytes([]byte{1})), spi.ErrReleased)
	_, err = rx.Next()
	assert.ErrorIs(t, err, spi.ErrReleased)
	assert.ErrorIs(t, rx.Consume(), spi.ErrReleased)

	_, _, err = tr.Split()
	assert.NoError(t, err)
}

func TestEnqueueAllOrNothing(t *testing.T) {
	m := stub.NewModule()
	tr := spi.New(m, m, spi.WithTxCapacity(8))
	tx, _ := split(t, tr)

	require.NoError(t, tx.Enqueue(apiframe.Bytes([]byte{1, 2, 3, 4, 5})))
	err := tx.Enqueue(apiframe.Bytes([]byte{6, 7, 8, 9}))
	require.ErrorIs(t, err, spi.ErrTxFull)
	assert.Equal(t, 3, tx.Free())
	assert.Equal(t, 5, tr.TxLen())

	// a 4-byte AT payload packs to 8 bytes, more than is free
	err = tx.ATCommand(1, apiframe.Command("NI"), nil)
	assert.ErrorIs(t, err, spi.ErrTxFull)
}

func TestSenderFrames(t *testing.T) {
	tests := []struct {
		name string
		send func(*spi.Sender) error
		want []byte
	}{
		{
			name: "no ack",
			send: func(s *spi.Sender) error {
				return s.SendDataNoAck(0, apiframe.ShortAddr(apiframe.BroadcastAddr), []byte{0x55})
			},
			want: []byte{0x7E, 0x00, 0x06, 0x01, 0x00, 0xFF, 0xFF, 0x01, 0x55, 0xAA},
		},
		{
			name: "at command",
			send: func(s *spi.Sender) error { return s.ATCommand(0x52, apiframe.Command("NH"), nil) },
			want: []byte{0x7E, 0x00, 0x04, 0x08, 0x52, 0x4E, 0x48, 0x0F},
		},
		{
			name: "queued parameter",
			send: func(s *spi.Sender) error { return s.ATQueueParam(0x01, apiframe.Command("BD"), []byte{0x07}) },
			want: []byte{0x7E, 0x00, 0x05, 0x09, 0x01, 0x42, 0x44, 0x07, 0x68},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := stub.NewModule()
			tr := spi.New(m, m)
			tx, rx := split(t, tr)
			require.NoError(t, tt.send(tx))
			tx.Release()
			rx.Release()

			_, err := tr.Poll()
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Received())
		})
	}
}

func TestRemoteATCommandFrame(t *testing.T) {
	m := stub.NewModule()
	tr := spi.New(m, m)
	tx, rx := split(t, tr)
	require.NoError(t, tx.RemoteATCommand(1, apiframe.ShortAddr(0x1234), apiframe.Command("WR"), nil))
	tx.Release()
	rx.Release()

	_, err := tr.Poll()
	require.NoError(t, err)

	payload, rest, err := apiframe.Unpack(m.Received())
	require.NoError(t, err)
	assert.Empty(t, rest)
	c, err := apiframe.Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, apiframe.RemoteATCommand{
		FrameID: 1,
		Dest16:  0x1234,
		Command: apiframe.Command("WR"),
		Params:  []byte{},
	}, c)
}
