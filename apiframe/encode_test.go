package apiframe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MasandeM/xbee/apiframe"
)

func TestTxRequestEncoder(t *testing.T) {
	want := []byte{
		0x00,
		0x01,
		0x00, 0x13, 0xA2, 0x00, 0x41, 0x5D, 0x1D, 0xBB,
		0x00,
		0x54, 0x65, 0x73, 0x74, 0x69, 0x6E, 0x67,
	}

	enc := apiframe.NewTxRequest(1, apiframe.LongAddr(0x0013A200415D1DBB), 0, apiframe.Bytes([]byte("Testing")))
	assert.Equal(t, want, apiframe.AppendSource(nil, enc))
}

func TestTxRequestEncoderLen(t *testing.T) {
	tests := []struct {
		name string
		addr apiframe.Addr
		data []byte
	}{
		{name: "long", addr: apiframe.LongAddr(0x0013A200415D1DBB), data: []byte("Testing")},
		{name: "short", addr: apiframe.ShortAddr(apiframe.BroadcastAddr), data: []byte{0x01}},
		{name: "short no data", addr: apiframe.ShortAddr(0x0001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := apiframe.NewTxRequest(7, tt.addr, apiframe.TxDisableAck, apiframe.Bytes(tt.data))
			total := 3 + tt.addr.Width() + len(tt.data)
			for remaining := total; remaining > 0; remaining-- {
				require.Equal(t, remaining, enc.Len())
				_, ok := enc.Next()
				require.True(t, ok)
			}
			assert.Equal(t, 0, enc.Len())
			_, ok := enc.Next()
			assert.False(t, ok)
		})
	}
}

func TestPackedTxRequest(t *testing.T) {
	enc := apiframe.NewTxRequest(1, apiframe.LongAddr(0x0013A200415D1DBB), 0, apiframe.Bytes([]byte("Testing")))
	p, err := apiframe.NewPacker(enc)
	require.NoError(t, err)

	frame := apiframe.AppendSource(nil, p)
	require.Len(t, frame, 22)
	assert.Equal(t, []byte{0x7E, 0x00, 0x12}, frame[:3])
	assert.Equal(t, byte(0xF5), frame[len(frame)-1])
}

func TestATRequestEncoders(t *testing.T) {
	tests := []struct {
		name string
		enc  apiframe.ByteSource
		want []byte
	}{
		{
			name: "at command",
			enc:  apiframe.NewATRequest(0x52, apiframe.Command("NH"), apiframe.Bytes(nil)),
			want: []byte{0x08, 0x52, 0x4E, 0x48},
		},
		{
			name: "queued parameter",
			enc:  apiframe.NewATQueueParamRequest(0x01, apiframe.Command("BD"), apiframe.Bytes([]byte{0x07})),
			want: []byte{0x09, 0x01, 0x42, 0x44, 0x07},
		},
		{
			name: "remote",
			enc: apiframe.NewRemoteATRequest(0x05, 0x0013A20040401122, apiframe.CoordinatorAddr,
				apiframe.Command("D1"), apiframe.Bytes([]byte{0x04})),
			want: []byte{
				0x17, 0x05,
				0x00, 0x13, 0xA2, 0x00, 0x40, 0x40, 0x11, 0x22,
				0xFF, 0xFE,
				0x44, 0x31,
				0x04,
			},
		},
		{
			name: "remote by short address",
			enc:  apiframe.NewRemoteATRequestTo(0x06, apiframe.ShortAddr(0x1234), apiframe.Command("WR"), apiframe.Bytes(nil)),
			want: []byte{
				0x17, 0x06,
				0, 0, 0, 0, 0, 0, 0, 0,
				0x12, 0x34,
				0x57, 0x52,
			},
		},
		{
			name: "remote by long address",
			enc:  apiframe.NewRemoteATRequestTo(0x07, apiframe.LongAddr(0x0013A20040401122), apiframe.Command("AC"), apiframe.Bytes(nil)),
			want: []byte{
				0x17, 0x07,
				0x00, 0x13, 0xA2, 0x00, 0x40, 0x40, 0x11, 0x22,
				0xFF, 0xFE,
				0x41, 0x43,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, len(tt.want), tt.enc.Len())
			assert.Equal(t, tt.want, apiframe.AppendSource(nil, tt.enc))
			assert.Equal(t, 0, tt.enc.Len())
		})
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	outbound := []apiframe.Content{
		apiframe.TxRequest{FrameID: 1, Dest: apiframe.LongAddr(0x0013A200415D1DBB), Data: []byte("Testing")},
		apiframe.TxRequest{FrameID: 2, Dest: apiframe.ShortAddr(0x1234), Options: apiframe.TxDisableAck, Data: []byte{}},
		apiframe.ATCommand{FrameID: 3, Command: apiframe.Command("NI"), Params: []byte("node")},
		apiframe.ATCommandQueueParam{FrameID: 4, Command: apiframe.Command("CH"), Params: []byte{0x0C}},
		apiframe.RemoteATCommand{FrameID: 5, Dest64: 0x0013A20040401122, Dest16: 0xFFFE, Command: apiframe.Command("D0"), Params: []byte{}},
	}

	for _, c := range outbound {
		src, err := apiframe.Encode(c)
		require.NoError(t, err)
		p, err := apiframe.NewPacker(src)
		require.NoError(t, err)

		payload, rest, err := apiframe.Unpack(apiframe.AppendSource(nil, p))
		require.NoError(t, err)
		assert.Empty(t, rest)

		got, err := apiframe.Parse(payload)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestEncodeInbound(t *testing.T) {
	_, err := apiframe.Encode(apiframe.ModemStatusReport{})
	assert.ErrorIs(t, err, apiframe.ErrNotOutbound)
}

func TestIndexStart(t *testing.T) {
	assert.Equal(t, 2, apiframe.IndexStart([]byte{0x00, 0x11, 0x7E, 0x7E}))
	assert.Equal(t, -1, apiframe.IndexStart([]byte{0x00, 0x11}))
	assert.Equal(t, "modem_status", apiframe.TypeName(apiframe.FrameTypeModemStatus))
}
