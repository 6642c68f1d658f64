package hci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCommandTimer(t *testing.T) {
	raw, err := EncodeCommand(DebugPacket{Command: CmdTimer})
	require.NoError(t, err)

	assert.Equal(t, byte(FragFirst|FragLast|ChanDebug), raw[0])
	assert.Equal(t, byte(0x07), raw[0])
	assert.Equal(t, byte(CmdTimer), raw[1])
	assert.Equal(t, byte(0x00), raw[2])
	assert.Len(t, raw, 2+PayloadSize)
}

func TestEncodeCommandStart(t *testing.T) {
	master := [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	slave := [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

	raw, err := EncodeCommand(DebugPacket{Command: CmdStart, Payload: StartPayload{Master: master, Slave: slave}})
	require.NoError(t, err)

	payload := raw[2:]
	assert.Equal(t, master[:], payload[0:6])
	assert.Equal(t, slave[:], payload[6:12])
}

func TestEncodeCommandAlwaysStartsWithFragPrefix(t *testing.T) {
	cmds := []DebugPacket{
		{Command: CmdTimer},
		{Command: CmdFilter, Payload: uint8(1)},
		{Command: CmdStop},
		{Command: CmdStart, Payload: StartPayload{}},
	}
	for _, c := range cmds {
		raw, err := EncodeCommand(c)
		require.NoError(t, err)
		assert.Equal(t, byte(FragFirst|FragLast|ChanDebug), raw[0])
		assert.LessOrEqual(t, len(raw), 255)
	}
}

func TestEncodeCommandOverflow(t *testing.T) {
	oversized := make([]byte, PayloadSize+1)
	_, err := EncodeCommand(DebugPacket{Command: CmdStart, Payload: oversized})
	require.Error(t, err)
	assert.True(t, IsOverflow(err))
}
