package dump

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLMPRecordLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	body := make([]byte, 17)
	for i := range body {
		body[i] = byte(i + 1)
	}

	require.NoError(t, w.WriteLMP(true, body))

	got := buf.Bytes()
	require.Len(t, got, 12+1+2+20)

	// DumpHdr: Len, In, Pad, TsSec, TsUsec
	assert.Equal(t, []byte{23, 0}, got[0:2])
	assert.Equal(t, byte(1), got[2]) // In
	assert.Equal(t, byte(0x04), got[12])
	assert.Equal(t, byte(0xFF), got[13]) // EvtHdr.Evt
	assert.Equal(t, byte(20), got[14])   // EvtHdr.Plen
	assert.Equal(t, byte(20), got[15])   // channel_id
	assert.Equal(t, byte(0x10), got[16]) // dir byte, master
	assert.Equal(t, body, got[17:34])
	assert.Equal(t, byte(0), got[34]) // connection_handle
}

func TestWriteLMPRejectsOversizedBody(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	err := w.WriteLMP(true, make([]byte, 18))
	require.Error(t, err)
}

func TestWriteL2CAPRecordLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	body := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, w.WriteL2CAP(true, 3, body))

	got := buf.Bytes()
	require.Len(t, got, 12+1+4+len(body))
	assert.Equal(t, byte(0x02), got[12]) // HCI_ACLDATA_PKT
	assert.Equal(t, body, got[17:21])
}
