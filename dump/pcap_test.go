package dump

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPcapWriterWritesFileHeaderAndPacket(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewPcapWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, w.WriteL2CAP(true, 2, []byte{0x01, 0x02}))

	// pcap global header starts with the magic number, little-endian.
	assert.Equal(t, []byte{0xd4, 0xc3, 0xb2, 0xa1}, buf.Bytes()[0:4])
	assert.Greater(t, buf.Len(), 24)
}
