package csniff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nopper/packet-manipulator/pairing"
)

type fakeDumpSink struct {
	l2capCalls int
	lmpCalls   int
}

func (f *fakeDumpSink) WriteL2CAP(master bool, llid uint8, body []byte) error {
	f.l2capCalls++
	return nil
}
func (f *fakeDumpSink) WriteLMP(master bool, body []byte) error {
	f.lmpCalls++
	return nil
}

type fakeExporter struct {
	exported []pairing.Transcript
}

func (f *fakeExporter) Export(t pairing.Transcript) error {
	f.exported = append(f.exported, t)
	return nil
}

func TestSessionHandleLMPFeedsPairingObserver(t *testing.T) {
	dump := &fakeDumpSink{}
	exporter := &fakeExporter{}
	s := NewSession(WithDumpWriter(dump), WithTranscriptExporter(exporter))

	master := [6]byte{1, 1, 1, 1, 1, 1}
	slave := [6]byte{2, 2, 2, 2, 2, 2}
	s.observer = pairing.NewObserver(master, slave)

	feed := func(isMaster bool, op1 uint8, fill byte, n int) {
		body := make([]byte, n+1)
		body[0] = op1 << 1 // tid=0
		for i := 1; i <= n; i++ {
			body[i] = fill
		}
		require.NoError(t, s.HandleLMP(isMaster, 3, body))
	}

	feed(true, pairingOpInRand, 0x11, 16)
	feed(true, pairingOpCombKey, 0x22, 16)
	feed(false, pairingOpCombKey, 0x33, 16)
	feed(true, pairingOpAURand, 0x44, 16)
	feed(false, pairingOpAURand, 0x55, 16)
	feed(false, pairingOpSRES, 0x66, 4)
	feed(true, pairingOpSRES, 0x77, 4)

	require.Len(t, exporter.exported, 1)
	assert.Equal(t, master, exporter.exported[0].Master)
	assert.Equal(t, 7, dump.lmpCalls)
}

func TestSessionHandleL2CAPWritesDump(t *testing.T) {
	dump := &fakeDumpSink{}
	s := NewSession(WithDumpWriter(dump))

	require.NoError(t, s.HandleL2CAP(true, 1, []byte{0xAA, 0xBB}))
	assert.Equal(t, 1, dump.l2capCalls)
}

func TestSessionIgnoreTypesCapacity(t *testing.T) {
	s := NewSession()
	for i := 0; i < MaxIgnoreTypes+5; i++ {
		s.ignore.Add(uint8(i))
	}
	assert.True(t, s.ignore.Contains(0))
	assert.True(t, s.ignore.Contains(uint8(MaxIgnoreTypes-1)))
	assert.False(t, s.ignore.Contains(uint8(MaxIgnoreTypes)))
}

const (
	pairingOpInRand  = 8
	pairingOpCombKey = 9
	pairingOpAURand  = 11
	pairingOpSRES    = 12
)
