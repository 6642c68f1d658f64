package lmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDump struct {
	calls [][]byte
}

func (d *fakeDump) WriteLMP(master bool, body []byte) error {
	d.calls = append(d.calls, body)
	return nil
}

type fakeFeeder struct {
	master bool
	op1    uint8
	body   []byte
	called bool
}

func (f *fakeFeeder) Feed(master bool, op1 uint8, body []byte) {
	f.master, f.op1, f.body, f.called = master, op1, body, true
}

func TestDecodeExtendedOpcodeS4(t *testing.T) {
	body := []byte{0xF8, 0x03, 0xAA, 0xBB}
	feeder := &fakeFeeder{}

	require.NoError(t, Decode(true, body, nil, nil, feeder))

	assert.True(t, feeder.called)
	assert.EqualValues(t, 124, feeder.op1)
	assert.Equal(t, []byte{0xAA, 0xBB}, feeder.body)
}

func TestDecodeWritesDumpBeforeParsing(t *testing.T) {
	body := []byte{0x10, 0x01, 0x02}
	dump := &fakeDump{}

	require.NoError(t, Decode(true, body, nil, dump, nil))

	require.Len(t, dump.calls, 1)
	assert.Equal(t, body, dump.calls[0])
}

func TestDecodeSimpleOpcodeNoOp2(t *testing.T) {
	body := []byte{0x10, 0xAA} // tid=0, op1=8 (IN_RAND), rest=[0xAA]
	feeder := &fakeFeeder{}

	require.NoError(t, Decode(false, body, nil, nil, feeder))
	assert.EqualValues(t, OpInRand, feeder.op1)
	assert.Equal(t, []byte{0xAA}, feeder.body)
}
