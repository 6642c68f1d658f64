package csniff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePair(t *testing.T) {
	master, slave, err := ParsePair("11:22:33:44:55:66@AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	assert.Equal(t, [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}, master)
	assert.Equal(t, [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, slave)
}

func TestParsePairMissingSeparator(t *testing.T) {
	_, _, err := ParsePair("11:22:33:44:55:66")
	require.Error(t, err)
	assert.Equal(t, KindBadPairSpec, CauseKind(err))
}

func TestParsePairBadMAC(t *testing.T) {
	_, _, err := ParsePair("zz:22:33:44:55:66@AA:BB:CC:DD:EE:FF")
	require.Error(t, err)
	assert.Equal(t, KindBadAddress, CauseKind(err))
}
