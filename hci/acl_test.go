package hci

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackACLHandleLLIDRoundTrip(t *testing.T) {
	for llid := uint16(0); llid <= 3; llid++ {
		packed := PackACLHandle(0, uint8(llid))
		assert.Equal(t, uint16(0), packed&0x0FFF)
		assert.Equal(t, llid, (packed>>12)&0xF)

		handle, flags := UnpackACLHandle(packed)
		assert.Equal(t, uint16(0), handle)
		assert.Equal(t, uint8(llid), flags)
	}
}
