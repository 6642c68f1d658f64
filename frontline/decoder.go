// Package frontline decodes the CSR vendor debug channel's fragment
// stream into dispatchable LMP/L2CAP/DV payloads.
package frontline

import (
	"fmt"
)

// Header-length variants the decoder accepts. Both share the same
// leading field layout (hlen, chan, clock32, hdr0, lenWord); HLEN_BC4
// carries three extra trailing bytes (reserved/RSSI) that are skipped,
// not interpreted.
const (
	HlenBC2 = 9
	HlenBC4 = 12
)

// Fixed header bitfield masks and shifts, per the clock/hdr0/len word
// layout the firmware uses.
const (
	FPClockMask  = 0x07FFFFFF
	FPStatusShift = 27

	FPTypeShift = 4
	FPTypeMask  = 0x0F
	FPAddrMask  = 0x0F

	FPLenShift     = 2
	FPLenLLIDShift = 0
	FPLenLLIDMask  = 0x03

	FPSlaveMask = 0x80000000

	TypeDV   = 8
	LLIDLMP  = 3
)

// MaxIgnoreTypes bounds the fixed-capacity frontline type ignore-list.
const MaxIgnoreTypes = 16

// IgnoreList reports whether a frontline frame type is configured to be
// dropped before decode.
type IgnoreList interface {
	Contains(t uint8) bool
}

// PayloadHandler receives the decoded body of one frontline fragment. The
// frontline package has no knowledge of LMP/L2CAP semantics; it only
// slices and dispatches.
type PayloadHandler interface {
	HandleDV(body []byte)
	HandleLMP(master bool, llid uint8, body []byte) error
	HandleL2CAP(master bool, llid uint8, body []byte) error
}

// Logger is the minimal structured-logging surface the decoder needs;
// satisfied structurally by the root package's Logger so this package
// never imports it.
type Logger interface {
	Debugf(string, ...interface{})
}

// Frame is the parsed fixed header of one fragment, exposed for logging
// and tests.
type Frame struct {
	Hlen   int
	Chan   uint8
	Clock  uint32
	Type   uint8
	Addr   uint8
	Plen   uint16
	LLID   uint8
	Master bool
}

// Decode parses one or more concatenated frontline fragments out of buf,
// dispatching each fragment's payload to h. It recurses on the tail
// exactly as many times as there are fragments, satisfying the
// hlen+plen-sums-to-input-length invariant.
func Decode(buf []byte, ignore IgnoreList, ignoreZero bool, log Logger, h PayloadHandler) error {
	if len(buf) == 0 {
		return nil
	}

	hlen := int(buf[0])
	if hlen != HlenBC2 && hlen != HlenBC4 {
		return fmt.Errorf("unsupported frontline header length %d", hlen)
	}
	if len(buf) < hlen {
		return fmt.Errorf("short frontline fragment: have %d, need %d", len(buf), hlen)
	}

	chanID := buf[1]
	clock := uint32(buf[2]) | uint32(buf[3])<<8 | uint32(buf[4])<<16 | uint32(buf[5])<<24
	hdr0 := buf[6]
	lenWord := uint16(buf[7]) | uint16(buf[8])<<8

	frame := Frame{
		Hlen:   hlen,
		Chan:   chanID,
		Clock:  clock & FPClockMask,
		Type:   (hdr0 >> FPTypeShift) & FPTypeMask,
		Addr:   hdr0 & FPAddrMask,
		Plen:   lenWord >> FPLenShift,
		LLID:   uint8((lenWord >> FPLenLLIDShift) & FPLenLLIDMask),
		Master: clock&FPSlaveMask == 0,
	}

	if ignore != nil && ignore.Contains(frame.Type) {
		return nil
	}
	if frame.Plen == 0 && ignoreZero {
		return nil
	}

	if log != nil {
		log.Debugf("frontline: chan=%d type=%d addr=%d plen=%d llid=%d master=%v",
			frame.Chan, frame.Type, frame.Addr, frame.Plen, frame.LLID, frame.Master)
	}

	end := hlen + int(frame.Plen)
	if len(buf) < end {
		return fmt.Errorf("short frontline payload: have %d, need %d", len(buf), end)
	}
	payload := buf[hlen:end]

	if err := dispatch(frame, payload, h); err != nil {
		return err
	}

	if remaining := len(buf) - end; remaining > 0 {
		return Decode(buf[end:], ignore, ignoreZero, log, h)
	}
	return nil
}

func dispatch(frame Frame, payload []byte, h PayloadHandler) error {
	switch {
	case frame.Type == TypeDV:
		h.HandleDV(payload)
		return nil
	case frame.LLID == LLIDLMP:
		return h.HandleLMP(frame.Master, frame.LLID, payload)
	default:
		return h.HandleL2CAP(frame.Master, frame.LLID, payload)
	}
}
