// Package hci implements the CSR "frontline" vendor debug channel: the
// fixed-header command packets sent to the adapter to arm capture, and the
// EVT_VENDOR replies the adapter sends back to them. Captured baseband
// frames arrive separately, as ACL data frames read with ReadRaw.
package hci

import (
	"bytes"
	"encoding/binary"
)

// Debug channel fragmentation flags, packed into the first byte of every
// command written to the adapter alongside CHAN_DEBUG.
const (
	FragFirst = 0x01
	FragLast  = 0x02
	ChanDebug = 0x04
)

// OGF/event constants for the vendor debug channel.
const (
	OgfVendorCmd = 0x3F
	EvtVendor    = 0xFF
)

// Debug command codes understood by the CSR firmware's debug handler.
const (
	CmdTimer  = 0x00
	CmdFilter = 0x01
	CmdStop   = 0x02
	CmdStart  = 0x03
)

// PayloadSize is the fixed inline payload area of every DebugPacket,
// sized to the largest command (START's two MACs). Commands with a
// smaller payload (or none) leave the remainder zero-padded so every
// encoded command has the same total length regardless of type.
const PayloadSize = 12

// DebugPacket is a single fixed-header debug-channel command. Payload is
// marshalled with binary.Write in declared field order, then zero-padded
// out to PayloadSize, matching the way the firmware lays out its debug
// command structures.
type DebugPacket struct {
	Command uint8
	Payload interface{}
}

// StartPayload is the body of a CmdStart command: which master/slave
// pair to follow, in the byte order the caller supplies (see
// csniff.ParsePair — byte reversal, if firmware needs it, is the
// caller's job).
type StartPayload struct {
	Master [6]byte
	Slave  [6]byte
}

// EncodeCommand marshals a DebugPacket into the bytes written to the
// socket: the fragmentation/channel prefix byte, the command code, and
// the little-endian, zero-padded fixed-size payload.
func EncodeCommand(p DebugPacket) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteByte(FragFirst | FragLast | ChanDebug)
	buf.WriteByte(p.Command)

	payload := new(bytes.Buffer)
	if p.Payload != nil {
		if err := binary.Write(payload, binary.LittleEndian, p.Payload); err != nil {
			return nil, err
		}
	}
	if payload.Len() > PayloadSize {
		return nil, errEncodeOverflow(payload.Len())
	}

	buf.Write(payload.Bytes())
	for i := payload.Len(); i < PayloadSize; i++ {
		buf.WriteByte(0)
	}
	return buf.Bytes(), nil
}
