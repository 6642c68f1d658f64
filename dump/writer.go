// Package dump persists captured traffic in the classic hcidump binary
// format, byte-exact so existing trace viewers can replay a capture.
package dump

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/nopper/packet-manipulator/hci"
)

const evtVendor = hci.EvtVendor

// DumpHdr is the 12-byte record header hcidump prefixes every frame
// with. Len counts the type byte plus whatever sub-header and payload
// follow it. This writer always sets In to 1 and leaves the timestamp
// fields zero (see SPEC_FULL.md's open-question resolution); they are
// part of the wire format regardless.
type DumpHdr struct {
	Len    uint16
	In     uint8
	Pad    uint8
	TsSec  uint32
	TsUsec uint32
}

// Writer writes hcidump records to an underlying io.Writer. It is used
// from the single decode path only; no synchronization is provided.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w as a hcidump sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteL2CAP writes an L2CAP (ACL data) record: the raw body as the ACL
// payload, direction always "in", and the handle field packing
// (handle=0, flags=llid) via the standard ACL-handle packing.
func (w *Writer) WriteL2CAP(master bool, llid uint8, body []byte) error {
	hdr := DumpHdr{
		Len: uint16(1 + 4 + len(body)),
		In:  1,
	}
	acl := hci.ACLHdr{
		Handle: hci.PackACLHandle(0, llid),
		Dlen:   uint16(len(body)),
	}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, hdr); err != nil {
		return err
	}
	buf.WriteByte(hci.PktACLData)
	if err := binary.Write(buf, binary.LittleEndian, acl); err != nil {
		return err
	}
	buf.Write(body)

	return w.flush(buf.Bytes())
}

// WriteLMP writes a synthetic CSR-proprietary vendor event wrapping an
// LMP body, so existing trace viewers display it as a recognizable
// event. body must be at most 17 bytes; longer bodies are out of scope
// for this wrapper format.
func (w *Writer) WriteLMP(master bool, body []byte) error {
	if len(body) > 17 {
		return errOversizedLMP(len(body))
	}

	const totalBody = 20
	hdr := DumpHdr{
		Len: uint16(1 + 2 + totalBody),
		In:  1,
	}
	evt := hci.EvtHdr{Evt: evtVendor, Plen: totalBody}

	dirByte := uint8(0x0F)
	if master {
		dirByte = 0x10
	}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, hdr); err != nil {
		return err
	}
	buf.WriteByte(hci.PktEvent)
	if err := binary.Write(buf, binary.LittleEndian, evt); err != nil {
		return err
	}
	buf.WriteByte(20) // channel_id
	buf.WriteByte(dirByte)

	var lmpField [17]byte
	copy(lmpField[:], body)
	buf.Write(lmpField[:])
	buf.WriteByte(0) // connection_handle

	return w.flush(buf.Bytes())
}

func (w *Writer) flush(b []byte) error {
	n, err := w.w.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return errShortWrite(n, len(b))
	}
	return nil
}
