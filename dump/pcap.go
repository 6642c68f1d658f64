package dump

import (
	"io"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/nopper/packet-manipulator/hci"
)

// PcapWriter mirrors captured L2CAP payloads into a Wireshark-compatible
// pcap file alongside the canonical hcidump output. It reuses the ACL
// framing WriteL2CAP already computes so a packet capture tool sees the
// same bytes BlueZ's own HCI monitor would have produced.
type PcapWriter struct {
	w *pcapgo.Writer
}

// NewPcapWriter wraps w (typically an *os.File) with a pcap file header
// using the Bluetooth H4-with-pseudoheader linktype, so captures open
// directly in Wireshark.
func NewPcapWriter(w io.Writer) (*PcapWriter, error) {
	// DLT_BLUETOOTH_HCI_H4_WITH_PHDR (201); this gopacket release does not
	// export a named layers.LinkType constant for it.
	const linkTypeBluetoothHCIH4WithPHDR layers.LinkType = 201

	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(65536, linkTypeBluetoothHCIH4WithPHDR); err != nil {
		return nil, err
	}
	return &PcapWriter{w: pw}, nil
}

// WriteL2CAP appends one ACL frame to the pcap sidecar, framed as an
// inbound H4 ACL packet so Wireshark's bluetooth dissector picks it up.
func (p *PcapWriter) WriteL2CAP(master bool, llid uint8, body []byte) error {
	acl := hci.ACLHdr{Handle: hci.PackACLHandle(0, llid), Dlen: uint16(len(body))}

	frame := make([]byte, 0, 4+4+len(body))
	// 4-byte H4 pseudoheader: direction (1=incoming), remaining 3 bytes
	// reserved/zero.
	frame = append(frame, 1, 0, 0, 0)
	frame = append(frame, hci.PktACLData)
	frame = append(frame, byte(acl.Handle), byte(acl.Handle>>8))
	frame = append(frame, byte(acl.Dlen), byte(acl.Dlen>>8))
	frame = append(frame, body...)

	ci := gopacket.CaptureInfo{
		Timestamp:     time.Time{},
		CaptureLength: len(frame),
		Length:        len(frame),
	}
	return p.w.WritePacket(ci, frame)
}
