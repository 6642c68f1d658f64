// Package l2cap decodes the L2CAP payload of a frontline fragment: in
// this sniffer's scope that's just a hexdump plus an optional dump/pcap
// sidecar write, since full L2CAP channel reassembly is out of scope.
package l2cap

// Logger is the minimal logging surface this package needs.
type Logger interface {
	Debugf(string, ...interface{})
}

// DumpWriter receives the raw ACL payload for hcidump persistence.
type DumpWriter interface {
	WriteL2CAP(master bool, llid uint8, body []byte) error
}

// PcapWriter optionally mirrors the same payload into a Wireshark-
// compatible sidecar capture.
type PcapWriter interface {
	WriteL2CAP(master bool, llid uint8, body []byte) error
}

// Decode hexdump-logs body and, if dump/pcap sinks are configured,
// persists it as an ACL record whose handle encodes (handle=0, flags=llid).
func Decode(master bool, llid uint8, body []byte, log Logger, dump DumpWriter, pcap PcapWriter) error {
	if log != nil {
		log.Debugf("l2cap: master=%v llid=%d body=% x", master, llid, body)
	}

	if dump != nil {
		if err := dump.WriteL2CAP(master, llid, body); err != nil {
			return err
		}
	}
	if pcap != nil {
		if err := pcap.WriteL2CAP(master, llid, body); err != nil {
			return err
		}
	}
	return nil
}
