package csniff

import (
	"github.com/nopper/packet-manipulator/frontline"
	"github.com/nopper/packet-manipulator/hci"
	"github.com/nopper/packet-manipulator/l2cap"
	"github.com/nopper/packet-manipulator/lmp"
	"github.com/nopper/packet-manipulator/pairing"
)

// DumpSink is the hcidump persistence surface a Session can be given;
// satisfied by *dump.Writer.
type DumpSink interface {
	WriteL2CAP(master bool, llid uint8, body []byte) error
	WriteLMP(master bool, body []byte) error
}

// PcapSink is the optional Wireshark sidecar surface; satisfied by
// *dump.PcapWriter.
type PcapSink interface {
	WriteL2CAP(master bool, llid uint8, body []byte) error
}

// TranscriptExporter is the optional JSON sidecar surface; satisfied by
// *pairing.FileExporter.
type TranscriptExporter interface {
	Export(pairing.Transcript) error
}

// Session is the process-wide unit of capture: the HCI transport, the
// receive buffer and ignore filters, and the pairing/dump/pcap
// collaborators it borrows bytes out to. Decoded frame fields are passed
// down the decode path, not stored here. It is driven by a single goroutine; nothing here
// is safe for concurrent use.
type Session struct {
	log        Logger
	ignore     IgnoreList
	ignoreZero bool

	dump     DumpSink
	pcap     PcapSink
	exporter TranscriptExporter

	transport *hci.Transport
	observer  *pairing.Observer

	buf [4096]byte
}

// NewSession constructs a Session with the given options applied; the
// transport is attached separately by the lifecycle methods below, since
// each of them resolves the device name fresh (matching the "all
// commands resolve the device name on entry" rule).
func NewSession(opts ...Option) *Session {
	s := &Session{log: GetLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) logger() Logger {
	if s.log == nil {
		return GetLogger()
	}
	return s.log
}

// wrapVendorErr classifies a SendVendor failure: an oversized payload is a
// caller bug (EncodeOverflow), a missing reply within sendTimeout is
// Timeout, anything else is a genuine I/O failure.
func wrapVendorErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if hci.IsOverflow(err) {
		return WrapError(KindEncodeOverflow, err, msg)
	}
	if hci.IsTimeout(err) {
		return WrapError(KindTimeout, err, msg)
	}
	return WrapError(KindIoError, err, msg)
}

// GetTimer issues a TIMER vendor command against device and returns the
// firmware's little-endian 32-bit clock value from the reply.
func (s *Session) GetTimer(device string) (uint32, error) {
	t, err := hci.Open(device)
	if err != nil {
		return 0, WrapError(KindDeviceNotFound, err, "open "+device)
	}
	defer t.Close()

	reply, err := t.SendVendor(hci.DebugPacket{Command: hci.CmdTimer})
	if err != nil {
		return 0, wrapVendorErr(err, "send timer command")
	}
	if len(reply) < 6 {
		return 0, NewError(KindMalformedFrame, "timer reply too short: %d bytes", len(reply))
	}
	return uint32(reply[2]) | uint32(reply[3])<<8 | uint32(reply[4])<<16 | uint32(reply[5])<<24, nil
}

// SetFilter issues a FILTER vendor command enabling or disabling the
// firmware's own frontline filtering.
func (s *Session) SetFilter(device string, enable bool) error {
	t, err := hci.Open(device)
	if err != nil {
		return WrapError(KindDeviceNotFound, err, "open "+device)
	}
	defer t.Close()

	var payload uint8
	if enable {
		payload = 1
	}
	_, err = t.SendVendor(hci.DebugPacket{Command: hci.CmdFilter, Payload: payload})
	return wrapVendorErr(err, "send filter command")
}

// SniffStop issues a STOP vendor command, ending capture on the firmware
// side without tearing down this process's own handle.
func (s *Session) SniffStop(device string) error {
	t, err := hci.Open(device)
	if err != nil {
		return WrapError(KindDeviceNotFound, err, "open "+device)
	}
	defer t.Close()

	_, err = t.SendVendor(hci.DebugPacket{Command: hci.CmdStop})
	return wrapVendorErr(err, "send stop command")
}

// SniffStart issues a START vendor command naming the master/slave pair
// to follow, and arms the pairing observer for that pair.
func (s *Session) SniffStart(device string, master, slave [6]byte) error {
	t, err := hci.Open(device)
	if err != nil {
		return WrapError(KindDeviceNotFound, err, "open "+device)
	}
	defer t.Close()

	payload := hci.StartPayload{Master: master, Slave: slave}
	if _, err := t.SendVendor(hci.DebugPacket{Command: hci.CmdStart, Payload: payload}); err != nil {
		return wrapVendorErr(err, "send start command")
	}

	s.observer = pairing.NewObserver(master, slave)
	return nil
}

// Sniff opens device, installs the capture filter, and loops forever
// reading ACL frames and routing their payload through the frontline
// decoder. It returns only on a fatal error.
func (s *Session) Sniff(device string) error {
	t, err := hci.Open(device)
	if err != nil {
		return WrapError(KindDeviceNotFound, err, "open "+device)
	}
	defer t.Close()
	s.transport = t

	log := s.logger().ChildLogger(map[string]interface{}{"device": device})

	if err := t.InstallCaptureFilter(); err != nil {
		return WrapError(KindIoError, err, "install capture filter")
	}

	for {
		n, err := t.ReadRaw(s.buf[:])
		if err != nil {
			return WrapError(KindIoError, err, "read hci socket")
		}
		if n == 0 {
			continue
		}

		if s.buf[0] != hci.PktACLData {
			log.Warnf("unknown type 0x%02x, dropping", s.buf[0])
			continue
		}

		const aclHdrLen = 4
		if n < 1+aclHdrLen {
			return NewError(KindMalformedFrame, "short acl frame: %d bytes", n)
		}

		dlen := int(s.buf[1+2]) | int(s.buf[1+3])<<8
		if dlen != n-1-aclHdrLen {
			return NewError(KindMalformedFrame, "acl dlen %d does not match frame length %d", dlen, n)
		}

		payload := make([]byte, dlen)
		copy(payload, s.buf[1+aclHdrLen:n])

		if err := frontline.Decode(payload, &s.ignore, s.ignoreZero, log, s); err != nil {
			return WrapError(KindMalformedFrame, err, "decode frontline frame")
		}
	}
}

// HandleDV implements frontline.PayloadHandler: DV frames are
// hexdump-only, no sub-decoder or sink involvement.
func (s *Session) HandleDV(body []byte) {
	s.logger().Debugf("dv: % x", body)
}

// HandleLMP implements frontline.PayloadHandler.
func (s *Session) HandleLMP(master bool, llid uint8, body []byte) error {
	return lmp.Decode(master, body, s.logger(), s.dump, s)
}

// HandleL2CAP implements frontline.PayloadHandler.
func (s *Session) HandleL2CAP(master bool, llid uint8, body []byte) error {
	return l2cap.Decode(master, llid, body, s.logger(), s.dump, s.pcap)
}

// Feed implements lmp.PairingFeeder, routing decoded LMP opcodes into
// the pairing observer and, on a completed transcript, into the
// btpincrack-format log line and the optional exporter.
func (s *Session) Feed(master bool, op1 uint8, body []byte) {
	if s.observer == nil {
		return
	}
	s.observer.FeedAndEmit(master, op1, body, pairingSink{s})
}

type pairingSink struct{ s *Session }

func (p pairingSink) Emit(t pairing.Transcript) {
	p.s.logger().Info(t.Line())
	if p.s.exporter != nil {
		if err := p.s.exporter.Export(t); err != nil {
			LogKindError(p.s.logger(), WrapError(KindDumpIoError, err, "transcript export"), "transcript export failed")
		}
	}
}
