package hci

import (
	"time"

	"github.com/pkg/errors"

	"github.com/nopper/packet-manipulator/hci/socket"
)

// sendTimeout bounds how long SendVendor waits for the adapter's
// EVT_VENDOR acknowledgement of a debug command. The firmware's own debug
// channel times out commands after 2000ms, so there's no point waiting
// longer than that for a reply.
const sendTimeout = 2 * time.Second

// Transport owns the raw HCI socket and the small synchronous
// command/reply protocol the CSR debug channel speaks: write a fixed
// header command, read frames until an EVT_VENDOR reply shows up; every
// other frame read in the meantime is skipped.
type Transport struct {
	sock *socket.Socket
}

// Open attaches a raw, non-exclusive channel to the named adapter
// ("hci0", "hci1", ...) or, for name == "", the first device found.
func Open(name string) (*Transport, error) {
	var s *socket.Socket
	var err error
	if name == "" {
		s, err = socket.NewSocket(-1)
	} else {
		s, err = socket.NewSocketByName(name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open hci transport")
	}
	return &Transport{sock: s}, nil
}

// InstallCaptureFilter clears any existing socket filter and enables all
// packet types and all events, the broad filter the sniff loop runs
// under; SendVendor does its own in-process matching for the specific
// EVT_VENDOR reply it's waiting for.
func (t *Transport) InstallCaptureFilter() error {
	return t.sock.InstallCaptureFilter(^uint32(0), [2]uint32{^uint32(0), ^uint32(0)}, 0)
}

// SendVendor writes a debug command and returns the raw bytes of its
// EVT_VENDOR acknowledgement, or a *TimeoutError if none arrives in time.
func (t *Transport) SendVendor(p DebugPacket) ([]byte, error) {
	raw, err := EncodeCommand(p)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, len(raw)+1)
	frame[0] = PktCommand
	copy(frame[1:], raw)

	if _, err := t.sock.Write(frame); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(sendTimeout)
	for time.Now().Before(deadline) {
		reply, err := t.ReadPacket()
		if err != nil {
			return nil, err
		}
		if reply != nil {
			return reply, nil
		}
	}
	return nil, errTimeout()
}

// ReadPacket reads one HCI frame off the socket and, if it's an
// EVT_VENDOR event, returns its event-parameter bytes. Any other frame
// type (InstallCaptureFilter lets every type through) yields a nil slice
// with no error so the caller's poll loop keeps going.
func (t *Transport) ReadPacket() ([]byte, error) {
	buf := make([]byte, 4096)
	n, err := t.sock.Read(buf)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	if buf[0] != PktEvent {
		return nil, nil
	}
	if n < 3 || buf[1] != EvtVendor {
		return nil, nil
	}

	plen := int(buf[2])
	if n < 3+plen {
		return nil, errors.New("short event read")
	}
	return buf[3 : 3+plen], nil
}

// ReadRaw reads one HCI frame off the socket into buf without any
// EVT_VENDOR filtering, returning its length. This is what the top-level
// sniff loop uses to pick up ACL data frames.
func (t *Transport) ReadRaw(buf []byte) (int, error) {
	return t.sock.Read(buf)
}

// Close releases the underlying socket.
func (t *Transport) Close() error {
	return t.sock.Close()
}
