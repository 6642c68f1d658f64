// +build linux

// Package socket opens a raw, non-exclusive HCI socket against a live
// adapter. Unlike a HCI_CHANNEL_USER bind, HCI_CHANNEL_RAW never downs the
// device, so the host's own Bluetooth stack keeps running against it while
// this module sniffs in parallel.
package socket

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func ioR(t, nr, size uintptr) uintptr {
	return (2 << 30) | (t << 8) | nr | (size << 16)
}

func ioW(t, nr, size uintptr) uintptr {
	return (1 << 30) | (t << 8) | nr | (size << 16)
}

func ioctl(fd, op, arg uintptr) error {
	if _, _, ep := unix.Syscall(unix.SYS_IOCTL, fd, op, arg); ep != 0 {
		return ep
	}
	return nil
}

const (
	ioctlSize      = 4
	hciMaxDevices  = 16
	typHCI         = 72 // 'H'
	readTimeout    = 1000
	unixPollErrors = int16(unix.POLLHUP | unix.POLLNVAL | unix.POLLERR)
	unixPollDataIn = int16(unix.POLLIN)

	// solHCI / HCI_FILTER mirror bluez's sys/socket.h + bluetooth/hci.h
	// values; golang.org/x/sys/unix doesn't export either.
	solHCI    = 0
	hciFilter = 2
)

var (
	hciGetDeviceList = ioR(typHCI, 210, ioctlSize) // HCIGETDEVLIST
	hciGetDeviceInfo = ioR(typHCI, 211, ioctlSize) // HCIGETDEVINFO
)

type devListRequest struct {
	devNum     uint16
	devRequest [hciMaxDevices]struct {
		id  uint16
		opt uint32
	}
}

// hciFilterReq is the raw layout of struct hci_filter: a type bitmask, a
// two-word event bitmask and the single vendor opcode the adapter is
// allowed to reply with.
type hciFilterReq struct {
	TypeMask  uint32
	EventMask [2]uint32
	Opcode    uint16
}

// Socket implements a HCI raw channel as a ReadWriteCloser.
type Socket struct {
	fd   int
	rmu  sync.Mutex
	wmu  sync.Mutex
	done chan int
	cmu  sync.Mutex
}

// NewSocket returns a raw HCI socket bound to the given device id. If id
// is -1, the first device found via HCIGETDEVLIST is used.
func NewSocket(id int) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW, unix.BTPROTO_HCI)
	if err != nil {
		return nil, errors.Wrap(err, "can't create socket")
	}

	if id != -1 {
		to := time.Now().Add(time.Second * 60)
		var s *Socket
		for time.Now().Before(to) {
			s, err = open(fd, id)
			if err == nil {
				return s, nil
			}
			unix.Close(fd)
			<-time.After(time.Second)
		}
		return nil, err
	}

	req := devListRequest{devNum: hciMaxDevices}
	if err = ioctl(uintptr(fd), hciGetDeviceList, uintptr(unsafe.Pointer(&req))); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't get device list")
	}
	var msg string
	for id := 0; id < int(req.devNum); id++ {
		s, err := open(fd, id)
		if err == nil {
			return s, nil
		}
		msg = msg + fmt.Sprintf("(hci%d: %s)", id, err)
	}
	unix.Close(fd)
	return nil, errors.Errorf("no devices available: %s", msg)
}

// NewSocketByName resolves a device name such as "hci0" directly instead
// of scanning the device list, the fast path used when the caller already
// knows which adapter to attach to.
func NewSocketByName(name string) (*Socket, error) {
	if !strings.HasPrefix(name, "hci") {
		return nil, errors.Errorf("not a hci device name: %q", name)
	}
	id, err := strconv.Atoi(strings.TrimPrefix(name, "hci"))
	if err != nil {
		return nil, errors.Wrapf(err, "bad hci device name %q", name)
	}
	return NewSocket(id)
}

func open(fd, id int) (*Socket, error) {
	// HCI_CHANNEL_RAW attaches alongside whatever else already owns the
	// device; it never downs it and never requires exclusive access.
	sa := unix.SockaddrHCI{Dev: uint16(id), Channel: unix.HCI_CHANNEL_RAW}
	if err := unix.Bind(fd, &sa); err != nil {
		return nil, errors.Wrap(err, "can't bind socket to hci raw channel")
	}

	// poll for 20ms to see if any data becomes available, then clear it
	pfds := []unix.PollFd{{Fd: int32(fd), Events: unixPollDataIn}}
	unix.Poll(pfds, 20)
	evts := pfds[0].Revents

	switch {
	case evts&unixPollErrors != 0:
		return nil, io.EOF

	case evts&unixPollDataIn != 0:
		b := make([]byte, 2048)
		unix.Read(fd, b)
	}

	return &Socket{fd: fd, done: make(chan int)}, nil
}

// InstallCaptureFilter installs a HCI socket filter built from the given
// packet-type mask, event mask and opcode, the same SOL_HCI/HCI_FILTER
// setsockopt every hcidump-alike issues before it starts reading frames.
func (s *Socket) InstallCaptureFilter(typeMask uint32, eventMask [2]uint32, opcode uint16) error {
	f := hciFilterReq{TypeMask: typeMask, EventMask: eventMask, Opcode: opcode}
	_, _, ep := unix.Syscall6(unix.SYS_SETSOCKOPT, uintptr(s.fd), uintptr(solHCI), uintptr(hciFilter),
		uintptr(unsafe.Pointer(&f)), unsafe.Sizeof(f), 0)
	if ep != 0 {
		return errors.Wrap(ep, "can't install hci filter")
	}
	return nil
}

func (s *Socket) Read(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}

	var err error
	n := 0
	s.rmu.Lock()
	defer s.rmu.Unlock()
	// dont need to add unixPollErrors, they are always returned
	pfds := []unix.PollFd{{Fd: int32(s.fd), Events: unixPollDataIn}}
	unix.Poll(pfds, readTimeout)
	evts := pfds[0].Revents

	switch {
	case evts&unixPollErrors != 0:
		return 0, io.EOF

	case evts&unixPollDataIn != 0:
		n, err = unix.Read(s.fd, p)

	default:
		// no data, read timeout
		return 0, nil
	}

	// check if we are still open since the read takes a while
	if !s.isOpen() {
		return 0, io.EOF
	}
	return n, errors.Wrap(err, "can't read hci socket")
}

func (s *Socket) Write(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	n, err := unix.Write(s.fd, p)
	return n, errors.Wrap(err, "can't write hci socket")
}

func (s *Socket) Close() error {
	s.cmu.Lock()
	defer s.cmu.Unlock()

	select {
	case <-s.done:
		return nil

	default:
		close(s.done)
		s.rmu.Lock()
		err := unix.Close(s.fd)
		s.rmu.Unlock()

		return errors.Wrap(err, "can't close hci socket")
	}
}

func (s *Socket) isOpen() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
