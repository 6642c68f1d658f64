// Package pairing implements the legacy Bluetooth pairing transcript
// capture: a gated state machine that watches LMP opcodes across both
// piconet roles and, once a full seven-PDU exchange is observed, emits
// the artifacts a btpincrack-style offline PIN recovery tool expects.
package pairing

import (
	"encoding/hex"
	"fmt"
)

// LMP opcodes this observer reacts to.
const (
	OpInRand  = 8
	OpCombKey = 9
	OpAURand  = 11
	OpSRES    = 12
)

// Mask bits. Bit 0 is the "armed" bit: always present, including in the
// post-emit reset value, so a fresh transcript can begin immediately.
const (
	maskArmed     = 0x01
	maskInRand    = 0x02
	maskComb1     = 0x04
	maskComb2     = 0x08
	maskAURand1   = 0x10
	maskAURand2   = 0x20
	maskSRES1     = 0x40
	maskSRES2     = 0x80
	maskComplete  = 0xFF
)

// Transcript is a completed seven-slot pairing capture, ready for
// btpincrack-format rendering or JSON export.
type Transcript struct {
	Master [6]byte
	Slave  [6]byte
	// PMIsMaster records which role sent the first IN_RAND; the emitted
	// line orders <A> <B> as master,slave when true, slave,master
	// otherwise.
	PMIsMaster bool
	Slots      [7][]byte
}

// Line renders the transcript as the single btpincrack-format line.
func (t Transcript) Line() string {
	a, b := t.Master, t.Slave
	if !t.PMIsMaster {
		a, b = t.Slave, t.Master
	}
	return fmt.Sprintf("btpincrack Go %s %s %s %s %s %s %s %s %s",
		macString(a), macString(b),
		hex.EncodeToString(t.Slots[0]), hex.EncodeToString(t.Slots[1]),
		hex.EncodeToString(t.Slots[2]), hex.EncodeToString(t.Slots[3]),
		hex.EncodeToString(t.Slots[4]), hex.EncodeToString(t.Slots[5]),
		hex.EncodeToString(t.Slots[6]))
}

func macString(b [6]byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

// Sink receives a completed Transcript, e.g. to print its Line() or hand
// it to an Exporter.
type Sink interface {
	Emit(Transcript)
}

// Observer runs the gated state machine described above. It is armed for
// exactly one master/slave pair at a time; master/slave addresses are
// supplied once at construction (they come from the active sniff_start
// call, not from the LMP stream itself).
type Observer struct {
	master, slave [6]byte

	mask       uint8
	pmIsMaster bool
	slots      [7][]byte
}

// NewObserver returns an Observer armed for the given piconet pair.
func NewObserver(master, slave [6]byte) *Observer {
	return &Observer{master: master, slave: slave, mask: maskArmed}
}

// Feed advances the state machine with one decoded LMP PDU. master
// reports whether the sender of this PDU is the piconet master. body is
// copied into the relevant slot; the observer never retains the slice it
// was given.
func (o *Observer) Feed(master bool, op1 uint8, body []byte) {
	switch op1 {
	case OpInRand:
		o.mask = maskArmed
		o.pmIsMaster = master
		o.store(0, body)
		o.mask |= maskInRand

	case OpCombKey:
		if o.mask&maskInRand == 0 {
			return
		}
		if master == o.pmIsMaster {
			o.store(1, body)
			o.mask |= maskComb1
		} else {
			o.store(2, body)
			o.mask |= maskComb2
		}

	case OpAURand:
		if o.mask&(maskComb1|maskComb2) != (maskComb1 | maskComb2) {
			return
		}
		if master == o.pmIsMaster {
			o.store(3, body)
			o.mask |= maskAURand1
		} else {
			o.store(4, body)
			o.mask |= maskAURand2
		}

	case OpSRES:
		if master != o.pmIsMaster {
			if o.mask&maskAURand1 == 0 {
				return
			}
			o.store(6, body)
			o.mask |= maskSRES1
		} else {
			if o.mask&maskAURand2 == 0 {
				return
			}
			o.store(5, body)
			o.mask |= maskSRES2
		}
	}
}

// Drain returns the completed transcript if the mask is fully set,
// resetting the mask to the armed bit afterward, or ok=false if the
// transcript isn't complete yet. Callers normally call this right after
// every Feed for an SRES opcode.
func (o *Observer) Drain() (t Transcript, ok bool) {
	if o.mask != maskComplete {
		return Transcript{}, false
	}

	t = Transcript{
		Master:     o.master,
		Slave:      o.slave,
		PMIsMaster: o.pmIsMaster,
		Slots:      o.slots,
	}
	o.mask = maskArmed
	o.slots = [7][]byte{}
	return t, true
}

// FeedAndEmit feeds one PDU and, if it completes a transcript, hands it
// to sink and resets for the next capture. This is the entry point the
// session controller wires to the LMP decoder.
func (o *Observer) FeedAndEmit(master bool, op1 uint8, body []byte, sink Sink) {
	o.Feed(master, op1, body)
	if t, ok := o.Drain(); ok && sink != nil {
		sink.Emit(t)
	}
}

func (o *Observer) store(slot int, body []byte) {
	cp := make([]byte, len(body))
	copy(cp, body)
	o.slots[slot] = cp
}
