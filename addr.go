package csniff

import (
	"encoding/hex"
	"strings"
)

// Addr is a Bluetooth BD_ADDR in human "aa:bb:cc:dd:ee:ff" form.
type Addr string

// String returns the address in its canonical lowercase colon form.
func (a Addr) String() string {
	return strings.ToLower(string(a))
}

// Bytes decodes the address into its six constituent bytes in the order
// written (no reversal — see ParsePair).
func (a Addr) Bytes() ([6]byte, error) {
	var out [6]byte

	s := string(a)
	ok := len(s) == 17
	for i := 2; ok && i < len(s); i += 3 {
		ok = s[i] == ':'
	}
	hexStr := strings.ReplaceAll(s, ":", "")
	decoded, err := hex.DecodeString(hexStr)
	if !ok || err != nil || len(decoded) != 6 {
		return out, NewError(KindBadAddress, "malformed MAC %q", string(a))
	}
	copy(out[:], decoded)
	return out, nil
}

// ParsePair splits and decodes a "<master>@<slave>" pair specification,
// the syntax consumed from the CLI per spec. Each side must be a
// colon-separated six-byte MAC. The caller is responsible for any byte
// reversal firmware requires; this just decodes hex digits in the order
// supplied.
func ParsePair(spec string) (master, slave [6]byte, err error) {
	idx := strings.IndexByte(spec, '@')
	if idx < 0 {
		return master, slave, NewError(KindBadPairSpec, "missing '@' separator in %q", spec)
	}

	master, err = Addr(spec[:idx]).Bytes()
	if err != nil {
		return master, slave, err
	}
	slave, err = Addr(spec[idx+1:]).Bytes()
	if err != nil {
		return master, slave, err
	}
	return master, slave, nil
}
