package dump

import "fmt"

func errOversizedLMP(n int) error {
	return fmt.Errorf("lmp body of %d bytes exceeds the 17-byte dump wrapper limit", n)
}

func errShortWrite(got, want int) error {
	return fmt.Errorf("short dump write: wrote %d of %d bytes", got, want)
}
