package binfmt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Addr is a 64-bit virtual address. It implements flag.Value and
// encoding.TextUnmarshaler so it can be parsed directly from hexadecimal
// command-line input or JSON.
type Addr uint64

// String returns the hexadecimal string representation of a, zero-padded to
// 16 digits (the canonical textual form used for gadget output, spec.md §6).
func (a Addr) String() string {
	return fmt.Sprintf("0x%016x", uint64(a))
}

// Set sets a to the numeric value represented by s.
func (a *Addr) Set(s string) error {
	x, err := parseUint64(s)
	if err != nil {
		return errors.WithStack(err)
	}
	*a = Addr(x)
	return nil
}

// UnmarshalText unmarshals the text into a.
func (a *Addr) UnmarshalText(text []byte) error {
	return a.Set(string(text))
}

// MarshalText returns the textual representation of a.
func (a Addr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// parseUint64 interprets s in base 10, or base 16 if prefixed with 0x/0X.
func parseUint64(s string) (uint64, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[len("0x"):]
		base = 16
	}
	x, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return x, nil
}
