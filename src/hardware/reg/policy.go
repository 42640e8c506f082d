package reg

import (
	"fmt"
	"strings"
)

// Policy is the access policy of a register, as printed in a datasheet.
// The register handle types carry their policy in their method set; Policy
// exists so descriptions and tools can talk about it.
type Policy uint8

const (
	ReadOnly Policy = iota
	WriteOnly
	ReadWrite
	WriteOnce
	ReadWriteOnce
)

// CanRead reports whether loads are permitted. Read-write-once registers are
// readable at any time; only their write is limited (by the hardware).
func (p Policy) CanRead() bool {
	return p == ReadOnly || p == ReadWrite || p == ReadWriteOnce
}

func (p Policy) CanWrite() bool {
	return p != ReadOnly
}

func (p Policy) String() string {
	switch p {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case ReadWrite:
		return "read-write"
	case WriteOnce:
		return "writeOnce"
	case ReadWriteOnce:
		return "read-writeOnce"
	}
	return fmt.Sprintf("Policy(%d)", uint8(p))
}

// ParsePolicy accepts the SVD spellings (read-only, write-only, read-write,
// writeOnce, read-writeOnce) and the short forms r, w, rw, w1 and rw1.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "ro", "read-only":
		return ReadOnly, nil
	case "w", "wo", "write-only":
		return WriteOnly, nil
	case "rw", "read-write":
		return ReadWrite, nil
	case "w1", "writeonce":
		return WriteOnce, nil
	case "rw1", "read-writeonce":
		return ReadWriteOnce, nil
	}
	return 0, fmt.Errorf("unknown access policy %q", s)
}
