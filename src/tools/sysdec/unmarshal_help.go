package sysdec

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"bitreg/src/hardware/reg"
)

type AccessDef struct {
	policy reg.Policy
	isSet  bool //did they explictly set the field
}

func (a AccessDef) Policy() reg.Policy {
	return a.policy
}
func (a AccessDef) CanRead() bool {
	return a.isSet && a.policy.CanRead()
}
func (a AccessDef) CanWrite() bool {
	return a.isSet && a.policy.CanWrite()
}
func (a AccessDef) IsSet() bool {
	return a.isSet
}

// Within reports whether everything a permits, outer permits too.
func (a AccessDef) Within(outer AccessDef) bool {
	return (!a.CanRead() || outer.CanRead()) && (!a.CanWrite() || outer.CanWrite())
}

// Access is for descriptions written in Go; it panics on a bad policy.
func Access(s string) AccessDef {
	a, err := ParseAccess(s)
	if err != nil {
		panic("unable to understand Access value:" + s)
	}
	return a
}

// ParseAccess accepts any spelling reg.ParsePolicy does. The empty string
// leaves the access unset.
func ParseAccess(s string) (AccessDef, error) {
	if strings.TrimSpace(s) == "" {
		return AccessDef{}, nil
	}
	p, err := reg.ParsePolicy(s)
	if err != nil {
		return AccessDef{}, err
	}
	return AccessDef{policy: p, isSet: true}, nil
}

func accessOf(read, write bool) AccessDef {
	switch {
	case read && write:
		return AccessDef{policy: reg.ReadWrite, isSet: true}
	case read:
		return AccessDef{policy: reg.ReadOnly, isSet: true}
	case write:
		return AccessDef{policy: reg.WriteOnly, isSet: true}
	}
	return AccessDef{}
}

func (a AccessDef) String() string {
	if !a.isSet {
		return "unset"
	}
	return a.policy.String()
}

func (a *AccessDef) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := ParseAccess(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*a = v
	return nil
}

func (a AccessDef) MarshalYAML() (interface{}, error) {
	if !a.isSet {
		return "", nil
	}
	return a.policy.String(), nil
}

// BitRangeDef is the inclusive bit range of a field. The zero value is a
// range that was never given; use BitRange or ParseBitRange to make one.
type BitRangeDef struct {
	Lsb   int
	Msb   int
	isSet bool
}

func (b BitRangeDef) IsSet() bool {
	return b.isSet
}

func (b BitRangeDef) String() string {
	return fmt.Sprintf("[%d:%d]", b.Msb, b.Lsb)
}
func (b BitRangeDef) Width() int {
	return (b.Msb - b.Lsb) + 1
}

// Max is the largest value the field can hold.
func (b BitRangeDef) Max() uint64 {
	return reg.Mask[uint64](0, uint(b.Width()-1))
}

// Mask has the field's bits set in register position.
func (b BitRangeDef) Mask() uint64 {
	return reg.Mask[uint64](uint(b.Lsb), uint(b.Msb))
}

func (b BitRangeDef) Overlaps(o BitRangeDef) bool {
	return b.Lsb <= o.Msb && o.Lsb <= b.Msb
}

func BitRange(Msb int, Lsb int) BitRangeDef {
	b, err := checkBitRange(Msb, Lsb)
	if err != nil {
		panic("BitRange " + err.Error())
	}
	return b
}

func checkBitRange(msb, lsb int) (BitRangeDef, error) {
	if msb > 63 || lsb > 63 || msb < 0 || lsb < 0 {
		return BitRangeDef{}, fmt.Errorf("value for msb/lsb out of range: [%d:%d]", msb, lsb)
	}
	if msb < lsb {
		return BitRangeDef{}, fmt.Errorf("msb < lsb: [%d:%d]", msb, lsb)
	}
	return BitRangeDef{Msb: msb, Lsb: lsb, isSet: true}, nil
}

// ParseBitRange reads "[msb:lsb]" or "[bit]"; the brackets are optional.
func ParseBitRange(s string) (BitRangeDef, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimSuffix(strings.TrimPrefix(t, "["), "]")
	hi, lo, found := strings.Cut(t, ":")
	msb, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return BitRangeDef{}, fmt.Errorf("bad bit range %q", s)
	}
	lsb := msb
	if found {
		if lsb, err = strconv.Atoi(strings.TrimSpace(lo)); err != nil {
			return BitRangeDef{}, fmt.Errorf("bad bit range %q", s)
		}
	}
	return checkBitRange(msb, lsb)
}

// UnmarshalYAML takes either the string form or a mapping with msb and
// lsb keys. A mapping without lsb is a single bit.
func (b *BitRangeDef) UnmarshalYAML(n *yaml.Node) error {
	var v BitRangeDef
	var err error
	switch n.Kind {
	case yaml.ScalarNode:
		v, err = ParseBitRange(n.Value)
	case yaml.MappingNode:
		var m struct {
			Msb *int `yaml:"msb"`
			Lsb *int `yaml:"lsb"`
		}
		if err := n.Decode(&m); err != nil {
			return err
		}
		if m.Msb == nil {
			return fmt.Errorf("line %d: bit range needs msb", n.Line)
		}
		if m.Lsb == nil {
			m.Lsb = m.Msb
		}
		v, err = checkBitRange(*m.Msb, *m.Lsb)
	default:
		return fmt.Errorf("line %d: bit range must be a string or a mapping", n.Line)
	}
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*b = v
	return nil
}

func (b BitRangeDef) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}
