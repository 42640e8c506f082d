package sysdec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrValueRange = errors.New("value does not fit")

// DecodedField is one field pulled out of a register word.
type DecodedField struct {
	Field *FieldDef
	Value uint64
	// Enum is the name of Value among the field's enumerated values,
	// "Reserved" if it has some but none match, and empty if it has none.
	Enum string
}

func (d DecodedField) String() string {
	s := fmt.Sprintf("%s%s = 0x%x", d.Field.Name, d.Field.BitRange, d.Value)
	if d.Enum != "" {
		s += " " + d.Enum
	}
	if !d.Field.Access.CanRead() {
		s += " (" + d.Field.Access.String() + ")"
	}
	return s
}

// Decode splits word into r's fields, most significant first.
func (r *RegisterDef) Decode(word uint64) []DecodedField {
	fields := r.Fields()
	out := make([]DecodedField, len(fields))
	for i, f := range fields {
		v := (word & f.BitRange.Mask()) >> uint(f.BitRange.Lsb)
		out[i] = DecodedField{Field: f, Value: v, Enum: f.EnumName(v)}
	}
	return out
}

// Format renders word as a header line and one line per field.
func (r *RegisterDef) Format(name string, word uint64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s = 0x%0*x\n", name, r.Size/4, word)
	decoded := r.Decode(word)
	width := 0
	for _, d := range decoded {
		if n := len(d.Field.Name) + len(d.Field.BitRange.String()); n > width {
			width = n
		}
	}
	for _, d := range decoded {
		label := d.Field.Name + d.Field.BitRange.String()
		fmt.Fprintf(&sb, "  %-*s 0x%x", width, label, d.Value)
		if d.Enum != "" {
			fmt.Fprintf(&sb, " %s", d.Enum)
		}
		if !d.Field.Access.CanRead() {
			fmt.Fprintf(&sb, " (%s)", d.Field.Access)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (f *FieldDef) EnumName(v uint64) string {
	if len(f.EnumeratedValue) == 0 {
		return ""
	}
	for _, e := range f.Enums() {
		if e.Value == v {
			return e.Name
		}
	}
	return "Reserved"
}

// ParseValue turns user input into a field value: an enumerated value name
// (case-insensitive) or a number in any base strconv understands.
func (f *FieldDef) ParseValue(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	for _, e := range f.Enums() {
		if strings.EqualFold(e.Name, s) {
			return e.Value, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is neither a number nor a known value", f.Name, s)
	}
	if v > f.BitRange.Max() {
		return 0, fmt.Errorf("%s: 0x%x in %d bits: %w", f.Name, v, f.BitRange.Width(), ErrValueRange)
	}
	return v, nil
}
