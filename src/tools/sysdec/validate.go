package sysdec

import (
	"errors"
	"fmt"
)

// Validate checks the description against the rules every register
// handle relies on. All problems are reported, joined into one error.
//
// Two fields may cover the same bits only if one is read-only and the
// other write-only, like a FIFO data register whose read and write sides
// are different things. The same goes for two registers at one address.
func (d *DeviceDef) Validate() error {
	var errs []error
	if len(d.Peripheral) == 0 {
		errs = append(errs, fmt.Errorf("%s: no peripherals", d.Name))
	}
	for _, p := range d.Peripherals() {
		errs = append(errs, p.validate()...)
	}
	return errors.Join(errs...)
}

func (p *PeripheralDef) validate() []error {
	var errs []error
	bad := func(r *RegisterDef, format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%s.%s: %s", p.Name, r.Name, fmt.Sprintf(format, args...)))
	}
	type placed struct {
		name   string
		r      *RegisterDef
		lo, hi uint64
	}
	var all []placed
	for _, r := range p.Registers() {
		switch r.Size {
		case 8, 16, 32, 64:
		default:
			bad(r, "size %d is not 8, 16, 32 or 64", r.Size)
			continue
		}
		if !r.Access.IsSet() {
			bad(r, "no access given for the register or any of its fields")
		}
		if r.AddressOffset%r.Bytes() != 0 {
			bad(r, "offset 0x%x is not aligned to %d bytes", r.AddressOffset, r.Bytes())
		}
		if r.Dim > 1 && r.DimIncrement < r.Bytes() {
			bad(r, "dimIncrement %d is smaller than the register", r.DimIncrement)
		}
		for _, in := range r.Instances() {
			end := in.Offset + r.Bytes()
			if p.AddressBlock.Size > 0 && end > p.AddressBlock.Size {
				bad(r, "%s at 0x%x is outside the block (size 0x%x)", in.Name, in.Offset, p.AddressBlock.Size)
			}
			all = append(all, placed{name: in.Name, r: r, lo: in.Offset, hi: end})
		}
		errs = append(errs, p.validateFields(r)...)
	}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.lo < b.hi && b.lo < a.hi && clash(a.r.Access, b.r.Access) {
				errs = append(errs, fmt.Errorf("%s.%s: overlaps %s", p.Name, b.name, a.name))
			}
		}
	}
	return errs
}

func (p *PeripheralDef) validateFields(r *RegisterDef) []error {
	var errs []error
	bad := func(f *FieldDef, format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%s.%s.%s: %s", p.Name, r.Name, f.Name, fmt.Sprintf(format, args...)))
	}
	fields := r.Fields()
	for i, f := range fields {
		if !f.BitRange.IsSet() {
			bad(f, "no bit range given")
		} else if f.BitRange.Msb >= r.Size {
			bad(f, "bits %s do not fit a %d bit register", f.BitRange, r.Size)
		}
		if !f.Access.IsSet() {
			bad(f, "no access given")
		} else if !f.Access.Within(r.Access) {
			bad(f, "access %s exceeds the register's %s", f.Access, r.Access)
		}
		seen := make(map[uint64]string)
		for _, e := range f.Enums() {
			if e.Value > f.BitRange.Max() {
				bad(f, "%s = 0x%x does not fit in %d bits", e.Name, e.Value, f.BitRange.Width())
			}
			if other, ok := seen[e.Value]; ok {
				bad(f, "%s and %s have the same value 0x%x", other, e.Name, e.Value)
			}
			seen[e.Value] = e.Name
		}
		for _, g := range fields[i+1:] {
			if f.BitRange.IsSet() && g.BitRange.IsSet() && f.BitRange.Overlaps(g.BitRange) && clash(f.Access, g.Access) {
				bad(f, "overlaps %s", g.Name)
			}
		}
	}
	return errs
}

// clash reports whether two things on the same bits would be seen by the
// same kind of access.
func clash(a, b AccessDef) bool {
	return (a.CanRead() && b.CanRead()) || (a.CanWrite() && b.CanWrite())
}
