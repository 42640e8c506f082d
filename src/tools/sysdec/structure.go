package sysdec

import (
	"sort"
	"strconv"
	"strings"
)

// DeviceDef is the root of a system description. The Name of every
// peripheral, register, field and enumerated value is copied from the key
// it is stored under, so it does not need to be written in the file.
//
// MMIOBase is added to every peripheral's block address unless MMIOBindings
// names a different base for that peripheral.
type DeviceDef struct {
	Vendor       string                    `yaml:"vendor"`
	Name         string                    `yaml:"name"`
	Series       string                    `yaml:"series"`
	Version      int                       `yaml:"version"`
	Description  string                    `yaml:"description"`
	MMIOBase     uint64                    `yaml:"mmioBase"`
	MMIOBindings map[string]uint64         `yaml:"mmioBindings,omitempty"`
	Peripheral   map[string]*PeripheralDef `yaml:"peripherals,omitempty"`
}

// PeripheralDef is a block of registers. Access is the default for
// registers that do not give their own.
type PeripheralDef struct {
	Name         string                  `yaml:"-"`
	Version      int                     `yaml:"version"`
	Description  string                  `yaml:"description"`
	GroupName    string                  `yaml:"groupName"`
	AddressBlock AddressBlockDef         `yaml:"addressBlock"`
	Interrupt    InterruptDef            `yaml:"interrupt"`
	Access       AccessDef               `yaml:"access"`
	Register     map[string]*RegisterDef `yaml:"registers,omitempty"`
}

type AddressBlockDef struct {
	BaseAddress uint64 `yaml:"baseAddress"`
	Size        uint64 `yaml:"size"`
	Usage       string `yaml:"usage"`
}

type InterruptDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Value       int    `yaml:"value"`
}

// RegisterDef describes one register, or Dim registers DimIncrement bytes
// apart when Dim > 1. A "%s" in the name of an array is replaced by the
// index; otherwise "[i]" is appended.
type RegisterDef struct {
	Name          string               `yaml:"-"`
	Description   string               `yaml:"description"`
	AddressOffset uint64               `yaml:"addressOffset"`
	Size          int                  `yaml:"size"` //bits: 8, 16, 32 or 64
	Access        AccessDef            `yaml:"access"`
	ResetValue    uint64               `yaml:"resetValue"`
	Field         map[string]*FieldDef `yaml:"fields,omitempty"`
	Dim           int                  `yaml:"dim"`
	DimIncrement  uint64               `yaml:"dimIncrement"`
}

type FieldDef struct {
	Name            string                         `yaml:"-"`
	Description     string                         `yaml:"description"`
	BitRange        BitRangeDef                    `yaml:"bitRange"`
	Access          AccessDef                      `yaml:"access"`
	EnumeratedValue map[string]*EnumeratedValueDef `yaml:"enumeratedValues,omitempty"`
}

type EnumeratedValueDef struct {
	Name        string `yaml:"-"`
	Description string `yaml:"description"`
	Value       uint64 `yaml:"value"`
}

// Instance is one concrete register of a RegisterDef.
type Instance struct {
	Name   string
	Offset uint64
}

// normalize copies map keys into names and fills in inherited access. A
// register without access takes its peripheral's, then the union of its
// fields'. A field without access takes its register's.
func (d *DeviceDef) normalize() {
	for pname, p := range d.Peripheral {
		if p == nil {
			p = &PeripheralDef{}
			d.Peripheral[pname] = p
		}
		p.Name = pname
		for rname, r := range p.Register {
			if r == nil {
				r = &RegisterDef{}
				p.Register[rname] = r
			}
			r.Name = rname
			if !r.Access.IsSet() {
				r.Access = p.Access
			}
			for fname, f := range r.Field {
				if f == nil {
					f = &FieldDef{}
					r.Field[fname] = f
				}
				f.Name = fname
				if !f.Access.IsSet() {
					f.Access = r.Access
				}
				for ename, e := range f.EnumeratedValue {
					if e == nil {
						e = &EnumeratedValueDef{}
						f.EnumeratedValue[ename] = e
					}
					e.Name = ename
				}
			}
			if !r.Access.IsSet() {
				var read, write bool
				for _, f := range r.Field {
					read = read || f.Access.CanRead()
					write = write || f.Access.CanWrite()
				}
				r.Access = accessOf(read, write)
			}
		}
	}
}

// Peripherals returns the peripherals ordered by name.
func (d *DeviceDef) Peripherals() []*PeripheralDef {
	keys := make([]string, 0, len(d.Peripheral))
	for k := range d.Peripheral {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*PeripheralDef, 0, len(d.Peripheral))
	for _, k := range keys {
		out = append(out, d.Peripheral[k])
	}
	return out
}

// Base is the address of the first byte of p's block.
func (d *DeviceDef) Base(p *PeripheralDef) uint64 {
	base := d.MMIOBase
	if b, ok := d.MMIOBindings[p.Name]; ok {
		base = b
	}
	return base + p.AddressBlock.BaseAddress
}

// Registers returns p's registers ordered by offset, then name.
func (p *PeripheralDef) Registers() []*RegisterDef {
	out := make([]*RegisterDef, 0, len(p.Register))
	for _, r := range p.Register {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddressOffset != out[j].AddressOffset {
			return out[i].AddressOffset < out[j].AddressOffset
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Bytes is the storage width of the register.
func (r *RegisterDef) Bytes() uint64 {
	return uint64(r.Size) / 8
}

func (r *RegisterDef) Instances() []Instance {
	if r.Dim <= 1 {
		return []Instance{{Name: r.Name, Offset: r.AddressOffset}}
	}
	out := make([]Instance, r.Dim)
	for i := range out {
		idx := strconv.Itoa(i)
		name := r.Name + "[" + idx + "]"
		if strings.Contains(r.Name, "%s") {
			name = strings.ReplaceAll(r.Name, "%s", idx)
		}
		out[i] = Instance{Name: name, Offset: r.AddressOffset + uint64(i)*r.DimIncrement}
	}
	return out
}

// Fields returns r's fields from the most significant down.
func (r *RegisterDef) Fields() []*FieldDef {
	out := make([]*FieldDef, 0, len(r.Field))
	for _, f := range r.Field {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BitRange.Msb != out[j].BitRange.Msb {
			return out[i].BitRange.Msb > out[j].BitRange.Msb
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Lookup finds a field by name, falling back to a case-insensitive match.
func (r *RegisterDef) Lookup(name string) (*FieldDef, bool) {
	if f, ok := r.Field[name]; ok {
		return f, true
	}
	for _, f := range r.Fields() {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return nil, false
}

// Enums returns f's enumerated values ordered by value, then name.
func (f *FieldDef) Enums() []*EnumeratedValueDef {
	out := make([]*EnumeratedValueDef, 0, len(f.EnumeratedValue))
	for _, e := range f.EnumeratedValue {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}
