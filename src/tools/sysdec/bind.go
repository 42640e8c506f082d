package sysdec

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bitreg/src/hardware/reg"
	"bitreg/src/lib/trust"
)

var (
	ErrNotReadable    = errors.New("not readable")
	ErrNotWritable    = errors.New("not writable")
	ErrNoSuchRegister = errors.New("no such register")
	ErrNoSuchField    = errors.New("no such field")
	ErrNoFields       = errors.New("no fields given")
)

// Binding is every register of a description attached to a bus.
type Binding struct {
	regs  map[string]*BoundRegister
	order []*BoundRegister
}

// BoundRegister is a described register attached to a bus. Its loads and
// stores go through the reg handle of the register's width and policy, but
// since names come from user input a policy violation is an error here
// rather than a compile failure.
type BoundRegister struct {
	Name       string //Peripheral.Register
	Peripheral *PeripheralDef
	Def        *RegisterDef
	port       port
}

// port adapts a typed handle to 64 bit words. Operations the policy does
// not allow are left nil.
type port struct {
	addr   uintptr
	load   func() uint64
	store  func(uint64)
	apply  func(reg.FieldValue[uint64])
	assign func(reg.FieldValue[uint64])
}

func (p port) Addr() uintptr  { return p.addr }
func (p port) Read() uint64   { return p.load() }
func (p port) Write(v uint64) { p.store(v) }

type assigner[T reg.Word] interface {
	reg.Writer[T]
	Assign(fv reg.FieldValue[T])
}

type applier[T reg.Word] interface {
	reg.ReadWriter[T]
	Assign(fv reg.FieldValue[T])
	Apply(fv reg.FieldValue[T])
}

func narrow[T reg.Word](fv reg.FieldValue[uint64]) reg.FieldValue[T] {
	return reg.FieldValue[T]{Value: T(fv.Value), Mask: T(fv.Mask)}
}

func readThrough[T reg.Word](p *port, r reg.Reader[T]) {
	p.load = func() uint64 { return uint64(r.Read()) }
}

func writeThrough[T reg.Word](p *port, w assigner[T]) {
	p.store = func(v uint64) { w.Write(T(v)) }
	p.assign = func(fv reg.FieldValue[uint64]) { w.Assign(narrow[T](fv)) }
}

func readWriteThrough[T reg.Word](p *port, rw applier[T]) {
	readThrough[T](p, rw)
	writeThrough[T](p, rw)
	p.apply = func(fv reg.FieldValue[uint64]) { rw.Apply(narrow[T](fv)) }
}

func bindPort[T reg.Word](bus reg.Bus, addr uintptr, policy reg.Policy) port {
	p := port{addr: addr}
	switch policy {
	case reg.ReadOnly:
		readThrough[T](&p, reg.NewRO[T](bus, addr))
	case reg.WriteOnly:
		writeThrough[T](&p, reg.NewWO[T](bus, addr))
	case reg.WriteOnce:
		writeThrough[T](&p, reg.NewW1[T](bus, addr))
	case reg.ReadWrite:
		readWriteThrough[T](&p, reg.NewRW[T](bus, addr))
	case reg.ReadWriteOnce:
		readWriteThrough[T](&p, reg.NewRW1[T](bus, addr))
	}
	return p
}

// Bind validates d and attaches every register instance to bus.
func (d *DeviceDef) Bind(bus reg.Bus) (*Binding, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b := &Binding{regs: make(map[string]*BoundRegister)}
	for _, p := range d.Peripherals() {
		base := d.Base(p)
		for _, r := range p.Registers() {
			for _, in := range r.Instances() {
				addr := uintptr(base + in.Offset)
				var pt port
				switch r.Size {
				case 8:
					pt = bindPort[uint8](bus, addr, r.Access.Policy())
				case 16:
					pt = bindPort[uint16](bus, addr, r.Access.Policy())
				case 32:
					pt = bindPort[uint32](bus, addr, r.Access.Policy())
				default:
					pt = bindPort[uint64](bus, addr, r.Access.Policy())
				}
				br := &BoundRegister{Name: p.Name + "." + in.Name, Peripheral: p, Def: r, port: pt}
				b.regs[br.Name] = br
				b.order = append(b.order, br)
			}
		}
	}
	sort.SliceStable(b.order, func(i, j int) bool { return b.order[i].Addr() < b.order[j].Addr() })
	trust.Debugf("sysdec: bound %d registers of %s", len(b.order), d.Name)
	return b, nil
}

// Lookup finds "Peripheral.Register", falling back to a case-insensitive
// match.
func (b *Binding) Lookup(name string) (*BoundRegister, error) {
	if r, ok := b.regs[name]; ok {
		return r, nil
	}
	for _, r := range b.order {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNoSuchRegister)
}

// Registers returns every bound register in address order.
func (b *Binding) Registers() []*BoundRegister {
	return b.order
}

func (r *BoundRegister) Addr() uintptr {
	return r.port.addr
}

func (r *BoundRegister) Policy() reg.Policy {
	return r.Def.Access.Policy()
}

func (r *BoundRegister) Read() (uint64, error) {
	if r.port.load == nil {
		return 0, fmt.Errorf("%s is %s: %w", r.Name, r.Def.Access, ErrNotReadable)
	}
	return r.port.Read(), nil
}

// Write stores v as the whole register word.
func (r *BoundRegister) Write(v uint64) error {
	if r.port.store == nil {
		return fmt.Errorf("%s is %s: %w", r.Name, r.Def.Access, ErrNotWritable)
	}
	if r.Def.Size < 64 && v>>uint(r.Def.Size) != 0 {
		return fmt.Errorf("%s: 0x%x in %d bits: %w", r.Name, v, r.Def.Size, ErrValueRange)
	}
	r.port.Write(v)
	return nil
}

func (r *BoundRegister) field(name string) (*FieldDef, error) {
	f, ok := r.Def.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", r.Name, name, ErrNoSuchField)
	}
	return f, nil
}

// Get reads the register and decodes one field.
func (r *BoundRegister) Get(name string) (uint64, error) {
	f, err := r.field(name)
	if err != nil {
		return 0, err
	}
	if !f.Access.CanRead() || r.port.load == nil {
		return 0, fmt.Errorf("%s.%s is %s: %w", r.Name, f.Name, f.Access, ErrNotReadable)
	}
	fld := reg.NewROField[uint64, uint64](r.port, uint(f.BitRange.Lsb), uint(f.BitRange.Msb))
	return fld.Get(), nil
}

// Set changes one field. See SetAll.
func (r *BoundRegister) Set(name string, v uint64) error {
	return r.SetAll(map[string]uint64{name: v})
}

// SetAll changes several fields with a single store. A readable register
// is read-modify-written so the other fields keep their values; a
// write-only one is overwritten and every other field is written as zero.
// Nothing is loaded or stored unless every field can be set.
func (r *BoundRegister) SetAll(values map[string]uint64) error {
	if r.port.store == nil {
		return fmt.Errorf("%s is %s: %w", r.Name, r.Def.Access, ErrNotWritable)
	}
	if len(values) == 0 {
		return fmt.Errorf("%s: %w", r.Name, ErrNoFields)
	}
	var fv reg.FieldValue[uint64]
	for name, v := range values {
		f, err := r.field(name)
		if err != nil {
			return err
		}
		if !f.Access.CanWrite() {
			return fmt.Errorf("%s.%s is %s: %w", r.Name, f.Name, f.Access, ErrNotWritable)
		}
		if v > f.BitRange.Max() {
			return fmt.Errorf("%s.%s: 0x%x in %d bits: %w", r.Name, f.Name, v, f.BitRange.Width(), ErrValueRange)
		}
		fld := reg.NewWOField[uint64, uint64](r.port, uint(f.BitRange.Lsb), uint(f.BitRange.Msb))
		fv = fv.Or(fld.Shift(v))
	}
	if r.port.apply != nil {
		r.port.apply(fv)
	} else {
		r.port.assign(fv)
	}
	return nil
}

// Dump reads the register and formats every field.
func (r *BoundRegister) Dump() (string, error) {
	w, err := r.Read()
	if err != nil {
		return "", err
	}
	return r.Def.Format(r.Name, w), nil
}
