package reg

import "unsafe"

// Bus performs the loads and stores behind every register access. On the
// target this is plain memory-mapped IO; on a host it may be a /dev/mem
// window or simulated memory.
type Bus interface {
	Load8(addr uintptr) uint8
	Store8(addr uintptr, v uint8)
	Load16(addr uintptr) uint16
	Store16(addr uintptr, v uint16)
	Load32(addr uintptr) uint32
	Store32(addr uintptr, v uint32)
	Load64(addr uintptr) uint64
	Store64(addr uintptr, v uint64)
}

// Reader is a register whose word can be loaded.
type Reader[T Word] interface {
	Addr() uintptr
	Read() T
}

// Writer is a register whose word can be stored.
type Writer[T Word] interface {
	Addr() uintptr
	Write(v T)
}

// ReadWriter is a register that supports read-modify-write.
type ReadWriter[T Word] interface {
	Reader[T]
	Writer[T]
}

// handle is the identity of a register: where it lives and how to get there.
// It holds no copy of the hardware word.
type handle[T Word] struct {
	bus  Bus
	addr uintptr
}

// Addr is the address of the register in the device's address space.
func (h handle[T]) Addr() uintptr {
	return h.addr
}

func (h handle[T]) load() T {
	var zero T
	switch unsafe.Sizeof(zero) {
	case 1:
		return T(h.bus.Load8(h.addr))
	case 2:
		return T(h.bus.Load16(h.addr))
	case 4:
		return T(h.bus.Load32(h.addr))
	}
	return T(h.bus.Load64(h.addr))
}

func (h handle[T]) store(v T) {
	switch unsafe.Sizeof(v) {
	case 1:
		h.bus.Store8(h.addr, uint8(v))
	case 2:
		h.bus.Store16(h.addr, uint16(v))
	case 4:
		h.bus.Store32(h.addr, uint32(v))
	default:
		h.bus.Store64(h.addr, uint64(v))
	}
}

// readOnly has the operations every readable register shares.
type readOnly[T Word] struct {
	handle[T]
}

// Read returns the current hardware word.
func (r readOnly[T]) Read() T {
	return r.load()
}

// HasBits reports whether all the bits in v are set.
func (r readOnly[T]) HasBits(v T) bool {
	return r.load()&v == v
}

// writeOnly has the operations of registers that cannot be read back.
type writeOnly[T Word] struct {
	handle[T]
}

// Write replaces the entire word.
func (w writeOnly[T]) Write(v T) {
	w.store(v)
}

// Assign overwrites the entire word with fv.Value; fv.Mask is ignored and
// every bit outside it is written as zero.
func (w writeOnly[T]) Assign(fv FieldValue[T]) {
	w.store(fv.Value)
}

// readWrite has the read-modify-write operations. None of them are atomic;
// an interrupt between the load and the store can lose an update.
type readWrite[T Word] struct {
	handle[T]
}

// Read returns the current hardware word.
func (r readWrite[T]) Read() T {
	return r.load()
}

// Write replaces the entire word.
func (r readWrite[T]) Write(v T) {
	r.store(v)
}

// HasBits reports whether all the bits in v are set.
func (r readWrite[T]) HasBits(v T) bool {
	return r.load()&v == v
}

// SetBits is reg |= v.
func (r readWrite[T]) SetBits(v T) {
	r.store(r.load() | v)
}

// And is reg &= v.
func (r readWrite[T]) And(v T) {
	r.store(r.load() & v)
}

// ClearBits is reg &^= v.
func (r readWrite[T]) ClearBits(v T) {
	r.store(r.load() &^ v)
}

// ReplaceBits replaces the bits selected by mask<<pos with value<<pos.
func (r readWrite[T]) ReplaceBits(value T, mask T, pos uint8) {
	r.store(r.load()&^(mask<<pos) | (value&mask)<<pos)
}

// Assign overwrites the entire word with fv.Value; fv.Mask is ignored. Use
// it to initialize a register from a composite that covers every relevant
// bit. Use Apply when bits outside the composite must survive.
func (r readWrite[T]) Assign(fv FieldValue[T]) {
	r.store(fv.Value)
}

// Apply updates every field in fv with one load and one store, leaving the
// bits outside fv.Mask as they were.
func (r readWrite[T]) Apply(fv FieldValue[T]) {
	r.store(r.load()&^fv.Mask | fv.Value&fv.Mask)
}

// RO is a read-only register.
type RO[T Word] struct{ readOnly[T] }

// WO is a write-only register.
type WO[T Word] struct{ writeOnly[T] }

// RW is a read-write register.
type RW[T Word] struct{ readWrite[T] }

// W1 is a write-once register. Only the first write after reset takes
// effect; that is enforced by the hardware, not here.
type W1[T Word] struct{ writeOnly[T] }

// RW1 is a read-write-once register: reads are always allowed, only the
// first write after reset takes effect.
type RW1[T Word] struct{ readWrite[T] }

func NewRO[T Word](bus Bus, addr uintptr) RO[T] {
	return RO[T]{readOnly[T]{handle[T]{bus: bus, addr: addr}}}
}

func NewWO[T Word](bus Bus, addr uintptr) WO[T] {
	return WO[T]{writeOnly[T]{handle[T]{bus: bus, addr: addr}}}
}

func NewRW[T Word](bus Bus, addr uintptr) RW[T] {
	return RW[T]{readWrite[T]{handle[T]{bus: bus, addr: addr}}}
}

func NewW1[T Word](bus Bus, addr uintptr) W1[T] {
	return W1[T]{writeOnly[T]{handle[T]{bus: bus, addr: addr}}}
}

func NewRW1[T Word](bus Bus, addr uintptr) RW1[T] {
	return RW1[T]{readWrite[T]{handle[T]{bus: bus, addr: addr}}}
}

func (RO[T]) Policy() Policy  { return ReadOnly }
func (WO[T]) Policy() Policy  { return WriteOnly }
func (RW[T]) Policy() Policy  { return ReadWrite }
func (W1[T]) Policy() Policy  { return WriteOnce }
func (RW1[T]) Policy() Policy { return ReadWriteOnce }
