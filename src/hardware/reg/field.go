package reg

// span is an inclusive bit range of a T, normalized so start <= stop.
type span[T Word] struct {
	start, stop uint8
	mask        T
}

func newSpan[T Word](start, stop uint) span[T] {
	if start > stop {
		start, stop = stop, start
	}
	return span[T]{start: uint8(start), stop: uint8(stop), mask: Mask[T](start, stop)}
}

// Start is the lowest bit of the field.
func (s span[T]) Start() uint { return uint(s.start) }

// Stop is the highest bit of the field.
func (s span[T]) Stop() uint { return uint(s.stop) }

// Width is the number of bits in the field.
func (s span[T]) Width() uint { return uint(s.stop-s.start) + 1 }

// Mask has exactly the bits of the field set, in register position.
func (s span[T]) Mask() T { return s.mask }

func (s span[T]) decode(word T) T {
	return (word & s.mask) >> s.start
}

func (s span[T]) place(v T) T {
	return (v << s.start) & s.mask
}

func (s span[T]) merge(word T, v T) T {
	return word&^s.mask | s.place(v)
}

func (s span[T]) shift(v T) FieldValue[T] {
	return FieldValue[T]{Value: s.place(v), Mask: s.mask}
}

// Field is a bit range of a readable and writable register decoded as V.
// V may be a named type with constants for the known encodings; decoding
// never checks membership, so reserved patterns come back as they are.
type Field[T Word, V Word] struct {
	reg ReadWriter[T]
	span[T]
}

// NewField describes bits start..stop (either order) of r. It panics if a
// bit lies outside the register.
func NewField[T Word, V Word](r ReadWriter[T], start, stop uint) Field[T, V] {
	return Field[T, V]{reg: r, span: newSpan[T](start, stop)}
}

// Get decodes the field from the current register word.
func (f Field[T, V]) Get() V {
	return V(f.decode(f.reg.Read()))
}

// Set stores v into the field with a read-modify-write. Bits of v beyond
// the field width are dropped; sibling fields are preserved.
func (f Field[T, V]) Set(v V) {
	f.reg.Write(f.merge(f.reg.Read(), T(v)))
}

// Shift returns v positioned in the field without touching the hardware.
func (f Field[T, V]) Shift(v V) FieldValue[T] {
	return f.shift(T(v))
}

// ROField is a field of a read-only register.
type ROField[T Word, V Word] struct {
	reg Reader[T]
	span[T]
}

func NewROField[T Word, V Word](r Reader[T], start, stop uint) ROField[T, V] {
	return ROField[T, V]{reg: r, span: newSpan[T](start, stop)}
}

func (f ROField[T, V]) Get() V {
	return V(f.decode(f.reg.Read()))
}

// WOField is a field of a write-only register. The register cannot be read
// back, so there is no read-modify-write: collect fields with Shift and
// store them with the register's Assign, or use Put.
type WOField[T Word, V Word] struct {
	reg Writer[T]
	span[T]
}

func NewWOField[T Word, V Word](r Writer[T], start, stop uint) WOField[T, V] {
	return WOField[T, V]{reg: r, span: newSpan[T](start, stop)}
}

func (f WOField[T, V]) Shift(v V) FieldValue[T] {
	return f.shift(T(v))
}

// Put writes the whole register with only this field populated; all other
// bits are written as zero.
func (f WOField[T, V]) Put(v V) {
	f.reg.Write(f.place(T(v)))
}

// Flag is a single bit of a readable and writable register.
type Flag[T Word] struct {
	reg ReadWriter[T]
	span[T]
}

func NewFlag[T Word](r ReadWriter[T], bit uint) Flag[T] {
	return Flag[T]{reg: r, span: newSpan[T](bit, bit)}
}

func (f Flag[T]) Get() bool {
	return f.reg.Read()&f.mask != 0
}

func (f Flag[T]) Set(on bool) {
	f.reg.Write(f.merge(f.reg.Read(), fromBool[T](on)))
}

func (f Flag[T]) Shift(on bool) FieldValue[T] {
	return f.shift(fromBool[T](on))
}

// ROFlag is a single bit of a read-only register.
type ROFlag[T Word] struct {
	reg Reader[T]
	span[T]
}

func NewROFlag[T Word](r Reader[T], bit uint) ROFlag[T] {
	return ROFlag[T]{reg: r, span: newSpan[T](bit, bit)}
}

func (f ROFlag[T]) Get() bool {
	return f.reg.Read()&f.mask != 0
}

// WOFlag is a single bit of a write-only register.
type WOFlag[T Word] struct {
	reg Writer[T]
	span[T]
}

func NewWOFlag[T Word](r Writer[T], bit uint) WOFlag[T] {
	return WOFlag[T]{reg: r, span: newSpan[T](bit, bit)}
}

func (f WOFlag[T]) Shift(on bool) FieldValue[T] {
	return f.shift(fromBool[T](on))
}

// Put writes the whole register with only this bit possibly set. For
// set/clear alias registers this is the atomic way to flip one bit.
func (f WOFlag[T]) Put(on bool) {
	f.reg.Write(f.place(fromBool[T](on)))
}

func fromBool[T Word](b bool) T {
	if b {
		return 1
	}
	return 0
}
