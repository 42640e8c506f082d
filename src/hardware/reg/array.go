package reg

// layout is n fields of the same width packed upward from start; element 0
// occupies the lowest bits.
type layout[T Word] struct {
	start, width, n uint8
	all             span[T]
}

func newLayout[T Word](start, width, n uint) layout[T] {
	if width == 0 || n == 0 {
		panic("reg: array needs at least one element of at least one bit")
	}
	if start+width*n > Width[T]() {
		panic("reg: array does not fit in register")
	}
	return layout[T]{
		start: uint8(start),
		width: uint8(width),
		n:     uint8(n),
		all:   newSpan[T](start, start+width*n-1),
	}
}

// Len is the number of elements.
func (l layout[T]) Len() int { return int(l.n) }

// ElementWidth is the number of bits in each element.
func (l layout[T]) ElementWidth() uint { return uint(l.width) }

// FieldMask is the mask of element 0.
func (l layout[T]) FieldMask() T {
	return l.element(0).mask
}

// Mask covers all the elements.
func (l layout[T]) Mask() T {
	return l.all.mask
}

func (l layout[T]) element(i int) span[T] {
	if i < 0 || i >= int(l.n) {
		panic("reg: array index out of range")
	}
	lo := uint(l.start) + uint(i)*uint(l.width)
	return newSpan[T](lo, lo+uint(l.width)-1)
}

// replicate packs v into every element.
func (l layout[T]) replicate(v T) T {
	v &= lowBits[T](uint(l.width))
	var out T
	for i := 0; i < int(l.n); i++ {
		out = out<<l.width | v
	}
	return out
}

// Array is n identically shaped fields of a readable and writable register,
// e.g. a bank of one-bit enables or repeated per-slot selectors.
type Array[T Word, V Word] struct {
	reg ReadWriter[T]
	layout[T]
}

// NewArray describes n elements of width bits each starting at bit start.
// It panics unless start+width*n fits in the register.
func NewArray[T Word, V Word](r ReadWriter[T], start, width, n uint) Array[T, V] {
	return Array[T, V]{reg: r, layout: newLayout[T](start, width, n)}
}

// At is the accessor for element i.
func (a Array[T, V]) At(i int) Field[T, V] {
	return Field[T, V]{reg: a.reg, span: a.element(i)}
}

// Flag is the boolean view of element i of a one-bit-wide array.
func (a Array[T, V]) Flag(i int) Flag[T] {
	if a.width != 1 {
		panic("reg: Flag on an array of multi-bit elements")
	}
	return Flag[T]{reg: a.reg, span: a.element(i)}
}

// Read returns all elements packed, element 0 in the low bits.
func (a Array[T, V]) Read() T {
	return a.all.decode(a.reg.Read())
}

// Set stores a pre-packed value for all the elements with a
// read-modify-write.
func (a Array[T, V]) Set(packed T) {
	a.reg.Write(a.all.merge(a.reg.Read(), packed))
}

// Fill stores v into every element.
func (a Array[T, V]) Fill(v V) {
	a.Set(a.replicate(T(v)))
}

func (a Array[T, V]) Shift(packed T) FieldValue[T] {
	return a.all.shift(packed)
}

func (a Array[T, V]) ShiftFill(v V) FieldValue[T] {
	return a.all.shift(a.replicate(T(v)))
}

// ROArray is an Array on a read-only register.
type ROArray[T Word, V Word] struct {
	reg Reader[T]
	layout[T]
}

func NewROArray[T Word, V Word](r Reader[T], start, width, n uint) ROArray[T, V] {
	return ROArray[T, V]{reg: r, layout: newLayout[T](start, width, n)}
}

func (a ROArray[T, V]) At(i int) ROField[T, V] {
	return ROField[T, V]{reg: a.reg, span: a.element(i)}
}

func (a ROArray[T, V]) Flag(i int) ROFlag[T] {
	if a.width != 1 {
		panic("reg: Flag on an array of multi-bit elements")
	}
	return ROFlag[T]{reg: a.reg, span: a.element(i)}
}

func (a ROArray[T, V]) Read() T {
	return a.all.decode(a.reg.Read())
}

// WOArray is an Array on a write-only register.
type WOArray[T Word, V Word] struct {
	reg Writer[T]
	layout[T]
}

func NewWOArray[T Word, V Word](r Writer[T], start, width, n uint) WOArray[T, V] {
	return WOArray[T, V]{reg: r, layout: newLayout[T](start, width, n)}
}

func (a WOArray[T, V]) At(i int) WOField[T, V] {
	return WOField[T, V]{reg: a.reg, span: a.element(i)}
}

func (a WOArray[T, V]) Flag(i int) WOFlag[T] {
	if a.width != 1 {
		panic("reg: Flag on an array of multi-bit elements")
	}
	return WOFlag[T]{reg: a.reg, span: a.element(i)}
}

func (a WOArray[T, V]) Shift(packed T) FieldValue[T] {
	return a.all.shift(packed)
}

func (a WOArray[T, V]) ShiftFill(v V) FieldValue[T] {
	return a.all.shift(a.replicate(T(v)))
}

// Put writes the whole register with the packed elements and zero elsewhere.
func (a WOArray[T, V]) Put(packed T) {
	a.reg.Write(a.all.place(packed))
}
