package reg

// FieldValue is a pending partial update of a register: Value holds the new
// bits in register position and Mask says which bits they cover. It does
// nothing until applied with a register's Apply (masked read-modify-write)
// or Assign (full overwrite).
type FieldValue[T Word] struct {
	Value T
	Mask  T
}

// Or combines two pending updates so they reach the hardware in a single
// store. The masks should be disjoint: overlapping fields are ORed
// together, the later one does not win.
func (a FieldValue[T]) Or(b FieldValue[T]) FieldValue[T] {
	return FieldValue[T]{Value: a.Value | b.Value, Mask: a.Mask | b.Mask}
}

// Disjoint reports whether a and b touch no common bit.
func (a FieldValue[T]) Disjoint(b FieldValue[T]) bool {
	return a.Mask&b.Mask == 0
}

// Compose folds vs with Or.
func Compose[T Word](vs ...FieldValue[T]) FieldValue[T] {
	var out FieldValue[T]
	for _, v := range vs {
		out = out.Or(v)
	}
	return out
}
