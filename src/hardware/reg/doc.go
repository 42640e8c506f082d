// Package reg turns "bits N..M of the word at address A" into typed,
// access-controlled accessors.
//
// A register is named by its address, its storage width (the type
// parameter T) and its access policy (the handle type: RO, WO, RW, W1 or
// RW1). Operations a policy forbids are simply not in the handle's method
// set, and the field constructors only accept registers that can do what the
// field needs, so reading a write-only register does not compile.
//
// Fields, flags and arrays decode and encode bit ranges of one register.
// Their Set methods and the register's SetBits, ClearBits, And, ReplaceBits
// and Apply are read-modify-write sequences with no synchronization: an
// interrupt handler that touches the same register between the load and the
// store loses one of the updates. Mask interrupts around such sequences, or
// use the peripheral's set/clear alias registers where it has them.
//
// Several field updates can be folded into a single store:
//
//	r.Apply(reg.Compose(chsel.Shift(ChannelA), slen.Shift(true)))
//
// Apply keeps the bits outside the composite; Assign overwrites the whole
// word with the composite's value.
package reg
