package reg

import "unsafe"

// Word is the storage type of a register. Bit 0 is always the least
// significant bit of the word.
type Word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Width returns the number of bits in T.
func Width[T Word]() uint {
	var zero T
	return uint(unsafe.Sizeof(zero)) * 8
}

// Mask returns the T with exactly the bits start..stop (inclusive) set. The
// two ends may be given in either order. Mask panics if either index is not
// a bit of T.
func Mask[T Word](start, stop uint) T {
	if start > stop {
		start, stop = stop, start
	}
	if stop >= Width[T]() {
		panic("reg: bit position out of range for register width")
	}
	if start == stop {
		return T(1) << stop
	}
	//stop+1 can be 64 for a uint64 word, so the high side is formed wide
	//and the result truncated
	low := ^uint64(0) << start
	high := ^uint64(0) << (stop + 1)
	if stop+1 >= 64 {
		high = 0
	}
	return T(low &^ high)
}

// lowBits is the mask of the n least significant bits of T.
func lowBits[T Word](n uint) T {
	if n == 0 {
		return 0
	}
	return Mask[T](0, n-1)
}
