//go:build !tinygo

package mmio

import (
	"sync/atomic"
	"unsafe"
)

// Direct reaches registers by their physical address. It is only useful on
// bare metal, or in a process that has the peripheral mapped at its
// physical address.
type Direct struct{}

func (Direct) Load8(addr uintptr) uint8 {
	return *(*uint8)(unsafe.Pointer(addr))
}

func (Direct) Store8(addr uintptr, v uint8) {
	*(*uint8)(unsafe.Pointer(addr)) = v
}

func (Direct) Load16(addr uintptr) uint16 {
	return *(*uint16)(unsafe.Pointer(addr))
}

func (Direct) Store16(addr uintptr, v uint16) {
	*(*uint16)(unsafe.Pointer(addr)) = v
}

//atomic operations are never elided or merged by the compiler, which is
//what gives us volatile semantics on the gc toolchain

func (Direct) Load32(addr uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

func (Direct) Store32(addr uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(addr)), v)
}

func (Direct) Load64(addr uintptr) uint64 {
	return atomic.LoadUint64((*uint64)(unsafe.Pointer(addr)))
}

func (Direct) Store64(addr uintptr, v uint64) {
	atomic.StoreUint64((*uint64)(unsafe.Pointer(addr)), v)
}
