//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Direct reaches registers by their physical address through TinyGo's
// volatile loads and stores.
type Direct struct{}

func (Direct) Load8(addr uintptr) uint8 {
	return volatile.LoadUint8((*uint8)(unsafe.Pointer(addr)))
}

func (Direct) Store8(addr uintptr, v uint8) {
	volatile.StoreUint8((*uint8)(unsafe.Pointer(addr)), v)
}

func (Direct) Load16(addr uintptr) uint16 {
	return volatile.LoadUint16((*uint16)(unsafe.Pointer(addr)))
}

func (Direct) Store16(addr uintptr, v uint16) {
	volatile.StoreUint16((*uint16)(unsafe.Pointer(addr)), v)
}

func (Direct) Load32(addr uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

func (Direct) Store32(addr uintptr, v uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(addr)), v)
}

func (Direct) Load64(addr uintptr) uint64 {
	return volatile.LoadUint64((*uint64)(unsafe.Pointer(addr)))
}

func (Direct) Store64(addr uintptr, v uint64) {
	volatile.StoreUint64((*uint64)(unsafe.Pointer(addr)), v)
}
