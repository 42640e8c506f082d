package mmio

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"bitreg/src/hardware/reg"
	"bitreg/src/lib/trust"
)

// DevMem is a window of physical address space mapped from /dev/mem into
// this process. Registers keep their physical addresses; DevMem translates.
type DevMem struct {
	f       *os.File
	mem     []byte
	aligned uintptr //physical address of mem[0]
	base    uintptr
	size    uintptr
}

var _ reg.Bus = (*DevMem)(nil)

var ErrWindow = errors.New("window must have a non-zero size")

// OpenDevMem maps size bytes of physical memory starting at base. path is
// normally "/dev/mem"; tests and emulators may hand in any mappable file.
func OpenDevMem(path string, base uintptr, size int) (*DevMem, error) {
	if size <= 0 {
		return nil, ErrWindow
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	page := uintptr(unix.Getpagesize())
	aligned := base &^ (page - 1)
	length := int(base-aligned) + size
	mem, err := unix.Mmap(int(f.Fd()), int64(aligned), length,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mapping 0x%x+0x%x of %s: %w", base, size, path, err)
	}
	trust.Infof("devmem: mapped 0x%08x-0x%08x from %s", base, base+uintptr(size), path)
	return &DevMem{f: f, mem: mem, aligned: aligned, base: base, size: uintptr(size)}, nil
}

// Close unmaps the window. The DevMem must not be used afterwards.
func (m *DevMem) Close() error {
	err := unix.Munmap(m.mem)
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	m.mem = nil
	return err
}

func (m *DevMem) ptr(addr uintptr, n uintptr) unsafe.Pointer {
	if addr < m.base || addr+n > m.base+m.size {
		panic(fmt.Sprintf("mmio: address 0x%x outside window 0x%x-0x%x",
			addr, m.base, m.base+m.size))
	}
	return unsafe.Pointer(&m.mem[addr-m.aligned])
}

func (m *DevMem) Load8(addr uintptr) uint8 {
	return *(*uint8)(m.ptr(addr, 1))
}

func (m *DevMem) Store8(addr uintptr, v uint8) {
	*(*uint8)(m.ptr(addr, 1)) = v
}

func (m *DevMem) Load16(addr uintptr) uint16 {
	return *(*uint16)(m.ptr(addr, 2))
}

func (m *DevMem) Store16(addr uintptr, v uint16) {
	*(*uint16)(m.ptr(addr, 2)) = v
}

func (m *DevMem) Load32(addr uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(m.ptr(addr, 4)))
}

func (m *DevMem) Store32(addr uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(m.ptr(addr, 4)), v)
}

func (m *DevMem) Load64(addr uintptr) uint64 {
	return atomic.LoadUint64((*uint64)(m.ptr(addr, 8)))
}

func (m *DevMem) Store64(addr uintptr, v uint64) {
	atomic.StoreUint64((*uint64)(m.ptr(addr, 8)), v)
}
