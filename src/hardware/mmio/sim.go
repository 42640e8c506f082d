package mmio

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"bitreg/src/hardware/reg"
	"bitreg/src/lib/trust"
)

type Op uint8

const (
	OpLoad Op = iota
	OpStore
)

func (o Op) String() string {
	if o == OpLoad {
		return "load"
	}
	return "store"
}

// Access is one bus transaction seen by a Sim.
type Access struct {
	Op    Op
	Addr  uintptr
	Size  int //bytes
	Value uint64
}

func (a Access) String() string {
	return fmt.Sprintf("%s%d 0x%08x 0x%x", a.Op, a.Size*8, a.Addr, a.Value)
}

// Sim is byte addressed, little endian simulated memory. Unwritten memory
// reads as zero. Every load and store is recorded while tracing is on.
type Sim struct {
	mu      sync.Mutex
	mem     map[uintptr]byte
	tracing bool
	trace   []Access
}

var _ reg.Bus = (*Sim)(nil)

func NewSim() *Sim {
	return &Sim{mem: make(map[uintptr]byte)}
}

// Trace turns access recording on or off. Turning it on discards the
// previous trace.
func (s *Sim) Trace(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracing = on
	if on {
		s.trace = nil
	}
}

// Accesses returns a copy of the recorded trace.
func (s *Sim) Accesses() []Access {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Access, len(s.trace))
	copy(out, s.trace)
	return out
}

// Count returns the number of recorded accesses of kind op.
func (s *Sim) Count(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.trace {
		if a.Op == op {
			n++
		}
	}
	return n
}

// Peek reads size bytes at addr without recording an access.
func (s *Sim) Peek(addr uintptr, size int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(addr, size)
}

// Poke writes size bytes at addr without recording an access.
func (s *Sim) Poke(addr uintptr, size int, v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(addr, size, v)
}

func (s *Sim) get(addr uintptr, size int) uint64 {
	var v uint64
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(s.mem[addr+uintptr(i)])
	}
	return v
}

func (s *Sim) put(addr uintptr, size int, v uint64) {
	for i := 0; i < size; i++ {
		b := byte(v >> (8 * i))
		if b == 0 {
			delete(s.mem, addr+uintptr(i))
			continue
		}
		s.mem[addr+uintptr(i)] = b
	}
}

func (s *Sim) load(addr uintptr, size int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.get(addr, size)
	s.record(Access{Op: OpLoad, Addr: addr, Size: size, Value: v})
	return v
}

func (s *Sim) store(addr uintptr, size int, v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(addr, size, v)
	s.record(Access{Op: OpStore, Addr: addr, Size: size, Value: v})
}

func (s *Sim) record(a Access) {
	if !s.tracing {
		return
	}
	s.trace = append(s.trace, a)
	trust.Debugf("sim: %s", a)
}

func (s *Sim) Load8(addr uintptr) uint8       { return uint8(s.load(addr, 1)) }
func (s *Sim) Store8(addr uintptr, v uint8)   { s.store(addr, 1, uint64(v)) }
func (s *Sim) Load16(addr uintptr) uint16     { return uint16(s.load(addr, 2)) }
func (s *Sim) Store16(addr uintptr, v uint16) { s.store(addr, 2, uint64(v)) }
func (s *Sim) Load32(addr uintptr) uint32     { return uint32(s.load(addr, 4)) }
func (s *Sim) Store32(addr uintptr, v uint32) { s.store(addr, 4, uint64(v)) }
func (s *Sim) Load64(addr uintptr) uint64     { return s.load(addr, 8) }
func (s *Sim) Store64(addr uintptr, v uint64) { s.store(addr, 8, v) }

// region is a run of consecutive non-zero bytes in a snapshot.
type region struct {
	Addr  uint64 `cbor:"1,keyasint"`
	Bytes []byte `cbor:"2,keyasint"`
}

type snapshot struct {
	Version int      `cbor:"1,keyasint"`
	Regions []region `cbor:"2,keyasint"`
}

const snapshotVersion = 1

// regions returns the non-zero memory as runs of consecutive bytes, in
// address order.
func (s *Sim) regions() []region {
	s.mu.Lock()
	defer s.mu.Unlock()
	addrs := make([]uintptr, 0, len(s.mem))
	for a := range s.mem {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	var out []region
	for _, a := range addrs {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if uintptr(last.Addr)+uintptr(len(last.Bytes)) == a {
				last.Bytes = append(last.Bytes, s.mem[a])
				continue
			}
		}
		out = append(out, region{Addr: uint64(a), Bytes: []byte{s.mem[a]}})
	}
	return out
}

func (s *Sim) replace(mem map[uintptr]byte) {
	s.mu.Lock()
	s.mem = mem
	s.mu.Unlock()
}

// Save writes the memory contents to w as CBOR.
func (s *Sim) Save(w io.Writer) error {
	snap := snapshot{Version: snapshotVersion, Regions: s.regions()}
	if err := cbor.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	trust.Infof("sim: saved %d regions", len(snap.Regions))
	return nil
}

// Load replaces the memory contents with a snapshot written by Save.
func (s *Sim) Load(r io.Reader) error {
	var snap snapshot
	if err := cbor.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("snapshot version %d not supported", snap.Version)
	}
	mem := make(map[uintptr]byte)
	for _, rg := range snap.Regions {
		for i, b := range rg.Bytes {
			if b != 0 {
				mem[uintptr(rg.Addr)+uintptr(i)] = b
			}
		}
	}
	s.replace(mem)
	return nil
}
