package bcm2835

import "bitreg/src/hardware/reg"

// SysTimer is the free running 1MHz system timer with four compare
// channels. Channels 0 and 2 are used by the GPU.
type SysTimer struct {
	ControlStatus struct {
		reg.RW[uint32] //0x00 write one to clear
		Match          reg.Array[uint32, uint32]
	}
	Lower32 reg.RO[uint32]    //0x04
	Upper32 reg.RO[uint32]    //0x08
	Compare [4]reg.RW[uint32] //0x0C-0x18
}

func NewSysTimer(bus reg.Bus, base uintptr) *SysTimer {
	t := &SysTimer{}
	t.ControlStatus.RW = reg.NewRW[uint32](bus, base)
	t.ControlStatus.Match = reg.NewArray[uint32, uint32](t.ControlStatus.RW, 0, 1, 4)
	t.Lower32 = reg.NewRO[uint32](bus, base+0x04)
	t.Upper32 = reg.NewRO[uint32](bus, base+0x08)
	for i := range t.Compare {
		t.Compare[i] = reg.NewRW[uint32](bus, base+0x0C+uintptr(i)*4)
	}
	return t
}

// Now reads the 64 bit counter, retrying if the low word wrapped between
// the two reads.
func (t *SysTimer) Now() uint64 {
	for {
		hi := t.Upper32.Read()
		lo := t.Lower32.Read()
		if t.Upper32.Read() == hi {
			return uint64(hi)<<32 | uint64(lo)
		}
	}
}

// Matched reports whether compare channel ch has fired.
func (t *SysTimer) Matched(ch int) bool {
	return t.ControlStatus.Match.Flag(ch).Get()
}

// Acknowledge clears the match of channel ch. The register is write one to
// clear, so it is overwritten with just that bit; a read-modify-write would
// also acknowledge every other pending channel.
func (t *SysTimer) Acknowledge(ch int) {
	t.ControlStatus.Assign(t.ControlStatus.Match.Flag(ch).Shift(true))
}

// Arm sets channel ch to fire after delta ticks and acknowledges any stale
// match.
func (t *SysTimer) Arm(ch int, delta uint32) {
	t.Compare[ch].Write(t.Lower32.Read() + delta)
	t.Acknowledge(ch)
}
