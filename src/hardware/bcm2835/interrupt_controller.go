package bcm2835

import (
	"fmt"

	"bitreg/src/hardware/reg"
)

// IRQ numbers in the first two pending banks.
const (
	SystemTimerIRQ1 = 1
	SystemTimerIRQ3 = 3
	AuxIRQ          = 29
	NumIRQs         = 64
)

// InterruptController is the ARM side interrupt controller. Enabling and
// disabling go through separate write-one registers, so there is no
// read-modify-write and no lost update.
type InterruptController struct {
	BasicPending reg.RO[uint32]                 //0x00
	Pending      [2]reg.ROArray[uint32, uint32] //0x04, 0x08
	FIQControl   reg.RW[uint32]                 //0x0C
	Enable       [2]reg.WOArray[uint32, uint32] //0x10, 0x14
	EnableBasic  reg.WO[uint32]                 //0x18
	Disable      [2]reg.WOArray[uint32, uint32] //0x1C, 0x20
	DisableBasic reg.WO[uint32]                 //0x24
}

func NewInterruptController(bus reg.Bus, base uintptr) *InterruptController {
	ic := &InterruptController{
		BasicPending: reg.NewRO[uint32](bus, base),
		FIQControl:   reg.NewRW[uint32](bus, base+0x0C),
		EnableBasic:  reg.NewWO[uint32](bus, base+0x18),
		DisableBasic: reg.NewWO[uint32](bus, base+0x24),
	}
	for i := 0; i < 2; i++ {
		off := uintptr(i) * 4
		ic.Pending[i] = reg.NewROArray[uint32, uint32](reg.NewRO[uint32](bus, base+0x04+off), 0, 1, 32)
		ic.Enable[i] = reg.NewWOArray[uint32, uint32](reg.NewWO[uint32](bus, base+0x10+off), 0, 1, 32)
		ic.Disable[i] = reg.NewWOArray[uint32, uint32](reg.NewWO[uint32](bus, base+0x1C+off), 0, 1, 32)
	}
	return ic
}

func checkIRQ(irq int) {
	if irq < 0 || irq >= NumIRQs {
		panic(fmt.Sprintf("bcm2835: no IRQ %d", irq))
	}
}

func (ic *InterruptController) EnableIRQ(irq int) {
	checkIRQ(irq)
	ic.Enable[irq/32].Flag(irq % 32).Put(true)
}

func (ic *InterruptController) DisableIRQ(irq int) {
	checkIRQ(irq)
	ic.Disable[irq/32].Flag(irq % 32).Put(true)
}

func (ic *InterruptController) IsPending(irq int) bool {
	checkIRQ(irq)
	return ic.Pending[irq/32].Flag(irq % 32).Get()
}
