// Package bcm2835 describes some of the BCM2835/2837 peripherals with the
// reg accessors.
package bcm2835

import (
	"bitreg/src/hardware/mmio"
	"bitreg/src/hardware/reg"
)

// RPi3PeripheralBase is where the peripherals appear in the ARM physical
// address space of a Raspberry Pi 3.
const RPi3PeripheralBase = uintptr(0x3F000000)

// Offsets of the peripheral blocks from the peripheral base.
const (
	SysTimerOffset            = 0x00003000
	InterruptControllerOffset = 0x0000B200
	GPIOOffset                = 0x00200000
	AuxOffset                 = 0x00215000
)

// RPi3 is the peripherals of the board we are running on.
var RPi3 = New(mmio.Default, RPi3PeripheralBase)

// Peripherals is the set of blocks described here, bound to one bus.
type Peripherals struct {
	SysTimer            *SysTimer
	InterruptController *InterruptController
	GPIO                *GPIO
	Aux                 *Aux
}

func New(bus reg.Bus, base uintptr) *Peripherals {
	return &Peripherals{
		SysTimer:            NewSysTimer(bus, base+SysTimerOffset),
		InterruptController: NewInterruptController(bus, base+InterruptControllerOffset),
		GPIO:                NewGPIO(bus, base+GPIOOffset),
		Aux:                 NewAux(bus, base+AuxOffset),
	}
}

// ConsoleSetup routes GPIO 14/15 to the mini UART and brings it up at
// 115200 baud (250MHz core clock), with receive interrupts delivered.
func (p *Peripherals) ConsoleSetup() {
	p.GPIO.SetMode(14, GPIOAltFunc5)
	p.GPIO.SetMode(15, GPIOAltFunc5)
	p.Aux.MiniUARTSetup(270)
	p.Aux.MiniUARTEnableRXInterrupt()
	p.InterruptController.EnableIRQ(AuxIRQ)
}
