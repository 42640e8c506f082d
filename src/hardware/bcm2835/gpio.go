package bcm2835

import (
	"fmt"

	"bitreg/src/hardware/reg"
)

const NumGPIOPins = 54

// GPIO is the GPIO block. Outputs are driven through the set/clear
// registers, which only act on the bits written as one, so changing one pin
// never races with another context changing a different pin.
type GPIO struct {
	FuncSelect        [6]reg.Array[uint32, GPIOMode] //0x00-0x14, ten pins each
	OutputSet         [2]reg.WOArray[uint32, uint32] //0x1C, 0x20
	OutputClr         [2]reg.WOArray[uint32, uint32] //0x28, 0x2C
	Level             [2]reg.ROArray[uint32, uint32] //0x34, 0x38
	EventDetectStatus [2]reg.RW[uint32]              //0x40, 0x44 write one to clear
	PullUpDown        reg.Field[uint32, Pull]        //0x94
	PullUpDownClock   [2]reg.WO[uint32]              //0x98, 0x9C

	pud reg.RW[uint32]
}

type GPIOMode uint32 //3 bits wide

const (
	GPIOInput    GPIOMode = 0
	GPIOOutput   GPIOMode = 1
	GPIOAltFunc5 GPIOMode = 2
	GPIOAltFunc4 GPIOMode = 3
	GPIOAltFunc0 GPIOMode = 4
	GPIOAltFunc1 GPIOMode = 5
	GPIOAltFunc2 GPIOMode = 6
	GPIOAltFunc3 GPIOMode = 7
)

var gpioModeNames = [...]string{"Input", "Output", "AltFunc5", "AltFunc4",
	"AltFunc0", "AltFunc1", "AltFunc2", "AltFunc3"}

func (m GPIOMode) String() string {
	if int(m) < len(gpioModeNames) {
		return gpioModeNames[m]
	}
	return fmt.Sprintf("Reserved(0x%x)", uint32(m))
}

type Pull uint32

const (
	PullNone Pull = 0
	PullDown Pull = 1
	PullUp   Pull = 2
)

func NewGPIO(bus reg.Bus, base uintptr) *GPIO {
	g := &GPIO{}
	for i := range g.FuncSelect {
		n := uint(10)
		if i == len(g.FuncSelect)-1 {
			n = NumGPIOPins % 10
		}
		r := reg.NewRW[uint32](bus, base+uintptr(i)*4)
		g.FuncSelect[i] = reg.NewArray[uint32, GPIOMode](r, 0, 3, n)
	}
	for i := 0; i < 2; i++ {
		off := uintptr(i) * 4
		g.OutputSet[i] = reg.NewWOArray[uint32, uint32](reg.NewWO[uint32](bus, base+0x1C+off), 0, 1, 32)
		g.OutputClr[i] = reg.NewWOArray[uint32, uint32](reg.NewWO[uint32](bus, base+0x28+off), 0, 1, 32)
		g.Level[i] = reg.NewROArray[uint32, uint32](reg.NewRO[uint32](bus, base+0x34+off), 0, 1, 32)
		g.EventDetectStatus[i] = reg.NewRW[uint32](bus, base+0x40+off)
		g.PullUpDownClock[i] = reg.NewWO[uint32](bus, base+0x98+off)
	}
	g.pud = reg.NewRW[uint32](bus, base+0x94)
	g.PullUpDown = reg.NewField[uint32, Pull](g.pud, 1, 0)
	return g
}

func checkPin(pin int) {
	if pin < 0 || pin >= NumGPIOPins {
		panic(fmt.Sprintf("bcm2835: no GPIO pin %d", pin))
	}
}

// SetMode selects the function of pin.
func (g *GPIO) SetMode(pin int, mode GPIOMode) {
	checkPin(pin)
	g.FuncSelect[pin/10].At(pin % 10).Set(mode)
}

func (g *GPIO) Mode(pin int) GPIOMode {
	checkPin(pin)
	return g.FuncSelect[pin/10].At(pin % 10).Get()
}

// Output drives pin high or low. The pin must be in GPIOOutput mode.
func (g *GPIO) Output(pin int, high bool) {
	checkPin(pin)
	if high {
		g.OutputSet[pin/32].Flag(pin % 32).Put(true)
		return
	}
	g.OutputClr[pin/32].Flag(pin % 32).Put(true)
}

// Get returns the level currently seen on pin.
func (g *GPIO) Get(pin int) bool {
	checkPin(pin)
	return g.Level[pin/32].Flag(pin % 32).Get()
}

// EventDetected reports and acknowledges an edge/level event on pin. The
// status register is write-one-to-clear: writing the whole word back after
// a read would acknowledge every pending pin, so only pin's bit is written.
func (g *GPIO) EventDetected(pin int) bool {
	checkPin(pin)
	r := g.EventDetectStatus[pin/32]
	bit := uint32(1) << uint(pin%32)
	if !r.HasBits(bit) {
		return false
	}
	r.Write(bit)
	return true
}

// SetPull runs the pull-up/down programming sequence for pin. wait must
// hold off for at least 150 core clock cycles.
func (g *GPIO) SetPull(pin int, p Pull, wait func()) {
	checkPin(pin)
	clk := g.PullUpDownClock[pin/32]
	g.PullUpDown.Set(p)
	wait()
	clk.Write(uint32(1) << uint(pin%32))
	wait()
	g.PullUpDown.Set(PullNone)
	clk.Write(0)
}
