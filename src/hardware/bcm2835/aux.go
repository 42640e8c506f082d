package bcm2835

import (
	"fmt"

	"bitreg/src/hardware/reg"
)

// Aux is the auxiliary peripheral block: one mini UART and two SPI masters
// that share an interrupt and an enable register.
type Aux struct {
	IRQ struct {
		reg.RO[uint32] //0x00
		MiniUART       reg.ROFlag[uint32]
		SPI1           reg.ROFlag[uint32]
		SPI2           reg.ROFlag[uint32]
	}
	Enables struct {
		reg.RW[uint32] //0x04
		MiniUART       reg.Flag[uint32]
		SPI1           reg.Flag[uint32]
		SPI2           reg.Flag[uint32]
	}
	//IO and Scratch only implement the low byte
	IO      reg.RW[uint8] //0x40
	IER     AuxMUIER
	IIR     AuxMUIIR
	LCR     AuxMULCR
	MCR     AuxMUMCR
	LSR     AuxMULSR
	MSR     AuxMUMSR
	Scratch reg.RW[uint8] //0x5C
	CNTL    AuxMUCNTL
	STAT    AuxMUSTAT
	Baud    AuxMUBaud
}

// AuxMUIER is the interrupt enable register. Bits 3:2 must be set for
// interrupts to be raised at all (see the BCM2835 errata).
type AuxMUIER struct {
	reg.RW[uint32] //0x44
	Receive        reg.Flag[uint32]
	Transmit       reg.Flag[uint32]
	LineStatus     reg.Flag[uint32]
	ModemStatus    reg.Flag[uint32]
}

// AuxMUIIR reads as the interrupt identity and writes as the FIFO clear
// register, so the same bits have different fields per direction.
type AuxMUIIR struct {
	reg.RW[uint32] //0x48
	//Pending is clear whenever an interrupt is pending
	Pending     reg.ROFlag[uint32]
	InterruptID reg.ROField[uint32, InterruptID]
	ClearFIFO   reg.WOField[uint32, ClearFIFO]
	FIFOEnabled reg.ROField[uint32, uint32]
}

type InterruptID uint32

const (
	NoInterrupt   InterruptID = 0b00
	TransmitReady InterruptID = 0b01
	ReceiverReady InterruptID = 0b10
)

func (i InterruptID) String() string {
	switch i {
	case NoInterrupt:
		return "NoInterrupt"
	case TransmitReady:
		return "TransmitReady"
	case ReceiverReady:
		return "ReceiverReady"
	}
	return fmt.Sprintf("Reserved(0x%x)", uint32(i))
}

type ClearFIFO uint32

const (
	ClearReceiveFIFO  ClearFIFO = 0b01
	ClearTransmitFIFO ClearFIFO = 0b10
	ClearBothFIFOs    ClearFIFO = 0b11
)

type AuxMULCR struct {
	reg.RW[uint32] //0x4C
	DataSize       reg.Field[uint32, DataSize]
	Break          reg.Flag[uint32]
	DLAB           reg.Flag[uint32]
}

// DataSize is 2 bits wide but only two encodings are defined; the
// datasheet's value for 8 bit mode is wrong, it takes both bits.
type DataSize uint32

const (
	SevenBit DataSize = 0b00
	EightBit DataSize = 0b11
)

func (d DataSize) String() string {
	switch d {
	case SevenBit:
		return "SevenBit"
	case EightBit:
		return "EightBit"
	}
	return fmt.Sprintf("Reserved(0x%x)", uint32(d))
}

type AuxMUMCR struct {
	reg.RW[uint32] //0x50
	RTS            reg.Flag[uint32]
}

type AuxMULSR struct {
	reg.RO[uint32]   //0x54
	DataReady        reg.ROFlag[uint32]
	ReceiverOverrun  reg.ROFlag[uint32]
	TransmitterEmpty reg.ROFlag[uint32]
	TransmitterIdle  reg.ROFlag[uint32]
}

type AuxMUMSR struct {
	reg.RO[uint32] //0x58
	CTS            reg.ROFlag[uint32]
}

// AuxMUCNTL is the "extra control" register.
type AuxMUCNTL struct {
	reg.RW[uint32]    //0x60
	ReceiverEnable    reg.Flag[uint32]
	TransmitterEnable reg.Flag[uint32]
	RTSFlowControl    reg.Flag[uint32]
	CTSFlowControl    reg.Flag[uint32]
	RTSAutoFlowLevel  reg.Field[uint32, RTSFlowLevel]
	RTSAssertLevel    reg.Flag[uint32]
	CTSAssertLevel    reg.Flag[uint32]
}

type RTSFlowLevel uint32

const (
	DeassertRTSWith3Spaces RTSFlowLevel = 0b00
	DeassertRTSWith2Spaces RTSFlowLevel = 0b01
	DeassertRTSWith1Space  RTSFlowLevel = 0b10
	DeassertRTSWith4Spaces RTSFlowLevel = 0b11
)

// AuxMUSTAT is the "extra status" register.
type AuxMUSTAT struct {
	reg.RO[uint32]        //0x64
	SymbolAvailable       reg.ROFlag[uint32]
	SpaceAvailable        reg.ROFlag[uint32]
	ReceiverIdle          reg.ROFlag[uint32]
	TransmitterIdle       reg.ROFlag[uint32]
	ReceiverOverrun       reg.ROFlag[uint32]
	TransmitFIFOFull      reg.ROFlag[uint32]
	RTS                   reg.ROFlag[uint32]
	CTS                   reg.ROFlag[uint32]
	TransmitFIFOEmpty     reg.ROFlag[uint32]
	TransmitterDone       reg.ROFlag[uint32]
	ReceiveFIFOFillLevel  reg.ROField[uint32, uint32]
	TransmitFIFOFillLevel reg.ROField[uint32, uint32]
}

type AuxMUBaud struct {
	reg.RW[uint32] //0x68
	Rate           reg.Field[uint32, uint16]
}

func NewAux(bus reg.Bus, base uintptr) *Aux {
	a := &Aux{}

	a.IRQ.RO = reg.NewRO[uint32](bus, base+0x00)
	a.IRQ.MiniUART = reg.NewROFlag[uint32](a.IRQ.RO, 0)
	a.IRQ.SPI1 = reg.NewROFlag[uint32](a.IRQ.RO, 1)
	a.IRQ.SPI2 = reg.NewROFlag[uint32](a.IRQ.RO, 2)

	a.Enables.RW = reg.NewRW[uint32](bus, base+0x04)
	a.Enables.MiniUART = reg.NewFlag[uint32](a.Enables.RW, 0)
	a.Enables.SPI1 = reg.NewFlag[uint32](a.Enables.RW, 1)
	a.Enables.SPI2 = reg.NewFlag[uint32](a.Enables.RW, 2)

	a.IO = reg.NewRW[uint8](bus, base+0x40)

	a.IER.RW = reg.NewRW[uint32](bus, base+0x44)
	a.IER.Receive = reg.NewFlag[uint32](a.IER.RW, 0)
	a.IER.Transmit = reg.NewFlag[uint32](a.IER.RW, 1)
	a.IER.LineStatus = reg.NewFlag[uint32](a.IER.RW, 2)
	a.IER.ModemStatus = reg.NewFlag[uint32](a.IER.RW, 3)

	a.IIR.RW = reg.NewRW[uint32](bus, base+0x48)
	a.IIR.Pending = reg.NewROFlag[uint32](a.IIR.RW, 0)
	a.IIR.InterruptID = reg.NewROField[uint32, InterruptID](a.IIR.RW, 2, 1)
	a.IIR.ClearFIFO = reg.NewWOField[uint32, ClearFIFO](a.IIR.RW, 2, 1)
	a.IIR.FIFOEnabled = reg.NewROField[uint32, uint32](a.IIR.RW, 7, 6)

	a.LCR.RW = reg.NewRW[uint32](bus, base+0x4C)
	a.LCR.DataSize = reg.NewField[uint32, DataSize](a.LCR.RW, 1, 0)
	a.LCR.Break = reg.NewFlag[uint32](a.LCR.RW, 6)
	a.LCR.DLAB = reg.NewFlag[uint32](a.LCR.RW, 7)

	a.MCR.RW = reg.NewRW[uint32](bus, base+0x50)
	a.MCR.RTS = reg.NewFlag[uint32](a.MCR.RW, 1)

	a.LSR.RO = reg.NewRO[uint32](bus, base+0x54)
	a.LSR.DataReady = reg.NewROFlag[uint32](a.LSR.RO, 0)
	a.LSR.ReceiverOverrun = reg.NewROFlag[uint32](a.LSR.RO, 1)
	a.LSR.TransmitterEmpty = reg.NewROFlag[uint32](a.LSR.RO, 5)
	a.LSR.TransmitterIdle = reg.NewROFlag[uint32](a.LSR.RO, 6)

	a.MSR.RO = reg.NewRO[uint32](bus, base+0x58)
	a.MSR.CTS = reg.NewROFlag[uint32](a.MSR.RO, 5)

	a.Scratch = reg.NewRW[uint8](bus, base+0x5C)

	a.CNTL.RW = reg.NewRW[uint32](bus, base+0x60)
	a.CNTL.ReceiverEnable = reg.NewFlag[uint32](a.CNTL.RW, 0)
	a.CNTL.TransmitterEnable = reg.NewFlag[uint32](a.CNTL.RW, 1)
	a.CNTL.RTSFlowControl = reg.NewFlag[uint32](a.CNTL.RW, 2)
	a.CNTL.CTSFlowControl = reg.NewFlag[uint32](a.CNTL.RW, 3)
	a.CNTL.RTSAutoFlowLevel = reg.NewField[uint32, RTSFlowLevel](a.CNTL.RW, 5, 4)
	a.CNTL.RTSAssertLevel = reg.NewFlag[uint32](a.CNTL.RW, 6)
	a.CNTL.CTSAssertLevel = reg.NewFlag[uint32](a.CNTL.RW, 7)

	a.STAT.RO = reg.NewRO[uint32](bus, base+0x64)
	for i, f := range []*reg.ROFlag[uint32]{
		&a.STAT.SymbolAvailable, &a.STAT.SpaceAvailable, &a.STAT.ReceiverIdle,
		&a.STAT.TransmitterIdle, &a.STAT.ReceiverOverrun, &a.STAT.TransmitFIFOFull,
		&a.STAT.RTS, &a.STAT.CTS, &a.STAT.TransmitFIFOEmpty, &a.STAT.TransmitterDone,
	} {
		*f = reg.NewROFlag[uint32](a.STAT.RO, uint(i))
	}
	a.STAT.ReceiveFIFOFillLevel = reg.NewROField[uint32, uint32](a.STAT.RO, 16, 19)
	a.STAT.TransmitFIFOFillLevel = reg.NewROField[uint32, uint32](a.STAT.RO, 24, 27)

	a.Baud.RW = reg.NewRW[uint32](bus, base+0x68)
	a.Baud.Rate = reg.NewField[uint32, uint16](a.Baud.RW, 0, 15)

	return a
}

// MiniUARTSetup brings the mini UART up in 8 bit mode with the given baud
// rate divisor and no flow control. The caller must already have routed
// GPIO 14/15 to alternate function 5.
func (a *Aux) MiniUARTSetup(divisor uint16) {
	a.Enables.MiniUART.Set(true)
	//quiet while we configure
	a.CNTL.Assign(reg.Compose(
		a.CNTL.ReceiverEnable.Shift(false),
		a.CNTL.TransmitterEnable.Shift(false),
	))
	a.IER.Assign(reg.FieldValue[uint32]{})
	a.LCR.Assign(a.LCR.DataSize.Shift(EightBit))
	a.MCR.RTS.Set(false)
	a.IIR.ClearFIFO.Put(ClearBothFIFOs)
	a.Baud.Rate.Set(divisor)
	a.CNTL.Apply(reg.Compose(
		a.CNTL.ReceiverEnable.Shift(true),
		a.CNTL.TransmitterEnable.Shift(true),
	))
}

// MiniUARTEnableRXInterrupt turns on the receive interrupt, including the
// two undocumented bits without which nothing is raised.
func (a *Aux) MiniUARTEnableRXInterrupt() {
	a.IER.Apply(reg.Compose(
		a.IER.Receive.Shift(true),
		a.IER.LineStatus.Shift(true),
		a.IER.ModemStatus.Shift(true),
	))
}

// PutByte spins until there is room in the transmit FIFO.
func (a *Aux) PutByte(b byte) {
	for !a.LSR.TransmitterEmpty.Get() {
	}
	a.IO.Write(b)
}

// TryReadByte returns the next received byte, if there is one.
func (a *Aux) TryReadByte() (byte, bool) {
	if !a.LSR.DataReady.Get() {
		return 0, false
	}
	return a.IO.Read(), true
}
