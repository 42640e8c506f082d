package reg_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitreg/src/hardware/mmio"
	"bitreg/src/hardware/reg"
)

// Channel is a 4 bit channel selector with 15 defined encodings.
type Channel uint8

const (
	Channel0  Channel = 0x0
	Channel10 Channel = 0xA
	Channel14 Channel = 0xE
)

func (c Channel) String() string {
	if c <= Channel14 {
		return fmt.Sprintf("Channel%d", uint8(c))
	}
	return fmt.Sprintf("Reserved(0x%x)", uint8(c))
}

type adcConfig struct {
	reg.RW[uint32]
	CHSEL reg.Field[uint32, Channel]
	SLEN  reg.Flag[uint32]
}

func newADCConfig(bus reg.Bus) adcConfig {
	r := reg.NewRW[uint32](bus, testAddr)
	return adcConfig{
		RW:    r,
		CHSEL: reg.NewField[uint32, Channel](r, 11, 8),
		SLEN:  reg.NewFlag[uint32](r, 0),
	}
}

func TestSlotConfigScenario(t *testing.T) {
	sim := mmio.NewSim()
	cfg := newADCConfig(sim)

	require.Equal(t, uint32(0), cfg.Read())
	cfg.CHSEL.Set(Channel10)
	assert.Equal(t, uint32(0x00000A00), cfg.Read())
	cfg.SLEN.Set(true)
	assert.Equal(t, uint32(0x00000A01), cfg.Read())

	assert.Equal(t, Channel10, cfg.CHSEL.Get())
	assert.True(t, cfg.SLEN.Get())

	cfg.SLEN.Set(false)
	assert.Equal(t, uint32(0x00000A00), cfg.Read())
}

func TestReservedEncodingDecodes(t *testing.T) {
	sim := mmio.NewSim()
	cfg := newADCConfig(sim)
	sim.Poke(testAddr, 4, 0x00000F00)

	ch := cfg.CHSEL.Get()
	assert.Equal(t, Channel(0xF), ch)
	assert.NotEqual(t, Channel14, ch)
	assert.Equal(t, "Reserved(0xf)", ch.String())
}

func TestFieldNormalizesRange(t *testing.T) {
	sim := mmio.NewSim()
	r := reg.NewRW[uint32](sim, testAddr)
	f := reg.NewField[uint32, uint32](r, 8, 11)
	g := reg.NewField[uint32, uint32](r, 11, 8)
	assert.Equal(t, f.Mask(), g.Mask())
	assert.Equal(t, uint(8), g.Start())
	assert.Equal(t, uint(11), g.Stop())
	assert.Equal(t, uint(4), g.Width())
}

func TestFieldRoundTrip(t *testing.T) {
	sim := mmio.NewSim()
	r := reg.NewRW[uint32](sim, testAddr)
	rnd := rand.New(rand.NewSource(2837))

	for i := 0; i < 2000; i++ {
		start := uint(rnd.Intn(32))
		stop := start + uint(rnd.Intn(int(32-start)))
		f := reg.NewField[uint32, uint32](r, start, stop)
		before := rnd.Uint32()
		x := rnd.Uint32()

		r.Write(before)
		f.Set(x)
		after := r.Read()

		width := stop - start + 1
		want := x
		if width < 32 {
			want &= uint32(1)<<width - 1
		}
		if !assert.Equal(t, want, f.Get(), "[%d:%d] set 0x%x", stop, start, x) {
			return
		}
		assert.Equal(t, before&^f.Mask(), after&^f.Mask(), "siblings of [%d:%d]", stop, start)
	}
}

func TestFieldSetIdempotent(t *testing.T) {
	sim := mmio.NewSim()
	r := reg.NewRW[uint32](sim, testAddr)
	f := reg.NewField[uint32, uint32](r, 19, 12)

	r.Write(0xCAFEF00D)
	f.Set(0x5A)
	once := r.Read()
	f.Set(0x5A)
	assert.Equal(t, once, r.Read())
}

func TestFieldOn8BitRegister(t *testing.T) {
	sim := mmio.NewSim()
	r := reg.NewRW[uint8](sim, testAddr)
	top := reg.NewField[uint8, uint8](r, 7, 4)
	low := reg.NewField[uint8, uint8](r, 0, 3)

	top.Set(0xC)
	low.Set(0x3)
	assert.Equal(t, uint8(0xC3), r.Read())
	top.Set(0x1F) //truncated to the field
	assert.Equal(t, uint8(0xF3), r.Read())
}

func TestFieldOutOfRangePanics(t *testing.T) {
	sim := mmio.NewSim()
	assert.Panics(t, func() { reg.NewField[uint8, uint8](reg.NewRW[uint8](sim, 0), 4, 8) })
	assert.Panics(t, func() { reg.NewFlag[uint32](reg.NewRW[uint32](sim, 0), 32) })
	assert.NotPanics(t, func() { reg.NewFlag[uint32](reg.NewRW[uint32](sim, 0), 31) })
}

func TestReadOnlyField(t *testing.T) {
	sim := mmio.NewSim()
	r := reg.NewRO[uint32](sim, testAddr)
	level := reg.NewROField[uint32, uint8](r, 19, 16)
	ready := reg.NewROFlag[uint32](r, 0)

	sim.Poke(testAddr, 4, 0x000B0001)
	assert.Equal(t, uint8(0xB), level.Get())
	assert.True(t, ready.Get())
}

func TestWriteOnlyField(t *testing.T) {
	sim := mmio.NewSim()
	w := reg.NewWO[uint32](sim, testAddr)
	mode := reg.NewWOField[uint32, uint32](w, 5, 4)
	start := reg.NewWOFlag[uint32](w, 0)
	sim.Poke(testAddr, 4, 0xFFFFFFFF)

	sim.Trace(true)
	mode.Put(0x2)
	assert.Equal(t, uint64(0x20), sim.Peek(testAddr, 4))
	start.Put(true)
	assert.Equal(t, uint64(0x01), sim.Peek(testAddr, 4))
	w.Assign(mode.Shift(0x3).Or(start.Shift(true)))
	assert.Equal(t, uint64(0x31), sim.Peek(testAddr, 4))
	sim.Trace(false)

	assert.Equal(t, 0, sim.Count(mmio.OpLoad))
	assert.Equal(t, 3, sim.Count(mmio.OpStore))
}

func TestShiftDoesNotTouchHardware(t *testing.T) {
	sim := mmio.NewSim()
	cfg := newADCConfig(sim)

	sim.Trace(true)
	fv := cfg.CHSEL.Shift(Channel14)
	sim.Trace(false)

	assert.Empty(t, sim.Accesses())
	assert.Equal(t, reg.FieldValue[uint32]{Value: 0xE00, Mask: 0xF00}, fv)
	//oversized values are clipped to the field
	assert.Equal(t, uint32(0xF00), cfg.CHSEL.Shift(Channel(0xFF)).Value)
}
