package reg_test

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"

	"bitreg/src/hardware/reg"
)

func TestMaskContiguous(t *testing.T) {
	for start := uint(0); start < 32; start++ {
		for stop := start; stop < 32; stop++ {
			m := reg.Mask[uint32](start, stop)
			width := int(stop - start + 1)
			if !assert.Equal(t, width, bits.OnesCount32(m), "[%d:%d]", stop, start) {
				return
			}
			assert.Equal(t, int(start), bits.TrailingZeros32(m), "[%d:%d]", stop, start)
			assert.Equal(t, int(31-stop), bits.LeadingZeros32(m), "[%d:%d]", stop, start)
			assert.Equal(t, m, reg.Mask[uint32](stop, start), "order of [%d:%d]", stop, start)
		}
	}
}

func TestMaskSingleBit(t *testing.T) {
	for k := uint(0); k < 32; k++ {
		assert.Equal(t, uint32(1)<<k, reg.Mask[uint32](k, k), "bit %d", k)
	}
	//the top bit is where a shift by the word width would creep in
	assert.Equal(t, uint32(0x80000000), reg.Mask[uint32](31, 31))
	assert.Equal(t, uint64(1)<<63, reg.Mask[uint64](63, 63))
	assert.Equal(t, uint8(0x80), reg.Mask[uint8](7, 7))
}

func TestMaskTopOfWord(t *testing.T) {
	assert.Equal(t, uint32(0xFFFFFFFF), reg.Mask[uint32](0, 31))
	assert.Equal(t, uint32(0xFFFF0000), reg.Mask[uint32](16, 31))
	assert.Equal(t, uint8(0xF0), reg.Mask[uint8](4, 7))
	assert.Equal(t, uint16(0xFFFF), reg.Mask[uint16](15, 0))
	assert.Equal(t, ^uint64(0), reg.Mask[uint64](0, 63))
	assert.Equal(t, uint64(0xFFFFFFFF00000000), reg.Mask[uint64](32, 63))
}

func TestMaskOutOfRange(t *testing.T) {
	assert.Panics(t, func() { reg.Mask[uint32](0, 32) })
	assert.Panics(t, func() { reg.Mask[uint8](8, 8) })
	assert.Panics(t, func() { reg.Mask[uint8](9, 2) })
	assert.NotPanics(t, func() { reg.Mask[uint8](7, 0) })
}

func TestWidth(t *testing.T) {
	type status uint16
	assert.Equal(t, uint(8), reg.Width[uint8]())
	assert.Equal(t, uint(16), reg.Width[status]())
	assert.Equal(t, uint(32), reg.Width[uint32]())
	assert.Equal(t, uint(64), reg.Width[uint64]())
}
