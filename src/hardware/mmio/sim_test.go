package mmio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimLittleEndian(t *testing.T) {
	s := NewSim()
	s.Store32(0x1000, 0x11223344)
	assert.Equal(t, uint8(0x44), s.Load8(0x1000))
	assert.Equal(t, uint8(0x11), s.Load8(0x1003))
	assert.Equal(t, uint16(0x1122), s.Load16(0x1002))
	assert.Equal(t, uint64(0x11223344), s.Load64(0x1000))

	s.Store64(0x2000, 0x0102030405060708)
	assert.Equal(t, uint32(0x01020304), s.Load32(0x2004))
}

func TestSimUnwrittenIsZero(t *testing.T) {
	s := NewSim()
	assert.Equal(t, uint32(0), s.Load32(0xdead0000))
	s.Store16(0x10, 0xffff)
	s.Store16(0x10, 0)
	assert.Empty(t, s.mem, "zero bytes are not stored")
}

func TestSimTrace(t *testing.T) {
	s := NewSim()
	s.Store32(0x10, 1) //not traced
	s.Trace(true)
	v := s.Load32(0x10)
	s.Store8(0x11, 0xAA)
	s.Poke(0x20, 4, 7) //never traced
	s.Trace(false)
	s.Load32(0x10)

	require.Equal(t, uint32(1), v)
	want := []Access{
		{Op: OpLoad, Addr: 0x10, Size: 4, Value: 1},
		{Op: OpStore, Addr: 0x11, Size: 1, Value: 0xAA},
	}
	assert.Equal(t, want, s.Accesses())
	assert.Equal(t, 1, s.Count(OpLoad))
	assert.Equal(t, 1, s.Count(OpStore))
	assert.Equal(t, "store8 0x00000011 0xaa", want[1].String())

	s.Trace(true)
	assert.Empty(t, s.Accesses(), "turning tracing on starts a new trace")
}

func TestSimSnapshot(t *testing.T) {
	s := NewSim()
	s.Store32(0x3F215040, 0x41)
	s.Store32(0x3F215044, 0x0000000D)
	s.Store64(0x1000, 0xFFFF0000FFFF0000)

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))

	restored := NewSim()
	restored.Store32(0x5000, 0x99) //replaced by the load
	require.NoError(t, restored.Load(&buf))

	assert.Equal(t, s.mem, restored.mem)
	assert.Equal(t, uint32(0x0D), restored.Load32(0x3F215044))
	assert.Equal(t, uint32(0), restored.Load32(0x5000))
}

func TestSimSnapshotGarbage(t *testing.T) {
	s := NewSim()
	assert.Error(t, s.Load(bytes.NewReader([]byte{0xff, 0x00, 0x13})))
}
