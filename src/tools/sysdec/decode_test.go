package sysdec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitreg/src/tools/sysdec"
)

func TestDecode(t *testing.T) {
	cfg := loadADC(t).Peripheral["ADC"].Register["CONFIG"]
	got := cfg.Decode(0x0000_0501)
	require.Len(t, got, 3)
	assert.Equal(t, "READY", got[0].Field.Name)
	assert.Equal(t, uint64(0), got[0].Value)
	assert.Equal(t, "", got[0].Enum)

	assert.Equal(t, "CHSEL", got[1].Field.Name)
	assert.Equal(t, uint64(5), got[1].Value)
	assert.Equal(t, "Reserved", got[1].Enum)
	assert.Equal(t, "CHSEL[11:8] = 0x5 Reserved", got[1].String())

	assert.Equal(t, uint64(1), got[2].Value)

	got = cfg.Decode(0x0000_0100)
	assert.Equal(t, "Channel1", got[1].Enum)
}

func TestDecodeMarksWriteOnly(t *testing.T) {
	data := loadADC(t).Peripheral["ADC"].Register["DATA"]
	assert.Equal(t, "ADC.DATA = 0x5a\n"+
		"  In[7:0]  0x5a\n"+
		"  Out[7:0] 0x5a (write-only)\n", data.Format("ADC.DATA", 0x5A))
}

func TestParseValue(t *testing.T) {
	chsel := loadADC(t).Peripheral["ADC"].Register["CONFIG"].Field["CHSEL"]
	for in, want := range map[string]uint64{
		"temp":     0xE,
		"Channel1": 1,
		"0x3":      3,
		"0b1010":   10,
		" 7 ":      7,
	} {
		v, err := chsel.ParseValue(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, v, in)
	}
	_, err := chsel.ParseValue("16")
	assert.ErrorIs(t, err, sysdec.ErrValueRange)
	_, err = chsel.ParseValue("lots")
	assert.Error(t, err)
}
