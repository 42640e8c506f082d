package sysdec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitreg/src/tools/sysdec"
)

func TestValidateAccepts(t *testing.T) {
	assert.NoError(t, loadADC(t).Validate())
}

func TestValidateRejects(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
		want string
	}{
		{"size", `{name: T, peripherals: {P: {registers: {R: {size: 12, access: rw}}}}}`,
			"P.R: size 12 is not 8, 16, 32 or 64"},
		{"no access", `{name: T, peripherals: {P: {registers: {R: {size: 8}}}}}`,
			"P.R: no access given"},
		{"misaligned", `{name: T, peripherals: {P: {registers: {R: {size: 32, addressOffset: 2, access: r}}}}}`,
			"P.R: offset 0x2 is not aligned"},
		{"outside block", `{name: T, peripherals: {P: {addressBlock: {size: 4}, registers: {R: {size: 32, addressOffset: 4, access: r}}}}}`,
			"outside the block"},
		{"dim", `{name: T, peripherals: {P: {registers: {R: {size: 32, dim: 2, dimIncrement: 2, access: r}}}}}`,
			"dimIncrement 2 is smaller"},
		{"field too high", `{name: T, peripherals: {P: {registers: {R: {size: 8, access: rw, fields: {F: {bitRange: "[8]"}}}}}}}`,
			"P.R.F: bits [8:8] do not fit a 8 bit register"},
		{"no bit range", `{name: T, peripherals: {P: {registers: {R: {size: 8, access: rw, fields: {F: {access: rw}}}}}}}`,
			"P.R.F: no bit range given"},
		{"field access", `{name: T, peripherals: {P: {registers: {R: {size: 8, access: r, fields: {F: {bitRange: "[1]", access: rw}}}}}}}`,
			"P.R.F: access read-write exceeds the register's read-only"},
		{"overlap", `{name: T, peripherals: {P: {registers: {R: {size: 8, access: rw, fields: {A: {bitRange: "[3:0]"}, B: {bitRange: "[4:3]"}}}}}}}`,
			"P.R.B: overlaps A"},
		{"enum too big", `{name: T, peripherals: {P: {registers: {R: {size: 8, access: rw, fields: {F: {bitRange: "[1:0]", enumeratedValues: {Big: {value: 4}}}}}}}}}`,
			"Big = 0x4 does not fit in 2 bits"},
		{"enum twice", `{name: T, peripherals: {P: {registers: {R: {size: 8, access: rw, fields: {F: {bitRange: "[1:0]", enumeratedValues: {A: {value: 0}, B: {value: 0}}}}}}}}}`,
			"A and B have the same value 0x0"},
		{"same offset", `{name: T, peripherals: {P: {registers: {A: {size: 32, access: rw}, B: {size: 8, addressOffset: 3, access: r}}}}}`,
			"P.B: overlaps A"},
		{"nothing", `{name: T}`, "T: no peripherals"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := sysdec.Load(strings.NewReader(tc.doc))
			require.NoError(t, err)
			err = d.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

// A read-only and a write-only register may share an address, as may a
// read-only and a write-only field share bits.
func TestValidateAllowsSplitDirections(t *testing.T) {
	doc := `
name: T
peripherals:
  P:
    registers:
      Status: {size: 32, access: r}
      Command: {size: 32, access: w}
      FIFO:
        addressOffset: 4
        size: 8
        fields:
          Rx: {bitRange: "[7:0]", access: r}
          Tx: {bitRange: "[7:0]", access: w}
`
	d, err := sysdec.Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.NoError(t, d.Validate())
}

func TestValidateReportsEverything(t *testing.T) {
	doc := `{name: T, peripherals: {P: {registers: {A: {size: 3, access: r}, B: {size: 5, access: r}}}}}`
	d, err := sysdec.Load(strings.NewReader(doc))
	require.NoError(t, err)
	err = d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "P.A: size 3")
	assert.Contains(t, err.Error(), "P.B: size 5")
}
