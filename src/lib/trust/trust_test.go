package trust

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, mask MaskLevel) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut := SetOutput(&buf)
	prevLevel := SetLevel(mask)
	t.Cleanup(func() {
		SetOutput(prevOut)
		SetLevel(prevLevel)
	})
	return &buf
}

func TestMasking(t *testing.T) {
	buf := capture(t, ErrorMask|DebugMask)
	Errorf("bad %d", 1)
	Warnf("not shown")
	Infof("not shown")
	Debugf("detail %s", "x")
	assert.Equal(t, "ERROR:bad 1\nDEBUG:detail x\n", buf.String())
}

func TestStats(t *testing.T) {
	buf := capture(t, StatsMask)
	Statsf("sim", "%d loads", 3)
	assert.Equal(t, "STATS[sim]:3 loads\n", buf.String())
}

func TestFatalIsNotMaskable(t *testing.T) {
	buf := capture(t, Nothing)
	code := -1
	prev := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = prev }()

	Fatalf(3, "giving up")
	assert.Equal(t, 3, code)
	assert.Equal(t, "FATAL:giving up\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	m, err := ParseLevel("info")
	require.NoError(t, err)
	assert.Equal(t, ErrorMask|WarnMask|InfoMask, m)

	capture(t, m)
	assert.Equal(t, "error warn info", LevelToString())

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
