package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitreg/src/tools/sysdec"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConfigLayers(t *testing.T) {
	path := writeFile(t, "sysdec.yaml", "bus: devmem\nbase: 0x20000000\nsize: 0x1000\ninterval: 2s\n")
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "devmem", cfg.Bus)
	assert.Equal(t, uint64(0x20000000), cfg.Base)
	assert.Equal(t, 0x1000, cfg.Size)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, "bcm2837", cfg.Description, "unset keys keep their defaults")

	var f flags
	fs := newFlagSet("test", &f)
	require.NoError(t, fs.Parse([]string{"-bus", "sim", "-base", "0x3f000000", "-log", "debug"}))
	require.NoError(t, cfg.apply(fs, &f))
	assert.Equal(t, "sim", cfg.Bus)
	assert.Equal(t, uint64(0x3F000000), cfg.Base)
	assert.Equal(t, 0x1000, cfg.Size, "flags that were not given do not override")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestConfigRejects(t *testing.T) {
	_, err := loadConfig(writeFile(t, "bad.yaml", "buss: sim\n"))
	assert.Error(t, err)

	for _, args := range [][]string{
		{"-bus", "serial"},
		{"-base", "lots"},
		{"-bus", "devmem", "-size", "0"},
		{"-interval", "-1s"},
	} {
		cfg := defaultConfig()
		var f flags
		fs := newFlagSet("test", &f)
		require.NoError(t, fs.Parse(args))
		assert.Error(t, cfg.apply(fs, &f), args)
	}
}

func TestCheck(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 0, run([]string{"check", "bcm2837"}, &out))
	assert.Contains(t, out.String(), "bcm2837: ok, 5 peripherals")

	bad := writeFile(t, "bad.yaml", "name: T\nperipherals: {P: {registers: {R: {size: 12, access: r}}}}\n")
	out.Reset()
	assert.Equal(t, 1, run([]string{"check", bad}, &out))
	assert.Contains(t, out.String(), "P.R: size 12 is not 8, 16, 32 or 64")
}

func TestDecode(t *testing.T) {
	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"decode", "bcm2837", "Aux.MULCR", "0xC3"}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "Aux.MULCR = 0x000000c3\n"))
	assert.Contains(t, out.String(), "  DataSize[1:0] 0x3 EightBit\n")
	assert.Contains(t, out.String(), "  DLAB[7:7]     0x1\n")

	out.Reset()
	assert.Equal(t, 1, run([]string{"decode", "bcm2837", "Aux.MUScratch", "0x100"}, &out))
	assert.Equal(t, 1, run([]string{"decode", "bcm2837", "Aux.Nope", "1"}, &out))
}

func TestShellScript(t *testing.T) {
	var out bytes.Buffer
	code := run([]string{"-bus", "sim", "shell",
		"set", "Aux.MULCR", "DataSize=EightBit", "Break=1", ";",
		"read", "Aux.MULCR", ";",
		"get", "Aux.MULCR", "DataSize"}, &out)
	require.Equal(t, 0, code)
	assert.Equal(t, "Aux.MULCR = 0x00000043\nDataSize[1:0] = 0x3 EightBit\n", out.String())
}

func TestShellSnapshotPersists(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "mem.cbor")
	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"-snapshot", snap, "shell", "write", "Aux.MUScratch", "0x5a"}, &out))
	require.FileExists(t, snap)

	out.Reset()
	require.Equal(t, 0, run([]string{"-snapshot", snap, "shell", "read", "Aux.MUScratch"}, &out))
	assert.Equal(t, "Aux.MUScratch = 0x5a\n", out.String())
}

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()
	s, err := openSession(defaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	var out bytes.Buffer
	return &shell{s: s, out: &out}, &out
}

func TestShellErrors(t *testing.T) {
	sh, _ := newTestShell(t)
	_, err := sh.exec("read GPIO.GPSet[0]")
	assert.ErrorIs(t, err, sysdec.ErrNotReadable)
	_, err = sh.exec("set Aux.MULSR DataReady=1")
	assert.ErrorIs(t, err, sysdec.ErrNotWritable)
	_, err = sh.exec("set Aux.MULCR DataSize=Nine")
	assert.Error(t, err)
	_, err = sh.exec("get Aux.MULCR Parity")
	assert.ErrorIs(t, err, sysdec.ErrNoSuchField)
	_, err = sh.exec("dump Nowhere")
	assert.ErrorIs(t, err, sysdec.ErrNoSuchRegister)
	_, err = sh.exec("frob")
	assert.EqualError(t, err, `unknown command "frob", try help`)
	_, err = sh.exec("write Aux.MULCR")
	assert.EqualError(t, err, "usage: write <reg> <value>")

	quit, err := sh.exec("  ")
	assert.NoError(t, err)
	assert.False(t, quit)
	quit, err = sh.exec("QUIT")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestShellDumpAndList(t *testing.T) {
	sh, out := newTestShell(t)
	sh.s.sim.Poke(0x3F215054, 4, 0x21)
	_, err := sh.exec("dump Aux.MULSR")
	require.NoError(t, err)
	assert.Equal(t, "Aux.MULSR = 0x00000021\n"+
		"  TransmitterIdle[6:6]  0x0\n"+
		"  TransmitterEmpty[5:5] 0x1\n"+
		"  ReceiverOverrun[1:1]  0x0\n"+
		"  DataReady[0:0]        0x1\n", out.String())

	out.Reset()
	_, err = sh.exec("dump SystemTimer")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "SystemTimer.C[3] = 0x00000000\n")

	out.Reset()
	_, err = sh.exec("list QA7")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "0x40000034 read-write     32 QA7.LocalTimerControl\n")
	assert.NotContains(t, out.String(), "Aux.")

	out.Reset()
	_, err = sh.exec("help")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "set <reg> <field>=<value>...")
}

func TestShellSaveLoad(t *testing.T) {
	for _, name := range []string{"mem.cbor", "mem.hex"} {
		t.Run(name, func(t *testing.T) {
			sh, out := newTestShell(t)
			snap := filepath.Join(t.TempDir(), name)
			_, err := sh.exec("write SystemTimer.C[1] 0xdeadbeef")
			require.NoError(t, err)
			_, err = sh.exec("save " + snap)
			require.NoError(t, err)
			_, err = sh.exec("write SystemTimer.C[1] 0")
			require.NoError(t, err)
			_, err = sh.exec("load " + snap)
			require.NoError(t, err)
			_, err = sh.exec("read SystemTimer.C[1]")
			require.NoError(t, err)
			assert.Equal(t, "SystemTimer.C[1] = 0xdeadbeef\n", out.String())
		})
	}
}

func TestSaveHexFormat(t *testing.T) {
	sh, _ := newTestShell(t)
	snap := filepath.Join(t.TempDir(), "mem.HEX")
	_, err := sh.exec("write SystemTimer.C[1] 0xdeadbeef")
	require.NoError(t, err)
	_, err = sh.exec("save " + snap)
	require.NoError(t, err)
	body, err := os.ReadFile(snap)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), ":020000043F00"), string(body))
	assert.True(t, strings.HasSuffix(string(body), ":00000001FF\n"))
}

func TestWatchLoop(t *testing.T) {
	sh, _ := newTestShell(t)
	r, err := sh.s.binding.Lookup("Aux.MULCR")
	require.NoError(t, err)

	keys := make(chan rune, 3)
	keys <- 'x'
	keys <- 'r'
	keys <- 'q'
	var out bytes.Buffer
	require.NoError(t, watchLoop(&out, r, keys, nil))
	assert.Equal(t, 2, strings.Count(out.String(), clearScreen))
	assert.Contains(t, out.String(), "Aux.MULCR = 0x00000000\r\n")
	assert.NotContains(t, strings.ReplaceAll(out.String(), "\r\n", ""), "\n")

	tick := make(chan time.Time, 1)
	tick <- time.Now()
	closed := make(chan rune)
	close(closed)
	assert.False(t, nextFrame(nil, tick))
	assert.True(t, nextFrame(closed, nil))
}

// endless is a terminal with a key always ready.
type endless struct{}

func (endless) ReadRune() (rune, error) { return 'x', nil }

func TestReadKeysStops(t *testing.T) {
	keys := make(chan rune)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		readKeys(endless{}, keys, done)
		close(stopped)
	}()
	assert.Equal(t, 'x', <-keys)
	//nobody reads keys any more, as after watchLoop returns
	close(done)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("key reader still blocked after done")
	}
	_, ok := <-keys
	assert.False(t, ok)
}

// oneKey is a terminal that delivers q and then fails.
type oneKey struct{ sent bool }

func (k *oneKey) ReadRune() (rune, error) {
	if k.sent {
		return 0, io.EOF
	}
	k.sent = true
	return 'q', nil
}

func TestReadKeysEndsOnError(t *testing.T) {
	keys := make(chan rune, 1)
	readKeys(&oneKey{}, keys, make(chan struct{}))
	assert.Equal(t, 'q', <-keys)
	_, ok := <-keys
	assert.False(t, ok)
}
