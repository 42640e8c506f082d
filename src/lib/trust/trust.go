package trust

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

type MaskLevel int

const (
	Nothing   MaskLevel = 0x0
	ErrorMask MaskLevel = 0x1
	WarnMask  MaskLevel = 0x2
	InfoMask  MaskLevel = 0x4
	DebugMask MaskLevel = 0x8
	StatsMask MaskLevel = 0x10
	fatalMask MaskLevel = 0x80
)

var mu sync.Mutex
var level = fatalMask | ErrorMask | WarnMask
var out io.Writer = os.Stderr
var exitFn = os.Exit

// SetLevel lets you set an error mask directly. You can pass in something like
// ErrorMask | DebugMask to control exactly what gets printed.  It returns the
// previous mask.
func SetLevel(mask MaskLevel) MaskLevel {
	mu.Lock()
	defer mu.Unlock()
	r := level & 0x1f
	level = (mask & 0x1f) | fatalMask
	return r
}

func Level() MaskLevel {
	mu.Lock()
	defer mu.Unlock()
	return level & 0x1f
}

// ParseLevel turns a name (error, warn, info, debug, stats) into the mask
// that prints that level and everything more severe. "stats" is added on
// top of debug.
func ParseLevel(s string) (MaskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return Nothing, nil
	case "error":
		return ErrorMask, nil
	case "warn":
		return ErrorMask | WarnMask, nil
	case "info":
		return ErrorMask | WarnMask | InfoMask, nil
	case "debug":
		return ErrorMask | WarnMask | InfoMask | DebugMask, nil
	case "stats":
		return ErrorMask | WarnMask | InfoMask | DebugMask | StatsMask, nil
	}
	return Nothing, fmt.Errorf("unknown log level %q", s)
}

func LevelToString() string {
	l := Level()
	var names []string
	for _, n := range []struct {
		m    MaskLevel
		name string
	}{{ErrorMask, "error"}, {WarnMask, "warn"}, {InfoMask, "info"},
		{DebugMask, "debug"}, {StatsMask, "stats"}} {
		if l&n.m != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, " ")
}

// SetOutput sends log messages to w instead of stderr.  It returns the
// previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func logf(l MaskLevel, format string, params ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level&l == 0 {
		return
	}
	var prefix string
	switch {
	case l&fatalMask > 0:
		prefix = "FATAL:"
	case l&ErrorMask > 0:
		prefix = "ERROR:"
	case l&WarnMask > 0:
		prefix = " WARN:"
	case l&InfoMask > 0:
		prefix = " INFO:"
	case l&DebugMask > 0:
		prefix = "DEBUG:"
	case l&StatsMask > 0:
		prefix = fmt.Sprintf("STATS[%v]:", params[0])
		params = params[1:]
	}
	if len(format) == 0 || format[len(format)-1] != '\n' {
		format += "\n"
	}
	fmt.Fprint(out, prefix)
	fmt.Fprintf(out, format, params...)
}

//Fatalf prints the given log message (format + params) and then
//exits with the exitCode provided.  Fatalf is not maskable.
func Fatalf(exitCode int, format string, params ...interface{}) {
	logf(fatalMask, format, params...)
	exitFn(exitCode)
}

//Errorf prints the given log message (format + params) using the ErrorMask level.
func Errorf(format string, params ...interface{}) {
	logf(ErrorMask, format, params...)
}

//Warnf prints the given log message (format + params) using the WarnMask level.
func Warnf(format string, params ...interface{}) {
	logf(WarnMask, format, params...)
}

//Infof prints the given log message (format + params) using the InfoMask level.
func Infof(format string, params ...interface{}) {
	logf(InfoMask, format, params...)
}

//Debugf prints the given log message (format + params) using the DebugMask level.
func Debugf(format string, params ...interface{}) {
	logf(DebugMask, format, params...)
}

//Statsf prints the given log message (format + params) using the StatsMask level and
//takes an extra parameter that will be visible in the log message as the category
//of stats that is reported.
func Statsf(category string, format string, params ...interface{}) {
	logf(StatsMask, format, append([]interface{}{category}, params...)...)
}
