package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// config is everything the subcommands need to know about where registers
// live. It comes from defaults, then the -c file, then flags.
type config struct {
	Bus         string        `yaml:"bus"` //sim or devmem
	Base        uint64        `yaml:"base"`
	Size        int           `yaml:"size"`
	DevMem      string        `yaml:"devmem"`
	Snapshot    string        `yaml:"snapshot"`
	Description string        `yaml:"description"` //file or built in name
	TTY         string        `yaml:"tty"`
	Interval    time.Duration `yaml:"interval"`
	LogLevel    string        `yaml:"logLevel"`
}

func defaultConfig() config {
	return config{
		Bus:         "sim",
		Base:        0x3F000000,
		Size:        0x01100000,
		DevMem:      "/dev/mem",
		Description: "bcm2837",
		Interval:    500 * time.Millisecond,
		LogLevel:    "warn",
	}
}

func loadConfig(path string) (config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	fp, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer fp.Close()
	dec := yaml.NewDecoder(fp)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// flags holds the raw command line values; only the ones the user set
// override the config.
type flags struct {
	config   string
	bus      string
	base     string
	size     string
	snapshot string
	desc     string
	tty      string
	interval time.Duration
	log      string
}

func newFlagSet(name string, f *flags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&f.config, "c", "", "YAML config file")
	fs.StringVar(&f.bus, "bus", "", "register backend: sim or devmem")
	fs.StringVar(&f.base, "base", "", "physical base of the devmem window")
	fs.StringVar(&f.size, "size", "", "size of the devmem window in bytes")
	fs.StringVar(&f.snapshot, "snapshot", "", "sim memory snapshot, loaded at start and saved at exit")
	fs.StringVar(&f.desc, "d", "", "description file or built in name")
	fs.StringVar(&f.tty, "tty", "", "terminal device for watch (default: the controlling terminal)")
	fs.DurationVar(&f.interval, "interval", 0, "watch refresh interval")
	fs.StringVar(&f.log, "log", "", "log level: none, error, warn, info, debug, stats")
	return fs
}

func (c *config) apply(fs *flag.FlagSet, f *flags) error {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "bus":
			c.Bus = f.bus
		case "base":
			c.Base, err = strconv.ParseUint(f.base, 0, 64)
		case "size":
			var n uint64
			n, err = strconv.ParseUint(f.size, 0, 32)
			c.Size = int(n)
		case "snapshot":
			c.Snapshot = f.snapshot
		case "d":
			c.Description = f.desc
		case "tty":
			c.TTY = f.tty
		case "interval":
			c.Interval = f.interval
		case "log":
			c.LogLevel = f.log
		}
		if err != nil {
			err = fmt.Errorf("-%s: %w", fl.Name, err)
		}
	})
	if err != nil {
		return err
	}
	return c.check()
}

func (c *config) check() error {
	switch c.Bus {
	case "sim", "devmem":
	default:
		return fmt.Errorf("unknown bus %q (want sim or devmem)", c.Bus)
	}
	if c.Bus == "devmem" && c.Size <= 0 {
		return fmt.Errorf("devmem window size must be positive")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}
