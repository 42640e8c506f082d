package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"bitreg/src/hardware/mmio"
	"bitreg/src/lib/trust"
	"bitreg/src/tools/sysdec"
	"bitreg/src/tools/sysdec/sys"
)

const usageText = `usage: sysdec [flags] <command> [args]

commands:
  check <desc>...                  validate descriptions
  decode <desc> <periph.reg> <value>
                                   show the fields of a register value
  shell [cmd [; cmd]...]           interactive register access (or run cmds)
  watch <periph.reg>               redraw a register until q is pressed

<desc> is a YAML file or a built in description (%s).

flags:
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("sysdec: ")
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	var f flags
	fs := newFlagSet("sysdec", &f)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), usageText, strings.Join(sys.Names(), ", "))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := loadConfig(f.config)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	if err := cfg.apply(fs, &f); err != nil {
		log.Printf("%v", err)
		return 2
	}
	level, err := trust.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Printf("%v", err)
		return 2
	}
	trust.SetLevel(level)
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	rest := fs.Args()[1:]
	switch fs.Arg(0) {
	case "check":
		err = check(stdout, rest)
	case "decode":
		err = decode(stdout, rest)
	case "shell":
		err = withSession(cfg, func(s *session) error {
			sh := &shell{s: s, out: stdout}
			if len(rest) == 0 {
				return sh.run()
			}
			return sh.script(strings.Join(rest, " "))
		})
	case "watch":
		if len(rest) != 1 {
			fs.Usage()
			return 2
		}
		err = withSession(cfg, func(s *session) error { return watch(s, rest[0]) })
	default:
		log.Printf("unknown command %q", fs.Arg(0))
		fs.Usage()
		return 2
	}
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	return 0
}

func withSession(cfg config, fn func(s *session) error) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	err = fn(s)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	return err
}

// script runs ";" separated commands, stopping at the first error.
func (sh *shell) script(text string) error {
	for _, line := range strings.Split(text, ";") {
		quit, err := sh.exec(line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	return nil
}

func check(w io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.New("check needs at least one description")
	}
	failed := 0
	for _, name := range args {
		d, err := loadDescription(name)
		if err == nil {
			err = d.Validate()
		}
		if err != nil {
			failed++
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(w, "%s: %s\n", name, line)
			}
			continue
		}
		regs := 0
		for _, p := range d.Peripherals() {
			for _, r := range p.Registers() {
				regs += len(r.Instances())
			}
		}
		fmt.Fprintf(w, "%s: ok, %d peripherals, %d registers\n", name, len(d.Peripheral), regs)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d descriptions failed", failed, len(args))
	}
	return nil
}

func decode(w io.Writer, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: decode <desc> <periph.reg> <value>")
	}
	d, err := loadDescription(args[0])
	if err != nil {
		return err
	}
	//nothing is read; the binding is only for the names
	b, err := d.Bind(mmio.NewSim())
	if err != nil {
		return err
	}
	r, err := b.Lookup(args[1])
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(args[2], 0, 64)
	if err != nil {
		return fmt.Errorf("bad value %q", args[2])
	}
	if r.Def.Size < 64 && v>>uint(r.Def.Size) != 0 {
		return fmt.Errorf("%s: 0x%x in %d bits: %w", r.Name, v, r.Def.Size, sysdec.ErrValueRange)
	}
	fmt.Fprint(w, r.Def.Format(r.Name, v))
	return nil
}
