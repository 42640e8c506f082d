package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"bitreg/src/tools/sysdec"
)

var errUsage = errors.New("usage")

type command struct {
	args string
	help string
	run  func(sh *shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"read":  {"<reg>", "read the whole register", (*shell).read},
		"write": {"<reg> <value>", "write the whole register", (*shell).write},
		"get":   {"<reg> <field>", "read one field", (*shell).get},
		"set":   {"<reg> <field>=<value>...", "change fields with one store", (*shell).set},
		"dump":  {"[reg|peripheral]", "read and decode registers", (*shell).dump},
		"list":  {"[peripheral]", "list registers", (*shell).list},
		"save":  {"<file>", "save sim memory (CBOR, or Intel HEX for .hex)", (*shell).save},
		"load":  {"<file>", "load sim memory", (*shell).load},
		"help":  {"", "this message", (*shell).help},
	}
}

// shell runs the interactive commands against a session.
type shell struct {
	s   *session
	out io.Writer
}

// exec runs one command line. quit is true for quit or exit.
func (sh *shell) exec(line string) (quit bool, err error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}
	name := strings.ToLower(parts[0])
	if name == "quit" || name == "exit" {
		return true, nil
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q, try help", parts[0])
	}
	// a register outside a devmem window panics in the bus
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", name, r)
		}
	}()
	if err := cmd.run(sh, parts[1:]); err != nil {
		if errors.Is(err, errUsage) {
			return false, fmt.Errorf("usage: %s %s", name, cmd.args)
		}
		return false, err
	}
	return false, nil
}

func (sh *shell) lookup(args []string, n int) (*sysdec.BoundRegister, error) {
	if len(args) != n {
		return nil, errUsage
	}
	return sh.s.binding.Lookup(args[0])
}

func (sh *shell) read(args []string) error {
	r, err := sh.lookup(args, 1)
	if err != nil {
		return err
	}
	v, err := r.Read()
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "%s = 0x%0*x\n", r.Name, r.Def.Size/4, v)
	return nil
}

func (sh *shell) write(args []string) error {
	r, err := sh.lookup(args, 2)
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(args[1], 0, 64)
	if err != nil {
		return fmt.Errorf("bad value %q", args[1])
	}
	return r.Write(v)
}

func (sh *shell) get(args []string) error {
	r, err := sh.lookup(args, 2)
	if err != nil {
		return err
	}
	v, err := r.Get(args[1])
	if err != nil {
		return err
	}
	f, _ := r.Def.Lookup(args[1])
	fmt.Fprintln(sh.out, sysdec.DecodedField{Field: f, Value: v, Enum: f.EnumName(v)})
	return nil
}

func (sh *shell) set(args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	r, err := sh.s.binding.Lookup(args[0])
	if err != nil {
		return err
	}
	values := make(map[string]uint64)
	for _, a := range args[1:] {
		name, text, ok := strings.Cut(a, "=")
		if !ok {
			return errUsage
		}
		f, ok := r.Def.Lookup(name)
		if !ok {
			return fmt.Errorf("%s.%s: %w", r.Name, name, sysdec.ErrNoSuchField)
		}
		v, err := f.ParseValue(text)
		if err != nil {
			return err
		}
		values[f.Name] = v
	}
	return r.SetAll(values)
}

// dump decodes one register, every readable register of a peripheral, or
// every readable register.
func (sh *shell) dump(args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	if len(args) == 1 {
		if r, err := sh.s.binding.Lookup(args[0]); err == nil {
			s, err := r.Dump()
			if err != nil {
				return err
			}
			fmt.Fprint(sh.out, s)
			return nil
		}
	}
	found := false
	for _, r := range sh.s.binding.Registers() {
		if len(args) == 1 && !strings.EqualFold(r.Peripheral.Name, args[0]) {
			continue
		}
		found = true
		if !r.Policy().CanRead() {
			continue
		}
		s, err := r.Dump()
		if err != nil {
			return err
		}
		fmt.Fprint(sh.out, s)
	}
	if !found && len(args) == 1 {
		return fmt.Errorf("%s: %w", args[0], sysdec.ErrNoSuchRegister)
	}
	return nil
}

func (sh *shell) list(args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	for _, r := range sh.s.binding.Registers() {
		if len(args) == 1 && !strings.EqualFold(r.Peripheral.Name, args[0]) {
			continue
		}
		fmt.Fprintf(sh.out, "0x%08x %-14s %2d %s\n", r.Addr(), r.Policy(), r.Def.Size, r.Name)
	}
	return nil
}

func (sh *shell) save(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return sh.s.save(args[0])
}

func (sh *shell) load(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return sh.s.load(args[0])
}

func (sh *shell) help(args []string) error {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c := commands[n]
		fmt.Fprintf(sh.out, "  %-32s %s\n", n+" "+c.args, c.help)
	}
	fmt.Fprintf(sh.out, "  %-32s %s\n", "quit", "leave")
	fmt.Fprintln(sh.out, "values may be numbers (0x, 0b, 0o prefixes) or enumerated value names")
	return nil
}

func (sh *shell) completer() *readline.PrefixCompleter {
	var regs []readline.PrefixCompleterInterface
	for _, r := range sh.s.binding.Registers() {
		var fields []readline.PrefixCompleterInterface
		for _, f := range r.Def.Fields() {
			fields = append(fields, readline.PcItem(f.Name))
		}
		regs = append(regs, readline.PcItem(r.Name, fields...))
	}
	var items []readline.PrefixCompleterInterface
	for n := range commands {
		items = append(items, readline.PcItem(n, regs...))
	}
	return readline.NewPrefixCompleter(items...)
}

// run is the readline loop.
func (sh *shell) run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          strings.ToLower(sh.s.dev.Name) + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete:    sh.completer(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	sh.out = rl.Stdout()
	fmt.Fprintf(sh.out, "%s on the %s bus; help lists the commands\n", sh.s.dev.Name, sh.s.cfg.Bus)
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return nil //EOF
		}
		quit, err := sh.exec(line)
		if err != nil {
			fmt.Fprintln(rl.Stderr(), "error:", err)
		}
		if quit {
			return nil
		}
	}
}
