package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-tty"

	"bitreg/src/tools/sysdec"
)

const clearScreen = "\x1b[H\x1b[2J"

// watch redraws the decoded register every interval until q is pressed.
func watch(s *session, name string) error {
	r, err := s.binding.Lookup(name)
	if err != nil {
		return err
	}
	if !r.Policy().CanRead() {
		return fmt.Errorf("%s is %s: %w", r.Name, r.Policy(), sysdec.ErrNotReadable)
	}
	var t *tty.TTY
	if s.cfg.TTY != "" {
		t, err = tty.OpenDevice(s.cfg.TTY)
	} else {
		t, err = tty.Open()
	}
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer t.Close()
	restore := t.MustRaw()
	defer restore()

	keys := make(chan rune, 1)
	done := make(chan struct{})
	defer close(done)
	go readKeys(t, keys, done)
	tick := time.NewTicker(s.cfg.Interval)
	defer tick.Stop()
	return watchLoop(t.Output(), r, keys, tick.C)
}

type runeReader interface {
	ReadRune() (rune, error)
}

// readKeys forwards key presses until the terminal fails or done is closed.
func readKeys(in runeReader, keys chan<- rune, done <-chan struct{}) {
	defer close(keys)
	for {
		c, err := in.ReadRune()
		if err != nil {
			return
		}
		select {
		case keys <- c:
		case <-done:
			return
		}
	}
}

func watchLoop(out io.Writer, r *sysdec.BoundRegister, keys <-chan rune, tick <-chan time.Time) error {
	for {
		if err := draw(out, r); err != nil {
			return err
		}
		if nextFrame(keys, tick) {
			return nil
		}
	}
}

// nextFrame waits for a refresh and reports whether to quit instead.
func nextFrame(keys <-chan rune, tick <-chan time.Time) (quit bool) {
	for {
		select {
		case c, ok := <-keys:
			switch {
			case !ok, c == 'q', c == 'Q', c == 3: //^C arrives as a key in raw mode
				return true
			case c == 'r', c == 'R':
				return false
			}
		case <-tick:
			return false
		}
	}
}

func draw(w io.Writer, r *sysdec.BoundRegister) error {
	s, err := r.Dump()
	if err != nil {
		return err
	}
	s += "\nq quits, r refreshes\n"
	//raw mode: no newline translation
	_, err = io.WriteString(w, clearScreen+strings.ReplaceAll(s, "\n", "\r\n"))
	return err
}
