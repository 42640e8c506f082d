package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"bitreg/src/hardware/mmio"
	"bitreg/src/hardware/reg"
	"bitreg/src/lib/trust"
	"bitreg/src/tools/sysdec"
	"bitreg/src/tools/sysdec/sys"
)

// session is a description bound to a bus.
type session struct {
	cfg     config
	dev     *sysdec.DeviceDef
	bus     reg.Bus
	sim     *mmio.Sim //nil unless the bus is simulated
	binding *sysdec.Binding
	closers []func() error
}

// loadDescription takes a file path or, if there is no such file, the name
// of a built in description.
func loadDescription(name string) (*sysdec.DeviceDef, error) {
	if _, err := os.Stat(name); err == nil {
		return sysdec.LoadFile(name)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return sys.Load(name)
}

func openSession(cfg config) (*session, error) {
	dev, err := loadDescription(cfg.Description)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, dev: dev}
	switch cfg.Bus {
	case "sim":
		s.sim = mmio.NewSim()
		s.bus = s.sim
		if cfg.Snapshot != "" {
			if err := s.load(cfg.Snapshot); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	case "devmem":
		bus, closer, err := openDevMem(cfg.DevMem, uintptr(cfg.Base), cfg.Size)
		if err != nil {
			return nil, err
		}
		s.bus = bus
		s.closers = append(s.closers, closer)
	}
	if s.binding, err = dev.Bind(s.bus); err != nil {
		s.Close()
		return nil, fmt.Errorf("%s: %w", cfg.Description, err)
	}
	if s.sim != nil && cfg.Snapshot != "" {
		s.closers = append(s.closers, func() error { return s.save(cfg.Snapshot) })
	}
	trust.Infof("sysdec: %s on %s bus", dev.Name, cfg.Bus)
	return s, nil
}

func (s *session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

var errNotSim = errors.New("snapshots need the sim bus")

// isHex picks Intel HEX over CBOR for .hex and .ihex files.
func isHex(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihex":
		return true
	}
	return false
}

func (s *session) save(path string) error {
	if s.sim == nil {
		return errNotSim
	}
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	save := s.sim.Save
	if isHex(path) {
		save = s.sim.SaveHex
	}
	if err := save(fp); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

func (s *session) load(path string) error {
	if s.sim == nil {
		return errNotSim
	}
	fp, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	var load func(io.Reader) error = s.sim.Load
	if isHex(path) {
		load = s.sim.LoadHex
	}
	return load(fp)
}
