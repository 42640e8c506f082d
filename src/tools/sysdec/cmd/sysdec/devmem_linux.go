package main

import (
	"bitreg/src/hardware/mmio"
	"bitreg/src/hardware/reg"
)

func openDevMem(path string, base uintptr, size int) (reg.Bus, func() error, error) {
	m, err := mmio.OpenDevMem(path, base, size)
	if err != nil {
		return nil, nil, err
	}
	return m, m.Close, nil
}
