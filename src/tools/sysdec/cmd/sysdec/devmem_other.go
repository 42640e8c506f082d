//go:build !linux

package main

import (
	"errors"

	"bitreg/src/hardware/reg"
)

func openDevMem(path string, base uintptr, size int) (reg.Bus, func() error, error) {
	return nil, nil, errors.New("the devmem bus needs linux")
}
