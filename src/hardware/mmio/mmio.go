// Package mmio provides the buses registers are reached through: physical
// addresses on the target, a /dev/mem window on a Linux host, and simulated
// memory for tests and tools.
package mmio

import "bitreg/src/hardware/reg"

var _ reg.Bus = Direct{}

// Default is the bus the peripheral tables use when they are not given one.
var Default reg.Bus = Direct{}
