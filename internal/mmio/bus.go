// Package mmio provides the register-level boundary between the backend
// drivers and the accelerator blocks. Drivers talk to a Bus; in this tree the
// Bus is satisfied by cycle-faithful device models of the peripherals, which
// honor the same register protocol the synthesized blocks expose.
package mmio

// Bus is a word-oriented register interface. Offsets are in bytes and
// word-aligned. Reads and writes have side effects exactly where the
// peripheral's register map says they do; there is no error path, matching
// memory-mapped semantics.
type Bus interface {
	Read32(off uint32) uint32
	Write32(off uint32, v uint32)
}
