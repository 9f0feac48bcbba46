package backend

import (
	"github.com/YonatanGrobgeld/TinyML-algo/internal/mmio"
)

// ExpTable is the golden Q10 table for exp(0)..exp(-15). Index i holds
// round(exp(-i) * 1024). Every lookup provider must return exactly these
// values; the hardware ROM carries an independent copy the parity harness
// checks against this one.
var ExpTable = [16]uint16{
	1024, 754, 556, 410, 302, 223, 165, 122, 90, 67, 50, 37, 28, 21, 16, 12,
}

// ExpLookup maps an index in 0..15 to the Q10 value of exp(-index).
type ExpLookup interface {
	Lookup(idx uint32) uint16
}

// RefExpLUT indexes the golden table directly. Indices above 15 clamp to the
// final entry.
type RefExpLUT struct{}

func (RefExpLUT) Lookup(idx uint32) uint16 {
	if idx > 15 {
		return ExpTable[15]
	}
	return ExpTable[idx]
}

// HWExpLUT drives the lookup peripheral: write the index register, read the
// value register. The wrapper clamps out-of-range indices before they reach
// the bus, matching the reference driver.
type HWExpLUT struct {
	bus mmio.Bus
}

func NewHWExpLUT(bus mmio.Bus) *HWExpLUT {
	return &HWExpLUT{bus: bus}
}

func (l *HWExpLUT) Lookup(idx uint32) uint16 {
	if idx > 15 {
		return ExpTable[15]
	}
	l.bus.Write32(mmio.LutIndex, idx)
	return uint16(l.bus.Read32(mmio.LutValue))
}
