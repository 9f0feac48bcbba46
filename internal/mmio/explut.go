package mmio

// Exponential-lookup peripheral registers.
const (
	LutIndex = 0x00 // write: lookup index, low 4 bits addressed
	LutValue = 0x04 // read: Q10 value for the stored index
)

// expROM is the peripheral's table for exp(0)..exp(-15) in Q10. It must match
// the software golden table exactly; the parity harness checks that it does.
var expROM = [16]uint16{
	1024, 754, 556, 410, 302, 223, 165, 122, 90, 67, 50, 37, 28, 21, 16, 12,
}

// ExpLUTDevice models the exponential-lookup block: an index register and a
// combinational value read. Only the low 4 bits of the index ever reach the
// ROM address lines.
type ExpLUTDevice struct {
	index uint32
}

func NewExpLUTDevice() *ExpLUTDevice {
	return &ExpLUTDevice{}
}

func (d *ExpLUTDevice) Write32(off uint32, v uint32) {
	if off == LutIndex {
		d.index = v
	}
}

func (d *ExpLUTDevice) Read32(off uint32) uint32 {
	switch off {
	case LutIndex:
		return d.index
	case LutValue:
		return uint32(expROM[d.index&0xF])
	}
	return 0
}
