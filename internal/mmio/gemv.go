package mmio

// Matrix-vector peripheral register map. Offsets in bytes, word-aligned.
const (
	GemvCtrl   = 0x00 // bit0 start (pulse), bit3 clear-done (pulse), bit4 len64, bit5 out64, bit6 bias
	GemvXIn    = 0x04 // write one int8 X element per access (low byte)
	GemvWIn    = 0x08 // write one int8 W element per access, row-major
	GemvBIn    = 0x0C // write one int32 bias element per access
	GemvYOut   = 0x10 // read current int32 result element, non-advancing
	GemvStatus = 0x14 // bit0 busy, bit1 done
	GemvYNext  = 0x18 // write with bit0 set to advance the result read cursor
)

// CTRL bits. START and CLEAR_DONE act as one-cycle pulses; the dimension and
// bias bits are stored configuration, latched from the most recent CTRL write.
const (
	GemvCtrlStart     = 1 << 0
	GemvCtrlClearDone = 1 << 3
	GemvCtrlLen64     = 1 << 4
	GemvCtrlOutDim64  = 1 << 5
	GemvCtrlBiasEn    = 1 << 6
)

// STATUS bits.
const (
	GemvStatusBusy = 1 << 0
	GemvStatusDone = 1 << 1
)

const (
	gemvMaxLen = 64
	gemvMaxOut = 64
)

// GemvDevice models the matrix-vector accelerator: operand SRAM fed one
// element per register write, a start-triggered compute pass, a polled
// busy/done status, and a cursor-advanced result port. The block has no bus
// mastering; every element crosses the register interface exactly once, and
// the caller carries the full sequencing burden. Misordered loads leave stale
// SRAM contents in the computation, exactly as the silicon would.
type GemvDevice struct {
	x [gemvMaxLen]int8
	w [gemvMaxOut * gemvMaxLen]int8
	b [gemvMaxOut]int32
	y [gemvMaxOut]int32

	xCur, wCur, bCur int
	yCur             int

	ctrl uint32 // stored configuration bits from the last CTRL write

	busy bool
	done bool // sticky until clear-done

	pollsLeft int // status reads remaining before the pass completes
}

func NewGemvDevice() *GemvDevice {
	return &GemvDevice{}
}

func (d *GemvDevice) Write32(off uint32, v uint32) {
	switch off {
	case GemvCtrl:
		d.ctrl = v &^ (GemvCtrlStart | GemvCtrlClearDone)
		if v&GemvCtrlClearDone != 0 {
			d.clear()
		}
		if v&GemvCtrlStart != 0 && !d.busy {
			d.start(v)
		}
	case GemvXIn:
		if d.xCur < gemvMaxLen {
			d.x[d.xCur] = int8(v)
			d.xCur++
		}
	case GemvWIn:
		if d.wCur < gemvMaxOut*gemvMaxLen {
			d.w[d.wCur] = int8(v)
			d.wCur++
		}
	case GemvBIn:
		if d.bCur < gemvMaxOut {
			d.b[d.bCur] = int32(v)
			d.bCur++
		}
	case GemvYNext:
		if v&1 != 0 && d.yCur < gemvMaxOut-1 {
			d.yCur++
		}
	}
}

func (d *GemvDevice) Read32(off uint32) uint32 {
	switch off {
	case GemvCtrl:
		return d.ctrl
	case GemvStatus:
		if d.busy {
			d.pollsLeft--
			if d.pollsLeft <= 0 {
				d.busy = false
				d.done = true
				return GemvStatusDone
			}
			return GemvStatusBusy
		}
		if d.done {
			return GemvStatusDone
		}
		return 0
	case GemvYOut:
		return uint32(d.y[d.yCur])
	}
	return 0
}

// clear resets all write cursors and the read cursor and drops the done flag.
// Required before loading a new operand set.
func (d *GemvDevice) clear() {
	d.done = false
	d.xCur, d.wCur, d.bCur = 0, 0, 0
	d.yCur = 0
}

// start latches the shape from the CTRL word and runs the compute pass. The
// result becomes visible once STATUS reports done; completion takes a
// deterministic, shape-dependent number of status polls.
func (d *GemvDevice) start(ctrl uint32) {
	length := 32
	if ctrl&GemvCtrlLen64 != 0 {
		length = 64
	}
	outDim := 32
	if ctrl&GemvCtrlOutDim64 != 0 {
		outDim = 64
	}
	biasEn := ctrl&GemvCtrlBiasEn != 0

	for i := 0; i < outDim; i++ {
		var acc int32
		if biasEn {
			acc = d.b[i]
		}
		row := d.w[i*length:]
		for k := 0; k < length; k++ {
			acc += int32(row[k]) * int32(d.x[k])
		}
		d.y[i] = acc
	}

	d.busy = true
	d.pollsLeft = outDim / 8
}
