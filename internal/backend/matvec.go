package backend

import (
	"fmt"

	"github.com/YonatanGrobgeld/TinyML-algo/internal/metrics"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/mmio"
)

// MatVec computes y = W*x (+ bias), raw signed 32-bit sums with no rescaling.
// W is row-major [outDim][length]; bias may be nil. Both dimensions are
// restricted to 32 or 64. This is a lower-level primitive than the encoder's
// own shifted matvec; the encoder applies its scaling on top of these sums.
type MatVec interface {
	Compute(w, x []int8, bias []int32, outDim, length int, y []int32) error
}

func checkMatVecShape(w, x []int8, bias []int32, outDim, length int, y []int32) error {
	if length != 32 && length != 64 {
		return fmt.Errorf("invalid length: %d (must be 32 or 64)", length)
	}
	if outDim != 32 && outDim != 64 {
		return fmt.Errorf("invalid out_dim: %d (must be 32 or 64)", outDim)
	}
	if len(w) != outDim*length {
		return fmt.Errorf("weight size mismatch: %d != %d*%d", len(w), outDim, length)
	}
	if len(x) != length {
		return fmt.Errorf("input size mismatch: %d != %d", len(x), length)
	}
	if bias != nil && len(bias) != outDim {
		return fmt.Errorf("bias size mismatch: %d != %d", len(bias), outDim)
	}
	if len(y) < outDim {
		return fmt.Errorf("result buffer too small: %d < %d", len(y), outDim)
	}
	return nil
}

// RefMatVec is the direct nested accumulation loop.
type RefMatVec struct{}

func (RefMatVec) Compute(w, x []int8, bias []int32, outDim, length int, y []int32) error {
	if err := checkMatVecShape(w, x, bias, outDim, length, y); err != nil {
		return err
	}
	for i := 0; i < outDim; i++ {
		var acc int32
		if bias != nil {
			acc = bias[i]
		}
		row := w[i*length : (i+1)*length]
		for k := 0; k < length; k++ {
			acc += int32(row[k]) * int32(x[k])
		}
		y[i] = acc
	}
	return nil
}

// HWMatVec is the streaming driver for the matrix-vector accelerator. The
// block has no memory access of its own, so every operand element is fed
// through a register write and every result element is pulled through a
// register read plus an explicit cursor advance. The driver owns the entire
// sequencing: clear, load X, load W row-major, load bias if enabled, start,
// poll until done, drain. Completion is polled with no timeout; a stuck
// accelerator blocks the caller (documented limitation).
type HWMatVec struct {
	bus mmio.Bus
}

func NewHWMatVec(bus mmio.Bus) *HWMatVec {
	return &HWMatVec{bus: bus}
}

func (m *HWMatVec) Compute(w, x []int8, bias []int32, outDim, length int, y []int32) error {
	if err := checkMatVecShape(w, x, bias, outDim, length, y); err != nil {
		return err
	}

	// Clear resets the operand cursors and drops a stale done flag; required
	// before every load.
	m.bus.Write32(mmio.GemvCtrl, mmio.GemvCtrlClearDone)

	for _, v := range x {
		m.bus.Write32(mmio.GemvXIn, uint32(uint8(v)))
	}
	for _, v := range w {
		m.bus.Write32(mmio.GemvWIn, uint32(uint8(v)))
	}
	if bias != nil {
		for _, v := range bias {
			m.bus.Write32(mmio.GemvBIn, uint32(v))
		}
	}

	// One write carries the shape configuration and the start pulse.
	ctrl := uint32(mmio.GemvCtrlStart)
	if length == 64 {
		ctrl |= mmio.GemvCtrlLen64
	}
	if outDim == 64 {
		ctrl |= mmio.GemvCtrlOutDim64
	}
	if bias != nil {
		ctrl |= mmio.GemvCtrlBiasEn
	}
	m.bus.Write32(mmio.GemvCtrl, ctrl)

	for m.bus.Read32(mmio.GemvStatus)&mmio.GemvStatusDone == 0 {
	}

	// Y_OUT is non-advancing; each element needs its own Y_NEXT pulse.
	for i := 0; i < outDim; i++ {
		y[i] = int32(m.bus.Read32(mmio.GemvYOut))
		m.bus.Write32(mmio.GemvYNext, 1)
	}

	metrics.AccelOpsTotal.WithLabelValues("gemv").Inc()
	return nil
}
