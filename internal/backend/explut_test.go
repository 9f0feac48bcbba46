package backend

import (
	"testing"

	"github.com/YonatanGrobgeld/TinyML-algo/internal/mmio"
)

func TestExpLookupGolden(t *testing.T) {
	want := [16]uint16{1024, 754, 556, 410, 302, 223, 165, 122, 90, 67, 50, 37, 28, 21, 16, 12}

	providers := []struct {
		name string
		lut  ExpLookup
	}{
		{"reference", RefExpLUT{}},
		{"hardware", NewHWExpLUT(mmio.NewExpLUTDevice())},
	}

	for _, p := range providers {
		t.Run(p.name, func(t *testing.T) {
			for idx := uint32(0); idx < 16; idx++ {
				if got := p.lut.Lookup(idx); got != want[idx] {
					t.Errorf("index %d: got %d, want %d", idx, got, want[idx])
				}
			}
		})
	}
}

func TestExpLookupClamp(t *testing.T) {
	// Indices above 15 are invalid input; both wrappers clamp to the last entry.
	for _, idx := range []uint32{16, 17, 255, 1 << 30} {
		if got := (RefExpLUT{}).Lookup(idx); got != ExpTable[15] {
			t.Errorf("reference idx %d: got %d, want %d", idx, got, ExpTable[15])
		}
		hw := NewHWExpLUT(mmio.NewExpLUTDevice())
		if got := hw.Lookup(idx); got != ExpTable[15] {
			t.Errorf("hardware idx %d: got %d, want %d", idx, got, ExpTable[15])
		}
	}
}
