package backend

import (
	"github.com/YonatanGrobgeld/TinyML-algo/internal/config"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/mmio"
)

// Set bundles one provider per hot operation. The encoder takes a Set and is
// oblivious to which side of each pair it received.
type Set struct {
	Dot    DotProduct
	Exp    ExpLookup
	MatVec MatVec
}

// NewSet builds the provider set for a backend selection. Accelerated
// providers are backed by the built-in device models; a port to real hardware
// swaps the Bus each driver talks to and nothing else.
func NewSet(sel config.Selection) Set {
	s := Set{
		Dot:    RefDot{},
		Exp:    RefExpLUT{},
		MatVec: RefMatVec{},
	}
	if sel.HWDot {
		s.Dot = AccelDot{}
	}
	if sel.HWExpLUT {
		s.Exp = NewHWExpLUT(mmio.NewExpLUTDevice())
	}
	if sel.HWMatVec {
		s.MatVec = NewHWMatVec(mmio.NewGemvDevice())
	}
	return s
}

// Reference returns the all-software set, the baseline every other set is
// measured against.
func Reference() Set {
	return NewSet(config.Baseline)
}
