package parity

// LCG is the deterministic operand generator shared by every self-test:
// state = state*1664525 + 1013904223, sample = top byte. The same seed always
// yields the same operand stream, so a failure report names a reproducible
// case.
type LCG struct {
	state uint32
}

// DefaultSeed is the seed every self-test starts from.
const DefaultSeed = 1

func NewLCG(seed uint32) *LCG {
	return &LCG{state: seed}
}

// Next advances the generator and returns the full 32-bit state.
func (l *LCG) Next() uint32 {
	l.state = l.state*1664525 + 1013904223
	return l.state
}

// NextInt8 advances the generator and returns the top byte as a signed sample.
func (l *LCG) NextInt8() int8 {
	return int8(l.Next() >> 24)
}

// Fill populates a slice with signed samples.
func (l *LCG) Fill(dst []int8) {
	for i := range dst {
		dst[i] = l.NextInt8()
	}
}
