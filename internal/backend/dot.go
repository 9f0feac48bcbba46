// Package backend holds the three hot-operation providers. Each capability is
// an interface with a reference implementation, which is always available and
// defines the contract, and an accelerated implementation, which must be
// observably indistinguishable from it. Substitutability is proven by the
// parity harness, never assumed.
package backend

// DotProduct computes a 4-lane signed 8-bit dot product over packed words.
// Lane 0 lives in the least-significant byte of each operand.
type DotProduct interface {
	Dot4(a, b uint32) int32
}

// Pack4 packs four signed 8-bit lanes into one word, lane 0 in the LSB.
func Pack4(v [4]int8) uint32 {
	return uint32(uint8(v[0])) |
		uint32(uint8(v[1]))<<8 |
		uint32(uint8(v[2]))<<16 |
		uint32(uint8(v[3]))<<24
}

// Unpack4 recovers the four signed lanes from a packed word.
func Unpack4(w uint32) [4]int8 {
	return [4]int8{
		int8(w),
		int8(w >> 8),
		int8(w >> 16),
		int8(w >> 24),
	}
}

// RefDot is the portable reference: unpack both operands and accumulate lane
// by lane.
type RefDot struct{}

func (RefDot) Dot4(a, b uint32) int32 {
	la := Unpack4(a)
	lb := Unpack4(b)
	var acc int32
	for i := 0; i < 4; i++ {
		acc += int32(la[i]) * int32(lb[i])
	}
	return acc
}

// AccelDot routes through the custom-instruction boundary. The instruction is
// indivisible: one operation in, one signed 32-bit sum out, no partial results
// observable.
type AccelDot struct{}

func (AccelDot) Dot4(a, b uint32) int32 {
	return dot4Insn(a, b)
}

// dot4Insn is the narrow boundary a custom-instruction build overrides in an
// init, the same way architecture kernels are swapped in elsewhere. The
// default evaluates all four lanes as a single fused expression.
var dot4Insn = dot4Fused

func dot4Fused(a, b uint32) int32 {
	return int32(int8(a))*int32(int8(b)) +
		int32(int8(a>>8))*int32(int8(b>>8)) +
		int32(int8(a>>16))*int32(int8(b>>16)) +
		int32(int8(a>>24))*int32(int8(b>>24))
}
