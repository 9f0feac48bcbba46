// Package encoder implements the fixed-point single-head encoder block:
// Q/K/V projections, streaming attention with an integer softmax
// approximation, output projection with residual, and a ReLU feed-forward
// block with residual. All activations are signed 8-bit, all accumulation
// signed 32-bit, every narrowing write saturates. The three hot inner
// operations go through backend providers, so the same pipeline runs
// reference or accelerated without any numerical difference.
package encoder

import (
	"fmt"
	"time"

	"github.com/YonatanGrobgeld/TinyML-algo/internal/backend"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/config"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/metrics"
)

const (
	S   = config.SeqLen
	D   = config.ModelDim
	FFN = config.HiddenDim
)

// Tensor is one token grid: S tokens of width D.
type Tensor [S][D]int8

// Encoder runs the block over fixed-shape tensors. All working storage is
// owned by the instance and reused across calls; Encode allocates nothing.
// Not safe for concurrent use: one encode runs to completion at a time.
type Encoder struct {
	w  *Weights
	be backend.Set

	// Widened biases for the matrix-vector providers, fixed at construction.
	bq32, bk32, bv32, bo32 []int32
	bff1, bff2             []int32

	// Scratch. Attention state is O(S): one score buffer and one
	// exponential-weight buffer, reused for every query position. No SxS
	// structure is ever materialized.
	q, k, v Tensor
	ctx     Tensor
	hidden  [S][FFN]int8
	scores  [S]int32
	expw    [S]uint16
	mv      [FFN]int32
}

// New builds an encoder over an immutable weight set and a provider set.
func New(w *Weights, be backend.Set) (*Encoder, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{
		w:    w,
		be:   be,
		bq32: widen(w.Bq),
		bk32: widen(w.Bk),
		bv32: widen(w.Bv),
		bo32: widen(w.Bo),
		bff1: widen(w.Bff1),
		bff2: widen(w.Bff2),
	}, nil
}

// saturate clamps a 32-bit accumulator into signed 8-bit range. Overflow is
// absorbed here, never signalled.
func saturate(x int32) int8 {
	if x > 127 {
		return 127
	}
	if x < -128 {
		return -128
	}
	return int8(x)
}

// Encode runs the full block. Deterministic: the same input, weights and
// backend selection always produce the same output. Arithmetic cannot fail.
func (e *Encoder) Encode(in, out *Tensor) {
	start := time.Now()

	e.project(in, &e.q, e.w.Wq, e.bq32)
	e.project(in, &e.k, e.w.Wk, e.bk32)
	e.project(in, &e.v, e.w.Wv, e.bv32)

	e.attention()

	// Output projection + residual. The q buffer is free now and serves as
	// the projection temporary, keeping the footprint fixed.
	e.project(&e.ctx, &e.q, e.w.Wo, e.bo32)
	for s := 0; s < S; s++ {
		for d := 0; d < D; d++ {
			e.ctx[s][d] = saturate(int32(in[s][d]) + int32(e.q[s][d]))
		}
	}

	e.feedForward(out)

	metrics.RecordEncode(time.Since(start).Seconds())
}

// project applies one linear projection to every token: raw int32 matvec plus
// bias through the provider, then a 7-bit rescale and saturation.
func (e *Encoder) project(src, dst *Tensor, w []int8, bias []int32) {
	for s := 0; s < S; s++ {
		e.matvec(w, src[s][:], bias, D, D)
		for d := 0; d < D; d++ {
			dst[s][d] = saturate(e.mv[d] >> 7)
		}
	}
}

// matvec dispatches to the provider. Shapes here are compile-time constants,
// so a shape error is a programming bug, not a runtime condition.
func (e *Encoder) matvec(w, x []int8, bias []int32, outDim, length int) {
	if err := e.be.MatVec.Compute(w, x, bias, outDim, length, e.mv[:]); err != nil {
		panic(fmt.Sprintf("matvec %dx%d: %v", outDim, length, err))
	}
}

// pack4 packs four consecutive lanes of a token row for the dot provider.
func pack4(row *[D]int8, off int) uint32 {
	return backend.Pack4([4]int8{row[off], row[off+1], row[off+2], row[off+3]})
}

// scoreToExp clamps a compressed score into the table domain [-15,0] and
// looks up the Q10 weight for it.
func (e *Encoder) scoreToExp(x int16) uint16 {
	if x > 0 {
		x = 0
	} else if x < -15 {
		x = -15
	}
	return e.be.Exp.Lookup(uint32(-x))
}

// attention computes the context for each query position in turn. Scores are
// 32-lane dot products accumulated in 4-lane packs, shifted right by 5 to
// approximate the 1/sqrt(D) scaling. The softmax is the integer
// approximation: subtract the row maximum, compress by 3 bits, clamp into the
// table domain, look up Q10 weights, normalize in Q15.
func (e *Encoder) attention() {
	for i := 0; i < S; i++ {
		maxScore := int32(-2147483647)
		for j := 0; j < S; j++ {
			var acc int32
			for t := 0; t < D; t += 4 {
				acc += e.be.Dot.Dot4(pack4(&e.q[i], t), pack4(&e.k[j], t))
			}
			acc >>= 5
			e.scores[j] = acc
			if acc > maxScore {
				maxScore = acc
			}
		}

		var sumExp uint32
		for j := 0; j < S; j++ {
			shifted := e.scores[j] - maxScore // <= 0
			e.expw[j] = e.scoreToExp(int16(shifted >> 3))
			sumExp += uint32(e.expw[j])
		}
		// All weights can underflow to zero at extreme inputs; keep the
		// normalization divisor alive.
		if sumExp == 0 {
			sumExp = 1
		}

		for d := 0; d < D; d++ {
			var acc int32
			for j := 0; j < S; j++ {
				wq15 := uint16((uint32(e.expw[j]) << 15) / sumExp)
				acc += (int32(wq15) * int32(e.v[j][d])) >> 15
			}
			e.ctx[i][d] = saturate(acc)
		}
	}
}

// feedForward applies the two-layer block to the residual stream in ctx and
// writes the final output: out = ctx + W2*relu(W1*ctx + b1) + b2, with the
// same 7-bit rescale as the projections at each layer.
func (e *Encoder) feedForward(out *Tensor) {
	for s := 0; s < S; s++ {
		e.matvec(e.w.Wff1, e.ctx[s][:], e.bff1, FFN, D)
		for d := 0; d < FFN; d++ {
			acc := e.mv[d] >> 7
			if acc < 0 {
				e.hidden[s][d] = 0
			} else {
				e.hidden[s][d] = saturate(acc)
			}
		}
	}
	for s := 0; s < S; s++ {
		e.matvec(e.w.Wff2, e.hidden[s][:], e.bff2, D, FFN)
		for d := 0; d < D; d++ {
			y := saturate(e.mv[d] >> 7)
			out[s][d] = saturate(int32(e.ctx[s][d]) + int32(y))
		}
	}
}

// Checksum is the additive 32-bit byte sum over a token grid, the equivalence
// fingerprint compared across backend selections.
func Checksum(t *Tensor) uint32 {
	var sum uint32
	for s := 0; s < S; s++ {
		for d := 0; d < D; d++ {
			sum += uint32(uint8(t[s][d]))
		}
	}
	return sum
}
