// Package parity proves backend substitutability. Per-provider self-tests
// compare the active provider against an independently computed reference for
// long deterministic operand streams; the end-to-end harness requires every
// backend selection to reproduce the all-software baseline checksum for every
// sample. No performance claim is valid until all of it passes.
package parity

import (
	"time"

	"github.com/YonatanGrobgeld/TinyML-algo/internal/backend"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/config"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/encoder"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/logger"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/metrics"
)

const dotIterations = 1000

// Report is the outcome of one provider self-test. A failing report carries
// the first mismatch only; the run stops there but the process continues.
type Report struct {
	Provider string
	Pass     bool

	// Failure detail, valid when Pass is false.
	Case  string
	Index int
	Want  int64
	Got   int64
}

func fail(provider, caseName string, index int, want, got int64) Report {
	metrics.SelfTestFailures.WithLabelValues(provider).Inc()
	logger.Log.Error("self-test mismatch",
		"provider", provider, "case", caseName, "index", index, "want", want, "got", got)
	return Report{Provider: provider, Case: caseName, Index: index, Want: want, Got: got}
}

// VerifyDot checks the active dot-product provider against the lane-by-lane
// reference for a fixed pseudo-random stream of packed operand pairs.
func VerifyDot(active backend.DotProduct) Report {
	gen := NewLCG(DefaultSeed)
	var a, b [4]int8
	for iter := 0; iter < dotIterations; iter++ {
		for i := 0; i < 4; i++ {
			a[i] = gen.NextInt8()
			b[i] = gen.NextInt8()
		}
		var want int32
		for i := 0; i < 4; i++ {
			want += int32(a[i]) * int32(b[i])
		}
		got := active.Dot4(backend.Pack4(a), backend.Pack4(b))
		if got != want {
			return fail("dot8", "lcg", iter, int64(want), int64(got))
		}
	}
	return Report{Provider: "dot8", Pass: true}
}

// lutGolden is an independent copy of the table; the self-test must not trust
// the provider package's constants.
var lutGolden = [16]uint16{
	1024, 754, 556, 410, 302, 223, 165, 122, 90, 67, 50, 37, 28, 21, 16, 12,
}

// VerifyExpLUT checks every table index and the score-to-index mapping over
// the whole clamped domain.
func VerifyExpLUT(active backend.ExpLookup) Report {
	for idx := 0; idx < 16; idx++ {
		got := active.Lookup(uint32(idx))
		if got != lutGolden[idx] {
			return fail("lut", "table", idx, int64(lutGolden[idx]), int64(got))
		}
	}
	// Scores arrive as non-positive values; index = -clamp(x, -15, 0).
	for x := 0; x >= -15; x-- {
		got := active.Lookup(uint32(-x))
		if got != lutGolden[-x] {
			return fail("lut", "score", x, int64(lutGolden[-x]), int64(got))
		}
	}
	return Report{Provider: "lut", Pass: true}
}

// matvecShapes are the four supported (length, outDim) combinations.
var matvecShapes = []struct {
	Length int
	OutDim int
}{
	{32, 32},
	{64, 32},
	{32, 64},
	{64, 64},
}

// matvecRef is the harness's own accumulation loop, independent of the
// backend package's reference provider.
func matvecRef(w, x []int8, bias []int32, outDim, length int, y []int32) {
	for i := 0; i < outDim; i++ {
		var acc int32
		if bias != nil {
			acc = bias[i]
		}
		for k := 0; k < length; k++ {
			acc += int32(w[i*length+k]) * int32(x[k])
		}
		y[i] = acc
	}
}

type operandSet struct {
	name string
	fill func(x, w []int8)
}

var operandSets = []operandSet{
	{"lcg", func(x, w []int8) {
		gen := NewLCG(DefaultSeed)
		gen.Fill(x)
		gen.Fill(w)
	}},
	{"ramp", func(x, w []int8) {
		for i := range x {
			x[i] = int8(i - len(x)/2)
		}
		for i := range w {
			w[i] = int8(i % 17)
		}
	}},
	{"max", func(x, w []int8) {
		for i := range x {
			x[i] = 127
		}
		for i := range w {
			w[i] = 127
		}
	}},
	{"min", func(x, w []int8) {
		for i := range x {
			x[i] = -128
		}
		for i := range w {
			w[i] = -128
		}
	}},
	{"alternating", func(x, w []int8) {
		for i := range x {
			if i%2 == 0 {
				x[i] = 127
			} else {
				x[i] = -128
			}
		}
		for i := range w {
			if i%2 == 0 {
				w[i] = -128
			} else {
				w[i] = 127
			}
		}
	}},
}

// VerifyMatVec exercises all four shapes against pseudo-random, structured
// and boundary operand sets, each with bias disabled and enabled. The
// bias-enabled pass is deliberate: bias parity is verified, never assumed.
func VerifyMatVec(active backend.MatVec) Report {
	for _, sh := range matvecShapes {
		for _, set := range operandSets {
			for _, withBias := range []bool{false, true} {
				x := make([]int8, sh.Length)
				w := make([]int8, sh.OutDim*sh.Length)
				set.fill(x, w)

				var bias []int32
				if withBias {
					bias = make([]int32, sh.OutDim)
					gen := NewLCG(DefaultSeed + 17)
					for i := range bias {
						// 16-bit range keeps bias + worst-case products
						// comfortably inside the int32 accumulator.
						bias[i] = int32(int16(gen.Next() >> 16))
					}
				}

				want := make([]int32, sh.OutDim)
				matvecRef(w, x, bias, sh.OutDim, sh.Length, want)

				got := make([]int32, sh.OutDim)
				if err := active.Compute(w, x, bias, sh.OutDim, sh.Length, got); err != nil {
					return fail("gemv", caseName(sh.Length, sh.OutDim, set.name, withBias), -1, 0, 0)
				}
				for i := range want {
					if got[i] != want[i] {
						return fail("gemv", caseName(sh.Length, sh.OutDim, set.name, withBias),
							i, int64(want[i]), int64(got[i]))
					}
				}
			}
		}
	}
	return Report{Provider: "gemv", Pass: true}
}

func caseName(length, outDim int, set string, bias bool) string {
	name := set
	if bias {
		name += "+bias"
	}
	switch {
	case length == 32 && outDim == 32:
		return "32x32/" + name
	case length == 64 && outDim == 32:
		return "64x32/" + name
	case length == 32 && outDim == 64:
		return "32x64/" + name
	default:
		return "64x64/" + name
	}
}

// VerifySelection runs the three provider self-tests for one backend
// selection. Reference-side providers trivially pass; the point is the
// accelerated ones.
func VerifySelection(sel config.Selection) []Report {
	be := backend.NewSet(sel)
	return []Report{
		VerifyDot(be.Dot),
		VerifyExpLUT(be.Exp),
		VerifyMatVec(be.MatVec),
	}
}

// SelectionResult is one backend selection's end-to-end outcome.
type SelectionResult struct {
	Selection config.Selection
	Mode      string
	Pass      bool
	Checksums []uint32

	// First divergence, valid when Pass is false.
	SampleIndex int
	Want        uint32
	Got         uint32
}

// Summary is the outcome of a full end-to-end parity run.
type Summary struct {
	Pass     bool
	Baseline []uint32
	Results  []SelectionResult
}

// VerifyEndToEnd encodes every sample under the all-software baseline, then
// under all other backend selections, and requires exact checksum equality
// per sample. This is the authoritative correctness gate.
func VerifyEndToEnd(w *encoder.Weights, samples []encoder.Tensor) (Summary, error) {
	start := time.Now()

	baseline, err := checksums(w, config.Baseline, samples)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Pass: true, Baseline: baseline}
	for _, sel := range config.AllSelections() {
		cks, err := checksums(w, sel, samples)
		if err != nil {
			return Summary{}, err
		}
		res := SelectionResult{
			Selection:   sel,
			Mode:        sel.Mode(),
			Pass:        true,
			Checksums:   cks,
			SampleIndex: -1,
		}
		for i := range cks {
			if cks[i] != baseline[i] {
				res.Pass = false
				res.SampleIndex = i
				res.Want = baseline[i]
				res.Got = cks[i]
				summary.Pass = false
				metrics.ChecksumMismatches.Inc()
				logger.Log.Error("checksum divergence",
					"mode", res.Mode, "sample", i, "want", baseline[i], "got", cks[i])
				break
			}
		}
		summary.Results = append(summary.Results, res)
	}

	metrics.ParityRunDuration.Observe(time.Since(start).Seconds())
	return summary, nil
}

func checksums(w *encoder.Weights, sel config.Selection, samples []encoder.Tensor) ([]uint32, error) {
	enc, err := encoder.New(w, backend.NewSet(sel))
	if err != nil {
		return nil, err
	}
	var out encoder.Tensor
	cks := make([]uint32, len(samples))
	for i := range samples {
		enc.Encode(&samples[i], &out)
		cks[i] = encoder.Checksum(&out)
	}
	return cks, nil
}
