package parity

import (
	"testing"

	"github.com/YonatanGrobgeld/TinyML-algo/internal/backend"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/config"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/encoder"
)

func TestLCGFirstSample(t *testing.T) {
	gen := NewLCG(DefaultSeed)
	if got := gen.NextInt8(); got != 60 {
		t.Errorf("first sample from seed 1 = %d, want 60", got)
	}
}

func TestLCGDeterministic(t *testing.T) {
	a := NewLCG(DefaultSeed)
	b := NewLCG(DefaultSeed)
	for i := 0; i < 100; i++ {
		if av, bv := a.NextInt8(), b.NextInt8(); av != bv {
			t.Fatalf("iteration %d: %d != %d", i, av, bv)
		}
	}
}

func TestVerifyDotPasses(t *testing.T) {
	for _, tc := range []struct {
		name   string
		active backend.DotProduct
	}{
		{"reference", backend.RefDot{}},
		{"accelerated", backend.AccelDot{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := VerifyDot(tc.active)
			if !r.Pass {
				t.Fatalf("dot self-test failed: case %s index %d want %d got %d",
					r.Case, r.Index, r.Want, r.Got)
			}
		})
	}
}

// brokenDot returns a wrong sum starting at a chosen call.
type brokenDot struct {
	calls   int
	breakAt int
}

func (b *brokenDot) Dot4(x, y uint32) int32 {
	v := backend.RefDot{}.Dot4(x, y)
	b.calls++
	if b.calls > b.breakAt {
		return v + 1
	}
	return v
}

func TestVerifyDotReportsFirstMismatch(t *testing.T) {
	r := VerifyDot(&brokenDot{breakAt: 5})
	if r.Pass {
		t.Fatal("broken provider passed")
	}
	if r.Provider != "dot8" {
		t.Errorf("provider = %q", r.Provider)
	}
	if r.Index != 5 {
		t.Errorf("failing index = %d, want 5", r.Index)
	}
	if r.Got != r.Want+1 {
		t.Errorf("report want=%d got=%d, expected got = want+1", r.Want, r.Got)
	}
}

func TestVerifyExpLUTPasses(t *testing.T) {
	if r := VerifyExpLUT(backend.RefExpLUT{}); !r.Pass {
		t.Fatalf("reference LUT failed: %+v", r)
	}
	hw := backend.NewSet(config.Selection{HWExpLUT: true})
	if r := VerifyExpLUT(hw.Exp); !r.Pass {
		t.Fatalf("hardware LUT failed: %+v", r)
	}
}

type brokenLUT struct{}

func (brokenLUT) Lookup(idx uint32) uint16 {
	if idx == 9 {
		return 0
	}
	return backend.RefExpLUT{}.Lookup(idx)
}

func TestVerifyExpLUTReportsIndex(t *testing.T) {
	r := VerifyExpLUT(brokenLUT{})
	if r.Pass {
		t.Fatal("broken LUT passed")
	}
	if r.Index != 9 {
		t.Errorf("failing index = %d, want 9", r.Index)
	}
	if r.Want != 67 || r.Got != 0 {
		t.Errorf("report want=%d got=%d, expected 67/0", r.Want, r.Got)
	}
}

func TestVerifyMatVecPasses(t *testing.T) {
	if r := VerifyMatVec(backend.RefMatVec{}); !r.Pass {
		t.Fatalf("reference matvec failed: %+v", r)
	}
	hw := backend.NewSet(config.Selection{HWMatVec: true})
	if r := VerifyMatVec(hw.MatVec); !r.Pass {
		t.Fatalf("hardware matvec failed: case %s index %d want %d got %d",
			r.Case, r.Index, r.Want, r.Got)
	}
}

// brokenMatVec corrupts one element of one shape.
type brokenMatVec struct{}

func (brokenMatVec) Compute(w, x []int8, bias []int32, outDim, length int, y []int32) error {
	if err := (backend.RefMatVec{}).Compute(w, x, bias, outDim, length, y); err != nil {
		return err
	}
	if length == 64 && outDim == 32 {
		y[7]++
	}
	return nil
}

func TestVerifyMatVecReportsShapeAndIndex(t *testing.T) {
	r := VerifyMatVec(brokenMatVec{})
	if r.Pass {
		t.Fatal("broken matvec passed")
	}
	if r.Case != "64x32/lcg" {
		t.Errorf("case = %q, want 64x32/lcg", r.Case)
	}
	if r.Index != 7 {
		t.Errorf("index = %d, want 7", r.Index)
	}
	if r.Got != r.Want+1 {
		t.Errorf("want=%d got=%d", r.Want, r.Got)
	}
}

func TestVerifySelectionAllPass(t *testing.T) {
	for _, sel := range config.AllSelections() {
		t.Run(sel.Mode(), func(t *testing.T) {
			for _, r := range VerifySelection(sel) {
				if !r.Pass {
					t.Errorf("%s self-test failed: case %s index %d want %d got %d",
						r.Provider, r.Case, r.Index, r.Want, r.Got)
				}
			}
		})
	}
}

func lcgSamples(n int) []encoder.Tensor {
	gen := NewLCG(DefaultSeed)
	samples := make([]encoder.Tensor, n)
	for i := range samples {
		for s := 0; s < config.SeqLen; s++ {
			for d := 0; d < config.ModelDim; d++ {
				samples[i][s][d] = int8((gen.Next() >> 24) - 128)
			}
		}
	}
	return samples
}

func lcgWeights(seed uint32) *encoder.Weights {
	gen := NewLCG(seed)
	w := encoder.Placeholder()
	for _, slice := range [][]int8{
		w.Wq, w.Wk, w.Wv, w.Wo, w.Bq, w.Bk, w.Bv, w.Bo,
		w.Wff1, w.Bff1, w.Wff2, w.Bff2,
	} {
		gen.Fill(slice)
	}
	return w
}

func TestVerifyEndToEnd(t *testing.T) {
	summary, err := VerifyEndToEnd(lcgWeights(3), lcgSamples(4))
	if err != nil {
		t.Fatal(err)
	}
	if !summary.Pass {
		for _, r := range summary.Results {
			if !r.Pass {
				t.Errorf("mode %s diverged at sample %d: want 0x%08X got 0x%08X",
					r.Mode, r.SampleIndex, r.Want, r.Got)
			}
		}
		t.Fatal("end-to-end parity failed")
	}
	if len(summary.Results) != 8 {
		t.Fatalf("expected 8 selection results, got %d", len(summary.Results))
	}
	if summary.Results[0].Mode != "BASELINE" {
		t.Errorf("first result mode = %q, want BASELINE", summary.Results[0].Mode)
	}
	for _, r := range summary.Results {
		if len(r.Checksums) != 4 {
			t.Errorf("mode %s: %d checksums, want 4", r.Mode, len(r.Checksums))
		}
	}
}

func TestVerifyEndToEndZeroWeights(t *testing.T) {
	var zero encoder.Tensor
	summary, err := VerifyEndToEnd(encoder.Placeholder(), []encoder.Tensor{zero})
	if err != nil {
		t.Fatal(err)
	}
	if !summary.Pass {
		t.Fatal("zero-weight parity failed")
	}
	for _, r := range summary.Results {
		if r.Checksums[0] != 0 {
			t.Errorf("mode %s: zero input checksum = 0x%08X, want 0", r.Mode, r.Checksums[0])
		}
	}
}
