package encoder

import (
	"fmt"
	"io"
)

// Weight shapes, in elements. All weights are signed 8-bit, row-major.
const (
	projWeightLen = D * D
	projBiasLen   = D
	ff1WeightLen  = FFN * D
	ff1BiasLen    = FFN
	ff2WeightLen  = D * FFN
	ff2BiasLen    = D

	// BlobSize is the byte length of an exported weight set: the four
	// projection matrices, their biases, then the two feed-forward layers.
	BlobSize = 4*projWeightLen + 4*projBiasLen + ff1WeightLen + ff1BiasLen + ff2WeightLen + ff2BiasLen
)

// Weights holds one immutable parameter set for the encoder block. The core
// never mutates or derives weights; they arrive whole from an external
// producer, either the zero placeholder set or a trained export.
type Weights struct {
	Wq, Wk, Wv, Wo []int8 // [D][D] row-major
	Bq, Bk, Bv, Bo []int8 // [D]

	Wff1 []int8 // [FFN][D] row-major
	Bff1 []int8 // [FFN]
	Wff2 []int8 // [D][FFN] row-major
	Bff2 []int8 // [D]
}

// Placeholder returns an all-zero weight set, the default the firmware builds
// ship when no trained export is linked in.
func Placeholder() *Weights {
	return &Weights{
		Wq: make([]int8, projWeightLen), Bq: make([]int8, projBiasLen),
		Wk: make([]int8, projWeightLen), Bk: make([]int8, projBiasLen),
		Wv: make([]int8, projWeightLen), Bv: make([]int8, projBiasLen),
		Wo: make([]int8, projWeightLen), Bo: make([]int8, projBiasLen),
		Wff1: make([]int8, ff1WeightLen), Bff1: make([]int8, ff1BiasLen),
		Wff2: make([]int8, ff2WeightLen), Bff2: make([]int8, ff2BiasLen),
	}
}

// ReadWeights consumes an exported weight blob: Wq, Wk, Wv, Wo, Bq, Bk, Bv,
// Bo, Wff1, Bff1, Wff2, Bff2, each row-major int8, back to back. Only the
// shape is validated; the values are opaque.
func ReadWeights(r io.Reader) (*Weights, error) {
	buf := make([]byte, BlobSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("weight blob: %w", err)
	}
	// Reject trailing bytes: a longer blob means a shape mismatch upstream.
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return nil, fmt.Errorf("weight blob: trailing bytes beyond %d", BlobSize)
	}

	w := &Weights{}
	off := 0
	take := func(n int) []int8 {
		s := make([]int8, n)
		for i := 0; i < n; i++ {
			s[i] = int8(buf[off+i])
		}
		off += n
		return s
	}
	w.Wq = take(projWeightLen)
	w.Wk = take(projWeightLen)
	w.Wv = take(projWeightLen)
	w.Wo = take(projWeightLen)
	w.Bq = take(projBiasLen)
	w.Bk = take(projBiasLen)
	w.Bv = take(projBiasLen)
	w.Bo = take(projBiasLen)
	w.Wff1 = take(ff1WeightLen)
	w.Bff1 = take(ff1BiasLen)
	w.Wff2 = take(ff2WeightLen)
	w.Bff2 = take(ff2BiasLen)
	return w, nil
}

// Validate checks that every tensor has its declared shape. Malformed shapes
// are an integration error, caught before the encoder is constructed.
func (w *Weights) Validate() error {
	checks := []struct {
		name string
		got  int
		want int
	}{
		{"Wq", len(w.Wq), projWeightLen},
		{"Wk", len(w.Wk), projWeightLen},
		{"Wv", len(w.Wv), projWeightLen},
		{"Wo", len(w.Wo), projWeightLen},
		{"Bq", len(w.Bq), projBiasLen},
		{"Bk", len(w.Bk), projBiasLen},
		{"Bv", len(w.Bv), projBiasLen},
		{"Bo", len(w.Bo), projBiasLen},
		{"Wff1", len(w.Wff1), ff1WeightLen},
		{"Bff1", len(w.Bff1), ff1BiasLen},
		{"Wff2", len(w.Wff2), ff2WeightLen},
		{"Bff2", len(w.Bff2), ff2BiasLen},
	}
	for _, c := range checks {
		if c.got != c.want {
			return fmt.Errorf("weight %s: size %d, want %d", c.name, c.got, c.want)
		}
	}
	return nil
}

// widen converts an int8 bias vector to the int32 form the matrix-vector
// providers take.
func widen(b []int8) []int32 {
	out := make([]int32, len(b))
	for i, v := range b {
		out[i] = int32(v)
	}
	return out
}
