// Package demo carries the reporting surface around the core: fixed sample
// inputs, mean pooling, a small linear classifier, and the line-oriented
// result report the downstream tooling scrapes.
package demo

import (
	"fmt"
	"io"

	"github.com/YonatanGrobgeld/TinyML-algo/internal/config"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/encoder"
)

const (
	NumClasses = config.NumClass

	sampleBytes = config.SeqLen*config.ModelDim + 1 // input grid + label

	// ClassifierBlobSize is the byte length of an exported classifier:
	// weights row-major then biases.
	ClassifierBlobSize = NumClasses*config.ModelDim + NumClasses
)

// Sample is one fixed demo input with its expected class.
type Sample struct {
	Input encoder.Tensor
	Label uint8
}

// BuiltinSamples generates n deterministic pseudo-random samples, the stand-in
// used when no exported sample set is supplied. Bytes map 0..255 to -128..127.
func BuiltinSamples(n int) []Sample {
	state := uint32(1)
	samples := make([]Sample, n)
	for i := range samples {
		for s := 0; s < config.SeqLen; s++ {
			for d := 0; d < config.ModelDim; d++ {
				state = state*1664525 + 1013904223
				samples[i].Input[s][d] = int8((state >> 24) - 128)
			}
		}
	}
	return samples
}

// ReadSamples consumes an exported sample set: a count byte, then per sample
// the 16x32 input grid row-major followed by one label byte.
func ReadSamples(r io.Reader) ([]Sample, error) {
	var count [1]byte
	if _, err := io.ReadFull(r, count[:]); err != nil {
		return nil, fmt.Errorf("sample set header: %w", err)
	}
	samples := make([]Sample, count[0])
	buf := make([]byte, sampleBytes)
	for i := range samples {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		off := 0
		for s := 0; s < config.SeqLen; s++ {
			for d := 0; d < config.ModelDim; d++ {
				samples[i].Input[s][d] = int8(buf[off])
				off++
			}
		}
		samples[i].Label = buf[off]
	}
	return samples, nil
}

// Inputs strips labels, for callers that only need the tensors.
func Inputs(samples []Sample) []encoder.Tensor {
	in := make([]encoder.Tensor, len(samples))
	for i := range samples {
		in[i] = samples[i].Input
	}
	return in
}

// Classifier is the int8 linear head applied to the pooled encoder output.
type Classifier struct {
	W []int8 // [NumClasses][D] row-major
	B []int8 // [NumClasses]
}

func PlaceholderClassifier() *Classifier {
	return &Classifier{
		W: make([]int8, NumClasses*config.ModelDim),
		B: make([]int8, NumClasses),
	}
}

// ReadClassifier consumes an exported classifier blob: weights then biases.
func ReadClassifier(r io.Reader) (*Classifier, error) {
	buf := make([]byte, ClassifierBlobSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("classifier blob: %w", err)
	}
	c := PlaceholderClassifier()
	for i := range c.W {
		c.W[i] = int8(buf[i])
	}
	for i := range c.B {
		c.B[i] = int8(buf[len(c.W)+i])
	}
	return c, nil
}

// MeanPool averages each model dimension over the tokens, rounding half up,
// saturating into int8.
func MeanPool(t *encoder.Tensor) [config.ModelDim]int8 {
	var pooled [config.ModelDim]int8
	for d := 0; d < config.ModelDim; d++ {
		var acc int32
		for s := 0; s < config.SeqLen; s++ {
			acc += int32(t[s][d])
		}
		acc = (acc + config.SeqLen/2) / config.SeqLen
		switch {
		case acc > 127:
			pooled[d] = 127
		case acc < -128:
			pooled[d] = -128
		default:
			pooled[d] = int8(acc)
		}
	}
	return pooled
}

// Predict returns the argmax class over the raw int32 logits.
func (c *Classifier) Predict(pooled *[config.ModelDim]int8) (int, [NumClasses]int32) {
	var logits [NumClasses]int32
	for cl := 0; cl < NumClasses; cl++ {
		acc := int32(c.B[cl])
		row := c.W[cl*config.ModelDim:]
		for d := 0; d < config.ModelDim; d++ {
			acc += int32(row[d]) * int32(pooled[d])
		}
		logits[cl] = acc
	}
	best := 0
	for cl := 1; cl < NumClasses; cl++ {
		if logits[cl] > logits[best] {
			best = cl
		}
	}
	return best, logits
}

// Run encodes every sample and writes the report: the mode banner, then per
// sample the output checksum and the predicted vs expected class.
func Run(w io.Writer, enc *encoder.Encoder, cls *Classifier, mode string, samples []Sample) error {
	if _, err := fmt.Fprintf(w, "MODE: %s\n", mode); err != nil {
		return err
	}
	var out encoder.Tensor
	for i := range samples {
		enc.Encode(&samples[i].Input, &out)

		if _, err := fmt.Fprintf(w, "ENC_CKSUM=0x%08X\n", encoder.Checksum(&out)); err != nil {
			return err
		}
		pooled := MeanPool(&out)
		pred, _ := cls.Predict(&pooled)
		if _, err := fmt.Fprintf(w, "Sample %d: pred=%d exp=%d\n", i, pred, samples[i].Label); err != nil {
			return err
		}
	}
	return nil
}
