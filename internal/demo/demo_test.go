package demo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/YonatanGrobgeld/TinyML-algo/internal/backend"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/config"
	"github.com/YonatanGrobgeld/TinyML-algo/internal/encoder"
)

func TestBuiltinSamplesDeterministic(t *testing.T) {
	a := BuiltinSamples(3)
	b := BuiltinSamples(3)
	for i := range a {
		if a[i].Input != b[i].Input {
			t.Fatalf("sample %d differs between generations", i)
		}
	}
	// First byte of the stream: LCG state 1 -> top byte 60 -> 60-128 = -68.
	if a[0].Input[0][0] != -68 {
		t.Errorf("first sample element = %d, want -68", a[0].Input[0][0])
	}
}

func TestReadSamples(t *testing.T) {
	var blob bytes.Buffer
	blob.WriteByte(2)
	for i := 0; i < 2; i++ {
		grid := make([]byte, config.SeqLen*config.ModelDim)
		for j := range grid {
			grid[j] = byte(i + j)
		}
		blob.Write(grid)
		blob.WriteByte(byte(i + 3))
	}

	samples, err := ReadSamples(&blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0].Input[0][0] != 0 || samples[1].Input[0][0] != 1 {
		t.Errorf("sample heads = %d,%d, want 0,1",
			samples[0].Input[0][0], samples[1].Input[0][0])
	}
	if samples[0].Label != 3 || samples[1].Label != 4 {
		t.Errorf("labels = %d,%d, want 3,4", samples[0].Label, samples[1].Label)
	}
}

func TestReadSamplesTruncated(t *testing.T) {
	var blob bytes.Buffer
	blob.WriteByte(2)
	blob.Write(make([]byte, 100))
	if _, err := ReadSamples(&blob); err == nil {
		t.Fatal("expected error for truncated sample set")
	}
}

func TestMeanPoolRounding(t *testing.T) {
	var grid encoder.Tensor
	// Column 0: all 7s -> mean exactly 7. Column 1: single 8 over 16 tokens
	// -> (8+8)/16 = 1 with round-half-up. Column 2: all -1 -> (-16+8)/16 = 0
	// under truncating division toward zero.
	for s := 0; s < config.SeqLen; s++ {
		grid[s][0] = 7
		grid[s][2] = -1
	}
	grid[0][1] = 8

	pooled := MeanPool(&grid)
	if pooled[0] != 7 {
		t.Errorf("pooled[0] = %d, want 7", pooled[0])
	}
	if pooled[1] != 1 {
		t.Errorf("pooled[1] = %d, want 1", pooled[1])
	}
	if pooled[2] != 0 {
		t.Errorf("pooled[2] = %d, want 0", pooled[2])
	}
}

func TestPredictArgmax(t *testing.T) {
	cls := PlaceholderClassifier()
	// Class 4 gets positive weight on dimension 0, class 2 a bias bump.
	cls.W[4*config.ModelDim] = 5
	cls.B[2] = 3

	pooled := [config.ModelDim]int8{}
	pooled[0] = 10

	pred, logits := cls.Predict(&pooled)
	if pred != 4 {
		t.Fatalf("pred = %d, want 4 (logits %v)", pred, logits)
	}
	if logits[4] != 50 || logits[2] != 3 {
		t.Errorf("logits = %v, want logit[4]=50 logit[2]=3", logits)
	}
}

func TestPredictTieKeepsLowestClass(t *testing.T) {
	cls := PlaceholderClassifier()
	pooled := [config.ModelDim]int8{}
	pred, _ := cls.Predict(&pooled)
	if pred != 0 {
		t.Errorf("all-equal logits predict %d, want 0", pred)
	}
}

func TestRunReportFormat(t *testing.T) {
	enc, err := encoder.New(encoder.Placeholder(), backend.Reference())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	samples := []Sample{{}, {Label: 2}}
	if err := Run(&buf, enc, PlaceholderClassifier(), "BASELINE", samples); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"MODE: BASELINE",
		"ENC_CKSUM=0x00000000",
		"Sample 0: pred=0 exp=0",
		"ENC_CKSUM=0x00000000",
		"Sample 1: pred=0 exp=2",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
