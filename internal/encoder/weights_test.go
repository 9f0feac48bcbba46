package encoder

import (
	"bytes"
	"testing"
)

func TestPlaceholderShapes(t *testing.T) {
	if err := Placeholder().Validate(); err != nil {
		t.Fatalf("placeholder weights invalid: %v", err)
	}
}

func TestReadWeights(t *testing.T) {
	blob := make([]byte, BlobSize)
	for i := range blob {
		blob[i] = byte(i)
	}
	w, err := ReadWeights(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("ReadWeights: %v", err)
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("loaded weights invalid: %v", err)
	}
	// First matrix starts at blob offset zero.
	if w.Wq[0] != 0 || w.Wq[1] != 1 {
		t.Errorf("Wq head = %d,%d, want 0,1", w.Wq[0], w.Wq[1])
	}
	// Bytes reinterpret as signed.
	if w.Wq[255] != -1 {
		t.Errorf("Wq[255] = %d, want -1", w.Wq[255])
	}
}

func TestReadWeightsShort(t *testing.T) {
	_, err := ReadWeights(bytes.NewReader(make([]byte, BlobSize-1)))
	if err == nil {
		t.Fatal("expected error for truncated blob")
	}
}

func TestReadWeightsTrailing(t *testing.T) {
	_, err := ReadWeights(bytes.NewReader(make([]byte, BlobSize+1)))
	if err == nil {
		t.Fatal("expected error for oversized blob")
	}
}

func TestValidateCatchesBadShape(t *testing.T) {
	w := Placeholder()
	w.Wff1 = w.Wff1[:100]
	if err := w.Validate(); err == nil {
		t.Fatal("expected shape error for truncated Wff1")
	}
}
