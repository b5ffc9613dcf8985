package songgraph_test

import (
	"math"
	"testing"

	"github.com/pilosa/songgraph"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		vals []float64
		exp  []float64
	}{
		{vals: []float64{2, 1, 1}, exp: []float64{0.5, 0.25, 0.25}},
		{vals: []float64{3}, exp: []float64{1}},
		{vals: []float64{0, 4}, exp: []float64{0, 1}},
		{vals: []float64{0.9, 0.6, 0.3, 0.2}, exp: []float64{0.45, 0.3, 0.15, 0.1}},
	}
	for i, test := range tests {
		in := append([]float64(nil), test.vals...)
		got, err := songgraph.Normalize("test", in)
		if err != nil {
			t.Fatalf("test %d: %v", i, err)
		}
		if len(got) != len(test.exp) {
			t.Fatalf("test %d: expected %v, got %v", i, test.exp, got)
		}
		sum := 0.0
		for j := range got {
			if math.Abs(got[j]-test.exp[j]) > 1e-12 {
				t.Fatalf("test %d: expected %v, got %v", i, test.exp, got)
			}
			sum += got[j]
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("test %d: normalized values sum to %v", i, sum)
		}
		for j := range in {
			if in[j] != test.vals[j] {
				t.Fatalf("test %d: input modified", i)
			}
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	got, err := songgraph.Normalize("test", nil)
	if err != nil {
		t.Fatalf("normalizing empty list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected nothing, got %v", got)
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := [][]float64{
		{0, 0, 0},
		{1, -1},
		{math.NaN(), 1},
		{math.Inf(1), 1},
		{math.MaxFloat64, math.MaxFloat64},
	}
	for i, vals := range tests {
		_, err := songgraph.Normalize("weights", vals)
		if err == nil {
			t.Fatalf("test %d: expected error normalizing %v", i, vals)
		}
		if _, ok := err.(*songgraph.NormalizationError); !ok {
			t.Fatalf("test %d: expected *NormalizationError, got %T", i, err)
		}
	}
}
