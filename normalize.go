package songgraph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// NormalizationError is returned when a list of weights cannot be rescaled to
// sum to 1.
type NormalizationError struct {
	What   string
	Sum    float64
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalizing %s: %s (sum %v)", e.What, e.Reason, e.Sum)
}

// Normalize returns vals divided by their sum. An empty list normalizes to an
// empty list. Negative or non-finite entries, and a sum that is not strictly
// positive, are errors. vals is not modified.
func Normalize(what string, vals []float64) ([]float64, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	for i, v := range vals {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &NormalizationError{What: what, Reason: fmt.Sprintf("entry %d is %v", i, v)}
		}
	}
	sum := floats.Sum(vals)
	if !(sum > 0) || math.IsInf(sum, 0) {
		return nil, &NormalizationError{What: what, Sum: sum, Reason: "sum is not positive"}
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v / sum
	}
	return out, nil
}
