package modem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Scale normalizes x by its peak magnitude and multiplies by target, so the
// result peaks at exactly ±target. Signs and ratios are preserved.
func Scale(x []float64, target float64) ([]float64, error) {
	if len(x) == 0 {
		return []float64{}, nil
	}
	peak := floats.Norm(x, math.Inf(1))
	if peak == 0 {
		return nil, ErrSilence
	}
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return nil, fmt.Errorf("scale: invalid target amplitude %g", target)
	}

	out := make([]float64, len(x))
	for i, v := range x {
		// divide first: the peak sample becomes ±1 exactly
		out[i] = v / peak * target
	}
	return out, nil
}
