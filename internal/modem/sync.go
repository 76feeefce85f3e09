package modem

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// SyncMetrics returns the correlation magnitude |Σ y[τ+m]·conj(ref[m])| for
// every offset τ at which ref fits entirely inside y.
// Useful for debugging and visualization.
func SyncMetrics(y, ref []complex128) ([]float64, error) {
	if len(ref) == 0 {
		return nil, fmt.Errorf("%w: empty reference", ErrShortInput)
	}
	if len(y) < len(ref) {
		return nil, fmt.Errorf("%w: %d samples, reference has %d", ErrShortInput, len(y), len(ref))
	}

	conjRef := make([]complex128, len(ref))
	for i, v := range ref {
		conjRef[i] = cmplx.Conj(v)
	}

	metrics := make([]float64, len(y)-len(ref)+1)
	for tau := range metrics {
		var acc complex128
		window := y[tau : tau+len(ref)]
		for m, r := range conjRef {
			acc += window[m] * r
		}
		metrics[tau] = cmplx.Abs(acc)
	}
	return metrics, nil
}

// Synchronize returns the offset at which ref best matches y. There is no
// detection threshold: the global maximum is returned even when y holds no
// copy of ref. The earliest offset wins a tie.
func Synchronize(y, ref []complex128) (int, error) {
	metrics, err := SyncMetrics(y, ref)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(metrics), nil
}
