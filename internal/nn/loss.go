package nn

import "fmt"

// MSE computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
func MSE(predictions, targets []float64) (float64, error) {
	if len(predictions) != len(targets) {
		return 0, fmt.Errorf("%w: %d predictions vs %d targets", ErrShape, len(predictions), len(targets))
	}
	if len(predictions) == 0 {
		return 0, nil
	}
	var sum float64
	for i, p := range predictions {
		d := p - targets[i]
		sum += d * d
	}
	return sum / float64(len(predictions)), nil
}

// MSEGrad writes the gradient of MSE with respect to predictions into grad:
// 2 * (predictions - targets) / n.
func MSEGrad(grad, predictions, targets []float64) {
	n := float64(len(predictions))
	for i, p := range predictions {
		grad[i] = 2 * (p - targets[i]) / n
	}
}
