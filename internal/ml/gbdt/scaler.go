package gbdt

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers and scales features column-wise. Constant columns
// scale by 1 so transformed values stay finite.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// Fit learns per-column mean and standard deviation from a row-major matrix.
func (s *StandardScaler) Fit(x [][]float64) error {
	if len(x) == 0 {
		return fmt.Errorf("scaler: empty training matrix")
	}
	dims := len(x[0])
	s.Means = make([]float64, dims)
	s.Stds = make([]float64, dims)

	col := make([]float64, len(x))
	for j := 0; j < dims; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || std != std {
			std = 1
		}
		s.Means[j] = mean
		s.Stds[j] = std
	}
	return nil
}

// Transform returns a scaled copy of the matrix.
func (s *StandardScaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.TransformRow(row)
	}
	return out
}

// TransformRow scales a single sample.
func (s *StandardScaler) TransformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		if j < len(s.Means) {
			out[j] = (v - s.Means[j]) / s.Stds[j]
		} else {
			out[j] = v
		}
	}
	return out
}

// Fitted reports whether Fit has run.
func (s *StandardScaler) Fitted() bool { return len(s.Means) > 0 }
