package telemetry

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Frame is an in-memory columnar table of flight telemetry samples. Columns
// are keyed by lowercase snake_case names and share a single length. Missing
// columns read as zeros; reductions skip non-finite values.
type Frame struct {
	columns    map[string][]float64
	length     int
	timestamps []float64 // seconds, optional; nil when the log carries none
}

// NewFrame builds a frame from named columns. All columns must have the same
// length.
func NewFrame(columns map[string][]float64) (*Frame, error) {
	f := &Frame{columns: make(map[string][]float64, len(columns))}
	for name, col := range columns {
		if f.length == 0 {
			f.length = len(col)
		}
		if len(col) != f.length {
			return nil, fmt.Errorf("column %s has %d samples, expected %d", name, len(col), f.length)
		}
		f.columns[name] = col
	}
	return f, nil
}

// SetTimestamps attaches a timestamp column (seconds since log start).
// Phase-duration computations prefer actual deltas over the assumed 10 Hz
// sample rate when timestamps are present.
func (f *Frame) SetTimestamps(ts []float64) error {
	if len(ts) != f.length {
		return fmt.Errorf("timestamp column has %d samples, expected %d", len(ts), f.length)
	}
	f.timestamps = ts
	return nil
}

// Timestamps returns the attached timestamp column, or nil.
func (f *Frame) Timestamps() []float64 { return f.timestamps }

// Len returns the number of samples.
func (f *Frame) Len() int { return f.length }

// Has reports whether the named column is present.
func (f *Frame) Has(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Columns returns the names of all present columns.
func (f *Frame) Columns() []string {
	names := make([]string, 0, len(f.columns))
	for name := range f.columns {
		names = append(names, name)
	}
	return names
}

// Get returns the named column, or a zero-filled sequence of the frame's
// length when absent. Never fails.
func (f *Frame) Get(name string) []float64 {
	if col, ok := f.columns[name]; ok {
		return col
	}
	return make([]float64, f.length)
}

// At returns the value of the named column at row i, or 0 when the column is
// absent or i is out of range.
func (f *Frame) At(name string, i int) float64 {
	col, ok := f.columns[name]
	if !ok || i < 0 || i >= len(col) {
		return 0
	}
	return col[i]
}

// Diff returns the first difference of the named column with a leading zero.
func (f *Frame) Diff(name string) []float64 {
	col := f.Get(name)
	out := make([]float64, len(col))
	for i := 1; i < len(col); i++ {
		out[i] = col[i] - col[i-1]
	}
	return out
}

// RollingStd returns the trailing-window standard deviation of the named
// column. Entries with fewer than window samples behind them are 0, not NaN.
func (f *Frame) RollingStd(name string, window int) []float64 {
	col := f.Get(name)
	out := make([]float64, len(col))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(col); i++ {
		out[i] = sampleStd(col[i-window+1 : i+1])
	}
	return out
}

// Mean returns the arithmetic mean of the column's finite values, 0 if none.
func (f *Frame) Mean(name string) float64 {
	return reduce(f.Get(name), stats.Mean)
}

// Max returns the maximum of the column's finite values, 0 if none.
func (f *Frame) Max(name string) float64 {
	return reduce(f.Get(name), stats.Max)
}

// Min returns the minimum of the column's finite values, 0 if none.
func (f *Frame) Min(name string) float64 {
	return reduce(f.Get(name), stats.Min)
}

// Var returns the population variance of the column's finite values, 0 if none.
func (f *Frame) Var(name string) float64 {
	return reduce(f.Get(name), stats.PopulationVariance)
}

// Std returns the population standard deviation of the column's finite
// values, 0 if none.
func (f *Frame) Std(name string) float64 {
	return reduce(f.Get(name), stats.StdDevP)
}

// CountWhere counts samples of the named column for which pred holds.
func (f *Frame) CountWhere(name string, pred func(float64) bool) int {
	count := 0
	for _, v := range f.Get(name) {
		if pred(v) {
			count++
		}
	}
	return count
}

// Project extracts the named columns in order as a row-major matrix, zero
// filling absent columns. Column order is load bearing for model inference.
func (f *Frame) Project(names []string) [][]float64 {
	cols := make([][]float64, len(names))
	for j, name := range names {
		cols[j] = f.Get(name)
	}
	rows := make([][]float64, f.length)
	for i := 0; i < f.length; i++ {
		row := make([]float64, len(names))
		for j := range names {
			row[j] = cols[j][i]
		}
		rows[i] = row
	}
	return rows
}

func reduce(col []float64, fn func(stats.Float64Data) (float64, error)) float64 {
	finite := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0
	}
	v, err := fn(finite)
	if err != nil {
		return 0
	}
	return v
}

func sampleStd(window []float64) float64 {
	n := 0
	sum := 0.0
	for _, v := range window {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	if n < 2 {
		return 0
	}
	mean := sum / float64(n)
	ss := 0.0
	for _, v := range window {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}

// FillForwardBackward replaces NaN entries by carrying the previous finite
// value forward, then the next finite value backward for a leading gap.
// Columns that are entirely NaN become zeros.
func FillForwardBackward(col []float64) []float64 {
	out := make([]float64, len(col))
	copy(out, col)
	last := math.NaN()
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = last
		} else {
			last = v
		}
	}
	next := math.NaN()
	for i := len(out) - 1; i >= 0; i-- {
		if math.IsNaN(out[i]) {
			out[i] = next
		} else {
			next = out[i]
		}
	}
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = 0
		}
	}
	return out
}
