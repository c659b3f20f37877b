// Package csvframe decodes normalized CSV telemetry logs into telemetry
// frames. Headers are lowercased snake_case column names; blank or
// unparseable cells are treated as missing and filled forward then backward.
package csvframe

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/avlogix/flightscope/internal/telemetry"
)

const timestampColumn = "timestamp"

// ReadFile parses the CSV log at path into a frame.
func ReadFile(path string) (*telemetry.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer fh.Close()
	return Read(fh)
}

// Read parses a CSV telemetry log from r into a frame.
func Read(r io.Reader) (*telemetry.Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = normalize(h)
	}

	raw := make([][]float64, len(names))
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		for i := range names {
			v := math.NaN()
			if i < len(rec) {
				if parsed, perr := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); perr == nil {
					v = parsed
				}
			}
			raw[i] = append(raw[i], v)
		}
	}

	columns := make(map[string][]float64, len(names))
	var timestamps []float64
	for i, name := range names {
		filled := telemetry.FillForwardBackward(raw[i])
		if name == timestampColumn {
			timestamps = filled
			continue
		}
		columns[name] = filled
	}

	frame, err := telemetry.NewFrame(columns)
	if err != nil {
		return nil, err
	}
	if timestamps != nil {
		if err := frame.SetTimestamps(timestamps); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func normalize(header string) string {
	name := strings.ToLower(strings.TrimSpace(header))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}
