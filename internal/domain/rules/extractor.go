package rules

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/telemetry"
)

// Extractor selects high-probability rows and describes them with the class
// rule set.
type Extractor struct {
	eventThreshold float64 // probability above which a row becomes an event
	criticalCutoff float64 // probability above which severity is CRITICAL
	sampleRateHz   float64
}

// NewExtractor builds an extractor with the given probability thresholds.
// Both thresholds live here and nowhere else; severity and selection always
// agree.
func NewExtractor(eventThreshold, criticalCutoff, sampleRateHz float64) *Extractor {
	return &Extractor{
		eventThreshold: eventThreshold,
		criticalCutoff: criticalCutoff,
		sampleRateHz:   sampleRateHz,
	}
}

// Extract builds the full, untruncated event list ordered by descending risk
// score. Rows with equal probability keep their original order. Never panics
// out of the component: failures degrade to an empty list.
func (e *Extractor) Extract(frame *telemetry.Frame, predictions []float64, class aircraft.Class) (events []Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("class", class.String()).
				Msg("Event extraction failed, returning no events")
			events = nil
		}
	}()

	if frame == nil || len(predictions) == 0 {
		return nil
	}

	timestamps := frame.Timestamps()
	for i, p := range predictions {
		if p <= e.eventThreshold {
			continue
		}

		description := describeRow(frame, i, class)
		if description == "" {
			description = DefaultDescription
		}

		severity := SeverityWarning
		if p > e.criticalCutoff {
			severity = SeverityCritical
		}

		ts := float64(i) / e.sampleRateHz
		if timestamps != nil && i < len(timestamps) {
			ts = timestamps[i]
		}

		events = append(events, Event{
			Index:            i,
			Timestamp:        ts,
			RiskScore:        p,
			Severity:         severity,
			Description:      description,
			AircraftSpecific: true,
			AircraftClass:    class,
			AircraftType:     class.String(),
		})
	}

	sort.SliceStable(events, func(a, b int) bool {
		return events[a].RiskScore > events[b].RiskScore
	})

	if len(events) > 0 {
		log.Debug().Int("events", len(events)).Str("class", class.String()).
			Float64("top_risk", events[0].RiskScore).
			Msg("Anomaly events extracted")
	}
	return events
}
