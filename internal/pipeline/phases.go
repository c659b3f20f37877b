package pipeline

import (
	"math"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/telemetry"
)

// rowDurations returns per-row durations in seconds. Actual timestamp deltas
// are preferred when the log carries them; otherwise the configured sample
// rate applies uniformly.
func rowDurations(frame *telemetry.Frame, sampleRateHz float64) []float64 {
	n := frame.Len()
	dt := make([]float64, n)
	fallback := 1.0 / sampleRateHz

	ts := frame.Timestamps()
	if ts == nil {
		for i := range dt {
			dt[i] = fallback
		}
		return dt
	}
	for i := range dt {
		if i == 0 {
			dt[i] = fallback
			continue
		}
		d := ts[i] - ts[i-1]
		if d <= 0 || math.IsNaN(d) {
			d = fallback
		}
		dt[i] = d
	}
	return dt
}

// phaseStats computes per-class flight-phase durations.
func phaseStats(frame *telemetry.Frame, class aircraft.Class, sampleRateHz float64) map[string]float64 {
	if frame == nil || frame.Len() == 0 {
		return map[string]float64{}
	}
	dt := rowDurations(frame, sampleRateHz)

	switch class {
	case aircraft.FixedWing:
		return fixedWingPhases(frame, dt)
	case aircraft.VTOL:
		phases := multirotorPhases(frame, dt)
		transition := 0.0
		modes := frame.Get("transition_mode")
		for i, m := range modes {
			if m == 1 {
				transition += dt[i]
			}
		}
		phases["transition_time"] = transition
		return phases
	default:
		return multirotorPhases(frame, dt)
	}
}

func fixedWingPhases(frame *telemetry.Frame, dt []float64) map[string]float64 {
	altDiff := frame.Diff("altitude")
	altRoll := frame.RollingStd("altitude", 20)
	airspeed := frame.Get("airspeed")

	takeoff, cruise, approach := 0.0, 0.0, 0.0
	for i := range dt {
		if altDiff[i] > 1 && airspeed[i] > 15 {
			takeoff += dt[i]
		}
		if altRoll[i] < 3 && airspeed[i] > 20 {
			cruise += dt[i]
		}
		if altDiff[i] < -1 && airspeed[i] < 30 {
			approach += dt[i]
		}
	}
	return map[string]float64{
		"takeoff_duration_s":  takeoff,
		"cruise_duration_min": cruise / 60,
		"approach_duration_s": approach,
	}
}

func multirotorPhases(frame *telemetry.Frame, dt []float64) map[string]float64 {
	altDiff := frame.Diff("altitude")
	speed := frame.Get("speed")
	pitch := frame.Get("pitch_angle")
	roll := frame.Get("roll_angle")

	hover, forward, aggressive := 0.0, 0.0, 0.0
	for i := range dt {
		if speed[i] < 2 && math.Abs(altDiff[i]) < 2 {
			hover += dt[i]
		}
		if speed[i] > 5 {
			forward += dt[i]
		}
		if math.Abs(pitch[i]) > 15 || math.Abs(roll[i]) > 15 {
			aggressive += dt[i]
		}
	}
	return map[string]float64{
		"hover_time_s":           hover,
		"forward_flight_time_s":  forward,
		"aggressive_maneuvers_s": aggressive,
	}
}
