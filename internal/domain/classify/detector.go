// Package classify infers the aircraft platform class of a telemetry frame
// from heuristic motor, flight-pattern, control-surface and speed summaries.
package classify

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/telemetry"
)

// motorColumns are the RPM columns considered for motor analysis, in a fixed
// order so active-motor counting is deterministic.
var motorColumns = []string{
	"motor_rpm", "motor_1_rpm", "motor_2_rpm", "motor_3_rpm",
	"motor_4_rpm", "motor_5_rpm", "motor_6_rpm",
}

const activeMotorRPM = 500

// Stats holds the feature summaries the detector scores against.
type Stats struct {
	ActiveMotors        int     `json:"active_motors"`
	MotorSymmetry       float64 `json:"motor_symmetry"`
	HoverRatio          float64 `json:"hover_ratio"`
	CruiseRatio         float64 `json:"cruise_ratio"`
	VerticalTransitions float64 `json:"vertical_transitions"`
	TransitionEvents    int     `json:"transition_events"`
	HasElevator         bool    `json:"has_elevator"`
	HasAileron          bool    `json:"has_aileron"`
	HasRudder           bool    `json:"has_rudder"`
	HasThrottle         bool    `json:"has_throttle"`
	AvgSpeed            float64 `json:"avg_speed"`
	MaxSpeed            float64 `json:"max_speed"`
	SpeedVariance       float64 `json:"speed_variance"`
}

// Result is the detector's classification of a frame.
type Result struct {
	Class      aircraft.Class `json:"class"`
	Confidence float64        `json:"confidence"`
	Scores     map[string]float64
	Stats      Stats
}

// Detector assigns an aircraft class and confidence to a frame.
type Detector struct {
	confidenceThreshold float64
}

// NewDetector builds a detector. Scores below threshold classify as Unknown,
// reporting the raw winning score as confidence.
func NewDetector(confidenceThreshold float64) *Detector {
	return &Detector{confidenceThreshold: confidenceThreshold}
}

// Detect classifies a frame. It never panics out of the component: any
// internal failure degrades to (Unknown, 0).
func (d *Detector) Detect(frame *telemetry.Frame) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Class detection failed, degrading to unknown")
			result = Result{Class: aircraft.Unknown, Confidence: 0}
		}
	}()

	if frame == nil || frame.Len() == 0 {
		return Result{Class: aircraft.Unknown, Confidence: 0}
	}

	stats := summarize(frame)
	scores := map[string]float64{
		aircraft.FixedWing.String():  scoreFixedWing(stats),
		aircraft.Multirotor.String(): scoreMultirotor(stats),
		aircraft.VTOL.String():       scoreVTOL(stats),
	}

	// Tie-break order on exact ties: FixedWing > Multirotor > VTOL.
	best := aircraft.FixedWing
	bestScore := scores[aircraft.FixedWing.String()]
	for _, c := range []aircraft.Class{aircraft.Multirotor, aircraft.VTOL} {
		if s := scores[c.String()]; s > bestScore {
			best, bestScore = c, s
		}
	}

	class := best
	if bestScore < d.confidenceThreshold {
		class = aircraft.Unknown
	}

	log.Debug().
		Str("class", class.String()).
		Float64("confidence", bestScore).
		Int("active_motors", stats.ActiveMotors).
		Float64("hover_ratio", stats.HoverRatio).
		Float64("cruise_ratio", stats.CruiseRatio).
		Msg("Aircraft class detected")

	return Result{Class: class, Confidence: bestScore, Scores: scores, Stats: stats}
}

func summarize(frame *telemetry.Frame) Stats {
	var s Stats

	// Motor analysis.
	var activeMeans []float64
	for _, col := range motorColumns {
		if !frame.Has(col) {
			continue
		}
		if mean := frame.Mean(col); mean > activeMotorRPM {
			s.ActiveMotors++
			activeMeans = append(activeMeans, mean)
		}
	}
	s.MotorSymmetry = symmetry(activeMeans)

	// Flight-pattern analysis. The detector prefers the generic speed column
	// and falls back to airspeed, then ground speed, so fixed-wing logs that
	// carry only pitot data still pattern-match.
	speed := resolveSpeedColumn(frame)
	altDiff := frame.Diff("altitude")
	altRoll := frame.RollingStd("altitude", 10)
	speeds := frame.Get(speed)

	n := frame.Len()
	hover, cruise, vertical := 0, 0, 0
	for i := 0; i < n; i++ {
		if speeds[i] < 2 && math.Abs(altDiff[i]) < 2 {
			hover++
		}
		if speeds[i] > 10 && altRoll[i] < 5 {
			cruise++
		}
		if math.Abs(altDiff[i]) > 5 {
			vertical++
		}
	}
	s.HoverRatio = float64(hover) / float64(n)
	s.CruiseRatio = float64(cruise) / float64(n)
	s.VerticalTransitions = float64(vertical) / float64(n)

	alts := frame.Get("altitude")
	for i := 10; i < n-5; i++ {
		if math.Abs(alts[i+5]-alts[i]) > 20 && math.Abs(speeds[i+5]-speeds[i]) > 5 {
			s.TransitionEvents++
		}
	}

	// Control-surface detection.
	s.HasElevator = surfaceActive(frame, "elevator")
	s.HasAileron = surfaceActive(frame, "aileron")
	s.HasRudder = surfaceActive(frame, "rudder")
	s.HasThrottle = surfaceActive(frame, "throttle")

	// Speed analysis.
	s.AvgSpeed = frame.Mean(speed)
	s.MaxSpeed = frame.Max(speed)
	s.SpeedVariance = frame.Var(speed)

	return s
}

func resolveSpeedColumn(frame *telemetry.Frame) string {
	for _, col := range []string{"speed", "airspeed", "ground_speed"} {
		if frame.Has(col) {
			return col
		}
	}
	return "speed"
}

func surfaceActive(frame *telemetry.Frame, surface string) bool {
	for _, col := range []string{surface + "_position", surface} {
		if frame.Has(col) {
			return frame.Var(col) > 1.0
		}
	}
	return false
}

// symmetry is 1 for perfectly matched motors, degrading toward 0 as per-motor
// mean RPM diverges. Fewer than two active motors yields 0.
func symmetry(means []float64) float64 {
	if len(means) < 2 {
		return 0
	}
	sum := 0.0
	for _, m := range means {
		sum += m
	}
	mean := sum / float64(len(means))
	if mean == 0 {
		return 0
	}
	ss := 0.0
	for _, m := range means {
		d := m - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(means)))
	return math.Max(0, 1-std/mean)
}

func scoreFixedWing(s Stats) float64 {
	score := 0.0
	if s.ActiveMotors == 1 {
		score += 0.3
	}
	if s.HasElevator || s.HasAileron {
		score += 0.2
	}
	if s.CruiseRatio > 0.6 {
		score += 0.2
	}
	if s.AvgSpeed > 15 {
		score += 0.2
	}
	if s.VerticalTransitions < 0.2 {
		score += 0.1
	}
	return math.Min(1.0, score)
}

func scoreMultirotor(s Stats) float64 {
	score := 0.0
	if s.ActiveMotors >= 4 {
		score += 0.3
	}
	if s.HoverRatio > 0.3 {
		score += 0.2
	}
	if s.VerticalTransitions > 0.4 {
		score += 0.2
	}
	if s.AvgSpeed < 15 {
		score += 0.1
	}
	if s.MotorSymmetry > 0.7 {
		score += 0.2
	}
	return math.Min(1.0, score)
}

func scoreVTOL(s Stats) float64 {
	score := 0.0
	if s.ActiveMotors >= 5 {
		score += 0.2
	}
	if s.HoverRatio > 0.2 && s.CruiseRatio > 0.3 {
		score += 0.3
	}
	if s.HasElevator && s.ActiveMotors >= 4 {
		score += 0.2
	}
	if s.TransitionEvents > 0 {
		score += 0.3
	}
	return math.Min(1.0, score)
}
