// Package rules turns per-sample anomaly probabilities into ranked anomaly
// events, describing each flagged row with the class-specific rule set.
package rules

import (
	"math"
	"strings"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/telemetry"
)

// Severity grades an anomaly event.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

// DefaultDescription is used when no class rule matches a flagged row.
const DefaultDescription = "Flight parameter anomaly detected"

// Event is a row-level anomaly with a human-readable description.
type Event struct {
	Index            int            `json:"index"`
	Timestamp        float64        `json:"timestamp"`
	RiskScore        float64        `json:"risk_score"`
	Severity         Severity       `json:"severity"`
	Description      string         `json:"description"`
	AircraftSpecific bool           `json:"aircraft_specific"`
	AircraftClass    aircraft.Class `json:"-"`
	AircraftType     string         `json:"aircraft_class"`
}

// describeRow runs the class rule set over one sample and joins the matching
// fragments with semicolons. Empty when nothing fires.
func describeRow(frame *telemetry.Frame, i int, class aircraft.Class) string {
	var fragments []string
	switch class {
	case aircraft.FixedWing:
		fragments = fixedWingRules(frame, i)
	case aircraft.VTOL:
		fragments = vtolRules(frame, i)
	default:
		// Unknown frames are scored by the multirotor model and described by
		// its rules.
		fragments = multirotorRules(frame, i)
	}
	return strings.Join(fragments, "; ")
}

func fixedWingRules(f *telemetry.Frame, i int) []string {
	var out []string
	if airspeed := f.At("airspeed", i); airspeed < 12 {
		out = append(out, "CRITICAL: Airspeed below stall speed")
	} else if airspeed > 45 {
		out = append(out, "WARNING: Airspeed exceeds safe limits")
	}
	if rpm := f.At("motor_rpm", i); rpm < 1000 {
		out = append(out, "CRITICAL: Engine failure or shutdown")
	} else if rpm > 8000 {
		out = append(out, "WARNING: Engine overspeed")
	}
	if math.Abs(f.At("elevator_position", i)) > 25 {
		out = append(out, "WARNING: Extreme elevator deflection")
	}
	if f.At("angle_of_attack", i) > 20 {
		out = append(out, "CRITICAL: High angle of attack - stall risk")
	}
	if f.At("battery_voltage", i) < 10 {
		out = append(out, "CRITICAL: Battery voltage critically low")
	}
	return out
}

func multirotorRules(f *telemetry.Frame, i int) []string {
	var out []string

	var active []float64
	for _, col := range []string{
		"motor_1_rpm", "motor_2_rpm", "motor_3_rpm",
		"motor_4_rpm", "motor_5_rpm", "motor_6_rpm",
	} {
		if rpm := f.At(col, i); rpm > 500 {
			active = append(active, rpm)
		}
	}
	if len(active) < 4 {
		out = append(out, "CRITICAL: Insufficient motors operational")
	}
	if rowStd(active) > 1000 {
		out = append(out, "WARNING: Severe motor RPM asymmetry")
	}

	if math.Abs(f.At("pitch_angle", i)) > 30 || math.Abs(f.At("roll_angle", i)) > 30 {
		out = append(out, "WARNING: Extreme aircraft attitude")
	}

	vib := math.Sqrt(
		f.At("vibration_x", i)*f.At("vibration_x", i) +
			f.At("vibration_y", i)*f.At("vibration_y", i) +
			f.At("vibration_z", i)*f.At("vibration_z", i) +
			f.At("vibration_w", i)*f.At("vibration_w", i))
	if vib > 10 {
		out = append(out, "WARNING: Excessive vibration detected")
	}

	if f.At("battery_voltage", i) < 10.5 {
		out = append(out, "CRITICAL: Battery voltage critically low")
	}
	return out
}

func vtolRules(f *telemetry.Frame, i int) []string {
	var out []string

	lift := 0
	for _, col := range []string{"motor_1_rpm", "motor_2_rpm", "motor_3_rpm", "motor_4_rpm"} {
		if f.At(col, i) > 500 {
			lift++
		}
	}
	if lift < 4 {
		out = append(out, "CRITICAL: Lift motor failure - vertical flight compromised")
	}

	airspeed := f.At("airspeed", i)
	if airspeed > 15 && f.At("motor_5_rpm", i) < 1000 {
		out = append(out, "CRITICAL: Forward motor failure during cruise flight")
	}

	if f.At("transition_mode", i) == 1 && (airspeed < 8 || airspeed > 35) {
		out = append(out, "WARNING: Unsafe transition airspeed")
	}
	return out
}

func rowStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	ss := 0.0
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}
