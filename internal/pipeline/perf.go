package pipeline

import (
	"math"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/telemetry"
)

// perfMetrics computes the per-class performance summary bag.
func perfMetrics(frame *telemetry.Frame, class aircraft.Class) map[string]interface{} {
	if frame == nil || frame.Len() == 0 {
		return map[string]interface{}{}
	}

	switch class {
	case aircraft.FixedWing:
		engine := "Normal"
		if frame.Mean("motor_rpm") <= 1000 {
			engine = "Below Normal"
		}
		return map[string]interface{}{
			"average_airspeed":    frame.Mean("airspeed"),
			"max_airspeed":        frame.Max("airspeed"),
			"engine_performance":  engine,
			"average_throttle":    frame.Mean("throttle_position"),
			"battery_consumption": batteryConsumption(frame),
		}
	case aircraft.VTOL:
		m := multirotorPerf(frame)
		m["transition_efficiency"] = transitionEfficiency(frame)
		return m
	default:
		return multirotorPerf(frame)
	}
}

func multirotorPerf(frame *telemetry.Frame) map[string]interface{} {
	var motorMeans []float64
	for _, col := range []string{"motor_1_rpm", "motor_2_rpm", "motor_3_rpm", "motor_4_rpm"} {
		if frame.Has(col) {
			motorMeans = append(motorMeans, frame.Mean(col))
		}
	}

	vib := 0.0
	n := frame.Len()
	for i := 0; i < n; i++ {
		vib += math.Sqrt(
			frame.At("vibration_x", i)*frame.At("vibration_x", i) +
				frame.At("vibration_y", i)*frame.At("vibration_y", i) +
				frame.At("vibration_z", i)*frame.At("vibration_z", i) +
				frame.At("vibration_w", i)*frame.At("vibration_w", i))
	}

	return map[string]interface{}{
		"motor_symmetry":      meanSymmetry(motorMeans),
		"battery_consumption": batteryConsumption(frame),
		"average_vibration":   vib / float64(n),
	}
}

// batteryConsumption is the voltage sag from the start to the end of the log.
func batteryConsumption(frame *telemetry.Frame) float64 {
	n := frame.Len()
	if !frame.Has("battery_voltage") || n == 0 {
		return 0
	}
	sag := frame.At("battery_voltage", 0) - frame.At("battery_voltage", n-1)
	return math.Max(0, sag)
}

// transitionEfficiency is the share of the flight spent out of transition; a
// VTOL that lingers mid-transition scores low.
func transitionEfficiency(frame *telemetry.Frame) float64 {
	n := frame.Len()
	inTransition := frame.CountWhere("transition_mode", func(v float64) bool { return v == 1 })
	return 1 - float64(inTransition)/float64(n)
}

func meanSymmetry(means []float64) float64 {
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
	return math.Max(0, 1-math.Sqrt(ss/float64(len(means)))/mean)
}
