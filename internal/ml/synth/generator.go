// Package synth generates deterministic labeled training frames per aircraft
// class. Each column draws from a fixed distribution family; the anomaly
// subset over-samples distribution tails and concrete failure modes. The
// parameter tables below are versioned with the release: changing them
// changes every trained model.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/telemetry"
)

// AnomalyShare is the labeled-anomaly fraction of every generated set.
const AnomalyShare = 0.2

// MinSize is the smallest accepted training-set size.
const MinSize = 10

// Generator produces labeled synthetic telemetry. The seed is injected at
// construction so reproducibility never depends on global random state.
type Generator struct {
	seed uint64
}

func NewGenerator(seed int64) *Generator {
	return &Generator{seed: uint64(seed)}
}

type sampler interface{ Rand() float64 }

// clipped bounds a sampler below. Used for quantities that cannot go
// negative (speeds, RPM, voltages).
type clipped struct {
	s   sampler
	min float64
}

func (c clipped) Rand() float64 { return math.Max(c.min, c.s.Rand()) }

// signFlip negates the sample half the time.
type signFlip struct {
	s    sampler
	coin sampler
}

func (s signFlip) Rand() float64 {
	v := s.s.Rand()
	if s.coin.Rand() < 0.5 {
		return -v
	}
	return v
}

// failureMode overwrites a subset of features on an anomaly row. Overrides
// are ordered so the random source is consumed deterministically.
type failureMode struct {
	name      string
	overrides []override
}

type override struct {
	column string
	s      sampler
}

// Generate produces a features frame and parallel 0/1 labels for the class.
// The first size*(1-AnomalyShare) rows are normal, the remainder anomalous.
// The same seed always produces the same frame.
func (g *Generator) Generate(class aircraft.Class, size int) (*telemetry.Frame, []float64, error) {
	if size < MinSize {
		return nil, nil, fmt.Errorf("training set size %d below minimum %d", size, MinSize)
	}
	if !class.IsConcrete() {
		return nil, nil, fmt.Errorf("no synthetic distribution for class %s", class)
	}

	src := rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15)
	normals, modes := tables(class, src)
	schema := aircraft.FeatureSchema(class)

	// Integer split; the anomaly block absorbs the remainder so lengths are
	// exact rather than relying on division behavior.
	normalRows := int(float64(size) * (1 - AnomalyShare))
	anomalyRows := size - normalRows

	columns := make(map[string][]float64, len(schema))
	for _, name := range schema {
		columns[name] = make([]float64, size)
	}

	// Draw row-major in schema order so the consumption order of the random
	// source is fixed.
	for i := 0; i < size; i++ {
		for _, name := range schema {
			columns[name][i] = normals[name].Rand()
		}
	}
	for k := 0; k < anomalyRows; k++ {
		i := normalRows + k
		mode := modes[k%len(modes)]
		for _, ov := range mode.overrides {
			if _, ok := columns[ov.column]; ok {
				columns[ov.column][i] = ov.s.Rand()
			}
		}
	}

	labels := make([]float64, size)
	for i := normalRows; i < size; i++ {
		labels[i] = 1
	}

	frame, err := telemetry.NewFrame(columns)
	if err != nil {
		return nil, nil, err
	}
	return frame, labels, nil
}

func tables(class aircraft.Class, src rand.Source) (map[string]sampler, []failureMode) {
	norm := func(mu, sigma float64) sampler { return distuv.Normal{Mu: mu, Sigma: sigma, Src: src} }
	normPos := func(mu, sigma float64) sampler { return clipped{norm(mu, sigma), 0} }
	uniform := func(lo, hi float64) sampler { return distuv.Uniform{Min: lo, Max: hi, Src: src} }
	gamma := func(alpha, beta float64) sampler { return distuv.Gamma{Alpha: alpha, Beta: beta, Src: src} }
	bern := func(p float64) sampler { return distuv.Bernoulli{P: p, Src: src} }
	flip := func(s sampler) sampler { return signFlip{s, uniform(0, 1)} }

	switch class {
	case aircraft.FixedWing:
		normals := map[string]sampler{
			"altitude":          normPos(200, 50),
			"battery_voltage":   normPos(12.6, 0.3),
			"motor_rpm":         normPos(2500, 300),
			"airspeed":          normPos(25, 4),
			"ground_speed":      normPos(24, 4),
			"throttle_position": uniform(30, 70),
			"elevator_position": norm(0, 5),
			"rudder_position":   norm(0, 4),
			"aileron_position":  norm(0, 5),
			"pitch_angle":       norm(2, 4),
			"roll_angle":        norm(0, 6),
			"yaw_rate":          norm(0, 3),
			"gps_hdop":          gamma(2, 2),
			"temperature":       norm(25, 5),
			"wind_speed":        gamma(2, 0.7),
			"angle_of_attack":   norm(5, 2),
		}
		modes := []failureMode{
			{"stall", []override{
				{"airspeed", normPos(9, 1.5)},
				{"angle_of_attack", normPos(25, 3)},
			}},
			{"engine_failure", []override{
				{"motor_rpm", normPos(250, 150)},
			}},
			{"overspeed", []override{
				{"airspeed", normPos(50, 3)},
				{"motor_rpm", normPos(8600, 300)},
			}},
			{"battery_critical", []override{
				{"battery_voltage", normPos(9.2, 0.4)},
			}},
			{"elevator_hardover", []override{
				{"elevator_position", flip(normPos(32, 4))},
			}},
		}
		return normals, modes

	case aircraft.VTOL:
		normals := map[string]sampler{
			"altitude":          normPos(120, 40),
			"battery_voltage":   normPos(22.4, 0.5),
			"motor_1_rpm":       normPos(2800, 150),
			"motor_2_rpm":       normPos(2800, 150),
			"motor_3_rpm":       normPos(2800, 150),
			"motor_4_rpm":       normPos(2800, 150),
			"motor_5_rpm":       normPos(4800, 250),
			"airspeed":          normPos(18, 6),
			"elevator_position": norm(0, 4),
			"aileron_position":  norm(0, 4),
			"gps_hdop":          gamma(2, 2),
			"vibration_x":       norm(0, 1),
			"vibration_y":       norm(0, 1),
			"vibration_z":       norm(0, 1),
			"vibration_w":       norm(0, 1),
			"temperature":       norm(28, 5),
			"transition_mode":   bern(0.15),
			"pitch_angle":       norm(0, 5),
			"roll_angle":        norm(0, 5),
		}
		modes := []failureMode{
			{"lift_motor_failure", []override{
				{"motor_2_rpm", normPos(120, 60)},
			}},
			{"forward_motor_failure", []override{
				{"motor_5_rpm", normPos(300, 200)},
				{"airspeed", normPos(25, 4)},
			}},
			{"unsafe_transition_slow", []override{
				{"transition_mode", distuv.Bernoulli{P: 1, Src: src}},
				{"airspeed", normPos(5, 1.5)},
			}},
			{"unsafe_transition_fast", []override{
				{"transition_mode", distuv.Bernoulli{P: 1, Src: src}},
				{"airspeed", normPos(40, 3)},
			}},
			{"battery_critical", []override{
				{"battery_voltage", normPos(13, 0.8)},
			}},
			{"vibration", []override{
				{"vibration_x", flip(normPos(6, 1.5))},
				{"vibration_y", flip(normPos(6, 1.5))},
				{"vibration_z", flip(normPos(6, 1.5))},
				{"vibration_w", flip(normPos(6, 1.5))},
			}},
		}
		return normals, modes

	default: // Multirotor
		normals := map[string]sampler{
			"altitude":        normPos(50, 15),
			"battery_voltage": normPos(15.2, 0.4),
			"motor_1_rpm":     normPos(3000, 150),
			"motor_2_rpm":     normPos(3000, 150),
			"motor_3_rpm":     normPos(3000, 150),
			"motor_4_rpm":     normPos(3000, 150),
			"vibration_x":     norm(0, 0.8),
			"vibration_y":     norm(0, 0.8),
			"vibration_z":     norm(0, 0.8),
			"vibration_w":     norm(0, 0.8),
			"pitch_angle":     norm(0, 5),
			"roll_angle":      norm(0, 5),
			"speed":           gamma(2, 0.8),
			"temperature":     norm(30, 6),
			"gps_hdop":        gamma(2, 2.5),
		}
		modes := []failureMode{
			{"motor_failure", []override{
				{"motor_4_rpm", normPos(150, 80)},
			}},
			{"vibration", []override{
				{"vibration_x", flip(normPos(6, 1.5))},
				{"vibration_y", flip(normPos(6, 1.5))},
				{"vibration_z", flip(normPos(6, 1.5))},
				{"vibration_w", flip(normPos(6, 1.5))},
			}},
			{"extreme_attitude", []override{
				{"pitch_angle", flip(normPos(36, 4))},
				{"roll_angle", flip(normPos(36, 4))},
			}},
			{"battery_critical", []override{
				{"battery_voltage", normPos(9.8, 0.3)},
			}},
			{"motor_asymmetry", []override{
				{"motor_1_rpm", normPos(4300, 150)},
				{"motor_2_rpm", normPos(1700, 150)},
			}},
		}
		return normals, modes
	}
}
