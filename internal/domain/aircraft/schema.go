package aircraft

// Feature schemas are ordered: the trained model's column order must match
// inference exactly, so these slices are never reordered between releases.
var (
	fixedWingFeatures = []string{
		"altitude", "battery_voltage", "motor_rpm", "airspeed", "ground_speed",
		"throttle_position", "elevator_position", "rudder_position",
		"aileron_position", "pitch_angle", "roll_angle", "yaw_rate",
		"gps_hdop", "temperature", "wind_speed", "angle_of_attack",
	}

	multirotorFeatures = []string{
		"altitude", "battery_voltage", "motor_1_rpm", "motor_2_rpm",
		"motor_3_rpm", "motor_4_rpm", "vibration_x", "vibration_y",
		"vibration_z", "vibration_w", "pitch_angle", "roll_angle", "speed",
		"temperature", "gps_hdop",
	}

	vtolFeatures = []string{
		"altitude", "battery_voltage", "motor_1_rpm", "motor_2_rpm",
		"motor_3_rpm", "motor_4_rpm", "motor_5_rpm", "airspeed",
		"elevator_position", "aileron_position", "gps_hdop", "vibration_x",
		"vibration_y", "vibration_z", "vibration_w", "temperature",
		"transition_mode", "pitch_angle", "roll_angle",
	}
)

// FeatureSchema returns the ordered feature list for the class's anomaly
// model. Unknown shares the Multirotor schema (fallback model).
func FeatureSchema(c Class) []string {
	var src []string
	switch c {
	case FixedWing:
		src = fixedWingFeatures
	case VTOL:
		src = vtolFeatures
	default:
		src = multirotorFeatures
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
