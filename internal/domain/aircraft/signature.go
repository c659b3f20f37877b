package aircraft

// Signature describes the static airframe characteristics of a class.
type Signature struct {
	Class                Class      `json:"class"`
	MotorCount           int        `json:"motor_count"`
	HasControlSurfaces   bool       `json:"has_control_surfaces"`
	VerticalTakeoff      bool       `json:"vertical_takeoff_capable"`
	CruiseSpeedRange     [2]float64 `json:"cruise_speed_range"`
	TypicalFlightPattern string     `json:"typical_flight_pattern"`
}

var signatures = map[Class]Signature{
	FixedWing: {
		Class:                FixedWing,
		MotorCount:           1,
		HasControlSurfaces:   true,
		VerticalTakeoff:      false,
		CruiseSpeedRange:     [2]float64{15, 45},
		TypicalFlightPattern: "sustained_cruise",
	},
	Multirotor: {
		Class:                Multirotor,
		MotorCount:           4,
		HasControlSurfaces:   false,
		VerticalTakeoff:      true,
		CruiseSpeedRange:     [2]float64{0, 15},
		TypicalFlightPattern: "hover_and_translate",
	},
	VTOL: {
		Class:                VTOL,
		MotorCount:           5,
		HasControlSurfaces:   true,
		VerticalTakeoff:      true,
		CruiseSpeedRange:     [2]float64{12, 35},
		TypicalFlightPattern: "hover_transition_cruise",
	},
}

// SignatureFor returns the static signature of a concrete class. Unknown
// returns the zero Signature and false.
func SignatureFor(c Class) (Signature, bool) {
	sig, ok := signatures[c]
	return sig, ok
}
