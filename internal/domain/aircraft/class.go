// Package aircraft defines the platform classes the analyzer distinguishes,
// their static signatures, and the per-class feature schemas consumed by the
// anomaly models.
package aircraft

// Class identifies the aircraft platform type inferred from a flight log.
// It is assigned once per analysis and immutable thereafter.
type Class int

const (
	Unknown Class = iota
	FixedWing
	Multirotor
	VTOL
)

// Concrete returns the classes that carry a trained anomaly model.
func Concrete() []Class {
	return []Class{FixedWing, Multirotor, VTOL}
}

func (c Class) String() string {
	switch c {
	case FixedWing:
		return "fixed_wing"
	case Multirotor:
		return "multirotor"
	case VTOL:
		return "vtol"
	default:
		return "unknown"
	}
}

// IsConcrete reports whether the class has its own model and rule set.
func (c Class) IsConcrete() bool {
	return c == FixedWing || c == Multirotor || c == VTOL
}

// ModelClass returns the class whose model scores this class's frames.
// Unknown falls back to the Multirotor model; the fallback is explicit here
// rather than hidden in a map lookup default.
func (c Class) ModelClass() Class {
	if !c.IsConcrete() {
		return Multirotor
	}
	return c
}
