package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Phase is the lifecycle phase of a platform touch.
type Phase uint8

const (
	PhaseBegan Phase = iota
	PhaseMoved
	PhaseStationary
	PhaseEnded
	PhaseCancelled
)

var phaseNames = [...]string{
	PhaseBegan:      "began",
	PhaseMoved:      "moved",
	PhaseStationary: "stationary",
	PhaseEnded:      "ended",
	PhaseCancelled:  "cancelled",
}

// String returns the lowercase phase name.
func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// ParsePhase converts a phase name into a Phase.
func ParsePhase(s string) (Phase, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return 0, ErrInvalidArgument.WithDetails("unknown touch phase " + s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// PhaseSet is a bitmask of accepted touch phases.
type PhaseSet uint8

// AllPhases accepts every touch phase.
const AllPhases PhaseSet = 1<<PhaseBegan | 1<<PhaseMoved | 1<<PhaseStationary | 1<<PhaseEnded | 1<<PhaseCancelled

// NewPhaseSet builds a set from phase names. An empty list accepts all phases.
func NewPhaseSet(names []string) (PhaseSet, error) {
	if len(names) == 0 {
		return AllPhases, nil
	}
	var set PhaseSet
	for _, n := range names {
		p, err := ParsePhase(n)
		if err != nil {
			return 0, err
		}
		set |= 1 << p
	}
	return set, nil
}

// Has reports whether p is accepted.
func (s PhaseSet) Has(p Phase) bool {
	return s&(1<<p) != 0
}

// Point is a position in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TouchSample is a single recorded touch. It is a value type and never
// mutated after creation.
type TouchSample struct {
	Position        Point     `json:"position"`
	Timestamp       time.Time `json:"timestamp"`
	Radius          float64   `json:"radius"`
	RadiusTolerance float64   `json:"radius_tolerance"`
	Phase           Phase     `json:"phase"`
}

// NewTouchSample creates a sample stamped with the current time.
func NewTouchSample(x, y, radius, tolerance float64, phase Phase) TouchSample {
	return TouchSample{
		Position:        Point{X: x, Y: y},
		Timestamp:       time.Now(),
		Radius:          radius,
		RadiusTolerance: tolerance,
		Phase:           phase,
	}
}

// Validate rejects samples whose coordinates cannot be placed on a grid.
func (s TouchSample) Validate() error {
	if math.IsNaN(s.Position.X) || math.IsNaN(s.Position.Y) ||
		math.IsInf(s.Position.X, 0) || math.IsInf(s.Position.Y, 0) {
		return ErrInvalidArgument.WithDetails("sample position must be finite")
	}
	if s.Radius < 0 || s.RadiusTolerance < 0 {
		return ErrInvalidArgument.WithDetails("sample radius must not be negative")
	}
	return nil
}
