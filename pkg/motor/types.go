package motor

import (
	"fmt"
	"strings"
)

// Position is an angular position in degrees.
type Position float64

// FromDegrees returns a position of the given number of degrees.
func FromDegrees(deg float64) Position { return Position(deg) }

// FromRotations returns a position of the given number of full rotations.
func FromRotations(rot float64) Position { return Position(rot * 360) }

// Degrees returns the position in degrees.
func (p Position) Degrees() float64 { return float64(p) }

// Rotations returns the position in full rotations.
func (p Position) Rotations() float64 { return float64(p) / 360 }

func (p Position) String() string { return fmt.Sprintf("%.2f°", float64(p)) }

// BrakeMode determines how a motor behaves when it is stopped.
type BrakeMode int

const (
	// Coast lets the motor spin down freely.
	Coast BrakeMode = iota
	// Brake shorts the motor windings to stop quickly.
	Brake
	// Hold actively holds the current position.
	Hold
)

var brakeModeNames = map[BrakeMode]string{
	Coast: "coast",
	Brake: "brake",
	Hold:  "hold",
}

func (m BrakeMode) String() string {
	if s, ok := brakeModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("BrakeMode(%d)", int(m))
}

// ParseBrakeMode parses "coast", "brake" or "hold".
func ParseBrakeMode(s string) (BrakeMode, error) {
	for m, name := range brakeModeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown brake mode %q", s)
}

// Gearset is the internal gear cartridge of a motor.
type Gearset int

const (
	Green Gearset = iota // 18:1, 200 RPM
	Red                  // 36:1, 100 RPM
	Blue                 // 6:1, 600 RPM
)

// MaxRPM returns the output speed of the gearset at full voltage.
func (g Gearset) MaxRPM() int {
	switch g {
	case Red:
		return 100
	case Blue:
		return 600
	default:
		return 200
	}
}

func (g Gearset) String() string {
	switch g {
	case Green:
		return "green"
	case Red:
		return "red"
	case Blue:
		return "blue"
	}
	return fmt.Sprintf("Gearset(%d)", int(g))
}

// Direction is the positive spin direction of a motor.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Type identifies the motor hardware family.
type Type int

const (
	// V5 is the 11W motor.
	V5 Type = iota
	// EXP is the 5.5W motor.
	EXP
	// Servo is a serial bus servo such as the Feetech STS3215.
	Servo
)

// MaxVoltage returns the nominal maximum voltage for the motor type.
func (t Type) MaxVoltage() float64 {
	switch t {
	case EXP:
		return 8.0
	case Servo:
		return 7.4
	}
	return 12.0
}

func (t Type) String() string {
	switch t {
	case EXP:
		return "exp"
	case Servo:
		return "servo"
	}
	return "v5"
}
