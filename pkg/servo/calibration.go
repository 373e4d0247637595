package servo

import (
	"math"

	"github.com/gwillem/motorgroup/pkg/motor"
)

// StepsPerRevolution is the encoder resolution of STS series servos.
const StepsPerRevolution = 4096

// Calibration maps raw servo steps to angles for a single servo.
type Calibration struct {
	DriveMode    int `json:"drive_mode" yaml:"drive_mode"`
	HomingOffset int `json:"homing_offset" yaml:"homing_offset"`
	RangeMin     int `json:"range_min" yaml:"range_min"`
	RangeMax     int `json:"range_max" yaml:"range_max"`
}

// ToPosition converts a raw step count to an angle relative to the homing
// offset.
func (c Calibration) ToPosition(raw int) motor.Position {
	deg := float64(raw-c.HomingOffset) * 360 / StepsPerRevolution
	if c.DriveMode != 0 {
		deg = -deg
	}
	return motor.FromDegrees(deg)
}

// FromPosition converts an angle to a raw step count within the calibrated
// range.
func (c Calibration) FromPosition(pos motor.Position) int {
	deg := pos.Degrees()
	if c.DriveMode != 0 {
		deg = -deg
	}
	raw := int(math.Round(deg*StepsPerRevolution/360)) + c.HomingOffset
	return c.Clamp(raw)
}

// Clamp limits raw to [RangeMin, RangeMax]. An empty range means no limit.
func (c Calibration) Clamp(raw int) int {
	if c.RangeMax <= c.RangeMin {
		return raw
	}
	return min(max(raw, c.RangeMin), c.RangeMax)
}
