package motor

import (
	"context"
	"fmt"
)

// ControlKind selects which field of a Control is meaningful.
type ControlKind int

const (
	ControlVoltage ControlKind = iota
	ControlVelocity
	ControlProfiledVelocity
	ControlPosition
	ControlBrake
)

// Control is a target a motor should attempt to reach.
type Control struct {
	Kind     ControlKind
	Volts    float64
	RPM      int
	Position Position
	Mode     BrakeMode
}

// VoltageControl drives the motor at a fixed voltage.
func VoltageControl(volts float64) Control {
	return Control{Kind: ControlVoltage, Volts: volts}
}

// VelocityControl holds the motor at a velocity in RPM.
func VelocityControl(rpm int) Control {
	return Control{Kind: ControlVelocity, RPM: rpm}
}

// ProfiledVelocityControl ramps the motor to a velocity in RPM.
func ProfiledVelocityControl(rpm int) Control {
	return Control{Kind: ControlProfiledVelocity, RPM: rpm}
}

// PositionControl moves the motor to pos at up to rpm.
func PositionControl(pos Position, rpm int) Control {
	return Control{Kind: ControlPosition, Position: pos, RPM: rpm}
}

// BrakeControl stops the motor with the given mode.
func BrakeControl(mode BrakeMode) Control {
	return Control{Kind: ControlBrake, Mode: mode}
}

func (c Control) String() string {
	switch c.Kind {
	case ControlVoltage:
		return fmt.Sprintf("voltage(%.2fV)", c.Volts)
	case ControlVelocity:
		return fmt.Sprintf("velocity(%d rpm)", c.RPM)
	case ControlProfiledVelocity:
		return fmt.Sprintf("profiled_velocity(%d rpm)", c.RPM)
	case ControlPosition:
		return fmt.Sprintf("position(%s @ %d rpm)", c.Position, c.RPM)
	case ControlBrake:
		return fmt.Sprintf("brake(%s)", c.Mode)
	}
	return fmt.Sprintf("Control(%d)", int(c.Kind))
}

// Dispatch routes target to the matching setter on c. Devices without a native
// target command can implement SetTarget with it.
func Dispatch(ctx context.Context, c Controller, target Control) error {
	switch target.Kind {
	case ControlVoltage:
		return c.SetVoltage(ctx, target.Volts)
	case ControlVelocity:
		return c.SetVelocity(ctx, target.RPM)
	case ControlProfiledVelocity:
		return c.SetProfiledVelocity(ctx, target.RPM)
	case ControlPosition:
		return c.SetPositionTarget(ctx, target.Position, target.RPM)
	case ControlBrake:
		return c.Brake(ctx, target.Mode)
	}
	return fmt.Errorf("unknown control kind %d: %w", int(target.Kind), ErrUnsupported)
}
