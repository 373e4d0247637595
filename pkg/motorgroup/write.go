package motorgroup

import (
	"context"

	"github.com/gwillem/motorgroup/pkg/motor"
)

// SetTarget sets the target every motor should attempt to reach.
func (g *Group[D]) SetTarget(ctx context.Context, target motor.Control) error {
	return g.write(ctx, "set_target", func(d motor.Device) error {
		return d.SetTarget(ctx, target)
	})
}

// SetVoltage drives every motor at volts.
func (g *Group[D]) SetVoltage(ctx context.Context, volts float64) error {
	return g.write(ctx, "set_voltage", func(d motor.Device) error {
		return d.SetVoltage(ctx, volts)
	})
}

// SetVelocity spins every motor at rpm, held by the motor's velocity
// controller.
func (g *Group[D]) SetVelocity(ctx context.Context, rpm int) error {
	return g.write(ctx, "set_velocity", func(d motor.Device) error {
		return d.SetVelocity(ctx, rpm)
	})
}

// SetPositionTarget moves every motor to pos at up to velocity RPM.
func (g *Group[D]) SetPositionTarget(ctx context.Context, pos motor.Position, velocity int) error {
	return g.write(ctx, "set_position_target", func(d motor.Device) error {
		return d.SetPositionTarget(ctx, pos, velocity)
	})
}

// SetProfiledVelocity ramps every motor to rpm.
func (g *Group[D]) SetProfiledVelocity(ctx context.Context, rpm int) error {
	return g.write(ctx, "set_profiled_velocity", func(d motor.Device) error {
		return d.SetProfiledVelocity(ctx, rpm)
	})
}

// Brake stops every motor with mode.
func (g *Group[D]) Brake(ctx context.Context, mode motor.BrakeMode) error {
	return g.write(ctx, "brake", func(d motor.Device) error {
		return d.Brake(ctx, mode)
	})
}

// SetGearset sets the gearset of every motor.
func (g *Group[D]) SetGearset(ctx context.Context, gearset motor.Gearset) error {
	return g.write(ctx, "set_gearset", func(d motor.Device) error {
		return d.SetGearset(ctx, gearset)
	})
}

// SetDirection sets the positive direction of every motor.
func (g *Group[D]) SetDirection(ctx context.Context, dir motor.Direction) error {
	return g.write(ctx, "set_direction", func(d motor.Device) error {
		return d.SetDirection(ctx, dir)
	})
}

// ResetPosition makes the current position of every motor its zero.
func (g *Group[D]) ResetPosition(ctx context.Context) error {
	return g.write(ctx, "reset_position", func(d motor.Device) error {
		return d.ResetPosition(ctx)
	})
}

// SetPosition redefines the current position of every motor as pos.
func (g *Group[D]) SetPosition(ctx context.Context, pos motor.Position) error {
	return g.write(ctx, "set_position", func(d motor.Device) error {
		return d.SetPosition(ctx, pos)
	})
}

// SetCurrentLimit limits the current of every motor to amps.
func (g *Group[D]) SetCurrentLimit(ctx context.Context, amps float64) error {
	return g.write(ctx, "set_current_limit", func(d motor.Device) error {
		return d.SetCurrentLimit(ctx, amps)
	})
}

// SetVoltageLimit limits the voltage of every motor to volts.
func (g *Group[D]) SetVoltageLimit(ctx context.Context, volts float64) error {
	return g.write(ctx, "set_voltage_limit", func(d motor.Device) error {
		return d.SetVoltageLimit(ctx, volts)
	})
}
