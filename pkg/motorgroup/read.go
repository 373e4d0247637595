package motorgroup

import (
	"context"

	"github.com/gwillem/motorgroup/pkg/motor"
)

// Velocity returns the average estimated velocity of the motors in RPM.
func (g *Group[D]) Velocity(ctx context.Context) (float64, error) {
	return readMean(ctx, g, "velocity", motor.Device.Velocity)
}

// Power returns the average power drawn by a motor in Watts.
func (g *Group[D]) Power(ctx context.Context) (float64, error) {
	return readMean(ctx, g, "power", motor.Device.Power)
}

// Torque returns the average torque output in Nm.
func (g *Group[D]) Torque(ctx context.Context) (float64, error) {
	return readMean(ctx, g, "torque", motor.Device.Torque)
}

// Voltage returns the average voltage delivered to the motors in Volts.
func (g *Group[D]) Voltage(ctx context.Context) (float64, error) {
	return readMean(ctx, g, "voltage", motor.Device.Voltage)
}

// Position returns the average position of the motors.
func (g *Group[D]) Position(ctx context.Context) (motor.Position, error) {
	return readMean(ctx, g, "position", motor.Device.Position)
}

// Current returns the average current drawn by a motor in Amperes.
func (g *Group[D]) Current(ctx context.Context) (float64, error) {
	return readMean(ctx, g, "current", motor.Device.Current)
}

// Efficiency returns the average efficiency of the motors in percent.
func (g *Group[D]) Efficiency(ctx context.Context) (float64, error) {
	return readMean(ctx, g, "efficiency", motor.Device.Efficiency)
}

// Temperature returns the average internal temperature in degrees Celsius.
func (g *Group[D]) Temperature(ctx context.Context) (float64, error) {
	return readMean(ctx, g, "temperature", motor.Device.Temperature)
}

// IsOverTemperature reports whether any motor is over temperature. A motor
// reporting true wins over failures of other motors.
func (g *Group[D]) IsOverTemperature(ctx context.Context) (bool, error) {
	return readAny(ctx, g, "is_over_temperature", motor.Device.IsOverTemperature)
}

// IsOverCurrent reports whether any motor is over current.
func (g *Group[D]) IsOverCurrent(ctx context.Context) (bool, error) {
	return readAny(ctx, g, "is_over_current", motor.Device.IsOverCurrent)
}

// IsDriverFault reports whether any motor has a driver fault.
func (g *Group[D]) IsDriverFault(ctx context.Context) (bool, error) {
	return readAny(ctx, g, "is_driver_fault", motor.Device.IsDriverFault)
}

// IsDriverOverCurrent reports whether any motor driver is over current.
func (g *Group[D]) IsDriverOverCurrent(ctx context.Context) (bool, error) {
	return readAny(ctx, g, "is_driver_over_current", motor.Device.IsDriverOverCurrent)
}

// MaxVoltage returns the highest maximum voltage among the motors, or 0 for
// an empty group.
func (g *Group[D]) MaxVoltage() float64 {
	var hi float64
	for i, d := range g.devices {
		if v := d.MaxVoltage(); i == 0 || v > hi {
			hi = v
		}
	}
	return hi
}

// HasType reports whether any motor is of type t.
func (g *Group[D]) HasType(t motor.Type) bool {
	for _, d := range g.devices {
		if d.Type() == t {
			return true
		}
	}
	return false
}

// HasEXP reports whether the group contains a 5.5W EXP motor.
func (g *Group[D]) HasEXP() bool { return g.HasType(motor.EXP) }

// HasV5 reports whether the group contains an 11W V5 motor.
func (g *Group[D]) HasV5() bool { return g.HasType(motor.V5) }
