// Package motor defines the capability a single motor device exposes and the
// value types shared by every implementation.
package motor

import (
	"context"
	"errors"
)

// Errors a device may report. Implementations are free to return their own
// errors; these exist so callers can classify common failures with errors.Is.
var (
	// ErrBusy is returned when the device could not be reached to read flags.
	ErrBusy = errors.New("motor busy")
	// ErrPort is returned when no device is connected to the configured port.
	ErrPort = errors.New("motor not connected")
	// ErrUnsupported is returned for operations the device cannot perform.
	ErrUnsupported = errors.New("operation not supported by motor")
)

// Telemetry is the set of numeric readings a motor reports.
type Telemetry interface {
	Velocity(ctx context.Context) (float64, error)
	Power(ctx context.Context) (float64, error)
	Torque(ctx context.Context) (float64, error)
	Voltage(ctx context.Context) (float64, error)
	Position(ctx context.Context) (Position, error)
	Current(ctx context.Context) (float64, error)
	Efficiency(ctx context.Context) (float64, error)
	Temperature(ctx context.Context) (float64, error)
}

// Flags is the set of fault flags a motor reports.
type Flags interface {
	IsOverTemperature(ctx context.Context) (bool, error)
	IsOverCurrent(ctx context.Context) (bool, error)
	IsDriverFault(ctx context.Context) (bool, error)
	IsDriverOverCurrent(ctx context.Context) (bool, error)
}

// Controller is the set of commands a motor accepts.
type Controller interface {
	SetTarget(ctx context.Context, target Control) error
	SetVoltage(ctx context.Context, volts float64) error
	SetVelocity(ctx context.Context, rpm int) error
	SetPositionTarget(ctx context.Context, pos Position, velocity int) error
	SetProfiledVelocity(ctx context.Context, rpm int) error
	Brake(ctx context.Context, mode BrakeMode) error
	SetGearset(ctx context.Context, gearset Gearset) error
	SetDirection(ctx context.Context, dir Direction) error
	ResetPosition(ctx context.Context) error
	SetPosition(ctx context.Context, pos Position) error
	SetCurrentLimit(ctx context.Context, amps float64) error
	SetVoltageLimit(ctx context.Context, volts float64) error
}

// Info describes static properties of a motor.
type Info interface {
	Type() Type
	MaxVoltage() float64
}

// Device is a single addressable motor.
type Device interface {
	Telemetry
	Flags
	Controller
	Info
}
