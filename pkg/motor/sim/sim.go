// Package sim provides an in-memory motor for tests and hardware-free runs.
//
// A sim Motor records every call, reports deterministic telemetry derived
// from the last command, and can be told to fail any operation.
package sim

import (
	"context"
	"sync"

	"github.com/gwillem/motorgroup/pkg/motor"
)

// Readings is the telemetry a simulated motor reports.
type Readings struct {
	Velocity    float64
	Power       float64
	Torque      float64
	Voltage     float64
	Position    motor.Position
	Current     float64
	Efficiency  float64
	Temperature float64

	OverTemperature   bool
	OverCurrent       bool
	DriverFault       bool
	DriverOverCurrent bool
}

// Call is one recorded invocation.
type Call struct {
	Op   string
	Args []any
}

// Motor is a simulated motor. It is safe for concurrent use.
type Motor struct {
	mu       sync.Mutex
	typ      motor.Type
	readings Readings
	failures map[string]error
	calls    []Call

	target       motor.Control
	gearset      motor.Gearset
	direction    motor.Direction
	offset       motor.Position
	currentLimit float64
	voltageLimit float64
	closed       bool
	unplugged    bool
}

// Option configures a Motor.
type Option func(*Motor)

// WithType sets the motor type.
func WithType(t motor.Type) Option {
	return func(m *Motor) { m.typ = t }
}

// WithReadings sets the initial telemetry.
func WithReadings(r Readings) Option {
	return func(m *Motor) { m.readings = r }
}

// WithFailure makes op fail with err. op is the method name, e.g.
// "Velocity" or "SetVoltage".
func WithFailure(op string, err error) Option {
	return func(m *Motor) { m.failures[op] = err }
}

// New creates a simulated V5 motor with a green gearset.
func New(opts ...Option) *Motor {
	m := &Motor{
		typ:      motor.V5,
		gearset:  motor.Green,
		failures: make(map[string]error),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fail makes op fail with err from now on. A nil err clears the failure.
func (m *Motor) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Disconnect makes every operation fail with motor.ErrPort until Reconnect.
func (m *Motor) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unplugged = true
}

// Reconnect undoes Disconnect.
func (m *Motor) Reconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unplugged = false
}

// SetReadings replaces the reported telemetry.
func (m *Motor) SetReadings(r Readings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings = r
}

// Readings returns the current telemetry.
func (m *Motor) Readings() Readings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readings
}

// Calls returns every recorded call in order.
func (m *Motor) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Called reports how many times op was invoked.
func (m *Motor) Called(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Target returns the last control accepted by the motor.
func (m *Motor) Target() motor.Control {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// Closed reports whether Close was called.
func (m *Motor) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the motor closed.
func (m *Motor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// record logs the call and returns the configured failure for op. The caller
// must hold m.mu.
func (m *Motor) record(op string, args ...any) error {
	m.calls = append(m.calls, Call{Op: op, Args: args})
	if m.unplugged {
		return motor.ErrPort
	}
	return m.failures[op]
}

func read[T any](m *Motor, op string, get func(r *Readings) T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(op); err != nil {
		var zero T
		return zero, err
	}
	return get(&m.readings), nil
}

func (m *Motor) Velocity(context.Context) (float64, error) {
	return read(m, "Velocity", func(r *Readings) float64 { return r.Velocity })
}

func (m *Motor) Power(context.Context) (float64, error) {
	return read(m, "Power", func(r *Readings) float64 { return r.Power })
}

func (m *Motor) Torque(context.Context) (float64, error) {
	return read(m, "Torque", func(r *Readings) float64 { return r.Torque })
}

func (m *Motor) Voltage(context.Context) (float64, error) {
	return read(m, "Voltage", func(r *Readings) float64 { return r.Voltage })
}

func (m *Motor) Position(context.Context) (motor.Position, error) {
	return read(m, "Position", func(r *Readings) motor.Position { return r.Position - m.offset })
}

func (m *Motor) Current(context.Context) (float64, error) {
	return read(m, "Current", func(r *Readings) float64 { return r.Current })
}

func (m *Motor) Efficiency(context.Context) (float64, error) {
	return read(m, "Efficiency", func(r *Readings) float64 { return r.Efficiency })
}

func (m *Motor) Temperature(context.Context) (float64, error) {
	return read(m, "Temperature", func(r *Readings) float64 { return r.Temperature })
}

func (m *Motor) IsOverTemperature(context.Context) (bool, error) {
	return read(m, "IsOverTemperature", func(r *Readings) bool { return r.OverTemperature })
}

func (m *Motor) IsOverCurrent(context.Context) (bool, error) {
	return read(m, "IsOverCurrent", func(r *Readings) bool { return r.OverCurrent })
}

func (m *Motor) IsDriverFault(context.Context) (bool, error) {
	return read(m, "IsDriverFault", func(r *Readings) bool { return r.DriverFault })
}

func (m *Motor) IsDriverOverCurrent(context.Context) (bool, error) {
	return read(m, "IsDriverOverCurrent", func(r *Readings) bool { return r.DriverOverCurrent })
}

// SetTarget records the call under "SetTarget" and applies the target.
func (m *Motor) SetTarget(_ context.Context, target motor.Control) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SetTarget", target); err != nil {
		return err
	}
	m.apply(target)
	return nil
}

func (m *Motor) write(op string, target motor.Control, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(op, args...); err != nil {
		return err
	}
	m.apply(target)
	return nil
}

// apply updates the telemetry to reflect target. The caller must hold m.mu.
func (m *Motor) apply(target motor.Control) {
	m.target = target
	maxV := m.typ.MaxVoltage()
	switch target.Kind {
	case motor.ControlVoltage:
		volts := target.Volts
		if lim := m.voltageLimit; lim > 0 {
			volts = min(max(volts, -lim), lim)
		}
		m.readings.Voltage = volts
		m.readings.Velocity = volts / maxV * float64(m.gearset.MaxRPM())
	case motor.ControlVelocity, motor.ControlProfiledVelocity:
		m.readings.Velocity = float64(target.RPM)
		m.readings.Voltage = float64(target.RPM) / float64(m.gearset.MaxRPM()) * maxV
	case motor.ControlPosition:
		m.readings.Position = target.Position + m.offset
		m.readings.Velocity = 0
	case motor.ControlBrake:
		m.readings.Velocity = 0
		m.readings.Voltage = 0
	}
	if m.direction == motor.Reverse {
		m.readings.Velocity = -m.readings.Velocity
	}
}

func (m *Motor) SetVoltage(_ context.Context, volts float64) error {
	return m.write("SetVoltage", motor.VoltageControl(volts), volts)
}

func (m *Motor) SetVelocity(_ context.Context, rpm int) error {
	return m.write("SetVelocity", motor.VelocityControl(rpm), rpm)
}

func (m *Motor) SetPositionTarget(_ context.Context, pos motor.Position, velocity int) error {
	return m.write("SetPositionTarget", motor.PositionControl(pos, velocity), pos, velocity)
}

func (m *Motor) SetProfiledVelocity(_ context.Context, rpm int) error {
	return m.write("SetProfiledVelocity", motor.ProfiledVelocityControl(rpm), rpm)
}

func (m *Motor) Brake(_ context.Context, mode motor.BrakeMode) error {
	return m.write("Brake", motor.BrakeControl(mode), mode)
}

func (m *Motor) SetGearset(_ context.Context, gearset motor.Gearset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SetGearset", gearset); err != nil {
		return err
	}
	m.gearset = gearset
	return nil
}

func (m *Motor) SetDirection(_ context.Context, dir motor.Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SetDirection", dir); err != nil {
		return err
	}
	m.direction = dir
	return nil
}

func (m *Motor) ResetPosition(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ResetPosition"); err != nil {
		return err
	}
	m.offset = m.readings.Position
	return nil
}

func (m *Motor) SetPosition(_ context.Context, pos motor.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SetPosition", pos); err != nil {
		return err
	}
	m.offset = m.readings.Position - pos
	return nil
}

func (m *Motor) SetCurrentLimit(_ context.Context, amps float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SetCurrentLimit", amps); err != nil {
		return err
	}
	m.currentLimit = amps
	return nil
}

func (m *Motor) SetVoltageLimit(_ context.Context, volts float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("SetVoltageLimit", volts); err != nil {
		return err
	}
	m.voltageLimit = volts
	return nil
}

// Type returns the configured motor type.
func (m *Motor) Type() motor.Type { return m.typ }

// MaxVoltage returns the maximum voltage of the motor type.
func (m *Motor) MaxVoltage() float64 { return m.typ.MaxVoltage() }

var _ motor.Device = (*Motor)(nil)
