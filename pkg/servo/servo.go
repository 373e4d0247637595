// Package servo adapts Feetech serial bus servos to motor.Device.
package servo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/motorgroup/pkg/motor"
)

// DefaultBaudRate is the factory baud rate of STS servos.
const DefaultBaudRate = 1_000_000

// BusConfig describes the serial bus the servos are attached to.
type BusConfig struct {
	Port     string
	BaudRate int
	Timeout  time.Duration
}

func (c BusConfig) feetech() feetech.BusConfig {
	baud := c.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 100 * time.Millisecond
	}
	return feetech.BusConfig{
		Port:     c.Port,
		BaudRate: baud,
		Protocol: feetech.ProtocolSTS,
		Timeout:  timeout,
	}
}

// Spec identifies one servo on the bus.
type Spec struct {
	Name        string
	ID          int
	Reversed    bool
	Calibration Calibration
}

// Found is a servo discovered by Scan.
type Found struct {
	ID    int
	Model string
}

// Bus is an open servo bus and the motors on it.
type Bus struct {
	bus    *feetech.Bus
	Motors []*Motor
}

// Open opens the bus and creates one Motor per entry, in order. Every listed
// ID must answer a scan.
func Open(ctx context.Context, cfg BusConfig, specs []Spec) (*Bus, error) {
	bus, err := feetech.NewBus(cfg.feetech())
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	minID, maxID := idRange(specs)
	found, err := bus.Scan(ctx, minID, maxID)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("scan bus: %w", err)
	}

	motors := make([]*Motor, 0, len(specs))
	for _, spec := range specs {
		var servo *feetech.Servo
		for _, f := range found {
			if f.ID == spec.ID {
				servo = feetech.NewServo(bus, f.ID, f.Model)
				break
			}
		}
		if servo == nil {
			bus.Close()
			return nil, fmt.Errorf("servo %d (%s): %w", spec.ID, spec.Name, motor.ErrPort)
		}
		motors = append(motors, NewMotor(spec, servo))
	}

	return &Bus{bus: bus, Motors: motors}, nil
}

func idRange(specs []Spec) (int, int) {
	if len(specs) == 0 {
		return 1, 1
	}
	lo, hi := specs[0].ID, specs[0].ID
	for _, s := range specs[1:] {
		lo, hi = min(lo, s.ID), max(hi, s.ID)
	}
	return lo, hi
}

// Close closes the bus connection.
func (b *Bus) Close() error {
	return b.bus.Close()
}

// Scan probes IDs minID..maxID on the configured port.
func Scan(ctx context.Context, cfg BusConfig, minID, maxID int) ([]Found, error) {
	bus, err := feetech.NewBus(cfg.feetech())
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}
	defer bus.Close()

	servos, err := bus.Scan(ctx, minID, maxID)
	if err != nil {
		return nil, fmt.Errorf("scan bus: %w", err)
	}
	found := make([]Found, len(servos))
	for i, s := range servos {
		found[i] = Found{ID: s.ID, Model: fmt.Sprint(s.Model)}
	}
	return found, nil
}

// ListPorts returns the serial ports that may have a servo bus attached.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}
	out := ports[:0]
	for _, p := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(p, "Bluetooth") {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Actuator is the part of *feetech.Servo a Motor drives.
type Actuator interface {
	Position(ctx context.Context) (int, error)
	SetPosition(ctx context.Context, position int) error
	SetPositionWithTime(ctx context.Context, position, timeMs int) error
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
}

// Motor is a position-controlled servo exposed as a motor.Device.
//
// Servos in position mode only report position; the other telemetry and the
// voltage and velocity commands fail with motor.ErrUnsupported.
type Motor struct {
	name     string
	id       int
	servo    Actuator
	cal      Calibration
	reversed bool
	offset   motor.Position
}

// NewMotor wraps an actuator.
func NewMotor(spec Spec, servo Actuator) *Motor {
	return &Motor{
		name:     spec.Name,
		id:       spec.ID,
		servo:    servo,
		cal:      spec.Calibration,
		reversed: spec.Reversed,
	}
}

// Name returns the configured motor name.
func (m *Motor) Name() string { return m.name }

// ID returns the servo bus ID.
func (m *Motor) ID() int { return m.id }

// Raw returns the uncalibrated step count.
func (m *Motor) Raw(ctx context.Context) (int, error) {
	raw, err := m.servo.Position(ctx)
	if err != nil {
		return 0, m.fail("read position", err)
	}
	return raw, nil
}

// Calibrate replaces the motor's calibration.
func (m *Motor) Calibrate(cal Calibration) { m.cal = cal }

func (m *Motor) unsupported(op string) error {
	return fmt.Errorf("servo %d: %s: %w", m.id, op, motor.ErrUnsupported)
}

func (m *Motor) fail(op string, err error) error {
	return fmt.Errorf("servo %d: %s: %w", m.id, op, err)
}

// rawPosition returns the calibrated angle of the servo shaft.
func (m *Motor) rawPosition(ctx context.Context) (motor.Position, error) {
	raw, err := m.servo.Position(ctx)
	if err != nil {
		return 0, err
	}
	pos := m.cal.ToPosition(raw)
	if m.reversed {
		pos = -pos
	}
	return pos, nil
}

func (m *Motor) toRaw(pos motor.Position) int {
	if m.reversed {
		pos = -pos
	}
	return m.cal.FromPosition(pos)
}

func (m *Motor) Position(ctx context.Context) (motor.Position, error) {
	pos, err := m.rawPosition(ctx)
	if err != nil {
		return 0, m.fail("read position", err)
	}
	return pos - m.offset, nil
}

func (m *Motor) Velocity(context.Context) (float64, error) {
	return 0, m.unsupported("velocity")
}

func (m *Motor) Power(context.Context) (float64, error) { return 0, m.unsupported("power") }

func (m *Motor) Torque(context.Context) (float64, error) { return 0, m.unsupported("torque") }

func (m *Motor) Voltage(context.Context) (float64, error) { return 0, m.unsupported("voltage") }

func (m *Motor) Current(context.Context) (float64, error) { return 0, m.unsupported("current") }

func (m *Motor) Efficiency(context.Context) (float64, error) {
	return 0, m.unsupported("efficiency")
}

func (m *Motor) Temperature(context.Context) (float64, error) {
	return 0, m.unsupported("temperature")
}

func (m *Motor) IsOverTemperature(context.Context) (bool, error) {
	return false, m.unsupported("over temperature flag")
}

func (m *Motor) IsOverCurrent(context.Context) (bool, error) {
	return false, m.unsupported("over current flag")
}

func (m *Motor) IsDriverFault(context.Context) (bool, error) {
	return false, m.unsupported("driver fault flag")
}

func (m *Motor) IsDriverOverCurrent(context.Context) (bool, error) {
	return false, m.unsupported("driver over current flag")
}

func (m *Motor) SetTarget(ctx context.Context, target motor.Control) error {
	return motor.Dispatch(ctx, m, target)
}

func (m *Motor) SetVoltage(context.Context, float64) error {
	return m.unsupported("set voltage")
}

func (m *Motor) SetVelocity(context.Context, int) error {
	return m.unsupported("set velocity")
}

func (m *Motor) SetProfiledVelocity(context.Context, int) error {
	return m.unsupported("set profiled velocity")
}

// SetPositionTarget moves the servo to pos. A positive velocity (RPM) is
// turned into a move time; zero or less moves at full speed.
func (m *Motor) SetPositionTarget(ctx context.Context, pos motor.Position, velocity int) error {
	raw := m.toRaw(pos + m.offset)
	if velocity <= 0 {
		if err := m.servo.SetPosition(ctx, raw); err != nil {
			return m.fail("set position target", err)
		}
		return nil
	}

	cur, err := m.rawPosition(ctx)
	if err != nil {
		return m.fail("read position", err)
	}
	if err := m.servo.SetPositionWithTime(ctx, raw, moveTimeMs(cur, pos+m.offset, velocity)); err != nil {
		return m.fail("set position target", err)
	}
	return nil
}

// moveTimeMs is the time to travel from one angle to another at rpm.
func moveTimeMs(from, to motor.Position, rpm int) int {
	degPerSec := float64(rpm) * 6
	ms := math.Abs(to.Degrees()-from.Degrees()) / degPerSec * 1000
	return max(int(math.Round(ms)), 1)
}

// Brake releases torque for Coast and holds the current position otherwise.
func (m *Motor) Brake(ctx context.Context, mode motor.BrakeMode) error {
	if mode == motor.Coast {
		if err := m.servo.Disable(ctx); err != nil {
			return m.fail("disable torque", err)
		}
		return nil
	}

	raw, err := m.servo.Position(ctx)
	if err != nil {
		return m.fail("read position", err)
	}
	if err := m.servo.Enable(ctx); err != nil {
		return m.fail("enable torque", err)
	}
	if err := m.servo.SetPosition(ctx, raw); err != nil {
		return m.fail("hold position", err)
	}
	return nil
}

func (m *Motor) SetGearset(context.Context, motor.Gearset) error {
	return m.unsupported("set gearset")
}

// SetDirection inverts the sign of positions for Reverse. A software zero
// stays on the same shaft angle.
func (m *Motor) SetDirection(_ context.Context, dir motor.Direction) error {
	reversed := dir == motor.Reverse
	if reversed != m.reversed {
		m.reversed = reversed
		m.offset = -m.offset
	}
	return nil
}

// ResetPosition makes the current angle the zero position.
func (m *Motor) ResetPosition(ctx context.Context) error {
	return m.SetPosition(ctx, 0)
}

// SetPosition redefines the current angle as pos without moving the servo.
func (m *Motor) SetPosition(ctx context.Context, pos motor.Position) error {
	cur, err := m.rawPosition(ctx)
	if err != nil {
		return m.fail("read position", err)
	}
	m.offset = cur - pos
	return nil
}

func (m *Motor) SetCurrentLimit(context.Context, float64) error {
	return m.unsupported("set current limit")
}

func (m *Motor) SetVoltageLimit(context.Context, float64) error {
	return m.unsupported("set voltage limit")
}

// Type returns motor.Servo.
func (m *Motor) Type() motor.Type { return motor.Servo }

// MaxVoltage returns the nominal supply voltage of the servo.
func (m *Motor) MaxVoltage() float64 { return motor.Servo.MaxVoltage() }

var (
	_ motor.Device = (*Motor)(nil)
	_ Actuator     = (*feetech.Servo)(nil)
)

// IsUnsupported reports whether err came from an operation the servo cannot
// perform.
func IsUnsupported(err error) bool {
	return errors.Is(err, motor.ErrUnsupported)
}
