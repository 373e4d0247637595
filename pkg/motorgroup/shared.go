package motorgroup

import (
	"context"
	"sync"

	"github.com/gwillem/motorgroup/pkg/motor"
)

// Shared guards a Group with a mutex so it can be used from several
// goroutines, e.g. a telemetry poller and a command loop.
type Shared[D motor.Device] struct {
	mu sync.Mutex
	g  *Group[D]
}

// NewShared wraps g. g must not be used directly afterwards.
func NewShared[D motor.Device](g *Group[D]) *Shared[D] {
	return &Shared[D]{g: g}
}

// Do runs fn with exclusive access to the group, for sequences of commands
// that must not interleave with other callers.
func (s *Shared[D]) Do(fn func(g *Group[D]) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.g)
}

func lockedRead[D motor.Device, T any](s *Shared[D], fn func(g *Group[D]) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.g)
}

// SetWriteErrorStrategy see Group.SetWriteErrorStrategy.
func (s *Shared[D]) SetWriteErrorStrategy(strategy WriteErrorStrategy) *Shared[D] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g.SetWriteErrorStrategy(strategy)
	return s
}

// WriteErrorStrategy see Group.WriteErrorStrategy.
func (s *Shared[D]) WriteErrorStrategy() WriteErrorStrategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.WriteErrorStrategy()
}

// Len see Group.Len.
func (s *Shared[D]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Len()
}

// Close see Group.Close.
func (s *Shared[D]) Close() error {
	return s.Do(func(g *Group[D]) error { return g.Close() })
}

// SetTarget see Group.SetTarget.
func (s *Shared[D]) SetTarget(ctx context.Context, target motor.Control) error {
	return s.Do(func(g *Group[D]) error { return g.SetTarget(ctx, target) })
}

// SetVoltage see Group.SetVoltage.
func (s *Shared[D]) SetVoltage(ctx context.Context, volts float64) error {
	return s.Do(func(g *Group[D]) error { return g.SetVoltage(ctx, volts) })
}

// SetVelocity see Group.SetVelocity.
func (s *Shared[D]) SetVelocity(ctx context.Context, rpm int) error {
	return s.Do(func(g *Group[D]) error { return g.SetVelocity(ctx, rpm) })
}

// SetPositionTarget see Group.SetPositionTarget.
func (s *Shared[D]) SetPositionTarget(ctx context.Context, pos motor.Position, velocity int) error {
	return s.Do(func(g *Group[D]) error { return g.SetPositionTarget(ctx, pos, velocity) })
}

// SetProfiledVelocity see Group.SetProfiledVelocity.
func (s *Shared[D]) SetProfiledVelocity(ctx context.Context, rpm int) error {
	return s.Do(func(g *Group[D]) error { return g.SetProfiledVelocity(ctx, rpm) })
}

// Brake see Group.Brake.
func (s *Shared[D]) Brake(ctx context.Context, mode motor.BrakeMode) error {
	return s.Do(func(g *Group[D]) error { return g.Brake(ctx, mode) })
}

// SetGearset see Group.SetGearset.
func (s *Shared[D]) SetGearset(ctx context.Context, gearset motor.Gearset) error {
	return s.Do(func(g *Group[D]) error { return g.SetGearset(ctx, gearset) })
}

// SetDirection see Group.SetDirection.
func (s *Shared[D]) SetDirection(ctx context.Context, dir motor.Direction) error {
	return s.Do(func(g *Group[D]) error { return g.SetDirection(ctx, dir) })
}

// ResetPosition see Group.ResetPosition.
func (s *Shared[D]) ResetPosition(ctx context.Context) error {
	return s.Do(func(g *Group[D]) error { return g.ResetPosition(ctx) })
}

// SetPosition see Group.SetPosition.
func (s *Shared[D]) SetPosition(ctx context.Context, pos motor.Position) error {
	return s.Do(func(g *Group[D]) error { return g.SetPosition(ctx, pos) })
}

// SetCurrentLimit see Group.SetCurrentLimit.
func (s *Shared[D]) SetCurrentLimit(ctx context.Context, amps float64) error {
	return s.Do(func(g *Group[D]) error { return g.SetCurrentLimit(ctx, amps) })
}

// SetVoltageLimit see Group.SetVoltageLimit.
func (s *Shared[D]) SetVoltageLimit(ctx context.Context, volts float64) error {
	return s.Do(func(g *Group[D]) error { return g.SetVoltageLimit(ctx, volts) })
}

// Velocity see Group.Velocity.
func (s *Shared[D]) Velocity(ctx context.Context) (float64, error) {
	return lockedRead(s, func(g *Group[D]) (float64, error) { return g.Velocity(ctx) })
}

// Power see Group.Power.
func (s *Shared[D]) Power(ctx context.Context) (float64, error) {
	return lockedRead(s, func(g *Group[D]) (float64, error) { return g.Power(ctx) })
}

// Torque see Group.Torque.
func (s *Shared[D]) Torque(ctx context.Context) (float64, error) {
	return lockedRead(s, func(g *Group[D]) (float64, error) { return g.Torque(ctx) })
}

// Voltage see Group.Voltage.
func (s *Shared[D]) Voltage(ctx context.Context) (float64, error) {
	return lockedRead(s, func(g *Group[D]) (float64, error) { return g.Voltage(ctx) })
}

// Position see Group.Position.
func (s *Shared[D]) Position(ctx context.Context) (motor.Position, error) {
	return lockedRead(s, func(g *Group[D]) (motor.Position, error) { return g.Position(ctx) })
}

// Current see Group.Current.
func (s *Shared[D]) Current(ctx context.Context) (float64, error) {
	return lockedRead(s, func(g *Group[D]) (float64, error) { return g.Current(ctx) })
}

// Efficiency see Group.Efficiency.
func (s *Shared[D]) Efficiency(ctx context.Context) (float64, error) {
	return lockedRead(s, func(g *Group[D]) (float64, error) { return g.Efficiency(ctx) })
}

// Temperature see Group.Temperature.
func (s *Shared[D]) Temperature(ctx context.Context) (float64, error) {
	return lockedRead(s, func(g *Group[D]) (float64, error) { return g.Temperature(ctx) })
}

// IsOverTemperature see Group.IsOverTemperature.
func (s *Shared[D]) IsOverTemperature(ctx context.Context) (bool, error) {
	return lockedRead(s, func(g *Group[D]) (bool, error) { return g.IsOverTemperature(ctx) })
}

// IsOverCurrent see Group.IsOverCurrent.
func (s *Shared[D]) IsOverCurrent(ctx context.Context) (bool, error) {
	return lockedRead(s, func(g *Group[D]) (bool, error) { return g.IsOverCurrent(ctx) })
}

// IsDriverFault see Group.IsDriverFault.
func (s *Shared[D]) IsDriverFault(ctx context.Context) (bool, error) {
	return lockedRead(s, func(g *Group[D]) (bool, error) { return g.IsDriverFault(ctx) })
}

// IsDriverOverCurrent see Group.IsDriverOverCurrent.
func (s *Shared[D]) IsDriverOverCurrent(ctx context.Context) (bool, error) {
	return lockedRead(s, func(g *Group[D]) (bool, error) { return g.IsDriverOverCurrent(ctx) })
}

// MaxVoltage see Group.MaxVoltage.
func (s *Shared[D]) MaxVoltage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.MaxVoltage()
}

// HasType see Group.HasType.
func (s *Shared[D]) HasType(t motor.Type) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.HasType(t)
}

// HasEXP see Group.HasEXP.
func (s *Shared[D]) HasEXP() bool { return s.HasType(motor.EXP) }

// HasV5 see Group.HasV5.
func (s *Shared[D]) HasV5() bool { return s.HasType(motor.V5) }
