package servo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/motorgroup/pkg/motor"
	"github.com/gwillem/motorgroup/pkg/motorgroup"
)

type fakeActuator struct {
	raw      int
	enabled  bool
	lastTime int
	err      error
	writes   int
}

func (f *fakeActuator) Position(context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.raw, nil
}

func (f *fakeActuator) SetPosition(_ context.Context, pos int) error {
	f.writes++
	if f.err != nil {
		return f.err
	}
	f.raw = pos
	return nil
}

func (f *fakeActuator) SetPositionWithTime(_ context.Context, pos, ms int) error {
	f.writes++
	if f.err != nil {
		return f.err
	}
	f.raw, f.lastTime = pos, ms
	return nil
}

func (f *fakeActuator) Enable(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.enabled = true
	return nil
}

func (f *fakeActuator) Disable(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.enabled = false
	return nil
}

func newTestMotor(raw int) (*Motor, *fakeActuator) {
	act := &fakeActuator{raw: raw}
	return NewMotor(Spec{Name: "left", ID: 1, Calibration: Calibration{HomingOffset: 2048}}, act), act
}

func TestMotor_Position(t *testing.T) {
	m, _ := newTestMotor(3072)
	pos, err := m.Position(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 90.0, pos.Degrees(), 1e-9)
}

func TestMotor_RawAndCalibrate(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMotor(1000)

	raw, err := m.Raw(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000, raw)

	m.Calibrate(Calibration{HomingOffset: 1000})
	pos, err := m.Position(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, pos.Degrees(), 1e-9)
}

func TestMotor_SetPositionTarget(t *testing.T) {
	ctx := context.Background()
	m, act := newTestMotor(2048)

	require.NoError(t, m.SetPositionTarget(ctx, motor.FromDegrees(90), 0))
	assert.Equal(t, 3072, act.raw)

	// 90° back at 15 RPM (90°/s) takes one second.
	require.NoError(t, m.SetPositionTarget(ctx, motor.FromDegrees(0), 15))
	assert.Equal(t, 2048, act.raw)
	assert.Equal(t, 1000, act.lastTime)
}

func TestMotor_SoftwareZero(t *testing.T) {
	ctx := context.Background()
	m, act := newTestMotor(2560) // 45°

	require.NoError(t, m.ResetPosition(ctx))
	pos, err := m.Position(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, pos.Degrees(), 1e-9)

	require.NoError(t, m.SetPositionTarget(ctx, motor.FromDegrees(45), 0))
	assert.Equal(t, 3072, act.raw)

	require.NoError(t, m.SetPosition(ctx, motor.FromDegrees(10)))
	pos, err = m.Position(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pos.Degrees(), 1e-9)
}

func TestMotor_Reverse(t *testing.T) {
	ctx := context.Background()
	m, act := newTestMotor(3072)

	require.NoError(t, m.SetDirection(ctx, motor.Reverse))
	pos, err := m.Position(ctx)
	require.NoError(t, err)
	assert.InDelta(t, -90.0, pos.Degrees(), 1e-9)

	require.NoError(t, m.SetPositionTarget(ctx, motor.FromDegrees(-45), 0))
	assert.Equal(t, 2560, act.raw)
}

func TestMotor_ReverseKeepsZero(t *testing.T) {
	ctx := context.Background()
	m, act := newTestMotor(2560) // 45°

	require.NoError(t, m.ResetPosition(ctx))
	require.NoError(t, m.SetDirection(ctx, motor.Reverse))
	pos, err := m.Position(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, pos.Degrees(), 1e-9)

	// Setting the same direction again is a no-op.
	require.NoError(t, m.SetDirection(ctx, motor.Reverse))
	act.raw = 3072 // shaft turns +45°
	pos, err = m.Position(ctx)
	require.NoError(t, err)
	assert.InDelta(t, -45.0, pos.Degrees(), 1e-9)

	require.NoError(t, m.SetDirection(ctx, motor.Forward))
	pos, err = m.Position(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 45.0, pos.Degrees(), 1e-9)
}

func TestMotor_Brake(t *testing.T) {
	ctx := context.Background()
	m, act := newTestMotor(3000)

	require.NoError(t, m.Brake(ctx, motor.Hold))
	assert.True(t, act.enabled)
	assert.Equal(t, 3000, act.raw)

	require.NoError(t, m.Brake(ctx, motor.Coast))
	assert.False(t, act.enabled)
}

func TestMotor_Unsupported(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMotor(0)

	_, err := m.Velocity(ctx)
	assert.True(t, IsUnsupported(err))
	assert.True(t, IsUnsupported(m.SetVoltage(ctx, 5)))
	assert.True(t, IsUnsupported(m.SetTarget(ctx, motor.VelocityControl(10))))
	assert.NoError(t, m.SetTarget(ctx, motor.PositionControl(motor.FromDegrees(1), 0)))
}

func TestMotor_BusErrorWrapped(t *testing.T) {
	m, act := newTestMotor(0)
	busErr := errors.New("checksum mismatch")
	act.err = busErr

	_, err := m.Position(context.Background())
	assert.ErrorIs(t, err, busErr)
	assert.Contains(t, err.Error(), "servo 1")
}

// A group of servos reports partial telemetry: position averages, the rest
// fails per motor.
func TestMotor_InGroup(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestMotor(3072) // 90°
	b, actB := newTestMotor(2048)
	c, _ := newTestMotor(1024) // -90°
	actB.err = motor.ErrPort

	g := motorgroup.Of(a, b, c)

	_, err := g.Position(ctx)
	var gerr *motorgroup.GroupError[motor.Position]
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, []int{1}, gerr.Indices())
	assert.True(t, gerr.HasPortError())
	avg, ok := gerr.Result()
	require.True(t, ok)
	assert.InDelta(t, 0.0, avg.Degrees(), 1e-9)

	_, err = g.Voltage(ctx)
	var verr *motorgroup.GroupError[float64]
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 3)
	assert.Equal(t, 7.4, g.MaxVoltage())
	assert.True(t, g.HasType(motor.Servo))
}

func TestMoveTime(t *testing.T) {
	tests := []struct {
		from, to float64
		rpm      int
		expected int
	}{
		{0, 90, 15, 1000},
		{0, 360, 60, 1000},
		{10, 10, 100, 1}, // never zero
	}

	for _, tt := range tests {
		got := moveTimeMs(motor.FromDegrees(tt.from), motor.FromDegrees(tt.to), tt.rpm)
		if got != tt.expected {
			t.Errorf("moveTimeMs(%v, %v, %d) = %d, want %d", tt.from, tt.to, tt.rpm, got, tt.expected)
		}
	}
}
