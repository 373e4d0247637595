package motorgroup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/motorgroup/pkg/motor"
	"github.com/gwillem/motorgroup/pkg/motor/sim"
)

var errUnplugged = errors.New("unplugged")

func withVelocities(vs ...float64) []*sim.Motor {
	motors := make([]*sim.Motor, len(vs))
	for i, v := range vs {
		motors[i] = sim.New(sim.WithReadings(sim.Readings{Velocity: v}))
	}
	return motors
}

func TestVelocity_AllSucceed(t *testing.T) {
	g := New(withVelocities(10, 20))

	v, err := g.Velocity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15.0, v)
}

func TestVelocity_AllFail(t *testing.T) {
	motors := withVelocities(1, 2, 3)
	errs := []error{errors.New("a"), errors.New("b"), errors.New("c")}
	for i, m := range motors {
		m.Fail("Velocity", errs[i])
	}
	g := New(motors)

	_, err := g.Velocity(context.Background())
	var gerr *GroupError[float64]
	require.ErrorAs(t, err, &gerr)

	require.Len(t, gerr.Errors, 3)
	for i, me := range gerr.Errors {
		assert.Equal(t, i, me.Index)
		assert.ErrorIs(t, me.Err, errs[i])
		assert.ErrorIs(t, err, errs[i])
	}
	assert.Equal(t, 3, gerr.Total)

	_, ok := gerr.Result()
	assert.False(t, ok, "no motor answered, there is nothing to average")
}

func TestVelocity_Partial(t *testing.T) {
	motors := withVelocities(10, 99, 30)
	motors[1].Fail("Velocity", errUnplugged)
	g := New(motors)

	v, err := g.Velocity(context.Background())
	assert.Zero(t, v)

	var gerr *GroupError[float64]
	require.ErrorAs(t, err, &gerr)
	require.Len(t, gerr.Errors, 1)
	assert.Equal(t, 1, gerr.First().Index)
	assert.ErrorIs(t, gerr.First().Err, errUnplugged)

	avg, ok := gerr.Result()
	require.True(t, ok)
	assert.Equal(t, 20.0, avg)

	// Result does not consume the diagnostics.
	avg2, _ := gerr.Result()
	assert.Equal(t, avg, avg2)
	assert.Len(t, gerr.Errors, 1)
}

func TestPosition_Average(t *testing.T) {
	g := Of(
		sim.New(sim.WithReadings(sim.Readings{Position: motor.FromDegrees(90)})),
		sim.New(sim.WithReadings(sim.Readings{Position: motor.FromDegrees(180)})),
	)

	pos, err := g.Position(context.Background())
	require.NoError(t, err)
	assert.Equal(t, motor.FromDegrees(135), pos)
}

func TestReads_AverageEveryField(t *testing.T) {
	g := Of(
		sim.New(sim.WithReadings(sim.Readings{Power: 2, Torque: 0.2, Voltage: 10, Current: 1, Efficiency: 50, Temperature: 30})),
		sim.New(sim.WithReadings(sim.Readings{Power: 4, Torque: 0.4, Voltage: 12, Current: 2, Efficiency: 70, Temperature: 40})),
	)
	ctx := context.Background()

	tests := []struct {
		name string
		read func(context.Context) (float64, error)
		want float64
	}{
		{"power", g.Power, 3},
		{"torque", g.Torque, 0.3},
		{"voltage", g.Voltage, 11},
		{"current", g.Current, 1.5},
		{"efficiency", g.Efficiency, 60},
		{"temperature", g.Temperature, 35},
	}

	for _, tt := range tests {
		got, err := tt.read(ctx)
		require.NoError(t, err, tt.name)
		assert.InDelta(t, tt.want, got, 1e-9, tt.name)
	}
}

func TestRead_NaNPropagates(t *testing.T) {
	g := New(withVelocities(math.NaN(), 1))

	v, err := g.Velocity(context.Background())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))
}

func TestRead_Idempotent(t *testing.T) {
	motors := withVelocities(1, 2, 3)
	motors[2].Fail("Velocity", errUnplugged)
	g := New(motors)
	ctx := context.Background()

	_, err1 := g.Velocity(ctx)
	_, err2 := g.Velocity(ctx)

	var g1, g2 *GroupError[float64]
	require.ErrorAs(t, err1, &g1)
	require.ErrorAs(t, err2, &g2)
	assert.Equal(t, g1.Indices(), g2.Indices())

	r1, _ := g1.Result()
	r2, _ := g2.Result()
	assert.Equal(t, r1, r2)
}

func TestRead_IndicesMatchConstructionOrder(t *testing.T) {
	tests := []struct {
		name    string
		failing []int
	}{
		{"first", []int{0}},
		{"last", []int{4}},
		{"middle pair", []int{1, 3}},
		{"all but one", []int{0, 1, 2, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			motors := withVelocities(1, 2, 3, 4, 5)
			for _, i := range tt.failing {
				motors[i].Fail("Velocity", errUnplugged)
			}

			_, err := New(motors).Velocity(context.Background())
			var gerr *GroupError[float64]
			require.ErrorAs(t, err, &gerr)
			if diff := cmp.Diff(tt.failing, gerr.Indices()); diff != "" {
				t.Errorf("Indices() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrite_IgnoreContinuesPastFailure(t *testing.T) {
	motors := withVelocities(0, 0, 0)
	motors[1].Fail("SetVoltage", errUnplugged)
	g := New(motors)

	err := g.SetVoltage(context.Background(), 5)

	for i, m := range motors {
		assert.Equal(t, 1, m.Called("SetVoltage"), "motor %d", i)
	}
	assert.Equal(t, motor.VoltageControl(5), motors[0].Target())
	assert.Equal(t, motor.VoltageControl(5), motors[2].Target())

	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	require.Len(t, werr.Errors, 1)
	assert.Equal(t, 1, werr.Errors[0].Index)
	assert.ErrorIs(t, err, errUnplugged)
	_, ok := werr.Result()
	assert.False(t, ok)
}

func TestWrite_StopHaltsAtFailure(t *testing.T) {
	motors := withVelocities(0, 0, 0)
	motors[1].Fail("Brake", errUnplugged)
	g := New(motors, WithWriteErrorStrategy(Stop))

	err := g.Brake(context.Background(), motor.Hold)

	assert.Equal(t, 1, motors[0].Called("Brake"))
	assert.Equal(t, 1, motors[1].Called("Brake"))
	assert.Equal(t, 0, motors[2].Called("Brake"), "motor after the failure must not be actuated")

	assert.Same(t, errUnplugged, err, "Stop returns the motor error unwrapped")
	var werr *WriteError
	assert.False(t, errors.As(err, &werr))
}

func TestWrite_AllSucceed(t *testing.T) {
	for _, s := range []WriteErrorStrategy{Ignore, Stop} {
		motors := withVelocities(0, 0)
		g := New(motors, WithWriteErrorStrategy(s))
		ctx := context.Background()

		assert.NoError(t, g.SetVelocity(ctx, 100), s.String())
		assert.NoError(t, g.SetPositionTarget(ctx, motor.FromDegrees(90), 200), s.String())
		for _, m := range motors {
			assert.Equal(t, motor.PositionControl(motor.FromDegrees(90), 200), m.Target())
		}
	}
}

func TestWrite_EveryOperationFansOut(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		op    string
		write func(g *Group[*sim.Motor]) error
	}{
		{"SetTarget", func(g *Group[*sim.Motor]) error { return g.SetTarget(ctx, motor.VoltageControl(1)) }},
		{"SetProfiledVelocity", func(g *Group[*sim.Motor]) error { return g.SetProfiledVelocity(ctx, 10) }},
		{"SetGearset", func(g *Group[*sim.Motor]) error { return g.SetGearset(ctx, motor.Blue) }},
		{"SetDirection", func(g *Group[*sim.Motor]) error { return g.SetDirection(ctx, motor.Reverse) }},
		{"ResetPosition", func(g *Group[*sim.Motor]) error { return g.ResetPosition(ctx) }},
		{"SetPosition", func(g *Group[*sim.Motor]) error { return g.SetPosition(ctx, motor.FromDegrees(5)) }},
		{"SetCurrentLimit", func(g *Group[*sim.Motor]) error { return g.SetCurrentLimit(ctx, 2.5) }},
		{"SetVoltageLimit", func(g *Group[*sim.Motor]) error { return g.SetVoltageLimit(ctx, 8) }},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			motors := withVelocities(0, 0, 0)
			require.NoError(t, tt.write(New(motors)))
			for i, m := range motors {
				assert.Equal(t, 1, m.Called(tt.op), "motor %d", i)
			}
		})
	}
}

func TestSetWriteErrorStrategy_AffectsLaterCalls(t *testing.T) {
	motors := withVelocities(0, 0, 0)
	motors[0].Fail("SetVoltage", errUnplugged)
	g := New(motors)
	ctx := context.Background()

	assert.Equal(t, Ignore, g.WriteErrorStrategy())
	_ = g.SetVoltage(ctx, 1)
	assert.Equal(t, 1, motors[2].Called("SetVoltage"))

	g.SetWriteErrorStrategy(Stop)
	_ = g.SetVoltage(ctx, 1)
	assert.Equal(t, 1, motors[2].Called("SetVoltage"), "Stop must not reach motor 2")
}

func TestEmptyGroup(t *testing.T) {
	g := New[*sim.Motor](nil)
	ctx := context.Background()

	assert.Equal(t, 0, g.Len())
	assert.NoError(t, g.SetVoltage(ctx, 5))
	assert.NoError(t, g.Brake(ctx, motor.Coast))
	assert.NoError(t, g.SetWriteErrorStrategy(Stop).SetVelocity(ctx, 1))

	_, err := g.Velocity(ctx)
	assert.ErrorIs(t, err, ErrNoDevices)
	_, err = g.Position(ctx)
	assert.ErrorIs(t, err, ErrNoDevices)
	_, err = g.IsOverTemperature(ctx)
	assert.ErrorIs(t, err, ErrNoDevices)

	assert.Zero(t, g.MaxVoltage())
	assert.False(t, g.HasV5())
	assert.NoError(t, g.Close())
}

func TestFlags(t *testing.T) {
	ctx := context.Background()

	t.Run("true wins over failures", func(t *testing.T) {
		a := sim.New(sim.WithFailure("IsOverTemperature", motor.ErrBusy))
		b := sim.New(sim.WithReadings(sim.Readings{OverTemperature: true}))
		hot, err := Of(a, b).IsOverTemperature(ctx)
		require.NoError(t, err)
		assert.True(t, hot)
		assert.Equal(t, 1, a.Called("IsOverTemperature"))
	})

	t.Run("all false", func(t *testing.T) {
		fault, err := Of(sim.New(), sim.New()).IsDriverFault(ctx)
		require.NoError(t, err)
		assert.False(t, fault)
	})

	t.Run("false with failure", func(t *testing.T) {
		a := sim.New()
		b := sim.New(sim.WithFailure("IsOverCurrent", motor.ErrBusy))
		_, err := Of(a, b).IsOverCurrent(ctx)

		var gerr *GroupError[bool]
		require.ErrorAs(t, err, &gerr)
		assert.True(t, gerr.HasBusyError())
		assert.False(t, gerr.HasPortError())
		v, ok := gerr.Result()
		assert.True(t, ok)
		assert.False(t, v)
	})

	t.Run("all fail", func(t *testing.T) {
		a := sim.New(sim.WithFailure("IsDriverOverCurrent", motor.ErrPort))
		_, err := Of(a).IsDriverOverCurrent(ctx)
		var gerr *GroupError[bool]
		require.ErrorAs(t, err, &gerr)
		assert.True(t, gerr.HasPortError())
		_, ok := gerr.Result()
		assert.False(t, ok)
	})
}

func TestCapabilities(t *testing.T) {
	g := Of(sim.New(sim.WithType(motor.EXP)), sim.New(sim.WithType(motor.V5)))
	assert.Equal(t, 12.0, g.MaxVoltage())
	assert.True(t, g.HasEXP())
	assert.True(t, g.HasV5())

	exp := Of(sim.New(sim.WithType(motor.EXP)))
	assert.Equal(t, 8.0, exp.MaxVoltage())
	assert.False(t, exp.HasV5())
}

func TestDevices(t *testing.T) {
	motors := withVelocities(1, 2)
	g := New(motors)

	devs := g.Devices()
	devs[0] = nil
	d, ok := g.Device(0)
	require.True(t, ok)
	assert.Same(t, motors[0], d, "Devices returns a copy")

	_, ok = g.Device(2)
	assert.False(t, ok)
	_, ok = g.Device(-1)
	assert.False(t, ok)
}

func TestClose(t *testing.T) {
	motors := withVelocities(1, 2)
	require.NoError(t, New(motors).Close())
	for _, m := range motors {
		assert.True(t, m.Closed())
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	motors := withVelocities(0, 0, 0)
	motors[0].Fail("SetVoltage", errUnplugged)
	g := New(motors, WithLogger(logger), WithWriteErrorStrategy(Stop))

	_ = g.SetVoltage(context.Background(), 1)
	assert.Contains(t, buf.String(), "halting")
	assert.Contains(t, buf.String(), "skipped=2")
}
