package motor

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestPosition_Conversions(t *testing.T) {
	tests := []struct {
		pos       Position
		degrees   float64
		rotations float64
	}{
		{FromDegrees(90), 90, 0.25},
		{FromRotations(2), 720, 2},
		{FromDegrees(-180), -180, -0.5},
		{FromDegrees(0), 0, 0},
	}

	for _, tt := range tests {
		if got := tt.pos.Degrees(); math.Abs(got-tt.degrees) > 1e-9 {
			t.Errorf("Degrees(%v) = %f, want %f", tt.pos, got, tt.degrees)
		}
		if got := tt.pos.Rotations(); math.Abs(got-tt.rotations) > 1e-9 {
			t.Errorf("Rotations(%v) = %f, want %f", tt.pos, got, tt.rotations)
		}
	}
}

func TestParseBrakeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    BrakeMode
		wantErr bool
	}{
		{"coast", Coast, false},
		{"Brake", Brake, false},
		{"HOLD", Hold, false},
		{"park", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseBrakeMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBrakeMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBrakeMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestType_MaxVoltage(t *testing.T) {
	if got := V5.MaxVoltage(); got != 12 {
		t.Errorf("V5.MaxVoltage() = %f, want 12", got)
	}
	if got := EXP.MaxVoltage(); got != 8 {
		t.Errorf("EXP.MaxVoltage() = %f, want 8", got)
	}
}

// recorder captures which setter Dispatch reached.
type recorder struct {
	Controller
	called string
	args   []any
}

func (r *recorder) SetVoltage(_ context.Context, v float64) error {
	r.called, r.args = "SetVoltage", []any{v}
	return nil
}

func (r *recorder) SetVelocity(_ context.Context, rpm int) error {
	r.called, r.args = "SetVelocity", []any{rpm}
	return nil
}

func (r *recorder) SetProfiledVelocity(_ context.Context, rpm int) error {
	r.called, r.args = "SetProfiledVelocity", []any{rpm}
	return nil
}

func (r *recorder) SetPositionTarget(_ context.Context, pos Position, rpm int) error {
	r.called, r.args = "SetPositionTarget", []any{pos, rpm}
	return nil
}

func (r *recorder) Brake(_ context.Context, mode BrakeMode) error {
	r.called, r.args = "Brake", []any{mode}
	return nil
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		target Control
		want   string
	}{
		{VoltageControl(5), "SetVoltage"},
		{VelocityControl(100), "SetVelocity"},
		{ProfiledVelocityControl(50), "SetProfiledVelocity"},
		{PositionControl(FromDegrees(90), 200), "SetPositionTarget"},
		{BrakeControl(Hold), "Brake"},
	}

	for _, tt := range tests {
		r := &recorder{}
		if err := Dispatch(context.Background(), r, tt.target); err != nil {
			t.Errorf("Dispatch(%v) error = %v", tt.target, err)
		}
		if r.called != tt.want {
			t.Errorf("Dispatch(%v) called %s, want %s", tt.target, r.called, tt.want)
		}
	}

	err := Dispatch(context.Background(), &recorder{}, Control{Kind: ControlKind(99)})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Dispatch(unknown) error = %v, want ErrUnsupported", err)
	}
}
