package motorgroup

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/motorgroup/pkg/motor"
)

func TestGroupError_Error(t *testing.T) {
	err := &GroupError[float64]{
		Op:    "velocity",
		Total: 3,
		Errors: []MotorError{
			{Index: 0, Err: motor.ErrPort},
			{Index: 2, Err: errors.New("timeout")},
		},
	}
	assert.Equal(t,
		"motor group velocity: 2 of 3 motors failed: motor 0: motor not connected; motor 2: timeout",
		err.Error())
}

func TestGroupError_Unwrap(t *testing.T) {
	wrapped := fmt.Errorf("read bus: %w", motor.ErrBusy)
	err := error(&WriteError{Op: "brake", Total: 2, Errors: []MotorError{{Index: 1, Err: wrapped}}})

	assert.ErrorIs(t, err, motor.ErrBusy)
	assert.NotErrorIs(t, err, motor.ErrPort)

	var me MotorError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 1, me.Index)
}

func TestResultOf(t *testing.T) {
	partial := &GroupError[float64]{Total: 2, Errors: []MotorError{{Index: 0, Err: motor.ErrPort}}, result: 4, ok: true}

	v, ok := ResultOf[float64](fmt.Errorf("poll: %w", partial))
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	_, ok = ResultOf[float64](errors.New("other"))
	assert.False(t, ok)

	_, ok = ResultOf[motor.Position](partial)
	assert.False(t, ok, "type parameter must match the read")
}

func TestWriteErrorStrategy_Default(t *testing.T) {
	var s WriteErrorStrategy
	assert.Equal(t, Ignore, s)
	assert.Equal(t, Ignore, New[motor.Device](nil).WriteErrorStrategy())
}

func TestParseWriteErrorStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    WriteErrorStrategy
		wantErr bool
	}{
		{"", Ignore, false},
		{"ignore", Ignore, false},
		{" Stop ", Stop, false},
		{"halt", Ignore, true},
	}

	for _, tt := range tests {
		got, err := ParseWriteErrorStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWriteErrorStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWriteErrorStrategy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWriteErrorStrategy_JSON(t *testing.T) {
	type cfg struct {
		Strategy WriteErrorStrategy `json:"strategy"`
	}

	data, err := json.Marshal(cfg{Strategy: Stop})
	require.NoError(t, err)
	assert.JSONEq(t, `{"strategy":"stop"}`, string(data))

	var got cfg
	require.NoError(t, json.Unmarshal([]byte(`{"strategy":"ignore"}`), &got))
	assert.Equal(t, Ignore, got.Strategy)

	assert.Error(t, json.Unmarshal([]byte(`{"strategy":"maybe"}`), &got))
}
