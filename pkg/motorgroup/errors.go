package motorgroup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gwillem/motorgroup/pkg/motor"
)

// ErrNoDevices is returned by reads on a group without motors.
var ErrNoDevices = errors.New("motor group has no motors")

// MotorError is the failure of a single motor, tagged with its index in the
// group.
type MotorError struct {
	Index int
	Err   error
}

func (e MotorError) Error() string {
	return fmt.Sprintf("motor %d: %v", e.Index, e.Err)
}

func (e MotorError) Unwrap() error { return e.Err }

// GroupError reports that one or more motors in a group failed an operation.
//
// It always holds at least one MotorError, ordered by motor index. For reads,
// Result returns the average of the motors that did answer.
type GroupError[T any] struct {
	// Op names the group operation, e.g. "velocity" or "set_voltage".
	Op string
	// Total is the number of motors the operation ran over.
	Total int
	// Errors holds one entry per failing motor.
	Errors []MotorError

	result T
	ok     bool
}

// WriteError is the aggregate error returned by writes under Ignore. Writes
// carry no value, so Result always reports false.
type WriteError = GroupError[struct{}]

// Result returns the value reduced from the motors that succeeded. The second
// return value is false when no motor succeeded.
func (e *GroupError[T]) Result() (T, bool) {
	return e.result, e.ok
}

// First returns the failure of the lowest-indexed motor.
func (e *GroupError[T]) First() MotorError {
	return e.Errors[0]
}

// Indices returns the indices of the motors that failed.
func (e *GroupError[T]) Indices() []int {
	out := make([]int, len(e.Errors))
	for i, me := range e.Errors {
		out[i] = me.Index
	}
	return out
}

// Has reports whether any motor failed with an error matching target.
func (e *GroupError[T]) Has(target error) bool {
	for _, me := range e.Errors {
		if errors.Is(me.Err, target) {
			return true
		}
	}
	return false
}

// HasBusyError reports whether a motor could not be reached to read flags.
func (e *GroupError[T]) HasBusyError() bool { return e.Has(motor.ErrBusy) }

// HasPortError reports whether a motor is not connected to its port.
func (e *GroupError[T]) HasPortError() bool { return e.Has(motor.ErrPort) }

func (e *GroupError[T]) Error() string {
	var sb strings.Builder
	sb.WriteString("motor group")
	if e.Op != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Op)
	}
	fmt.Fprintf(&sb, ": %d of %d motors failed: ", len(e.Errors), e.Total)
	for i, me := range e.Errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(me.Error())
	}
	return sb.String()
}

// Unwrap exposes the per-motor errors to errors.Is and errors.As.
func (e *GroupError[T]) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, me := range e.Errors {
		out[i] = me
	}
	return out
}

// ResultOf extracts the partial result from a read error. It returns false
// when err is not a *GroupError[T] or when no motor answered.
func ResultOf[T any](err error) (T, bool) {
	var gerr *GroupError[T]
	if errors.As(err, &gerr) {
		return gerr.Result()
	}
	var zero T
	return zero, false
}
