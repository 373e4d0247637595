package motorgroup

import "fmt"

// outcome is the result of one motor's read.
type outcome[T any] struct {
	value T
	err   error
}

// mean returns the arithmetic mean of vals. vals must not be empty.
func mean[T ~float64](vals []T) T {
	var sum T
	for _, v := range vals {
		sum += v
	}
	return sum / T(len(vals))
}

// reduceMean folds per-motor readings into their average. Any failure turns
// the result into a *GroupError carrying the failed entries and, if at least
// one motor answered, the average of the successes.
func reduceMean[T ~float64](op string, outcomes []outcome[T]) (T, error) {
	var zero T
	if len(outcomes) == 0 {
		return zero, fmt.Errorf("%s: %w", op, ErrNoDevices)
	}

	values := make([]T, 0, len(outcomes))
	var errs []MotorError
	for i, o := range outcomes {
		if o.err != nil {
			errs = append(errs, MotorError{Index: i, Err: o.err})
			continue
		}
		values = append(values, o.value)
	}

	if len(errs) == 0 {
		return mean(values), nil
	}
	gerr := &GroupError[T]{Op: op, Total: len(outcomes), Errors: errs}
	if len(values) > 0 {
		gerr.result, gerr.ok = mean(values), true
	}
	return zero, gerr
}

// reduceAny folds per-motor flags. A single true reading wins over any
// failures; otherwise failures are reported with the OR of the answers.
func reduceAny(op string, outcomes []outcome[bool]) (bool, error) {
	if len(outcomes) == 0 {
		return false, fmt.Errorf("%s: %w", op, ErrNoDevices)
	}

	answered := 0
	var errs []MotorError
	for i, o := range outcomes {
		if o.err != nil {
			errs = append(errs, MotorError{Index: i, Err: o.err})
			continue
		}
		if o.value {
			return true, nil
		}
		answered++
	}

	if len(errs) == 0 {
		return false, nil
	}
	return false, &GroupError[bool]{
		Op:     op,
		Total:  len(outcomes),
		Errors: errs,
		ok:     answered > 0,
	}
}

// writeResult turns the failures collected under Ignore into an error.
func writeResult(op string, total int, errs []MotorError) error {
	if len(errs) == 0 {
		return nil
	}
	return &WriteError{Op: op, Total: total, Errors: errs}
}
