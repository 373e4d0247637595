// Package motorgroup controls a set of motors as if they were one.
//
// A Group fans every command out to its motors in index order and folds the
// per-motor results into a single outcome.
//
// # Read errors
//
// Reads (velocity, position, temperature, ...) always query every motor. If all
// of them answer, the average is returned. If any fail, the read returns a
// *GroupError listing each failure; GroupError.Result yields the average of
// the motors that did answer.
//
// # Write errors
//
// Writes follow the group's WriteErrorStrategy. Under Ignore (the default)
// every motor is attempted and failures are reported together as a
// *WriteError. Under Stop the first failure is returned unwrapped and the
// remaining motors are not touched.
package motorgroup

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/gwillem/motorgroup/pkg/motor"
)

// Group is an ordered set of motors controlled together.
//
// A Group is not safe for concurrent use; see Shared.
type Group[D motor.Device] struct {
	devices  []D
	strategy WriteErrorStrategy
	logger   *slog.Logger
}

// Option configures a Group.
type Option func(*options)

type options struct {
	strategy WriteErrorStrategy
	logger   *slog.Logger
}

// WithWriteErrorStrategy sets the initial write error strategy.
func WithWriteErrorStrategy(s WriteErrorStrategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithLogger sets the logger used to report motor failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a group that takes ownership of devices. The slice may be empty.
func New[D motor.Device](devices []D, opts ...Option) *Group[D] {
	o := options{strategy: Ignore}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Group[D]{
		devices:  devices,
		strategy: o.strategy,
		logger:   o.logger,
	}
}

// Of creates a group from the given devices with default options.
func Of[D motor.Device](devices ...D) *Group[D] {
	return New(devices)
}

// SetWriteErrorStrategy changes how subsequent writes handle failures.
func (g *Group[D]) SetWriteErrorStrategy(s WriteErrorStrategy) *Group[D] {
	g.strategy = s
	return g
}

// WriteErrorStrategy returns the current write error strategy.
func (g *Group[D]) WriteErrorStrategy() WriteErrorStrategy {
	return g.strategy
}

// Len returns the number of motors in the group.
func (g *Group[D]) Len() int { return len(g.devices) }

// Devices returns the motors in group order.
func (g *Group[D]) Devices() []D {
	out := make([]D, len(g.devices))
	copy(out, g.devices)
	return out
}

// Device returns the motor at index i.
func (g *Group[D]) Device(i int) (D, bool) {
	if i < 0 || i >= len(g.devices) {
		var zero D
		return zero, false
	}
	return g.devices[i], true
}

// Close closes every motor that implements io.Closer.
func (g *Group[D]) Close() error {
	var errs []error
	for _, d := range g.devices {
		if c, ok := any(d).(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// write runs fn on every motor according to the write error strategy.
func (g *Group[D]) write(ctx context.Context, op string, fn func(motor.Device) error) error {
	var errs []MotorError
	for i, d := range g.devices {
		err := fn(d)
		if err == nil {
			continue
		}
		if g.strategy == Stop {
			g.logger.WarnContext(ctx, "motor write failed, halting",
				"op", op, "index", i, "skipped", len(g.devices)-i-1, "err", err)
			return err
		}
		g.logger.DebugContext(ctx, "motor write failed", "op", op, "index", i, "err", err)
		errs = append(errs, MotorError{Index: i, Err: err})
	}
	return writeResult(op, len(g.devices), errs)
}

// collect reads from every motor in order without stopping on failures.
func collect[D motor.Device, T any](ctx context.Context, g *Group[D], op string, read func(motor.Device, context.Context) (T, error)) []outcome[T] {
	out := make([]outcome[T], len(g.devices))
	for i, d := range g.devices {
		v, err := read(d, ctx)
		if err != nil {
			g.logger.DebugContext(ctx, "motor read failed", "op", op, "index", i, "err", err)
		}
		out[i] = outcome[T]{value: v, err: err}
	}
	return out
}

func readMean[D motor.Device, T ~float64](ctx context.Context, g *Group[D], op string, read func(motor.Device, context.Context) (T, error)) (T, error) {
	return reduceMean(op, collect(ctx, g, op, read))
}

func readAny[D motor.Device](ctx context.Context, g *Group[D], op string, read func(motor.Device, context.Context) (bool, error)) (bool, error) {
	return reduceAny(op, collect(ctx, g, op, read))
}
