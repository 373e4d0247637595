// Package monitor polls a motor group and publishes averaged telemetry.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gwillem/motorgroup/pkg/motor"
	"github.com/gwillem/motorgroup/pkg/motorgroup"
)

// Group is the part of a motor group the monitor reads.
// *motorgroup.Shared satisfies it.
type Group interface {
	Len() int
	Velocity(ctx context.Context) (float64, error)
	Position(ctx context.Context) (motor.Position, error)
	Voltage(ctx context.Context) (float64, error)
	Temperature(ctx context.Context) (float64, error)
	IsOverTemperature(ctx context.Context) (bool, error)
	IsOverCurrent(ctx context.Context) (bool, error)
	IsDriverFault(ctx context.Context) (bool, error)
	IsDriverOverCurrent(ctx context.Context) (bool, error)
	Brake(ctx context.Context, mode motor.BrakeMode) error
}

// Reading is one averaged telemetry value.
type Reading struct {
	Value float64
	// Valid is set when at least one motor answered.
	Valid bool
	// Partial is set when some, but not all, motors failed.
	Partial bool
	// Failed lists the indices of the motors that did not answer.
	Failed []int
	Err    error
}

// Flag is one group-wide fault flag.
type Flag struct {
	Set    bool
	Valid  bool
	Failed []int
}

// Faults holds the group's fault flags.
type Faults struct {
	OverTemperature   Flag
	OverCurrent       Flag
	DriverFault       Flag
	DriverOverCurrent Flag
}

// Any returns true if any flag is set.
func (f Faults) Any() bool {
	return f.OverTemperature.Set || f.OverCurrent.Set || f.DriverFault.Set || f.DriverOverCurrent.Set
}

// Snapshot represents the group's telemetry at one instant.
type Snapshot struct {
	Motors      int
	Velocity    Reading
	Position    Reading
	Voltage     Reading
	Temperature Reading
	Faults      Faults
	Timestamp   time.Time
}

// MaxHz is the fastest poll rate a Monitor runs at.
const MaxHz = 1000

// Config holds configuration for the monitor.
type Config struct {
	Hz int
	// BrakeOnStop brakes the group when the poll loop ends.
	BrakeOnStop bool
}

// Monitor manages the telemetry poll loop.
type Monitor struct {
	group       Group
	hz          int
	brakeOnStop bool

	mu      sync.Mutex
	running bool
	failed  map[string][]int
	faults  map[string]bool
	stateCh chan Snapshot
	logCh   chan string
}

// New creates a new monitor for group.
func New(group Group, cfg Config) *Monitor {
	if cfg.Hz <= 0 {
		cfg.Hz = 20
	}
	cfg.Hz = min(cfg.Hz, MaxHz)
	return &Monitor{
		group:       group,
		hz:          cfg.Hz,
		brakeOnStop: cfg.BrakeOnStop,
		failed:      make(map[string][]int),
		faults:      make(map[string]bool),
		stateCh:     make(chan Snapshot, 1),
		logCh:       make(chan string, 10),
	}
}

// States returns a channel that receives snapshots. Only the latest
// snapshot is kept if the reader falls behind.
func (m *Monitor) States() <-chan Snapshot {
	return m.stateCh
}

// Logs returns a channel that receives log messages.
func (m *Monitor) Logs() <-chan string {
	return m.logCh
}

// Hz returns the poll frequency.
func (m *Monitor) Hz() int {
	return m.hz
}

func (m *Monitor) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case m.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Start runs the poll loop until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("already running")
	}
	m.running = true
	m.mu.Unlock()

	m.log("Monitoring %d motors at %d Hz", m.group.Len(), m.hz)

	ticker := time.NewTicker(time.Second / time.Duration(m.hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return ctx.Err()
		case <-ticker.C:
			m.sendState(m.Poll(ctx))
		}
	}
}

// Poll reads every telemetry value once.
func (m *Monitor) Poll(ctx context.Context) Snapshot {
	s := Snapshot{Motors: m.group.Len()}

	v, err := m.group.Velocity(ctx)
	s.Velocity = reading(m, "velocity", v, err)
	p, err := m.group.Position(ctx)
	s.Position = reading(m, "position", p, err)
	v, err = m.group.Voltage(ctx)
	s.Voltage = reading(m, "voltage", v, err)
	v, err = m.group.Temperature(ctx)
	s.Temperature = reading(m, "temperature", v, err)

	s.Faults.OverTemperature = m.flag(ctx, "over temperature", m.group.IsOverTemperature)
	s.Faults.OverCurrent = m.flag(ctx, "over current", m.group.IsOverCurrent)
	s.Faults.DriverFault = m.flag(ctx, "driver fault", m.group.IsDriverFault)
	s.Faults.DriverOverCurrent = m.flag(ctx, "driver over current", m.group.IsDriverOverCurrent)

	s.Timestamp = time.Now()
	return s
}

func reading[T ~float64](m *Monitor, name string, v T, err error) Reading {
	if err == nil {
		m.track(name, nil)
		return Reading{Value: float64(v), Valid: true}
	}

	r := Reading{Err: err}
	var gerr *motorgroup.GroupError[T]
	if errors.As(err, &gerr) {
		r.Failed = gerr.Indices()
		avg, ok := gerr.Result()
		r.Value, r.Valid, r.Partial = float64(avg), ok, ok
	}
	m.track(name, r.Failed)
	return r
}

func (m *Monitor) flag(ctx context.Context, name string, read func(context.Context) (bool, error)) Flag {
	set, err := read(ctx)
	f := Flag{Set: set, Valid: err == nil}
	var gerr *motorgroup.GroupError[bool]
	if errors.As(err, &gerr) {
		f.Failed = gerr.Indices()
		_, f.Valid = gerr.Result()
	}
	m.track(name, f.Failed)
	m.trackFault(name, set)
	return f
}

// track logs when the set of motors failing a read changes.
func (m *Monitor) track(name string, failed []int) {
	m.mu.Lock()
	prev := m.failed[name]
	m.failed[name] = failed
	m.mu.Unlock()

	if slices.Equal(prev, failed) {
		return
	}
	if len(failed) == 0 {
		m.log("%s: all motors answering", name)
		return
	}
	m.log("%s: motors %v not answering", name, failed)
}

func (m *Monitor) trackFault(name string, set bool) {
	m.mu.Lock()
	prev := m.faults[name]
	m.faults[name] = set
	m.mu.Unlock()

	switch {
	case set && !prev:
		m.log("Fault raised: %s", name)
	case !set && prev:
		m.log("Fault cleared: %s", name)
	}
}

func (m *Monitor) sendState(s Snapshot) {
	select {
	case m.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-m.stateCh:
		default:
		}
		m.stateCh <- s
	}
}

func (m *Monitor) shutdown() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()

	if m.brakeOnStop {
		if err := m.group.Brake(context.Background(), motor.Brake); err != nil {
			m.log("Warning: failed to brake: %v", err)
		} else {
			m.log("Motors braked")
		}
	}
	m.log("Monitor stopped")
}
