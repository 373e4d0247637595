package motorgroup

import (
	"fmt"
	"strings"
)

// WriteErrorStrategy determines what a group does when a motor fails a write.
// "Writing" means setting a target, voltage, gearset, brake mode and so on.
type WriteErrorStrategy int

const (
	// Ignore keeps writing to the remaining motors after a failure and
	// reports every failure once all motors have been attempted. Use it where
	// motors are redundant, e.g. a drivetrain that should keep moving when a
	// single motor is unplugged. This is the default.
	Ignore WriteErrorStrategy = iota
	// Stop aborts on the first failure and returns that motor's error as is.
	// Motors after the failing one are left untouched.
	Stop
)

func (s WriteErrorStrategy) String() string {
	switch s {
	case Ignore:
		return "ignore"
	case Stop:
		return "stop"
	}
	return fmt.Sprintf("WriteErrorStrategy(%d)", int(s))
}

// ParseWriteErrorStrategy parses "ignore" or "stop". The empty string yields
// the default strategy.
func ParseWriteErrorStrategy(s string) (WriteErrorStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return Ignore, nil
	case "stop":
		return Stop, nil
	}
	return Ignore, fmt.Errorf("unknown write error strategy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s WriteErrorStrategy) MarshalText() ([]byte, error) {
	if s != Ignore && s != Stop {
		return nil, fmt.Errorf("invalid write error strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *WriteErrorStrategy) UnmarshalText(text []byte) error {
	v, err := ParseWriteErrorStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
