// Package motorgroup drives a set of motors as if they were one.
//
// Commands fan out to every motor in group order. Reads return the mean of
// all motors, and a failure on some motors still yields the mean of the rest
// through a GroupError. Writes either keep going past a failed motor or halt
// on it, depending on the group's write error strategy.
//
// # Installation
//
//	go install github.com/gwillem/motorgroup/cmd/motorgroup@latest
//
// # Usage
//
// First, run setup to find the servo bus and pick the motors:
//
//	motorgroup setup
//
// Then drive or watch the group:
//
//	motorgroup drive --strategy stop position 90
//	motorgroup monitor
//
// Every command runs against simulated motors with --simulate N.
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/motorgroup: CLI with scan, setup, drive and monitor commands
//   - pkg/motor: Single motor capability and value types
//   - pkg/motor/sim: In-memory motor for tests and hardware-free runs
//   - pkg/motorgroup: Group fan-out, averaging and error aggregation
//   - pkg/servo: Feetech serial bus servos as motors
//   - pkg/config: Group configuration files
//   - pkg/monitor: Telemetry poll loop
package motorgroup
