package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/gwillem/motorgroup/pkg/monitor"
	"github.com/gwillem/motorgroup/pkg/motor"
	"github.com/gwillem/motorgroup/pkg/motorgroup"
)

type DriveCommand struct {
	Strategy string `long:"strategy" choice:"ignore" choice:"stop" description:"Override the configured write error strategy"`
	Yes      bool   `short:"y" long:"yes" description:"Do not ask for confirmation"`

	Voltage  DriveVoltageCommand  `command:"voltage" description:"Set the output voltage (use -- before negative values)"`
	Velocity DriveVelocityCommand `command:"velocity" description:"Set a velocity target in RPM (use -- before negative values)"`
	Profiled DriveProfiledCommand `command:"profiled" description:"Set a velocity target with acceleration profiling"`
	Position DrivePositionCommand `command:"position" description:"Move to an angle in degrees (use -- before negative values)"`
	Brake    DriveBrakeCommand    `command:"brake" description:"Stop with a brake mode (coast, brake, hold)"`
	Stop     DriveStopCommand     `command:"stop" description:"Stop all motors with the brake mode"`
	Zero     DriveZeroCommand     `command:"zero" description:"Make the current position zero"`
}

type DriveVoltageCommand struct {
	Args struct {
		Volts float64 `positional-arg-name:"VOLTS"`
	} `positional-args:"yes" required:"yes"`
}

func (c *DriveVoltageCommand) Execute(args []string) error {
	return runTarget(motor.VoltageControl(c.Args.Volts))
}

type DriveVelocityCommand struct {
	Args struct {
		RPM int `positional-arg-name:"RPM"`
	} `positional-args:"yes" required:"yes"`
}

func (c *DriveVelocityCommand) Execute(args []string) error {
	return runTarget(motor.VelocityControl(c.Args.RPM))
}

type DriveProfiledCommand struct {
	Args struct {
		RPM int `positional-arg-name:"RPM"`
	} `positional-args:"yes" required:"yes"`
}

func (c *DriveProfiledCommand) Execute(args []string) error {
	return runTarget(motor.ProfiledVelocityControl(c.Args.RPM))
}

type DrivePositionCommand struct {
	RPM  int `long:"rpm" default:"0" description:"Travel speed, 0 for full speed"`
	Args struct {
		Degrees float64 `positional-arg-name:"DEGREES"`
	} `positional-args:"yes" required:"yes"`
}

func (c *DrivePositionCommand) Execute(args []string) error {
	return runTarget(motor.PositionControl(motor.FromDegrees(c.Args.Degrees), c.RPM))
}

type DriveBrakeCommand struct {
	Args struct {
		Mode string `positional-arg-name:"MODE"`
	} `positional-args:"yes" required:"yes"`
}

func (c *DriveBrakeCommand) Execute(args []string) error {
	mode, err := motor.ParseBrakeMode(c.Args.Mode)
	if err != nil {
		return err
	}
	return runTarget(motor.BrakeControl(mode))
}

type DriveStopCommand struct{}

func (c *DriveStopCommand) Execute(args []string) error {
	return runTarget(motor.BrakeControl(motor.Brake))
}

type DriveZeroCommand struct{}

func (c *DriveZeroCommand) Execute(args []string) error {
	return runDrive("reset position", func(ctx context.Context, g *motorgroup.Shared[motor.Device]) error {
		return g.ResetPosition(ctx)
	})
}

func runTarget(target motor.Control) error {
	return runDrive(target.String(), func(ctx context.Context, g *motorgroup.Shared[motor.Device]) error {
		return g.SetTarget(ctx, target)
	})
}

func runDrive(what string, op func(context.Context, *motorgroup.Shared[motor.Device]) error) error {
	ctx := context.Background()

	s, err := openGroup(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.Drive.Strategy != "" {
		strategy, err := motorgroup.ParseWriteErrorStrategy(opts.Drive.Strategy)
		if err != nil {
			return err
		}
		s.group.SetWriteErrorStrategy(strategy)
	}

	fmt.Println(headerStyle.Render("motorgroup drive") + dimStyle.Render(fmt.Sprintf("  %s, strategy %s", s.source, s.group.WriteErrorStrategy())))
	fmt.Println()

	if !opts.Drive.Yes && opts.Simulate == 0 {
		confirmed, err := confirm(fmt.Sprintf("Send %s to %d motors on %s?", what, s.group.Len(), s.source))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	writeErr := op(ctx, s.group)
	fmt.Println(renderWriteResult(s, what, writeErr))
	fmt.Println()

	snap := monitor.New(s.group, monitor.Config{}).Poll(ctx)
	fmt.Println(subHeaderStyle.Render("Group telemetry"))
	fmt.Println(renderSnapshot(s, snap))

	var werr *motorgroup.WriteError
	if errors.As(writeErr, &werr) {
		return fmt.Errorf("%s failed on %d of %d motors", what, len(werr.Errors), werr.Total)
	}
	return writeErr
}

func confirm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Send").
				Negative("Cancel").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
