package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/motorgroup/pkg/config"
	"github.com/gwillem/motorgroup/pkg/motor"
	"github.com/gwillem/motorgroup/pkg/motor/sim"
	"github.com/gwillem/motorgroup/pkg/motorgroup"
	"github.com/gwillem/motorgroup/pkg/servo"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// session is an open motor group and whatever backs it.
type session struct {
	group   *motorgroup.Shared[motor.Device]
	names   []string
	source  string
	hz      int
	closeFn func() error
}

func (s *session) Close() error {
	err := s.group.Close()
	if s.closeFn != nil {
		err = errors.Join(err, s.closeFn())
	}
	return err
}

// name returns the configured name of the motor at index i.
func (s *session) name(i int) string {
	if i >= 0 && i < len(s.names) {
		return s.names[i]
	}
	return fmt.Sprintf("motor %d", i)
}

func newLogger() *slog.Logger {
	if !opts.Verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadConfig reads the configuration file. A missing file is not an error
// in simulate mode.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigFrom(opts.Config)
	if err != nil {
		if opts.Simulate > 0 && errors.Is(err, os.ErrNotExist) {
			return &config.Config{}, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no configuration found at %s, run 'motorgroup setup' first", opts.Config)
		}
		return nil, err
	}
	return cfg, nil
}

// openGroup opens the configured motors, or simulated ones with --simulate.
func openGroup(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	groupOpts := []motorgroup.Option{
		motorgroup.WithWriteErrorStrategy(cfg.WriteErrorStrategy),
		motorgroup.WithLogger(newLogger()),
	}

	if opts.Simulate > 0 {
		devices, names := simulatedMotors(opts.Simulate, opts.Unplug)
		return &session{
			group:  motorgroup.NewShared(motorgroup.New(devices, groupOpts...)),
			names:  names,
			source: fmt.Sprintf("%d simulated motors", len(devices)),
			hz:     cfg.PollHz(),
		}, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", opts.Config, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	bus, err := servo.Open(ctx, cfg.BusConfig(), cfg.ServoSpecs())
	if err != nil {
		return nil, err
	}

	devices := make([]motor.Device, len(bus.Motors))
	names := make([]string, len(bus.Motors))
	for i, m := range bus.Motors {
		devices[i] = m
		names[i] = m.Name()
	}
	return &session{
		group:   motorgroup.NewShared(motorgroup.New(devices, groupOpts...)),
		names:   names,
		source:  cfg.Port,
		hz:      cfg.PollHz(),
		closeFn: bus.Close,
	}, nil
}

// simulatedMotors builds n V5 motors with slightly different telemetry so
// averages are visible. Indices in unplug start disconnected.
func simulatedMotors(n int, unplug []int) ([]motor.Device, []string) {
	devices := make([]motor.Device, n)
	names := make([]string, n)
	for i := range n {
		m := sim.New(sim.WithReadings(sim.Readings{
			Voltage:     12 - 0.1*float64(i),
			Temperature: 30 + float64(i),
		}))
		for _, u := range unplug {
			if u == i {
				m.Disconnect()
			}
		}
		devices[i] = m
		names[i] = fmt.Sprintf("sim%d", i+1)
	}
	return devices, names
}
