package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/gwillem/motorgroup/pkg/config"
	"github.com/gwillem/motorgroup/pkg/motor"
	"github.com/gwillem/motorgroup/pkg/motorgroup"
	"github.com/gwillem/motorgroup/pkg/servo"
)

type SetupCommand struct {
	MaxID     int  `long:"max-id" default:"12" description:"Last servo ID to probe"`
	Calibrate bool `long:"calibrate" description:"Record each motor's range of motion"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("motorgroup setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━"))
	fmt.Println()

	ctx := context.Background()
	fmt.Println("Scanning for servos...")
	results, err := (&ScanCommand{Baud: servo.DefaultBaudRate, MinID: 1, MaxID: c.MaxID}).scan(ctx)
	if err != nil {
		return err
	}

	var candidates []portScan
	for _, r := range results {
		if r.err == nil && len(r.servos) > 0 {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		fmt.Println("No servos found.")
		fmt.Println("Make sure your motors are connected and powered on.")
		return nil
	}

	picked, err := pickPort(candidates)
	if err != nil {
		return err
	}
	ids, err := pickMotors(picked)
	if err != nil {
		return err
	}
	strategy, err := pickStrategy()
	if err != nil {
		return err
	}

	cfg := &config.Config{
		Port:               picked.port,
		BaudRate:           servo.DefaultBaudRate,
		WriteErrorStrategy: strategy,
		Hz:                 config.DefaultHz,
	}
	for _, id := range ids {
		cfg.Motors = append(cfg.Motors, config.MotorConfig{
			Name:        fmt.Sprintf("motor%d", id),
			ID:          id,
			Calibration: servo.Calibration{HomingOffset: servo.StepsPerRevolution / 2},
		})
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if c.Calibrate {
		if opts.Simulate > 0 {
			fmt.Println(dimStyle.Render("Simulated motors need no calibration, skipping."))
		} else if err := calibrate(ctx, cfg); err != nil {
			return err
		}
	}

	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Watch the group with: " + headerStyle.Render("motorgroup monitor"))
	return nil
}

func pickPort(candidates []portScan) (portScan, error) {
	if len(candidates) == 1 {
		fmt.Printf("Using %s (%d servos)\n\n", candidates[0].port, len(candidates[0].servos))
		return candidates[0], nil
	}

	options := make([]huh.Option[int], len(candidates))
	for i, c := range candidates {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%d servos)", c.port, len(c.servos)), i)
	}
	var idx int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Which port is the group on?").
				Options(options...).
				Value(&idx),
		),
	)
	if err := form.Run(); err != nil {
		return portScan{}, err
	}
	return candidates[idx], nil
}

func pickMotors(p portScan) ([]int, error) {
	options := make([]huh.Option[int], len(p.servos))
	for i, s := range p.servos {
		options[i] = huh.NewOption(fmt.Sprintf("ID %d (%s)", s.ID, s.Model), s.ID).Selected(true)
	}
	var ids []int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Which motors belong to the group?").
				Description("Group order follows servo ID").
				Options(options...).
				Value(&ids).
				Validate(func(ids []int) error {
					if len(ids) == 0 {
						return errors.New("pick at least one motor")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return ids, nil
}

func pickStrategy() (motorgroup.WriteErrorStrategy, error) {
	strategy := motorgroup.Ignore
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[motorgroup.WriteErrorStrategy]().
				Title("When a motor fails a command").
				Options(
					huh.NewOption("Keep going with the other motors (ignore)", motorgroup.Ignore),
					huh.NewOption("Stop at the failing motor (stop)", motorgroup.Stop),
				).
				Value(&strategy),
		),
	)
	if err := form.Run(); err != nil {
		return strategy, err
	}
	return strategy, nil
}

// calibrate records the range of motion of every configured motor and
// centres its homing offset in that range.
func calibrate(ctx context.Context, cfg *config.Config) error {
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Record range of motion ━━━"))
	fmt.Println("Move each motor to its minimum AND maximum positions.")
	fmt.Println()

	openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	bus, err := servo.Open(openCtx, cfg.BusConfig(), cfg.ServoSpecs())
	if err != nil {
		return err
	}
	defer bus.Close()

	devices := make([]motor.Device, len(bus.Motors))
	for i, m := range bus.Motors {
		devices[i] = m
	}
	// Release torque so the motors can be moved by hand.
	if err := motorgroup.New(devices).Brake(ctx, motor.Coast); err != nil {
		return fmt.Errorf("release torque: %w", err)
	}

	model := newCalibrationModel(bus.Motors)
	model.poll(ctx)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("run calibration: %w", err)
	}

	skipped, err := final.(calibrationModel).applyTo(cfg.Motors)
	if err != nil {
		return err
	}
	for _, name := range skipped {
		fmt.Println(warnStyle.Render("! " + name + " never answered, keeping default calibration"))
	}
	fmt.Println("Motors calibrated.")
	return nil
}

var errCalibrationCancelled = errors.New("calibration cancelled")

// applyTo stores the recorded ranges in motors. Motors that were never read
// keep their calibration and are returned by name.
func (m calibrationModel) applyTo(motors []config.MotorConfig) ([]string, error) {
	if !m.done {
		return nil, errCalibrationCancelled
	}
	var skipped []string
	for i := range motors {
		if i >= len(m.seen) || !m.seen[i] {
			skipped = append(skipped, motors[i].Name)
			continue
		}
		motors[i].Calibration = m.calibration(i)
	}
	return skipped, nil
}

// Calibration TUI model
type calibrationModel struct {
	motors   []*servo.Motor
	cur      []int
	min      []int
	max      []int
	seen     []bool
	done     bool // confirmed with enter
	quitting bool
}

type tickMsg time.Time

func newCalibrationModel(motors []*servo.Motor) calibrationModel {
	return calibrationModel{
		motors: motors,
		cur:    make([]int, len(motors)),
		min:    make([]int, len(motors)),
		max:    make([]int, len(motors)),
		seen:   make([]bool, len(motors)),
	}
}

// poll reads every motor and widens the recorded ranges.
func (m calibrationModel) poll(ctx context.Context) {
	for i, mot := range m.motors {
		raw, err := mot.Raw(ctx)
		if err != nil {
			continue
		}
		m.cur[i] = raw
		if !m.seen[i] {
			m.min[i], m.max[i], m.seen[i] = raw, raw, true
			continue
		}
		m.min[i] = min(m.min[i], raw)
		m.max[i] = max(m.max[i], raw)
	}
}

func (m calibrationModel) calibration(i int) servo.Calibration {
	return servo.Calibration{
		HomingOffset: (m.min[i] + m.max[i]) / 2,
		RangeMin:     m.min[i],
		RangeMax:     m.max[i],
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m calibrationModel) Init() tea.Cmd {
	return tick()
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.done = true
			m.quitting = true
			return m, tea.Quit
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.poll(context.Background())
		return m, tick()
	}

	return m, nil
}

func (m calibrationModel) View() string {
	if m.quitting {
		return ""
	}

	rows := make([][]string, len(m.motors))
	statuses := make([]status, len(m.motors))
	for i, mot := range m.motors {
		rangeSize := m.max[i] - m.min[i]
		rows[i] = []string{
			mot.Name(),
			fmt.Sprint(m.cur[i]),
			fmt.Sprint(m.min[i]),
			fmt.Sprint(m.max[i]),
			fmt.Sprint(rangeSize),
		}
		if rangeSize <= 500 {
			statuses[i] = statusFailed
		}
	}

	var sb strings.Builder
	sb.WriteString(newTable([]string{"Motor", "Current", "Min", "Max", "Range"}, rows, statuses, 4).Render())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Press Enter when done, q to cancel"))
	return sb.String()
}
