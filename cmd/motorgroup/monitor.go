package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/motorgroup/pkg/monitor"
	"github.com/gwillem/motorgroup/pkg/motor"
)

type MonitorCommand struct {
	Hz          int     `long:"hz" description:"Poll frequency (default from config)"`
	Field       string  `long:"field" default:"velocity" choice:"velocity" choice:"position" choice:"voltage" choice:"temperature" description:"Reading to chart"`
	Step        float64 `long:"step" default:"1" description:"Voltage change per key press"`
	BrakeOnExit bool    `long:"brake-on-exit" description:"Brake all motors when the monitor quits"`
}

const (
	headerHeight = 2  // title + blank line
	tableHeight  = 13 // readings table + blank
	footerHeight = 7  // log box height
	maxLogs      = 5  // number of log messages to show
	borderSize   = 2  // chart border
)

// chartField is a reading that can be charted.
type chartField struct {
	name   string
	unit   string
	color  string
	lo, hi float64
	value  func(monitor.Snapshot) monitor.Reading
}

var chartFields = []chartField{
	{"velocity", "rpm", "46", -220, 220, func(s monitor.Snapshot) monitor.Reading { return s.Velocity }},
	{"position", "°", "51", -360, 360, func(s monitor.Snapshot) monitor.Reading { return s.Position }},
	{"voltage", "V", "226", -13, 13, func(s monitor.Snapshot) monitor.Reading { return s.Voltage }},
	{"temperature", "°C", "208", 0, 80, func(s monitor.Snapshot) monitor.Reading { return s.Temperature }},
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type monitorModel struct {
	session  *session
	mon      *monitor.Monitor
	chart    *streamlinechart.Model
	field    int
	volts    float64
	step     float64
	last     monitor.Snapshot
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	quitting bool
}

func (m *monitorModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the monitor
type stateMsg monitor.Snapshot
type logMsg string

// resultMsg reports the outcome of a command sent from the keyboard.
type resultMsg string

func waitForState(mon *monitor.Monitor) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-mon.States())
	}
}

func waitForLog(mon *monitor.Monitor) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-mon.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *monitorModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 12 // default size before we know terminal size
	}
	width = max(m.width-borderSize-2, 40)
	height = max(m.height-headerHeight-tableHeight-footerHeight-borderSize, 6)
	return width, height
}

// newChart replaces the chart, e.g. after switching the charted field.
func (m *monitorModel) newChart() {
	f := chartFields[m.field]
	w, h := m.chartSize()
	chart := streamlinechart.New(w, h, streamlinechart.WithYRange(f.lo, f.hi))
	chart.SetDataSetStyles(f.name, runes.ThinLineStyle, lipgloss.NewStyle().Foreground(lipgloss.Color(f.color)))
	m.chart = &chart
}

func fieldIndex(name string) int {
	for i, f := range chartFields {
		if f.name == name {
			return i
		}
	}
	return 0
}

func initialMonitorModel(s *session, mon *monitor.Monitor, field string, step float64) monitorModel {
	m := monitorModel{
		session: s,
		mon:     mon,
		field:   fieldIndex(field),
		step:    step,
	}
	m.newChart()
	return m
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.mon),
		waitForLog(m.mon),
	)
}

// command runs a group write off the UI goroutine and logs the outcome.
func (m monitorModel) command(what string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			return resultMsg(fmt.Sprintf("[%s] %s: %v", time.Now().Format("15:04:05"), what, err))
		}
		return resultMsg(fmt.Sprintf("[%s] %s sent", time.Now().Format("15:04:05"), what))
	}
}

func (m monitorModel) setVoltage(volts float64) (monitorModel, tea.Cmd) {
	limit := m.session.group.MaxVoltage()
	m.volts = min(max(volts, -limit), limit)
	target := motor.VoltageControl(m.volts)
	return m, m.command(target.String(), func(ctx context.Context) error {
		return m.session.group.SetTarget(ctx, target)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		g := m.session.group
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.field = (m.field + 1) % len(chartFields)
			m.newChart()
			return m, nil
		case "up", "+":
			return m.setVoltage(m.volts + m.step)
		case "down", "-":
			return m.setVoltage(m.volts - m.step)
		case " ":
			m.volts = 0
			return m, m.command("brake", func(ctx context.Context) error {
				return g.Brake(ctx, motor.Brake)
			})
		case "z":
			return m, m.command("reset position", g.ResetPosition)
		}

	case stateMsg:
		s := monitor.Snapshot(msg)
		m.last = s
		f := chartFields[m.field]
		if r := f.value(s); r.Valid {
			m.chart.PushDataSet(f.name, r.Value)
			m.chart.DrawAll()
		}
		return m, waitForState(m.mon)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.mon)

	case resultMsg:
		m.addLog(string(msg))
		return m, nil
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Monitor stopped.\n"
	}

	var sb strings.Builder

	// Header
	f := chartFields[m.field]
	sb.WriteString(titleStyle.Render("motorgroup monitor"))
	sb.WriteString(fmt.Sprintf(" - %s - %d Hz - charting %s (%s)", m.session.source, m.mon.Hz(), f.name, f.unit))
	sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%s, %.1f V]", m.session.group.WriteErrorStrategy(), m.volts)))
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Readings
	sb.WriteString(renderSnapshot(m.session, m.last))
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20)).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("↑/↓ voltage  space brake  z zero  tab field  q quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (c *MonitorCommand) Execute(args []string) error {
	s, err := openGroup(context.Background())
	if err != nil {
		return err
	}
	defer s.Close()

	hz := c.Hz
	if hz <= 0 {
		hz = s.hz
	}
	mon := monitor.New(s.group, monitor.Config{Hz: hz, BrakeOnStop: c.BrakeOnExit})

	// Start monitor in background
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Start(ctx) }()

	// Run TUI
	_, runErr := tea.NewProgram(initialMonitorModel(s, mon, c.Field, c.Step), tea.WithAltScreen()).Run()

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("monitor: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("run monitor: %w", runErr)
	}
	return nil
}
