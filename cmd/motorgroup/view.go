package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/motorgroup/pkg/monitor"
	"github.com/gwillem/motorgroup/pkg/motorgroup"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableNameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableGoodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableWarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableBadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)
)

type status int

const (
	statusOK status = iota
	statusPartial
	statusFailed
)

func newTable(headers []string, rows [][]string, statuses []status, statusCol int) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 0 {
				return tableNameStyle
			}
			if col == statusCol && row >= 0 && row < len(statuses) {
				switch statuses[row] {
				case statusPartial:
					return tableWarnStyle
				case statusFailed:
					return tableBadStyle
				}
				return tableGoodStyle
			}
			return tableCellStyle
		})
}

// renderWriteResult shows which motors accepted a write.
func renderWriteResult(s *session, what string, err error) string {
	if err == nil {
		return successStyle.Render(fmt.Sprintf("✓ %s sent to %d motors", what, s.group.Len()))
	}

	var werr *motorgroup.WriteError
	if !errors.As(err, &werr) {
		// Stop strategy: the first failure is returned as is.
		return errorStyle.Render("✗ halted: "+err.Error()) + "\n" +
			dimStyle.Render("Motors after the failing one were not commanded.")
	}

	failed := make(map[int]error, len(werr.Errors))
	for _, me := range werr.Errors {
		failed[me.Index] = me.Err
	}
	rows := make([][]string, werr.Total)
	statuses := make([]status, werr.Total)
	for i := range werr.Total {
		rows[i] = []string{s.name(i), "ok"}
		if e, ok := failed[i]; ok {
			rows[i][1] = e.Error()
			statuses[i] = statusFailed
		}
	}

	var sb strings.Builder
	sb.WriteString(warnStyle.Render(fmt.Sprintf("! %s failed on %d of %d motors", what, len(werr.Errors), werr.Total)))
	sb.WriteString("\n")
	sb.WriteString(newTable([]string{"Motor", "Result"}, rows, statuses, 1).Render())
	return sb.String()
}

// readingRow formats one averaged reading.
func readingRow(s *session, label, unit string, r monitor.Reading) ([]string, status) {
	switch {
	case !r.Valid:
		reason := "no motor answered"
		if errors.Is(r.Err, motorgroup.ErrNoDevices) {
			reason = "no motors"
		}
		return []string{label, "-", reason}, statusFailed
	case r.Partial:
		return []string{label, fmt.Sprintf("%.1f %s", r.Value, unit), "partial, missing " + failedNames(s, r.Failed)}, statusPartial
	}
	return []string{label, fmt.Sprintf("%.1f %s", r.Value, unit), "ok"}, statusOK
}

func failedNames(s *session, indices []int) string {
	names := make([]string, len(indices))
	for i, idx := range indices {
		names[i] = s.name(idx)
	}
	return strings.Join(names, ", ")
}

func faultRow(f monitor.Faults) ([]string, status) {
	var set []string
	for _, fl := range []struct {
		name string
		flag monitor.Flag
	}{
		{"over temperature", f.OverTemperature},
		{"over current", f.OverCurrent},
		{"driver fault", f.DriverFault},
		{"driver over current", f.DriverOverCurrent},
	} {
		if fl.flag.Set {
			set = append(set, fl.name)
		}
	}
	if len(set) > 0 {
		return []string{"Faults", strings.Join(set, ", "), "raised"}, statusFailed
	}
	if !f.OverTemperature.Valid {
		return []string{"Faults", "-", "unknown"}, statusFailed
	}
	return []string{"Faults", "none", "ok"}, statusOK
}

// renderSnapshot renders the averaged telemetry of a group.
func renderSnapshot(s *session, snap monitor.Snapshot) string {
	var rows [][]string
	var statuses []status
	add := func(row []string, st status) {
		rows = append(rows, row)
		statuses = append(statuses, st)
	}
	add(readingRow(s, "Velocity", "rpm", snap.Velocity))
	add(readingRow(s, "Position", "°", snap.Position))
	add(readingRow(s, "Voltage", "V", snap.Voltage))
	add(readingRow(s, "Temperature", "°C", snap.Temperature))
	add(faultRow(snap.Faults))

	return newTable([]string{"Reading", "Mean", "Status"}, rows, statuses, 2).Render()
}
