package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gwillem/motorgroup/pkg/servo"
)

type ScanCommand struct {
	Port  string `short:"p" long:"port" description:"Only scan this port"`
	Baud  int    `long:"baud" default:"1000000" description:"Bus baud rate"`
	MinID int    `long:"min-id" default:"1" description:"First servo ID to probe"`
	MaxID int    `long:"max-id" default:"12" description:"Last servo ID to probe"`
}

// portScan is the result of probing one serial port.
type portScan struct {
	port   string
	servos []servo.Found
	err    error
}

func (c *ScanCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("motorgroup scan"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━"))
	fmt.Println()

	results, err := c.scan(context.Background())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No serial ports found.")
		fmt.Println("Make sure your motors are connected and powered on.")
		return nil
	}

	var rows [][]string
	var statuses []status
	for _, r := range results {
		switch {
		case r.err != nil:
			rows = append(rows, []string{r.port, "-", "-", r.err.Error()})
			statuses = append(statuses, statusFailed)
		case len(r.servos) == 0:
			rows = append(rows, []string{r.port, "-", "-", "no servos"})
			statuses = append(statuses, statusPartial)
		default:
			for _, s := range r.servos {
				rows = append(rows, []string{r.port, fmt.Sprint(s.ID), s.Model, "ok"})
				statuses = append(statuses, statusOK)
			}
		}
	}
	fmt.Println(newTable([]string{"Port", "ID", "Model", "Status"}, rows, statuses, 3).Render())
	return nil
}

func (c *ScanCommand) scan(ctx context.Context) ([]portScan, error) {
	if opts.Simulate > 0 {
		found := make([]servo.Found, opts.Simulate)
		for i := range found {
			found[i] = servo.Found{ID: i + 1, Model: "sim"}
		}
		return []portScan{{port: "simulated", servos: found}}, nil
	}

	ports := []string{c.Port}
	if c.Port == "" {
		var err error
		if ports, err = servo.ListPorts(); err != nil {
			return nil, err
		}
	}

	results := make([]portScan, 0, len(ports))
	for _, port := range ports {
		fmt.Println(dimStyle.Render("  probing " + port))
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		found, err := servo.Scan(ctx, servo.BusConfig{Port: port, BaudRate: c.Baud}, c.MinID, c.MaxID)
		cancel()
		results = append(results, portScan{port: port, servos: found, err: err})
	}
	fmt.Println()
	return results, nil
}
