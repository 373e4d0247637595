package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/motorgroup/pkg/config"
)

type Options struct {
	Config   string `short:"c" long:"config" default:"motorgroup.json" description:"Configuration file (.json, .yaml or .yml)"`
	Simulate int    `long:"simulate" value-name:"N" description:"Use N simulated motors instead of hardware"`
	Unplug   []int  `long:"unplug" value-name:"INDEX" description:"Disconnect a simulated motor (repeatable)"`
	Verbose  bool   `short:"v" long:"verbose" description:"Log motor failures to stderr"`

	Scan    ScanCommand    `command:"scan" description:"List serial ports and the servos on them"`
	Setup   SetupCommand   `command:"setup" description:"Pick a port and motors and write the configuration"`
	Drive   DriveCommand   `command:"drive" description:"Send one command to every motor in the group"`
	Monitor MonitorCommand `command:"monitor" alias:"mon" description:"Stream averaged group telemetry"`
}

var opts = Options{Config: config.DefaultConfigFile}
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "motorgroup - drive a set of motors as one"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
