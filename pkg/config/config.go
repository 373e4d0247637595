// Package config loads and saves motor group configuration files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gwillem/motorgroup/pkg/motorgroup"
	"github.com/gwillem/motorgroup/pkg/servo"
)

const DefaultConfigFile = "motorgroup.json"

// DefaultHz is the monitor poll rate when none is configured.
const DefaultHz = 20

var (
	ErrNoMotors    = errors.New("no motors configured")
	ErrDuplicateID = errors.New("duplicate motor id")
	ErrBaudRate    = errors.New("invalid baud rate")
)

// Config holds the group configuration
type Config struct {
	Port               string                        `json:"port" yaml:"port"`
	BaudRate           int                           `json:"baud_rate,omitempty" yaml:"baud_rate,omitempty"`
	WriteErrorStrategy motorgroup.WriteErrorStrategy `json:"write_error_strategy" yaml:"write_error_strategy"`
	Hz                 int                           `json:"hz,omitempty" yaml:"hz,omitempty"`
	Motors             []MotorConfig                 `json:"motors" yaml:"motors"`
}

// MotorConfig holds configuration for a single motor
type MotorConfig struct {
	Name        string            `json:"name" yaml:"name"`
	ID          int               `json:"id" yaml:"id"`
	Reversed    bool              `json:"reversed,omitempty" yaml:"reversed,omitempty"`
	Calibration servo.Calibration `json:"calibration" yaml:"calibration"`
}

// Validate checks the config for values no bus can be opened with.
func (c *Config) Validate() error {
	if len(c.Motors) == 0 {
		return ErrNoMotors
	}
	if c.BaudRate < 0 {
		return fmt.Errorf("%w: %d", ErrBaudRate, c.BaudRate)
	}
	seen := make(map[int]string, len(c.Motors))
	for _, m := range c.Motors {
		if m.ID < 0 || m.ID > 253 {
			return fmt.Errorf("motor %q: id %d out of range", m.Name, m.ID)
		}
		if prev, ok := seen[m.ID]; ok {
			return fmt.Errorf("%w: %d (%s, %s)", ErrDuplicateID, m.ID, prev, m.Name)
		}
		seen[m.ID] = m.Name
	}
	return nil
}

// PollHz returns the configured poll rate or DefaultHz.
func (c *Config) PollHz() int {
	if c.Hz <= 0 {
		return DefaultHz
	}
	return c.Hz
}

// BusConfig returns the serial settings for servo.Open.
func (c *Config) BusConfig() servo.BusConfig {
	return servo.BusConfig{Port: c.Port, BaudRate: c.BaudRate}
}

// ServoSpecs returns the motors in the order they join the group.
func (c *Config) ServoSpecs() []servo.Spec {
	specs := make([]servo.Spec, len(c.Motors))
	for i, m := range c.Motors {
		specs[i] = servo.Spec{Name: m.Name, ID: m.ID, Reversed: m.Reversed, Calibration: m.Calibration}
	}
	return specs
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file. Files ending in
// .yaml or .yml are read as YAML, everything else as JSON.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	return Exists(DefaultConfigFile)
}

// Exists returns true if path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
