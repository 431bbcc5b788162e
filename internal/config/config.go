// Package config defines the data structures related to configuration and
// includes functions for loading and normalizing the config.
package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/rates"
	"github.com/iwvelando/mortgage-simulator/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for mortgage-simulator.
type Configuration struct {
	Logging     LoggingConfig `yaml:"logging,omitempty"`
	Output      OutputConfig  `yaml:"output,omitempty"`
	Simulations []Simulation  `yaml:"simulations"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output configuration options
type OutputConfig struct {
	Format    string `yaml:"format,omitempty"`    // pretty, csv
	Directory string `yaml:"directory,omitempty"` // where ledger files are written
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	return &configuration, nil
}

// Normalize fills in defaults for every field left empty in the file.
func (c *Configuration) Normalize() {
	if c.Output.Directory == "" {
		c.Output.Directory = constants.DefaultOutputDirectory
	}

	for i := range c.Simulations {
		sim := &c.Simulations[i]
		if sim.Name == "" {
			sim.Name = fmt.Sprintf("simulation-%d", i+1)
		}
		if sim.Type == "" {
			sim.Type = constants.LoanTypeFixed
		}
		if sim.Periods == 0 {
			sim.Periods = constants.DefaultPeriods
		}
		if sim.OutputFile == "" {
			sim.OutputFile = sim.Name + constants.LedgerFileExtension
		}
		if sim.Type == constants.LoanTypeVariable && sim.RatePolicy == nil {
			defaults := rates.DefaultSettings()
			sim.RatePolicy = &RatePolicy{
				Type:            defaults.Type,
				InitialValue:    defaults.InitialValue,
				YearlyIncrement: defaults.YearlyIncrement,
			}
		}
	}
}

// ActiveSimulations returns the simulations that should be run, in file order.
func (c *Configuration) ActiveSimulations() []Simulation {
	var active []Simulation
	for _, sim := range c.Simulations {
		if sim.IsActive() {
			active = append(active, sim)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	infos := make([]validation.SimulationInfo, 0, len(c.Simulations))
	for _, sim := range c.Simulations {
		info := validation.SimulationInfo{
			Name:         sim.Name,
			Active:       sim.IsActive(),
			Type:         sim.Type,
			Loan:         sim.Loan,
			Periods:      sim.Periods,
			Interest:     sim.Interest,
			Differential: sim.Differential,
			OutputFile:   sim.OutputFile,
		}
		if sim.RatePolicy != nil {
			info.PolicyType = sim.RatePolicy.Type
			info.InitialValue = sim.RatePolicy.InitialValue
			info.YearlyIncrement = sim.RatePolicy.YearlyIncrement
			info.Values = sim.RatePolicy.Values
		}
		infos = append(infos, info)
	}

	return validation.ValidateSimulations(infos)
}
