package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/mortgage-simulator/pkg/mortgage"
	"github.com/iwvelando/mortgage-simulator/pkg/rates"
)

// Simulation describes one mortgage to simulate.
type Simulation struct {
	Name         string      `yaml:"name"`
	Active       *bool       `yaml:"active,omitempty"` // defaults to true
	Type         string      `yaml:"type"`             // fixed, variable
	Loan         float64     `yaml:"loan"`
	Periods      int         `yaml:"periods"` // months
	Interest     float64     `yaml:"interest,omitempty"`
	Differential float64     `yaml:"differential,omitempty"`
	RatePolicy   *RatePolicy `yaml:"ratePolicy,omitempty"`
	OutputFile   string      `yaml:"outputFile"`
	Verbose      bool        `yaml:"verbose,omitempty"`
}

// RatePolicy configures how the reference rate of a variable-rate loan evolves.
type RatePolicy struct {
	Type            string    `yaml:"type"` // linear, series
	InitialValue    float64   `yaml:"initialValue,omitempty"`
	YearlyIncrement float64   `yaml:"yearlyIncrement,omitempty"`
	Values          []float64 `yaml:"values,omitempty"`
}

// IsActive reports whether the simulation should run.
func (sim Simulation) IsActive() bool {
	return sim.Active == nil || *sim.Active
}

// Params converts the simulation into simulator parameters. A fresh rate
// policy is built on every call so simulators never share one.
func (sim Simulation) Params(progress io.Writer) (mortgage.Params, error) {
	params := mortgage.Params{
		Name:         sim.Name,
		Type:         sim.Type,
		Loan:         sim.Loan,
		Periods:      sim.Periods,
		Interest:     sim.Interest,
		Differential: sim.Differential,
		Verbose:      sim.Verbose,
		Progress:     progress,
	}

	if sim.RatePolicy != nil {
		policy, err := rates.New(rates.Settings{
			Type:            sim.RatePolicy.Type,
			InitialValue:    sim.RatePolicy.InitialValue,
			YearlyIncrement: sim.RatePolicy.YearlyIncrement,
			Values:          sim.RatePolicy.Values,
		})
		if err != nil {
			return params, fmt.Errorf("simulation %s: %w", sim.Name, err)
		}
		params.Policy = policy
	}

	return params, nil
}
