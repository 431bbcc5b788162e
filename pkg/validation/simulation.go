package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/mathutil"
)

// SimulationInfo is the subset of a configured simulation needed for validation.
type SimulationInfo struct {
	Name            string
	Active          bool
	Type            string
	Loan            float64
	Periods         int
	Interest        float64
	Differential    float64
	PolicyType      string
	InitialValue    float64
	YearlyIncrement float64
	Values          []float64
	OutputFile      string
}

// ValidateSimulations returns warnings for a set of simulations. Problems that
// would make a simulation fail are reported by the simulator itself.
func ValidateSimulations(simulations []SimulationInfo) []string {
	var warnings []string

	active := 0
	outputs := make(map[string]string)
	for _, sim := range simulations {
		if !sim.Active {
			warnings = append(warnings, fmt.Sprintf("Simulation '%s' is inactive and will be skipped", sim.Name))
			continue
		}
		active++

		key := strings.ToLower(sim.OutputFile)
		if other, exists := outputs[key]; exists {
			warnings = append(warnings, fmt.Sprintf("Simulations '%s' and '%s' write to the same output file %s - the latter overwrites the former",
				other, sim.Name, sim.OutputFile))
		} else {
			outputs[key] = sim.Name
		}

		warnings = append(warnings, ValidateSimulation(sim)...)
	}

	if len(simulations) > 0 && active == 0 {
		warnings = append(warnings, "No active simulations configured")
	}

	return warnings
}

// ValidateSimulation returns warnings for a single simulation.
func ValidateSimulation(sim SimulationInfo) []string {
	var warnings []string

	switch sim.Type {
	case constants.LoanTypeFixed:
		if sim.Differential != 0 || sim.PolicyType != "" {
			warnings = append(warnings, fmt.Sprintf("Simulation '%s' is fixed-rate - differential and ratePolicy are ignored", sim.Name))
		}
		if sim.Interest < 0 {
			warnings = append(warnings, fmt.Sprintf("Simulation '%s' has a negative interest rate (%.4f%%)",
				sim.Name, mathutil.ToPercentage(sim.Interest)))
		}
	case constants.LoanTypeVariable:
		if sim.Interest != 0 {
			warnings = append(warnings, fmt.Sprintf("Simulation '%s' is variable-rate - interest is ignored", sim.Name))
		}
		if lowest := lowestVariableRate(sim); lowest < 0 {
			warnings = append(warnings, fmt.Sprintf("Simulation '%s' rate goes negative during the term (down to %.4f%%)",
				sim.Name, mathutil.ToPercentage(lowest)))
		}
	}

	if sim.Periods%constants.MonthsPerYear != 0 {
		warnings = append(warnings, fmt.Sprintf("Simulation '%s' term of %d months is not a whole number of years",
			sim.Name, sim.Periods))
	}

	return warnings
}

// lowestVariableRate returns the lowest effective rate applied in any year of
// the term.
func lowestVariableRate(sim SimulationInfo) float64 {
	years := (sim.Periods + constants.MonthsPerYear - 1) / constants.MonthsPerYear
	if years < 1 {
		years = 1
	}

	if sim.PolicyType == constants.RatePolicySeries {
		if len(sim.Values) == 0 {
			return sim.Differential
		}
		lowest := sim.Values[0]
		for i := 1; i < len(sim.Values) && i < years; i++ {
			if sim.Values[i] < lowest {
				lowest = sim.Values[i]
			}
		}
		return sim.Differential + lowest
	}

	first := sim.InitialValue
	last := sim.InitialValue + sim.YearlyIncrement*float64(years-1)
	if last < first {
		first = last
	}
	return sim.Differential + first
}
