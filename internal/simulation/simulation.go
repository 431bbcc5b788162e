// Package simulation runs the configured mortgage simulations and collects
// their results.
package simulation

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/pkg/ledger"
	"github.com/iwvelando/mortgage-simulator/pkg/mortgage"
	"go.uber.org/zap"
)

// Result holds the outcome of one simulation.
type Result struct {
	RunID      string
	Summary    mortgage.Summary
	LedgerPath string
}

// Run simulates every active simulation in conf, one after another, writing
// each ledger under conf.Output.Directory. It stops at the first failure and
// returns the results gathered so far.
func Run(logger *zap.Logger, conf config.Configuration, progress io.Writer) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Result
	for _, sim := range conf.Simulations {
		if !sim.IsActive() {
			logger.Debug(fmt.Sprintf("skipping simulation %s because it is inactive", sim.Name),
				zap.String("op", "simulation.Run"),
			)
			continue
		}

		sink, err := ledger.CreateFile(conf.Output.Directory, sim.OutputFile)
		if err != nil {
			return results, fmt.Errorf("%w: simulation %s: %w", mortgage.ErrIOFailure, sim.Name, err)
		}

		result, err := RunSimulation(logger, sim, sink, progress)
		if err != nil {
			return results, err
		}
		result.LedgerPath = sink.Path()
		results = append(results, result)
	}

	return results, nil
}

// RunSimulation runs a single simulation into sink. The sink is always closed.
func RunSimulation(logger *zap.Logger, sim config.Simulation, sink ledger.Sink, progress io.Writer) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID), zap.String("simulation", sim.Name))

	params, err := sim.Params(progress)
	if err != nil {
		_ = sink.Close()
		return Result{}, err
	}

	simulator, err := mortgage.NewSimulator(logger, params, sink)
	if err != nil {
		_ = sink.Close()
		return Result{}, fmt.Errorf("simulation %s: %w", sim.Name, err)
	}

	summary, err := simulator.Simulate()
	if err != nil {
		return Result{}, err
	}

	logger.Info(fmt.Sprintf("simulation %s finished", sim.Name),
		zap.String("op", "simulation.RunSimulation"),
		zap.Float64("accumulated_interest", summary.AccumulatedInterest),
		zap.Float64("final_balance", summary.FinalBalance),
		zap.Int("rate_updates", summary.RateUpdates),
	)

	return Result{RunID: runID, Summary: summary}, nil
}
