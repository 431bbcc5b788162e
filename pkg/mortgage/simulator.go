package mortgage

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/ledger"
	"github.com/iwvelando/mortgage-simulator/pkg/mathutil"
	"github.com/iwvelando/mortgage-simulator/pkg/rates"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Params holds the construction inputs of a Simulator.
type Params struct {
	Name    string
	Type    string // constants.LoanTypeFixed or constants.LoanTypeVariable
	Loan    float64
	Periods int

	// Interest is the constant annual rate of a fixed-rate loan.
	Interest float64

	// Differential is the spread added to Policy's rate for a variable-rate loan.
	Differential float64
	Policy       rates.Policy

	// Verbose prints a progress line per month and a notice per rate change
	// to Progress (stdout when nil).
	Verbose  bool
	Progress io.Writer
}

// Summary describes a finished simulation.
type Summary struct {
	Name                string  `json:"name"`
	Type                string  `json:"type"`
	Loan                float64 `json:"loan"`
	Periods             int     `json:"periods"`
	InitialRate         float64 `json:"initialRate"`
	FinalRate           float64 `json:"finalRate"`
	InitialPayment      float64 `json:"initialPayment"`
	FinalPayment        float64 `json:"finalPayment"`
	TotalPaid           float64 `json:"totalPaid"`
	AccumulatedInterest float64 `json:"accumulatedInterest"`
	FinalBalance        float64 `json:"finalBalance"`
	PaidOff             bool    `json:"paidOff"` // final balance within one cent of zero
	RateUpdates         int     `json:"rateUpdates"`
}

// Simulator steps a single loan through its term and writes one ledger record
// per month to its sink.
type Simulator struct {
	logger   *zap.Logger
	name     string
	variable bool
	periods  int

	differential float64
	policy       rates.Policy

	state   LoanState
	sink    ledger.Sink
	summary Summary
	done    bool

	verbose bool
	printer *message.Printer
	out     io.Writer
}

// NewSimulator validates params and computes the initial payment. The sink is
// owned by the simulator from here on and is closed when Simulate returns.
func NewSimulator(logger *zap.Logger, params Params, sink ledger.Sink) (*Simulator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := validateParams(params); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: simulation %s has no ledger sink", ErrInvalidParameter, params.Name)
	}

	s := &Simulator{
		logger:  logger,
		name:    params.Name,
		periods: params.Periods,
		sink:    sink,
		verbose: params.Verbose,
		printer: message.NewPrinter(language.English),
		out:     params.Progress,
	}
	if s.out == nil {
		s.out = os.Stdout
	}

	rate := params.Interest
	if params.Type == constants.LoanTypeVariable {
		s.variable = true
		s.differential = params.Differential
		s.policy = params.Policy
		rate = s.differential + s.policy.Current()
	}

	s.state = LoanState{
		Balance:     params.Loan,
		CurrentRate: rate,
	}
	s.state.MonthlyPayment = CalculateMonthlyPayment(params.Loan, rate, params.Periods)

	s.summary = Summary{
		Name:           params.Name,
		Type:           params.Type,
		Loan:           params.Loan,
		Periods:        params.Periods,
		InitialRate:    rate,
		FinalRate:      rate,
		InitialPayment: s.state.MonthlyPayment,
		FinalPayment:   s.state.MonthlyPayment,
		FinalBalance:   params.Loan,
	}

	logger.Debug(fmt.Sprintf("simulation %s: initial rate %.5f, monthly payment %.2f", params.Name, rate, s.state.MonthlyPayment),
		zap.String("op", "mortgage.NewSimulator"),
		zap.String("type", params.Type),
		zap.Float64("loan", params.Loan),
		zap.Int("periods", params.Periods),
	)

	return s, nil
}

func validateParams(params Params) error {
	if !(params.Loan > 0) || math.IsInf(params.Loan, 0) {
		return fmt.Errorf("%w: loan must be positive, got %v", ErrInvalidParameter, params.Loan)
	}
	if params.Periods <= 0 {
		return fmt.Errorf("%w: periods must be positive, got %d", ErrInvalidParameter, params.Periods)
	}

	var rate float64
	switch params.Type {
	case constants.LoanTypeFixed:
		rate = params.Interest
	case constants.LoanTypeVariable:
		if params.Policy == nil {
			return fmt.Errorf("%w: variable-rate loan %s has no rate policy", ErrInvalidParameter, params.Name)
		}
		rate = params.Differential + params.Policy.Current()
	default:
		return fmt.Errorf("%w: unknown loan type %q", ErrInvalidParameter, params.Type)
	}

	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: rate must be finite, got %v", ErrInvalidParameter, rate)
	}
	if rate/constants.MonthsPerYear <= -1 {
		return fmt.Errorf("%w: rate %v makes the periodic rate -100%% or lower", ErrInvalidParameter, rate)
	}
	return nil
}

// State returns a snapshot of the loan state.
func (s *Simulator) State() LoanState {
	return s.state
}

// Simulate runs every remaining period, writing each record to the sink. The
// sink is closed before returning. A sink failure aborts the run with
// ErrIOFailure.
func (s *Simulator) Simulate() (summary Summary, err error) {
	if s.done {
		return s.summary, fmt.Errorf("%w: %s", ErrAlreadySimulated, s.name)
	}
	s.done = true

	defer func() {
		if closeErr := s.sink.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: closing ledger of %s: %w", ErrIOFailure, s.name, closeErr)
		}
		summary = s.summary
	}()

	for s.state.PeriodIndex < s.periods {
		record := Step(&s.state)
		s.observe(record)

		s.logger.Debug("month simulated",
			zap.String("op", "mortgage.Simulate"),
			zap.Int("month", record.Month),
			zap.Float64("monthly_interest", record.MonthlyInterest),
			zap.Float64("amortized_loan", record.AmortizedLoan),
			zap.Float64("pending_loan", record.PendingLoan),
		)

		if s.verbose {
			_, _ = s.printer.Fprintf(s.out, "month %d: interest -> %.2f | amortized loan -> %.2f | pending -> %.2f\n",
				record.Month, record.MonthlyInterest, record.AmortizedLoan, record.PendingLoan)
		}

		if err := s.sink.Write(record); err != nil {
			s.logger.Error(fmt.Sprintf("simulation %s: failed to write month %d", s.name, record.Month),
				zap.String("op", "mortgage.Simulate"),
				zap.Error(err),
			)
			return s.summary, fmt.Errorf("%w: writing month %d of %s: %w", ErrIOFailure, record.Month, s.name, err)
		}

		if s.variable && (record.Month+1)%constants.MonthsPerYear == 0 && s.state.PeriodIndex < s.periods {
			s.updateRate(record.Month)
		}
	}

	s.summary.PaidOff = mathutil.IsZero(s.state.Balance)

	s.logger.Info(fmt.Sprintf("simulation %s completed", s.name),
		zap.String("op", "mortgage.Simulate"),
		zap.Int("periods", s.periods),
		zap.Float64("accumulated_interest", s.state.AccumulatedInterest),
		zap.Float64("pending_loan", s.state.Balance),
		zap.Bool("paid_off", s.summary.PaidOff),
	)

	return s.summary, nil
}

// updateRate advances the policy after a full year and re-amortizes the
// current balance over the remaining term.
func (s *Simulator) updateRate(month int) {
	s.policy.Advance()
	s.state.CurrentRate = s.differential + s.policy.Current()
	s.state.MonthlyPayment = CalculateMonthlyPayment(s.state.Balance, s.state.CurrentRate, s.periods-month)

	s.summary.RateUpdates++

	s.logger.Debug(fmt.Sprintf("simulation %s: rate updated after month %d", s.name, month),
		zap.String("op", "mortgage.updateRate"),
		zap.Float64("new_rate", s.state.CurrentRate),
		zap.Float64("new_payment", s.state.MonthlyPayment),
		zap.Float64("accumulated_interest", s.state.AccumulatedInterest),
	)

	if s.verbose {
		_, _ = s.printer.Fprintf(s.out, "new interest -> %.5f | new payment -> %.2f | interest paid so far -> %.2f\n",
			s.state.CurrentRate, s.state.MonthlyPayment, s.state.AccumulatedInterest)
	}
}

func (s *Simulator) observe(record ledger.Record) {
	s.summary.TotalPaid += record.MonthlyPayment
	s.summary.AccumulatedInterest = record.AccumulatedInterest
	s.summary.FinalBalance = record.PendingLoan
	s.summary.FinalRate = record.Interest
	s.summary.FinalPayment = record.MonthlyPayment
}
