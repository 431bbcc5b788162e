// Package mortgage simulates the monthly amortization of fixed and
// variable-rate mortgages.
package mortgage

import (
	"math"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/ledger"
)

// LoanState is the mutable state of a loan between two periods.
type LoanState struct {
	Balance             float64
	PeriodIndex         int
	AccumulatedInterest float64
	CurrentRate         float64
	MonthlyPayment      float64
}

// CalculateMonthlyPayment returns the annuity payment that amortizes principal
// over periods months at annualRate (a fraction, 0.01 = 1%).
func CalculateMonthlyPayment(principal, annualRate float64, periods int) float64 {
	n := float64(periods)
	if annualRate == 0 {
		return principal / n
	}

	periodicRate := annualRate / constants.MonthsPerYear
	discountFactor := 1 - math.Pow(1+periodicRate, -n)
	if discountFactor == 0 {
		// The rate is too small to register against 1.0.
		return principal / n
	}
	return principal * periodicRate / discountFactor
}

// CalculateInterestPayment returns one month of interest on balance.
func CalculateInterestPayment(balance, annualRate float64) float64 {
	return balance * annualRate / constants.MonthsPerYear
}

// Step charges one month of interest, applies the payment and advances the
// period index. The returned record reflects the balance after the payment.
func Step(state *LoanState) ledger.Record {
	monthlyInterest := CalculateInterestPayment(state.Balance, state.CurrentRate)
	state.AccumulatedInterest += monthlyInterest
	amortized := state.MonthlyPayment - monthlyInterest
	state.Balance -= amortized

	record := ledger.Record{
		Month:               state.PeriodIndex,
		MonthlyInterest:     monthlyInterest,
		AmortizedLoan:       amortized,
		PendingLoan:         state.Balance,
		Interest:            state.CurrentRate,
		MonthlyPayment:      state.MonthlyPayment,
		AccumulatedInterest: state.AccumulatedInterest,
	}
	state.PeriodIndex++
	return record
}
