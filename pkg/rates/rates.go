// Package rates provides the reference rate update policies used by
// variable-rate mortgages.
package rates

import (
	"errors"
	"fmt"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
)

var (
	// ErrEmptySeries is returned when a series policy is built without values.
	ErrEmptySeries = errors.New("rate series has no values")

	// ErrUnknownPolicy is returned for an unsupported policy type.
	ErrUnknownPolicy = errors.New("unknown rate policy")
)

// Policy describes how a floating reference rate evolves. Current returns the
// annual nominal rate as a fraction; Advance moves the policy forward one year.
type Policy interface {
	Current() float64
	Advance()
}

// Linear grows the reference rate by a fixed amount every year. The increment
// may be zero or negative and the rate is allowed to go below zero.
type Linear struct {
	value     float64
	increment float64
}

// NewLinear returns a Linear policy starting at initial.
func NewLinear(initial, yearlyIncrement float64) *Linear {
	return &Linear{value: initial, increment: yearlyIncrement}
}

// Current returns the current reference rate.
func (l *Linear) Current() float64 {
	return l.value
}

// Advance adds the yearly increment to the reference rate.
func (l *Linear) Advance() {
	l.value += l.increment
}

// Series replays an externally supplied list of yearly reference rates. Once
// the list is exhausted the last value is held.
type Series struct {
	values []float64
	idx    int
}

// NewSeries returns a Series policy over a copy of values.
func NewSeries(values []float64) (*Series, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}
	return &Series{values: append([]float64(nil), values...)}, nil
}

// Current returns the reference rate for the current year.
func (s *Series) Current() float64 {
	return s.values[s.idx]
}

// Advance moves to the next year's value, if any.
func (s *Series) Advance() {
	if s.idx < len(s.values)-1 {
		s.idx++
	}
}

// Settings are the configuration inputs for New.
type Settings struct {
	Type            string
	InitialValue    float64
	YearlyIncrement float64
	Values          []float64
}

// New builds a Policy from settings. An empty type defaults to linear.
func New(settings Settings) (Policy, error) {
	switch settings.Type {
	case "", constants.RatePolicyLinear:
		return NewLinear(settings.InitialValue, settings.YearlyIncrement), nil
	case constants.RatePolicySeries:
		return NewSeries(settings.Values)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, settings.Type)
	}
}

// DefaultSettings returns the settings of the policy used when a variable-rate
// loan has none configured.
func DefaultSettings() Settings {
	return Settings{
		Type:            constants.RatePolicyLinear,
		InitialValue:    constants.DefaultPolicyInitialValue,
		YearlyIncrement: constants.DefaultPolicyYearlyIncrement,
	}
}
