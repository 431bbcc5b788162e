package mortgage

import "errors"

var (
	// ErrInvalidParameter is returned at construction for inputs that cannot
	// produce a meaningful schedule.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrIOFailure is returned when the ledger cannot be written. The
	// simulation is aborted.
	ErrIOFailure = errors.New("ledger I/O failure")

	// ErrAlreadySimulated is returned when Simulate is called a second time.
	ErrAlreadySimulated = errors.New("simulation already run")
)
