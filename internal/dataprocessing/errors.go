package dataprocessing

import "errors"

// Pipeline sentinel errors. Callers branch on these with errors.Is; each is
// recovered at the operation boundary that produced it and never tears down
// previously loaded state.
var (
	// ErrNoSampleMatches signals a well-format mismatch between the
	// measurement file and the sample map: not a single row found a sample
	// label.
	ErrNoSampleMatches = errors.New("no wells matched the sample map")

	// ErrNoGroupMatches is the group-map counterpart of ErrNoSampleMatches.
	ErrNoGroupMatches = errors.New("no wells matched the group map")

	// ErrNoMeasurementSelected is returned when processing is requested
	// before a metric has been chosen.
	ErrNoMeasurementSelected = errors.New("no measurement selected")

	// ErrEmptyResult is returned when filtering removes every row.
	ErrEmptyResult = errors.New("filtering removed every row")

	// ErrNoResults is returned when a reshape is invoked with nothing to
	// reshape.
	ErrNoResults = errors.New("no results to reshape")
)
