// Package dataprocessing implements the plate reconciliation pipeline: it
// parses annotation grids into well→label plate maps, loads measurement
// tables, joins measurements to sample and group labels by well, resolves
// label display orderings, aggregates per (sample, group), and reshapes
// results into alternate output layouts.
//
// # Data Flow
//
// The typical flow through this package:
//
//	Annotation grid → ParsePlateGrid → PlateMap (+ declared order)
//	Measurement grid → ParseMeasurementGrid → MeasurementSet
//	MeasurementSet + PlateMaps → Join → JoinedRows
//	JoinedRows → Aggregate → ResultTable
//	ResultTable(s) → ReshapeSingleRow / ReshapeXY → ResultTable
//
// Grid parsing and loading accept raw [][]string cell grids so the pipeline
// can be tested without spreadsheet files; the Load* helpers decode .xlsx
// files via excelize and feed the same parsers.
//
// # Error Handling
//
// Pipeline failures are sentinel errors (ErrNoSampleMatches, ErrEmptyResult,
// ...) so callers can branch with errors.Is; file-level failures wrap the
// underlying cause with context about the offending file.
//
// All functions are stateless: loaded maps and sets are owned by the caller
// and passed in explicitly.
package dataprocessing
