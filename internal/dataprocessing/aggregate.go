package dataprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"flowplate/pkg/contracts/domain"
)

// AggregateOptions carries the analyst's choices into Aggregate. Modes, axes
// and layouts are explicit enumerations; nothing here reads UI state.
type AggregateOptions struct {
	Mode         domain.AggregationMode
	FilterAxis   domain.FilterAxis
	FilterLabels []string // selected labels; containing "All" (or empty) disables filtering
	SampleOrder  []string // declared sample order, may be nil
	GroupOrder   []string // declared group order, may be nil
}

// sampleGroup keys one (sample, group) pair.
type sampleGroup struct {
	sample, group string
}

// Aggregate condenses joined rows into a sample-indexed table.
//
// Rows missing either label are dropped first: they cannot be placed on
// either axis. The filter keeps rows whose label on the active axis is in the
// selected set; "All" keeps everything. Individual mode lays out one column
// per occurring (group, replicate) pair, replicates contiguous per group in
// resolved group order, headers flattened to the bare group name. MeanSD and
// MeanSEM modes emit <group>_Mean plus the dispersion column per group.
//
// Row order follows the declared sample order, and samples absent from a
// declared order are dropped from the output; group columns instead append
// unlisted groups lexically. The asymmetry is long-standing observed
// behavior and is kept deliberately.
func Aggregate(rows []domain.JoinedRow, opts AggregateOptions) (*domain.ResultTable, error) {
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("unknown aggregation mode %q", opts.Mode)
	}

	kept := filterRows(rows, opts.FilterAxis, opts.FilterLabels)
	if len(kept) == 0 {
		return nil, ErrEmptyResult
	}

	var observedSamples, observedGroups []string
	seenSample := make(map[string]bool)
	seenGroup := make(map[string]bool)
	for _, r := range kept {
		if !seenSample[r.Sample] {
			seenSample[r.Sample] = true
			observedSamples = append(observedSamples, r.Sample)
		}
		if !seenGroup[r.Group] {
			seenGroup[r.Group] = true
			observedGroups = append(observedGroups, r.Group)
		}
	}

	groupOrder := ResolveOrder(observedGroups, opts.GroupOrder)
	sampleOrder := ResolveOrderStrict(observedSamples, opts.SampleOrder)

	if opts.Mode == domain.ModeIndividual {
		return tabulateIndividual(kept, sampleOrder, groupOrder), nil
	}
	return tabulateMeanError(kept, sampleOrder, groupOrder, opts.Mode), nil
}

// filterRows applies the axis filter and drops rows that lack a label on
// either axis.
func filterRows(rows []domain.JoinedRow, axis domain.FilterAxis, labels []string) []domain.JoinedRow {
	selected := make(map[string]bool, len(labels))
	filterAll := len(labels) == 0
	for _, l := range labels {
		if l == domain.FilterAll {
			filterAll = true
		}
		selected[l] = true
	}

	var kept []domain.JoinedRow
	for _, r := range rows {
		if !r.SampleOK || !r.GroupOK {
			continue
		}
		if !filterAll {
			axisLabel := r.Sample
			if axis == domain.AxisGroup {
				axisLabel = r.Group
			}
			if !selected[axisLabel] {
				continue
			}
		}
		kept = append(kept, r)
	}
	return kept
}

// tabulateIndividual builds the replicate-preserving layout. Replicate index
// is the count of prior rows sharing the same (sample, group) pair, so each
// (sample, group, replicate) triple is unique by construction.
func tabulateIndividual(rows []domain.JoinedRow, sampleOrder, groupOrder []string) *domain.ResultTable {
	cells := make(map[sampleGroup][]domain.Value)
	maxReps := make(map[string]int)
	for _, r := range rows {
		key := sampleGroup{r.Sample, r.Group}
		cells[key] = append(cells[key], r.Value)
		if n := len(cells[key]); n > maxReps[r.Group] {
			maxReps[r.Group] = n
		}
	}

	type column struct {
		group string
		rep   int
	}
	var columns []column
	var headers []string
	for _, g := range groupOrder {
		for rep := 0; rep < maxReps[g]; rep++ {
			columns = append(columns, column{group: g, rep: rep})
			headers = append(headers, g)
		}
	}

	table := &domain.ResultTable{
		Columns:  headers,
		RowIndex: sampleOrder,
		Layout:   domain.LayoutStandard,
	}
	for _, s := range sampleOrder {
		row := make([]domain.Value, len(columns))
		for i, col := range columns {
			if vals := cells[sampleGroup{s, col.group}]; col.rep < len(vals) {
				row[i] = vals[col.rep]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// tabulateMeanError builds the mean/dispersion layout, two columns per group.
func tabulateMeanError(rows []domain.JoinedRow, sampleOrder, groupOrder []string, mode domain.AggregationMode) *domain.ResultTable {
	observations := make(map[sampleGroup][]float64)
	for _, r := range rows {
		key := sampleGroup{r.Sample, r.Group}
		if _, ok := observations[key]; !ok {
			observations[key] = nil
		}
		if r.Value.Valid {
			observations[key] = append(observations[key], r.Value.Float64)
		}
	}

	errorLabel := "SD"
	if mode == domain.ModeMeanSEM {
		errorLabel = "SEM"
	}

	var headers []string
	for _, g := range groupOrder {
		headers = append(headers, g+"_Mean", g+"_"+errorLabel)
	}

	table := &domain.ResultTable{
		Columns:  headers,
		RowIndex: sampleOrder,
		Layout:   domain.LayoutStandard,
	}
	for _, s := range sampleOrder {
		row := make([]domain.Value, 0, len(headers))
		for _, g := range groupOrder {
			vals, ok := observations[sampleGroup{s, g}]
			if !ok || len(vals) == 0 {
				row = append(row, domain.Missing(), domain.Missing())
				continue
			}
			mean := round2(stat.Mean(vals, nil))
			row = append(row, domain.Num(mean), dispersion(vals, mode))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// dispersion computes the sample standard deviation or the standard error of
// the mean over non-missing observations; with fewer than two observations
// there is no dispersion and the cell stays missing.
func dispersion(vals []float64, mode domain.AggregationMode) domain.Value {
	if len(vals) < 2 {
		return domain.Missing()
	}
	sd := stat.StdDev(vals, nil)
	if mode == domain.ModeMeanSEM {
		sd /= math.Sqrt(float64(len(vals)))
	}
	if math.IsNaN(sd) || math.IsInf(sd, 0) {
		return domain.Missing()
	}
	return domain.Num(round2(sd))
}
