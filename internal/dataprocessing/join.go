package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"flowplate/pkg/contracts/domain"
)

// Join left-joins every measurement row to its sample and group labels by
// well and coerces the chosen metric to a numeric reading rounded to two
// decimal places. Non-numeric or missing input stays missing, never zero.
// Input order is preserved.
//
// Join fails with ErrNoSampleMatches when not a single row found a sample
// label, and with ErrNoGroupMatches symmetrically; either means the
// measurement file's well naming does not line up with the annotation grid.
func Join(set *domain.MeasurementSet, sampleMap, groupMap *domain.PlateMap, metric string) ([]domain.JoinedRow, error) {
	if metric == "" {
		return nil, ErrNoMeasurementSelected
	}

	joined := make([]domain.JoinedRow, 0, len(set.Rows))
	anySample, anyGroup := false, false
	for _, row := range set.Rows {
		j := domain.JoinedRow{
			Name:  row.Name,
			Well:  row.Well,
			Value: coerceNumeric(row.Metrics[metric]),
		}
		if row.Well != "" {
			if label, ok := sampleMap.Lookup(row.Well); ok {
				j.Sample, j.SampleOK = label, true
				anySample = true
			}
			if label, ok := groupMap.Lookup(row.Well); ok {
				j.Group, j.GroupOK = label, true
				anyGroup = true
			}
		}
		joined = append(joined, j)
	}

	if !anySample {
		return nil, fmt.Errorf("%w (%s)", ErrNoSampleMatches, set.Source)
	}
	if !anyGroup {
		return nil, fmt.Errorf("%w (%s)", ErrNoGroupMatches, set.Source)
	}
	return joined, nil
}

// coerceNumeric parses a raw metric cell, rounding to two decimals.
func coerceNumeric(cell string) domain.Value {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return domain.Missing()
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return domain.Missing()
	}
	return domain.Num(round2(f))
}

// round2 rounds half away from zero to two decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
