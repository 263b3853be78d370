package dataprocessing

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"flowplate/pkg/contracts/domain"
)

// wellSuffixPattern extracts the well from an acquisition specimen name such
// as "Specimen_001_A01.fcs".
var wellSuffixPattern = regexp.MustCompile(`_([A-H][0-9]{2})\.fcs$`)

// Reserved specimen names for summary rows injected by the acquisition
// software; they are dropped before any processing.
const (
	markerMean = "Mean"
	markerSD   = "SD"
)

// ParseMeasurementGrid turns a raw measurement grid into a MeasurementSet.
//
// The first grid row is the header: column 0 is the specimen name, the rest
// are metric columns. Rows named exactly "Mean" or "SD" are dropped. Any
// metric column containing a percent-formatted cell is coerced whole: percent
// signs stripped and every non-blank cell parsed as a number. The well is
// derived from the specimen name's well suffix; names without the suffix get
// no well and cannot be joined later.
func ParseMeasurementGrid(source string, grid [][]string) (*domain.MeasurementSet, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("measurement grid %s is empty", source)
	}

	header := grid[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("measurement grid %s has no metric columns", source)
	}
	metrics := make([]string, 0, len(header)-1)
	for _, name := range header[1:] {
		metrics = append(metrics, strings.TrimSpace(name))
	}

	rows := make([]domain.MeasurementRow, 0, len(grid)-1)
	for _, raw := range grid[1:] {
		name := strings.TrimSpace(cellAt(raw, 0))
		if name == "" || name == markerMean || name == markerSD {
			continue
		}
		row := domain.MeasurementRow{
			Name:    name,
			Metrics: make(map[string]string, len(metrics)),
		}
		if m := wellSuffixPattern.FindStringSubmatch(name); m != nil {
			row.Well = domain.WellID(m[1])
		}
		for i, metric := range metrics {
			row.Metrics[metric] = strings.TrimSpace(cellAt(raw, i+1))
		}
		rows = append(rows, row)
	}

	for _, metric := range metrics {
		if err := coercePercentColumn(rows, metric); err != nil {
			return nil, fmt.Errorf("failed to parse measurement grid %s: %w", source, err)
		}
	}

	return &domain.MeasurementSet{Source: source, Rows: rows, Metrics: metrics}, nil
}

// coercePercentColumn strips percent signs and re-renders every cell of a
// column numerically once any cell in it is percent-formatted.
func coercePercentColumn(rows []domain.MeasurementRow, metric string) error {
	hasPercent := false
	for _, row := range rows {
		if strings.Contains(row.Metrics[metric], "%") {
			hasPercent = true
			break
		}
	}
	if !hasPercent {
		return nil
	}

	for i := range rows {
		cell := strings.TrimSpace(strings.ReplaceAll(rows[i].Metrics[metric], "%", ""))
		if cell == "" {
			rows[i].Metrics[metric] = ""
			continue
		}
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return fmt.Errorf("column %q: cell %q is not numeric", metric, rows[i].Metrics[metric])
		}
		rows[i].Metrics[metric] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return nil
}

// LoadMeasurementFile reads a measurement spreadsheet's first sheet into a
// MeasurementSet.
func LoadMeasurementFile(path string) (*domain.MeasurementSet, error) {
	grid, err := readFirstSheet(path)
	if err != nil {
		return nil, err
	}
	return ParseMeasurementGrid(path, grid)
}

// CommonMetrics returns the metric names offered when several measurement
// sets are loaded together: the intersection of every set's metric columns,
// sorted lexically.
func CommonMetrics(sets []*domain.MeasurementSet) []string {
	if len(sets) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, set := range sets {
		seen := make(map[string]bool, len(set.Metrics))
		for _, m := range set.Metrics {
			if !seen[m] {
				seen[m] = true
				counts[m]++
			}
		}
	}

	var common []string
	for m, n := range counts {
		if n == len(sets) {
			common = append(common, m)
		}
	}
	sort.Strings(common)
	return common
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
