package dataprocessing

import (
	"fmt"
	"log/slog"
	"sort"

	"flowplate/pkg/contracts/domain"
)

// ReshapeSingleRow unpivots a sample-indexed table into one physical row.
//
// Every (sample, column) cell becomes a value under the combined key
// "Sample_Column"; keys are laid out sorted lexically, each occupying the
// maximum replicate count observed for any key, padded with missing cells.
// The round trip keeps every input cell: replicate values stay in their
// original appearance order.
//
// A table carrying a two-level Mean/Error row grouping cannot be flattened
// this way and passes through unchanged with a logged notice.
func ReshapeSingleRow(table *domain.ResultTable, logger *slog.Logger) (*domain.ResultTable, error) {
	if table == nil {
		return nil, ErrNoResults
	}
	if table.GroupedIndex {
		if logger != nil {
			logger.Info("grouped row index detected, keeping current format")
		}
		return table, nil
	}

	melted := meltTable(table)
	keySet := make(map[string]bool, len(melted))
	maxWidth := 0
	for key, vals := range melted {
		keySet[key] = true
		if len(vals) > maxWidth {
			maxWidth = len(vals)
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &domain.ResultTable{Layout: domain.LayoutSingleRow}
	row := make([]domain.Value, 0, len(keys)*maxWidth)
	for _, key := range keys {
		vals := melted[key]
		for i := 0; i < maxWidth; i++ {
			out.Columns = append(out.Columns, key)
			if i < len(vals) {
				row = append(row, vals[i])
			} else {
				row = append(row, domain.Missing())
			}
		}
	}
	out.Rows = [][]domain.Value{row}
	return out, nil
}

// ReshapeXY lays out one physical row per measurement set so the same
// Sample×Group combinations can be compared across datasets. Columns are the
// union of combined keys across all tables, sorted lexically; each key's
// block is as wide as its largest per-table replicate count, padded per table
// with missing cells.
func ReshapeXY(tables []*domain.ResultTable, sources []string) (*domain.ResultTable, error) {
	if len(tables) == 0 {
		return nil, ErrNoResults
	}
	if len(sources) != len(tables) {
		return nil, fmt.Errorf("got %d tables but %d source names", len(tables), len(sources))
	}

	perTable := make([]map[string][]domain.Value, len(tables))
	width := make(map[string]int)
	for i, t := range tables {
		perTable[i] = meltTable(t)
		for key, vals := range perTable[i] {
			if len(vals) > width[key] {
				width[key] = len(vals)
			}
		}
	}

	keys := make([]string, 0, len(width))
	for k := range width {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &domain.ResultTable{
		Layout:   domain.LayoutXY,
		RowIndex: sources,
	}
	for _, key := range keys {
		for i := 0; i < width[key]; i++ {
			out.Columns = append(out.Columns, key)
		}
	}
	for _, melted := range perTable {
		row := make([]domain.Value, 0, len(out.Columns))
		for _, key := range keys {
			vals := melted[key]
			for i := 0; i < width[key]; i++ {
				if i < len(vals) {
					row = append(row, vals[i])
				} else {
					row = append(row, domain.Missing())
				}
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// meltTable unpivots a table into combined "Sample_Column" keys. Iteration is
// column-major so replicate columns for the same key stay in appearance
// order.
func meltTable(table *domain.ResultTable) map[string][]domain.Value {
	melted := make(map[string][]domain.Value)
	for j, col := range table.Columns {
		for i := range table.Rows {
			sample := ""
			if i < len(table.RowIndex) {
				sample = table.RowIndex[i]
			}
			key := sample + "_" + col
			melted[key] = append(melted[key], table.Rows[i][j])
		}
	}
	return melted
}
