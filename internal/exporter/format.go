package exporter

import (
	"strings"

	"flowplate/pkg/contracts/domain"
)

// FormatTSV serializes a result table to a tab-separated blob.
//
// The row index is included only for the standard layout; single-row and XY
// layouts never carry one. The header row is included only when requested.
// Blank physical lines are stripped so sinks receive a dense blob.
func FormatTSV(table *domain.ResultTable, includeHeader bool) string {
	includeIndex := table.Layout == domain.LayoutStandard

	var lines []string
	if includeHeader {
		fields := make([]string, 0, len(table.Columns)+1)
		if includeIndex {
			fields = append(fields, "")
		}
		fields = append(fields, table.Columns...)
		lines = append(lines, strings.Join(fields, "\t"))
	}

	for i, row := range table.Rows {
		fields := make([]string, 0, len(row)+1)
		if includeIndex {
			index := ""
			if i < len(table.RowIndex) {
				index = table.RowIndex[i]
			}
			fields = append(fields, index)
		}
		for _, v := range row {
			fields = append(fields, v.String())
		}
		lines = append(lines, strings.Join(fields, "\t"))
	}

	var out []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
