package domain

// AggregationMode selects how joined rows are condensed per (sample, group).
type AggregationMode string

const (
	ModeIndividual AggregationMode = "individual"
	ModeMeanSD     AggregationMode = "mean_sd"
	ModeMeanSEM    AggregationMode = "mean_sem"
)

// Valid reports whether the mode is one of the known variants.
func (m AggregationMode) Valid() bool {
	switch m {
	case ModeIndividual, ModeMeanSD, ModeMeanSEM:
		return true
	}
	return false
}

// OutputLayout selects the physical shape of the exported table.
type OutputLayout string

const (
	LayoutStandard  OutputLayout = "standard"
	LayoutSingleRow OutputLayout = "single_row"
	LayoutXY        OutputLayout = "xy"
)

// Valid reports whether the layout is one of the known variants.
func (l OutputLayout) Valid() bool {
	switch l {
	case LayoutStandard, LayoutSingleRow, LayoutXY:
		return true
	}
	return false
}

// FilterAxis selects which label column the analyst filter applies to.
type FilterAxis string

const (
	AxisSample FilterAxis = "sample"
	AxisGroup  FilterAxis = "group"
)

// Valid reports whether the axis is one of the known variants.
func (a FilterAxis) Valid() bool {
	return a == AxisSample || a == AxisGroup
}

// FilterAll is the reserved label that disables filtering.
const FilterAll = "All"

// LoadStatus tracks one input file slot.
type LoadStatus string

const (
	StatusUnloaded LoadStatus = "unloaded"
	StatusLoaded   LoadStatus = "loaded"
	StatusError    LoadStatus = "error"
)

// LoadState is the status reported to the caller for one input slot.
type LoadState struct {
	Status  LoadStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// ResultTable is a rectangular result with ordered, possibly repeating column
// headers. RowIndex carries the per-row label (sample name, or source file in
// XY layout); exporters include it only for the standard layout. GroupedIndex
// marks a two-level Mean/Error row grouping, which the single-row reshape must
// pass through untouched.
type ResultTable struct {
	Columns      []string     `json:"columns"`
	RowIndex     []string     `json:"row_index,omitempty"`
	Rows         [][]Value    `json:"rows"`
	Layout       OutputLayout `json:"layout"`
	GroupedIndex bool         `json:"grouped_index,omitempty"`
}

// NumRows returns the number of physical rows.
func (t *ResultTable) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *ResultTable) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}
