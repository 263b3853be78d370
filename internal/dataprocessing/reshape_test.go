package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowplate/pkg/contracts/domain"
)

func TestReshapeSingleRow(t *testing.T) {
	// Individual-mode table: S1 has two G1 replicates, S2 has one.
	table := &domain.ResultTable{
		Columns:  []string{"G1", "G1"},
		RowIndex: []string{"S1", "S2"},
		Rows: [][]domain.Value{
			{domain.Num(1), domain.Num(2)},
			{domain.Num(3), domain.Missing()},
		},
		Layout: domain.LayoutStandard,
	}

	out, err := ReshapeSingleRow(table, nil)
	require.NoError(t, err)

	require.Len(t, out.Rows, 1, "single-row reshape yields exactly one physical row")
	assert.Empty(t, out.RowIndex)
	assert.Equal(t, domain.LayoutSingleRow, out.Layout)

	// Keys sort lexically and each occupies the max replicate width.
	assert.Equal(t, []string{"S1_G1", "S1_G1", "S2_G1", "S2_G1"}, out.Columns)
	assert.Equal(t, []domain.Value{
		domain.Num(1), domain.Num(2),
		domain.Num(3), domain.Missing(),
	}, out.Rows[0])
}

func TestReshapeSingleRowRoundTrip(t *testing.T) {
	// Every value of the input table must land somewhere in the output row.
	table := &domain.ResultTable{
		Columns:  []string{"G1", "G2", "G2"},
		RowIndex: []string{"S1", "S2"},
		Rows: [][]domain.Value{
			{domain.Num(10), domain.Num(11), domain.Num(12)},
			{domain.Num(20), domain.Num(21), domain.Missing()},
		},
		Layout: domain.LayoutStandard,
	}

	out, err := ReshapeSingleRow(table, nil)
	require.NoError(t, err)

	seen := make(map[float64]int)
	for _, v := range out.Rows[0] {
		if v.Valid {
			seen[v.Float64]++
		}
	}
	for _, want := range []float64{10, 11, 12, 20, 21} {
		assert.Positive(t, seen[want], "value %v dropped by reshape", want)
	}
}

func TestReshapeSingleRowGroupedIndexPassesThrough(t *testing.T) {
	table := &domain.ResultTable{
		Columns:      []string{"G1"},
		RowIndex:     []string{"S1"},
		Rows:         [][]domain.Value{{domain.Num(1)}},
		Layout:       domain.LayoutStandard,
		GroupedIndex: true,
	}

	out, err := ReshapeSingleRow(table, nil)
	require.NoError(t, err)
	assert.Same(t, table, out, "grouped row index keeps the current format")
}

func TestReshapeXY(t *testing.T) {
	// File A has two replicates for S1_G1, file B has one.
	fileA := &domain.ResultTable{
		Columns:  []string{"G1", "G1"},
		RowIndex: []string{"S1"},
		Rows:     [][]domain.Value{{domain.Num(1), domain.Num(2)}},
		Layout:   domain.LayoutStandard,
	}
	fileB := &domain.ResultTable{
		Columns:  []string{"G1"},
		RowIndex: []string{"S1"},
		Rows:     [][]domain.Value{{domain.Num(9)}},
		Layout:   domain.LayoutStandard,
	}

	out, err := ReshapeXY([]*domain.ResultTable{fileA, fileB}, []string{"a.xlsx", "b.xlsx"})
	require.NoError(t, err)

	assert.Equal(t, domain.LayoutXY, out.Layout)
	assert.Equal(t, []string{"a.xlsx", "b.xlsx"}, out.RowIndex)
	assert.Equal(t, []string{"S1_G1", "S1_G1"}, out.Columns, "key width is the max across files")

	require.Len(t, out.Rows, 2, "one physical row per measurement file")
	assert.Equal(t, []domain.Value{domain.Num(1), domain.Num(2)}, out.Rows[0])
	assert.Equal(t, []domain.Value{domain.Num(9), domain.Missing()}, out.Rows[1], "shorter file pads with missing")
}

func TestReshapeXYUnionOfKeys(t *testing.T) {
	fileA := &domain.ResultTable{
		Columns:  []string{"G1"},
		RowIndex: []string{"S1"},
		Rows:     [][]domain.Value{{domain.Num(1)}},
	}
	fileB := &domain.ResultTable{
		Columns:  []string{"G2"},
		RowIndex: []string{"S2"},
		Rows:     [][]domain.Value{{domain.Num(2)}},
	}

	out, err := ReshapeXY([]*domain.ResultTable{fileA, fileB}, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"S1_G1", "S2_G2"}, out.Columns)
	assert.Equal(t, []domain.Value{domain.Num(1), domain.Missing()}, out.Rows[0])
	assert.Equal(t, []domain.Value{domain.Missing(), domain.Num(2)}, out.Rows[1])
}

func TestReshapeErrors(t *testing.T) {
	_, err := ReshapeSingleRow(nil, nil)
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = ReshapeXY(nil, nil)
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = ReshapeXY([]*domain.ResultTable{{}}, []string{"a", "b"})
	require.Error(t, err)
}
