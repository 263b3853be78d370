package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowplate/pkg/contracts/domain"
)

func joinedRow(sample, group string, v float64) domain.JoinedRow {
	return domain.JoinedRow{
		Sample: sample, SampleOK: true,
		Group: group, GroupOK: true,
		Value: domain.Num(v),
	}
}

func defaultOpts(mode domain.AggregationMode) AggregateOptions {
	return AggregateOptions{
		Mode:         mode,
		FilterAxis:   domain.AxisSample,
		FilterLabels: []string{domain.FilterAll},
	}
}

func TestAggregateIndividualBasic(t *testing.T) {
	rows := []domain.JoinedRow{
		joinedRow("S1", "G1", 10),
		joinedRow("S2", "G1", 20),
	}

	table, err := Aggregate(rows, defaultOpts(domain.ModeIndividual))
	require.NoError(t, err)

	assert.Equal(t, []string{"G1"}, table.Columns)
	assert.Equal(t, []string{"S1", "S2"}, table.RowIndex)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, domain.Num(10), table.Rows[0][0])
	assert.Equal(t, domain.Num(20), table.Rows[1][0])
	assert.Equal(t, domain.LayoutStandard, table.Layout)
}

func TestAggregateIndividualReplicatesContiguous(t *testing.T) {
	rows := []domain.JoinedRow{
		joinedRow("S1", "G1", 1),
		joinedRow("S1", "G2", 5),
		joinedRow("S1", "G1", 2),
		joinedRow("S1", "G1", 3),
		joinedRow("S2", "G2", 6),
		joinedRow("S2", "G2", 7),
	}

	table, err := Aggregate(rows, defaultOpts(domain.ModeIndividual))
	require.NoError(t, err)

	// G1 has up to 3 replicates, G2 up to 2; replicate columns stay
	// contiguous per group, headers flatten to the bare group name.
	assert.Equal(t, []string{"G1", "G1", "G1", "G2", "G2"}, table.Columns)

	require.Equal(t, []string{"S1", "S2"}, table.RowIndex)
	s1 := table.Rows[0]
	assert.Equal(t, []domain.Value{domain.Num(1), domain.Num(2), domain.Num(3), domain.Num(5), domain.Missing()}, s1)
	s2 := table.Rows[1]
	assert.Equal(t, []domain.Value{domain.Missing(), domain.Missing(), domain.Missing(), domain.Num(6), domain.Num(7)}, s2)
}

func TestAggregateIndividualGroupOrderDeclared(t *testing.T) {
	rows := []domain.JoinedRow{
		joinedRow("S1", "Alpha", 1),
		joinedRow("S1", "Beta", 2),
		joinedRow("S1", "Gamma", 3),
	}
	opts := defaultOpts(domain.ModeIndividual)
	opts.GroupOrder = []string{"Gamma", "Alpha"}

	table, err := Aggregate(rows, opts)
	require.NoError(t, err)

	// Declared groups first, the rest appended lexically.
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, table.Columns)
}

func TestAggregateSampleOrderDropsUndeclared(t *testing.T) {
	rows := []domain.JoinedRow{
		joinedRow("S1", "G1", 1),
		joinedRow("S2", "G1", 2),
		joinedRow("S3", "G1", 3),
	}
	opts := defaultOpts(domain.ModeIndividual)
	opts.SampleOrder = []string{"S3", "S1"}

	table, err := Aggregate(rows, opts)
	require.NoError(t, err)

	// Samples outside the declared order are dropped, not appended.
	assert.Equal(t, []string{"S3", "S1"}, table.RowIndex)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, domain.Num(3), table.Rows[0][0])
	assert.Equal(t, domain.Num(1), table.Rows[1][0])
}

func TestAggregateMeanSDSingleReplicate(t *testing.T) {
	rows := []domain.JoinedRow{
		joinedRow("S1", "G1", 10),
		joinedRow("S2", "G1", 20),
	}

	table, err := Aggregate(rows, defaultOpts(domain.ModeMeanSD))
	require.NoError(t, err)

	assert.Equal(t, []string{"G1_Mean", "G1_SD"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, domain.Num(10), table.Rows[0][0], "mean of a single value is that value")
	assert.False(t, table.Rows[0][1].Valid, "one replicate has no dispersion")
}

func TestAggregateMeanSDMath(t *testing.T) {
	rows := []domain.JoinedRow{
		joinedRow("S1", "G1", 10),
		joinedRow("S1", "G1", 20),
		joinedRow("S1", "G1", 30),
	}

	table, err := Aggregate(rows, defaultOpts(domain.ModeMeanSD))
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, domain.Num(20), table.Rows[0][0])
	assert.Equal(t, domain.Num(10), table.Rows[0][1], "sample standard deviation of 10,20,30")
}

func TestAggregateMeanSEM(t *testing.T) {
	rows := []domain.JoinedRow{
		joinedRow("S1", "G1", 10),
		joinedRow("S1", "G1", 20),
		joinedRow("S1", "G1", 30),
		joinedRow("S1", "G1", 40),
	}

	table, err := Aggregate(rows, defaultOpts(domain.ModeMeanSEM))
	require.NoError(t, err)

	assert.Equal(t, []string{"G1_Mean", "G1_SEM"}, table.Columns)
	assert.Equal(t, domain.Num(25), table.Rows[0][0])
	// SD of 10,20,30,40 is 12.909944..., SEM = SD/√4 = 6.454972... → 6.45
	assert.Equal(t, domain.Num(6.45), table.Rows[0][1])
}

func TestAggregateMeanIgnoresMissing(t *testing.T) {
	rows := []domain.JoinedRow{
		joinedRow("S1", "G1", 10),
		{Sample: "S1", SampleOK: true, Group: "G1", GroupOK: true, Value: domain.Missing()},
		joinedRow("S1", "G1", 20),
	}

	table, err := Aggregate(rows, defaultOpts(domain.ModeMeanSD))
	require.NoError(t, err)
	assert.Equal(t, domain.Num(15), table.Rows[0][0], "missing values never pull the mean toward zero")
}

func TestAggregateFiltering(t *testing.T) {
	rows := []domain.JoinedRow{
		joinedRow("S1", "G1", 1),
		joinedRow("S2", "G1", 2),
		joinedRow("S1", "G2", 3),
	}

	t.Run("filter by sample", func(t *testing.T) {
		opts := defaultOpts(domain.ModeIndividual)
		opts.FilterLabels = []string{"S2"}
		table, err := Aggregate(rows, opts)
		require.NoError(t, err)
		assert.Equal(t, []string{"S2"}, table.RowIndex)
		assert.Equal(t, []string{"G1"}, table.Columns)
	})

	t.Run("filter by group", func(t *testing.T) {
		opts := defaultOpts(domain.ModeIndividual)
		opts.FilterAxis = domain.AxisGroup
		opts.FilterLabels = []string{"G2"}
		table, err := Aggregate(rows, opts)
		require.NoError(t, err)
		assert.Equal(t, []string{"G2"}, table.Columns)
		assert.Equal(t, []string{"S1"}, table.RowIndex)
	})

	t.Run("All keeps everything", func(t *testing.T) {
		opts := defaultOpts(domain.ModeIndividual)
		opts.FilterLabels = []string{"All", "S2"}
		table, err := Aggregate(rows, opts)
		require.NoError(t, err)
		assert.Equal(t, []string{"S1", "S2"}, table.RowIndex)
	})

	t.Run("filter removing everything is an error", func(t *testing.T) {
		opts := defaultOpts(domain.ModeIndividual)
		opts.FilterLabels = []string{"nope"}
		_, err := Aggregate(rows, opts)
		assert.ErrorIs(t, err, ErrEmptyResult)
	})
}

func TestAggregateDropsUnlabeledRows(t *testing.T) {
	rows := []domain.JoinedRow{
		joinedRow("S1", "G1", 1),
		{Name: "no labels", Value: domain.Num(99)},
		{Sample: "S1", SampleOK: true, Value: domain.Num(98)}, // group missing
	}

	table, err := Aggregate(rows, defaultOpts(domain.ModeIndividual))
	require.NoError(t, err)
	assert.Equal(t, []string{"G1"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, domain.Num(1), table.Rows[0][0])
}

func TestAggregateUnknownMode(t *testing.T) {
	_, err := Aggregate([]domain.JoinedRow{joinedRow("S1", "G1", 1)}, AggregateOptions{Mode: "nope"})
	require.Error(t, err)
}
