package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowplate/pkg/contracts/domain"
)

func plateFrom(assignments map[domain.WellID]string) *domain.PlateMap {
	plate := domain.NewPlateMap()
	for well, label := range assignments {
		plate.Set(well, label)
	}
	return plate
}

func measurementSet(rows ...domain.MeasurementRow) *domain.MeasurementSet {
	return &domain.MeasurementSet{Source: "test.xlsx", Rows: rows, Metrics: []string{"m"}}
}

func row(name string, well domain.WellID, m string) domain.MeasurementRow {
	return domain.MeasurementRow{Name: name, Well: well, Metrics: map[string]string{"m": m}}
}

func TestJoin(t *testing.T) {
	samples := plateFrom(map[domain.WellID]string{"A01": "S1", "A02": "S2"})
	groups := plateFrom(map[domain.WellID]string{"A01": "G1", "A02": "G1"})

	set := measurementSet(
		row("x_A01.fcs", "A01", "10"),
		row("x_A02.fcs", "A02", "20.456"),
		row("unmatched", "", "30"),
		row("x_B01.fcs", "B01", "40"),
	)

	joined, err := Join(set, samples, groups, "m")
	require.NoError(t, err)
	require.Len(t, joined, 4, "join preserves input order and row count")

	assert.Equal(t, "S1", joined[0].Sample)
	assert.True(t, joined[0].SampleOK)
	assert.Equal(t, "G1", joined[0].Group)
	assert.Equal(t, domain.Num(10), joined[0].Value)

	assert.Equal(t, domain.Num(20.46), joined[1].Value, "metric values round to 2 decimals")

	assert.False(t, joined[2].SampleOK, "row without a well never matches")
	assert.False(t, joined[2].GroupOK)

	assert.False(t, joined[3].SampleOK, "well absent from the map stays unmatched")
}

func TestJoinMissingValues(t *testing.T) {
	samples := plateFrom(map[domain.WellID]string{"A01": "S1"})
	groups := plateFrom(map[domain.WellID]string{"A01": "G1"})
	set := measurementSet(
		row("x_A01.fcs", "A01", "not a number"),
	)

	joined, err := Join(set, samples, groups, "m")
	require.NoError(t, err)
	assert.False(t, joined[0].Value.Valid, "non-numeric input is missing, not zero")
	assert.Equal(t, 0.0, joined[0].Value.Float64)
}

func TestJoinErrors(t *testing.T) {
	samples := plateFrom(map[domain.WellID]string{"A01": "S1"})
	groups := plateFrom(map[domain.WellID]string{"A01": "G1"})

	t.Run("no metric selected", func(t *testing.T) {
		_, err := Join(measurementSet(row("x_A01.fcs", "A01", "1")), samples, groups, "")
		assert.ErrorIs(t, err, ErrNoMeasurementSelected)
	})

	t.Run("no sample matches", func(t *testing.T) {
		set := measurementSet(row("x_C05.fcs", "C05", "1"))
		_, err := Join(set, samples, groups, "m")
		assert.ErrorIs(t, err, ErrNoSampleMatches)
	})

	t.Run("no group matches", func(t *testing.T) {
		wideSamples := plateFrom(map[domain.WellID]string{"C05": "S9"})
		set := measurementSet(row("x_C05.fcs", "C05", "1"))
		_, err := Join(set, wideSamples, groups, "m")
		assert.ErrorIs(t, err, ErrNoGroupMatches)
	})
}
