package domain

import (
	"encoding/json"
	"strconv"
)

// Value is a numeric cell that may be missing. Missing is distinct from zero:
// a non-numeric or absent reading never contributes to a mean or a count.
type Value struct {
	Float64 float64
	Valid   bool
}

// Num returns a present numeric value.
func Num(f float64) Value {
	return Value{Float64: f, Valid: true}
}

// Missing returns an absent value.
func Missing() Value {
	return Value{}
}

// String renders the value for delimited output; missing values render as the
// empty string.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

// MarshalJSON renders the value as a number, or null when missing.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Num(f)
	return nil
}

// MeasurementRow is one physical specimen from a measurement file: its
// identifying name, the well derived from that name (empty when the name does
// not carry a well suffix), and the raw metric cells keyed by metric name.
type MeasurementRow struct {
	Name    string            `json:"name"`
	Well    WellID            `json:"well,omitempty"`
	Metrics map[string]string `json:"metrics"`
}

// MeasurementSet holds the rows of one loaded measurement file, in file order.
type MeasurementSet struct {
	Source  string           `json:"source"`
	Rows    []MeasurementRow `json:"rows"`
	Metrics []string         `json:"metrics"`
}

// JoinedRow is a MeasurementRow merged with its sample and group labels and
// the chosen metric's numeric reading.
type JoinedRow struct {
	Name     string `json:"name"`
	Well     WellID `json:"well,omitempty"`
	Sample   string `json:"sample,omitempty"`
	SampleOK bool   `json:"sample_ok"`
	Group    string `json:"group,omitempty"`
	GroupOK  bool   `json:"group_ok"`
	Value    Value  `json:"value"`
}
