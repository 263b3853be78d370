package domain

import (
	"fmt"
	"regexp"
)

// WellID identifies a single well on a plate: one row letter followed by a
// zero-padded two-digit column number, e.g. "A01" or "C12". Equality is exact
// string match.
type WellID string

var wellIDPattern = regexp.MustCompile(`^[A-Z][0-9]{2}$`)

// WellIDForCell builds the canonical WellID for a 0-based plate row and a
// 1-based plate column.
func WellIDForCell(row, col int) WellID {
	return WellID(fmt.Sprintf("%c%02d", rune('A'+row), col))
}

// Valid reports whether the WellID is in canonical form.
func (w WellID) Valid() bool {
	return wellIDPattern.MatchString(string(w))
}

// PlateEntry is one well→label assignment inside a PlateMap.
type PlateEntry struct {
	Well  WellID `json:"well"`
	Label string `json:"label"`
}

// PlateMap is an ordered mapping of wells to annotation labels. Each well
// appears at most once; assigning a well again replaces the earlier label in
// place. A PlateMap is built once per loaded annotation file and replaced
// wholesale on reload, never mutated afterwards.
type PlateMap struct {
	entries []PlateEntry
	index   map[WellID]int
}

// NewPlateMap returns an empty plate map.
func NewPlateMap() *PlateMap {
	return &PlateMap{index: make(map[WellID]int)}
}

// Set assigns a label to a well. A repeated well keeps its original position
// but takes the later label.
func (m *PlateMap) Set(well WellID, label string) {
	if i, ok := m.index[well]; ok {
		m.entries[i].Label = label
		return
	}
	m.index[well] = len(m.entries)
	m.entries = append(m.entries, PlateEntry{Well: well, Label: label})
}

// Lookup returns the label assigned to a well.
func (m *PlateMap) Lookup(well WellID) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[well]
	if !ok {
		return "", false
	}
	return m.entries[i].Label, true
}

// Len returns the number of annotated wells.
func (m *PlateMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the well assignments in insertion order.
func (m *PlateMap) Entries() []PlateEntry {
	if m == nil {
		return nil
	}
	out := make([]PlateEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Labels returns the distinct labels in first-seen order.
func (m *PlateMap) Labels() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]bool, len(m.entries))
	var labels []string
	for _, e := range m.entries {
		if !seen[e.Label] {
			seen[e.Label] = true
			labels = append(labels, e.Label)
		}
	}
	return labels
}
