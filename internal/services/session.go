package services

import (
	"errors"

	"flowplate/pkg/contracts/domain"
)

// Service-level sentinel errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotReady        = errors.New("load the sample map, group map, and measurement data first")
	ErrLayoutMismatch  = errors.New("output layout does not fit the number of loaded measurement files")
)

// Session owns everything one analyst has loaded: the two annotation maps,
// their declared orderings, the measurement sets, and per-slot load status.
// Loads replace their slot wholesale; the processing pipeline reads the
// session but never mutates it.
type Session struct {
	ID string

	sampleMap   *domain.PlateMap
	sampleOrder []string
	sampleState domain.LoadState

	groupMap   *domain.PlateMap
	groupOrder []string
	groupState domain.LoadState

	sets             []*domain.MeasurementSet
	measurementState domain.LoadState
}

func newSession(id string) *Session {
	return &Session{
		ID:               id,
		sampleState:      domain.LoadState{Status: domain.StatusUnloaded},
		groupState:       domain.LoadState{Status: domain.StatusUnloaded},
		measurementState: domain.LoadState{Status: domain.StatusUnloaded},
	}
}

// ready reports whether every input slot needed for processing is loaded.
func (s *Session) ready() bool {
	return s.sampleMap != nil && s.groupMap != nil && len(s.sets) > 0
}

// SessionStatus is the per-slot load status exposed to the caller.
type SessionStatus struct {
	SampleMap    domain.LoadState `json:"sample_map"`
	GroupMap     domain.LoadState `json:"group_map"`
	Measurements domain.LoadState `json:"measurements"`
	FileCount    int              `json:"file_count"`
}

// ProcessRequest carries the analyst's processing choices.
type ProcessRequest struct {
	Metric       string                 `json:"metric" validate:"required"`
	Mode         domain.AggregationMode `json:"mode" validate:"required"`
	Layout       domain.OutputLayout    `json:"layout" validate:"required"`
	FilterAxis   domain.FilterAxis      `json:"filter_axis" validate:"required"`
	FilterLabels []string               `json:"filter_labels"`
}
