package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"flowplate/internal/dataprocessing"
	"flowplate/internal/exporter"
	"flowplate/pkg/contracts/domain"
)

var processRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "flowplate_pipeline_runs_total",
	Help: "Completed pipeline runs by aggregation mode and output layout.",
}, []string{"mode", "layout"})

// Loader abstracts spreadsheet decoding so the service can be exercised
// without .xlsx fixtures.
type Loader interface {
	LoadPlateMap(path string) (*domain.PlateMap, []string, error)
	LoadMeasurementFile(path string) (*domain.MeasurementSet, error)
}

// fileLoader is the production loader backed by excelize.
type fileLoader struct{}

func (fileLoader) LoadPlateMap(path string) (*domain.PlateMap, []string, error) {
	return dataprocessing.LoadPlateMap(path)
}

func (fileLoader) LoadMeasurementFile(path string) (*domain.MeasurementSet, error) {
	return dataprocessing.LoadMeasurementFile(path)
}

// SessionService owns the live sessions. Each session's pipeline is
// synchronous, but the HTTP surface is concurrent, so the registry and each
// mutation run under the service lock.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*Session
	loader   Loader
	logger   *slog.Logger
}

// NewSessionService creates a session service using spreadsheet files as the
// input source.
func NewSessionService(logger *slog.Logger) *SessionService {
	return NewSessionServiceWithLoader(logger, fileLoader{})
}

// NewSessionServiceWithLoader creates a session service with a custom loader.
func NewSessionServiceWithLoader(logger *slog.Logger, loader Loader) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		sessions: make(map[string]*Session),
		loader:   loader,
		logger:   logger.With(slog.String("component", "session_service")),
	}
}

// CreateSession registers a new empty session and returns its ID.
func (s *SessionService) CreateSession(ctx context.Context) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = newSession(id)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session created", slog.String("session_id", id))
	return id
}

// DeleteSession removes a session and everything it loaded.
func (s *SessionService) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.logger.InfoContext(ctx, "session deleted", slog.String("session_id", id))
	return nil
}

func (s *SessionService) get(id string) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Status reports the load state of every input slot.
func (s *SessionService) Status(ctx context.Context, id string) (*SessionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return &SessionStatus{
		SampleMap:    sess.sampleState,
		GroupMap:     sess.groupState,
		Measurements: sess.measurementState,
		FileCount:    len(sess.sets),
	}, nil
}

// LoadSampleMap replaces the session's sample map from an annotation
// spreadsheet. On failure the slot is cleared, not left half-loaded.
func (s *SessionService) LoadSampleMap(ctx context.Context, id, path string) (domain.LoadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return domain.LoadState{}, err
	}

	plate, order, err := s.loader.LoadPlateMap(path)
	if err != nil {
		sess.sampleMap, sess.sampleOrder = nil, nil
		sess.sampleState = domain.LoadState{Status: domain.StatusError, Message: err.Error()}
		s.logger.WarnContext(ctx, "sample map load failed",
			slog.String("session_id", id),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return sess.sampleState, fmt.Errorf("failed to load sample map: %w", err)
	}

	sess.sampleMap, sess.sampleOrder = plate, order
	sess.sampleState = domain.LoadState{Status: domain.StatusLoaded}
	s.logger.InfoContext(ctx, "sample map loaded",
		slog.String("session_id", id),
		slog.String("path", path),
		slog.Int("wells", plate.Len()),
		slog.Int("declared_order", len(order)))
	return sess.sampleState, nil
}

// LoadGroupMap replaces the session's group map from an annotation
// spreadsheet.
func (s *SessionService) LoadGroupMap(ctx context.Context, id, path string) (domain.LoadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return domain.LoadState{}, err
	}

	plate, order, err := s.loader.LoadPlateMap(path)
	if err != nil {
		sess.groupMap, sess.groupOrder = nil, nil
		sess.groupState = domain.LoadState{Status: domain.StatusError, Message: err.Error()}
		s.logger.WarnContext(ctx, "group map load failed",
			slog.String("session_id", id),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return sess.groupState, fmt.Errorf("failed to load group map: %w", err)
	}

	sess.groupMap, sess.groupOrder = plate, order
	sess.groupState = domain.LoadState{Status: domain.StatusLoaded}
	s.logger.InfoContext(ctx, "group map loaded",
		slog.String("session_id", id),
		slog.String("path", path),
		slog.Int("wells", plate.Len()),
		slog.Int("declared_order", len(order)))
	return sess.groupState, nil
}

// LoadMeasurements clears the session's measurement sets and loads the given
// files in order. Loading is best-effort, not atomic: a failure mid-list
// keeps the files already loaded in this call and reports the first failing
// file.
func (s *SessionService) LoadMeasurements(ctx context.Context, id string, paths ...string) (domain.LoadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return domain.LoadState{}, err
	}

	sess.sets = nil
	for _, path := range paths {
		set, err := s.loader.LoadMeasurementFile(path)
		if err != nil {
			sess.measurementState = domain.LoadState{
				Status:  domain.StatusError,
				Message: fmt.Sprintf("%s: %v", path, err),
			}
			s.logger.WarnContext(ctx, "measurement load failed",
				slog.String("session_id", id),
				slog.String("path", path),
				slog.Int("loaded_before_failure", len(sess.sets)),
				slog.String("error", err.Error()))
			return sess.measurementState, fmt.Errorf("failed to load measurement file %s: %w", path, err)
		}
		sess.sets = append(sess.sets, set)
	}

	if len(sess.sets) == 0 {
		sess.measurementState = domain.LoadState{Status: domain.StatusUnloaded}
		return sess.measurementState, nil
	}

	sess.measurementState = domain.LoadState{Status: domain.StatusLoaded}
	s.logger.InfoContext(ctx, "measurements loaded",
		slog.String("session_id", id),
		slog.Int("files", len(sess.sets)))
	return sess.measurementState, nil
}

// Labels returns the selectable labels for the active filter axis, always
// headed by "All". Declared-order labels come first, remaining labels follow
// sorted lexically.
func (s *SessionService) Labels(ctx context.Context, id string, axis domain.FilterAxis) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	var plate *domain.PlateMap
	var declared []string
	if axis == domain.AxisGroup {
		plate, declared = sess.groupMap, sess.groupOrder
	} else {
		plate, declared = sess.sampleMap, sess.sampleOrder
	}

	labels := []string{domain.FilterAll}
	if plate != nil {
		labels = append(labels, dataprocessing.ResolveOrder(plate.Labels(), declared)...)
	}
	return labels, nil
}

// Metrics returns the metric names on offer: the single file's columns in
// header order, or the lexically sorted intersection across files when
// several are loaded.
func (s *SessionService) Metrics(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	switch len(sess.sets) {
	case 0:
		return nil, nil
	case 1:
		return append([]string(nil), sess.sets[0].Metrics...), nil
	default:
		return dataprocessing.CommonMetrics(sess.sets), nil
	}
}

// Process runs the full pipeline for a session: join, filter, aggregate,
// reshape. It reads the session's loaded state but never modifies it, so a
// failed run leaves everything intact for a retry with different options.
func (s *SessionService) Process(ctx context.Context, id string, req ProcessRequest) (*domain.ResultTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, sess, req)
}

func (s *SessionService) process(ctx context.Context, sess *Session, req ProcessRequest) (*domain.ResultTable, error) {
	if !sess.ready() {
		return nil, ErrNotReady
	}
	if req.Metric == "" {
		return nil, dataprocessing.ErrNoMeasurementSelected
	}
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("unknown aggregation mode %q", req.Mode)
	}
	if !req.Layout.Valid() {
		return nil, fmt.Errorf("unknown output layout %q", req.Layout)
	}
	if req.Layout != domain.LayoutXY && len(sess.sets) > 1 {
		return nil, fmt.Errorf("%w: %s layout needs a single measurement file, %d are loaded",
			ErrLayoutMismatch, req.Layout, len(sess.sets))
	}

	axis := req.FilterAxis
	if !axis.Valid() {
		axis = domain.AxisSample
	}
	opts := dataprocessing.AggregateOptions{
		Mode:         req.Mode,
		FilterAxis:   axis,
		FilterLabels: req.FilterLabels,
		SampleOrder:  sess.sampleOrder,
		GroupOrder:   sess.groupOrder,
	}

	tables := make([]*domain.ResultTable, 0, len(sess.sets))
	sources := make([]string, 0, len(sess.sets))
	for _, set := range sess.sets {
		joined, err := dataprocessing.Join(set, sess.sampleMap, sess.groupMap, req.Metric)
		if err != nil {
			return nil, err
		}
		table, err := dataprocessing.Aggregate(joined, opts)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
		sources = append(sources, set.Source)
	}

	var result *domain.ResultTable
	var err error
	switch req.Layout {
	case domain.LayoutSingleRow:
		result, err = dataprocessing.ReshapeSingleRow(tables[0], s.logger)
	case domain.LayoutXY:
		result, err = dataprocessing.ReshapeXY(tables, sources)
	default:
		result = tables[0]
	}
	if err != nil {
		return nil, err
	}

	processRuns.WithLabelValues(string(req.Mode), string(req.Layout)).Inc()
	s.logger.InfoContext(ctx, "processing complete",
		slog.String("session_id", sess.ID),
		slog.String("metric", req.Metric),
		slog.String("mode", string(req.Mode)),
		slog.String("layout", string(req.Layout)),
		slog.Int("rows", result.NumRows()),
		slog.Int("columns", result.NumColumns()))
	return result, nil
}

// Export runs Process and hands the serialized blob to the sink.
func (s *SessionService) Export(ctx context.Context, id string, req ProcessRequest, includeHeader bool, sink exporter.Sink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(id)
	if err != nil {
		return err
	}

	table, err := s.process(ctx, sess, req)
	if err != nil {
		return err
	}

	blob := exporter.FormatTSV(table, includeHeader)
	if err := sink.Write(blob); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}
