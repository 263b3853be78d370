package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "flowplate/internal/errors"
	"flowplate/internal/dataprocessing"
	"flowplate/internal/exporter"
	"flowplate/internal/services"
	"flowplate/pkg/contracts/domain"
)

// SessionHandler handles session lifecycle, file loading, and pipeline runs.
type SessionHandler struct {
	service      *services.SessionService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	exportDir    string
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(service *services.SessionService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, exportDir string) *SessionHandler {
	return &SessionHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "session_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
		exportDir:    exportDir,
	}
}

// Routes returns the session routes.
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.CreateSession)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Delete("/", h.DeleteSession)
		r.Get("/status", h.GetStatus)
		r.Post("/sample-map", h.LoadSampleMap)
		r.Post("/group-map", h.LoadGroupMap)
		r.Post("/measurements", h.LoadMeasurements)
		r.Get("/labels", h.GetLabels)
		r.Get("/metrics", h.GetMetrics)
		r.Post("/process", h.Process)
		r.Post("/export", h.Export)
	})
	return r
}

type loadRequest struct {
	Path string `json:"path" validate:"required"`
}

type loadManyRequest struct {
	Paths []string `json:"paths" validate:"required,min=1,dive,required"`
}

type exportRequest struct {
	services.ProcessRequest
	IncludeHeader bool   `json:"include_header"`
	Destination   string `json:"destination"` // file name, or empty for clipboard
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.service.CreateSession(r.Context())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"session_id": id})
}

// DeleteSession handles DELETE /api/sessions/{sessionID}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.service.DeleteSession(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	render.NoContent(w, r)
}

// GetStatus handles GET /api/sessions/{sessionID}/status
func (h *SessionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	status, err := h.service.Status(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	render.JSON(w, r, status)
}

// LoadSampleMap handles POST /api/sessions/{sessionID}/sample-map
func (h *SessionHandler) LoadSampleMap(w http.ResponseWriter, r *http.Request) {
	h.loadPlate(w, r, "sample map", h.service.LoadSampleMap)
}

// LoadGroupMap handles POST /api/sessions/{sessionID}/group-map
func (h *SessionHandler) LoadGroupMap(w http.ResponseWriter, r *http.Request) {
	h.loadPlate(w, r, "group map", h.service.LoadGroupMap)
}

func (h *SessionHandler) loadPlate(w http.ResponseWriter, r *http.Request, kind string,
	load func(ctx context.Context, id, path string) (domain.LoadState, error)) {

	id := chi.URLParam(r, "sessionID")
	var req loadRequest
	if !h.decode(w, r, &req) {
		return
	}

	state, err := load(r.Context(), id, req.Path)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.ErrSessionNotFound)
			return
		}
		// The failed slot's state stays queryable via GET /status.
		h.errorHandler.HandleError(w, r, apierrors.LoadFailedError(kind, err))
		return
	}
	render.JSON(w, r, state)
}

// LoadMeasurements handles POST /api/sessions/{sessionID}/measurements
func (h *SessionHandler) LoadMeasurements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var req loadManyRequest
	if !h.decode(w, r, &req) {
		return
	}

	state, err := h.service.LoadMeasurements(r.Context(), id, req.Paths...)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.ErrSessionNotFound)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.LoadFailedError("measurement data", err))
		return
	}
	render.JSON(w, r, state)
}

// GetLabels handles GET /api/sessions/{sessionID}/labels?axis=sample|group
func (h *SessionHandler) GetLabels(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	axis := domain.FilterAxis(r.URL.Query().Get("axis"))
	if axis == "" {
		axis = domain.AxisSample
	}
	if !axis.Valid() {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("axis", "must be sample or group"))
		return
	}

	labels, err := h.service.Labels(r.Context(), id, axis)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{"axis": axis, "labels": labels})
}

// GetMetrics handles GET /api/sessions/{sessionID}/metrics
func (h *SessionHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	metrics, err := h.service.Metrics(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{"metrics": metrics})
}

// Process handles POST /api/sessions/{sessionID}/process
func (h *SessionHandler) Process(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var req services.ProcessRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Process(r.Context(), id, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	render.JSON(w, r, result)
}

// Export handles POST /api/sessions/{sessionID}/export
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var req exportRequest
	if !h.decode(w, r, &req) {
		return
	}

	var sink exporter.Sink
	destination := "clipboard"
	if req.Destination != "" {
		path := filepath.Join(h.exportDir, filepath.Base(req.Destination))
		sink = exporter.NewFileSink(path, h.logger)
		destination = path
	} else {
		sink = exporter.ClipboardSink{}
	}

	if err := h.service.Export(r.Context(), id, req.ProcessRequest, req.IncludeHeader, sink); err != nil {
		h.errorHandler.HandleError(w, r, h.mapError(err))
		return
	}
	render.JSON(w, r, map[string]string{"destination": destination})
}

// decode unmarshals and validates a JSON request body.
func (h *SessionHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(verrs[0].Field(), verrs[0].Tag()))
		} else {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidationFailed)
		}
		return false
	}
	return true
}

// mapError maps service and pipeline errors to API errors.
func (h *SessionHandler) mapError(err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return apierrors.ErrSessionNotFound
	case errors.Is(err, services.ErrNotReady),
		errors.Is(err, services.ErrLayoutMismatch),
		errors.Is(err, dataprocessing.ErrNoMeasurementSelected):
		return apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_OPTIONS", err.Error(), nil)
	case errors.Is(err, dataprocessing.ErrNoSampleMatches),
		errors.Is(err, dataprocessing.ErrNoGroupMatches),
		errors.Is(err, dataprocessing.ErrEmptyResult),
		errors.Is(err, dataprocessing.ErrNoResults):
		return apierrors.ProcessFailedError(err)
	default:
		return err
	}
}
