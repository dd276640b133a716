package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/chrissnell/mvtanalyzer/internal/chart"
	"github.com/chrissnell/mvtanalyzer/internal/constants"
	"github.com/chrissnell/mvtanalyzer/internal/dataset"
	"github.com/chrissnell/mvtanalyzer/internal/log"
	"github.com/chrissnell/mvtanalyzer/internal/mvt"
	"github.com/chrissnell/mvtanalyzer/internal/narrate"
	"github.com/chrissnell/mvtanalyzer/pkg/responseformat"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(ctrl.serverConfig.EnableCORS),
	}
}

// errBadRequest marks client input errors
var errBadRequest = errors.New("bad request")

// PostAnalyze analyzes rows supplied in the request body as JSON, CSV or a
// multipart file upload
func (h *Handlers) PostAnalyze(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, h.controller.serverConfig.MaxUploadBytes)

	rows, err := h.readRows(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	h.analyzeAndWrite(w, req, "", rows)
}

// GetDatasets lists the registered datasets
func (h *Handlers) GetDatasets(w http.ResponseWriter, req *http.Request) {
	var infos []DatasetInfo
	for _, name := range h.controller.Datasets.Names() {
		ds, err := h.controller.Datasets.Describe(name)
		if err != nil {
			continue
		}

		source := "inline"
		if ds.File != "" {
			source = "file"
		}
		infos = append(infos, DatasetInfo{
			Name:        ds.Name,
			Description: ds.Description,
			Source:      source,
			Default:     name == h.controller.analysisConfig.DefaultDataset,
		})
	}

	h.write(w, req, infos)
}

// GetDatasetAnalysis analyzes a registered dataset
func (h *Handlers) GetDatasetAnalysis(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	rows, err := h.controller.Datasets.Rows(name)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	h.analyzeAndWrite(w, req, name, rows)
}

// GetDatasetChart returns only the chart geometry of a registered dataset
func (h *Handlers) GetDatasetChart(w http.ResponseWriter, req *http.Request) {
	a, ok := h.analyzeDataset(w, req)
	if !ok {
		return
	}

	fig := chart.Build(a, h.chartOptions())
	h.write(w, req, fig)
}

// GetDatasetNarration explains a registered dataset step by step. format=text
// returns plain text instead of structured sections.
func (h *Handlers) GetDatasetNarration(w http.ResponseWriter, req *http.Request) {
	a, ok := h.analyzeDataset(w, req)
	if !ok {
		return
	}

	if req.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := narrate.Render(w, a); err != nil {
			log.Errorf("error rendering narration: %v", err)
		}
		return
	}

	h.write(w, req, narrate.Build(a))
}

// GetHealth reports liveness
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, HealthResponse{Status: "ok", Version: constants.Version})
}

// GetRequestLog returns the most recent HTTP requests
func (h *Handlers) GetRequestLog(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, log.GetHTTPLogBuffer().Entries())
}

func (h *Handlers) analyzeDataset(w http.ResponseWriter, req *http.Request) (*mvt.Analysis, bool) {
	name := mux.Vars(req)["name"]

	rows, err := h.controller.Datasets.Rows(name)
	if err != nil {
		h.writeError(w, req, err)
		return nil, false
	}

	a, err := mvt.AnalyzeRows(rows)
	if err != nil {
		h.writeError(w, req, err)
		return nil, false
	}
	h.logWarnings(req, name, a)
	return a, true
}

// analyzeAndWrite runs the pipeline once and hands the same result to every
// requested view (include=chart,narration)
func (h *Handlers) analyzeAndWrite(w http.ResponseWriter, req *http.Request, name string, rows []mvt.RawRow) {
	a, err := mvt.AnalyzeRows(rows)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.logWarnings(req, name, a)

	resp := AnalyzeResponse{
		ID:       uuid.NewString(),
		Dataset:  name,
		Analysis: a,
	}

	for _, include := range strings.Split(req.URL.Query().Get("include"), ",") {
		switch strings.TrimSpace(include) {
		case "chart":
			fig := chart.Build(a, h.chartOptions())
			resp.Chart = &fig
		case "narration":
			n := narrate.Build(a)
			resp.Narration = &n
		}
	}

	h.write(w, req, resp)
}

func (h *Handlers) readRows(req *http.Request) ([]mvt.RawRow, error) {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil {
		mediaType = "application/json"
	}

	switch mediaType {
	case "multipart/form-data":
		file, _, err := req.FormFile("file")
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: multipart upload needs a 'file' field: %w", errBadRequest, err)
		}
		defer file.Close()
		return dataset.ReadCSV(file)

	case "text/csv", "text/plain":
		return dataset.ReadCSV(req.Body)

	default:
		var body AnalyzeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: empty request body", errBadRequest)
			}
			return nil, fmt.Errorf("%w: invalid JSON: %w", errBadRequest, err)
		}
		return body.rawRows(), nil
	}
}

func (h *Handlers) chartOptions() chart.Options {
	return chart.Options{
		HalfWidth: h.controller.analysisConfig.TangentHalfWidth,
		Points:    h.controller.analysisConfig.TangentPoints,
	}
}

func (h *Handlers) logWarnings(req *http.Request, name string, a *mvt.Analysis) {
	for _, warning := range a.Warnings {
		h.controller.logger.Warnw("dropped non-numeric row",
			"request_id", requestID(req), "dataset", name, "row", warning.Row, "raw", warning.Raw)
	}
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, nil); err != nil {
		log.Errorf("error encoding response: %v", err)
	}
}

// writeError maps pipeline and input errors onto HTTP status codes
func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := http.StatusInternalServerError

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, mvt.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, dataset.ErrUnknownDataset):
		status = http.StatusNotFound
	case errors.As(err, &maxBytesErr):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, dataset.ErrBadColumns), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Errorf("request %s failed: %v", requestID(req), err)
	}

	if werr := h.formatter.WriteError(w, req, status, err, requestID(req)); werr != nil {
		log.Errorf("error encoding error response: %v", werr)
	}
}
