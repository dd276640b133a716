package restserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chrissnell/mvtanalyzer/internal/log"
	"github.com/chrissnell/mvtanalyzer/pkg/config"
	"github.com/chrissnell/mvtanalyzer/pkg/responseformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const serverYAML = `
server:
  listen-addr: 127.0.0.1
  port: 0
  max-upload-bytes: %d
analysis:
  default-dataset: revenue
datasets:
  - name: revenue
    description: Three quarters
    rows:
      - period: Q1
        value: 100
      - period: Q2
        value: 110
      - period: Q3
        value: 130
  - name: uploads
    file: %s
`

// analysisBody mirrors the wire shape of an analysis response with enums as text
type analysisBody struct {
	ID       string `json:"id"`
	Dataset  string `json:"dataset"`
	Analysis struct {
		Records []struct {
			SegmentLabel string  `json:"segment_label"`
			Slope        float64 `json:"slope"`
			CPosition    float64 `json:"c_position"`
			CMethod      string  `json:"c_method"`
		} `json:"mvt_records"`
		OverallTrend string `json:"overall_trend"`
		Warnings     []struct {
			Row int    `json:"row"`
			Raw string `json:"raw"`
		} `json:"warnings"`
	} `json:"analysis"`
	Chart     *json.RawMessage `json:"chart"`
	Narration *json.RawMessage `json:"narration"`
}

func newTestController(t *testing.T, maxUpload int) *Controller {
	t.Helper()
	log.SetLogger(zap.NewNop())

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "uploads.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("period,value\nJan,10\nFeb,8\nMar,5\n"), 0o600))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(serverYAML, maxUpload, csvPath)), 0o600))

	provider := config.NewYAMLProvider(cfgPath)
	t.Cleanup(func() { provider.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ctrl, err := NewController(ctx, &sync.WaitGroup{}, provider, zap.NewNop().Sugar())
	require.NoError(t, err)
	return ctrl
}

func serve(ctrl *Controller, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ctrl.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeAnalysis(t *testing.T, rec *httptest.ResponseRecorder) analysisBody {
	t.Helper()
	var body analysisBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	rec := serve(ctrl, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Version)
}

func TestRequestIDIsReused(t *testing.T) {
	ctrl := newTestController(t, 1<<20)
	id := "0b9c7a51-8e1f-4c1e-9d57-6d1f1e2b3c4d"

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := serve(ctrl, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = serve(ctrl, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestGetDatasets(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	rec := serve(ctrl, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 3)

	assert.Equal(t, DatasetInfo{Name: "revenue", Description: "Three quarters", Source: "inline", Default: true}, infos[0])
	assert.Equal(t, "sample", infos[1].Name)
	assert.False(t, infos[1].Default)
	assert.Equal(t, "uploads", infos[2].Name)
	assert.Equal(t, "file", infos[2].Source)
}

func TestGetDatasetAnalysis(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	rec := serve(ctrl, httptest.NewRequest(http.MethodGet, "/api/datasets/revenue/analysis", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, responseformat.ContentTypeJSON, rec.Header().Get("Content-Type"))

	body := decodeAnalysis(t, rec)
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "revenue", body.Dataset)
	assert.Equal(t, "GROWTH", body.Analysis.OverallTrend)
	require.Len(t, body.Analysis.Records, 2)

	first := body.Analysis.Records[0]
	assert.Equal(t, "Q1 → Q2", first.SegmentLabel)
	assert.InDelta(t, 10.0, first.Slope, 1e-9)
	assert.InDelta(t, 0.0, first.CPosition, 1e-9)
	assert.Equal(t, "INTERIOR_INTERPOLATION", first.CMethod)

	assert.Nil(t, body.Chart)
	assert.Nil(t, body.Narration)
}

func TestGetDatasetAnalysisFromFile(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	rec := serve(ctrl, httptest.NewRequest(http.MethodGet, "/api/datasets/uploads/analysis", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeAnalysis(t, rec)
	assert.Equal(t, "DECLINE", body.Analysis.OverallTrend)
	assert.Len(t, body.Analysis.Records, 2)
}

func TestGetDatasetAnalysisInclude(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	rec := serve(ctrl, httptest.NewRequest(http.MethodGet, "/api/datasets/sample/analysis?include=chart,narration", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeAnalysis(t, rec)
	assert.Len(t, body.Analysis.Records, 5)
	assert.NotNil(t, body.Chart)
	assert.NotNil(t, body.Narration)
}

func TestUnknownDataset(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	for _, path := range []string{
		"/api/datasets/nope/analysis",
		"/api/datasets/nope/chart",
		"/api/datasets/nope/narration",
	} {
		t.Run(path, func(t *testing.T) {
			rec := serve(ctrl, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)

			var body responseformat.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Error, "unknown dataset")
			assert.Equal(t, rec.Header().Get(RequestIDHeader), body.RequestID)
		})
	}
}

func TestGetDatasetChart(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	rec := serve(ctrl, httptest.NewRequest(http.MethodGet, "/api/datasets/sample/chart", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var fig struct {
		Labels   []string          `json:"labels"`
		Markers  []json.RawMessage `json:"markers"`
		Tangents []struct {
			Points []json.RawMessage `json:"points"`
		} `json:"tangents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fig))
	assert.Len(t, fig.Labels, 6)
	assert.Len(t, fig.Markers, 5)
	require.Len(t, fig.Tangents, 5)
	assert.Len(t, fig.Tangents[0].Points, config.DefaultTangentPoints)
}

func TestGetDatasetNarration(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	rec := serve(ctrl, httptest.NewRequest(http.MethodGet, "/api/datasets/sample/narration", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var n struct {
		Sections []json.RawMessage `json:"sections"`
		Summary  string            `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.Len(t, n.Sections, 5)
	assert.Contains(t, n.Summary, "growing")

	rec = serve(ctrl, httptest.NewRequest(http.MethodGet, "/api/datasets/sample/narration?format=text", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Body.String(), "Q1 2024 → Q2 2024")
	assert.Contains(t, rec.Body.String(), "growing")
}

func TestPostAnalyzeJSON(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	payload := `{"rows":[
		{"label":"Jan","value":10},
		{"label":"Feb","value":"12.5"},
		{"label":"Mar","value":"n/a"},
		{"label":"Apr","value":15}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(ctrl, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeAnalysis(t, rec)
	assert.Empty(t, body.Dataset)
	require.Len(t, body.Analysis.Records, 2)
	assert.Equal(t, "Feb → Apr", body.Analysis.Records[1].SegmentLabel)
	require.Len(t, body.Analysis.Warnings, 1)
	assert.Equal(t, "n/a", body.Analysis.Warnings[0].Raw)
}

func TestPostAnalyzeCSV(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("Period,Value\nA,1\nB,1\n"))
	req.Header.Set("Content-Type", "text/csv")
	rec := serve(ctrl, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeAnalysis(t, rec)
	require.Len(t, body.Analysis.Records, 1)
	assert.Equal(t, "MIDPOINT_TIE", body.Analysis.Records[0].CMethod)
	assert.InDelta(t, 0.5, body.Analysis.Records[0].CPosition, 1e-9)
	assert.Equal(t, "STABLE", body.Analysis.OverallTrend)
}

func TestPostAnalyzeMultipart(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "data.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("period,value\nQ1,5\nQ2,7\nQ3,6\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := serve(ctrl, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeAnalysis(t, rec)
	assert.Len(t, body.Analysis.Records, 2)
}

func TestPostAnalyzeErrors(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{"single row", "application/json", `{"rows":[{"label":"A","value":1}]}`, http.StatusUnprocessableEntity},
		{"all rows invalid", "application/json", `{"rows":[{"label":"A","value":"x"},{"label":"B","value":"y"}]}`, http.StatusUnprocessableEntity},
		{"empty body", "application/json", ``, http.StatusBadRequest},
		{"malformed json", "application/json", `{"rows":`, http.StatusBadRequest},
		{"unknown columns", "text/csv", "a,b,c\n1,2,3\n", http.StatusBadRequest},
		{"multipart without file", "multipart/form-data; boundary=xyz", "--xyz--\r\n", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := serve(ctrl, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body responseformat.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestPostAnalyzeTooLarge(t *testing.T) {
	ctrl := newTestController(t, 64)

	payload := `{"rows":[{"label":"` + strings.Repeat("x", 200) + `","value":1},{"label":"B","value":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(ctrl, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestPostAnalyzeMultipartTooLarge(t *testing.T) {
	ctrl := newTestController(t, 64)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "data.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("period,value\n" + strings.Repeat("Q1,1\n", 100)))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := serve(ctrl, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestMsgPackResponse(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	rec := serve(ctrl, httptest.NewRequest(http.MethodGet, "/api/datasets/sample/analysis?format=msgpack", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, responseformat.ContentTypeMsgPack, rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestRequestLog(t *testing.T) {
	ctrl := newTestController(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := serve(ctrl, req)
	id := rec.Header().Get(RequestIDHeader)

	rec = serve(ctrl, httptest.NewRequest(http.MethodGet, "/debug/requests", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)
}

func TestNewControllerValidation(t *testing.T) {
	log.SetLogger(zap.NewNop())

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown default dataset", "analysis:\n  default-dataset: missing\n"},
		{"cert without key", "server:\n  cert: /tmp/cert.pem\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := NewController(context.Background(), &sync.WaitGroup{}, config.NewYAMLProvider(path), zap.NewNop().Sugar())
			assert.Error(t, err)
		})
	}
}
