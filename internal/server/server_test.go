package server_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/markboard-cli/internal/analysis"
	"github.com/KaramelBytes/markboard-cli/internal/grades"
	"github.com/KaramelBytes/markboard-cli/internal/pipeline"
	"github.com/KaramelBytes/markboard-cli/internal/server"
)

const marksCSV = "Course,Gender,Subject,Internal 1,Internal 2,External\n" +
	"BCA,Boy,Math,20,15,10\n" +
	"BCA,Girl,Math,10,10,10\n" +
	"BCA,Girl,Physics,25,20,30\n"

func newTestServer(t *testing.T, maxUpload int64) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.New(server.Config{MaxUploadBytes: maxUpload, Grades: grades.DefaultOptions()}, logger, prometheus.NewRegistry())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := do(t, http.MethodPost, ts.URL+"/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var snap struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	decode(t, resp, &snap)
	require.NotEmpty(t, snap.ID)
	assert.Equal(t, "empty", snap.State)
	return snap.ID
}

func dataURL(s string) string {
	return "data:text/csv;base64," + base64.StdEncoding.EncodeToString([]byte(s))
}

type uploadResp struct {
	Status   pipeline.Status `json:"status"`
	State    string          `json:"state"`
	Subjects []string        `json:"subjects"`
}

func TestUploadSelectFlow(t *testing.T) {
	ts := newTestServer(t, 0)
	id := createSession(t, ts)
	base := ts.URL + "/api/sessions/" + id

	// selecting before upload yields the placeholder
	resp := do(t, http.MethodPut, base+"/subject", map[string]string{"subject": "Math"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var placeholder analysis.AggregateResult
	decode(t, resp, &placeholder)
	assert.True(t, placeholder.Placeholder)

	resp = do(t, http.MethodPost, base+"/upload", map[string]string{"filename": "marks.csv", "contents": dataURL(marksCSV)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var up uploadResp
	decode(t, resp, &up)
	assert.Equal(t, "Uploaded: marks.csv", up.Status.Message)
	assert.Equal(t, "loaded", up.State)
	assert.Equal(t, []string{"Math", "Physics"}, up.Subjects)

	resp = do(t, http.MethodPut, base+"/subject", map[string]string{"subject": "Math"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var a analysis.AggregateResult
	decode(t, resp, &a)
	assert.Equal(t, 2, a.Total)
	assert.Equal(t, 50.0, a.BoysPct)
	assert.Equal(t, 37.5, a.AvgMarks)

	resp = do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap struct {
		State   string                   `json:"state"`
		Subject string                   `json:"subject"`
		Result  analysis.AggregateResult `json:"result"`
	}
	decode(t, resp, &snap)
	assert.Equal(t, "ready", snap.State)
	assert.Equal(t, "Math", snap.Subject)
	assert.Equal(t, a, snap.Result)
}

func TestUploadMissingColumns(t *testing.T) {
	ts := newTestServer(t, 0)
	id := createSession(t, ts)
	csv := "Course,Gender,Subject,Internal 1,Internal 2\nBCA,Boy,Math,1,2\n"
	resp := do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/upload", map[string]string{"filename": "bad.csv", "contents": dataURL(csv)})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var up uploadResp
	decode(t, resp, &up)
	assert.Equal(t, pipeline.StatusSchema, up.Status.Kind)
	assert.Equal(t, "Missing required columns", up.Status.Message)
	assert.Equal(t, "empty", up.State)
	assert.Empty(t, up.Subjects)
}

func TestUploadBadPayload(t *testing.T) {
	ts := newTestServer(t, 0)
	id := createSession(t, ts)
	url := ts.URL + "/api/sessions/" + id + "/upload"

	resp := do(t, http.MethodPost, url, map[string]string{"filename": "marks.csv", "contents": "data:text/csv;base64,###"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var up uploadResp
	decode(t, resp, &up)
	assert.True(t, strings.HasPrefix(up.Status.Message, "Error: "), up.Status.Message)

	// the failure is kept on the session
	resp = do(t, http.MethodGet, ts.URL+"/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap struct {
		State  string          `json:"state"`
		Status pipeline.Status `json:"status"`
	}
	decode(t, resp, &snap)
	assert.Equal(t, "empty", snap.State)
	assert.Equal(t, up.Status, snap.Status)

	resp = do(t, http.MethodPost, url, map[string]string{"contents": dataURL(marksCSV)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, url, map[string]string{"filename": "a.csv", "format": "pdf", "contents": dataURL(marksCSV)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadTooLarge(t *testing.T) {
	ts := newTestServer(t, 16)
	id := createSession(t, ts)
	big := dataURL(strings.Repeat(marksCSV, 200))
	resp := do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/upload", map[string]string{"filename": "marks.csv", "contents": big})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestUnknownAndDeletedSession(t *testing.T) {
	ts := newTestServer(t, 0)
	resp := do(t, http.MethodGet, ts.URL+"/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	id := createSession(t, ts)
	resp = do(t, http.MethodDelete, ts.URL+"/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, http.MethodGet, ts.URL+"/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsAndHealth(t *testing.T) {
	ts := newTestServer(t, 0)
	id := createSession(t, ts)
	do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/upload", map[string]string{"filename": "marks.csv", "contents": dataURL(marksCSV)})
	do(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/subject", map[string]string{"subject": "Physics"})

	resp := do(t, http.MethodGet, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `markboard_uploads_total{status="ok"} 1`)
	assert.Contains(t, string(body), "markboard_aggregations_total 1")
	assert.Contains(t, string(body), "markboard_sessions_active 1")

	resp = do(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
