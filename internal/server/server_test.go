package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/greenlens/internal/model"
	"github.com/ppiankov/greenlens/internal/store"
)

type fakeAnalyzer struct {
	fail      bool
	err       error
	seenPath  string
	seenBytes []byte
}

func (f *fakeAnalyzer) AnalyzeText(text string) model.TextAnalysis {
	return model.TextAnalysis{
		Text:          text,
		Claims:        []model.Claim{},
		DeceptionType: model.DeceptionNone,
		Severity:      model.SeverityTrustworthy,
	}
}

func (f *fakeAnalyzer) AnalyzeImage(ctx context.Context, imagePath string) (*model.Report, error) {
	f.seenPath = imagePath
	f.seenBytes, _ = os.ReadFile(imagePath)
	if f.err != nil {
		return nil, f.err
	}
	if f.fail {
		report := model.FailedReport(imagePath, "Could not load image: bad data")
		return report, report.Err()
	}
	return &model.Report{ID: "rep-1", Success: true, ImagePath: imagePath, OverallScore: 42, Severity: model.SeverityModerate}, nil
}

func newTestServer(t *testing.T, analyzer Analyzer, withStore bool) (*httptest.Server, store.Store) {
	t.Helper()
	var st store.Store
	if withStore {
		fs, err := store.NewFileStore(t.TempDir())
		require.NoError(t, err)
		st = fs
	}
	srv := httptest.NewServer(New(analyzer, st, model.DefaultConfig().Server).Router())
	t.Cleanup(srv.Close)
	return srv, st
}

func uploadBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, false)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestAnalyzeText(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, false)

	resp, err := http.Post(srv.URL+"/v1/analyze/text", "application/json", strings.NewReader(`{"text":"Plain mug."}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ta model.TextAnalysis
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ta))
	assert.Equal(t, "Plain mug.", ta.Text)
	assert.Equal(t, model.DeceptionNone, ta.DeceptionType)
}

func TestAnalyzeText_BadJSON(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, false)

	resp, err := http.Post(srv.URL+"/v1/analyze/text", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeImage_StoresAndCleansUp(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	srv, _ := newTestServer(t, analyzer, true)

	body, contentType := uploadBody(t, "image", "label.PNG", []byte("fake image bytes"))
	resp, err := http.Post(srv.URL+"/v1/analyze/image", contentType, body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report model.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "rep-1", report.ID)
	assert.Equal(t, "label.PNG", report.ImagePath)

	assert.Equal(t, []byte("fake image bytes"), analyzer.seenBytes)
	assert.True(t, strings.HasSuffix(analyzer.seenPath, ".png"))
	_, statErr := os.Stat(analyzer.seenPath)
	assert.True(t, os.IsNotExist(statErr), "upload should be removed after the call")

	get, err := http.Get(srv.URL + "/v1/reports/rep-1")
	require.NoError(t, err)
	defer func() { _ = get.Body.Close() }()
	require.Equal(t, http.StatusOK, get.StatusCode)

	var stored model.Report
	require.NoError(t, json.NewDecoder(get.Body).Decode(&stored))
	assert.Equal(t, 42.0, stored.OverallScore)
}

func TestAnalyzeImage_UpstreamFailure(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{fail: true}, true)

	body, contentType := uploadBody(t, "image", "broken.png", []byte("x"))
	resp, err := http.Post(srv.URL+"/v1/analyze/image", contentType, body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var report model.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.False(t, report.Success)
	assert.Equal(t, "Could not load image: bad data", report.Error)
}

func TestAnalyzeImage_InternalError(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{err: errors.New("ocr: connection refused")}, false)

	body, contentType := uploadBody(t, "image", "label.png", []byte("x"))
	resp, err := http.Post(srv.URL+"/v1/analyze/image", contentType, body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAnalyzeImage_MissingField(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, false)

	body, contentType := uploadBody(t, "file", "label.png", []byte("x"))
	resp, err := http.Post(srv.URL+"/v1/analyze/image", contentType, body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetReport_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, true)

	resp, err := http.Get(srv.URL + "/v1/reports/unknown")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	noStore, _ := newTestServer(t, &fakeAnalyzer{}, false)
	resp2, err := http.Get(noStore.URL + "/v1/reports/rep-1")
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, &fakeAnalyzer{}, false)

	resp, err := http.Get(srv.URL + "/v1/analyze/text")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/reports/rep-1", nil)
	require.NoError(t, err)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestSaveUpload_StripsUnsafeExtension(t *testing.T) {
	path, err := saveUpload(strings.NewReader("data"), "/../x")
	require.NoError(t, err)
	defer func() { _ = os.Remove(path) }()

	assert.False(t, strings.Contains(path, ".."), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}
