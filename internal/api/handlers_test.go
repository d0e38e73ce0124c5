package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caila-fit-action/internal/logging"
	"caila-fit-action/internal/services"
	"caila-fit-action/internal/storage"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := services.NewFitService(context.Background(), store, logging.NewLogger())

	e := echo.New()
	NewServer(svc, "fit-action-example", "1.0.0").Register(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestFitThenPredict(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/fit", `{"texts": ["a", "b"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/predict", `{"texts": [0]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp PredictResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"a"}, resp.Texts)

	rec = doJSON(e, http.MethodPost, "/api/v1/predict", `{"texts": [1, 0]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"b", "a"}, resp.Texts)
}

func TestRefitReplacesState(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/fit", `{"texts": ["a", "b"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/fit", `{"texts": ["x"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/predict", `{"texts": [0]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp PredictResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"x"}, resp.Texts)
}

func TestPredictBeforeFit(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/predict", `{"texts": [0]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/problem+json")

	var prob ProblemDetails
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prob))
	assert.Equal(t, http.StatusConflict, prob.Status)
	assert.Equal(t, "Model is not fitted", prob.Title)
}

func TestPredictIndexOutOfRange(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/fit", `{"texts": ["only"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/predict", `{"texts": [5]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var prob ProblemDetails
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prob))
	assert.Contains(t, prob.Detail, "index 5")
}

func TestFitRejectsEmptyDataset(t *testing.T) {
	e := newTestServer(t)

	for _, body := range []string{`{}`, `{"texts": []}`} {
		rec := doJSON(e, http.MethodPost, "/api/v1/fit", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestFitRejectsMalformedBody(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/fit", `{"texts": "not an array"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPruneResetsModel(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/fit", `{"texts": ["a"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/api/v1/state", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/predict", `{"texts": [0]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInfo(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/info", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var info services.Info
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.False(t, info.Fitted)

	rec = doJSON(e, http.MethodPost, "/api/v1/fit", `{"texts": ["a", "b"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/info", "")
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.True(t, info.Fitted)
	assert.Equal(t, 2, info.Texts)
	assert.NotEmpty(t, info.StateID)
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "fit-action-example", status.Service)
}
