package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/helpy/paths"
	"github.com/psds-microservice/report-service/internal/dashboard"
	"github.com/psds-microservice/report-service/internal/database/databasetest"
	"github.com/psds-microservice/report-service/internal/handler"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/service"
	"github.com/psds-microservice/report-service/internal/transport/transporttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestRouter(t *testing.T, ping func(context.Context) error) (http.Handler, *service.ReportService) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	db := databasetest.New(t)
	reports := service.NewReportService(db, "B")
	dash := dashboard.New(log, transporttest.New(), reports, service.NewSettingsService(db), -100, "admin_bot")

	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, intent := range []model.Intent{model.IntentProud, model.IntentNuance, model.IntentNuance} {
		require.NoError(t, reports.Create(ctx, &model.Report{
			Product:   model.ProductConcrete,
			Intent:    intent,
			Consent:   model.ConsentPublic,
			UserID:    int64(i + 1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, reports.UpdateStatus(ctx, "B-002", model.ReportStatusInProgress))

	return New(log, handler.NewReportHandler(reports, dash), ping), reports
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_Probes(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	assert.Equal(t, http.StatusOK, get(h, paths.PathHealth).Code)
	assert.Equal(t, http.StatusOK, get(h, paths.PathReady).Code)

	down, _ := newTestRouter(t, func(context.Context) error { return errors.New("db down") })
	assert.Equal(t, http.StatusServiceUnavailable, get(down, paths.PathReady).Code)
}

func TestRouter_ListReports(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	w := get(h, "/api/v1/reports?intent=nuance&limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Reports []model.Report `json:"reports"`
		Total   int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body.Total)
	require.Len(t, body.Reports, 1)
	assert.Equal(t, "B-003", body.Reports[0].ID)

	assert.Equal(t, http.StatusBadRequest, get(h, "/api/v1/reports?product=gravel").Code)
}

func TestRouter_GetReport(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	w := get(h, "/api/v1/reports/B-002")
	require.Equal(t, http.StatusOK, w.Code)
	var r model.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	assert.Equal(t, model.ReportStatusInProgress, r.Status)

	assert.Equal(t, http.StatusNotFound, get(h, "/api/v1/reports/B-404").Code)
}

func TestRouter_Dashboard(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	w := get(h, "/api/v1/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	var s dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.EqualValues(t, 3, s.Total)
	require.Len(t, s.Attention, 1)
	assert.Equal(t, "B-003", s.Attention[0].ID)
}

func TestRouter_MetricsAndSpec(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	w := get(h, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = get(h, paths.PathSwagger+"/openapi.json")
	require.Equal(t, http.StatusOK, w.Code)
	var spec map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &spec))
	assert.Contains(t, spec, "paths")
}
