package service

import (
	"context"
	"testing"
	"time"

	"github.com/psds-microservice/report-service/internal/database/databasetest"
	"github.com/psds-microservice/report-service/internal/errs"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReportService(t *testing.T) *ReportService {
	t.Helper()
	svc := NewReportService(databasetest.New(t), "B")
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return svc
}

func mustCreate(t *testing.T, svc *ReportService, r model.Report) *model.Report {
	t.Helper()
	require.NoError(t, svc.Create(context.Background(), &r))
	return &r
}

func sampleReport(p model.Product, i model.Intent, c model.Consent) model.Report {
	return model.Report{
		Product:  p,
		Intent:   i,
		Consent:  c,
		Comment:  "ok",
		Photos:   []string{"ph-1"},
		UserID:   42,
		Username: "@client",
	}
}

func TestCreate_AssignsSequentialIDs(t *testing.T) {
	svc := newTestReportService(t)

	first := mustCreate(t, svc, sampleReport(model.ProductConcrete, model.IntentProud, model.ConsentPublic))
	second := mustCreate(t, svc, sampleReport(model.ProductAsphalt, model.IntentNuance, model.ConsentInternal))

	assert.Equal(t, "B-001", first.ID)
	assert.Equal(t, "B-002", second.ID)
	assert.Equal(t, model.ReportStatusNew, second.Status)

	got, err := svc.GetByID(context.Background(), "B-002")
	require.NoError(t, err)
	assert.Equal(t, model.ProductAsphalt, got.Product)
	assert.Equal(t, []string{"ph-1"}, got.Photos)
	assert.Empty(t, got.Videos)
}

func TestCreate_RejectsInvalidMedia(t *testing.T) {
	svc := newTestReportService(t)
	r := sampleReport(model.ProductConcrete, model.IntentProud, model.ConsentPublic)
	r.Videos = []string{"v"}

	err := svc.Create(context.Background(), &r)
	assert.ErrorIs(t, err, errs.ErrValidation)

	n, err := svc.CountAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestReportService(t)
	_, err := svc.GetByID(context.Background(), "B-404")
	assert.ErrorIs(t, err, errs.ErrReportNotFound)
}

func TestUpdateStatus(t *testing.T) {
	svc := newTestReportService(t)
	ctx := context.Background()
	r := mustCreate(t, svc, sampleReport(model.ProductConcrete, model.IntentNuance, model.ConsentPublic))

	require.NoError(t, svc.UpdateStatus(ctx, r.ID, model.ReportStatusInProgress))
	got, err := svc.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusInProgress, got.Status)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, "B-999", model.ReportStatusInProgress), errs.ErrReportNotFound)
}

func TestSetArchiveRefs(t *testing.T) {
	svc := newTestReportService(t)
	ctx := context.Background()
	r := mustCreate(t, svc, sampleReport(model.ProductConcrete, model.IntentProud, model.ConsentPublic))

	require.NoError(t, svc.SetArchiveRefs(ctx, r.ID, []string{"101", "102"}))
	got, err := svc.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102"}, got.ArchiveRefs)
	assert.Equal(t, []string{"ph-1"}, got.Photos)

	assert.ErrorIs(t, svc.SetArchiveRefs(ctx, "B-999", []string{"x"}), errs.ErrReportNotFound)
}

func TestQueryByFilter(t *testing.T) {
	svc := newTestReportService(t)
	ctx := context.Background()
	mustCreate(t, svc, sampleReport(model.ProductConcrete, model.IntentProud, model.ConsentPublic))
	mustCreate(t, svc, sampleReport(model.ProductAsphalt, model.IntentNuance, model.ConsentInternal))
	mustCreate(t, svc, sampleReport(model.ProductConcrete, model.IntentNuance, model.ConsentInternal))

	all, err := svc.QueryByFilter(ctx, model.ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "B-003", all[0].ID, "newest first")

	got, err := svc.QueryByFilter(ctx, model.ReportFilter{
		Products: []model.Product{model.ProductConcrete},
		Intents:  []model.Intent{model.IntentNuance, model.IntentProcess},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B-003", got[0].ID)

	got, err = svc.QueryByFilter(ctx, model.ReportFilter{Consents: []model.Consent{model.ConsentInternal}})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListPage(t *testing.T) {
	svc := newTestReportService(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		mustCreate(t, svc, sampleReport(model.ProductConcrete, model.IntentProud, model.ConsentPublic))
	}

	page, total, err := svc.ListPage(ctx, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, page, 2)
	assert.Equal(t, "B-002", page[0].ID)
	assert.Equal(t, "B-001", page[1].ID)
}

func TestAttention(t *testing.T) {
	svc := newTestReportService(t)
	ctx := context.Background()
	mustCreate(t, svc, sampleReport(model.ProductConcrete, model.IntentProud, model.ConsentPublic))
	flagged := mustCreate(t, svc, sampleReport(model.ProductAsphalt, model.IntentNuance, model.ConsentPublic))
	claimed := mustCreate(t, svc, sampleReport(model.ProductConcrete, model.IntentNuance, model.ConsentPublic))
	require.NoError(t, svc.UpdateStatus(ctx, claimed.ID, model.ReportStatusInProgress))

	items, err := svc.Attention(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, flagged.ID, items[0].ID)
}
