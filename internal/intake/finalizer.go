package intake

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/psds-microservice/report-service/internal/kafka"
	"github.com/psds-microservice/report-service/internal/model"
)

type ReportStore interface {
	Create(ctx context.Context, r *model.Report) error
	SetArchiveRefs(ctx context.Context, id string, refs []string) error
}

// Archiver копирует медиа отчёта в долговременное хранилище и возвращает ссылки на копии.
type Archiver interface {
	Archive(ctx context.Context, r *model.Report) ([]string, error)
}

type Indexer interface {
	IndexReportAsync(r *model.Report)
}

// Finalizer сохраняет отчёт, затем архивирует медиа и оповещает внешние системы.
// Сбой архива или событий не отменяет сохранённый отчёт.
type Finalizer struct {
	log      *slog.Logger
	reports  ReportStore
	archiver Archiver
	events   kafka.ReportEventProducer
	indexer  Indexer
}

func NewFinalizer(log *slog.Logger, reports ReportStore, archiver Archiver, events kafka.ReportEventProducer, indexer Indexer) *Finalizer {
	if events == nil {
		events = kafka.Nop{}
	}
	return &Finalizer{
		log:      log.With("component", "finalizer"),
		reports:  reports,
		archiver: archiver,
		events:   events,
		indexer:  indexer,
	}
}

func (f *Finalizer) Complete(ctx context.Context, r *model.Report) error {
	if err := f.reports.Create(ctx, r); err != nil {
		return fmt.Errorf("store report: %w", err)
	}

	if f.archiver != nil && (len(r.Photos) > 0 || len(r.Videos) > 0) {
		refs, err := f.archiver.Archive(ctx, r)
		switch {
		case err != nil:
			archiveFailures.Inc()
			f.log.Error("archive media", "report_id", r.ID, "error", err)
		case len(refs) > 0:
			if err := f.reports.SetArchiveRefs(ctx, r.ID, refs); err != nil {
				f.log.Warn("save archive refs", "report_id", r.ID, "error", err)
			} else {
				r.ArchiveRefs = refs
			}
		}
	}

	f.events.ProduceReportEvent(ctx, kafka.EventReportCreated, kafka.ReportPayload(r))
	if f.indexer != nil {
		f.indexer.IndexReportAsync(r)
	}
	return nil
}
