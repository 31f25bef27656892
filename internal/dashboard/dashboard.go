// Package dashboard поддерживает единственное сообщение-панель в группе менеджеров:
// общее число отчётов и список «нюансов», ждущих реакции.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/psds-microservice/report-service/internal/errs"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/transport"
)

type ReportStore interface {
	CountAll(ctx context.Context) (int64, error)
	Attention(ctx context.Context) ([]model.Report, error)
}

// HandleStore хранит id сообщения панели между перезапусками.
type HandleStore interface {
	LoadDashboardRef(ctx context.Context) (int, bool, error)
	SaveDashboardRef(ctx context.Context, id int) error
	ClearDashboardRef(ctx context.Context) error
}

type Snapshot struct {
	Total     int64          `json:"total"`
	Attention []model.Report `json:"attention"`
}

// Reconciler приводит сообщение-панель в соответствие с хранилищем.
// Вызовы Refresh и Recreate сериализуются: два параллельных обновления
// не могут оба отправить новое сообщение.
type Reconciler struct {
	log     *slog.Logger
	tr      transport.Transport
	reports ReportStore
	handles HandleStore
	chat    int64
	bot     string

	mu     sync.Mutex
	handle transport.MessageID
	loaded bool
}

// New: chat — группа менеджеров, adminBot — username админ-бота для deep-link кнопок.
func New(log *slog.Logger, tr transport.Transport, reports ReportStore, handles HandleStore, chat int64, adminBot string) *Reconciler {
	return &Reconciler{
		log:     log.With("component", "dashboard"),
		tr:      tr,
		reports: reports,
		handles: handles,
		chat:    chat,
		bot:     adminBot,
	}
}

func (r *Reconciler) Snapshot(ctx context.Context) (Snapshot, error) {
	total, err := r.reports.CountAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	flagged, err := r.reports.Attention(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Total: total, Attention: flagged}, nil
}

// Refresh никогда не возвращает ошибку: панель — удобство, а не источник истины.
func (r *Reconciler) Refresh(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh(ctx)
}

// Recreate удаляет текущую панель и публикует новую внизу чата.
func (r *Reconciler) Recreate(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.current(ctx); ok {
		if err := r.tr.Delete(ctx, r.chat, id); err != nil {
			r.log.Debug("delete old dashboard", "message_id", id, "error", err)
		}
		r.forget(ctx)
	}
	r.refresh(ctx)
}

func (r *Reconciler) refresh(ctx context.Context) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		r.log.Error("dashboard snapshot", "error", err)
		refreshes.WithLabelValues("store_error").Inc()
		return
	}
	out := Render(snap, r.bot)

	if id, ok := r.current(ctx); ok {
		err := r.tr.Edit(ctx, r.chat, id, out)
		switch {
		case err == nil:
			refreshes.WithLabelValues("edited").Inc()
			return
		case errors.Is(err, errs.ErrNotModified):
			refreshes.WithLabelValues("unchanged").Inc()
			return
		}
		r.log.Warn("dashboard edit failed, reposting", "message_id", id, "error", err)
		if err := r.tr.Delete(ctx, r.chat, id); err != nil {
			r.log.Debug("delete stale dashboard", "message_id", id, "error", err)
		}
		r.forget(ctx)
	}

	id, err := r.tr.Send(ctx, r.chat, out)
	if err != nil {
		r.log.Error("dashboard send", "error", err)
		refreshes.WithLabelValues("send_failed").Inc()
		return
	}
	r.remember(ctx, id)
	refreshes.WithLabelValues("sent").Inc()
}

func (r *Reconciler) current(ctx context.Context) (transport.MessageID, bool) {
	if !r.loaded {
		id, ok, err := r.handles.LoadDashboardRef(ctx)
		if err != nil {
			r.log.Warn("load dashboard ref", "error", err)
			return 0, false
		}
		r.loaded = true
		if ok {
			r.handle = transport.MessageID(id)
		}
	}
	return r.handle, r.handle != 0
}

func (r *Reconciler) remember(ctx context.Context, id transport.MessageID) {
	r.handle, r.loaded = id, true
	if err := r.handles.SaveDashboardRef(ctx, int(id)); err != nil {
		r.log.Warn("save dashboard ref", "message_id", id, "error", err)
	}
}

func (r *Reconciler) forget(ctx context.Context) {
	r.handle, r.loaded = 0, true
	if err := r.handles.ClearDashboardRef(ctx); err != nil {
		r.log.Warn("clear dashboard ref", "error", err)
	}
}
