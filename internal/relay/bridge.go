// Package relay связывает клиента, приславшего отчёт, с менеджером, взявшим его в работу,
// и пересылает сообщения между клиентским и админским ботами.
package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/psds-microservice/report-service/internal/errs"
	"github.com/psds-microservice/report-service/internal/kafka"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/transport"
)

const (
	EndButton = "🔴 Завершить чат"
	StopCmd   = "stop"
)

// SessionController переключает анкету клиента: живой диалог или сброс.
type SessionController interface {
	EnterLiveSession(userID int64)
	Reset(userID int64)
}

type ReportStore interface {
	GetByID(ctx context.Context, id string) (*model.Report, error)
	UpdateStatus(ctx context.Context, id string, status model.ReportStatus) error
}

type Refresher interface {
	Refresh(ctx context.Context)
}

type Indexer interface {
	IndexReportAsync(r *model.Report)
}

type Option func(*Bridge)

// WithMenus задаёт клавиатуры, которые стороны получают после завершения диалога.
func WithMenus(submitter, staff *transport.Keyboard) Option {
	return func(b *Bridge) {
		b.submitterMenu = submitter
		b.staffMenu = staff
	}
}

func WithEvents(p kafka.ReportEventProducer) Option {
	return func(b *Bridge) { b.events = p }
}

func WithIndexer(i Indexer) Option {
	return func(b *Bridge) { b.indexer = i }
}

// Bridge: client — транспорт клиентского бота, admin — админского.
type Bridge struct {
	log      *slog.Logger
	reg      *Registry
	reports  ReportStore
	sessions SessionController
	dash     Refresher
	client   transport.Transport
	admin    transport.Transport

	events        kafka.ReportEventProducer
	indexer       Indexer
	submitterMenu *transport.Keyboard
	staffMenu     *transport.Keyboard
}

func NewBridge(log *slog.Logger, reg *Registry, reports ReportStore, sessions SessionController, dash Refresher,
	client, admin transport.Transport, opts ...Option) *Bridge {
	b := &Bridge{
		log:      log.With("component", "relay"),
		reg:      reg,
		reports:  reports,
		sessions: sessions,
		dash:     dash,
		client:   client,
		admin:    admin,
		events:   kafka.Nop{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) Active(p Party) bool { return b.reg.Active(p) }

// Claim берёт отчёт в работу: статус in_progress, пара, анкета клиента — в режим диалога.
func (b *Bridge) Claim(ctx context.Context, reportID string, staffID int64) (*model.Report, error) {
	r, err := b.reports.GetByID(ctx, reportID)
	if err != nil {
		claims.WithLabelValues("not_found").Inc()
		return nil, err
	}
	fresh, err := b.reg.Pair(r.UserID, staffID)
	if err != nil {
		claims.WithLabelValues("busy").Inc()
		return nil, err
	}
	if err := b.reports.UpdateStatus(ctx, r.ID, model.ReportStatusInProgress); err != nil {
		if fresh {
			_, _, _ = b.reg.Unpair(Staff(staffID))
		}
		claims.WithLabelValues("error").Inc()
		return nil, err
	}
	r.Status = model.ReportStatusInProgress
	b.sessions.EnterLiveSession(r.UserID)
	claims.WithLabelValues("ok").Inc()
	b.log.Info("report claimed", "report_id", r.ID, "staff_id", staffID, "submitter_id", r.UserID,
		"active_sessions", b.reg.Len())

	b.notify(ctx, b.admin, staffID, transport.WithKeyboard(
		"⚡️ *Вы взяли в работу отчет "+r.ID+"*\nВы подключены к пользователю. Все, что вы напишете здесь, отправится ему.",
		transport.ReplyKeyboard([]string{EndButton}),
	))
	if _, err := b.client.Send(ctx, r.UserID, transport.Text("👨‍💼 Менеджер Beaton подключился к диалогу.")); err != nil {
		b.log.Warn("notify submitter about claim", "submitter_id", r.UserID, "error", err)
		b.notify(ctx, b.admin, staffID, transport.Text("⚠️ Не удалось отправить сообщение пользователю."))
	}

	payload := kafka.ReportPayload(r)
	payload["staff_id"] = staffID
	b.events.ProduceReportEvent(ctx, kafka.EventReportClaimed, payload)
	if b.indexer != nil {
		b.indexer.IndexReportAsync(r)
	}
	b.dash.Refresh(ctx)
	return r, nil
}

// Forward доставляет сообщение from собеседнику. Без пары отправитель получает
// «диалог не активен», а анкета клиента сбрасывается из режима диалога.
func (b *Bridge) Forward(ctx context.Context, from Party, msg transport.Message) {
	to, err := b.reg.Counterpart(from)
	if err != nil {
		var ce *errs.ConsistencyError
		if errors.As(err, &ce) {
			b.log.Error("relay pairing inconsistent, resetting both parties",
				"submitter_id", ce.Submitter, "staff_id", ce.Staff)
			b.sessions.Reset(ce.Submitter)
		} else if from.Role == RoleSubmitter {
			b.sessions.Reset(from.ID)
		}
		forwarded.WithLabelValues(from.Role.String(), msg.Kind.String(), "inactive").Inc()
		b.notify(ctx, b.side(from), from.ID, transport.Text("Диалог не активен."))
		return
	}

	src, dst := b.side(from), b.other(from)
	label := senderLabel(from.Role)
	switch msg.Kind {
	case transport.KindText:
		_, err = dst.Send(ctx, to, transport.Text(label.tag+":*\n"+transport.EscapeMarkdown(msg.Text)))
	case transport.KindPhoto:
		err = b.relayPhoto(ctx, src, dst, to, msg, label)
	default:
		_, err = dst.Send(ctx, to, transport.Text(label.tag+"* прислал файл (формат не поддерживается)."))
	}
	if err != nil {
		forwarded.WithLabelValues(from.Role.String(), msg.Kind.String(), "failed").Inc()
		b.log.Warn("relay delivery failed", "from", from.Role.String(), "from_id", from.ID, "to_id", to, "error", err)
		b.notify(ctx, src, from.ID, transport.Text(label.failed))
		return
	}
	forwarded.WithLabelValues(from.Role.String(), msg.Kind.String(), "ok").Inc()
}

// relayPhoto скачивает фото через бот отправителя и загружает через бот получателя:
// file id одного бота другому недоступен.
func (b *Bridge) relayPhoto(ctx context.Context, src, dst transport.Transport, to int64, msg transport.Message, label senderText) error {
	data, err := src.Download(ctx, msg.FileID)
	if err == nil {
		_, err = dst.SendMedia(ctx, to, []transport.MediaItem{{
			Kind:    transport.MediaPhoto,
			Bytes:   data,
			Name:    label.file,
			Caption: label.tag + " прислал фото*",
		}})
		if err == nil {
			return nil
		}
	}
	b.log.Error("bridge photo", "error", err)
	_, notifyErr := dst.Send(ctx, to, transport.Text(label.plain+" прислал фото (ошибка пересылки)."))
	return notifyErr
}

// End завершает диалог, в котором состоит initiator. Без пары ничего не делает и возвращает false.
func (b *Bridge) End(ctx context.Context, initiator Party) bool {
	submitter, staff, err := b.reg.Unpair(initiator)
	if err != nil {
		var ce *errs.ConsistencyError
		if errors.As(err, &ce) {
			b.sessions.Reset(ce.Submitter)
		}
		return false
	}
	b.sessions.Reset(submitter)
	b.log.Info("session ended", "submitter_id", submitter, "staff_id", staff, "by", initiator.Role.String(),
		"active_sessions", b.reg.Len())

	b.notify(ctx, b.admin, staff, transport.WithKeyboard("🔴 Диалог завершен.", b.staffMenu))
	b.notify(ctx, b.client, submitter, transport.WithKeyboard("Диалог с менеджером завершен.", b.submitterMenu))
	b.events.ProduceReportEvent(ctx, kafka.EventSessionEnded, map[string]interface{}{
		"submitter_id": submitter,
		"staff_id":     staff,
		"ended_by":     initiator.Role.String(),
	})
	return true
}

func (b *Bridge) notify(ctx context.Context, tr transport.Transport, chat int64, out transport.Outgoing) {
	if _, err := tr.Send(ctx, chat, out); err != nil {
		b.log.Warn("relay notify", "chat_id", chat, "error", err)
	}
}

func (b *Bridge) side(p Party) transport.Transport {
	if p.Role == RoleStaff {
		return b.admin
	}
	return b.client
}

func (b *Bridge) other(p Party) transport.Transport {
	if p.Role == RoleStaff {
		return b.client
	}
	return b.admin
}

type senderText struct {
	tag    string // начало жирной подписи, закрывается вызывающим
	plain  string
	file   string
	failed string
}

func senderLabel(r Role) senderText {
	if r == RoleStaff {
		return senderText{
			tag:    "👨‍💼 *Менеджер",
			plain:  "👨‍💼 Менеджер",
			file:   "manager_photo.jpg",
			failed: "❌ Не удалось отправить (клиент заблокировал бота?)",
		}
	}
	return senderText{
		tag:    "👤 *Клиент",
		plain:  "👤 Клиент",
		file:   "client_photo.jpg",
		failed: "❌ Не удалось доставить сообщение менеджеру.",
	}
}
