// Package intake ведёт клиента по анкете отчёта: продукт, цель, медиа, комментарий,
// имя, согласие. Вложения одной пачки собираются с паузой тишины (debounce).
package intake

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/relay"
	"github.com/psds-microservice/report-service/internal/transport"
)

// Completer сохраняет завершённый отчёт.
type Completer interface {
	Complete(ctx context.Context, r *model.Report) error
}

type Refresher interface {
	Refresh(ctx context.Context)
}

// LiveRelay получает сообщения клиента, пока идёт диалог с менеджером.
type LiveRelay interface {
	Forward(ctx context.Context, from relay.Party, msg transport.Message)
}

// Machine хранит анкеты всех клиентов в памяти; после перезапуска анкеты начинаются заново.
type Machine struct {
	log   *slog.Logger
	tr    transport.Transport
	fin   Completer
	dash  Refresher
	clock clockwork.Clock
	quiet time.Duration

	relayMu sync.RWMutex
	relay   LiveRelay

	mu       sync.Mutex
	sessions map[int64]*session
}

// NewMachine: tr — транспорт клиентского бота, quiet — пауза, после которой пачка медиа считается полной.
func NewMachine(log *slog.Logger, tr transport.Transport, fin Completer, dash Refresher, clock clockwork.Clock, quiet time.Duration) *Machine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Machine{
		log:      log.With("component", "intake"),
		tr:       tr,
		fin:      fin,
		dash:     dash,
		clock:    clock,
		quiet:    quiet,
		sessions: make(map[int64]*session),
	}
}

// SetRelay подключает мост после его создания (мост, в свою очередь, управляет анкетами).
func (m *Machine) SetRelay(r LiveRelay) {
	m.relayMu.Lock()
	m.relay = r
	m.relayMu.Unlock()
}

func (m *Machine) State(userID int64) State {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start начинает анкету заново. Во время диалога с менеджером команда уходит собеседнику.
func (m *Machine) Start(ctx context.Context, msg transport.Message) {
	s := m.session(msg.UserID)
	s.mu.Lock()
	if s.state == InLiveSession {
		s.mu.Unlock()
		m.forward(ctx, msg)
		return
	}
	defer s.mu.Unlock()
	s.reset()
	s.state = ChoosingProduct
	m.reply(ctx, msg, transport.WithKeyboard(promptProduct, productKeyboard()))
}

// Cancel сбрасывает анкету, черновик теряется.
func (m *Machine) Cancel(ctx context.Context, msg transport.Message) {
	s := m.session(msg.UserID)
	s.mu.Lock()
	if s.state == InLiveSession {
		s.mu.Unlock()
		m.forward(ctx, msg)
		return
	}
	defer s.mu.Unlock()
	s.reset()
	m.reply(ctx, msg, transport.WithKeyboard(cancelled, NewReportKeyboard()))
}

// EnterLiveSession переводит клиента в диалог с менеджером, черновик отбрасывается.
func (m *Machine) EnterLiveSession(userID int64) {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.state = InLiveSession
}

func (m *Machine) Reset(userID int64) {
	s := m.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Handle обрабатывает одно сообщение клиента в текущем шаге анкеты.
func (m *Machine) Handle(ctx context.Context, msg transport.Message) {
	s := m.session(msg.UserID)
	s.mu.Lock()
	switch s.state {
	case InLiveSession:
		s.mu.Unlock()
		m.forward(ctx, msg)
		return
	case UploadingMedia:
		m.handleMedia(ctx, s, msg)
		return
	}
	defer s.mu.Unlock()

	text := strings.TrimSpace(msg.Text)
	isText := msg.Kind == transport.KindText && text != ""

	switch s.state {
	case Idle:
		m.reply(ctx, msg, transport.WithKeyboard(idleHint, NewReportKeyboard()))

	case ChoosingProduct:
		p, ok := model.ProductByLabel(msg.Text)
		if !ok || !isText {
			m.reject(ctx, msg, s, errProduct)
			return
		}
		s.draft.Product = p
		m.advance(ctx, msg, s, ChoosingIntent, transport.WithKeyboard(promptIntent, intentKeyboard()))

	case ChoosingIntent:
		i, ok := model.IntentByLabel(msg.Text)
		if !ok || !isText {
			m.reject(ctx, msg, s, errButtons)
			return
		}
		s.draft.Intent = i
		s.draft.Photos, s.draft.Videos = nil, nil
		s.locked = false
		m.advance(ctx, msg, s, UploadingMedia, transport.WithKeyboard(promptMedia, transport.RemoveKeyboard()))

	case WritingComment:
		if !isText {
			m.reject(ctx, msg, s, errComment)
			return
		}
		s.draft.Comment = msg.Text
		m.advance(ctx, msg, s, Naming, transport.WithKeyboard(promptName, nameKeyboard()))

	case Naming:
		if !isText {
			m.reject(ctx, msg, s, errName)
			return
		}
		s.draft.ClientName = nil
		if text != SkipButton {
			name := text
			s.draft.ClientName = &name
		}
		m.advance(ctx, msg, s, GrantingConsent, transport.WithKeyboard(promptConsent, consentKeyboard()))

	case GrantingConsent:
		c, ok := model.ConsentByLabel(msg.Text)
		if !ok || !isText {
			m.reject(ctx, msg, s, errButtons)
			return
		}
		m.complete(ctx, msg, s, c)
	}
}

// complete требует удерживаемого s.mu. При ошибке сохранения клиент остаётся на шаге согласия.
func (m *Machine) complete(ctx context.Context, msg transport.Message, s *session, consent model.Consent) {
	r := &model.Report{
		Product:    s.draft.Product,
		Intent:     s.draft.Intent,
		Comment:    s.draft.Comment,
		Consent:    consent,
		Photos:     append([]string(nil), s.draft.Photos...),
		Videos:     append([]string(nil), s.draft.Videos...),
		Username:   msg.Handle(),
		UserID:     msg.UserID,
		ClientName: s.draft.ClientName,
	}
	if err := m.fin.Complete(ctx, r); err != nil {
		m.log.Error("complete report", "user_id", msg.UserID, "error", err)
		completions.WithLabelValues("failed").Inc()
		m.reply(ctx, msg, transport.Text(errSaveFailed))
		return
	}
	completions.WithLabelValues("ok").Inc()
	m.log.Info("report completed", "report_id", r.ID, "user_id", msg.UserID)
	m.reply(ctx, msg, transport.WithKeyboard(completedText(r.ID), NewReportKeyboard()))
	s.reset()
	m.dash.Refresh(ctx)
}

func (m *Machine) advance(ctx context.Context, msg transport.Message, s *session, next State, prompt transport.Outgoing) {
	s.state = next
	m.reply(ctx, msg, prompt)
}

func (m *Machine) reject(ctx context.Context, msg transport.Message, s *session, text string) {
	rejections.WithLabelValues(s.state.String()).Inc()
	m.reply(ctx, msg, transport.Text(text))
}

func (m *Machine) forward(ctx context.Context, msg transport.Message) {
	m.relayMu.RLock()
	r := m.relay
	m.relayMu.RUnlock()
	if r == nil {
		m.Reset(msg.UserID)
		m.reply(ctx, msg, transport.Text("Диалог не активен."))
		return
	}
	r.Forward(ctx, relay.Submitter(msg.UserID), msg)
}

func (m *Machine) reply(ctx context.Context, msg transport.Message, out transport.Outgoing) {
	chat := msg.ChatID
	if chat == 0 {
		chat = msg.UserID
	}
	if _, err := m.tr.Send(ctx, chat, out); err != nil && !errors.Is(err, context.Canceled) {
		m.log.Warn("reply to submitter", "user_id", msg.UserID, "error", err)
	}
}

func (m *Machine) session(userID int64) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &session{}
		m.sessions[userID] = s
	}
	return s
}
