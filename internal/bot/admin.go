package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/psds-microservice/report-service/internal/deeplink"
	"github.com/psds-microservice/report-service/internal/errs"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/relay"
	"github.com/psds-microservice/report-service/internal/transport"
)

// Roster — состав сотрудников, допущенных к админ-боту.
type Roster interface {
	IsAdmin(ctx context.Context, userID int64) bool
	Add(ctx context.Context, userID int64) error
	Remove(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]int64, error)
}

type ReportReader interface {
	GetByID(ctx context.Context, id string) (*model.Report, error)
	QueryByFilter(ctx context.Context, f model.ReportFilter) ([]model.Report, error)
	ListPage(ctx context.Context, offset, limit int) ([]model.Report, int64, error)
}

type Relay interface {
	Claim(ctx context.Context, reportID string, staffID int64) (*model.Report, error)
	Forward(ctx context.Context, from relay.Party, msg transport.Message)
	End(ctx context.Context, initiator relay.Party) bool
	Active(p relay.Party) bool
}

type DashboardRecreator interface {
	Recreate(ctx context.Context)
}

// AdminDeps — зависимости админ-бота. Files — клиентский бот, которому принадлежат медиа отчётов.
type AdminDeps struct {
	Messenger transport.Messenger
	Files     transport.Transport
	Roster    Roster
	Reports   ReportReader
	Relay     Relay
	Dashboard DashboardRecreator
	Group     int64
	BotName   string
}

type AdminOption func(*AdminHandler)

// WithBulkPause задаёт паузу между карточками при массовом показе.
func WithBulkPause(d time.Duration) AdminOption {
	return func(h *AdminHandler) { h.bulkPause = d }
}

func WithClock(c clockwork.Clock) AdminOption {
	return func(h *AdminHandler) { h.clock = c }
}

const (
	cbNone        = "none"
	cbToggle      = "tgl_"
	cbClear       = "f_clear"
	cbApply       = "f_apply"
	cbBulk        = "show_bulk_"
	cbFiltersBack = "filters_back"
	cbPage        = "pag_list_"
	cbClose       = "close_list"
)

const panelCmd = "panel"

// AdminHandler обслуживает админ-бота: пульт менеджера в личке и вызов панели в группе.
type AdminHandler struct {
	log       *slog.Logger
	d         AdminDeps
	cards     *cardSender
	consoles  *consoles
	bulkPause time.Duration
	clock     clockwork.Clock
	menu      map[string]func(context.Context, transport.Message)
}

func NewAdminHandler(log *slog.Logger, d AdminDeps, opts ...AdminOption) *AdminHandler {
	log = log.With("component", "admin_bot")
	h := &AdminHandler{
		log:       log,
		d:         d,
		cards:     &cardSender{log: log, tr: d.Messenger, files: d.Files},
		consoles:  newConsoles(1024, 24*time.Hour),
		bulkPause: 300 * time.Millisecond,
		clock:     clockwork.NewRealClock(),
	}
	h.menu = map[string]func(context.Context, transport.Message){
		btnFilters:     h.openFilters,
		btnList:        h.openList,
		btnGroup:       h.openGroup,
		btnSettings:    h.openSettings,
		btnBack:        h.home,
		btnHome:        h.home,
		btnAddAdmin:    h.askAdd,
		btnRemoveAdmin: h.askRemove,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *AdminHandler) HandleUpdate(ctx context.Context, upd transport.Update) {
	switch {
	case upd.Callback != nil:
		h.handleCallback(ctx, *upd.Callback)
	case upd.Message != nil:
		switch upd.Message.Chat {
		case transport.ChatGroup:
			h.handleGroup(ctx, *upd.Message)
		case transport.ChatPrivate:
			h.handlePrivate(ctx, *upd.Message)
		}
	}
}

// handleGroup пересоздаёт панель по слову «beaton» или /panel в группе менеджеров.
func (h *AdminHandler) handleGroup(ctx context.Context, msg transport.Message) {
	if msg.ChatID != h.d.Group || msg.Kind != transport.KindText {
		return
	}
	name, _, isCmd := msg.Command()
	if !strings.Contains(strings.ToLower(msg.Text), "beaton") && !(isCmd && name == panelCmd) {
		return
	}
	if err := h.d.Messenger.Delete(ctx, msg.ChatID, msg.ID); err != nil {
		h.log.Debug("delete panel trigger", "error", err)
	}
	adminActions.WithLabelValues("panel").Inc()
	h.d.Dashboard.Recreate(ctx)
}

func (h *AdminHandler) handlePrivate(ctx context.Context, msg transport.Message) {
	if !h.d.Roster.IsAdmin(ctx, msg.UserID) {
		h.log.Debug("message from non-staff ignored", "user_id", msg.UserID)
		return
	}
	name, args, isCmd := msg.Command()
	if isCmd && name == "start" {
		h.start(ctx, msg, args)
		return
	}
	if msg.Kind == transport.KindText {
		if fn, ok := h.menu[msg.Text]; ok {
			h.consoles.update(msg.UserID, func(c *console) { c.pending = pendingNone })
			fn(ctx, msg)
			return
		}
	}

	staff := relay.Staff(msg.UserID)
	stop := (isCmd && name == relay.StopCmd) || (msg.Kind == transport.KindText && msg.Text == relay.EndButton)
	if h.d.Relay.Active(staff) {
		if stop {
			h.d.Relay.End(ctx, staff)
			return
		}
		h.d.Relay.Forward(ctx, staff, msg)
		return
	}
	if stop {
		if !h.d.Relay.End(ctx, staff) {
			h.reply(ctx, msg.UserID, transport.WithKeyboard("Диалог не активен.", MainMenu()))
		}
		return
	}

	switch h.consoles.get(msg.UserID).pending {
	case pendingAdd:
		h.addAdmin(ctx, msg)
	case pendingRemove:
		h.removeAdmin(ctx, msg)
	}
}

// start разбирает параметр /start: take_, filters, list_, view_; без него — главное меню.
// Нераспознанный параметр игнорируется, состояние пульта не трогается.
func (h *AdminHandler) start(ctx context.Context, msg transport.Message, param string) {
	chat := msg.UserID
	if param == "" {
		h.consoles.update(chat, func(c *console) { *c = console{} })
		h.reply(ctx, chat, transport.WithKeyboard("🛠 Главное меню системы Beaton:", MainMenu()))
		return
	}
	act, ok := deeplink.Parse(param)
	if !ok {
		h.log.Debug("ignore start param", "param", param)
		return
	}
	h.consoles.update(chat, func(c *console) { *c = console{} })
	switch act.Verb {
	case deeplink.Take:
		h.take(ctx, chat, act.Arg)
	case deeplink.Filters:
		h.reply(ctx, chat, transport.WithKeyboard("Меню навигации обновлено.", navMenu()))
		h.reply(ctx, chat, transport.WithKeyboard(filtersTitle, filterKeyboard(nil)))
	case deeplink.List:
		h.reply(ctx, chat, transport.WithKeyboard("Меню навигации обновлено.", navMenu()))
		h.sendPage(ctx, chat, act.Offset)
	case deeplink.View:
		h.view(ctx, chat, act.Arg)
	}
}

func (h *AdminHandler) take(ctx context.Context, staffID int64, reportID string) {
	adminActions.WithLabelValues("take").Inc()
	_, err := h.d.Relay.Claim(ctx, reportID, staffID)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrReportNotFound):
		h.reply(ctx, staffID, transport.Text("❌ Отчет не найден."))
	case errors.Is(err, errs.ErrSubmitterBusy):
		h.reply(ctx, staffID, transport.Text("⚠️ Клиент уже общается с другим менеджером."))
	case errors.Is(err, errs.ErrStaffBusy):
		h.reply(ctx, staffID, transport.Text("⚠️ Сначала завершите текущий диалог."))
	default:
		h.log.Error("claim report", "report_id", reportID, "staff_id", staffID, "error", err)
		h.reply(ctx, staffID, transport.Text("❌ Не удалось взять отчет в работу."))
	}
}

func (h *AdminHandler) view(ctx context.Context, chat int64, reportID string) {
	adminActions.WithLabelValues("view").Inc()
	r, err := h.d.Reports.GetByID(ctx, reportID)
	if err != nil {
		if !errors.Is(err, errs.ErrReportNotFound) {
			h.log.Error("load report", "report_id", reportID, "error", err)
		}
		h.reply(ctx, chat, transport.Text(fmt.Sprintf("❌ Ошибка: отчет %s не найден.", reportID)))
		return
	}
	if err := h.cards.send(ctx, chat, r); err != nil {
		h.log.Warn("send report card", "report_id", reportID, "error", err)
	}
}

func (h *AdminHandler) sendPage(ctx context.Context, chat int64, offset int) {
	out, err := h.page(ctx, offset)
	if err != nil {
		h.log.Error("list reports", "offset", offset, "error", err)
		return
	}
	h.reply(ctx, chat, out)
}

func (h *AdminHandler) page(ctx context.Context, offset int) (transport.Outgoing, error) {
	items, total, err := h.d.Reports.ListPage(ctx, offset, pageSize)
	if err != nil {
		return transport.Outgoing{}, err
	}
	return ListPage(items, offset, total, h.d.BotName), nil
}

func (h *AdminHandler) openFilters(ctx context.Context, msg transport.Message) {
	h.consoles.update(msg.UserID, func(c *console) { c.selected = nil })
	h.reply(ctx, msg.UserID, transport.WithKeyboard("Вы перешли в раздел фильтров.", navMenu()))
	h.reply(ctx, msg.UserID, transport.WithKeyboard(filtersTitle, filterKeyboard(nil)))
}

func (h *AdminHandler) openList(ctx context.Context, msg transport.Message) {
	h.reply(ctx, msg.UserID, transport.WithKeyboard("Вы перешли в список отзывов.", navMenu()))
	h.sendPage(ctx, msg.UserID, 0)
}

func (h *AdminHandler) openGroup(ctx context.Context, msg transport.Message) {
	h.reply(ctx, msg.UserID, transport.Text("Перейти в рабочую группу менеджеров:\n"+groupLink(h.d.Group)))
}

func (h *AdminHandler) openSettings(ctx context.Context, msg transport.Message) {
	h.reply(ctx, msg.UserID, transport.WithKeyboard("⚙️ *Управление доступом:*", settingsMenu()))
}

func (h *AdminHandler) home(ctx context.Context, msg transport.Message) {
	h.reply(ctx, msg.UserID, transport.WithKeyboard("🛠 Главное меню:", MainMenu()))
}

func (h *AdminHandler) askAdd(ctx context.Context, msg transport.Message) {
	h.consoles.update(msg.UserID, func(c *console) { c.pending = pendingAdd })
	h.reply(ctx, msg.UserID, transport.Text("✏️ *Введите Telegram ID нового администратора:*"))
}

func (h *AdminHandler) askRemove(ctx context.Context, msg transport.Message) {
	ids, err := h.d.Roster.List(ctx)
	if err != nil {
		h.log.Error("list admins", "error", err)
		return
	}
	var b strings.Builder
	b.WriteString("✏️ *Введите Telegram ID администратора для удаления:*\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "\n- `%d`", id)
	}
	h.consoles.update(msg.UserID, func(c *console) { c.pending = pendingRemove })
	h.reply(ctx, msg.UserID, transport.Text(b.String()))
}

func (h *AdminHandler) addAdmin(ctx context.Context, msg transport.Message) {
	id, ok := parseUserID(msg)
	if !ok {
		h.reply(ctx, msg.UserID, transport.Text("❌ Ошибка формата. Пришлите ID цифрами."))
		return
	}
	err := h.d.Roster.Add(ctx, id)
	switch {
	case errors.Is(err, errs.ErrAlreadyExists):
		h.reply(ctx, msg.UserID, transport.Text(fmt.Sprintf("⚠️ Пользователь `%d` уже является админом.", id)))
		return
	case err != nil:
		h.log.Error("add admin", "user_id", id, "error", err)
		return
	}
	adminActions.WithLabelValues("admin_add").Inc()
	h.consoles.update(msg.UserID, func(c *console) { c.pending = pendingNone })
	h.reply(ctx, msg.UserID, transport.WithKeyboard(fmt.Sprintf("✅ Пользователь `%d` успешно добавлен!", id), settingsMenu()))
}

func (h *AdminHandler) removeAdmin(ctx context.Context, msg transport.Message) {
	id, ok := parseUserID(msg)
	if !ok {
		h.reply(ctx, msg.UserID, transport.Text("❌ Ошибка формата. Введите ID цифрами."))
		return
	}
	err := h.d.Roster.Remove(ctx, id)
	switch {
	case errors.Is(err, errs.ErrAdminNotFound):
		h.reply(ctx, msg.UserID, transport.Text(fmt.Sprintf("⚠️ Администратор `%d` не найден в базе.", id)))
		return
	case err != nil:
		h.log.Error("remove admin", "user_id", id, "error", err)
		return
	}
	adminActions.WithLabelValues("admin_remove").Inc()
	h.consoles.update(msg.UserID, func(c *console) { c.pending = pendingNone })
	h.reply(ctx, msg.UserID, transport.WithKeyboard(fmt.Sprintf("🗑 Администратор `%d` успешно удален.", id), settingsMenu()))
}

// parseUserID принимает только цифры: знак и пробелы внутри не допускаются.
func parseUserID(msg transport.Message) (int64, bool) {
	s := strings.TrimSpace(msg.Text)
	if msg.Kind != transport.KindText || s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}

func (h *AdminHandler) reply(ctx context.Context, chat int64, out transport.Outgoing) {
	if _, err := h.d.Messenger.Send(ctx, chat, out); err != nil {
		h.log.Warn("admin reply", "chat_id", chat, "error", err)
	}
}
