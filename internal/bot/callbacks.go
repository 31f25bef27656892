package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/psds-microservice/report-service/internal/errs"
	"github.com/psds-microservice/report-service/internal/transport"
)

// handleCallback обрабатывает нажатия инлайн-кнопок фильтров и списков.
// Каждое нажатие подтверждается, иначе клиент Telegram показывает «загрузку».
func (h *AdminHandler) handleCallback(ctx context.Context, cb transport.Callback) {
	if !h.d.Roster.IsAdmin(ctx, cb.UserID) {
		h.answer(ctx, cb, "", false)
		return
	}
	data := cb.Data
	switch {
	case data == cbNone:
	case strings.HasPrefix(data, cbToggle):
		key := strings.TrimPrefix(data, cbToggle)
		if _, ok := lookupOption(key); ok {
			c := h.consoles.update(cb.UserID, func(c *console) { c.selected = toggle(c.selected, key) })
			h.edit(ctx, cb, transport.WithKeyboard(filtersTitle, filterKeyboard(c.selected)))
		}
	case data == cbClear:
		h.consoles.update(cb.UserID, func(c *console) { c.selected = nil })
		h.edit(ctx, cb, transport.WithKeyboard(filtersTitle, filterKeyboard(nil)))
	case data == cbApply:
		h.apply(ctx, cb)
		return
	case strings.HasPrefix(data, cbBulk):
		if offset, ok := parseOffset(data, cbBulk); ok {
			h.answer(ctx, cb, "", false)
			h.bulk(ctx, cb.ChatID, cb.UserID, offset)
			return
		}
	case data == cbFiltersBack:
		c := h.consoles.get(cb.UserID)
		h.edit(ctx, cb, transport.WithKeyboard(filtersTitle, filterKeyboard(c.selected)))
	case strings.HasPrefix(data, cbPage):
		if offset, ok := parseOffset(data, cbPage); ok {
			out, err := h.page(ctx, offset)
			if err != nil {
				h.log.Error("list reports", "offset", offset, "error", err)
				break
			}
			h.edit(ctx, cb, out)
		}
	case data == cbClose:
		if err := h.d.Messenger.Delete(ctx, cb.ChatID, cb.MessageID); err != nil {
			h.log.Debug("delete list message", "error", err)
		}
		h.reply(ctx, cb.ChatID, transport.WithKeyboard("🛠 Главное меню системы Beaton:", MainMenu()))
	default:
		h.log.Debug("unknown callback", "data", data)
	}
	h.answer(ctx, cb, "", false)
}

func (h *AdminHandler) apply(ctx context.Context, cb transport.Callback) {
	filter := FilterFromKeys(h.consoles.get(cb.UserID).selected)
	if filter.Empty() {
		h.answer(ctx, cb, "Выберите параметры!", true)
		return
	}
	items, err := h.d.Reports.QueryByFilter(ctx, filter)
	if err != nil {
		h.log.Error("query reports", "error", err)
		h.answer(ctx, cb, "", false)
		return
	}
	if len(items) == 0 {
		h.answer(ctx, cb, "Ничего не найдено", true)
		return
	}
	ids := make([]string, len(items))
	for i, r := range items {
		ids[i] = r.ID
	}
	h.consoles.update(cb.UserID, func(c *console) { c.found = ids })
	adminActions.WithLabelValues("filter").Inc()
	h.edit(ctx, cb, Results(items, h.d.BotName))
	h.answer(ctx, cb, "", false)
}

// bulk показывает карточки найденных отчётов по pageSize за раз.
func (h *AdminHandler) bulk(ctx context.Context, chat, userID int64, offset int) {
	found := h.consoles.get(userID).found
	if offset >= len(found) {
		return
	}
	chunk := found[offset:min(len(found), offset+pageSize)]
	for i, id := range chunk {
		if i > 0 && h.bulkPause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-h.clock.After(h.bulkPause):
			}
		}
		h.view(ctx, chat, id)
	}
	if len(found) > offset+pageSize {
		h.reply(ctx, chat, transport.WithKeyboard("Продолжить?", transport.InlineKeyboard(
			[]transport.Button{{Text: "➡️ Еще 10", Data: cbBulk + strconv.Itoa(offset+pageSize)}},
		)))
	}
}

func (h *AdminHandler) edit(ctx context.Context, cb transport.Callback, out transport.Outgoing) {
	err := h.d.Messenger.Edit(ctx, cb.ChatID, cb.MessageID, out)
	if err != nil && !errors.Is(err, errs.ErrNotModified) {
		h.log.Warn("edit admin message", "chat_id", cb.ChatID, "error", err)
	}
}

func (h *AdminHandler) answer(ctx context.Context, cb transport.Callback, text string, alert bool) {
	if err := h.d.Messenger.AnswerCallback(ctx, cb.ID, text, alert); err != nil {
		h.log.Debug("answer callback", "error", err)
	}
}

func parseOffset(data, prefix string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
