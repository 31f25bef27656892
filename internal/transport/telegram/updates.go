package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/psds-microservice/report-service/internal/transport"
)

const pollTimeout = 30

// Run читает обновления long-polling'ом и отдаёт каждое в handler в отдельной горутине,
// чтобы ожидание пачки медиа одного пользователя не блокировало остальных.
// Возвращается после отмены ctx, дождавшись уже запущенных обработчиков.
func (b *Bot) Run(ctx context.Context, h transport.Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	// обработчики доживают до конца, даже если ctx уже отменён
	handlerCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()

	b.log.Info("polling started")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("polling stopped")
			return nil
		case raw, ok := <-updates:
			if !ok {
				return nil
			}
			upd, ok := Convert(raw)
			if !ok {
				updatesReceived.WithLabelValues(b.name, "skipped").Inc()
				continue
			}
			updatesReceived.WithLabelValues(b.name, updateKind(upd)).Inc()
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						b.log.Error("update handler panic", "panic", r, "update_id", raw.UpdateID)
					}
				}()
				h.HandleUpdate(handlerCtx, upd)
			}()
		}
	}
}

// Convert переводит обновление Telegram в нейтральный вид. Обновления без
// отправителя (посты каналов, inline-запросы) пропускаются.
func Convert(raw tgbotapi.Update) (transport.Update, bool) {
	switch {
	case raw.Message != nil:
		m, ok := convertMessage(raw.Message)
		if !ok {
			return transport.Update{}, false
		}
		return transport.Update{Message: &m}, true
	case raw.CallbackQuery != nil:
		q := raw.CallbackQuery
		if q.From == nil || q.Message == nil || q.Message.Chat == nil {
			return transport.Update{}, false
		}
		return transport.Update{Callback: &transport.Callback{
			ID:        q.ID,
			UserID:    q.From.ID,
			ChatID:    q.Message.Chat.ID,
			MessageID: transport.MessageID(q.Message.MessageID),
			Data:      q.Data,
		}}, true
	}
	return transport.Update{}, false
}

func convertMessage(m *tgbotapi.Message) (transport.Message, bool) {
	if m.From == nil || m.Chat == nil {
		return transport.Message{}, false
	}
	out := transport.Message{
		ID:       transport.MessageID(m.MessageID),
		UserID:   m.From.ID,
		ChatID:   m.Chat.ID,
		Chat:     chatKind(m.Chat),
		Username: m.From.UserName,
		FullName: strings.TrimSpace(m.From.FirstName + " " + m.From.LastName),
	}
	switch {
	case len(m.Photo) > 0:
		out.Kind = transport.KindPhoto
		// последний размер — самый крупный
		out.FileID = m.Photo[len(m.Photo)-1].FileID
		out.Text = m.Caption
	case m.Animation != nil:
		out.Kind = transport.KindAnimation
		out.FileID = m.Animation.FileID
		out.Text = m.Caption
	case m.Video != nil:
		out.Kind = transport.KindVideo
		out.FileID = m.Video.FileID
		out.Text = m.Caption
	case m.Text != "":
		out.Kind = transport.KindText
		out.Text = m.Text
	default:
		out.Kind = transport.KindOther
		out.Text = m.Caption
	}
	return out, true
}

func chatKind(c *tgbotapi.Chat) transport.ChatKind {
	switch {
	case c.IsPrivate():
		return transport.ChatPrivate
	case c.IsChannel():
		return transport.ChatChannel
	default:
		return transport.ChatGroup
	}
}

func updateKind(u transport.Update) string {
	if u.Callback != nil {
		return "callback"
	}
	return u.Message.Kind.String()
}
