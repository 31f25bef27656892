// Package telegram реализует transport.Messenger поверх Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/psds-microservice/report-service/internal/errs"
	"github.com/psds-microservice/report-service/internal/httpclient"
	"github.com/psds-microservice/report-service/internal/transport"
)

const parseMode = tgbotapi.ModeMarkdown

// Bot — один бот (клиентский или админский). Безопасен для конкурентного использования.
type Bot struct {
	api  *tgbotapi.BotAPI
	http *retryablehttp.Client
	log  *slog.Logger
	name string
}

var _ transport.Messenger = (*Bot)(nil)

// New резолвит личность бота через getMe: без неё сервис не стартует.
func New(name, token string, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram %s: get me: %w", name, err)
	}
	log = log.With("component", "telegram", "bot", name)
	log.Info("bot authorized", "username", api.Self.UserName, "id", api.Self.ID)
	return &Bot{
		api:  api,
		http: httpclient.New(log),
		log:  log,
		name: name,
	}, nil
}

func (b *Bot) Username() string { return b.api.Self.UserName }

func (b *Bot) ID() int64 { return b.api.Self.ID }

func (b *Bot) Send(ctx context.Context, chat int64, out transport.Outgoing) (transport.MessageID, error) {
	if err := ctx.Err(); err != nil {
		return 0, errs.Transport("send", err)
	}
	cfg := tgbotapi.NewMessage(chat, out.Text)
	cfg.ParseMode = parseMode
	cfg.DisableWebPagePreview = out.DisablePreview
	if markup := replyMarkup(out.Keyboard); markup != nil {
		cfg.ReplyMarkup = markup
	}
	msg, err := b.api.Send(cfg)
	observe(b.name, "send", err)
	if err != nil {
		return 0, errs.Transport("send", err)
	}
	return transport.MessageID(msg.MessageID), nil
}

// Edit меняет текст и inline-клавиатуру. Reply-клавиатуру Telegram при редактировании не принимает.
func (b *Bot) Edit(ctx context.Context, chat int64, id transport.MessageID, out transport.Outgoing) error {
	if err := ctx.Err(); err != nil {
		return errs.Transport("edit", err)
	}
	cfg := tgbotapi.NewEditMessageText(chat, int(id), out.Text)
	cfg.ParseMode = parseMode
	cfg.DisableWebPagePreview = out.DisablePreview
	if out.Keyboard != nil && len(out.Keyboard.Inline) > 0 {
		markup := inlineMarkup(out.Keyboard.Inline)
		cfg.ReplyMarkup = &markup
	}
	_, err := b.api.Request(cfg)
	observe(b.name, "edit", err)
	if err != nil {
		if isNotModified(err) {
			return errs.Transport("edit", errs.ErrNotModified)
		}
		return errs.Transport("edit", err)
	}
	return nil
}

func (b *Bot) Delete(ctx context.Context, chat int64, id transport.MessageID) error {
	if err := ctx.Err(); err != nil {
		return errs.Transport("delete", err)
	}
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(chat, int(id)))
	observe(b.name, "delete", err)
	return errs.Transport("delete", err)
}

// SendMedia отправляет одно вложение отдельным сообщением, несколько — альбомом.
// Подпись первого элемента становится подписью альбома.
func (b *Bot) SendMedia(ctx context.Context, chat int64, items []transport.MediaItem) ([]transport.MessageID, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Transport("send media", err)
	}
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		msg, err := b.api.Send(single(chat, items[0]))
		observe(b.name, "send_media", err)
		if err != nil {
			return nil, errs.Transport("send media", err)
		}
		return []transport.MessageID{transport.MessageID(msg.MessageID)}, nil
	}

	files := make([]interface{}, 0, len(items))
	for _, it := range items {
		files = append(files, groupItem(it))
	}
	msgs, err := b.api.SendMediaGroup(tgbotapi.NewMediaGroup(chat, files))
	observe(b.name, "send_media", err)
	if err != nil {
		return nil, errs.Transport("send media", err)
	}
	ids := make([]transport.MessageID, len(msgs))
	for i, m := range msgs {
		ids[i] = transport.MessageID(m.MessageID)
	}
	return ids, nil
}

// Download скачивает файл по file id. Ссылка на файл живёт только в рамках этого бота.
func (b *Bot) Download(ctx context.Context, fileID string) ([]byte, error) {
	link, err := b.api.GetFileDirectURL(fileID)
	observe(b.name, "get_file", err)
	if err != nil {
		return nil, errs.Transport("download", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, errs.Transport("download", err)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, errs.Transport("download", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errs.Transport("download", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Transport("download", err)
	}
	return data, nil
}

func (b *Bot) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return errs.Transport("answer callback", err)
	}
	cfg := tgbotapi.NewCallback(callbackID, text)
	cfg.ShowAlert = alert
	_, err := b.api.Request(cfg)
	observe(b.name, "answer_callback", err)
	return errs.Transport("answer callback", err)
}

func isNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Message, "message is not modified")
	}
	return strings.Contains(err.Error(), "message is not modified")
}

func fileData(it transport.MediaItem) tgbotapi.RequestFileData {
	if len(it.Bytes) > 0 {
		name := it.Name
		if name == "" {
			name = "file"
		}
		return tgbotapi.FileBytes{Name: name, Bytes: it.Bytes}
	}
	return tgbotapi.FileID(it.FileID)
}

func single(chat int64, it transport.MediaItem) tgbotapi.Chattable {
	if it.Kind == transport.MediaVideo {
		cfg := tgbotapi.NewVideo(chat, fileData(it))
		cfg.Caption = it.Caption
		cfg.ParseMode = parseMode
		return cfg
	}
	cfg := tgbotapi.NewPhoto(chat, fileData(it))
	cfg.Caption = it.Caption
	cfg.ParseMode = parseMode
	return cfg
}

func groupItem(it transport.MediaItem) interface{} {
	if it.Kind == transport.MediaVideo {
		m := tgbotapi.NewInputMediaVideo(fileData(it))
		if it.Caption != "" {
			m.Caption = it.Caption
			m.ParseMode = parseMode
		}
		return m
	}
	m := tgbotapi.NewInputMediaPhoto(fileData(it))
	if it.Caption != "" {
		m.Caption = it.Caption
		m.ParseMode = parseMode
	}
	return m
}
