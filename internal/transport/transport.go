// Package transport описывает мессенджер, через который работают боты.
// Реализации возвращают сбои как *errs.TransportError, а правку без изменений как errs.ErrNotModified.
package transport

import (
	"context"
	"strings"
)

// MessageID — id отправленного сообщения в пределах чата.
type MessageID int

type Transport interface {
	Send(ctx context.Context, chat int64, out Outgoing) (MessageID, error)
	Edit(ctx context.Context, chat int64, id MessageID, out Outgoing) error
	Delete(ctx context.Context, chat int64, id MessageID) error
	SendMedia(ctx context.Context, chat int64, items []MediaItem) ([]MessageID, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// CallbackAnswerer подтверждает нажатие инлайн-кнопки, при необходимости всплывающим окном.
type CallbackAnswerer interface {
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// Messenger — то, что нужно обработчику бота от транспорта.
type Messenger interface {
	Transport
	CallbackAnswerer
}

// Outgoing — текст с необязательной клавиатурой.
type Outgoing struct {
	Text           string
	Keyboard       *Keyboard
	DisablePreview bool
}

func Text(s string) Outgoing { return Outgoing{Text: s} }

func WithKeyboard(s string, kb *Keyboard) Outgoing { return Outgoing{Text: s, Keyboard: kb} }

// Keyboard — обычная клавиатура, инлайн-клавиатура или её удаление.
type Keyboard struct {
	Reply  [][]string
	Inline [][]Button
	Remove bool
}

// Button — инлайн-кнопка; URL важнее Data.
type Button struct {
	Text string
	URL  string
	Data string
}

func ReplyKeyboard(rows ...[]string) *Keyboard { return &Keyboard{Reply: rows} }

func InlineKeyboard(rows ...[]Button) *Keyboard { return &Keyboard{Inline: rows} }

func RemoveKeyboard() *Keyboard { return &Keyboard{Remove: true} }

type MediaKind int

const (
	MediaPhoto MediaKind = iota + 1
	MediaVideo
)

// MediaItem ссылается на вложение по file id либо несёт байты для загрузки.
type MediaItem struct {
	Kind    MediaKind
	FileID  string
	Bytes   []byte
	Name    string
	Caption string
}

type Kind int

const (
	KindText Kind = iota + 1
	KindPhoto
	KindVideo
	KindAnimation
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	case KindAnimation:
		return "animation"
	default:
		return "other"
	}
}

type ChatKind int

const (
	ChatPrivate ChatKind = iota + 1
	ChatGroup
	ChatChannel
)

// Message — входящее сообщение без деталей конкретного API.
type Message struct {
	ID       MessageID
	UserID   int64
	ChatID   int64
	Chat     ChatKind
	Username string
	FullName string
	Kind     Kind
	Text     string
	FileID   string
}

// Command разбирает "/name@bot args" на имя команды и аргументы.
func (m Message) Command() (name, args string, ok bool) {
	if m.Kind != KindText || !strings.HasPrefix(m.Text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(m.Text[1:], " ")
	name, _, _ = strings.Cut(head, "@")
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(rest), true
}

// Callback — нажатие инлайн-кнопки.
type Callback struct {
	ID        string
	UserID    int64
	ChatID    int64
	MessageID MessageID
	Data      string
}

// Update содержит ровно одно из Message и Callback.
type Update struct {
	Message  *Message
	Callback *Callback
}

type Handler interface {
	HandleUpdate(ctx context.Context, upd Update)
}

type HandlerFunc func(ctx context.Context, upd Update)

func (f HandlerFunc) HandleUpdate(ctx context.Context, upd Update) { f(ctx, upd) }

// Handle возвращает "@username", а без него полное имя.
func (m Message) Handle() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	return m.FullName
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown экранирует пользовательский текст для Markdown-разметки сообщений.
func EscapeMarkdown(s string) string { return markdownEscaper.Replace(s) }
