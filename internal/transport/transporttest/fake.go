// Package transporttest — транспорт в памяти для тестов.
// Хранит текущее содержимое живых сообщений: правка без изменений даёт errs.ErrNotModified,
// правка удалённого сообщения падает, как и в Telegram.
package transporttest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/psds-microservice/report-service/internal/errs"
	"github.com/psds-microservice/report-service/internal/transport"
)

var ErrMessageGone = errors.New("message to edit not found")

type Sent struct {
	Chat int64
	ID   transport.MessageID
	Out  transport.Outgoing
}

type SentMedia struct {
	Chat  int64
	Items []transport.MediaItem
}

type Answer struct {
	CallbackID string
	Text       string
	Alert      bool
}

type Fake struct {
	mu      sync.Mutex
	nextID  transport.MessageID
	live    map[int64]map[transport.MessageID]transport.Outgoing
	sent    []Sent
	edits   []Sent
	deletes []Sent
	media   []SentMedia
	answers []Answer

	// Files — содержимое файлов по file id для Download.
	Files map[string][]byte

	// Хуки: ненулевая ошибка роняет вызов.
	SendErr     func(chat int64, out transport.Outgoing) error
	EditErr     func(chat int64, id transport.MessageID) error
	DeleteErr   func(chat int64, id transport.MessageID) error
	MediaErr    func(chat int64, items []transport.MediaItem) error
	DownloadErr func(fileID string) error
}

func New() *Fake {
	return &Fake{
		nextID: 100,
		live:   make(map[int64]map[transport.MessageID]transport.Outgoing),
		Files:  make(map[string][]byte),
	}
}

var _ transport.Messenger = (*Fake)(nil)

func (f *Fake) Send(_ context.Context, chat int64, out transport.Outgoing) (transport.MessageID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		if err := f.SendErr(chat, out); err != nil {
			return 0, errs.Transport("send", err)
		}
	}
	id := f.store(chat, out)
	f.sent = append(f.sent, Sent{Chat: chat, ID: id, Out: out})
	return id, nil
}

func (f *Fake) Edit(_ context.Context, chat int64, id transport.MessageID, out transport.Outgoing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EditErr != nil {
		if err := f.EditErr(chat, id); err != nil {
			return errs.Transport("edit", err)
		}
	}
	cur, ok := f.live[chat][id]
	if !ok {
		return errs.Transport("edit", ErrMessageGone)
	}
	if reflect.DeepEqual(cur, out) {
		return errs.Transport("edit", errs.ErrNotModified)
	}
	f.live[chat][id] = out
	f.edits = append(f.edits, Sent{Chat: chat, ID: id, Out: out})
	return nil
}

func (f *Fake) Delete(_ context.Context, chat int64, id transport.MessageID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		if err := f.DeleteErr(chat, id); err != nil {
			return errs.Transport("delete", err)
		}
	}
	if _, ok := f.live[chat][id]; !ok {
		return errs.Transport("delete", ErrMessageGone)
	}
	delete(f.live[chat], id)
	f.deletes = append(f.deletes, Sent{Chat: chat, ID: id})
	return nil
}

func (f *Fake) SendMedia(_ context.Context, chat int64, items []transport.MediaItem) ([]transport.MessageID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MediaErr != nil {
		if err := f.MediaErr(chat, items); err != nil {
			return nil, errs.Transport("send media", err)
		}
	}
	ids := make([]transport.MessageID, len(items))
	for i, it := range items {
		ids[i] = f.store(chat, transport.Outgoing{Text: it.Caption})
	}
	f.media = append(f.media, SentMedia{Chat: chat, Items: append([]transport.MediaItem(nil), items...)})
	return ids, nil
}

func (f *Fake) Download(_ context.Context, fileID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DownloadErr != nil {
		if err := f.DownloadErr(fileID); err != nil {
			return nil, errs.Transport("download", err)
		}
	}
	b, ok := f.Files[fileID]
	if !ok {
		return nil, errs.Transport("download", fmt.Errorf("file %q not found", fileID))
	}
	return b, nil
}

func (f *Fake) AnswerCallback(_ context.Context, id, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, Answer{CallbackID: id, Text: text, Alert: alert})
	return nil
}

// Expire удаляет живое сообщение, будто его стёрли руками.
func (f *Fake) Expire(chat int64, id transport.MessageID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live[chat], id)
}

func (f *Fake) store(chat int64, out transport.Outgoing) transport.MessageID {
	f.nextID++
	if f.live[chat] == nil {
		f.live[chat] = make(map[transport.MessageID]transport.Outgoing)
	}
	f.live[chat][f.nextID] = out
	return f.nextID
}

// Sent — все сообщения, отправленные в чат, по порядку.
func (f *Fake) Sent(chat int64) []transport.Outgoing {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []transport.Outgoing
	for _, s := range f.sent {
		if s.Chat == chat {
			out = append(out, s.Out)
		}
	}
	return out
}

// Texts — тексты всех сообщений, отправленных в чат.
func (f *Fake) Texts(chat int64) []string {
	var out []string
	for _, m := range f.Sent(chat) {
		out = append(out, m.Text)
	}
	return out
}

// Last — последнее сообщение в чат.
func (f *Fake) Last(chat int64) (transport.Outgoing, bool) {
	sent := f.Sent(chat)
	if len(sent) == 0 {
		return transport.Outgoing{}, false
	}
	return sent[len(sent)-1], true
}

// Live — id ещё существующих сообщений чата.
func (f *Fake) Live(chat int64) []transport.MessageID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []transport.MessageID
	for id := range f.live[chat] {
		out = append(out, id)
	}
	return out
}

// Content — текущее содержимое живого сообщения.
func (f *Fake) Content(chat int64, id transport.MessageID) (transport.Outgoing, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, ok := f.live[chat][id]
	return out, ok
}

func (f *Fake) Edits() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Sent(nil), f.edits...)
}

func (f *Fake) Deletes() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Sent(nil), f.deletes...)
}

func (f *Fake) Media(chat int64) []SentMedia {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SentMedia
	for _, m := range f.media {
		if m.Chat == chat {
			out = append(out, m)
		}
	}
	return out
}

func (f *Fake) Answers() []Answer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Answer(nil), f.answers...)
}

// Seed кладёт в чат сообщение, будто оно было отправлено до начала теста.
func (f *Fake) Seed(chat int64, out transport.Outgoing) transport.MessageID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store(chat, out)
}
