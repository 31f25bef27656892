// Package archive копирует медиа отчётов в долговременное хранилище: канал-архив
// Telegram или бакет S3. Копия нужна, потому что file id живёт только внутри бота.
package archive

import (
	"context"
	"fmt"
	"strconv"

	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/transport"
)

// Nop ничего не архивирует.
type Nop struct{}

func (Nop) Archive(context.Context, *model.Report) ([]string, error) { return nil, nil }

// Channel пересылает медиа отчёта в канал-архив и возвращает id сообщений.
type Channel struct {
	tr   transport.Transport
	chat int64
}

func NewChannel(tr transport.Transport, chat int64) *Channel {
	return &Channel{tr: tr, chat: chat}
}

func (c *Channel) Archive(ctx context.Context, r *model.Report) ([]string, error) {
	items := MediaItems(r, "Report: "+r.ID)
	if len(items) == 0 {
		return nil, nil
	}
	ids, err := c.tr.SendMedia(ctx, c.chat, items)
	if err != nil {
		return nil, fmt.Errorf("archive to channel: %w", err)
	}
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = strconv.Itoa(int(id))
	}
	return refs, nil
}

// MediaItems собирает вложения отчёта: сначала фото, затем видео; подпись — у первого.
func MediaItems(r *model.Report, caption string) []transport.MediaItem {
	items := make([]transport.MediaItem, 0, len(r.Photos)+len(r.Videos))
	for _, id := range r.Photos {
		items = append(items, transport.MediaItem{Kind: transport.MediaPhoto, FileID: id})
	}
	for _, id := range r.Videos {
		items = append(items, transport.MediaItem{Kind: transport.MediaVideo, FileID: id})
	}
	if len(items) > 0 {
		items[0].Caption = caption
	}
	return items
}
