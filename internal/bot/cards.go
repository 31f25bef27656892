package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/psds-microservice/report-service/internal/archive"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/transport"
)

const mediaUnavailable = "_(медиа недоступно)_"

// cardSender показывает карточку отчёта в админ-боте. Медиа принадлежат клиентскому
// боту, поэтому скачиваются через files и загружаются заново байтами.
type cardSender struct {
	log   *slog.Logger
	tr    transport.Transport
	files transport.Transport
}

func (c *cardSender) send(ctx context.Context, chat int64, r *model.Report) error {
	caption := Card(r)
	items := archive.MediaItems(r, caption)
	if len(items) == 0 {
		_, err := c.tr.Send(ctx, chat, transport.Text(caption))
		return err
	}
	for i := range items {
		data, err := c.files.Download(ctx, items[i].FileID)
		if err != nil {
			c.log.Warn("report media unavailable", "report_id", r.ID, "file_id", items[i].FileID, "error", err)
			_, err = c.tr.Send(ctx, chat, transport.Text(caption+"\n\n"+mediaUnavailable))
			return err
		}
		items[i].Bytes = data
		items[i].Name = mediaName(r.ID, i, items[i].Kind)
	}
	if _, err := c.tr.SendMedia(ctx, chat, items); err != nil {
		c.log.Warn("send report media", "report_id", r.ID, "error", err)
		_, err = c.tr.Send(ctx, chat, transport.Text(caption+"\n\n"+mediaUnavailable))
		return err
	}
	return nil
}

func mediaName(id string, i int, kind transport.MediaKind) string {
	if kind == transport.MediaVideo {
		return fmt.Sprintf("%s-%d.mp4", id, i+1)
	}
	return fmt.Sprintf("%s-%d.jpg", id, i+1)
}
