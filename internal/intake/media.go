package intake

import (
	"context"
	"errors"

	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/transport"
)

// handleMedia вызывается с захваченным s.mu и отпускает его.
//
// Каждое вложение добавляется в черновик сразу и увеличивает номер пачки. После паузы
// тишины продолжает только вызов, чей номер остался последним: новые вложения
// продлевают ожидание. Флаг locked проверяется и ставится под тем же мьютексом.
func (m *Machine) handleMedia(ctx context.Context, s *session, msg transport.Message) {
	switch msg.Kind {
	case transport.KindPhoto:
		s.draft.Photos = append(s.draft.Photos, msg.FileID)
	case transport.KindVideo, transport.KindAnimation:
		s.draft.Videos = append(s.draft.Videos, msg.FileID)
	default:
		s.mu.Unlock()
		rejections.WithLabelValues(UploadingMedia.String()).Inc()
		m.reply(ctx, msg, transport.Text(errNotMedia))
		return
	}
	s.batch++
	batch := s.batch
	m.log.Debug("media received", "user_id", msg.UserID, "kind", msg.Kind.String(), "batch", batch)
	s.mu.Unlock()

	select {
	case <-m.clock.After(m.quiet):
	case <-ctx.Done():
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch != batch || s.locked || s.state != UploadingMedia {
		return
	}

	if err := model.ValidateMedia(s.draft.Photos, s.draft.Videos); err != nil {
		var me *model.MediaError
		if !errors.As(err, &me) {
			return
		}
		s.locked = true
		mediaBatches.WithLabelValues(ruleLabel(me.Rule)).Inc()
		m.reply(ctx, msg, transport.Text(mediaErrorText(me)+retryMedia))
		s.draft.Photos, s.draft.Videos = nil, nil
		s.locked = false
		return
	}
	if len(s.draft.Photos) == 0 && len(s.draft.Videos) == 0 {
		return
	}
	s.locked = true
	mediaBatches.WithLabelValues("accepted").Inc()
	m.log.Info("media batch accepted", "user_id", msg.UserID,
		"photos", len(s.draft.Photos), "videos", len(s.draft.Videos))
	m.advance(ctx, msg, s, WritingComment, transport.Text(mediaAccepted))
}

func ruleLabel(r model.MediaRule) string {
	switch r {
	case model.MediaTooManyPhotos:
		return "too_many_photos"
	case model.MediaTooManyVideos:
		return "too_many_videos"
	default:
		return "mixed"
	}
}
