package model

import (
	"fmt"
	"time"
)

type ReportStatus string

const (
	ReportStatusNew        ReportStatus = "new"
	ReportStatusInProgress ReportStatus = "in_progress"
)

const (
	MaxPhotos = 3
	MaxVideos = 1
)

// Report — завершённый отчёт клиента. Создаётся один раз по завершении анкеты,
// меняется только статус (при взятии в работу), не удаляется.
type Report struct {
	ID          string       `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Seq         int64        `gorm:"uniqueIndex;not null" json:"-"`
	Product     Product      `gorm:"type:varchar(32);index;not null" json:"product"`
	Intent      Intent       `gorm:"type:varchar(32);index;not null" json:"intent"`
	Comment     string       `gorm:"type:text" json:"comment"`
	Consent     Consent      `gorm:"type:varchar(32);index;not null" json:"consent"`
	Photos      []string     `gorm:"serializer:json;type:text" json:"photos"`
	Videos      []string     `gorm:"serializer:json;type:text" json:"videos"`
	Username    string       `gorm:"type:varchar(255)" json:"username"`
	UserID      int64        `gorm:"index;not null" json:"user_id"`
	Status      ReportStatus `gorm:"type:varchar(32);index;not null;default:new" json:"status"`
	ClientName  *string      `gorm:"type:varchar(255)" json:"client_name,omitempty"`
	ArchiveRefs []string     `gorm:"serializer:json;type:text" json:"archive_refs,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateMedia проверяет ограничения на фото и видео отчёта.
func (r *Report) ValidateMedia() error {
	return ValidateMedia(r.Photos, r.Videos)
}

// ValidateMedia применяет правила пачки по порядку: лимит фото, лимит видео, смешивание.
func ValidateMedia(photos, videos []string) error {
	switch {
	case len(photos) > MaxPhotos:
		return &MediaError{Rule: MediaTooManyPhotos, Count: len(photos)}
	case len(videos) > MaxVideos:
		return &MediaError{Rule: MediaTooManyVideos, Count: len(videos)}
	case len(photos) > 0 && len(videos) > 0:
		return &MediaError{Rule: MediaMixed}
	}
	return nil
}

type MediaRule int

const (
	MediaTooManyPhotos MediaRule = iota + 1
	MediaTooManyVideos
	MediaMixed
)

type MediaError struct {
	Rule  MediaRule
	Count int
}

func (e *MediaError) Error() string {
	switch e.Rule {
	case MediaTooManyPhotos:
		return fmt.Sprintf("too many photos: %d > %d", e.Count, MaxPhotos)
	case MediaTooManyVideos:
		return fmt.Sprintf("too many videos: %d > %d", e.Count, MaxVideos)
	default:
		return "photos and videos cannot be mixed"
	}
}

// Admin — запись состава сотрудников (staff roster).
type Admin struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Setting — произвольная пара ключ/значение (например, id сообщения панели).
type Setting struct {
	Key   string `gorm:"primaryKey;type:varchar(64)"`
	Value string `gorm:"type:text"`
}

// ReportFilter — фильтр выборки: пустое множество означает «без ограничения».
type ReportFilter struct {
	Products []Product
	Intents  []Intent
	Consents []Consent
}

// Empty — ни одного ограничения не выбрано.
func (f ReportFilter) Empty() bool {
	return len(f.Products) == 0 && len(f.Intents) == 0 && len(f.Consents) == 0
}
