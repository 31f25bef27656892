package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/psds-microservice/report-service/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const keyDashboardMessage = "dashboard_message_id"

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// LoadDashboardRef возвращает сохранённый id сообщения панели (ok=false, если его нет).
func (s *SettingsService) LoadDashboardRef(ctx context.Context) (int, bool, error) {
	var st model.Setting
	err := s.db.WithContext(ctx).First(&st, "key = ?", keyDashboardMessage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.Atoi(st.Value)
	if err != nil || id == 0 {
		return 0, false, nil
	}
	return id, true, nil
}

func (s *SettingsService) SaveDashboardRef(ctx context.Context, id int) error {
	st := model.Setting{Key: keyDashboardMessage, Value: strconv.Itoa(id)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&st).Error
}

func (s *SettingsService) ClearDashboardRef(ctx context.Context) error {
	return s.db.WithContext(ctx).Delete(&model.Setting{}, "key = ?", keyDashboardMessage).Error
}
