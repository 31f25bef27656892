package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/psds-microservice/report-service/internal/errs"
	"github.com/psds-microservice/report-service/internal/model"
	"gorm.io/gorm"
)

const adminCacheSize = 1024

// AdminService — состав сотрудников. Проверка IsAdmin идёт на каждое сообщение
// админ-бота, поэтому ответы кешируются на короткий TTL.
type AdminService struct {
	db      *gorm.DB
	initial int64
	cache   *expirable.LRU[int64, bool]
	log     *slog.Logger
}

func NewAdminService(log *slog.Logger, db *gorm.DB, initialAdmin int64, ttl time.Duration) *AdminService {
	return &AdminService{
		db:      db,
		initial: initialAdmin,
		cache:   expirable.NewLRU[int64, bool](adminCacheSize, nil, ttl),
		log:     log.With("service", "admins"),
	}
}

// EnsureInitial добавляет главного администратора, если роль пуста.
func (s *AdminService) EnsureInitial(ctx context.Context) error {
	if s.initial == 0 {
		return nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Admin{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&model.Admin{UserID: s.initial}).Error; err != nil {
		return fmt.Errorf("seed initial admin: %w", err)
	}
	s.log.InfoContext(ctx, "initial admin added", slog.Int64("user_id", s.initial))
	return nil
}

func (s *AdminService) IsAdmin(ctx context.Context, userID int64) bool {
	if userID == s.initial && userID != 0 {
		return true
	}
	if v, ok := s.cache.Get(userID); ok {
		return v
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Admin{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		s.log.ErrorContext(ctx, "admin lookup failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return false
	}
	s.cache.Add(userID, n > 0)
	return n > 0
}

func (s *AdminService) Add(ctx context.Context, userID int64) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Admin{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return errs.ErrAlreadyExists
	}
	err := s.db.WithContext(ctx).Create(&model.Admin{UserID: userID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	s.cache.Remove(userID)
	s.log.InfoContext(ctx, "admin added", slog.Int64("user_id", userID))
	return nil
}

func (s *AdminService) Remove(ctx context.Context, userID int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Admin{}, "user_id = ?", userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrAdminNotFound
	}
	s.cache.Remove(userID)
	s.log.InfoContext(ctx, "admin removed", slog.Int64("user_id", userID))
	return nil
}

func (s *AdminService) List(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&model.Admin{}).Order("user_id").Pluck("user_id", &ids).Error
	return ids, err
}
