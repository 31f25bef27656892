package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/psds-microservice/report-service/internal/errs"
	"github.com/psds-microservice/report-service/internal/model"
	"gorm.io/gorm"
)

const createAttempts = 3

// ReportServicer — хранилище отчётов (Dependency Inversion для бота и HTTP).
type ReportServicer interface {
	Create(ctx context.Context, r *model.Report) error
	GetByID(ctx context.Context, id string) (*model.Report, error)
	UpdateStatus(ctx context.Context, id string, status model.ReportStatus) error
	SetArchiveRefs(ctx context.Context, id string, refs []string) error
	CountAll(ctx context.Context) (int64, error)
	QueryByFilter(ctx context.Context, f model.ReportFilter) ([]model.Report, error)
	ListPage(ctx context.Context, offset, limit int) ([]model.Report, int64, error)
	Attention(ctx context.Context) ([]model.Report, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Report, int64, error)
}

type ReportService struct {
	db     *gorm.DB
	prefix string
	now    func() time.Time
}

func NewReportService(db *gorm.DB, idPrefix string) *ReportService {
	if idPrefix == "" {
		idPrefix = "B"
	}
	return &ReportService{db: db, prefix: idPrefix, now: time.Now}
}

// Create присваивает отчёту следующий номер (<prefix>-NNN) и сохраняет его.
// При гонке за номер транзакция повторяется.
func (s *ReportService) Create(ctx context.Context, r *model.Report) error {
	if err := r.ValidateMedia(); err != nil {
		return errs.NewValidationError("media", err.Error())
	}
	r.Status = model.ReportStatusNew
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last int64
			if err := tx.Model(&model.Report{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
				return err
			}
			r.Seq = last + 1
			r.ID = s.formatID(r.Seq)
			return tx.Create(r).Error
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *ReportService) formatID(seq int64) string {
	return fmt.Sprintf("%s-%03d", s.prefix, seq)
}

func (s *ReportService) GetByID(ctx context.Context, id string) (*model.Report, error) {
	var r model.Report
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrReportNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *ReportService) UpdateStatus(ctx context.Context, id string, status model.ReportStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Report{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": s.now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrReportNotFound
	}
	return nil
}

// SetArchiveRefs сохраняет ссылки на архивные копии медиа.
func (s *ReportService) SetArchiveRefs(ctx context.Context, id string, refs []string) error {
	res := s.db.WithContext(ctx).Model(&model.Report{ID: id}).
		Select("archive_refs", "updated_at").
		Updates(&model.Report{ArchiveRefs: refs, UpdatedAt: s.now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrReportNotFound
	}
	return nil
}

func (s *ReportService) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Report{}).Count(&n).Error
	return n, err
}

// QueryByFilter ищет отчёты по множествам продукт/категория/согласие; новые первыми.
func (s *ReportService) QueryByFilter(ctx context.Context, f model.ReportFilter) ([]model.Report, error) {
	tx := s.db.WithContext(ctx).Model(&model.Report{})
	if len(f.Products) > 0 {
		tx = tx.Where("product IN ?", f.Products)
	}
	if len(f.Intents) > 0 {
		tx = tx.Where("intent IN ?", f.Intents)
	}
	if len(f.Consents) > 0 {
		tx = tx.Where("consent IN ?", f.Consents)
	}
	var items []model.Report
	if err := tx.Order("created_at DESC").Order("seq DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ReportService) ListPage(ctx context.Context, offset, limit int) ([]model.Report, int64, error) {
	return s.List(ctx, nil, limit, offset)
}

// Attention возвращает новые отчёты категории, требующей внимания.
func (s *ReportService) Attention(ctx context.Context) ([]model.Report, error) {
	var items []model.Report
	err := s.db.WithContext(ctx).
		Where("intent = ? AND status = ?", model.AttentionIntent, model.ReportStatusNew).
		Order("created_at DESC").Order("seq DESC").
		Find(&items).Error
	return items, err
}

func (s *ReportService) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Report, int64, error) {
	var items []model.Report
	var total int64
	tx := s.db.WithContext(ctx).Model(&model.Report{})
	for k, v := range filter {
		tx = tx.Where(k, v)
	}
	// Count total before pagination
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if err := tx.Order("created_at DESC").Order("seq DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
