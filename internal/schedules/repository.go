package schedules

import (
	"context"
	"errors"
	"strings"
	"time"

	"busly/internal/shared/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, schedule *Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Schedule, error)
	GetAll(ctx context.Context, query ScheduleListQuery) ([]Schedule, int64, error)
	GetUpcoming(ctx context.Context, limit int) ([]Schedule, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, schedule *Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	var schedule Schedule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrScheduleNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Schedule, error) {
	var schedule Schedule

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrScheduleNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&schedule).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error; err != nil {
		return nil, err
	}

	return &schedule, nil
}

func (r *repository) GetAll(ctx context.Context, query ScheduleListQuery) ([]Schedule, int64, error) {
	var schedules []Schedule
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	db := r.db.WithContext(ctx).Model(&Schedule{})

	if query.Origin != "" {
		db = db.Where("LOWER(origin) LIKE ?", "%"+strings.ToLower(query.Origin)+"%")
	}
	if query.Dest != "" {
		db = db.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(query.Dest)+"%")
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			db = db.Where("departure_at >= ?", dateFrom)
		}
	}
	if query.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			dateTo = dateTo.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
			db = db.Where("departure_at <= ?", dateTo)
		}
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := db.Order("departure_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&schedules).Error

	return schedules, totalCount, err
}

func (r *repository) GetUpcoming(ctx context.Context, limit int) ([]Schedule, error) {
	var schedules []Schedule
	err := r.db.WithContext(ctx).
		Where("status = ? AND departure_at > ?", StatusScheduled, time.Now()).
		Order("departure_at ASC").
		Limit(limit).
		Find(&schedules).Error
	return schedules, err
}
