package repository

import (
	"context"
	"sync"
	"time"

	"OnDuty/internal/model"
	"OnDuty/storage/database"
)

// AlertLog is the append-mostly log of alerts and notification outcomes.
type AlertLog interface {
	Append(ctx context.Context, record *model.AlertRecord) error
	// CountByTypeBetween counts records of the given type created in [from, to).
	CountByTypeBetween(ctx context.Context, alertType string, from, to time.Time) (int64, error)
	Recent(ctx context.Context, since time.Time, limit int) ([]model.AlertRecord, error)
}

type gormAlertLog struct{}

var (
	alertLogInst AlertLog
	alertLogOnce sync.Once
)

func Alerts() AlertLog {
	alertLogOnce.Do(func() {
		alertLogInst = &gormAlertLog{}
	})
	return alertLogInst
}

func (r *gormAlertLog) Append(ctx context.Context, record *model.AlertRecord) error {
	return database.DB().WithContext(ctx).Create(record).Error
}

func (r *gormAlertLog) CountByTypeBetween(ctx context.Context, alertType string, from, to time.Time) (int64, error) {
	var count int64
	err := database.DB().WithContext(ctx).
		Model(&model.AlertRecord{}).
		Where("type = ?", alertType).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *gormAlertLog) Recent(ctx context.Context, since time.Time, limit int) ([]model.AlertRecord, error) {
	var records []model.AlertRecord
	err := database.DB().WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
