package repository

import (
	"context"
	"sync"
	"time"

	"OnDuty/internal/model"
	"OnDuty/storage/database"
)

// SummaryStore is the append-only log of daily attendance summaries. Re-runs
// append a fresh row; the newest row per date is the authoritative one.
type SummaryStore interface {
	Append(ctx context.Context, summary *model.DailySummary) error
	LatestForDate(ctx context.Context, date string) (*model.DailySummary, error)
	Recent(ctx context.Context, since time.Time, limit int) ([]model.DailySummary, error)
}

type gormSummaries struct{}

var (
	summariesInst SummaryStore
	summariesOnce sync.Once
)

func Summaries() SummaryStore {
	summariesOnce.Do(func() {
		summariesInst = &gormSummaries{}
	})
	return summariesInst
}

func (r *gormSummaries) Append(ctx context.Context, summary *model.DailySummary) error {
	return database.DB().WithContext(ctx).Create(summary).Error
}

func (r *gormSummaries) LatestForDate(ctx context.Context, date string) (*model.DailySummary, error) {
	var summaries []model.DailySummary
	err := database.DB().WithContext(ctx).
		Where("date = ?", date).
		Order("generated_at DESC").
		Limit(1).
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, nil
	}
	return &summaries[0], nil
}

func (r *gormSummaries) Recent(ctx context.Context, since time.Time, limit int) ([]model.DailySummary, error) {
	var summaries []model.DailySummary
	err := database.DB().WithContext(ctx).
		Where("generated_at >= ?", since).
		Order("generated_at DESC").
		Limit(limit).
		Find(&summaries).Error
	return summaries, err
}
