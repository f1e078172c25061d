package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	gormModels "versions/relay/internal/models/gorm"
)

const defaultActivityLimit = 50

// ActivityRepository persists the write-path activity log
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Record(ctx context.Context, entry *gormModels.Activity) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ActivityFilter narrows List. Empty fields match everything.
type ActivityFilter struct {
	Kind    string
	Subject string
	Limit   int
}

// List returns matching entries, newest first.
func (r *ActivityRepository) List(ctx context.Context, filter ActivityFilter) ([]gormModels.Activity, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	query := r.db.WithContext(ctx).Model(&gormModels.Activity{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}

	var entries []gormModels.Activity
	err := query.
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}

// CountByStatus returns the number of entries per status for a kind.
func (r *ActivityRepository) CountByStatus(ctx context.Context, kind string) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&gormModels.Activity{}).
		Select("status, COUNT(*) AS count").
		Where("kind = ?", kind).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count activity: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
