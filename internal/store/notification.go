package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"staffops-backend/internal/model"
)

const rosterCacheKey = "recipients:active"

// AppendNotificationLogs inserts ledger rows for one fan-out in a single
// transaction. The ledger is append-only: this is the only write path and
// there is no update or delete counterpart.
func (s *gormStore) AppendNotificationLogs(ctx context.Context, entries []model.NotificationLog) error {
	if len(entries) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			if err := tx.Create(&entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append %d notification log rows: %w", len(entries), err)
	}
	return nil
}

// ListNotificationLogs returns the audit trail for one schedule, oldest
// first.
func (s *gormStore) ListNotificationLogs(ctx context.Context, scheduleID string) ([]model.NotificationLog, error) {
	var logs []model.NotificationLog
	err := s.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("sent_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notification logs for schedule %s: %w", scheduleID, err)
	}
	return logs, nil
}

// HasNotificationLogs reports whether a fan-out for this schedule and
// email type has already been recorded.
func (s *gormStore) HasNotificationLogs(ctx context.Context, scheduleID, emailType string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.NotificationLog{}).
		Where("schedule_id = ? AND email_type = ?", scheduleID, emailType).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count notification logs for schedule %s: %w", scheduleID, err)
	}
	return count > 0, nil
}

// ListActiveRecipients returns the fan-out roster. The roster changes
// rarely, so it sits behind the lookup cache; staleness is bounded by the
// configured TTL.
func (s *gormStore) ListActiveRecipients(ctx context.Context) ([]model.NotificationRecipient, error) {
	if v, found := s.lookups.Get(rosterCacheKey); found {
		return v.([]model.NotificationRecipient), nil
	}

	var recipients []model.NotificationRecipient
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("email ASC").
		Find(&recipients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active recipients: %w", err)
	}

	s.lookups.SetDefault(rosterCacheKey, recipients)
	return recipients, nil
}
