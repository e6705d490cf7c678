package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"staffops-backend/internal/model"
)

// CreateSchedule inserts a single schedule (status pending).
func (s *gormStore) CreateSchedule(ctx context.Context, schedule *model.Schedule) error {
	if err := s.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// CreateSchedulesBatch inserts a generated batch in one transaction.
// Either every schedule in the batch is created or none are; a partial
// recurring batch must never be left behind.
func (s *gormStore) CreateSchedulesBatch(ctx context.Context, schedules []model.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range schedules {
			if err := tx.Create(&schedules[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create schedule batch of %d: %w", len(schedules), err)
	}
	return nil
}

// GetSchedule fetches one schedule by id.
func (s *gormStore) GetSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	if err := s.db.WithContext(ctx).First(&schedule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch schedule %s: %w", id, err)
	}
	return &schedule, nil
}

// ListSchedules returns an employee's schedules, newest date first.
func (s *gormStore) ListSchedules(ctx context.Context, employeeID string) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("schedule_date DESC, start_time ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules for employee %s: %w", employeeID, err)
	}
	return schedules, nil
}

// ListSchedulesForDate returns an employee's schedules on one local
// calendar date. Overlap between them is not an engine invariant; this
// query exists so admin tooling can surface overlaps for human judgement.
func (s *gormStore) ListSchedulesForDate(ctx context.Context, employeeID, date string) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND schedule_date = ?", employeeID, date).
		Order("start_time ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules for %s on %s: %w", employeeID, date, err)
	}
	return schedules, nil
}

// TransitionSchedule applies a status transition as a compare-and-swap:
// the update only lands while the current status is one of fromStatuses.
// A schedule whose status has already moved on yields ErrInvalidTransition,
// never a silent overwrite.
func (s *gormStore) TransitionSchedule(ctx context.Context, id string, fromStatuses []string, updates map[string]any) (*model.Schedule, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to transition schedule %s: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		existing, err := s.GetSchedule(ctx, id)
		if err != nil {
			return nil, err // ErrNotFound or a wrapped storage failure
		}
		return nil, fmt.Errorf("schedule %s is %s: %w", id, existing.Status, ErrInvalidTransition)
	}

	return s.GetSchedule(ctx, id)
}

// MarkEmailSent flips the named sent flag from false to true. The return
// value reports whether this call won the flip; a false return means
// another fan-out already recorded this transition's emails.
func (s *gormStore) MarkEmailSent(ctx context.Context, id, flagColumn string) (bool, error) {
	if flagColumn != "confirmation_email_sent" && flagColumn != "cancellation_email_sent" {
		return false, fmt.Errorf("unknown email flag column %q: %w", flagColumn, ErrValidation)
	}
	res := s.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ? AND "+flagColumn+" = ?", id, false).
		Update(flagColumn, true)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark %s on schedule %s: %w", flagColumn, id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteSchedule hard-deletes a schedule at any status. This is the
// administrative override that bypasses the state machine; the external
// audit collaborator logs it.
func (s *gormStore) DeleteSchedule(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Schedule{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	return nil
}
