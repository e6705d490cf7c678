package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"staffops-backend/internal/model"
)

// CreateSession inserts a new open session. The advisory pre-check gives
// duplicate submissions a fast, friendly rejection, but the invariant
// itself is carried by the partial unique index on (employee_id) WHERE
// clock_out IS NULL: two racing inserts resolve to exactly one success and
// one ErrAlreadyOpen.
func (s *gormStore) CreateSession(ctx context.Context, session *model.AttendanceSession) error {
	open, err := s.GetOpenSession(ctx, session.EmployeeID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to check for open session: %w", err)
	}
	if open != nil {
		return fmt.Errorf("employee %s: %w", session.EmployeeID, ErrAlreadyOpen)
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("employee %s: %w", session.EmployeeID, ErrAlreadyOpen)
		}
		return fmt.Errorf("failed to create attendance session: %w", err)
	}
	return nil
}

// isDuplicateKey recognizes a unique-index violation. TranslateError
// covers postgres; the string check covers dialects whose drivers do not
// translate (the sqlite driver used in tests).
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}

// GetSession fetches one session by id.
func (s *gormStore) GetSession(ctx context.Context, id string) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch session %s: %w", id, err)
	}
	return &session, nil
}

// GetOpenSession fetches the employee's open session, if any.
func (s *gormStore) GetOpenSession(ctx context.Context, employeeID string) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND clock_out IS NULL", employeeID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no open session for employee %s: %w", employeeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch open session: %w", err)
	}
	return &session, nil
}

// CloseSession applies the close-time updates with the guard in the WHERE
// clause. Two concurrent closes of the same session produce exactly one
// success; the loser re-reads the row to report ErrAlreadyClosed (or
// ErrNotFound if the id/owner pair never matched).
func (s *gormStore) CloseSession(ctx context.Context, id, employeeID string, updates map[string]any) (*model.AttendanceSession, error) {
	res := s.db.WithContext(ctx).
		Model(&model.AttendanceSession{}).
		Where("id = ? AND employee_id = ? AND clock_out IS NULL", id, employeeID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to close session %s: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		var existing model.AttendanceSession
		err := s.db.WithContext(ctx).
			First(&existing, "id = ? AND employee_id = ?", id, employeeID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to classify close failure for session %s: %w", id, err)
		}
		return nil, fmt.Errorf("session %s: %w", id, ErrAlreadyClosed)
	}

	return s.GetSession(ctx, id)
}

// ListSessionsForRange returns the employee's sessions whose clock-in falls
// in [from, to), oldest first.
func (s *gormStore) ListSessionsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.AttendanceSession, error) {
	var sessions []model.AttendanceSession
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND clock_in >= ? AND clock_in < ?", employeeID, from, to).
		Order("clock_in ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for employee %s: %w", employeeID, err)
	}
	return sessions, nil
}

// GetShift returns the employee's configured reference shift, or
// (nil, nil) when none is configured. Absence disables the late and
// early-checkout flags rather than being an error.
func (s *gormStore) GetShift(ctx context.Context, employeeID string) (*model.EmployeeShift, error) {
	key := "shift:" + employeeID
	if v, found := s.lookups.Get(key); found {
		return v.(*model.EmployeeShift), nil
	}

	var shift model.EmployeeShift
	err := s.db.WithContext(ctx).First(&shift, "employee_id = ?", employeeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var none *model.EmployeeShift
			s.lookups.SetDefault(key, none)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch shift for employee %s: %w", employeeID, err)
	}

	s.lookups.SetDefault(key, &shift)
	return &shift, nil
}

// GetRate returns the employee's hourly rate row, or ErrNotFound when no
// rate is configured.
func (s *gormStore) GetRate(ctx context.Context, employeeID string) (*model.EmployeeRate, error) {
	var rate model.EmployeeRate
	err := s.db.WithContext(ctx).First(&rate, "employee_id = ?", employeeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no hourly rate for employee %s: %w", employeeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch rate for employee %s: %w", employeeID, err)
	}
	return &rate, nil
}

// GetEmployee fetches one directory entry by id.
func (s *gormStore) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	var employee model.Employee
	if err := s.db.WithContext(ctx).First(&employee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("employee %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch employee %s: %w", id, err)
	}
	return &employee, nil
}
