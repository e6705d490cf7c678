package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"staffops-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// Attendance sessions.
	CreateSession(ctx context.Context, session *model.AttendanceSession) error
	GetSession(ctx context.Context, id string) (*model.AttendanceSession, error)
	GetOpenSession(ctx context.Context, employeeID string) (*model.AttendanceSession, error)
	CloseSession(ctx context.Context, id, employeeID string, updates map[string]any) (*model.AttendanceSession, error)
	ListSessionsForRange(ctx context.Context, employeeID string, from, to time.Time) ([]model.AttendanceSession, error)

	// Schedules.
	CreateSchedule(ctx context.Context, schedule *model.Schedule) error
	CreateSchedulesBatch(ctx context.Context, schedules []model.Schedule) error
	GetSchedule(ctx context.Context, id string) (*model.Schedule, error)
	ListSchedules(ctx context.Context, employeeID string) ([]model.Schedule, error)
	ListSchedulesForDate(ctx context.Context, employeeID, date string) ([]model.Schedule, error)
	TransitionSchedule(ctx context.Context, id string, fromStatuses []string, updates map[string]any) (*model.Schedule, error)
	MarkEmailSent(ctx context.Context, id, flagColumn string) (bool, error)
	DeleteSchedule(ctx context.Context, id string) error

	// Notification ledger (append-only) and fan-out roster.
	AppendNotificationLogs(ctx context.Context, entries []model.NotificationLog) error
	ListNotificationLogs(ctx context.Context, scheduleID string) ([]model.NotificationLog, error)
	HasNotificationLogs(ctx context.Context, scheduleID, emailType string) (bool, error)
	ListActiveRecipients(ctx context.Context) ([]model.NotificationRecipient, error)

	// Directory lookups.
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	GetShift(ctx context.Context, employeeID string) (*model.EmployeeShift, error)
	GetRate(ctx context.Context, employeeID string) (*model.EmployeeRate, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM. Slow-changing
// lookups (shifts, the recipient roster) sit behind a small in-memory
// cache with an explicit TTL from configuration.
type gormStore struct {
	db      *gorm.DB
	lookups *cache.Cache
}

// NewGormStore creates a new GORM-backed store. lookupTTL bounds how stale
// the shift and roster caches may get.
func NewGormStore(db *gorm.DB, lookupTTL time.Duration) Store {
	return &gormStore{
		db:      db,
		lookups: cache.New(lookupTTL, 2*lookupTTL),
	}
}

// DB exposes the underlying handle for read-only projections in handlers.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
