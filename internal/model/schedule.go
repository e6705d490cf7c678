package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Schedule lifecycle states. cancelled and completed are terminal.
const (
	SchedulePending               = "pending"
	ScheduleConfirmed             = "confirmed"
	ScheduleCancellationRequested = "cancellation_requested"
	ScheduleCancelled             = "cancelled"
	ScheduleCompleted             = "completed"
)

// Schedule is a single planned shift proposed by an admin for one employee
// on one local calendar date. ScheduleDate and the time-of-day fields are
// stored as local strings, never derived from a UTC instant, to avoid
// off-by-one-day errors across time zones.
type Schedule struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	EmployeeID string `gorm:"type:uuid;not null;index"`
	CreatedBy  string `gorm:"type:uuid;not null"`

	ScheduleDate string `gorm:"size:10;not null;index"` // "2006-01-02"
	StartTime    string `gorm:"size:5;not null"`        // "15:04"
	EndTime      string `gorm:"size:5;not null"`        // "15:04"

	Title       string `gorm:"size:256"`
	Description string `gorm:"type:text"`
	Location    string `gorm:"size:256"`

	Status string `gorm:"size:32;not null;default:pending;index"`

	ConfirmedAt             *time.Time
	CancellationRequestedAt *time.Time
	CancellationReason      string `gorm:"type:text"`
	CancelledAt             *time.Time
	CancelledBy             string `gorm:"type:uuid"`

	ConfirmationEmailSent bool `gorm:"not null;default:false"`
	CancellationEmailSent bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Schedule) TableName() string {
	return "schedules"
}

func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Terminal reports whether no further lifecycle transition may leave the
// current status.
func (s *Schedule) Terminal() bool {
	return s.Status == ScheduleCancelled || s.Status == ScheduleCompleted
}
