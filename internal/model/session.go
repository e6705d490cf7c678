package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Location capture outcomes. Capture never blocks a session transition;
// whatever outcome the device reports is stored verbatim.
const (
	LocationCaptured    = "captured"
	LocationDenied      = "denied"
	LocationTimeout     = "timeout"
	LocationUnavailable = "unavailable"
	LocationUnknown     = "unknown"
)

// LocationSample is one geolocation reading attached to a clock action.
type LocationSample struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
	Status    string   `json:"status"`
}

// AttendanceSession is one clock-in/clock-out pair for an employee.
// A session with a nil ClockOut is "open"; the store enforces at most one
// open session per employee with a partial unique index.
type AttendanceSession struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	EmployeeID string `gorm:"type:uuid;not null;index"`

	ClockIn  time.Time  `gorm:"not null"`
	ClockOut *time.Time // nil means the session is still open

	TotalHours    *float64 // set exactly once at close, never recomputed
	Late          bool     `gorm:"not null;default:false"`
	EarlyCheckout bool     `gorm:"not null;default:false"`
	BreakMinutes  int      `gorm:"not null;default:0"`
	WorkType      string   `gorm:"size:32;not null;default:regular"`

	ClockInLatitude   *float64
	ClockInLongitude  *float64
	ClockInAccuracy   *float64
	ClockInLocStatus  string `gorm:"size:16;not null;default:unknown"`
	ClockOutLatitude  *float64
	ClockOutLongitude *float64
	ClockOutAccuracy  *float64
	ClockOutLocStatus string `gorm:"size:16;not null;default:unknown"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AttendanceSession) TableName() string {
	return "attendance_sessions"
}

func (s *AttendanceSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Open reports whether the session has not been clocked out yet.
func (s *AttendanceSession) Open() bool {
	return s.ClockOut == nil
}
