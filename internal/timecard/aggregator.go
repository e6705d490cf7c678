// Package timecard is a read-only projection over closed and open
// attendance sessions: it folds one employee's calendar month into totals
// and performs no writes.
package timecard

import (
	"time"

	"github.com/shopspring/decimal"

	"staffops-backend/internal/model"
)

// Summary is the monthly timecard projection.
type Summary struct {
	EmployeeID string          `json:"employee_id"`
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	TotalHours float64         `json:"total_hours"`
	Regular    float64         `json:"regular_hours"`
	Overtime   float64         `json:"overtime_hours"`
	BreakMins  int             `json:"break_minutes"`
	DaysWorked int             `json:"days_worked"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Earnings   decimal.Decimal `json:"estimated_earnings"`
}

// MonthBounds returns [start, end) of the calendar month in the given
// location. Boundaries come from local year/month components, not from
// shifting a UTC instant.
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// Aggregate folds the supplied sessions into a monthly summary. Sessions
// outside the month (by clock-in, in loc) are skipped, so callers may pass
// a wider slice than the month. Overtime is a per-session rule: hours
// beyond the threshold in a single session count as overtime.
func Aggregate(sessions []model.AttendanceSession, employeeID string, year int, month time.Month, loc *time.Location, overtimeThreshold float64, hourlyRate decimal.Decimal) Summary {
	s := Summary{
		EmployeeID: employeeID,
		Year:       year,
		Month:      int(month),
		HourlyRate: hourlyRate,
	}

	for _, session := range sessions {
		local := session.ClockIn.In(loc)
		if local.Year() != year || local.Month() != month {
			continue
		}

		s.BreakMins += session.BreakMinutes
		if session.ClockOut != nil {
			s.DaysWorked++
		}
		if session.TotalHours == nil {
			continue
		}

		hours := *session.TotalHours
		s.TotalHours += hours
		if hours > overtimeThreshold {
			s.Regular += overtimeThreshold
			s.Overtime += hours - overtimeThreshold
		} else {
			s.Regular += hours
		}
	}

	s.Earnings = decimal.NewFromFloat(s.TotalHours).Mul(hourlyRate).Round(2)
	return s
}
