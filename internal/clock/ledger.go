// Package clock owns attendance sessions: opening them at clock-in,
// closing them exactly once at clock-out, and computing the derived
// metrics (total hours, late and early-checkout flags) at close time.
package clock

import (
	"context"
	"fmt"
	"time"

	"staffops-backend/config"
	"staffops-backend/internal/location"
	"staffops-backend/internal/model"
	"staffops-backend/internal/parse"
	"staffops-backend/internal/store"
)

// Ledger is the clock-in/clock-out service.
type Ledger struct {
	store store.Store
	cfg   config.AttendanceConfig
	loc   *time.Location

	// now is swappable in tests; production uses time.Now.
	now func() time.Time
}

// NewLedger creates a clock ledger over the given store.
func NewLedger(s store.Store, cfg config.AttendanceConfig) *Ledger {
	return &Ledger{
		store: s,
		cfg:   cfg,
		loc:   cfg.Location(),
		now:   time.Now,
	}
}

// ClockIn opens a new session for the employee. The clock-in instant is
// server-observed, never client-submitted. The location sample is stored
// verbatim, including denied/timeout/unavailable outcomes; location
// capture never blocks or fails a clock-in.
//
// A second clock-in while a session is open fails with ErrAlreadyOpen.
func (l *Ledger) ClockIn(ctx context.Context, employeeID string, sample model.LocationSample) (*model.AttendanceSession, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("employee id is required: %w", store.ErrValidation)
	}

	sample = location.Normalize(sample)
	session := &model.AttendanceSession{
		EmployeeID:       employeeID,
		ClockIn:          l.now().UTC(),
		WorkType:         "regular",
		ClockInLatitude:  sample.Latitude,
		ClockInLongitude: sample.Longitude,
		ClockInAccuracy:  sample.Accuracy,
		ClockInLocStatus: sample.Status,
	}

	if err := l.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ClockOut closes the session, computing total hours once and setting the
// late and early-checkout flags against the employee's configured shift.
// A missing shift configuration simply leaves both flags false.
//
// The close is a conditional write: a duplicate submission gets
// ErrAlreadyClosed and never recomputes total hours.
func (l *Ledger) ClockOut(ctx context.Context, employeeID, sessionID string, sample model.LocationSample) (*model.AttendanceSession, error) {
	if employeeID == "" || sessionID == "" {
		return nil, fmt.Errorf("employee id and session id are required: %w", store.ErrValidation)
	}

	session, err := l.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.EmployeeID != employeeID {
		// Another employee's session is indistinguishable from a missing one.
		return nil, fmt.Errorf("session %s: %w", sessionID, store.ErrNotFound)
	}

	out := l.now().UTC()
	if out.Before(session.ClockIn) {
		out = session.ClockIn
	}
	totalHours := out.Sub(session.ClockIn).Hours()

	late, early := l.shiftFlags(ctx, employeeID, session.ClockIn, out)

	sample = location.Normalize(sample)
	updates := map[string]any{
		"clock_out":            out,
		"total_hours":          totalHours,
		"late":                 late,
		"early_checkout":       early,
		"clock_out_latitude":   sample.Latitude,
		"clock_out_longitude":  sample.Longitude,
		"clock_out_accuracy":   sample.Accuracy,
		"clock_out_loc_status": sample.Status,
	}

	return l.store.CloseSession(ctx, sessionID, employeeID, updates)
}

// shiftFlags computes the lateness and early-checkout flags. The policy is
// tolerant of missing configuration: no shift, or a shift row that fails
// to parse, disables the flag it covers.
func (l *Ledger) shiftFlags(ctx context.Context, employeeID string, in, out time.Time) (late, early bool) {
	shift, err := l.store.GetShift(ctx, employeeID)
	if err != nil || shift == nil {
		return false, false
	}

	if start, perr := parse.TimeOfDay(shift.StartTime); perr == nil {
		late = minutesOfDay(in.In(l.loc)) > start+l.cfg.LateGraceMinutes
	}
	if end, perr := parse.TimeOfDay(shift.EndTime); perr == nil {
		early = minutesOfDay(out.In(l.loc)) < end-l.cfg.EarlyLeaveGraceMinutes
	}
	return late, early
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
