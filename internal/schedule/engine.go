// Package schedule owns the planned-shift lifecycle: pending schedules are
// confirmed, contested through a cancellation request, cancelled, or
// completed. Every status-changing transition is a compare-and-swap in the
// store and fires exactly one notification fan-out.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staffops-backend/internal/model"
	"staffops-backend/internal/parse"
	"staffops-backend/internal/store"
)

// forceCancelReason is recorded when an admin force-cancels without one.
const forceCancelReason = "cancelled by administrator"

// Notifier hands a lifecycle transition off to the notification fan-out.
// The engine never waits on delivery.
type Notifier interface {
	Dispatch(scheduleID, emailType string)
}

// Engine is the schedule lifecycle service.
type Engine struct {
	store    store.Store
	notifier Notifier

	now func() time.Time
}

// NewEngine creates a lifecycle engine over the given store and notifier.
func NewEngine(s store.Store, n Notifier) *Engine {
	return &Engine{store: s, notifier: n, now: time.Now}
}

// CreateInput is the typed payload for proposing one schedule.
type CreateInput struct {
	EmployeeID   string
	CreatedBy    string
	ScheduleDate string // "2006-01-02", local calendar date
	StartTime    string // "15:04"
	EndTime      string // "15:04"
	Title        string
	Description  string
	Location     string
}

func (in *CreateInput) validate() error {
	if in.EmployeeID == "" || in.CreatedBy == "" {
		return fmt.Errorf("employee id and creator id are required: %w", store.ErrValidation)
	}
	if _, err := parse.Date(in.ScheduleDate); err != nil {
		return fmt.Errorf("%v: %w", err, store.ErrValidation)
	}
	start, err := parse.TimeOfDay(in.StartTime)
	if err != nil {
		return fmt.Errorf("%v: %w", err, store.ErrValidation)
	}
	end, err := parse.TimeOfDay(in.EndTime)
	if err != nil {
		return fmt.Errorf("%v: %w", err, store.ErrValidation)
	}
	if end <= start {
		return fmt.Errorf("end time must be after start time: %w", store.ErrValidation)
	}
	return nil
}

// Create proposes a single schedule. Overlap with the employee's other
// schedules on the same date is deliberately not validated here; that
// judgement stays with the proposing admin.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*model.Schedule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	sched := &model.Schedule{
		EmployeeID:   in.EmployeeID,
		CreatedBy:    in.CreatedBy,
		ScheduleDate: in.ScheduleDate,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		Status:       model.SchedulePending,
	}
	if err := e.store.CreateSchedule(ctx, sched); err != nil {
		return nil, err
	}

	e.notifier.Dispatch(sched.ID, model.EmailAssigned)
	return sched, nil
}

// Confirm moves pending → confirmed. Only the owning employee may confirm.
func (e *Engine) Confirm(ctx context.Context, scheduleID, employeeID string) (*model.Schedule, error) {
	if err := e.requireOwner(ctx, scheduleID, employeeID); err != nil {
		return nil, err
	}

	sched, err := e.store.TransitionSchedule(ctx, scheduleID,
		[]string{model.SchedulePending},
		map[string]any{
			"status":       model.ScheduleConfirmed,
			"confirmed_at": e.now().UTC(),
		})
	if err != nil {
		return nil, err
	}

	e.notifier.Dispatch(sched.ID, model.EmailConfirmed)
	return sched, nil
}

// RequestCancellation moves pending|confirmed → cancellation_requested.
// Owner only; the reason is mandatory non-empty text and a rejected
// request leaves the status untouched.
func (e *Engine) RequestCancellation(ctx context.Context, scheduleID, employeeID, reason string) (*model.Schedule, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("cancellation reason is required: %w", store.ErrValidation)
	}
	if err := e.requireOwner(ctx, scheduleID, employeeID); err != nil {
		return nil, err
	}

	sched, err := e.store.TransitionSchedule(ctx, scheduleID,
		[]string{model.SchedulePending, model.ScheduleConfirmed},
		map[string]any{
			"status":                    model.ScheduleCancellationRequested,
			"cancellation_requested_at": e.now().UTC(),
			"cancellation_reason":       reason,
		})
	if err != nil {
		return nil, err
	}

	e.notifier.Dispatch(sched.ID, model.EmailCancellationRequested)
	return sched, nil
}

// ApproveCancellation moves cancellation_requested → cancelled. The
// original cancellation reason is preserved.
func (e *Engine) ApproveCancellation(ctx context.Context, scheduleID, adminID string) (*model.Schedule, error) {
	if adminID == "" {
		return nil, fmt.Errorf("admin id is required: %w", store.ErrValidation)
	}

	sched, err := e.store.TransitionSchedule(ctx, scheduleID,
		[]string{model.ScheduleCancellationRequested},
		map[string]any{
			"status":       model.ScheduleCancelled,
			"cancelled_at": e.now().UTC(),
			"cancelled_by": adminID,
		})
	if err != nil {
		return nil, err
	}

	e.notifier.Dispatch(sched.ID, model.EmailCancellationApproved)
	return sched, nil
}

// AdminForceCancel moves pending|confirmed → cancelled directly, bypassing
// the employee request branch.
func (e *Engine) AdminForceCancel(ctx context.Context, scheduleID, adminID, reason string) (*model.Schedule, error) {
	if adminID == "" {
		return nil, fmt.Errorf("admin id is required: %w", store.ErrValidation)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = forceCancelReason
	}

	sched, err := e.store.TransitionSchedule(ctx, scheduleID,
		[]string{model.SchedulePending, model.ScheduleConfirmed},
		map[string]any{
			"status":              model.ScheduleCancelled,
			"cancelled_at":        e.now().UTC(),
			"cancelled_by":        adminID,
			"cancellation_reason": reason,
		})
	if err != nil {
		return nil, err
	}

	e.notifier.Dispatch(sched.ID, model.EmailCancelledByAdmin)
	return sched, nil
}

// Complete moves confirmed → completed. Completion is not a notified
// transition; it only seals the schedule.
func (e *Engine) Complete(ctx context.Context, scheduleID string) (*model.Schedule, error) {
	return e.store.TransitionSchedule(ctx, scheduleID,
		[]string{model.ScheduleConfirmed},
		map[string]any{"status": model.ScheduleCompleted})
}

// Delete hard-deletes the schedule at any status. Not a lifecycle
// transition: it bypasses the state machine and fires no notification.
// The external audit collaborator records the override.
func (e *Engine) Delete(ctx context.Context, scheduleID string) error {
	return e.store.DeleteSchedule(ctx, scheduleID)
}

// requireOwner loads the schedule and rejects callers other than the
// owning employee. A missing schedule surfaces before ownership so the
// caller cannot probe which ids exist.
func (e *Engine) requireOwner(ctx context.Context, scheduleID, employeeID string) error {
	if employeeID == "" {
		return fmt.Errorf("employee id is required: %w", store.ErrValidation)
	}
	sched, err := e.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}
	if sched.EmployeeID != employeeID {
		return fmt.Errorf("schedule %s belongs to another employee: %w", scheduleID, store.ErrForbidden)
	}
	return nil
}
