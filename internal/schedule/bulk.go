package schedule

import (
	"context"
	"fmt"

	"staffops-backend/internal/model"
	"staffops-backend/internal/parse"
	"staffops-backend/internal/store"
)

// BulkInput describes a recurrence request: every date in the inclusive
// local range whose weekday is in Weekdays gets one pending schedule.
type BulkInput struct {
	EmployeeID string
	CreatedBy  string
	StartDate  string // "2006-01-02"
	EndDate    string // "2006-01-02", inclusive
	Weekdays   []string
	StartTime  string // "15:04"
	EndTime    string // "15:04"
	Title      string
	Location   string
}

// GenerateBulk expands a recurrence request into schedule rows without
// touching the store. Weekdays are computed from local date components,
// never from a timezone-shifted instant, so the expansion is identical on
// every server.
//
// A valid request that matches no date returns (nil, nil): "nothing to
// create" is a distinct outcome, not an error. An empty weekday set is a
// validation error.
func GenerateBulk(in BulkInput) ([]model.Schedule, error) {
	if in.EmployeeID == "" || in.CreatedBy == "" {
		return nil, fmt.Errorf("employee id and creator id are required: %w", store.ErrValidation)
	}
	if len(in.Weekdays) == 0 {
		return nil, fmt.Errorf("weekday set is empty: %w", store.ErrValidation)
	}
	wanted, err := parse.Weekdays(in.Weekdays)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, store.ErrValidation)
	}

	start, err := parse.Date(in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, store.ErrValidation)
	}
	end, err := parse.Date(in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, store.ErrValidation)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s before start date %s: %w", in.EndDate, in.StartDate, store.ErrValidation)
	}

	if _, err := parse.TimeOfDay(in.StartTime); err != nil {
		return nil, fmt.Errorf("%v: %w", err, store.ErrValidation)
	}
	if _, err := parse.TimeOfDay(in.EndTime); err != nil {
		return nil, fmt.Errorf("%v: %w", err, store.ErrValidation)
	}

	var out []model.Schedule
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !wanted[d.Weekday()] {
			continue
		}
		out = append(out, model.Schedule{
			EmployeeID:   in.EmployeeID,
			CreatedBy:    in.CreatedBy,
			ScheduleDate: d.Format(parse.DateLayout),
			StartTime:    in.StartTime,
			EndTime:      in.EndTime,
			Title:        in.Title,
			Location:     in.Location,
			Status:       model.SchedulePending,
		})
	}
	return out, nil
}

// CreateBulk expands the request and inserts the whole batch atomically:
// either every generated schedule is created or none are. Each created
// schedule fires its own assignment fan-out.
func (e *Engine) CreateBulk(ctx context.Context, in BulkInput) ([]model.Schedule, error) {
	schedules, err := GenerateBulk(in)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, nil // nothing to create
	}

	if err := e.store.CreateSchedulesBatch(ctx, schedules); err != nil {
		return nil, err
	}

	for i := range schedules {
		e.notifier.Dispatch(schedules[i].ID, model.EmailAssigned)
	}
	return schedules, nil
}
