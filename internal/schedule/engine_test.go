package schedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"staffops-backend/internal/db"
	"staffops-backend/internal/model"
	"staffops-backend/internal/store"
)

// recordingNotifier captures dispatches so tests can assert exactly which
// transitions were notified, in order.
type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Dispatch(scheduleID, emailType string) {
	n.events = append(n.events, emailType)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, db.ApplyConstraints(gdb))

	return store.NewGormStore(gdb, time.Minute)
}

func newTestEngine(t *testing.T) (*Engine, store.Store, *recordingNotifier) {
	t.Helper()
	s := newTestStore(t)
	n := &recordingNotifier{}
	return NewEngine(s, n), s, n
}

func validInput() CreateInput {
	return CreateInput{
		EmployeeID:   "emp-1",
		CreatedBy:    "admin-1",
		ScheduleDate: "2025-03-03",
		StartTime:    "09:00",
		EndTime:      "17:00",
		Title:        "Front desk",
	}
}

func TestCreate(t *testing.T) {
	engine, s, n := newTestEngine(t)
	ctx := context.Background()

	sched, err := engine.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, model.SchedulePending, sched.Status)
	assert.Equal(t, []string{model.EmailAssigned}, n.events)

	stored, err := s.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", stored.ScheduleDate)
	assert.Equal(t, model.SchedulePending, stored.Status)
}

func TestCreate_Validation(t *testing.T) {
	engine, _, n := newTestEngine(t)
	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing employee", func(in *CreateInput) { in.EmployeeID = "" }},
		{"missing creator", func(in *CreateInput) { in.CreatedBy = "" }},
		{"bad date", func(in *CreateInput) { in.ScheduleDate = "2025/03/03" }},
		{"bad start time", func(in *CreateInput) { in.StartTime = "nine" }},
		{"end equals start", func(in *CreateInput) { in.EndTime = in.StartTime }},
		{"end before start", func(in *CreateInput) { in.StartTime = "17:00"; in.EndTime = "09:00" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := engine.Create(ctx, in)
			assert.ErrorIs(t, err, store.ErrValidation)
		})
	}
	assert.Empty(t, n.events, "rejected creates must not notify")
}

func TestConfirm(t *testing.T) {
	engine, _, n := newTestEngine(t)
	ctx := context.Background()

	sched, err := engine.Create(ctx, validInput())
	require.NoError(t, err)

	confirmed, err := engine.Confirm(ctx, sched.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, []string{model.EmailAssigned, model.EmailConfirmed}, n.events)
}

func TestConfirm_Rejections(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	sched, err := engine.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = engine.Confirm(ctx, sched.ID, "emp-2")
	assert.ErrorIs(t, err, store.ErrForbidden)

	_, err = engine.Confirm(ctx, uuid.NewString(), "emp-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = engine.Confirm(ctx, sched.ID, "emp-1")
	require.NoError(t, err)

	_, err = engine.Confirm(ctx, sched.ID, "emp-1")
	assert.ErrorIs(t, err, store.ErrInvalidTransition, "double confirm must lose the swap")
}

func TestRequestCancellation(t *testing.T) {
	engine, _, n := newTestEngine(t)
	ctx := context.Background()

	sched, err := engine.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = engine.Confirm(ctx, sched.ID, "emp-1")
	require.NoError(t, err)

	requested, err := engine.RequestCancellation(ctx, sched.ID, "emp-1", "family emergency")
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleCancellationRequested, requested.Status)
	assert.Equal(t, "family emergency", requested.CancellationReason)
	require.NotNil(t, requested.CancellationRequestedAt)
	assert.Equal(t, []string{model.EmailAssigned, model.EmailConfirmed, model.EmailCancellationRequested}, n.events)

	// No path back once the request is in flight.
	_, err = engine.Confirm(ctx, sched.ID, "emp-1")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestRequestCancellation_BlankReasonChangesNothing(t *testing.T) {
	engine, s, _ := newTestEngine(t)
	ctx := context.Background()

	sched, err := engine.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = engine.RequestCancellation(ctx, sched.ID, "emp-1", "   \t ")
	assert.ErrorIs(t, err, store.ErrValidation)

	stored, err := s.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SchedulePending, stored.Status)
	assert.Empty(t, stored.CancellationReason)
}

func TestApproveCancellation(t *testing.T) {
	engine, _, n := newTestEngine(t)
	ctx := context.Background()

	sched, err := engine.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = engine.RequestCancellation(ctx, sched.ID, "emp-1", "double booked")
	require.NoError(t, err)

	cancelled, err := engine.ApproveCancellation(ctx, sched.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleCancelled, cancelled.Status)
	assert.Equal(t, "admin-1", cancelled.CancelledBy)
	assert.Equal(t, "double booked", cancelled.CancellationReason, "the employee's reason survives approval")
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, cancelled.Terminal())
	assert.Contains(t, n.events, model.EmailCancellationApproved)
}

func TestApproveCancellation_RequiresPendingRequest(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	sched, err := engine.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = engine.ApproveCancellation(ctx, sched.ID, "admin-1")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestAdminForceCancel(t *testing.T) {
	engine, _, n := newTestEngine(t)
	ctx := context.Background()

	sched, err := engine.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = engine.Confirm(ctx, sched.ID, "emp-1")
	require.NoError(t, err)

	cancelled, err := engine.AdminForceCancel(ctx, sched.ID, "admin-1", "")
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleCancelled, cancelled.Status)
	assert.Equal(t, forceCancelReason, cancelled.CancellationReason)
	assert.Equal(t, "admin-1", cancelled.CancelledBy)
	assert.Contains(t, n.events, model.EmailCancelledByAdmin)

	// Terminal: nothing moves a cancelled schedule.
	_, err = engine.AdminForceCancel(ctx, sched.ID, "admin-1", "again")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
	_, err = engine.Complete(ctx, sched.ID)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestComplete(t *testing.T) {
	engine, _, n := newTestEngine(t)
	ctx := context.Background()

	sched, err := engine.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = engine.Complete(ctx, sched.ID)
	assert.ErrorIs(t, err, store.ErrInvalidTransition, "only confirmed schedules complete")

	_, err = engine.Confirm(ctx, sched.ID, "emp-1")
	require.NoError(t, err)

	done, err := engine.Complete(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleCompleted, done.Status)
	assert.True(t, done.Terminal())
	assert.NotContains(t, n.events, "completed", "completion is not a notified transition")

	_, err = engine.Confirm(ctx, sched.ID, "emp-1")
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestDelete(t *testing.T) {
	engine, s, _ := newTestEngine(t)
	ctx := context.Background()

	sched, err := engine.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = engine.Confirm(ctx, sched.ID, "emp-1")
	require.NoError(t, err)

	// Delete bypasses the state machine entirely.
	require.NoError(t, engine.Delete(ctx, sched.ID))

	_, err = s.GetSchedule(ctx, sched.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = engine.Delete(ctx, sched.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateBulk(t *testing.T) {
	engine, s, n := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.CreateBulk(ctx, baseBulkInput())
	require.NoError(t, err)
	require.Len(t, created, 3)

	for _, sched := range created {
		stored, err := s.GetSchedule(ctx, sched.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SchedulePending, stored.Status)
	}
	assert.Equal(t, []string{model.EmailAssigned, model.EmailAssigned, model.EmailAssigned}, n.events)
}

func TestCreateBulk_NothingToCreate(t *testing.T) {
	engine, _, n := newTestEngine(t)
	ctx := context.Background()

	in := baseBulkInput()
	in.StartDate = "2025-03-04" // Tue
	in.EndDate = "2025-03-04"
	in.Weekdays = []string{"monday"}

	created, err := engine.CreateBulk(ctx, in)
	assert.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, n.events)
}
