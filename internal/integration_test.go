package internal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"staffops-backend/config"
	"staffops-backend/internal/clock"
	"staffops-backend/internal/db"
	"staffops-backend/internal/model"
	"staffops-backend/internal/notification"
	"staffops-backend/internal/schedule"
	"staffops-backend/internal/store"
	"staffops-backend/internal/timecard"
)

// inlineNotifier runs every fan-out synchronously so ledger assertions
// never race the worker pool.
type inlineNotifier struct {
	t    *testing.T
	pool *notification.WorkerPool
}

func (n inlineNotifier) Dispatch(scheduleID, emailType string) {
	require.NoError(n.t, n.pool.FanOut(context.Background(), scheduleID, emailType))
}

// countingMailer delivers everything and counts sends per address.
type countingMailer struct {
	sends map[string]int
}

func (m *countingMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.sends == nil {
		m.sends = make(map[string]int)
	}
	m.sends[to]++
	return nil
}

type fixture struct {
	store   store.Store
	ledger  *clock.Ledger
	engine  *schedule.Engine
	mailer  *countingMailer
	ownerID string
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(testDB))
	require.NoError(t, db.ApplyConstraints(testDB))

	s := store.NewGormStore(testDB, time.Minute)
	mailer := &countingMailer{}
	pool := notification.NewWorkerPool(1, 16, s, mailer)
	engine := schedule.NewEngine(s, inlineNotifier{t: t, pool: pool})
	ledger := clock.NewLedger(s, config.AttendanceConfig{
		Timezone:               "UTC",
		LateGraceMinutes:       15,
		EarlyLeaveGraceMinutes: 10,
		OvertimeThresholdHours: 8,
	})

	owner := model.Employee{Name: "Riley", Email: "riley@example.com"}
	require.NoError(t, testDB.Create(&owner).Error)
	require.NoError(t, testDB.Create(&model.NotificationRecipient{
		Email: "manager@example.com", Name: "Manager", Class: model.RecipientManager, Active: true,
	}).Error)
	require.NoError(t, testDB.Create(&model.EmployeeRate{
		EmployeeID: owner.ID, HourlyRate: decimal.NewFromInt(20),
	}).Error)

	return &fixture{store: s, ledger: ledger, engine: engine, mailer: mailer, ownerID: owner.ID}
}

// TestEmployeeDayLifecycle walks one shift from proposal to timecard: the
// admin proposes it, the employee confirms, works it with a clock-in/out
// pair, and the month's projection reflects the closed session.
func TestEmployeeDayLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sched, err := f.engine.Create(ctx, schedule.CreateInput{
		EmployeeID:   f.ownerID,
		CreatedBy:    uuid.NewString(),
		ScheduleDate: "2025-03-03",
		StartTime:    "09:00",
		EndTime:      "17:00",
		Title:        "Front desk",
	})
	require.NoError(t, err)

	confirmed, err := f.engine.Confirm(ctx, sched.ID, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleConfirmed, confirmed.Status)

	// The proposal and the confirmation each reached owner and manager.
	assert.Equal(t, 2, f.mailer.sends["riley@example.com"])
	assert.Equal(t, 2, f.mailer.sends["manager@example.com"])

	stored, err := f.store.GetSchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.True(t, stored.ConfirmationEmailSent)

	session, err := f.ledger.ClockIn(ctx, f.ownerID, model.LocationSample{Status: model.LocationCaptured})
	require.NoError(t, err)
	closed, err := f.ledger.ClockOut(ctx, f.ownerID, session.ID, model.LocationSample{})
	require.NoError(t, err)
	require.NotNil(t, closed.TotalHours)

	completed, err := f.engine.Complete(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleCompleted, completed.Status)

	// Completion fires no email.
	assert.Equal(t, 2, f.mailer.sends["riley@example.com"])

	now := time.Now().UTC()
	from, to := timecard.MonthBounds(now.Year(), now.Month(), time.UTC)
	sessions, err := f.store.ListSessionsForRange(ctx, f.ownerID, from, to)
	require.NoError(t, err)

	rate, err := f.store.GetRate(ctx, f.ownerID)
	require.NoError(t, err)
	summary := timecard.Aggregate(sessions, f.ownerID, now.Year(), now.Month(), time.UTC, 8, rate.HourlyRate)
	assert.Equal(t, 1, summary.DaysWorked)
	assert.InDelta(t, *closed.TotalHours, summary.TotalHours, 1e-9)
}

// TestCancellationJourney covers the contested branch end to end: request,
// approval, and the ledger rows both transitions leave behind.
func TestCancellationJourney(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sched, err := f.engine.Create(ctx, schedule.CreateInput{
		EmployeeID:   f.ownerID,
		CreatedBy:    uuid.NewString(),
		ScheduleDate: "2025-03-10",
		StartTime:    "09:00",
		EndTime:      "17:00",
	})
	require.NoError(t, err)

	_, err = f.engine.RequestCancellation(ctx, sched.ID, f.ownerID, "double booked")
	require.NoError(t, err)

	cancelled, err := f.engine.ApproveCancellation(ctx, sched.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleCancelled, cancelled.Status)
	assert.Equal(t, "double booked", cancelled.CancellationReason)

	logs, err := f.store.ListNotificationLogs(ctx, sched.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 6, "assigned, requested, approved; two recipients each")

	// The closed schedule takes no further transitions, and the failed
	// attempt records nothing new.
	_, err = f.engine.Confirm(ctx, sched.ID, f.ownerID)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
	logs, err = f.store.ListNotificationLogs(ctx, sched.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 6)
}

// TestDuplicateClockInAcrossServices verifies the open-session invariant
// holds through the service layer, not just the store.
func TestDuplicateClockInAcrossServices(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.ledger.ClockIn(ctx, f.ownerID, model.LocationSample{})
	require.NoError(t, err)

	_, err = f.ledger.ClockIn(ctx, f.ownerID, model.LocationSample{})
	assert.ErrorIs(t, err, store.ErrAlreadyOpen)

	_, err = f.ledger.ClockOut(ctx, f.ownerID, first.ID, model.LocationSample{})
	require.NoError(t, err)

	_, err = f.ledger.ClockIn(ctx, f.ownerID, model.LocationSample{})
	assert.NoError(t, err, "closing the session reopens the door")
}
