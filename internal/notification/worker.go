package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"staffops-backend/internal/model"
	"staffops-backend/internal/store"
)

// Job is one fan-out request: a schedule transition tagged with its email
// type.
type Job struct {
	ScheduleID string
	EmailType  string
}

// Mailer delivers one email. Delivery failures are recorded in the ledger,
// never escalated to the triggering operation.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// WorkerPool consumes fan-out jobs so lifecycle transitions never block on
// the email collaborator.
type WorkerPool struct {
	size   int
	jobs   chan Job
	store  store.Store
	mailer Mailer
}

// NewWorkerPool creates a new worker pool over the given store and mailer.
// queueDepth bounds how many fan-out jobs may wait for a worker; a
// non-positive depth falls back to four jobs per worker.
func NewWorkerPool(size, queueDepth int, s store.Store, m Mailer) *WorkerPool {
	if queueDepth < 1 {
		queueDepth = size * 4
	}
	return &WorkerPool{
		size:   size,
		jobs:   make(chan Job, queueDepth),
		store:  s,
		mailer: m,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			if err := wp.FanOut(ctx, job.ScheduleID, job.EmailType); err != nil {
				log.Printf("notification worker %d: fan-out for schedule %s (%s) failed: %v",
					id, job.ScheduleID, job.EmailType, err)
			}
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues one fan-out job without ever blocking the caller: the
// triggering request must not wait on a backed-up email collaborator. A
// full queue drops the job and logs it; the ledger simply has no rows for
// that transition.
//
// Implements schedule.Notifier.
func (wp *WorkerPool) Dispatch(scheduleID, emailType string) {
	select {
	case wp.jobs <- Job{ScheduleID: scheduleID, EmailType: emailType}:
	default:
		log.Printf("notification queue full, dropping fan-out for schedule %s (%s)", scheduleID, emailType)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// FanOut performs one notification fan-out for a schedule transition:
// resolve the recipient set (owning employee plus the active roster),
// attempt delivery per recipient, and append one ledger row per recipient
// regardless of delivery outcome. The schedule's sent flag makes the
// fan-out idempotent at the schedule level: a retried transition attempt
// records nothing.
func (wp *WorkerPool) FanOut(ctx context.Context, scheduleID, emailType string) error {
	sched, err := wp.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}

	// Schedule-level guard: a retried Confirm never re-fans-out.
	flag := sentFlagColumn(emailType)
	if emailType == model.EmailConfirmed && sched.ConfirmationEmailSent {
		return nil
	}
	// Ledger-level guard: the three cancellation transitions share one
	// schedule flag, so each email type is deduped against its own rows.
	already, err := wp.store.HasNotificationLogs(ctx, sched.ID, emailType)
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	recipients, err := wp.resolveRecipients(ctx, sched)
	if err != nil {
		return err
	}

	subject, body := renderEmail(emailType, sched)
	entries := make([]model.NotificationLog, 0, len(recipients))
	for _, r := range recipients {
		entry := model.NotificationLog{
			ScheduleID:     sched.ID,
			EmailType:      emailType,
			RecipientEmail: r.email,
			RecipientClass: r.class,
			Status:         model.DeliverySent,
			SentAt:         time.Now().UTC(),
		}
		if err := wp.mailer.Send(ctx, r.email, subject, body); err != nil {
			entry.Status = model.DeliveryFailed
			entry.Error = err.Error()
		}
		entries = append(entries, entry)
	}

	if err := wp.store.AppendNotificationLogs(ctx, entries); err != nil {
		return err
	}

	if flag != "" {
		if _, err := wp.store.MarkEmailSent(ctx, sched.ID, flag); err != nil {
			return err
		}
	}
	return nil
}

type recipient struct {
	email string
	class string
}

// resolveRecipients builds the owning employee plus the active roster,
// deduping by address in case the owner is also on the roster.
func (wp *WorkerPool) resolveRecipients(ctx context.Context, sched *model.Schedule) ([]recipient, error) {
	seen := make(map[string]bool)
	var out []recipient

	owner, err := wp.store.GetEmployee(ctx, sched.EmployeeID)
	if err != nil {
		if !store.IsNotFound(err) {
			return nil, err
		}
		// An owner missing from the directory only shrinks the fan-out.
		log.Printf("fan-out for schedule %s: owner %s not in directory", sched.ID, sched.EmployeeID)
	} else {
		seen[owner.Email] = true
		out = append(out, recipient{email: owner.Email, class: model.RecipientEmployee})
	}

	roster, err := wp.store.ListActiveRecipients(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range roster {
		if seen[r.Email] {
			continue
		}
		seen[r.Email] = true
		out = append(out, recipient{email: r.Email, class: r.Class})
	}
	return out, nil
}

// sentFlagColumn maps an email type to the schedule flag guarding it.
// The assignment email has no flag: a schedule is created exactly once.
func sentFlagColumn(emailType string) string {
	switch emailType {
	case model.EmailConfirmed:
		return "confirmation_email_sent"
	case model.EmailCancellationRequested, model.EmailCancellationApproved, model.EmailCancelledByAdmin:
		return "cancellation_email_sent"
	default:
		return ""
	}
}

func renderEmail(emailType string, sched *model.Schedule) (subject, body string) {
	window := fmt.Sprintf("%s %s-%s", sched.ScheduleDate, sched.StartTime, sched.EndTime)
	switch emailType {
	case model.EmailAssigned:
		return "New shift assigned: " + window,
			fmt.Sprintf("A shift on %s has been proposed for you. Please confirm it.", window)
	case model.EmailConfirmed:
		return "Shift confirmed: " + window,
			fmt.Sprintf("The shift on %s has been confirmed by the employee.", window)
	case model.EmailCancellationRequested:
		return "Cancellation requested: " + window,
			fmt.Sprintf("Cancellation of the shift on %s was requested. Reason: %s", window, sched.CancellationReason)
	case model.EmailCancellationApproved:
		return "Cancellation approved: " + window,
			fmt.Sprintf("The cancellation request for the shift on %s was approved.", window)
	case model.EmailCancelledByAdmin:
		return "Shift cancelled: " + window,
			fmt.Sprintf("The shift on %s was cancelled by an administrator. Reason: %s", window, sched.CancellationReason)
	default:
		return "Shift update: " + window, "The shift on " + window + " was updated."
	}
}
