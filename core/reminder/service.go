package reminder

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core"
)

var (
	// errors
	ErrNotFound = errors.New("reminder not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateReminder(ctx context.Context, rem Reminder) (Reminder, error)
		// QueryDueReminders returns unsent reminders whose fire timestamp lies
		// within [now-grace, now] and whose lead time is in the supported set.
		QueryDueReminders(ctx context.Context, now time.Time, grace time.Duration) ([]Reminder, error)
		// MarkReminderSent flips sent=false -> sent=true, returning the number
		// of affected rows. 0 means the reminder was already sent (or gone).
		MarkReminderSent(ctx context.Context, id string) (int64, error)
		// DeleteExpiredReminders removes unsent reminders whose fire timestamp
		// fell out of the grace window, returning the number removed; these
		// are dropped terminally, never sent late.
		DeleteExpiredReminders(ctx context.Context, now time.Time, grace time.Duration) (int64, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, logger: logger}
}

// Schedule persists a one-shot reminder firing at deadline - lead.
func (svc *Service) Schedule(ctx context.Context, sr ScheduleReminder) (Reminder, error) {
	rem := Reminder{
		TaskID:      sr.TaskID,
		Email:       sr.Email,
		TaskName:    sr.TaskName,
		Deadline:    sr.Deadline,
		LeadMinutes: sr.LeadMinutes,
		FireAt:      FireTime(sr.Deadline, sr.LeadMinutes),
		CreatedAt:   nowFunc().UTC(),
	}
	return svc.repo.CreateReminder(ctx, rem)
}

// Due returns the reminders that must fire now. A reminder missed by more
// than the grace window is dropped rather than sent late.
func (svc *Service) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	return svc.repo.QueryDueReminders(ctx, now, core.Conf.Reminder.GraceWindow)
}

// MarkSent is idempotent: marking an already-sent reminder is a no-op.
func (svc *Service) MarkSent(ctx context.Context, id string) error {
	_, err := svc.repo.MarkReminderSent(ctx, id)
	return err
}

// SendDue dispatches every due reminder at most once, even when invocations
// overlap: each reminder is claimed with a conditional mark first, and only
// the invocation that wins the mark sends the email. Delivery failures are
// tallied, not retried.
func (svc *Service) SendDue(ctx context.Context, now time.Time) (sentCount, failedCount int, err error) {
	due, err := svc.Due(ctx, now)
	if err != nil {
		return 0, 0, pkgerrors.Wrap(err, "querying due reminders")
	}

	for _, rem := range due {
		affected, err := svc.repo.MarkReminderSent(ctx, rem.ID)
		if err != nil {
			return sentCount, failedCount, pkgerrors.Wrap(err, "marking reminder sent")
		}
		if affected == 0 {
			// lost the claim to an overlapping invocation
			continue
		}

		if err := svc.sendReminderEmail(rem); err != nil {
			failedCount++
			svc.logger.Error(fmt.Sprintf("sending reminder %s for task %q: %v", rem.ID, rem.TaskName, err), err)
			continue
		}
		sentCount++
	}

	// reminders past the grace window are reaped, so each is logged once
	if expired, cErr := svc.repo.DeleteExpiredReminders(ctx, now, core.Conf.Reminder.GraceWindow); cErr == nil && expired > 0 {
		svc.logger.Warn(fmt.Sprintf("%d reminder(s) missed the grace window and were dropped", expired))
	}
	return sentCount, failedCount, nil
}

func (svc *Service) sendReminderEmail(rem Reminder) error {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: rem.Email}},
		Subject:      fmt.Sprintf("Task Deadline Reminder: %s", rem.TaskName),
		TemplateName: "task-reminder",
		TemplateData: struct {
			TaskName string
			Deadline string
		}{rem.TaskName, rem.Deadline.Format("January 2, 2006 at 3:04 PM")},
	}
	return svc.mailSvc.SendMessage(msg)
}
