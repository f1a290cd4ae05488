// Package jobs holds background loops run alongside the API server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/reminder"
)

// ReminderJob periodically dispatches due reminders. Overlapping runs are
// safe: the send path claims each reminder before mailing it.
type ReminderJob struct {
	svc    *reminder.Service
	logger core.Logger
}

func NewReminderJob(svc *reminder.Service, logger core.Logger) *ReminderJob {
	return &ReminderJob{svc: svc, logger: logger}
}

// Run blocks until ctx is cancelled, checking for due reminders on every tick.
func (j *ReminderJob) Run(ctx context.Context) {
	ticker := time.NewTicker(core.Conf.Reminder.CheckInterval)
	defer ticker.Stop()

	j.logger.Info(fmt.Sprintf("reminder job started (every %v)", core.Conf.Reminder.CheckInterval))
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("reminder job stopped")
			return
		case now := <-ticker.C:
			sent, failed, err := j.svc.SendDue(ctx, now.UTC())
			if err != nil {
				j.logger.Error(fmt.Sprintf("dispatching reminders: %v", err), err)
				continue
			}
			if sent > 0 || failed > 0 {
				j.logger.Info(fmt.Sprintf("reminders dispatched: %d sent, %d failed", sent, failed))
			}
		}
	}
}
