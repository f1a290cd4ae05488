package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hanslwng/taskmatrix/core/reminder"
)

type reminderRepository struct {
	db *reminderTable
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *DB) reminder.Repository {
	return &reminderRepository{db: db.reminder}
}

func (repo *reminderRepository) CreateReminder(_ context.Context, rem reminder.Reminder) (reminder.Reminder, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rem.ID = uuid.New().String()
	rem.Sent = false
	repo.db.table[rem.ID] = &rem
	return rem, nil
}

func supportedLead(lead int) bool {
	for _, supported := range reminder.SupportedLeads {
		if lead == supported {
			return true
		}
	}
	return false
}

func (repo *reminderRepository) QueryDueReminders(_ context.Context, now time.Time, grace time.Duration) ([]reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	oldest := now.Add(-grace)
	due := make([]reminder.Reminder, 0)
	for _, rem := range repo.db.table {
		if rem.Sent || !supportedLead(rem.LeadMinutes) {
			continue
		}
		if rem.FireAt.After(now) || rem.FireAt.Before(oldest) {
			continue
		}
		due = append(due, *rem)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })
	return due, nil
}

func (repo *reminderRepository) MarkReminderSent(_ context.Context, id string) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rem, ok := repo.db.table[id]
	if !ok || rem.Sent {
		return 0, nil
	}
	rem.Sent = true
	return 1, nil
}

func (repo *reminderRepository) DeleteExpiredReminders(_ context.Context, now time.Time, grace time.Duration) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	oldest := now.Add(-grace)
	var reaped int64
	for id, rem := range repo.db.table {
		if !rem.Sent && rem.FireAt.Before(oldest) {
			delete(repo.db.table, id)
			reaped++
		}
	}
	return reaped, nil
}
