package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core/reminder"
)

type reminderRow struct {
	ID          string    `db:"id"`
	TaskID      string    `db:"task_id"`
	Email       string    `db:"email"`
	TaskName    string    `db:"task_name"`
	Deadline    time.Time `db:"deadline"`
	LeadMinutes int       `db:"lead_minutes"`
	FireAt      time.Time `db:"fire_at"`
	Sent        bool      `db:"sent"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r reminderRow) toReminder() reminder.Reminder {
	return reminder.Reminder(r)
}

type reminderRepository struct {
	db *sqlx.DB
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *sql.DB) *reminderRepository {
	return &reminderRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo reminderRepository) CreateReminder(ctx context.Context, rem reminder.Reminder) (reminder.Reminder, error) {
	rem.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO reminders (id, task_id, email, task_name, deadline, lead_minutes, fire_at, sent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)`,
		rem.ID, rem.TaskID, rem.Email, rem.TaskName, rem.Deadline, rem.LeadMinutes, rem.FireAt, rem.CreatedAt,
	)
	if err != nil {
		return reminder.Reminder{}, errors.Wrap(err, "inserting reminder")
	}
	return rem, nil
}

func (repo reminderRepository) QueryDueReminders(ctx context.Context, now time.Time, grace time.Duration) ([]reminder.Reminder, error) {
	query := `SELECT id, task_id, email, task_name, deadline, lead_minutes, fire_at, sent, created_at
	          FROM reminders
	          WHERE NOT sent AND fire_at <= ? AND fire_at >= ? AND lead_minutes IN (?)
	          ORDER BY fire_at`
	query, args, err := sqlx.In(query, now, now.Add(-grace), reminder.SupportedLeads)
	if err != nil {
		return nil, errors.Wrap(err, "expanding due query")
	}

	var rows []reminderRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying due reminders")
	}
	rems := make([]reminder.Reminder, 0, len(rows))
	for _, r := range rows {
		rems = append(rems, r.toReminder())
	}
	return rems, nil
}

func (repo reminderRepository) MarkReminderSent(ctx context.Context, id string) (int64, error) {
	// conditional update: only an unsent reminder can be claimed
	res, err := repo.db.ExecContext(ctx,
		`UPDATE reminders SET sent = TRUE WHERE id = $1 AND NOT sent`, id,
	)
	if err != nil {
		return 0, errors.Wrap(err, "marking reminder sent")
	}
	return res.RowsAffected()
}

func (repo reminderRepository) DeleteExpiredReminders(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE NOT sent AND fire_at < $1`, now.Add(-grace),
	)
	if err != nil {
		return 0, errors.Wrap(err, "deleting expired reminders")
	}
	return res.RowsAffected()
}
