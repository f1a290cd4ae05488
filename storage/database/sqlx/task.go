package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/task"
)

// newest first
var taskOrdering = core.DBOrdering{Field: "created_at"}

type taskRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CourseID  string    `db:"course_id"`
	Tag       string    `db:"tag"`
	Deadline  time.Time `db:"deadline"`
	Completed bool      `db:"completed"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r taskRow) toTask() task.Task {
	return task.Task(r)
}

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sql.DB) *taskRepository {
	return &taskRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo taskRepository) CourseExists(ctx context.Context, courseID, ownerID string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1 AND owner_id = $2)`, courseID, ownerID,
	)
	return exists, errors.Wrap(err, "checking course existence")
}

func (repo taskRepository) CreateTask(ctx context.Context, tsk task.Task) (task.Task, error) {
	tsk.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO tasks (id, name, course_id, tag, deadline, completed, owner_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tsk.ID, tsk.Name, tsk.CourseID, tsk.Tag, tsk.Deadline, tsk.Completed, tsk.OwnerID, tsk.CreatedAt,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return tsk, nil
}

func (repo taskRepository) QueryTasks(ctx context.Context, ownerID string) ([]task.Task, error) {
	var rows []taskRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, name, course_id, tag, deadline, completed, owner_id, created_at
		 FROM tasks WHERE owner_id = $1 ORDER BY `+taskOrdering.String(), ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks, nil
}

func (repo taskRepository) GetTask(ctx context.Context, id, ownerID string) (task.Task, error) {
	var row taskRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, name, course_id, tag, deadline, completed, owner_id, created_at
		 FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "getting task")
	}
	return row.toTask(), nil
}

func (repo taskRepository) SetTaskCompleted(ctx context.Context, id, ownerID string, done bool) (int64, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE tasks SET completed = $1 WHERE id = $2 AND owner_id = $3`, done, id, ownerID,
	)
	if err != nil {
		return 0, errors.Wrap(err, "updating task completion")
	}
	return res.RowsAffected()
}

// DeleteTask removes the task's reminders before the task itself, both in a
// single transaction. A zero-row task delete rolls back the reminder delete.
func (repo taskRepository) DeleteTask(ctx context.Context, id, ownerID string) (int64, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM reminders WHERE task_id = $1`, id); err != nil {
		return 0, errors.Wrap(err, "deleting task reminders")
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting task")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "reading affected rows")
	}
	if affected == 0 {
		// no matching task; roll the reminder delete back too
		return 0, nil
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing transaction")
	}
	return affected, nil
}
