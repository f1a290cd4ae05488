package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/hanslwng/taskmatrix/core/task"
)

type taskRepository struct {
	db        *taskTable
	courses   *courseTable
	reminders *reminderTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task, courses: db.course, reminders: db.reminder}
}

func (repo *taskRepository) CourseExists(_ context.Context, courseID, ownerID string) (bool, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	crs, ok := repo.courses.table[courseID]
	return ok && crs.OwnerID == ownerID, nil
}

func (repo *taskRepository) CreateTask(_ context.Context, tsk task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tsk.ID = uuid.New().String()
	repo.db.table[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *taskRepository) QueryTasks(_ context.Context, ownerID string) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := make([]task.Task, 0)
	for _, tsk := range repo.db.table {
		if tsk.OwnerID == ownerID {
			tasks = append(tasks, *tsk)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func (repo *taskRepository) GetTask(_ context.Context, id, ownerID string) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tsk, ok := repo.db.table[id]; ok && tsk.OwnerID == ownerID {
		return *tsk, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) SetTaskCompleted(_ context.Context, id, ownerID string, done bool) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if tsk, ok := repo.db.table[id]; ok && tsk.OwnerID == ownerID {
		tsk.Completed = done
		return 1, nil
	}
	return 0, nil
}

func (repo *taskRepository) DeleteTask(_ context.Context, id, ownerID string) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tsk, ok := repo.db.table[id]
	if !ok || tsk.OwnerID != ownerID {
		// nothing deleted; reminder rows stay untouched
		return 0, nil
	}

	repo.reminders.Lock()
	for remID, rem := range repo.reminders.table {
		if rem.TaskID == id {
			delete(repo.reminders.table, remID)
		}
	}
	repo.reminders.Unlock()

	delete(repo.db.table, id)
	return 1, nil
}
