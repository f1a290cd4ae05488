package task

import (
	"context"
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound       = errors.New("task not found")
	ErrCourseNotFound = errors.New("course not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CourseExists reports whether the course id resolves for the owner.
		CourseExists(ctx context.Context, courseID, ownerID string) (bool, error)
		CreateTask(ctx context.Context, tsk Task) (Task, error)
		// QueryTasks returns the owner's tasks, most recent first.
		QueryTasks(ctx context.Context, ownerID string) ([]Task, error)
		GetTask(ctx context.Context, id, ownerID string) (Task, error)
		SetTaskCompleted(ctx context.Context, id, ownerID string, done bool) (int64, error)
		// DeleteTask removes the task's reminders and then the task itself in
		// one transaction; if the task row does not match, everything rolls
		// back. Returns the number of deleted task rows.
		DeleteTask(ctx context.Context, id, ownerID string) (int64, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create persists a task after resolving its course reference. The
// existence check precedes the insert; the courses FK backstops the
// read-then-write race.
func (svc *Service) Create(ctx context.Context, nt NewTask, ownerID string) (Task, error) {
	exists, err := svc.repo.CourseExists(ctx, nt.CourseID, ownerID)
	if err != nil {
		return Task{}, err
	}
	if !exists {
		return Task{}, ErrCourseNotFound
	}

	tsk := Task{
		Name:      nt.Name,
		CourseID:  nt.CourseID,
		Tag:       nt.Tag,
		Deadline:  nt.Deadline,
		OwnerID:   ownerID,
		CreatedAt: nowFunc().UTC(),
	}
	return svc.repo.CreateTask(ctx, tsk)
}

func (svc *Service) Query(ctx context.Context, ownerID string) ([]Task, error) {
	return svc.repo.QueryTasks(ctx, ownerID)
}

func (svc *Service) GetByID(ctx context.Context, id, ownerID string) (Task, error) {
	return svc.repo.GetTask(ctx, id, ownerID)
}

func (svc *Service) SetCompleted(ctx context.Context, id, ownerID string, done bool) error {
	affected, err := svc.repo.SetTaskCompleted(ctx, id, ownerID, done)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task and its reminders atomically.
func (svc *Service) Delete(ctx context.Context, id, ownerID string) error {
	affected, err := svc.repo.DeleteTask(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
