package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hanslwng/taskmatrix/core"
)

var (
	// errors
	ErrNotFound = errors.New("course not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		// QueryCourses returns the owner's courses, most recent first.
		QueryCourses(ctx context.Context, ownerID string) ([]Course, error)
		GetCourse(ctx context.Context, id, ownerID string) (Course, error)
		// CountCourseTasks counts tasks still referencing the course.
		CountCourseTasks(ctx context.Context, id, ownerID string) (int, error)
		// DeleteCourse deletes by id scoped to the owner, returning affected rows.
		DeleteCourse(ctx context.Context, id, ownerID string) (int64, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse, ownerID string) (Course, error) {
	crs := Course{
		Code:      nc.Code,
		Name:      nc.Name,
		Professor: nc.Professor,
		OwnerID:   ownerID,
		CreatedAt: nowFunc().UTC(),
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) Query(ctx context.Context, ownerID string) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, ownerID)
}

func (svc *Service) GetByID(ctx context.Context, id, ownerID string) (Course, error) {
	return svc.repo.GetCourse(ctx, id, ownerID)
}

// Delete removes a course. A course that still has tasks cannot be deleted;
// the caller must delete or move the tasks first.
func (svc *Service) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	count, err := svc.repo.CountCourseTasks(ctx, id, ownerID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, core.NewValidationError(
			fmt.Errorf("course still has %d task(s); delete them first", count),
		)
	}

	affected, err := svc.repo.DeleteCourse(ctx, id, ownerID)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrNotFound
	}
	return affected, nil
}
