package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/hanslwng/taskmatrix/core/course"
)

type courseRepository struct {
	db    *courseTable
	tasks *taskTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course, tasks: db.task}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(_ context.Context, ownerID string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for _, crs := range repo.db.table {
		if crs.OwnerID == ownerID {
			courses = append(courses, *crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id, ownerID string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.table[id]; ok && crs.OwnerID == ownerID {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CountCourseTasks(_ context.Context, id, ownerID string) (int, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()

	var count int
	for _, tsk := range repo.tasks.table {
		if tsk.CourseID == id && tsk.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id, ownerID string) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if crs, ok := repo.db.table[id]; ok && crs.OwnerID == ownerID {
		delete(repo.db.table, id)
		return 1, nil
	}
	return 0, nil
}
