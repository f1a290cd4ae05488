package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/course"
)

// newest first
var courseOrdering = core.DBOrdering{Field: "created_at"}

type courseRow struct {
	ID        string    `db:"id"`
	Code      string    `db:"course_code"`
	Name      string    `db:"course_name"`
	Professor string    `db:"professor_name"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r courseRow) toCourse() course.Course {
	return course.Course(r)
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO courses (id, course_code, course_name, professor_name, owner_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		crs.ID, crs.Code, crs.Name, crs.Professor, crs.OwnerID, crs.CreatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, ownerID string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, course_code, course_name, professor_name, owner_id, created_at
		 FROM courses WHERE owner_id = $1 ORDER BY `+courseOrdering.String(), ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.toCourse())
	}
	return courses, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id, ownerID string) (course.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, course_code, course_name, professor_name, owner_id, created_at
		 FROM courses WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return row.toCourse(), nil
}

func (repo courseRepository) CountCourseTasks(ctx context.Context, id, ownerID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM tasks WHERE course_id = $1 AND owner_id = $2`, id, ownerID,
	)
	return count, errors.Wrap(err, "counting course tasks")
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id, ownerID string) (int64, error) {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM courses WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	if err != nil {
		return 0, errors.Wrap(err, "deleting course")
	}
	return res.RowsAffected()
}
