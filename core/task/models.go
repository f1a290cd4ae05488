package task

import (
	"time"

	"github.com/hanslwng/taskmatrix/core"
)

type Task struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CourseID  string    `json:"course_id"`
	Tag       string    `json:"tag,omitempty"`
	Deadline  time.Time `json:"deadline"`
	Completed bool      `json:"completed"`
	OwnerID   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Name     string    `json:"name" form:"name" validate:"required"`
	CourseID string    `json:"course_id" form:"course_id" validate:"required"`
	Tag      string    `json:"tag" form:"tag"`
	Deadline time.Time `json:"deadline" form:"deadline" validate:"required"`
}

func (nt *NewTask) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Tag = core.CleanString(nt.Tag)
	return core.Validate.Struct(nt)
}
