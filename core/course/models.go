package course

import (
	"time"

	"github.com/hanslwng/taskmatrix/core"
)

type Course struct {
	ID        string    `json:"id"`
	Code      string    `json:"course_code"`
	Name      string    `json:"course_name"`
	Professor string    `json:"professor_name"`
	OwnerID   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Code      string `json:"course_code" form:"course_code" validate:"required"`
	Name      string `json:"course_name" form:"course_name" validate:"required"`
	Professor string `json:"professor_name" form:"professor_name" validate:"required"`
}

func (nc *NewCourse) Validate() error {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Professor = core.CleanString(nc.Professor)
	return core.Validate.Struct(nc)
}
