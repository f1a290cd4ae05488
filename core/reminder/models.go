package reminder

import (
	"time"

	"github.com/hanslwng/taskmatrix/core"
)

// Lead times (minutes before deadline) a reminder may be scheduled at.
const (
	LeadHalfHour = 30
	LeadHour     = 60
	LeadDay      = 1440
)

// SupportedLeads is the enumerated set of valid lead times.
var SupportedLeads = []int{LeadHalfHour, LeadHour, LeadDay}

type Reminder struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Email       string    `json:"email"`
	TaskName    string    `json:"task_name"`
	Deadline    time.Time `json:"deadline"`
	LeadMinutes int       `json:"reminder_time"`
	FireAt      time.Time `json:"fire_at"` // always deadline - lead
	Sent        bool      `json:"sent"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// FireTime derives the moment a reminder must fire. The fire timestamp is
// never stored independently of deadline+lead in a way that can drift.
func FireTime(deadline time.Time, leadMinutes int) time.Time {
	return deadline.Add(-time.Duration(leadMinutes) * time.Minute)
}

// ScheduleReminder contains information needed to schedule a Reminder.
type ScheduleReminder struct {
	TaskID      string    `json:"task_id" form:"task_id" validate:"required"`
	Email       string    `json:"email" form:"email" validate:"required,email"`
	TaskName    string    `json:"task_name" form:"task_name" validate:"required"`
	Deadline    time.Time `json:"deadline" form:"deadline" validate:"required"`
	LeadMinutes int       `json:"reminder_time" form:"reminder_time" validate:"required,leadminutes"`
}

func (sr *ScheduleReminder) Validate() error {
	sr.Email = core.CleanString(sr.Email, true /* lower */)
	sr.TaskName = core.CleanString(sr.TaskName)
	return core.Validate.Struct(sr)
}
