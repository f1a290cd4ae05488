package inmemdb

import (
	"sync"

	"github.com/hanslwng/taskmatrix/core/course"
	"github.com/hanslwng/taskmatrix/core/reminder"
	"github.com/hanslwng/taskmatrix/core/session"
	"github.com/hanslwng/taskmatrix/core/task"
	"github.com/hanslwng/taskmatrix/core/user"
	"github.com/hanslwng/taskmatrix/core/verification"
)

type (
	DB struct {
		user         *userTable
		session      *sessionTable
		course       *courseTable
		task         *taskTable
		reminder     *reminderTable
		verification *verificationTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	sessionTable struct {
		sync.RWMutex
		table map[string]*session.Session
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	taskTable struct {
		sync.RWMutex
		table map[string]*task.Task
	}

	reminderTable struct {
		sync.RWMutex
		table map[string]*reminder.Reminder
	}

	verificationTable struct {
		sync.RWMutex
		table map[string]*verification.Challenge // keyed by session id
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		session:      &sessionTable{table: make(map[string]*session.Session)},
		course:       &courseTable{table: make(map[string]*course.Course)},
		task:         &taskTable{table: make(map[string]*task.Task)},
		reminder:     &reminderTable{table: make(map[string]*reminder.Reminder)},
		verification: &verificationTable{table: make(map[string]*verification.Challenge)},
	}
	return db, nil
}
