package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/hanslwng/taskmatrix/core/course"
	"github.com/hanslwng/taskmatrix/core/reminder"
	"github.com/hanslwng/taskmatrix/core/task"
	inmemdb "github.com/hanslwng/taskmatrix/storage/database/inmem"
)

func setup(t *testing.T) (*task.Service, *course.Service, reminder.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return task.NewService(inmemdb.NewTaskRepository(db)),
		course.NewService(inmemdb.NewCourseRepository(db)),
		inmemdb.NewReminderRepository(db)
}

func createCourse(t *testing.T, svc *course.Service, ownerID string) course.Course {
	t.Helper()
	crs, err := svc.Create(context.Background(), course.NewCourse{
		Code:      "CS101",
		Name:      "Intro to Databases",
		Professor: "Dr. Codd",
	}, ownerID)
	if err != nil {
		t.Fatalf("course Create() failed: %v", err)
	}
	return crs
}

func createTask(t *testing.T, svc *task.Service, courseID, ownerID string) task.Task {
	t.Helper()
	tsk, err := svc.Create(context.Background(), task.NewTask{
		Name:     "Homework 1",
		CourseID: courseID,
		Tag:      "homework",
		Deadline: time.Now().UTC().Add(48 * time.Hour),
	}, ownerID)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return tsk
}

func Test_Service_Create(t *testing.T) {
	svc, crsSvc, _ := setup(t)
	crs := createCourse(t, crsSvc, "owner1")

	tsk := createTask(t, svc, crs.ID, "owner1")
	if tsk.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if tsk.Completed {
		t.Error("Create() returned a completed task")
	}
}

func Test_Service_Create_unknownCourse(t *testing.T) {
	svc, crsSvc, _ := setup(t)
	crs := createCourse(t, crsSvc, "owner1")

	nt := task.NewTask{Name: "HW", CourseID: "nope", Deadline: time.Now().UTC().Add(time.Hour)}
	if _, err := svc.Create(context.Background(), nt, "owner1"); err != task.ErrCourseNotFound {
		t.Errorf("Create() error = %v, want ErrCourseNotFound", err)
	}

	// another owner's course is just as unknown
	nt.CourseID = crs.ID
	if _, err := svc.Create(context.Background(), nt, "owner2"); err != task.ErrCourseNotFound {
		t.Errorf("Create() error = %v, want ErrCourseNotFound", err)
	}
}

func Test_Service_SetCompleted(t *testing.T) {
	svc, crsSvc, _ := setup(t)
	crs := createCourse(t, crsSvc, "owner1")
	tsk := createTask(t, svc, crs.ID, "owner1")

	if err := svc.SetCompleted(context.Background(), tsk.ID, "owner1", true); err != nil {
		t.Fatalf("SetCompleted() failed: %v", err)
	}
	refreshed, err := svc.GetByID(context.Background(), tsk.ID, "owner1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if !refreshed.Completed {
		t.Error("SetCompleted() did not flag the task")
	}

	if err := svc.SetCompleted(context.Background(), tsk.ID, "owner2", true); err != task.ErrNotFound {
		t.Errorf("SetCompleted() by non-owner error = %v, want ErrNotFound", err)
	}
	if err := svc.SetCompleted(context.Background(), "nope", "owner1", true); err != task.ErrNotFound {
		t.Errorf("SetCompleted() unknown id error = %v, want ErrNotFound", err)
	}
}

func Test_Service_Delete_cascadesReminders(t *testing.T) {
	svc, crsSvc, remRepo := setup(t)
	crs := createCourse(t, crsSvc, "owner1")
	tsk := createTask(t, svc, crs.ID, "owner1")

	rem, err := remRepo.CreateReminder(context.Background(), reminder.Reminder{
		TaskID:      tsk.ID,
		Email:       "awe@test.cd",
		TaskName:    tsk.Name,
		Deadline:    tsk.Deadline,
		LeadMinutes: reminder.LeadHour,
		FireAt:      reminder.FireTime(tsk.Deadline, reminder.LeadHour),
	})
	if err != nil {
		t.Fatalf("CreateReminder() failed: %v", err)
	}

	// non-owner delete leaves task and reminder alone
	if err := svc.Delete(context.Background(), tsk.ID, "owner2"); err != task.ErrNotFound {
		t.Fatalf("Delete() by non-owner error = %v, want ErrNotFound", err)
	}
	if affected, _ := remRepo.MarkReminderSent(context.Background(), rem.ID); affected != 1 {
		t.Fatal("reminder vanished after refused delete")
	}
	// undo the probe mark so the cascade has something to delete
	tsk2 := createTask(t, svc, crs.ID, "owner1")
	rem2, err := remRepo.CreateReminder(context.Background(), reminder.Reminder{
		TaskID:      tsk2.ID,
		Email:       "awe@test.cd",
		TaskName:    tsk2.Name,
		Deadline:    tsk2.Deadline,
		LeadMinutes: reminder.LeadHalfHour,
		FireAt:      reminder.FireTime(tsk2.Deadline, reminder.LeadHalfHour),
	})
	if err != nil {
		t.Fatalf("CreateReminder() failed: %v", err)
	}

	if err := svc.Delete(context.Background(), tsk2.ID, "owner1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), tsk2.ID, "owner1"); err != task.ErrNotFound {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if affected, _ := remRepo.MarkReminderSent(context.Background(), rem2.ID); affected != 0 {
		t.Error("Delete() left the task's reminder behind")
	}

	if err := svc.Delete(context.Background(), tsk2.ID, "owner1"); err != task.ErrNotFound {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
