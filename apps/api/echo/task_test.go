package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/hanslwng/taskmatrix/core/course"
	"github.com/hanslwng/taskmatrix/core/reminder"
	"github.com/hanslwng/taskmatrix/core/task"
)

func createCourseHTTP(t *testing.T, env *testEnv, cookie *http.Cookie) string {
	t.Helper()
	body := marshallObj(t, course.NewCourse{Code: "CS101", Name: "Intro to Databases", Professor: "Dr. Codd"})
	req, rec := newRequest(http.MethodPost, "/v1/courses", cookie, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("course create code = %d; body = %s", rec.Code, rec.Body.String())
	}
	var resp CreateCourseResponse
	decodeBody(t, rec, &resp)
	return resp.CourseID
}

func createTaskHTTP(t *testing.T, env *testEnv, cookie *http.Cookie, courseID string) string {
	t.Helper()
	body := marshallObj(t, task.NewTask{Name: "Homework 1", CourseID: courseID, Tag: "homework", Deadline: deadline()})
	req, rec := newRequest(http.MethodPost, "/v1/tasks", cookie, body)
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("task create code = %d; body = %s", rec.Code, rec.Body.String())
	}
	var resp CreateTaskResponse
	decodeBody(t, rec, &resp)
	return resp.TaskID
}

func Test_taskApi(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "Awe", "awe@test.cd")
	cookie := env.sessionCookie(t, usr)
	other := env.createUser(t, "Other", "other@test.cd")
	otherCookie := env.sessionCookie(t, other)

	courseID := createCourseHTTP(t, env, cookie)

	t.Run("create with unknown course", func(t *testing.T) {
		body := marshallObj(t, task.NewTask{Name: "HW", CourseID: "nope", Deadline: deadline()})
		req, rec := newRequest(http.MethodPost, "/v1/tasks", cookie, body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	taskID := createTaskHTTP(t, env, cookie, courseID)

	t.Run("query", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/tasks", cookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body = %s", rec.Code, rec.Body.String())
		}
		var tasks []task.Task
		decodeBody(t, rec, &tasks)
		if len(tasks) != 1 || tasks[0].ID != taskID {
			t.Errorf("tasks = %+v, want the one created", tasks)
		}
	})

	t.Run("set completed", func(t *testing.T) {
		body := marshallObj(t, SetCompletedRequest{Completed: true})
		req, rec := newRequest(http.MethodPut, "/v1/tasks/"+taskID+"/completed", cookie, body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; body = %s", rec.Code, rec.Body.String())
		}

		req, rec = newRequest(http.MethodPut, "/v1/tasks/"+taskID+"/completed", otherCookie, body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("non-owner code = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("delete cascades reminders", func(t *testing.T) {
		rem, err := env.remRepo.CreateReminder(context.Background(), reminder.Reminder{
			TaskID:      taskID,
			Email:       usr.Email,
			TaskName:    "Homework 1",
			Deadline:    deadline(),
			LeadMinutes: reminder.LeadHour,
			FireAt:      reminder.FireTime(deadline(), reminder.LeadHour),
		})
		if err != nil {
			t.Fatalf("CreateReminder() failed: %v", err)
		}

		req, rec := newRequest(http.MethodDelete, "/v1/tasks/"+taskID, otherCookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("non-owner delete code = %d, want %d", rec.Code, http.StatusNotFound)
		}

		req, rec = newRequest(http.MethodDelete, "/v1/tasks/"+taskID, cookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete code = %d; body = %s", rec.Code, rec.Body.String())
		}

		if affected, _ := env.remRepo.MarkReminderSent(context.Background(), rem.ID); affected != 0 {
			t.Error("task delete left its reminder behind")
		}

		req, rec = newRequest(http.MethodDelete, "/v1/tasks/"+taskID, cookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("second delete code = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func Test_reminderApi_schedule(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "Awe", "awe@test.cd")
	cookie := env.sessionCookie(t, usr)
	other := env.createUser(t, "Other", "other@test.cd")
	otherCookie := env.sessionCookie(t, other)

	courseID := createCourseHTTP(t, env, cookie)
	taskID := createTaskHTTP(t, env, cookie, courseID)

	schedule := func(cookie *http.Cookie, taskID string, lead int) (int, string) {
		body := marshallObj(t, reminder.ScheduleReminder{
			TaskID:      taskID,
			Email:       usr.Email,
			TaskName:    "Homework 1",
			Deadline:    deadline(),
			LeadMinutes: lead,
		})
		req, rec := newRequest(http.MethodPost, "/v1/reminders", cookie, body)
		env.server.ServeHTTP(rec, req)
		return rec.Code, rec.Body.String()
	}

	if code, body := schedule(cookie, taskID, reminder.LeadHour); code != http.StatusCreated {
		t.Errorf("schedule code = %d, want %d; body = %s", code, http.StatusCreated, body)
	}
	if code, _ := schedule(cookie, taskID, 45); code != http.StatusBadRequest {
		t.Errorf("unsupported lead code = %d, want %d", code, http.StatusBadRequest)
	}
	if code, _ := schedule(cookie, "nope", reminder.LeadHour); code != http.StatusNotFound {
		t.Errorf("unknown task code = %d, want %d", code, http.StatusNotFound)
	}
	if code, _ := schedule(otherCookie, taskID, reminder.LeadHour); code != http.StatusNotFound {
		t.Errorf("non-owner task code = %d, want %d", code, http.StatusNotFound)
	}
}
