package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hanslwng/taskmatrix/core/course"
	"github.com/hanslwng/taskmatrix/core/task"
)

func Test_courseApi(t *testing.T) {
	env := setup(t)
	usr := env.createUser(t, "Awe", "awe@test.cd")
	cookie := env.sessionCookie(t, usr)
	other := env.createUser(t, "Other", "other@test.cd")
	otherCookie := env.sessionCookie(t, other)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/courses", nil)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	var courseID string
	t.Run("create", func(t *testing.T) {
		body := marshallObj(t, course.NewCourse{Code: "CS101", Name: "Intro to Databases", Professor: "Dr. Codd"})
		req, rec := newRequest(http.MethodPost, "/v1/courses", cookie, body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d, want %d; body = %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var resp CreateCourseResponse
		decodeBody(t, rec, &resp)
		if !resp.Success || resp.CourseID == "" {
			t.Fatalf("create response = %+v", resp)
		}
		courseID = resp.CourseID
	})

	t.Run("create missing fields", func(t *testing.T) {
		body := marshallObj(t, course.NewCourse{Code: "CS102"})
		req, rec := newRequest(http.MethodPost, "/v1/courses", cookie, body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("query", func(t *testing.T) {
		body := marshallObj(t, course.NewCourse{Code: "CS201", Name: "Operating Systems", Professor: "Dr. Tanen"})
		req, rec := newRequest(http.MethodPost, "/v1/courses", cookie, body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create code = %d; body = %s", rec.Code, rec.Body.String())
		}
		var created CreateCourseResponse
		decodeBody(t, rec, &created)

		req, rec = newRequest(http.MethodGet, "/v1/courses", cookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want %d", rec.Code, http.StatusOK)
		}
		var courses []course.Course
		decodeBody(t, rec, &courses)
		ids := make([]string, 0, len(courses))
		for _, crs := range courses {
			ids = append(ids, crs.ID)
		}
		assert.ElementsMatch(t, []string{courseID, created.CourseID}, ids)

		// clear the extra course so the delete runs below still see one
		req, rec = newRequest(http.MethodDelete, "/v1/courses/"+created.CourseID, cookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("cleanup delete code = %d; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("query scoped to owner", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/courses", otherCookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want %d", rec.Code, http.StatusOK)
		}
		var courses []course.Course
		decodeBody(t, rec, &courses)
		if len(courses) != 0 {
			t.Errorf("other owner sees %d course(s), want 0", len(courses))
		}
	})

	t.Run("delete by non-owner", func(t *testing.T) {
		req, rec := newRequest(http.MethodDelete, "/v1/courses/"+courseID, otherCookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("delete refused while tasks remain", func(t *testing.T) {
		body := marshallObj(t, task.NewTask{Name: "HW 1", CourseID: courseID, Tag: "homework", Deadline: deadline()})
		req, rec := newRequest(http.MethodPost, "/v1/tasks", cookie, body)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("task create code = %d; body = %s", rec.Code, rec.Body.String())
		}
		var taskResp CreateTaskResponse
		decodeBody(t, rec, &taskResp)

		req, rec = newRequest(http.MethodDelete, "/v1/courses/"+courseID, cookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("code = %d, want %d; body = %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}

		// clear the task, then the delete goes through
		req, rec = newRequest(http.MethodDelete, "/v1/tasks/"+taskResp.TaskID, cookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("task delete code = %d; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newRequest(http.MethodDelete, "/v1/courses/"+courseID, cookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp DeleteCourseResponse
		decodeBody(t, rec, &resp)
		if !resp.Success || resp.AffectedRows != 1 {
			t.Errorf("delete response = %+v", resp)
		}

		req, rec = newRequest(http.MethodDelete, "/v1/courses/"+courseID, cookie)
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("second delete code = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}
