package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core"
	"github.com/hanslwng/taskmatrix/core/task"
)

type taskApi struct {
	svc *task.Service
}

func registerTaskAPI(g *echo.Group, sessmw []echo.MiddlewareFunc, svc *task.Service) {
	api := taskApi{svc: svc}

	tg := g.Group("/tasks", sessmw...)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.PUT("/:id/completed", api.setCompleted)
	tg.DELETE("/:id", api.destroy)
}

func (api *taskApi) query(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	tasks, err := api.svc.Query(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) create(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tsk, err := api.svc.Create(ctx.Request().Context(), data, sess.UserID)
	if err != nil {
		if errors.Cause(err) == task.ErrCourseNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: task.ErrCourseNotFound.Error()})
		}
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, CreateTaskResponse{Success: true, TaskID: tsk.ID})
}

func (api *taskApi) setCompleted(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data SetCompletedRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetCompletedRequest")
	}

	if err := api.svc.SetCompleted(ctx.Request().Context(), ctx.Param("id"), sess.UserID, data.Completed); err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (api *taskApi) destroy(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), sess.UserID); err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting task")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

type (
	CreateTaskResponse struct {
		Success bool   `json:"success"`
		TaskID  string `json:"task_id"`
	}

	SetCompletedRequest struct {
		Completed bool `json:"completed" form:"completed"`
	}
)
