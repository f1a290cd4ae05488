package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core/reminder"
	"github.com/hanslwng/taskmatrix/core/task"
)

type reminderApi struct {
	svc     *reminder.Service
	taskSvc *task.Service
}

func registerReminderAPI(g *echo.Group, sessmw []echo.MiddlewareFunc, svc *reminder.Service, taskSvc *task.Service) {
	api := reminderApi{svc: svc, taskSvc: taskSvc}

	rg := g.Group("/reminders", sessmw...)
	rg.POST("", api.schedule)
}

func (api *reminderApi) schedule(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data reminder.ScheduleReminder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScheduleReminder")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	// the task must exist and belong to the session user
	if _, err := api.taskSvc.GetByID(ctx.Request().Context(), data.TaskID, sess.UserID); err != nil {
		if errors.Cause(err) == task.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding task by ID")
	}

	if _, err := api.svc.Schedule(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "scheduling reminder")
	}
	return ctx.JSON(http.StatusCreated, SuccessResponse{Success: true})
}
