package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hanslwng/taskmatrix/core/course"
)

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g *echo.Group, sessmw []echo.MiddlewareFunc, svc *course.Service) {
	api := courseApi{svc: svc}

	cg := g.Group("/courses", sessmw...)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.DELETE("/:id", api.destroy)
}

func (api *courseApi) query(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	courses, err := api.svc.Query(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data, sess.UserID)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, CreateCourseResponse{Success: true, CourseID: crs.ID})
}

func (api *courseApi) destroy(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	affected, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), sess.UserID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, DeleteCourseResponse{Success: true, AffectedRows: affected})
}

type (
	CreateCourseResponse struct {
		Success  bool   `json:"success"`
		CourseID string `json:"course_id"`
	}

	DeleteCourseResponse struct {
		Success      bool  `json:"success"`
		AffectedRows int64 `json:"affected_rows"`
	}
)
