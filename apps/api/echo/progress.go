package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursework/core/completion"
	"github.com/trezcool/coursework/core/enrollment"
)

type progressApi struct {
	enrollments enrollment.Service
	completions completion.Service
}

func registerProgressAPI(g *echo.Group, enrollments enrollment.Service, completions completion.Service) {
	api := progressApi{enrollments: enrollments, completions: completions}

	g.POST("/lessons/:id/completion", api.lessonMarkComplete)
	g.DELETE("/lessons/:id/completion", api.lessonUnmarkComplete)

	g.GET("/courses/:id/progress", api.courseProgress)
	g.GET("/courses/:id/enrollments", api.courseEnrollments, adminMiddleware())
}

// Handlers

func (api *progressApi) lessonMarkComplete(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	res, err := api.completions.MarkComplete(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressApi) lessonUnmarkComplete(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	res, err := api.completions.UnmarkComplete(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

// courseProgress returns the stored enrollment of the actor. Admins may name a student.
func (api *progressApi) courseProgress(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	studentID := actor.ID
	if sid := ctx.QueryParam("student_id"); sid != "" && sid != actor.ID {
		if !actor.IsAdmin() {
			return errHttpForbidden
		}
		studentID = sid
	}

	enr, err := api.enrollments.Find(ctx.Request().Context(), studentID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, enrollment.ErrNotFound) {
			return enrollment.ErrNotEnrolled
		}
		return err
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *progressApi) courseEnrollments(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	enrs, err := api.enrollments.Query(
		ctx.Request().Context(),
		&enrollment.QueryFilter{CourseID: ctx.Param("id")},
		ord.Orderings...,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, enrs)
}
