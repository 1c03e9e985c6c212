package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/coursework/core/submission"
)

type submissionApi struct {
	service submission.Service
}

func registerSubmissionAPI(g *echo.Group, svc submission.Service) {
	api := submissionApi{service: svc}

	ag := g.Group("/assignments/:id/submission")
	ag.PUT("", api.submissionUpsert)
	ag.DELETE("", api.submissionDestroy)
	ag.GET("", api.submissionRetrieve)

	g.POST("/submissions/:id/grade", api.submissionGrade, staffMiddleware())
}

// Handlers

func (api *submissionApi) submissionUpsert(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	data := new(submission.NewSubmission)
	if err = ctx.Bind(data); err != nil {
		return err
	}

	res, err := api.service.Submit(ctx.Request().Context(), actor, ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *submissionApi) submissionDestroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	res, err := api.service.Delete(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *submissionApi) submissionRetrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	detail, err := api.service.Get(ctx.Request().Context(), actor, ctx.Param("id"), ctx.QueryParam("student_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *submissionApi) submissionGrade(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	data := new(submission.GradeSubmission)
	if err = ctx.Bind(data); err != nil {
		return err
	}

	sub, err := api.service.Grade(ctx.Request().Context(), actor, ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}
