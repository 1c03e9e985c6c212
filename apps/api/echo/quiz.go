package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/coursework/core/quiz"
)

type quizApi struct {
	service quiz.Service
}

func registerQuizAPI(g *echo.Group, svc quiz.Service) {
	api := quizApi{service: svc}

	qg := g.Group("/quizzes/:id")
	qg.POST("/attempts", api.attemptCreate)
	qg.GET("/attempts", api.attemptQuery)
}

// Handlers

func (api *quizApi) attemptCreate(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	data := new(quiz.NewAttempt)
	if err = ctx.Bind(data); err != nil {
		return err
	}

	res, err := api.service.Submit(ctx.Request().Context(), actor, ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *quizApi) attemptQuery(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	attempts, err := api.service.Results(ctx.Request().Context(), actor, ctx.Param("id"), ctx.QueryParam("student_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, attempts)
}
