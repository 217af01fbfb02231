package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/goal"
)

type goalApi struct {
	svc   goal.Service
	views *viewRenderer
}

func registerGoalAPI(g *echo.Group, views *viewRenderer, svc goal.Service) {
	api := goalApi{svc: svc, views: views}

	og := g.Group("/goals")
	og.GET("", api.query)
	og.POST("", api.create)
	og.GET("/:id", api.retrieve)
	og.DELETE("/:id", api.destroy)

	g.POST("/key-results/:id/toggle", api.toggleKeyResult)
}

// Handlers

func (api *goalApi) query(ctx echo.Context) error {
	return api.views.render(ctx, core.ViewGoals, func() (interface{}, error) {
		objs, err := api.svc.QueryAll(ctx.Request().Context())
		return objs, errors.Wrap(err, "querying objectives")
	})
}

func (api *goalApi) create(ctx echo.Context) error {
	var data goal.NewObjective
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewObjective")
	}
	obj, err := api.svc.AddObjective(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding objective")
	}
	return success(ctx, http.StatusCreated, "Objective added successfully!", obj)
}

func (api *goalApi) retrieve(ctx echo.Context) error {
	obj, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting objective")
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *goalApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteObjective(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting objective")
	}
	return success(ctx, http.StatusOK, "Objective deleted.", nil)
}

func (api *goalApi) toggleKeyResult(ctx echo.Context) error {
	var data goal.ToggleKeyResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ToggleKeyResult")
	}
	kr, err := api.svc.ToggleKeyResult(ctx.Request().Context(), ctx.Param("id"), data.CurrentState)
	if err != nil {
		return errors.Wrap(err, "toggling key result")
	}
	return success(ctx, http.StatusOK, "Key result updated.", kr)
}
