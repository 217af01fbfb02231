package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/deadline"
)

type (
	deadlineApi struct {
		svc   deadline.Service
		views *viewRenderer
	}

	ToggleRequest struct {
		CurrentState bool `json:"current_state"`
	}
)

func registerDeadlineAPI(g *echo.Group, views *viewRenderer, svc deadline.Service) {
	api := deadlineApi{svc: svc, views: views}

	dg := g.Group("/deadlines")
	dg.GET("", api.query)
	dg.POST("", api.create)
	dg.GET("/priorities", api.priorities)
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id", api.update)
	dg.DELETE("/:id", api.destroy)
	dg.POST("/:id/toggle", api.toggle)
}

// Handlers

// query lists deadlines for the calendar. Filtered lists bypass the view cache.
func (api *deadlineApi) query(ctx echo.Context) error {
	filter := deadline.QueryFilter{CourseID: ctx.QueryParam("course_id")}
	if open := ctx.QueryParam("open"); open != "" {
		b, err := strconv.ParseBool(open)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "open", Error: "must be a boolean"})
		}
		filter.OpenOnly = b
	}

	load := func() (interface{}, error) {
		deadlines, err := api.svc.Query(ctx.Request().Context(), filter)
		return deadlines, errors.Wrap(err, "querying deadlines")
	}
	if filter.CourseID != "" || filter.OpenOnly {
		data, err := load()
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, data)
	}
	return api.views.render(ctx, core.ViewCalendar, load)
}

func (api *deadlineApi) create(ctx echo.Context) error {
	var data deadline.NewDeadline
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDeadline")
	}
	d, err := api.svc.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding deadline")
	}
	return success(ctx, http.StatusCreated, "Deadline added successfully!", d)
}

func (api *deadlineApi) retrieve(ctx echo.Context) error {
	d, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting deadline")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *deadlineApi) update(ctx echo.Context) error {
	var data deadline.UpdateDeadline
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDeadline")
	}
	d, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating deadline")
	}
	return success(ctx, http.StatusOK, "Deadline updated.", d)
}

func (api *deadlineApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting deadline")
	}
	return success(ctx, http.StatusOK, "Deadline deleted.", nil)
}

func (api *deadlineApi) toggle(ctx echo.Context) error {
	var data ToggleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ToggleRequest")
	}
	d, err := api.svc.ToggleCompletion(ctx.Request().Context(), ctx.Param("id"), data.CurrentState)
	if err != nil {
		return errors.Wrap(err, "toggling deadline")
	}
	return success(ctx, http.StatusOK, "Deadline updated.", d)
}

// priorities never fails on delegate errors: the summary falls back to a neutral text.
func (api *deadlineApi) priorities(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.PrioritySummary(ctx.Request().Context()))
}
