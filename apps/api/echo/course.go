package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/course"
)

type courseApi struct {
	svc   course.Service
	views *viewRenderer
}

func registerCourseAPI(g *echo.Group, views *viewRenderer, svc course.Service) {
	api := courseApi{svc: svc, views: views}

	g.GET("/modules", api.queryModules)
	g.POST("/modules", api.createModule)

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.POST("/:id/sessions", api.addSession)

	g.DELETE("/sessions/:id", api.deleteSession)
}

// Handlers

func (api *courseApi) queryModules(ctx echo.Context) error {
	mods, err := api.svc.QueryModules(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	return ctx.JSON(http.StatusOK, mods)
}

func (api *courseApi) createModule(ctx echo.Context) error {
	var data course.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	mod, err := api.svc.AddModule(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding module")
	}
	return success(ctx, http.StatusCreated, "Module added successfully!", mod)
}

func (api *courseApi) query(ctx echo.Context) error {
	return api.views.render(ctx, core.ViewCourses, func() (interface{}, error) {
		cards, err := api.svc.QueryCards(ctx.Request().Context())
		return cards, errors.Wrap(err, "querying course cards")
	})
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	c, err := api.svc.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding course")
	}
	return success(ctx, http.StatusCreated, "Course added successfully!", c)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id := ctx.Param("id")
	return api.views.render(ctx, core.CourseView(id), func() (interface{}, error) {
		detail, err := api.svc.GetDetail(ctx.Request().Context(), id)
		return detail, errors.Wrap(err, "getting course detail")
	})
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return success(ctx, http.StatusOK, "Course updated successfully!", c)
}

func (api *courseApi) addSession(ctx echo.Context) error {
	var data course.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	data.CourseID = ctx.Param("id")
	sess, err := api.svc.AddSession(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding session")
	}
	return success(ctx, http.StatusCreated, "Session added!", sess)
}

func (api *courseApi) deleteSession(ctx echo.Context) error {
	if _, err := api.svc.DeleteSession(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return success(ctx, http.StatusOK, "Session deleted.", nil)
}
