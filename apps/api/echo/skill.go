package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/skill"
)

type skillApi struct {
	svc   skill.Service
	views *viewRenderer
}

func registerSkillAPI(g *echo.Group, views *viewRenderer, svc skill.Service) {
	api := skillApi{svc: svc, views: views}

	sg := g.Group("/skills")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
	sg.PUT("/:id/confidence", api.updateConfidence)
	sg.GET("/:id/history", api.history)
}

// Handlers

func (api *skillApi) query(ctx echo.Context) error {
	return api.views.render(ctx, core.ViewSkills, func() (interface{}, error) {
		skills, err := api.svc.QueryAll(ctx.Request().Context())
		return skills, errors.Wrap(err, "querying skills")
	})
}

func (api *skillApi) create(ctx echo.Context) error {
	var data skill.NewSkill
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSkill")
	}
	s, err := api.svc.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding skill")
	}
	return success(ctx, http.StatusCreated, "Skill added successfully!", s)
}

func (api *skillApi) update(ctx echo.Context) error {
	var data skill.UpdateSkill
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSkill")
	}
	s, err := api.svc.UpdateDetails(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating skill")
	}
	return success(ctx, http.StatusOK, "Skill updated.", s)
}

func (api *skillApi) updateConfidence(ctx echo.Context) error {
	var data skill.UpdateConfidence
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateConfidence")
	}
	s, err := api.svc.UpdateConfidence(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating skill confidence")
	}
	return success(ctx, http.StatusOK, "Confidence updated.", s)
}

func (api *skillApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting skill")
	}
	return success(ctx, http.StatusOK, "Skill deleted.", nil)
}

func (api *skillApi) history(ctx echo.Context) error {
	logs, err := api.svc.History(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying confidence history")
	}
	return ctx.JSON(http.StatusOK, logs)
}
