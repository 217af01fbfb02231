package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/journal"
)

type journalApi struct {
	svc   journal.Service
	views *viewRenderer
}

func registerJournalAPI(g *echo.Group, views *viewRenderer, svc journal.Service) {
	api := journalApi{svc: svc, views: views}

	jg := g.Group("/journal")
	jg.GET("", api.query)
	jg.PUT("", api.save)
	jg.GET("/:date", api.retrieve)
}

// Handlers

func (api *journalApi) query(ctx echo.Context) error {
	return api.views.render(ctx, core.ViewJournal, func() (interface{}, error) {
		entries, err := api.svc.QueryAll(ctx.Request().Context())
		return entries, errors.Wrap(err, "querying journal entries")
	})
}

func (api *journalApi) save(ctx echo.Context) error {
	var data journal.SaveEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveEntry")
	}
	e, err := api.svc.Save(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving journal entry")
	}
	return success(ctx, http.StatusOK, "Entry saved!", e)
}

func (api *journalApi) retrieve(ctx echo.Context) error {
	e, err := api.svc.GetByDate(ctx.Request().Context(), ctx.Param("date"))
	if err != nil {
		return errors.Wrap(err, "getting journal entry")
	}
	return ctx.JSON(http.StatusOK, e)
}
