package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/casestudy"
)

type caseStudyApi struct {
	svc   casestudy.Service
	views *viewRenderer
}

func registerCaseStudyAPI(g *echo.Group, views *viewRenderer, svc casestudy.Service) {
	api := caseStudyApi{svc: svc, views: views}

	cg := g.Group("/case-studies")
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.POST("/frameworks", api.recommendFrameworks)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.POST("/:id/rate", api.rate)
}

// rateRequested tells whether a save should be followed by an AI rating (`?rate=false` opts out).
func rateRequested(ctx echo.Context) bool {
	return ctx.QueryParam("rate") != "false"
}

// saved answers a successful save, rating the case study first when requested.
// A failed rating keeps the saved record and answers a neutral message.
func (api *caseStudyApi) saved(ctx echo.Context, code int, message string, cs casestudy.CaseStudy) error {
	if !rateRequested(ctx) {
		return success(ctx, code, message, cs)
	}
	rated, ok, err := api.svc.Rate(ctx.Request().Context(), cs.ID)
	if err != nil {
		return errors.Wrap(err, "rating case study")
	}
	if !ok {
		return success(ctx, code, casestudy.RateFailedMessage, rated)
	}
	return success(ctx, code, message, rated)
}

// Handlers

func (api *caseStudyApi) query(ctx echo.Context) error {
	return api.views.render(ctx, core.ViewCaseStudies, func() (interface{}, error) {
		studies, err := api.svc.QueryAll(ctx.Request().Context())
		return studies, errors.Wrap(err, "querying case studies")
	})
}

func (api *caseStudyApi) create(ctx echo.Context) error {
	var data casestudy.Data
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to casestudy.Data")
	}
	cs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating case study")
	}
	return api.saved(ctx, http.StatusCreated, "Successfully created case study.", cs)
}

func (api *caseStudyApi) retrieve(ctx echo.Context) error {
	id := ctx.Param("id")
	return api.views.render(ctx, core.CaseStudyView(id), func() (interface{}, error) {
		cs, err := api.svc.GetByID(ctx.Request().Context(), id)
		return cs, errors.Wrap(err, "getting case study")
	})
}

func (api *caseStudyApi) update(ctx echo.Context) error {
	var data casestudy.Data
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to casestudy.Data")
	}
	cs, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating case study")
	}
	return api.saved(ctx, http.StatusOK, "Successfully updated case study.", cs)
}

func (api *caseStudyApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting case study")
	}
	return success(ctx, http.StatusOK, "Successfully deleted case study.", nil)
}

func (api *caseStudyApi) rate(ctx echo.Context) error {
	cs, ok, err := api.svc.Rate(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "rating case study")
	}
	if !ok {
		return ctx.JSON(http.StatusOK, SuccessResponse{Message: casestudy.RateFailedMessage, Data: cs})
	}
	return success(ctx, http.StatusOK, casestudy.RatedMessage, cs)
}

func (api *caseStudyApi) recommendFrameworks(ctx echo.Context) error {
	var data casestudy.FrameworkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FrameworkRequest")
	}
	frameworks, err := api.svc.RecommendFrameworks(ctx.Request().Context(), data)
	if err != nil {
		if core.IsDelegateError(err) {
			ctx.Logger().Warn(err)
			return ctx.JSON(http.StatusOK, SuccessResponse{Message: casestudy.FrameworksFallback})
		}
		return errors.Wrap(err, "recommending frameworks")
	}
	return success(ctx, http.StatusOK, "Frameworks recommended.", frameworks)
}
