package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/course"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/core/goal"
)

// Dashboard is the home page aggregate.
type Dashboard struct {
	Courses            []course.Card     `json:"courses"`
	Deadlines          deadline.Groups   `json:"deadlines"`
	DeadlineCompletion deadline.Progress `json:"deadline_completion"`
	GoalCompletion     goal.Progress     `json:"goal_completion"`
}

// dashboardStats is the cached part of the Dashboard.
type dashboardStats struct {
	Courses            []course.Card     `json:"courses"`
	DeadlineCompletion deadline.Progress `json:"deadline_completion"`
	GoalCompletion     goal.Progress     `json:"goal_completion"`
}

type dashboardApi struct {
	courseSvc   course.Service
	deadlineSvc deadline.Service
	goalSvc     goal.Service
	views       *viewRenderer
}

func registerDashboardAPI(g *echo.Group, views *viewRenderer, courseSvc course.Service, deadlineSvc deadline.Service, goalSvc goal.Service) {
	api := dashboardApi{
		courseSvc:   courseSvc,
		deadlineSvc: deadlineSvc,
		goalSvc:     goalSvc,
		views:       views,
	}
	g.GET("/dashboard", api.retrieve)
}

// retrieve serves the dashboard. Deadline urgency depends on the clock, so only the
// other sections come from the view cache.
func (api *dashboardApi) retrieve(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var stats dashboardStats
	err := api.views.fetch(reqCtx, core.ViewDashboard, &stats, func() (interface{}, error) {
		cards, err := api.courseSvc.QueryCards(reqCtx)
		if err != nil {
			return nil, errors.Wrap(err, "querying course cards")
		}
		completion, err := api.deadlineSvc.Completion(reqCtx)
		if err != nil {
			return nil, errors.Wrap(err, "computing deadline completion")
		}
		goals, err := api.goalSvc.Progress(reqCtx)
		if err != nil {
			return nil, errors.Wrap(err, "computing goal completion")
		}
		return dashboardStats{Courses: cards, DeadlineCompletion: completion, GoalCompletion: goals}, nil
	})
	if err != nil {
		return err
	}

	groups, err := api.deadlineSvc.Upcoming(reqCtx)
	if err != nil {
		return errors.Wrap(err, "grouping deadlines")
	}

	return ctx.JSON(http.StatusOK, Dashboard{
		Courses:            stats.Courses,
		Deadlines:          groups,
		DeadlineCompletion: stats.DeadlineCompletion,
		GoalCompletion:     stats.GoalCompletion,
	})
}
