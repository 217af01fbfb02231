package deadline

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("deadline", "")
	ErrCourseNotFound = core.NewNotFoundError("course", "")
)

type (
	Repository interface {
		CreateDeadline(ctx context.Context, d Deadline) (Deadline, error)
		UpdateDeadline(ctx context.Context, d Deadline) (Deadline, error)
		DeleteDeadline(ctx context.Context, id string) (Deadline, error)
		SetDeadlineCompleted(ctx context.Context, id string, completed bool) (Deadline, error)
		GetDeadline(ctx context.Context, id string) (Deadline, error)
		// QueryDeadlines returns deadlines with their course, ordered by due date then due time (nulls first).
		QueryDeadlines(ctx context.Context, filter QueryFilter) ([]Deadline, error)
		GetCourseRef(ctx context.Context, courseID string) (CourseRef, error)
	}

	Service interface {
		Add(ctx context.Context, nd NewDeadline) (Deadline, error)
		Update(ctx context.Context, id string, ud UpdateDeadline) (Deadline, error)
		Delete(ctx context.Context, id string) (Deadline, error)
		ToggleCompletion(ctx context.Context, id string, currentState bool) (Deadline, error)
		GetByID(ctx context.Context, id string) (Deadline, error)
		Query(ctx context.Context, filter QueryFilter) ([]Deadline, error)
		DueBetween(ctx context.Context, from, to time.Time) ([]Deadline, error)
		Upcoming(ctx context.Context) (Groups, error)
		Completion(ctx context.Context) (Progress, error)
		PrioritySummary(ctx context.Context) PrioritySummary
	}

	service struct {
		repo        Repository
		prioritizer Prioritizer
		validate    *validator.Validate
		cache       core.ViewCache
		logger      core.Logger
		loc         *time.Location
		nowFunc     func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	prioritizer Prioritizer,
	validate *validator.Validate,
	cache core.ViewCache,
	logger core.Logger,
	conf *core.Config,
) Service {
	return NewServiceWithClock(repo, prioritizer, validate, cache, logger, conf, time.Now)
}

// NewServiceWithClock is NewService reading the current time from now.
func NewServiceWithClock(
	repo Repository,
	prioritizer Prioritizer,
	validate *validator.Validate,
	cache core.ViewCache,
	logger core.Logger,
	conf *core.Config,
	now func() time.Time,
) Service {
	return &service{
		repo:        repo,
		prioritizer: prioritizer,
		validate:    validate,
		cache:       cache,
		logger:      logger,
		loc:         conf.Location(),
		nowFunc:     now,
	}
}

func (svc *service) invalidate(ctx context.Context, courseIDs ...null.String) {
	keys := []string{core.ViewCalendar, core.ViewCourses, core.ViewDashboard}
	for _, id := range courseIDs {
		if id.Valid {
			keys = append(keys, core.CourseView(id.String))
		}
	}
	core.InvalidateViews(ctx, svc.cache, svc.logger, keys...)
}

// build validates nd and turns it into a Deadline, checking that its course exists.
func (svc *service) build(ctx context.Context, nd *NewDeadline) (Deadline, error) {
	if err := nd.Validate(svc.validate); err != nil {
		return Deadline{}, err
	}
	dueAt, err := nd.DueAt()
	if err != nil {
		return Deadline{}, core.NewValidationError(err, core.FieldError{Field: "due_date", Error: err.Error()})
	}

	d := Deadline{
		Title:       nd.Title,
		DueDate:     dueAt,
		DueTime:     null.StringFromPtr(core.NullableString(nd.DueTime)),
		Type:        nd.Type,
		Description: null.StringFromPtr(core.NullableString(nd.Description)),
	}
	if nd.Category == CategoryCourse {
		ref, err := svc.repo.GetCourseRef(ctx, nd.CourseID)
		if err != nil {
			return Deadline{}, errors.Wrap(err, "getting course")
		}
		d.CourseID = null.StringFrom(ref.ID)
		d.Course = &ref
	}
	return d, nil
}

func (svc *service) Add(ctx context.Context, nd NewDeadline) (Deadline, error) {
	d, err := svc.build(ctx, &nd)
	if err != nil {
		return Deadline{}, err
	}
	d.ID = uuid.NewString()
	d.CreatedAt = svc.nowFunc().UTC()

	d, err = svc.repo.CreateDeadline(ctx, d)
	if err != nil {
		return Deadline{}, errors.Wrap(err, "creating deadline")
	}
	svc.invalidate(ctx, d.CourseID)
	return d, nil
}

func (svc *service) Update(ctx context.Context, id string, ud UpdateDeadline) (Deadline, error) {
	d, err := svc.build(ctx, &ud)
	if err != nil {
		return Deadline{}, err
	}
	prev, err := svc.repo.GetDeadline(ctx, id)
	if err != nil {
		return Deadline{}, errors.Wrap(err, "getting deadline")
	}
	d.ID = id

	d, err = svc.repo.UpdateDeadline(ctx, d)
	if err != nil {
		return Deadline{}, errors.Wrap(err, "updating deadline")
	}
	svc.invalidate(ctx, prev.CourseID, d.CourseID)
	return d, nil
}

func (svc *service) Delete(ctx context.Context, id string) (Deadline, error) {
	d, err := svc.repo.DeleteDeadline(ctx, id)
	if err != nil {
		return Deadline{}, errors.Wrap(err, "deleting deadline")
	}
	svc.invalidate(ctx, d.CourseID)
	return d, nil
}

// ToggleCompletion sets is_completed to !currentState. Last write wins.
func (svc *service) ToggleCompletion(ctx context.Context, id string, currentState bool) (Deadline, error) {
	d, err := svc.repo.SetDeadlineCompleted(ctx, id, !currentState)
	if err != nil {
		return Deadline{}, errors.Wrap(err, "toggling deadline")
	}
	core.InvalidateViews(ctx, svc.cache, svc.logger, core.ViewCalendar, core.ViewDashboard)
	return d, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Deadline, error) {
	return svc.repo.GetDeadline(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Deadline, error) {
	return svc.repo.QueryDeadlines(ctx, filter)
}

// DueBetween returns the open deadlines due in [from, to].
func (svc *service) DueBetween(ctx context.Context, from, to time.Time) ([]Deadline, error) {
	return svc.repo.QueryDeadlines(ctx, QueryFilter{OpenOnly: true, DueFrom: from.UTC(), DueTo: to.UTC()})
}

func (svc *service) Upcoming(ctx context.Context) (Groups, error) {
	deadlines, err := svc.repo.QueryDeadlines(ctx, QueryFilter{OpenOnly: true})
	if err != nil {
		return Groups{}, errors.Wrap(err, "querying deadlines")
	}
	return GroupByUrgency(svc.nowFunc(), svc.loc, deadlines), nil
}

func (svc *service) Completion(ctx context.Context) (Progress, error) {
	deadlines, err := svc.repo.QueryDeadlines(ctx, QueryFilter{})
	if err != nil {
		return Progress{}, errors.Wrap(err, "querying deadlines")
	}
	return Completion(deadlines), nil
}

// PrioritySummary asks the Prioritizer to rank the open deadlines.
// It never fails: store or delegate errors are logged and a neutral summary is returned.
func (svc *service) PrioritySummary(ctx context.Context) PrioritySummary {
	fallback := PrioritySummary{OverallSummary: fallbackSummary, PrioritizedList: []RankedDeadline{}, Fallback: true}

	deadlines, err := svc.repo.QueryDeadlines(ctx, QueryFilter{OpenOnly: true, Limit: MaxPriorityInput})
	if err != nil {
		svc.logger.Error("querying deadlines for prioritization", errors.Wrap(err, "querying deadlines"))
		return fallback
	}
	if len(deadlines) == 0 {
		return PrioritySummary{OverallSummary: noDeadlinesSummary, PrioritizedList: []RankedDeadline{}}
	}

	req := NewPriorityRequest(svc.nowFunc().In(svc.loc), deadlines)
	summary, err := svc.prioritizer.Prioritize(ctx, req)
	if err == nil {
		err = summary.CheckShape()
	}
	if err != nil {
		svc.logger.Warn("deadline prioritization failed", core.NewDelegateError("prioritizer", err))
		return fallback
	}
	if summary.PrioritizedList == nil {
		summary.PrioritizedList = []RankedDeadline{}
	}
	return summary
}
