package course

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("course", "")
	ErrModuleNotFound  = core.NewNotFoundError("module", "")
	ErrSessionNotFound = core.NewNotFoundError("session", "")
)

type (
	Repository interface {
		CreateModule(ctx context.Context, mod Module) (Module, error)
		QueryModules(ctx context.Context) ([]Module, error)
		GetModule(ctx context.Context, id string) (Module, error)

		CreateCourse(ctx context.Context, c Course) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		// QueryCourses returns all courses ordered by code.
		QueryCourses(ctx context.Context) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		GetCourseByCode(ctx context.Context, code string) (Course, error)

		CreateSession(ctx context.Context, s Session) (Session, error)
		// QuerySessions returns the sessions of the given courses (all when none given), newest first.
		QuerySessions(ctx context.Context, courseIDs ...string) ([]Session, error)
		DeleteSession(ctx context.Context, id string) (Session, error)
	}

	Service interface {
		AddModule(ctx context.Context, nm NewModule) (Module, error)
		QueryModules(ctx context.Context) ([]Module, error)

		Add(ctx context.Context, nc NewCourse) (Course, error)
		Update(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		QueryAll(ctx context.Context) ([]Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		GetByCode(ctx context.Context, code string) (Course, error)
		QueryCards(ctx context.Context) ([]Card, error)
		GetDetail(ctx context.Context, id string) (Detail, error)

		AddSession(ctx context.Context, ns NewSession) (Session, error)
		DeleteSession(ctx context.Context, id string) (Session, error)
	}

	service struct {
		repo     Repository
		validate *validator.Validate
		cache    core.ViewCache
		logger   core.Logger
		nowFunc  func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, validate *validator.Validate, cache core.ViewCache, logger core.Logger) Service {
	return &service{
		repo:     repo,
		validate: validate,
		cache:    cache,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

func (svc *service) invalidate(ctx context.Context, courseIDs ...string) {
	keys := []string{core.ViewCourses, core.ViewDashboard}
	for _, id := range courseIDs {
		keys = append(keys, core.CourseView(id))
	}
	core.InvalidateViews(ctx, svc.cache, svc.logger, keys...)
}

func (svc *service) AddModule(ctx context.Context, nm NewModule) (Module, error) {
	if err := nm.Validate(svc.validate); err != nil {
		return Module{}, err
	}
	mod, err := svc.repo.CreateModule(ctx, Module{
		ID:        uuid.NewString(),
		Title:     nm.Title,
		Semester:  null.StringFromPtr(core.NullableString(nm.Semester)),
		CreatedAt: svc.nowFunc().UTC(),
	})
	if err != nil {
		return Module{}, errors.Wrap(err, "creating module")
	}
	core.InvalidateViews(ctx, svc.cache, svc.logger, core.ViewCourses)
	return mod, nil
}

func (svc *service) QueryModules(ctx context.Context) ([]Module, error) {
	return svc.repo.QueryModules(ctx)
}

func (svc *service) checkModule(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := svc.repo.GetModule(ctx, id); err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(err, core.FieldError{Field: "module_id", Error: "module not found"})
		}
		return errors.Wrap(err, "getting module")
	}
	return nil
}

func (svc *service) Add(ctx context.Context, nc NewCourse) (Course, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	if err := svc.checkModule(ctx, nc.ModuleID); err != nil {
		return Course{}, err
	}

	c, err := svc.repo.CreateCourse(ctx, Course{
		ID:                            uuid.NewString(),
		Title:                         nc.Title,
		Code:                          nc.Code,
		Professor:                     null.StringFromPtr(core.NullableString(nc.Professor)),
		Term:                          null.StringFromPtr(core.NullableString(nc.Term)),
		TotalScheduledSessions:        nc.TotalScheduledSessions,
		MandatoryAttendancePercentage: nc.mandatoryAttendance(),
		ModuleID:                      null.StringFromPtr(core.NullableString(nc.ModuleID)),
		CreatedAt:                     svc.nowFunc().UTC(),
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	svc.invalidate(ctx)
	return c, nil
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	if err := uc.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	if err := svc.checkModule(ctx, uc.ModuleID); err != nil {
		return Course{}, err
	}

	c, err := svc.repo.UpdateCourse(ctx, Course{
		ID:                            id,
		Title:                         uc.Title,
		Code:                          uc.Code,
		Professor:                     null.StringFromPtr(core.NullableString(uc.Professor)),
		Term:                          null.StringFromPtr(core.NullableString(uc.Term)),
		TotalScheduledSessions:        uc.TotalScheduledSessions,
		MandatoryAttendancePercentage: uc.mandatoryAttendance(),
		ModuleID:                      null.StringFromPtr(core.NullableString(uc.ModuleID)),
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "updating course")
	}
	svc.invalidate(ctx, id)
	return c, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) GetByCode(ctx context.Context, code string) (Course, error) {
	return svc.repo.GetCourseByCode(ctx, strings.ToUpper(core.CleanString(code)))
}

func (svc *service) QueryCards(ctx context.Context) ([]Card, error) {
	courses, err := svc.repo.QueryCourses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	sessions, err := svc.repo.QuerySessions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}

	byCourse := make(map[string][]Session, len(courses))
	for _, s := range sessions {
		byCourse[s.CourseID] = append(byCourse[s.CourseID], s)
	}
	cards := make([]Card, 0, len(courses))
	for _, c := range courses {
		cards = append(cards, Card{Course: c, Stats: c.Stats(byCourse[c.ID])})
	}
	return cards, nil
}

func (svc *service) GetDetail(ctx context.Context, id string) (Detail, error) {
	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Detail{}, errors.Wrap(err, "getting course")
	}
	sessions, err := svc.repo.QuerySessions(ctx, id)
	if err != nil {
		return Detail{}, errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []Session{}
	}

	detail := Detail{
		Card:     Card{Course: c, Stats: c.Stats(sessions)},
		Sessions: sessions,
	}
	if c.ModuleID.Valid {
		mod, err := svc.repo.GetModule(ctx, c.ModuleID.String)
		if err != nil && !core.IsNotFound(err) {
			return Detail{}, errors.Wrap(err, "getting module")
		}
		if err == nil {
			detail.Module = &mod
		}
	}
	return detail, nil
}

// AddSession records attendance. Several sessions may share the same course and date.
func (svc *service) AddSession(ctx context.Context, ns NewSession) (Session, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Session{}, err
	}
	if _, err := svc.repo.GetCourse(ctx, ns.CourseID); err != nil {
		return Session{}, errors.Wrap(err, "getting course")
	}

	date, _ := core.ParseDay(ns.Date) // validated
	s, err := svc.repo.CreateSession(ctx, Session{
		ID:        uuid.NewString(),
		CourseID:  ns.CourseID,
		Date:      date,
		Status:    ns.Status,
		CreatedAt: svc.nowFunc().UTC(),
	})
	if err != nil {
		return Session{}, errors.Wrap(err, "creating session")
	}
	svc.invalidate(ctx, s.CourseID)
	return s, nil
}

func (svc *service) DeleteSession(ctx context.Context, id string) (Session, error) {
	s, err := svc.repo.DeleteSession(ctx, id)
	if err != nil {
		return Session{}, errors.Wrap(err, "deleting session")
	}
	svc.invalidate(ctx, s.CourseID)
	return s, nil
}
