package goal

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
	ErrNotFound          = core.NewNotFoundError("objective", "")
	ErrKeyResultNotFound = core.NewNotFoundError("key result", "")
)

type (
	Repository interface {
		// CreateObjective inserts the objective and its key results in one transaction.
		CreateObjective(ctx context.Context, obj Objective) (Objective, error)
		// QueryObjectives returns objectives with their key results, newest first.
		QueryObjectives(ctx context.Context) ([]Objective, error)
		GetObjective(ctx context.Context, id string) (Objective, error)
		// DeleteObjective deletes the objective, its key results cascade.
		DeleteObjective(ctx context.Context, id string) error
		SetKeyResultCompleted(ctx context.Context, id string, completed bool) (KeyResult, error)
	}

	Service interface {
		AddObjective(ctx context.Context, no NewObjective) (Objective, error)
		QueryAll(ctx context.Context) ([]ObjectiveWithProgress, error)
		GetByID(ctx context.Context, id string) (Objective, error)
		DeleteObjective(ctx context.Context, id string) error
		ToggleKeyResult(ctx context.Context, id string, currentState bool) (KeyResult, error)
		Progress(ctx context.Context) (Progress, error)
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

func (svc *service) invalidate(ctx context.Context) {
	core.InvalidateViews(ctx, svc.cache, svc.logger, core.ViewGoals, core.ViewDashboard)
}

func (svc *service) AddObjective(ctx context.Context, no NewObjective) (Objective, error) {
	if err := no.Validate(svc.validate); err != nil {
		return Objective{}, err
	}

	now := svc.nowFunc().UTC()
	obj := Objective{
		ID:         uuid.NewString(),
		Title:      no.Title,
		Semester:   null.StringFromPtr(core.NullableString(no.Semester)),
		CreatedAt:  now,
		KeyResults: make([]KeyResult, 0, len(no.KeyResults)),
	}
	for _, desc := range no.KeyResults {
		obj.KeyResults = append(obj.KeyResults, KeyResult{
			ID:          uuid.NewString(),
			ObjectiveID: obj.ID,
			Description: desc,
			CreatedAt:   now,
		})
	}

	obj, err := svc.repo.CreateObjective(ctx, obj)
	if err != nil {
		return Objective{}, errors.Wrap(err, "creating objective")
	}
	svc.invalidate(ctx)
	return obj, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]ObjectiveWithProgress, error) {
	objs, err := svc.repo.QueryObjectives(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying objectives")
	}
	res := make([]ObjectiveWithProgress, 0, len(objs))
	for _, obj := range objs {
		res = append(res, ObjectiveWithProgress{Objective: obj, Progress: obj.Progress()})
	}
	return res, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Objective, error) {
	return svc.repo.GetObjective(ctx, id)
}

func (svc *service) DeleteObjective(ctx context.Context, id string) error {
	if err := svc.repo.DeleteObjective(ctx, id); err != nil {
		return errors.Wrap(err, "deleting objective")
	}
	svc.invalidate(ctx)
	return nil
}

// ToggleKeyResult sets is_completed to !currentState. Last write wins.
func (svc *service) ToggleKeyResult(ctx context.Context, id string, currentState bool) (KeyResult, error) {
	kr, err := svc.repo.SetKeyResultCompleted(ctx, id, !currentState)
	if err != nil {
		return KeyResult{}, errors.Wrap(err, "toggling key result")
	}
	svc.invalidate(ctx)
	return kr, nil
}

// Progress is the completion ratio of all key results.
func (svc *service) Progress(ctx context.Context) (Progress, error) {
	objs, err := svc.repo.QueryObjectives(ctx)
	if err != nil {
		return Progress{}, errors.Wrap(err, "querying objectives")
	}
	var krs []KeyResult
	for _, obj := range objs {
		krs = append(krs, obj.KeyResults...)
	}
	return KeyResultsProgress(krs), nil
}
