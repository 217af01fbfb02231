package skill

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
)

var ErrNotFound = core.NewNotFoundError("skill", "")

type (
	Repository interface {
		// CreateSkill inserts the skill and its first confidence log in one transaction.
		CreateSkill(ctx context.Context, s Skill, log ConfidenceLog) (Skill, error)
		UpdateSkill(ctx context.Context, s Skill) (Skill, error)
		// UpdateConfidence sets latest_confidence and appends the log in one transaction.
		UpdateConfidence(ctx context.Context, log ConfidenceLog) (Skill, error)
		DeleteSkill(ctx context.Context, id string) error
		GetSkill(ctx context.Context, id string) (Skill, error)
		QuerySkills(ctx context.Context) ([]Skill, error)
		// QueryConfidenceLogs returns the history of a skill, oldest first.
		QueryConfidenceLogs(ctx context.Context, skillID string) ([]ConfidenceLog, error)
	}

	Service interface {
		Add(ctx context.Context, ns NewSkill) (Skill, error)
		UpdateDetails(ctx context.Context, id string, us UpdateSkill) (Skill, error)
		UpdateConfidence(ctx context.Context, id string, uc UpdateConfidence) (Skill, error)
		Delete(ctx context.Context, id string) error
		QueryAll(ctx context.Context) ([]Skill, error)
		History(ctx context.Context, id string) ([]ConfidenceLog, error)
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
	core.InvalidateViews(ctx, svc.cache, svc.logger, core.ViewSkills)
}

func (svc *service) Add(ctx context.Context, ns NewSkill) (Skill, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Skill{}, err
	}
	now := svc.nowFunc().UTC()
	s := Skill{
		ID:               uuid.NewString(),
		Name:             ns.Name,
		Type:             ns.Type,
		Notes:            null.StringFromPtr(core.NullableString(ns.Notes)),
		LatestConfidence: ns.Confidence,
		CreatedAt:        now,
	}
	log := ConfidenceLog{
		ID:              uuid.NewString(),
		SkillID:         s.ID,
		ConfidenceLevel: ns.Confidence,
		CreatedAt:       now,
	}

	s, err := svc.repo.CreateSkill(ctx, s, log)
	if err != nil {
		return Skill{}, errors.Wrap(err, "creating skill")
	}
	svc.invalidate(ctx)
	return s, nil
}

func (svc *service) UpdateDetails(ctx context.Context, id string, us UpdateSkill) (Skill, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Skill{}, err
	}
	s, err := svc.repo.UpdateSkill(ctx, Skill{
		ID:    id,
		Name:  us.Name,
		Type:  us.Type,
		Notes: null.StringFromPtr(core.NullableString(us.Notes)),
	})
	if err != nil {
		return Skill{}, errors.Wrap(err, "updating skill")
	}
	svc.invalidate(ctx)
	return s, nil
}

func (svc *service) UpdateConfidence(ctx context.Context, id string, uc UpdateConfidence) (Skill, error) {
	if err := uc.Validate(svc.validate); err != nil {
		return Skill{}, err
	}
	s, err := svc.repo.UpdateConfidence(ctx, ConfidenceLog{
		ID:              uuid.NewString(),
		SkillID:         id,
		ConfidenceLevel: uc.Level,
		CreatedAt:       svc.nowFunc().UTC(),
	})
	if err != nil {
		return Skill{}, errors.Wrap(err, "updating confidence")
	}
	svc.invalidate(ctx)
	return s, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteSkill(ctx, id); err != nil {
		return errors.Wrap(err, "deleting skill")
	}
	svc.invalidate(ctx)
	return nil
}

func (svc *service) QueryAll(ctx context.Context) ([]Skill, error) {
	return svc.repo.QuerySkills(ctx)
}

func (svc *service) History(ctx context.Context, id string) ([]ConfidenceLog, error) {
	if _, err := svc.repo.GetSkill(ctx, id); err != nil {
		return nil, errors.Wrap(err, "getting skill")
	}
	return svc.repo.QueryConfidenceLogs(ctx, id)
}
