package casestudy

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
)

const (
	MaxScore = 5

	RatedMessage       = "Case study rated."
	RateFailedMessage  = "Case study saved. AI rating is unavailable right now, try again later."
	FrameworksFallback = "An error occurred while fetching framework recommendations."
)

var (
	ErrNotFound = core.NewNotFoundError("case study", "")

	errBadScorecard = errors.New("unexpected scorecard shape")
)

type (
	// FrameworkRecommender suggests business frameworks to analyse a case with.
	FrameworkRecommender interface {
		RecommendFrameworks(ctx context.Context, req FrameworkRequest) ([]string, error)
	}

	// Rater grades a case study analysis.
	Rater interface {
		Rate(ctx context.Context, cs CaseStudy) (Scorecard, error)
	}

	Repository interface {
		CreateCaseStudy(ctx context.Context, cs CaseStudy) (CaseStudy, error)
		UpdateCaseStudy(ctx context.Context, cs CaseStudy) (CaseStudy, error)
		SetScorecard(ctx context.Context, id string, sc Scorecard, at time.Time) (CaseStudy, error)
		DeleteCaseStudy(ctx context.Context, id string) error
		GetCaseStudy(ctx context.Context, id string) (CaseStudy, error)
		// QueryCaseStudies returns all case studies, last updated first.
		QueryCaseStudies(ctx context.Context) ([]CaseStudy, error)
	}

	Service interface {
		Create(ctx context.Context, data Data) (CaseStudy, error)
		Update(ctx context.Context, id string, data Data) (CaseStudy, error)
		Delete(ctx context.Context, id string) error
		GetByID(ctx context.Context, id string) (CaseStudy, error)
		QueryAll(ctx context.Context) ([]Summary, error)
		// Rate asks the Rater for a scorecard. A delegate failure is reported through ok, never as an error.
		Rate(ctx context.Context, id string) (cs CaseStudy, ok bool, err error)
		RecommendFrameworks(ctx context.Context, req FrameworkRequest) ([]string, error)
	}

	service struct {
		repo        Repository
		recommender FrameworkRecommender
		rater       Rater
		validate    *validator.Validate
		cache       core.ViewCache
		logger      core.Logger
		nowFunc     func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	recommender FrameworkRecommender,
	rater Rater,
	validate *validator.Validate,
	cache core.ViewCache,
	logger core.Logger,
) Service {
	return &service{
		repo:        repo,
		recommender: recommender,
		rater:       rater,
		validate:    validate,
		cache:       cache,
		logger:      logger,
		nowFunc:     time.Now,
	}
}

func (svc *service) invalidate(ctx context.Context, id string) {
	core.InvalidateViews(ctx, svc.cache, svc.logger, core.ViewCaseStudies, core.CaseStudyView(id))
}

func (svc *service) Create(ctx context.Context, data Data) (CaseStudy, error) {
	if err := data.Validate(svc.validate); err != nil {
		return CaseStudy{}, err
	}
	now := svc.nowFunc().UTC()
	cs := CaseStudy{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	data.apply(&cs)

	cs, err := svc.repo.CreateCaseStudy(ctx, cs)
	if err != nil {
		return CaseStudy{}, errors.Wrap(err, "creating case study")
	}
	svc.invalidate(ctx, cs.ID)
	return cs, nil
}

// Update overwrites the written fields of the case study. Its scorecard is reset.
func (svc *service) Update(ctx context.Context, id string, data Data) (CaseStudy, error) {
	if err := data.Validate(svc.validate); err != nil {
		return CaseStudy{}, err
	}
	cs := CaseStudy{ID: id, UpdatedAt: svc.nowFunc().UTC()}
	data.apply(&cs)

	cs, err := svc.repo.UpdateCaseStudy(ctx, cs)
	if err != nil {
		return CaseStudy{}, errors.Wrap(err, "updating case study")
	}
	svc.invalidate(ctx, id)
	return cs, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteCaseStudy(ctx, id); err != nil {
		return errors.Wrap(err, "deleting case study")
	}
	svc.invalidate(ctx, id)
	return nil
}

func (svc *service) GetByID(ctx context.Context, id string) (CaseStudy, error) {
	return svc.repo.GetCaseStudy(ctx, id)
}

func (svc *service) QueryAll(ctx context.Context) ([]Summary, error) {
	studies, err := svc.repo.QueryCaseStudies(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying case studies")
	}
	summaries := make([]Summary, 0, len(studies))
	for _, cs := range studies {
		sum := Summary{ID: cs.ID, Title: cs.Title, Subject: cs.Subject, UpdatedAt: cs.UpdatedAt}
		if cs.Scorecard != nil {
			overall := cs.Scorecard.Overall
			sum.Overall = &overall
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (svc *service) Rate(ctx context.Context, id string) (CaseStudy, bool, error) {
	cs, err := svc.repo.GetCaseStudy(ctx, id)
	if err != nil {
		return CaseStudy{}, false, errors.Wrap(err, "getting case study")
	}

	sc, err := svc.rater.Rate(ctx, cs)
	if err == nil {
		err = sc.CheckShape()
	}
	if err != nil {
		svc.logger.Warn("case study rating failed", core.NewDelegateError("rater", err), map[string]interface{}{"case_study": id})
		return cs, false, nil
	}

	cs, err = svc.repo.SetScorecard(ctx, id, sc, svc.nowFunc().UTC())
	if err != nil {
		return CaseStudy{}, false, errors.Wrap(err, "saving scorecard")
	}
	svc.invalidate(ctx, id)
	return cs, true, nil
}

func (svc *service) RecommendFrameworks(ctx context.Context, req FrameworkRequest) ([]string, error) {
	if err := req.Validate(svc.validate); err != nil {
		return nil, err
	}
	frameworks, err := svc.recommender.RecommendFrameworks(ctx, req)
	if err != nil {
		return nil, core.NewDelegateError("framework recommender", err)
	}
	if frameworks == nil {
		frameworks = []string{}
	}
	return frameworks, nil
}

// CheckShape validates that every score is within [0, MaxScore].
func (sc Scorecard) CheckShape() error {
	for name, score := range map[string]int{
		"problem_definition": sc.ProblemDefinition,
		"analysis":           sc.Analysis,
		"alternatives":       sc.Alternatives,
		"recommendation":     sc.Recommendation,
		"overall":            sc.Overall,
	} {
		if score < 0 || score > MaxScore {
			return errors.Wrapf(errBadScorecard, "%s score %d", name, score)
		}
	}
	return nil
}
