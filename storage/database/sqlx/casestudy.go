package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/casestudy"
)

type caseStudyRow struct {
	ID                   string         `db:"id"`
	Title                string         `db:"case_title"`
	Subject              string         `db:"case_subject"`
	Protagonist          string         `db:"protagonist"`
	CoreProblem          string         `db:"core_problem"`
	SourceURL            string         `db:"case_source_url"`
	SourceFile           string         `db:"case_source_file"`
	Strengths            string         `db:"strengths"`
	Weaknesses           string         `db:"weaknesses"`
	Opportunities        string         `db:"opportunities"`
	Threats              string         `db:"threats"`
	Frameworks           pq.StringArray `db:"frameworks"`
	AlternativeSolutions types.JSONText `db:"alternative_solutions"`
	Recommendation       string         `db:"recommendation"`
	Justification        string         `db:"justification"`
	FrameworkInputs      types.JSONText `db:"framework_inputs"`
	AIReport             string         `db:"ai_report"`
	Scorecard            null.JSON      `db:"scorecard"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func toCaseStudyRow(cs casestudy.CaseStudy) (caseStudyRow, error) {
	alternatives, err := json.Marshal(cs.AlternativeSolutions)
	if err != nil {
		return caseStudyRow{}, errors.Wrap(err, "encoding alternative solutions")
	}
	inputs, err := json.Marshal(cs.FrameworkInputs)
	if err != nil {
		return caseStudyRow{}, errors.Wrap(err, "encoding framework inputs")
	}
	return caseStudyRow{
		ID:                   cs.ID,
		Title:                cs.Title,
		Subject:              cs.Subject,
		Protagonist:          cs.Protagonist,
		CoreProblem:          cs.CoreProblem,
		SourceURL:            cs.SourceURL,
		SourceFile:           cs.SourceFile,
		Strengths:            cs.Strengths,
		Weaknesses:           cs.Weaknesses,
		Opportunities:        cs.Opportunities,
		Threats:              cs.Threats,
		Frameworks:           pq.StringArray(cs.Frameworks),
		AlternativeSolutions: types.JSONText(alternatives),
		Recommendation:       cs.Recommendation,
		Justification:        cs.Justification,
		FrameworkInputs:      types.JSONText(inputs),
		AIReport:             cs.AIReport,
		CreatedAt:            cs.CreatedAt.UTC(),
		UpdatedAt:            cs.UpdatedAt.UTC(),
	}, nil
}

func (row caseStudyRow) caseStudy() (casestudy.CaseStudy, error) {
	cs := casestudy.CaseStudy{
		ID:                   row.ID,
		Title:                row.Title,
		Subject:              row.Subject,
		Protagonist:          row.Protagonist,
		CoreProblem:          row.CoreProblem,
		SourceURL:            row.SourceURL,
		SourceFile:           row.SourceFile,
		Strengths:            row.Strengths,
		Weaknesses:           row.Weaknesses,
		Opportunities:        row.Opportunities,
		Threats:              row.Threats,
		Frameworks:           []string(row.Frameworks),
		AlternativeSolutions: []casestudy.AlternativeSolution{},
		Recommendation:       row.Recommendation,
		Justification:        row.Justification,
		FrameworkInputs:      map[string]interface{}{},
		AIReport:             row.AIReport,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
	if cs.Frameworks == nil {
		cs.Frameworks = []string{}
	}
	if len(row.AlternativeSolutions) > 0 {
		if err := row.AlternativeSolutions.Unmarshal(&cs.AlternativeSolutions); err != nil {
			return casestudy.CaseStudy{}, errors.Wrap(err, "decoding alternative solutions")
		}
	}
	if len(row.FrameworkInputs) > 0 {
		if err := row.FrameworkInputs.Unmarshal(&cs.FrameworkInputs); err != nil {
			return casestudy.CaseStudy{}, errors.Wrap(err, "decoding framework inputs")
		}
	}
	if row.Scorecard.Valid {
		var sc casestudy.Scorecard
		if err := row.Scorecard.Unmarshal(&sc); err != nil {
			return casestudy.CaseStudy{}, errors.Wrap(err, "decoding scorecard")
		}
		cs.Scorecard = &sc
	}
	return cs, nil
}

type caseStudyRepository struct {
	db core.DBExecutor
}

var _ casestudy.Repository = (*caseStudyRepository)(nil) // interface compliance check

func NewCaseStudyRepository(db core.DBExecutor) casestudy.Repository {
	return &caseStudyRepository{db: db}
}

func (repo caseStudyRepository) CreateCaseStudy(ctx context.Context, cs casestudy.CaseStudy) (casestudy.CaseStudy, error) {
	row, err := toCaseStudyRow(cs)
	if err != nil {
		return casestudy.CaseStudy{}, err
	}
	q := `
		INSERT INTO case_studies (
			id, case_title, case_subject, protagonist, core_problem, case_source_url, case_source_file,
			strengths, weaknesses, opportunities, threats, frameworks, alternative_solutions,
			recommendation, justification, framework_inputs, ai_report, created_at, updated_at
		) VALUES (
			:id, :case_title, :case_subject, :protagonist, :core_problem, :case_source_url, :case_source_file,
			:strengths, :weaknesses, :opportunities, :threats, :frameworks, :alternative_solutions,
			:recommendation, :justification, :framework_inputs, :ai_report, :created_at, :updated_at
		)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return casestudy.CaseStudy{}, errors.Wrap(err, "inserting case study")
	}
	return repo.GetCaseStudy(ctx, cs.ID)
}

func (repo caseStudyRepository) UpdateCaseStudy(ctx context.Context, cs casestudy.CaseStudy) (casestudy.CaseStudy, error) {
	row, err := toCaseStudyRow(cs)
	if err != nil {
		return casestudy.CaseStudy{}, err
	}
	q := `
		UPDATE case_studies SET
			case_title = :case_title, case_subject = :case_subject, protagonist = :protagonist,
			core_problem = :core_problem, case_source_url = :case_source_url, case_source_file = :case_source_file,
			strengths = :strengths, weaknesses = :weaknesses, opportunities = :opportunities, threats = :threats,
			frameworks = :frameworks, alternative_solutions = :alternative_solutions,
			recommendation = :recommendation, justification = :justification,
			framework_inputs = :framework_inputs, ai_report = :ai_report,
			scorecard = NULL, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return casestudy.CaseStudy{}, errors.Wrap(err, "updating case study")
	}
	if err = checkAffected(res, casestudy.ErrNotFound); err != nil {
		return casestudy.CaseStudy{}, err
	}
	return repo.GetCaseStudy(ctx, cs.ID)
}

func (repo caseStudyRepository) SetScorecard(ctx context.Context, id string, sc casestudy.Scorecard, at time.Time) (casestudy.CaseStudy, error) {
	data, err := json.Marshal(sc)
	if err != nil {
		return casestudy.CaseStudy{}, errors.Wrap(err, "encoding scorecard")
	}
	var row caseStudyRow
	q := `UPDATE case_studies SET scorecard = $2, updated_at = $3 WHERE id = $1 RETURNING *`
	if err = repo.db.GetContext(ctx, &row, q, id, null.JSONFrom(data), at.UTC()); err != nil {
		return casestudy.CaseStudy{}, trapNoRowsErr(err, casestudy.ErrNotFound, "saving scorecard")
	}
	return row.caseStudy()
}

func (repo caseStudyRepository) DeleteCaseStudy(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM case_studies WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting case study")
	}
	return checkAffected(res, casestudy.ErrNotFound)
}

func (repo caseStudyRepository) GetCaseStudy(ctx context.Context, id string) (casestudy.CaseStudy, error) {
	var row caseStudyRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM case_studies WHERE id = $1`, id); err != nil {
		return casestudy.CaseStudy{}, trapNoRowsErr(err, casestudy.ErrNotFound, "selecting case study")
	}
	return row.caseStudy()
}

func (repo caseStudyRepository) QueryCaseStudies(ctx context.Context) ([]casestudy.CaseStudy, error) {
	var rows []caseStudyRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM case_studies ORDER BY updated_at DESC, id`); err != nil {
		return nil, errors.Wrap(err, "selecting case studies")
	}
	studies := make([]casestudy.CaseStudy, 0, len(rows))
	for _, row := range rows {
		cs, err := row.caseStudy()
		if err != nil {
			return nil, err
		}
		studies = append(studies, cs)
	}
	return studies, nil
}
