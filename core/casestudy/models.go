package casestudy

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mbatrack/core"
)

type AlternativeSolution struct {
	Solution string `json:"solution"`
	Pros     string `json:"pros"`
	Cons     string `json:"cons"`
}

// Scorecard is produced by a Rater and stored verbatim.
type Scorecard struct {
	ProblemDefinition int    `json:"problem_definition"`
	Analysis          int    `json:"analysis"`
	Alternatives      int    `json:"alternatives"`
	Recommendation    int    `json:"recommendation"`
	Overall           int    `json:"overall"`
	Feedback          string `json:"feedback"`
}

type CaseStudy struct {
	ID                   string                 `json:"id"`
	Title                string                 `json:"case_title"`
	Subject              string                 `json:"case_subject"`
	Protagonist          string                 `json:"protagonist"`
	CoreProblem          string                 `json:"core_problem"`
	SourceURL            string                 `json:"case_source_url"`
	SourceFile           string                 `json:"case_source_file"`
	Strengths            string                 `json:"strengths"`
	Weaknesses           string                 `json:"weaknesses"`
	Opportunities        string                 `json:"opportunities"`
	Threats              string                 `json:"threats"`
	Frameworks           []string               `json:"frameworks"`
	AlternativeSolutions []AlternativeSolution  `json:"alternative_solutions"`
	Recommendation       string                 `json:"recommendation"`
	Justification        string                 `json:"justification"`
	FrameworkInputs      map[string]interface{} `json:"framework_inputs"`
	AIReport             string                 `json:"ai_report"`
	Scorecard            *Scorecard             `json:"scorecard"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// Summary is a CaseStudy as listed on the case studies page.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"case_title"`
	Subject   string    `json:"case_subject"`
	Overall   *int      `json:"overall_score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Data contains what a user may write on a CaseStudy.
type Data struct {
	Title                string                 `json:"case_title" validate:"required,min=3"`
	Subject              string                 `json:"case_subject"`
	Protagonist          string                 `json:"protagonist"`
	CoreProblem          string                 `json:"core_problem"`
	SourceURL            string                 `json:"case_source_url" validate:"omitempty,url"`
	SourceFile           string                 `json:"case_source_file"`
	Strengths            string                 `json:"strengths"`
	Weaknesses           string                 `json:"weaknesses"`
	Opportunities        string                 `json:"opportunities"`
	Threats              string                 `json:"threats"`
	Frameworks           []string               `json:"frameworks" validate:"dive,notblank"`
	AlternativeSolutions []AlternativeSolution  `json:"alternative_solutions"`
	Recommendation       string                 `json:"recommendation"`
	Justification        string                 `json:"justification"`
	FrameworkInputs      map[string]interface{} `json:"framework_inputs"`
	AIReport             string                 `json:"ai_report"`
}

func (d *Data) Validate(validate *validator.Validate) error {
	d.Title = core.CleanString(d.Title)
	d.Subject = core.CleanString(d.Subject)
	d.SourceURL = core.CleanString(d.SourceURL)
	if d.Frameworks == nil {
		d.Frameworks = []string{}
	}
	if d.AlternativeSolutions == nil {
		d.AlternativeSolutions = []AlternativeSolution{}
	}
	if d.FrameworkInputs == nil {
		d.FrameworkInputs = map[string]interface{}{}
	}
	return validate.Struct(d)
}

func (d Data) apply(cs *CaseStudy) {
	cs.Title = d.Title
	cs.Subject = d.Subject
	cs.Protagonist = d.Protagonist
	cs.CoreProblem = d.CoreProblem
	cs.SourceURL = d.SourceURL
	cs.SourceFile = d.SourceFile
	cs.Strengths = d.Strengths
	cs.Weaknesses = d.Weaknesses
	cs.Opportunities = d.Opportunities
	cs.Threats = d.Threats
	cs.Frameworks = d.Frameworks
	cs.AlternativeSolutions = d.AlternativeSolutions
	cs.Recommendation = d.Recommendation
	cs.Justification = d.Justification
	cs.FrameworkInputs = d.FrameworkInputs
	cs.AIReport = d.AIReport
}

type FrameworkRequest struct {
	CaseTitle   string `json:"case_title" validate:"required,notblank"`
	CaseSubject string `json:"case_subject"`
}

func (fr *FrameworkRequest) Validate(validate *validator.Validate) error {
	fr.CaseTitle = core.CleanString(fr.CaseTitle)
	fr.CaseSubject = core.CleanString(fr.CaseSubject)
	return validate.Struct(fr)
}
