package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/casestudy"
	"github.com/trezcool/mbatrack/core/course"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/core/goal"
	"github.com/trezcool/mbatrack/core/skill"
	logsvc "github.com/trezcool/mbatrack/services/logger"
)

// NewLogger returns a silent logger.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(zap.NewNop(), conf)
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	deadline.InitValidators(validate, translator)
	return validate, translator
}

// Fake AI delegates

type FakePrioritizer struct {
	mu       sync.Mutex
	Summary  deadline.PrioritySummary
	Err      error
	Requests []deadline.PriorityRequest
}

func (f *FakePrioritizer) Prioritize(_ context.Context, req deadline.PriorityRequest) (deadline.PrioritySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	return f.Summary, f.Err
}

func (f *FakePrioritizer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

type FakeRater struct {
	mu        sync.Mutex
	Scorecard casestudy.Scorecard
	Err       error
	calls     int
}

func (f *FakeRater) Rate(context.Context, casestudy.CaseStudy) (casestudy.Scorecard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.Scorecard, f.Err
}

func (f *FakeRater) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type FakeRecommender struct {
	Frameworks []string
	Err        error
}

func (f *FakeRecommender) RecommendFrameworks(context.Context, casestudy.FrameworkRequest) ([]string, error) {
	return f.Frameworks, f.Err
}

// Fixtures

func CreateCourse(t *testing.T, repo course.Repository, code, title string, total, mandatory int) course.Course {
	c, err := repo.CreateCourse(context.Background(), course.Course{
		ID:                            uuid.NewString(),
		Title:                         title,
		Code:                          code,
		TotalScheduledSessions:        total,
		MandatoryAttendancePercentage: mandatory,
		CreatedAt:                     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateSession(t *testing.T, repo course.Repository, courseID string, date time.Time, status course.AttendanceStatus) course.Session {
	s, err := repo.CreateSession(context.Background(), course.Session{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Date:      time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Status:    status,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return s
}

// CreateDeadline stores a deadline due at dueAt; dueTime is empty for all-day deadlines.
func CreateDeadline(t *testing.T, repo deadline.Repository, courseID, title string, dueAt time.Time, dueTime string, completed bool) deadline.Deadline {
	d := deadline.Deadline{
		ID:          uuid.NewString(),
		Title:       title,
		DueDate:     dueAt.UTC(),
		DueTime:     null.StringFromPtr(core.NullableString(dueTime)),
		Type:        "Assignment",
		IsCompleted: completed,
		CreatedAt:   time.Now().UTC(),
	}
	if courseID != "" {
		d.CourseID = null.StringFrom(courseID)
	}
	d, err := repo.CreateDeadline(context.Background(), d)
	if err != nil {
		t.Fatalf("CreateDeadline() failed: %v", err)
	}
	return d
}

func CreateSkill(t *testing.T, repo skill.Repository, name string, typ skill.Type, confidence int) skill.Skill {
	now := time.Now().UTC()
	s := skill.Skill{ID: uuid.NewString(), Name: name, Type: typ, LatestConfidence: confidence, CreatedAt: now}
	s, err := repo.CreateSkill(context.Background(), s, skill.ConfidenceLog{
		ID:              uuid.NewString(),
		SkillID:         s.ID,
		ConfidenceLevel: confidence,
		CreatedAt:       now,
	})
	if err != nil {
		t.Fatalf("CreateSkill() failed: %v", err)
	}
	return s
}

// CreateObjective stores an objective with one key result per description; completed flags the first ones.
func CreateObjective(t *testing.T, repo goal.Repository, title string, completed int, descriptions ...string) goal.Objective {
	now := time.Now().UTC()
	obj := goal.Objective{ID: uuid.NewString(), Title: title, CreatedAt: now}
	for i, desc := range descriptions {
		obj.KeyResults = append(obj.KeyResults, goal.KeyResult{
			ID:          uuid.NewString(),
			ObjectiveID: obj.ID,
			Description: desc,
			IsCompleted: i < completed,
			CreatedAt:   now,
		})
	}
	obj, err := repo.CreateObjective(context.Background(), obj)
	if err != nil {
		t.Fatalf("CreateObjective() failed: %v", err)
	}
	return obj
}
