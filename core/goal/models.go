package goal

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
)

// Objective owns its KeyResults: deleting it deletes them.
type Objective struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Semester   null.String `json:"semester"`
	CreatedAt  time.Time   `json:"created_at"`
	KeyResults []KeyResult `json:"key_results"`
}

type KeyResult struct {
	ID          string    `json:"id"`
	ObjectiveID string    `json:"objective_id"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Progress is the key results completion ratio of an Objective.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

func (obj Objective) Progress() Progress {
	return KeyResultsProgress(obj.KeyResults)
}

// KeyResultsProgress computes the completion ratio of key results; 100% when there are none.
func KeyResultsProgress(krs []KeyResult) Progress {
	var completed int
	for _, kr := range krs {
		if kr.IsCompleted {
			completed++
		}
	}
	return Progress{Completed: completed, Total: len(krs), Percentage: core.Percentage(completed, len(krs))}
}

// ObjectiveWithProgress is an Objective as listed on the goals page.
type ObjectiveWithProgress struct {
	Objective
	Progress Progress `json:"progress"`
}

// NewObjective contains information needed to create a new Objective with its key results.
type NewObjective struct {
	Title      string   `json:"title" validate:"required,notblank"`
	Semester   string   `json:"semester"`
	KeyResults []string `json:"key_results" validate:"required,min=1,dive,notblank"`
}

func (no *NewObjective) Validate(validate *validator.Validate) error {
	no.Title = core.CleanString(no.Title)
	no.Semester = core.CleanString(no.Semester)

	// blank key results are dropped
	krs := make([]string, 0, len(no.KeyResults))
	for _, kr := range no.KeyResults {
		if kr = core.CleanString(kr); kr != "" {
			krs = append(krs, kr)
		}
	}
	no.KeyResults = krs
	return validate.Struct(no)
}

type ToggleKeyResult struct {
	CurrentState bool `json:"current_state"`
}
