package deadline

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
)

const (
	// MaxPriorityInput is the max number of open deadlines sent to the Prioritizer.
	MaxPriorityInput = 10
	// MaxRanked is the max number of ranked deadlines a Prioritizer may return.
	MaxRanked = 5

	noDeadlinesSummary = "You have no pending deadlines. Enjoy the breathing room and plan ahead for what's next."
	fallbackSummary    = "AI prioritization is unavailable right now. Your open deadlines are listed by due date below. Start with the earliest one."
)

var errBadShape = errors.New("unexpected priority summary shape")

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

type (
	PriorityItem struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Course  string `json:"course"`  // course code or "Task"
		DueDate string `json:"dueDate"` // YYYY-MM-DD
	}

	PriorityRequest struct {
		CurrentDate string         `json:"currentDate"` // YYYY-MM-DD
		Deadlines   []PriorityItem `json:"deadlines"`
	}

	RankedDeadline struct {
		ID       string   `json:"id"`
		Priority Priority `json:"priority"`
	}

	// PrioritySummary is advisory output: never recomputed nor checked beyond its shape.
	PrioritySummary struct {
		OverallSummary  string           `json:"overall_summary"`
		PrioritizedList []RankedDeadline `json:"prioritized_list"`
		Fallback        bool             `json:"fallback"`
	}

	// Prioritizer ranks open deadlines, typically by asking a generative model.
	Prioritizer interface {
		Prioritize(ctx context.Context, req PriorityRequest) (PrioritySummary, error)
	}
)

// CheckShape validates the shape of a PrioritySummary.
func (ps PrioritySummary) CheckShape() error {
	if strings.TrimSpace(ps.OverallSummary) == "" {
		return errors.Wrap(errBadShape, "empty summary")
	}
	if len(ps.PrioritizedList) > MaxRanked {
		return errors.Wrapf(errBadShape, "%d ranked deadlines", len(ps.PrioritizedList))
	}
	for _, r := range ps.PrioritizedList {
		if r.ID == "" {
			return errors.Wrap(errBadShape, "missing id")
		}
		switch r.Priority {
		case PriorityHigh, PriorityMedium, PriorityLow:
		default:
			return errors.Wrapf(errBadShape, "invalid priority %q", r.Priority)
		}
	}
	return nil
}

// NewPriorityRequest builds the Prioritizer payload from at most MaxPriorityInput open deadlines.
func NewPriorityRequest(now time.Time, deadlines []Deadline) PriorityRequest {
	open := make([]Deadline, 0, len(deadlines))
	for _, d := range deadlines {
		if !d.IsCompleted {
			open = append(open, d)
		}
	}
	Sort(open)
	if len(open) > MaxPriorityInput {
		open = open[:MaxPriorityInput]
	}

	req := PriorityRequest{
		CurrentDate: now.Format(core.DateLayout),
		Deadlines:   make([]PriorityItem, 0, len(open)),
	}
	for _, d := range open {
		req.Deadlines = append(req.Deadlines, PriorityItem{
			ID:      d.ID,
			Title:   d.Title,
			Course:  d.CourseLabel(),
			DueDate: d.DueDate.Format(core.DateLayout),
		})
	}
	return req
}

// Sort orders deadlines by due date, then due time with all-day deadlines first.
func Sort(deadlines []Deadline) {
	sort.SliceStable(deadlines, func(i, j int) bool {
		di, dj := deadlines[i], deadlines[j]
		yi, mi, ddi := di.DueDate.Date()
		yj, mj, ddj := dj.DueDate.Date()
		if yi != yj || mi != mj || ddi != ddj {
			return di.DueDate.Before(dj.DueDate)
		}
		if di.DueTime.Valid != dj.DueTime.Valid {
			return !di.DueTime.Valid // nulls first
		}
		return di.DueTime.String < dj.DueTime.String
	})
}

// Groups buckets open deadlines by urgency.
type Groups struct {
	Overdue  []Deadline `json:"overdue"`
	Today    []Deadline `json:"today"`
	ThisWeek []Deadline `json:"this_week"`
	Later    []Deadline `json:"later"`
}

// GroupByUrgency buckets open deadlines relative to now, in the loc calendar.
// All-day deadlines are due at the end of their day.
func GroupByUrgency(now time.Time, loc *time.Location, deadlines []Deadline) Groups {
	groups := Groups{
		Overdue:  []Deadline{},
		Today:    []Deadline{},
		ThisWeek: []Deadline{},
		Later:    []Deadline{},
	}
	today := core.Today(now, loc)
	tomorrow := today.AddDate(0, 0, 1)
	nextWeek := today.AddDate(0, 0, 8)

	sorted := append([]Deadline(nil), deadlines...)
	Sort(sorted)
	for _, d := range sorted {
		if d.IsCompleted {
			continue
		}
		day := time.Date(d.DueDate.Year(), d.DueDate.Month(), d.DueDate.Day(), 0, 0, 0, 0, time.UTC)
		overdue := day.Before(today) || (d.DueTime.Valid && d.DueDate.Before(now))
		switch {
		case overdue:
			groups.Overdue = append(groups.Overdue, d)
		case day.Before(tomorrow):
			groups.Today = append(groups.Today, d)
		case day.Before(nextWeek):
			groups.ThisWeek = append(groups.ThisWeek, d)
		default:
			groups.Later = append(groups.Later, d)
		}
	}
	return groups
}

// Completion computes the completion ratio of the given deadlines.
func Completion(deadlines []Deadline) Progress {
	var completed int
	for _, d := range deadlines {
		if d.IsCompleted {
			completed++
		}
	}
	return Progress{
		Completed:  completed,
		Total:      len(deadlines),
		Percentage: core.Percentage(completed, len(deadlines)),
	}
}
