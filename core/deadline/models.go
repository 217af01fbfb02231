package deadline

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
)

type Category string

const (
	CategoryCourse Category = "Course"
	CategoryOther  Category = "Other"
)

// CourseRef is the part of a Course shown next to its deadlines.
type CourseRef struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

type Deadline struct {
	ID       string      `json:"id"`
	CourseID null.String `json:"course_id"` // null => generic task
	Title    string      `json:"title"`
	// DueDate is the due date combined with DueTime, UTC midnight for all-day deadlines.
	DueDate     time.Time   `json:"due_date"`
	DueTime     null.String `json:"due_time"` // HH:MM
	Type        string      `json:"type"`
	Description null.String `json:"description"`
	IsCompleted bool        `json:"is_completed"`
	CreatedAt   time.Time   `json:"created_at"`

	Course *CourseRef `json:"course"`
}

func (d Deadline) Category() Category {
	if d.CourseID.Valid {
		return CategoryCourse
	}
	return CategoryOther
}

// CourseLabel is the course code, or "Task" for generic tasks.
func (d Deadline) CourseLabel() string {
	if d.Course != nil && d.Course.Code != "" {
		return d.Course.Code
	}
	return "Task"
}

// NewDeadline contains information needed to create a new Deadline.
// UpdateDeadline carries the same fields.
type NewDeadline struct {
	Title       string   `json:"title" validate:"required,notblank"`
	DueDate     string   `json:"due_date" validate:"required,isodate"`
	DueTime     string   `json:"due_time" validate:"omitempty,hhmm"`
	Type        string   `json:"type" validate:"required,notblank"`
	Description string   `json:"description"`
	CourseID    string   `json:"course_id" validate:"omitempty,uuid"`
	Category    Category `json:"category" validate:"required,oneof=Course Other"`
}

type UpdateDeadline = NewDeadline

func (nd *NewDeadline) Validate(validate *validator.Validate) error {
	nd.Title = core.CleanString(nd.Title)
	nd.DueDate = core.CleanString(nd.DueDate)
	nd.DueTime = core.CleanString(nd.DueTime)
	nd.Type = core.CleanString(nd.Type)
	nd.Description = core.CleanString(nd.Description)
	nd.CourseID = core.CleanString(nd.CourseID)
	if nd.Category == CategoryOther {
		nd.CourseID = ""
	}
	return validate.Struct(nd)
}

// DueAt combines the due date and optional due time into a single UTC timestamp.
func (nd NewDeadline) DueAt() (time.Time, error) {
	day, err := time.Parse(core.DateLayout, nd.DueDate)
	if err != nil {
		return time.Time{}, err
	}
	if nd.DueTime == "" {
		return day, nil
	}
	tod, err := time.Parse(core.TimeLayout, nd.DueTime)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute), nil
}

type QueryFilter struct {
	CourseID string
	OpenOnly bool
	DueFrom  time.Time // inclusive
	DueTo    time.Time // inclusive
	Limit    int
}

// Progress is the completion ratio of deadlines.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

var (
	courseRequiredTag  = "course_required"
	courseRequiredText = "a course is required for course deadlines"
)

// InitValidators registers the deadline validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(deadlineStructValidation, NewDeadline{})
	core.RegisterCustomTranslation(validate, translator, courseRequiredTag, courseRequiredText)
}

// deadlineStructValidation checks that course deadlines reference a course.
func deadlineStructValidation(sl validator.StructLevel) {
	nd := sl.Current().Interface().(NewDeadline)
	if nd.Category == CategoryCourse && nd.CourseID == "" {
		sl.ReportError(nd.CourseID, "course_id", "CourseID", courseRequiredTag, "")
	}
}
