package course

import (
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
)

// DefaultMandatoryAttendance is used when a course does not state its attendance requirement.
const DefaultMandatoryAttendance = 75

type AttendanceStatus string

const (
	StatusPresent  AttendanceStatus = "present"
	StatusAbsent   AttendanceStatus = "absent"
	StatusProxy    AttendanceStatus = "proxy"
	StatusNotTaken AttendanceStatus = "not-taken"
)

var AllStatuses = []AttendanceStatus{StatusPresent, StatusAbsent, StatusProxy, StatusNotTaken}

// Module is a pure grouping label for Courses.
type Module struct {
	ID        string      `json:"id" db:"id"`
	Title     string      `json:"title" db:"title"`
	Semester  null.String `json:"semester" db:"semester"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

type Course struct {
	ID                            string      `json:"id" db:"id"`
	Title                         string      `json:"title" db:"title"`
	Code                          string      `json:"code" db:"code"`
	Professor                     null.String `json:"professor" db:"professor"`
	Term                          null.String `json:"term" db:"term"`
	TotalScheduledSessions        int         `json:"total_scheduled_sessions" db:"total_scheduled_sessions"`
	MandatoryAttendancePercentage int         `json:"mandatory_attendance_percentage" db:"mandatory_attendance_percentage"`
	ModuleID                      null.String `json:"module_id" db:"module_id"`
	CreatedAt                     time.Time   `json:"created_at" db:"created_at"`
}

// Session is an attendance event of a Course.
type Session struct {
	ID        string           `json:"id" db:"id"`
	CourseID  string           `json:"course_id" db:"course_id"`
	Date      time.Time        `json:"date" db:"date"` // UTC midnight
	Status    AttendanceStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// Card is a Course with its attendance stats, as shown on the courses page.
type Card struct {
	Course
	Stats AttendanceStats `json:"stats"`
}

// Detail is a Course with its session history.
type Detail struct {
	Card
	Module   *Module   `json:"module"`
	Sessions []Session `json:"sessions"`
}

// NewModule contains information needed to create a new Module.
type NewModule struct {
	Title    string `json:"title" validate:"required,notblank"`
	Semester string `json:"semester"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Semester = core.CleanString(nm.Semester)
	return validate.Struct(nm)
}

// NewCourse contains information needed to create a new Course.
// UpdateCourse carries the same fields.
type NewCourse struct {
	Title                         string `json:"title" validate:"required,notblank"`
	Code                          string `json:"code" validate:"required,notblank,max=32"`
	Professor                     string `json:"professor"`
	Term                          string `json:"term"`
	TotalScheduledSessions        int    `json:"total_scheduled_sessions" validate:"gte=0"`
	MandatoryAttendancePercentage *int   `json:"mandatory_attendance_percentage" validate:"omitempty,gte=0,lte=100"`
	ModuleID                      string `json:"module_id" validate:"omitempty,uuid"`
}

type UpdateCourse = NewCourse

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Code = strings.ToUpper(core.CleanString(nc.Code))
	nc.Professor = core.CleanString(nc.Professor)
	nc.Term = core.CleanString(nc.Term)
	nc.ModuleID = core.CleanString(nc.ModuleID)
	if nc.ModuleID == "none" {
		nc.ModuleID = ""
	}
	return validate.Struct(nc)
}

func (nc NewCourse) mandatoryAttendance() int {
	if nc.MandatoryAttendancePercentage == nil {
		return DefaultMandatoryAttendance
	}
	return *nc.MandatoryAttendancePercentage
}

// NewSession contains information needed to record attendance.
type NewSession struct {
	CourseID string           `json:"course_id" validate:"required,uuid"`
	Date     string           `json:"date" validate:"required,sessiondate"`
	Status   AttendanceStatus `json:"status" validate:"required,attendancestatus"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.CourseID = core.CleanString(ns.CourseID)
	ns.Date = core.CleanString(ns.Date)
	ns.Status = AttendanceStatus(core.CleanString(string(ns.Status), true /* lower */))
	return validate.Struct(ns)
}

var (
	attendanceStatusTag  = "attendancestatus"
	attendanceStatusText = "status must be one of present, absent, proxy or not-taken"

	sessionDateTag  = "sessiondate"
	sessionDateText = "date must be a YYYY-MM-DD or RFC3339 date"
)

// InitValidators registers the course validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(attendanceStatusTag, func(fl validator.FieldLevel) bool {
		status := AttendanceStatus(fl.Field().String())
		for _, s := range AllStatuses {
			if s == status {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, attendanceStatusTag, attendanceStatusText)

	_ = validate.RegisterValidation(sessionDateTag, func(fl validator.FieldLevel) bool {
		_, err := core.ParseDay(fl.Field().String())
		return err == nil
	})
	core.RegisterCustomTranslation(validate, translator, sessionDateTag, sessionDateText)
}
