package echoapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/course"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/core/journal"
	"github.com/trezcool/mbatrack/core/notify"
)

const (
	mobileTypeJournal  = "journal"
	mobileTypeDeadline = "deadline"
	mobileTypeTask     = "task"

	mobileDeadlineType = "Coursework"
	mobileTaskType     = "Task"

	mobileDateHint = " Please use a recognizable format (e.g., 'Nov 15' or 'Nov 15, 2025')."
)

type (
	mobileApi struct {
		conf        *core.Config
		logger      core.Logger
		courseSvc   course.Service
		deadlineSvc deadline.Service
		journalSvc  journal.Service
		notifySvc   notify.Service
		nowFunc     func() time.Time
	}

	// MobileResponse is the body of every mobile endpoint answer but the GET lists.
	MobileResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
		Error   string `json:"error,omitempty"`
	}

	ReminderResponse struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Processed int    `json:"processed"`
		Sent      int    `json:"sent"`
	}

	MobileRequest struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}

	JournalPayload struct {
		Content string `json:"content"`
	}

	DeadlinePayload struct {
		CourseCode string `json:"courseCode"`
		Title      string `json:"title"`
		DateStr    string `json:"dateStr"`
	}

	TaskPayload struct {
		Title   string `json:"title"`
		DateStr string `json:"dateStr"`
	}

	MobileCourse struct {
		ID    string `json:"id"`
		Code  string `json:"code"`
		Title string `json:"title"`
	}

	MobileCourseRef struct {
		Code  string `json:"code"`
		Title string `json:"title"`
	}

	MobileDeadline struct {
		ID          string           `json:"id"`
		Title       string           `json:"title"`
		DueDate     time.Time        `json:"due_date"`
		DueTime     null.String      `json:"due_time"`
		Description null.String      `json:"description"`
		Type        string           `json:"type"`
		Courses     *MobileCourseRef `json:"courses"`
	}
)

func registerMobileAPI(g *echo.Group, api mobileApi) {
	if api.nowFunc == nil {
		api.nowFunc = time.Now
	}

	g.POST("/fcm/register/remind", api.remind, cronSecretMiddleware(api.conf.CronSecret))

	ag := g.Group("", apiKeyMiddleware(api.conf.MobileAPIKey))
	ag.POST("", api.create)
	ag.GET("/courses", api.queryCourses)
	ag.GET("/deadline", api.queryDeadlines)
	ag.POST("/fcm/register", api.registerToken)
}

func mobileError(ctx echo.Context, code int, msg string) error {
	return ctx.JSON(code, MobileResponse{Error: msg})
}

func mobileSuccess(ctx echo.Context, msg string) error {
	return ctx.JSON(http.StatusOK, MobileResponse{Success: true, Message: msg})
}

// serverError logs err and answers a generic 500.
func (api *mobileApi) serverError(ctx echo.Context, msg string, err error) error {
	api.logger.Error(msg, err, map[string]interface{}{"path": ctx.Request().URL.Path})
	return mobileError(ctx, http.StatusInternalServerError, msg)
}

func decodePayload(raw json.RawMessage, dest interface{}) bool {
	return len(raw) > 0 && json.Unmarshal(raw, dest) == nil
}

// Handlers

func (api *mobileApi) create(ctx echo.Context) error {
	var req MobileRequest
	if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
		return mobileError(ctx, http.StatusBadRequest, "Invalid JSON body")
	}

	switch req.Type {
	case mobileTypeJournal:
		var p JournalPayload
		if !decodePayload(req.Payload, &p) || strings.TrimSpace(p.Content) == "" {
			return mobileError(ctx, http.StatusBadRequest, "Invalid journal payload")
		}
		return api.saveJournal(ctx, p)
	case mobileTypeDeadline:
		var p DeadlinePayload
		if !decodePayload(req.Payload, &p) || core.CleanString(p.CourseCode) == "" ||
			core.CleanString(p.Title) == "" || core.CleanString(p.DateStr) == "" {
			return mobileError(ctx, http.StatusBadRequest, "Invalid course deadline payload")
		}
		return api.addDeadline(ctx, p)
	case mobileTypeTask:
		var p TaskPayload
		if !decodePayload(req.Payload, &p) || core.CleanString(p.Title) == "" || core.CleanString(p.DateStr) == "" {
			return mobileError(ctx, http.StatusBadRequest, "Invalid task payload")
		}
		return api.addTask(ctx, p)
	default:
		return mobileError(ctx, http.StatusBadRequest, "Invalid request format")
	}
}

func (api *mobileApi) saveJournal(ctx echo.Context, p JournalPayload) error {
	if _, err := api.journalSvc.SaveToday(ctx.Request().Context(), p.Content); err != nil {
		return api.serverError(ctx, "Failed to save journal entry.", err)
	}
	return mobileSuccess(ctx, "Journal entry saved.")
}

func (api *mobileApi) newDeadline(title string, day time.Time) deadline.NewDeadline {
	addedOn := api.nowFunc().In(api.conf.Location()).Format("Jan 2, 2006")
	return deadline.NewDeadline{
		Title:       title,
		DueDate:     day.Format(core.DateLayout),
		Description: "Added via mobile on " + addedOn,
	}
}

func (api *mobileApi) addDeadline(ctx echo.Context, p DeadlinePayload) error {
	reqCtx := ctx.Request().Context()

	c, err := api.courseSvc.GetByCode(reqCtx, p.CourseCode)
	if err != nil {
		if core.IsNotFound(err) {
			return mobileError(ctx, http.StatusBadRequest, "Course code '"+p.CourseCode+"' not found.")
		}
		return api.serverError(ctx, "Failed to find course.", err)
	}

	day, err := core.ParseLenientDay(p.DateStr, api.nowFunc(), api.conf.Location())
	if err != nil {
		return mobileError(ctx, http.StatusBadRequest, "Invalid date format: '"+p.DateStr+"'.")
	}

	nd := api.newDeadline(p.Title, day)
	nd.Type = mobileDeadlineType
	nd.Category = deadline.CategoryCourse
	nd.CourseID = c.ID
	if _, err = api.deadlineSvc.Add(reqCtx, nd); err != nil {
		return api.serverError(ctx, "Failed to add course deadline.", err)
	}
	return mobileSuccess(ctx, "Course deadline added.")
}

func (api *mobileApi) addTask(ctx echo.Context, p TaskPayload) error {
	day, err := core.ParseLenientDay(p.DateStr, api.nowFunc(), api.conf.Location())
	if err != nil {
		return mobileError(ctx, http.StatusBadRequest, "Invalid date format: '"+p.DateStr+"'."+mobileDateHint)
	}

	nd := api.newDeadline(p.Title, day)
	nd.Type = mobileTaskType
	nd.Category = deadline.CategoryOther
	if _, err = api.deadlineSvc.Add(ctx.Request().Context(), nd); err != nil {
		return api.serverError(ctx, "Failed to add task.", err)
	}
	return mobileSuccess(ctx, "Task added.")
}

func (api *mobileApi) queryCourses(ctx echo.Context) error {
	courses, err := api.courseSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return api.serverError(ctx, "Failed to fetch courses.", err)
	}
	res := make([]MobileCourse, 0, len(courses))
	for _, c := range courses {
		res = append(res, MobileCourse{ID: c.ID, Code: c.Code, Title: c.Title})
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *mobileApi) queryDeadlines(ctx echo.Context) error {
	deadlines, err := api.deadlineSvc.Query(ctx.Request().Context(), deadline.QueryFilter{})
	if err != nil {
		return api.serverError(ctx, "Failed to fetch deadlines.", err)
	}
	res := make([]MobileDeadline, 0, len(deadlines))
	for _, d := range deadlines {
		md := MobileDeadline{
			ID:          d.ID,
			Title:       d.Title,
			DueDate:     d.DueDate,
			DueTime:     d.DueTime,
			Description: d.Description,
			Type:        d.Type,
		}
		if d.Course != nil {
			md.Courses = &MobileCourseRef{Code: d.Course.Code, Title: d.Course.Title}
		}
		res = append(res, md)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *mobileApi) registerToken(ctx echo.Context) error {
	var data notify.RegisterToken
	if err := json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
		return mobileError(ctx, http.StatusBadRequest, "Invalid JSON body")
	}
	if _, err := api.notifySvc.Register(ctx.Request().Context(), data); err != nil {
		if core.IsValidationError(err) || isValidatorError(err) {
			return mobileError(ctx, http.StatusBadRequest, "Invalid token format.")
		}
		return api.serverError(ctx, "Failed to register token.", err)
	}
	return mobileSuccess(ctx, "FCM token registered.")
}

func (api *mobileApi) remind(ctx echo.Context) error {
	res, err := api.notifySvc.SendReminders(ctx.Request().Context())
	if err != nil {
		return api.serverError(ctx, "Failed to send reminders.", err)
	}
	return ctx.JSON(http.StatusOK, ReminderResponse{
		Success:   true,
		Message:   res.Message,
		Processed: res.Processed,
		Sent:      res.Sent,
	})
}
