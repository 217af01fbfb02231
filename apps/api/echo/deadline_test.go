package echoapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/mbatrack/apps/api/echo"
	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/tests"
)

func Test_deadlineApi_create(t *testing.T) {
	app := setup(t)

	fin := testutil.CreateCourse(t, courseRepo, "FIN", "Finance", 10, 75)

	runHTTPTests(t, app, []httpTest{
		{
			name: "required fields", method: http.MethodPost, path: "/v1/deadlines", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"title":    "this field is required",
				"due_date": "this field is required",
				"type":     "this field is required",
				"category": "this field is required",
			}),
		},
		{
			name: "course category without course", method: http.MethodPost, path: "/v1/deadlines",
			body:     []byte(`{"title": "Essay", "due_date": "2025-03-01", "type": "Assignment", "category": "Course"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"course_id": "a course is required for course deadlines"}),
		},
		{
			name: "bad date & time", method: http.MethodPost, path: "/v1/deadlines",
			body:     []byte(`{"title": "Essay", "due_date": "01/03/2025", "due_time": "25:00", "type": "Assignment", "category": "Other"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"due_date": "date must be in YYYY-MM-DD format",
				"due_time": "time must be in HH:MM format",
			}),
		},
		{
			name: "unknown course", method: http.MethodPost, path: "/v1/deadlines",
			body:     []byte(`{"title": "Essay", "due_date": "2025-03-01", "type": "Assignment", "category": "Course", "course_id": "` + uuid.NewString() + `"}`),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "course not found"}),
		},
	})

	t.Run("course deadline", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/deadlines", marshalObj(t, map[string]string{
			"title": "Valuation case", "due_date": "2025-03-01", "due_time": "14:30", "type": "Assignment",
			"category": "Course", "course_id": fin.ID,
		}))
		app.ServeHTTP(rec, req)

		var d deadline.Deadline
		successMessage(t, rec, http.StatusCreated, "Deadline added successfully!", &d)
		assert.Equal(t, time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC), d.DueDate.UTC())
		assert.Equal(t, "14:30", d.DueTime.String)
		assert.Equal(t, fin.ID, d.CourseID.String)
		assert.False(t, d.IsCompleted)
		if assert.NotNil(t, d.Course) {
			assert.Equal(t, "FIN", d.Course.Code)
		}
	})

	t.Run("other deadline drops its course", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/deadlines", marshalObj(t, map[string]string{
			"title": "Renew visa", "due_date": "2025-03-02", "type": "Personal", "category": "Other", "course_id": fin.ID,
		}))
		app.ServeHTTP(rec, req)

		var d deadline.Deadline
		successMessage(t, rec, http.StatusCreated, "Deadline added successfully!", &d)
		assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), d.DueDate.UTC())
		assert.False(t, d.DueTime.Valid)
		assert.False(t, d.CourseID.Valid)
	})
}

func Test_deadlineApi_query(t *testing.T) {
	app := setup(t)

	fin := testutil.CreateCourse(t, courseRepo, "FIN", "Finance", 10, 75)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	timed := testutil.CreateDeadline(t, deadlineRepo, fin.ID, "Quiz", day.Add(9*time.Hour), "09:00", false)
	allDay := testutil.CreateDeadline(t, deadlineRepo, "", "Pay rent", day, "", false)
	earlier := testutil.CreateDeadline(t, deadlineRepo, fin.ID, "Reading", day.AddDate(0, 0, -1), "", true)

	req, rec := newRequest(http.MethodGet, "/v1/deadlines")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var deadlines []deadline.Deadline
	unmarshal(t, rec, &deadlines)
	if assert.Len(t, deadlines, 3) {
		assert.Equal(t, earlier.ID, deadlines[0].ID)
		assert.Equal(t, allDay.ID, deadlines[1].ID) // all-day first
		assert.Equal(t, timed.ID, deadlines[2].ID)
		assert.Nil(t, deadlines[1].Course)
		assert.Equal(t, "Finance", deadlines[2].Course.Title)
	}

	req, rec = newRequest(http.MethodGet, "/v1/deadlines?open=true&course_id="+fin.ID)
	app.ServeHTTP(rec, req)
	deadlines = nil
	unmarshal(t, rec, &deadlines)
	if assert.Len(t, deadlines, 1) {
		assert.Equal(t, timed.ID, deadlines[0].ID)
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "bad open filter", path: "/v1/deadlines?open=maybe",
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"open": "must be a boolean"}),
		},
	})
}

func Test_deadlineApi_updateAndDelete(t *testing.T) {
	app := setup(t)

	fin := testutil.CreateCourse(t, courseRepo, "FIN", "Finance", 10, 75)
	d := testutil.CreateDeadline(t, deadlineRepo, fin.ID, "Quiz", time.Now().AddDate(0, 0, 3), "", false)
	body := marshalObj(t, map[string]string{
		"title": "Final quiz", "due_date": "2025-04-01", "due_time": "10:00", "type": "Exam", "category": "Other",
	})

	runHTTPTests(t, app, []httpTest{
		{
			name: "update unknown", method: http.MethodPut, path: "/v1/deadlines/" + uuid.NewString(), body: body,
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "deadline not found"}),
		},
		{
			name: "delete unknown", method: http.MethodDelete, path: "/v1/deadlines/" + uuid.NewString(),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "deadline not found"}),
		},
		{
			name: "toggle unknown", method: http.MethodPost, path: "/v1/deadlines/" + uuid.NewString() + "/toggle",
			body: []byte(`{"current_state": false}`), wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "deadline not found"}),
		},
	})

	// the course page shows the deadline until it moves away
	assert.NoError(t, cache.Set(context.Background(), core.CourseView(fin.ID), []byte(`{}`)))

	req, rec := newRequest(http.MethodPut, "/v1/deadlines/"+d.ID, body)
	app.ServeHTTP(rec, req)
	var updated deadline.Deadline
	successMessage(t, rec, http.StatusOK, "Deadline updated.", &updated)
	assert.Equal(t, "Final quiz", updated.Title)
	assert.False(t, updated.CourseID.Valid)

	_, ok, _ := cache.Get(req.Context(), core.CourseView(fin.ID))
	assert.False(t, ok)

	req, rec = newRequest(http.MethodDelete, "/v1/deadlines/"+d.ID)
	app.ServeHTTP(rec, req)
	successMessage(t, rec, http.StatusOK, "Deadline deleted.", nil)

	req, rec = newRequest(http.MethodGet, "/v1/deadlines/"+d.ID)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_deadlineApi_toggle(t *testing.T) {
	app := setup(t)

	d := testutil.CreateDeadline(t, deadlineRepo, "", "Pay rent", time.Now().AddDate(0, 0, 1), "", false)

	toggle := func(currentState bool) deadline.Deadline {
		req, rec := newRequest(http.MethodPost, "/v1/deadlines/"+d.ID+"/toggle", marshalObj(t, ToggleRequest{CurrentState: currentState}))
		app.ServeHTTP(rec, req)
		var got deadline.Deadline
		successMessage(t, rec, http.StatusOK, "Deadline updated.", &got)
		return got
	}

	assert.True(t, toggle(false).IsCompleted)
	assert.False(t, toggle(true).IsCompleted)
	// last write wins: a stale state is not rejected
	assert.True(t, toggle(false).IsCompleted)
	assert.True(t, toggle(false).IsCompleted)
}

func Test_deadlineApi_priorities(t *testing.T) {
	app := setup(t)

	getSummary := func() deadline.PrioritySummary {
		req, rec := newRequest(http.MethodGet, "/v1/deadlines/priorities")
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		var summary deadline.PrioritySummary
		unmarshal(t, rec, &summary)
		return summary
	}

	t.Run("nothing due", func(t *testing.T) {
		summary := getSummary()
		assert.NotEmpty(t, summary.OverallSummary)
		assert.Empty(t, summary.PrioritizedList)
		assert.False(t, summary.Fallback)
		assert.Equal(t, 0, prioritizer.Calls())
	})

	now := time.Now().UTC()
	for i := 0; i < 12; i++ {
		testutil.CreateDeadline(t, deadlineRepo, "", "Task", now.AddDate(0, 0, i), "", false)
	}
	done := testutil.CreateDeadline(t, deadlineRepo, "", "Done", now.AddDate(0, 0, -1), "", true)

	t.Run("ranked", func(t *testing.T) {
		prioritizer.Summary = deadline.PrioritySummary{
			OverallSummary:  "Focus on the first task.",
			PrioritizedList: []deadline.RankedDeadline{{ID: "x", Priority: deadline.PriorityHigh}},
		}
		summary := getSummary()
		assert.Equal(t, prioritizer.Summary, summary)

		if assert.Equal(t, 1, prioritizer.Calls()) {
			req := prioritizer.Requests[0]
			assert.Len(t, req.Deadlines, deadline.MaxPriorityInput)
			for _, item := range req.Deadlines {
				assert.NotEqual(t, done.ID, item.ID)
				assert.Equal(t, "Task", item.Course)
			}
		}
	})

	t.Run("bad shape", func(t *testing.T) {
		prioritizer.Summary = deadline.PrioritySummary{
			OverallSummary:  "Too many",
			PrioritizedList: []deadline.RankedDeadline{{ID: "x", Priority: "Urgent"}},
		}
		summary := getSummary()
		assert.True(t, summary.Fallback)
		assert.Empty(t, summary.PrioritizedList)
	})

	t.Run("delegate failure", func(t *testing.T) {
		prioritizer.Err = errors.New("503 service unavailable")
		summary := getSummary()
		assert.True(t, summary.Fallback)
		assert.NotEmpty(t, summary.OverallSummary)
	})
}
