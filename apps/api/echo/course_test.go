package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/mbatrack/apps/api/echo"
	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/course"
	"github.com/trezcool/mbatrack/tests"
)

func Test_courseApi_create(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{
			name: "required fields", method: http.MethodPost, path: "/v1/courses", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"title": "this field is required", "code": "this field is required"}),
		},
		{
			name: "blank title", method: http.MethodPost, path: "/v1/courses", body: []byte(`{"title": "   ", "code": "FIN"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"title": "this field cannot be blank"}),
		},
		{
			name: "unknown module", method: http.MethodPost, path: "/v1/courses",
			body:     []byte(`{"title": "Finance", "code": "FIN", "module_id": "` + uuid.NewString() + `"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"module_id": "module not found"}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("create", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/courses", []byte(`{"title": " Corporate Finance ", "code": "cf101", "total_scheduled_sessions": 20}`))
		app.ServeHTTP(rec, req)

		var c course.Course
		successMessage(t, rec, http.StatusCreated, "Course added successfully!", &c)
		assert.Equal(t, "Corporate Finance", c.Title)
		assert.Equal(t, "CF101", c.Code)
		assert.Equal(t, 20, c.TotalScheduledSessions)
		assert.Equal(t, course.DefaultMandatoryAttendance, c.MandatoryAttendancePercentage)
		assert.False(t, c.ModuleID.Valid)
	})
}

func Test_courseApi_query(t *testing.T) {
	app := setup(t)

	today := time.Now().UTC()
	fin := testutil.CreateCourse(t, courseRepo, "FIN", "Finance", 10, 80)
	mkt := testutil.CreateCourse(t, courseRepo, "MKT", "Marketing", 0, 75)
	testutil.CreateSession(t, courseRepo, fin.ID, today, course.StatusPresent)
	testutil.CreateSession(t, courseRepo, fin.ID, today, course.StatusProxy) // same date accepted
	testutil.CreateSession(t, courseRepo, fin.ID, today.AddDate(0, 0, -1), course.StatusAbsent)
	testutil.CreateSession(t, courseRepo, fin.ID, today.AddDate(0, 0, -2), course.StatusNotTaken)

	req, rec := newRequest(http.MethodGet, "/v1/courses")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var cards []course.Card
	unmarshal(t, rec, &cards)
	if !assert.Len(t, cards, 2) {
		return
	}
	assert.Equal(t, fin.ID, cards[0].ID)
	assert.Equal(t, mkt.ID, cards[1].ID)

	stats := cards[0].Stats
	assert.Equal(t, 3, stats.Conducted)
	assert.Equal(t, 2, stats.Attended)
	assert.Equal(t, 67, stats.Percentage)
	assert.Equal(t, 90, stats.ProjectedPercentage)
	assert.Equal(t, course.BunkBudget{Applicable: true, MinRequired: 8, Allowed: 2, Left: 1, Severity: course.SeverityWarning}, stats.Bunks)

	// no scheduled sessions
	assert.Equal(t, 100, cards[1].Stats.Percentage)
	assert.Equal(t, course.SeverityNotApplicable, cards[1].Stats.Bunks.Severity)

	// the view is cached until a session is added
	_, ok, _ := cache.Get(req.Context(), core.ViewCourses)
	assert.True(t, ok)

	req, rec = newRequest(http.MethodPost, "/v1/courses/"+mkt.ID+"/sessions", []byte(`{"date": "2025-01-10", "status": "absent"}`))
	app.ServeHTTP(rec, req)
	successMessage(t, rec, http.StatusCreated, "Session added!", nil)

	_, ok, _ = cache.Get(req.Context(), core.ViewCourses)
	assert.False(t, ok)
}

func Test_courseApi_retrieve(t *testing.T) {
	app := setup(t)

	fin := testutil.CreateCourse(t, courseRepo, "FIN", "Finance", 4, 75)
	s1 := testutil.CreateSession(t, courseRepo, fin.ID, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), course.StatusAbsent)
	s2 := testutil.CreateSession(t, courseRepo, fin.ID, time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), course.StatusPresent)

	runHTTPTests(t, app, []httpTest{
		{
			name: "not found", path: "/v1/courses/" + uuid.NewString(),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "course not found"}),
		},
	})

	req, rec := newRequest(http.MethodGet, "/v1/courses/"+fin.ID)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var detail course.Detail
	unmarshal(t, rec, &detail)
	assert.Equal(t, fin.ID, detail.ID)
	assert.Nil(t, detail.Module)
	if assert.Len(t, detail.Sessions, 2) {
		assert.Equal(t, s2.ID, detail.Sessions[0].ID) // newest first
		assert.Equal(t, s1.ID, detail.Sessions[1].ID)
	}
	assert.Equal(t, 50, detail.Stats.Percentage)
	assert.Equal(t, course.SeverityCritical, detail.Stats.Bunks.Severity)
}

func Test_courseApi_update(t *testing.T) {
	app := setup(t)

	fin := testutil.CreateCourse(t, courseRepo, "FIN", "Finance", 4, 75)

	runHTTPTests(t, app, []httpTest{
		{
			name: "not found", method: http.MethodPut, path: "/v1/courses/" + uuid.NewString(),
			body:     []byte(`{"title": "Finance", "code": "FIN"}`),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "invalid", method: http.MethodPut, path: "/v1/courses/" + fin.ID,
			body:     []byte(`{"code": "FIN"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"title": "this field is required"}),
		},
	})

	// module assignment
	req, rec := newRequest(http.MethodPost, "/v1/modules", []byte(`{"title": "Core", "semester": "Fall"}`))
	app.ServeHTTP(rec, req)
	var mod course.Module
	successMessage(t, rec, http.StatusCreated, "Module added successfully!", &mod)

	req, rec = newRequest(http.MethodPut, "/v1/courses/"+fin.ID, marshalObj(t, map[string]interface{}{
		"title": "Advanced Finance", "code": "fin2", "total_scheduled_sessions": 30,
		"mandatory_attendance_percentage": 90, "module_id": mod.ID,
	}))
	app.ServeHTTP(rec, req)
	var c course.Course
	successMessage(t, rec, http.StatusOK, "Course updated successfully!", &c)
	assert.Equal(t, "Advanced Finance", c.Title)
	assert.Equal(t, "FIN2", c.Code)
	assert.Equal(t, 90, c.MandatoryAttendancePercentage)
	assert.Equal(t, mod.ID, c.ModuleID.String)

	req, rec = newRequest(http.MethodGet, "/v1/modules")
	app.ServeHTTP(rec, req)
	var mods []course.Module
	unmarshal(t, rec, &mods)
	if assert.Len(t, mods, 1) {
		assert.Equal(t, "Fall", mods[0].Semester.String)
	}
}

func Test_courseApi_sessions(t *testing.T) {
	app := setup(t)

	fin := testutil.CreateCourse(t, courseRepo, "FIN", "Finance", 4, 75)
	sess := testutil.CreateSession(t, courseRepo, fin.ID, time.Now(), course.StatusPresent)

	runHTTPTests(t, app, []httpTest{
		{
			name: "bad status", method: http.MethodPost, path: "/v1/courses/" + fin.ID + "/sessions",
			body:     []byte(`{"date": "2025-01-10", "status": "late"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"status": "status must be one of present, absent, proxy or not-taken"}),
		},
		{
			name: "bad date", method: http.MethodPost, path: "/v1/courses/" + fin.ID + "/sessions",
			body:     []byte(`{"date": "10/01/2025", "status": "present"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"date": "date must be a YYYY-MM-DD or RFC3339 date"}),
		},
		{
			name: "unknown course", method: http.MethodPost, path: "/v1/courses/" + uuid.NewString() + "/sessions",
			body:     []byte(`{"date": "2025-01-10", "status": "present"}`),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "delete unknown", method: http.MethodDelete, path: "/v1/sessions/" + uuid.NewString(),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "session not found"}),
		},
		{
			name: "delete", method: http.MethodDelete, path: "/v1/sessions/" + sess.ID,
			wantCode: http.StatusOK, wantData: marshalObj(t, SuccessResponse{Success: true, Message: "Session deleted."}),
		},
	})

	sessions, err := courseRepo.QuerySessions(context.Background(), fin.ID)
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}
