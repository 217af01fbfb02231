package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/mbatrack/apps/api/echo"
	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/skill"
	"github.com/trezcool/mbatrack/tests"
)

func Test_skillApi_create(t *testing.T) {
	app := setup(t)

	runHTTPTests(t, app, []httpTest{
		{
			name: "required fields", method: http.MethodPost, path: "/v1/skills", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"name": "this field is required", "type": "this field is required"}),
		},
		{
			name: "confidence out of range", method: http.MethodPost, path: "/v1/skills",
			body:     []byte(`{"name": "Excel", "type": "Hard", "confidence": 6}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"confidence": "confidence must be 5 or less"}),
		},
	})

	req, rec := newRequest(http.MethodPost, "/v1/skills", []byte(`{"name": " Negotiation ", "type": "Soft"}`))
	app.ServeHTTP(rec, req)

	var s skill.Skill
	successMessage(t, rec, http.StatusCreated, "Skill added successfully!", &s)
	assert.Equal(t, "Negotiation", s.Name)
	assert.Equal(t, 1, s.LatestConfidence) // defaults to the lowest level

	// the first confidence log is written with the skill
	req, rec = newRequest(http.MethodGet, "/v1/skills/"+s.ID+"/history")
	app.ServeHTTP(rec, req)
	var logs []skill.ConfidenceLog
	unmarshal(t, rec, &logs)
	if assert.Len(t, logs, 1) {
		assert.Equal(t, 1, logs[0].ConfidenceLevel)
	}
}

func Test_skillApi_confidence(t *testing.T) {
	app := setup(t)

	s := testutil.CreateSkill(t, skillRepo, "Valuation", skill.TypeHard, 2)

	runHTTPTests(t, app, []httpTest{
		{
			name: "missing level", method: http.MethodPut, path: "/v1/skills/" + s.ID + "/confidence", body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"level": "this field is required"}),
		},
		{
			name: "unknown skill", method: http.MethodPut, path: "/v1/skills/" + uuid.NewString() + "/confidence",
			body:     []byte(`{"level": 3}`),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "skill not found"}),
		},
		{
			name: "unknown history", path: "/v1/skills/" + uuid.NewString() + "/history",
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "skill not found"}),
		},
	})

	for _, level := range []int{4, 3} {
		req, rec := newRequest(http.MethodPut, "/v1/skills/"+s.ID+"/confidence", marshalObj(t, skill.UpdateConfidence{Level: level}))
		app.ServeHTTP(rec, req)
		var got skill.Skill
		successMessage(t, rec, http.StatusOK, "Confidence updated.", &got)
		assert.Equal(t, level, got.LatestConfidence)
	}

	logs, err := skillRepo.QueryConfidenceLogs(context.Background(), s.ID)
	assert.NoError(t, err)
	levels := make([]int, 0, len(logs))
	for _, log := range logs {
		levels = append(levels, log.ConfidenceLevel)
	}
	assert.Equal(t, []int{2, 4, 3}, levels)
}

func Test_skillApi_updateAndDelete(t *testing.T) {
	app := setup(t)

	s := testutil.CreateSkill(t, skillRepo, "Excel", skill.TypeHard, 3)
	testutil.CreateSkill(t, skillRepo, "Accounting", skill.TypeHard, 2)

	req, rec := newRequest(http.MethodGet, "/v1/skills")
	app.ServeHTTP(rec, req)
	var skills []skill.Skill
	unmarshal(t, rec, &skills)
	if assert.Len(t, skills, 2) {
		assert.Equal(t, "Accounting", skills[0].Name)
	}

	req, rec = newRequest(http.MethodPut, "/v1/skills/"+s.ID, []byte(`{"name": "Spreadsheets", "type": "Hard", "notes": "pivot tables"}`))
	app.ServeHTTP(rec, req)
	var updated skill.Skill
	successMessage(t, rec, http.StatusOK, "Skill updated.", &updated)
	assert.Equal(t, "Spreadsheets", updated.Name)
	assert.Equal(t, "pivot tables", updated.Notes.String)
	assert.Equal(t, 3, updated.LatestConfidence)

	_, ok, _ := cache.Get(req.Context(), core.ViewSkills)
	assert.False(t, ok)

	runHTTPTests(t, app, []httpTest{
		{
			name: "update unknown", method: http.MethodPut, path: "/v1/skills/" + uuid.NewString(),
			body:     []byte(`{"name": "Excel", "type": "Hard"}`),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "skill not found"}),
		},
		{
			name: "delete", method: http.MethodDelete, path: "/v1/skills/" + s.ID,
			wantCode: http.StatusOK, wantData: marshalObj(t, SuccessResponse{Success: true, Message: "Skill deleted."}),
		},
		{
			name: "delete twice", method: http.MethodDelete, path: "/v1/skills/" + s.ID,
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "skill not found"}),
		},
	})

	// the history goes with the skill
	logs, err := skillRepo.QueryConfidenceLogs(req.Context(), s.ID)
	assert.NoError(t, err)
	assert.Empty(t, logs)
}
