package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/mbatrack/apps/api/echo"
	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/casestudy"
	"github.com/trezcool/mbatrack/core/course"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/core/goal"
	"github.com/trezcool/mbatrack/core/journal"
	"github.com/trezcool/mbatrack/core/notify"
	"github.com/trezcool/mbatrack/core/skill"
	cachesvc "github.com/trezcool/mbatrack/services/cache"
	emailsvc "github.com/trezcool/mbatrack/services/email"
	pushsvc "github.com/trezcool/mbatrack/services/push"
	inmemdb "github.com/trezcool/mbatrack/storage/database/inmem"
	"github.com/trezcool/mbatrack/tests"
)

const mobileKey = "test-mobile-key"

var (
	conf  *core.Config
	cache *cachesvc.MemoryCache

	courseRepo    course.Repository
	deadlineRepo  deadline.Repository
	skillRepo     skill.Repository
	goalRepo      goal.Repository
	journalRepo   journal.Repository
	caseStudyRepo casestudy.Repository
	tokenRepo     notify.Repository

	prioritizer *testutil.FakePrioritizer
	rater       *testutil.FakeRater
	recommender *testutil.FakeRecommender
	pusher      *pushsvc.ConsolePusher

	// clock is read by the deadline service on every call
	clock func() time.Time
)

func setup(t *testing.T, confOpts ...func(*core.Config)) *Server {
	conf = core.NewTestConfig()
	for _, opt := range confOpts {
		opt(conf)
	}
	logger := testutil.NewLogger(conf)
	validate, translator := testutil.NewValidator()

	// set up DB & repos
	db := inmemdb.Open()
	courseRepo = inmemdb.NewCourseRepository(db)
	deadlineRepo = inmemdb.NewDeadlineRepository(db)
	skillRepo = inmemdb.NewSkillRepository(db)
	goalRepo = inmemdb.NewGoalRepository(db)
	journalRepo = inmemdb.NewJournalRepository(db)
	caseStudyRepo = inmemdb.NewCaseStudyRepository(db)
	tokenRepo = inmemdb.NewTokenRepository(db)

	// set up delegates
	cache = cachesvc.NewMemoryCache()
	prioritizer = &testutil.FakePrioritizer{}
	rater = &testutil.FakeRater{}
	recommender = &testutil.FakeRecommender{}
	pusher = pushsvc.NewConsolePusher(logger)
	mailSvc := emailsvc.NewConsoleServiceMock(logger, conf)

	// set up services
	clock = time.Now
	deadlineSvc := deadline.NewServiceWithClock(deadlineRepo, prioritizer, validate, cache, logger, conf, func() time.Time {
		return clock()
	})

	// set up server
	return NewServer(ServerDeps{
		Conf:         conf,
		Logger:       logger,
		Validate:     validate,
		Translator:   translator,
		Cache:        cache,
		CourseSvc:    course.NewService(courseRepo, validate, cache, logger),
		DeadlineSvc:  deadlineSvc,
		SkillSvc:     skill.NewService(skillRepo, validate, cache, logger),
		GoalSvc:      goal.NewService(goalRepo, validate, cache, logger),
		JournalSvc:   journal.NewService(journalRepo, validate, cache, logger, conf),
		CaseStudySvc: casestudy.NewService(caseStudyRepo, recommender, rater, validate, cache, logger),
		NotifySvc:    notify.NewService(tokenRepo, deadlineSvc, pusher, mailSvc, validate, logger, conf),
	})
}

type httpErr struct {
	Error string `json:"error"`
}

type mobileErr struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func newMobileRequest(method, path, apiKey string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	req, rec := newRequest(method, path, data...)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	return req, rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// successMessage decodes a SuccessResponse and checks its message.
func successMessage(t *testing.T, rec *httptest.ResponseRecorder, wantCode int, wantMsg string, data interface{}) {
	assert.Equal(t, wantCode, rec.Code, rec.Body.String())
	resp := struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}{}
	unmarshal(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, wantMsg, resp.Message)
	if data != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, data); err != nil {
			t.Fatalf("json.Unmarshal(data) failed: %v", err)
		}
	}
}
