package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/casestudy"
	"github.com/trezcool/mbatrack/core/course"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/core/goal"
	"github.com/trezcool/mbatrack/core/journal"
	"github.com/trezcool/mbatrack/core/notify"
	"github.com/trezcool/mbatrack/core/skill"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Cache      core.ViewCache

		CourseSvc    course.Service
		DeadlineSvc  deadline.Service
		SkillSvc     skill.Service
		GoalSvc      goal.Service
		JournalSvc   journal.Service
		CaseStudySvc casestudy.Service
		NotifySvc    notify.Service
	}

	Server struct {
		ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	registerAuthAPI(v1, conf)

	locked := v1.Group("", lockMiddleware(conf))
	views := &viewRenderer{cache: s.Cache, logger: s.Logger}
	registerDashboardAPI(locked, views, s.CourseSvc, s.DeadlineSvc, s.GoalSvc)
	registerCourseAPI(locked, views, s.CourseSvc)
	registerDeadlineAPI(locked, views, s.DeadlineSvc)
	registerSkillAPI(locked, views, s.SkillSvc)
	registerGoalAPI(locked, views, s.GoalSvc)
	registerJournalAPI(locked, views, s.JournalSvc)
	registerCaseStudyAPI(locked, views, s.CaseStudySvc)

	registerMobileAPI(s.app.Group("/api/mobile"), mobileApi{
		conf:        conf,
		logger:      s.Logger,
		courseSvc:   s.CourseSvc,
		deadlineSvc: s.DeadlineSvc,
		journalSvc:  s.JournalSvc,
		notifySvc:   s.NotifySvc,
	})
}

func (s *Server) Start() {
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors returns the channel receiving the errors that stopped the server.
func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal returns the channel receiving OS interrupts and internal shutdown requests.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.Conf.AppName+" API!")
}
