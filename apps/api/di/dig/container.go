package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/trezcool/mbatrack/apps/api/echo"
	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/casestudy"
	"github.com/trezcool/mbatrack/core/course"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/core/goal"
	"github.com/trezcool/mbatrack/core/journal"
	"github.com/trezcool/mbatrack/core/notify"
	"github.com/trezcool/mbatrack/core/skill"
	aisvc "github.com/trezcool/mbatrack/services/ai"
	cachesvc "github.com/trezcool/mbatrack/services/cache"
	emailsvc "github.com/trezcool/mbatrack/services/email"
	logsvc "github.com/trezcool/mbatrack/services/logger"
	pushsvc "github.com/trezcool/mbatrack/services/push"
	"github.com/trezcool/mbatrack/storage/database"
	sqlxrepos "github.com/trezcool/mbatrack/storage/database/sqlx"
)

const setUpTimeout = 30 * time.Second

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In

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

func newZap(conf *core.Config) *zap.Logger {
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatal(errors.Wrap(err, "building zap logger").Error())
	}
	return zl
}

func newLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("API"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("DB"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		ctx, cancel := context.WithTimeout(context.Background(), setUpTimeout)
		defer cancel()

		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(ctx, db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(logger, conf)
	}
	return emailsvc.NewSendgridService(logger, conf)
}

// newViewCache shares cached views through redis when configured, in process otherwise.
func newViewCache(conf *core.Config, logger core.Logger) core.ViewCache {
	if conf.RedisURL == "" {
		return cachesvc.NewMemoryCache()
	}
	ctx, cancel := context.WithTimeout(context.Background(), setUpTimeout)
	defer cancel()

	cache, err := cachesvc.NewRedisCache(ctx, conf.RedisURL)
	if err != nil {
		logger.Error("redis unavailable, caching views in memory", err)
		return cachesvc.NewMemoryCache()
	}
	return cache
}

func newPusher(conf *core.Config, logger core.Logger) notify.Pusher {
	if conf.FCM.ProjectID == "" || conf.FCM.ServiceAccountKey == "" {
		return pushsvc.NewConsolePusher(logger)
	}
	pusher, err := pushsvc.NewFCMPusher(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up FCM: %v", err), err)
	}
	return pusher
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		Validate:     p.Validate,
		Translator:   p.Translator,
		Cache:        p.Cache,
		CourseSvc:    p.CourseSvc,
		DeadlineSvc:  p.DeadlineSvc,
		SkillSvc:     p.SkillSvc,
		GoalSvc:      p.GoalSvc,
		JournalSvc:   p.JournalSvc,
		CaseStudySvc: p.CaseStudySvc,
		NotifySvc:    p.NotifySvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZap))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(func(db *sqlx.DB) core.DB { return db }))
	must(c.Provide(func(db *sqlx.DB) core.DBExecutor { return db }))
	must(c.Provide(newEmailService))
	must(c.Provide(newViewCache))
	must(c.Provide(newPusher))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	// repositories
	must(c.Provide(sqlxrepos.NewCourseRepository))
	must(c.Provide(sqlxrepos.NewDeadlineRepository))
	must(c.Provide(sqlxrepos.NewSkillRepository))
	must(c.Provide(sqlxrepos.NewGoalRepository))
	must(c.Provide(sqlxrepos.NewJournalRepository))
	must(c.Provide(sqlxrepos.NewCaseStudyRepository))
	must(c.Provide(sqlxrepos.NewTokenRepository))

	// AI delegates
	must(c.Provide(aisvc.NewClient, dig.As(
		new(deadline.Prioritizer),
		new(casestudy.FrameworkRecommender),
		new(casestudy.Rater),
	)))

	// services
	must(c.Provide(course.NewService))
	must(c.Provide(deadline.NewService))
	must(c.Provide(skill.NewService))
	must(c.Provide(goal.NewService))
	must(c.Provide(journal.NewService))
	must(c.Provide(casestudy.NewService))
	must(c.Provide(notify.NewService))

	must(c.Provide(newServer))

	if os.Getenv("DIG_VISUALIZE") != "" {
		_ = dig.Visualize(c, os.Stdout)
	}

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
