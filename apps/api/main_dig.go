package main

import (
	"context"
	"expvar"
	"log"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	dig_container "github.com/trezcool/mbatrack/apps/api/di/dig"
	echoapi "github.com/trezcool/mbatrack/apps/api/echo"
	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/course"
	"github.com/trezcool/mbatrack/core/deadline"
)

type app struct {
	conf     *core.Config
	logger   core.Logger
	dbLogger core.Logger
	db       *sqlx.DB
	server   *echoapi.Server
}

func startWithDig() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		db *sqlx.DB,
		validate *validator.Validate,
		translator ut.Translator,
		server *echoapi.Server,
	) {
		core.InitValidators(validate, translator)
		course.InitValidators(validate, translator)
		deadline.InitValidators(validate, translator)
		core.ParseEmailTemplates(apiLogger)

		a := app{conf: conf, logger: apiLogger, dbLogger: dbLoggerParam.Logger, db: db, server: server}
		a.run()
	}))
}

func (a app) run() {
	a.logger.Info("mbatrack starting", map[string]interface{}{
		"build":         a.conf.Build,
		"env":           a.conf.Env,
		"timezone":      a.conf.Location().String(),
		"ai":            a.conf.AI.APIKey != "",
		"push":          a.conf.FCM.ProjectID != "",
		"redis":         a.conf.RedisURL != "",
		"lockScreen":    a.conf.LockPasswordHash != "",
		"mobileEnabled": a.conf.MobileAPIKey != "",
	})
	defer a.closeDB()
	defer a.logger.Info("mbatrack stopped")

	a.startDebugServer()
	go a.server.Start()
	a.waitForShutdown()
}

// startDebugServer serves /debug/pprof and /debug/vars on the debug host.
func (a app) startDebugServer() {
	expvar.NewString("build").Set(a.conf.Build)
	expvar.NewString("env").Set(a.conf.Env)
	expvar.NewString("timezone").Set(a.conf.Timezone)

	go func() {
		if err := http.ListenAndServe(a.conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			a.logger.Error("debug server closed", err)
		}
	}()
}

// waitForShutdown blocks until the server fails or a stop signal arrives, then drains
// in-flight requests (reminder runs included) within the shutdown timeout.
func (a app) waitForShutdown() {
	select {
	case err := <-a.server.Errors():
		a.logger.Fatal("api server error", err)

	case sig := <-a.server.ShutdownSignal():
		a.logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})

		ctx, cancel := context.WithTimeout(context.Background(), a.conf.Server.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("graceful shutdown failed, forcing close", err)
			if err = a.server.Close(); err != nil {
				a.logger.Fatal("could not close api server", err)
			}
		}
	}
}

func (a app) closeDB() {
	if err := a.db.Close(); err != nil {
		a.dbLogger.Error("closing database", err)
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
