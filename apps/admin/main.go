package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/core/notify"
	aisvc "github.com/trezcool/mbatrack/services/ai"
	emailsvc "github.com/trezcool/mbatrack/services/email"
	logsvc "github.com/trezcool/mbatrack/services/logger"
	pushsvc "github.com/trezcool/mbatrack/services/push"
	"github.com/trezcool/mbatrack/storage/database"
	sqlxrepos "github.com/trezcool/mbatrack/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rl := logsvc.NewRollbarLogger(zl.Named("ADMIN"), conf)
	defer rl.Sync()
	logger = rl

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// set up services
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	deadline.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger)

	var pusher notify.Pusher = pushsvc.NewConsolePusher(logger)
	if conf.FCM.ProjectID != "" && conf.FCM.ServiceAccountKey != "" {
		pusher, err = pushsvc.NewFCMPusher(context.Background(), conf)
		errAndDie(err)
	}
	var mailSvc core.EmailService = emailsvc.NewConsoleService(logger, conf)
	if conf.SendgridApiKey != "" {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	deadlineSvc := deadline.NewService(
		sqlxrepos.NewDeadlineRepository(db), aisvc.NewClient(logger, conf), validate, nil /* cache */, logger, conf,
	)
	notifySvc := notify.NewService(sqlxrepos.NewTokenRepository(db), deadlineSvc, pusher, mailSvc, validate, logger, conf)

	// start CLI
	cli := commandLine{
		db:        db,
		notifySvc: notifySvc,
		envPrefix: conf.Env,
		out:       os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		rl.Sync()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
