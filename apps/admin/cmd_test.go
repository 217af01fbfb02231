package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/core/notify"
	emailsvc "github.com/trezcool/mbatrack/services/email"
	pushsvc "github.com/trezcool/mbatrack/services/push"
	inmemdb "github.com/trezcool/mbatrack/storage/database/inmem"
	"github.com/trezcool/mbatrack/tests"
)

var (
	db     *inmemdb.DB
	pusher *pushsvc.ConsolePusher
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	conf := core.NewTestConfig()
	logger := testutil.NewLogger(conf)
	validate, _ := testutil.NewValidator()

	// set up DB & services
	db = inmemdb.Open()
	pusher = pushsvc.NewConsolePusher(logger)
	deadlineSvc := deadline.NewService(
		inmemdb.NewDeadlineRepository(db), &testutil.FakePrioritizer{}, validate, nil, logger, conf,
	)
	notifySvc := notify.NewService(
		inmemdb.NewTokenRepository(db), deadlineSvc, pusher, emailsvc.NewConsoleServiceMock(logger, conf), validate, logger, conf,
	)

	// start CLI
	var out bytes.Buffer
	return &commandLine{
		notifySvc: notifySvc,
		envPrefix: "TEST",
		out:       &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(_ context.Context, _ *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course_colors", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_lockPassword(t *testing.T) {
	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no password", args: []string{"lockpassword"}, wantErr: errHelp},
		{name: "hash password", args: []string{"lockpassword", "-cost", "4"}, extra: extra{pwd: "open sesame"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		cli, out := setup(t)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			var hash string
			for _, line := range strings.Split(out.String(), "\n") {
				if strings.HasPrefix(line, "TEST_LOCKPASSWORDHASH=") {
					hash = strings.TrimPrefix(line, "TEST_LOCKPASSWORDHASH=")
				}
			}
			if assert.NotEmpty(t, hash) {
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(tt.extra.(extra).pwd)))
			}
		})
	}
}

func Test_commandLine_remind(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()

	now := time.Now().UTC()
	testutil.CreateDeadline(t, inmemdb.NewDeadlineRepository(db), "", "Submit essay", now.Add(10*time.Minute), now.Add(10*time.Minute).Format(core.TimeLayout), false)
	testutil.CreateDeadline(t, inmemdb.NewDeadlineRepository(db), "", "Read chapter", now.Add(3*time.Hour), "", false)
	_, err := inmemdb.NewTokenRepository(db).UpsertToken(ctx, notify.Token{ID: "t1", Token: "device-token-0001", CreatedAt: now})
	assert.NoError(t, err)

	if err = cli.run([]string{"admin", "remind"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	assert.Contains(t, out.String(), "Processed 1 deadlines. Sent 1 notifications.")
	if sent := pusher.Sent(); assert.Len(t, sent, 1) {
		assert.Equal(t, "device-token-0001", sent[0].Token)
		assert.Equal(t, `"Submit essay" is due in the next 30 minutes! Stay focused.`, sent[0].Notification.Body)
	}
}
