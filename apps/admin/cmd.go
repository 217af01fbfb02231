package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/mbatrack/core/notify"
	"github.com/trezcool/mbatrack/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	gooseRunFunc     = database.Migrate  // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sqlx.DB
	notifySvc notify.Service
	envPrefix string
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]  - run a goose command (up, down, status, up-to VERSION, ...)")
	fmt.Fprintln(cli.out, "  lockpassword            - hash the lock screen password")
	fmt.Fprintln(cli.out, "  remind                  - push reminders for the deadlines due in the next 30 minutes")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	lockPasswordCmd := flag.NewFlagSet("lockpassword", flag.ContinueOnError)
	lockPasswordCmd.SetOutput(cli.out)
	lockPasswordCost := lockPasswordCmd.Int("cost", defaultHashCost, "The bcrypt cost. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "lockpassword":
		if err := lockPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			lockPasswordCmd.Usage()
			return errHelp
		}
		return cli.lockPassword(pwd, *lockPasswordCost)
	case "remind":
		return cli.remind(context.Background())
	default:
		cli.printUsage()
		return errHelp
	}
}
