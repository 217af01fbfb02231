package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) remind(ctx context.Context) error {
	res, err := cli.notifySvc.SendReminders(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, res.Message)
	return nil
}
