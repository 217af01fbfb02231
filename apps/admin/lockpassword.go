package main

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const defaultHashCost = bcrypt.DefaultCost

func (cli *commandLine) lockPassword(pwd []byte, cost int) error {
	hash, err := bcrypt.GenerateFromPassword(pwd, cost)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s_LOCKPASSWORDHASH=%s\n", cli.envPrefix, hash)
	return nil
}
