package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) deleteUser(ctx context.Context, email string) error {
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = cli.usrSvc.Delete(ctx, usr.ID); err != nil {
		return err
	}
	fmt.Printf("user %d (%s) deleted\n", usr.ID, usr.Email)
	return nil
}
