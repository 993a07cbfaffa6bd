package main

import (
	"context"
	"fmt"

	"github.com/labtrack/backend/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(ctx context.Context, nu user.NewUser, isInstructor bool) error {
	usr, err := cli.usrSvc.AddUser(ctx, nu, isInstructor)
	if err != nil {
		return err
	}
	fmt.Printf("user %d (%s) saved\n", usr.ID, usr.Email)
	return nil
}
