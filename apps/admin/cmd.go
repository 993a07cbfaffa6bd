package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sql.DB
	usrSvc    user.Service
	courseSvc course.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  adduser -email EMAIL -name NAME -student-id ID [-track TRACK] [-instructor] - create or update a user")
	fmt.Println("  resetpassword -email EMAIL - reset user's password")
	fmt.Println("  deleteuser -email EMAIL - delete a user with their enrollments and discussions")
	fmt.Println("  seed -file FILE - create the courses of a YAML file")
	fmt.Println("  deletecourse -id ID - delete a course with its content")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's name.")
	addUserStudentID := addUserCmd.String("student-id", "", "The user's student ID.")
	addUserTrack := addUserCmd.String("track", "", "The user's track.")
	addUserInstructor := addUserCmd.Bool("instructor", false, "Make the user an instructor.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	deleteUserCmd := flag.NewFlagSet("deleteuser", flag.ContinueOnError)
	deleteUserEmail := deleteUserCmd.String("email", "", "The user's email.")

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedFile := seedCmd.String("file", "", "The YAML file listing the courses to create.")

	deleteCourseCmd := flag.NewFlagSet("deletecourse", flag.ContinueOnError)
	deleteCourseID := deleteCourseCmd.Int("id", 0, "The course ID.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" || *addUserName == "" || *addUserStudentID == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, user.NewUser{
			Name:      *addUserName,
			Email:     *addUserEmail,
			StudentID: *addUserStudentID,
			Track:     *addUserTrack,
			Password:  pwd,
		}, *addUserInstructor)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)

	case "deleteuser":
		if err := deleteUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *deleteUserEmail == "" {
			deleteUserCmd.Usage()
			return errHelp
		}
		return cli.deleteUser(ctx, *deleteUserEmail)

	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(ctx, *seedFile)

	case "deletecourse":
		if err := deleteCourseCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *deleteCourseID <= 0 {
			deleteCourseCmd.Usage()
			return errHelp
		}
		return cli.deleteCourse(ctx, *deleteCourseID)

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
