package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/labtrack/backend/core/course"
)

type (
	seedFile struct {
		Courses []seedCourse `yaml:"courses"`
	}

	seedCourse struct {
		course.NewCourse `yaml:",inline"`
		InstructorEmail  string `yaml:"instructor_email"`
	}
)

// seed creates the courses of a YAML file with their labs, quizzes and exams.
// Courses whose title already exists are skipped.
func (cli *commandLine) seed(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading seed file")
	}
	var file seedFile
	if err = yaml.Unmarshal(raw, &file); err != nil {
		return errors.Wrap(err, "parsing seed file")
	}

	existing, err := cli.courseSvc.QueryAll(ctx)
	if err != nil {
		return err
	}
	titles := make(map[string]bool, len(existing))
	for _, c := range existing {
		titles[c.Title] = true
	}

	var created int
	for _, sc := range file.Courses {
		if titles[sc.Title] {
			continue
		}
		nc := sc.NewCourse
		if sc.InstructorEmail != "" {
			instructor, err := cli.usrSvc.GetByEmail(ctx, sc.InstructorEmail)
			if err != nil {
				return errors.Wrapf(err, "finding instructor of %q", sc.Title)
			}
			nc.InstructorID = &instructor.ID
		}
		if _, err = cli.courseSvc.Create(ctx, nc); err != nil {
			return errors.Wrapf(err, "creating course %q", sc.Title)
		}
		titles[sc.Title] = true
		created++
	}
	fmt.Printf("%d course(s) seeded\n", created)
	return nil
}

func (cli *commandLine) deleteCourse(ctx context.Context, id int) error {
	if err := cli.courseSvc.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("course %d deleted\n", id)
	return nil
}
