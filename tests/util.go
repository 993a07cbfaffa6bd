// Package testutil provides fixtures over the in-memory store.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/labtrack/backend/core"
	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/discussion"
	"github.com/labtrack/backend/core/enrollment"
	"github.com/labtrack/backend/core/user"
	emailsvc "github.com/labtrack/backend/services/email"
	logsvc "github.com/labtrack/backend/services/logger"
	inmemdb "github.com/labtrack/backend/storage/database/inmem"
)

// Env holds a fresh in-memory store with its repositories and services.
type Env struct {
	Conf       *core.Config
	Logger     core.Logger
	Translator ut.Translator
	Validate   *validator.Validate
	MailSvc    core.EmailService

	DB             *inmemdb.DB
	UserRepo       user.Repository
	CourseRepo     course.Repository
	EnrollmentRepo enrollment.Repository
	DiscussionRepo discussion.Repository

	UserSvc       user.Service
	CourseSvc     course.Service
	EnrollmentSvc enrollment.Service
	DiscussionSvc discussion.Service
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	env := &Env{Conf: core.NewTestConfig()}
	env.Logger = logsvc.NewRollbarLogger(zerolog.Nop(), env.Conf)
	env.Translator = core.NewTranslator()
	env.Validate = core.NewValidate(env.Translator)
	env.MailSvc = emailsvc.NewConsoleServiceMock(env.Conf, env.Logger)

	env.DB = inmemdb.Open()
	env.UserRepo = inmemdb.NewUserRepository(env.DB)
	env.CourseRepo = inmemdb.NewCourseRepository(env.DB)
	env.EnrollmentRepo = inmemdb.NewEnrollmentRepository(env.DB)
	env.DiscussionRepo = inmemdb.NewDiscussionRepository(env.DB)

	env.UserSvc = user.NewService(env.UserRepo, env.MailSvc)
	env.CourseSvc = course.NewService(env.CourseRepo, env.Validate)
	env.EnrollmentSvc = enrollment.NewService(env.EnrollmentRepo, env.CourseSvc, env.UserSvc, env.MailSvc)
	env.DiscussionSvc = discussion.NewService(env.DiscussionRepo, env.EnrollmentSvc, env.CourseSvc, env.Validate)
	return env
}

func CreateUser(t *testing.T, repo user.Repository, name, email, studentID, pwd string, isInstructor bool) user.User {
	t.Helper()

	usr := user.User{
		Name:         name,
		Email:        email,
		StudentID:    studentID,
		Track:        "",
		IsInstructor: isInstructor,
		CreatedAt:    time.Now().UTC(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateCourse creates a course with n items of each kind of counts.
func CreateCourse(t *testing.T, svc course.Service, title string, counts course.ItemCounts) (course.Course, map[course.Kind][]course.Item) {
	t.Helper()
	ctx := context.Background()

	c, err := svc.Create(ctx, course.NewCourse{Title: title, Description: title + " description"})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	items := make(map[course.Kind][]course.Item, len(counts))
	for _, kind := range course.Kinds {
		for i := 1; i <= counts[kind]; i++ {
			item, err := svc.CreateItem(ctx, c.ID, kind, course.NewItem{Title: fmt.Sprintf("%s %s %d", title, kind, i)})
			if err != nil {
				t.Fatalf("createItem() failed: %v", err)
			}
			items[kind] = append(items[kind], item)
		}
	}
	return c, items
}

func Enroll(t *testing.T, repo enrollment.Repository, userID, courseID int) enrollment.Enrollment {
	t.Helper()

	e, err := repo.CreateEnrollment(context.Background(), enrollment.Enrollment{
		UserID:       userID,
		CourseID:     courseID,
		DateEnrolled: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("enroll() failed: %v", err)
	}
	return e
}

func CreateDiscussion(t *testing.T, repo discussion.Repository, board discussion.Board, parentID, userID int, content string) discussion.Discussion {
	t.Helper()

	d, err := repo.CreateDiscussion(context.Background(), discussion.Discussion{
		Board:     board,
		ParentID:  parentID,
		UserID:    userID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createDiscussion() failed: %v", err)
	}
	return d
}
