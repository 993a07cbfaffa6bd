package enrollment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/labtrack/backend/core"
	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/user"
)

var (
	// errors
	ErrNotFound        = fmt.Errorf("enrollment %w", core.ErrNotFound)
	ErrAlreadyEnrolled = errors.New("already enrolled")
)

type (
	Repository interface {
		// CreateEnrollment returns ErrAlreadyEnrolled if (UserID, CourseID) already exists.
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, userID, courseID int) (Enrollment, error)
		QueryEnrollments(ctx context.Context, filter QueryFilter) ([]Enrollment, error)
		UpdateProgress(ctx context.Context, id, progress int) error

		// UpsertCompletion looks up the (UserID, ItemID) row of the Kind ledger,
		// then creates or updates it, in a single transaction.
		UpsertCompletion(ctx context.Context, c Completion) (Completion, error)
		QueryCompletions(ctx context.Context, kind course.Kind, userID, courseID int) ([]Completion, error)
		// CountCompleted counts the completed items of a course per Kind, for a user.
		CountCompleted(ctx context.Context, userID, courseID int) (course.ItemCounts, error)
	}

	Service interface {
		Enroll(ctx context.Context, userID int, ne NewEnrollment) (Enrollment, error)
		QueryByUser(ctx context.Context, userID int) ([]Enrollment, error)
		EnrolledUserIDs(ctx context.Context, courseID int) ([]int, error)
		CourseDetail(ctx context.Context, courseID int) (course.Detail, error)
		QueryItemsWithCompletion(ctx context.Context, kind course.Kind, userID, courseID int) ([]ItemStatus, error)

		// progress aggregation
		Recalculate(ctx context.Context, userID, courseID int) error
		SetCompletion(ctx context.Context, kind course.Kind, userID, itemID int, isComplete bool) (Completion, error)

		// access guard
		CanAccess(ctx context.Context, userID, courseID int) (bool, error)
		ResolveCourse(ctx context.Context, kind course.Kind, itemID int) (int, bool, error)
		CanAccessItem(ctx context.Context, userID int, kind course.Kind, itemID int) (bool, error)
	}

	service struct {
		repo      Repository
		courseSvc course.Service
		userSvc   user.Service
		mailSvc   core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, courseSvc course.Service, userSvc user.Service, mailSvc core.EmailService) Service {
	return &service{
		repo:      repo,
		courseSvc: courseSvc,
		userSvc:   userSvc,
		mailSvc:   mailSvc,
	}
}

func (svc *service) Enroll(ctx context.Context, userID int, ne NewEnrollment) (Enrollment, error) {
	c, err := svc.courseSvc.GetByID(ctx, ne.CourseID)
	if err != nil {
		return Enrollment{}, err
	}

	if _, err = svc.repo.GetEnrollment(ctx, userID, c.ID); err == nil {
		return Enrollment{}, core.NewValidationError(ErrAlreadyEnrolled)
	} else if !errors.Is(err, ErrNotFound) {
		return Enrollment{}, errors.Wrap(err, "finding enrollment")
	}

	e, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		UserID:       userID,
		CourseID:     c.ID,
		Progress:     0,
		DateEnrolled: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyEnrolled) {
			return Enrollment{}, core.NewValidationError(ErrAlreadyEnrolled)
		}
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}

	if usr, err := svc.userSvc.GetByID(ctx, userID); err == nil {
		svc.mailSvc.SendMessages(enrolledMessage(usr, c))
	}
	return e, nil
}

func (svc *service) QueryByUser(ctx context.Context, userID int) ([]Enrollment, error) {
	enrollments, err := svc.repo.QueryEnrollments(ctx, QueryFilter{UserID: userID})
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	return enrollments, nil
}

func (svc *service) EnrolledUserIDs(ctx context.Context, courseID int) ([]int, error) {
	enrollments, err := svc.repo.QueryEnrollments(ctx, QueryFilter{CourseID: courseID})
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	ids := make([]int, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.UserID)
	}
	return ids, nil
}

func (svc *service) CourseDetail(ctx context.Context, courseID int) (course.Detail, error) {
	c, err := svc.courseSvc.GetByID(ctx, courseID)
	if err != nil {
		return course.Detail{}, err
	}
	ids, err := svc.EnrolledUserIDs(ctx, c.ID)
	if err != nil {
		return course.Detail{}, err
	}
	return course.Detail{Course: c, EnrolledUsers: ids}, nil
}

func (svc *service) QueryItemsWithCompletion(ctx context.Context, kind course.Kind, userID, courseID int) ([]ItemStatus, error) {
	items, err := svc.courseSvc.QueryItems(ctx, kind, courseID)
	if err != nil {
		return nil, err
	}
	completions, err := svc.repo.QueryCompletions(ctx, kind, userID, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}

	done := make(map[int]bool, len(completions))
	for _, c := range completions {
		done[c.ItemID] = c.IsComplete
	}
	statuses := make([]ItemStatus, 0, len(items))
	for _, item := range items {
		statuses = append(statuses, ItemStatus{Item: item, IsComplete: done[item.ID]})
	}
	return statuses, nil
}

func enrolledMessage(usr user.User, c course.Course) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Enrollment confirmed",
		TemplateName: "enrolled",
		TemplateData: struct {
			Name        string
			CourseTitle string
		}{usr.Name, c.Title},
	}
}
