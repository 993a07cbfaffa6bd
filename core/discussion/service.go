package discussion

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core"
	"github.com/labtrack/backend/core/course"
)

var (
	// errors
	ErrNotFound    = fmt.Errorf("discussion %w", core.ErrNotFound)
	ErrNotOwner    = fmt.Errorf("not the author of this discussion: %w", core.ErrForbidden)
	ErrNotEnrolled = fmt.Errorf("not enrolled in this course: %w", core.ErrForbidden)
)

type (
	Repository interface {
		CreateDiscussion(ctx context.Context, d Discussion) (Discussion, error)
		GetDiscussion(ctx context.Context, board Board, id int) (Discussion, error)
		// QueryDiscussions returns the discussions of a parent, newest first, with their author's email.
		QueryDiscussions(ctx context.Context, board Board, parentID int) ([]Discussion, error)
		UpdateDiscussion(ctx context.Context, d Discussion) (Discussion, error)
		DeleteDiscussion(ctx context.Context, board Board, id int) error
	}

	// AccessGuard decides whether a user may read or write the discussions of an item.
	AccessGuard interface {
		CanAccessItem(ctx context.Context, userID int, kind course.Kind, itemID int) (bool, error)
	}

	Service interface {
		CreateOnCourse(ctx context.Context, userID int, nd NewCourseDiscussion) (Discussion, error)
		QueryCourse(ctx context.Context, courseID int) ([]Discussion, error)
		CreateOnItem(ctx context.Context, userID int, kind course.Kind, itemID int, c Content) (Discussion, error)
		QueryItem(ctx context.Context, userID int, kind course.Kind, itemID int) ([]Discussion, error)
		Update(ctx context.Context, userID int, board Board, id int, c Content) (Discussion, error)
		Delete(ctx context.Context, userID int, board Board, id int) error
	}

	service struct {
		repo      Repository
		guard     AccessGuard
		courseSvc course.Service
		validate  *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, guard AccessGuard, courseSvc course.Service, validate *validator.Validate) Service {
	return &service{
		repo:      repo,
		guard:     guard,
		courseSvc: courseSvc,
		validate:  validate,
	}
}

// CreateOnCourse posts on a course board. Course boards are open to any authenticated user.
func (svc *service) CreateOnCourse(ctx context.Context, userID int, nd NewCourseDiscussion) (Discussion, error) {
	if err := svc.validate.Struct(nd); err != nil {
		return Discussion{}, err
	}
	if err := validateContent(BoardCourse, nd.Content); err != nil {
		return Discussion{}, err
	}
	if _, err := svc.courseSvc.GetByID(ctx, nd.CourseID); err != nil {
		return Discussion{}, err
	}
	return svc.create(ctx, Discussion{
		Board:    BoardCourse,
		ParentID: nd.CourseID,
		UserID:   userID,
		Content:  nd.Content,
	})
}

func (svc *service) QueryCourse(ctx context.Context, courseID int) ([]Discussion, error) {
	return svc.query(ctx, BoardCourse, courseID)
}

func (svc *service) CreateOnItem(ctx context.Context, userID int, kind course.Kind, itemID int, c Content) (Discussion, error) {
	if err := svc.checkAccess(ctx, userID, kind, itemID); err != nil {
		return Discussion{}, err
	}
	board := BoardOf(kind)
	if err := validateContent(board, c.Content); err != nil {
		return Discussion{}, err
	}
	return svc.create(ctx, Discussion{
		Board:    board,
		ParentID: itemID,
		UserID:   userID,
		Content:  c.Content,
	})
}

func (svc *service) QueryItem(ctx context.Context, userID int, kind course.Kind, itemID int) ([]Discussion, error) {
	if err := svc.checkAccess(ctx, userID, kind, itemID); err != nil {
		return nil, err
	}
	return svc.query(ctx, BoardOf(kind), itemID)
}

// Update replaces the content of a discussion. Only its author may update it.
func (svc *service) Update(ctx context.Context, userID int, board Board, id int, c Content) (Discussion, error) {
	d, err := svc.getOwned(ctx, userID, board, id)
	if err != nil {
		return Discussion{}, err
	}
	if err = validateContent(board, c.Content); err != nil {
		return Discussion{}, err
	}
	d.Content = c.Content
	d, err = svc.repo.UpdateDiscussion(ctx, d)
	if err != nil {
		return Discussion{}, errors.Wrap(err, "updating discussion")
	}
	return d, nil
}

// Delete removes a discussion. Only its author may delete it.
func (svc *service) Delete(ctx context.Context, userID int, board Board, id int) error {
	if _, err := svc.getOwned(ctx, userID, board, id); err != nil {
		return err
	}
	if err := svc.repo.DeleteDiscussion(ctx, board, id); err != nil {
		return errors.Wrap(err, "deleting discussion")
	}
	return nil
}

func (svc *service) checkAccess(ctx context.Context, userID int, kind course.Kind, itemID int) error {
	ok, err := svc.guard.CanAccessItem(ctx, userID, kind, itemID)
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	if !ok {
		return ErrNotEnrolled
	}
	return nil
}

func (svc *service) getOwned(ctx context.Context, userID int, board Board, id int) (Discussion, error) {
	d, err := svc.repo.GetDiscussion(ctx, board, id)
	if err != nil {
		return Discussion{}, err
	}
	if !AssertOwner(d, userID) {
		return Discussion{}, ErrNotOwner
	}
	return d, nil
}

func (svc *service) create(ctx context.Context, d Discussion) (Discussion, error) {
	d.Timestamp = time.Now().UTC()
	d, err := svc.repo.CreateDiscussion(ctx, d)
	if err != nil {
		return Discussion{}, errors.Wrapf(err, "creating %s discussion", d.Board)
	}
	return d, nil
}

func (svc *service) query(ctx context.Context, board Board, parentID int) ([]Discussion, error) {
	discussions, err := svc.repo.QueryDiscussions(ctx, board, parentID)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s discussions", board)
	}
	return discussions, nil
}

func validateContent(board Board, content string) error {
	if board.checkContent(content) {
		return nil
	}
	msg := fmt.Sprintf("ensure this field has at least %d characters", board.MinContentLen())
	return core.NewValidationError(errors.New("invalid content"), core.FieldError{Field: "content", Error: msg})
}
